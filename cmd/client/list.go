package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/atinyakov/SecurePass/internal/models"
)

const urlColumnWidth = 40

func newListCmd(a *app) *cobra.Command {
	var (
		format string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved passwords (names only, never secrets)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			d := a.newDashboard(nil)
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			if err := d.Index.Load(ctx); err != nil {
				return err
			}
			d.Index.SetQuery(query)

			entries := d.Index.Visible()
			if format == "json" {
				return outputJSON(cmd.OutOrStdout(), entries)
			}
			outputTable(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVarP(&query, "search", "q", "", "Only show entries matching this text")
	return cmd
}

func outputJSON(w io.Writer, entries []models.CredentialSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func outputTable(w io.Writer, entries []models.CredentialSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Site", "Username", "URL", "Created"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.ID,
			e.SiteName,
			e.SiteUsername,
			runewidth.Truncate(e.SiteURL, urlColumnWidth, "..."),
			e.CreatedAt,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d total", len(entries))})
	t.Render()
}
