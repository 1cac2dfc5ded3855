package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/SecurePass/internal/client/api"
	"github.com/atinyakov/SecurePass/internal/dashboard"
	"github.com/atinyakov/SecurePass/internal/strength"
)

func newGenerateCmd(a *app) *cobra.Command {
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password with the vault service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hc, err := api.NewHTTPClient(a.opts.CAFile, a.opts.Timeout)
			if err != nil {
				return err
			}
			a.client = api.New(a.opts.ServerURL, hc, a.log.Log.Named("api"))

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			pw, err := a.client.GeneratePassword(ctx, a.opts.PasswordLength)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if copyOut {
				if err := (dashboard.SystemClipboard{}).WriteAll(pw); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(out, "Password copied to clipboard.")
			} else {
				fmt.Fprintln(out, pw)
			}
			s := strength.Of(pw)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", s.Bar(20), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy to the clipboard instead of printing")
	return cmd
}
