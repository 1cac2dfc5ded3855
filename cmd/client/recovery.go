package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/SecurePass/internal/dashboard"
)

func newRecoveryKeyCmd(a *app) *cobra.Command {
	var (
		save    bool
		dir     string
		copyOut bool
	)

	cmd := &cobra.Command{
		Use:   "recovery-key",
		Short: "Generate a new account recovery key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			d := a.newDashboard(nil)
			defer d.Recovery.Reset()

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			msg, err := d.Recovery.Generate(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			key, _ := d.Recovery.Key()
			switch {
			case copyOut:
				if err := d.Recovery.CopyToClipboard(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Recovery key copied to clipboard.")
			case !save:
				fmt.Fprintln(out, key)
			}
			if save {
				path, err := d.ExportRecoveryKey(dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Recovery key saved to %s\n", path)
			}
			if msg != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Save the key to "+dashboard.RecoveryFilename("<user>"))
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for --save (default: export_dir or your downloads folder)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the key to the clipboard instead of printing it")
	return cmd
}
