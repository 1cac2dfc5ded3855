package main

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build version and date",
		Args:  cobra.NoArgs,
		// No configuration or sign-in needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "SecurePass Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		},
	}
}
