package main

import (
	"github.com/spf13/cobra"

	"github.com/atinyakov/SecurePass/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, a)
		},
	}
}

func runTUI(cmd *cobra.Command, a *app) error {
	if err := a.connect(cmd.Context()); err != nil {
		return err
	}
	sink := tui.NewSink()
	d := a.newDashboard(sink)
	return tui.Run(cmd.Context(), d, sink, a.opts.Timeout, a.log.Log.Named("tui"))
}
