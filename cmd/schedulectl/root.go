package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schedulectl",
		Short:         "Inspect and export clinic day schedules",
		SilenceUsage: true,
	}

	root.AddCommand(
		newGroupCmd(),
		newExportCmd(),
		newTokenCmd(),
		newWatchCmd(),
	)
	return root
}
