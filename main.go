package main

import (
	"os"

	"overtime-tracker/logging"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "overtime-tracker",
		Short:         "Overtime recording, approval and export",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(newServeCommand(), newUserAddCommand())

	if err := root.Execute(); err != nil {
		logging.Logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
