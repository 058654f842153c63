package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the taskd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskd",
		Short: "taskd - task manager API",
		Long: `taskd serves the task manager REST API: accounts with bearer token
sessions and per user tasks. Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
