package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/supplymap/cmd/supplymap/cmd/importfeed"
	"github.com/agentstation/supplymap/cmd/supplymap/cmd/mapping"
	"github.com/agentstation/supplymap/cmd/supplymap/cmd/records"
	"github.com/agentstation/supplymap/cmd/supplymap/cmd/suppliers"
	synccmd "github.com/agentstation/supplymap/cmd/supplymap/cmd/sync"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(importfeed.NewCommand(a))
	rootCmd.AddCommand(synccmd.NewCommand(a))
	rootCmd.AddCommand(records.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(suppliers.NewCommand(a))
	rootCmd.AddCommand(mapping.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "supplymap version %s\n", a.version)
			fmt.Fprintf(w, "commit: %s\n", a.commit)
			fmt.Fprintf(w, "built: %s\n", a.date)
			fmt.Fprintf(w, "built by: %s\n", a.builtBy)
			fmt.Fprintf(w, "go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
