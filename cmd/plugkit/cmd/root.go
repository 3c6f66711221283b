package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the plugkit application
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugkit",
		Short: "plugkit - run extension modules against a development host",
		Long: `plugkit runs extension modules against an in-memory development host.
Commands, context menus and code blocks can be driven over HTTP while the
module's console output and toasts are recorded.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), PrintVersion())
		},
	}
}

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("plugkit v%s (commit: %s, built on: %s)", Version, Commit, Date)
}
