package cmd

import (
	"github.com/spf13/cobra"
)

// Build-time variables
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// SetVersion sets the version info from main
func SetVersion(v, c, d string) {
	Version = v
	Commit = c
	Date = d
}

var jsonOutput bool
var dbPathFlag string

var rootCmd = &cobra.Command{
	Use:   "mnemos",
	Short: "mnemos - persistent per-agent memory engine",
	Long:  "A local-first memory engine for AI agents, exposed over MCP and a CLI inspection surface.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the mnemos command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "path to the database file (default: $MNEMOS_DB_PATH or ~/.mnemos/mnemos.db)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(chunksCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(auditCmd)
}
