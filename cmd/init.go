package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database file and verify it opens cleanly",
	Long: `Initialize the database at the resolved path, creating the schema
if it does not already exist.

Examples:
  mnemos init
  mnemos init --db /tmp/scratch.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := resolveDBPath(cmd)
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if jsonOutput {
			return printJSON(map[string]string{"status": "ok", "path": dbPath})
		}
		fmt.Printf("✓ database ready at %s\n", dbPath)
		return nil
	},
}
