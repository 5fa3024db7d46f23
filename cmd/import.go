package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mnemos-dev/mnemos/internal/engine"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a previously exported agent's memory",
	Long: `Import a JSON document produced by "mnemos export". Chunks and
blocks whose primary key already exists in the database are skipped,
never overwritten.

Examples:
  mnemos import agent-1.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}

		exp, err := engine.UnmarshalExport(data)
		if err != nil {
			return fmt.Errorf("parse import file: %w", err)
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.ImportAgent(context.Background(), exp)
		if err != nil {
			return fmt.Errorf("import agent: %w", err)
		}

		if jsonOutput {
			return printJSON(result)
		}
		fmt.Printf("✓ imported %d chunk(s) (%d skipped), %d block(s) (%d skipped)\n",
			result.ChunksInserted, result.ChunksSkipped, result.BlocksInserted, result.BlocksSkipped)
		return nil
	},
}
