package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mnemos-dev/mnemos/internal/engine"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <agent>",
	Short: "Export every chunk and block belonging to an agent",
	Long: `Export an agent's full memory (active and superseded chunks,
plus every block) as a versioned JSON document suitable for later
import.

Examples:
  mnemos export agent-1 > agent-1.json
  mnemos export agent-1 --out agent-1.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		exp, err := e.ExportAgent(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("export agent: %w", err)
		}

		data, err := engine.MarshalExport(exp)
		if err != nil {
			return fmt.Errorf("marshal export: %w", err)
		}

		if exportOut == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(exportOut, data, 0o600); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
		fmt.Printf("✓ wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
}
