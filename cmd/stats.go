package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database-wide memory statistics",
	Long: `Show counts of facts, memories, superseded chunks, blocks, and
distinct agents across the whole database.

Examples:
  mnemos stats
  mnemos stats --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := e.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}

		if jsonOutput {
			return printJSON(stats)
		}

		fmt.Println("mnemos database stats:")
		fmt.Printf("  Facts:       %d\n", stats.TotalFacts)
		fmt.Printf("  Memories:    %d\n", stats.TotalMemories)
		fmt.Printf("  Superseded:  %d\n", stats.TotalSuperseded)
		fmt.Printf("  Blocks:      %d\n", stats.TotalBlocks)
		fmt.Printf("  Agents:      %d\n", stats.TotalAgents)
		return nil
	},
}
