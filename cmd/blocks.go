package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks <agent>",
	Short: "List memory blocks belonging to an agent",
	Long: `List the named memory blocks (scratchpad-style mutable buffers)
owned by an agent.

Examples:
  mnemos blocks agent-1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		blocks, err := e.ListBlocks(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("list blocks: %w", err)
		}

		if jsonOutput {
			return printJSON(blocks)
		}

		if len(blocks) == 0 {
			fmt.Println("no blocks found")
			return nil
		}
		for _, b := range blocks {
			fmt.Printf("%s  (%d bytes, updated %s)\n", b.Key, len(b.Value), b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return nil
	},
}
