package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var blockScope string

var blockCmd = &cobra.Command{
	Use:   "block <agent> <key>",
	Short: "Show the content of one memory block",
	Long: `Show the full content of a single named memory block.

Examples:
  mnemos block agent-1 scratchpad
  mnemos block agent-1 scratchpad --scope github.com/acme/widgets`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, key := args[0], args[1]

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		scope := resolveAgentScope(blockScope)
		b, err := e.RecallBlock(context.Background(), agent, scope, key)
		if err != nil {
			return fmt.Errorf("recall block: %w", err)
		}
		if b == nil {
			if jsonOutput {
				return printJSON(map[string]string{"status": "not_found", "key": key})
			}
			fmt.Fprintf(os.Stderr, "no block named %q for agent %q\n", key, agent)
			os.Exit(1)
		}

		if jsonOutput {
			return printJSON(b)
		}
		fmt.Println(b.Value)
		return nil
	},
}

func init() {
	blockCmd.Flags().StringVar(&blockScope, "scope", "", "memory scope (default: auto-detected from the current git repository)")
}
