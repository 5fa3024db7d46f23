package cmd

import (
	"context"
	"fmt"

	"github.com/mnemos-dev/mnemos/internal/engine"
	"github.com/spf13/cobra"
)

var (
	searchAgent string
	searchKind  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Recall facts and memories similar to a query",
	Long: `Run the same scored recall scan the MCP recall_memories tool
uses, against one agent's active chunks.

Examples:
  mnemos search "deploy process" --agent agent-1
  mnemos search "deploy process" --agent agent-1 --kind f --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchAgent == "" {
			return fmt.Errorf("--agent is required")
		}

		var kind engine.Kind
		switch searchKind {
		case "":
		case "f":
			kind = engine.KindFact
		case "m":
			kind = engine.KindMemory
		default:
			return fmt.Errorf("invalid --kind %q: want f or m", searchKind)
		}

		limit := searchLimit
		if limit <= 0 {
			limit = 10
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		results, err := e.Recall(context.Background(), searchAgent, args[0], limit, engine.RecallOptions{Kind: kind})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if jsonOutput {
			return printJSON(results)
		}

		if len(results) == 0 {
			fmt.Println("no matches found")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%.3f  %s  [%s]  %s\n", r.Score, r.Chunk.ID, r.Chunk.Kind, r.Chunk.Content)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchAgent, "agent", "", "agent to search (required)")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "filter by kind: f (fact) or m (memory)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results to return")
}
