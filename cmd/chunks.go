package cmd

import (
	"context"
	"fmt"

	"github.com/mnemos-dev/mnemos/internal/engine"
	"github.com/spf13/cobra"
)

var (
	chunksKind       string
	chunksSuperseded bool
	chunksLimit      int
)

var chunksCmd = &cobra.Command{
	Use:   "chunks <agent>",
	Short: "List facts and memories belonging to an agent",
	Long: `List the chunks (facts and memories) owned by an agent, newest
first.

Examples:
  mnemos chunks agent-1
  mnemos chunks agent-1 --kind f
  mnemos chunks agent-1 --superseded --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind engine.Kind
		switch chunksKind {
		case "":
		case "f":
			kind = engine.KindFact
		case "m":
			kind = engine.KindMemory
		default:
			return fmt.Errorf("invalid --kind %q: want f or m", chunksKind)
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		chunks, err := e.ListChunks(context.Background(), args[0], engine.ListChunksOptions{
			Kind:              kind,
			IncludeSuperseded: chunksSuperseded,
			Limit:             chunksLimit,
		})
		if err != nil {
			return fmt.Errorf("list chunks: %w", err)
		}

		if jsonOutput {
			return printJSON(chunks)
		}

		if len(chunks) == 0 {
			fmt.Println("no chunks found")
			return nil
		}
		for _, c := range chunks {
			status := "active"
			if !c.Active() {
				status = "superseded"
			}
			fmt.Printf("%s  [%s/%s]  %s\n", c.ID, c.Kind, status, c.Content)
		}
		return nil
	},
}

func init() {
	chunksCmd.Flags().StringVar(&chunksKind, "kind", "", "filter by kind: f (fact) or m (memory)")
	chunksCmd.Flags().BoolVar(&chunksSuperseded, "superseded", false, "include superseded chunks")
	chunksCmd.Flags().IntVar(&chunksLimit, "limit", 0, "maximum rows to return (0 = unlimited)")
}
