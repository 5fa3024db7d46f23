package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mnemos-dev/mnemos/internal/engine"
	"github.com/spf13/cobra"
)

var (
	purgeAgent  string
	purgeBefore string
	purgeForce  bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Bulk-delete chunks older than a cutoff",
	Long: `Delete every chunk created before --before (optionally scoped to
one agent). --before accepts an ISO 8601 timestamp.

Examples:
  mnemos purge --before 2026-01-01T00:00:00Z --force
  mnemos purge --agent agent-1 --before 2026-06-01T00:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if purgeBefore == "" {
			return fmt.Errorf("--before is required")
		}
		before, err := time.Parse(time.RFC3339, purgeBefore)
		if err != nil {
			return fmt.Errorf("invalid --before timestamp: %w", err)
		}

		scope := "all agents"
		if purgeAgent != "" {
			scope = "agent " + purgeAgent
		}
		if !purgeForce && !confirm(fmt.Sprintf("purge every chunk for %s created before %s? [y/N] ", scope, before.Format(time.RFC3339))) {
			fmt.Println("aborted")
			return nil
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.Purge(context.Background(), engine.PurgeOptions{AgentID: purgeAgent, Before: before})
		if err != nil {
			return fmt.Errorf("purge: %w", err)
		}

		if jsonOutput {
			return printJSON(map[string]int{"purged": n})
		}
		fmt.Printf("✓ purged %d chunk(s)\n", n)
		return nil
	},
}

func init() {
	purgeCmd.Flags().StringVar(&purgeAgent, "agent", "", "restrict the purge to one agent (default: all agents)")
	purgeCmd.Flags().StringVar(&purgeBefore, "before", "", "ISO 8601 cutoff timestamp (required)")
	purgeCmd.Flags().BoolVar(&purgeForce, "force", false, "skip the confirmation prompt")
}
