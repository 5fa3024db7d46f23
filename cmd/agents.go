package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List every agent with at least one chunk or block",
	Long: `List the distinct agent IDs that own memory in the database.

Examples:
  mnemos agents
  mnemos agents --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		agents, err := e.ListAgents(context.Background())
		if err != nil {
			return fmt.Errorf("list agents: %w", err)
		}

		if jsonOutput {
			return printJSON(agents)
		}

		if len(agents) == 0 {
			fmt.Println("no agents found")
			return nil
		}
		for _, a := range agents {
			fmt.Println(a)
		}
		return nil
	},
}
