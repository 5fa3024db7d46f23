package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id...>",
	Short: "Delete one or more chunks by ID",
	Long: `Permanently delete the given chunk IDs.

Examples:
  mnemos delete 01HZY...
  mnemos delete --force 01HZY... 01HZZ...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteForce && !confirm(fmt.Sprintf("delete %d chunk(s)? [y/N] ", len(args))) {
			fmt.Println("aborted")
			return nil
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := e.DeleteChunks(context.Background(), args)
		if err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}

		if jsonOutput {
			return printJSON(map[string]int{"deleted": n})
		}
		fmt.Printf("✓ deleted %d chunk(s)\n", n)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "skip the confirmation prompt")
}

// confirm prompts on stdin and reports whether the user answered yes.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
