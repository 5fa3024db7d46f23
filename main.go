// Mnemos - persistent per-agent memory engine
// Local-first fact and memory storage for AI agents via CLI and MCP.
package main

import (
	"fmt"
	"os"

	"github.com/mnemos-dev/mnemos/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
