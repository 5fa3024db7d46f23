package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/mnemos-dev/mnemos/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"mcp"},
	Short:   "Start the MCP server (default)",
	Long: `Start the MCP server.

By default the server speaks JSON-RPC over stdin/stdout, the transport
MCP clients use when they launch mnemos as a child process. Set
MNEMOS_TRANSPORT=sse to instead listen over HTTP with server-sent
events, for clients that connect to a long-running process.

Examples:
  mnemos serve
  mnemos mcp
  MNEMOS_TRANSPORT=sse MNEMOS_PORT=8711 mnemos serve`,
	RunE: func(cmd *cobra.Command, args []string) error { return runServe(cmd) },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mnemos %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func runServe(cmd *cobra.Command) error {
	e, err := openEngine(cmd)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer e.Close()

	server := mcp.NewServer(e)

	if os.Getenv("MNEMOS_TRANSPORT") == "sse" {
		port := os.Getenv("MNEMOS_PORT")
		if port == "" {
			port = "8711"
		}
		addr := ":" + port
		fmt.Fprintf(os.Stderr, "🧠 mnemos MCP server - listening on %s (sse transport)\n", addr)
		fmt.Fprintln(os.Stderr, "GET /sse opens a session, POST /messages?sessionId=... delivers requests, GET /health reports liveness.")
		return http.ListenAndServe(addr, mcp.NewSSEServer(server).Handler())
	}

	fmt.Fprintln(os.Stderr, "🧠 mnemos - persistent agent memory")
	fmt.Fprintln(os.Stderr, "Starting MCP server (stdio transport)...")
	fmt.Fprintln(os.Stderr, "Not an interactive CLI — connect an MCP client (Claude Code, Cursor, etc.).")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to stop. Run 'mnemos help' for available commands.")

	return mcp.NewStdioTransport(server).Run()
}
