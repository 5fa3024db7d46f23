package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// StdioTransport drives a Server over line-delimited JSON-RPC on stdio,
// the transport MCP clients speak when they launch the server as a
// child process.
type StdioTransport struct {
	server  *Server
	scanner *bufio.Scanner
	out     io.Writer
}

// NewStdioTransport wires a transport to stdin/stdout.
func NewStdioTransport(s *Server) *StdioTransport {
	return &StdioTransport{
		server:  s,
		scanner: bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
}

// Run reads requests until stdin closes or a read error occurs.
func (t *StdioTransport) Run() error {
	fmt.Fprintln(os.Stderr, "mnemos MCP server ready (stdio)")

	ctx := context.Background()
	for t.scanner.Scan() {
		line := t.scanner.Text()
		if line == "" {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			t.write(errorResponse(nil, -32700, "Parse error", err.Error()))
			continue
		}

		t.write(t.server.Dispatch(ctx, &req))
	}
	return t.scanner.Err()
}

func (t *StdioTransport) write(resp *JSONRPCResponse) {
	data, _ := json.Marshal(resp)
	fmt.Fprintln(t.out, string(data))
}
