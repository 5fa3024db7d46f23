package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mnemos-dev/mnemos/internal/engine"
)

// Server holds the engine the tool handlers operate on. It carries no
// transport state of its own: StdioTransport and the SSE transport each
// drive it independently via Dispatch.
type Server struct {
	engine *engine.Engine
}

// NewServer wraps an already-open engine for MCP tool dispatch.
func NewServer(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// Dispatch handles one JSON-RPC request and returns the response to
// send back over whichever transport received it.
func (s *Server) Dispatch(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolCall(ctx, req)
	default:
		return errorResponse(req.ID, -32601, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	result := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "mnemos-mcp",
			"version": "0.1.0",
		},
	}
	return resultResponse(req.ID, result)
}

func (s *Server) handleToolsList(req *JSONRPCRequest) *JSONRPCResponse {
	return resultResponse(req.ID, map[string]interface{}{"tools": toolDefinitions})
}

func (s *Server) handleToolCall(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return errorResponse(req.ID, -32602, "Unknown tool", params.Name)
	}

	result, err := handler(ctx, s.engine, params.Arguments)
	if err != nil {
		return resultResponse(req.ID, map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": fmt.Sprintf("Error: %v", err)},
			},
			"isError": true,
		})
	}

	text, _ := json.MarshalIndent(result, "", "  ")
	return resultResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
	})
}
