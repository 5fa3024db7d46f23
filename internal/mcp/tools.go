package mcp

import (
	"context"
	"fmt"

	"github.com/mnemos-dev/mnemos/internal/engine"
)

type toolHandlerFunc func(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error)

var toolHandlers = map[string]toolHandlerFunc{
	"remember_facts":       toolRememberFacts,
	"store_memory":         toolStoreMemory,
	"recall_memories":      toolRecallMemories,
	"forget_memory":        toolForgetMemory,
	"recall_memory_block":  toolRecallMemoryBlock,
	"replace_memory_block": toolReplaceMemoryBlock,
	"append_memory_block":  toolAppendMemoryBlock,
}

// toolDefinitions describes the seven MCP tools in the verbose
// JSON-schema form clients expect from tools/list.
var toolDefinitions = []map[string]interface{}{
	{
		"name":        "remember_facts",
		"description": "Extract discrete factual claims from text and store them, reinforcing duplicates and superseding conflicting prior facts.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"agent_id": map[string]interface{}{"type": "string", "description": "Identifier of the agent this fact belongs to"},
				"scope":    map[string]interface{}{"type": "string", "description": "Optional partition, e.g. a project identifier"},
				"text":     map[string]interface{}{"type": "string", "description": "Free-form text to extract facts from"},
			},
			"required": []string{"agent_id", "text"},
		},
	},
	{
		"name":        "store_memory",
		"description": "Store a verbatim memory, deduplicating identical content for the same agent and scope.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"agent_id": map[string]interface{}{"type": "string"},
				"scope":    map[string]interface{}{"type": "string"},
				"content":  map[string]interface{}{"type": "string", "description": "The memory content to store"},
				"metadata": map[string]interface{}{"type": "string", "description": "Optional JSON-encoded metadata"},
			},
			"required": []string{"agent_id", "content"},
		},
	},
	{
		"name":        "recall_memories",
		"description": "Search stored facts and memories by semantic similarity, weighted by strength and recency.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"agent_id": map[string]interface{}{"type": "string"},
				"scope":    map[string]interface{}{"type": "string"},
				"query":    map[string]interface{}{"type": "string"},
				"kind":     map[string]interface{}{"type": "string", "enum": []string{"fact", "memory"}},
				"limit":    map[string]interface{}{"type": "number", "description": "Max results, 1-50, default 10"},
			},
			"required": []string{"agent_id", "query"},
		},
	},
	{
		"name":        "forget_memory",
		"description": "Delete active facts/memories matching a description, resurrecting whatever they directly superseded.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"agent_id":    map[string]interface{}{"type": "string"},
				"scope":       map[string]interface{}{"type": "string"},
				"description": map[string]interface{}{"type": "string"},
				"threshold":   map[string]interface{}{"type": "number", "description": "Similarity threshold, default 0.7"},
			},
			"required": []string{"agent_id", "description"},
		},
	},
	{
		"name":        "recall_memory_block",
		"description": "Read a named persistent text block (e.g. a running summary), or null if it doesn't exist yet.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"agent_id": map[string]interface{}{"type": "string"},
				"scope":    map[string]interface{}{"type": "string"},
				"key":      map[string]interface{}{"type": "string"},
			},
			"required": []string{"agent_id", "key"},
		},
	},
	{
		"name":        "replace_memory_block",
		"description": "Replace every occurrence of old_text with new_text in a named block.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"agent_id": map[string]interface{}{"type": "string"},
				"scope":    map[string]interface{}{"type": "string"},
				"key":      map[string]interface{}{"type": "string"},
				"old_text": map[string]interface{}{"type": "string"},
				"new_text": map[string]interface{}{"type": "string"},
			},
			"required": []string{"agent_id", "key", "old_text", "new_text"},
		},
	},
	{
		"name":        "append_memory_block",
		"description": "Append content to a named block, creating it if absent.",
		"inputSchema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"agent_id": map[string]interface{}{"type": "string"},
				"scope":    map[string]interface{}{"type": "string"},
				"key":      map[string]interface{}{"type": "string"},
				"content":  map[string]interface{}{"type": "string"},
			},
			"required": []string{"agent_id", "key", "content"},
		},
	},
}

func toolRememberFacts(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error) {
	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, fmt.Errorf("text is required")
	}
	scope, _ := args["scope"].(string)

	actions, err := e.RememberFacts(ctx, agentID, scope, text)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"actions": actions}, nil
}

func toolStoreMemory(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error) {
	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, fmt.Errorf("content is required")
	}
	scope, _ := args["scope"].(string)
	metadata, _ := args["metadata"].(string)

	result, err := e.StoreMemory(ctx, agentID, scope, content, metadata, 0)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func toolRecallMemories(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error) {
	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("query is required")
	}

	opts := engine.RecallOptions{}
	if scope, ok := args["scope"].(string); ok && scope != "" {
		opts.Scopes = []string{scope}
	}
	if kind, ok := args["kind"].(string); ok && kind != "" {
		opts.Kind = engine.Kind(kind)
	}

	limit := 10
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	results, err := e.Recall(ctx, agentID, query, limit, opts)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"results": results}, nil
}

func toolForgetMemory(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error) {
	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	description, ok := args["description"].(string)
	if !ok || description == "" {
		return nil, fmt.Errorf("description is required")
	}
	scope, _ := args["scope"].(string)

	var threshold float64
	if th, ok := args["threshold"].(float64); ok {
		threshold = th
	}

	deleted, err := e.ForgetMemory(ctx, agentID, scope, description, threshold)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": deleted}, nil
}

func toolRecallMemoryBlock(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error) {
	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("key is required")
	}
	scope, _ := args["scope"].(string)

	block, err := e.RecallBlock(ctx, agentID, scope, key)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"block": block}, nil
}

func toolReplaceMemoryBlock(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error) {
	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("key is required")
	}
	oldText, _ := args["old_text"].(string)
	newText, _ := args["new_text"].(string)
	scope, _ := args["scope"].(string)

	result, err := e.ReplaceBlock(ctx, agentID, scope, key, oldText, newText)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func toolAppendMemoryBlock(ctx context.Context, e *engine.Engine, args map[string]interface{}) (interface{}, error) {
	agentID, ok := args["agent_id"].(string)
	if !ok || agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("key is required")
	}
	content, ok := args["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content is required")
	}
	scope, _ := args["scope"].(string)

	result, err := e.AppendBlock(ctx, agentID, scope, key, content)
	if err != nil {
		return nil, err
	}
	return result, nil
}
