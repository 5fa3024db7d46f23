package engine

import (
	"context"
	"strings"
	"time"
)

const blockSizeWarnThreshold = 100 * 1024 // 100 KiB

// ReplaceBlockResult reports the outcome of a ReplaceBlock call.
type ReplaceBlockResult struct {
	Block        *Block
	Replacements int
}

// AppendBlockResult reports the outcome of an AppendBlock call.
type AppendBlockResult struct {
	Block   *Block
	Warning string // non-empty when the resulting block exceeds the size threshold
}

// RecallBlock returns the named block, or nil if it does not exist. A
// missing block is not an error.
func (e *Engine) RecallBlock(ctx context.Context, agentID, scope, key string) (*Block, error) {
	return e.getBlockByKey(ctx, agentID, scope, key)
}

// ReplaceBlock replaces every non-overlapping, left-to-right occurrence
// of oldText in the named block with newText, then upserts the result.
func (e *Engine) ReplaceBlock(ctx context.Context, agentID, scope, key, oldText, newText string) (*ReplaceBlockResult, error) {
	b, err := e.getBlockByKey(ctx, agentID, scope, key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBlockNotFound
	}
	if oldText == "" {
		return nil, ErrEmptyOldText
	}
	if !strings.Contains(b.Value, oldText) {
		return nil, ErrTextNotFound
	}

	count := strings.Count(b.Value, oldText)
	replaced := strings.ReplaceAll(b.Value, oldText, newText)

	now := time.Now().UTC()
	if err := e.upsertBlock(ctx, agentID, scope, key, replaced, now); err != nil {
		return nil, err
	}

	b.Value = replaced
	b.UpdatedAt = now
	return &ReplaceBlockResult{Block: b, Replacements: count}, nil
}

// AppendBlock upserts content onto the named block, joining onto any
// existing value with a newline.
func (e *Engine) AppendBlock(ctx context.Context, agentID, scope, key, content string) (*AppendBlockResult, error) {
	existing, err := e.getBlockByKey(ctx, agentID, scope, key)
	if err != nil {
		return nil, err
	}

	var newValue string
	if existing == nil || existing.Value == "" {
		newValue = content
	} else {
		newValue = existing.Value + "\n" + content
	}

	now := time.Now().UTC()
	if err := e.upsertBlock(ctx, agentID, scope, key, newValue, now); err != nil {
		return nil, err
	}

	result := &AppendBlockResult{
		Block: &Block{AgentID: agentID, Scope: normalizeScope(scope), Key: key, Value: newValue, UpdatedAt: now},
	}
	if len(newValue) > blockSizeWarnThreshold {
		result.Warning = "block exceeds 100 KiB"
	}
	return result, nil
}
