package engine

import (
	"context"
	"encoding/json"
	"time"
)

// StoreMemoryResult reports what store_memory did.
type StoreMemoryResult struct {
	Chunk        *Chunk
	Strengthened bool // true when an existing row was reinforced instead of inserted
}

// StoreMemory is the C8 store-memory path: hash-based verbatim dedup
// with a TOCTOU-safe fallback to reinforce on a unique-constraint race.
func (e *Engine) StoreMemory(ctx context.Context, agentID, scope, content, metadata string, maxContentLength int) (*StoreMemoryResult, error) {
	if maxContentLength > 0 && len(content) > maxContentLength {
		return nil, ErrInputTooLong
	}
	if metadata != "" && !json.Valid([]byte(metadata)) {
		return nil, ErrInvalidMetadata
	}

	hash := contentHash(content)

	existing, err := e.getMemoryByHash(ctx, agentID, hash, scope)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return e.strengthenMemory(ctx, existing)
	}

	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	embedding, err := e.embed.Embed(ctx, content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, err
	}

	c := &Chunk{
		AgentID:          agentID,
		Scope:            scope,
		Content:          content,
		ContentHash:      hash,
		Embedding:        embedding,
		Metadata:         metadata,
		Kind:             KindMemory,
		RunningIntensity: 0.5,
		EncounterCount:   1,
	}

	if err := e.insertChunk(ctx, e.db, c); err != nil {
		if isUniqueConstraintErr(err) {
			// Another writer inserted between the hash lookup and our
			// insert; re-read and reinforce instead.
			existing, rerr := e.getMemoryByHash(ctx, agentID, hash, scope)
			if rerr != nil {
				return nil, rerr
			}
			if existing != nil {
				return e.strengthenMemory(ctx, existing)
			}
		}
		return nil, err
	}

	return &StoreMemoryResult{Chunk: c}, nil
}

// strengthenMemory reinforces an already-active memory. Per the source
// this asymmetry is intentional: the moving average always folds in a
// fresh reading of 0.5, regardless of the new content's own signal.
func (e *Engine) strengthenMemory(ctx context.Context, existing *Chunk) (*StoreMemoryResult, error) {
	newIntensity := updatedIntensity(existing.RunningIntensity, existing.EncounterCount, 0.5)
	now := time.Now().UTC()
	if err := e.reinforceChunk(ctx, existing.ID, newIntensity, now); err != nil {
		return nil, err
	}
	existing.RunningIntensity = clampIntensity(newIntensity)
	existing.EncounterCount++
	existing.AccessCount++
	existing.LastAccessedAt = now
	return &StoreMemoryResult{Chunk: existing, Strengthened: true}, nil
}
