package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	ambiguousThreshold = 0.78
	duplicateThreshold = 0.93
)

// RememberFacts is the C7 remember-facts pipeline: it extracts discrete
// factual claims from text and, for each, either inserts a new fact,
// reinforces a duplicate, or supersedes a conflicting predecessor.
//
// No outer transaction wraps the batch: each fact is independently
// meaningful, so a transient failure on fact k must not discard already
// committed facts 1..k-1. Supersession itself is atomic (insert then
// mark-superseded in one transaction).
func (e *Engine) RememberFacts(ctx context.Context, agentID, scope, text string) ([]Action, error) {
	if utf8.RuneCountInString(text) > e.maxTextLength {
		return nil, ErrInputTooLong
	}

	facts, err := e.extractFacts(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(facts) == 0 {
		return nil, nil
	}

	working, err := e.getActiveChunks(ctx, agentID, KindFact, e.maxSearchFacts, []string{scope})
	if err != nil {
		return nil, err
	}

	var actions []Action
	for _, ef := range facts {
		if err := ctx.Err(); err != nil {
			return actions, ErrCancelled
		}

		embedding, err := e.embed.Embed(ctx, ef.Fact)
		if err != nil {
			if ctx.Err() != nil {
				return actions, ErrCancelled
			}
			return actions, fmt.Errorf("engine: embed fact: %w", err)
		}

		best, bestSim := topCandidate(working, embedding)

		if best == nil || bestSim < ambiguousThreshold {
			newChunk, err := e.insertFact(ctx, agentID, scope, ef.Fact, ef.Intensity, embedding)
			if err != nil {
				return actions, err
			}
			working = append(working, newChunk)
			actions = append(actions, Action{
				Kind:      ActionInserted,
				Content:   ef.Fact,
				Intensity: ef.Intensity,
				ChunkID:   newChunk.ID,
			})
			continue
		}

		var verdict Verdict
		if bestSim > duplicateThreshold {
			verdict = VerdictDuplicate
		} else {
			verdict, err = e.classifyConflict(ctx, ef.Fact, best.Content)
			if err != nil {
				return actions, err
			}
		}

		switch verdict {
		case VerdictDuplicate:
			newIntensity := updatedIntensity(best.RunningIntensity, best.EncounterCount, ef.Intensity)
			now := time.Now().UTC()
			if err := e.reinforceChunk(ctx, best.ID, newIntensity, now); err != nil {
				return actions, err
			}
			oldIntensity := best.RunningIntensity
			best.RunningIntensity = clampIntensity(newIntensity)
			best.EncounterCount++
			best.AccessCount++
			best.LastAccessedAt = now
			actions = append(actions, Action{
				Kind:         ActionReinforced,
				Content:      best.Content,
				OldIntensity: oldIntensity,
				NewIntensity: best.RunningIntensity,
				ChunkID:      best.ID,
			})

		case VerdictSupersedes:
			newChunk := &Chunk{
				AgentID:          agentID,
				Scope:            scope,
				Content:          ef.Fact,
				Embedding:        embedding,
				Kind:             KindFact,
				RunningIntensity: ef.Intensity,
				EncounterCount:   1,
			}
			if err := e.withTx(ctx, func(tx *sql.Tx) error {
				if err := e.insertChunk(ctx, tx, newChunk); err != nil {
					return err
				}
				return e.supersedeChunk(ctx, tx, newChunk.ID, best.ID)
			}); err != nil {
				return actions, err
			}
			working = removeChunk(working, best.ID)
			working = append(working, newChunk)
			actions = append(actions, Action{
				Kind:       ActionSuperseded,
				OldContent: best.Content,
				NewContent: ef.Fact,
				ChunkID:    newChunk.ID,
			})

		default: // VerdictDistinct
			newChunk, err := e.insertFact(ctx, agentID, scope, ef.Fact, ef.Intensity, embedding)
			if err != nil {
				return actions, err
			}
			working = append(working, newChunk)
			actions = append(actions, Action{
				Kind:      ActionInserted,
				Content:   ef.Fact,
				Intensity: ef.Intensity,
				ChunkID:   newChunk.ID,
			})
		}
	}

	return actions, nil
}

func (e *Engine) insertFact(ctx context.Context, agentID, scope, content string, intensity float64, embedding []float32) (*Chunk, error) {
	c := &Chunk{
		AgentID:          agentID,
		Scope:            scope,
		Content:          content,
		Embedding:        embedding,
		Kind:             KindFact,
		RunningIntensity: intensity,
		EncounterCount:   1,
	}
	if err := e.insertChunk(ctx, e.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

// topCandidate returns the highest-similarity chunk in candidates
// against embedding, restricted conceptually to the top-K window (the
// maximum is unaffected by the window, so only the max is computed).
func topCandidate(candidates []*Chunk, embedding []float32) (*Chunk, float64) {
	var best *Chunk
	var bestSim float64 = -2
	for _, c := range candidates {
		sim, err := cosineSimilarity(embedding, c.Embedding)
		if err != nil {
			continue
		}
		if sim > bestSim {
			best = c
			bestSim = sim
		}
	}
	// Only the single best candidate drives classification, so a top-K
	// search over candidates collapses to a plain arg-max.
	return best, bestSim
}

func removeChunk(chunks []*Chunk, id string) []*Chunk {
	out := chunks[:0]
	for _, c := range chunks {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error (including a panic, which is re-raised after
// rollback).
func (e *Engine) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
