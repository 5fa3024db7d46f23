package engine

import (
	"context"
	"sort"
	"time"
)

const minSimilarity = 0.1

// RecallOptions narrows a recall scan by kind and/or scope. A nil Scopes
// means no scope filter; an empty, non-nil Scopes matches nothing.
type RecallOptions struct {
	Kind   Kind // empty means both kinds
	Scopes []string
}

// RecallResult is one scored chunk returned by Recall, annotated with the
// similarity and composite score computed for this query.
type RecallResult struct {
	Chunk      *Chunk
	Similarity float64
	Score      float64
}

// Recall is the C9 recall engine: a brute-force scored scan over active
// chunks with a similarity floor, a strength floor, and a best-effort
// retrieval boost applied to whatever is returned.
func (e *Engine) Recall(ctx context.Context, agentID, query string, limit int, opts RecallOptions) ([]RecallResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	queryEmbedding, err := e.embed.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, err
	}

	var candidates []*Chunk
	if opts.Kind != "" {
		candidates, err = e.getActiveChunks(ctx, agentID, opts.Kind, e.maxSearchChunks, opts.Scopes)
	} else {
		candidates, err = e.getAllActiveChunks(ctx, agentID, e.maxSearchChunks, opts.Scopes)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var scored []RecallResult
	for _, c := range candidates {
		sim, err := cosineSimilarity(queryEmbedding, c.Embedding)
		if err != nil {
			continue
		}
		if sim < minSimilarity {
			continue
		}

		hours := now.Sub(c.LastAccessedAt).Hours()
		strength := effectiveStrength(c.RunningIntensity, c.AccessCount, hours)
		if strength < strengthFloor {
			continue
		}

		days := now.Sub(c.CreatedAt).Hours() / 24
		recency := recencyScore(days)

		score := searchScore(sim, strength, recency)
		scored = append(scored, RecallResult{Chunk: c, Similarity: sim, Score: score})
	}

	sortResultsByScoreDesc(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	// Best-effort retrieval boost: applied even on a zero-result scan,
	// which is vacuously a no-op. A transient busy/locked storage error
	// is swallowed here only; any other error propagates.
	for _, r := range scored {
		if ctx.Err() != nil {
			return scored, ErrCancelled
		}
		boosted := retrievalBoost(r.Chunk.RunningIntensity)
		if err := e.touchChunk(ctx, r.Chunk.ID, boosted, now); err != nil {
			if isBusyOrLockedErr(err) {
				continue
			}
			return scored, err
		}
	}

	return scored, nil
}

func sortResultsByScoreDesc(rs []RecallResult) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Score > rs[j].Score })
}
