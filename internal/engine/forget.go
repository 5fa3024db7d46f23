package engine

import (
	"context"
	"database/sql"
)

const defaultForgetThreshold = 0.7

// ForgetMemory is the C10 forget engine: it matches active chunks by
// similarity to description and, in one transaction, deletes each match
// while resurrecting whatever it directly superseded. Already-superseded
// chunks are invisible to the scan, so they can only become reachable
// again if their direct superseder is itself forgotten.
func (e *Engine) ForgetMemory(ctx context.Context, agentID, scope, description string, threshold float64) ([]string, error) {
	if threshold <= 0 {
		threshold = defaultForgetThreshold
	}

	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	queryEmbedding, err := e.embed.Embed(ctx, description)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, err
	}

	var scopes []string
	if scope != "" {
		scopes = []string{scope}
	}
	candidates, err := e.getAllActiveChunks(ctx, agentID, e.maxSearchChunks, scopes)
	if err != nil {
		return nil, err
	}

	var matches []*Chunk
	for _, c := range candidates {
		sim, err := cosineSimilarity(queryEmbedding, c.Embedding)
		if err != nil {
			continue
		}
		if sim >= threshold {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	var deletedContents []string
	err = e.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range matches {
			if err := e.clearSupersededByScoped(ctx, tx, m.ID, agentID, m.Scope); err != nil {
				return err
			}
			if _, err := e.deleteChunk(ctx, tx, m.ID); err != nil {
				return err
			}
			deletedContents = append(deletedContents, m.Content)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deletedContents, nil
}
