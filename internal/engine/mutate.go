package engine

import (
	"context"
	"database/sql"
	"time"
)

// UpdateChunk replaces the content of an existing chunk: it re-embeds
// new content, recomputes the content hash for memories (facts carry no
// hash), and refreshes created_at/last_accessed_at, all in a single
// transaction so no partial update is ever observable. It fails with
// ErrChunkNotFound if id does not exist.
func (e *Engine) UpdateChunk(ctx context.Context, id, newContent string) (*Chunk, error) {
	existing, err := e.getChunkByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrChunkNotFound
	}

	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	embedding, err := e.embed.Embed(ctx, newContent)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, err
	}

	var hash any
	if existing.Kind == KindMemory {
		hash = contentHash(newContent)
	}

	now := time.Now().UTC()
	err = e.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE chunks SET
			content = ?, content_hash = ?, embedding = ?, created_at = ?, last_accessed_at = ?
			WHERE id = ?`,
			newContent, hash, vectorToBlob(embedding),
			now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano), id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return e.getChunkByID(ctx, id)
}

// DeleteChunk removes a chunk by id, reporting whether a row existed.
func (e *Engine) DeleteChunk(ctx context.Context, id string) (bool, error) {
	return e.deleteChunk(ctx, e.db, id)
}
