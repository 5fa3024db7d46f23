package engine

import (
	"context"
	"database/sql"
	"time"
)

// Stats summarizes the contents of a database, for the CLI's stats
// command.
type Stats struct {
	TotalFacts     int
	TotalMemories  int
	TotalSuperseded int
	TotalBlocks    int
	TotalAgents    int
}

// Stats aggregates row counts across chunks and blocks.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	row := e.db.QueryRowContext(ctx, `SELECT
		COUNT(*) FILTER (WHERE kind = 'fact' AND superseded_by IS NULL),
		COUNT(*) FILTER (WHERE kind = 'memory' AND superseded_by IS NULL),
		COUNT(*) FILTER (WHERE superseded_by IS NOT NULL)
		FROM chunks`)
	if err := row.Scan(&s.TotalFacts, &s.TotalMemories, &s.TotalSuperseded); err != nil {
		return nil, err
	}
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_blocks`).Scan(&s.TotalBlocks); err != nil {
		return nil, err
	}
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT agent_id) FROM (
		SELECT agent_id FROM chunks UNION SELECT agent_id FROM memory_blocks)`).Scan(&s.TotalAgents); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListAgents returns every distinct agent_id that owns at least one
// chunk or block, sorted ascending.
func (e *Engine) ListAgents(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT agent_id FROM (
		SELECT agent_id FROM chunks UNION SELECT agent_id FROM memory_blocks)
		ORDER BY agent_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// ListChunksOptions narrows the CLI's chunks listing.
type ListChunksOptions struct {
	Kind              Kind // "" = both
	IncludeSuperseded bool
	Limit             int // <=0 = unlimited
}

// ListChunks returns chunks for agent ordered newest-first, honoring
// opts. Unlike the recall-path helpers in query.go, this includes
// superseded rows on request, since the CLI is an inspection tool, not
// a retrieval path.
func (e *Engine) ListChunks(ctx context.Context, agent string, opts ListChunksOptions) ([]*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE agent_id = ?`
	args := []any{agent}

	if !opts.IncludeSuperseded {
		query += ` AND superseded_by IS NULL`
	}
	if opts.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(opts.Kind))
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		c, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// ListBlocks returns every block belonging to agent, ordered by key.
func (e *Engine) ListBlocks(ctx context.Context, agent string) ([]*Block, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT agent_id, scope, key, value, updated_at FROM memory_blocks
		WHERE agent_id = ? ORDER BY key`, agent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []*Block
	for rows.Next() {
		var b Block
		var updated string
		if err := rows.Scan(&b.AgentID, &b.Scope, &b.Key, &b.Value, &updated); err != nil {
			return nil, err
		}
		b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, &b)
	}
	return blocks, rows.Err()
}

// DeleteChunks deletes the given chunk IDs and reports how many rows
// actually existed.
func (e *Engine) DeleteChunks(ctx context.Context, ids []string) (int, error) {
	var n int
	for _, id := range ids {
		deleted, err := e.deleteChunk(ctx, e.db, id)
		if err != nil {
			return n, err
		}
		if deleted {
			n++
		}
	}
	return n, nil
}

// PurgeOptions narrows a bulk deletion sweep.
type PurgeOptions struct {
	AgentID string // "" = all agents
	Before  time.Time
}

// Purge deletes every chunk created before opts.Before (optionally
// restricted to one agent) in a single transaction, returning the
// number of rows removed.
func (e *Engine) Purge(ctx context.Context, opts PurgeOptions) (int, error) {
	query := `DELETE FROM chunks WHERE created_at < ?`
	args := []any{opts.Before.UTC().Format(time.RFC3339Nano)}
	if opts.AgentID != "" {
		query += ` AND agent_id = ?`
		args = append(args, opts.AgentID)
	}

	var affected int64
	err := e.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return int(affected), err
}
