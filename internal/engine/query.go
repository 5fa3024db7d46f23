package engine

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"
)

// stmtCache is a simple prepare-on-demand cache of *sql.Stmt keyed by the
// query text. It is shared read-mostly across all query-layer calls.
type stmtCache struct {
	db *sql.DB
	mu sync.Mutex
	m  map[string]*sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, m: make(map[string]*sql.Stmt)}
}

func (c *stmtCache) prepare(query string) (*sql.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stmt, ok := c.m[query]; ok {
		return stmt, nil
	}
	stmt, err := c.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	c.m[query] = stmt
	return stmt, nil
}

func (c *stmtCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, stmt := range c.m {
		stmt.Close()
	}
}

// normalizeScope trims whitespace and treats a missing/absent scope as
// the global (empty) partition.
func normalizeScope(scope string) string {
	return strings.TrimSpace(scope)
}

// normalizeScopes trims and de-duplicates a scope list, preserving first
// occurrence order.
func normalizeScopes(scopes []string) []string {
	seen := make(map[string]bool, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = normalizeScope(s)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

const chunkColumns = `id, agent_id, scope, content, content_hash, embedding, metadata, kind,
	running_intensity, encounter_count, access_count, last_accessed_at, superseded_by, created_at`

func scanChunk(scan func(dest ...any) error) (*Chunk, error) {
	var c Chunk
	var contentHash, metadata, supersededBy sql.NullString
	var lastAccessed, created string
	var kind string
	var embeddingBlob []byte
	if err := scan(&c.ID, &c.AgentID, &c.Scope, &c.Content, &contentHash, &embeddingBlob,
		&metadata, &kind, &c.RunningIntensity, &c.EncounterCount, &c.AccessCount,
		&lastAccessed, &supersededBy, &created); err != nil {
		return nil, err
	}
	c.Embedding = vectorFromBlob(embeddingBlob)
	c.ContentHash = contentHash.String
	c.Metadata = metadata.String
	c.SupersededBy = supersededBy.String
	c.Kind = Kind(kind)

	var err error
	c.LastAccessedAt, err = time.Parse(time.RFC3339Nano, lastAccessed)
	if err != nil {
		return nil, err
	}
	c.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// getActiveChunks returns active chunks of the given kind for agent,
// ordered by last_accessed_at DESC, clamped by limit (-1 = unlimited).
// An empty, non-nil scopes slice returns zero rows; a nil scopes slice
// means "no scope filter".
func (e *Engine) getActiveChunks(ctx context.Context, agent string, kind Kind, limit int, scopes []string) ([]*Chunk, error) {
	return e.queryActiveChunks(ctx, agent, string(kind), limit, scopes)
}

// getAllActiveChunks returns active chunks of both kinds.
func (e *Engine) getAllActiveChunks(ctx context.Context, agent string, limit int, scopes []string) ([]*Chunk, error) {
	return e.queryActiveChunks(ctx, agent, "", limit, scopes)
}

func (e *Engine) queryActiveChunks(ctx context.Context, agent, kind string, limit int, scopes []string) ([]*Chunk, error) {
	if scopes != nil && len(scopes) == 0 {
		return nil, nil
	}

	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE agent_id = ? AND superseded_by IS NULL`
	args := []any{agent}

	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}

	if scopes != nil {
		norm := normalizeScopes(scopes)
		placeholders := make([]string, len(norm))
		for i, s := range norm {
			placeholders[i] = "?"
			args = append(args, s)
		}
		query += ` AND scope IN (` + strings.Join(placeholders, ",") + `)`
	}

	query += ` ORDER BY last_accessed_at DESC`
	if limit >= 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
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

// getMemoryByHash returns the at-most-one active memory row for
// (agent, scope, hash).
func (e *Engine) getMemoryByHash(ctx context.Context, agent, hash, scope string) (*Chunk, error) {
	scope = normalizeScope(scope)
	stmt, err := e.stmts.prepare(`SELECT ` + chunkColumns + ` FROM chunks
		WHERE agent_id = ? AND scope = ? AND content_hash = ? AND kind = 'memory' AND superseded_by IS NULL`)
	if err != nil {
		return nil, err
	}
	row := stmt.QueryRowContext(ctx, agent, scope, hash)
	c, err := scanChunk(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// getBlockByKey returns the block for (agent, scope, key), or nil if
// absent (not an error).
func (e *Engine) getBlockByKey(ctx context.Context, agent, scope, key string) (*Block, error) {
	scope = normalizeScope(scope)
	stmt, err := e.stmts.prepare(`SELECT agent_id, scope, key, value, updated_at FROM memory_blocks
		WHERE agent_id = ? AND scope = ? AND key = ?`)
	if err != nil {
		return nil, err
	}
	row := stmt.QueryRowContext(ctx, agent, scope, key)
	var b Block
	var updated string
	err = row.Scan(&b.AgentID, &b.Scope, &b.Key, &b.Value, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertChunk inserts a new chunk, generating its ID if empty. It may be
// called within or outside a transaction via exec.
func (e *Engine) insertChunk(ctx context.Context, exec execer, c *Chunk) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.LastAccessedAt.IsZero() {
		c.LastAccessedAt = c.CreatedAt
	}
	if c.EncounterCount == 0 {
		c.EncounterCount = 1
	}
	c.RunningIntensity = clampIntensity(c.RunningIntensity)

	var hash, meta, superseded any
	if c.ContentHash != "" {
		hash = c.ContentHash
	}
	if c.Metadata != "" {
		meta = c.Metadata
	}
	if c.SupersededBy != "" {
		superseded = c.SupersededBy
	}

	_, err := exec.ExecContext(ctx, `INSERT INTO chunks
		(id, agent_id, scope, content, content_hash, embedding, metadata, kind,
		 running_intensity, encounter_count, access_count, last_accessed_at, superseded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AgentID, normalizeScope(c.Scope), c.Content, hash, vectorToBlob(c.Embedding), meta, string(c.Kind),
		c.RunningIntensity, c.EncounterCount, c.AccessCount,
		c.LastAccessedAt.Format(time.RFC3339Nano), superseded, c.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// reinforceChunk updates intensity, increments encounter and access
// counts, and refreshes last_accessed_at to now.
func (e *Engine) reinforceChunk(ctx context.Context, id string, newIntensity float64, now time.Time) error {
	_, err := e.db.ExecContext(ctx, `UPDATE chunks SET
		running_intensity = ?,
		encounter_count = encounter_count + 1,
		access_count = access_count + 1,
		last_accessed_at = ?
		WHERE id = ?`, clampIntensity(newIntensity), now.Format(time.RFC3339Nano), id)
	return err
}

// touchChunk applies the retrieval boost: increments access_count,
// refreshes last_accessed_at, and sets running_intensity to boosted.
func (e *Engine) touchChunk(ctx context.Context, id string, boosted float64, now time.Time) error {
	_, err := e.db.ExecContext(ctx, `UPDATE chunks SET
		running_intensity = ?,
		access_count = access_count + 1,
		last_accessed_at = ?
		WHERE id = ?`, clampIntensity(boosted), now.Format(time.RFC3339Nano), id)
	return err
}

// supersedeChunk marks oldID as superseded by newID.
func (e *Engine) supersedeChunk(ctx context.Context, exec execer, newID, oldID string) error {
	_, err := exec.ExecContext(ctx, `UPDATE chunks SET superseded_by = ? WHERE id = ?`, newID, oldID)
	return err
}

// clearSupersededByScoped resurrects chunks directly superseded by
// target, scoped to a single agent and scope so cross-agent stale
// references are never touched.
func (e *Engine) clearSupersededByScoped(ctx context.Context, exec execer, target, agent, scope string) error {
	_, err := exec.ExecContext(ctx, `UPDATE chunks SET superseded_by = NULL
		WHERE superseded_by = ? AND agent_id = ? AND scope = ?`, target, agent, normalizeScope(scope))
	return err
}

// deleteChunk removes a chunk by id and reports whether a row was
// deleted.
func (e *Engine) deleteChunk(ctx context.Context, exec execer, id string) (bool, error) {
	res, err := exec.ExecContext(ctx, `DELETE FROM chunks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// upsertBlock inserts or replaces the block at (agent, scope, key).
func (e *Engine) upsertBlock(ctx context.Context, agent, scope, key, value string, now time.Time) error {
	scope = normalizeScope(scope)
	_, err := e.db.ExecContext(ctx, `INSERT INTO memory_blocks (agent_id, scope, key, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(agent_id, scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		agent, scope, key, value, now.Format(time.RFC3339Nano))
	return err
}

// getChunkByID loads a single chunk regardless of active/superseded
// state, for use by the mutation API.
func (e *Engine) getChunkByID(ctx context.Context, id string) (*Chunk, error) {
	row := e.db.QueryRowContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	c, err := scanChunk(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// isUniqueConstraintErr reports whether err looks like a SQLite unique
// constraint violation. go-sqlite3 surfaces this as a *sqlite3.Error
// with an "UNIQUE constraint failed" message; matching on the message is
// the pragmatic cross-driver check the teacher's own code uses for
// storage-layer error classification.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isBusyOrLockedErr reports whether err is a transient SQLite busy/locked
// condition, the only class of storage error the recall engine's
// best-effort retrieval boost is permitted to swallow.
func isBusyOrLockedErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
