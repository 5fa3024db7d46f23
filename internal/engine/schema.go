package engine

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Engine owns the database handle, the prepared-statement cache, and the
// injected capabilities. It has no implicit global state: callers pass
// it around explicitly and it does not outlive the capabilities it
// borrows.
type Engine struct {
	db    *sql.DB
	stmts *stmtCache
	embed EmbedFn
	llm   LlmClient

	maxSearchFacts  int
	maxSearchChunks int
	maxTextLength   int
}

// Option configures an Engine at Open time.
type Option func(*Engine)

// WithLlmClient injects the LLM capability used by extraction and
// classification. Without it, remember_facts cannot extract facts.
func WithLlmClient(c LlmClient) Option {
	return func(e *Engine) { e.llm = c }
}

// WithMaxSearchFacts overrides the default working-set cap for
// remember_facts (default 10,000).
func WithMaxSearchFacts(n int) Option {
	return func(e *Engine) { e.maxSearchFacts = n }
}

// WithMaxSearchChunks overrides the default recall scan cap (default
// 10,000).
func WithMaxSearchChunks(n int) Option {
	return func(e *Engine) { e.maxSearchChunks = n }
}

// WithMaxTextLength overrides the default remember_facts input length
// cap (default 10,000 characters).
func WithMaxTextLength(n int) Option {
	return func(e *Engine) { e.maxTextLength = n }
}

// Open opens (creating if necessary) the database at dbPath, applies
// schema and migrations, verifies the embedding-model pin, and returns
// a ready-to-use Engine. embed must not be nil; llm may be nil if the
// caller never invokes remember_facts.
func Open(dbPath string, embed EmbedFn, embeddingModel string, opts ...Option) (*Engine, error) {
	if embed == nil {
		return nil, fmt.Errorf("engine: embed capability is required")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("engine: failed to open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("engine: failed to set busy_timeout: %w", err)
	}

	e := &Engine{
		db:              db,
		embed:           embed,
		maxSearchFacts:  10000,
		maxSearchChunks: 10000,
		maxTextLength:   10000,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("engine: failed to init schema: %w", err)
	}

	if err := e.verifyEmbeddingModel(embeddingModel); err != nil {
		db.Close()
		return nil, err
	}

	e.stmts = newStmtCache(db)

	return e, nil
}

// Close releases the database handle and all cached prepared statements.
func (e *Engine) Close() error {
	if e.stmts != nil {
		e.stmts.Close()
	}
	return e.db.Close()
}

// DB exposes the underlying handle for callers that need direct SQL
// access; the package's own tests use it to inspect rows.
func (e *Engine) DB() *sql.DB { return e.db }

func (e *Engine) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		scope TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		content_hash TEXT,
		embedding BLOB NOT NULL,
		metadata TEXT,
		kind TEXT NOT NULL CHECK (kind IN ('fact', 'memory')),
		running_intensity REAL NOT NULL DEFAULT 0.5,
		encounter_count INTEGER NOT NULL DEFAULT 1,
		access_count INTEGER NOT NULL DEFAULT 0,
		last_accessed_at TEXT NOT NULL,
		superseded_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS memory_blocks (
		agent_id TEXT NOT NULL,
		scope TEXT NOT NULL DEFAULT '',
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (agent_id, scope, key)
	);

	CREATE TABLE IF NOT EXISTS engine_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := e.db.Exec(schema); err != nil {
		return err
	}

	if err := e.migrateScopeColumn(); err != nil {
		return err
	}

	indices := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_chunks_memory_dedup
		ON chunks(agent_id, scope, content_hash) WHERE kind = 'memory';
	CREATE INDEX IF NOT EXISTS idx_chunks_agent_kind ON chunks(agent_id, kind);
	CREATE INDEX IF NOT EXISTS idx_chunks_agent_last_accessed ON chunks(agent_id, last_accessed_at);
	CREATE INDEX IF NOT EXISTS idx_chunks_superseded_by ON chunks(superseded_by) WHERE superseded_by IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_chunks_agent_created ON chunks(agent_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_chunks_agent_scope ON chunks(agent_id, scope);
	`
	if _, err := e.db.Exec(indices); err != nil {
		return err
	}

	return nil
}

// migrateScopeColumn upgrades a database created before scope existed.
// Each table's rebuild commits in its own transaction, and every step
// is guarded by a columnExists probe so re-running against an
// already-migrated (or freshly created) database is a no-op.
func (e *Engine) migrateScopeColumn() error {
	if err := e.migrateChunksScope(); err != nil {
		return err
	}
	return e.migrateMemoryBlocksScope()
}

// migrateChunksScope adds the scope column to chunks and drops the
// pre-scope memory dedup index, which was keyed on plain
// (agent_id, content_hash). initSchema's CREATE UNIQUE INDEX IF NOT
// EXISTS below only fires once the name is free, so without the drop
// the stale definition would silently survive under the new name.
func (e *Engine) migrateChunksScope() error {
	hasScope, err := e.columnExists("chunks", "scope")
	if err != nil {
		return err
	}
	if hasScope {
		return nil
	}

	tx, err := e.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`ALTER TABLE chunks ADD COLUMN scope TEXT NOT NULL DEFAULT ''`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DROP INDEX IF EXISTS idx_chunks_memory_dedup`); err != nil {
		return err
	}
	return tx.Commit()
}

// migrateMemoryBlocksScope rebuilds memory_blocks onto a primary key
// that includes scope. SQLite cannot alter a primary key in place, so
// this creates the new table, copies existing rows in under the empty
// scope (the only scope that could have written them before scope
// existed), drops the old table, and renames the new one into place.
func (e *Engine) migrateMemoryBlocksScope() error {
	hasScope, err := e.columnExists("memory_blocks", "scope")
	if err != nil {
		return err
	}
	if hasScope {
		return nil
	}

	tx, err := e.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE memory_blocks_new (
			agent_id TEXT NOT NULL,
			scope TEXT NOT NULL DEFAULT '',
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (agent_id, scope, key)
		)`,
		`INSERT INTO memory_blocks_new (agent_id, scope, key, value, updated_at)
			SELECT agent_id, '', key, value, updated_at FROM memory_blocks`,
		`DROP TABLE memory_blocks`,
		`ALTER TABLE memory_blocks_new RENAME TO memory_blocks`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (e *Engine) columnExists(table, column string) (bool, error) {
	rows, err := e.db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// verifyEmbeddingModel records the embedding model on first open and
// fails with ErrModelMismatch on any later open with a different value.
func (e *Engine) verifyEmbeddingModel(model string) error {
	var existing string
	err := e.db.QueryRow(`SELECT value FROM engine_meta WHERE key = 'embedding_model'`).Scan(&existing)
	if err == sql.ErrNoRows {
		_, err = e.db.Exec(`INSERT INTO engine_meta (key, value) VALUES ('embedding_model', ?)`, model)
		return err
	}
	if err != nil {
		return err
	}
	if existing != model {
		return fmt.Errorf("%w: database pinned to %q, opened with %q", ErrModelMismatch, existing, model)
	}
	return nil
}
