package engine

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	e := setupTestEngine(t)

	var count int
	err := e.DB().QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('chunks', 'memory_blocks', 'engine_meta')`).Scan(&count)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 core tables, found %d", count)
	}
}

func TestOpenPinsEmbeddingModel(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "mnemos-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	e1, err := Open(dbPath, EmbedFunc(fakeEmbed), "model-a")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	e1.Close()

	_, err = Open(dbPath, EmbedFunc(fakeEmbed), "model-b")
	if !errors.Is(err, ErrModelMismatch) {
		t.Errorf("reopen with different model: err = %v, want ErrModelMismatch", err)
	}

	e3, err := Open(dbPath, EmbedFunc(fakeEmbed), "model-a")
	if err != nil {
		t.Fatalf("reopen with same model should succeed: %v", err)
	}
	e3.Close()
}

func TestOpenRejectsNilEmbedder(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "mnemos-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	_, err = Open(filepath.Join(tmpDir, "test.db"), nil, "model-a")
	if err == nil {
		t.Error("expected an error opening with a nil embedder")
	}
}

func TestMigrateScopeColumnIdempotent(t *testing.T) {
	e := setupTestEngine(t)

	if err := e.migrateScopeColumn(); err != nil {
		t.Fatalf("second migration call should be a no-op, got: %v", err)
	}

	has, err := e.columnExists("chunks", "scope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("expected scope column to exist")
	}
}

// TestMigrateScopeColumnRebuildsMemoryBlocksAndIndex seeds a pre-scope
// layout by hand (chunks/memory_blocks without a scope column, the old
// single-field dedup index) and asserts Open's migration path rebuilds
// memory_blocks' primary key, preserves its rows under the empty
// scope, and rebuilds the dedup index keyed on (agent_id, scope,
// content_hash) rather than leaving the stale definition in place.
func TestMigrateScopeColumnRebuildsMemoryBlocksAndIndex(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "mnemos-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	dbPath := filepath.Join(tmpDir, "pre-scope.db")

	raw, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	_, err = raw.Exec(`
		CREATE TABLE chunks (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
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
		CREATE TABLE memory_blocks (
			agent_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (agent_id, key)
		);
		CREATE TABLE engine_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE UNIQUE INDEX idx_chunks_memory_dedup
			ON chunks(agent_id, content_hash) WHERE kind = 'memory';
		INSERT INTO memory_blocks (agent_id, key, value, updated_at)
			VALUES ('a1', 'journal', 'pre-migration notes', '2024-01-01T00:00:00Z');
	`)
	if err != nil {
		t.Fatalf("seed pre-scope schema: %v", err)
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}

	e, err := Open(dbPath, EmbedFunc(fakeEmbed), "test-model")
	if err != nil {
		t.Fatalf("open against pre-scope database: %v", err)
	}
	defer e.Close()

	hasScope, err := e.columnExists("memory_blocks", "scope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasScope {
		t.Fatal("expected memory_blocks to gain a scope column")
	}

	var value, scope string
	err = e.DB().QueryRow(`SELECT scope, value FROM memory_blocks WHERE agent_id = 'a1' AND key = 'journal'`).Scan(&scope, &value)
	if err != nil {
		t.Fatalf("expected pre-migration row to survive: %v", err)
	}
	if scope != "" || value != "pre-migration notes" {
		t.Errorf("got scope=%q value=%q, want scope=\"\" value=%q", scope, value, "pre-migration notes")
	}

	var indexSQL string
	err = e.DB().QueryRow(`SELECT sql FROM sqlite_master WHERE type = 'index' AND name = 'idx_chunks_memory_dedup'`).Scan(&indexSQL)
	if err != nil {
		t.Fatalf("expected rebuilt dedup index to exist: %v", err)
	}
	if !strings.Contains(indexSQL, "scope") {
		t.Errorf("expected rebuilt dedup index to key on scope, got: %s", indexSQL)
	}
}

func TestColumnExistsUnknownColumn(t *testing.T) {
	e := setupTestEngine(t)

	has, err := e.columnExists("chunks", "does_not_exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Error("expected unknown column to report false")
	}
}

func TestMemoryDedupUniqueIndexEnforced(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	c1 := &Chunk{AgentID: "a1", Scope: "", Content: "x", ContentHash: "h1", Embedding: []float32{1, 0}, Kind: KindMemory, RunningIntensity: 0.5}
	if err := e.insertChunk(ctx, e.DB(), c1); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	c2 := &Chunk{AgentID: "a1", Scope: "", Content: "x", ContentHash: "h1", Embedding: []float32{1, 0}, Kind: KindMemory, RunningIntensity: 0.5}
	err := e.insertChunk(ctx, e.DB(), c2)
	if !isUniqueConstraintErr(err) {
		t.Errorf("expected a unique constraint violation, got: %v", err)
	}
}
