package engine

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"time"
)

const exportFormatVersion = 1

// ExportedChunk is the wire shape of one chunk in the export format.
type ExportedChunk struct {
	ID               string `json:"id"`
	AgentID          string `json:"agentId"`
	Scope            string `json:"scope"`
	Content          string `json:"content"`
	ContentHash      string `json:"contentHash,omitempty"`
	Embedding        string `json:"embedding"` // base64
	Metadata         string `json:"metadata,omitempty"`
	Kind             string `json:"kind"`
	RunningIntensity float64 `json:"runningIntensity"`
	EncounterCount   int    `json:"encounterCount"`
	AccessCount      int    `json:"accessCount"`
	LastAccessedAt   string `json:"lastAccessedAt"`
	SupersededBy     string `json:"supersededBy,omitempty"`
	CreatedAt        string `json:"createdAt"`
}

// ExportedBlock is the wire shape of one block in the export format.
type ExportedBlock struct {
	AgentID   string `json:"agentId"`
	Scope     string `json:"scope"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updatedAt"`
}

// Export is the top-level export document for one agent.
type Export struct {
	Version    int             `json:"version"`
	AgentID    string          `json:"agentId"`
	ExportedAt string          `json:"exportedAt"`
	Chunks     []ExportedChunk `json:"chunks"`
	Blocks     []ExportedBlock `json:"blocks"`
}

// ImportResult reports insert-or-ignore counts.
type ImportResult struct {
	ChunksInserted int
	ChunksSkipped  int
	BlocksInserted int
	BlocksSkipped  int
}

// ExportAgent serializes every chunk (active and superseded) and every
// block belonging to agentID.
func (e *Engine) ExportAgent(ctx context.Context, agentID string) (*Export, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE agent_id = ? ORDER BY created_at`, agentID)
	if err != nil {
		return nil, err
	}
	var chunks []ExportedChunk
	for rows.Next() {
		c, err := scanChunk(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		chunks = append(chunks, ExportedChunk{
			ID:               c.ID,
			AgentID:          c.AgentID,
			Scope:            c.Scope,
			Content:          c.Content,
			ContentHash:      c.ContentHash,
			Embedding:        base64.StdEncoding.EncodeToString(vectorToBlob(c.Embedding)),
			Metadata:         c.Metadata,
			Kind:             string(c.Kind),
			RunningIntensity: c.RunningIntensity,
			EncounterCount:   c.EncounterCount,
			AccessCount:      c.AccessCount,
			LastAccessedAt:   c.LastAccessedAt.Format(time.RFC3339Nano),
			SupersededBy:     c.SupersededBy,
			CreatedAt:        c.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	blockRows, err := e.db.QueryContext(ctx, `SELECT agent_id, scope, key, value, updated_at FROM memory_blocks WHERE agent_id = ? ORDER BY key`, agentID)
	if err != nil {
		return nil, err
	}
	defer blockRows.Close()

	var blocks []ExportedBlock
	for blockRows.Next() {
		var b ExportedBlock
		if err := blockRows.Scan(&b.AgentID, &b.Scope, &b.Key, &b.Value, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if err := blockRows.Err(); err != nil {
		return nil, err
	}

	return &Export{
		Version:    exportFormatVersion,
		AgentID:    agentID,
		ExportedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Chunks:     chunks,
		Blocks:     blocks,
	}, nil
}

// ImportAgent loads an Export document with insert-or-ignore semantics:
// a chunk or block whose primary key already exists is counted as
// skipped, never overwritten.
func (e *Engine) ImportAgent(ctx context.Context, exp *Export) (*ImportResult, error) {
	var result ImportResult

	err := e.withTx(ctx, func(tx *sql.Tx) error {
		for _, ec := range exp.Chunks {
			blob, err := base64.StdEncoding.DecodeString(ec.Embedding)
			if err != nil {
				return err
			}

			var hash, meta, superseded any
			if ec.ContentHash != "" {
				hash = ec.ContentHash
			}
			if ec.Metadata != "" {
				meta = ec.Metadata
			}
			if ec.SupersededBy != "" {
				superseded = ec.SupersededBy
			}

			res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO chunks
				(id, agent_id, scope, content, content_hash, embedding, metadata, kind,
				 running_intensity, encounter_count, access_count, last_accessed_at, superseded_by, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				ec.ID, ec.AgentID, ec.Scope, ec.Content, hash, blob, meta, ec.Kind,
				ec.RunningIntensity, ec.EncounterCount, ec.AccessCount,
				ec.LastAccessedAt, superseded, ec.CreatedAt)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n > 0 {
				result.ChunksInserted++
			} else {
				result.ChunksSkipped++
			}
		}

		for _, eb := range exp.Blocks {
			res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO memory_blocks
				(agent_id, scope, key, value, updated_at) VALUES (?, ?, ?, ?, ?)`,
				eb.AgentID, eb.Scope, eb.Key, eb.Value, eb.UpdatedAt)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n > 0 {
				result.BlocksInserted++
			} else {
				result.BlocksSkipped++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// MarshalExport renders an Export as indented JSON, matching the
// teacher's `--json` output convention.
func MarshalExport(exp *Export) ([]byte, error) {
	return json.MarshalIndent(exp, "", "  ")
}

// UnmarshalExport parses an export document.
func UnmarshalExport(data []byte) (*Export, error) {
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}
