package engine

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
)

var validIdentifier = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// ConversationMessage is one row returned by the FTS adapter.
type ConversationMessage struct {
	Role      string
	Content   string
	CreatedAt string
}

// ConversationFTS is a read-only full-text search adapter over an
// externally-owned conversation table. The caller's schema is not
// managed here: table is expected to carry columns
// (id INTEGER PK, role TEXT, content TEXT, created_at TEXT) with a
// companion FTS5 virtual table named "<table>_fts" indexing content with
// content_rowid = id.
type ConversationFTS struct {
	db    *sql.DB
	table string
}

// NewConversationFTS validates table against the safe-identifier pattern
// and returns an adapter bound to it.
func NewConversationFTS(db *sql.DB, table string) (*ConversationFTS, error) {
	if !validIdentifier.MatchString(table) {
		return nil, ErrUnsafeIdentifier
	}
	return &ConversationFTS{db: db, table: table}, nil
}

// Search runs a MATCH query ranked by FTS5's bm25-derived rank, returning
// up to limit rows. On failure it classifies the error: a missing table
// or FTS module yields FtsError{fts_unavailable}; any other query-time
// error yields FtsError{query_error}; storage errors unrelated to the
// query (I/O, OOM) propagate unwrapped.
func (f *ConversationFTS) Search(ctx context.Context, query string, limit int) ([]ConversationMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	sqlQuery := `SELECT c.role, c.content, c.created_at
		FROM ` + f.table + `_fts AS fts
		JOIN ` + f.table + ` AS c ON c.id = fts.rowid
		WHERE fts.content MATCH ?
		ORDER BY rank
		LIMIT ?`

	rows, err := f.db.QueryContext(ctx, sqlQuery, query, limit)
	if err != nil {
		return nil, classifyFtsErr(err)
	}
	defer rows.Close()

	var out []ConversationMessage
	for rows.Next() {
		var m ConversationMessage
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, &FtsError{Code: "query_error"}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyFtsErr(err)
	}
	return out, nil
}

func classifyFtsErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such module") {
		return &FtsError{Code: "fts_unavailable"}
	}
	if strings.Contains(msg, "syntax error") || strings.Contains(msg, "fts5") || strings.Contains(msg, "malformed match") {
		return &FtsError{Code: "query_error"}
	}
	return err
}
