// Package historydb persists sessions and their message history to
// SQLite (spec §6, history.db). Grounded in shape on
// internal/journal's sql.Open/WAL/embedded-schema idiom (itself
// grounded on haasonsaas-nexus's internal/sessions/cockroach.go and
// migrate.go), replacing the teacher's internal/session.Store, which
// persists one JSON file per session under
// ~/.claude/projects/<hash>/sessions/ instead.
package historydb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielchristiancazares/forge/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	created_at    INTEGER NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	active_branch TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER NOT NULL,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq        INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// SessionMeta is a session row without its messages.
type SessionMeta struct {
	ID           string
	CreatedAt    time.Time
	Title        string
	ActiveBranch string
}

// Store is the handle onto history.db.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the history database at path in WAL
// mode and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("historydb: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("historydb: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("historydb: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// CreateSession inserts a new session row.
func (s *Store) CreateSession(ctx context.Context, id, title string, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, title) VALUES (?, ?, ?)`,
		id, createdAt.UnixNano(), title)
	if err != nil {
		return fmt.Errorf("historydb: create session %s: %w", id, err)
	}
	return nil
}

// SetActiveBranch records which branch of a session's history is
// currently live (used when a session has been rewound and forked).
func (s *Store) SetActiveBranch(ctx context.Context, sessionID, branch string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET active_branch = ? WHERE id = ?`, branch, sessionID)
	if err != nil {
		return fmt.Errorf("historydb: set active branch for %s: %w", sessionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("historydb: no such session %s", sessionID)
	}
	return nil
}

// AppendMessage persists entry as the next message of sessionID. seq
// must be strictly increasing per session; callers derive it from
// domain.History's entry index.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, seq int, entry domain.Entry) error {
	kind, payload, err := encodeMessage(entry.Message)
	if err != nil {
		return fmt.Errorf("historydb: encode message %d: %w", entry.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, seq, kind, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		int64(entry.ID), sessionID, seq, kind, payload, entry.Message.Timestamp().UnixNano())
	if err != nil {
		return fmt.Errorf("historydb: append message %d: %w", entry.ID, err)
	}
	return nil
}

// LoadSession returns every message of sessionID in seq order, ready
// to be replayed into a domain.History via AppendRestored.
func (s *Store) LoadSession(ctx context.Context, sessionID string) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, payload, created_at FROM messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("historydb: load session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var id int64
		var kind string
		var payload []byte
		var createdAtNanos int64
		if err := rows.Scan(&id, &kind, &payload, &createdAtNanos); err != nil {
			return nil, fmt.Errorf("historydb: scan message row: %w", err)
		}
		msg, err := decodeMessage(kind, payload, time.Unix(0, createdAtNanos))
		if err != nil {
			return nil, fmt.Errorf("historydb: decode message %d: %w", id, err)
		}
		entries = append(entries, domain.Entry{ID: domain.MessageId(id), Message: msg})
	}
	return entries, rows.Err()
}

// ListSessions returns every session, most recently created first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, title, active_branch FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("historydb: list sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var m SessionMeta
		var createdAtNanos int64
		if err := rows.Scan(&m.ID, &createdAtNanos, &m.Title, &m.ActiveBranch); err != nil {
			return nil, fmt.Errorf("historydb: scan session row: %w", err)
		}
		m.CreatedAt = time.Unix(0, createdAtNanos)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// MostRecentSession returns the session with the latest created_at,
// or ok=false if none exist.
func (s *Store) MostRecentSession(ctx context.Context) (SessionMeta, bool, error) {
	metas, err := s.ListSessions(ctx)
	if err != nil {
		return SessionMeta{}, false, err
	}
	if len(metas) == 0 {
		return SessionMeta{}, false, nil
	}
	return metas[0], true, nil
}
