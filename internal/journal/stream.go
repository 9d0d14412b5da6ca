// Package journal implements the two write-ahead logs that make
// streaming and tool execution crash-recoverable: the stream journal
// (one row sequence per provider streaming call) and the tool journal
// (one row sequence per tool-call batch). Grounded on the teacher's
// lack of any such layer — the teacher persists only a finished
// session snapshot (internal/session/session.go) — so the SQLite
// access pattern (sql.DB wrapping, prepared statements, %w-wrapped
// errors) is grounded on haasonsaas-nexus's internal/sessions/cockroach.go,
// re-targeted from CockroachDB/lib/pq to modernc.org/sqlite so the
// journal has no CGo dependency and ships as a single file per spec §6.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// StepId scopes a sequence of stream journal entries to one provider
// streaming call.
type StepId int64

// EntryKind discriminates a stream journal entry's payload shape.
type EntryKind string

const (
	KindBegin                  EntryKind = "begin"
	KindTextDelta              EntryKind = "text_delta"
	KindThinkingDelta          EntryKind = "thinking_delta"
	KindThinkingSignatureDelta EntryKind = "thinking_signature_delta"
	KindReasoningItem          EntryKind = "reasoning_item"
	KindToolCallStart          EntryKind = "tool_call_start"
	KindToolCallDelta          EntryKind = "tool_call_delta"
	KindUsage                  EntryKind = "usage"
	KindSeal                   EntryKind = "seal"
)

// SealKind discriminates how a step ended.
type SealKind string

const (
	SealComplete   SealKind = "complete"
	SealIncomplete SealKind = "incomplete"
	SealErrored    SealKind = "errored"
)

// SealOutcome is the terminal record closing a step.
type SealOutcome struct {
	Kind   SealKind
	Reason string // set for Incomplete and Errored
}

func Complete() SealOutcome                { return SealOutcome{Kind: SealComplete} }
func Incomplete(reason string) SealOutcome { return SealOutcome{Kind: SealIncomplete, Reason: reason} }
func Errored(message string) SealOutcome   { return SealOutcome{Kind: SealErrored, Reason: message} }

// Entry is one row of the stream journal, in receive order within its
// step.
type Entry struct {
	Seq     int
	Kind    EntryKind
	Payload []byte
}

// ToolCallStartPayload is the JSON shape of a KindToolCallStart entry.
type ToolCallStartPayload struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	ThoughtSignaturePresent bool   `json:"thought_signature_present"`
	ThoughtSignature        string `json:"thought_signature,omitempty"`
}

// ToolCallDeltaPayload is the JSON shape of a KindToolCallDelta entry.
type ToolCallDeltaPayload struct {
	ID        string `json:"id"`
	ArgsChunk string `json:"args_chunk"`
}

// UsagePayload is the JSON shape of a KindUsage entry.
type UsagePayload struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
}

const streamSchema = `
CREATE TABLE IF NOT EXISTS steps (
	step_id     INTEGER PRIMARY KEY,
	session_id  TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	model       TEXT NOT NULL,
	prompt_digest TEXT NOT NULL,
	seal_kind   TEXT,
	seal_reason TEXT,
	sealed_at   TEXT
);
CREATE TABLE IF NOT EXISTS entries (
	step_id INTEGER NOT NULL,
	seq     INTEGER NOT NULL,
	kind    TEXT NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (step_id, seq)
);
`

// StreamJournal is the durable log of provider streaming calls.
type StreamJournal struct {
	db   *sql.DB
	next map[StepId]int // next sequence number per open step
}

// OpenStreamJournal opens (creating if absent) the stream journal at
// path, in WAL mode per spec §6.
func OpenStreamJournal(ctx context.Context, path string) (*StreamJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening stream journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL on stream journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, streamSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating stream journal schema: %w", err)
	}
	return &StreamJournal{db: db, next: make(map[StepId]int)}, nil
}

func (j *StreamJournal) Close() error { return j.db.Close() }

// Begin opens a new step. The step id is the single source of truth
// used by crash recovery to locate partial state.
func (j *StreamJournal) Begin(ctx context.Context, stepID StepId, sessionID, model, promptDigest string, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO steps (step_id, session_id, started_at, model, prompt_digest) VALUES (?, ?, ?, ?, ?)`,
		int64(stepID), sessionID, startedAt.Format(time.RFC3339Nano), model, promptDigest)
	if err != nil {
		return fmt.Errorf("journaling step begin: %w", err)
	}
	j.next[stepID] = 0
	return nil
}

func (j *StreamJournal) append(ctx context.Context, stepID StepId, kind EntryKind, payload []byte) error {
	seq := j.next[stepID]
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO entries (step_id, seq, kind, payload) VALUES (?, ?, ?, ?)`,
		int64(stepID), seq, string(kind), payload)
	if err != nil {
		return fmt.Errorf("journaling %s entry: %w", kind, err)
	}
	j.next[stepID] = seq + 1
	return nil
}

func (j *StreamJournal) AppendTextDelta(ctx context.Context, stepID StepId, text string) error {
	return j.append(ctx, stepID, KindTextDelta, []byte(text))
}

func (j *StreamJournal) AppendThinkingDelta(ctx context.Context, stepID StepId, text string) error {
	return j.append(ctx, stepID, KindThinkingDelta, []byte(text))
}

func (j *StreamJournal) AppendThinkingSignatureDelta(ctx context.Context, stepID StepId, delta string) error {
	return j.append(ctx, stepID, KindThinkingSignatureDelta, []byte(delta))
}

func (j *StreamJournal) AppendReasoningItem(ctx context.Context, stepID StepId, item string) error {
	return j.append(ctx, stepID, KindReasoningItem, []byte(item))
}

func (j *StreamJournal) AppendToolCallStart(ctx context.Context, stepID StepId, p ToolCallStartPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding tool call start: %w", err)
	}
	return j.append(ctx, stepID, KindToolCallStart, data)
}

func (j *StreamJournal) AppendToolCallDelta(ctx context.Context, stepID StepId, p ToolCallDeltaPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding tool call delta: %w", err)
	}
	return j.append(ctx, stepID, KindToolCallDelta, data)
}

func (j *StreamJournal) AppendUsage(ctx context.Context, stepID StepId, p UsagePayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding usage: %w", err)
	}
	return j.append(ctx, stepID, KindUsage, data)
}

// Seal closes a step. Seal is terminal: a second call for the same
// step returns an error rather than silently overwriting the first.
func (j *StreamJournal) Seal(ctx context.Context, stepID StepId, outcome SealOutcome) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE steps SET seal_kind = ?, seal_reason = ?, sealed_at = ? WHERE step_id = ? AND seal_kind IS NULL`,
		string(outcome.Kind), outcome.Reason, time.Now().Format(time.RFC3339Nano), int64(stepID))
	if err != nil {
		return fmt.Errorf("sealing step %d: %w", stepID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sealing step %d: %w", stepID, err)
	}
	if n == 0 {
		return fmt.Errorf("step %d already sealed or does not exist", stepID)
	}
	delete(j.next, stepID)
	return nil
}

// IncompleteStep is a step found without a terminal Seal at startup.
type IncompleteStep struct {
	StepID    StepId
	SessionID string
	Model     string
	StartedAt time.Time
	Entries   []Entry
}

// RecoverIncomplete scans the stream journal for steps with no Seal
// row and returns their accumulated entries in sequence order, so the
// caller can reconstruct partial assistant content and finalize each
// step with Incomplete("crash").
func (j *StreamJournal) RecoverIncomplete(ctx context.Context) ([]IncompleteStep, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT step_id, session_id, model, started_at FROM steps WHERE seal_kind IS NULL ORDER BY step_id`)
	if err != nil {
		return nil, fmt.Errorf("scanning incomplete steps: %w", err)
	}
	defer rows.Close()

	var incomplete []IncompleteStep
	for rows.Next() {
		var s IncompleteStep
		var stepID int64
		var startedAt string
		if err := rows.Scan(&stepID, &s.SessionID, &s.Model, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning incomplete step row: %w", err)
		}
		s.StepID = StepId(stepID)
		s.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		incomplete = append(incomplete, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range incomplete {
		entries, err := j.entriesForStep(ctx, incomplete[i].StepID)
		if err != nil {
			return nil, err
		}
		incomplete[i].Entries = entries
	}
	return incomplete, nil
}

func (j *StreamJournal) entriesForStep(ctx context.Context, stepID StepId) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, kind, payload FROM entries WHERE step_id = ? ORDER BY seq`, int64(stepID))
	if err != nil {
		return nil, fmt.Errorf("reading entries for step %d: %w", stepID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.Seq, &kind, &e.Payload); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		e.Kind = EntryKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
