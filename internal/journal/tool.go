package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ToolBatchId scopes a sequence of tool journal entries to one batch
// of tool calls originating from a single assistant message.
type ToolBatchId int64

// CallOutcomeKind discriminates how a single tool call ended.
type CallOutcomeKind string

const (
	CallOk        CallOutcomeKind = "ok"
	CallErr       CallOutcomeKind = "err"
	CallTimeout   CallOutcomeKind = "timeout"
	CallCancelled CallOutcomeKind = "cancelled"
)

// CallOutcome is the terminal record of one tool call within a batch.
type CallOutcome struct {
	Kind    CallOutcomeKind
	Content string // set for CallOk
	Err     string // set for CallErr: the forgeerr.ToolErrorKind name
	Message string // set for CallErr
}

func OkOutcome(content string) CallOutcome { return CallOutcome{Kind: CallOk, Content: content} }
func ErrOutcome(kind, message string) CallOutcome {
	return CallOutcome{Kind: CallErr, Err: kind, Message: message}
}
func TimeoutOutcome() CallOutcome   { return CallOutcome{Kind: CallTimeout} }
func CancelledOutcome() CallOutcome { return CallOutcome{Kind: CallCancelled} }

// CallSpec describes one call in a batch as parsed from the stream,
// before approval.
type CallSpec struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Decision is the per-call approval verdict recorded by Approval.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

const toolSchema = `
CREATE TABLE IF NOT EXISTS batches (
	batch_id          INTEGER PRIMARY KEY,
	step_id           INTEGER NOT NULL,
	model             TEXT NOT NULL,
	calls_payload     BLOB NOT NULL,
	approval_payload  BLOB,
	started_at        TEXT NOT NULL,
	committed_at      TEXT,
	commit_kind       TEXT
);
CREATE TABLE IF NOT EXISTS calls (
	batch_id        INTEGER NOT NULL,
	call_index      INTEGER NOT NULL,
	name            TEXT NOT NULL,
	started_at      TEXT,
	ended_at        TEXT,
	outcome_kind    TEXT,
	outcome_payload BLOB,
	PRIMARY KEY (batch_id, call_index)
);
`

// ToolJournal is the durable log of tool-call batches.
type ToolJournal struct {
	db *sql.DB
}

// OpenToolJournal opens (creating if absent) the tool journal at
// path, in WAL mode per spec §6.
func OpenToolJournal(ctx context.Context, path string) (*ToolJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening tool journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL on tool journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, toolSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tool journal schema: %w", err)
	}
	return &ToolJournal{db: db}, nil
}

func (j *ToolJournal) Close() error { return j.db.Close() }

// BeginBatch opens a new batch. calls is the full set of tool calls
// parsed from the triggering stream step, in call order.
func (j *ToolJournal) BeginBatch(ctx context.Context, batchID ToolBatchId, stepID StepId, model string, calls []CallSpec, startedAt time.Time) error {
	payload, err := json.Marshal(calls)
	if err != nil {
		return fmt.Errorf("encoding batch calls: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO batches (batch_id, step_id, model, calls_payload, started_at) VALUES (?, ?, ?, ?, ?)`,
		int64(batchID), int64(stepID), model, payload, startedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("journaling batch begin: %w", err)
	}
	return nil
}

// Approval records the batch-level approval decisions.
func (j *ToolJournal) Approval(ctx context.Context, batchID ToolBatchId, decisions map[string]Decision) error {
	payload, err := json.Marshal(decisions)
	if err != nil {
		return fmt.Errorf("encoding approval decisions: %w", err)
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE batches SET approval_payload = ? WHERE batch_id = ?`, payload, int64(batchID))
	if err != nil {
		return fmt.Errorf("journaling approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("approval for unknown batch %d", batchID)
	}
	return nil
}

// BeginCall records the start of call_index. Callers must call
// BeginCall for index i+1 only after EndCall for index i, enforcing
// the batch's sequential-execution invariant.
func (j *ToolJournal) BeginCall(ctx context.Context, batchID ToolBatchId, callIndex int, name string, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO calls (batch_id, call_index, name, started_at) VALUES (?, ?, ?, ?)`,
		int64(batchID), callIndex, name, startedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("journaling call begin: %w", err)
	}
	return nil
}

// EndCall records the outcome of call_index.
func (j *ToolJournal) EndCall(ctx context.Context, batchID ToolBatchId, callIndex int, outcome CallOutcome, endedAt time.Time) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encoding call outcome: %w", err)
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE calls SET ended_at = ?, outcome_kind = ?, outcome_payload = ? WHERE batch_id = ? AND call_index = ?`,
		endedAt.Format(time.RFC3339Nano), string(outcome.Kind), payload, int64(batchID), callIndex)
	if err != nil {
		return fmt.Errorf("journaling call end: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("end call for batch %d index %d with no matching begin", batchID, callIndex)
	}
	return nil
}

// CommitBatch closes a batch. CommitBatch is terminal.
func (j *ToolJournal) CommitBatch(ctx context.Context, batchID ToolBatchId, commitKind string, sealedAt time.Time) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE batches SET committed_at = ?, commit_kind = ? WHERE batch_id = ? AND committed_at IS NULL`,
		sealedAt.Format(time.RFC3339Nano), commitKind, int64(batchID))
	if err != nil {
		return fmt.Errorf("committing batch %d: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("committing batch %d: %w", batchID, err)
	}
	if n == 0 {
		return fmt.Errorf("batch %d already committed or does not exist", batchID)
	}
	return nil
}

// RecoveredCall is one call's journaled state as found at startup.
type RecoveredCall struct {
	Index     int
	Name      string
	Completed bool
	Outcome   CallOutcome
}

// RecoveredBatch is a batch found without a terminal CommitBatch at
// startup.
type RecoveredBatch struct {
	BatchID ToolBatchId
	StepID  StepId
	Model   string
	Calls   []CallSpec
	Done    []RecoveredCall // calls with a recorded BeginCall, in index order
}

// RecoverUncommitted scans the tool journal for batches with no
// CommitBatch row. A batch with no BeginCall at all is discarded
// silently, per the recovery contract: nothing irreversible happened
// for it. Batches with at least one BeginCall are returned for the
// engine to surface in ToolRecovery, where the only disposition the
// engine offers is abandon.
func (j *ToolJournal) RecoverUncommitted(ctx context.Context) ([]RecoveredBatch, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT batch_id, step_id, model, calls_payload FROM batches WHERE committed_at IS NULL ORDER BY batch_id`)
	if err != nil {
		return nil, fmt.Errorf("scanning uncommitted batches: %w", err)
	}
	defer rows.Close()

	var candidates []RecoveredBatch
	for rows.Next() {
		var b RecoveredBatch
		var batchID, stepID int64
		var callsPayload []byte
		if err := rows.Scan(&batchID, &stepID, &b.Model, &callsPayload); err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		b.BatchID = ToolBatchId(batchID)
		b.StepID = StepId(stepID)
		if err := json.Unmarshal(callsPayload, &b.Calls); err != nil {
			return nil, fmt.Errorf("decoding batch %d calls: %w", b.BatchID, err)
		}
		candidates = append(candidates, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var recovered []RecoveredBatch
	for _, b := range candidates {
		done, err := j.callsForBatch(ctx, b.BatchID)
		if err != nil {
			return nil, err
		}
		if len(done) == 0 {
			continue // discard: no BeginCall was ever journaled
		}
		b.Done = done
		recovered = append(recovered, b)
	}
	return recovered, nil
}

func (j *ToolJournal) callsForBatch(ctx context.Context, batchID ToolBatchId) ([]RecoveredCall, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT call_index, name, ended_at, outcome_kind, outcome_payload FROM calls WHERE batch_id = ? ORDER BY call_index`,
		int64(batchID))
	if err != nil {
		return nil, fmt.Errorf("reading calls for batch %d: %w", batchID, err)
	}
	defer rows.Close()

	var calls []RecoveredCall
	for rows.Next() {
		var c RecoveredCall
		var endedAt, outcomeKind sql.NullString
		var outcomePayload []byte
		if err := rows.Scan(&c.Index, &c.Name, &endedAt, &outcomeKind, &outcomePayload); err != nil {
			return nil, fmt.Errorf("scanning call row: %w", err)
		}
		if endedAt.Valid {
			c.Completed = true
			if err := json.Unmarshal(outcomePayload, &c.Outcome); err != nil {
				return nil, fmt.Errorf("decoding outcome for batch %d call %d: %w", batchID, c.Index, err)
			}
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}
