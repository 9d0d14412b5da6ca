package toolloop

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/metrics"
	"github.com/danielchristiancazares/forge/internal/opstate"
)

// defaultOutputCap bounds how many bytes of a tool result are shown in
// the UI before truncation; the full result is always journaled.
const defaultOutputCap = 16 * 1024

// Result is one call's outcome after execution, ready to become a
// ToolResult message.
type Result struct {
	CallID      string
	Outcome     journal.CallOutcome
	DisplayText string
}

// ExecuteBatch runs every approved call in batch sequentially, in call
// order, journaling BeginCall/EndCall around each and CommitBatch once
// all approved calls have ended. Denied and Invalid calls are recorded
// without ever being dispatched to registry. Per spec §4.7, one call's
// failure never aborts the remainder.
func ExecuteBatch(
	ctx context.Context,
	j *journal.ToolJournal,
	registry Registry,
	approval *config.ApprovalPolicy,
	batch opstate.Batch,
	decision Decision,
	outputCapBytes int,
) ([]Result, error) {
	if outputCapBytes <= 0 {
		outputCapBytes = defaultOutputCap
	}

	calls := make([]journal.CallSpec, len(batch.Calls))
	for i, c := range batch.Calls {
		calls[i] = journal.CallSpec{ID: c.ID, Name: c.Name, Args: json.RawMessage(c.ArgsJSON)}
	}
	if err := j.BeginBatch(ctx, journal.ToolBatchId(batch.ID), batch.StepID, batch.Model.ID(), calls, time.Now()); err != nil {
		return nil, err
	}

	decisions := make(map[string]journal.Decision, len(batch.Calls))
	for i, c := range batch.Calls {
		if ResolveForCall(decision, i, len(batch.Calls)) {
			decisions[c.ID] = journal.DecisionApprove
		} else {
			decisions[c.ID] = journal.DecisionDeny
		}
	}
	if err := j.Approval(ctx, journal.ToolBatchId(batch.ID), decisions); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(batch.Calls))
	for i, call := range batch.Calls {
		approved := ResolveForCall(decision, i, len(batch.Calls))

		if err := j.BeginCall(ctx, journal.ToolBatchId(batch.ID), i, call.Name, time.Now()); err != nil {
			return nil, err
		}

		var outcome journal.CallOutcome
		var display string

		switch {
		case call.Invalid:
			outcome = journal.ErrOutcome("bad_args", "tool call arguments were not valid JSON")
			display = "invalid arguments; call was not executed"

		case !approved:
			outcome = journal.ErrOutcome("denied_by_user", "denied by user")
			display = "denied by user"

		default:
			outcome, display = executeOne(ctx, registry, approval, call, outputCapBytes)
		}

		if err := j.EndCall(ctx, journal.ToolBatchId(batch.ID), i, outcome, time.Now()); err != nil {
			return nil, err
		}

		results = append(results, Result{CallID: call.ID, Outcome: outcome, DisplayText: display})
	}

	commitStart := time.Now()
	err := j.CommitBatch(ctx, journal.ToolBatchId(batch.ID), "committed", time.Now())
	metrics.JournalFlushDuration.WithLabelValues("tool").Observe(time.Since(commitStart).Seconds())
	if err != nil {
		return nil, err
	}
	return results, nil
}

func executeOne(ctx context.Context, registry Registry, approval *config.ApprovalPolicy, call opstate.ParsedToolCall, outputCapBytes int) (journal.CallOutcome, string) {
	tool, ok := registry.Lookup(call.Name)
	if !ok {
		return journal.ErrOutcome("unknown_tool", fmt.Sprintf("no tool registered for %q", call.Name)), "unknown tool"
	}

	timeout := tool.Timeout()
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := tool.Execute(callCtx, json.RawMessage(call.ArgsJSON))
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return journal.TimeoutOutcome(), fmt.Sprintf("timed out after %s", timeout)
		}
		if callCtx.Err() == context.Canceled {
			return journal.CancelledOutcome(), "cancelled"
		}
		return journal.ErrOutcome("execution_failed", err.Error()), err.Error()
	}

	display := truncateForDisplay(sanitizeForDisplay(output), outputCapBytes)
	return journal.OkOutcome(output), display
}

// ToResultMessages converts executor Results into ToolResult domain
// messages in call order, ready for History.Append.
func ToResultMessages(batch opstate.Batch, results []Result) []domain.Message {
	msgs := make([]domain.Message, len(results))
	for i, r := range results {
		isError := r.Outcome.Kind != journal.CallOk
		msgs[i] = domain.NewToolResultMessage(r.CallID, batch.Calls[i].Name, r.DisplayText, isError, time.Now())
	}
	return msgs
}
