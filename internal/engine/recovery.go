package engine

import (
	"context"
	"fmt"

	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/opstate"
)

// Recover scans both journals for work left incomplete by a crash
// before the session that opened them exited cleanly. It runs once,
// before New, so the caller can fold any recovered text into the
// history it hands New and pass the recovered tool batches through.
//
// A step found by RecoverIncomplete never blocks startup on a user
// decision: spec §4.9's crash-recovery story for streaming is to seal
// it Incomplete and keep whatever text arrived, not to re-prompt.
// Tool batches are different, since a tool may have already taken an
// irreversible external action the engine cannot safely re-attempt
// silently; those are surfaced through ToolRecoveryState instead.
func Recover(ctx context.Context, sj *journal.StreamJournal, tj *journal.ToolJournal) ([]journal.RecoveredBatch, error) {
	incomplete, err := sj.RecoverIncomplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("recovering stream journal: %w", err)
	}
	for _, step := range incomplete {
		if err := sj.Seal(ctx, step.StepID, journal.Incomplete("crash")); err != nil {
			return nil, fmt.Errorf("sealing crashed step %d: %w", step.StepID, err)
		}
	}

	batches, err := tj.RecoverUncommitted(ctx)
	if err != nil {
		return nil, fmt.Errorf("recovering tool journal: %w", err)
	}
	return batches, nil
}

// enterToolRecovery transitions into ToolRecovery for one batch found
// uncommitted at startup. The tool journal only recorded the
// provider's model string, so ToolRecoveryState.Model is left unset
// and that string stays in Recovered.Model. Execution of the batch
// does not resume from ToolRecovery: the only disposition offered is
// abandon (see handleRecoveryKey).
func (e *Engine) enterToolRecovery(batch journal.RecoveredBatch) {
	_ = e.ops.ToToolRecovery(&opstate.ToolRecoveryState{
		Recovered: batch,
		StepID:    batch.StepID,
	})
}
