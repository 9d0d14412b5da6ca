package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestToolJournal(t *testing.T) *ToolJournal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool_journal.db")
	j, err := OpenToolJournal(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestToolJournalFullBatchLifecycle(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)

	calls := []CallSpec{{ID: "c1", Name: "ListDir", Args: json.RawMessage(`{"path":"."}`)}}
	require.NoError(t, j.BeginBatch(ctx, 1, 1, "claude-sonnet-4-20250514", calls, time.Now()))
	require.NoError(t, j.Approval(ctx, 1, map[string]Decision{"c1": DecisionApprove}))
	require.NoError(t, j.BeginCall(ctx, 1, 0, "ListDir", time.Now()))
	require.NoError(t, j.EndCall(ctx, 1, 0, OkOutcome("a\nb\nc\n"), time.Now()))
	require.NoError(t, j.CommitBatch(ctx, 1, "committed", time.Now()))

	recovered, err := j.RecoverUncommitted(ctx)
	require.NoError(t, err)
	require.Empty(t, recovered)
}

func TestToolJournalCommitIsTerminal(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)

	require.NoError(t, j.BeginBatch(ctx, 1, 1, "claude-sonnet-4-20250514", nil, time.Now()))
	require.NoError(t, j.CommitBatch(ctx, 1, "committed", time.Now()))
	require.Error(t, j.CommitBatch(ctx, 1, "committed", time.Now()))
}

func TestToolJournalDiscardsBatchWithNoBeginCall(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)

	calls := []CallSpec{{ID: "c1", Name: "Bash", Args: json.RawMessage(`{"command":"ls"}`)}}
	require.NoError(t, j.BeginBatch(ctx, 1, 1, "claude-sonnet-4-20250514", calls, time.Now()))

	recovered, err := j.RecoverUncommitted(ctx)
	require.NoError(t, err)
	require.Empty(t, recovered, "a batch with no journaled BeginCall has nothing to recover")
}

func TestToolJournalRecoversPartialBatch(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)

	calls := []CallSpec{
		{ID: "c1", Name: "Bash", Args: json.RawMessage(`{"command":"ls"}`)},
		{ID: "c2", Name: "Bash", Args: json.RawMessage(`{"command":"pwd"}`)},
	}
	require.NoError(t, j.BeginBatch(ctx, 7, 3, "claude-sonnet-4-20250514", calls, time.Now()))
	require.NoError(t, j.BeginCall(ctx, 7, 0, "Bash", time.Now()))
	require.NoError(t, j.EndCall(ctx, 7, 0, OkOutcome("file.txt\n"), time.Now()))
	// crash before call index 1 starts

	recovered, err := j.RecoverUncommitted(ctx)
	require.NoError(t, err)
	require.Len(t, recovered, 1)
	require.Equal(t, ToolBatchId(7), recovered[0].BatchID)
	require.Len(t, recovered[0].Done, 1)
	require.True(t, recovered[0].Done[0].Completed)
	require.Equal(t, CallOk, recovered[0].Done[0].Outcome.Kind)
}

func TestToolJournalEndCallRequiresBeginCall(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)

	require.NoError(t, j.BeginBatch(ctx, 1, 1, "claude-sonnet-4-20250514", nil, time.Now()))
	err := j.EndCall(ctx, 1, 0, OkOutcome("x"), time.Now())
	require.Error(t, err)
}
