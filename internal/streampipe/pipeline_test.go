package streampipe

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/stretchr/testify/require"
)

func openTestPipeline(t *testing.T, stepID journal.StepId) (*Pipeline, *journal.StreamJournal) {
	t.Helper()
	ctx := context.Background()
	j, err := journal.OpenStreamJournal(ctx, filepath.Join(t.TempDir(), "stream_journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	model, err := domain.NewModelName(domain.ProviderClaude, "claude-sonnet-4-20250514")
	require.NoError(t, err)

	p, err := Open(ctx, j, stepID, "sess-1", model, "digest")
	require.NoError(t, err)
	return p, j
}

func TestPipelineAccumulatesTextAndSeals(t *testing.T) {
	ctx := context.Background()
	p, _ := openTestPipeline(t, 1)

	_, err := p.Apply(ctx, TextDelta("hi "))
	require.NoError(t, err)
	_, err = p.Apply(ctx, TextDelta("there"))
	require.NoError(t, err)

	require.Equal(t, "hi there", p.Text())

	outcome, err := p.Apply(ctx, Done())
	require.NoError(t, err)
	require.Equal(t, OutcomeDone, outcome)
}

func TestPipelineMarksUnparsableToolArgsInvalid(t *testing.T) {
	ctx := context.Background()
	p, _ := openTestPipeline(t, 1)

	_, err := p.Apply(ctx, ToolCallStart("c1", "ListDir", false))
	require.NoError(t, err)
	_, err = p.Apply(ctx, ToolCallArgsDelta("c1", `{"path":`))
	require.NoError(t, err)
	_, err = p.Apply(ctx, Done())
	require.NoError(t, err)

	calls := p.Finalize()
	require.Len(t, calls, 1)
	require.True(t, calls[0].Invalid)
}

func TestPipelineFinalizesWellFormedToolArgs(t *testing.T) {
	ctx := context.Background()
	p, _ := openTestPipeline(t, 1)

	_, err := p.Apply(ctx, ToolCallStart("c1", "ListDir", false))
	require.NoError(t, err)
	_, err = p.Apply(ctx, ToolCallArgsDelta("c1", `{"path":"."}`))
	require.NoError(t, err)

	calls := p.Finalize()
	require.Len(t, calls, 1)
	require.False(t, calls[0].Invalid)
	require.Equal(t, `{"path":"."}`, calls[0].ArgsJSON)
}

func TestPipelineErrorSealsErrored(t *testing.T) {
	ctx := context.Background()
	p, _ := openTestPipeline(t, 1)

	_, err := p.Apply(ctx, TextDelta("partial"))
	require.NoError(t, err)
	outcome, err := p.Apply(ctx, Error(errBoom))
	require.NoError(t, err)
	require.Equal(t, OutcomeErrored, outcome)
}

var errBoom = testErr("boom")

type testErr string

func (e testErr) Error() string { return string(e) }
