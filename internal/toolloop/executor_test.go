package toolloop

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/opstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	output  string
	err     error
	timeout time.Duration
}

func (s stubTool) Name() string                { return "Stub" }
func (s stubTool) InputSchema() json.RawMessage { return json.RawMessage(`{}`) }
func (s stubTool) Timeout() time.Duration {
	if s.timeout == 0 {
		return time.Second
	}
	return s.timeout
}
func (s stubTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

type stubRegistry map[string]Tool

func (r stubRegistry) Lookup(name string) (Tool, bool) {
	t, ok := r[name]
	return t, ok
}

func (r stubRegistry) List() []Tool {
	tools := make([]Tool, 0, len(r))
	for _, t := range r {
		tools = append(tools, t)
	}
	return tools
}

func openTestToolJournal(t *testing.T) *journal.ToolJournal {
	t.Helper()
	j, err := journal.OpenToolJournal(context.Background(), filepath.Join(t.TempDir(), "tool_journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func mustModel(t *testing.T) domain.ModelName {
	t.Helper()
	m, err := domain.NewModelName(domain.ProviderClaude, "claude-sonnet-4-20250514")
	require.NoError(t, err)
	return m
}

func TestExecuteBatchApproveAllRunsEveryCall(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)
	registry := stubRegistry{"ListDir": stubTool{output: "a\nb\nc\n"}}
	approval := config.NewApprovalPolicy(config.ApprovalConfig{Mode: "enabled"})

	batch := opstate.Batch{ID: 1, StepID: 1, Model: mustModel(t), Calls: []opstate.ParsedToolCall{
		{ID: "c1", Name: "ListDir", ArgsJSON: `{"path":"."}`},
	}}

	results, err := ExecuteBatch(ctx, j, registry, approval, batch, ApproveAll(), 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, journal.CallOk, results[0].Outcome.Kind)
	assert.Equal(t, "a\nb\nc\n", results[0].DisplayText)
}

func TestExecuteBatchDenyAllRecordsDeniedWithoutExecuting(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)
	executed := false
	registry := stubRegistry{"Bash": execTrackingTool{&executed}}
	approval := config.NewApprovalPolicy(config.ApprovalConfig{Mode: "enabled"})

	batch := opstate.Batch{ID: 1, StepID: 1, Model: mustModel(t), Calls: []opstate.ParsedToolCall{
		{ID: "c1", Name: "Bash", ArgsJSON: `{"command":"rm -rf /"}`},
	}}

	results, err := ExecuteBatch(ctx, j, registry, approval, batch, DenyAll(), 0)
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Equal(t, journal.CallErr, results[0].Outcome.Kind)
	assert.Equal(t, "denied_by_user", results[0].Outcome.Err)
}

type execTrackingTool struct{ executed *bool }

func (e execTrackingTool) Name() string                { return "Bash" }
func (e execTrackingTool) InputSchema() json.RawMessage { return json.RawMessage(`{}`) }
func (e execTrackingTool) Timeout() time.Duration       { return time.Second }
func (e execTrackingTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	*e.executed = true
	return "ran", nil
}

func TestExecuteBatchInvalidCallNeverExecutes(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)
	executed := false
	registry := stubRegistry{"Bash": execTrackingTool{&executed}}
	approval := config.NewApprovalPolicy(config.ApprovalConfig{Mode: "enabled"})

	batch := opstate.Batch{ID: 1, StepID: 1, Model: mustModel(t), Calls: []opstate.ParsedToolCall{
		{ID: "c1", Name: "Bash", ArgsJSON: `{"command":`, Invalid: true},
	}}

	results, err := ExecuteBatch(ctx, j, registry, approval, batch, ApproveAll(), 0)
	require.NoError(t, err)
	assert.False(t, executed)
	assert.Equal(t, "bad_args", results[0].Outcome.Err)
}

func TestExecuteBatchOneFailureDoesNotAbortRemainder(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)
	registry := stubRegistry{
		"Failing":  stubTool{err: errors.New("boom")},
		"Succeeds": stubTool{output: "ok"},
	}
	approval := config.NewApprovalPolicy(config.ApprovalConfig{Mode: "enabled"})

	batch := opstate.Batch{ID: 1, StepID: 1, Model: mustModel(t), Calls: []opstate.ParsedToolCall{
		{ID: "c1", Name: "Failing", ArgsJSON: `{}`},
		{ID: "c2", Name: "Succeeds", ArgsJSON: `{}`},
	}}

	results, err := ExecuteBatch(ctx, j, registry, approval, batch, ApproveAll(), 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, journal.CallErr, results[0].Outcome.Kind)
	assert.Equal(t, journal.CallOk, results[1].Outcome.Kind)
}

func TestExecuteBatchSelectApprovesOnlyMarkedCalls(t *testing.T) {
	ctx := context.Background()
	j := openTestToolJournal(t)
	registry := stubRegistry{
		"A": stubTool{output: "a-out"},
		"B": stubTool{output: "b-out"},
	}
	approval := config.NewApprovalPolicy(config.ApprovalConfig{Mode: "enabled"})

	batch := opstate.Batch{ID: 2, StepID: 1, Model: mustModel(t), Calls: []opstate.ParsedToolCall{
		{ID: "c1", Name: "A", ArgsJSON: `{}`},
		{ID: "c2", Name: "B", ArgsJSON: `{}`},
	}}

	results, err := ExecuteBatch(ctx, j, registry, approval, batch, Select([]bool{true, false}), 0)
	require.NoError(t, err)
	assert.Equal(t, journal.CallOk, results[0].Outcome.Kind)
	assert.Equal(t, journal.CallErr, results[1].Outcome.Kind)
}

func TestToResultMessagesMarksErrorsOnFailedOutcomes(t *testing.T) {
	batch := opstate.Batch{Calls: []opstate.ParsedToolCall{{ID: "c1", Name: "Bash"}}}
	results := []Result{{CallID: "c1", Outcome: journal.ErrOutcome("timeout", "slow"), DisplayText: "timed out"}}
	msgs := ToResultMessages(batch, results)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].IsError())
}

func TestSanitizeForDisplayStripsInvisibleRunes(t *testing.T) {
	out := sanitizeForDisplay("hello​world")
	assert.Equal(t, "helloworld", out)
}

func TestTruncateForDisplayAppendsIndicatorOnlyWhenOverCap(t *testing.T) {
	assert.Equal(t, "short", truncateForDisplay("short", 100))
	truncated := truncateForDisplay("0123456789", 4)
	assert.Equal(t, "0123"+truncationIndicator, truncated)
}
