package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/inputstate"
	"github.com/danielchristiancazares/forge/internal/opstate"
)

func testModel(t *testing.T) domain.ModelName {
	t.Helper()
	m, err := domain.NewModelName(domain.ProviderClaude, "claude-sonnet-4-20250514")
	require.NoError(t, err)
	return m
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ids := domain.NewIdSequence()
	history := domain.NewHistory(ids)
	model := testModel(t)
	return New(Dependencies{
		Ids:          ids,
		SystemPrompt: "be terse",
		InitialModel: model,
		ModelCatalog: []domain.ModelName{model},
	}, history, nil)
}

func TestBuildModeViewNormalByDefault(t *testing.T) {
	e := newTestEngine(t)
	view := e.buildModeView()
	assert.Equal(t, inputstate.KindNormal, view.Kind)
}

func TestBuildModeViewInsertCarriesDraft(t *testing.T) {
	e := newTestEngine(t)
	e.input.EnterInsert(inputstate.NewDraft())
	token, ok := e.input.AsInsert()
	require.True(t, ok)
	token.Handle().InsertString("hello")

	view := e.buildModeView()
	assert.Equal(t, inputstate.KindInsert, view.Kind)
	assert.Equal(t, "hello", view.DraftText)
	assert.Equal(t, 5, view.DraftCursor)
}

func TestBuildModeViewModelSelectCarriesCatalog(t *testing.T) {
	e := newTestEngine(t)
	e.input.EnterModelSelect(e.deps.ModelCatalog)

	view := e.buildModeView()
	assert.Equal(t, inputstate.KindModelSelect, view.Kind)
	assert.Equal(t, e.deps.ModelCatalog, view.ModelCatalog)
	assert.Equal(t, 0, view.ModelSelected)
}

func TestBuildModeViewFileSelectCarriesMatches(t *testing.T) {
	e := newTestEngine(t)
	e.input.EnterInsert(inputstate.NewDraft())
	token, ok := e.input.AsInsert()
	require.True(t, ok)
	e.input.EnterFileSelect(token, "re", []string{"README.md"})

	view := e.buildModeView()
	assert.Equal(t, inputstate.KindFileSelect, view.Kind)
	assert.Equal(t, "re", view.FilePrefix)
	assert.Equal(t, []string{"README.md"}, view.FileMatches)
}

func TestBuildOpViewIdleByDefault(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, opstate.KindIdle, e.buildOpView().Kind)
}

func TestBuildOpViewStreamingCarriesModel(t *testing.T) {
	e := newTestEngine(t)
	model := testModel(t)
	require.NoError(t, e.ops.ToStreaming(opstate.NewStreaming(1, model, nil)))

	view := e.buildOpView()
	assert.Equal(t, opstate.KindStreaming, view.Kind)
	assert.Equal(t, model, view.Model)
}

func TestBuildOpViewToolLoopAwaitingApprovalCarriesBatch(t *testing.T) {
	e := newTestEngine(t)
	model := testModel(t)
	require.NoError(t, e.ops.ToStreaming(opstate.NewStreaming(1, model, nil)))

	batch := opstate.Batch{ID: 1, StepID: 1, Model: model, Calls: []opstate.ParsedToolCall{{ID: "c1", Name: "Grep"}}}
	require.NoError(t, e.ops.ToToolLoopAwaitingApproval(opstate.NewToolLoopAwaitingApproval(batch, nil)))

	view := e.buildOpView()
	assert.Equal(t, opstate.KindToolLoop, view.Kind)
	assert.True(t, view.AwaitingApproval)
	assert.Len(t, view.Batch, 1)
}

func TestBuildOpViewToolRecoveryCarriesBadge(t *testing.T) {
	e := newTestEngine(t)
	model := testModel(t)
	require.NoError(t, e.ops.ToToolRecovery(&opstate.ToolRecoveryState{Model: model}))

	view := e.buildOpView()
	assert.Equal(t, opstate.KindToolRecovery, view.Kind)
	assert.True(t, view.RecoveryBadge)
}

func TestBuildRenderStateSurfacesNotice(t *testing.T) {
	e := newTestEngine(t)
	e.notice = "something happened"

	state := e.buildRenderState()
	assert.Equal(t, "something happened", state.Notice)
}
