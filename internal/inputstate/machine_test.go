package inputstate

import (
	"testing"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sonnet(t *testing.T) domain.ModelName {
	t.Helper()
	m, err := domain.NewModelName(domain.ProviderClaude, "claude-sonnet-4-20250514")
	require.NoError(t, err)
	return m
}

func alwaysResolves(domain.Provider) (domain.ApiKey, bool) {
	return domain.NewApiKey(domain.ProviderClaude, "sk-test"), true
}

func neverResolves(domain.Provider) (domain.ApiKey, bool) {
	return domain.ApiKey{}, false
}

func TestMachineStartsInNormal(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, KindNormal, m.Current().Kind())
}

func TestInsertTokenUnavailableOutsideInsertMode(t *testing.T) {
	m := NewMachine()
	_, ok := m.AsInsert()
	assert.False(t, ok)
}

func TestInsertRuneAdvancesCursorByGrapheme(t *testing.T) {
	m := NewMachine()
	m.EnterInsert(NewDraft())
	token, ok := m.AsInsert()
	require.True(t, ok)
	h := token.Handle()
	h.InsertRune('h')
	h.InsertRune('i')
	assert.Equal(t, "hi", h.Draft().Text())
	assert.Equal(t, 2, h.Draft().Cursor())
}

func TestInsertHandlesMultiByteGraphemeAsOneCursorStep(t *testing.T) {
	m := NewMachine()
	m.EnterInsert(NewDraft())
	h, _ := m.AsInsert()
	handle := h.Handle()
	handle.InsertString("👍")
	assert.Equal(t, 1, handle.Draft().Cursor())
	handle.Backspace()
	assert.Equal(t, "", handle.Draft().Text())
	assert.Equal(t, 0, handle.Draft().Cursor())
}

func TestBackspaceAtStartIsNoOp(t *testing.T) {
	m := NewMachine()
	m.EnterInsert(NewDraft())
	h, _ := m.AsInsert()
	handle := h.Handle()
	handle.Backspace()
	assert.Equal(t, "", handle.Draft().Text())
	assert.Equal(t, 0, handle.Draft().Cursor())
}

func TestSubmitRejectsEmptyDraftAndPreservesMode(t *testing.T) {
	m := NewMachine()
	m.EnterInsert(NewDraft())
	token, _ := m.AsInsert()
	_, err := token.Handle().Submit(sonnet(t), alwaysResolves)
	require.Error(t, err)
	assert.Equal(t, KindInsert, m.Current().Kind())
}

func TestSubmitRejectsWhenNoCredentialResolves(t *testing.T) {
	m := NewMachine()
	draft := NewDraft().insertString("hello")
	m.EnterInsert(draft)
	token, _ := m.AsInsert()
	_, err := token.Handle().Submit(sonnet(t), neverResolves)
	require.Error(t, err)
	assert.Equal(t, KindInsert, m.Current().Kind())
}

func TestSubmitSucceedsAndReturnsToNormal(t *testing.T) {
	m := NewMachine()
	draft := NewDraft().insertString("hello there")
	m.EnterInsert(draft)
	token, _ := m.AsInsert()
	queued, err := token.Handle().Submit(sonnet(t), alwaysResolves)
	require.NoError(t, err)
	assert.Equal(t, "hello there", queued.Text().String())
	assert.Equal(t, KindNormal, m.Current().Kind())
}

func TestModelSelectConfirmRestoresInsertDraft(t *testing.T) {
	m := NewMachine()
	draft := NewDraft().insertString("draft text")
	m.EnterInsert(draft)
	m.EnterModelSelect([]domain.ModelName{sonnet(t)})
	assert.Equal(t, KindModelSelect, m.Current().Kind())

	token, ok := m.AsModelSelect()
	require.True(t, ok)
	handle := token.Handle()
	picked, ok := handle.Confirm()
	require.True(t, ok)
	assert.Equal(t, sonnet(t), picked)
	assert.Equal(t, KindInsert, m.Current().Kind())

	insertToken, ok := m.AsInsert()
	require.True(t, ok)
	assert.Equal(t, "draft text", insertToken.Handle().Draft().Text())
}

func TestModelSelectCancelRestoresPriorModeUnchanged(t *testing.T) {
	m := NewMachine()
	m.EnterModelSelect([]domain.ModelName{sonnet(t)})
	token, _ := m.AsModelSelect()
	token.Handle().Cancel()
	assert.Equal(t, KindNormal, m.Current().Kind())
}

func TestFileSelectConfirmInsertsReferenceIntoInsertDraft(t *testing.T) {
	m := NewMachine()
	m.EnterInsert(NewDraft().insertString("see "))
	token, _ := m.AsInsert()
	m.EnterFileSelect(token, "RE", []string{"README.md"})

	fsToken, ok := m.AsFileSelect()
	require.True(t, ok)
	picked, ok := fsToken.Handle().Confirm()
	require.True(t, ok)
	assert.Equal(t, "README.md", picked)

	insertToken, ok := m.AsInsert()
	require.True(t, ok)
	assert.Equal(t, "see README.md", insertToken.Handle().Draft().Text())
}

func TestFileSelectConfirmWithNoMatchesReturnsToInsertWithoutInserting(t *testing.T) {
	m := NewMachine()
	m.EnterInsert(NewDraft().insertString("see "))
	token, _ := m.AsInsert()
	m.EnterFileSelect(token, "zz", nil)

	fsToken, _ := m.AsFileSelect()
	_, ok := fsToken.Handle().Confirm()
	assert.False(t, ok)
	assert.Equal(t, KindInsert, m.Current().Kind())
}

func TestCommandLineReturnsToNormal(t *testing.T) {
	m := NewMachine()
	m.EnterCommand()
	token, ok := m.AsCommand()
	require.True(t, ok)
	handle := token.Handle()
	handle.InsertRune('/')
	handle.InsertRune('q')
	line := handle.Line()
	assert.Equal(t, "/q", line)
	assert.Equal(t, KindNormal, m.Current().Kind())
}
