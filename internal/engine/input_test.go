package engine

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielchristiancazares/forge/internal/inputstate"
	"github.com/danielchristiancazares/forge/internal/opstate"
)

func TestHandleNormalKeyEntersInsertOnI(t *testing.T) {
	e := newTestEngine(t)
	e.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")})
	assert.Equal(t, inputstate.KindInsert, e.input.Current().Kind())
}

func TestHandleNormalKeyEntersCommandOnColon(t *testing.T) {
	e := newTestEngine(t)
	e.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	assert.Equal(t, inputstate.KindCommand, e.input.Current().Kind())
}

func TestHandleNormalKeyQuitsOnQWhenIdle(t *testing.T) {
	e := newTestEngine(t)
	e.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, e.quitting)
}

func TestHandleInsertKeyEscReturnsToNormal(t *testing.T) {
	e := newTestEngine(t)
	e.input.EnterInsert(inputstate.NewDraft())
	e.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, inputstate.KindNormal, e.input.Current().Kind())
}

func TestHandleInsertKeyTypesIntoDraft(t *testing.T) {
	e := newTestEngine(t)
	e.input.EnterInsert(inputstate.NewDraft())
	e.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})

	token, ok := e.input.AsInsert()
	require.True(t, ok)
	assert.Equal(t, "hi", token.Handle().Draft().Text())
}

func TestSubmitInsertWithoutCredentialSetsNoticeAndStaysIdle(t *testing.T) {
	e := newTestEngine(t)
	e.input.EnterInsert(inputstate.NewDraft())
	token, ok := e.input.AsInsert()
	require.True(t, ok)
	h := token.Handle()
	h.InsertString("hello there")

	e.submitInsert(h)

	assert.Contains(t, e.notice, "no credential")
	assert.Equal(t, 0, e.history.Len())
}

func TestHandleCtrlCQuitsWhenIdle(t *testing.T) {
	e := newTestEngine(t)
	e.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, e.quitting)
}

func TestHandleRecoveryKeyIgnoresUnrelatedKeys(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.ops.ToToolRecovery(&opstate.ToolRecoveryState{Model: testModel(t)}))

	e.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})

	assert.Equal(t, opstate.KindToolRecovery, e.ops.Current().Kind())
}
