package render

import (
	"testing"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/inputstate"
	"github.com/stretchr/testify/assert"
)

func TestWithCursorInsertsMarkerAtIndex(t *testing.T) {
	assert.Equal(t, "ab│cd", withCursor("abcd", 2))
}

func TestWithCursorOutOfRangeReturnsTextUnchanged(t *testing.T) {
	assert.Equal(t, "abcd", withCursor("abcd", 99))
}

func TestRenderInputAreaCommandModeShowsSlashPrefix(t *testing.T) {
	out := renderInputArea(ModeView{Kind: inputstate.KindCommand, DraftText: "clear"}, 80)
	assert.Contains(t, out, "/clear")
}

func TestRenderModelSelectMarksSelectedEntry(t *testing.T) {
	model := sonnetModel(t)
	out := renderModelSelect(ModeView{ModelCatalog: []domain.ModelName{model}, ModelSelected: 0}, 80)
	assert.Contains(t, out, "> 1.")
}

func TestRenderFileSelectShowsPrefixAndMatches(t *testing.T) {
	out := renderFileSelect(ModeView{FilePrefix: "src/", FileMatches: []string{"src/main.go"}, FileSelected: 0}, 80)
	assert.Contains(t, out, "src/")
	assert.Contains(t, out, "src/main.go")
}
