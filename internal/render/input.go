package render

import (
	"fmt"
	"strings"

	"github.com/danielchristiancazares/forge/internal/inputstate"
)

// renderInputArea renders the bottom input region: the bordered draft
// box in Normal/Insert mode, the slash-command line in Command mode,
// or the ModelSelect/FileSelect overlay in place of the box. Adapted
// from the teacher's renderInputArea (border) and its model/file
// picker renderers, unified here since inputstate.Kind already
// discriminates what the teacher split across separate mode flags.
func renderInputArea(mode ModeView, width int) string {
	switch mode.Kind {
	case inputstate.KindModelSelect:
		return renderModelSelect(mode, width)
	case inputstate.KindFileSelect:
		return renderFileSelect(mode, width)
	case inputstate.KindCommand:
		return renderBorderedLine("/"+mode.DraftText, width)
	default:
		return renderBorderedLine(withCursor(mode.DraftText, mode.DraftCursor), width)
	}
}

func withCursor(text string, cursor int) string {
	runes := []rune(text)
	if cursor < 0 || cursor > len(runes) {
		return text
	}
	return string(runes[:cursor]) + "│" + string(runes[cursor:])
}

func renderBorderedLine(content string, width int) string {
	style := inputBorderStyle
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(content)
}

func renderModelSelect(mode ModeView, width int) string {
	var b strings.Builder
	b.WriteString("Select a model:\n")
	for i, model := range mode.ModelCatalog {
		marker := "  "
		if i == mode.ModelSelected {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, model.DisplayName()))
	}
	return renderBorderedLine(strings.TrimRight(b.String(), "\n"), width)
}

func renderFileSelect(mode ModeView, width int) string {
	var b strings.Builder
	b.WriteString("@" + mode.FilePrefix + "\n")
	for i, match := range mode.FileMatches {
		marker := "  "
		if i == mode.FileSelected {
			marker = "> "
		}
		b.WriteString(marker + match + "\n")
	}
	return renderBorderedLine(strings.TrimRight(b.String(), "\n"), width)
}
