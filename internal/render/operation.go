package render

import (
	"strings"

	"github.com/danielchristiancazares/forge/internal/opstate"
)

// renderOperation renders the live region above the input area: the
// in-progress assistant draft while Streaming, the active tool-call
// list while ToolLoop, the recovery badge while ToolRecovery, and a
// short status line while Summarizing. Adapted from the teacher's
// model_view.go View(), which interleaved the equivalent checks
// (m.streamingText, m.activeTool, m.mode == modeStreaming) directly
// into one big builder; split out here into its own function since
// render has no single model struct to dispatch from.
func renderOperation(md *markdownRenderer, op OpView, acc AccessibilityOptions) string {
	var b strings.Builder

	switch op.Kind {
	case opstate.KindStreaming:
		if op.StreamingThinking != "" && !acc.PlainText {
			b.WriteString(thinkingStyle.Render(op.StreamingThinking))
			b.WriteString("\n")
		}
		if op.StreamingText != "" {
			b.WriteString(md.render(op.StreamingText))
			b.WriteString("\n")
		} else {
			b.WriteString(spinnerGlyph(acc) + " Thinking...\n")
		}
		for _, call := range op.PendingToolCalls {
			b.WriteString(spinnerGlyph(acc) + " " + toolNameStyle.Render(call.Name) + "\n")
		}

	case opstate.KindToolLoop:
		b.WriteString(renderToolBatch(op.Batch, op.AwaitingApproval, op.ExecutingIndex))

	case opstate.KindToolRecovery:
		b.WriteString(recoveryBadgeStyle.Render("⚠ recovered incomplete tool batch from a previous session") + "\n")
		b.WriteString(renderToolBatch(op.Batch, true, -1))

	case opstate.KindSummarizing, opstate.KindSummarizingWithQueued:
		b.WriteString(spinnerGlyph(acc) + " Compacting conversation...\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderToolBatch(calls []opstate.ParsedToolCall, awaitingApproval bool, executingIndex int) string {
	var b strings.Builder
	for i, call := range calls {
		marker := "  "
		switch {
		case awaitingApproval:
			marker = "? "
		case executingIndex < 0:
			marker = "  "
		case i < executingIndex:
			marker = "✓ "
		case i == executingIndex:
			marker = "▸ "
		}
		b.WriteString(marker + toolNameStyle.Render(call.Name))
		if call.Invalid {
			b.WriteString("  " + toolErrorStyle.Render("(invalid arguments)"))
		}
		b.WriteString("\n")
	}
	if awaitingApproval {
		b.WriteString(toolSummaryStyle.Render("  approve all / deny all / select per-call") + "\n")
	}
	return b.String()
}

func spinnerGlyph(acc AccessibilityOptions) string {
	if acc.ReduceMotion {
		return "…"
	}
	return "⠋"
}
