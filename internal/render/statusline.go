package render

import (
	"fmt"

	"github.com/danielchristiancazares/forge/internal/contextmgr"
)

// renderStatusBar renders the single-line status bar: model name,
// operation kind, and context-budget classification. Adapted from the
// teacher's statusline.go renderStatusBar, minus the external
// statusLineCmd shell-out; no status-line command is run anywhere.
func renderStatusBar(view StatusLineView, opDesc string, acc AccessibilityOptions) string {
	model := statusModelStyle.Render(view.ModelDisplayName)

	budget := fmt.Sprintf("%d tok", view.EstimatedInputTokens)
	switch view.Classification {
	case contextmgr.Tight:
		budget = statusTightStyle.Render(budget + " (tight)")
	case contextmgr.MustDistill:
		budget = statusAlertStyle.Render(budget + " (distilling soon)")
	case contextmgr.CannotFit:
		budget = statusAlertStyle.Render(budget + " (cannot fit)")
	}

	line := model + "  " + budget
	if opDesc != "" {
		line += "  " + statusBarStyle.Render(opDesc)
	}
	if acc.PlainText {
		return fmt.Sprintf("%s  %d tok%s", view.ModelDisplayName, view.EstimatedInputTokens, plainOpSuffix(opDesc))
	}
	return line
}

func plainOpSuffix(opDesc string) string {
	if opDesc == "" {
		return ""
	}
	return "  " + opDesc
}
