// Package render turns engine state into terminal text. It owns no
// mutable state except the width/version-keyed line cache (spec
// "Global mutable state"); every exported function is pure given its
// arguments. Grounded on the teacher's internal/tui view and markdown
// code, generalized away from a bubbletea model receiver into explicit
// parameters so internal/engine (which owns the tea.Model) is the only
// package that touches bubbletea.
package render

import "github.com/charmbracelet/lipgloss"

var (
	colorPurple = lipgloss.Color("#A855F7")
	colorGreen  = lipgloss.Color("#22C55E")
	colorRed    = lipgloss.Color("#EF4444")
	colorYellow = lipgloss.Color("#EAB308")
	colorDim    = lipgloss.Color("#6B7280")
	colorCyan   = lipgloss.Color("#06B6D4")

	promptStyle = lipgloss.NewStyle().Foreground(colorPurple).Bold(true)

	toolBulletStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	toolNameStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	toolSummaryStyle = lipgloss.NewStyle().Foreground(colorDim)
	toolErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)

	diffAddStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	diffRemoveStyle = lipgloss.NewStyle().Foreground(colorRed)

	systemStyle = lipgloss.NewStyle().Foreground(colorYellow)

	statusBarStyle   = lipgloss.NewStyle().Foreground(colorDim)
	statusModelStyle = lipgloss.NewStyle().Foreground(colorPurple)
	statusTightStyle = lipgloss.NewStyle().Foreground(colorYellow)
	statusAlertStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	inputBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)

	recoveryBadgeStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	thinkingStyle = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	noticeStyle = lipgloss.NewStyle().Foreground(colorCyan)
)
