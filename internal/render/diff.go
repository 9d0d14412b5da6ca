package render

import "strings"

// renderDiff produces a colored inline diff from an old and new string,
// one "- " line per old line and one "+ " line per new line. Ported
// near-verbatim from the teacher's internal/tui.renderDiff; FileEdit
// tool results carry old_string/new_string the same way in both
// systems.
func renderDiff(oldStr, newStr string) string {
	var b strings.Builder

	for _, line := range strings.Split(oldStr, "\n") {
		b.WriteString(diffRemoveStyle.Render("  - "+line) + "\n")
	}
	for _, line := range strings.Split(newStr, "\n") {
		b.WriteString(diffAddStyle.Render("  + "+line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
