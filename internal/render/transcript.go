package render

import (
	"encoding/json"
	"strings"

	"github.com/danielchristiancazares/forge/internal/domain"
)

// renderTranscript renders the full message history into scrollback
// text. Adapted from the teacher's model.go history-append path
// (which appended a rendered line per message as it arrived) and
// output.go's per-kind bullet styling, generalized to a pure function
// over the whole history since render owns no incremental scrollback
// buffer of its own.
func renderTranscript(md *markdownRenderer, entries []domain.Entry, acc AccessibilityOptions) string {
	var b strings.Builder
	for _, e := range entries {
		line := renderEntry(md, e.Message, acc)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderEntry(md *markdownRenderer, m domain.Message, acc AccessibilityOptions) string {
	switch m.Kind() {
	case domain.MessageSystem:
		return styleOrPlain(acc, systemStyle, m.Content())
	case domain.MessageUser:
		text := m.Content()
		if override, ok := m.DisplayOverride(); ok {
			text = override
		}
		return promptStyle.Render("> ") + text
	case domain.MessageAssistant:
		return md.render(m.Content())
	case domain.MessageThinking:
		if acc.PlainText {
			return ""
		}
		return thinkingStyle.Render(m.Content())
	case domain.MessageToolUse:
		return renderToolUse(m, acc)
	case domain.MessageToolResult:
		return renderToolResult(m, acc)
	default:
		return ""
	}
}

func renderToolUse(m domain.Message, acc AccessibilityOptions) string {
	bullet := toolBulletStyle.Render("  ")
	name := toolNameStyle.Render(m.ToolName())
	if m.InvalidArguments() {
		return bullet + name + "  " + toolErrorStyle.Render("(invalid arguments)")
	}
	summary := extractToolSummary(m.ToolName(), m.Arguments())
	if summary == "" {
		return bullet + name
	}
	return bullet + name + "  " + toolSummaryStyle.Render(summary)
}

func renderToolResult(m domain.Message, acc AccessibilityOptions) string {
	if !m.IsError() {
		if m.ToolName() == "FileEdit" {
			if oldStr, newStr, ok := extractEditStrings(m.Content()); ok {
				return renderDiff(oldStr, newStr)
			}
		}
		return ""
	}
	return toolErrorStyle.Render("  ✗ " + m.ToolName() + ": " + firstLine(m.Content()))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func styleOrPlain(acc AccessibilityOptions, style interface{ Render(...string) string }, s string) string {
	if acc.PlainText {
		return s
	}
	return style.Render(s)
}

// extractToolSummary produces a short one-line summary of a tool call's
// arguments for the scrollback bullet, mirroring the teacher's
// per-tool-name switch in output.go without depending on
// internal/toolset's argument structs (render must not import
// toolset, which would pull in the sandbox/exec layer into a package
// with no mutable state of its own).
func extractToolSummary(name string, argsJSON []byte) string {
	var args map[string]any
	if err := json.Unmarshal(argsJSON, &args); err != nil {
		return ""
	}
	switch name {
	case "Bash":
		if cmd, ok := args["command"].(string); ok {
			return truncate(cmd, 80)
		}
	case "FileRead", "FileWrite", "FileEdit":
		if path, ok := args["file_path"].(string); ok {
			return path
		}
	case "Glob":
		if pattern, ok := args["pattern"].(string); ok {
			return pattern
		}
	case "Grep":
		if pattern, ok := args["pattern"].(string); ok {
			return pattern
		}
	case "WebFetch":
		if url, ok := args["url"].(string); ok {
			return url
		}
	}
	return ""
}

// extractEditStrings recovers old_string/new_string from a FileEdit
// tool result's content for inline diff display, if the result
// happens to carry them as a JSON envelope; most tool results are
// plain text, so this degrades to "not found" rather than erroring.
func extractEditStrings(content string) (string, string, bool) {
	var payload struct {
		OldString string `json:"old_string"`
		NewString string `json:"new_string"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return "", "", false
	}
	if payload.OldString == "" && payload.NewString == "" {
		return "", "", false
	}
	return payload.OldString, payload.NewString, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
