package provideradapter

import "github.com/danielchristiancazares/forge/internal/domain"

// turnRole is a provider-agnostic role for one line of transcript,
// used as an intermediate step before each adapter maps it into its
// own SDK's message shape.
type turnRole int

const (
	turnUser turnRole = iota
	turnAssistant
	turnToolResult
)

// turn is one flattened transcript line built from a domain.Entry.
// Thinking messages do not produce a turn of their own; each adapter
// folds thinking content back into the assistant turn that owns it,
// since Claude and Gemini want it inline and OpenAI drops it.
type turn struct {
	role       turnRole
	text       string
	toolCallID string
	toolName   string
	arguments  []byte
	isError    bool
}

// flattenTranscript turns entries into the ordered turn sequence every
// adapter starts its provider-specific mapping from. System messages
// are excluded; callers thread the system prompt through separately
// since every provider SDK treats it as a distinct parameter.
func flattenTranscript(entries []domain.Entry) []turn {
	turns := make([]turn, 0, len(entries))
	for _, e := range entries {
		m := e.Message
		switch m.Kind() {
		case domain.MessageUser:
			turns = append(turns, turn{role: turnUser, text: m.Content()})
		case domain.MessageAssistant:
			turns = append(turns, turn{role: turnAssistant, text: m.Content()})
		case domain.MessageToolUse:
			turns = append(turns, turn{
				role:       turnAssistant,
				toolCallID: m.ToolUseID(),
				toolName:   m.ToolName(),
				arguments:  m.Arguments(),
			})
		case domain.MessageToolResult:
			turns = append(turns, turn{
				role:       turnToolResult,
				toolCallID: m.ToolCallID(),
				toolName:   m.ToolName(),
				text:       m.Content(),
				isError:    m.IsError(),
			})
		case domain.MessageSystem, domain.MessageThinking:
			// Handled separately per provider.
		}
	}
	return turns
}
