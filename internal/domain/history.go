package domain

import "fmt"

// Entry pairs a MessageId with its Message, as stored in History.
type Entry struct {
	ID      MessageId
	Message Message
}

// History is the append-only ordered sequence of (MessageId, Message).
// Identifiers strictly increase; a ToolResult must follow its
// corresponding ToolUse; after a user message is appended, the next
// persisted assistant-family message belongs to the same logical turn.
//
// History is owned by the engine thread; no other goroutine mutates it
// (spec: "Shared-resource policy").
type History struct {
	ids     *IdSequence
	entries []Entry
	// toolUseSeen tracks which ToolUse ids have appeared, so Append can
	// enforce "ToolResult follows its ToolUse" cheaply.
	toolUseSeen map[string]bool
	toolResultSeen map[string]bool
}

// NewHistory creates an empty history driven by the given id sequence.
// Sharing one IdSequence across History and the journal keeps
// MessageId/StepId/ToolBatchId allocation consistent within a session.
func NewHistory(ids *IdSequence) *History {
	return &History{
		ids:            ids,
		toolUseSeen:    make(map[string]bool),
		toolResultSeen: make(map[string]bool),
	}
}

// Append adds m to history under a freshly allocated MessageId, enforcing
// invariants 1 and 2 from the spec (strictly increasing ids; at most one
// ToolResult per ToolUse, appearing after it).
func (h *History) Append(m Message) (MessageId, error) {
	if m.Kind() == MessageToolResult {
		id := m.ToolCallID()
		if !h.toolUseSeen[id] {
			return 0, fmt.Errorf("tool result %q has no preceding tool use", id)
		}
		if h.toolResultSeen[id] {
			return 0, fmt.Errorf("tool use %q already has a result", id)
		}
		h.toolResultSeen[id] = true
	}
	if m.Kind() == MessageToolUse {
		h.toolUseSeen[m.ToolUseID()] = true
	}
	id := h.ids.NextMessageId()
	h.entries = append(h.entries, Entry{ID: id, Message: m})
	return id, nil
}

// AppendRestored re-inserts an entry with a pre-existing id, used only
// when replaying from the durable journal/history store at startup. The
// caller is responsible for replaying in increasing id order so the
// strictly-increasing invariant holds.
func (h *History) AppendRestored(id MessageId, m Message) {
	if m.Kind() == MessageToolUse {
		h.toolUseSeen[m.ToolUseID()] = true
	}
	if m.Kind() == MessageToolResult {
		h.toolResultSeen[m.ToolCallID()] = true
	}
	h.entries = append(h.entries, Entry{ID: id, Message: m})
}

// Entries returns the full ordered history. Callers must not mutate the
// returned slice.
func (h *History) Entries() []Entry { return h.entries }

// Len returns the number of messages.
func (h *History) Len() int { return len(h.entries) }

// Slice returns entries[from:] (by index, not MessageId), used by the
// context manager to derive the API view after a distillation cut.
func (h *History) Slice(from int) []Entry {
	if from >= len(h.entries) {
		return nil
	}
	return h.entries[from:]
}

// Clear destroys all history as part of a whole-session clear (the only
// sanctioned destruction per spec's message lifecycle rule).
func (h *History) Clear() {
	h.entries = nil
	h.toolUseSeen = make(map[string]bool)
	h.toolResultSeen = make(map[string]bool)
}

// LastToolUseUnresolved reports the id of the most recent ToolUse message
// that has no matching ToolResult, if any. Used by tool-recovery to find
// the batch that needs rehydrating.
func (h *History) LastToolUseUnresolved() (string, bool) {
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if e.Message.Kind() == MessageToolUse && !h.toolResultSeen[e.Message.ToolUseID()] {
			return e.Message.ToolUseID(), true
		}
	}
	return "", false
}
