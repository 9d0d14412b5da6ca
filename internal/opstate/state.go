// Package opstate models the engine's operation state as an
// authoritative sum type (spec §4.4): exactly one of Idle, Streaming,
// ToolLoop, ToolRecovery, Summarizing, or SummarizingWithQueued is
// active at any time, and only the legal transitions below are
// reachable.
//
// Unlike internal/domain.Message (a struct-with-discriminant, because
// many Message values are stored uniformly in History), State uses a
// closed interface with an unexported marker method: only one State
// value exists at a time, its variants carry heavy and structurally
// distinct payloads (a live cancellation handle, a channel, a pending
// request), and callers almost always want a single type switch rather
// than uniform storage. Grounded in shape on the teacher's
// internal/tui/model.go uiMode enum, which plays the same "what is the
// engine doing right now" role but as a plain enum with loosely related
// optional fields; this promotes that into a real closed sum type.
package opstate

// Kind discriminates a State's variant for logging and for callers
// that only need the tag, not the payload.
type Kind int

const (
	KindIdle Kind = iota
	KindStreaming
	KindToolLoop
	KindToolRecovery
	KindSummarizing
	KindSummarizingWithQueued
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindStreaming:
		return "streaming"
	case KindToolLoop:
		return "tool_loop"
	case KindToolRecovery:
		return "tool_recovery"
	case KindSummarizing:
		return "summarizing"
	case KindSummarizingWithQueued:
		return "summarizing_with_queued"
	default:
		return "unknown"
	}
}

// State is the closed sum type of engine operation states. The
// unexported method confines implementations to this package; callers
// outside opstate can only construct a State through the New*
// functions below, and can only inspect one through a type switch.
type State interface {
	Kind() Kind
	isState()
}

type idleState struct{}

func (idleState) Kind() Kind { return KindIdle }
func (idleState) isState()   {}

// Idle is the singleton Idle state.
var Idle State = idleState{}
