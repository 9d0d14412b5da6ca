// Package inputstate implements the modal input typestate: Normal,
// Insert, Command, ModelSelect, and FileSelect. Grounded on the
// teacher's internal/tui/model.go uiMode enum and its mode-gated
// fields, reshaped into an explicit state machine where
// mode-exclusive operations are gated by proof tokens rather than a
// single struct with mode-tagged fields any caller could mutate from
// the wrong mode.
package inputstate

// Kind discriminates the five input modes.
type Kind int

const (
	KindNormal Kind = iota
	KindInsert
	KindCommand
	KindModelSelect
	KindFileSelect
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindInsert:
		return "insert"
	case KindCommand:
		return "command"
	case KindModelSelect:
		return "model_select"
	case KindFileSelect:
		return "file_select"
	default:
		return "unknown"
	}
}

// State is the current input mode. Implemented by NormalState,
// InsertState, CommandState, ModelSelectState, and FileSelectState.
// The unexported marker method closes the set: no package outside
// inputstate can add a sixth mode.
type State interface {
	Kind() Kind
	isInputState()
}
