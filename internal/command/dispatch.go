package command

import (
	"fmt"

	"github.com/danielchristiancazares/forge/internal/opstate"
)

// Notification is an informational message shown to the user instead
// of executing a command: either the name wasn't recognized, or its
// precondition failed against the current operation state. Per spec
// §4.10, invalid commands never fail the engine, they just notify.
type Notification struct {
	Text string
}

// precondition reports whether kind may run while the engine is in
// current. Commands not listed here have no precondition: they are
// legal from any operation state (informational commands like
// /help, /version, /cost, /context, /mcp, /diff, /review).
var precondition = map[Kind]func(current opstate.Kind) bool{
	// Cancelling only makes sense while there is something running to
	// cancel.
	KindCancel: func(current opstate.Kind) bool {
		return current == opstate.KindStreaming || current == opstate.KindToolLoop
	},
	// Switching models mid-stream would race the in-flight request's
	// provider adapter; any other state is fine.
	KindModel: func(current opstate.Kind) bool {
		return current != opstate.KindStreaming
	},
	// Clearing history while a turn is in flight would orphan its
	// journal step and any pending tool batch.
	KindClear: func(current opstate.Kind) bool {
		return current == opstate.KindIdle
	},
	// Explicit /compact triggers Idle -> Summarizing (spec §4.4); it
	// is meaningless from any other state.
	KindCompact: func(current opstate.Kind) bool {
		return current == opstate.KindIdle
	},
	// Resuming or switching sessions, or changing credentials, while
	// a turn is active would abandon in-flight journal state.
	KindResume: idleOnly,
	KindContinue: idleOnly,
	KindLogin:    idleOnly,
	KindLogout:   idleOnly,
}

func idleOnly(current opstate.Kind) bool { return current == opstate.KindIdle }

// Dispatch validates cmd against current operation state. On success
// it returns cmd unchanged for the engine to execute; on failure it
// returns a Notification explaining why, and the command must not be
// executed.
func Dispatch(cmd Command, current opstate.Kind) (Command, *Notification) {
	if cmd.Kind == KindUnknown {
		return cmd, &Notification{Text: fmt.Sprintf("unknown command: %s", cmd.Raw)}
	}
	if check, ok := precondition[cmd.Kind]; ok && !check(current) {
		return cmd, &Notification{
			Text: fmt.Sprintf("/%s is not available while %s", cmd.Kind, current),
		}
	}
	return cmd, nil
}
