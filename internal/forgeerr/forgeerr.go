// Package forgeerr defines the engine's typed error kinds (spec §7).
// Errors are represented as sum types with an error kind discriminant;
// control flow matches on these variants, never on non-local jumps.
package forgeerr

import (
	"errors"
	"fmt"
)

// Kind discriminates the error categories the engine's state machine
// reacts to differently.
type Kind int

const (
	KindConfig Kind = iota
	KindTerminalSetup
	KindAuth
	KindNetwork
	KindContextOverflow
	KindDistillation
	KindTool
	KindJournal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTerminalSetup:
		return "terminal_setup"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindContextOverflow:
		return "context_overflow"
	case KindDistillation:
		return "distillation"
	case KindTool:
		return "tool"
	case KindJournal:
		return "journal"
	default:
		return "unknown"
	}
}

// Error is the engine's error envelope: a kind discriminant plus a
// redacted, human-readable message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or anything it wraps) is a *Error of kind k.
func Is(err error, k Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == k
	}
	return false
}

// ToolErrorKind enumerates spec §7's ToolError sub-kinds.
type ToolErrorKind int

const (
	ToolBadArgs ToolErrorKind = iota
	ToolTimeout
	ToolSandboxViolation
	ToolExecutionFailed
	ToolCancelled
	ToolUnknownTool
	ToolDuplicateCallId
	ToolStaleFile
	ToolPatchFailed
)

func (k ToolErrorKind) String() string {
	switch k {
	case ToolBadArgs:
		return "bad_args"
	case ToolTimeout:
		return "timeout"
	case ToolSandboxViolation:
		return "sandbox_violation"
	case ToolExecutionFailed:
		return "execution_failed"
	case ToolCancelled:
		return "cancelled"
	case ToolUnknownTool:
		return "unknown_tool"
	case ToolDuplicateCallId:
		return "duplicate_tool_call_id"
	case ToolStaleFile:
		return "stale_file"
	case ToolPatchFailed:
		return "patch_failed"
	default:
		return "unknown"
	}
}

// ToolError is the typed error a tool execution surfaces back to the
// caller. It is never allowed to escape the tool loop as an exception;
// the tool loop always converts it into a ToolResult(is_error=true).
type ToolError struct {
	Kind    ToolErrorKind
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error (%s): %s", e.Kind, e.Message)
}

// NewToolError constructs a ToolError.
func NewToolError(kind ToolErrorKind, message string) *ToolError {
	return &ToolError{Kind: kind, Message: message}
}
