// Package command parses colon- or slash-prefixed input lines into
// typed command values and validates them against the current
// operation state (spec §4.10). Grounded on the teacher's
// internal/tui/slash.go slashRegistry, reshaped from a name-to-closure
// map (the teacher's Execute func(m *model) string, whose side effects
// reach directly into the TUI model) into a closed Kind enum plus a
// per-command precondition, so the engine decides what a command does
// and this package only decides whether it is currently legal to try.
package command

import "strings"

// Kind identifies a recognized command. Aliases (e.g. /reset, /new)
// map to the same Kind as their canonical spelling.
type Kind int

const (
	KindUnknown Kind = iota
	KindHelp
	KindModel
	KindVersion
	KindCost
	KindContext
	KindMcp
	KindConfig
	KindClear
	KindMemory
	KindInit
	KindLogin
	KindLogout
	KindCompact
	KindResume
	KindContinue
	KindDiff
	KindReview
	KindCancel
	KindQuit
)

func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindModel:
		return "model"
	case KindVersion:
		return "version"
	case KindCost:
		return "cost"
	case KindContext:
		return "context"
	case KindMcp:
		return "mcp"
	case KindConfig:
		return "config"
	case KindClear:
		return "clear"
	case KindMemory:
		return "memory"
	case KindInit:
		return "init"
	case KindLogin:
		return "login"
	case KindLogout:
		return "logout"
	case KindCompact:
		return "compact"
	case KindResume:
		return "resume"
	case KindContinue:
		return "continue"
	case KindDiff:
		return "diff"
	case KindReview:
		return "review"
	case KindCancel:
		return "cancel"
	case KindQuit:
		return "quit"
	default:
		return "unknown"
	}
}

var aliases = map[string]Kind{
	"help":     KindHelp,
	"model":    KindModel,
	"version":  KindVersion,
	"cost":     KindCost,
	"context":  KindContext,
	"mcp":      KindMcp,
	"config":   KindConfig,
	"settings": KindConfig,
	"clear":    KindClear,
	"reset":    KindClear,
	"new":      KindClear,
	"memory":   KindMemory,
	"init":     KindInit,
	"login":    KindLogin,
	"logout":   KindLogout,
	"compact":  KindCompact,
	"resume":   KindResume,
	"continue": KindContinue,
	"diff":     KindDiff,
	"review":   KindReview,
	"cancel":   KindCancel,
	"c":        KindCancel,
	"quit":     KindQuit,
	"exit":     KindQuit,
	"q":        KindQuit,
}

// Command is a parsed command line: a recognized Kind plus any
// trailing argument text, or KindUnknown with Raw set to the name the
// user typed.
type Command struct {
	Kind Kind
	Args string
	Raw  string
}

// Parse splits a ":name args" or "/name args" line into a Command.
// Lines with neither prefix, or an empty name, are not commands; ok
// is false.
func Parse(line string) (cmd Command, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, false
	}
	if trimmed[0] != ':' && trimmed[0] != '/' {
		return Command{}, false
	}
	body := strings.TrimSpace(trimmed[1:])
	if body == "" {
		return Command{}, false
	}
	name, args, _ := strings.Cut(body, " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	kind, known := aliases[name]
	if !known {
		return Command{Kind: KindUnknown, Args: args, Raw: name}, true
	}
	return Command{Kind: kind, Args: args}, true
}
