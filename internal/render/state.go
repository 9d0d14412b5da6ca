package render

import (
	"github.com/danielchristiancazares/forge/internal/contextmgr"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/inputstate"
	"github.com/danielchristiancazares/forge/internal/opstate"
)

// AccessibilityOptions are the user-configurable accessibility knobs
// folded into the frame cache key alongside width (spec's "in-memory
// cache of rendered lines keyed by (display_version, width,
// accessibility_options)"). The spec names the triple but leaves the
// option set open; PlainText and ReduceMotion are the two the teacher's
// config surface already hints at (color output can be disabled, and
// the spinner/streaming-hint animation can be turned off), recorded as
// an Open Question decision in the grounding ledger.
type AccessibilityOptions struct {
	PlainText    bool
	ReduceMotion bool
}

// ModeView is the read-only projection of inputstate.Machine's current
// mode that render needs. The engine extracts it through the
// Insert/Command/ModelSelect/FileSelect tokens and handles (render
// never touches inputstate's proof-token machinery itself, since
// those exist to gate mutation, not to gate read access for display).
type ModeView struct {
	Kind inputstate.Kind

	DraftText   string
	DraftCursor int

	ModelCatalog  []domain.ModelName
	ModelSelected int

	FilePrefix   string
	FileMatches  []string
	FileSelected int
}

// OpView is the read-only projection of opstate.State render needs.
type OpView struct {
	Kind  opstate.Kind
	Model domain.ModelName

	StreamingText     string
	StreamingThinking string
	PendingToolCalls  []opstate.ParsedToolCall

	Batch            []opstate.ParsedToolCall
	AwaitingApproval bool
	ExecutingIndex   int

	RecoveryBadge bool
}

// StatusLineView is the read-only projection of context-manager budget
// state render needs.
type StatusLineView struct {
	Provider             domain.Provider
	ModelDisplayName     string
	Classification       contextmgr.Classification
	EstimatedInputTokens int
	ContextTokens        int
}

// RenderState is everything one frame's render needs, gathered by the
// engine from inputstate.Machine, opstate.State, domain.History, and
// contextmgr.Budget. DisplayVersion increments on any change that
// should invalidate the frame cache (new history entry, streaming
// delta, mode change); the engine is the sole owner of that counter.
type RenderState struct {
	DisplayVersion uint64

	Mode       ModeView
	History    []domain.Entry
	Op         OpView
	StatusLine StatusLineView

	// Notice is a one-line transient message (command feedback, a
	// rejected submission's error) the engine wants surfaced for this
	// frame only; it carries no history of its own.
	Notice string

	Accessibility AccessibilityOptions
}
