package opstate

import (
	"context"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
)

// ParsedToolCall is a tool call as accumulated so far from a stream,
// before it becomes part of a committed Batch.
type ParsedToolCall struct {
	ID               string
	Name             string
	ArgsJSON         string
	Invalid          bool // set when ArgsJSON failed to parse as JSON at finalize
	ThoughtSignature domain.ThoughtSignatureState
}

// StreamingState holds everything accumulating during one provider
// streaming call.
type StreamingState struct {
	StepID    journal.StepId
	Model     domain.ModelName
	Text      string
	Thinking  string
	ToolCalls []ParsedToolCall
	Cancel    context.CancelFunc
}

func (*StreamingState) Kind() Kind { return KindStreaming }
func (*StreamingState) isState()   {}

// NewStreaming constructs the Streaming state for a freshly opened
// step.
func NewStreaming(stepID journal.StepId, model domain.ModelName, cancel context.CancelFunc) *StreamingState {
	return &StreamingState{StepID: stepID, Model: model, Cancel: cancel}
}
