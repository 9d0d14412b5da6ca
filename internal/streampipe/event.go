// Package streampipe turns a provider adapter's normalized event
// channel into journaled, display-ready accumulator state, applying
// the journal-before-display rule (spec §4.5) to every event. Grounded
// on the teacher's internal/api/streaming.go StreamEvent/dispatchEvent
// shape and internal/tui/stream.go's TUIStreamHandler (which bridges
// api.StreamHandler callbacks into bubbletea messages); this package
// generalizes that bridge into a provider-agnostic normalized event and
// makes the journal write, not the UI update, the first thing that
// happens for every event.
package streampipe

import "github.com/danielchristiancazares/forge/internal/journal"

// EventKind discriminates a normalized stream event.
type EventKind int

const (
	EventTextDelta EventKind = iota
	EventThinkingDelta
	EventThinkingSignatureDelta
	EventOpenAIReasoningItem
	EventResponseId
	EventToolCallStart
	EventToolCallArgsDelta
	EventUsage
	EventDone
	EventError
)

// Event is the normalized shape every provider adapter translates its
// wire protocol into, so streampipe never depends on a specific
// provider SDK.
type Event struct {
	Kind EventKind

	Text       string // TextDelta / ThinkingDelta / ThinkingSignatureDelta / OpenAIReasoningItem
	ResponseID string

	ToolCallID              string // ToolCallStart / ToolCallArgsDelta
	ToolCallName            string // ToolCallStart
	ThoughtSignaturePresent bool   // ToolCallStart
	ArgsChunk               string // ToolCallArgsDelta

	Usage journal.UsagePayload

	Err error // Error
}

func TextDelta(s string) Event      { return Event{Kind: EventTextDelta, Text: s} }
func ThinkingDelta(s string) Event  { return Event{Kind: EventThinkingDelta, Text: s} }
func ThinkingSignatureDelta(s string) Event {
	return Event{Kind: EventThinkingSignatureDelta, Text: s}
}
func OpenAIReasoningItem(item string) Event { return Event{Kind: EventOpenAIReasoningItem, Text: item} }
func ResponseId(id string) Event            { return Event{Kind: EventResponseId, ResponseID: id} }

func ToolCallStart(id, name string, thoughtSigPresent bool) Event {
	return Event{Kind: EventToolCallStart, ToolCallID: id, ToolCallName: name, ThoughtSignaturePresent: thoughtSigPresent}
}

func ToolCallArgsDelta(id, chunk string) Event {
	return Event{Kind: EventToolCallArgsDelta, ToolCallID: id, ArgsChunk: chunk}
}

func Usage(u journal.UsagePayload) Event { return Event{Kind: EventUsage, Usage: u} }
func Done() Event                        { return Event{Kind: EventDone} }
func Error(err error) Event              { return Event{Kind: EventError, Err: err} }
