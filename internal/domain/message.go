package domain

import "time"

// MessageKind discriminates the Message sum type.
type MessageKind int

const (
	MessageSystem MessageKind = iota
	MessageUser
	MessageAssistant
	MessageThinking
	MessageToolUse
	MessageToolResult
)

func (k MessageKind) String() string {
	switch k {
	case MessageSystem:
		return "system"
	case MessageUser:
		return "user"
	case MessageAssistant:
		return "assistant"
	case MessageThinking:
		return "thinking"
	case MessageToolUse:
		return "tool_use"
	case MessageToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

// ThinkingReplayKind discriminates ThinkingReplayState.
type ThinkingReplayKind int

const (
	ReplayNone ThinkingReplayKind = iota
	ReplayClaudeSigned
	ReplayOpenAIReasoning
	ReplayUnknown
)

// ThinkingReplayState carries whatever provider-specific bookkeeping is
// needed to replay a thinking block back into a subsequent request.
type ThinkingReplayState struct {
	kind          ThinkingReplayKind
	signature     string   // ReplayClaudeSigned
	reasoningItem []string // ReplayOpenAIReasoning
}

// NoReplay is the absence of replay state.
func NoReplay() ThinkingReplayState { return ThinkingReplayState{kind: ReplayNone} }

// ClaudeSignedReplay carries a Claude thinking-block signature.
func ClaudeSignedReplay(signature string) ThinkingReplayState {
	return ThinkingReplayState{kind: ReplayClaudeSigned, signature: signature}
}

// OpenAIReasoningReplay carries OpenAI reasoning items accumulated across
// deltas.
func OpenAIReasoningReplay(items []string) ThinkingReplayState {
	return ThinkingReplayState{kind: ReplayOpenAIReasoning, reasoningItem: items}
}

// UnknownReplay marks replay state from a provider the engine doesn't
// know how to carry forward.
func UnknownReplay() ThinkingReplayState { return ThinkingReplayState{kind: ReplayUnknown} }

// Kind returns the discriminant.
func (r ThinkingReplayState) Kind() ThinkingReplayKind { return r.kind }

// Signature returns the Claude signature; valid only when Kind() ==
// ReplayClaudeSigned.
func (r ThinkingReplayState) Signature() string { return r.signature }

// ReasoningItems returns the OpenAI reasoning items; valid only when
// Kind() == ReplayOpenAIReasoning.
func (r ThinkingReplayState) ReasoningItems() []string { return r.reasoningItem }

// AppendSignature concatenates a signature delta, returning an updated
// ClaudeSigned state.
func (r ThinkingReplayState) AppendSignature(delta string) ThinkingReplayState {
	if r.kind != ReplayClaudeSigned {
		return ClaudeSignedReplay(delta)
	}
	return ClaudeSignedReplay(r.signature + delta)
}

// AppendReasoningItem appends an item, returning an updated
// OpenAIReasoning state.
func (r ThinkingReplayState) AppendReasoningItem(item string) ThinkingReplayState {
	items := append(append([]string(nil), r.reasoningItem...), item)
	return OpenAIReasoningReplay(items)
}

// ThoughtSignatureState mirrors the provider-opaque signature a tool use
// may carry (Gemini "thought signatures"), kept distinct from thinking
// replay state since it rides along a ToolUse, not a Thinking message.
type ThoughtSignatureState struct {
	present   bool
	signature string
}

// NoThoughtSignature is the absence of a thought signature.
func NoThoughtSignature() ThoughtSignatureState { return ThoughtSignatureState{} }

// NewThoughtSignature wraps a present signature.
func NewThoughtSignature(sig string) ThoughtSignatureState {
	return ThoughtSignatureState{present: true, signature: sig}
}

// Present reports whether a signature was carried.
func (t ThoughtSignatureState) Present() bool { return t.present }

// Value returns the signature; only meaningful when Present().
func (t ThoughtSignatureState) Value() string { return t.signature }

// Message is the sum type stored in History. Construct instances with
// the New* functions below; the zero value is not a valid Message.
type Message struct {
	kind      MessageKind
	timestamp time.Time

	// System / User / Assistant / Thinking
	content string
	model   ModelName // Assistant, Thinking

	// User
	displayOverride string
	hasOverride     bool

	// Thinking
	replay ThinkingReplayState

	// ToolUse
	toolUseID   string
	toolName    string
	arguments   []byte
	sigState    ThoughtSignatureState
	invalidArgs bool

	// ToolResult
	toolCallID string
	isError    bool
}

// NewSystemMessage constructs a System message.
func NewSystemMessage(content string, ts time.Time) Message {
	return Message{kind: MessageSystem, content: content, timestamp: ts}
}

// NewUserMessage constructs a User message, optionally carrying a
// display override (the text shown in the UI when it differs from what
// was actually sent, e.g. file-reference expansion).
func NewUserMessage(content string, displayOverride string, hasOverride bool, ts time.Time) Message {
	return Message{
		kind: MessageUser, content: content,
		displayOverride: displayOverride, hasOverride: hasOverride,
		timestamp: ts,
	}
}

// NewAssistantMessage constructs an Assistant message.
func NewAssistantMessage(content string, model ModelName, ts time.Time) Message {
	return Message{kind: MessageAssistant, content: content, model: model, timestamp: ts}
}

// NewThinkingMessage constructs a Thinking message.
func NewThinkingMessage(content string, replay ThinkingReplayState, model ModelName, ts time.Time) Message {
	return Message{kind: MessageThinking, content: content, replay: replay, model: model, timestamp: ts}
}

// NewToolUseMessage constructs a ToolUse message. invalidArgs marks a
// tool call whose argument buffer never parsed to valid JSON.
func NewToolUseMessage(id, name string, arguments []byte, sig ThoughtSignatureState, invalidArgs bool, ts time.Time) Message {
	return Message{
		kind: MessageToolUse, toolUseID: id, toolName: name,
		arguments: arguments, sigState: sig, invalidArgs: invalidArgs,
		timestamp: ts,
	}
}

// NewToolResultMessage constructs a ToolResult message.
func NewToolResultMessage(toolCallID, toolName, content string, isError bool, ts time.Time) Message {
	return Message{
		kind: MessageToolResult, toolCallID: toolCallID, toolName: toolName,
		content: content, isError: isError, timestamp: ts,
	}
}

// Kind returns the discriminant.
func (m Message) Kind() MessageKind { return m.kind }

// Timestamp returns when the message was created.
func (m Message) Timestamp() time.Time { return m.timestamp }

// Content returns the text body for System/User/Assistant/Thinking/ToolResult.
func (m Message) Content() string { return m.content }

// Model returns the model for Assistant/Thinking messages.
func (m Message) Model() ModelName { return m.model }

// DisplayOverride returns the User message's display override, if any.
func (m Message) DisplayOverride() (string, bool) { return m.displayOverride, m.hasOverride }

// ThinkingReplay returns the Thinking message's replay state.
func (m Message) ThinkingReplay() ThinkingReplayState { return m.replay }

// ToolUseID returns the id for a ToolUse message.
func (m Message) ToolUseID() string { return m.toolUseID }

// ToolName returns the tool name for ToolUse/ToolResult messages.
func (m Message) ToolName() string { return m.toolName }

// Arguments returns the raw argument buffer for a ToolUse message.
func (m Message) Arguments() []byte { return m.arguments }

// ThoughtSignature returns the ToolUse message's thought-signature state.
func (m Message) ThoughtSignature() ThoughtSignatureState { return m.sigState }

// InvalidArguments reports whether a ToolUse's argument buffer failed to
// parse as JSON before the stream sealed.
func (m Message) InvalidArguments() bool { return m.invalidArgs }

// ToolCallID returns the originating ToolUse id for a ToolResult message.
func (m Message) ToolCallID() string { return m.toolCallID }

// IsError reports whether a ToolResult represents a failure.
func (m Message) IsError() bool { return m.isError }
