package historydb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielchristiancazares/forge/internal/domain"
)

// wirePayload is the on-disk JSON shape for one message; fields not
// meaningful for a given kind are simply omitted by omitempty. This
// keeps a single flat row type instead of one Go type per
// domain.MessageKind, mirroring the single payload BLOB column spec
// §6 assigns every message kind.
type wirePayload struct {
	Content         string   `json:"content,omitempty"`
	ModelProvider   int      `json:"model_provider,omitempty"`
	ModelID         string   `json:"model_id,omitempty"`
	DisplayOverride string   `json:"display_override,omitempty"`
	HasOverride     bool     `json:"has_override,omitempty"`
	ReplayKind      int      `json:"replay_kind,omitempty"`
	ReplaySignature string   `json:"replay_signature,omitempty"`
	ReplayItems     []string `json:"replay_items,omitempty"`
	ToolUseID       string   `json:"tool_use_id,omitempty"`
	ToolName        string   `json:"tool_name,omitempty"`
	Arguments       []byte   `json:"arguments,omitempty"`
	SigPresent      bool     `json:"sig_present,omitempty"`
	Signature       string   `json:"signature,omitempty"`
	InvalidArgs     bool     `json:"invalid_args,omitempty"`
	ToolCallID      string   `json:"tool_call_id,omitempty"`
	IsError         bool     `json:"is_error,omitempty"`
}

func kindName(k domain.MessageKind) string { return k.String() }

func kindFromName(name string) (domain.MessageKind, error) {
	switch name {
	case "system":
		return domain.MessageSystem, nil
	case "user":
		return domain.MessageUser, nil
	case "assistant":
		return domain.MessageAssistant, nil
	case "thinking":
		return domain.MessageThinking, nil
	case "tool_use":
		return domain.MessageToolUse, nil
	case "tool_result":
		return domain.MessageToolResult, nil
	default:
		return 0, fmt.Errorf("unknown message kind %q", name)
	}
}

func encodeMessage(m domain.Message) (kind string, payload []byte, err error) {
	w := wirePayload{}

	switch m.Kind() {
	case domain.MessageSystem:
		w.Content = m.Content()
	case domain.MessageUser:
		w.Content = m.Content()
		w.DisplayOverride, w.HasOverride = m.DisplayOverride()
	case domain.MessageAssistant:
		w.Content = m.Content()
		w.ModelProvider = int(m.Model().Provider())
		w.ModelID = m.Model().ID()
	case domain.MessageThinking:
		w.Content = m.Content()
		w.ModelProvider = int(m.Model().Provider())
		w.ModelID = m.Model().ID()
		replay := m.ThinkingReplay()
		w.ReplayKind = int(replay.Kind())
		w.ReplaySignature = replay.Signature()
		w.ReplayItems = replay.ReasoningItems()
	case domain.MessageToolUse:
		w.ToolUseID = m.ToolUseID()
		w.ToolName = m.ToolName()
		w.Arguments = m.Arguments()
		w.SigPresent = m.ThoughtSignature().Present()
		w.Signature = m.ThoughtSignature().Value()
		w.InvalidArgs = m.InvalidArguments()
	case domain.MessageToolResult:
		w.ToolCallID = m.ToolCallID()
		w.ToolName = m.ToolName()
		w.Content = m.Content()
		w.IsError = m.IsError()
	default:
		return "", nil, fmt.Errorf("encode: unhandled message kind %v", m.Kind())
	}

	payload, err = json.Marshal(w)
	if err != nil {
		return "", nil, err
	}
	return kindName(m.Kind()), payload, nil
}

func decodeMessage(kind string, payload []byte, ts time.Time) (domain.Message, error) {
	k, err := kindFromName(kind)
	if err != nil {
		return domain.Message{}, err
	}
	var w wirePayload
	if err := json.Unmarshal(payload, &w); err != nil {
		return domain.Message{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	switch k {
	case domain.MessageSystem:
		return domain.NewSystemMessage(w.Content, ts), nil
	case domain.MessageUser:
		return domain.NewUserMessage(w.Content, w.DisplayOverride, w.HasOverride, ts), nil
	case domain.MessageAssistant:
		model, err := domain.NewModelName(domain.Provider(w.ModelProvider), w.ModelID)
		if err != nil {
			return domain.Message{}, err
		}
		return domain.NewAssistantMessage(w.Content, model, ts), nil
	case domain.MessageThinking:
		model, err := domain.NewModelName(domain.Provider(w.ModelProvider), w.ModelID)
		if err != nil {
			return domain.Message{}, err
		}
		replay := decodeReplay(domain.ThinkingReplayKind(w.ReplayKind), w.ReplaySignature, w.ReplayItems)
		return domain.NewThinkingMessage(w.Content, replay, model, ts), nil
	case domain.MessageToolUse:
		sig := domain.NoThoughtSignature()
		if w.SigPresent {
			sig = domain.NewThoughtSignature(w.Signature)
		}
		return domain.NewToolUseMessage(w.ToolUseID, w.ToolName, w.Arguments, sig, w.InvalidArgs, ts), nil
	case domain.MessageToolResult:
		return domain.NewToolResultMessage(w.ToolCallID, w.ToolName, w.Content, w.IsError, ts), nil
	default:
		return domain.Message{}, fmt.Errorf("decode: unhandled message kind %v", k)
	}
}

func decodeReplay(kind domain.ThinkingReplayKind, signature string, items []string) domain.ThinkingReplayState {
	switch kind {
	case domain.ReplayClaudeSigned:
		return domain.ClaudeSignedReplay(signature)
	case domain.ReplayOpenAIReasoning:
		return domain.OpenAIReasoningReplay(items)
	case domain.ReplayUnknown:
		return domain.UnknownReplay()
	default:
		return domain.NoReplay()
	}
}
