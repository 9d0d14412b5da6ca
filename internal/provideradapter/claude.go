package provideradapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/streampipe"
)

// ClaudeAdapter streams from the Anthropic Messages API via
// anthropic-sdk-go, replacing the teacher's hand-rolled
// internal/api.Client + ParseSSEStream with the official SDK's typed
// accumulating stream.
type ClaudeAdapter struct {
	key domain.ApiKey
}

// NewClaudeAdapter builds a ClaudeAdapter scoped to key.
func NewClaudeAdapter(key domain.ApiKey) *ClaudeAdapter { return &ClaudeAdapter{key: key} }

func (a *ClaudeAdapter) client() anthropic.Client {
	return anthropic.NewClient(option.WithAPIKey(a.key.ExposeSecret()))
}

func (a *ClaudeAdapter) Stream(ctx context.Context, req Request) (<-chan streampipe.Event, context.CancelFunc, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	out := make(chan streampipe.Event, eventChannelCapacity)

	params := claudeParams(req)
	stream := a.client().Messages.NewStreaming(streamCtx, params)

	go func() {
		defer close(out)
		defer cancel()

		openToolCalls := map[int64]string{} // content block index -> tool call id

		for stream.Next() {
			event := stream.Current()
			switch variant := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				if tu, ok := variant.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
					openToolCalls[variant.Index] = tu.ID
					if !emit(streamCtx, out, streampipe.ToolCallStart(tu.ID, tu.Name, false)) {
						return
					}
				}

			case anthropic.ContentBlockDeltaEvent:
				switch delta := variant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if !emit(streamCtx, out, streampipe.TextDelta(delta.Text)) {
						return
					}
				case anthropic.ThinkingDelta:
					if !emit(streamCtx, out, streampipe.ThinkingDelta(delta.Thinking)) {
						return
					}
				case anthropic.SignatureDelta:
					if !emit(streamCtx, out, streampipe.ThinkingSignatureDelta(delta.Signature)) {
						return
					}
				case anthropic.InputJSONDelta:
					if id, ok := openToolCalls[variant.Index]; ok {
						if !emit(streamCtx, out, streampipe.ToolCallArgsDelta(id, delta.PartialJSON)) {
							return
						}
					}
				}

			case anthropic.MessageDeltaEvent:
				if variant.Usage.OutputTokens > 0 {
					usage := journal.UsagePayload{
						OutputTokens: int(variant.Usage.OutputTokens),
					}
					if !emit(streamCtx, out, streampipe.Usage(usage)) {
						return
					}
				}

			case anthropic.MessageStartEvent:
				usage := journal.UsagePayload{
					InputTokens:  int(variant.Message.Usage.InputTokens),
					OutputTokens: int(variant.Message.Usage.OutputTokens),
				}
				if !emit(streamCtx, out, streampipe.Usage(usage)) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			emit(streamCtx, out, streampipe.Error(fmt.Errorf("claude stream: %w", err)))
			return
		}
		emit(streamCtx, out, streampipe.Done())
	}()

	return out, cancel, nil
}

// Summarize implements distill.Summarizer using a single non-streaming
// call, grounded on the teacher's Compactor.summarize shape.
func (a *ClaudeAdapter) Summarize(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error) {
	model, err := domain.NewModelName(domain.ProviderClaude, "claude-3-5-haiku-20241022")
	if err != nil {
		return "", err
	}
	params := claudeParams(Request{
		SystemPrompt: systemPrompt,
		Entries:      entries,
		Model:        model,
		MaxTokens:    1024,
	})
	msg, err := a.client().Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude summarize: %w", err)
	}
	var text string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	return text, nil
}

func claudeParams(req Request) anthropic.MessageNewParams {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = int64(req.Model.Limits().MaxOutputTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model.ID()),
		MaxTokens: maxTokens,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	for _, t := range flattenTranscript(req.Entries) {
		switch t.role {
		case turnUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.text)))
		case turnAssistant:
			if t.toolCallID != "" {
				params.Messages = append(params.Messages, anthropic.NewAssistantMessage(
					anthropic.NewToolUseBlock(t.toolCallID, json.RawMessage(t.arguments), t.toolName),
				))
				continue
			}
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.text)))
		case turnToolResult:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(t.toolCallID, t.text, t.isError),
			))
		}
	}

	for _, spec := range req.Tools {
		var schema map[string]any
		_ = json.Unmarshal(spec.InputSchema, &schema)
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema["properties"],
				},
			},
		})
	}

	return params
}
