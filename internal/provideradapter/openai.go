package provideradapter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/streampipe"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter streams from the Chat Completions API via
// sashabaranov/go-openai, the dependency the rest of the example pack
// reaches for rather than a hand-rolled SSE client.
type OpenAIAdapter struct {
	key domain.ApiKey
}

// NewOpenAIAdapter builds an OpenAIAdapter scoped to key.
func NewOpenAIAdapter(key domain.ApiKey) *OpenAIAdapter { return &OpenAIAdapter{key: key} }

func (a *OpenAIAdapter) client() *openai.Client {
	return openai.NewClient(a.key.ExposeSecret())
}

func (a *OpenAIAdapter) Stream(ctx context.Context, req Request) (<-chan streampipe.Event, context.CancelFunc, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	out := make(chan streampipe.Event, eventChannelCapacity)

	stream, err := a.client().CreateChatCompletionStream(streamCtx, openaiRequest(req, true))
	if err != nil {
		cancel()
		close(out)
		return out, cancel, fmt.Errorf("openai: starting stream: %w", err)
	}

	go func() {
		defer close(out)
		defer cancel()
		defer stream.Close()

		toolCallNames := map[int]string{}

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				emit(streamCtx, out, streampipe.Done())
				return
			}
			if err != nil {
				emit(streamCtx, out, streampipe.Error(fmt.Errorf("openai stream: %w", err)))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta

			if delta.Content != "" {
				if !emit(streamCtx, out, streampipe.TextDelta(delta.Content)) {
					return
				}
			}
			if delta.ReasoningContent != "" {
				if !emit(streamCtx, out, streampipe.ThinkingDelta(delta.ReasoningContent)) {
					return
				}
			}
			for _, tc := range delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				if tc.ID != "" {
					toolCallNames[idx] = tc.ID
					if !emit(streamCtx, out, streampipe.ToolCallStart(tc.ID, tc.Function.Name, false)) {
						return
					}
					continue
				}
				if id, ok := toolCallNames[idx]; ok && tc.Function.Arguments != "" {
					if !emit(streamCtx, out, streampipe.ToolCallArgsDelta(id, tc.Function.Arguments)) {
						return
					}
				}
			}
			if resp.Usage != nil {
				usage := journal.UsagePayload{
					InputTokens:  resp.Usage.PromptTokens,
					OutputTokens: resp.Usage.CompletionTokens,
				}
				if !emit(streamCtx, out, streampipe.Usage(usage)) {
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// Summarize implements distill.Summarizer with a single non-streaming
// completion.
func (a *OpenAIAdapter) Summarize(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error) {
	model, err := domain.NewModelName(domain.ProviderOpenAI, "gpt-5-mini")
	if err != nil {
		return "", err
	}
	resp, err := a.client().CreateChatCompletion(ctx, openaiRequest(Request{
		SystemPrompt: systemPrompt,
		Entries:      entries,
		Model:        model,
		MaxTokens:    1024,
	}, false))
	if err != nil {
		return "", fmt.Errorf("openai summarize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai summarize: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func openaiRequest(req Request, stream bool) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:     req.Model.ID(),
		Stream:    stream,
		MaxTokens: req.MaxTokens,
	}
	if req.SystemPrompt != "" {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, t := range flattenTranscript(req.Entries) {
		switch t.role {
		case turnUser:
			out.Messages = append(out.Messages, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleUser, Content: t.text,
			})
		case turnAssistant:
			if t.toolCallID != "" {
				out.Messages = append(out.Messages, openai.ChatCompletionMessage{
					Role: openai.ChatMessageRoleAssistant,
					ToolCalls: []openai.ToolCall{{
						ID:   t.toolCallID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      t.toolName,
							Arguments: string(t.arguments),
						},
					}},
				})
				continue
			}
			out.Messages = append(out.Messages, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant, Content: t.text,
			})
		case turnToolResult:
			out.Messages = append(out.Messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    t.text,
				ToolCallID: t.toolCallID,
			})
		}
	}
	for _, spec := range req.Tools {
		out.Tools = append(out.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.InputSchema,
			},
		})
	}
	return out
}
