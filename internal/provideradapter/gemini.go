package provideradapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/streampipe"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiAdapter streams from the Gemini API via
// google/generative-ai-go, the client the rest of the example pack
// uses for this provider.
type GeminiAdapter struct {
	key domain.ApiKey
}

// NewGeminiAdapter builds a GeminiAdapter scoped to key.
func NewGeminiAdapter(key domain.ApiKey) *GeminiAdapter { return &GeminiAdapter{key: key} }

func (a *GeminiAdapter) newModel(ctx context.Context, req Request) (*genai.Client, *genai.GenerativeModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.key.ExposeSecret()))
	if err != nil {
		return nil, nil, fmt.Errorf("gemini: building client: %w", err)
	}
	model := client.GenerativeModel(req.Model.ID())
	if req.MaxTokens > 0 {
		mt := int32(req.MaxTokens)
		model.MaxOutputTokens = &mt
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemPrompt))
	}
	for _, spec := range req.Tools {
		var schema map[string]any
		_ = json.Unmarshal(spec.InputSchema, &schema)
		model.Tools = append(model.Tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        spec.Name,
				Description: spec.Description,
			}},
		})
	}
	return client, model, nil
}

func (a *GeminiAdapter) Stream(ctx context.Context, req Request) (<-chan streampipe.Event, context.CancelFunc, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	out := make(chan streampipe.Event, eventChannelCapacity)

	client, model, err := a.newModel(streamCtx, req)
	if err != nil {
		cancel()
		close(out)
		return out, cancel, err
	}

	history, last := geminiHistory(req.Entries)
	cs := model.StartChat()
	cs.History = history
	iter := cs.SendMessageStream(streamCtx, last...)

	go func() {
		defer close(out)
		defer cancel()
		defer client.Close()

		toolCallSeq := 0
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				emit(streamCtx, out, streampipe.Done())
				return
			}
			if err != nil {
				emit(streamCtx, out, streampipe.Error(fmt.Errorf("gemini stream: %w", err)))
				return
			}
			if resp.UsageMetadata != nil {
				usage := journal.UsagePayload{
					InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
					OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
				}
				if !emit(streamCtx, out, streampipe.Usage(usage)) {
					return
				}
			}
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					switch p := part.(type) {
					case genai.Text:
						if !emit(streamCtx, out, streampipe.TextDelta(string(p))) {
							return
						}
					case genai.FunctionCall:
						toolCallSeq++
						id := fmt.Sprintf("gemini-call-%d", toolCallSeq)
						args, _ := json.Marshal(p.Args)
						if !emit(streamCtx, out, streampipe.ToolCallStart(id, p.Name, false)) {
							return
						}
						if !emit(streamCtx, out, streampipe.ToolCallArgsDelta(id, string(args))) {
							return
						}
					}
				}
			}
		}
	}()

	return out, cancel, nil
}

// Summarize implements distill.Summarizer with a single non-streaming call.
func (a *GeminiAdapter) Summarize(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error) {
	model, err := domain.NewModelName(domain.ProviderGemini, "gemini-2.5-flash")
	if err != nil {
		return "", err
	}
	client, gm, err := a.newModel(ctx, Request{SystemPrompt: systemPrompt, Entries: entries, Model: model})
	if err != nil {
		return "", err
	}
	defer client.Close()

	_, last := geminiHistory(entries)
	resp, err := gm.GenerateContent(ctx, last...)
	if err != nil {
		return "", fmt.Errorf("gemini summarize: %w", err)
	}
	var text string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}
	return text, nil
}

// geminiHistory splits the flattened transcript into prior turns
// (history) and the final user turn (last), since genai.ChatSession
// wants the newest user message passed separately to SendMessage.
func geminiHistory(entries []domain.Entry) ([]*genai.Content, []genai.Part) {
	turns := flattenTranscript(entries)
	if len(turns) == 0 {
		return nil, nil
	}

	var history []*genai.Content
	for _, t := range turns[:len(turns)-1] {
		history = append(history, geminiContent(t))
	}

	lastTurn := turns[len(turns)-1]
	return history, geminiContent(lastTurn).Parts
}

func geminiContent(t turn) *genai.Content {
	role := "user"
	var parts []genai.Part
	switch t.role {
	case turnUser:
		role = "user"
		parts = []genai.Part{genai.Text(t.text)}
	case turnAssistant:
		role = "model"
		if t.toolCallID != "" {
			var args map[string]any
			_ = json.Unmarshal(t.arguments, &args)
			parts = []genai.Part{genai.FunctionCall{Name: t.toolName, Args: args}}
		} else {
			parts = []genai.Part{genai.Text(t.text)}
		}
	case turnToolResult:
		role = "user"
		parts = []genai.Part{genai.FunctionResponse{
			Name:     t.toolName,
			Response: map[string]any{"result": t.text, "is_error": t.isError},
		}}
	}
	return &genai.Content{Role: role, Parts: parts}
}
