package streampipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/metrics"
	"github.com/danielchristiancazares/forge/internal/opstate"
)

type pendingToolCall struct {
	name                    string
	args                    strings.Builder
	thoughtSignaturePresent bool
	thoughtSignature        strings.Builder
}

// Pipeline accumulates one streaming step's output, journaling every
// event before it becomes visible, per spec §4.5's journal-before-display
// rule.
type Pipeline struct {
	journal *journal.StreamJournal
	stepID  journal.StepId
	model   domain.ModelName

	text             strings.Builder
	thinking         strings.Builder
	thoughtSignature strings.Builder

	pending map[string]*pendingToolCall
	order   []string

	usage journal.UsagePayload
}

// Open journals a Begin entry and returns a Pipeline ready to process
// events for the new step.
func Open(ctx context.Context, j *journal.StreamJournal, stepID journal.StepId, sessionID string, model domain.ModelName, promptDigest string) (*Pipeline, error) {
	if err := j.Begin(ctx, stepID, sessionID, model.ID(), promptDigest, time.Now()); err != nil {
		return nil, err
	}
	return &Pipeline{journal: j, stepID: stepID, model: model, pending: make(map[string]*pendingToolCall)}, nil
}

// Outcome is what Apply tells the caller to do after journaling and
// applying one event.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeDone
	OutcomeErrored
)

// Apply journals ev, then mutates the in-memory accumulator, in that
// order. It never does the reverse: the journal write is always
// durably staged before anything UI-visible changes.
func (p *Pipeline) Apply(ctx context.Context, ev Event) (Outcome, error) {
	switch ev.Kind {
	case EventTextDelta:
		if err := p.journal.AppendTextDelta(ctx, p.stepID, ev.Text); err != nil {
			return OutcomeContinue, err
		}
		p.text.WriteString(ev.Text)

	case EventThinkingDelta:
		if err := p.journal.AppendThinkingDelta(ctx, p.stepID, ev.Text); err != nil {
			return OutcomeContinue, err
		}
		p.thinking.WriteString(ev.Text)

	case EventThinkingSignatureDelta:
		if err := p.journal.AppendThinkingSignatureDelta(ctx, p.stepID, ev.Text); err != nil {
			return OutcomeContinue, err
		}
		p.thoughtSignature.WriteString(ev.Text)

	case EventOpenAIReasoningItem:
		if err := p.journal.AppendReasoningItem(ctx, p.stepID, ev.Text); err != nil {
			return OutcomeContinue, err
		}
		// Reasoning items are kept only in the journal; the pipeline
		// holds no in-memory list of them and Finalize does not read them.

	case EventToolCallStart:
		payload := journal.ToolCallStartPayload{
			ID:                      ev.ToolCallID,
			Name:                    ev.ToolCallName,
			ThoughtSignaturePresent: ev.ThoughtSignaturePresent,
		}
		if err := p.journal.AppendToolCallStart(ctx, p.stepID, payload); err != nil {
			return OutcomeContinue, err
		}
		p.pending[ev.ToolCallID] = &pendingToolCall{name: ev.ToolCallName, thoughtSignaturePresent: ev.ThoughtSignaturePresent}
		p.order = append(p.order, ev.ToolCallID)

	case EventToolCallArgsDelta:
		payload := journal.ToolCallDeltaPayload{ID: ev.ToolCallID, ArgsChunk: ev.ArgsChunk}
		if err := p.journal.AppendToolCallDelta(ctx, p.stepID, payload); err != nil {
			return OutcomeContinue, err
		}
		if slot, ok := p.pending[ev.ToolCallID]; ok {
			slot.args.WriteString(ev.ArgsChunk)
		}

	case EventUsage:
		if err := p.journal.AppendUsage(ctx, p.stepID, ev.Usage); err != nil {
			return OutcomeContinue, err
		}
		p.usage = ev.Usage

	case EventDone:
		if err := p.seal(ctx, journal.Complete()); err != nil {
			return OutcomeContinue, err
		}
		return OutcomeDone, nil

	case EventError:
		msg := "stream error"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		if err := p.seal(ctx, journal.Errored(msg)); err != nil {
			return OutcomeContinue, err
		}
		return OutcomeErrored, nil

	default:
		return OutcomeContinue, fmt.Errorf("unknown stream event kind %d", ev.Kind)
	}
	return OutcomeContinue, nil
}

// seal times the step-closing journal write, the one write on the hot
// path whose latency matters most since every stream blocks on it.
func (p *Pipeline) seal(ctx context.Context, outcome journal.SealOutcome) error {
	start := time.Now()
	err := p.journal.Seal(ctx, p.stepID, outcome)
	metrics.JournalFlushDuration.WithLabelValues("stream").Observe(time.Since(start).Seconds())
	return err
}

// Text returns the accumulated assistant draft so far.
func (p *Pipeline) Text() string { return p.text.String() }

// Thinking returns the accumulated thinking draft so far.
func (p *Pipeline) Thinking() string { return p.thinking.String() }

// Finalize parses each pending tool call's argument buffer as JSON. A
// parse failure does not fail the stream; it marks that call Invalid
// per spec §4.5, to be surfaced in the tool loop without executing.
func (p *Pipeline) Finalize() []opstate.ParsedToolCall {
	calls := make([]opstate.ParsedToolCall, 0, len(p.order))
	for _, id := range p.order {
		slot := p.pending[id]
		raw := slot.args.String()

		invalid := false
		if raw != "" && !json.Valid([]byte(raw)) {
			invalid = true
		}

		sig := domain.NoThoughtSignature()
		if slot.thoughtSignaturePresent {
			sig = domain.NewThoughtSignature(p.thoughtSignature.String())
		}

		calls = append(calls, opstate.ParsedToolCall{
			ID:               id,
			Name:             slot.name,
			ArgsJSON:         raw,
			Invalid:          invalid,
			ThoughtSignature: sig,
		})
	}
	return calls
}

// Cancel seals the step Incomplete("cancelled"), per spec §4's
// cancellation contract for an in-flight stream.
func (p *Pipeline) Cancel(ctx context.Context) error {
	return p.seal(ctx, journal.Incomplete("cancelled"))
}
