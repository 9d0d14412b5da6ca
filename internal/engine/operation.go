package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/danielchristiancazares/forge/internal/contextmgr"
	"github.com/danielchristiancazares/forge/internal/distill"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/metrics"
	"github.com/danielchristiancazares/forge/internal/opstate"
	"github.com/danielchristiancazares/forge/internal/provideradapter"
	"github.com/danielchristiancazares/forge/internal/streampipe"
	"github.com/danielchristiancazares/forge/internal/toolloop"
)

// startTurn is reached from Insert-mode submit and from a settled
// Summarizing state replaying its queued message. It classifies
// context pressure against queued's model before doing anything
// durable, so a conversation that no longer fits never silently loses
// the distillation step.
func (e *Engine) startTurn(queued domain.QueuedUserMessage) {
	budget := e.ctxmgr.Classify(queued.Model())
	switch budget.Classification {
	case contextmgr.CannotFit:
		e.notice = "conversation no longer fits in the model's context window even after distillation"
		return
	case contextmgr.MustDistill:
		e.beginSummarization(queued)
		return
	}
	e.commitAndStream(queued)
}

// commitAndStream appends queued to history and opens a new streaming
// step against its model.
func (e *Engine) commitAndStream(queued domain.QueuedUserMessage) {
	msg := domain.NewUserMessage(queued.Text().String(), "", false, time.Now())
	id, err := e.history.Append(msg)
	if err != nil {
		e.notice = err.Error()
		return
	}
	e.persistEntry(id, msg)
	e.activeModel = queued.Model()

	if err := e.openStream(queued.Model(), queued.Credential()); err != nil {
		e.notice = err.Error()
		_ = e.ops.ToIdle()
	}
}

// openStream starts a provideradapter stream for the current context
// view and transitions Idle/ToolLoop(Executing) -> Streaming.
func (e *Engine) openStream(model domain.ModelName, key domain.ApiKey) error {
	adapter, err := e.deps.Providers.Resolve(model.Provider())
	if err != nil {
		return err
	}

	view := e.ctxmgr.View()
	stepID := journal.StepId(e.deps.Ids.NextStepId())
	promptDigest := fmt.Sprintf("%d", len(view.Messages))

	ctx, cancel := context.WithCancel(context.Background())
	pipeline, err := streampipe.Open(ctx, e.deps.StreamJournal, stepID, e.deps.SessionID, model, promptDigest)
	if err != nil {
		cancel()
		return err
	}

	events, streamCancel, err := adapter.Stream(ctx, provideradapter.Request{
		SystemPrompt: view.SystemPrompt,
		Entries:      view.Messages,
		Model:        model,
		Key:          key,
		Tools:        e.toolSpecs(),
		MaxTokens:    e.deps.MaxTokens,
	})
	if err != nil {
		cancel()
		return err
	}

	metrics.StreamsStarted.WithLabelValues(model.Provider().String(), model.ID()).Inc()

	e.streamEvents = events
	e.pipeline = pipeline
	e.streamCancel = streamCancel
	return e.ops.ToStreaming(opstate.NewStreaming(stepID, model, streamCancel))
}

// toolSpecs projects the configured tool registry into the provider-
// agnostic shape provideradapter.Request advertises to the model. A
// nil registry (tool use disabled entirely) advertises no tools.
func (e *Engine) toolSpecs() []provideradapter.ToolSpec {
	if e.deps.Tools == nil {
		return nil
	}
	tools := e.deps.Tools.List()
	specs := make([]provideradapter.ToolSpec, len(tools))
	for i, t := range tools {
		specs[i] = provideradapter.ToolSpec{Name: t.Name(), InputSchema: t.InputSchema()}
	}
	return specs
}

// beginSummarization launches a background distillation over the
// current view and parks queued until it settles.
func (e *Engine) beginSummarization(queued domain.QueuedUserMessage) {
	view := e.ctxmgr.View()
	task := distill.Run(context.Background(), e.summarizer(), view.SystemPrompt, view.Messages, summarizationWallClock)
	metrics.DistillationsRun.Inc()
	_ = e.ops.ToSummarizingWithQueued(&opstate.SummarizingWithQueuedState{Task: task, Queued: queued})
}

// beginSummarizationNoQueue launches a background distillation with no
// user request parked behind it, used by the explicit /compact command
// (legal only from Idle, per internal/command's precondition, so there
// is never a draft to carry forward).
func (e *Engine) beginSummarizationNoQueue() {
	view := e.ctxmgr.View()
	task := distill.Run(context.Background(), e.summarizer(), view.SystemPrompt, view.Messages, summarizationWallClock)
	metrics.DistillationsRun.Inc()
	_ = e.ops.ToSummarizing(&opstate.SummarizingState{Task: task})
}

// summarizer adapts the active model's provider adapter to
// distill.Summarizer. Summarization always uses the model the
// conversation is already on, since switching providers mid-distill
// would require a second credential resolution with nowhere to
// surface a failure.
func (e *Engine) summarizer() distill.Summarizer {
	return summarizerFunc(func(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error) {
		adapter, err := e.deps.Providers.Resolve(e.activeModel.Provider())
		if err != nil {
			return "", &distill.Failure{Kind: distill.FailureAuth, Message: err.Error()}
		}
		key, ok := e.credentialResolver()(e.activeModel.Provider())
		if !ok {
			return "", &distill.Failure{Kind: distill.FailureAuth, Message: "no credential for distillation"}
		}
		request := append(append([]domain.Entry(nil), entries...),
			domain.Entry{Message: domain.NewUserMessage("Produce the summary now.", "", false, time.Now())})
		events, cancel, err := adapter.Stream(ctx, provideradapter.Request{
			SystemPrompt: distillationPrompt,
			Entries:      request,
			Model:        e.activeModel,
			Key:          key,
			MaxTokens:    e.deps.MaxTokens,
		})
		if err != nil {
			return "", err
		}
		defer cancel()

		var text string
		for ev := range events {
			switch ev.Kind {
			case streampipe.EventTextDelta:
				text += ev.Text
			case streampipe.EventError:
				return "", ev.Err
			}
		}
		return text, nil
	})
}

// distillationPrompt instructs the model to produce a compact summary
// in place of the cut slice.
const distillationPrompt = "Summarize the conversation so far in a few dense paragraphs, preserving decisions, open questions, and any facts a continuation would need."

type summarizerFunc func(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error)

func (f summarizerFunc) Summarize(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error) {
	return f(ctx, systemPrompt, entries)
}

// cancelActiveOperation aborts whatever is running and returns to
// Idle. It is the only path back to Idle that does not go through a
// state's normal terminal transition.
func (e *Engine) cancelActiveOperation() {
	switch s := e.ops.Current().(type) {
	case *opstate.StreamingState:
		s.Cancel()
		if e.pipeline != nil {
			_ = e.pipeline.Cancel(context.Background())
		}
	case *opstate.ToolLoopState:
		if ex, ok := s.Phase.(opstate.Executing); ok && ex.Cancel != nil {
			ex.Cancel()
		}
	}
	_ = e.ops.ToIdle()
	e.notice = "cancelled"
}

// switchModel changes the active model and tries to lift the active
// distillation cut if the full history now fits again.
func (e *Engine) switchModel(model domain.ModelName) {
	e.activeModel = model
	e.ctxmgr.TryRestore(model)
	e.bumpVersion()
}

// advanceOperation performs one cooperative step of whatever the
// operation state machine is doing (spec §4.1's "advance one step" of
// the frame loop), never blocking past a single non-blocking drain.
func (e *Engine) advanceOperation() tea.Cmd {
	switch s := e.ops.Current().(type) {
	case *opstate.StreamingState:
		e.advanceStreaming(s)
	case *opstate.SummarizingState:
		e.advanceSummarizing(s.Task, nil)
	case *opstate.SummarizingWithQueuedState:
		queued := s.Queued
		e.advanceSummarizing(s.Task, &queued)
	}
	return nil
}

func (e *Engine) advanceStreaming(s *opstate.StreamingState) {
	select {
	case ev, ok := <-e.streamEvents:
		if !ok {
			return
		}
		outcome, err := e.pipeline.Apply(context.Background(), ev)
		if err != nil {
			e.notice = err.Error()
			return
		}
		e.bumpVersion()
		switch outcome {
		case streampipe.OutcomeDone:
			e.finishStream(s, nil)
		case streampipe.OutcomeErrored:
			e.finishStream(s, err)
		}
	default:
	}
}

// finishStream finalizes the pipeline's accumulated text/thinking/tool
// calls into history and transitions out of Streaming, either into
// ToolLoop(AwaitingApproval) when the model asked for tools, or Idle.
func (e *Engine) finishStream(s *opstate.StreamingState, streamErr error) {
	text := e.pipeline.Text()
	thinking := e.pipeline.Thinking()
	now := time.Now()

	if thinking != "" {
		msg := domain.NewThinkingMessage(thinking, domain.NoReplay(), s.Model, now)
		if id, err := e.history.Append(msg); err == nil {
			e.persistEntry(id, msg)
		}
	}
	if text != "" || streamErr == nil {
		msg := domain.NewAssistantMessage(text, s.Model, now)
		if id, err := e.history.Append(msg); err == nil {
			e.persistEntry(id, msg)
		}
	}

	calls := e.pipeline.Finalize()
	e.streamEvents = nil
	e.pipeline = nil
	e.streamCancel = nil

	if len(calls) == 0 {
		_ = e.ops.ToIdle()
		return
	}

	for _, c := range calls {
		msg := domain.NewToolUseMessage(c.ID, c.Name, []byte(c.ArgsJSON), c.ThoughtSignature, c.Invalid, now)
		if id, err := e.history.Append(msg); err == nil {
			e.persistEntry(id, msg)
		}
	}

	batch := opstate.Batch{
		ID:     journal.ToolBatchId(e.deps.Ids.NextToolBatchId()),
		StepID: s.StepID,
		Model:  s.Model,
		Calls:  calls,
	}
	e.toolApproval = e.suggestApproval(batch)
	_ = e.ops.ToToolLoopAwaitingApproval(opstate.NewToolLoopAwaitingApproval(batch, nil))
}

// suggestApproval computes the per-call bitmap config.ApprovalPolicy
// would pick, so a bare accept key can approve a whole batch at once
// without the user re-specifying every call (toolloop.ExecuteBatch
// itself never consults the policy; the decision must already reflect
// it by the time ExecuteBatch is called).
func (e *Engine) suggestApproval(batch opstate.Batch) *approvalSuggestion {
	if e.deps.Approval == nil {
		return nil
	}
	bitmap := make([]bool, len(batch.Calls))
	for i, c := range batch.Calls {
		policy := e.deps.Approval.Decide(c.Name, matchValueFor(c), defaultPolicyFor(c.Name))
		bitmap[i] = policy == config.PolicyAutoApprove
	}
	return &approvalSuggestion{bitmap: bitmap}
}

// defaultPolicyFor is the tool's own declared side-effect policy, used
// when no allow/deny rule matches. Grounded on the read-only tools
// (FileRead, Glob, Grep) auto-approving and the side-effecting ones
// (Bash, FileEdit, FileWrite, WebFetch) requiring approval by default.
func defaultPolicyFor(name string) config.ToolPolicy {
	switch name {
	case "FileRead", "Glob", "Grep":
		return config.PolicyAutoApprove
	default:
		return config.PolicyRequiresApproval
	}
}

// matchValueFor extracts the field an allow/deny glob rule matches
// against: the shell command for Bash, the path for file tools.
func matchValueFor(c opstate.ParsedToolCall) string {
	var args struct {
		Command string `json:"command"`
		Path    string `json:"path"`
	}
	if json.Unmarshal([]byte(c.ArgsJSON), &args) != nil {
		return ""
	}
	if args.Command != "" {
		return args.Command
	}
	return args.Path
}

// runToolBatch executes an approved/denied batch synchronously —
// ExecuteBatch already runs its calls sequentially with no
// parallelism to cooperatively yield between, so there is nothing a
// per-tick step would gain by splitting it further — then appends the
// resulting ToolResult messages and opens the next streaming step so
// the model can see them.
func (e *Engine) runToolBatch(batch opstate.Batch, decision toolloop.Decision) {
	results, err := toolloop.ExecuteBatch(context.Background(), e.deps.ToolJournal, e.deps.Tools, e.deps.Approval, batch, decision, e.deps.OutputCapBytes)
	if err != nil {
		e.notice = err.Error()
		_ = e.ops.ToIdle()
		return
	}

	for i, result := range results {
		metrics.ToolCallsExecuted.WithLabelValues(batch.Calls[i].Name, string(result.Outcome.Kind)).Inc()
	}

	for _, msg := range toolloop.ToResultMessages(batch, results) {
		if id, appendErr := e.history.Append(msg); appendErr == nil {
			e.persistEntry(id, msg)
		}
	}

	_ = e.ops.ToIdle()
	key, ok := e.credentialResolver()(batch.Model.Provider())
	if !ok {
		e.notice = "no credential configured for " + batch.Model.Provider().String()
		return
	}
	if err := e.openStream(batch.Model, key); err != nil {
		e.notice = err.Error()
	}
}

func (e *Engine) persistEntry(id domain.MessageId, msg domain.Message) {
	if e.deps.History == nil {
		return
	}
	entry := domain.Entry{ID: id, Message: msg}
	seq := e.history.Len() - 1
	if err := e.deps.History.AppendMessage(context.Background(), e.deps.SessionID, seq, entry); err != nil {
		e.notice = err.Error()
	}
}

// advanceSummarizing polls task and settles the state once it is done.
// distill.Run already carries out spec §4.9's complete retry sequence
// internally (up to 5 attempts, each spaced by its own jittered
// backoff) before Result ever returns an error, so a terminal failure
// here is exhausted retries, a non-retryable failure (auth or invalid
// output), or the wall-clock cap: surface it and return to Idle,
// rejecting any queued request, per spec §8 scenario S6.
func (e *Engine) advanceSummarizing(task *distill.Handle, queued *domain.QueuedUserMessage) {
	select {
	case <-task.Done():
	default:
		return
	}

	summary, err := task.Result()
	if err == nil {
		e.settleDistillation(summary, queued)
		return
	}

	e.notice = "distillation failed: " + err.Error()
	_ = e.ops.ToIdle()
}

func (e *Engine) settleDistillation(summary string, queued *domain.QueuedUserMessage) {
	view := e.ctxmgr.View()
	distillate := domain.NewAssistantMessage(summary, e.activeModel, time.Now())
	beforeIndex := e.history.Len() - len(view.Messages)
	e.ctxmgr.SetCut(beforeIndex, distillate)
	e.bumpVersion()

	if queued == nil {
		_ = e.ops.ToIdle()
		return
	}
	_ = e.ops.ToIdle()
	e.commitAndStream(*queued)
}
