package engine

import (
	"github.com/danielchristiancazares/forge/internal/inputstate"
	"github.com/danielchristiancazares/forge/internal/opstate"
	"github.com/danielchristiancazares/forge/internal/render"
)

// buildRenderState projects the three typestate machines (input, op,
// context budget) plus history into the read-only shape render needs.
// render never touches inputstate's proof tokens or opstate's
// transition methods directly; this is the one place that type-switches
// both for display.
func (e *Engine) buildRenderState() render.RenderState {
	return render.RenderState{
		DisplayVersion: e.displayVersion,
		Mode:           e.buildModeView(),
		History:        e.history.Entries(),
		Op:             e.buildOpView(),
		StatusLine:     e.buildStatusLine(),
		Notice:         e.notice,
		Accessibility:  e.deps.Accessibility,
	}
}

// buildModeView reads the active mode through its token/handle pair
// rather than type-asserting inputstate.State directly: the state
// structs keep their fields unexported precisely so only a handle
// obtained the proof-token way can see inside them.
func (e *Engine) buildModeView() render.ModeView {
	if token, ok := e.input.AsInsert(); ok {
		d := token.Handle().Draft()
		return render.ModeView{Kind: inputstate.KindInsert, DraftText: d.Text(), DraftCursor: d.Cursor()}
	}
	if token, ok := e.input.AsCommand(); ok {
		d := token.Handle().Draft()
		return render.ModeView{Kind: inputstate.KindCommand, DraftText: d.Text(), DraftCursor: d.Cursor()}
	}
	if token, ok := e.input.AsModelSelect(); ok {
		h := token.Handle()
		return render.ModeView{
			Kind:          inputstate.KindModelSelect,
			ModelCatalog:  h.Catalog(),
			ModelSelected: h.Selected(),
		}
	}
	if token, ok := e.input.AsFileSelect(); ok {
		h := token.Handle()
		return render.ModeView{
			Kind:         inputstate.KindFileSelect,
			FilePrefix:   h.Prefix(),
			FileMatches:  h.Matches(),
			FileSelected: h.Selected(),
		}
	}
	return render.ModeView{Kind: inputstate.KindNormal}
}

func (e *Engine) buildOpView() render.OpView {
	switch s := e.ops.Current().(type) {
	case *opstate.StreamingState:
		view := render.OpView{Kind: opstate.KindStreaming, Model: s.Model}
		if e.pipeline != nil {
			view.StreamingText = e.pipeline.Text()
			view.StreamingThinking = e.pipeline.Thinking()
		}
		return view

	case *opstate.ToolLoopState:
		view := render.OpView{Kind: opstate.KindToolLoop, Model: s.Batch.Model, Batch: s.Batch.Calls}
		switch phase := s.Phase.(type) {
		case opstate.AwaitingApproval:
			view.AwaitingApproval = true
		case opstate.Executing:
			view.ExecutingIndex = phase.CurrentIndex
		}
		return view

	case *opstate.ToolRecoveryState:
		return render.OpView{Kind: opstate.KindToolRecovery, Model: s.Model, RecoveryBadge: true}

	case *opstate.SummarizingState:
		return render.OpView{Kind: opstate.KindSummarizing}

	case *opstate.SummarizingWithQueuedState:
		return render.OpView{Kind: opstate.KindSummarizingWithQueued, Model: s.Queued.Model()}

	default:
		return render.OpView{Kind: opstate.KindIdle}
	}
}

func (e *Engine) buildStatusLine() render.StatusLineView {
	budget := e.ctxmgr.Classify(e.activeModel)
	return render.StatusLineView{
		Provider:             e.activeModel.Provider(),
		ModelDisplayName:     e.activeModel.DisplayName(),
		Classification:       budget.Classification,
		EstimatedInputTokens: budget.EstimatedInputTokens,
		ContextTokens:        e.activeModel.Limits().ContextTokens,
	}
}
