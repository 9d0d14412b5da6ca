// Package engine wires the modal input machine, the operation state
// machine, the streaming pipeline, the context manager, the tool
// loop, the distillation task, and the command dispatcher into the
// fixed-cadence frame loop described by spec §4.1. It is the only
// package that implements bubbletea's tea.Model; every other package
// in this module is free of any bubbletea dependency.
//
// Grounded on the teacher's internal/tui/model.go, which plays the
// same "one struct drives Init/Update/View" role for a single
// Claude-only conversation loop. Where the teacher's model held
// loosely related mode flags and ad-hoc fields directly, Engine holds
// the typestate machines this module already built (inputstate,
// opstate, contextmgr) and limits itself to driving them: deciding
// what happens on a tick, not how a mode or an operation state works.
package engine

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielchristiancazares/forge/internal/auth"
	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/danielchristiancazares/forge/internal/contextmgr"
	"github.com/danielchristiancazares/forge/internal/distill"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/hooks"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/opstate"
	"github.com/danielchristiancazares/forge/internal/provideradapter"
	"github.com/danielchristiancazares/forge/internal/render"
	"github.com/danielchristiancazares/forge/internal/skills"
	"github.com/danielchristiancazares/forge/internal/streampipe"
	"github.com/danielchristiancazares/forge/internal/toolloop"

	"github.com/danielchristiancazares/forge/internal/historydb"
	"github.com/danielchristiancazares/forge/internal/inputstate"
)

// tickInterval is the frame loop's fixed cadence (spec §4.1).
const tickInterval = 8 * time.Millisecond

// summarizationWallClock bounds one distillation task end to end
// (spec §4.9 describes the retry backoff; the wall clock itself is a
// deployment knob, defaulted here the way the teacher defaults its
// own request timeouts in internal/api/client.go).
const summarizationWallClock = 2 * time.Minute

// Dependencies are the already-constructed collaborators Engine
// orchestrates. cmd/forge assembles these at startup; Engine itself
// never opens a journal, loads config, or resolves credentials.
type Dependencies struct {
	Providers *provideradapter.Registry
	Tools     toolloop.Registry
	Approval  *config.ApprovalPolicy
	Hooks     *hooks.Runner
	Skills    *skills.Registry
	Resolver  *auth.Resolver

	StreamJournal *journal.StreamJournal
	ToolJournal   *journal.ToolJournal
	History       *historydb.Store
	SessionID     string

	Ids          *domain.IdSequence
	SystemPrompt string

	ModelCatalog []domain.ModelName
	InitialModel domain.ModelName

	OutputCapBytes int
	MaxTokens      int

	Accessibility render.AccessibilityOptions
}

// Engine is the bubbletea model driving one session. It is not safe
// for concurrent use; bubbletea never calls Update concurrently with
// itself, which is the only guarantee Engine relies on.
type Engine struct {
	deps Dependencies

	input  *inputstate.Machine
	ops    *opstate.Machine
	ctxmgr *contextmgr.Manager
	render *render.Renderer

	history *domain.History

	activeModel domain.ModelName

	// Execution-side plumbing for the current Streaming step. opstate
	// only models the state machine's shape; the live channel and
	// accumulator belong to the engine that reads them every tick.
	streamEvents <-chan streampipe.Event
	pipeline     *streampipe.Pipeline
	streamCancel context.CancelFunc

	// toolApproval carries the suggested per-call decision computed
	// when a batch enters AwaitingApproval, so a bare confirm key can
	// accept it without the user re-specifying every call.
	toolApproval *approvalSuggestion

	displayVersion uint64
	width, height  int

	notice string // transient command-dispatch / rejection text

	quitting   bool
	clearNext  bool // never set or read: :clear clears history at once in runCommand
	recovering []journal.RecoveredBatch
}

// approvalSuggestion is the per-call bitmap computed from
// config.ApprovalPolicy when a batch first enters AwaitingApproval.
type approvalSuggestion struct {
	bitmap []bool
}

// New constructs an Engine seeded with history (already replayed from
// historydb by the caller) and ready to run from Idle, or from
// ToolRecovery if recovered is non-empty.
func New(deps Dependencies, history *domain.History, recovered []journal.RecoveredBatch) *Engine {
	e := &Engine{
		deps:        deps,
		input:       inputstate.NewMachine(),
		ops:         opstate.NewMachine(),
		ctxmgr:      contextmgr.NewManager(history, deps.SystemPrompt),
		render:      render.NewRenderer(),
		history:     history,
		activeModel: deps.InitialModel,
		recovering:  recovered,
	}
	return e
}

// Init satisfies tea.Model. It starts the frame loop and, if the
// startup scan found uncommitted tool batches, enters ToolRecovery for
// the first one before the first tick runs.
func (e *Engine) Init() tea.Cmd {
	if len(e.recovering) > 0 {
		e.enterToolRecovery(e.recovering[0])
		e.recovering = e.recovering[1:]
	}
	return e.tickCmd()
}

type frameTick time.Time

func (e *Engine) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return frameTick(t) })
}

// Update satisfies tea.Model. Per spec §4.1, a frame tick performs, in
// order: drain input (bubbletea already decouples the blocking reader
// onto its own thread and delivers one decoded tea.KeyMsg per Update
// call, so the "input pump" the spec describes is this Update method
// itself, not a queue Engine drains separately); advance operation
// state one cooperative step; the frame itself is produced by View,
// called by bubbletea after Update returns.
func (e *Engine) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width, e.height = msg.Width, msg.Height
		e.bumpVersion()
		return e, nil

	case tea.KeyMsg:
		cmd := e.handleKey(msg)
		if e.quitting {
			return e, tea.Quit
		}
		return e, cmd

	case frameTick:
		cmd := e.advanceOperation()
		if e.quitting {
			return e, tea.Quit
		}
		return e, tea.Batch(cmd, e.tickCmd())
	}
	return e, nil
}

// View satisfies tea.Model.
func (e *Engine) View() string {
	state := e.buildRenderState()
	return e.render.Render(state, e.width)
}

func (e *Engine) bumpVersion() { e.displayVersion++ }

// credentialResolver adapts auth.Resolver's (ApiKey, error) shape to
// the (ApiKey, bool) CredentialResolver inputstate.InsertHandle.Submit
// requires; the input layer never sees the resolution error itself,
// only whether a credential exists, since it has nowhere useful to
// surface the underlying "no OAuth token cached" detail.
func (e *Engine) credentialResolver() inputstate.CredentialResolver {
	return func(provider domain.Provider) (domain.ApiKey, bool) {
		if e.deps.Resolver == nil {
			return domain.ApiKey{}, false
		}
		key, err := e.deps.Resolver.Resolve(context.Background(), provider)
		if err != nil {
			return domain.ApiKey{}, false
		}
		return key, true
	}
}
