package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielchristiancazares/forge/internal/command"
	"github.com/danielchristiancazares/forge/internal/inputstate"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/opstate"
	"github.com/danielchristiancazares/forge/internal/toolloop"
)

// handleKey dispatches one decoded key event according to the current
// input mode (spec §4.3). Each mode's own token/handle pair keeps a
// key meant for Insert from ever touching Command's draft and vice
// versa.
func (e *Engine) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return e.handleCtrlC()
	}

	// Tool approval and crash recovery are not input modes: they gate
	// on operation state, not on inputstate.Machine, since the draft
	// the user was composing before a batch arrived must stay exactly
	// as they left it.
	if tl, ok := e.ops.Current().(*opstate.ToolLoopState); ok {
		if _, awaiting := tl.Phase.(opstate.AwaitingApproval); awaiting {
			return e.handleApprovalKey(msg, tl.Batch)
		}
	}
	if rec, ok := e.ops.Current().(*opstate.ToolRecoveryState); ok {
		return e.handleRecoveryKey(msg, rec)
	}

	switch e.input.Current().Kind() {
	case inputstate.KindNormal:
		return e.handleNormalKey(msg)
	case inputstate.KindInsert:
		return e.handleInsertKey(msg)
	case inputstate.KindCommand:
		return e.handleCommandKey(msg)
	case inputstate.KindModelSelect:
		return e.handleModelSelectKey(msg)
	case inputstate.KindFileSelect:
		return e.handleFileSelectKey(msg)
	}
	return nil
}

// handleCtrlC cancels an in-flight operation if one exists; otherwise
// it quits, mirroring the teacher's double-purpose ctrl-c in
// internal/tui/hints.go (cancel first, quit on a second press within
// the hint timeout). Engine simplifies this to "cancel if there's
// something to cancel", since the frame loop has no notion of a
// repeated-keypress timeout of its own.
func (e *Engine) handleCtrlC() tea.Cmd {
	switch e.ops.Current().Kind() {
	case opstate.KindStreaming, opstate.KindToolLoop:
		e.cancelActiveOperation()
		return nil
	}
	e.quitting = true
	return nil
}

func (e *Engine) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "i":
		e.input.EnterInsert(inputstate.NewDraft())
		e.bumpVersion()
	case ":", "/":
		e.input.EnterCommand()
		e.bumpVersion()
	case "m":
		e.input.EnterModelSelect(e.deps.ModelCatalog)
		e.bumpVersion()
	case "q":
		if e.ops.Current().Kind() == opstate.KindIdle {
			e.quitting = true
		}
	}
	return nil
}

func (e *Engine) handleInsertKey(msg tea.KeyMsg) tea.Cmd {
	token, ok := e.input.AsInsert()
	if !ok {
		return nil
	}
	h := token.Handle()
	defer e.bumpVersion()

	switch msg.Type {
	case tea.KeyEsc:
		e.input.EnterNormal()
	case tea.KeyBackspace:
		h.Backspace()
	case tea.KeyDelete:
		h.DeleteForward()
	case tea.KeyLeft:
		h.MoveLeft()
	case tea.KeyRight:
		h.MoveRight()
	case tea.KeyHome:
		h.MoveHome()
	case tea.KeyEnd:
		h.MoveEnd()
	case tea.KeyEnter:
		e.submitInsert(h)
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r == '@' {
				e.openFileSelect(token)
				return nil
			}
			h.InsertRune(r)
		}
	}
	return nil
}

func (e *Engine) submitInsert(h *inputstate.InsertHandle) {
	queued, err := h.Submit(e.activeModel, e.credentialResolver())
	if err != nil {
		e.notice = err.Error()
		return
	}
	e.notice = ""
	e.startTurn(queued)
}

// openFileSelect lists the current directory filtered by an empty
// prefix (the user can keep typing to narrow it); this is a direct,
// single-directory listing rather than a recursive project-wide
// index, since the input layer only ever inserts one reference at a
// time and a huge match list would be unusable in the overlay anyway.
func (e *Engine) openFileSelect(token inputstate.InsertToken) {
	matches := listFiles("")
	e.input.EnterFileSelect(token, "", matches)
	e.bumpVersion()
}

func listFiles(prefix string) []string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return nil
	}
	var matches []string
	for _, ent := range entries {
		name := ent.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		if ent.IsDir() {
			name += string(filepath.Separator)
		}
		matches = append(matches, name)
	}
	return matches
}

func (e *Engine) handleCommandKey(msg tea.KeyMsg) tea.Cmd {
	token, ok := e.input.AsCommand()
	if !ok {
		return nil
	}
	h := token.Handle()
	defer e.bumpVersion()

	switch msg.Type {
	case tea.KeyEsc:
		h.Cancel()
	case tea.KeyBackspace:
		h.Backspace()
	case tea.KeyLeft:
		h.MoveLeft()
	case tea.KeyRight:
		h.MoveRight()
	case tea.KeyEnter:
		line := h.Line()
		cmd, ok := command.Parse(":" + line)
		if ok {
			e.dispatchCommand(cmd)
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			h.InsertRune(r)
		}
	}
	return nil
}

func (e *Engine) handleModelSelectKey(msg tea.KeyMsg) tea.Cmd {
	token, ok := e.input.AsModelSelect()
	if !ok {
		return nil
	}
	h := token.Handle()
	defer e.bumpVersion()

	switch msg.Type {
	case tea.KeyEsc:
		h.Cancel()
	case tea.KeyUp:
		h.MoveUp()
	case tea.KeyDown:
		h.MoveDown()
	case tea.KeyEnter:
		if model, ok := h.Confirm(); ok {
			e.switchModel(model)
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r >= '1' && r <= '9' {
				h.SelectIndex(int(r - '1'))
			}
		}
	}
	return nil
}

func (e *Engine) handleFileSelectKey(msg tea.KeyMsg) tea.Cmd {
	token, ok := e.input.AsFileSelect()
	if !ok {
		return nil
	}
	h := token.Handle()
	defer e.bumpVersion()

	switch msg.Type {
	case tea.KeyEsc:
		h.Cancel()
	case tea.KeyUp:
		h.MoveUp()
	case tea.KeyDown:
		h.MoveDown()
	case tea.KeyEnter:
		h.Confirm()
	case tea.KeyBackspace:
		prefix := h.Prefix()
		if prefix != "" {
			prefix = prefix[:len(prefix)-1]
		}
		h.SetFilter(prefix, listFiles(prefix))
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			prefix := h.Prefix() + string(r)
			h.SetFilter(prefix, listFiles(prefix))
		}
	}
	return nil
}

// handleApprovalKey resolves a ToolLoop(AwaitingApproval) batch. Enter
// accepts the policy-suggested bitmap computed when the batch arrived
// (config.ApprovalPolicy.Decide per call); y/n are the explicit
// all-or-nothing overrides; Esc denies every call without executing
// any of them.
func (e *Engine) handleApprovalKey(msg tea.KeyMsg, batch opstate.Batch) tea.Cmd {
	var decision toolloop.Decision
	switch {
	case msg.Type == tea.KeyEnter:
		if e.toolApproval != nil {
			decision = toolloop.Select(e.toolApproval.bitmap)
		} else {
			decision = toolloop.ApproveAll()
		}
	case msg.Type == tea.KeyEsc:
		decision = toolloop.DenyAll()
	case msg.String() == "y":
		decision = toolloop.ApproveAll()
	case msg.String() == "n":
		decision = toolloop.DenyAll()
	default:
		return nil
	}

	if err := e.ops.ToToolLoopExecuting(opstate.Executing{}); err != nil {
		e.notice = err.Error()
		return nil
	}
	e.toolApproval = nil
	e.bumpVersion()
	e.runToolBatch(batch, decision)
	return nil
}

// handleRecoveryKey resolves a batch rehydrated from the tool journal
// at startup. Retrying a partially executed batch would require
// re-deriving a full opstate.Batch (ArgsJSON, thought signatures) the
// journal's calls_payload does not carry, so recovery only offers
// abandon: the batch is committed with kind "abandoned", no per-call
// rows are added for calls that never ran, and the engine returns to
// Idle clean.
func (e *Engine) handleRecoveryKey(msg tea.KeyMsg, rec *opstate.ToolRecoveryState) tea.Cmd {
	if msg.String() != "a" && msg.Type != tea.KeyEnter {
		return nil
	}
	ctx := context.Background()
	_ = e.deps.ToolJournal.CommitBatch(ctx, journal.ToolBatchId(rec.Recovered.BatchID), "abandoned", time.Now())
	_ = e.ops.ToIdle()
	e.bumpVersion()
	return nil
}
