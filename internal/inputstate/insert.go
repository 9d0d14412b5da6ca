package inputstate

import (
	"fmt"

	"github.com/danielchristiancazares/forge/internal/domain"
)

// InsertState is text composition with a grapheme-correct cursor.
type InsertState struct {
	draft Draft
}

func (InsertState) Kind() Kind    { return KindInsert }
func (InsertState) isInputState() {}

// CredentialResolver resolves a live credential for provider, if one
// is configured. The input layer never reads config or environment
// directly; it only asks this question at submit time.
type CredentialResolver func(provider domain.Provider) (domain.ApiKey, bool)

// SubmitRejection explains why Submit did not produce a
// QueuedUserMessage. The draft and mode are left untouched so the
// user can correct and retry.
type SubmitRejection struct {
	Reason string
}

func (r SubmitRejection) Error() string { return r.Reason }

// InsertToken witnesses that the machine was in Insert mode at the
// moment it was obtained. It is the only way to construct an
// InsertHandle, so an insert-only mutation is structurally impossible
// to apply from any other mode.
type InsertToken struct {
	m *Machine
}

// Handle consumes the token and returns a handle over the machine's
// current Insert state. Calling this twice from two tokens observed
// at different times is safe; each handle re-reads the machine's
// current state when applying a mutation.
func (t InsertToken) Handle() *InsertHandle {
	return &InsertHandle{m: t.m}
}

// InsertHandle exposes the operations legal only in Insert mode.
type InsertHandle struct {
	m *Machine
}

func (h *InsertHandle) state() InsertState {
	return h.m.current.(InsertState)
}

// Draft returns the current composition buffer.
func (h *InsertHandle) Draft() Draft { return h.state().draft }

// InsertRune inserts r at the cursor.
func (h *InsertHandle) InsertRune(r rune) {
	s := h.state()
	h.m.current = InsertState{draft: s.draft.insertRune(r)}
}

// InsertString inserts text at the cursor, used for pasted text and
// file-reference insertion from FileSelect.
func (h *InsertHandle) InsertString(text string) {
	s := h.state()
	h.m.current = InsertState{draft: s.draft.insertString(text)}
}

// Backspace deletes the cluster before the cursor.
func (h *InsertHandle) Backspace() {
	s := h.state()
	h.m.current = InsertState{draft: s.draft.backspace()}
}

// DeleteForward deletes the cluster at the cursor.
func (h *InsertHandle) DeleteForward() {
	s := h.state()
	h.m.current = InsertState{draft: s.draft.deleteForward()}
}

// MoveLeft/MoveRight/MoveHome/MoveEnd move the cursor by one grapheme
// cluster or to an edge.
func (h *InsertHandle) MoveLeft()  { h.m.current = InsertState{draft: h.state().draft.moveLeft()} }
func (h *InsertHandle) MoveRight() { h.m.current = InsertState{draft: h.state().draft.moveRight()} }
func (h *InsertHandle) MoveHome()  { h.m.current = InsertState{draft: h.state().draft.moveHome()} }
func (h *InsertHandle) MoveEnd()   { h.m.current = InsertState{draft: h.state().draft.moveEnd()} }

// Submit consumes the handle and produces a QueuedUserMessage proof
// if the draft is non-empty after trim and a credential resolves for
// model's provider; on success the machine returns to Normal with an
// empty draft. On rejection the draft and mode are left unchanged and
// the reason is returned.
func (h *InsertHandle) Submit(model domain.ModelName, resolve CredentialResolver) (domain.QueuedUserMessage, error) {
	text, err := domain.NewNonEmptyText(h.state().draft.Text())
	if err != nil {
		return domain.QueuedUserMessage{}, SubmitRejection{Reason: "message is empty"}
	}
	key, ok := resolve(model.Provider())
	if !ok {
		return domain.QueuedUserMessage{}, SubmitRejection{
			Reason: fmt.Sprintf("no credential configured for %s", model.Provider()),
		}
	}
	queued := domain.NewQueuedUserMessage(text, model, key)
	h.m.current = NormalState{}
	return queued, nil
}
