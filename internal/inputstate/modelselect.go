package inputstate

import "github.com/danielchristiancazares/forge/internal/domain"

// ModelSelectState is the overlay listing catalog models for
// arrow/number selection. returnTo is the mode to restore on cancel
// or confirm, carrying its draft forward untouched.
type ModelSelectState struct {
	returnTo State
	catalog  []domain.ModelName
	selected int
}

func (ModelSelectState) Kind() Kind    { return KindModelSelect }
func (ModelSelectState) isInputState() {}

// ModelSelectToken witnesses ModelSelect mode.
type ModelSelectToken struct {
	m *Machine
}

// Handle returns a handle over the machine's current ModelSelect state.
func (t ModelSelectToken) Handle() *ModelSelectHandle {
	return &ModelSelectHandle{m: t.m}
}

// ModelSelectHandle exposes the operations legal only in ModelSelect mode.
type ModelSelectHandle struct {
	m *Machine
}

func (h *ModelSelectHandle) state() ModelSelectState {
	return h.m.current.(ModelSelectState)
}

// Catalog returns the models on offer.
func (h *ModelSelectHandle) Catalog() []domain.ModelName { return h.state().catalog }

// Selected returns the currently highlighted index.
func (h *ModelSelectHandle) Selected() int { return h.state().selected }

func (h *ModelSelectHandle) MoveUp() {
	s := h.state()
	if s.selected > 0 {
		s.selected--
	}
	h.m.current = s
}

func (h *ModelSelectHandle) MoveDown() {
	s := h.state()
	if s.selected < len(s.catalog)-1 {
		s.selected++
	}
	h.m.current = s
}

// SelectIndex jumps directly to index (numeric selection), clamped to
// range.
func (h *ModelSelectHandle) SelectIndex(index int) {
	s := h.state()
	if index < 0 || index >= len(s.catalog) {
		return
	}
	s.selected = index
	h.m.current = s
}

// Confirm picks the highlighted model, restores returnTo, and
// consumes the handle.
func (h *ModelSelectHandle) Confirm() (domain.ModelName, bool) {
	s := h.state()
	h.m.current = s.returnTo
	if len(s.catalog) == 0 {
		return domain.ModelName{}, false
	}
	return s.catalog[s.selected], true
}

// Cancel restores returnTo without a selection.
func (h *ModelSelectHandle) Cancel() {
	h.m.current = h.state().returnTo
}
