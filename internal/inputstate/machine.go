package inputstate

import "github.com/danielchristiancazares/forge/internal/domain"

// Machine owns the current input mode. It is driven exclusively by
// the frame loop's input-pump drain step (§4.2); it is not safe for
// concurrent use.
type Machine struct {
	current State
}

// NewMachine starts in Normal mode.
func NewMachine() *Machine {
	return &Machine{current: NormalState{}}
}

// Current returns the active mode.
func (m *Machine) Current() State { return m.current }

// EnterInsert switches to Insert mode, seeding the draft (typically
// empty, or a restored one after a cancelled overlay).
func (m *Machine) EnterInsert(draft Draft) {
	m.current = InsertState{draft: draft}
}

// EnterNormal switches to Normal mode unconditionally, discarding any
// in-progress draft. Used for Escape from any mode and for quit.
func (m *Machine) EnterNormal() {
	m.current = NormalState{}
}

// EnterCommand switches to Command mode with an empty line.
func (m *Machine) EnterCommand() {
	m.current = CommandState{draft: NewDraft()}
}

// EnterModelSelect opens the model-picker overlay on top of the
// current mode, which is restored on Confirm or Cancel.
func (m *Machine) EnterModelSelect(catalog []domain.ModelName) {
	m.current = ModelSelectState{returnTo: m.current, catalog: catalog}
}

// EnterFileSelect opens the file-picker overlay. It is only legal
// from Insert mode, since Confirm inserts back into that draft; the
// caller (the Insert mode's slash/`@`-trigger handler) is responsible
// for only calling this while holding an InsertToken.
func (m *Machine) EnterFileSelect(from InsertToken, prefix string, matches []string) {
	m.current = FileSelectState{returnTo: from.m.current.(InsertState), prefix: prefix, matches: matches}
}

// AsInsert returns an InsertToken if the machine is currently in
// Insert mode.
func (m *Machine) AsInsert() (InsertToken, bool) {
	if _, ok := m.current.(InsertState); ok {
		return InsertToken{m: m}, true
	}
	return InsertToken{}, false
}

// AsCommand returns a CommandToken if the machine is currently in
// Command mode.
func (m *Machine) AsCommand() (CommandToken, bool) {
	if _, ok := m.current.(CommandState); ok {
		return CommandToken{m: m}, true
	}
	return CommandToken{}, false
}

// AsModelSelect returns a ModelSelectToken if the machine is
// currently in ModelSelect mode.
func (m *Machine) AsModelSelect() (ModelSelectToken, bool) {
	if _, ok := m.current.(ModelSelectState); ok {
		return ModelSelectToken{m: m}, true
	}
	return ModelSelectToken{}, false
}

// AsFileSelect returns a FileSelectToken if the machine is currently
// in FileSelect mode.
func (m *Machine) AsFileSelect() (FileSelectToken, bool) {
	if _, ok := m.current.(FileSelectState); ok {
		return FileSelectToken{m: m}, true
	}
	return FileSelectToken{}, false
}
