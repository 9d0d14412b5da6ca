package inputstate

// FileSelectState is the overlay filtered by a path prefix; it can
// only be entered from Insert mode, since confirming inserts a file
// reference back into that draft at the insert position.
type FileSelectState struct {
	returnTo InsertState
	prefix   string
	matches  []string
	selected int
}

func (FileSelectState) Kind() Kind    { return KindFileSelect }
func (FileSelectState) isInputState() {}

// FileSelectToken witnesses FileSelect mode.
type FileSelectToken struct {
	m *Machine
}

// Handle returns a handle over the machine's current FileSelect state.
func (t FileSelectToken) Handle() *FileSelectHandle {
	return &FileSelectHandle{m: t.m}
}

// FileSelectHandle exposes the operations legal only in FileSelect mode.
type FileSelectHandle struct {
	m *Machine
}

func (h *FileSelectHandle) state() FileSelectState {
	return h.m.current.(FileSelectState)
}

// Prefix returns the current filter prefix.
func (h *FileSelectHandle) Prefix() string { return h.state().prefix }

// Matches returns the current filtered candidate list.
func (h *FileSelectHandle) Matches() []string { return h.state().matches }

// Selected returns the currently highlighted index.
func (h *FileSelectHandle) Selected() int { return h.state().selected }

// SetFilter replaces the prefix and matches as the user keeps typing.
func (h *FileSelectHandle) SetFilter(prefix string, matches []string) {
	s := h.state()
	s.prefix = prefix
	s.matches = matches
	if s.selected >= len(matches) {
		s.selected = 0
	}
	h.m.current = s
}

func (h *FileSelectHandle) MoveUp() {
	s := h.state()
	if s.selected > 0 {
		s.selected--
	}
	h.m.current = s
}

func (h *FileSelectHandle) MoveDown() {
	s := h.state()
	if s.selected < len(s.matches)-1 {
		s.selected++
	}
	h.m.current = s
}

// Confirm inserts the highlighted match as a file reference into the
// draft at the insert position, restores Insert mode, and consumes
// the handle.
func (h *FileSelectHandle) Confirm() (string, bool) {
	s := h.state()
	if len(s.matches) == 0 {
		h.m.current = s.returnTo
		return "", false
	}
	picked := s.matches[s.selected]
	h.m.current = InsertState{draft: s.returnTo.draft.insertString(picked)}
	return picked, true
}

// Cancel restores Insert mode without inserting anything.
func (h *FileSelectHandle) Cancel() {
	h.m.current = h.state().returnTo
}
