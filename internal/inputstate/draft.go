package inputstate

// Draft is composed text plus a grapheme-indexed cursor, carried
// forward across mode transitions so switching to ModelSelect and back
// to Insert never loses in-progress text.
type Draft struct {
	text   string
	cursor int // grapheme index, 0..graphemeCount(text)
}

// NewDraft starts an empty draft with the cursor at position zero.
func NewDraft() Draft { return Draft{} }

// Text returns the draft's current body.
func (d Draft) Text() string { return d.text }

// Cursor returns the cursor's grapheme index.
func (d Draft) Cursor() int { return d.cursor }

func (d Draft) insertRune(r rune) Draft {
	next := insertAtGrapheme(d.text, d.cursor, string(r))
	return Draft{text: next, cursor: d.cursor + 1}
}

func (d Draft) insertString(s string) Draft {
	next := insertAtGrapheme(d.text, d.cursor, s)
	return Draft{text: next, cursor: d.cursor + graphemeCount(s)}
}

func (d Draft) backspace() Draft {
	next, cursor := deleteGraphemeBefore(d.text, d.cursor)
	return Draft{text: next, cursor: cursor}
}

func (d Draft) deleteForward() Draft {
	next := deleteGraphemeAt(d.text, d.cursor)
	return Draft{text: next, cursor: d.cursor}
}

func (d Draft) moveLeft() Draft {
	if d.cursor == 0 {
		return d
	}
	return Draft{text: d.text, cursor: d.cursor - 1}
}

func (d Draft) moveRight() Draft {
	if max := graphemeCount(d.text); d.cursor >= max {
		return d
	}
	return Draft{text: d.text, cursor: d.cursor + 1}
}

func (d Draft) moveHome() Draft { return Draft{text: d.text, cursor: 0} }

func (d Draft) moveEnd() Draft { return Draft{text: d.text, cursor: graphemeCount(d.text)} }
