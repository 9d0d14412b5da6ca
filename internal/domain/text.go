package domain

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when constructing a NonEmptyText from a string
// that is empty after trimming.
var ErrEmptyText = errors.New("text is empty after trim")

// NonEmptyText is a validated text wrapper: non-empty after trim. It is
// the type of any message body, status text, or command. Construction is
// fallible and checked at the boundary — callers never see an invalid
// instance.
type NonEmptyText struct {
	trimmed string
}

// NewNonEmptyText validates and wraps s. Leading/trailing whitespace is
// stripped; the trimmed form is what's stored.
func NewNonEmptyText(s string) (NonEmptyText, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return NonEmptyText{}, ErrEmptyText
	}
	return NonEmptyText{trimmed: trimmed}, nil
}

// String returns the trimmed text.
func (t NonEmptyText) String() string { return t.trimmed }

// IsZero reports whether t is the zero value (never produced by
// NewNonEmptyText, but useful for optional fields).
func (t NonEmptyText) IsZero() bool { return t.trimmed == "" }
