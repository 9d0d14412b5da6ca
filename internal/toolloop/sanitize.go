package toolloop

import (
	"os"
	"strings"
)

// invisibleRunes are zero-width and directional-override code points
// that can hide instructions inside tool output a model or a user
// would not otherwise see rendered.
var invisibleRunes = []rune{
	'​', // zero-width space
	'‌', // zero-width non-joiner
	'‍', // zero-width joiner
	'⁠', // word joiner
	'﻿', // byte order mark / zero-width no-break space
	'‪', '‫', '‬', '‭', '‮', // bidi overrides
}

// truncationIndicator is appended when output exceeds the configured
// display cap; the full content remains in the tool journal.
const truncationIndicator = "\n… [truncated, see tool journal for full output]"

// sanitizeForDisplay strips invisible characters and normalizes the
// user's home directory to "~", per spec §4.7's "tool output is
// treated as untrusted" rule. Raw bytes (pre-sanitization) are always
// what gets journaled; this function only governs what the UI shows.
func sanitizeForDisplay(content string) string {
	stripped := strings.Map(func(r rune) rune {
		for _, bad := range invisibleRunes {
			if r == bad {
				return -1
			}
		}
		return r
	}, content)

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		stripped = strings.ReplaceAll(stripped, home, "~")
	}
	return stripped
}

// truncateForDisplay caps content at capBytes, appending an indicator
// if truncation occurred.
func truncateForDisplay(content string, capBytes int) string {
	if capBytes <= 0 || len(content) <= capBytes {
		return content
	}
	return content[:capBytes] + truncationIndicator
}
