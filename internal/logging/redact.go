package logging

import (
	"os"
	"regexp"
	"strings"
)

// ansiEscape matches terminal escape sequences.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// credentialPatterns matches common API key shapes so they never reach a
// log line or a user-visible error, per spec §7's redaction pass.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{10,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`Bearer [a-zA-Z0-9._-]{10,}`),
}

// Redact strips terminal escape sequences, redacts anything matching a
// known credential pattern, and normalizes the user's home directory to
// "~" in paths. All error formatting destined for the UI or a log line
// passes through this function (spec §7).
func Redact(s string) string {
	s = ansiEscape.ReplaceAllString(s, "")
	for _, pat := range credentialPatterns {
		s = pat.ReplaceAllString(s, "[redacted]")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		s = strings.ReplaceAll(s, home, "~")
	}
	return s
}
