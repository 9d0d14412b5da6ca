// Package logging sets up the engine's structured log sink. Mirrors the
// teacher's layered-directory convention (primary path under the user's
// home, fallback under the working directory) but writes structured
// JSON lines via log/slog instead of the standard logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Setup opens the log file (primary: <home>/.forge/logs/forge.log,
// fallback: ./.forge/logs/forge.log) and returns a slog.Logger writing
// JSON lines at the level named by levelName ("debug", "info", "warn",
// "error"; unrecognized values fall back to "info", matching a
// RUST_LOG-style default).
func Setup(levelName string) (*slog.Logger, func() error, error) {
	level := parseLevel(levelName)

	path, err := logPath()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}

	handler := slog.NewJSONHandler(redactingWriter{f}, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	return logger, f.Close, nil
}

func logPath() (string, error) {
	home, err := os.UserHomeDir()
	if err == nil {
		primary := filepath.Join(home, ".forge", "logs", "forge.log")
		if err := os.MkdirAll(filepath.Dir(primary), 0700); err == nil {
			return primary, nil
		}
	}
	return filepath.Join(".", ".forge", "logs", "forge.log"), nil
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// redactingWriter passes every write through Redact before it reaches
// the underlying sink, so credentials and escape sequences never land
// in the log file even if a caller forgot to sanitize first.
type redactingWriter struct {
	w io.Writer
}

func (r redactingWriter) Write(p []byte) (int, error) {
	sanitized := Redact(string(p))
	_, err := r.w.Write([]byte(sanitized))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
