package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danielchristiancazares/forge/internal/config"
)

const fileWriteTimeout = 30 * time.Second

const fileWriteSchemaJSON = `{
  "type": "object",
  "properties": {
    "file_path": {"type": "string", "description": "The path to the file to write"},
    "content": {"type": "string", "description": "The content to write to the file"}
  },
  "required": ["file_path", "content"],
  "additionalProperties": false
}`

var fileWriteSchema = compileSchema(fileWriteSchemaJSON)

type fileWriteInput struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// FileWriteTool creates or overwrites a file, creating parent
// directories as needed. Every path is checked against the sandbox
// before any directory is created or any byte is written.
type FileWriteTool struct {
	sandbox *config.SandboxPolicy
}

// NewFileWriteTool builds a FileWrite tool enforcing sandbox on every path.
func NewFileWriteTool(sandbox *config.SandboxPolicy) *FileWriteTool {
	return &FileWriteTool{sandbox: sandbox}
}

func (t *FileWriteTool) Name() string { return "FileWrite" }

func (t *FileWriteTool) InputSchema() json.RawMessage { return json.RawMessage(fileWriteSchemaJSON) }

func (t *FileWriteTool) Timeout() time.Duration { return fileWriteTimeout }

func (t *FileWriteTool) Execute(_ context.Context, argsJSON json.RawMessage) (string, error) {
	if _, err := validateArgs(fileWriteSchema, argsJSON); err != nil {
		return "", err
	}
	var in fileWriteInput
	if err := json.Unmarshal(argsJSON, &in); err != nil {
		return "", fmt.Errorf("parsing FileWrite arguments: %w", err)
	}
	if in.FilePath == "" {
		return "", fmt.Errorf("file_path is required")
	}
	if err := t.sandbox.CheckPath(in.FilePath); err != nil {
		return "", err
	}

	dir := filepath.Dir(in.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating parent directories for %s: %w", in.FilePath, err)
	}
	if err := os.WriteFile(in.FilePath, []byte(in.Content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", in.FilePath, err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s.", len(in.Content), in.FilePath), nil
}
