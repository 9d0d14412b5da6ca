package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danielchristiancazares/forge/internal/config"
)

const fileEditTimeout = 30 * time.Second

const fileEditSchemaJSON = `{
  "type": "object",
  "properties": {
    "file_path": {"type": "string", "description": "The path to the file to modify"},
    "old_string": {"type": "string", "description": "The text to replace"},
    "new_string": {"type": "string", "description": "The text to replace it with"},
    "replace_all": {"type": "boolean", "description": "Replace all occurrences", "default": false}
  },
  "required": ["file_path", "old_string", "new_string"],
  "additionalProperties": false
}`

var fileEditSchema = compileSchema(fileEditSchemaJSON)

type fileEditInput struct {
	FilePath   string `json:"file_path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all,omitempty"`
}

// FileEditTool performs exact string replacements in an existing file.
type FileEditTool struct {
	sandbox *config.SandboxPolicy
}

// NewFileEditTool builds a FileEdit tool enforcing sandbox on every path.
func NewFileEditTool(sandbox *config.SandboxPolicy) *FileEditTool {
	return &FileEditTool{sandbox: sandbox}
}

func (t *FileEditTool) Name() string { return "FileEdit" }

func (t *FileEditTool) InputSchema() json.RawMessage { return json.RawMessage(fileEditSchemaJSON) }

func (t *FileEditTool) Timeout() time.Duration { return fileEditTimeout }

func (t *FileEditTool) Execute(_ context.Context, argsJSON json.RawMessage) (string, error) {
	if _, err := validateArgs(fileEditSchema, argsJSON); err != nil {
		return "", err
	}
	var in fileEditInput
	if err := json.Unmarshal(argsJSON, &in); err != nil {
		return "", fmt.Errorf("parsing FileEdit arguments: %w", err)
	}
	if in.FilePath == "" {
		return "", fmt.Errorf("file_path is required")
	}
	if in.OldString == in.NewString {
		return "", fmt.Errorf("new_string must differ from old_string")
	}
	if err := t.sandbox.CheckPath(in.FilePath); err != nil {
		return "", err
	}

	data, err := os.ReadFile(in.FilePath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", in.FilePath, err)
	}
	content := string(data)

	count := strings.Count(content, in.OldString)
	if count == 0 {
		return "", fmt.Errorf("old_string not found in %s", in.FilePath)
	}
	if !in.ReplaceAll && count > 1 {
		return "", fmt.Errorf("old_string appears %d times in %s; set replace_all or narrow the match", count, in.FilePath)
	}

	var updated string
	if in.ReplaceAll {
		updated = strings.ReplaceAll(content, in.OldString, in.NewString)
	} else {
		updated = strings.Replace(content, in.OldString, in.NewString, 1)
	}

	info, err := os.Stat(in.FilePath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", in.FilePath, err)
	}
	if err := os.WriteFile(in.FilePath, []byte(updated), info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("writing %s: %w", in.FilePath, err)
	}

	if in.ReplaceAll {
		return fmt.Sprintf("Replaced %d occurrences in %s.", count, in.FilePath), nil
	}
	return fmt.Sprintf("Edited %s.", in.FilePath), nil
}
