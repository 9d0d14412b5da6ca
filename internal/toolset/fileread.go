package toolset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danielchristiancazares/forge/internal/config"
)

const (
	fileReadTimeout     = 30 * time.Second
	fileReadDefaultCap  = 2000
	fileReadLineMaxRune = 2000
)

const fileReadSchemaJSON = `{
  "type": "object",
  "properties": {
    "file_path": {"type": "string", "description": "The path to the file to read"},
    "offset": {"type": "integer", "description": "The line number to start reading from (1-indexed)"},
    "limit": {"type": "integer", "description": "The number of lines to read"}
  },
  "required": ["file_path"],
  "additionalProperties": false
}`

var fileReadSchema = compileSchema(fileReadSchemaJSON)

type fileReadInput struct {
	FilePath string `json:"file_path"`
	Offset   *int   `json:"offset,omitempty"`
	Limit    *int   `json:"limit,omitempty"`
}

// FileReadTool reads a text file with cat -n-style line numbering.
//
// Dropped from the teacher's version: image/PDF/notebook
// special-casing. Those branches exist there to feed a multimodal
// chat API image blocks or shell out to pdftotext; nothing in this
// toolloop currently consumes non-text tool results, so they have no
// caller here. Re-add when a provider adapter wants image input.
type FileReadTool struct {
	sandbox *config.SandboxPolicy
}

// NewFileReadTool builds a FileRead tool enforcing sandbox on every path.
func NewFileReadTool(sandbox *config.SandboxPolicy) *FileReadTool {
	return &FileReadTool{sandbox: sandbox}
}

func (t *FileReadTool) Name() string { return "FileRead" }

func (t *FileReadTool) InputSchema() json.RawMessage { return json.RawMessage(fileReadSchemaJSON) }

func (t *FileReadTool) Timeout() time.Duration { return fileReadTimeout }

func (t *FileReadTool) Execute(_ context.Context, argsJSON json.RawMessage) (string, error) {
	if _, err := validateArgs(fileReadSchema, argsJSON); err != nil {
		return "", err
	}
	var in fileReadInput
	if err := json.Unmarshal(argsJSON, &in); err != nil {
		return "", fmt.Errorf("parsing FileRead arguments: %w", err)
	}
	if in.FilePath == "" {
		return "", fmt.Errorf("file_path is required")
	}
	if err := t.sandbox.CheckPath(in.FilePath); err != nil {
		return "", err
	}

	f, err := os.Open(in.FilePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", in.FilePath, err)
	}
	defer f.Close()

	offset := 1
	if in.Offset != nil && *in.Offset > 0 {
		offset = *in.Offset
	}
	limit := fileReadDefaultCap
	if in.Limit != nil && *in.Limit > 0 {
		limit = *in.Limit
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out strings.Builder
	lineNo := 0
	written := 0
	for scanner.Scan() {
		lineNo++
		if lineNo < offset {
			continue
		}
		if written >= limit {
			break
		}
		line := scanner.Text()
		if len(line) > fileReadLineMaxRune {
			line = line[:fileReadLineMaxRune] + "... (line truncated)"
		}
		fmt.Fprintf(&out, "%6d\t%s\n", lineNo, line)
		written++
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", in.FilePath, err)
	}
	if written == 0 {
		return fmt.Sprintf("(file %s has no lines at or after offset %d)", in.FilePath, offset), nil
	}
	return strings.TrimRight(out.String(), "\n"), nil
}
