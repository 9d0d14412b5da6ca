package toolset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/danielchristiancazares/forge/internal/config"
)

const grepTimeout = 30 * time.Second

const grepSchemaJSON = `{
  "type": "object",
  "properties": {
    "pattern": {"type": "string", "description": "The regular expression pattern to search for"},
    "path": {"type": "string", "description": "File or directory to search; defaults to the working directory"},
    "glob": {"type": "string", "description": "Glob filter for files, e.g. \"*.go\""},
    "output_mode": {"type": "string", "enum": ["content", "files_with_matches", "count"]},
    "case_insensitive": {"type": "boolean"}
  },
  "required": ["pattern"],
  "additionalProperties": false
}`

var grepSchema = compileSchema(grepSchemaJSON)

type grepInput struct {
	Pattern         string `json:"pattern"`
	Path            string `json:"path,omitempty"`
	Glob            string `json:"glob,omitempty"`
	OutputMode      string `json:"output_mode,omitempty"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty"`
}

// GrepTool searches file contents with ripgrep, grounded on the
// teacher's preference for shelling out to rg over a hand-rolled
// walker. output_mode defaults to files_with_matches; "content" mode
// prints matching lines with line numbers.
type GrepTool struct {
	workDir string
	sandbox *config.SandboxPolicy
}

// NewGrepTool builds a Grep tool rooted at workDir.
func NewGrepTool(workDir string, sandbox *config.SandboxPolicy) *GrepTool {
	return &GrepTool{workDir: workDir, sandbox: sandbox}
}

func (t *GrepTool) Name() string { return "Grep" }

func (t *GrepTool) InputSchema() json.RawMessage { return json.RawMessage(grepSchemaJSON) }

func (t *GrepTool) Timeout() time.Duration { return grepTimeout }

func (t *GrepTool) Execute(ctx context.Context, argsJSON json.RawMessage) (string, error) {
	if _, err := validateArgs(grepSchema, argsJSON); err != nil {
		return "", err
	}
	var in grepInput
	if err := json.Unmarshal(argsJSON, &in); err != nil {
		return "", fmt.Errorf("parsing Grep arguments: %w", err)
	}
	if in.Pattern == "" {
		return "", fmt.Errorf("pattern is required")
	}
	searchPath := t.workDir
	if in.Path != "" {
		searchPath = in.Path
	}
	if err := t.sandbox.CheckPath(searchPath); err != nil {
		return "", err
	}

	mode := in.OutputMode
	if mode == "" {
		mode = "files_with_matches"
	}

	args := []string{}
	switch mode {
	case "files_with_matches":
		args = append(args, "--files-with-matches")
	case "count":
		args = append(args, "--count")
	case "content":
		args = append(args, "-n")
	default:
		return "", fmt.Errorf("unknown output_mode %q", mode)
	}
	if in.CaseInsensitive {
		args = append(args, "-i")
	}
	if in.Glob != "" {
		args = append(args, "--glob", in.Glob)
	}
	args = append(args, "--", in.Pattern, searchPath)

	rgPath, err := exec.LookPath("rg")
	if err != nil {
		return "", fmt.Errorf("ripgrep not found on PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, rgPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return "No matches found.", nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("ripgrep: %s", strings.TrimSpace(stderr.String()))
		}
		return "", err
	}

	out := strings.TrimRight(stdout.String(), "\n")
	if out == "" {
		return "No matches found.", nil
	}
	return out, nil
}
