package toolset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	bashDefaultTimeout = 120 * time.Second
	bashMaxOutput      = 100_000
)

const bashSchemaJSON = `{
  "type": "object",
  "properties": {
    "command": {"type": "string", "description": "The command to execute"},
    "description": {"type": "string", "description": "Clear, concise description of what this command does"}
  },
  "required": ["command"],
  "additionalProperties": false
}`

var bashSchema = compileSchema(bashSchemaJSON)

// bashInput is the decoded shape of a Bash tool call.
type bashInput struct {
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
}

// BashTool executes shell commands in a fixed working directory.
//
// Unlike the teacher's version, Execute never wraps ctx in its own
// context.WithTimeout and never swallows a deadline into a result
// string: executor.executeOne already wraps every call in the tool's
// declared Timeout and distinguishes DeadlineExceeded/Canceled from
// callCtx.Err() after Execute returns, so this tool must propagate
// the real error from cmd.Run() for that distinction to work.
type BashTool struct {
	workDir string
}

// NewBashTool builds a Bash tool that runs commands rooted at workDir.
func NewBashTool(workDir string) *BashTool { return &BashTool{workDir: workDir} }

func (t *BashTool) Name() string { return "Bash" }

func (t *BashTool) InputSchema() json.RawMessage { return json.RawMessage(bashSchemaJSON) }

func (t *BashTool) Timeout() time.Duration { return bashDefaultTimeout }

func (t *BashTool) Execute(ctx context.Context, argsJSON json.RawMessage) (string, error) {
	if _, err := validateArgs(bashSchema, argsJSON); err != nil {
		return "", err
	}
	var in bashInput
	if err := json.Unmarshal(argsJSON, &in); err != nil {
		return "", fmt.Errorf("parsing Bash arguments: %w", err)
	}
	if strings.TrimSpace(in.Command) == "" {
		return "", fmt.Errorf("command is required")
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", in.Command)
	cmd.Dir = t.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	var out strings.Builder
	if stdout.Len() > 0 {
		out.Write(stdout.Bytes())
	}
	if stderr.Len() > 0 {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(stderr.String())
	}

	result := strings.TrimRight(out.String(), "\n")
	if result == "" {
		result = "(no output)"
	}
	if len(result) > bashMaxOutput {
		result = result[:bashMaxOutput] + "\n... (output truncated)"
	}
	return result, nil
}
