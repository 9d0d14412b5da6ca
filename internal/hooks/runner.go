package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/danielchristiancazares/forge/internal/config"
)

// Runner executes the hooks declared in a config.HooksConfig.
type Runner struct {
	config            config.HooksConfig
	pendingInjections []string // prompt hook content awaiting injection
}

// NewRunner creates a hook runner from the given config.
func NewRunner(cfg config.HooksConfig) *Runner {
	return &Runner{config: cfg}
}

// RunPreToolUse fires every PreToolUse hook in order. A hook whose
// command exits non-zero blocks the tool call: the returned error
// carries the hook's stderr, and the caller must not execute the tool.
func (r *Runner) RunPreToolUse(ctx context.Context, toolName string, input json.RawMessage) error {
	if len(r.config.PreToolUse) == 0 {
		return nil
	}

	env := []string{
		"HOOK_EVENT=PreToolUse",
		"TOOL_NAME=" + toolName,
		"TOOL_INPUT=" + string(input),
	}

	for _, hook := range r.config.PreToolUse {
		result := r.executeHook(ctx, hook, env)
		if result.Error != nil {
			return fmt.Errorf("PreToolUse hook blocked: %w", result.Error)
		}
		if result.PromptInject != "" {
			r.pendingInjections = append(r.pendingInjections, result.PromptInject)
		}
	}
	return nil
}

// PendingInjections returns and clears any prompt content queued by
// prompt-type hooks since the last call.
func (r *Runner) PendingInjections() []string {
	if len(r.pendingInjections) == 0 {
		return nil
	}
	pending := r.pendingInjections
	r.pendingInjections = nil
	return pending
}

// RunPostToolUse fires every PostToolUse hook. A hook failure here
// does not undo the already-completed tool call; it surfaces as an
// error the caller can log.
func (r *Runner) RunPostToolUse(ctx context.Context, toolName string, input json.RawMessage, output string, isError bool) error {
	if len(r.config.PostToolUse) == 0 {
		return nil
	}

	isErrStr := "false"
	if isError {
		isErrStr = "true"
	}

	truncatedOutput := output
	if len(truncatedOutput) > 10000 {
		truncatedOutput = truncatedOutput[:10000] + "...(truncated)"
	}

	env := []string{
		"HOOK_EVENT=PostToolUse",
		"TOOL_NAME=" + toolName,
		"TOOL_INPUT=" + string(input),
		"TOOL_OUTPUT=" + truncatedOutput,
		"TOOL_IS_ERROR=" + isErrStr,
	}

	for _, hook := range r.config.PostToolUse {
		result := r.executeHook(ctx, hook, env)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// RunUserPromptSubmit fires every UserPromptSubmit hook. A command
// hook's stdout becomes the (possibly modified) message; a prompt
// hook queues a PendingInjections entry instead. Any hook error blocks
// submission.
func (r *Runner) RunUserPromptSubmit(ctx context.Context, message string) (SubmitResult, error) {
	if len(r.config.UserPromptSubmit) == 0 {
		return SubmitResult{Message: message}, nil
	}

	env := []string{
		"HOOK_EVENT=UserPromptSubmit",
		"USER_MESSAGE=" + message,
	}

	currentMsg := message
	for _, hook := range r.config.UserPromptSubmit {
		result := r.executeHook(ctx, hook, env)
		if result.Error != nil {
			return SubmitResult{Block: true, Message: currentMsg}, result.Error
		}
		if result.PromptInject != "" {
			r.pendingInjections = append(r.pendingInjections, result.PromptInject)
			continue
		}
		if trimmed := strings.TrimSpace(result.Output); trimmed != "" {
			currentMsg = trimmed
		}
	}
	return SubmitResult{Message: currentMsg}, nil
}

// RunSessionStart fires every SessionStart hook.
func (r *Runner) RunSessionStart(ctx context.Context) error {
	if len(r.config.SessionStart) == 0 {
		return nil
	}

	env := []string{"HOOK_EVENT=SessionStart"}
	for _, hook := range r.config.SessionStart {
		if result := r.executeHook(ctx, hook, env); result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// RunStop fires every Stop hook.
func (r *Runner) RunStop(ctx context.Context) error {
	if len(r.config.Stop) == 0 {
		return nil
	}

	env := []string{"HOOK_EVENT=Stop"}
	for _, hook := range r.config.Stop {
		if result := r.executeHook(ctx, hook, env); result.Error != nil {
			return result.Error
		}
	}
	return nil
}

func (r *Runner) executeHook(ctx context.Context, hook config.HookDef, extraEnv []string) Result {
	switch hook.Type {
	case "command":
		return r.runCommand(ctx, hook.Command, extraEnv)
	case "prompt":
		return Result{Output: hook.Prompt, PromptInject: hook.Prompt}
	default:
		return Result{Error: fmt.Errorf("unknown hook type: %s", hook.Type)}
	}
}

func (r *Runner) runCommand(ctx context.Context, command string, extraEnv []string) Result {
	if command == "" {
		return Result{}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = append(os.Environ(), extraEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		return Result{Output: stdout.String(), Error: fmt.Errorf("%s", strings.TrimSpace(errMsg))}
	}
	return Result{Output: stdout.String()}
}
