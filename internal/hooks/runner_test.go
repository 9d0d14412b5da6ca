package hooks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreToolUseNoHooksIsNoop(t *testing.T) {
	r := NewRunner(config.HooksConfig{})
	err := r.RunPreToolUse(context.Background(), "Bash", json.RawMessage(`{"command":"ls"}`))
	assert.NoError(t, err)
}

func TestRunPreToolUseSuccessfulCommandPasses(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PreToolUse: []config.HookDef{{Type: "command", Command: "true"}},
	})
	err := r.RunPreToolUse(context.Background(), "Bash", json.RawMessage(`{"command":"ls"}`))
	assert.NoError(t, err)
}

func TestRunPreToolUseFailingCommandBlocks(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PreToolUse: []config.HookDef{{Type: "command", Command: "false"}},
	})
	err := r.RunPreToolUse(context.Background(), "Bash", json.RawMessage(`{"command":"rm -rf /"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PreToolUse hook blocked")
}

func TestRunPreToolUseSecondHookBlocksAfterFirstPasses(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PreToolUse: []config.HookDef{
			{Type: "command", Command: "true"},
			{Type: "command", Command: "false"},
		},
	})
	err := r.RunPreToolUse(context.Background(), "Bash", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestRunPreToolUsePromptHookQueuesInjectionWithoutBlocking(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PreToolUse: []config.HookDef{{Type: "prompt", Prompt: "Check for sensitive data"}},
	})
	err := r.RunPreToolUse(context.Background(), "Bash", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Check for sensitive data"}, r.PendingInjections())
	assert.Nil(t, r.PendingInjections(), "second call should find the queue already drained")
}

func TestRunPreToolUseUnknownTypeBlocks(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PreToolUse: []config.HookDef{{Type: "unknown"}},
	})
	err := r.RunPreToolUse(context.Background(), "Bash", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestRunPreToolUsePassesEventEnvironment(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PreToolUse: []config.HookDef{
			{Type: "command", Command: `test "$TOOL_NAME" = "Bash" && test "$HOOK_EVENT" = "PreToolUse"`},
		},
	})
	err := r.RunPreToolUse(context.Background(), "Bash", json.RawMessage(`{"command":"ls"}`))
	assert.NoError(t, err)
}

func TestRunPostToolUseNoHooksIsNoop(t *testing.T) {
	r := NewRunner(config.HooksConfig{})
	err := r.RunPostToolUse(context.Background(), "Bash", json.RawMessage(`{}`), "output", false)
	assert.NoError(t, err)
}

func TestRunPostToolUseWithCommand(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PostToolUse: []config.HookDef{{Type: "command", Command: "true"}},
	})
	err := r.RunPostToolUse(context.Background(), "Bash", json.RawMessage(`{}`), "output", false)
	assert.NoError(t, err)
}

func TestRunPostToolUseSeesIsErrorFlag(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		PostToolUse: []config.HookDef{
			{Type: "command", Command: `test "$TOOL_IS_ERROR" = "true"`},
		},
	})
	err := r.RunPostToolUse(context.Background(), "Bash", json.RawMessage(`{}`), "boom", true)
	assert.NoError(t, err)
}

func TestRunUserPromptSubmitNoHooksReturnsMessageUnchanged(t *testing.T) {
	r := NewRunner(config.HooksConfig{})
	result, err := r.RunUserPromptSubmit(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, result.Block)
	assert.Equal(t, "hello", result.Message)
}

func TestRunUserPromptSubmitCommandOutputModifiesMessage(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		UserPromptSubmit: []config.HookDef{{Type: "command", Command: "echo 'modified message'"}},
	})
	result, err := r.RunUserPromptSubmit(context.Background(), "original")
	require.NoError(t, err)
	assert.False(t, result.Block)
	assert.Equal(t, "modified message", result.Message)
}

func TestRunUserPromptSubmitBlocksOnHookFailure(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		UserPromptSubmit: []config.HookDef{{Type: "command", Command: "false"}},
	})
	result, err := r.RunUserPromptSubmit(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, result.Block)
}

func TestRunSessionStartNoHooksIsNoop(t *testing.T) {
	r := NewRunner(config.HooksConfig{})
	assert.NoError(t, r.RunSessionStart(context.Background()))
}

func TestRunSessionStartWithCommand(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		SessionStart: []config.HookDef{{Type: "command", Command: "true"}},
	})
	assert.NoError(t, r.RunSessionStart(context.Background()))
}

func TestRunStopNoHooksIsNoop(t *testing.T) {
	r := NewRunner(config.HooksConfig{})
	assert.NoError(t, r.RunStop(context.Background()))
}

func TestRunStopWithFailingCommandReturnsError(t *testing.T) {
	r := NewRunner(config.HooksConfig{
		Stop: []config.HookDef{{Type: "command", Command: "false"}},
	})
	assert.Error(t, r.RunStop(context.Background()))
}
