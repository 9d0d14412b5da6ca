package toolset

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireRipgrep(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("ripgrep not installed")
	}
}

func TestGrepFindsMatchingFile(t *testing.T) {
	requireRipgrep(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("needle here"), 0o644))

	tool := NewGrepTool(dir, permissiveSandbox())
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"needle"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")
}

func TestGrepReportsNoMatches(t *testing.T) {
	requireRipgrep(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("nothing interesting"), 0o644))

	tool := NewGrepTool(dir, permissiveSandbox())
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"zzz_absent"}`))
	require.NoError(t, err)
	assert.Equal(t, "No matches found.", out)
}

func TestGrepRejectsUnknownOutputMode(t *testing.T) {
	requireRipgrep(t)
	dir := t.TempDir()
	tool := NewGrepTool(dir, permissiveSandbox())
	_, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"x","output_mode":"weird"}`))
	assert.Error(t, err)
}

func TestGrepRejectsSandboxedSearchPath(t *testing.T) {
	requireRipgrep(t)
	dir := t.TempDir()
	sandbox := permissiveSandboxRootedAt(filepath.Join(dir, "allowed"))
	tool := NewGrepTool(dir, sandbox)
	_, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"x"}`))
	assert.Error(t, err)
}
