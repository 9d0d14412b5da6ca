package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobMatchesNestedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("package pkg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("text"), 0o644))

	tool := NewGlobTool(dir, permissiveSandbox())
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"**/*.go"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "a.go")
	assert.NotContains(t, out, "b.txt")
}

func TestGlobReportsNoMatches(t *testing.T) {
	dir := t.TempDir()
	tool := NewGlobTool(dir, permissiveSandbox())
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"pattern":"*.nonexistent"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "No files matched")
}

func TestGlobRejectsSearchDirOutsideSandboxRoot(t *testing.T) {
	dir := t.TempDir()
	sandbox := permissiveSandboxRootedAt(filepath.Join(dir, "allowed"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "allowed"), 0o755))

	tool := NewGlobTool(dir, sandbox)
	_, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"pattern":"*","path":%q}`, filepath.Join(dir, "other"))))
	assert.Error(t, err)
}
