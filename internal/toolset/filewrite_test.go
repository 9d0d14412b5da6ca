package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriteCreatesParentDirectoriesAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")
	tool := NewFileWriteTool(permissiveSandbox())

	_, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"file_path":%q,"content":"hi"}`, path)))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestFileWriteOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	tool := NewFileWriteTool(permissiveSandbox())

	_, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"file_path":%q,"content":"new"}`, path)))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFileWriteRejectsDeniedPath(t *testing.T) {
	sandbox := config.NewSandboxPolicy(config.SandboxConfig{DeniedPatterns: []string{"*.secret"}})
	tool := NewFileWriteTool(sandbox)

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"file_path":"/tmp/x.secret","content":"nope"}`))
	assert.Error(t, err)
}
