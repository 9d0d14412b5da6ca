package main

import (
	"testing"

	"github.com/danielchristiancazares/forge/internal/mcpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRootCmdRegistersSubcommands(t *testing.T) {
	root := buildRootCmd()

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["login"])
	assert.True(t, names["logout"])
	assert.True(t, names["status"])
	assert.True(t, names["mcp"])
}

func TestBuildMCPCmdRegistersSubcommands(t *testing.T) {
	mcp := buildMCPCmd()

	names := map[string]bool{}
	for _, cmd := range mcp.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["add"])
	assert.True(t, names["remove"])
}

func TestMCPAddThenRemoveRoundTrips(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, mcpclient.AddServer(dir, "docs", mcpclient.ServerConfig{Command: "docs-server", Args: []string{"--stdio"}}))

	cfg, err := mcpclient.LoadConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Contains(t, cfg.Servers, "docs")
	assert.Equal(t, "docs-server", cfg.Servers["docs"].Command)

	require.NoError(t, mcpclient.RemoveServer(dir, "docs"))
	cfg, err = mcpclient.LoadConfig(dir)
	require.NoError(t, err)
	if cfg != nil {
		assert.NotContains(t, cfg.Servers, "docs")
	}
}
