package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSandboxPolicyPermissiveWithNoRootsConfigured(t *testing.T) {
	p := NewSandboxPolicy(SandboxConfig{})
	assert.NoError(t, p.CheckPath("/tmp/whatever.txt"))
}

func TestSandboxPolicyDefaultDeniesCredentialPaths(t *testing.T) {
	p := NewSandboxPolicy(SandboxConfig{IncludeDefaultDenies: true})
	assert.Error(t, p.CheckPath("/home/user/.ssh/id_rsa"))
	assert.Error(t, p.CheckPath("/etc/shadow"))
}

func TestSandboxPolicyAllowsPathsUnderConfiguredRoot(t *testing.T) {
	p := NewSandboxPolicy(SandboxConfig{AllowedRoots: []string{"/workspace"}})
	assert.NoError(t, p.CheckPath("/workspace/src/main.go"))
	assert.Error(t, p.CheckPath("/etc/hosts"))
}

func TestSandboxPolicyCustomDenyPatternWins(t *testing.T) {
	p := NewSandboxPolicy(SandboxConfig{DeniedPatterns: []string{"*.secret"}})
	assert.Error(t, p.CheckPath("config.secret"))
	assert.NoError(t, p.CheckPath("config.toml"))
}
