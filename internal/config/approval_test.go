package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprovalPolicyDisabledAlwaysApproves(t *testing.T) {
	p := NewApprovalPolicy(ApprovalConfig{Mode: "disabled", Denylist: []string{"Bash"}})
	got := p.Decide("Bash", "rm -rf /", PolicyRequiresApproval)
	assert.Equal(t, PolicyAutoApprove, got)
}

func TestApprovalPolicyDenylistWins(t *testing.T) {
	p := NewApprovalPolicy(ApprovalConfig{
		Mode:      "enabled",
		Allowlist: []string{"Bash(*)"},
		Denylist:  []string{"Bash(rm *)"},
	})
	got := p.Decide("Bash", "rm -rf /tmp/x", PolicyRequiresApproval)
	assert.Equal(t, PolicyDenied, got)
}

func TestApprovalPolicyAllowlistMatch(t *testing.T) {
	p := NewApprovalPolicy(ApprovalConfig{
		Mode:      "enabled",
		Allowlist: []string{"FileRead(*)"},
	})
	got := p.Decide("FileRead", "/etc/hosts", PolicyRequiresApproval)
	assert.Equal(t, PolicyAutoApprove, got)
}

func TestApprovalPolicyFallsBackToDefault(t *testing.T) {
	p := NewApprovalPolicy(ApprovalConfig{Mode: "enabled"})
	got := p.Decide("Bash", "ls", PolicyRequiresApproval)
	assert.Equal(t, PolicyRequiresApproval, got)
}

func TestApprovalPolicyBareToolNameMatchesAnyArg(t *testing.T) {
	p := NewApprovalPolicy(ApprovalConfig{
		Mode:      "enabled",
		Allowlist: []string{"Glob"},
	})
	got := p.Decide("Glob", "**/*.go", PolicyRequiresApproval)
	assert.Equal(t, PolicyAutoApprove, got)
}

func TestWildcardMatchStarMiddle(t *testing.T) {
	assert.True(t, wildcardMatch("git *", "git status"))
	assert.True(t, wildcardMatch("npm run *", "npm run build"))
	assert.False(t, wildcardMatch("npm run *", "npm install"))
}

func TestWildcardMatchNoStarIsPrefix(t *testing.T) {
	assert.True(t, wildcardMatch("ls", "ls -la"))
	assert.False(t, wildcardMatch("ls -la", "ls"))
}

func TestSplitRuleParsesToolAndArg(t *testing.T) {
	name, arg, hasArg := splitRule("Bash(git *)")
	assert.Equal(t, "Bash", name)
	assert.Equal(t, "git *", arg)
	assert.True(t, hasArg)

	name, _, hasArg = splitRule("WebFetch")
	assert.Equal(t, "WebFetch", name)
	assert.False(t, hasArg)
}
