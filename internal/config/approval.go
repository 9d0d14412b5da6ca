package config

import "strings"

// ApprovalMode discriminates the [tools.approval].mode setting.
type ApprovalMode int

const (
	ApprovalDisabled  ApprovalMode = iota // tools always auto-approve
	ApprovalParseOnly                     // validate args, never prompt or execute side effects
	ApprovalEnabled                       // default: policy-driven approve/ask/deny
)

func ParseApprovalMode(s string) ApprovalMode {
	switch s {
	case "disabled":
		return ApprovalDisabled
	case "parse_only":
		return ApprovalParseOnly
	default:
		return ApprovalEnabled
	}
}

// ToolPolicy is a single tool's declared approval policy (spec §4.7).
type ToolPolicy int

const (
	PolicyAutoApprove ToolPolicy = iota
	PolicyRequiresApproval
	PolicyDenied
)

// ApprovalPolicy evaluates a tool call against the configured allow/deny
// lists and a tool's own declared side-effect policy. Grounded on the
// teacher's RuleBasedPermissionHandler/wildcard matcher
// (internal/config/permissions.go), reshaped around spec §4.7's three-way
// ToolPolicy instead of the teacher's interactive ask/bypass modes.
type ApprovalPolicy struct {
	mode      ApprovalMode
	allowlist []string
	denylist  []string
}

// NewApprovalPolicy builds a policy from the [tools.approval] config
// subtable.
func NewApprovalPolicy(cfg ApprovalConfig) *ApprovalPolicy {
	return &ApprovalPolicy{
		mode:      ParseApprovalMode(cfg.Mode),
		allowlist: cfg.Allowlist,
		denylist:  cfg.Denylist,
	}
}

// Decide returns the effective policy for a tool call. defaultPolicy is
// the tool's own declared policy (a side-effecting tool like Bash
// defaults to PolicyRequiresApproval; a read-only tool defaults to
// PolicyAutoApprove), returned when no deny or allow rule matches.
func (p *ApprovalPolicy) Decide(toolName, matchValue string, defaultPolicy ToolPolicy) ToolPolicy {
	if p.mode == ApprovalDisabled {
		return PolicyAutoApprove
	}
	for _, pat := range p.denylist {
		if matchesRule(pat, toolName, matchValue) {
			return PolicyDenied
		}
	}
	for _, pat := range p.allowlist {
		if matchesRule(pat, toolName, matchValue) {
			return PolicyAutoApprove
		}
	}
	return defaultPolicy
}

// matchesRule checks a single allow/deny pattern of the form "Tool" or
// "Tool(glob)" against a tool name and an optional match value (e.g. the
// Bash command string, or a file path).
func matchesRule(pattern, toolName, matchValue string) bool {
	name, arg, hasArg := splitRule(pattern)
	if name != "*" && name != toolName {
		return false
	}
	if !hasArg {
		return true
	}
	return wildcardMatch(arg, matchValue)
}

func splitRule(pattern string) (name, arg string, hasArg bool) {
	open := strings.IndexByte(pattern, '(')
	if open < 0 || !strings.HasSuffix(pattern, ")") {
		return pattern, "", false
	}
	return pattern[:open], pattern[open+1 : len(pattern)-1], true
}

// wildcardMatch matches pattern against value where '*' matches any
// sequence of characters. Grounded on the teacher's
// internal/config/permissions.go wildcardMatch (kept because Bash
// command matching needs glob-over-strings semantics, not filepath
// glob semantics, which would reject spaces and slashes).
func wildcardMatch(pattern, value string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == value || strings.HasPrefix(value, pattern)
	}
	return wildcardMatchAt(pattern, value, 0, 0)
}

func wildcardMatchAt(pattern, value string, pi, vi int) bool {
	for pi < len(pattern) && vi < len(value) {
		switch pattern[pi] {
		case '*':
			for pi < len(pattern) && pattern[pi] == '*' {
				pi++
			}
			if pi == len(pattern) {
				return true
			}
			for vi <= len(value) {
				if wildcardMatchAt(pattern, value, pi, vi) {
					return true
				}
				vi++
			}
			return false
		default:
			if pattern[pi] != value[vi] {
				return false
			}
			pi++
			vi++
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern) && vi == len(value)
}
