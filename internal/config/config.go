// Package config loads Forge's TOML configuration file and the approval/
// sandbox policy it declares for tools. Grounded on the teacher's
// layered-settings loader (internal/config/settings.go), but reshaped
// around spec §6's single `<home>/.forge/config.toml` file plus
// environment-variable precedence instead of a multi-directory cascade.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// AppConfig is the [app] section.
type AppConfig struct {
	Model           string `toml:"model"`
	TUI             string `toml:"tui"` // "full" | "inline"
	MaxOutputTokens int    `toml:"max_output_tokens"`
	ASCIIOnly       bool   `toml:"ascii_only"`
	HighContrast    bool   `toml:"high_contrast"`
	ReducedMotion   bool   `toml:"reduced_motion"`
}

// ApiKeysConfig is the [api_keys] section. Values pass through ${VAR}
// expansion against the process environment.
type ApiKeysConfig struct {
	Anthropic string `toml:"anthropic"`
	OpenAI    string `toml:"openai"`
	Google    string `toml:"google"`
}

// ContextConfig is the [context] section.
type ContextConfig struct {
	Infinity *bool `toml:"infinity"` // default true: distillation enabled
}

func (c ContextConfig) InfinityEnabled() bool {
	if c.Infinity == nil {
		return true
	}
	return *c.Infinity
}

// AnthropicConfig is the [anthropic] section.
type AnthropicConfig struct {
	CacheEnabled         bool `toml:"cache_enabled"`
	ThinkingEnabled      bool `toml:"thinking_enabled"`
	ThinkingBudgetTokens int  `toml:"thinking_budget_tokens"`
}

// OpenAIConfig is the [openai] section.
type OpenAIConfig struct {
	ReasoningEffort string `toml:"reasoning_effort"` // low|medium|high|xhigh
	Verbosity       string `toml:"verbosity"`        // low|medium|high
	Truncation      string `toml:"truncation"`       // auto|none
}

// GoogleConfig is the [google] section.
type GoogleConfig struct {
	ThinkingEnabled bool `toml:"thinking_enabled"`
	CacheEnabled    bool `toml:"cache_enabled"`
	CacheTTLSeconds int  `toml:"cache_ttl_seconds"`
}

// ApprovalConfig is the [tools.approval] subtable.
type ApprovalConfig struct {
	Mode      string   `toml:"mode"` // disabled | parse_only | enabled
	Allowlist []string `toml:"allowlist"`
	Denylist  []string `toml:"denylist"`
}

// SandboxConfig is the [tools.sandbox] subtable.
type SandboxConfig struct {
	AllowedRoots         []string `toml:"allowed_roots"`
	DeniedPatterns       []string `toml:"denied_patterns"`
	AllowAbsolute        bool     `toml:"allow_absolute"`
	IncludeDefaultDenies bool     `toml:"include_default_denies"`
}

// ToolsConfig is the [tools] section.
type ToolsConfig struct {
	MaxToolCallsPerBatch     int            `toml:"max_tool_calls_per_batch"`
	MaxToolIterationsPerTurn int            `toml:"max_tool_iterations_per_user_turn"`
	Approval                 ApprovalConfig `toml:"approval"`
	Sandbox                  SandboxConfig  `toml:"sandbox"`
	Timeouts                 map[string]int `toml:"timeouts"`    // tool name -> seconds
	OutputCaps               map[string]int `toml:"output_caps"` // tool name -> byte cap
}

// HookDef defines a single lifecycle hook action: a shell command to
// run, or literal prompt text to inject into the conversation.
type HookDef struct {
	Type    string `toml:"type"` // "command" or "prompt"
	Command string `toml:"command"`
	Prompt  string `toml:"prompt"`
}

// HooksConfig is the [hooks] section, one list of HookDef per
// lifecycle event.
type HooksConfig struct {
	PreToolUse       []HookDef `toml:"pre_tool_use"`
	PostToolUse      []HookDef `toml:"post_tool_use"`
	UserPromptSubmit []HookDef `toml:"user_prompt_submit"`
	SessionStart     []HookDef `toml:"session_start"`
	Stop             []HookDef `toml:"stop"`
}

// Config is the full TOML document at <home>/.forge/config.toml. All
// sections are optional; unrecognized keys produce a load-time warning
// and are ignored (toml.Decode's MetaData.Undecoded supports this).
type Config struct {
	App       AppConfig       `toml:"app"`
	ApiKeys   ApiKeysConfig   `toml:"api_keys"`
	Context   ContextConfig   `toml:"context"`
	Anthropic AnthropicConfig `toml:"anthropic"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Google    GoogleConfig    `toml:"google"`
	Tools     ToolsConfig     `toml:"tools"`
	Hooks     HooksConfig     `toml:"hooks"`
}

// Default returns the configuration that applies when no config.toml
// exists or a section is omitted.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Model: "claude-sonnet-4-20250514",
			TUI:   "full",
		},
		Context: ContextConfig{},
		Tools: ToolsConfig{
			MaxToolCallsPerBatch:     16,
			MaxToolIterationsPerTurn: 64,
			Approval: ApprovalConfig{
				Mode: "enabled",
			},
			Sandbox: SandboxConfig{
				IncludeDefaultDenies: true,
			},
		},
	}
}

// Path returns the config file location, respecting FORGE_CONFIG_DIR if
// set (analogous to the teacher's CLAUDE_CONFIG_DIR override).
func Path() (string, error) {
	if dir := os.Getenv("FORGE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".forge", "config.toml"), nil
}

// Warning describes an unrecognized config key, surfaced by Load so the
// caller can print it without Load itself writing to stdout.
type Warning struct {
	Key string
}

// Load reads and parses the config file. A missing file is not an
// error — Default() is returned. A malformed file is a ConfigError per
// spec §7, fatal at startup.
func Load() (*Config, []Warning, error) {
	path, err := Path()
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil, nil
		}
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	expandApiKeys(cfg)

	var warnings []Warning
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, Warning{Key: key.String()})
	}
	return cfg, warnings, nil
}

// envVarPattern matches ${VAR} references for expansion against the
// process environment.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnvRefs(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := envVarPattern.FindStringSubmatch(m)[1]
		return os.Getenv(name)
	})
}

func expandApiKeys(cfg *Config) {
	cfg.ApiKeys.Anthropic = expandEnvRefs(cfg.ApiKeys.Anthropic)
	cfg.ApiKeys.OpenAI = expandEnvRefs(cfg.ApiKeys.OpenAI)
	cfg.ApiKeys.Google = expandEnvRefs(cfg.ApiKeys.Google)
}

// ResolveCredential returns the credential for provider, honoring
// precedence: config file > environment variable > (none). envVar is
// the provider's CredentialEnvVar(), configValue is the matching
// ApiKeysConfig field (already ${VAR}-expanded).
func ResolveCredential(configValue, envVar string) (string, bool) {
	if configValue != "" {
		return configValue, true
	}
	if v := os.Getenv(envVar); v != "" {
		return v, true
	}
	return "", false
}
