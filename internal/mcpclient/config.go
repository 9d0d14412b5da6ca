package mcpclient

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadConfig merges ~/.mcp.json (user-level) with <cwd>/.mcp.json
// (project-level), the latter overriding the former per server name.
// Returns a nil Config, nil error when neither file defines a server.
func LoadConfig(cwd string) (*Config, error) {
	merged := &Config{Servers: make(map[string]ServerConfig)}

	if home, err := os.UserHomeDir(); err == nil {
		if cfg, err := loadConfigFile(filepath.Join(home, ".mcp.json")); err == nil {
			for name, sc := range cfg.Servers {
				merged.Servers[name] = sc
			}
		}
	}

	if cfg, err := loadConfigFile(filepath.Join(cwd, ".mcp.json")); err == nil {
		for name, sc := range cfg.Servers {
			merged.Servers[name] = sc
		}
	}

	if len(merged.Servers) == 0 {
		return nil, nil
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// AddServer writes name into <cwd>/.mcp.json, creating the file if
// absent and preserving any other servers already declared there.
func AddServer(cwd, name string, server ServerConfig) error {
	path := filepath.Join(cwd, ".mcp.json")
	cfg, err := loadConfigFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		cfg = &Config{Servers: make(map[string]ServerConfig)}
	}
	if cfg.Servers == nil {
		cfg.Servers = make(map[string]ServerConfig)
	}
	cfg.Servers[name] = server
	return writeConfigFile(path, cfg)
}

// RemoveServer deletes name from <cwd>/.mcp.json.
func RemoveServer(cwd, name string) error {
	path := filepath.Join(cwd, ".mcp.json")
	cfg, err := loadConfigFile(path)
	if err != nil {
		return err
	}
	delete(cfg.Servers, name)
	return writeConfigFile(path, cfg)
}

func writeConfigFile(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
