package mcpclient

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/danielchristiancazares/forge/internal/toolloop"
)

// Manager starts and tracks one Client per configured MCP server and
// collects the tools they discover into toolloop.Tool values ready to
// splice into the built-in registry via toolset.Merge.
type Manager struct {
	mu      sync.Mutex
	clients map[string]*Client
	cwd     string
	log     *slog.Logger
}

// NewManager creates a manager that starts subprocess servers rooted
// at cwd.
func NewManager(cwd string, log *slog.Logger) *Manager {
	return &Manager{clients: make(map[string]*Client), cwd: cwd, log: log}
}

// StartServers connects to every configured server, discovers its
// tools, and returns the combined set as toolloop.Tool values. A
// server that fails to start or list tools is logged and skipped;
// StartServers only fails outright when every server fails.
func (m *Manager) StartServers(ctx context.Context, configs map[string]ServerConfig) ([]toolloop.Tool, error) {
	var tools []toolloop.Tool
	var firstErr error
	started := 0

	for name, cfg := range configs {
		client, err := m.startServer(ctx, name, cfg)
		if err != nil {
			m.log.Warn("mcp server failed to start", "server", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		m.mu.Lock()
		m.clients[name] = client
		m.mu.Unlock()
		started++

		defs, err := client.ListTools(ctx)
		if err != nil {
			m.log.Warn("mcp server tool discovery failed", "server", name, "error", err)
			continue
		}
		for _, def := range defs {
			tools = append(tools, NewToolWrapper(name, def, client))
		}
		m.log.Info("mcp server tools registered", "server", name, "count", len(defs))
	}

	if started == 0 && len(configs) > 0 {
		return nil, firstErr
	}
	return tools, nil
}

func (m *Manager) startServer(ctx context.Context, name string, cfg ServerConfig) (*Client, error) {
	transport, err := m.transportForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	if sseT, ok := transport.(*SSETransport); ok {
		if err := sseT.Connect(ctx); err != nil {
			transport.Close()
			return nil, fmt.Errorf("SSE connect: %w", err)
		}
	}

	client := NewClient(name, transport)
	if err := client.Initialize(ctx); err != nil {
		transport.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return client, nil
}

func (m *Manager) transportForConfig(cfg ServerConfig) (Transport, error) {
	if cfg.URL != "" {
		return NewSSETransport(cfg.URL), nil
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("server config must have either 'url' or 'command'")
	}
	return NewStdioTransport(cfg.Command, cfg.Args, cfg.Env, m.cwd)
}

// Shutdown closes every connected server.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			m.log.Warn("error closing mcp server", "server", name, "error", err)
		}
	}
	m.clients = make(map[string]*Client)
}

// Servers returns the sorted names of currently connected servers.
func (m *Manager) Servers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServerStatus returns a human-readable status line for a named server.
func (m *Manager) ServerStatus(name string) string {
	m.mu.Lock()
	client, ok := m.clients[name]
	m.mu.Unlock()

	if !ok {
		return fmt.Sprintf("%s: not connected", name)
	}

	info := client.ServerInfo()
	caps := client.Capabilities()

	status := fmt.Sprintf("%s: connected", name)
	if info.Name != "" {
		status += fmt.Sprintf(" (server: %s", info.Name)
		if info.Version != "" {
			status += fmt.Sprintf(" v%s", info.Version)
		}
		status += ")"
	}

	var features []string
	if caps.Tools != nil {
		features = append(features, "tools")
	}
	if caps.Resources != nil {
		features = append(features, "resources")
	}
	if len(features) > 0 {
		status += fmt.Sprintf(" [%s]", strings.Join(features, ", "))
	}
	return status
}
