package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// defaultToolTimeout bounds a single MCP tools/call round trip. The
// protocol carries no per-tool timeout of its own (unlike
// internal/toolset's tools, which each declare one), so every
// discovered tool gets the same budget.
const defaultToolTimeout = 60 * time.Second

// ToolWrapper bridges one MCP server tool to toolloop.Tool. Name is
// namespaced by server to keep tools from two servers with the same
// underlying name from colliding in a merged registry.
type ToolWrapper struct {
	serverName  string
	toolName    string
	displayName string
	inputSchema json.RawMessage
	client      *Client
	timeout     time.Duration
}

// NewToolWrapper wraps def, discovered from serverName via client.
func NewToolWrapper(serverName string, def ToolDef, client *Client) *ToolWrapper {
	return &ToolWrapper{
		serverName:  serverName,
		toolName:    def.Name,
		displayName: fmt.Sprintf("mcp__%s__%s", serverName, def.Name),
		inputSchema: def.InputSchema,
		client:      client,
		timeout:     defaultToolTimeout,
	}
}

// Name implements toolloop.Tool.
func (w *ToolWrapper) Name() string { return w.displayName }

// InputSchema implements toolloop.Tool.
func (w *ToolWrapper) InputSchema() json.RawMessage { return w.inputSchema }

// Timeout implements toolloop.Tool.
func (w *ToolWrapper) Timeout() time.Duration { return w.timeout }

// Execute implements toolloop.Tool by forwarding to the server's
// tools/call and concatenating the returned text content blocks.
func (w *ToolWrapper) Execute(ctx context.Context, argsJSON json.RawMessage) (string, error) {
	result, err := w.client.CallTool(ctx, w.toolName, argsJSON)
	if err != nil {
		return "", err
	}

	var callResult ToolCallResult
	if err := json.Unmarshal(result, &callResult); err != nil {
		return string(result), nil
	}

	text := extractTexts(callResult.Content)
	if callResult.IsError {
		return text, fmt.Errorf("mcp tool error: %s", text)
	}
	return text, nil
}

func extractTexts(content []ToolResultContent) string {
	var parts []string
	for _, c := range content {
		if c.Type == "text" && c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
