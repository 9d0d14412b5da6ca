package mcpclient

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolWrapperNameIsNamespacedByServer(t *testing.T) {
	w := NewToolWrapper("widgets", ToolDef{Name: "search"}, nil)
	assert.Equal(t, "mcp__widgets__search", w.Name())
	assert.Equal(t, defaultToolTimeout, w.Timeout())
}

func TestToolWrapperExecuteJoinsTextContent(t *testing.T) {
	ft := &fakeTransport{
		responses: []*JSONRPCResponse{
			{JSONRPC: "2.0", Result: rawResult(t, ToolCallResult{
				Content: []ToolResultContent{
					{Type: "text", Text: "first"},
					{Type: "text", Text: "second"},
				},
			})},
		},
	}
	w := NewToolWrapper("widgets", ToolDef{Name: "search"}, NewClient("widgets", ft))

	out, err := w.Execute(context.Background(), json.RawMessage(`{"q":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", out)
}

func TestToolWrapperExecuteReturnsErrorOnIsError(t *testing.T) {
	ft := &fakeTransport{
		responses: []*JSONRPCResponse{
			{JSONRPC: "2.0", Result: rawResult(t, ToolCallResult{
				IsError: true,
				Content: []ToolResultContent{{Type: "text", Text: "not found"}},
			})},
		},
	}
	w := NewToolWrapper("widgets", ToolDef{Name: "search"}, NewClient("widgets", ft))

	out, err := w.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "not found", out)
	assert.Contains(t, err.Error(), "not found")
}

func TestToolWrapperExecutePropagatesTransportError(t *testing.T) {
	ft := &fakeTransport{
		errs: []error{assert.AnError},
	}
	w := NewToolWrapper("widgets", ToolDef{Name: "search"}, NewClient("widgets", ft))

	_, err := w.Execute(context.Background(), nil)
	require.Error(t, err)
}
