package mcpclient

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport lets Client tests control the JSON-RPC response
// without spawning a real subprocess or HTTP server.
type fakeTransport struct {
	responses []*JSONRPCResponse
	errs      []error
	calls     []*JSONRPCRequest
	notified  []*JSONRPCRequest
	closed    bool
}

func (f *fakeTransport) Send(_ context.Context, req *JSONRPCRequest) (*JSONRPCResponse, error) {
	f.calls = append(f.calls, req)
	i := len(f.calls) - 1
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return f.responses[i], nil
}

func (f *fakeTransport) Notify(_ context.Context, req *JSONRPCRequest) error {
	f.notified = append(f.notified, req)
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func rawResult(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestClientInitializeNegotiatesCapabilitiesAndNotifies(t *testing.T) {
	ft := &fakeTransport{
		responses: []*JSONRPCResponse{
			{
				JSONRPC: "2.0",
				Result: rawResult(t, InitializeResult{
					ProtocolVersion: ProtocolVersion,
					Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
					ServerInfo:      ServerInfo{Name: "widget-server", Version: "2.0"},
				}),
			},
		},
	}
	c := NewClient("widgets", ft)

	err := c.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "widget-server", c.ServerInfo().Name)
	assert.NotNil(t, c.Capabilities().Tools)
	require.Len(t, ft.notified, 1)
	assert.Equal(t, "notifications/initialized", ft.notified[0].Method)
}

func TestClientListToolsParsesToolDefs(t *testing.T) {
	ft := &fakeTransport{
		responses: []*JSONRPCResponse{
			{JSONRPC: "2.0", Result: rawResult(t, ToolsListResult{
				Tools: []ToolDef{{Name: "search", InputSchema: json.RawMessage(`{}`)}},
			})},
		},
	}
	c := NewClient("widgets", ft)

	defs, err := c.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "search", defs[0].Name)
}

func TestClientCallReturnsJSONRPCError(t *testing.T) {
	ft := &fakeTransport{
		responses: []*JSONRPCResponse{
			{JSONRPC: "2.0", Error: &JSONRPCError{Code: -32000, Message: "boom"}},
		},
	}
	c := NewClient("widgets", ft)

	_, err := c.CallTool(context.Background(), "search", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestClientCloseClosesTransport(t *testing.T) {
	ft := &fakeTransport{}
	c := NewClient("widgets", ft)
	require.NoError(t, c.Close())
	assert.True(t, ft.closed)
}

func TestClientRequestIDsIncrement(t *testing.T) {
	ft := &fakeTransport{
		responses: []*JSONRPCResponse{
			{JSONRPC: "2.0", Result: rawResult(t, struct{}{})},
			{JSONRPC: "2.0", Result: rawResult(t, struct{}{})},
		},
	}
	c := NewClient("widgets", ft)

	_, err := c.CallTool(context.Background(), "a", nil)
	require.NoError(t, err)
	_, err = c.CallTool(context.Background(), "b", nil)
	require.NoError(t, err)

	require.Len(t, ft.calls, 2)
	assert.NotEqual(t, *ft.calls[0].ID, *ft.calls[1].ID)
}
