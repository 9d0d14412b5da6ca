package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

// Transport sends JSON-RPC messages to an MCP server, over whatever
// channel the server was configured with (subprocess stdio or SSE).
type Transport interface {
	Send(ctx context.Context, req *JSONRPCRequest) (*JSONRPCResponse, error)
	Notify(ctx context.Context, req *JSONRPCRequest) error
	Close() error
}

// Client speaks MCP to a single server over a Transport, tracking the
// request-id sequence and the capabilities negotiated at init time.
type Client struct {
	transport  Transport
	serverName string
	nextID     atomic.Int64
	mu         sync.Mutex

	capabilities ServerCapabilities
	serverInfo   ServerInfo
}

// NewClient wraps transport as the named server's client.
func NewClient(serverName string, transport Transport) *Client {
	c := &Client{transport: transport, serverName: serverName}
	c.nextID.Store(1)
	return c
}

// ServerName returns the configured name of this server.
func (c *Client) ServerName() string { return c.serverName }

// ServerInfo returns the server's self-reported info after Initialize.
func (c *Client) ServerInfo() ServerInfo { return c.serverInfo }

// Capabilities returns the negotiated server capabilities.
func (c *Client) Capabilities() ServerCapabilities { return c.capabilities }

// Initialize performs the MCP handshake and sends the required
// "initialized" notification once the server has responded.
func (c *Client) Initialize(ctx context.Context) error {
	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ClientCapabilities{},
		ClientInfo:      ClientInfo{Name: "forge", Version: "1.0.0"},
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal initialize params: %w", err)
	}

	resp, err := c.call(ctx, "initialize", paramsJSON)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("unmarshal initialize result: %w", err)
	}
	c.capabilities = result.Capabilities
	c.serverInfo = result.ServerInfo

	notif := &JSONRPCRequest{JSONRPC: "2.0", Method: "notifications/initialized"}
	if err := c.transport.Notify(ctx, notif); err != nil {
		return fmt.Errorf("send initialized notification: %w", err)
	}
	return nil
}

// ListTools discovers the tools this server offers.
func (c *Client) ListTools(ctx context.Context) ([]ToolDef, error) {
	paramsJSON, _ := json.Marshal(struct{}{})
	resp, err := c.call(ctx, "tools/list", paramsJSON)
	if err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}
	var result ToolsListResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("unmarshal tools/list result: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a tool on the server and returns the raw result
// payload (a marshaled ToolCallResult).
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	params := ToolCallParams{Name: name, Arguments: args}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal tool call params: %w", err)
	}
	resp, err := c.call(ctx, "tools/call", paramsJSON)
	if err != nil {
		return nil, fmt.Errorf("tools/call %s: %w", name, err)
	}
	return resp, nil
}

// Close shuts down the underlying transport.
func (c *Client) Close() error { return c.transport.Close() }

func (c *Client) call(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID.Add(1) - 1
	req := &JSONRPCRequest{JSONRPC: "2.0", ID: &id, Method: method, Params: params}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}
