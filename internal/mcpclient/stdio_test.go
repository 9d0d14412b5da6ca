package mcpclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoScript reads one line from stdin and writes back a canned
// JSON-RPC response, mimicking the one-message round trip a real MCP
// server subprocess performs.
const echoScript = `read line
echo '{"jsonrpc":"2.0","id":0,"result":{"ok":true}}'`

func TestStdioTransportSendRoundTrips(t *testing.T) {
	tr, err := NewStdioTransport("sh", []string{"-c", echoScript}, nil, ".")
	require.NoError(t, err)
	defer tr.Close()

	id := int64(0)
	resp, err := tr.Send(context.Background(), &JSONRPCRequest{JSONRPC: "2.0", ID: &id, Method: "ping"})
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Result))
}

func TestStdioTransportSendRespectsContextCancellation(t *testing.T) {
	tr, err := NewStdioTransport("sh", []string{"-c", "sleep 5"}, nil, ".")
	require.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	id := int64(0)
	_, err = tr.Send(ctx, &JSONRPCRequest{JSONRPC: "2.0", ID: &id, Method: "ping"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStdioTransportCloseIsIdempotentAfterExit(t *testing.T) {
	tr, err := NewStdioTransport("sh", []string{"-c", "exit 0"}, nil, ".")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, tr.Close())
}
