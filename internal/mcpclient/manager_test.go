package mcpclient

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerServersListsSortedNames(t *testing.T) {
	m := NewManager(".", discardLogger())
	m.clients["zebra"] = NewClient("zebra", &fakeTransport{})
	m.clients["alpha"] = NewClient("alpha", &fakeTransport{})

	assert.Equal(t, []string{"alpha", "zebra"}, m.Servers())
}

func TestManagerServerStatusReportsNotConnected(t *testing.T) {
	m := NewManager(".", discardLogger())
	assert.Equal(t, "widgets: not connected", m.ServerStatus("widgets"))
}

func TestManagerServerStatusIncludesServerInfoAndFeatures(t *testing.T) {
	m := NewManager(".", discardLogger())
	c := NewClient("widgets", &fakeTransport{})
	c.serverInfo = ServerInfo{Name: "widget-server", Version: "3.1"}
	c.capabilities = ServerCapabilities{Tools: &ToolsCapability{}}
	m.clients["widgets"] = c

	status := m.ServerStatus("widgets")
	assert.Contains(t, status, "widgets: connected")
	assert.Contains(t, status, "widget-server v3.1")
	assert.Contains(t, status, "[tools]")
}

func TestManagerShutdownClosesAllClientsAndClearsMap(t *testing.T) {
	m := NewManager(".", discardLogger())
	ft := &fakeTransport{}
	m.clients["widgets"] = NewClient("widgets", ft)

	m.Shutdown()
	assert.True(t, ft.closed)
	assert.Empty(t, m.Servers())
}

func TestManagerStartServersRejectsConfigWithoutCommandOrURL(t *testing.T) {
	m := NewManager(".", discardLogger())
	_, err := m.transportForConfig(ServerConfig{})
	assert.Error(t, err)
}
