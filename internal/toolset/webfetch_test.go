package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebFetchReturnsTextContent(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain body"))
	}))
	defer server.Close()

	tool := NewWebFetchTool(server.Client())
	out, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q}`, server.URL)))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "plain body", decoded["result"])
	assert.Equal(t, float64(200), decoded["status"])
}

func TestWebFetchStripsHTMLTags(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>hello</p><script>evil()</script></body></html>"))
	}))
	defer server.Close()

	tool := NewWebFetchTool(server.Client())
	out, err := tool.Execute(context.Background(), json.RawMessage(fmt.Sprintf(`{"url":%q}`, server.URL)))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded["result"], "hello")
	assert.NotContains(t, decoded["result"], "evil()")
}

func TestWebFetchRejectsMissingURL(t *testing.T) {
	tool := NewWebFetchTool(nil)
	_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	assert.Error(t, err)
}
