package mcpclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// SSETransport talks to an MCP server over HTTP: requests are POSTed
// and responses arrive either inline or framed as Server-Sent Events.
type SSETransport struct {
	baseURL    string
	client     *http.Client
	mu         sync.Mutex
	endpointCh chan string
	endpoint   string
	cancel     context.CancelFunc
	closed     bool
}

// NewSSETransport creates a transport targeting the server's SSE
// endpoint url. Connect must be called before Send/Notify.
func NewSSETransport(url string) *SSETransport {
	return &SSETransport{
		baseURL:    url,
		client:     &http.Client{},
		endpointCh: make(chan string, 1),
	}
}

// Connect opens the SSE stream and waits for the server's "endpoint"
// event, which names the URL that Send/Notify POST to.
func (t *SSETransport) Connect(ctx context.Context) error {
	connCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	req, err := http.NewRequestWithContext(connCtx, "GET", t.baseURL, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("create SSE request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		cancel()
		return fmt.Errorf("SSE connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return fmt.Errorf("SSE connect: status %d", resp.StatusCode)
	}

	go t.readSSEStream(resp.Body)

	select {
	case endpoint := <-t.endpointCh:
		t.endpoint = endpoint
		return nil
	case <-ctx.Done():
		cancel()
		resp.Body.Close()
		return ctx.Err()
	}
}

func (t *SSETransport) readSSEStream(body io.ReadCloser) {
	defer body.Close()

	scanner := bufio.NewScanner(body)
	var eventType string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event:") {
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		}
		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if eventType == "endpoint" {
				endpoint := data
				if !strings.HasPrefix(endpoint, "http") {
					base := t.baseURL
					if idx := strings.LastIndex(base, "/"); idx > 8 {
						base = base[:idx]
					}
					endpoint = base + "/" + strings.TrimPrefix(endpoint, "/")
				}
				select {
				case t.endpointCh <- endpoint:
				default:
				}
			}
			eventType = ""
			continue
		}
		if line == "" {
			eventType = ""
		}
	}
}

// Send POSTs req to the resolved endpoint and reads the response,
// either an inline JSON body or an SSE-framed "message" event.
func (t *SSETransport) Send(ctx context.Context, req *JSONRPCRequest) (*JSONRPCResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.endpoint == "" {
		return nil, fmt.Errorf("SSE transport not connected (no endpoint)")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", t.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create POST request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("POST request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("POST response status %d: %s", httpResp.StatusCode, string(body))
	}

	contentType := httpResp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/event-stream") {
		return t.readSSEResponse(httpResp.Body)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var resp JSONRPCResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

func (t *SSETransport) readSSEResponse(body io.Reader) (*JSONRPCResponse, error) {
	scanner := bufio.NewScanner(body)
	var eventType string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event:") {
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		}
		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if eventType == "message" || eventType == "" {
				var resp JSONRPCResponse
				if err := json.Unmarshal([]byte(data), &resp); err != nil {
					continue
				}
				return &resp, nil
			}
			eventType = ""
			continue
		}
		if line == "" {
			eventType = ""
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read SSE response: %w", err)
	}
	return nil, fmt.Errorf("SSE stream ended without response")
}

// Notify POSTs req to the resolved endpoint without waiting for a body.
func (t *SSETransport) Notify(ctx context.Context, req *JSONRPCRequest) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.endpoint == "" {
		return fmt.Errorf("SSE transport not connected (no endpoint)")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", t.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create POST request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("POST notification: %w", err)
	}
	httpResp.Body.Close()
	return nil
}

// Close cancels the SSE stream. Safe to call more than once.
func (t *SSETransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}
