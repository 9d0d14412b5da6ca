package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	webFetchTimeout    = 30 * time.Second
	webFetchMaxBody    = 10 * 1024 * 1024
	webFetchMaxContent = 100_000
)

const webFetchSchemaJSON = `{
  "type": "object",
  "properties": {
    "url": {"type": "string", "description": "The URL to fetch content from", "format": "uri"}
  },
  "required": ["url"],
  "additionalProperties": false
}`

var webFetchSchema = compileSchema(webFetchSchemaJSON)

type webFetchInput struct {
	URL string `json:"url"`
}

// WebFetchTool fetches a URL and returns its text content. Caching
// across calls belongs to whatever owns the conversation turn, not
// the tool itself, so unlike the teacher's version this holds no
// state between Execute calls.
type WebFetchTool struct {
	httpClient *http.Client
}

// NewWebFetchTool builds a WebFetch tool using httpClient, or a
// default client with a generous timeout if httpClient is nil.
func NewWebFetchTool(httpClient *http.Client) *WebFetchTool {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: webFetchTimeout}
	}
	return &WebFetchTool{httpClient: httpClient}
}

func (t *WebFetchTool) Name() string { return "WebFetch" }

func (t *WebFetchTool) InputSchema() json.RawMessage { return json.RawMessage(webFetchSchemaJSON) }

func (t *WebFetchTool) Timeout() time.Duration { return webFetchTimeout }

func (t *WebFetchTool) Execute(ctx context.Context, argsJSON json.RawMessage) (string, error) {
	if _, err := validateArgs(webFetchSchema, argsJSON); err != nil {
		return "", err
	}
	var in webFetchInput
	if err := json.Unmarshal(argsJSON, &in); err != nil {
		return "", fmt.Errorf("parsing WebFetch arguments: %w", err)
	}
	if in.URL == "" {
		return "", fmt.Errorf("url is required")
	}

	url := in.URL
	if strings.HasPrefix(url, "http://") {
		url = "https://" + url[len("http://"):]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "Forge/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, webFetchMaxBody))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	content := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		content = htmlToText(content)
	}
	if len(content) > webFetchMaxContent {
		content = content[:webFetchMaxContent] + "\n... (content truncated)"
	}

	result := map[string]any{
		"url":    url,
		"status": resp.StatusCode,
		"bytes":  len(body),
		"result": content,
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(out), nil
}

var (
	reScript = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	reStyle  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	reBlock  = regexp.MustCompile(`(?i)<(?:br|p|div|h[1-6]|li|tr)[^>]*>`)
	reTags   = regexp.MustCompile(`<[^>]+>`)
	reBlank  = regexp.MustCompile(`\n{3,}`)
)

func htmlToText(html string) string {
	html = reScript.ReplaceAllString(html, "")
	html = reStyle.ReplaceAllString(html, "")
	html = reBlock.ReplaceAllString(html, "\n")
	html = reTags.ReplaceAllString(html, "")
	html = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(html)
	html = reBlank.ReplaceAllString(html, "\n\n")
	return strings.TrimSpace(html)
}
