package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders markdown text to styled ANSI output at a
// given terminal width. Grounded on the teacher's
// internal/tui.markdownRenderer; a mutex guards the renderer and its
// width so concurrent Render calls are safe.
type markdownRenderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

func newMarkdownRenderer(width int) *markdownRenderer {
	width = clampWidth(width)
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	return &markdownRenderer{renderer: r, width: width}
}

func clampWidth(width int) int {
	if width < 40 {
		return 80
	}
	return width
}

func (r *markdownRenderer) render(md string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderer == nil {
		return md
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (r *markdownRenderer) updateWidth(width int) {
	width = clampWidth(width)
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width {
		return
	}
	r.width = width
	newR, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err == nil {
		r.renderer = newR
	}
}

// rendererPool hands out one markdownRenderer per distinct width so
// repeated renders at a stable terminal width reuse glamour's parsed
// style, instead of rebuilding a TermRenderer on every frame.
type rendererPool struct {
	mu        sync.Mutex
	renderers map[int]*markdownRenderer
}

func newRendererPool() *rendererPool {
	return &rendererPool{renderers: make(map[int]*markdownRenderer)}
}

func (p *rendererPool) forWidth(width int) *markdownRenderer {
	width = clampWidth(width)
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.renderers[width]; ok {
		return r
	}
	r := newMarkdownRenderer(width)
	p.renderers[width] = r
	return r
}
