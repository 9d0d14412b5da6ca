package render

import (
	"strings"
)

// Renderer produces frames from RenderState. It is the only render
// type that carries state, and what it carries is exactly the two
// things the design notes sanction as global-equivalent mutable state:
// a pool of glamour renderers keyed by width, and the rendered-frame
// cache keyed by (display_version, width, accessibility_options).
// Everything else about a frame is a pure function of its arguments.
type Renderer struct {
	mdPool *rendererPool
	cache  *frameCache
}

// NewRenderer constructs an empty Renderer.
func NewRenderer() *Renderer {
	return &Renderer{mdPool: newRendererPool(), cache: newFrameCache()}
}

// Render produces the full frame for state at the given terminal
// width. Spec §4.1: "Render produces a frame from state alone; it
// owns no mutable state except width-keyed caches."
func (r *Renderer) Render(state RenderState, width int) string {
	key := cacheKey{version: state.DisplayVersion, width: width, accessibility: state.Accessibility}
	if cached, ok := r.cache.get(key); ok {
		return cached
	}

	frame := r.renderFrame(state, width)
	r.cache.put(key, frame)
	return frame
}

// Reset discards the frame cache, used on a whole-session clear.
func (r *Renderer) Reset() {
	r.cache.Reset()
}

func (r *Renderer) renderFrame(state RenderState, width int) string {
	md := r.mdPool.forWidth(width)

	var b strings.Builder

	if transcript := renderTranscript(md, state.History, state.Accessibility); transcript != "" {
		b.WriteString(transcript)
		b.WriteString("\n")
	}

	if op := renderOperation(md, state.Op, state.Accessibility); op != "" {
		b.WriteString(op)
		b.WriteString("\n")
	}

	// The input box stays visible in every operation state so a user
	// can compose the next message while streaming (spec §4.4: queued
	// requests block behind summarization, but composing one during
	// Streaming is always legal).
	b.WriteString(renderInputArea(state.Mode, width))
	b.WriteString("\n")

	if state.Notice != "" {
		b.WriteString(noticeStyle.Render(state.Notice))
		b.WriteString("\n")
	}

	b.WriteString(renderStatusBar(state.StatusLine, state.Op.Kind.String(), state.Accessibility))

	return b.String()
}
