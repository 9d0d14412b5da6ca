package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampWidthRaisesNarrowTerminalsToDefault(t *testing.T) {
	assert.Equal(t, 80, clampWidth(10))
	assert.Equal(t, 100, clampWidth(100))
}

func TestRendererPoolReusesInstancePerWidth(t *testing.T) {
	pool := newRendererPool()
	a := pool.forWidth(80)
	b := pool.forWidth(80)
	c := pool.forWidth(120)
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestMarkdownRendererFallsBackToRawTextOnNilRenderer(t *testing.T) {
	r := &markdownRenderer{}
	assert.Equal(t, "plain text", r.render("plain text"))
}
