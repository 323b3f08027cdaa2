package ascii

import (
	"strings"
	"testing"

	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptyTree(t *testing.T) {
	snap, w, h := Render(layout.NewTree(), nil, nil, Options{})
	assert.Equal(t, "(empty workspace)", snap)
	assert.Equal(t, len("(empty workspace)"), w)
	assert.Equal(t, 1, h)
}

func TestRenderSingleWindowDrawsBox(t *testing.T) {
	tree := layout.NewTree()
	area := geom.Rect{X: 0, Y: 0, W: 200, H: 100}
	w1 := ids.WindowId(1)
	tree.AddWindow(w1, nil, geom.Horizontal)
	tree.Compute(area)

	snap, width, height := Render(tree, nil, Labels{w1: "term"}, Options{})
	require.NotEmpty(t, snap)
	assert.Greater(t, width, 0)
	assert.Greater(t, height, 0)
	assert.Contains(t, snap, "term")
	lines := strings.Split(snap, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "┌") || strings.HasPrefix(lines[0], "+"))
}

func TestRenderShowFocusMarksFocusedWindow(t *testing.T) {
	tree := layout.NewTree()
	area := geom.Rect{X: 0, Y: 0, W: 400, H: 200}
	w1, w2 := ids.WindowId(1), ids.WindowId(2)
	tree.AddWindow(w1, nil, geom.Horizontal)
	tree.AddWindow(w2, &w1, geom.Horizontal)
	tree.Compute(area)

	snap, _, _ := Render(tree, &w2, Labels{w1: "left", w2: "right"}, Options{ShowFocus: true})
	assert.Contains(t, snap, "*right")
	assert.NotContains(t, snap, "*left")
}

func TestRenderShowIDsPrefixesWindowId(t *testing.T) {
	tree := layout.NewTree()
	area := geom.Rect{X: 0, Y: 0, W: 200, H: 100}
	w1 := ids.WindowId(7)
	tree.AddWindow(w1, nil, geom.Horizontal)
	tree.Compute(area)

	snap, _, _ := Render(tree, nil, Labels{w1: "term"}, Options{ShowIDs: true})
	assert.Contains(t, snap, w1.String())
}

func TestRenderTabbedOnlyDrawsActiveChild(t *testing.T) {
	tree := layout.NewTree()
	area := geom.Rect{X: 0, Y: 0, W: 400, H: 200}
	w1, w2 := ids.WindowId(1), ids.WindowId(2)
	tree.AddWindow(w1, nil, geom.Horizontal)
	tree.AddWindow(w2, &w1, geom.Horizontal)
	tree.SetContainerLayout(w1, layout.Tabbed)
	tree.Compute(area)

	snap, _, _ := Render(tree, nil, Labels{w1: "alpha", w2: "beta"}, Options{})
	assert.Contains(t, snap, "alpha")
	assert.Contains(t, snap, "beta")
	assert.Equal(t, 1, strings.Count(snap, "beta"))
}

func TestWithHeaderPrefixesSnapshot(t *testing.T) {
	out := WithHeader("Workspace 1", "+--+\n|  |\n+--+")
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "Workspace 1")
	assert.Contains(t, out, "+--+")
}
