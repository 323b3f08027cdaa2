// Package ascii renders one workspace's layout.Tree into a fixed-width
// character grid for spec §6's GetState and GetAsciiSnapshot commands.
// It borrows internal/ui's palette and box-drawing conventions
// (RoundedBorder, a repeated-rune separator) but renders to a plain
// string grid rather than driving a live terminal session — that's
// internal/testbackend's job, built on the same bubbletea/bubbles stack
// the teacher's interactive UI uses.
package ascii

import (
	"strings"

	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/layout"
	"github.com/charmbracelet/lipgloss"
)

// cellWidth and cellHeight are the pixel footprint of one character
// cell, chosen so a 1920x1080 output renders into a terminal-sized grid
// (roughly 192x54) rather than one cell per pixel.
const (
	cellWidth  int32 = 10
	cellHeight int32 = 20
)

var (
	focusedBorder = lipgloss.RoundedBorder()
	plainBorder   = lipgloss.NormalBorder()
)

// HeaderStyle matches internal/ui's title treatment (bold, primary
// color, padded) for the title line WithHeader prefixes onto the grid in
// the --test backend's interactive view (internal/testbackend). GetState
// and GetAsciiSnapshot both return the bare grid.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("39")).
	Padding(0, 1)

// Options controls how much identifying detail Render embeds in labels.
type Options struct {
	ShowIDs   bool
	ShowFocus bool
}

// Labels supplies the human-readable title for a window, looked up by
// id. The layout tree itself only ever carries ids (spec §3 Ownership),
// so Render needs this side table from its caller — the glue layer that
// also tracks xdg_toplevel titles via internal/protocol.
type Labels map[ids.WindowId]string

func (l Labels) label(id ids.WindowId) string {
	if l == nil {
		return ""
	}
	return l[id]
}

// grid is a mutable rune canvas, row-major.
type grid struct {
	cells [][]rune
	cols  int
	rows  int
}

func newGrid(cols, rows int) *grid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([][]rune, rows)
	for i := range cells {
		row := make([]rune, cols)
		for j := range row {
			row[j] = ' '
		}
		cells[i] = row
	}
	return &grid{cells: cells, cols: cols, rows: rows}
}

func (g *grid) set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y][x] = r
}

func (g *grid) writeString(x, y int, s string) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r)
	}
}

func (g *grid) String() string {
	lines := make([]string, g.rows)
	for i, row := range g.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

func toCells(r geom.Rect) (x, y, w, h int) {
	x = int(r.X / cellWidth)
	y = int(r.Y / cellHeight)
	w = int((r.W + cellWidth - 1) / cellWidth)
	h = int((r.H + cellHeight - 1) / cellHeight)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return x, y, w, h
}

// Render draws tree into a snapshot string sized to fit its root
// geometry. focused, if non-nil, marks one leaf's border and label
// distinctly when opts.ShowFocus is set.
func Render(tree *layout.Tree, focused *ids.WindowId, labels Labels, opts Options) (snapshot string, width, height int) {
	if tree == nil || tree.Root == nil {
		return "(empty workspace)", len("(empty workspace)"), 1
	}

	_, _, cols, rows := toCells(tree.Root.Geometry)
	g := newGrid(cols, rows)

	drawNode(g, tree.Root, focused, labels, opts)

	return g.String(), g.cols, g.rows
}

// WithHeader prefixes snapshot with a styled title line, for the --test
// backend's human-facing view. GetState and GetAsciiSnapshot return
// Render's bare output, so their width/height describe the grid only.
func WithHeader(title, snapshot string) string {
	return HeaderStyle.Render(title) + "\n" + snapshot
}

func drawNode(g *grid, n *layout.Node, focused *ids.WindowId, labels Labels, opts Options) {
	if n.IsLeaf {
		drawLeaf(g, n, focused, labels, opts)
		return
	}

	switch n.Layout {
	case layout.Tabbed:
		drawTabBar(g, n, labels)
	case layout.Stacked:
		drawStackBar(g, n, labels)
	}

	if len(n.Children) == 0 {
		return
	}
	if n.Layout == layout.Tabbed || n.Layout == layout.Stacked {
		idx := n.ActiveChild
		if idx < 0 || idx >= len(n.Children) {
			idx = 0
		}
		drawNode(g, &n.Children[idx], focused, labels, opts)
		return
	}
	for i := range n.Children {
		drawNode(g, &n.Children[i], focused, labels, opts)
	}
}

func drawTabBar(g *grid, n *layout.Node, labels Labels) {
	x, y, w, _ := toCells(n.Geometry)
	var plain strings.Builder
	for i := range n.Children {
		title := tabTitle(&n.Children[i], labels)
		if i == n.ActiveChild {
			plain.WriteString("[" + title + "]")
		} else {
			plain.WriteString(" " + title + " ")
		}
	}
	g.writeString(x, y, clipPlain(plain.String(), w))
}

func drawStackBar(g *grid, n *layout.Node, labels Labels) {
	x, y, w, _ := toCells(n.Geometry)
	for i := range n.Children {
		title := tabTitle(&n.Children[i], labels)
		var line string
		if i == n.ActiveChild {
			line = "▸ " + title
		} else {
			line = "  " + title
		}
		g.writeString(x, y+i, clipPlain(line, w))
	}
}

// tabTitle names one child for a tab/stack bar entry: the leaf's label
// if it is a leaf, or its layout kind otherwise (a nested split showing
// up as a single tab).
func tabTitle(n *layout.Node, labels Labels) string {
	if n.IsLeaf {
		if t := labels.label(n.Window); t != "" {
			return t
		}
		return n.Window.String()
	}
	return n.Layout.String()
}

func drawLeaf(g *grid, n *layout.Node, focused *ids.WindowId, labels Labels, opts Options) {
	x, y, w, h := toCells(n.Geometry)
	isFocused := opts.ShowFocus && focused != nil && *focused == n.Window

	border := plainBorder
	if isFocused {
		border = focusedBorder
	}

	drawBox(g, x, y, w, h, border)

	label := labels.label(n.Window)
	if label == "" {
		label = "window"
	}
	if opts.ShowIDs {
		label = n.Window.String() + " " + label
	}
	if isFocused {
		label = "*" + label
	}
	if w > 2 {
		g.writeString(x+1, y+1, clipPlain(label, w-2))
	}
}

func drawBox(g *grid, x, y, w, h int, b lipgloss.Border) {
	if w < 1 || h < 1 {
		return
	}
	g.set(x, y, r(b.TopLeft, '+'))
	g.set(x+w-1, y, r(b.TopRight, '+'))
	g.set(x, y+h-1, r(b.BottomLeft, '+'))
	g.set(x+w-1, y+h-1, r(b.BottomRight, '+'))
	for i := 1; i < w-1; i++ {
		g.set(x+i, y, r(b.Top, '-'))
		g.set(x+i, y+h-1, r(b.Bottom, '-'))
	}
	for i := 1; i < h-1; i++ {
		g.set(x, y+i, r(b.Left, '|'))
		g.set(x+w-1, y+i, r(b.Right, '|'))
	}
}

func r(s string, fallback rune) rune {
	rs := []rune(s)
	if len(rs) == 0 {
		return fallback
	}
	return rs[0]
}

func clipPlain(s string, width int) string {
	runes := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
