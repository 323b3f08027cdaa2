// Package layout implements spec §4.2: the recursive split/tabbed/stacked
// container tree that computes window geometries for one workspace.
//
// Trees are owned by value from the root down (spec §9 design note
// "Tree nodes"): containers hold their children in a slice, there are no
// parent pointers, and every operation recurses from Tree.Root with
// ordinary Go pointers into that slice. This makes cyclic references
// structurally impossible and keeps cross-references to windows by id,
// never by pointer (spec §3 Ownership).
package layout

import (
	"fmt"

	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
)

// ContainerLayout is the rendering mode of an interior tree node.
type ContainerLayout int

const (
	SplitH ContainerLayout = iota
	SplitV
	Tabbed
	Stacked
)

func (l ContainerLayout) String() string {
	switch l {
	case SplitH:
		return "splith"
	case SplitV:
		return "splitv"
	case Tabbed:
		return "tabbed"
	case Stacked:
		return "stacking"
	default:
		return "unknown"
	}
}

// TabBarHeight is the pixel height reserved at the top of a Tabbed
// container for its tab strip.
const TabBarHeight int32 = 24

// StackedRowHeight is the pixel height of a single title row in a
// Stacked container; the bar height is len(children) * StackedRowHeight.
const StackedRowHeight int32 = 20

// Node is a tagged union over Leaf and Container (spec §3 LayoutTree).
// Only one half of the fields is meaningful, selected by IsLeaf.
type Node struct {
	IsLeaf bool

	// Leaf
	Window ids.WindowId

	// Container
	ID          ids.ContainerId
	Layout      ContainerLayout
	Split       geom.SplitDirection
	Children    []Node
	ActiveChild int
	SizeRatios  []float64

	// Geometry is assigned by Compute. For a Leaf it is the window's
	// on-screen rect (or its reserved-but-hidden rect when it sits in a
	// non-active tab/stack slot). For a Container it is the container's
	// own rect, used by Fullscreen(Container) mode.
	Geometry geom.Rect
}

func leafNode(id ids.WindowId) Node { return Node{IsLeaf: true, Window: id} }

// Tree is one workspace's layout tree. The zero value is an empty tree.
type Tree struct {
	Root  *Node
	alloc ids.ContainerAllocator
}

// NewTree returns an empty tree.
func NewTree() *Tree { return &Tree{} }

func splitLayoutFor(dir geom.SplitDirection) ContainerLayout {
	if dir == geom.Horizontal {
		return SplitH
	}
	return SplitV
}

func equalRatios(n int) []float64 {
	if n <= 0 {
		return nil
	}
	r := make([]float64, n)
	share := 1.0 / float64(n)
	for i := range r {
		r[i] = share
	}
	return r
}

func (t *Tree) newContainer(layout ContainerLayout, split geom.SplitDirection, children []Node) Node {
	return Node{
		ID:          t.alloc.Next(),
		Layout:      layout,
		Split:       split,
		Children:    children,
		ActiveChild: 0,
		SizeRatios:  equalRatios(len(children)),
	}
}

// path is the root-to-parent chain found by locate: ancestors[i] is the
// container descended into via index indices[i] to reach ancestors[i+1]
// (or the leaf, for the last entry).
type path struct {
	ancestors []*Node
	indices   []int
}

func (t *Tree) locate(id ids.WindowId) (path, *Node, bool) {
	if t.Root == nil {
		return path{}, nil, false
	}
	var p path
	leaf, ok := locateRec(t.Root, id, &p)
	return p, leaf, ok
}

func locateRec(n *Node, id ids.WindowId, p *path) (*Node, bool) {
	if n.IsLeaf {
		if n.Window == id {
			return n, true
		}
		return nil, false
	}
	for i := range n.Children {
		child := &n.Children[i]
		if leaf, ok := locateRec(child, id, p); ok {
			p.ancestors = append([]*Node{n}, p.ancestors...)
			p.indices = append([]int{i}, p.indices...)
			return leaf, true
		}
	}
	return nil, false
}

// AddWindow inserts a new leaf for id as a sibling of the leaf currently
// holding `focused` (spec §4.2 add_window). If focused is nil, or is not
// present in the tree, the window is added at the root.
func (t *Tree) AddWindow(id ids.WindowId, focused *ids.WindowId, hint geom.SplitDirection) {
	leaf := leafNode(id)

	if t.Root == nil {
		t.Root = &leaf
		return
	}

	var p path
	var ok bool
	if focused != nil {
		p, _, ok = t.locate(*focused)
	}
	if !ok {
		t.insertAtRoot(leaf, hint)
		return
	}

	if len(p.ancestors) == 0 {
		// The focused window is the bare root leaf: wrap both under a
		// fresh container.
		container := t.newContainer(splitLayoutFor(hint), hint, []Node{*t.Root, leaf})
		t.Root = &container
		return
	}

	parent := p.ancestors[len(p.ancestors)-1]
	idx := p.indices[len(p.indices)-1]

	if parent.Layout == Tabbed || parent.Layout == Stacked {
		insertChild(parent, idx+1, leaf)
		parent.ActiveChild = idx + 1
		return
	}

	if parent.Split == hint {
		insertChild(parent, idx+1, leaf)
		return
	}

	container := t.newContainer(splitLayoutFor(hint), hint, []Node{parent.Children[idx], leaf})
	parent.Children[idx] = container
}

func (t *Tree) insertAtRoot(leaf Node, hint geom.SplitDirection) {
	if t.Root == nil {
		t.Root = &leaf
		return
	}
	if !t.Root.IsLeaf && (t.Root.Layout == SplitH || t.Root.Layout == SplitV) && t.Root.Split == hint {
		insertChild(t.Root, len(t.Root.Children), leaf)
		return
	}
	container := t.newContainer(splitLayoutFor(hint), hint, []Node{*t.Root, leaf})
	t.Root = &container
}

func insertChild(parent *Node, at int, child Node) {
	children := make([]Node, 0, len(parent.Children)+1)
	children = append(children, parent.Children[:at]...)
	children = append(children, child)
	children = append(children, parent.Children[at:]...)
	parent.Children = children
	parent.SizeRatios = equalRatios(len(children))
}

func removeChildAt(parent *Node, idx int) {
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	parent.SizeRatios = equalRatios(len(parent.Children))
	if parent.ActiveChild >= len(parent.Children) {
		parent.ActiveChild = len(parent.Children) - 1
	}
	if parent.ActiveChild < 0 {
		parent.ActiveChild = 0
	}
}

// RemoveWindow removes the leaf holding id. If its container is left with
// a single child, the container collapses into that child, promoting the
// grandchild into the grandparent (spec §4.2 remove_window). Returns
// false if id is not present.
func (t *Tree) RemoveWindow(id ids.WindowId) bool {
	p, _, ok := t.locate(id)
	if !ok {
		return false
	}

	if len(p.ancestors) == 0 {
		t.Root = nil
		return true
	}

	parent := p.ancestors[len(p.ancestors)-1]
	idx := p.indices[len(p.indices)-1]
	removeChildAt(parent, idx)

	if len(parent.Children) == 1 {
		remaining := parent.Children[0]
		if len(p.ancestors) == 1 {
			t.Root = &remaining
		} else {
			grandparent := p.ancestors[len(p.ancestors)-2]
			gIdx := p.indices[len(p.indices)-2]
			grandparent.Children[gIdx] = remaining
		}
	}
	return true
}

// SetContainerLayout rewrites the innermost container containing id.
// Switching to SplitH/SplitV also sets the matching split axis.
func (t *Tree) SetContainerLayout(id ids.WindowId, layout ContainerLayout) bool {
	p, _, ok := t.locate(id)
	if !ok || len(p.ancestors) == 0 {
		return false
	}
	parent := p.ancestors[len(p.ancestors)-1]
	parent.Layout = layout
	switch layout {
	case SplitH:
		parent.Split = geom.Horizontal
	case SplitV:
		parent.Split = geom.Vertical
	}
	return true
}

// ToggleContainerSplit flips SplitH<->SplitV at the innermost enclosing
// container. On a Tabbed/Stacked container it flips the dormant Split
// field only (no visible effect until the layout is changed back to a
// split mode), keeping R3 (double-toggle is identity) true in all cases.
func (t *Tree) ToggleContainerSplit(id ids.WindowId) bool {
	p, _, ok := t.locate(id)
	if !ok || len(p.ancestors) == 0 {
		return false
	}
	parent := p.ancestors[len(p.ancestors)-1]
	switch parent.Layout {
	case SplitH:
		parent.Layout = SplitV
		parent.Split = geom.Vertical
	case SplitV:
		parent.Layout = SplitH
		parent.Split = geom.Horizontal
	default:
		parent.Split = parent.Split.Toggle()
	}
	return true
}

// NextTab advances active_child on the Tabbed/Stacked container holding
// id. escape=true means the boundary was already reached (or id's parent
// isn't a tab-like container) and no mutation occurred; the caller should
// fall through to spatial focus movement.
func (t *Tree) NextTab(id ids.WindowId) (escape bool) {
	parent := t.tabParent(id)
	if parent == nil {
		return true
	}
	if parent.ActiveChild < len(parent.Children)-1 {
		parent.ActiveChild++
		return false
	}
	return true
}

// PrevTab is NextTab's mirror at the lower boundary.
func (t *Tree) PrevTab(id ids.WindowId) (escape bool) {
	parent := t.tabParent(id)
	if parent == nil {
		return true
	}
	if parent.ActiveChild > 0 {
		parent.ActiveChild--
		return false
	}
	return true
}

func (t *Tree) tabParent(id ids.WindowId) *Node {
	p, _, ok := t.locate(id)
	if !ok || len(p.ancestors) == 0 {
		return nil
	}
	parent := p.ancestors[len(p.ancestors)-1]
	if parent.Layout != Tabbed && parent.Layout != Stacked {
		return nil
	}
	return parent
}

// IsWindowInTabbedContainer reports whether any ancestor of id is a
// Tabbed or Stacked container.
func (t *Tree) IsWindowInTabbedContainer(id ids.WindowId) bool {
	p, _, ok := t.locate(id)
	if !ok {
		return false
	}
	for _, a := range p.ancestors {
		if a.Layout == Tabbed || a.Layout == Stacked {
			return true
		}
	}
	return false
}

// MoveWindow swaps id with an adjacent leaf in direction dir if one
// exists in the enclosing split container; otherwise it promotes id out
// of its container by one level (spec §4.2 move_window). Returns true
// iff the tree changed.
func (t *Tree) MoveWindow(id ids.WindowId, dir geom.Direction) bool {
	p, _, ok := t.locate(id)
	if !ok || len(p.ancestors) == 0 {
		return false
	}

	parent := p.ancestors[len(p.ancestors)-1]
	idx := p.indices[len(p.indices)-1]

	if axisMatches(parent, dir) {
		neighbor := idx - 1
		if dir == geom.Right || dir == geom.Down {
			neighbor = idx + 1
		}
		if neighbor >= 0 && neighbor < len(parent.Children) {
			parent.Children[idx], parent.Children[neighbor] = parent.Children[neighbor], parent.Children[idx]
			return true
		}
	}

	if len(p.ancestors) < 2 {
		return false
	}

	grandparent := p.ancestors[len(p.ancestors)-2]
	gIdx := p.indices[len(p.indices)-2]

	leaf := parent.Children[idx]
	removeChildAt(parent, idx)

	if len(parent.Children) == 1 {
		grandparent.Children[gIdx] = parent.Children[0]
	}

	insertPos := gIdx
	if dir == geom.Right || dir == geom.Down {
		insertPos = gIdx + 1
	}
	insertChild(grandparent, insertPos, leaf)
	return true
}

func axisMatches(parent *Node, dir geom.Direction) bool {
	if parent.Layout != SplitH && parent.Layout != SplitV {
		return false
	}
	horizontal := dir == geom.Left || dir == geom.Right
	return horizontal == (parent.Split == geom.Horizontal)
}

// FindNextFocus picks the deterministic focus target after id is removed
// (spec §4.2 find_next_focus): the previous sibling, then the next
// sibling, walking up through ancestors when the immediate container has
// no other children.
func (t *Tree) FindNextFocus(id ids.WindowId) (ids.WindowId, bool) {
	p, _, ok := t.locate(id)
	if !ok {
		return 0, false
	}
	for level := len(p.ancestors) - 1; level >= 0; level-- {
		container := p.ancestors[level]
		idx := p.indices[level]
		if w, ok := firstLeafIn(container, idx-1, -1); ok {
			return w, true
		}
		if w, ok := firstLeafIn(container, idx+1, 1); ok {
			return w, true
		}
	}
	return 0, false
}

func firstLeafIn(container *Node, start, step int) (ids.WindowId, bool) {
	for i := start; i >= 0 && i < len(container.Children); i += step {
		if w, ok := leftmostLeaf(&container.Children[i]); ok {
			return w, true
		}
	}
	return 0, false
}

func leftmostLeaf(n *Node) (ids.WindowId, bool) {
	if n.IsLeaf {
		return n.Window, true
	}
	for i := range n.Children {
		if w, ok := leftmostLeaf(&n.Children[i]); ok {
			return w, true
		}
	}
	return 0, false
}

// FocusLeaf updates every ancestor container's active_child so that id's
// leaf becomes reachable through the visible tab/stack chain (spec §4.6
// focus_window: "focusing a window in a non-active tab switches tabs").
func (t *Tree) FocusLeaf(id ids.WindowId) bool {
	p, _, ok := t.locate(id)
	if !ok {
		return false
	}
	for i, a := range p.ancestors {
		a.ActiveChild = p.indices[i]
	}
	return true
}

// WindowGeom pairs a window with its post-layout rect.
type WindowGeom struct {
	Window ids.WindowId
	Rect   geom.Rect
}

// GetVisibleGeometries enumerates only the leaves that are actually
// rendered: for Tabbed/Stacked containers only active_child's subtree
// contributes (spec §4.2 get_visible_geometries).
func (t *Tree) GetVisibleGeometries() []WindowGeom {
	var out []WindowGeom
	if t.Root != nil {
		collectVisible(t.Root, &out)
	}
	return out
}

func collectVisible(n *Node, out *[]WindowGeom) {
	if n.IsLeaf {
		*out = append(*out, WindowGeom{Window: n.Window, Rect: n.Geometry})
		return
	}
	switch n.Layout {
	case Tabbed, Stacked:
		if n.ActiveChild >= 0 && n.ActiveChild < len(n.Children) {
			collectVisible(&n.Children[n.ActiveChild], out)
		}
	default:
		for i := range n.Children {
			collectVisible(&n.Children[i], out)
		}
	}
}

// AllWindows returns every window id present in the tree, in tree order.
func (t *Tree) AllWindows() []ids.WindowId {
	var out []ids.WindowId
	if t.Root != nil {
		collectAll(t.Root, &out)
	}
	return out
}

func collectAll(n *Node, out *[]ids.WindowId) {
	if n.IsLeaf {
		*out = append(*out, n.Window)
		return
	}
	for i := range n.Children {
		collectAll(&n.Children[i], out)
	}
}

// ContainerRect returns the computed rect of id's innermost enclosing
// container, used by Fullscreen(Container) mode. If id is the bare root
// leaf (no enclosing container), its own rect is returned.
func (t *Tree) ContainerRect(id ids.WindowId) (geom.Rect, bool) {
	p, leaf, ok := t.locate(id)
	if !ok {
		return geom.Rect{}, false
	}
	if len(p.ancestors) == 0 {
		return leaf.Geometry, true
	}
	return p.ancestors[len(p.ancestors)-1].Geometry, true
}

// Compute recursively assigns rectangles to every node (spec §4.2
// Layout algorithm): SplitH/SplitV divide area proportionally to
// SizeRatios with the last child absorbing rounding residue so Σ widths
// (heights) equal the container's exactly (property P4); Tabbed reserves
// a TabBarHeight strip; Stacked reserves len(children)*StackedRowHeight.
func (t *Tree) Compute(area geom.Rect) {
	if t.Root != nil {
		computeNode(t.Root, area)
	}
}

func computeNode(n *Node, area geom.Rect) {
	n.Geometry = area
	if n.IsLeaf {
		return
	}

	switch n.Layout {
	case SplitH:
		widths := splitSizes(area.W, n.SizeRatios)
		x := area.X
		for i := range n.Children {
			computeNode(&n.Children[i], geom.Rect{X: x, Y: area.Y, W: widths[i], H: area.H})
			x += widths[i]
		}
	case SplitV:
		heights := splitSizes(area.H, n.SizeRatios)
		y := area.Y
		for i := range n.Children {
			computeNode(&n.Children[i], geom.Rect{X: area.X, Y: y, W: area.W, H: heights[i]})
			y += heights[i]
		}
	case Tabbed:
		content := geom.Rect{X: area.X, Y: area.Y + TabBarHeight, W: area.W, H: area.H - TabBarHeight}
		for i := range n.Children {
			computeNode(&n.Children[i], content)
		}
	case Stacked:
		barHeight := int32(len(n.Children)) * StackedRowHeight
		content := geom.Rect{X: area.X, Y: area.Y + barHeight, W: area.W, H: area.H - barHeight}
		for i := range n.Children {
			computeNode(&n.Children[i], content)
		}
	}
}

// ValidateSizes walks the tree checking property P4 (spec §8): for
// every Split container, the sum of its children's widths (SplitH) or
// heights (SplitV) equals the container's own extent exactly. Intended
// for the coordinator's debug-assertion pass; it never mutates state
// and returns one error per violation found.
func (t *Tree) ValidateSizes() []error {
	var errs []error
	if t.Root != nil {
		validateSizesRec(t.Root, &errs)
	}
	return errs
}

func validateSizesRec(n *Node, errs *[]error) {
	if n.IsLeaf {
		return
	}
	switch n.Layout {
	case SplitH:
		var sum int32
		for _, c := range n.Children {
			sum += c.Geometry.W
		}
		if sum != n.Geometry.W {
			*errs = append(*errs, fmt.Errorf("layout: container %s children widths sum to %d, want %d", n.ID, sum, n.Geometry.W))
		}
	case SplitV:
		var sum int32
		for _, c := range n.Children {
			sum += c.Geometry.H
		}
		if sum != n.Geometry.H {
			*errs = append(*errs, fmt.Errorf("layout: container %s children heights sum to %d, want %d", n.ID, sum, n.Geometry.H))
		}
	}
	for i := range n.Children {
		validateSizesRec(&n.Children[i], errs)
	}
}

// splitSizes divides total among len(ratios) children, each
// round(total*ratio[i]), with the last child absorbing the rounding
// residue so the sum is exactly total.
func splitSizes(total int32, ratios []float64) []int32 {
	sizes := make([]int32, len(ratios))
	var sum int32
	for i := 0; i < len(ratios)-1; i++ {
		sizes[i] = int32(float64(total)*ratios[i] + 0.5)
		sum += sizes[i]
	}
	if len(sizes) > 0 {
		sizes[len(sizes)-1] = total - sum
	}
	return sizes
}
