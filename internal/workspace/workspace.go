// Package workspace implements spec §4.3: the set of (up to) 10
// pre-reserved workspaces, each owning a layout tree, and the mapping
// from virtual outputs to the workspace currently mounted on them.
package workspace

import (
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/layout"
)

// Workspace is spec §3's Workspace record.
type Workspace struct {
	ID            ids.WorkspaceId
	Windows       map[ids.WindowId]struct{}
	FocusedWindow *ids.WindowId
	Tree          *layout.Tree
	Area          geom.Rect
	Output        *ids.VirtualOutputId
	NextSplit     geom.SplitDirection
}

func newWorkspace(id ids.WorkspaceId) *Workspace {
	return &Workspace{
		ID:      id,
		Windows: make(map[ids.WindowId]struct{}),
		Tree:    layout.NewTree(),
	}
}

// HasWindow reports set membership (used by invariant checks, spec §8 P1/P2).
func (w *Workspace) HasWindow(id ids.WindowId) bool {
	_, ok := w.Windows[id]
	return ok
}

// Manager owns every workspace and the virtual-output mount table (spec
// §4.3). Workspaces are created lazily on first reference and are never
// destroyed during a session (spec §3 Lifecycle).
type Manager struct {
	workspaces map[ids.WorkspaceId]*Workspace
	mounted    map[ids.VirtualOutputId]ids.WorkspaceId
}

// New returns a manager with no workspaces created yet.
func New() *Manager {
	return &Manager{
		workspaces: make(map[ids.WorkspaceId]*Workspace),
		mounted:    make(map[ids.VirtualOutputId]ids.WorkspaceId),
	}
}

// Get returns the workspace with id, lazily creating it if this is its
// first reference.
func (m *Manager) Get(id ids.WorkspaceId) *Workspace {
	ws, ok := m.workspaces[id]
	if !ok {
		ws = newWorkspace(id)
		m.workspaces[id] = ws
	}
	return ws
}

// ShowWorkspaceOnOutput mounts ws on vo with the given area, unmounting
// any prior occupant of vo so the ws.Output<->mounted(vo) invariant (spec
// §4.3) holds after the call returns. The workspace's tree is recomputed
// against the new area.
func (m *Manager) ShowWorkspaceOnOutput(ws ids.WorkspaceId, vo ids.VirtualOutputId, area geom.Rect) {
	if prior, ok := m.mounted[vo]; ok && prior != ws {
		m.workspaces[prior].Output = nil
	}

	w := m.Get(ws)
	if w.Output != nil && *w.Output != vo {
		delete(m.mounted, *w.Output)
	}
	w.Output = &vo
	w.Area = area
	w.Tree.Compute(area)

	m.mounted[vo] = ws
}

// Unmount removes vo's mount, if any, clearing the occupant's Output
// field. The occupant's layout tree and window set are left intact (spec
// §9 Open Question: a workspace removed from its last virtual output
// retains its layout).
func (m *Manager) Unmount(vo ids.VirtualOutputId) {
	ws, ok := m.mounted[vo]
	if !ok {
		return
	}
	delete(m.mounted, vo)
	if w, ok := m.workspaces[ws]; ok {
		w.Output = nil
	}
}

// WorkspaceOnOutput returns the workspace currently mounted on vo.
func (m *Manager) WorkspaceOnOutput(vo ids.VirtualOutputId) (ids.WorkspaceId, bool) {
	ws, ok := m.mounted[vo]
	return ws, ok
}

// FindWorkspaceLocation is the inverse of WorkspaceOnOutput: the virtual
// output ws is currently mounted on, if any.
func (m *Manager) FindWorkspaceLocation(ws ids.WorkspaceId) (ids.VirtualOutputId, bool) {
	w, ok := m.workspaces[ws]
	if !ok || w.Output == nil {
		return 0, false
	}
	return *w.Output, true
}

// AddWindowToWorkspace inserts id into ws's layout tree as a sibling of
// the workspace's currently focused window, and into its window set.
func (m *Manager) AddWindowToWorkspace(ws ids.WorkspaceId, id ids.WindowId, hint geom.SplitDirection) {
	w := m.Get(ws)
	w.Tree.AddWindow(id, w.FocusedWindow, hint)
	w.Windows[id] = struct{}{}
}

// RemoveWindowFromWorkspace removes id from ws's layout tree and window
// set. Clears FocusedWindow if it pointed at id; the coordinator is
// responsible for re-focusing afterwards (spec §4.6 remove_window takes
// find_next_focus *before* this call).
func (m *Manager) RemoveWindowFromWorkspace(ws ids.WorkspaceId, id ids.WindowId) bool {
	w := m.Get(ws)
	ok := w.Tree.RemoveWindow(id)
	if ok {
		delete(w.Windows, id)
		if w.FocusedWindow != nil && *w.FocusedWindow == id {
			w.FocusedWindow = nil
		}
	}
	return ok
}

// MoveWindowInWorkspace moves id within ws's layout tree in direction
// dir. Returns true iff the tree changed.
func (m *Manager) MoveWindowInWorkspace(ws ids.WorkspaceId, id ids.WindowId, dir geom.Direction) bool {
	w := m.Get(ws)
	return w.Tree.MoveWindow(id, dir)
}

// Iter calls fn for every workspace that has been referenced so far, in
// unspecified order.
func (m *Manager) Iter(fn func(*Workspace)) {
	for _, w := range m.workspaces {
		fn(w)
	}
}
