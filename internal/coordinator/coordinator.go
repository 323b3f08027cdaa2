// Package coordinator implements spec §4.6: the State Coordinator that
// owns and wires the window registry, workspace manager, virtual
// output manager, and physical layout router into the public
// operations the rest of the compositor (protocol handlers, IPC, CLI)
// calls into.
//
// It is grounded on the teacher's internal/server/manager.go
// ClientManager: the map+allocator "big manager" shape is kept (without
// its context cancellation), with client-session bookkeeping replaced by the
// window/workspace/virtual-output bookkeeping spec §4.6 describes.
// Unlike ClientManager, the coordinator takes no mutex — spec §5 places
// it on the single-threaded event loop alongside everything it owns.
package coordinator

import (
	"github.com/bnema/stilch/internal/command"
	"github.com/bnema/stilch/internal/corerr"
	"github.com/bnema/stilch/internal/eventbus"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/layout"
	"github.com/bnema/stilch/internal/registry"
	"github.com/bnema/stilch/internal/resize"
	"github.com/bnema/stilch/internal/router"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/bnema/stilch/internal/workspace"
)

// Coordinator wires registry, workspace, voutput and router together
// per spec §4.6's transaction model: (a) read-compute-next-focus, (b)
// mutate tree, (c) mutate registry, (d) emit event, (e) re-layout.
type Coordinator struct {
	Registry   *registry.Registry
	Workspaces *workspace.Manager
	VOutputs   *voutput.Manager
	Router     *router.Router
	Bus        *eventbus.Bus
	History    *command.History
	Resize     *resize.Machine

	focused           *ids.WindowId
	zones             map[string]layout.ExclusiveZones
	focusFollowsMouse bool
}

// New wires a coordinator from its already-constructed collaborators.
func New(reg *registry.Registry, ws *workspace.Manager, vo *voutput.Manager, bus *eventbus.Bus) *Coordinator {
	return &Coordinator{
		Registry:   reg,
		Workspaces: ws,
		VOutputs:   vo,
		Router:     router.New(vo),
		Bus:        bus,
		History:    command.NewHistory(command.DefaultCapacity),
		Resize:     &resize.Machine{},
		zones:      make(map[string]layout.ExclusiveZones),
	}
}

// SetFocusFollowsMouse toggles the supplemented focus-follows-mouse
// behaviour (spec §4.6, supplemented feature 4).
func (c *Coordinator) SetFocusFollowsMouse(on bool) { c.focusFollowsMouse = on }

// FocusFollowsMouse reports whether pointer motion should move keyboard
// focus (spec §4.6: "On pointer motion, if enabled... call
// focus_window"), defaulting to off per config.Settings.FocusFollowsMouse.
func (c *Coordinator) FocusFollowsMouse() bool { return c.focusFollowsMouse }

// SetExclusiveZone records the layer-shell exclusive zone reserved on
// displayName's edges, consulted by EffectiveArea.
func (c *Coordinator) SetExclusiveZone(displayName string, zones layout.ExclusiveZones) {
	c.zones[displayName] = zones
}

// EffectiveArea computes a virtual output's effective_area: its logical
// region minus the exclusive zones declared on the edges it shares with
// its physical output(s) (spec §4.6). For a virtual output spanning
// several physical outputs (construction mode 3) each physical
// display's zones are applied against whichever of the region's edges
// coincide with that display's geometry; this intentionally does not
// attempt to reconcile conflicting zones from two displays sharing the
// same logical edge; spec.md is silent on that case.
func (c *Coordinator) EffectiveArea(vo ids.VirtualOutputId) (geom.Rect, bool) {
	v, ok := c.VOutputs.Get(vo)
	if !ok {
		return geom.Rect{}, false
	}
	area := v.LogicalRegion
	for _, name := range v.PhysicalOutputs {
		d, ok := c.VOutputs.Display(name)
		if !ok {
			continue
		}
		area = layout.EffectiveArea(area, d.LogicalRect(), c.zones[name])
	}
	return area, true
}

// relayout recomputes ws's tree against its virtual output's effective
// area, if ws is currently mounted.
func (c *Coordinator) relayout(ws ids.WorkspaceId) {
	w := c.Workspaces.Get(ws)
	if w.Output == nil {
		return
	}
	area, ok := c.EffectiveArea(*w.Output)
	if !ok {
		return
	}
	w.Area = area
	w.Tree.Compute(area)
}

// homeVirtualOutput returns vo's active workspace, creating workspace 0
// if none is active yet (spec §4.6 add_window: "creating workspace 0 if
// none active").
func (c *Coordinator) homeVirtualOutput(vo ids.VirtualOutputId) ids.WorkspaceId {
	if ws, ok := c.Workspaces.WorkspaceOnOutput(vo); ok {
		return ws
	}
	if ws, ok := c.VOutputs.ActiveWorkspace(vo); ok {
		return ws
	}
	return 0
}

// AddWindow is spec §4.6's add_window: allocates a WindowId, places it
// on vo's active workspace, inserts it into the layout tree, recomputes
// layout, focuses it, and emits WindowCreated.
func (c *Coordinator) AddWindow(element registry.Element, vo ids.VirtualOutputId) (ids.WindowId, error) {
	if _, ok := c.VOutputs.Get(vo); !ok {
		return 0, corerr.Newf(corerr.NotFound, "coordinator: unknown virtual output %s", vo)
	}

	ws := c.homeVirtualOutput(vo)
	if _, mounted := c.Workspaces.WorkspaceOnOutput(vo); !mounted {
		area, _ := c.EffectiveArea(vo)
		c.Workspaces.ShowWorkspaceOnOutput(ws, vo, area)
		c.VOutputs.SetActiveWorkspace(vo, ws)
	}

	w := c.Registry.Insert(element, ws)
	workspaceObj := c.Workspaces.Get(ws)
	c.Workspaces.AddWindowToWorkspace(ws, w.ID, workspaceObj.NextSplit)
	c.Registry.Update(w.ID, func(mw *registry.ManagedWindow) {
		mw.Layout = registry.WindowLayout{Kind: registry.Tiled}
	})

	c.relayout(ws)
	c.FocusWindow(w.ID)
	c.Bus.Emit(eventbus.WindowCreated, w.ID)
	return w.ID, nil
}

// RemoveWindow is spec §4.6's remove_window: computes the deterministic
// next-focus target *before* mutating the tree, removes the window from
// tree/set/registry, emits WindowRemoved, then focuses the computed
// target and re-applies layout.
func (c *Coordinator) RemoveWindow(id ids.WindowId) error {
	w, ok := c.Registry.Get(id)
	if !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: unknown window %s", id)
	}
	ws := w.Workspace
	tree := c.Workspaces.Get(ws).Tree

	next, hasNext := tree.FindNextFocus(id)

	c.Workspaces.RemoveWindowFromWorkspace(ws, id)
	c.Registry.Remove(id)
	c.Bus.Emit(eventbus.WindowRemoved, id)

	if c.focused != nil && *c.focused == id {
		c.focused = nil
	}
	if hasNext {
		c.FocusWindow(next)
	}

	c.relayout(ws)
	return nil
}

// FocusWindow is spec §4.6's focus_window: sets keyboard focus, updates
// the window's workspace's focused_window, and updates every ancestor
// container's active_child so the leaf becomes reachable (focusing a
// window in a non-active tab switches to it).
func (c *Coordinator) FocusWindow(id ids.WindowId) error {
	w, ok := c.Registry.Get(id)
	if !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: unknown window %s", id)
	}
	ws := c.Workspaces.Get(w.Workspace)
	ws.Tree.FocusLeaf(id)
	idCopy := id
	ws.FocusedWindow = &idCopy
	c.focused = &idCopy
	c.Bus.Emit(eventbus.WindowFocused, id)
	return nil
}

// FocusElement is FocusWindow keyed by the registry's Element handle,
// the form the protocol layer actually has on hand when a surface
// gains focus.
func (c *Coordinator) FocusElement(element registry.Element) error {
	id, ok := c.Registry.FindByElement(element)
	if !ok {
		return corerr.New(corerr.NotFound, "coordinator: element not registered")
	}
	return c.FocusWindow(id)
}

// FocusedWindow returns the currently keyboard-focused window, if any.
func (c *Coordinator) FocusedWindow() (ids.WindowId, bool) {
	if c.focused == nil {
		return 0, false
	}
	return *c.focused, true
}

// SwitchWorkspace is spec §4.6's switch_workspace: unmounts the
// workspace currently shown on vo, mounts ws, re-applies layout, and
// emits WorkspaceSwitched.
func (c *Coordinator) SwitchWorkspace(vo ids.VirtualOutputId, ws ids.WorkspaceId) error {
	if _, ok := c.VOutputs.Get(vo); !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: unknown virtual output %s", vo)
	}
	area, ok := c.EffectiveArea(vo)
	if !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: no effective area for virtual output %s", vo)
	}
	c.Workspaces.ShowWorkspaceOnOutput(ws, vo, area)
	c.VOutputs.SetActiveWorkspace(vo, ws)
	c.Bus.Emit(eventbus.WorkspaceSwitched, ws)
	return nil
}

// MoveWindowToWorkspace is spec §4.6's move_window_to_workspace: removes
// id from its source workspace's tree/set, adds it to target, updates
// the registry, emits an event, and re-applies layout for both
// workspaces.
func (c *Coordinator) MoveWindowToWorkspace(id ids.WindowId, target ids.WorkspaceId) error {
	w, ok := c.Registry.Get(id)
	if !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: unknown window %s", id)
	}
	source := w.Workspace
	if source == target {
		return nil
	}

	c.Workspaces.RemoveWindowFromWorkspace(source, id)
	targetWorkspace := c.Workspaces.Get(target)
	c.Workspaces.AddWindowToWorkspace(target, id, targetWorkspace.NextSplit)
	c.Registry.Update(id, func(mw *registry.ManagedWindow) { mw.Workspace = target })

	c.Bus.Emit(eventbus.WorkspaceSwitched, target)
	c.relayout(source)
	c.relayout(target)
	return nil
}

// MoveWindowDirection moves id one step within its workspace's layout
// tree (spec §4.2 move_window, surfaced here so internal/command's
// Target interface can drive it without importing layout directly).
func (c *Coordinator) MoveWindowDirection(id ids.WindowId, dir geom.Direction) bool {
	w, ok := c.Registry.Get(id)
	if !ok {
		return false
	}
	ws := c.Workspaces.Get(w.Workspace)
	changed := ws.Tree.MoveWindow(id, dir)
	if changed {
		c.relayout(w.Workspace)
		c.Bus.Emit(eventbus.LayoutChanged, w.Workspace)
	}
	return changed
}

// SetContainerLayout changes id's innermost enclosing container's
// rendering mode (spec §4.2 set_container_layout, surfaced for the
// "layout" bindsym/IPC command) and re-applies layout. Returns false if
// id isn't in a tree or has no enclosing container.
func (c *Coordinator) SetContainerLayout(id ids.WindowId, l layout.ContainerLayout) bool {
	w, ok := c.Registry.Get(id)
	if !ok {
		return false
	}
	ws := c.Workspaces.Get(w.Workspace)
	if !ws.Tree.SetContainerLayout(id, l) {
		return false
	}
	c.relayout(w.Workspace)
	c.Bus.Emit(eventbus.LayoutChanged, w.Workspace)
	return true
}

// ToggleContainerSplit flips id's innermost enclosing container between
// SplitH and SplitV (the "toggle_split" layout command).
func (c *Coordinator) ToggleContainerSplit(id ids.WindowId) bool {
	w, ok := c.Registry.Get(id)
	if !ok {
		return false
	}
	ws := c.Workspaces.Get(w.Workspace)
	if !ws.Tree.ToggleContainerSplit(id) {
		return false
	}
	c.relayout(w.Workspace)
	c.Bus.Emit(eventbus.LayoutChanged, w.Workspace)
	return true
}

// SetSplitDirection sets id's innermost enclosing container to a
// specific split axis (the "split h"/"split v" command), switching its
// layout to SplitH/SplitV if it was Tabbed/Stacked.
func (c *Coordinator) SetSplitDirection(id ids.WindowId, dir geom.SplitDirection) bool {
	l := layout.SplitV
	if dir == geom.Horizontal {
		l = layout.SplitH
	}
	return c.SetContainerLayout(id, l)
}

// AutoSplitDirection picks a split axis for id's innermost enclosing
// container based on its current aspect ratio ("split auto": wider than
// tall splits horizontally, taller than wide splits vertically), the
// same heuristic sway's "split toggle"/"auto" layout uses. Spec.md
// names "auto" in its command vocabulary but not a selection rule; this
// is an Open Question decision, not a literal transcription.
func (c *Coordinator) AutoSplitDirection(id ids.WindowId) (geom.SplitDirection, bool) {
	w, ok := c.Registry.Get(id)
	if !ok {
		return 0, false
	}
	ws := c.Workspaces.Get(w.Workspace)
	rect, ok := ws.Tree.ContainerRect(id)
	if !ok {
		return 0, false
	}
	if rect.W >= rect.H {
		return geom.Horizontal, true
	}
	return geom.Vertical, true
}

// WindowWorkspace implements internal/command.Target.
func (c *Coordinator) WindowWorkspace(id ids.WindowId) (ids.WorkspaceId, bool) {
	w, ok := c.Registry.Get(id)
	if !ok {
		return 0, false
	}
	return w.Workspace, true
}

// WorkspaceOnOutput implements internal/command.Target.
func (c *Coordinator) WorkspaceOnOutput(vo ids.VirtualOutputId) (ids.WorkspaceId, bool) {
	return c.Workspaces.WorkspaceOnOutput(vo)
}

// fullscreenGeometry computes the geometry for entering fullscreen mode
// (spec §4.6 set_window_fullscreen): Container -> the ancestor
// container's rect, VirtualOutput -> the vo's logical region,
// PhysicalOutput -> the first physical output's logical geometry (a
// virtual output spanning several physical outputs has no single
// "physical output geometry"; spec.md does not address the union case,
// so the first physical output, in registration order, is used).
func (c *Coordinator) fullscreenGeometry(id ids.WindowId, mode registry.FullscreenMode) (geom.Rect, error) {
	w, ok := c.Registry.Get(id)
	if !ok {
		return geom.Rect{}, corerr.Newf(corerr.NotFound, "coordinator: unknown window %s", id)
	}
	ws := c.Workspaces.Get(w.Workspace)

	switch mode {
	case registry.FullscreenContainer:
		r, ok := ws.Tree.ContainerRect(id)
		if !ok {
			return geom.Rect{}, corerr.Newf(corerr.NotFound, "coordinator: window %s not in layout tree", id)
		}
		return r, nil
	case registry.FullscreenVirtualOutput:
		if ws.Output == nil {
			return geom.Rect{}, corerr.Newf(corerr.InvalidOperation, "coordinator: workspace %s is not mounted", ws.ID)
		}
		v, ok := c.VOutputs.Get(*ws.Output)
		if !ok {
			return geom.Rect{}, corerr.Newf(corerr.NotFound, "coordinator: unknown virtual output %s", *ws.Output)
		}
		return v.LogicalRegion, nil
	case registry.FullscreenPhysicalOutput:
		if ws.Output == nil {
			return geom.Rect{}, corerr.Newf(corerr.InvalidOperation, "coordinator: workspace %s is not mounted", ws.ID)
		}
		v, ok := c.VOutputs.Get(*ws.Output)
		if !ok || len(v.PhysicalOutputs) == 0 {
			return geom.Rect{}, corerr.Newf(corerr.NotFound, "coordinator: virtual output %s has no physical output", *ws.Output)
		}
		d, ok := c.VOutputs.Display(v.PhysicalOutputs[0])
		if !ok {
			return geom.Rect{}, corerr.Newf(corerr.NotFound, "coordinator: unknown physical display %q", v.PhysicalOutputs[0])
		}
		return d.LogicalRect(), nil
	default:
		return geom.Rect{}, corerr.Newf(corerr.InvalidOperation, "coordinator: unknown fullscreen mode %d", mode)
	}
}

// SetWindowFullscreen is spec §4.6's set_window_fullscreen. Entering
// saves the window's prior WindowLayout verbatim so leaving restores it
// exactly (Round-trip R2). Leaving when the window isn't fullscreen
// returns an InvalidOperation error; entering when it already is in the
// requested mode is a no-op.
func (c *Coordinator) SetWindowFullscreen(id ids.WindowId, on bool, mode registry.FullscreenMode) error {
	w, ok := c.Registry.Get(id)
	if !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: unknown window %s", id)
	}

	if !on {
		if w.Layout.Kind != registry.Fullscreen || w.Layout.Prior == nil {
			return corerr.Newf(corerr.InvalidOperation, "coordinator: window %s is not fullscreen", id)
		}
		prior := *w.Layout.Prior
		c.Registry.Update(id, func(mw *registry.ManagedWindow) { mw.Layout = prior })
		c.Bus.Emit(eventbus.WindowFullscreened, id)
		return nil
	}

	if w.Layout.Kind == registry.Fullscreen && w.Layout.Mode == mode {
		return nil
	}

	geometry, err := c.fullscreenGeometry(id, mode)
	if err != nil {
		return err
	}
	prior := w.Layout
	c.Registry.Update(id, func(mw *registry.ManagedWindow) {
		mw.Layout = registry.WindowLayout{
			Kind:     registry.Fullscreen,
			Geometry: registry.Rect{X: geometry.X, Y: geometry.Y, W: geometry.W, H: geometry.H},
			Prior:    &prior,
			Mode:     mode,
		}
	})
	c.Bus.Emit(eventbus.WindowFullscreened, id)
	return nil
}

// WindowGeometry returns id's on-screen rect: its Fullscreen/Floating
// override if set, otherwise its tiled position from the layout tree.
func (c *Coordinator) WindowGeometry(id ids.WindowId) (geom.Rect, bool) {
	w, ok := c.Registry.Get(id)
	if !ok {
		return geom.Rect{}, false
	}
	if w.Layout.Kind == registry.Fullscreen || w.Layout.Kind == registry.Floating {
		g := w.Layout.Geometry
		return geom.Rect{X: g.X, Y: g.Y, W: g.W, H: g.H}, true
	}
	ws := c.Workspaces.Get(w.Workspace)
	for _, vis := range ws.Tree.GetVisibleGeometries() {
		if vis.Window == id {
			return vis.Rect, true
		}
	}
	return geom.Rect{}, false
}

// Do executes cmd through History so it can later be undone, the one
// path by which SwitchWorkspaceCommand/MoveWindowToWorkspaceCommand/
// MoveWindowCommand should be run (calling SwitchWorkspace,
// MoveWindowToWorkspace or MoveWindowDirection directly bypasses the
// history, the same way editing a document without going through its
// undo stack would).
func (c *Coordinator) Do(cmd command.Command) error {
	return c.History.Do(cmd, c)
}

// Undo reverses the most recently done command, if any is undoable.
func (c *Coordinator) Undo() (bool, error) {
	return c.History.Undo(c)
}

// Redo re-applies the command most recently undone, if any.
func (c *Coordinator) Redo() (bool, error) {
	return c.History.Redo(c)
}

// BeginResize starts the resize-ack state machine (spec §5) for id at
// the given edges, seeded with its current on-screen geometry. A
// resize already in flight for a different grab is superseded rather
// than rejected, matching spec.md's cancellation note: "if a client
// never acknowledges, the resize state remains WaitingForAck until
// another resize supersedes it."
func (c *Coordinator) BeginResize(id ids.WindowId, edges resize.Edge) (geom.Rect, bool) {
	rect, ok := c.WindowGeometry(id)
	if !ok {
		return geom.Rect{}, false
	}
	if !c.Resize.Begin(id, edges, rect) {
		c.Resize.Supersede(id, edges, rect)
	}
	return rect, true
}

// UpdateResize records the live size of an in-progress interactive
// resize drag.
func (c *Coordinator) UpdateResize(rect geom.Rect) bool {
	return c.Resize.UpdateSize(rect)
}

// FinishResize moves the in-flight resize to WaitingForAck once the
// compositor has sent the client a configure naming serial.
func (c *Coordinator) FinishResize(serial uint32) bool {
	return c.Resize.Finish(serial)
}

// AckResize moves WaitingForAck to WaitingForCommit when the client's
// xdg_surface.ack_configure names the matching serial; a stale ack is
// ignored.
func (c *Coordinator) AckResize(serial uint32) bool {
	return c.Resize.Ack(serial)
}

// CommitResize applies the in-flight resize's negotiated geometry once
// the client's matching buffer commit lands, returning the machine to
// Idle, emitting LayoutChanged so subscribers redraw.
func (c *Coordinator) CommitResize() (ids.WindowId, geom.Rect, bool) {
	data, ok := c.Resize.Data()
	if !ok || c.Resize.State() != resize.WaitingForCommit {
		return 0, geom.Rect{}, false
	}
	if !c.Resize.CommitReceived() {
		return 0, geom.Rect{}, false
	}
	// A floating or fullscreen window's geometry is the stored
	// override WindowGeometry reads back; a tiled window's is derived
	// from the layout tree, which resize-ack does not redistribute
	// size_ratios for (spec §4.2's move_window/set_container_layout own
	// that, not the resize-ack handshake) — so only the former applies
	// the negotiated rect.
	if w, ok := c.Registry.Get(data.Window); ok && w.Layout.Kind != registry.Tiled {
		c.Registry.Update(w.ID, func(mw *registry.ManagedWindow) {
			mw.Layout.Geometry = registry.Rect{X: data.CurrentRect.X, Y: data.CurrentRect.Y, W: data.CurrentRect.W, H: data.CurrentRect.H}
		})
	}
	c.Bus.Emit(eventbus.LayoutChanged, data.Window)
	return data.Window, data.CurrentRect, true
}

// CancelResize abandons whatever resize is in flight.
func (c *Coordinator) CancelResize() bool {
	return c.Resize.Cancel()
}

func centroid(r geom.Rect) (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// nearestInDirection scans a workspace's visible windows for the one
// whose centroid lies in dir's half-plane relative to from's centroid
// and is nearest to it, excluding from itself.
func nearestInDirection(visible []layout.WindowGeom, from ids.WindowId, fromRect geom.Rect, dir geom.Direction) (ids.WindowId, bool) {
	ox, oy := centroid(fromRect)

	var best ids.WindowId
	var bestDist float64
	found := false

	for _, v := range visible {
		if v.Window == from {
			continue
		}
		cx, cy := centroid(v.Rect)
		switch dir {
		case geom.Left:
			if cx >= ox {
				continue
			}
		case geom.Right:
			if cx <= ox {
				continue
			}
		case geom.Up:
			if cy >= oy {
				continue
			}
		case geom.Down:
			if cy <= oy {
				continue
			}
		}
		dx, dy := cx-ox, cy-oy
		dist := dx*dx + dy*dy
		if !found || dist < bestDist {
			best, bestDist, found = v.Window, dist, true
		}
	}
	return best, found
}

// findNeighbourOutput picks the virtual output whose centroid is the
// closest to from's in direction dir, restricted to outputs whose
// centroid actually lies in that half-plane relative to from. Spec.md
// does not name a specific output-selection algorithm for
// move_workspace_to_output's neighbour-in-direction case; this mirrors
// the half-plane-plus-nearest approach internal/router uses for cursor
// routing (spec §4.5), applied to logical space instead of millimetres.
func (c *Coordinator) findNeighbourOutput(from ids.VirtualOutputId, dir geom.Direction) (ids.VirtualOutputId, bool) {
	origin, ok := c.VOutputs.Get(from)
	if !ok {
		return 0, false
	}
	ox, oy := centroid(origin.LogicalRegion)

	var best ids.VirtualOutputId
	var bestDist float64
	found := false

	for _, vo := range c.VOutputs.All() {
		if vo.ID == from {
			continue
		}
		cx, cy := centroid(vo.LogicalRegion)
		switch dir {
		case geom.Left:
			if cx >= ox {
				continue
			}
		case geom.Right:
			if cx <= ox {
				continue
			}
		case geom.Up:
			if cy >= oy {
				continue
			}
		case geom.Down:
			if cy <= oy {
				continue
			}
		}
		dx, dy := cx-ox, cy-oy
		dist := dx*dx + dy*dy
		if !found || dist < bestDist {
			best, bestDist, found = vo.ID, dist, true
		}
	}
	return best, found
}

// MoveWorkspaceToOutput is spec §4.6's move_workspace_to_output: unmounts
// ws from its current virtual output (if any), mounts it on target, and
// re-applies layout for the target's new area. The previously-occupying
// workspace on target, if any, is left mounted nowhere (spec §9 Open
// Question: an unmounted workspace keeps its layout for later
// remounting).
func (c *Coordinator) MoveWorkspaceToOutput(ws ids.WorkspaceId, target ids.VirtualOutputId) error {
	if _, ok := c.VOutputs.Get(target); !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: unknown virtual output %s", target)
	}
	if source, ok := c.Workspaces.FindWorkspaceLocation(ws); ok {
		c.Workspaces.Unmount(source)
	}
	area, ok := c.EffectiveArea(target)
	if !ok {
		return corerr.Newf(corerr.NotFound, "coordinator: no effective area for virtual output %s", target)
	}
	c.Workspaces.ShowWorkspaceOnOutput(ws, target, area)
	c.VOutputs.SetActiveWorkspace(target, ws)
	c.Bus.Emit(eventbus.OutputConfigChanged, target)
	return nil
}

// MoveWorkspaceToDirection moves the workspace currently mounted on
// vo's output one step in dir, per move_workspace_to_output's
// direction-based form (spec §4.6). Returns false if vo has no
// neighbour in dir, or ws isn't mounted anywhere.
func (c *Coordinator) MoveWorkspaceToDirection(ws ids.WorkspaceId, dir geom.Direction) bool {
	source, ok := c.Workspaces.FindWorkspaceLocation(ws)
	if !ok {
		return false
	}
	target, ok := c.findNeighbourOutput(source, dir)
	if !ok {
		return false
	}
	return c.MoveWorkspaceToOutput(ws, target) == nil
}

// FocusTarget is the result of FindFocusTargetInDirection: either a
// window within the same workspace, or a different output entirely when
// the search runs off the edge of the current workspace's tree.
type FocusTarget struct {
	Window *ids.WindowId
	Output *ids.VirtualOutputId
}

// FindFocusTargetInDirection is spec §4.6's find_focus_target_in_direction:
// a pure query (it never moves anything) that first looks for another
// window in the focused window's own workspace whose on-screen rect lies
// in dir's half-plane relative to the focused window, picking the
// nearest centroid; this is distinct from layout.Tree.FindNextFocus,
// which answers a different question (remove_window's "what gets focus
// once this window is gone", independent of any direction). If no
// window in the workspace qualifies, falls back to the neighbouring
// virtual output in dir, per spec's "falls back to output-level
// navigation at workspace edges".
func (c *Coordinator) FindFocusTargetInDirection(dir geom.Direction) (FocusTarget, bool) {
	if c.focused == nil {
		return FocusTarget{}, false
	}
	w, ok := c.Registry.Get(*c.focused)
	if !ok {
		return FocusTarget{}, false
	}
	ws := c.Workspaces.Get(w.Workspace)

	if current, ok := c.WindowGeometry(*c.focused); ok {
		if next, ok := nearestInDirection(ws.Tree.GetVisibleGeometries(), *c.focused, current, dir); ok {
			return FocusTarget{Window: &next}, true
		}
	}

	if ws.Output == nil {
		return FocusTarget{}, false
	}
	neighbour, ok := c.findNeighbourOutput(*ws.Output, dir)
	if !ok {
		return FocusTarget{}, false
	}
	return FocusTarget{Output: &neighbour}, true
}

// Validate runs the debug-assertion pass of supplemented feature 5
// against live state rather than trusting construction: P4 (tree size
// sums, via Tree.ValidateSizes), window-set/tree agreement in every
// workspace, every non-floating registry window present in its recorded
// workspace, and P6 (via VOutputs.ValidateDisjoint). It does not check
// workspace/output mount agreement or that windows lie within their
// effective area. Nothing calls it automatically; it runs on demand.
func (c *Coordinator) Validate() []error {
	var errs []error

	c.Workspaces.Iter(func(ws *workspace.Workspace) {
		errs = append(errs, ws.Tree.ValidateSizes()...)

		treeWindows := make(map[ids.WindowId]struct{})
		for _, id := range ws.Tree.AllWindows() {
			treeWindows[id] = struct{}{}
		}
		for id := range ws.Windows {
			if _, ok := treeWindows[id]; !ok {
				errs = append(errs, corerr.Newf(corerr.InvalidOperation,
					"coordinator: window %s in workspace %s's window set but not its tree", id, ws.ID))
			}
		}
		for id := range treeWindows {
			if _, ok := ws.Windows[id]; !ok {
				errs = append(errs, corerr.Newf(corerr.InvalidOperation,
					"coordinator: window %s in workspace %s's tree but not its window set", id, ws.ID))
			}
		}
	})

	c.Registry.Iter(func(w *registry.ManagedWindow) {
		ws := c.Workspaces.Get(w.Workspace)
		if !ws.HasWindow(w.ID) && w.Layout.Kind != registry.Floating {
			errs = append(errs, corerr.Newf(corerr.InvalidOperation,
				"coordinator: window %s not present in its recorded workspace %s", w.ID, w.Workspace))
		}
	})

	errs = append(errs, c.VOutputs.ValidateDisjoint()...)

	return errs
}
