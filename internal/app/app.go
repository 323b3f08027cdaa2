// Package app is the composition root: it wires registry, workspace,
// voutput, eventbus and coordinator into a running process, selects and
// starts a backend, and implements internal/ipc's Handler interface so
// the test channel can drive and introspect everything above it.
//
// Grounded on the teacher's internal/server/manager.go + cmd/server.go
// pairing: ClientManager owned the session bookkeeping while
// cmd/server.go did the flag-driven construction and the tea.Program/
// signal-handling run loop. Here internal/coordinator plays
// ClientManager's role and App plays cmd/server.go's, except the
// event-loop indirection (internal/eventloop) is new: unlike the
// teacher's ClientManager, which serves its own goroutine-safe session
// map, the coordinator and its collaborators take no lock (spec §5), so
// every Handler method below hands its work to the loop instead of
// touching coordinator state directly.
package app

import (
	"context"
	"fmt"

	"github.com/bnema/stilch/internal/ascii"
	"github.com/bnema/stilch/internal/backend"
	"github.com/bnema/stilch/internal/command"
	"github.com/bnema/stilch/internal/config"
	"github.com/bnema/stilch/internal/coordinator"
	"github.com/bnema/stilch/internal/corerr"
	"github.com/bnema/stilch/internal/eventbus"
	"github.com/bnema/stilch/internal/eventloop"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/ipc"
	"github.com/bnema/stilch/internal/layout"
	"github.com/bnema/stilch/internal/logger"
	"github.com/bnema/stilch/internal/registry"
	"github.com/bnema/stilch/internal/testbackend"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/bnema/stilch/internal/workspace"
)

// App owns every collaborator for one compositor session and answers
// the test channel's full command table (§6).
type App struct {
	Settings *config.Settings

	Registry   *registry.Registry
	Workspaces *workspace.Manager
	VOutputs   *voutput.Manager
	Bus        *eventbus.Bus
	Coord      *coordinator.Coordinator

	Loop    *eventloop.Loop
	Backend backend.Backend
	Control *ipc.ControlServer
	Test    *ipc.TestServer

	cursor cursorState
}

// cursorState is App-level, not core, state: the core model has no
// notion of an absolute pointer position of its own (spec §4.5's router
// only ever transforms a position handed to it), so the last position
// MoveMouse/ClickAt set is tracked here, the same way a real backend
// would track it outside the coordinator.
type cursorState struct {
	x, y int32
	set  bool
}

// New wires every collaborator and selects kind's backend. displays
// must already carry the real or stand-in physical geometry stilch is
// running against; layout may be nil (no config file), in which case
// wireOutputs creates one virtual output per whole display.
func New(settings *config.Settings, layoutCfg *config.Layout, displays []*voutput.PhysicalDisplay, kind backend.Kind) (*App, error) {
	reg := registry.New()
	ws := workspace.New()
	vo := voutput.New()
	bus := eventbus.New()
	coord := coordinator.New(reg, ws, vo, bus)
	coord.SetFocusFollowsMouse(settings.FocusFollowsMouse)

	for _, d := range displays {
		vo.RegisterDisplay(d)
	}

	firstVO, err := wireOutputs(vo, layoutCfg, displays)
	if err != nil {
		return nil, err
	}

	a := &App{
		Settings:   settings,
		Registry:   reg,
		Workspaces: ws,
		VOutputs:   vo,
		Bus:        bus,
		Coord:      coord,
		Loop:       eventloop.New(),
	}

	if kind == backend.Test {
		if !firstVO.set {
			return nil, fmt.Errorf("app: --test backend needs at least one output block or physical display")
		}
		a.Backend = testbackend.New(coord, firstVO.id)
	} else {
		b, err := backend.New(kind, coord)
		if err != nil {
			return nil, err
		}
		a.Backend = b
	}

	a.Control = ipc.NewControlServer(bus, ws, vo)
	a.Test = ipc.NewTestServer(a)
	return a, nil
}

type firstVOResult struct {
	id  ids.VirtualOutputId
	set bool
}

// wireOutputs applies layoutCfg's output/virtual_output blocks (spec
// §6) against displays, falling back to one virtual output per whole
// physical display when layoutCfg is nil or names no blocks. Returns
// the first virtual output created, for the --test backend's default
// rendering target.
func wireOutputs(vo *voutput.Manager, layoutCfg *config.Layout, displays []*voutput.PhysicalDisplay) (firstVOResult, error) {
	var first firstVOResult

	if layoutCfg == nil || (len(layoutCfg.Outputs) == 0 && len(layoutCfg.VirtualOutputs) == 0) {
		for _, d := range displays {
			id, err := vo.CreateFromPhysical(d.Name, d.LogicalRect())
			if err != nil {
				return first, fmt.Errorf("app: default output wiring for %q: %w", d.Name, err)
			}
			if !first.set {
				first = firstVOResult{id: id, set: true}
			}
		}
		return first, nil
	}

	for _, spec := range layoutCfg.Outputs {
		d, ok := vo.Display(spec.Name)
		if !ok {
			return first, fmt.Errorf("app: output block names unknown display %q", spec.Name)
		}
		region := d.LogicalRect()

		var created []ids.VirtualOutputId
		if spec.HasSplit {
			split, err := vo.SplitPhysical(spec.Name, region, spec.Split, spec.SplitCount)
			if err != nil {
				return first, fmt.Errorf("app: splitting output %q: %w", spec.Name, err)
			}
			created = split
		} else {
			id, err := vo.CreateFromPhysical(spec.Name, region)
			if err != nil {
				return first, fmt.Errorf("app: wiring output %q: %w", spec.Name, err)
			}
			created = []ids.VirtualOutputId{id}
		}
		if !first.set && len(created) > 0 {
			first = firstVOResult{id: created[0], set: true}
		}
	}

	for _, spec := range layoutCfg.VirtualOutputs {
		if !spec.HasRegion {
			return first, fmt.Errorf("app: virtual_output %q has no region", spec.Name)
		}
		id, err := vo.CreateVirtualOutput(spec.Name, spec.Outputs, spec.Region)
		if err != nil {
			return first, fmt.Errorf("app: wiring virtual_output %q: %w", spec.Name, err)
		}
		if !first.set {
			first = firstVOResult{id: id, set: true}
		}
	}

	return first, nil
}

// Run starts the event loop, both IPC servers, and blocks on the
// backend until ctx is cancelled or it fails.
func (a *App) Run(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.Loop.Run(loopCtx)

	if err := a.Control.Start(a.Settings.IPCSocketPath); err != nil {
		return fmt.Errorf("app: starting control socket: %w", err)
	}
	defer a.Control.Stop()

	if err := a.Test.Start(a.Settings.TestSocketPath); err != nil {
		return fmt.Errorf("app: starting test socket: %w", err)
	}
	defer a.Test.Stop()

	if err := a.Backend.Run(ctx); err != nil {
		return fmt.Errorf("app: backend %s: %w", a.Backend.Name(), err)
	}
	return nil
}

// --- internal/ipc.Handler ---

func (a *App) GetState() (string, error) {
	snap, _, _, err := a.GetAsciiSnapshot(true, true)
	return snap, err
}

func (a *App) GetAsciiSnapshot(showIDs, showFocus bool) (string, int, int, error) {
	return eventloop.Call(a.Loop, func() snapshotResult {
		vo, ok := firstMountedOutput(a.Workspaces, a.VOutputs)
		if !ok {
			return snapshotResult{err: corerr.New(corerr.NotFound, "app: no workspace is mounted on any output")}
		}
		wsID, _ := a.Workspaces.WorkspaceOnOutput(vo)
		w := a.Workspaces.Get(wsID)

		var focusPtr *ids.WindowId
		if id, ok := a.Coord.FocusedWindow(); ok {
			focusPtr = &id
		}

		snap, width, height := ascii.Render(w.Tree, focusPtr, nil, ascii.Options{ShowIDs: showIDs, ShowFocus: showFocus})
		return snapshotResult{snapshot: snap, width: width, height: height}
	}).unpack()
}

type snapshotResult struct {
	snapshot      string
	width, height int
	err           error
}

func (r snapshotResult) unpack() (string, int, int, error) { return r.snapshot, r.width, r.height, r.err }

func firstMountedOutput(ws *workspace.Manager, vo *voutput.Manager) (ids.VirtualOutputId, bool) {
	for _, v := range vo.All() {
		if _, ok := ws.WorkspaceOnOutput(v.ID); ok {
			return v.ID, true
		}
	}
	return 0, false
}

func (a *App) GetWindows() ([]ipc.WindowInfo, error) {
	return eventloop.Call(a.Loop, func() []ipc.WindowInfo {
		var out []ipc.WindowInfo
		focused, hasFocus := a.Coord.FocusedWindow()
		a.Registry.Iter(func(mw *registry.ManagedWindow) {
			rect, _ := a.Coord.WindowGeometry(mw.ID)
			out = append(out, ipc.WindowInfo{
				ID:         uint64(mw.ID),
				X:          rect.X,
				Y:          rect.Y,
				W:          rect.W,
				H:          rect.H,
				Workspace:  int(mw.Workspace),
				Focused:    hasFocus && mw.ID == focused,
				Floating:   mw.Layout.Kind == registry.Floating,
				Fullscreen: mw.Layout.Kind == registry.Fullscreen,
				Visible:    isVisible(a.Workspaces.Get(mw.Workspace), mw.ID),
			})
		})
		return out
	}), nil
}

func isVisible(w *workspace.Workspace, id ids.WindowId) bool {
	for _, v := range w.Tree.GetVisibleGeometries() {
		if v.Window == id {
			return true
		}
	}
	return false
}

func (a *App) GetWorkspaces() ([]ipc.WorkspaceInfo, error) {
	return eventloop.Call(a.Loop, func() []ipc.WorkspaceInfo {
		var out []ipc.WorkspaceInfo
		focused, hasFocus := a.Coord.FocusedWindow()
		var focusedWS ids.WorkspaceId
		if hasFocus {
			if w, ok := a.Registry.Get(focused); ok {
				focusedWS = w.Workspace
			}
		}
		a.Workspaces.Iter(func(w *workspace.Workspace) {
			out = append(out, ipc.WorkspaceInfo{
				ID:          int(w.ID),
				Name:        fmt.Sprintf("%d", ids.DisplayName(w.ID)),
				Visible:     w.Output != nil,
				Output:      outputIDOf(w.Output),
				WindowCount: len(w.Windows),
				Focused:     hasFocus && w.ID == focusedWS,
			})
		})
		return out
	}), nil
}

func outputIDOf(vo *ids.VirtualOutputId) uint64 {
	if vo == nil {
		return 0
	}
	return uint64(*vo)
}

func (a *App) GetOutputs() ([]ipc.OutputInfo, error) {
	return eventloop.Call(a.Loop, func() []ipc.OutputInfo {
		var out []ipc.OutputInfo
		for _, v := range a.VOutputs.All() {
			out = append(out, ipc.OutputInfo{
				ID:   uint64(v.ID),
				X:    v.LogicalRegion.X,
				Y:    v.LogicalRegion.Y,
				W:    v.LogicalRegion.W,
				H:    v.LogicalRegion.H,
				Name: v.Name,
			})
		}
		return out
	}), nil
}

func (a *App) FocusWindow(id uint64) error {
	return eventloop.Call(a.Loop, func() error {
		return a.Coord.FocusWindow(ids.WindowId(id))
	})
}

func (a *App) DestroyWindow(id uint64) error {
	return eventloop.Call(a.Loop, func() error {
		return a.Coord.RemoveWindow(ids.WindowId(id))
	})
}

func (a *App) KillFocusedWindow() error {
	return eventloop.Call(a.Loop, func() error {
		id, ok := a.Coord.FocusedWindow()
		if !ok {
			return corerr.New(corerr.InvalidOperation, "app: no window is focused")
		}
		return a.Coord.RemoveWindow(id)
	})
}

func (a *App) SwitchWorkspace(index int) error {
	return eventloop.Call(a.Loop, func() error {
		id, ok := a.Coord.FocusedWindow()
		var vo ids.VirtualOutputId
		if ok {
			if w, ok := a.Registry.Get(id); ok {
				if v, ok := a.Workspaces.FindWorkspaceLocation(w.Workspace); ok {
					vo = v
				}
			}
		}
		if vo == 0 {
			v, ok := firstMountedOutput(a.Workspaces, a.VOutputs)
			if !ok {
				return corerr.New(corerr.NotFound, "app: no virtual output is active")
			}
			vo = v
		}
		return a.Coord.Do(command.NewSwitchWorkspaceCommand(vo, ids.WorkspaceId(index)))
	})
}

func (a *App) MoveFocus(direction string) error {
	dir, ok := geom.ParseDirection(direction)
	if !ok {
		return fmt.Errorf("app: unknown direction %q", direction)
	}
	return eventloop.Call(a.Loop, func() error {
		target, ok := a.Coord.FindFocusTargetInDirection(dir)
		if !ok {
			return corerr.New(corerr.InvalidOperation, "app: no focus target in that direction")
		}
		if target.Window != nil {
			return a.Coord.FocusWindow(*target.Window)
		}
		return nil
	})
}

// MoveWindow moves a window one step within its layout tree in a
// spatial direction (spec §4.2 move_window), recorded on the undo
// history the same way SwitchWorkspace/MoveWindowToWorkspace are.
func (a *App) MoveWindow(windowID uint64, direction string) error {
	dir, ok := geom.ParseDirection(direction)
	if !ok {
		return fmt.Errorf("app: unknown direction %q", direction)
	}
	return eventloop.Call(a.Loop, func() error {
		return a.Coord.Do(command.NewMoveWindowCommand(ids.WindowId(windowID), dir))
	})
}

func (a *App) MoveWindowToWorkspace(windowID uint64, wsIndex int) error {
	return eventloop.Call(a.Loop, func() error {
		return a.Coord.Do(command.NewMoveWindowToWorkspaceCommand(ids.WindowId(windowID), ids.WorkspaceId(wsIndex)))
	})
}

// Undo reverses the most recently recorded reversible command (spec §9
// supplemented feature 2), if any.
func (a *App) Undo() error {
	return eventloop.Call(a.Loop, func() error {
		undone, err := a.Coord.Undo()
		if err != nil {
			return err
		}
		if !undone {
			return corerr.New(corerr.InvalidOperation, "app: nothing to undo")
		}
		return nil
	})
}

// Redo re-applies the command most recently undone.
func (a *App) Redo() error {
	return eventloop.Call(a.Loop, func() error {
		redone, err := a.Coord.Redo()
		if err != nil {
			return err
		}
		if !redone {
			return corerr.New(corerr.InvalidOperation, "app: nothing to redo")
		}
		return nil
	})
}

func (a *App) MoveWorkspaceToOutput(direction string) error {
	dir, ok := geom.ParseDirection(direction)
	if !ok {
		return fmt.Errorf("app: unknown direction %q", direction)
	}
	return eventloop.Call(a.Loop, func() error {
		id, ok := a.Coord.FocusedWindow()
		if !ok {
			return corerr.New(corerr.InvalidOperation, "app: no window is focused")
		}
		w, ok := a.Registry.Get(id)
		if !ok {
			return corerr.Newf(corerr.NotFound, "app: unknown window %d", id)
		}
		if !a.Coord.MoveWorkspaceToDirection(w.Workspace, dir) {
			return corerr.New(corerr.InvalidOperation, "app: no virtual output neighbour in that direction")
		}
		return nil
	})
}

func (a *App) SetLayout(mode string) error {
	l, ok := layoutModeArg(mode)
	if !ok {
		return fmt.Errorf("app: unknown layout mode %q", mode)
	}
	return eventloop.Call(a.Loop, func() error {
		id, ok := a.Coord.FocusedWindow()
		if !ok {
			return corerr.New(corerr.InvalidOperation, "app: no window is focused")
		}
		if mode == "toggle_split" {
			if !a.Coord.ToggleContainerSplit(id) {
				return corerr.Newf(corerr.InvalidOperation, "app: window %d has no enclosing container", id)
			}
			return nil
		}
		if !a.Coord.SetContainerLayout(id, l) {
			return corerr.Newf(corerr.InvalidOperation, "app: window %d has no enclosing container", id)
		}
		return nil
	})
}

// layoutModeArg mirrors internal/config/dsl.go's "layout" command
// vocabulary ("tabbed"/"stacking"/"splith"/"splitv"/"toggle_split") so
// the test channel accepts the same words a bindsym does. Duplicated
// rather than imported since dsl.go's parser keeps its mapping
// unexported.
func layoutModeArg(mode string) (layout.ContainerLayout, bool) {
	switch mode {
	case "tabbed":
		return layout.Tabbed, true
	case "stacking":
		return layout.Stacked, true
	case "splith":
		return layout.SplitH, true
	case "splitv":
		return layout.SplitV, true
	case "toggle_split":
		return 0, true
	default:
		return 0, false
	}
}

func (a *App) SetSplitDirection(direction string) error {
	return eventloop.Call(a.Loop, func() error {
		id, ok := a.Coord.FocusedWindow()
		if !ok {
			return corerr.New(corerr.InvalidOperation, "app: no window is focused")
		}

		var dir geom.SplitDirection
		switch direction {
		case "h":
			dir = geom.Horizontal
		case "v":
			dir = geom.Vertical
		case "toggle":
			if !a.Coord.ToggleContainerSplit(id) {
				return corerr.Newf(corerr.InvalidOperation, "app: window %d has no enclosing container", id)
			}
			return nil
		case "auto":
			d, ok := a.Coord.AutoSplitDirection(id)
			if !ok {
				return corerr.Newf(corerr.InvalidOperation, "app: window %d has no enclosing container", id)
			}
			dir = d
		default:
			return fmt.Errorf("app: unknown split direction %q", direction)
		}

		if !a.Coord.SetSplitDirection(id, dir) {
			return corerr.Newf(corerr.InvalidOperation, "app: window %d has no enclosing container", id)
		}
		return nil
	})
}

func (a *App) Fullscreen(mode string) error {
	return eventloop.Call(a.Loop, func() error {
		id, ok := a.Coord.FocusedWindow()
		if !ok {
			return corerr.New(corerr.InvalidOperation, "app: no window is focused")
		}
		w, ok := a.Registry.Get(id)
		if !ok {
			return corerr.Newf(corerr.NotFound, "app: unknown window %d", id)
		}

		if w.Layout.Kind == registry.Fullscreen {
			return a.Coord.SetWindowFullscreen(id, false, w.Layout.Mode)
		}

		fsMode := registry.FullscreenContainer
		if mode != "" {
			m, ok := fullscreenModeArg(mode)
			if !ok {
				return fmt.Errorf("app: unknown fullscreen mode %q", mode)
			}
			fsMode = m
		} else if w.Layout.Kind == registry.Fullscreen {
			fsMode = w.Layout.Mode
		}
		return a.Coord.SetWindowFullscreen(id, true, fsMode)
	})
}

// fullscreenModeArg mirrors internal/config/dsl.go's fullscreenModeArg:
// "container"/"virtual_output"/"physical_output" name the three-tier
// fullscreen targets spec §1/§4.6 define. Duplicated locally for the
// same reason layoutModeArg is: dsl.go keeps its mapping unexported.
func fullscreenModeArg(mode string) (registry.FullscreenMode, bool) {
	switch mode {
	case "container":
		return registry.FullscreenContainer, true
	case "virtual_output":
		return registry.FullscreenVirtualOutput, true
	case "physical_output":
		return registry.FullscreenPhysicalOutput, true
	default:
		return 0, false
	}
}

func (a *App) MoveMouse(x, y int32) error {
	return eventloop.Call(a.Loop, func() error {
		a.cursor = cursorState{x: x, y: y, set: true}
		if a.Coord != nil {
			a.maybeFocusFollowsMouse(x, y)
		}
		return nil
	})
}

func (a *App) GetCursorPosition() (int32, int32, error) {
	return eventloop.Call(a.Loop, func() cursorResult {
		if !a.cursor.set {
			return cursorResult{err: corerr.New(corerr.InvalidOperation, "app: cursor position not yet set")}
		}
		return cursorResult{x: a.cursor.x, y: a.cursor.y}
	}).unpack()
}

type cursorResult struct {
	x, y int32
	err  error
}

func (r cursorResult) unpack() (int32, int32, error) { return r.x, r.y, r.err }

func (a *App) ClickAt(x, y int32) error {
	return eventloop.Call(a.Loop, func() error {
		a.cursor = cursorState{x: x, y: y, set: true}
		id, ok := a.windowAt(x, y)
		if !ok {
			return corerr.Newf(corerr.NotFound, "app: no window at (%d, %d)", x, y)
		}
		return a.Coord.FocusWindow(id)
	})
}

// windowAt finds the window whose visible geometry, on whichever
// workspace is mounted on the output containing (x, y), contains the
// point — mirroring internal/router's VirtualOutputAt lookup (spec
// §4.5) followed by a hit-test against the workspace's own layout tree.
func (a *App) windowAt(x, y int32) (ids.WindowId, bool) {
	vo, ok := a.VOutputs.VirtualOutputAt(x, y)
	if !ok {
		return 0, false
	}
	wsID, ok := a.Workspaces.WorkspaceOnOutput(vo)
	if !ok {
		return 0, false
	}
	w := a.Workspaces.Get(wsID)
	for _, vis := range w.Tree.GetVisibleGeometries() {
		if vis.Rect.Contains(x, y) {
			return vis.Window, true
		}
	}
	return 0, false
}

// maybeFocusFollowsMouse implements the supplemented focus-follows-mouse
// feature (spec §4.6): if enabled and the window under the cursor
// differs from the currently focused one, focus follows it. Errors are
// swallowed since MoveMouse otherwise always succeeds; focus-follows is
// best-effort.
func (a *App) maybeFocusFollowsMouse(x, y int32) {
	if !a.Coord.FocusFollowsMouse() {
		return
	}
	id, ok := a.windowAt(x, y)
	if !ok {
		return
	}
	if focused, has := a.Coord.FocusedWindow(); has && focused == id {
		return
	}
	if err := a.Coord.FocusWindow(id); err != nil {
		logger.Debugf("app: focus-follows-mouse: %v", err)
	}
}
