package app

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/stilch/internal/backend"
	"github.com/bnema/stilch/internal/config"
	"github.com/bnema/stilch/internal/eventloop"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/ipc"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syntheticWindow struct{ n int }

func testDisplay(name string, w, h int32) *voutput.PhysicalDisplay {
	d := &voutput.PhysicalDisplay{Name: name, Scale: 1}
	d.PixelSize.W, d.PixelSize.H = w, h
	d.LogicalSize.W, d.LogicalSize.H = w, h
	return d
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	settings := config.DefaultSettings
	settings.IPCSocketPath = t.TempDir() + "/control.sock"
	settings.TestSocketPath = t.TempDir() + "/test.sock"

	a, err := New(&settings, nil, []*voutput.PhysicalDisplay{testDisplay("LEFT", 1920, 1080)}, backend.Test)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go a.Loop.Run(ctx)

	return a
}

// addWindow inserts a synthetic window directly through the
// coordinator, on the loop goroutine, the same path
// internal/testbackend drives interactively from its 'n' key.
func addWindow(t *testing.T, a *App, vo ids.VirtualOutputId) ids.WindowId {
	t.Helper()
	n := 0
	id, err := eventloop.Call(a.Loop, func() idErr {
		n++
		wid, err := a.Coord.AddWindow(syntheticWindow{n: n}, vo)
		return idErr{id: wid, err: err}
	}).unpack()
	require.NoError(t, err)
	return id
}

type idErr struct {
	id  ids.WindowId
	err error
}

func (r idErr) unpack() (ids.WindowId, error) { return r.id, r.err }

func windowFocused(windows []ipc.WindowInfo, id ids.WindowId) bool {
	for _, w := range windows {
		if w.ID == uint64(id) {
			return w.Focused
		}
	}
	return false
}

func TestNewWiresOneVirtualOutputPerDisplay(t *testing.T) {
	a := newTestApp(t)
	outputs, err := a.GetOutputs()
	require.NoError(t, err)
	assert.Len(t, outputs, 1)
}

func TestAddWindowThenGetWindowsReportsIt(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	id := addWindow(t, a, vo)

	windows, err := a.GetWindows()
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, uint64(id), windows[0].ID)
	assert.True(t, windows[0].Focused)
	assert.True(t, windows[0].Visible)
}

func TestFocusWindowUnknownIDFails(t *testing.T) {
	a := newTestApp(t)
	err := a.FocusWindow(999)
	assert.Error(t, err)
}

func TestKillFocusedWindowRemovesIt(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)

	require.NoError(t, a.KillFocusedWindow())
	windows, err := a.GetWindows()
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestSetLayoutTabbedChangesContainerLayout(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)
	addWindow(t, a, vo)

	require.NoError(t, a.SetLayout("tabbed"))
	snap, _, _, err := a.GetAsciiSnapshot(false, false)
	require.NoError(t, err)
	assert.Contains(t, snap, "[")
}

func TestSetLayoutUnknownModeFails(t *testing.T) {
	a := newTestApp(t)
	err := a.SetLayout("nonsense")
	assert.Error(t, err)
}

func TestFullscreenTogglesContainerMode(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)

	require.NoError(t, a.Fullscreen(""))
	windows, err := a.GetWindows()
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Fullscreen)

	require.NoError(t, a.Fullscreen(""))
	windows, err = a.GetWindows()
	require.NoError(t, err)
	assert.False(t, windows[0].Fullscreen)
}

func TestMoveMouseThenGetCursorPosition(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.MoveMouse(100, 200))
	x, y, err := a.GetCursorPosition()
	require.NoError(t, err)
	assert.EqualValues(t, 100, x)
	assert.EqualValues(t, 200, y)
}

func TestGetCursorPositionBeforeAnyMoveFails(t *testing.T) {
	a := newTestApp(t)
	_, _, err := a.GetCursorPosition()
	assert.Error(t, err)
}

func TestClickAtFocusesWindowUnderPoint(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	first := addWindow(t, a, vo)
	second := addWindow(t, a, vo)

	// Two windows split horizontally across a 1920-wide output: the
	// first occupies the left half, the second the right half.
	require.NoError(t, a.ClickAt(10, 10))
	windows, err := a.GetWindows()
	require.NoError(t, err)
	assert.True(t, windowFocused(windows, first))

	require.NoError(t, a.ClickAt(1910, 10))
	windows, err = a.GetWindows()
	require.NoError(t, err)
	assert.True(t, windowFocused(windows, second))
}

func TestSwitchWorkspaceMountsTargetWorkspace(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)

	require.NoError(t, a.SwitchWorkspace(1))
	workspaces, err := a.GetWorkspaces()
	require.NoError(t, err)

	found := false
	for _, w := range workspaces {
		if w.ID == 1 {
			assert.True(t, w.Visible)
			found = true
		}
	}
	assert.True(t, found)
}

func TestSwitchWorkspaceUndoRestoresPrior(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)

	require.NoError(t, a.SwitchWorkspace(1))
	require.NoError(t, a.Undo())

	workspaces, err := a.GetWorkspaces()
	require.NoError(t, err)
	for _, w := range workspaces {
		if w.ID == 0 {
			assert.True(t, w.Visible)
		}
		if w.ID == 1 {
			assert.False(t, w.Visible)
		}
	}
}

func TestSwitchWorkspaceRedoReappliesAfterUndo(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)

	require.NoError(t, a.SwitchWorkspace(1))
	require.NoError(t, a.Undo())
	require.NoError(t, a.Redo())

	workspaces, err := a.GetWorkspaces()
	require.NoError(t, err)
	found := false
	for _, w := range workspaces {
		if w.ID == 1 {
			assert.True(t, w.Visible)
			found = true
		}
	}
	assert.True(t, found)
}

func TestUndoWithEmptyHistoryFails(t *testing.T) {
	a := newTestApp(t)
	assert.Error(t, a.Undo())
}

func TestRedoWithoutPriorUndoFails(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)
	require.NoError(t, a.SwitchWorkspace(1))

	assert.Error(t, a.Redo())
}

func TestMoveWindowToWorkspaceUndoRestoresPrior(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	id := addWindow(t, a, vo)

	require.NoError(t, a.MoveWindowToWorkspace(uint64(id), 2))
	require.NoError(t, a.Undo())

	windows, err := a.GetWindows()
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, 0, windows[0].Workspace)
}

func TestMoveWindowRearrangesAdjacentLeaves(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	addWindow(t, a, vo)
	second := addWindow(t, a, vo)

	require.NoError(t, a.MoveWindow(uint64(second), "left"))

	windows, err := a.GetWindows()
	require.NoError(t, err)
	require.Len(t, windows, 2)
}

func TestMoveWindowUnknownDirectionFails(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	id := addWindow(t, a, vo)

	assert.Error(t, a.MoveWindow(uint64(id), "sideways"))
}

func TestMoveMouseDoesNotStealFocusByDefault(t *testing.T) {
	a := newTestApp(t)
	vo := a.VOutputs.All()[0].ID
	first := addWindow(t, a, vo)
	addWindow(t, a, vo)

	// second is now focused (addWindow focuses whatever it just added);
	// moving the pointer over first's half must not steal focus back
	// since focus-follows-mouse defaults to off.
	require.NoError(t, a.MoveMouse(10, 10))
	windows, err := a.GetWindows()
	require.NoError(t, err)
	assert.False(t, windowFocused(windows, first))
}

func TestMoveMouseFollowsFocusWhenEnabled(t *testing.T) {
	a := newTestApp(t)
	_, err := eventloop.Call(a.Loop, func() idErr {
		a.Coord.SetFocusFollowsMouse(true)
		return idErr{}
	}).unpack()
	require.NoError(t, err)

	vo := a.VOutputs.All()[0].ID
	first := addWindow(t, a, vo)
	addWindow(t, a, vo)

	require.NoError(t, a.MoveMouse(10, 10))
	windows, err := a.GetWindows()
	require.NoError(t, err)
	assert.True(t, windowFocused(windows, first))
}

func TestRunStartsServersAndExitsOnCancel(t *testing.T) {
	settings := config.DefaultSettings
	settings.IPCSocketPath = t.TempDir() + "/control.sock"
	settings.TestSocketPath = t.TempDir() + "/test.sock"

	a, err := New(&settings, nil, []*voutput.PhysicalDisplay{testDisplay("LEFT", 1920, 1080)}, backend.Test)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}
}
