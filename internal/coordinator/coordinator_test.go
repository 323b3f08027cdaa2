package coordinator

import (
	"testing"

	"github.com/bnema/stilch/internal/command"
	"github.com/bnema/stilch/internal/eventbus"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/layout"
	"github.com/bnema/stilch/internal/registry"
	"github.com/bnema/stilch/internal/resize"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/bnema/stilch/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDisplayCoordinator(t *testing.T) (*Coordinator, ids.VirtualOutputId, ids.VirtualOutputId) {
	t.Helper()
	vo := voutput.New()

	left := &voutput.PhysicalDisplay{Name: "LEFT"}
	left.LogicalSize.W, left.LogicalSize.H = 1920, 1080
	left.LogicalPosition.X, left.LogicalPosition.Y = 0, 0
	vo.RegisterDisplay(left)

	right := &voutput.PhysicalDisplay{Name: "RIGHT"}
	right.LogicalSize.W, right.LogicalSize.H = 1920, 1080
	right.LogicalPosition.X, right.LogicalPosition.Y = 1920, 0
	vo.RegisterDisplay(right)

	leftID, err := vo.CreateFromPhysical("LEFT", left.LogicalRect())
	require.NoError(t, err)
	rightID, err := vo.CreateFromPhysical("RIGHT", right.LogicalRect())
	require.NoError(t, err)

	c := New(registry.New(), workspace.New(), vo, eventbus.New())
	return c, leftID, rightID
}

func TestAddWindowFocusesAndEmits(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)

	sub, ch := c.Bus.Subscribe()
	defer c.Bus.Unsubscribe(sub)

	id, err := c.AddWindow("surface-a", left)
	require.NoError(t, err)

	focused, ok := c.FocusedWindow()
	assert.True(t, ok)
	assert.Equal(t, id, focused)

	events := ch.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, eventbus.WindowFocused, events[0].Kind)
	assert.Equal(t, eventbus.WindowCreated, events[1].Kind)
}

func TestRemoveWindowFocusesSibling(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)

	a, err := c.AddWindow("a", left)
	require.NoError(t, err)
	b, err := c.AddWindow("b", left)
	require.NoError(t, err)

	focused, _ := c.FocusedWindow()
	assert.Equal(t, b, focused)

	require.NoError(t, c.RemoveWindow(b))

	focused, ok := c.FocusedWindow()
	require.True(t, ok)
	assert.Equal(t, a, focused)
}

func TestMoveWindowToWorkspaceUpdatesRegistry(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)

	id, err := c.AddWindow("a", left)
	require.NoError(t, err)

	require.NoError(t, c.MoveWindowToWorkspace(id, 5))

	ws, ok := c.WindowWorkspace(id)
	require.True(t, ok)
	assert.EqualValues(t, 5, ws)
}

func TestSetWindowFullscreenRoundTrips(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	id, err := c.AddWindow("a", left)
	require.NoError(t, err)

	before, ok := c.WindowGeometry(id)
	require.True(t, ok)

	require.NoError(t, c.SetWindowFullscreen(id, true, registry.FullscreenVirtualOutput))
	fs, ok := c.WindowGeometry(id)
	require.True(t, ok)

	vo, ok := c.VOutputs.Get(left)
	require.True(t, ok)
	assert.Equal(t, vo.LogicalRegion, fs)

	require.NoError(t, c.SetWindowFullscreen(id, false, registry.FullscreenVirtualOutput))
	after, ok := c.WindowGeometry(id)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestSetWindowFullscreenLeaveWithoutEnterFails(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	id, err := c.AddWindow("a", left)
	require.NoError(t, err)

	err = c.SetWindowFullscreen(id, false, registry.FullscreenContainer)
	assert.Error(t, err)
}

func TestMoveWorkspaceToOutputRemounts(t *testing.T) {
	c, left, right := twoDisplayCoordinator(t)
	_, err := c.AddWindow("a", left)
	require.NoError(t, err)

	ws, ok := c.Workspaces.WorkspaceOnOutput(left)
	require.True(t, ok)

	require.NoError(t, c.MoveWorkspaceToOutput(ws, right))

	_, onLeft := c.Workspaces.WorkspaceOnOutput(left)
	assert.False(t, onLeft)

	onRight, ok := c.Workspaces.WorkspaceOnOutput(right)
	require.True(t, ok)
	assert.Equal(t, ws, onRight)
}

func TestMoveWorkspaceToDirectionFindsRightNeighbour(t *testing.T) {
	c, left, right := twoDisplayCoordinator(t)
	_, err := c.AddWindow("a", left)
	require.NoError(t, err)

	ws, ok := c.Workspaces.WorkspaceOnOutput(left)
	require.True(t, ok)

	moved := c.MoveWorkspaceToDirection(ws, geom.Right)
	assert.True(t, moved)

	onRight, ok := c.Workspaces.WorkspaceOnOutput(right)
	require.True(t, ok)
	assert.Equal(t, ws, onRight)
}

func TestFindFocusTargetInDirectionFallsBackToOutput(t *testing.T) {
	c, left, right := twoDisplayCoordinator(t)
	_, err := c.AddWindow("a", left)
	require.NoError(t, err)

	target, ok := c.FindFocusTargetInDirection(geom.Right)
	require.True(t, ok)
	require.NotNil(t, target.Output)
	assert.Equal(t, right, *target.Output)
	assert.Nil(t, target.Window)
}

func TestFindFocusTargetInDirectionStaysInWorkspace(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	a, err := c.AddWindow("a", left)
	require.NoError(t, err)
	_, err = c.AddWindow("b", left)
	require.NoError(t, err)

	target, ok := c.FindFocusTargetInDirection(geom.Left)
	require.True(t, ok)
	require.NotNil(t, target.Window)
	assert.Equal(t, a, *target.Window)
}

func TestEffectiveAreaAppliesExclusiveZone(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	c.SetExclusiveZone("LEFT", layout.ExclusiveZones{Top: 30})

	area, ok := c.EffectiveArea(left)
	require.True(t, ok)
	assert.EqualValues(t, 30, area.Y)
	assert.EqualValues(t, 1050, area.H)
}

func TestValidateReportsNoErrorsOnCleanState(t *testing.T) {
	c, left, right := twoDisplayCoordinator(t)
	_, err := c.AddWindow("a", left)
	require.NoError(t, err)
	_, err = c.AddWindow("b", right)
	require.NoError(t, err)

	assert.Empty(t, c.Validate())
}

func TestWindowWorkspaceReturnsHomeWorkspace(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	id, err := c.AddWindow("a", left)
	require.NoError(t, err)

	ws, ok := c.WindowWorkspace(id)
	require.True(t, ok)
	assert.EqualValues(t, 0, ws)
}

func TestDoRecordsSwitchWorkspaceForUndo(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	_, err := c.AddWindow("a", left)
	require.NoError(t, err)

	require.NoError(t, c.Do(command.NewSwitchWorkspaceCommand(left, 1)))
	ws, ok := c.WorkspaceOnOutput(left)
	require.True(t, ok)
	assert.EqualValues(t, 1, ws)

	undone, err := c.Undo()
	require.NoError(t, err)
	assert.True(t, undone)

	ws, ok = c.WorkspaceOnOutput(left)
	require.True(t, ok)
	assert.EqualValues(t, 0, ws)
}

func TestRedoReappliesUndoneCommand(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	_, err := c.AddWindow("a", left)
	require.NoError(t, err)

	require.NoError(t, c.Do(command.NewSwitchWorkspaceCommand(left, 1)))
	_, err = c.Undo()
	require.NoError(t, err)

	redone, err := c.Redo()
	require.NoError(t, err)
	assert.True(t, redone)

	ws, ok := c.WorkspaceOnOutput(left)
	require.True(t, ok)
	assert.EqualValues(t, 1, ws)
}

func TestUndoOnEmptyHistoryIsNoOp(t *testing.T) {
	c, _, _ := twoDisplayCoordinator(t)
	undone, err := c.Undo()
	require.NoError(t, err)
	assert.False(t, undone)
}

func TestDoingANewCommandAfterUndoDiscardsRedoTail(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	_, err := c.AddWindow("a", left)
	require.NoError(t, err)

	require.NoError(t, c.Do(command.NewSwitchWorkspaceCommand(left, 1)))
	_, err = c.Undo()
	require.NoError(t, err)

	require.NoError(t, c.Do(command.NewSwitchWorkspaceCommand(left, 2)))
	redone, err := c.Redo()
	require.NoError(t, err)
	assert.False(t, redone)
}

func TestFocusFollowsMouseDefaultsOffAndTracksSetter(t *testing.T) {
	c, _, _ := twoDisplayCoordinator(t)
	assert.False(t, c.FocusFollowsMouse())
	c.SetFocusFollowsMouse(true)
	assert.True(t, c.FocusFollowsMouse())
}

func TestResizeBeginUpdateAckCommitRoundTrip(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	id, err := c.AddWindow("a", left)
	require.NoError(t, err)

	rect, ok := c.BeginResize(id, resize.EdgeRight)
	require.True(t, ok)

	grown := rect
	grown.W += 40
	assert.True(t, c.UpdateResize(grown))
	assert.True(t, c.FinishResize(5))
	assert.True(t, c.AckResize(5))

	window, finalRect, ok := c.CommitResize()
	require.True(t, ok)
	assert.Equal(t, id, window)
	assert.Equal(t, grown, finalRect)
}

func TestResizeBeginUnknownWindowFails(t *testing.T) {
	c, _, _ := twoDisplayCoordinator(t)
	_, ok := c.BeginResize(999, resize.EdgeLeft)
	assert.False(t, ok)
}

func TestResizeCancelReturnsToIdle(t *testing.T) {
	c, left, _ := twoDisplayCoordinator(t)
	id, err := c.AddWindow("a", left)
	require.NoError(t, err)

	_, ok := c.BeginResize(id, resize.EdgeTop)
	require.True(t, ok)
	assert.True(t, c.CancelResize())

	_, _, ok = c.CommitResize()
	assert.False(t, ok)
}
