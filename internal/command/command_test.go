package command

import (
	"testing"

	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTarget is a minimal in-memory Target for exercising commands
// without a real coordinator.
type fakeTarget struct {
	windowWorkspace map[ids.WindowId]ids.WorkspaceId
	outputWorkspace map[ids.VirtualOutputId]ids.WorkspaceId
	moveCalls       []geom.Direction
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		windowWorkspace: make(map[ids.WindowId]ids.WorkspaceId),
		outputWorkspace: make(map[ids.VirtualOutputId]ids.WorkspaceId),
	}
}

func (f *fakeTarget) WindowWorkspace(w ids.WindowId) (ids.WorkspaceId, bool) {
	ws, ok := f.windowWorkspace[w]
	return ws, ok
}

func (f *fakeTarget) MoveWindowToWorkspace(w ids.WindowId, ws ids.WorkspaceId) error {
	f.windowWorkspace[w] = ws
	return nil
}

func (f *fakeTarget) WorkspaceOnOutput(vo ids.VirtualOutputId) (ids.WorkspaceId, bool) {
	ws, ok := f.outputWorkspace[vo]
	return ws, ok
}

func (f *fakeTarget) SwitchWorkspace(vo ids.VirtualOutputId, ws ids.WorkspaceId) error {
	f.outputWorkspace[vo] = ws
	return nil
}

func (f *fakeTarget) MoveWindowDirection(w ids.WindowId, dir geom.Direction) bool {
	f.moveCalls = append(f.moveCalls, dir)
	return true
}

func TestSwitchWorkspaceCommandUndoRestoresPrior(t *testing.T) {
	f := newFakeTarget()
	f.outputWorkspace[1] = 0

	cmd := NewSwitchWorkspaceCommand(1, 2)
	require.NoError(t, cmd.Execute(f))
	assert.Equal(t, ids.WorkspaceId(2), f.outputWorkspace[1])

	require.NoError(t, cmd.Undo(f))
	assert.Equal(t, ids.WorkspaceId(0), f.outputWorkspace[1])
}

func TestMoveWindowToWorkspaceCommandUndo(t *testing.T) {
	f := newFakeTarget()
	f.windowWorkspace[1] = 0

	cmd := NewMoveWindowToWorkspaceCommand(1, 3)
	require.NoError(t, cmd.Execute(f))
	assert.Equal(t, ids.WorkspaceId(3), f.windowWorkspace[1])

	require.NoError(t, cmd.Undo(f))
	assert.Equal(t, ids.WorkspaceId(0), f.windowWorkspace[1])
}

func TestHistoryUndoRedoRoundTrips(t *testing.T) {
	f := newFakeTarget()
	f.outputWorkspace[1] = 0
	h := NewHistory(10)

	require.NoError(t, h.Do(NewSwitchWorkspaceCommand(1, 2), f))
	assert.Equal(t, ids.WorkspaceId(2), f.outputWorkspace[1])

	undone, err := h.Undo(f)
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Equal(t, ids.WorkspaceId(0), f.outputWorkspace[1])

	redone, err := h.Redo(f)
	require.NoError(t, err)
	assert.True(t, redone)
	assert.Equal(t, ids.WorkspaceId(2), f.outputWorkspace[1])
}

func TestHistoryDoTruncatesRedoTail(t *testing.T) {
	f := newFakeTarget()
	h := NewHistory(10)

	require.NoError(t, h.Do(NewMoveWindowCommand(1, geom.Right), f))
	require.NoError(t, h.Do(NewMoveWindowCommand(1, geom.Left), f))
	_, _ = h.Undo(f)
	assert.True(t, h.CanRedo())

	require.NoError(t, h.Do(NewMoveWindowCommand(1, geom.Up), f))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 2, h.Len())
}

func TestHistoryRespectsCapacity(t *testing.T) {
	f := newFakeTarget()
	h := NewHistory(2)

	require.NoError(t, h.Do(NewMoveWindowCommand(1, geom.Right), f))
	require.NoError(t, h.Do(NewMoveWindowCommand(1, geom.Left), f))
	require.NoError(t, h.Do(NewMoveWindowCommand(1, geom.Up), f))

	assert.Equal(t, 2, h.Len())
}

func TestKillCommandIsNotUndoable(t *testing.T) {
	killed := false
	cmd := &KillCommand{Window: 1, Killer: func(ids.WindowId) error { killed = true; return nil }}
	f := newFakeTarget()

	require.NoError(t, cmd.Execute(f))
	assert.True(t, killed)
	assert.False(t, cmd.CanUndo())
	assert.Error(t, cmd.Undo(f))
}

func TestHistorySkipsNonUndoableCommandsWhenUndoing(t *testing.T) {
	f := newFakeTarget()
	h := NewHistory(10)

	require.NoError(t, h.Do(NewMoveWindowCommand(1, geom.Right), f))
	require.NoError(t, h.Do(&KillCommand{Window: 2, Killer: func(ids.WindowId) error { return nil }}, f))

	undone, err := h.Undo(f)
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Equal(t, []geom.Direction{geom.Right, geom.Left}, f.moveCalls)
}
