package voutput

import (
	"testing"

	"github.com/bnema/stilch/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func display(name string, w, h int32) *PhysicalDisplay {
	d := &PhysicalDisplay{Name: name, Scale: 1}
	d.PixelSize.W, d.PixelSize.H = w, h
	d.LogicalSize.W, d.LogicalSize.H = w, h
	return d
}

func TestCreateFromPhysicalWrapsWholeOutput(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))

	id, err := m.CreateFromPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)

	vo, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, []string{"DP-1"}, vo.PhysicalOutputs)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}, vo.LogicalRegion)
}

func TestCreateFromPhysicalRejectsOutOfBoundsRegion(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))

	_, err := m.CreateFromPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 2000, H: 1080})
	assert.Error(t, err)
}

func TestSplitPhysicalProducesDisjointExactSum(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1921, 1080))

	voIDs, err := m.SplitPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 1921, H: 1080}, geom.Horizontal, 3)
	require.NoError(t, err)
	require.Len(t, voIDs, 3)

	var total int32
	for _, id := range voIDs {
		vo, _ := m.Get(id)
		total += vo.LogicalRegion.W
		assert.Equal(t, int32(1080), vo.LogicalRegion.H)
	}
	assert.Equal(t, int32(1921), total)

	a, _ := m.Get(voIDs[0])
	b, _ := m.Get(voIDs[1])
	assert.False(t, a.LogicalRegion.Intersects(b.LogicalRegion))
}

func TestSplitPhysicalRejectsOverlapWithExisting(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))
	_, err := m.CreateFromPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)

	_, err = m.SplitPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}, geom.Horizontal, 2)
	assert.Error(t, err)
}

func TestCreateVirtualOutputUnionsTwoDisplays(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))
	d2 := display("DP-2", 1920, 1080)
	d2.LogicalPosition.X = 1920
	m.RegisterDisplay(d2)

	id, err := m.CreateVirtualOutput("wide", []string{"DP-1", "DP-2"}, geom.Rect{X: 0, Y: 0, W: 3840, H: 1080})
	require.NoError(t, err)

	vo, ok := m.Get(id)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"DP-1", "DP-2"}, vo.PhysicalOutputs)
}

func TestVirtualOutputAtSatisfiesInvariant(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))
	id, err := m.CreateFromPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)

	found, ok := m.VirtualOutputAt(100, 100)
	require.True(t, ok)
	assert.Equal(t, id, found)

	_, ok = m.VirtualOutputAt(5000, 5000)
	assert.False(t, ok)
}

func TestRemovePhysicalOutputDeletesSoloVirtualOutputs(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))
	id, err := m.CreateFromPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)

	removed := m.RemovePhysicalOutput("DP-1")
	require.Len(t, removed, 1)
	assert.Equal(t, id, removed[0])

	_, ok := m.Get(id)
	assert.False(t, ok)
}

func TestRemovePhysicalOutputKeepsUnionSurvivingOnOtherDisplay(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))
	d2 := display("DP-2", 1920, 1080)
	d2.LogicalPosition.X = 1920
	m.RegisterDisplay(d2)
	id, err := m.CreateVirtualOutput("wide", []string{"DP-1", "DP-2"}, geom.Rect{X: 0, Y: 0, W: 3840, H: 1080})
	require.NoError(t, err)

	removed := m.RemovePhysicalOutput("DP-1")
	assert.Empty(t, removed)

	vo, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, []string{"DP-2"}, vo.PhysicalOutputs)
}

func TestSetActiveWorkspaceRoundTrips(t *testing.T) {
	m := New()
	m.RegisterDisplay(display("DP-1", 1920, 1080))
	id, err := m.CreateFromPhysical("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)

	ok := m.SetActiveWorkspace(id, 3)
	require.True(t, ok)

	ws, ok := m.ActiveWorkspace(id)
	require.True(t, ok)
	assert.EqualValues(t, 3, ws)
}
