package registry

import (
	"testing"

	"github.com/bnema/stilch/internal/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAllocatesFreshIDs(t *testing.T) {
	r := New()
	w1 := r.Insert("elem-1", 0)
	w2 := r.Insert("elem-2", 0)
	assert.NotEqual(t, w1.ID, w2.ID)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New()
	w := r.Insert("elem-1", 0)

	got, ok := r.Remove(w.ID)
	require.True(t, ok)
	assert.Equal(t, w, got)

	got, ok = r.Remove(w.ID)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFindByElement(t *testing.T) {
	r := New()
	w := r.Insert("elem-1", 3)

	id, ok := r.FindByElement("elem-1")
	require.True(t, ok)
	assert.Equal(t, w.ID, id)

	_, ok = r.FindByElement("missing")
	assert.False(t, ok)
}

func TestGetUnknownID(t *testing.T) {
	r := New()
	_, ok := r.Get(ids.WindowId(999))
	assert.False(t, ok)
}

func TestUpdateMutatesLayout(t *testing.T) {
	r := New()
	w := r.Insert("elem-1", 0)

	ok := r.Update(w.ID, func(mw *ManagedWindow) {
		mw.Layout = WindowLayout{Kind: Floating, Geometry: Rect{X: 1, Y: 2, W: 3, H: 4}}
	})
	require.True(t, ok)

	got, _ := r.Get(w.ID)
	assert.Equal(t, Floating, got.Layout.Kind)

	ok = r.Update(ids.WindowId(12345), func(*ManagedWindow) {})
	assert.False(t, ok)
}

func TestIterVisitsAllWindows(t *testing.T) {
	r := New()
	r.Insert("a", 0)
	r.Insert("b", 0)
	r.Insert("c", 1)

	seen := map[ids.WindowId]bool{}
	r.Iter(func(w *ManagedWindow) { seen[w.ID] = true })
	assert.Len(t, seen, 3)
	assert.Equal(t, 3, r.Len())
}
