// Package registry implements spec §4.1: the authoritative store mapping
// opaque WindowId handles to ManagedWindow records, with a side index for
// O(1) element->id lookup (the spec only requires find_by_element to be
// correct, not O(n); this implementation keeps the side index the spec
// allows as an improvement).
//
// The registry is owned by the single-threaded event loop (spec §5) and
// takes no lock of its own; callers on other goroutines (the IPC server)
// must hand mutating calls back to the loop rather than call in directly.
package registry

import (
	"github.com/bnema/stilch/internal/ids"
)

// Element is the opaque surface handle owned by the protocol layer. The
// registry never dereferences it; it is carried by identity only (spec
// §3: "Window elements are shared... their lifetime is the longest
// holder").
type Element interface{}

// LayoutKind tags the variant a ManagedWindow's layout is in.
type LayoutKind int

const (
	Tiled LayoutKind = iota
	Floating
	Fullscreen
)

// FullscreenMode names the three-tier fullscreen targets of spec §1/§4.6.
type FullscreenMode int

const (
	FullscreenContainer FullscreenMode = iota
	FullscreenVirtualOutput
	FullscreenPhysicalOutput
)

func (m FullscreenMode) String() string {
	switch m {
	case FullscreenContainer:
		return "container"
	case FullscreenVirtualOutput:
		return "virtual_output"
	case FullscreenPhysicalOutput:
		return "physical_output"
	default:
		return "unknown"
	}
}

// WindowLayout is the tagged variant of spec §3. Only the fields that
// apply to Kind are meaningful; the others are retained so Fullscreen can
// restore its Prior exactly (Round-trip R2).
type WindowLayout struct {
	Kind LayoutKind

	// Tiled
	Container ids.ContainerId

	// Tiled | Floating | Fullscreen: the current on-screen geometry.
	Geometry Rect

	// Fullscreen
	Prior *WindowLayout
	Mode  FullscreenMode
}

// Rect mirrors geom.Rect; kept as a distinct alias-free type so this
// package has no import dependency on internal/geom — the two are
// structurally identical and converted at the coordinator boundary.
type Rect struct{ X, Y, W, H int32 }

// ManagedWindow is the authoritative record for one live window, per
// spec §3.
type ManagedWindow struct {
	ID        ids.WindowId
	Element   Element
	Workspace ids.WorkspaceId
	Layout    WindowLayout
}

// Registry is the window registry of spec §4.1. Operations are
// infallible except lookups, which return (value, bool); the registry
// itself never mutates WindowLayout — only the coordinator does, via
// Update.
type Registry struct {
	alloc   ids.WindowAllocator
	windows map[ids.WindowId]*ManagedWindow
	byElem  map[Element]ids.WindowId
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		windows: make(map[ids.WindowId]*ManagedWindow),
		byElem:  make(map[Element]ids.WindowId),
	}
}

// Insert allocates a fresh WindowId for element and stores a new
// ManagedWindow. The id never collides with a live or previously-issued
// id in this registry.
func (r *Registry) Insert(element Element, workspace ids.WorkspaceId) *ManagedWindow {
	id := r.alloc.Next()
	w := &ManagedWindow{ID: id, Element: element, Workspace: workspace}
	r.windows[id] = w
	r.byElem[element] = id
	return w
}

// Remove deletes the window with id, if present. Idempotent: a second
// Remove of the same id returns (nil, false).
func (r *Registry) Remove(id ids.WindowId) (*ManagedWindow, bool) {
	w, ok := r.windows[id]
	if !ok {
		return nil, false
	}
	delete(r.windows, id)
	delete(r.byElem, w.Element)
	return w, true
}

// Get returns the window with id, if present.
func (r *Registry) Get(id ids.WindowId) (*ManagedWindow, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// Update applies fn to the window with id, returning false if the id is
// unknown. This is the only mutation path for WindowLayout, reserved for
// the coordinator (spec §4.1: "the registry never mutates WindowLayout
// on its own").
func (r *Registry) Update(id ids.WindowId, fn func(*ManagedWindow)) bool {
	w, ok := r.windows[id]
	if !ok {
		return false
	}
	fn(w)
	return true
}

// FindByElement returns the id bound to element, if one exists.
func (r *Registry) FindByElement(element Element) (ids.WindowId, bool) {
	id, ok := r.byElem[element]
	return id, ok
}

// Iter calls fn for every window currently in the registry, in
// unspecified order. fn must not mutate the registry.
func (r *Registry) Iter(fn func(*ManagedWindow)) {
	for _, w := range r.windows {
		fn(w)
	}
}

// Len returns the number of live windows.
func (r *Registry) Len() int { return len(r.windows) }
