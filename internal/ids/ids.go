// Package ids allocates the opaque handle types used across the core:
// WindowId, ContainerId, WorkspaceId and VirtualOutputId. Handles are
// monotonically increasing, stable for the life of the entity, and never
// reused within a session.
package ids

import "fmt"

// WindowId identifies a ManagedWindow for the life of the session.
type WindowId uint64

// ContainerId identifies a layout-tree container node.
type ContainerId uint64

// WorkspaceId identifies one of the 10 pre-reserved workspaces (0..=9).
type WorkspaceId uint32

// VirtualOutputId identifies a logical display.
type VirtualOutputId uint64

func (w WindowId) String() string        { return fmt.Sprintf("win:%d", uint64(w)) }
func (c ContainerId) String() string     { return fmt.Sprintf("con:%d", uint64(c)) }
func (w WorkspaceId) String() string     { return fmt.Sprintf("ws:%d", uint32(w)) }
func (v VirtualOutputId) String() string { return fmt.Sprintf("vo:%d", uint64(v)) }

// NumWorkspaces is the number of pre-reserved workspaces (§6: "Workspace
// ids 0..9 are pre-reserved; display names are the id + 1").
const NumWorkspaces = 10

// DisplayName is the 1-based name shown to the user for a workspace id.
func DisplayName(ws WorkspaceId) int { return int(ws) + 1 }

// WindowAllocator hands out fresh WindowId values, starting at 1 so the
// zero value can be used as a sentinel by callers.
type WindowAllocator struct{ next uint64 }

// Next returns a fresh, never-colliding WindowId.
func (a *WindowAllocator) Next() WindowId {
	a.next++
	return WindowId(a.next)
}

// ContainerAllocator hands out fresh ContainerId values.
type ContainerAllocator struct{ next uint64 }

// Next returns a fresh, never-colliding ContainerId.
func (a *ContainerAllocator) Next() ContainerId {
	a.next++
	return ContainerId(a.next)
}

// VirtualOutputAllocator hands out fresh VirtualOutputId values.
type VirtualOutputAllocator struct{ next uint64 }

// Next returns a fresh, never-colliding VirtualOutputId.
func (a *VirtualOutputAllocator) Next() VirtualOutputId {
	a.next++
	return VirtualOutputId(a.next)
}
