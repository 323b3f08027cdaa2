// Package command implements the undo/redo command history (spec §9
// design note "Command pattern", supplemented feature 2, grounded on
// `src/command/mod.rs` of the Rust original).
//
// The original is a trait object (`Box<dyn Command<BackendData>>`)
// executed against the whole compositor state. Go's analogue is an
// interface executed against Target, the narrow slice of the
// coordinator's operations a command actually needs — declared here
// rather than in internal/coordinator so this package has no import on
// it; internal/coordinator implements Target and is the only caller.
package command

import (
	"github.com/bnema/stilch/internal/corerr"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
)

// Target is the subset of coordinator behaviour a Command needs to
// execute or undo itself.
type Target interface {
	WindowWorkspace(window ids.WindowId) (ids.WorkspaceId, bool)
	MoveWindowToWorkspace(window ids.WindowId, ws ids.WorkspaceId) error
	WorkspaceOnOutput(vo ids.VirtualOutputId) (ids.WorkspaceId, bool)
	SwitchWorkspace(vo ids.VirtualOutputId, ws ids.WorkspaceId) error
	MoveWindowDirection(window ids.WindowId, dir geom.Direction) bool
}

// Command is a reversible action taken against a Target.
type Command interface {
	Execute(t Target) error
	Undo(t Target) error
	CanUndo() bool
	Description() string
}

// SwitchWorkspaceCommand switches the workspace shown on a virtual
// output, recording the prior occupant for undo.
type SwitchWorkspaceCommand struct {
	VirtualOutput ids.VirtualOutputId
	Target        ids.WorkspaceId
	previous      ids.WorkspaceId
	hadPrevious   bool
}

func NewSwitchWorkspaceCommand(vo ids.VirtualOutputId, target ids.WorkspaceId) *SwitchWorkspaceCommand {
	return &SwitchWorkspaceCommand{VirtualOutput: vo, Target: target}
}

func (c *SwitchWorkspaceCommand) Execute(t Target) error {
	if prev, ok := t.WorkspaceOnOutput(c.VirtualOutput); ok {
		c.previous, c.hadPrevious = prev, true
	}
	return t.SwitchWorkspace(c.VirtualOutput, c.Target)
}

func (c *SwitchWorkspaceCommand) Undo(t Target) error {
	if !c.hadPrevious {
		return corerr.New(corerr.InvalidOperation, "command: no previous workspace recorded")
	}
	return t.SwitchWorkspace(c.VirtualOutput, c.previous)
}

func (c *SwitchWorkspaceCommand) CanUndo() bool { return true }

func (c *SwitchWorkspaceCommand) Description() string {
	return "switch workspace " + c.Target.String() + " on output " + c.VirtualOutput.String()
}

// MoveWindowToWorkspaceCommand moves a window to a different workspace,
// recording its prior workspace for undo. A no-op move (window already
// on the target workspace) still records itself so Undo is a true
// inverse, matching the original's early-return-but-still-Ok shape.
type MoveWindowToWorkspaceCommand struct {
	Window      ids.WindowId
	Target      ids.WorkspaceId
	previous    ids.WorkspaceId
	hadPrevious bool
}

func NewMoveWindowToWorkspaceCommand(window ids.WindowId, target ids.WorkspaceId) *MoveWindowToWorkspaceCommand {
	return &MoveWindowToWorkspaceCommand{Window: window, Target: target}
}

func (c *MoveWindowToWorkspaceCommand) Execute(t Target) error {
	prev, ok := t.WindowWorkspace(c.Window)
	if !ok {
		return corerr.Newf(corerr.NotFound, "command: window %s not found", c.Window)
	}
	c.previous, c.hadPrevious = prev, true
	if prev == c.Target {
		return nil
	}
	return t.MoveWindowToWorkspace(c.Window, c.Target)
}

func (c *MoveWindowToWorkspaceCommand) Undo(t Target) error {
	if !c.hadPrevious {
		return corerr.New(corerr.InvalidOperation, "command: no previous workspace recorded")
	}
	if c.previous == c.Target {
		return nil
	}
	return t.MoveWindowToWorkspace(c.Window, c.previous)
}

func (c *MoveWindowToWorkspaceCommand) CanUndo() bool { return true }

func (c *MoveWindowToWorkspaceCommand) Description() string {
	return "move window " + c.Window.String() + " to workspace " + c.Target.String()
}

// MoveWindowCommand moves a window one step within its layout tree in
// a spatial direction; undone by moving it back in the opposite
// direction, since the layout tree's MoveWindow is its own inverse for
// an adjacent-leaf swap (spec §8 R2).
type MoveWindowCommand struct {
	Window ids.WindowId
	Dir    geom.Direction
	moved  bool
}

func NewMoveWindowCommand(window ids.WindowId, dir geom.Direction) *MoveWindowCommand {
	return &MoveWindowCommand{Window: window, Dir: dir}
}

func (c *MoveWindowCommand) Execute(t Target) error {
	c.moved = t.MoveWindowDirection(c.Window, c.Dir)
	return nil
}

func (c *MoveWindowCommand) Undo(t Target) error {
	if !c.moved {
		return nil
	}
	t.MoveWindowDirection(c.Window, opposite(c.Dir))
	return nil
}

func (c *MoveWindowCommand) CanUndo() bool { return true }

func (c *MoveWindowCommand) Description() string {
	return "move window " + c.Window.String() + " " + c.Dir.String()
}

func opposite(d geom.Direction) geom.Direction {
	switch d {
	case geom.Left:
		return geom.Right
	case geom.Right:
		return geom.Left
	case geom.Up:
		return geom.Down
	default:
		return geom.Up
	}
}

// KillCommand destroys a window outright. It is explicitly not
// undoable: once a client's surface is destroyed there is nothing left
// to restore (matches the original spec's "kill is non-undoable" note).
type KillCommand struct {
	Window ids.WindowId
	Killer func(ids.WindowId) error
}

func (c *KillCommand) Execute(t Target) error {
	if c.Killer == nil {
		return corerr.New(corerr.InvalidOperation, "command: no killer configured")
	}
	return c.Killer(c.Window)
}

func (c *KillCommand) Undo(t Target) error {
	return corerr.New(corerr.InvalidOperation, "command: kill cannot be undone")
}

func (c *KillCommand) CanUndo() bool { return false }

func (c *KillCommand) Description() string { return "kill window " + c.Window.String() }
