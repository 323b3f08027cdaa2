// Package resize implements the resize-ack state machine (spec §5,
// supplemented from `src/shell/resize_state.rs` of the Rust original).
//
// The original uses Rust's type-state pattern (a distinct struct per
// state, transitions consuming self). Go has no affine types, so the
// same lifecycle is expressed the way the teacher expresses its own
// state machines: one enum (State) plus a struct carrying the data
// valid in the non-idle states, with methods that mutate in place and
// report whether the requested transition was legal from the state the
// machine was actually in.
package resize

import (
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
)

// Edge identifies which edge(s) of a window a resize grab affects.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
	EdgeTopLeft
	EdgeTopRight
	EdgeBottomLeft
	EdgeBottomRight
)

func (e Edge) HasTop() bool {
	return e == EdgeTop || e == EdgeTopLeft || e == EdgeTopRight
}

func (e Edge) HasBottom() bool {
	return e == EdgeBottom || e == EdgeBottomLeft || e == EdgeBottomRight
}

func (e Edge) HasLeft() bool {
	return e == EdgeLeft || e == EdgeTopLeft || e == EdgeBottomLeft
}

func (e Edge) HasRight() bool {
	return e == EdgeRight || e == EdgeTopRight || e == EdgeBottomRight
}

// State is the resize operation's lifecycle stage.
type State int

const (
	Idle State = iota
	Resizing
	WaitingForAck
	WaitingForCommit
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resizing:
		return "resizing"
	case WaitingForAck:
		return "waiting_for_ack"
	case WaitingForCommit:
		return "waiting_for_commit"
	default:
		return "unknown"
	}
}

// Data is the geometry carried by a resize once it has begun.
type Data struct {
	Window      ids.WindowId
	Edges       Edge
	InitialRect geom.Rect
	CurrentRect geom.Rect
}

// Machine tracks at most one in-flight resize. Zero value is Idle.
// Like the other core packages it is owned by the single-threaded
// event loop and carries no mutex.
type Machine struct {
	state  State
	data   Data
	serial uint32
}

// State returns the machine's current lifecycle stage.
func (m *Machine) State() State { return m.state }

// Data returns the in-flight resize's data and whether the machine is
// in any non-idle state.
func (m *Machine) Data() (Data, bool) {
	if m.state == Idle {
		return Data{}, false
	}
	return m.data, true
}

// Begin starts a new resize, valid only from Idle. Beginning a resize
// while one is already active is a protocol error the caller should
// have prevented (e.g. by cancelling the previous grab first); it
// returns false rather than silently clobbering in-flight state.
func (m *Machine) Begin(window ids.WindowId, edges Edge, initial geom.Rect) bool {
	if m.state != Idle {
		return false
	}
	m.state = Resizing
	m.data = Data{Window: window, Edges: edges, InitialRect: initial, CurrentRect: initial}
	return true
}

// UpdateSize records the live size during a Resizing-state drag.
func (m *Machine) UpdateSize(rect geom.Rect) bool {
	if m.state != Resizing {
		return false
	}
	m.data.CurrentRect = rect
	return true
}

// Finish moves Resizing -> WaitingForAck, recording the configure
// serial the compositor sent the client so a later Ack can be matched
// against it.
func (m *Machine) Finish(serial uint32) bool {
	if m.state != Resizing {
		return false
	}
	m.state = WaitingForAck
	m.serial = serial
	return true
}

// Ack moves WaitingForAck -> WaitingForCommit if serial matches the one
// recorded by Finish. A stale ack (serial from a resize already
// superseded) is ignored rather than erroring: the client simply hasn't
// caught up yet.
func (m *Machine) Ack(serial uint32) bool {
	if m.state != WaitingForAck || serial != m.serial {
		return false
	}
	m.state = WaitingForCommit
	return true
}

// Supersede discards whatever resize is in flight and starts a new one
// with a fresh serial, used when a second resize grab begins before the
// first's ack/commit arrived (the data only ever reflects the latest
// grab).
func (m *Machine) Supersede(window ids.WindowId, edges Edge, initial geom.Rect) {
	m.state = Resizing
	m.data = Data{Window: window, Edges: edges, InitialRect: initial, CurrentRect: initial}
	m.serial = 0
}

// CommitReceived moves WaitingForCommit -> Idle, completing the resize.
func (m *Machine) CommitReceived() bool {
	if m.state != WaitingForCommit {
		return false
	}
	m.state = Idle
	m.data = Data{}
	m.serial = 0
	return true
}

// Cancel aborts an in-flight resize from any non-idle state (timeout,
// client disconnect, or an explicit cancel) and returns to Idle.
func (m *Machine) Cancel() bool {
	if m.state == Idle {
		return false
	}
	m.state = Idle
	m.data = Data{}
	m.serial = 0
	return true
}
