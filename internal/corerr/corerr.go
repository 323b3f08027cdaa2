// Package corerr defines the error-kind taxonomy of spec §7: NotFound,
// InvalidOperation, ProtocolViolation, BackendFailure and Config. These
// are kinds, not a closed set of concrete sentinel values — callers wrap
// a kind with context via fmt.Errorf("...: %w", corerr.NotFound) and
// unwrap with errors.Is/errors.As, exactly the pattern the teacher's
// ipc and network packages use for their own small error types.
package corerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for logging and IPC-response policy (§7: a
// handler never propagates errors past the event loop boundary).
type Kind int

const (
	// NotFound: a referenced window/workspace/virtual-output/container id
	// is absent. Surfaced to IPC clients, logged at warn, never fatal.
	NotFound Kind = iota
	// InvalidOperation: a precondition was violated (undo with empty
	// history, resize-ack without a matching resize state). Returned to
	// the caller; state resets to a safe default on detection.
	InvalidOperation
	// ProtocolViolation: a collaborator (protocol layer) misbehaved. The
	// offending client may be ignored; the core never terminates.
	ProtocolViolation
	// BackendFailure: GPU context lost / DRM device inactive. The backend
	// retries on next vblank; core continues.
	BackendFailure
	// Config: a config parse error. No config is loaded (keybindings
	// stay empty); logged.
	Config
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidOperation:
		return "invalid_operation"
	case ProtocolViolation:
		return "protocol_violation"
	case BackendFailure:
		return "backend_failure"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// Error pairs a Kind with a message, satisfying the error interface so it
// composes with fmt.Errorf's %w and errors.Is/errors.As.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, corerr.New(corerr.NotFound, "")) matches by kind alone
// when Msg is irrelevant to the caller.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.Kind == e.Kind
	}
	return false
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Of returns the Kind of err if it (or something it wraps) is an *Error,
// and whether one was found.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
