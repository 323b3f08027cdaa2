// Package eventloop serializes access to the single-threaded core state
// spec §5 describes: the registry, workspace manager, virtual-output
// manager and coordinator take no lock of their own, so every goroutine
// other than the one driving the backend (the IPC test/control servers,
// in this build, since protocol dispatch is mechanical and out of
// scope) must hand its mutation back to the owning goroutine instead of
// calling in directly.
package eventloop

import "context"

// Loop runs closures on a single goroutine, one at a time, in the order
// submitted.
type Loop struct {
	work chan func()
}

// New returns a Loop with no goroutine running yet; call Run to start
// draining it.
func New() *Loop {
	return &Loop{work: make(chan func(), 64)}
}

// Run drains submitted work until ctx is cancelled. It is meant to run
// on whichever goroutine owns the core state — normally the same one
// that calls backend.Backend.Run.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.work:
			fn()
		}
	}
}

// Submit enqueues fn to run on the loop's goroutine and blocks until it
// has finished. Safe to call from any goroutine except the loop's own:
// there fn would wait in the queue behind the very call blocked on it,
// and Submit never returns. Called before Run starts, it blocks until
// Run drains the queue.
func (l *Loop) Submit(fn func()) {
	done := make(chan struct{})
	l.work <- func() {
		fn()
		close(done)
	}
	<-done
}

// Call runs fn on the loop's goroutine and returns its result.
func Call[T any](l *Loop, fn func() T) T {
	var result T
	l.Submit(func() { result = fn() })
	return result
}
