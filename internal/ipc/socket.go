// Package ipc implements spec §6's two external control surfaces: the
// control channel (server-initiated broadcast of workspace state) and
// the test channel (request/response command set used to drive and
// introspect the compositor from scripts and integration tests). Both
// are Unix domain sockets framed with newline-terminated JSON rather
// than the teacher's length-prefixed protobuf framing (see DESIGN.md
// for why protobuf was dropped): the socket lifecycle itself —
// mutex-guarded listener, context-cancel shutdown, a WaitGroup tracking
// in-flight connections — is kept from the teacher's
// internal/ipc/socket.go almost unchanged.
package ipc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/stilch/internal/logger"
)

// openUnixSocket removes any stale socket file at path, ensures its
// parent directory exists, and listens with user-only permissions —
// the same three steps the teacher's SocketServer.Start performs.
func openUnixSocket(path string) (net.Listener, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("ipc: removing existing socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ipc: creating socket directory: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listening on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("ipc: setting socket permissions: %w", err)
	}
	return listener, nil
}

// lifecycle is the shared start/stop bookkeeping both servers embed:
// it's the teacher's SocketServer fields (mu, listener, wg, cancel,
// running) factored out so control.go and testchannel.go don't each
// reimplement it.
type lifecycle struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	wg         sync.WaitGroup
	cancel     func()
	running    bool
}

func (l *lifecycle) startListening(path string) (net.Listener, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return nil, false, nil
	}

	listener, err := openUnixSocket(path)
	if err != nil {
		return nil, false, err
	}

	l.socketPath = path
	l.listener = listener
	l.running = true
	return listener, true, nil
}

func (l *lifecycle) stop(name string) {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	if l.cancel != nil {
		l.cancel()
	}
	if l.listener != nil {
		l.listener.Close()
	}
	l.mu.Unlock()

	l.wg.Wait()
	os.RemoveAll(l.socketPath)
	logger.Infof("%s IPC server stopped", name)
}
