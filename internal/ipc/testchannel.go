package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/bnema/stilch/internal/logger"
)

// Handler answers every test-channel command (§6's table). It is
// implemented by the glue layer wiring together internal/coordinator,
// internal/router and internal/ascii; the ipc package itself has no
// dependency on any of them, the same separation the teacher's
// SocketServer keeps from its MessageHandler implementations.
type Handler interface {
	GetState() (string, error)
	GetWindows() ([]WindowInfo, error)
	GetWorkspaces() ([]WorkspaceInfo, error)
	GetOutputs() ([]OutputInfo, error)
	FocusWindow(id uint64) error
	DestroyWindow(id uint64) error
	KillFocusedWindow() error
	SwitchWorkspace(index int) error
	MoveFocus(direction string) error
	MoveWindow(windowID uint64, direction string) error
	MoveWindowToWorkspace(windowID uint64, workspace int) error
	MoveWorkspaceToOutput(direction string) error
	SetLayout(mode string) error
	SetSplitDirection(direction string) error
	// Fullscreen toggles fullscreen for the focused window. mode is ""
	// for the bare Fullscreen command (toggles the last-used mode, or
	// Container if none), or "container"/"virtual_output"/"physical_output".
	Fullscreen(mode string) error
	MoveMouse(x, y int32) error
	GetCursorPosition() (x, y int32, err error)
	ClickAt(x, y int32) error
	GetAsciiSnapshot(showIDs, showFocus bool) (snapshot string, width, height int, err error)
	Undo() error
	Redo() error
}

// TestServer serves the test channel: one JSON request per line, one
// JSON response per line, no broadcast.
type TestServer struct {
	lifecycle
	handler Handler
}

func NewTestServer(handler Handler) *TestServer {
	return &TestServer{handler: handler}
}

func (s *TestServer) Start(path string) error {
	listener, started, err := s.startListening(path)
	if err != nil {
		return err
	}
	if !started {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptLoop(ctx, listener)

	logger.Infof("test IPC server started at %s", path)
	return nil
}

func (s *TestServer) Stop() {
	s.stop("test")
}

func (s *TestServer) acceptLoop(ctx context.Context, listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Errorf("test IPC: accept: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.serve(ctx, conn)
	}
}

func (s *TestServer) serve(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			enc.Encode(Response{Success: false, Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}

		resp := Dispatch(s.handler, req)
		if err := enc.Encode(resp); err != nil {
			logger.Debugf("test IPC: write response: %v", err)
			return
		}
	}
}

// Dispatch resolves one Request against Handler and builds its
// Response. Exported so cmd/test-inject and in-process tests can drive
// the same table without going through a socket.
func Dispatch(h Handler, req Request) Response {
	switch req.Type {
	case "GetState":
		snap, err := h.GetState()
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, Snapshot: snap}

	case "GetWindows":
		windows, err := h.GetWindows()
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, Windows: windows}

	case "GetWorkspaces":
		workspaces, err := h.GetWorkspaces()
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, Workspaces: workspaces}

	case "GetOutputs":
		outputs, err := h.GetOutputs()
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, Outputs: outputs}

	case "FocusWindow":
		return toResponse(h.FocusWindow(req.ID))

	case "DestroyWindow":
		return toResponse(h.DestroyWindow(req.ID))

	case "KillFocusedWindow":
		return toResponse(h.KillFocusedWindow())

	case "SwitchWorkspace":
		return toResponse(h.SwitchWorkspace(req.Index))

	case "MoveFocus":
		return toResponse(h.MoveFocus(req.Direction))

	case "MoveWindow":
		return toResponse(h.MoveWindow(req.WindowID, req.Direction))

	case "MoveWindowToWorkspace":
		return toResponse(h.MoveWindowToWorkspace(req.WindowID, req.Workspace))

	case "MoveWorkspaceToOutput":
		return toResponse(h.MoveWorkspaceToOutput(req.Direction))

	case "SetLayout":
		return toResponse(h.SetLayout(req.Mode))

	case "SetSplitDirection":
		return toResponse(h.SetSplitDirection(req.Direction))

	case "Fullscreen":
		return toResponse(h.Fullscreen(""))
	case "FullscreenContainer":
		return toResponse(h.Fullscreen("container"))
	case "FullscreenVirtualOutput":
		return toResponse(h.Fullscreen("virtual_output"))
	case "FullscreenPhysicalOutput":
		return toResponse(h.Fullscreen("physical_output"))

	case "MoveMouse":
		return toResponse(h.MoveMouse(req.X, req.Y))

	case "GetCursorPosition":
		x, y, err := h.GetCursorPosition()
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, X: x, Y: y}

	case "ClickAt":
		return toResponse(h.ClickAt(req.X, req.Y))

	case "GetAsciiSnapshot":
		snap, w, hgt, err := h.GetAsciiSnapshot(req.ShowIDs, req.ShowFocus)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, Snapshot: snap, Width: w, Height: hgt}

	case "Undo":
		return toResponse(h.Undo())

	case "Redo":
		return toResponse(h.Redo())

	default:
		return Response{Success: false, Error: fmt.Sprintf("unknown command %q", req.Type)}
	}
}

func toResponse(err error) Response {
	if err != nil {
		return errorResponse(err)
	}
	return Response{Success: true}
}

func errorResponse(err error) Response {
	return Response{Success: false, Error: err.Error()}
}
