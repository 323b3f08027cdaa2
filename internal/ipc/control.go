package ipc

import (
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/bnema/stilch/internal/eventbus"
	"github.com/bnema/stilch/internal/logger"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/bnema/stilch/internal/workspace"
)

// outboundCapacity bounds each control-channel subscriber's pending
// broadcast queue; on overflow the oldest queued message is dropped so
// a slow reader never blocks the others, the same drop-oldest policy
// internal/eventbus uses for its own subscribers.
const outboundCapacity = 16

// ControlServer broadcasts workspace_update events (§6) to every
// connected client whenever the workspace state changes.
type ControlServer struct {
	lifecycle
	bus *eventbus.Bus
	ws  *workspace.Manager
	vo  *voutput.Manager

	connsMu sync.Mutex
	conns   map[int]chan []byte
	nextID  int
}

func NewControlServer(bus *eventbus.Bus, ws *workspace.Manager, vo *voutput.Manager) *ControlServer {
	return &ControlServer{
		bus:   bus,
		ws:    ws,
		vo:    vo,
		conns: make(map[int]chan []byte),
	}
}

func (s *ControlServer) Start(path string) error {
	listener, started, err := s.startListening(path)
	if err != nil {
		return err
	}
	if !started {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	sub, ch := s.bus.Subscribe()

	s.wg.Add(1)
	go s.acceptLoop(ctx, listener)

	s.wg.Add(1)
	go s.broadcastLoop(ctx, sub, ch)

	logger.Infof("control IPC server started at %s", path)
	return nil
}

func (s *ControlServer) Stop() {
	s.stop("control")
}

func (s *ControlServer) acceptLoop(ctx context.Context, listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Errorf("control IPC: accept: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.serveConn(ctx, conn)
	}
}

func (s *ControlServer) serveConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.connsMu.Lock()
	id := s.nextID
	s.nextID++
	outbound := make(chan []byte, outboundCapacity)
	s.conns[id] = outbound
	s.connsMu.Unlock()

	defer func() {
		s.connsMu.Lock()
		delete(s.conns, id)
		s.connsMu.Unlock()
	}()

	// Drain conn reads only to detect the client closing its end; the
	// control channel carries no inbound requests (§6).
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-outbound:
			if !ok {
				return
			}
			if _, err := conn.Write(append(line, '\n')); err != nil {
				return
			}
		}
	}
}

func (s *ControlServer) broadcastLoop(ctx context.Context, subID int, ch *eventbus.Subscriber) {
	defer s.wg.Done()
	defer s.bus.Unsubscribe(subID)

	for {
		if err := ch.Wait(ctx); err != nil {
			return
		}
		events := ch.Drain()
		if len(events) == 0 {
			continue
		}
		s.publishSnapshot()
	}
}

// publishSnapshot sends one workspace_update per known virtual output,
// each listing every pre-reserved workspace with Active marking the one
// currently mounted on that output.
func (s *ControlServer) publishSnapshot() {
	for _, vo := range s.vo.All() {
		current, _ := s.ws.WorkspaceOnOutput(vo.ID)

		var summaries []WorkspaceSummary
		s.ws.Iter(func(w *workspace.Workspace) {
			summaries = append(summaries, WorkspaceSummary{
				ID:      int(w.ID),
				Active:  w.ID == current,
				Windows: len(w.Windows),
				Urgent:  false,
			})
		})

		update := WorkspaceUpdate{
			Type:          "workspace_update",
			VirtualOutput: uint32(vo.ID),
			Workspaces:    summaries,
		}
		data, err := json.Marshal(update)
		if err != nil {
			logger.Errorf("control IPC: marshal snapshot: %v", err)
			continue
		}
		s.publish(data)
	}
}

func (s *ControlServer) publish(data []byte) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for _, ch := range s.conns {
		select {
		case ch <- data:
		default:
			// Overflow: drop the oldest queued message, then enqueue
			// the newest (§6: "at-least-once, newest-first on overflow").
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- data:
			default:
			}
		}
	}
}
