package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/stilch/internal/eventbus"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/bnema/stilch/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFixtures(t *testing.T) (*eventbus.Bus, *workspace.Manager, *voutput.Manager) {
	t.Helper()
	bus := eventbus.New()
	ws := workspace.New()
	vo := voutput.New()

	vo.RegisterDisplay(&voutput.PhysicalDisplay{
		Name:        "LEFT",
		PixelSize:   struct{ W, H int32 }{1920, 1080},
		LogicalSize: struct{ W, H int32 }{1920, 1080},
		Scale:       1,
	})
	id, err := vo.CreateFromPhysical("LEFT", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)
	ws.ShowWorkspaceOnOutput(0, id, geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})

	return bus, ws, vo
}

func TestControlServerBroadcastsWorkspaceUpdateOnEmit(t *testing.T) {
	bus, ws, vo := newTestFixtures(t)
	srv := NewControlServer(bus, ws, vo)

	path := filepath.Join(t.TempDir(), "control.sock")
	require.NoError(t, srv.Start(path))
	defer srv.Stop()

	conn, err := net.DialTimeout("unix", path, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	bus.Emit(eventbus.WorkspaceSwitched, nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)

	var update WorkspaceUpdate
	require.NoError(t, json.Unmarshal([]byte(line), &update))
	assert.Equal(t, "workspace_update", update.Type)
	require.NotEmpty(t, update.Workspaces)

	var found bool
	for _, w := range update.Workspaces {
		if w.ID == 0 {
			found = true
			assert.True(t, w.Active)
		}
	}
	assert.True(t, found)
}

func TestControlServerStartStopIdempotent(t *testing.T) {
	bus, ws, vo := newTestFixtures(t)
	srv := NewControlServer(bus, ws, vo)

	path := filepath.Join(t.TempDir(), "control.sock")
	require.NoError(t, srv.Start(path))
	require.NoError(t, srv.Start(path)) // second Start is a no-op

	srv.Stop()
	srv.Stop() // second Stop is a no-op

	_, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestControlServerDropsOldestOnSlowClient(t *testing.T) {
	bus, ws, vo := newTestFixtures(t)
	srv := NewControlServer(bus, ws, vo)

	path := filepath.Join(t.TempDir(), "control.sock")
	require.NoError(t, srv.Start(path))
	defer srv.Stop()

	conn, err := net.DialTimeout("unix", path, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	// Give serveConn time to register the connection before flooding it.
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < outboundCapacity+8; i++ {
		bus.Emit(eventbus.WorkspaceSwitched, nil)
	}

	// A non-reading client must never block the broadcaster; the server
	// should still be running afterwards and willing to serve a fresh
	// connection.
	time.Sleep(50 * time.Millisecond)

	conn2, err := net.DialTimeout("unix", path, time.Second)
	require.NoError(t, err)
	defer conn2.Close()

	bus.Emit(eventbus.WorkspaceSwitched, nil)

	conn2.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = bufio.NewReader(conn2).ReadString('\n')
	assert.NoError(t, err)
}
