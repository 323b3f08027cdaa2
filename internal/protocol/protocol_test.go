package protocol

import (
	"testing"

	"github.com/bnema/stilch/internal/coordinator"
	"github.com/bnema/stilch/internal/eventbus"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/registry"
	"github.com/bnema/stilch/internal/resize"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/bnema/stilch/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCoordinator(t *testing.T) (*coordinator.Coordinator, ids.VirtualOutputId) {
	t.Helper()
	vo := voutput.New()
	display := &voutput.PhysicalDisplay{Name: "LEFT"}
	display.LogicalSize.W, display.LogicalSize.H = 1920, 1080
	vo.RegisterDisplay(display)
	id, err := vo.CreateFromPhysical("LEFT", display.LogicalRect())
	require.NoError(t, err)

	c := coordinator.New(registry.New(), workspace.New(), vo, eventbus.New())
	return c, id
}

func TestAdvertisedGlobalsIncludesEveryProtocol(t *testing.T) {
	globals := AdvertisedGlobals()
	names := make(map[string]bool)
	for _, g := range globals {
		names[g.Name] = true
	}
	for _, want := range []string{
		"xdg_wm_base",
		"zwlr_layer_shell_v1",
		"wl_data_device_manager",
		"wl_seat",
		"wp_fractional_scale_manager_v1",
		"xdg_activation_v1",
		"wp_security_context_manager_v1",
	} {
		assert.True(t, names[want], "missing global %q", want)
	}
}

func TestXdgShellCreateToplevelAddsWindow(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)

	id, err := shell.CreateToplevel(42, RoleToplevel, vo)
	require.NoError(t, err)

	focused, ok := c.FocusedWindow()
	assert.True(t, ok)
	assert.Equal(t, id, focused)
}

func TestXdgShellCreateToplevelRejectsPopup(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)

	_, err := shell.CreateToplevel(42, RolePopup, vo)
	assert.Error(t, err)
}

func TestXdgShellDestroyToplevelRemovesWindow(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)

	id, err := shell.CreateToplevel(1, RoleToplevel, vo)
	require.NoError(t, err)
	require.NoError(t, shell.DestroyToplevel(id))

	_, ok := c.WindowWorkspace(id)
	assert.False(t, ok)
}

func TestXdgShellFullscreenRoundTrips(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)
	id, err := shell.CreateToplevel(1, RoleToplevel, vo)
	require.NoError(t, err)

	require.NoError(t, shell.SetFullscreen(id, registry.FullscreenVirtualOutput))
	require.NoError(t, shell.UnsetFullscreen(id, registry.FullscreenVirtualOutput))
}

func TestLayerShellSetExclusiveZoneAnchorTop(t *testing.T) {
	c, vo := testCoordinator(t)
	ls := NewLayerShell(c)

	require.NoError(t, ls.SetExclusiveZone("LEFT", AnchorTop, 30))

	area, ok := c.EffectiveArea(vo)
	require.True(t, ok)
	assert.EqualValues(t, 30, area.Y)
}

func TestLayerShellSetExclusiveZoneRequiresAnchor(t *testing.T) {
	c, _ := testCoordinator(t)
	ls := NewLayerShell(c)

	err := ls.SetExclusiveZone("LEFT", 0, 30)
	assert.Error(t, err)
}

func TestSeatCapabilitiesAdvertisesPointerAndKeyboard(t *testing.T) {
	c, _ := testCoordinator(t)
	seat := NewSeat(c)
	caps := seat.Capabilities()
	assert.NotZero(t, caps&1)
	assert.NotZero(t, caps&2)
}

func TestSeatPointerButtonFocusesOnPress(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)
	a, err := shell.CreateToplevel(1, RoleToplevel, vo)
	require.NoError(t, err)
	_, err = shell.CreateToplevel(2, RoleToplevel, vo)
	require.NoError(t, err)

	seat := NewSeat(c)
	require.NoError(t, seat.PointerButton(a, true))

	focused, ok := c.FocusedWindow()
	require.True(t, ok)
	assert.Equal(t, a, focused)
}

func TestXdgActivationActivateFocuses(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)
	a, err := shell.CreateToplevel(1, RoleToplevel, vo)
	require.NoError(t, err)
	_, err = shell.CreateToplevel(2, RoleToplevel, vo)
	require.NoError(t, err)

	act := NewXdgActivation(c)
	require.NoError(t, act.Activate(a))

	focused, ok := c.FocusedWindow()
	require.True(t, ok)
	assert.Equal(t, a, focused)
}

func TestSecurityContextDeclareRequiresSandboxEngine(t *testing.T) {
	sc := NewSecurityContext()
	assert.Error(t, sc.Declare("", "org.example.App"))
	assert.NoError(t, sc.Declare("bwrap", "org.example.App"))
}

func TestDataDeviceForwardIsOpaquePassthrough(t *testing.T) {
	d := NewDataDevice()
	mime, payload := d.Forward("text/plain", []byte("hello"))
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, []byte("hello"), payload)
}

func TestFractionalScalePreferredScaleUsesFixedPoint(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)
	id, err := shell.CreateToplevel(1, RoleToplevel, vo)
	require.NoError(t, err)

	fs := NewFractionalScale(c)
	assert.EqualValues(t, 180, fs.PreferredScale(id, 1.5))
}

func TestXdgShellResizeRoundTrip(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)
	id, err := shell.CreateToplevel(1, RoleToplevel, vo)
	require.NoError(t, err)

	rect, err := shell.RequestResize(id, resize.EdgeBottomRight)
	require.NoError(t, err)

	grown := rect
	grown.W += 50
	grown.H += 20
	shell.UpdateResize(grown)
	shell.SendConfigure(7)

	assert.True(t, shell.AckConfigure(7))

	window, finalRect, ok := shell.CommitResize()
	require.True(t, ok)
	assert.Equal(t, id, window)
	assert.Equal(t, grown, finalRect)
}

func TestXdgShellResizeRejectsUnknownWindow(t *testing.T) {
	c, _ := testCoordinator(t)
	shell := NewXdgShell(c)

	_, err := shell.RequestResize(999, resize.EdgeLeft)
	assert.Error(t, err)
}

func TestXdgShellResizeSupersededBySecondGrab(t *testing.T) {
	c, vo := testCoordinator(t)
	shell := NewXdgShell(c)
	a, err := shell.CreateToplevel(1, RoleToplevel, vo)
	require.NoError(t, err)
	b, err := shell.CreateToplevel(2, RoleToplevel, vo)
	require.NoError(t, err)

	_, err = shell.RequestResize(a, resize.EdgeRight)
	require.NoError(t, err)
	shell.SendConfigure(1)

	_, err = shell.RequestResize(b, resize.EdgeLeft)
	require.NoError(t, err)

	assert.False(t, shell.AckConfigure(1))
}
