// Package protocol is the Wayland protocol exposure layer spec §1 calls
// out of scope for dispatch logic ("the compositor must expose them but
// their dispatch logic is mechanical"): it advertises the globals a
// client sees on connecting and routes each protocol's requests to the
// already-implemented core (internal/coordinator), without touching
// wire encoding, object lifetimes, or any other concern the real
// generated xdg-shell/layer-shell/wlr-protocols Go bindings would own.
package protocol

import (
	"fmt"

	"github.com/bnema/stilch/internal/coordinator"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
	"github.com/bnema/stilch/internal/layout"
	"github.com/bnema/stilch/internal/registry"
	"github.com/bnema/stilch/internal/resize"
)

// Global is one interface stilch advertises on its wl_registry, named
// and versioned per spec §1's explicit protocol list.
type Global struct {
	Name    string
	Version uint32
}

// AdvertisedGlobals lists every protocol stilch's registry exposes. The
// ordering matches spec §1's "Wayland protocol handlers" enumeration.
func AdvertisedGlobals() []Global {
	return []Global{
		{Name: "xdg_wm_base", Version: 6},
		{Name: "zwlr_layer_shell_v1", Version: 4},
		{Name: "wl_data_device_manager", Version: 3},
		{Name: "wl_seat", Version: 9},
		{Name: "wp_fractional_scale_manager_v1", Version: 1},
		{Name: "xdg_activation_v1", Version: 1},
		{Name: "wp_security_context_manager_v1", Version: 1},
	}
}

// ToplevelRole distinguishes an xdg_toplevel window from an
// xdg_popup, which this layer never hands to the coordinator as a
// tileable window.
type ToplevelRole int

const (
	RoleToplevel ToplevelRole = iota
	RolePopup
)

// XdgShell routes xdg_wm_base/xdg_surface/xdg_toplevel requests to a
// Coordinator. One instance handles every client connection; surfaceID
// is the xdg_surface's wire object ID.
type XdgShell struct {
	coord *coordinator.Coordinator
}

func NewXdgShell(coord *coordinator.Coordinator) *XdgShell {
	return &XdgShell{coord: coord}
}

// CreateToplevel is the mechanical handler for xdg_surface.get_toplevel:
// it registers the new surface as a managed window on the given virtual
// output. Popups (RolePopup) are never registered; the real dispatcher
// is expected to float them directly against their parent surface, a
// concern outside the core's window-management scope (§1).
func (x *XdgShell) CreateToplevel(surfaceID uint32, role ToplevelRole, vo ids.VirtualOutputId) (ids.WindowId, error) {
	if role == RolePopup {
		return 0, fmt.Errorf("protocol: popups are not managed windows")
	}
	return x.coord.AddWindow(registry.Element(surfaceID), vo)
}

// DestroyToplevel is the mechanical handler for xdg_toplevel.destroy /
// the surface's wl_surface being destroyed while it holds a toplevel
// role.
func (x *XdgShell) DestroyToplevel(id ids.WindowId) error {
	return x.coord.RemoveWindow(id)
}

// SetFullscreen is the handler for xdg_toplevel.set_fullscreen. The
// protocol request's optional wl_output hint is not taken: the window
// is fullscreened by mode alone, against its own workspace's virtual
// output (and, for PhysicalOutput, that output's first physical
// display), as Coordinator.SetWindowFullscreen computes it.
func (x *XdgShell) SetFullscreen(id ids.WindowId, mode registry.FullscreenMode) error {
	return x.coord.SetWindowFullscreen(id, true, mode)
}

// UnsetFullscreen is the handler for xdg_toplevel.unset_fullscreen.
func (x *XdgShell) UnsetFullscreen(id ids.WindowId, mode registry.FullscreenMode) error {
	return x.coord.SetWindowFullscreen(id, false, mode)
}

// RequestResize is the handler for xdg_toplevel.resize: the client's
// pointer-button grab names which edges it's dragging, and the
// compositor starts the resize-ack state machine (spec §5) seeded with
// the window's current geometry.
func (x *XdgShell) RequestResize(id ids.WindowId, edges resize.Edge) (geom.Rect, error) {
	rect, ok := x.coord.BeginResize(id, edges)
	if !ok {
		return geom.Rect{}, fmt.Errorf("protocol: resize: unknown window %d", id)
	}
	return rect, nil
}

// UpdateResize is the handler for the live pointer motion driving an
// interactive resize grab.
func (x *XdgShell) UpdateResize(rect geom.Rect) {
	x.coord.UpdateResize(rect)
}

// SendConfigure is called once the compositor has computed the final
// geometry for an interactive resize and is about to send the
// client's xdg_toplevel.configure, naming the serial the client's
// ack_configure must echo.
func (x *XdgShell) SendConfigure(serial uint32) {
	x.coord.FinishResize(serial)
}

// AckConfigure is the handler for xdg_surface.ack_configure while a
// resize is in flight.
func (x *XdgShell) AckConfigure(serial uint32) bool {
	return x.coord.AckResize(serial)
}

// CommitResize is the handler for the client's buffer commit that
// matches an acked resize: applies the negotiated geometry and returns
// the resize-ack machine to idle.
func (x *XdgShell) CommitResize() (ids.WindowId, geom.Rect, bool) {
	return x.coord.CommitResize()
}

// CancelResize is the handler for a resize grab ending without ever
// reaching WaitingForCommit (e.g. the pointer button release races a
// surface destroy).
func (x *XdgShell) CancelResize() bool {
	return x.coord.CancelResize()
}

// LayerShell routes zwlr_layer_shell_v1 requests. Layer-shell surfaces
// (bars, launchers, notification popups) reserve screen space via
// exclusive zones rather than joining the workspace tree, so this
// forwards directly to Coordinator.SetExclusiveZone instead of
// AddWindow/RemoveWindow.
type LayerShell struct {
	coord *coordinator.Coordinator
}

func NewLayerShell(coord *coordinator.Coordinator) *LayerShell {
	return &LayerShell{coord: coord}
}

// LayerAnchor mirrors zwlr_layer_surface_v1's anchor bitmask (top,
// bottom, left, right edges).
type LayerAnchor uint32

const (
	AnchorTop LayerAnchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// SetExclusiveZone is the handler for zwlr_layer_surface_v1's
// set_exclusive_zone request combined with its anchor: the anchored
// edge determines which of Top/Bottom/Left/Right the reserved thickness
// applies to.
func (l *LayerShell) SetExclusiveZone(displayName string, anchor LayerAnchor, thickness int32) error {
	var zones layout.ExclusiveZones
	switch {
	case anchor&AnchorTop != 0:
		zones.Top = thickness
	case anchor&AnchorBottom != 0:
		zones.Bottom = thickness
	case anchor&AnchorLeft != 0:
		zones.Left = thickness
	case anchor&AnchorRight != 0:
		zones.Right = thickness
	default:
		return fmt.Errorf("protocol: layer surface has no anchor set")
	}
	l.coord.SetExclusiveZone(displayName, zones)
	return nil
}

// Seat routes wl_seat requests: capability advertisement plus the
// pointer-motion and button events the router and coordinator need.
// Keyboard/touch capability bits are advertised but their event
// delivery is out of scope (§1): the compositor routes key events to
// whichever surface currently holds focus without any core-side
// bookkeeping beyond Coordinator.FocusedWindow.
type Seat struct {
	coord *coordinator.Coordinator
}

func NewSeat(coord *coordinator.Coordinator) *Seat {
	return &Seat{coord: coord}
}

// Capabilities is the wl_seat.capabilities bitmask this compositor
// always advertises: pointer, keyboard, no touch.
func (s *Seat) Capabilities() uint32 {
	const (
		capPointer  = 1
		capKeyboard = 2
	)
	return capPointer | capKeyboard
}

// PointerButton is the handler for wl_pointer.button: a button press
// while the pointer is over a surface focuses that surface's window.
func (s *Seat) PointerButton(id ids.WindowId, pressed bool) error {
	if !pressed {
		return nil
	}
	return s.coord.FocusWindow(id)
}

// DataDevice routes wl_data_device_manager/wl_data_device requests
// (copy/paste and drag-and-drop). The core has no clipboard or drag
// state of its own (§1: "the IPC sockets and the keybinding parser" are
// the only stateful additions core-adjacent; clipboard contents are
// opaque MIME payloads the compositor forwards, never interpreted).
type DataDevice struct{}

func NewDataDevice() *DataDevice { return &DataDevice{} }

// Forward is the mechanical pass-through for a data offer: the
// compositor never inspects a clipboard payload, only relays it between
// the two clients holding keyboard/pointer focus.
func (d *DataDevice) Forward(mimeType string, payload []byte) (string, []byte) {
	return mimeType, payload
}

// FractionalScale routes wp_fractional_scale_manager_v1 requests: each
// surface gets its owning virtual output's physical display scale,
// expressed in the protocol's 120ths-of-a-unit fixed point.
type FractionalScale struct {
	coord *coordinator.Coordinator
}

func NewFractionalScale(coord *coordinator.Coordinator) *FractionalScale {
	return &FractionalScale{coord: coord}
}

// PreferredScale returns the wp_fractional_scale_v1.preferred_scale
// value (scale * 120, per the protocol's fixed-point convention) for a
// window, derived from its physical display's DPI-driven scale factor.
func (f *FractionalScale) PreferredScale(id ids.WindowId, displayScale float64) uint32 {
	return uint32(displayScale * 120)
}

// XdgActivation routes xdg_activation_v1 requests: a client asks to
// raise and focus a surface, optionally presenting a token a second
// client granted it (e.g. a launcher activating the app it just
// started). stilch does not implement activation tokens' serial/timing
// validation (out of scope mechanical dispatch, §1); any token is
// honoured immediately.
type XdgActivation struct {
	coord *coordinator.Coordinator
}

func NewXdgActivation(coord *coordinator.Coordinator) *XdgActivation {
	return &XdgActivation{coord: coord}
}

// Activate is the handler for xdg_activation_v1.activate.
func (a *XdgActivation) Activate(id ids.WindowId) error {
	return a.coord.FocusWindow(id)
}

// SecurityContext routes wp_security_context_manager_v1 requests: a
// sandboxed client (e.g. an XWayland helper) declares a sandbox engine
// and app ID for the connections it creates. stilch records nothing
// beyond accepting the declaration — no sandboxed-surface restriction
// is implemented (out of scope, §1).
type SecurityContext struct{}

func NewSecurityContext() *SecurityContext { return &SecurityContext{} }

// Declare is the handler for wp_security_context_v1.commit.
func (s *SecurityContext) Declare(sandboxEngine, appID string) error {
	if sandboxEngine == "" {
		return fmt.Errorf("protocol: security context requires a sandbox engine")
	}
	return nil
}
