// Package backend selects and starts one of stilch's four display
// backends. Everything past backend selection — the DRM/GBM/KMS device,
// the GPU rendering pipeline and damage tracker, the nested winit/X11
// development windows — is explicitly out of scope (spec §1): this
// package exposes only the Backend contract §1/§6 name, plus the one
// piece of backend bring-up SPEC_FULL wires to a real dependency, the
// tty-udev backend's virtual input device.
package backend

import (
	"context"
	"fmt"

	"github.com/bnema/stilch/internal/coordinator"
	"github.com/bnema/stilch/internal/logger"
	"github.com/ThomasT75/uinput"
)

// Kind names the four backends §6's CLI flags select between.
type Kind string

const (
	Winit   Kind = "winit"
	X11     Kind = "x11"
	TTYUDev Kind = "tty-udev"
	Test    Kind = "test"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Winit, X11, TTYUDev, Test:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("backend: unknown kind %q", s)
	}
}

// Backend is the contract every display backend implements: it owns the
// render loop and input plumbing until ctx is cancelled, or it fails to
// come up at all (§6: "Exit code 0 on clean shutdown, non-zero on
// backend initialisation failure").
type Backend interface {
	Name() string
	Run(ctx context.Context) error
	Close() error
}

// Injector is implemented by backends that accept synthetic relative
// pointer motion (currently only the tty-udev backend's uinput device).
// cmd/test-inject type-asserts a constructed Backend against this
// interface rather than calling through the router/coordinator, so it
// can exercise the virtual pointer without a live compositor session.
type Injector interface {
	InjectRelativeMotion(dx, dy int32) error
}

// New constructs the backend for kind. Winit and X11 are nested
// development backends (run inside an existing desktop session for
// iteration); both are mechanical stubs here, since their GPU
// presentation path is out of scope (§1). TTYUDev is the bare-metal DRM
// backend and is the one variant wired to a real device: it acquires a
// uinput virtual pointer so the DRM backend (and the `test-inject`
// developer tool) can feed the router synthetic motion without a real
// mouse attached to the box.
func New(kind Kind, coord *coordinator.Coordinator) (Backend, error) {
	switch kind {
	case Winit:
		return &stubBackend{name: "winit"}, nil
	case X11:
		return &stubBackend{name: "x11"}, nil
	case TTYUDev:
		return newTTYUDevBackend(coord)
	case Test:
		return nil, fmt.Errorf("backend: Test kind is constructed by internal/testbackend, not backend.New")
	default:
		return nil, fmt.Errorf("backend: unknown kind %q", kind)
	}
}

// stubBackend represents the winit/X11 development backends: nested
// nested windows are how compositor authors iterate without a spare
// GPU/TTY, but the windowing toolkit integration and GPU surface
// presentation are out of scope (§1). Run blocks until ctx is
// cancelled, matching how every other backend behaves from main.go's
// perspective.
type stubBackend struct {
	name string
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Run(ctx context.Context) error {
	logger.Infof("%s backend: presentation surface not implemented (out of scope); idling until shutdown", s.name)
	<-ctx.Done()
	return nil
}

func (s *stubBackend) Close() error { return nil }

// ttyUDevBackend is the bare-metal DRM/KMS backend. The DRM device
// itself, mode-setting, and the GPU rendering pipeline are out of scope
// (§1); what is wired here is the virtual pointer device the backend
// acquires from uinput so synthetic pointer motion (router-driven cursor
// warps across virtual outputs, and cmd test-inject's developer motion
// feed) reaches the kernel input subsystem the way a physical mouse
// would.
type ttyUDevBackend struct {
	coord   *coordinator.Coordinator
	pointer uinput.Mouse
}

func newTTYUDevBackend(coord *coordinator.Coordinator) (*ttyUDevBackend, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte("stilch virtual pointer"))
	if err != nil {
		return nil, fmt.Errorf("backend: tty-udev: acquiring virtual pointer: %w", err)
	}
	return &ttyUDevBackend{coord: coord, pointer: mouse}, nil
}

func (t *ttyUDevBackend) Name() string { return "tty-udev" }

func (t *ttyUDevBackend) Run(ctx context.Context) error {
	logger.Info("tty-udev backend: DRM/KMS device and GPU pipeline not implemented (out of scope); virtual pointer is live")
	<-ctx.Done()
	return nil
}

func (t *ttyUDevBackend) Close() error {
	if t.pointer != nil {
		return t.pointer.Close()
	}
	return nil
}

// InjectRelativeMotion feeds a synthetic relative pointer motion through
// the backend's uinput device, the mechanism cmd test-inject uses to
// exercise the router without physical hardware.
func (t *ttyUDevBackend) InjectRelativeMotion(dx, dy int32) error {
	if t.pointer == nil {
		return fmt.Errorf("backend: tty-udev: pointer device not open")
	}
	return t.pointer.Move(dx, dy)
}
