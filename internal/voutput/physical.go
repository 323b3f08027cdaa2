// Package voutput implements spec §4.4: the virtual-output manager that
// decouples workspaces from physical displays and supports split/merge.
//
// The physical-display model (PhysicalDisplay, Edge, Source) is
// descended from the teacher's internal/display package — Monitor
// becomes PhysicalDisplay, extended with the millimetre fields spec §3
// requires for the physical layout router, and the collection of
// concrete wlr/x11/portal backends collapses to a single Source
// interface satisfied by internal/backend.
package voutput

import (
	"github.com/bnema/stilch/internal/geom"
)

// Transform mirrors the wl_output.transform enum (rotation/flip applied
// before scaling); values beyond Normal are carried through to the
// renderer (out of scope here). The router's logical<->mm conversion
// does not consult it.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// PhysicalDisplay is spec §3's PhysicalDisplay record: a real display
// plugged into the machine, maintained by the router only for displays
// that declare physical dimensions (PhysicalSizeMM != {0,0}).
type PhysicalDisplay struct {
	Name string

	PixelSize struct{ W, H int32 }

	// PhysicalSizeMM and PhysicalPositionMM place the display in a
	// shared millimetre coordinate space (spec §4.5). A zero
	// PhysicalSizeMM means the compositor could not read an EDID/output
	// descriptor for this display; the router excludes it from mm-space
	// routing and the cursor simply clamps at its logical edge.
	PhysicalSizeMM     struct{ W, H float64 }
	PhysicalPositionMM struct{ X, Y float64 }

	Scale     float64
	Transform Transform

	LogicalPosition struct{ X, Y int32 }
	LogicalSize     struct{ W, H int32 }
}

// LogicalRect returns the display's logical-pixel rectangle.
func (d *PhysicalDisplay) LogicalRect() geom.Rect {
	return geom.Rect{X: d.LogicalPosition.X, Y: d.LogicalPosition.Y, W: d.LogicalSize.W, H: d.LogicalSize.H}
}

// HasPhysicalSize reports whether physical dimensions are known.
func (d *PhysicalDisplay) HasPhysicalSize() bool {
	return d.PhysicalSizeMM.W > 0 && d.PhysicalSizeMM.H > 0
}

// MMRect returns the display's rectangle in millimetre space, undefined
// if HasPhysicalSize is false.
func (d *PhysicalDisplay) MMRect() geom.RectMM {
	return geom.RectMM{
		X: d.PhysicalPositionMM.X, Y: d.PhysicalPositionMM.Y,
		W: d.PhysicalSizeMM.W, H: d.PhysicalSizeMM.H,
	}
}

// DPI returns the display's dots-per-inch along each axis, derived from
// pixel size and physical size; used by the router's logical<->mm delta
// conversion (spec §4.5 step 4: 25.4 / (dpi/scale) per axis).
func (d *PhysicalDisplay) DPI() (x, y float64) {
	if !d.HasPhysicalSize() {
		return 0, 0
	}
	const mmPerInch = 25.4
	x = float64(d.PixelSize.W) / (d.PhysicalSizeMM.W / mmPerInch)
	y = float64(d.PixelSize.H) / (d.PhysicalSizeMM.H / mmPerInch)
	return x, y
}

// Source is the out-of-scope backend contract a real DRM/winit/X11
// implementation satisfies (spec §1: the DRM/GBM/KMS backend and dev
// backends are out of scope; only their contract is specified here).
// internal/backend provides the concrete implementations.
type Source interface {
	Displays() ([]*PhysicalDisplay, error)
	Close() error
}
