// Package router implements spec §4.5: the physical layout router that
// moves the cursor across displays of differing DPI and physical
// position as though it were a single continuous physical surface.
//
// It is grounded on the teacher's internal/input/edge_detector.go: the
// same "track a last-known logical position, ask the display layer
// where an edge is, decide what happens when the cursor crosses it"
// shape, generalized from a single pixel threshold check against one
// active display to the full millimetre-space neighbour search of §4.5.
// The polling goroutine and host-hopping callbacks the teacher's
// EdgeDetector needs for its cross-machine SSH transport are dropped:
// stilch routes pointer motion synchronously inside the event loop, so
// there is nothing here to poll or hand off to a network client.
package router

import (
	"github.com/bnema/stilch/internal/corerr"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/voutput"
)

// perpendicularToleranceMM is the slack (spec §4.5 step 6) allowed when
// deciding whether a candidate neighbour "overlaps" the perpendicular
// range of the target point at a crossed boundary.
const perpendicularToleranceMM = 10.0

// clampInsetMM is the inset used when clamping a target point into a
// neighbour's (or the current display's) mm-bounds so the point never
// lands exactly on a shared edge, which would make the next motion's
// "which display contains this point" test ambiguous.
const clampInsetMM = 0.1

// Router resolves cursor motion against the virtual output manager's
// registered physical displays. It holds no state of its own — the
// event loop is the single source of truth for the current cursor
// position, passed in on every call — so, like registry/workspace/
// voutput, it needs no mutex.
type Router struct {
	vo *voutput.Manager
}

// New returns a router reading physical displays from vo.
func New(vo *voutput.Manager) *Router {
	return &Router{vo: vo}
}

// displayAt returns the physical display whose logical rect contains p,
// if any.
func (r *Router) displayAt(p geom.Point) (*voutput.PhysicalDisplay, bool) {
	for _, d := range r.vo.Displays() {
		if d.LogicalRect().Contains(p.X, p.Y) {
			return d, true
		}
	}
	return nil, false
}

// logicalToMM converts a logical point known to lie within d's logical
// rect into d's millimetre space.
func logicalToMM(d *voutput.PhysicalDisplay, p geom.Point) geom.PointMM {
	lr := d.LogicalRect()
	nx := float64(p.X-lr.X) / float64(lr.W)
	ny := float64(p.Y-lr.Y) / float64(lr.H)
	return geom.PointMM{
		X: d.PhysicalPositionMM.X + nx*d.PhysicalSizeMM.W,
		Y: d.PhysicalPositionMM.Y + ny*d.PhysicalSizeMM.H,
	}
}

// mmToLogical is logicalToMM's inverse, converting a millimetre point
// known to lie within d's mm-bounds back to d's logical rect.
func mmToLogical(d *voutput.PhysicalDisplay, p geom.PointMM) geom.Point {
	lr := d.LogicalRect()
	nx := (p.X - d.PhysicalPositionMM.X) / d.PhysicalSizeMM.W
	ny := (p.Y - d.PhysicalPositionMM.Y) / d.PhysicalSizeMM.H
	return geom.Point{
		X: lr.X + int32(nx*float64(lr.W)+0.5),
		Y: lr.Y + int32(ny*float64(lr.H)+0.5),
	}
}

// mmRectOf returns d's mm-space bounding rectangle.
func mmRectOf(d *voutput.PhysicalDisplay) geom.RectMM { return d.MMRect() }

// HandleRelativeMotion is spec §4.5's handle_relative_motion: given the
// current logical cursor position and a relative motion delta (also in
// logical pixels), returns the new logical position, routing across
// display boundaries in millimetre space where possible and falling
// back to an edge clamp or a "gap jump" to the nearest display in the
// direction of motion.
func (r *Router) HandleRelativeMotion(current geom.Point, delta geom.Point) geom.Point {
	currentDisplay, ok := r.displayAt(current)
	if !ok {
		// Step 1: no display contains current_logical (e.g. cursor
		// already off every known display). Try the target instead; if
		// that also misses, there is nothing to route against.
		target := geom.Point{X: current.X + delta.X, Y: current.Y + delta.Y}
		if d, ok := r.displayAt(target); ok {
			currentDisplay = d
		} else {
			return target
		}
	}

	newLogical := geom.Point{X: current.X + delta.X, Y: current.Y + delta.Y}
	if currentDisplay.LogicalRect().Contains(newLogical.X, newLogical.Y) {
		// Step 2: motion stays within the current display.
		return newLogical
	}

	if !currentDisplay.HasPhysicalSize() {
		// No millimetre model for this display; clamp at its logical edge.
		return clampToDisplay(currentDisplay, newLogical)
	}

	currentMM := logicalToMM(currentDisplay, current)
	dpiX, dpiY := currentDisplay.DPI()
	if dpiX == 0 || dpiY == 0 {
		return clampToDisplay(currentDisplay, newLogical)
	}
	const mmPerInch = 25.4
	deltaMM := geom.PointMM{
		X: float64(delta.X) * (mmPerInch / (dpiX / currentDisplay.Scale)),
		Y: float64(delta.Y) * (mmPerInch / (dpiY / currentDisplay.Scale)),
	}
	targetMM := geom.PointMM{X: currentMM.X + deltaMM.X, Y: currentMM.Y + deltaMM.Y}

	// Step 5: does some display's mm-bounds directly contain target_mm?
	for _, d := range r.vo.Displays() {
		if !d.HasPhysicalSize() {
			continue
		}
		if mmRectOf(d).Contains(targetMM) {
			return mmToLogical(d, targetMM)
		}
	}

	// Step 6: single-boundary crossing -> gap jump to nearest neighbour.
	curMM := mmRectOf(currentDisplay)
	crossedLeft := targetMM.X < curMM.X
	crossedRight := targetMM.X > curMM.X+curMM.W
	crossedTop := targetMM.Y < curMM.Y
	crossedBottom := targetMM.Y > curMM.Y+curMM.H

	singleBoundary := boolToInt(crossedLeft) + boolToInt(crossedRight) + boolToInt(crossedTop) + boolToInt(crossedBottom) == 1
	if singleBoundary {
		if best, ok := r.nearestNeighbour(currentDisplay, targetMM, crossedLeft, crossedRight, crossedTop, crossedBottom); ok {
			clamped := clampMM(mmRectOf(best), targetMM, clampInsetMM)
			return mmToLogical(best, clamped)
		}
	}

	// Step 7: diagonal crossing, or no candidate found — clamp within
	// the current display.
	return clampToDisplay(currentDisplay, newLogical)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nearestNeighbour searches, among all registered displays other than
// current, those lying in the half-plane the crossed boundary implies
// and whose mm-extent overlaps target's perpendicular coordinate within
// perpendicularToleranceMM, returning the one with the smallest
// edge-to-edge mm distance from current.
func (r *Router) nearestNeighbour(current *voutput.PhysicalDisplay, target geom.PointMM, left, right, top, bottom bool) (*voutput.PhysicalDisplay, bool) {
	curMM := mmRectOf(current)

	var best *voutput.PhysicalDisplay
	bestDist := -1.0

	for _, d := range r.vo.Displays() {
		if d == current || !d.HasPhysicalSize() {
			continue
		}
		dMM := mmRectOf(d)

		var inHalfPlane bool
		var dist float64
		switch {
		case left:
			inHalfPlane = dMM.X+dMM.W <= curMM.X
			dist = curMM.X - (dMM.X + dMM.W)
		case right:
			inHalfPlane = dMM.X >= curMM.X+curMM.W
			dist = dMM.X - (curMM.X + curMM.W)
		case top:
			inHalfPlane = dMM.Y+dMM.H <= curMM.Y
			dist = curMM.Y - (dMM.Y + dMM.H)
		case bottom:
			inHalfPlane = dMM.Y >= curMM.Y+curMM.H
			dist = dMM.Y - (curMM.Y + curMM.H)
		}
		if !inHalfPlane || dist < 0 {
			continue
		}

		var overlaps bool
		if left || right {
			overlaps = target.Y >= dMM.Y-perpendicularToleranceMM && target.Y <= dMM.Y+dMM.H+perpendicularToleranceMM
		} else {
			overlaps = target.X >= dMM.X-perpendicularToleranceMM && target.X <= dMM.X+dMM.W+perpendicularToleranceMM
		}
		if !overlaps {
			continue
		}

		if best == nil || dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best, best != nil
}

// clampMM moves p into rect, inset by amt on every edge.
func clampMM(rect geom.RectMM, p geom.PointMM, amt float64) geom.PointMM {
	return rect.Clamp(p, amt)
}

// clampToDisplay clamps p into d's logical rect (spec §4.5 step 7).
func clampToDisplay(d *voutput.PhysicalDisplay, p geom.Point) geom.Point {
	x, y := d.LogicalRect().Clamp(p.X, p.Y)
	return geom.Point{X: x, Y: y}
}

// HandleAbsoluteMotion is spec §4.5's handle_absolute_motion: maps a
// normalized [0,1]^2 coordinate linearly onto output's logical
// rectangle.
func (r *Router) HandleAbsoluteMotion(output *voutput.PhysicalDisplay, normalizedX, normalizedY float64) (geom.Point, error) {
	if output == nil {
		return geom.Point{}, corerr.New(corerr.InvalidOperation, "router: absolute motion requires a target display")
	}
	lr := output.LogicalRect()
	return geom.Point{
		X: lr.X + int32(normalizedX*float64(lr.W)+0.5),
		Y: lr.Y + int32(normalizedY*float64(lr.H)+0.5),
	}, nil
}
