package layout

import "github.com/bnema/stilch/internal/geom"

// ExclusiveZones is the amount of space layer-shell surfaces have
// reserved on each edge of a physical output (spec §4.6 supplemented
// feature 3: exclusive-zone reservation).
type ExclusiveZones struct {
	Top, Bottom, Left, Right int32
}

// EffectiveArea returns region with zones subtracted from whichever of
// its edges coincide with the physical output's edges. Only edges the
// virtual output actually shares with the physical output are affected;
// a virtual output that is a sub-rectangle of a split display is
// unaffected by a zone reserved on an edge it doesn't touch.
func EffectiveArea(region geom.Rect, physical geom.Rect, zones ExclusiveZones) geom.Rect {
	area := region
	if region.Y == physical.Y {
		area.Y += zones.Top
		area.H -= zones.Top
	}
	if region.Y+region.H == physical.Y+physical.H {
		area.H -= zones.Bottom
	}
	if region.X == physical.X {
		area.X += zones.Left
		area.W -= zones.Left
	}
	if region.X+region.W == physical.X+physical.W {
		area.W -= zones.Right
	}
	return area
}
