package voutput

import (
	"fmt"
	"sort"

	"github.com/bnema/stilch/internal/corerr"
	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/ids"
)

// VirtualOutput is spec §3's VirtualOutput record: the unit workspaces
// are actually shown on. It always spans at least one physical output
// (construction mode 1), a sub-rectangle of exactly one (mode 2, via
// SplitPhysical), or a union of several (mode 3, via CreateVirtualOutput).
type VirtualOutput struct {
	ID              ids.VirtualOutputId
	Name            string
	PhysicalOutputs []string
	LogicalRegion   geom.Rect
	ActiveWorkspace *ids.WorkspaceId
}

// Manager owns the set of known physical displays and the virtual
// outputs carved out of them (spec §4.4). Like registry and workspace,
// it is single-threaded core state: the event loop owns it exclusively
// and no mutex guards it.
type Manager struct {
	displays map[string]*PhysicalDisplay
	outputs  map[ids.VirtualOutputId]*VirtualOutput
	order    []ids.VirtualOutputId
	alloc    ids.VirtualOutputAllocator
}

// New returns a manager with no displays registered.
func New() *Manager {
	return &Manager{
		displays: make(map[string]*PhysicalDisplay),
		outputs:  make(map[ids.VirtualOutputId]*VirtualOutput),
	}
}

// RegisterDisplay adds or replaces the physical display d, keyed by
// name. Replacing an existing entry (e.g. a mode-set change) does not
// touch any virtual output already carved from it; the coordinator is
// responsible for recomputing workspace areas afterwards.
func (m *Manager) RegisterDisplay(d *PhysicalDisplay) {
	m.displays[d.Name] = d
}

// Display returns the physical display registered under name.
func (m *Manager) Display(name string) (*PhysicalDisplay, bool) {
	d, ok := m.displays[name]
	return d, ok
}

func (m *Manager) insert(vo *VirtualOutput) {
	m.outputs[vo.ID] = vo
	m.order = append(m.order, vo.ID)
}

// regionFitsDisplay enforces invariant I1 (every virtual output's
// logical region lies within the geometry of the physical output(s) it
// spans) for the single-display case.
func regionFitsDisplay(region geom.Rect, d *PhysicalDisplay) bool {
	lr := d.LogicalRect()
	return region.X >= lr.X && region.Y >= lr.Y &&
		region.X+region.W <= lr.X+lr.W && region.Y+region.H <= lr.Y+lr.H
}

// overlapsExisting enforces invariant I2 (virtual output regions
// sharing a physical output never overlap) for a proposed region on
// display name.
func (m *Manager) overlapsExisting(name string, region geom.Rect) bool {
	for _, vo := range m.outputs {
		shares := false
		for _, p := range vo.PhysicalOutputs {
			if p == name {
				shares = true
				break
			}
		}
		if shares && vo.LogicalRegion.Intersects(region) {
			return true
		}
	}
	return false
}

// CreateFromPhysical wraps the whole of, or a sub-rectangle of, a
// single physical output in a new virtual output (construction modes 1
// and 2's single-region case). region must lie within the display's
// logical geometry and must not overlap any virtual output already
// carved from it.
func (m *Manager) CreateFromPhysical(displayName string, region geom.Rect) (ids.VirtualOutputId, error) {
	d, ok := m.displays[displayName]
	if !ok {
		return 0, corerr.Newf(corerr.NotFound, "voutput: unknown physical display %q", displayName)
	}
	if !regionFitsDisplay(region, d) {
		return 0, corerr.Newf(corerr.InvalidOperation, "voutput: region exceeds geometry of display %q", displayName)
	}
	if m.overlapsExisting(displayName, region) {
		return 0, corerr.Newf(corerr.InvalidOperation, "voutput: region overlaps an existing virtual output on %q", displayName)
	}

	id := m.alloc.Next()
	vo := &VirtualOutput{
		ID:              id,
		Name:            id.String(),
		PhysicalOutputs: []string{displayName},
		LogicalRegion:   region,
	}
	m.insert(vo)
	return id, nil
}

// SplitPhysical carves region on displayName into n equal sub-rectangles
// along split, each becoming its own virtual output (construction mode
// 2). Residue from integer division is absorbed by the last
// sub-rectangle, mirroring the layout tree's splitSizes technique so
// the sum of sub-rectangle extents equals region's extent exactly.
func (m *Manager) SplitPhysical(displayName string, region geom.Rect, split geom.SplitDirection, n int) ([]ids.VirtualOutputId, error) {
	if n < 1 {
		return nil, corerr.Newf(corerr.InvalidOperation, "voutput: split count must be >= 1, got %d", n)
	}
	d, ok := m.displays[displayName]
	if !ok {
		return nil, corerr.Newf(corerr.NotFound, "voutput: unknown physical display %q", displayName)
	}
	if !regionFitsDisplay(region, d) {
		return nil, corerr.Newf(corerr.InvalidOperation, "voutput: region exceeds geometry of display %q", displayName)
	}
	if m.overlapsExisting(displayName, region) {
		return nil, corerr.Newf(corerr.InvalidOperation, "voutput: region overlaps an existing virtual output on %q", displayName)
	}

	created := make([]ids.VirtualOutputId, n)
	offset := int32(0)
	total := region.W
	if split == geom.Vertical {
		total = region.H
	}
	sizes := equalSplit(total, n)

	for i := 0; i < n; i++ {
		sub := region
		if split == geom.Horizontal {
			sub.X = region.X + offset
			sub.W = sizes[i]
		} else {
			sub.Y = region.Y + offset
			sub.H = sizes[i]
		}
		offset += sizes[i]

		id := m.alloc.Next()
		vo := &VirtualOutput{
			ID:              id,
			Name:            id.String(),
			PhysicalOutputs: []string{displayName},
			LogicalRegion:   sub,
		}
		m.insert(vo)
		created[i] = id
	}
	return created, nil
}

// equalSplit divides total into n parts as equal as possible, the last
// part absorbing the rounding residue.
func equalSplit(total int32, n int) []int32 {
	sizes := make([]int32, n)
	base := total / int32(n)
	for i := 0; i < n-1; i++ {
		sizes[i] = base
	}
	sizes[n-1] = total - base*int32(n-1)
	return sizes
}

// CreateVirtualOutput unions several physical outputs into one virtual
// output spanning region (construction mode 3). region must lie within
// the union of the named displays' logical geometry.
func (m *Manager) CreateVirtualOutput(name string, displayNames []string, region geom.Rect) (ids.VirtualOutputId, error) {
	if len(displayNames) == 0 {
		return 0, corerr.New(corerr.InvalidOperation, "voutput: virtual output must span at least one physical output")
	}
	for _, dn := range displayNames {
		if _, ok := m.displays[dn]; !ok {
			return 0, corerr.Newf(corerr.NotFound, "voutput: unknown physical display %q", dn)
		}
		if m.overlapsExisting(dn, region) {
			return 0, corerr.Newf(corerr.InvalidOperation, "voutput: region overlaps an existing virtual output on %q", dn)
		}
	}
	if !m.regionWithinUnion(displayNames, region) {
		return 0, corerr.New(corerr.InvalidOperation, "voutput: region is not covered by the union of the named physical outputs")
	}

	id := m.alloc.Next()
	vo := &VirtualOutput{
		ID:              id,
		Name:            name,
		PhysicalOutputs: append([]string(nil), displayNames...),
		LogicalRegion:   region,
	}
	m.insert(vo)
	return id, nil
}

// regionWithinUnion reports whether region is covered by the union of
// the named displays' logical rectangles, by checking that each of
// region's four corner pixels lies on at least one of those displays.
// This is adequate for the contiguous, non-overlapping monitor
// arrangements a real output-management protocol reports; a gap inside
// region is not detected as long as all four corners land on displays.
func (m *Manager) regionWithinUnion(displayNames []string, region geom.Rect) bool {
	corners := []geom.Rect{
		{X: region.X, Y: region.Y, W: 1, H: 1},
		{X: region.X + region.W - 1, Y: region.Y, W: 1, H: 1},
		{X: region.X, Y: region.Y + region.H - 1, W: 1, H: 1},
		{X: region.X + region.W - 1, Y: region.Y + region.H - 1, W: 1, H: 1},
	}
	for _, c := range corners {
		covered := false
		for _, dn := range displayNames {
			d := m.displays[dn]
			if d.LogicalRect().Intersects(c) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// RemovePhysicalOutput unregisters a display (e.g. unplug) and returns
// the ids of every virtual output that was hosted solely on it; those
// virtual outputs are deleted. A virtual output spanning several
// physical outputs survives with the unplugged display dropped from
// its PhysicalOutputs list (spec §4.4 invariant: PhysicalOutputs is
// never empty while the virtual output exists). The coordinator is
// responsible for re-homing any workspace mounted on a removed virtual
// output.
func (m *Manager) RemovePhysicalOutput(displayName string) []ids.VirtualOutputId {
	delete(m.displays, displayName)

	var removed []ids.VirtualOutputId
	var survivingOrder []ids.VirtualOutputId
	for _, id := range m.order {
		vo, ok := m.outputs[id]
		if !ok {
			continue
		}
		filtered := vo.PhysicalOutputs[:0:0]
		for _, p := range vo.PhysicalOutputs {
			if p != displayName {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(m.outputs, id)
			removed = append(removed, id)
			continue
		}
		vo.PhysicalOutputs = filtered
		survivingOrder = append(survivingOrder, id)
	}
	m.order = survivingOrder
	return removed
}

// VirtualOutputAt returns the virtual output whose logical region
// contains (x, y), satisfying invariant I3. Ties (only possible through
// a caller bypassing the disjointness check above) are broken by
// insertion order.
func (m *Manager) VirtualOutputAt(x, y int32) (ids.VirtualOutputId, bool) {
	point := geom.Rect{X: x, Y: y, W: 1, H: 1}
	for _, id := range m.order {
		vo, ok := m.outputs[id]
		if !ok {
			continue
		}
		if vo.LogicalRegion.Intersects(point) {
			return id, true
		}
	}
	return 0, false
}

// VirtualOutputsForPhysical returns every virtual output that spans
// displayName, in insertion order.
func (m *Manager) VirtualOutputsForPhysical(displayName string) []ids.VirtualOutputId {
	var found []ids.VirtualOutputId
	for _, id := range m.order {
		vo := m.outputs[id]
		for _, p := range vo.PhysicalOutputs {
			if p == displayName {
				found = append(found, id)
				break
			}
		}
	}
	return found
}

// SetActiveWorkspace records which workspace is considered "home" for
// vo independent of what is currently mounted there (used to restore a
// display's workspace after it is temporarily borrowed, spec §4.3).
func (m *Manager) SetActiveWorkspace(vo ids.VirtualOutputId, ws ids.WorkspaceId) bool {
	v, ok := m.outputs[vo]
	if !ok {
		return false
	}
	v.ActiveWorkspace = &ws
	return true
}

// ActiveWorkspace returns vo's recorded active workspace, if any.
func (m *Manager) ActiveWorkspace(vo ids.VirtualOutputId) (ids.WorkspaceId, bool) {
	v, ok := m.outputs[vo]
	if !ok || v.ActiveWorkspace == nil {
		return 0, false
	}
	return *v.ActiveWorkspace, true
}

// Displays returns every registered physical display, sorted by name
// for stable iteration (used by the router's edge/neighbour search).
func (m *Manager) Displays() []*PhysicalDisplay {
	out := make([]*PhysicalDisplay, 0, len(m.displays))
	for _, d := range m.displays {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the virtual output with id.
func (m *Manager) Get(id ids.VirtualOutputId) (*VirtualOutput, bool) {
	vo, ok := m.outputs[id]
	return vo, ok
}

// ValidateDisjoint checks property P6 (spec §8): virtual output regions
// hosted on the same physical output are pairwise disjoint. Called from
// the coordinator's on-demand Validate pass; construction already
// enforces this, so a non-empty result here indicates a bug in that
// enforcement rather than ordinary user error.
func (m *Manager) ValidateDisjoint() []error {
	var errs []error
	all := m.All()
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			shared := sharedPhysical(all[i], all[j])
			if shared == "" {
				continue
			}
			if all[i].LogicalRegion.Intersects(all[j].LogicalRegion) {
				errs = append(errs, fmt.Errorf("voutput: %s and %s overlap on shared physical output %q", all[i].ID, all[j].ID, shared))
			}
		}
	}
	return errs
}

func sharedPhysical(a, b *VirtualOutput) string {
	for _, pa := range a.PhysicalOutputs {
		for _, pb := range b.PhysicalOutputs {
			if pa == pb {
				return pa
			}
		}
	}
	return ""
}

// All returns every virtual output sorted by id, for stable IPC/ascii
// snapshot output.
func (m *Manager) All() []*VirtualOutput {
	out := make([]*VirtualOutput, 0, len(m.outputs))
	for _, vo := range m.outputs {
		out = append(out, vo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
