// Package selection hosts the cross-domain selection coordinator.
//
// The coordinator is the single authority over what is selected anywhere
// in the application: a track, clips, a time range, notes, or automation
// points. Selection kinds are mutually exclusive - selecting in one
// domain clears the others - and automation-point selection is further
// scoped to exactly one lane or clip at a time.
//
// The automation engine only reads and writes the automation-point
// subset; everything else exists so the exclusivity contract has a real
// counterpart. Like the store, the coordinator lives on the edit thread.
package selection

import (
	"github.com/waveline/automation/internal/store"
)

// Kind enumerates the mutually exclusive selection domains.
type Kind int

const (
	KindNone Kind = iota
	KindTrack
	KindClip
	KindTimeRange
	KindNote
	KindAutomationPoint
)

// String returns the lowercase name used in logs.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTrack:
		return "track"
	case KindClip:
		return "clip"
	case KindTimeRange:
		return "time-range"
	case KindNote:
		return "note"
	case KindAutomationPoint:
		return "automation-point"
	default:
		return "unknown"
	}
}

// PointSelection is the set of selected automation points, scoped to one
// lane or (when Clip is set) one clip.
type PointSelection struct {
	Lane   store.LaneID
	Clip   store.ClipID // empty for lane-scoped selection
	Points map[store.PointID]struct{}
}

// Empty reports whether no points are selected.
func (ps PointSelection) Empty() bool { return len(ps.Points) == 0 }

// Contains reports whether the point is part of the selection.
func (ps PointSelection) Contains(id store.PointID) bool {
	_, ok := ps.Points[id]
	return ok
}

// sameOwner reports whether the selection is scoped to the given lane
// and clip pair.
func (ps PointSelection) sameOwner(lane store.LaneID, clip store.ClipID) bool {
	return ps.Lane == lane && ps.Clip == clip
}

// Listener observes selection changes. Callbacks run synchronously on
// the edit thread.
type Listener interface {
	// SelectionKindChanged fires when the active domain changes.
	SelectionKindChanged(kind Kind)

	// PointSelectionChanged fires when the set of selected automation
	// points changes (including clears).
	PointSelectionChanged(sel PointSelection)
}

// Coordinator is the selection authority. The zero value is not usable;
// construct with New.
type Coordinator struct {
	kind      Kind
	points    PointSelection
	track     string
	listeners []Listener
}

// New creates a coordinator with nothing selected.
func New() *Coordinator {
	return &Coordinator{}
}

// AddListener registers a selection listener.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters a previously added listener.
func (c *Coordinator) RemoveListener(l Listener) {
	for i, reg := range c.listeners {
		if reg == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Kind returns the active selection domain.
func (c *Coordinator) Kind() Kind { return c.kind }

// SelectTrack selects a track, displacing any other selection. Only here
// to exercise cross-domain exclusivity; track semantics live elsewhere.
func (c *Coordinator) SelectTrack(trackID string) {
	c.clearPoints()
	c.track = trackID
	c.setKind(KindTrack)
}

// SelectPoint selects one automation point within a lane or clip. A
// non-additive select replaces the current set; an additive select
// extends it when the owner matches and replaces it otherwise, because
// point selection never spans two owners.
func (c *Coordinator) SelectPoint(lane store.LaneID, clip store.ClipID, id store.PointID, additive bool) {
	if !additive || c.kind != KindAutomationPoint || !c.points.sameOwner(lane, clip) {
		c.points = PointSelection{Lane: lane, Clip: clip, Points: make(map[store.PointID]struct{})}
	}
	c.points.Points[id] = struct{}{}
	c.setKind(KindAutomationPoint)
	c.notifyPoints()
}

// SelectPoints replaces the selection with the given set in one step.
func (c *Coordinator) SelectPoints(lane store.LaneID, clip store.ClipID, ids []store.PointID) {
	sel := PointSelection{Lane: lane, Clip: clip, Points: make(map[store.PointID]struct{}, len(ids))}
	for _, id := range ids {
		sel.Points[id] = struct{}{}
	}
	c.points = sel
	c.setKind(KindAutomationPoint)
	c.notifyPoints()
}

// Deselect removes one point from the selection. Removing the last point
// clears the automation-point domain entirely.
func (c *Coordinator) Deselect(id store.PointID) {
	if c.kind != KindAutomationPoint || !c.points.Contains(id) {
		return
	}
	delete(c.points.Points, id)
	if c.points.Empty() {
		c.points = PointSelection{}
		c.setKind(KindNone)
	}
	c.notifyPoints()
}

// IsSelected reports whether a point is currently selected.
func (c *Coordinator) IsSelected(id store.PointID) bool {
	return c.kind == KindAutomationPoint && c.points.Contains(id)
}

// PointSelection returns a copy of the current automation-point
// selection. The copy is safe to iterate while mutating the coordinator.
func (c *Coordinator) PointSelection() PointSelection {
	if c.kind != KindAutomationPoint {
		return PointSelection{}
	}
	cp := PointSelection{Lane: c.points.Lane, Clip: c.points.Clip, Points: make(map[store.PointID]struct{}, len(c.points.Points))}
	for id := range c.points.Points {
		cp.Points[id] = struct{}{}
	}
	return cp
}

// ClearPointSelection drops the automation-point selection, if any.
func (c *Coordinator) ClearPointSelection() {
	if c.kind != KindAutomationPoint {
		return
	}
	c.points = PointSelection{}
	c.setKind(KindNone)
	c.notifyPoints()
}

// ClearOwner drops the selection only if it belongs to the given lane
// and clip pair. Editors call this when their surface is clicked or torn
// down, without disturbing selection owned by another editor.
func (c *Coordinator) ClearOwner(lane store.LaneID, clip store.ClipID) {
	if c.kind != KindAutomationPoint || !c.points.sameOwner(lane, clip) {
		return
	}
	c.ClearPointSelection()
}

func (c *Coordinator) clearPoints() {
	c.points = PointSelection{}
}

func (c *Coordinator) setKind(k Kind) {
	if c.kind == k {
		return
	}
	c.kind = k
	for _, l := range c.listeners {
		l.SelectionKindChanged(k)
	}
}

func (c *Coordinator) notifyPoints() {
	sel := c.PointSelection()
	for _, l := range c.listeners {
		l.PointSelectionChanged(sel)
	}
}
