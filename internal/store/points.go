package store

import (
	"log/slog"
	"sort"

	"github.com/waveline/automation/internal/curve"
)

// AddPoint inserts a point into a lane or clip, keeping the sequence
// sorted by time.
//
// Duplicate-time policy: an add at exactly an existing point's time
// replaces that point's value and curve type in place, preserving its ID
// (and therefore any selection referring to it) along with its tension
// and handles. Two distinct points may still share a time after a move;
// evaluation treats that zero-duration segment as a step.
func (s *Store) AddPoint(owner OwnerID, time, value float64, typ curve.Type) (PointID, error) {
	pts, ok := s.points[owner]
	if !ok {
		return "", newUnknownOwner(owner)
	}

	if i, found := indexAtTime(pts, time); found {
		pts[i].Value = value
		pts[i].Type = typ
		s.reclampBezier(pts)
		slog.Debug("automation point replaced", "owner", owner, "point", pts[i].ID, "time", time, "value", value)
		s.notifyPointsChanged(owner)
		return PointID(pts[i].ID), nil
	}

	id := PointID(s.gen.NewID())
	p := curve.Point{ID: string(id), Time: time, Value: value, Type: typ}
	s.points[owner] = insertSorted(pts, p)
	s.owner[id] = owner
	s.reclampBezier(s.points[owner])
	slog.Debug("automation point added", "owner", owner, "point", id, "time", time, "value", value, "type", typ.String())
	s.notifyPointsChanged(owner)
	return id, nil
}

// InsertPoint re-inserts a fully specified point, preserving its ID and
// shaping fields. Used by undo (restoring deleted or replaced points) and
// by persistence loads. Handle offsets are re-clamped against the
// resulting neighborhood.
func (s *Store) InsertPoint(owner OwnerID, p curve.Point) error {
	pts, ok := s.points[owner]
	if !ok {
		return newUnknownOwner(owner)
	}
	s.points[owner] = insertSorted(pts, p)
	s.owner[PointID(p.ID)] = owner
	s.reclampBezier(s.points[owner])
	s.notifyPointsChanged(owner)
	return nil
}

// MovePoint updates a point's position, re-sorting when the move crosses
// a neighbor. Bezier handles in the disturbed neighborhood are re-clamped
// because segment durations changed under them.
func (s *Store) MovePoint(id PointID, newTime, newValue float64) error {
	owner, ok := s.owner[id]
	if !ok {
		return newPointNotFound(id)
	}
	pts := s.points[owner]
	i := indexOf(pts, id)

	p := pts[i]
	p.Time = newTime
	p.Value = newValue
	pts = append(pts[:i], pts[i+1:]...)
	s.points[owner] = insertSorted(pts, p)
	s.reclampBezier(s.points[owner])
	slog.Debug("automation point moved", "owner", owner, "point", id, "time", newTime, "value", newValue)
	s.notifyPointsChanged(owner)
	return nil
}

// DeletePoint removes a point by stable ID. Unknown IDs are a no-op; the
// second return reports whether a point was removed, and the first is the
// removed point so callers can capture it for undo.
func (s *Store) DeletePoint(id PointID) (curve.Point, bool) {
	owner, ok := s.owner[id]
	if !ok {
		return curve.Point{}, false
	}
	pts := s.points[owner]
	i := indexOf(pts, id)
	removed := pts[i]

	s.points[owner] = append(pts[:i], pts[i+1:]...)
	delete(s.owner, id)
	if s.preview != nil && s.preview.Point == id {
		s.preview = nil
	}
	s.reclampBezier(s.points[owner])
	slog.Debug("automation point deleted", "owner", owner, "point", id)
	s.notifyPointsChanged(owner)
	return removed, true
}

// Removed pairs a deleted point with the owner it was removed from.
type Removed struct {
	Owner OwnerID
	Point curve.Point
}

// DeletePoints removes a batch of points by stable ID in one operation.
// Because deletion is by ID, the order of ids is irrelevant and partial
// overlap with already-deleted points is harmless. One PointsChanged
// notification fires per touched owner.
func (s *Store) DeletePoints(ids []PointID) []Removed {
	touched := make(map[OwnerID]bool)
	var removed []Removed

	for _, id := range ids {
		owner, ok := s.owner[id]
		if !ok {
			continue
		}
		pts := s.points[owner]
		i := indexOf(pts, id)
		removed = append(removed, Removed{Owner: owner, Point: pts[i]})
		s.points[owner] = append(pts[:i], pts[i+1:]...)
		delete(s.owner, id)
		if s.preview != nil && s.preview.Point == id {
			s.preview = nil
		}
		touched[owner] = true
	}

	for owner := range touched {
		s.reclampBezier(s.points[owner])
		s.notifyPointsChanged(owner)
	}
	if len(removed) > 0 {
		slog.Debug("automation points deleted", "count", len(removed))
	}
	return removed
}

// SetHandles sets a Bezier point's control handles. Offsets that would
// make a segment's time component decrease are clamped against the
// neighboring points rather than rejected, so the committed curve is
// always safely evaluable.
func (s *Store) SetHandles(id PointID, in, out curve.Handle) error {
	owner, ok := s.owner[id]
	if !ok {
		return newPointNotFound(id)
	}
	pts := s.points[owner]
	i := indexOf(pts, id)
	if pts[i].Type != curve.Bezier {
		return newWrongCurveType(id, "bezier")
	}

	if i > 0 && pts[i-1].Type == curve.Bezier {
		dur := pts[i].Time - pts[i-1].Time
		in = curve.ClampIn(dur, pts[i-1].Out.TimeOffset, in)
	} else if in.TimeOffset > 0 {
		in.TimeOffset = 0
	}
	if i < len(pts)-1 {
		dur := pts[i+1].Time - pts[i].Time
		out = curve.ClampOut(dur, pts[i+1].In.TimeOffset, out)
	} else if out.TimeOffset < 0 {
		out.TimeOffset = 0
	}

	pts[i].In = in
	pts[i].Out = out
	slog.Debug("automation point handles set", "owner", owner, "point", id)
	s.notifyPointsChanged(owner)
	return nil
}

// SetTension sets the tension of a Linear point, clamped to [-1, 1].
func (s *Store) SetTension(id PointID, tension float64) error {
	owner, ok := s.owner[id]
	if !ok {
		return newPointNotFound(id)
	}
	pts := s.points[owner]
	i := indexOf(pts, id)
	if pts[i].Type != curve.Linear {
		return newWrongCurveType(id, "linear")
	}

	if tension < -1 {
		tension = -1
	} else if tension > 1 {
		tension = 1
	}
	pts[i].Tension = tension
	slog.Debug("automation point tension set", "owner", owner, "point", id, "tension", tension)
	s.notifyPointsChanged(owner)
	return nil
}

// Point returns a copy of the point with the given ID.
func (s *Store) Point(id PointID) (curve.Point, bool) {
	owner, ok := s.owner[id]
	if !ok {
		return curve.Point{}, false
	}
	pts := s.points[owner]
	return pts[indexOf(pts, id)], true
}

// PointAt returns the point at exactly the given time, if one exists.
// This is the point an AddPoint at that time would replace.
func (s *Store) PointAt(owner OwnerID, time float64) (curve.Point, bool) {
	pts, ok := s.points[owner]
	if !ok {
		return curve.Point{}, false
	}
	if i, found := indexAtTime(pts, time); found {
		return pts[i], true
	}
	return curve.Point{}, false
}

// OwnerOf returns the lane or clip a point belongs to.
func (s *Store) OwnerOf(id PointID) (OwnerID, bool) {
	owner, ok := s.owner[id]
	return owner, ok
}

// Points returns a copy of an owner's committed point sequence. The copy
// is safe to retain; later store mutations never write through it.
func (s *Store) Points(owner OwnerID) ([]curve.Point, bool) {
	pts, ok := s.points[owner]
	if !ok {
		return nil, false
	}
	out := make([]curve.Point, len(pts))
	copy(out, pts)
	return out, true
}

// SetPreview publishes the drag preview for a point. The committed point
// is untouched; rendering reads through Evaluate see the preview
// position, the real-time path never does.
func (s *Store) SetPreview(id PointID, time, value float64) error {
	owner, ok := s.owner[id]
	if !ok {
		return newPointNotFound(id)
	}
	s.preview = &Preview{Owner: owner, Point: id, Time: time, Value: value}
	s.notifyPointDragPreview(owner, id, time, value)
	return nil
}

// ClearPreview discards any active drag preview.
func (s *Store) ClearPreview() {
	s.preview = nil
}

// ActivePreview returns the current drag preview, if any.
func (s *Store) ActivePreview() (Preview, bool) {
	if s.preview == nil {
		return Preview{}, false
	}
	return *s.preview, true
}

// Evaluate samples an owner's curve for rendering callers: any active
// drag preview is substituted for its committed point. Unknown owners
// evaluate to def.
func (s *Store) Evaluate(owner OwnerID, t, def float64) float64 {
	pts, ok := s.points[owner]
	if !ok {
		return def
	}
	if s.preview == nil || s.preview.Owner != owner {
		return curve.Evaluate(pts, t, def)
	}

	overlay := make([]curve.Point, len(pts))
	copy(overlay, pts)
	for i := range overlay {
		if PointID(overlay[i].ID) == s.preview.Point {
			overlay[i].Time = s.preview.Time
			overlay[i].Value = s.preview.Value
			break
		}
	}
	sort.SliceStable(overlay, func(i, j int) bool { return overlay[i].Time < overlay[j].Time })
	return curve.Evaluate(overlay, t, def)
}

// EvaluateCommitted samples the committed curve only, ignoring previews.
// This is the semantics the real-time snapshots are built from.
func (s *Store) EvaluateCommitted(owner OwnerID, t, def float64) float64 {
	pts, ok := s.points[owner]
	if !ok {
		return def
	}
	return curve.Evaluate(pts, t, def)
}

// reclampBezier restores the handle monotonicity invariant across every
// Bezier segment of a sequence. Called after any mutation that can change
// segment durations.
func (s *Store) reclampBezier(pts []curve.Point) {
	for i := 0; i+1 < len(pts); i++ {
		if pts[i].Type != curve.Bezier {
			continue
		}
		out, in := curve.ClampSegment(pts[i+1].Time-pts[i].Time, pts[i].Out, pts[i+1].In)
		pts[i].Out = out
		pts[i+1].In = in
	}
}

// insertSorted places p at the upper bound of its time, so a point moved
// onto a neighbor's exact time orders after the existing point.
func insertSorted(pts []curve.Point, p curve.Point) []curve.Point {
	i := sort.Search(len(pts), func(j int) bool { return pts[j].Time > p.Time })
	pts = append(pts, curve.Point{})
	copy(pts[i+1:], pts[i:])
	pts[i] = p
	return pts
}

// indexAtTime finds a point with exactly the given time.
func indexAtTime(pts []curve.Point, time float64) (int, bool) {
	i := sort.Search(len(pts), func(j int) bool { return pts[j].Time >= time })
	if i < len(pts) && pts[i].Time == time {
		return i, true
	}
	return 0, false
}

// indexOf locates a point by ID. The store's owner index guarantees the
// point is present, so a miss is a programming error.
func indexOf(pts []curve.Point, id PointID) int {
	for i := range pts {
		if PointID(pts[i].ID) == id {
			return i
		}
	}
	panic("store: owner index out of sync with point list")
}
