package store

import (
	"log/slog"

	"github.com/waveline/automation/internal/curve"
)

// LaneID identifies a timeline-scoped automation lane.
type LaneID string

// ClipID identifies a clip whose automation moves with the clip.
type ClipID string

// PointID is the stable identity of one automation point.
type PointID string

// OwnerID addresses either a lane or a clip. Lane and clip IDs share one
// ID space (UUIDs), so point operations can stay owner-kind agnostic.
type OwnerID string

// Lane is absolute automation for one target parameter. Target is opaque
// to the engine; the lane registry that created the lane gives it meaning.
type Lane struct {
	ID      LaneID
	Target  string
	Visible bool
}

// Clip is a container for clip-relative automation points. Point times
// inside a clip are relative to the clip's local origin.
type Clip struct {
	ID ClipID
}

// Preview is the ephemeral position override published while a point is
// dragged. It shadows the committed point for rendering reads only and is
// never written into the committed point lists.
type Preview struct {
	Owner OwnerID
	Point PointID
	Time  float64
	Value float64
}

// Listener receives change notifications for committed mutations and for
// drag previews. Renderers and the real-time snapshot builder register
// here. Callbacks run synchronously on the edit thread.
type Listener interface {
	// LanesChanged fires on structural changes: a lane or clip was
	// created or removed.
	LanesChanged()

	// LanePropertyChanged fires when a lane property (visibility)
	// changed without touching point content.
	LanePropertyChanged(id LaneID)

	// PointsChanged fires when the committed point content of a lane or
	// clip changed.
	PointsChanged(owner OwnerID)

	// PointDragPreview fires while a point is dragged. It carries the
	// uncommitted preview position and implies no committed change.
	PointDragPreview(owner OwnerID, point PointID, time, value float64)
}

// Store holds all automation lanes, clips, and points. See the package
// documentation for the threading and undo discipline.
type Store struct {
	gen IDGenerator

	lanes     map[LaneID]*Lane
	clips     map[ClipID]*Clip
	laneOrder []LaneID
	clipOrder []ClipID

	points map[OwnerID][]curve.Point
	owner  map[PointID]OwnerID

	listeners []Listener
	preview   *Preview
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUIDv7 generator, letting tests mint
// deterministic IDs.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		s.gen = gen
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		gen:    UUIDv7Generator{},
		lanes:  make(map[LaneID]*Lane),
		clips:  make(map[ClipID]*Clip),
		points: make(map[OwnerID][]curve.Point),
		owner:  make(map[PointID]OwnerID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddListener registers a change listener.
func (s *Store) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// RemoveListener unregisters a previously added listener.
func (s *Store) RemoveListener(l Listener) {
	for i, reg := range s.listeners {
		if reg == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// CreateLane adds a lane for the given target and returns its ID.
// New lanes start visible and empty; an empty lane evaluates to the
// caller's default everywhere.
func (s *Store) CreateLane(target string) LaneID {
	id := LaneID(s.gen.NewID())
	s.lanes[id] = &Lane{ID: id, Target: target, Visible: true}
	s.laneOrder = append(s.laneOrder, id)
	s.points[OwnerID(id)] = nil
	slog.Info("automation lane created", "lane", id, "target", target)
	s.notifyLanesChanged()
	return id
}

// RestoreLane re-inserts a lane with a known identity, bypassing ID
// generation. Used by persistence loads and lane-removal undo.
func (s *Store) RestoreLane(lane Lane) {
	cp := lane
	s.lanes[lane.ID] = &cp
	s.laneOrder = append(s.laneOrder, lane.ID)
	if _, ok := s.points[OwnerID(lane.ID)]; !ok {
		s.points[OwnerID(lane.ID)] = nil
	}
	s.notifyLanesChanged()
}

// RemoveLane deletes a lane and all its points.
func (s *Store) RemoveLane(id LaneID) error {
	if _, ok := s.lanes[id]; !ok {
		return newUnknownOwner(OwnerID(id))
	}
	s.removeOwnerPoints(OwnerID(id))
	delete(s.lanes, id)
	s.laneOrder = removeID(s.laneOrder, id)
	slog.Info("automation lane removed", "lane", id)
	s.notifyLanesChanged()
	return nil
}

// SetLaneVisible toggles lane visibility. Visibility is a render concern;
// it never affects evaluation.
func (s *Store) SetLaneVisible(id LaneID, visible bool) error {
	lane, ok := s.lanes[id]
	if !ok {
		return newUnknownOwner(OwnerID(id))
	}
	if lane.Visible == visible {
		return nil
	}
	lane.Visible = visible
	s.notifyLanePropertyChanged(id)
	return nil
}

// Lane returns a copy of the lane metadata.
func (s *Store) Lane(id LaneID) (Lane, bool) {
	lane, ok := s.lanes[id]
	if !ok {
		return Lane{}, false
	}
	return *lane, true
}

// Lanes returns all lanes in creation order.
func (s *Store) Lanes() []Lane {
	out := make([]Lane, 0, len(s.laneOrder))
	for _, id := range s.laneOrder {
		out = append(out, *s.lanes[id])
	}
	return out
}

// CreateClip adds an empty automation clip and returns its ID.
func (s *Store) CreateClip() ClipID {
	id := ClipID(s.gen.NewID())
	s.clips[id] = &Clip{ID: id}
	s.clipOrder = append(s.clipOrder, id)
	s.points[OwnerID(id)] = nil
	slog.Info("automation clip created", "clip", id)
	s.notifyLanesChanged()
	return id
}

// RestoreClip re-inserts a clip with a known identity. Used by
// persistence loads.
func (s *Store) RestoreClip(clip Clip) {
	cp := clip
	s.clips[clip.ID] = &cp
	s.clipOrder = append(s.clipOrder, clip.ID)
	if _, ok := s.points[OwnerID(clip.ID)]; !ok {
		s.points[OwnerID(clip.ID)] = nil
	}
	s.notifyLanesChanged()
}

// RemoveClip deletes a clip and all its points.
func (s *Store) RemoveClip(id ClipID) error {
	if _, ok := s.clips[id]; !ok {
		return newUnknownOwner(OwnerID(id))
	}
	s.removeOwnerPoints(OwnerID(id))
	delete(s.clips, id)
	s.clipOrder = removeID(s.clipOrder, id)
	slog.Info("automation clip removed", "clip", id)
	s.notifyLanesChanged()
	return nil
}

// Clip returns a copy of the clip metadata.
func (s *Store) Clip(id ClipID) (Clip, bool) {
	clip, ok := s.clips[id]
	if !ok {
		return Clip{}, false
	}
	return *clip, true
}

// Clips returns all clips in creation order.
func (s *Store) Clips() []Clip {
	out := make([]Clip, 0, len(s.clipOrder))
	for _, id := range s.clipOrder {
		out = append(out, *s.clips[id])
	}
	return out
}

// HasOwner reports whether the ID names a known lane or clip.
func (s *Store) HasOwner(owner OwnerID) bool {
	_, ok := s.points[owner]
	return ok
}

func (s *Store) removeOwnerPoints(owner OwnerID) {
	for _, p := range s.points[owner] {
		delete(s.owner, PointID(p.ID))
	}
	delete(s.points, owner)
	if s.preview != nil && s.preview.Owner == owner {
		s.preview = nil
	}
}

func removeID[T comparable](ids []T, id T) []T {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (s *Store) notifyLanesChanged() {
	for _, l := range s.listeners {
		l.LanesChanged()
	}
}

func (s *Store) notifyLanePropertyChanged(id LaneID) {
	for _, l := range s.listeners {
		l.LanePropertyChanged(id)
	}
}

func (s *Store) notifyPointsChanged(owner OwnerID) {
	for _, l := range s.listeners {
		l.PointsChanged(owner)
	}
}

func (s *Store) notifyPointDragPreview(owner OwnerID, point PointID, time, value float64) {
	for _, l := range s.listeners {
		l.PointDragPreview(owner, point, time, value)
	}
}
