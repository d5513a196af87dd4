// Package rt is the real-time read path: a lock-free view of the
// committed automation curves for the playback thread.
//
// The Sampler listens to the store on the edit thread and republishes an
// immutable snapshot of the committed point lists after every committed
// mutation. The playback thread samples through Value, which takes no
// locks and allocates nothing, so an edit in progress can never stall
// audio. Drag previews and lane visibility changes are invisible here;
// playback only ever sees committed state.
package rt

import (
	"sync/atomic"

	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/store"
)

// snapshot is one immutable publication of the committed curves. Point
// slices are copies owned by the snapshot; nothing mutates them after
// publish.
type snapshot struct {
	curves map[store.OwnerID][]curve.Point
}

// Sampler is the bridge between the edit thread and the playback thread.
// Construct with New; Close unregisters it from the store.
type Sampler struct {
	store *store.Store

	// current is the published snapshot. The edit thread swaps it whole;
	// the playback thread only loads it.
	current atomic.Pointer[snapshot]

	// version increments on every publication. Strictly increasing, so
	// playback code can cheaply detect that curves changed between
	// blocks and invalidate derived caches.
	version atomic.Int64
}

// New creates a sampler, publishes the store's current committed state,
// and registers for change notifications.
func New(st *store.Store) *Sampler {
	s := &Sampler{store: st}
	s.publishAll()
	st.AddListener(s)
	return s
}

// Close unregisters the sampler. The last published snapshot stays
// readable, it just stops updating.
func (s *Sampler) Close() {
	s.store.RemoveListener(s)
}

// Value samples the committed curve of a lane or clip at time t,
// returning def for unknown owners and empty curves. Safe to call from
// the playback thread concurrently with edits; takes no locks and does
// not allocate.
func (s *Sampler) Value(owner store.OwnerID, t, def float64) float64 {
	snap := s.current.Load()
	pts, ok := snap.curves[owner]
	if !ok {
		return def
	}
	return curve.Evaluate(pts, t, def)
}

// Version returns the publication counter. It increases on every
// committed mutation and never decreases.
func (s *Sampler) Version() int64 {
	return s.version.Load()
}

// LanesChanged implements store.Listener. Structural changes can add or
// remove whole owners, so the snapshot is rebuilt from scratch.
func (s *Sampler) LanesChanged() {
	s.publishAll()
}

// LanePropertyChanged implements store.Listener. Visibility is a render
// concern and does not affect playback.
func (s *Sampler) LanePropertyChanged(store.LaneID) {}

// PointsChanged implements store.Listener. Only the touched owner's
// curve is recopied; the rest of the new snapshot shares the previous
// publication's slices, which are immutable.
func (s *Sampler) PointsChanged(owner store.OwnerID) {
	prev := s.current.Load()
	next := &snapshot{curves: make(map[store.OwnerID][]curve.Point, len(prev.curves)+1)}
	for o, pts := range prev.curves {
		next.curves[o] = pts
	}
	if pts, ok := s.store.Points(owner); ok {
		next.curves[owner] = pts
	} else {
		delete(next.curves, owner)
	}
	s.publish(next)
}

// PointDragPreview implements store.Listener. Previews are uncommitted
// and must never reach playback.
func (s *Sampler) PointDragPreview(store.OwnerID, store.PointID, float64, float64) {}

func (s *Sampler) publishAll() {
	next := &snapshot{curves: make(map[store.OwnerID][]curve.Point)}
	for _, lane := range s.store.Lanes() {
		if pts, ok := s.store.Points(store.OwnerID(lane.ID)); ok {
			next.curves[store.OwnerID(lane.ID)] = pts
		}
	}
	for _, clip := range s.store.Clips() {
		if pts, ok := s.store.Points(store.OwnerID(clip.ID)); ok {
			next.curves[store.OwnerID(clip.ID)] = pts
		}
	}
	s.publish(next)
}

func (s *Sampler) publish(next *snapshot) {
	s.current.Store(next)
	s.version.Add(1)
}
