package session

import (
	"log/slog"

	"github.com/waveline/automation/internal/command"
	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/store"
)

// dragState tracks one point or handle drag from begin to end. Point
// drags publish a store preview so renderers follow the pointer; handle
// drags stay session-local because handle geometry is cheap enough for
// the renderer to overlay from PendingHandles. Neither touches committed
// state until End.
type dragState struct {
	point  store.PointID
	handle bool

	// Latest preview position for a point drag.
	time  float64
	value float64

	// Pending offsets for a handle drag.
	in  curve.Handle
	out curve.Handle
}

// BeginPointDrag starts a move drag on an existing point. The drag
// publishes previews through the store until EndPointDrag commits a
// single MovePoint command or CancelPointDrag discards everything.
func (s *Session) BeginPointDrag(id store.PointID) error {
	if err := s.ownPoint(id); err != nil {
		return err
	}
	p, _ := s.store.Point(id)
	s.drag = &dragState{point: id, time: p.Time, value: p.Value}
	return nil
}

// DragPointTo publishes the latest drag position as a preview. Committed
// points are untouched; only rendering reads observe the move.
func (s *Session) DragPointTo(sm Sample) error {
	if s.drag == nil || s.drag.handle {
		return ErrNoDrag
	}
	s.drag.time = s.storeTime(sm.Time)
	s.drag.value = sm.Value
	return s.store.SetPreview(s.drag.point, s.drag.time, s.drag.value)
}

// EndPointDrag commits the drag as exactly one MovePoint command and
// clears the preview. Ending a drag that never moved still commits; the
// host should treat a click-without-drag as selection instead.
func (s *Session) EndPointDrag() error {
	if s.drag == nil || s.drag.handle {
		return ErrNoDrag
	}
	drag := s.drag
	s.drag = nil
	s.store.ClearPreview()

	cmd := &command.MovePoint{Store: s.store, ID: drag.point, Time: drag.time, Value: drag.value}
	if err := s.sink.Apply(cmd); err != nil {
		slog.Warn("move commit failed", "point", drag.point, "error", err)
		return err
	}
	return nil
}

// CancelPointDrag discards the drag with no command issued. The
// committed point sequence is exactly what it was before the drag began.
func (s *Session) CancelPointDrag() error {
	if s.drag == nil || s.drag.handle {
		return ErrNoDrag
	}
	s.cancelDrag()
	return nil
}

// BeginHandleDrag starts a drag on a Bezier point's control handles,
// seeded from the committed offsets.
func (s *Session) BeginHandleDrag(id store.PointID) error {
	if err := s.ownPoint(id); err != nil {
		return err
	}
	p, _ := s.store.Point(id)
	if p.Type != curve.Bezier {
		return ErrNotBezier
	}
	s.drag = &dragState{point: id, handle: true, in: p.In, out: p.Out}
	return nil
}

// DragHandleTo records the latest requested handle offsets. The store
// clamps on commit; the pending offsets are kept as requested so the
// overlay follows the pointer.
func (s *Session) DragHandleTo(in, out curve.Handle) error {
	if s.drag == nil || !s.drag.handle {
		return ErrNoDrag
	}
	s.drag.in = in
	s.drag.out = out
	return nil
}

// PendingHandles returns the in-flight handle offsets for rendering the
// drag overlay. The second return is false when no handle drag is
// active.
func (s *Session) PendingHandles() (in, out curve.Handle, ok bool) {
	if s.drag == nil || !s.drag.handle {
		return curve.Handle{}, curve.Handle{}, false
	}
	return s.drag.in, s.drag.out, true
}

// EndHandleDrag commits the drag as exactly one SetHandles command.
func (s *Session) EndHandleDrag() error {
	if s.drag == nil || !s.drag.handle {
		return ErrNoDrag
	}
	drag := s.drag
	s.drag = nil

	cmd := &command.SetHandles{Store: s.store, ID: drag.point, In: drag.in, Out: drag.out}
	if err := s.sink.Apply(cmd); err != nil {
		slog.Warn("handle commit failed", "point", drag.point, "error", err)
		return err
	}
	return nil
}

// CancelHandleDrag discards the drag with no command issued.
func (s *Session) CancelHandleDrag() error {
	if s.drag == nil || !s.drag.handle {
		return ErrNoDrag
	}
	s.drag = nil
	return nil
}

// Dragging reports whether a point or handle drag is in progress.
func (s *Session) Dragging() bool { return s.drag != nil }

func (s *Session) cancelDrag() {
	if s.drag != nil && !s.drag.handle {
		s.store.ClearPreview()
	}
	s.drag = nil
}
