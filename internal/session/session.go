package session

import (
	"errors"
	"log/slog"

	"github.com/waveline/automation/internal/command"
	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/selection"
	"github.com/waveline/automation/internal/store"
)

// Mode is the active drawing tool.
type Mode int

const (
	// ModeSelect manipulates existing points: clicking empty space
	// clears the selection, dragging a point moves it.
	ModeSelect Mode = iota
	// ModePencil captures a freehand path and commits it as Linear
	// points after simplification.
	ModePencil
	// ModeLine commits a straight two-point Linear ramp.
	ModeLine
	// ModeCurve is the pencil pipeline with Bezier points.
	ModeCurve
)

// String returns the lowercase tool name.
func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModePencil:
		return "pencil"
	case ModeLine:
		return "line"
	case ModeCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// Sample is one pointer position in curve space.
type Sample struct {
	Time  float64
	Value float64
}

// Target binds a session to one lane, or to one clip hosted on a lane.
type Target struct {
	Lane store.LaneID
	Clip store.ClipID // set for clip-relative automation
}

// Owner returns the store owner the session edits.
func (t Target) Owner() store.OwnerID {
	if t.Clip != "" {
		return store.OwnerID(t.Clip)
	}
	return store.OwnerID(t.Lane)
}

// SelectionAdapter is the slice of the selection coordinator the session
// depends on. *selection.Coordinator satisfies it.
type SelectionAdapter interface {
	SelectPoint(lane store.LaneID, clip store.ClipID, id store.PointID, additive bool)
	PointSelection() selection.PointSelection
	ClearOwner(lane store.LaneID, clip store.ClipID)
}

// Session errors. All are recoverable: the offending call is a no-op.
var (
	ErrUnknownPoint = errors.New("session: point does not exist")
	ErrWrongOwner   = errors.New("session: point belongs to another lane or clip")
	ErrNotBezier    = errors.New("session: point has no bezier handles")
	ErrNoDrag       = errors.New("session: no drag in progress")
)

// Defaults for the stroke simplification, matching a 100 units/second,
// 100 units/full-scale editor surface with a 10-unit threshold.
const (
	DefaultSimplifyThreshold = 10.0
	DefaultTimeScale         = 100.0
	DefaultValueScale        = 100.0
)

// Session is the per-editor interaction state machine.
type Session struct {
	store  *store.Store
	sink   command.Sink
	sel    SelectionAdapter
	target Target

	mode Mode

	// clipOffset converts timeline samples to clip-relative times for
	// clip-bound sessions.
	clipOffset float64

	// Stroke simplification: distances are measured after scaling time
	// and value into a common unit space.
	threshold  float64
	timeScale  float64
	valueScale float64

	// snap, when set, quantizes point times on commit.
	snap func(float64) float64

	// Drawing gesture state.
	drawing   bool
	path      []Sample
	lineStart Sample

	// Drag gesture state.
	drag *dragState
}

// Option configures a Session.
type Option func(*Session)

// WithSimplifyThreshold sets the minimum scaled distance between kept
// pencil samples.
func WithSimplifyThreshold(units float64) Option {
	return func(s *Session) { s.threshold = units }
}

// WithScale sets the unit scaling used by stroke simplification,
// typically the editor's pixels-per-second and pixels-per-full-scale.
func WithScale(timeScale, valueScale float64) Option {
	return func(s *Session) {
		s.timeScale = timeScale
		s.valueScale = valueScale
	}
}

// WithSnap installs a grid snapping function applied to point times on
// commit (double-click and drawn strokes, not drags).
func WithSnap(snap func(float64) float64) Option {
	return func(s *Session) { s.snap = snap }
}

// WithClipOffset sets the timeline position of the clip's local origin
// for clip-bound sessions.
func WithClipOffset(offset float64) Option {
	return func(s *Session) { s.clipOffset = offset }
}

// New creates a session for one lane or clip.
func New(st *store.Store, sink command.Sink, sel SelectionAdapter, target Target, opts ...Option) *Session {
	s := &Session{
		store:      st,
		sink:       sink,
		sel:        sel,
		target:     target,
		threshold:  DefaultSimplifyThreshold,
		timeScale:  DefaultTimeScale,
		valueScale: DefaultValueScale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMode switches the drawing tool. Switching aborts any gesture in
// flight without committing it.
func (s *Session) SetMode(m Mode) {
	if s.mode == m {
		return
	}
	s.abortGesture()
	s.mode = m
}

// Mode returns the active drawing tool.
func (s *Session) Mode() Mode { return s.mode }

// Target returns the lane/clip binding.
func (s *Session) Target() Target { return s.target }

// PointerDown starts a gesture. In Select mode a down on empty space
// clears this editor's selection; in the drawing modes it starts path or
// line capture.
func (s *Session) PointerDown(sm Sample) {
	switch s.mode {
	case ModeSelect:
		s.sel.ClearOwner(s.target.Lane, s.target.Clip)
	case ModePencil, ModeCurve:
		s.drawing = true
		s.path = s.path[:0]
		s.path = append(s.path, sm)
	case ModeLine:
		s.drawing = true
		s.lineStart = sm
	}
}

// PointerDrag extends the gesture with another sample.
func (s *Session) PointerDrag(sm Sample) {
	if !s.drawing {
		return
	}
	if s.mode == ModePencil || s.mode == ModeCurve {
		s.path = append(s.path, sm)
	}
	// Line mode keeps only its endpoints; renderers preview the line
	// from lineStart to the live pointer position.
}

// PointerUp ends the gesture and commits its result as one undo step.
func (s *Session) PointerUp(sm Sample) {
	if !s.drawing {
		return
	}
	s.drawing = false

	switch s.mode {
	case ModePencil:
		s.commitStroke(curve.Linear)
	case ModeCurve:
		s.commitStroke(curve.Bezier)
	case ModeLine:
		s.commitLine(s.lineStart, sm)
	}
	s.path = s.path[:0]
}

// CancelGesture aborts the gesture in flight, committing nothing. Used
// when the pointer leaves the valid range or the gesture is interrupted.
func (s *Session) CancelGesture() {
	s.abortGesture()
}

// DoubleClick inserts a single point at the clicked position: Bezier in
// Curve mode, Linear otherwise. Ignored while another gesture is active.
func (s *Session) DoubleClick(sm Sample) {
	if s.drawing || s.drag != nil {
		return
	}
	typ := curve.Linear
	if s.mode == ModeCurve {
		typ = curve.Bezier
	}
	cmd := &command.AddPoint{
		Store: s.store,
		Owner: s.target.Owner(),
		Time:  s.storeTime(sm.Time),
		Value: sm.Value,
		Type:  typ,
	}
	if err := s.sink.Apply(cmd); err != nil {
		slog.Warn("add point failed", "owner", s.target.Owner(), "error", err)
	}
}

// SelectPoint routes a point click to the selection coordinator,
// keeping the selection scoped to this session's lane or clip.
func (s *Session) SelectPoint(id store.PointID, additive bool) error {
	if err := s.ownPoint(id); err != nil {
		return err
	}
	s.sel.SelectPoint(s.target.Lane, s.target.Clip, id, additive)
	return nil
}

// DeleteSelected deletes every selected point belonging to this session
// as one compound undo step, then clears the selection. Bound to the
// Delete and Backspace keys by the host.
func (s *Session) DeleteSelected() {
	sel := s.sel.PointSelection()
	if sel.Empty() || sel.Lane != s.target.Lane || sel.Clip != s.target.Clip {
		return
	}

	ids := make([]store.PointID, 0, len(sel.Points))
	for id := range sel.Points {
		ids = append(ids, id)
	}
	cmd := &command.DeletePoints{Store: s.store, IDs: ids}
	if err := s.sink.Apply(cmd); err != nil {
		slog.Warn("delete selection failed", "owner", s.target.Owner(), "error", err)
		return
	}
	s.sel.ClearOwner(s.target.Lane, s.target.Clip)
}

// storeTime converts a timeline sample time to the owner's time base,
// applying grid snapping first.
func (s *Session) storeTime(t float64) float64 {
	if s.snap != nil {
		t = s.snap(t)
	}
	if s.target.Clip != "" {
		t -= s.clipOffset
	}
	return t
}

// ownPoint verifies a point exists and belongs to this session's owner.
func (s *Session) ownPoint(id store.PointID) error {
	owner, ok := s.store.OwnerOf(id)
	if !ok {
		return ErrUnknownPoint
	}
	if owner != s.target.Owner() {
		return ErrWrongOwner
	}
	return nil
}

func (s *Session) abortGesture() {
	s.drawing = false
	s.path = s.path[:0]
	if s.drag != nil {
		s.cancelDrag()
	}
}
