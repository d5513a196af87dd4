package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/testutil"
)

func laneWithStore(t *testing.T) (*Store, OwnerID) {
	t.Helper()
	s := New(WithIDGenerator(testutil.NewSequence("p")))
	id := s.CreateLane("volume")
	return s, OwnerID(id)
}

func TestAddPoint_KeepsSortedOrder(t *testing.T) {
	s, owner := laneWithStore(t)

	_, err := s.AddPoint(owner, 4, 0.8, curve.Linear)
	require.NoError(t, err)
	_, err = s.AddPoint(owner, 0, 0.2, curve.Linear)
	require.NoError(t, err)
	_, err = s.AddPoint(owner, 2, 0.5, curve.Linear)
	require.NoError(t, err)

	pts, _ := s.Points(owner)
	require.Len(t, pts, 3)
	assert.Equal(t, []float64{0, 2, 4}, []float64{pts[0].Time, pts[1].Time, pts[2].Time})
}

func TestAddPoint_UnknownOwner(t *testing.T) {
	s, _ := laneWithStore(t)

	_, err := s.AddPoint("missing", 0, 0, curve.Linear)
	assert.True(t, IsUnknownOwner(err))
}

func TestAddPoint_DuplicateTimeReplacesInPlace(t *testing.T) {
	s, owner := laneWithStore(t)

	first, err := s.AddPoint(owner, 1, 0.3, curve.Linear)
	require.NoError(t, err)
	require.NoError(t, s.SetTension(first, 0.5))

	second, err := s.AddPoint(owner, 1, 0.9, curve.Step)
	require.NoError(t, err)

	assert.Equal(t, first, second, "replace keeps the existing point's ID")
	pts, _ := s.Points(owner)
	require.Len(t, pts, 1)
	assert.Equal(t, 0.9, pts[0].Value)
	assert.Equal(t, curve.Step, pts[0].Type)
	assert.Equal(t, 0.5, pts[0].Tension, "shaping fields survive a replace")
}

func TestMovePoint_CrossesNeighbor(t *testing.T) {
	s, owner := laneWithStore(t)

	a, _ := s.AddPoint(owner, 0, 0.0, curve.Linear)
	b, _ := s.AddPoint(owner, 2, 0.5, curve.Linear)

	require.NoError(t, s.MovePoint(a, 3, 0.1))

	pts, _ := s.Points(owner)
	require.Len(t, pts, 2)
	assert.Equal(t, string(b), pts[0].ID, "moved point re-sorted past its neighbor")
	assert.Equal(t, string(a), pts[1].ID)
	assert.Equal(t, 3.0, pts[1].Time)
	assert.Equal(t, 0.1, pts[1].Value)
}

func TestMovePoint_Unknown(t *testing.T) {
	s, _ := laneWithStore(t)
	rec := &recorder{}
	s.AddListener(rec)

	err := s.MovePoint("ghost", 0, 0)
	assert.True(t, IsPointNotFound(err))
	assert.Empty(t, rec.pointsChanged, "failed move mutates nothing and stays silent")
}

func TestMovePoint_OntoNeighborTimeOrdersAfter(t *testing.T) {
	s, owner := laneWithStore(t)

	a, _ := s.AddPoint(owner, 0, 0.1, curve.Linear)
	b, _ := s.AddPoint(owner, 2, 0.9, curve.Linear)

	require.NoError(t, s.MovePoint(a, 2, 0.1))

	pts, _ := s.Points(owner)
	require.Len(t, pts, 2)
	assert.Equal(t, string(b), pts[0].ID, "existing point keeps precedence at the shared time")
	assert.Equal(t, string(a), pts[1].ID)
	// The zero-duration segment acts as a step; the later point's value
	// holds after the shared instant.
	assert.Equal(t, 0.1, s.Evaluate(owner, 3, 0))
}

func TestDeletePoint_NoOpWhenUnknown(t *testing.T) {
	s, _ := laneWithStore(t)

	_, ok := s.DeletePoint("ghost")
	assert.False(t, ok)
}

func TestDeletePoints_ByStableID(t *testing.T) {
	s, owner := laneWithStore(t)

	a, _ := s.AddPoint(owner, 0, 0.1, curve.Linear)
	b, _ := s.AddPoint(owner, 1, 0.2, curve.Linear)
	c, _ := s.AddPoint(owner, 2, 0.3, curve.Linear)
	rec := &recorder{}
	s.AddListener(rec)

	// Order of IDs is irrelevant; unknown IDs are skipped.
	removed := s.DeletePoints([]PointID{c, "ghost", a})

	require.Len(t, removed, 2)
	pts, _ := s.Points(owner)
	require.Len(t, pts, 1)
	assert.Equal(t, string(b), pts[0].ID)
	assert.Equal(t, []OwnerID{owner}, rec.pointsChanged, "one notification per touched owner")
}

func TestDeleteAllPoints_EvaluatesToDefault(t *testing.T) {
	s, owner := laneWithStore(t)

	a, _ := s.AddPoint(owner, 0, 0.1, curve.Linear)
	b, _ := s.AddPoint(owner, 5, 0.9, curve.Linear)
	s.DeletePoints([]PointID{a, b})

	for _, tt := range []float64{-1, 0, 2.5, 5, 100} {
		assert.Equal(t, 0.7, s.Evaluate(owner, tt, 0.7), "empty lane returns the caller default at t=%v", tt)
	}
}

func TestSetHandles_ClampsNonMonotonicOffsets(t *testing.T) {
	s, owner := laneWithStore(t)

	a, _ := s.AddPoint(owner, 0, 0, curve.Bezier)
	b, _ := s.AddPoint(owner, 1, 1, curve.Bezier)

	// An out handle reaching past the next point must be pulled back to
	// the segment.
	require.NoError(t, s.SetHandles(a, curve.Handle{}, curve.Handle{TimeOffset: 5, ValueOffset: 0.5}))
	pa, _ := s.Point(a)
	assert.Equal(t, 1.0, pa.Out.TimeOffset, "clamped to segment duration")
	assert.Equal(t, 0.5, pa.Out.ValueOffset, "value offset untouched")

	// The neighbor's in handle must now stop at the clamped control time.
	require.NoError(t, s.SetHandles(b, curve.Handle{TimeOffset: -5}, curve.Handle{}))
	pb, _ := s.Point(b)
	assert.Equal(t, 0.0, pb.In.TimeOffset)

	pts, _ := s.Points(owner)
	assert.True(t, curve.SegmentMonotonic(1, pts[0].Out, pts[1].In), "committed curve stays evaluable")
}

func TestSetHandles_WrongType(t *testing.T) {
	s, owner := laneWithStore(t)
	a, _ := s.AddPoint(owner, 0, 0, curve.Linear)

	err := s.SetHandles(a, curve.Handle{}, curve.Handle{})
	assert.True(t, IsWrongCurveType(err))
}

func TestMovePoint_ReclampsShrunkSegments(t *testing.T) {
	s, owner := laneWithStore(t)

	a, _ := s.AddPoint(owner, 0, 0, curve.Bezier)
	b, _ := s.AddPoint(owner, 4, 1, curve.Bezier)
	require.NoError(t, s.SetHandles(a, curve.Handle{}, curve.Handle{TimeOffset: 3}))

	// Shrinking the segment invalidates the wide handle; the store must
	// restore the invariant rather than publish a folding time curve.
	require.NoError(t, s.MovePoint(b, 1, 1))

	pts, _ := s.Points(owner)
	assert.True(t, curve.SegmentMonotonic(pts[1].Time-pts[0].Time, pts[0].Out, pts[1].In))
	assert.LessOrEqual(t, pts[0].Out.TimeOffset, 1.0)
}

func TestSetTension_ClampsRange(t *testing.T) {
	s, owner := laneWithStore(t)
	a, _ := s.AddPoint(owner, 0, 0, curve.Linear)

	require.NoError(t, s.SetTension(a, 7))
	p, _ := s.Point(a)
	assert.Equal(t, 1.0, p.Tension)

	require.NoError(t, s.SetTension(a, -7))
	p, _ = s.Point(a)
	assert.Equal(t, -1.0, p.Tension)
}

func TestSetTension_WrongType(t *testing.T) {
	s, owner := laneWithStore(t)
	a, _ := s.AddPoint(owner, 0, 0, curve.Bezier)

	err := s.SetTension(a, 0.5)
	assert.True(t, IsWrongCurveType(err))
}

func TestEvaluate_TensionScenario(t *testing.T) {
	s, owner := laneWithStore(t)

	a, _ := s.AddPoint(owner, 0, 0.2, curve.Linear)
	_, _ = s.AddPoint(owner, 4, 0.8, curve.Linear)

	assert.InDelta(t, 0.5, s.Evaluate(owner, 2, 0), 1e-12, "tension 0 midpoint")

	require.NoError(t, s.SetTension(a, 1))
	assert.InDelta(t, 0.209375, s.Evaluate(owner, 1, 0), 1e-12)
}

func TestPreview_OverridesRenderReadsOnly(t *testing.T) {
	s, owner := laneWithStore(t)
	rec := &recorder{}

	a, _ := s.AddPoint(owner, 0, 0.0, curve.Linear)
	_, _ = s.AddPoint(owner, 4, 1.0, curve.Linear)
	before, _ := s.Points(owner)
	s.AddListener(rec)

	require.NoError(t, s.SetPreview(a, 2, 0.0))

	// Render path sees the dragged position: segment now spans [2,4].
	assert.Equal(t, 0.0, s.Evaluate(owner, 1, -1), "preview holds the dragged point's value before it")
	assert.InDelta(t, 0.5, s.Evaluate(owner, 3, -1), 1e-12)

	// Committed reads are untouched.
	assert.InDelta(t, 0.25, s.EvaluateCommitted(owner, 1, -1), 1e-12)
	after, _ := s.Points(owner)
	assert.Equal(t, before, after, "preview never mutates committed points")

	require.Len(t, rec.previews, 1)
	assert.Equal(t, a, rec.previews[0].Point)
	assert.Empty(t, rec.pointsChanged, "preview is not a committed mutation")

	s.ClearPreview()
	assert.InDelta(t, 0.25, s.Evaluate(owner, 1, -1), 1e-12, "discarded preview leaves no trace")
}

func TestPreview_ClearedWhenPointDeleted(t *testing.T) {
	s, owner := laneWithStore(t)
	a, _ := s.AddPoint(owner, 0, 0.0, curve.Linear)

	require.NoError(t, s.SetPreview(a, 1, 0.5))
	s.DeletePoint(a)

	_, active := s.ActivePreview()
	assert.False(t, active, "preview cannot outlive its point")
	assert.Equal(t, 0.9, s.Evaluate(owner, 0, 0.9))
}
