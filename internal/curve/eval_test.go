package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearPair() []Point {
	return []Point{
		{ID: "a", Time: 0, Value: 0.2, Type: Linear},
		{ID: "b", Time: 4, Value: 0.8, Type: Linear},
	}
}

func TestEvaluate_EmptyReturnsDefault(t *testing.T) {
	assert.Equal(t, 0.5, Evaluate(nil, 0, 0.5))
	assert.Equal(t, -1.0, Evaluate([]Point{}, 123.0, -1.0))
}

func TestEvaluate_FlatHoldOutsideRange(t *testing.T) {
	points := linearPair()

	assert.Equal(t, 0.2, Evaluate(points, -10, 0), "hold first value before start")
	assert.Equal(t, 0.2, Evaluate(points, 0, 0), "exact start time")
	assert.Equal(t, 0.8, Evaluate(points, 4, 0), "exact end time")
	assert.Equal(t, 0.8, Evaluate(points, 1e9, 0), "hold last value after end")
}

func TestEvaluate_LinearMidpointIsMean(t *testing.T) {
	points := linearPair()

	got := Evaluate(points, 2, 0)
	assert.InDelta(t, 0.5, got, 1e-12, "tension 0 midpoint is the arithmetic mean")
}

func TestEvaluate_LinearQuarter(t *testing.T) {
	points := linearPair()

	got := Evaluate(points, 1, 0)
	assert.InDelta(t, 0.35, got, 1e-12)
}

func TestEvaluate_PositiveTensionEasesIn(t *testing.T) {
	points := linearPair()
	points[0].Tension = 1

	// u=0.25, tension=1 => u'=0.25^3=0.015625 => 0.2 + 0.015625*0.6
	got := Evaluate(points, 1, 0)
	assert.InDelta(t, 0.209375, got, 1e-12)
	assert.Less(t, got, 0.35, "noticeably below the linear value")
}

func TestEvaluate_NegativeTensionEasesOut(t *testing.T) {
	points := linearPair()
	points[0].Tension = -1

	// u=0.25, tension=-1 => u'=1-0.75^3=0.578125 => 0.2 + 0.578125*0.6
	got := Evaluate(points, 1, 0)
	assert.InDelta(t, 0.546875, got, 1e-12)
	assert.Greater(t, got, 0.35, "noticeably above the linear value")
}

func TestEvaluate_StepHoldsUntilNextPoint(t *testing.T) {
	points := []Point{
		{ID: "a", Time: 0, Value: 0.25, Type: Step},
		{ID: "b", Time: 2, Value: 0.75, Type: Step},
	}

	for _, tt := range []float64{0, 0.5, 1, 1.999} {
		assert.Equal(t, 0.25, Evaluate(points, tt, 0), "t=%v inside [p, q) holds p.Value", tt)
	}
	assert.Equal(t, 0.75, Evaluate(points, 2, 0), "discontinuous jump exactly at q.Time")
	assert.Equal(t, 0.75, Evaluate(points, 3, 0))
}

func TestEvaluate_DegenerateSegmentActsAsStep(t *testing.T) {
	points := []Point{
		{ID: "a", Time: 0, Value: 0.0, Type: Linear},
		{ID: "b", Time: 2, Value: 0.1, Type: Linear},
		{ID: "c", Time: 2, Value: 0.9, Type: Linear},
		{ID: "d", Time: 4, Value: 1.0, Type: Linear},
	}

	// Approaching the shared time from the left converges on the earlier
	// point's value; at the shared instant the later point takes over.
	assert.InDelta(t, 0.1, Evaluate(points, 1.9999, 0), 1e-3)
	assert.InDelta(t, 0.9, Evaluate(points, 2, 0), 1e-12)
	assert.InDelta(t, 0.95, Evaluate(points, 3, 0), 1e-12)
}

func TestEvaluate_SinglePointHoldsEverywhere(t *testing.T) {
	points := []Point{{ID: "only", Time: 5, Value: 0.42, Type: Bezier}}

	assert.Equal(t, 0.42, Evaluate(points, 0, 0))
	assert.Equal(t, 0.42, Evaluate(points, 5, 0))
	assert.Equal(t, 0.42, Evaluate(points, 50, 0))
}

func TestEvaluate_ManyPointsBinarySearch(t *testing.T) {
	var points []Point
	for i := 0; i < 100; i++ {
		points = append(points, Point{Time: float64(i), Value: float64(i), Type: Linear})
	}

	for _, tt := range []float64{0.5, 17.25, 42.0, 98.75} {
		assert.InDelta(t, tt, Evaluate(points, tt, 0), 1e-12, "identity staircase at t=%v", tt)
	}
}

func TestEase_Endpoints(t *testing.T) {
	for _, k := range []float64{-1, -0.5, 0, 0.5, 1} {
		assert.Equal(t, 0.0, Ease(0, k), "tension %v maps 0 to 0", k)
		assert.Equal(t, 1.0, Ease(1, k), "tension %v maps 1 to 1", k)
	}
}

func TestEase_Monotonic(t *testing.T) {
	for _, k := range []float64{-1, -0.3, 0, 0.3, 1} {
		prev := -1.0
		for u := 0.0; u <= 1.0; u += 0.01 {
			e := Ease(u, k)
			require.GreaterOrEqual(t, e, prev, "tension %v must ease monotonically", k)
			prev = e
		}
	}
}

func TestEvaluate_NoOpMoveReproducesCurve(t *testing.T) {
	points := []Point{
		{ID: "a", Time: 0, Value: 0.2, Type: Linear, Tension: 0.5},
		{ID: "b", Time: 2, Value: 0.9, Type: Step},
		{ID: "c", Time: 5, Value: 0.1, Type: Linear},
	}
	before := make([]float64, 0, 60)
	for tt := -1.0; tt < 6.0; tt += 0.125 {
		before = append(before, Evaluate(points, tt, 0))
	}

	// A move to the original position is a structural no-op.
	points[1].Time, points[1].Value = 2, 0.9

	i := 0
	for tt := -1.0; tt < 6.0; tt += 0.125 {
		assert.Equal(t, before[i], Evaluate(points, tt, 0))
		i++
	}
}
