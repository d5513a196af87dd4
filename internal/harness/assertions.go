package harness

import "math"

const defaultTolerance = 1e-9

// checkAssertions evaluates every assertion against the final state,
// collecting all failures rather than stopping at the first.
func checkAssertions(scenario *Scenario, r *Result) {
	for i, a := range scenario.Assertions {
		switch a.Type {
		case AssertValueAt:
			checkValueAt(i, &a, r)
		case AssertPointCount:
			pts, _ := r.Store.Points(r.Owner)
			if len(pts) != a.Count {
				r.AddError("assertions[%d]: point_count: want %d, got %d", i, a.Count, len(pts))
			}
		case AssertPointAt:
			checkPointAt(i, &a, r)
		case AssertUndoDepth:
			if depth := r.Stack.Depth(); depth != a.Count {
				r.AddError("assertions[%d]: undo_depth: want %d, got %d", i, a.Count, depth)
			}
		}
	}
}

func checkValueAt(i int, a *Assertion, r *Result) {
	tol := a.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}
	got := r.Store.EvaluateCommitted(r.Owner, a.Time, a.Default)
	if math.Abs(got-a.Expect) > tol {
		r.AddError("assertions[%d]: value_at t=%v: want %v, got %v", i, a.Time, a.Expect, got)
	}
}

func checkPointAt(i int, a *Assertion, r *Result) {
	id, ok := r.Labels[a.Point]
	if !ok {
		r.AddError("assertions[%d]: point_at: unknown label %q", i, a.Point)
		return
	}
	p, ok := r.Store.Point(id)
	if !ok {
		r.AddError("assertions[%d]: point_at: point %q no longer exists", i, a.Point)
		return
	}
	if math.Abs(p.Time-a.Time) > defaultTolerance || math.Abs(p.Value-a.Value) > defaultTolerance {
		r.AddError("assertions[%d]: point_at %q: want (%v, %v), got (%v, %v)",
			i, a.Point, a.Time, a.Value, p.Time, p.Value)
	}
}
