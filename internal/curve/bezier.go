package curve

import "math"

// solveTolerance is the time tolerance for the Bezier parameter solve,
// as a fraction of the segment duration.
const solveTolerance = 1e-4

// maxBisections bounds the parameter solve. 48 halvings reduce the
// bracket far below any representable tolerance, so the solve terminates
// in bounded time on every input, including non-monotonic time curves
// that slipped past edit-time clamping.
const maxBisections = 48

// evalBezier interpolates a Bezier segment at time t.
//
// The control polygon is P0=(p.Time,p.Value), P1=P0+p.Out, P2=Q+q.In,
// P3=Q=(q.Time,q.Value). The parametric time component is not a linear
// function of the parameter, so the segment is sampled by first solving
// cubicTime(u)=t and then evaluating the value cubic at that u.
func evalBezier(p, q *Point, t float64) float64 {
	t0, v0 := p.Time, p.Value
	t3, v3 := q.Time, q.Value
	t1 := t0 + p.Out.TimeOffset
	v1 := v0 + p.Out.ValueOffset
	t2 := t3 + q.In.TimeOffset
	v2 := v3 + q.In.ValueOffset

	u := solveTime(t0, t1, t2, t3, t)
	return cubic(v0, v1, v2, v3, u)
}

// cubic evaluates a one-dimensional cubic Bezier in Bernstein form.
func cubic(c0, c1, c2, c3, u float64) float64 {
	mu := 1 - u
	return c0*mu*mu*mu + 3*c1*mu*mu*u + 3*c2*mu*u*u + c3*u*u*u
}

// solveTime finds u in [0,1] with cubic(t0,t1,t2,t3,u) ≈ t by bisection.
//
// Bisection is preferred over Newton's method here: the time cubic is
// continuous with cubic(0)=t0 < t < t3=cubic(1), so a crossing always
// exists inside the bracket and convergence never depends on the curve
// being monotonic or on derivative quality. The result is clamped to
// [0,1] by construction.
func solveTime(t0, t1, t2, t3, t float64) float64 {
	tol := solveTolerance * (t3 - t0)
	lo, hi := 0.0, 1.0
	for i := 0; i < maxBisections; i++ {
		mid := 0.5 * (lo + hi)
		tm := cubic(t0, t1, t2, t3, mid)
		if math.Abs(tm-t) <= tol {
			return mid
		}
		if tm < t {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// SegmentMonotonic reports whether a Bezier segment of the given duration
// has a non-decreasing time component for the given handle offsets.
//
// Ordered control times t0 <= t1 <= t2 <= t3 make every Bernstein
// coefficient of the time derivative non-negative, which is a sufficient
// condition for monotonicity. This is the condition the store enforces.
func SegmentMonotonic(duration float64, out, in Handle) bool {
	if duration < 0 {
		return false
	}
	t1 := out.TimeOffset
	t2 := duration + in.TimeOffset
	return t1 >= 0 && t2 >= t1 && duration >= t2
}

// ClampSegment constrains the outgoing handle of a segment's left point
// and the incoming handle of its right point so the segment's time cubic
// is non-decreasing over the whole parameter range. Offending offsets are
// clamped, never rejected; value offsets pass through untouched.
func ClampSegment(duration float64, out, in Handle) (Handle, Handle) {
	if duration <= 0 {
		out.TimeOffset = 0
		in.TimeOffset = 0
		return out, in
	}
	out.TimeOffset = clampF(out.TimeOffset, 0, duration)
	// Keep the second control time at or after the first.
	in.TimeOffset = clampF(in.TimeOffset, out.TimeOffset-duration, 0)
	return out, in
}

// ClampOut constrains a point's outgoing handle against the segment that
// starts at it. nextIn is the right endpoint's incoming time offset,
// assumed already valid for the segment.
func ClampOut(duration float64, nextIn float64, out Handle) Handle {
	if duration <= 0 {
		out.TimeOffset = 0
		return out
	}
	hi := duration + nextIn
	out.TimeOffset = clampF(out.TimeOffset, 0, clampF(hi, 0, duration))
	return out
}

// ClampIn constrains a point's incoming handle against the segment that
// ends at it. prevOut is the left endpoint's outgoing time offset,
// assumed already valid for the segment.
func ClampIn(duration float64, prevOut float64, in Handle) Handle {
	if duration <= 0 {
		in.TimeOffset = 0
		return in
	}
	lo := prevOut - duration
	in.TimeOffset = clampF(in.TimeOffset, clampF(lo, -duration, 0), 0)
	return in
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
