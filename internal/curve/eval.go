package curve

import "math"

// Evaluate samples a sorted point sequence at time t.
//
// An empty sequence evaluates to def. Before the first point the curve
// holds the first point's value; after the last point it holds the last
// point's value. In between, the bracketing segment is located by binary
// search and interpolated according to the left point's Type.
//
// Evaluate is pure and allocation-free. It is the single evaluation
// routine shared by the edit thread and the real-time read path.
func Evaluate(points []Point, t, def float64) float64 {
	n := len(points)
	if n == 0 {
		return def
	}
	if t <= points[0].Time {
		return points[0].Value
	}
	if t >= points[n-1].Time {
		return points[n-1].Value
	}

	// Find the last index lo with points[lo].Time <= t. The loop is a
	// hand-rolled binary search so the hot path stays closure-free.
	lo, hi := 0, n-1
	for lo+1 < hi {
		mid := int(uint(lo+hi) >> 1)
		if points[mid].Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	return evalSegment(&points[lo], &points[hi], t)
}

// evalSegment interpolates between two consecutive points.
func evalSegment(p, q *Point, t float64) float64 {
	dt := q.Time - p.Time
	if dt <= 0 {
		// Zero-duration segment: the left value holds for the instant,
		// the right point takes over at its own time. Never divides.
		return p.Value
	}

	switch p.Type {
	case Step:
		return p.Value
	case Linear:
		u := (t - p.Time) / dt
		return lerp(p.Value, q.Value, Ease(u, p.Tension))
	case Bezier:
		return evalBezier(p, q, t)
	default:
		return p.Value
	}
}

// Ease applies the asymmetric power-law tension shaping to a normalized
// segment position u in [0, 1]. Positive tension eases in (slow start),
// negative tension eases out (slow end); zero is the identity. The
// exponent 1+2|k| maps tension ±1 to a cubic-strength ease.
func Ease(u, tension float64) float64 {
	switch {
	case tension > 0:
		return math.Pow(u, 1+2*tension)
	case tension < 0:
		return 1 - math.Pow(1-u, 1-2*tension)
	default:
		return u
	}
}

func lerp(a, b, u float64) float64 {
	return a + (b-a)*u
}
