package curve

// Type selects the interpolation of the segment that starts at a point
// and ends at the next point in the sequence.
type Type int

const (
	// Step holds the left point's value for the whole segment and jumps
	// to the right point's value at the segment end.
	Step Type = iota
	// Linear ramps between the endpoint values. The left point's Tension
	// biases the ramp toward ease-in or ease-out.
	Linear
	// Bezier interpolates a cubic whose inner control points are the left
	// point's Out handle and the right point's In handle.
	Bezier
)

// String returns the lowercase name used in lane files and logs.
func (t Type) String() string {
	switch t {
	case Step:
		return "step"
	case Linear:
		return "linear"
	case Bezier:
		return "bezier"
	default:
		return "unknown"
	}
}

// Handle is a Bezier control-point offset relative to its owning point.
// It is a value type with no identity of its own.
type Handle struct {
	TimeOffset  float64
	ValueOffset float64
}

// Point is one automation breakpoint.
//
// ID is a stable opaque identifier; every edit operation addresses points
// by ID, never by position, so batch edits cannot be invalidated by
// re-sorting. Tension is meaningful only for Linear points and In/Out
// only for Bezier points; the unused fields are carried but ignored.
type Point struct {
	ID      string
	Time    float64
	Value   float64
	Type    Type
	Tension float64 // in [-1, 1], Linear segments only
	In      Handle  // Bezier segments only
	Out     Handle
}
