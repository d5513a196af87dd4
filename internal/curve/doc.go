// Package curve implements evaluation of piecewise automation curves.
//
// A curve is an ordered sequence of breakpoints. The span between two
// consecutive points is a segment, and the left point's Type selects how
// the segment is interpolated: a held Step, a tension-shaped Linear ramp,
// or a cubic Bezier with per-point control handles.
//
// All functions in this package are pure: evaluation depends only on the
// point sequence and the sample time, performs no allocation, and is safe
// to call concurrently from any number of readers. This is what allows a
// real-time audio thread to sample published curve snapshots directly.
package curve
