// Package harness provides scenario-based conformance testing for the
// automation engine.
//
// A scenario is a YAML file describing an edit session against one
// fresh lane: a sequence of steps (add, move, delete, tension, handles,
// draw, undo, redo) followed by assertions on the resulting curve and
// undo history. Steps run through the real command stack and edit
// session, so a scenario exercises the same code paths an interactive
// editor would.
//
// # Scenario Format
//
//	name: tension-pull
//	description: "Positive tension bends a ramp toward the start value"
//	lane: volume
//	steps:
//	  - add: {label: a, time: 0, value: 0.2}
//	  - add: {label: b, time: 4, value: 0.8}
//	  - tension: {point: a, value: 1}
//	assertions:
//	  - {type: value_at, time: 1, expect: 0.209375}
//	  - {type: point_count, count: 2}
//	golden:
//	  from: 0
//	  to: 4
//	  step: 1
//
// Points created by add steps can carry a label; later steps and
// assertions refer to them by that label. Points created by draw steps
// are anonymous.
//
// # Assertion Types
//
//   - value_at: the committed curve evaluates to expect at time
//     (within tolerance, default 1e-9)
//   - point_count: the lane holds exactly count points
//   - point_at: the labeled point sits at the given time and value
//   - undo_depth: the undo stack holds exactly count steps
//
// # Golden Traces
//
// When a scenario carries a golden block, the final committed curve is
// sampled over [from, to] at the given step and compared against
// testdata/golden/{name}.golden with goldie. Regenerate with:
//
//	go test ./internal/harness -update
//
// Determinism comes from sequential point IDs; no wall clock or UUIDs
// enter a scenario run.
package harness
