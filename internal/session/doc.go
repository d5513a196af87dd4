// Package session translates pointer interaction into automation edits.
//
// A Session is bound to one lane or clip and runs a small per-gesture
// state machine. Depending on the active drawing mode a gesture either
// ends in immediate committed edits (double-click add, line and pencil
// strokes) or in a non-committed drag preview that becomes exactly one
// undoable command on release.
//
// The session owns no curve data. It mutates the store exclusively by
// applying commands to the injected command sink, so every committed
// change is reversible, and it scopes point selection through the
// injected selection adapter. All dependencies are passed in explicitly;
// nothing is resolved through globals, which keeps the session fully
// testable against in-memory collaborators.
//
// The session works in (time, value) space. Mapping from screen pixels
// to samples, and any hit testing of existing points, belongs to the
// rendering layer: a pointer-down that lands on a point should start a
// point drag (BeginPointDrag), not a drawing gesture.
package session
