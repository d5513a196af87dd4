// Package store owns the committed automation data: lanes, clips, and
// their point sequences.
//
// The store is the single source of truth for curve shape. It enforces
// the structural invariants (points sorted by time, tension clamped to
// [-1,1], Bezier handle offsets clamped so segment time stays monotonic)
// and emits change notifications on every committed mutation.
//
// Threading model: all mutations and listener callbacks happen on one
// logical edit thread; the store takes no locks and is not reentrant-safe
// across threads. The real-time read path never touches the store
// directly - it samples immutable snapshots published by rt.Sampler,
// which subscribes to the store's notifications.
//
// Undo discipline: the store performs mutations but records no history.
// Callers (normally the edit session) wrap each mutation in exactly one
// command, or one compound group, on the command sink before it counts
// as committed.
package store
