package store

import "github.com/google/uuid"

// IDGenerator mints identifiers for lanes, clips, and points.
// Implemented by UUIDv7Generator (production) and testutil.Sequence
// (deterministic tests).
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs sort by
// creation time - convenient when eyeballing project files and logs.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
