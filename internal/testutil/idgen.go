// Package testutil provides deterministic helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync"
)

// Sequence mints predictable IDs ("p-1", "p-2", ...) so tests and golden
// files don't churn on random UUIDs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next ID in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}
