package testutil

import "sync"

// DeterministicSequence is a resettable request sequence for tests.
//
// Unlike search.Sequence, DeterministicSequence can be reset so the same
// scenario runs repeatedly with identical sequence numbers.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicSequence struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicSequence creates a sequence starting at 0.
//
// The first call to Next() returns 1.
func NewDeterministicSequence() *DeterministicSequence {
	return &DeterministicSequence{}
}

// Next increments and returns the next sequence number.
func (s *DeterministicSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Current returns the last issued sequence number without incrementing.
func (s *DeterministicSequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset rewinds the sequence so the next call to Next() returns 1.
func (s *DeterministicSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
