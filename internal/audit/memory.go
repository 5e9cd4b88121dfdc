package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. Used in tests; Err, when set, is
// returned from every Append to exercise persistence-failure paths.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record

	Err error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Append records the row or fails with Err.
func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of everything appended so far.
func (s *MemoryStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
