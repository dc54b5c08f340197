package verification

import (
	"context"
	"sync"

	"github.com/moodgarden/verify-api/internal/domain"
)

// MemoryStore keeps pending codes in a process-local map. Records are lost on restart
// and are not shared between instances. Its methods never return an error.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.VerificationRecord
	opts    Options
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.VerificationRecord),
		opts:    opts.WithDefaults(),
	}
}

func (s *MemoryStore) Issue(_ context.Context, recipient string) (string, error) {
	rec := s.opts.NewRecord(recipient)
	s.mu.Lock()
	s.records[recipient] = rec
	s.mu.Unlock()
	return rec.Code, nil
}

func (s *MemoryStore) Validate(_ context.Context, recipient, code string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *domain.VerificationRecord
	if rec, ok := s.records[recipient]; ok {
		found = &rec
	}
	outcome, remove := Check(found, code, s.opts.Now())
	if remove {
		delete(s.records, recipient)
	}
	return outcome, nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	n := 0
	for recipient, rec := range s.records {
		if Expired(rec, now) {
			delete(s.records, recipient)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
