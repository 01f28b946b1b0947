package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/heliowatt/heliowatt/internal/domain/session"
)

type storedRecord struct {
	payload   session.Record
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the session store for
// tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]storedRecord
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]storedRecord)}
}

// Get implements session.Store.
func (s *MemoryStore) Get(_ context.Context, userID int64) (session.Record, bool, error) {
	if userID <= 0 {
		return session.Record{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return session.Record{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.records, userID)
		s.mu.Unlock()
		return session.Record{}, false, nil
	}
	return record.payload, true, nil
}

// Save stores the record with optional TTL.
func (s *MemoryStore) Save(_ context.Context, record session.Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.records[record.UserID] = storedRecord{
		payload:   record,
		expiresAt: exp,
	}
	return nil
}

// Delete removes the record for a user.
func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ session.Store = (*MemoryStore)(nil)
