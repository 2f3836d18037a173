package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using an in-memory map. It is intended
// for tests and the "memory" backend in development configs.
type MemoryStore struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Store persists a record to memory.
func (s *MemoryStore) Store(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query returns records matching the query, newest first.
func (s *MemoryStore) Query(ctx context.Context, query Query) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Record
	for _, record := range s.records {
		if s.matches(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	start := query.Offset
	if start > len(results) {
		return []*Record{}, nil
	}

	end := start + limit
	if end > len(results) {
		end = len(results)
	}

	return results[start:end], nil
}

// DeleteOlderThan removes records created before the cutoff.
func (s *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.CreatedAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records)), nil
}

// Ping always succeeds for the memory backend.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close releases nothing for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

// matches reports whether a record satisfies the query filters.
func (s *MemoryStore) matches(record *Record, query Query) bool {
	if query.OperationID != "" && record.OperationID != query.OperationID {
		return false
	}
	if query.Operation != "" && record.Operation != query.Operation {
		return false
	}
	if query.Tier != "" && record.Tier != query.Tier {
		return false
	}
	if !query.Since.IsZero() && record.CreatedAt.Before(query.Since) {
		return false
	}
	if !query.Until.IsZero() && record.CreatedAt.After(query.Until) {
		return false
	}
	return true
}
