package storage

import (
	"sync"
	"time"
)

// MemoryStore implements Store using an in-memory slice. Results are
// intentionally ephemeral; persistence is out of scope for this
// service.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make([]Event, 0),
	}
}

// Record stores an event.
func (s *MemoryStore) Record(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Query retrieves events matching the given criteria.
func (s *MemoryStore) Query(opts QueryOptions) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Event

	for _, event := range s.events {
		if opts.Since != nil && event.Timestamp.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && event.Timestamp.After(*opts.Until) {
			continue
		}
		if opts.Level != "" && event.Level != opts.Level {
			continue
		}
		if opts.Language != "" && event.Language != opts.Language {
			continue
		}
		if opts.MinScore > 0 && event.Score < opts.MinScore {
			continue
		}

		results = append(results, event)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(results) {
			return []Event{}, nil
		}
		results = results[opts.Offset:]
	}

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

// CountToday returns the number of events recorded today.
func (s *MemoryStore) CountToday() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := time.Now().Truncate(24 * time.Hour)
	var count int64

	for _, event := range s.events {
		if event.Timestamp.After(today) {
			count++
		}
	}

	return count, nil
}

// LevelCounts returns how many events landed on each risk level.
func (s *MemoryStore) LevelCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, event := range s.events {
		counts[event.Level]++
	}
	return counts, nil
}

// Clear removes all stored events (for testing).
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]Event, 0)
}

// Close closes the storage (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}
