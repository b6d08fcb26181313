package memory

import (
	"context"
	"sync"

	id "healx/pkg/domain"
	audit "healx/pkg/platform/audit"
)

// InMemoryStore keeps events per batch. Used in tests and single-node dev runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.BatchID][]audit.Event
	all    []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.BatchID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.BatchID][]audit.Event)
	s.all = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.BatchID] = append(s.events[event.BatchID], event)
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListByBatch(_ context.Context, batchID id.BatchID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[batchID]...), nil
}

// ListRecent returns the last limit events in append order.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.all) - limit
	if start < 0 {
		start = 0
	}
	return append([]audit.Event{}, s.all[start:]...), nil
}
