package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often Allow drops windows that have gone idle.
const sweepInterval = time.Minute

// InMemoryStore keeps a sliding window of request timestamps per key. It is
// per process, so limits are not shared between replicas. Keys whose window
// has fully expired are pruned periodically.
type InMemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*slidingWindow
	now       func() time.Time
	lastSweep time.Time
}

type slidingWindow struct {
	stamps []time.Time
	length time.Duration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*slidingWindow), now: time.Now}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, length time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok {
		w = &slidingWindow{}
		s.windows[key] = w
	}
	w.length = length
	cutoff := now.Add(-length)
	i := 0
	for ; i < len(w.stamps); i++ {
		if w.stamps[i].After(cutoff) {
			break
		}
	}
	w.stamps = w.stamps[i:]

	if len(w.stamps) >= limit {
		return &Result{Allowed: false, Limit: limit, ResetAt: w.stamps[0].Add(length)}, nil
	}
	w.stamps = append(w.stamps, now)
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(w.stamps),
		ResetAt:   w.stamps[0].Add(length),
	}, nil
}

// Len reports how many keys are tracked.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// sweep must be called with mu held.
func (s *InMemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, w := range s.windows {
		if len(w.stamps) == 0 || !w.stamps[len(w.stamps)-1].Add(w.length).After(now) {
			delete(s.windows, key)
		}
	}
}
