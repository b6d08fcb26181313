package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore()
	s.store.now = func() time.Time { return s.now }
}

func (s *InMemoryStoreSuite) TestAllowsUpToLimit() {
	ctx := context.Background()
	for i := range 3 {
		res, err := s.store.Allow(ctx, "k", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
	}

	res, err := s.store.Allow(ctx, "k", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(0, res.Remaining)
	s.Equal(s.now.Add(time.Minute), res.ResetAt)
}

func (s *InMemoryStoreSuite) TestWindowSlides() {
	ctx := context.Background()
	_, _ = s.store.Allow(ctx, "k", 2, time.Minute)
	s.now = s.now.Add(30 * time.Second)
	_, _ = s.store.Allow(ctx, "k", 2, time.Minute)

	res, _ := s.store.Allow(ctx, "k", 2, time.Minute)
	s.False(res.Allowed)

	s.now = s.now.Add(31 * time.Second)
	res, _ = s.store.Allow(ctx, "k", 2, time.Minute)
	s.True(res.Allowed)
	s.Equal(0, res.Remaining)
}

func (s *InMemoryStoreSuite) TestKeysAreIndependent() {
	ctx := context.Background()
	_, _ = s.store.Allow(ctx, key(ClassVerify, "10.0.0.1"), 1, time.Minute)

	res, _ := s.store.Allow(ctx, key(ClassVerify, "10.0.0.2"), 1, time.Minute)
	s.True(res.Allowed)
	res, _ = s.store.Allow(ctx, key(ClassAuth, "10.0.0.1"), 1, time.Minute)
	s.True(res.Allowed)
}

func (s *InMemoryStoreSuite) TestPrunesIdleKeys() {
	ctx := context.Background()
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, _ = s.store.Allow(ctx, key(ClassVerify, ip), 5, time.Minute)
	}
	s.Equal(3, s.store.Len())

	s.now = s.now.Add(30 * time.Second)
	_, _ = s.store.Allow(ctx, key(ClassVerify, "10.0.0.1"), 5, time.Minute)

	s.now = s.now.Add(45 * time.Second)
	_, _ = s.store.Allow(ctx, key(ClassVerify, "10.0.0.4"), 5, time.Minute)

	// .2 and .3 went idle a full window ago; .1 was seen 45s ago.
	s.Equal(2, s.store.Len())
	res, _ := s.store.Allow(ctx, key(ClassVerify, "10.0.0.1"), 5, time.Minute)
	s.Equal(3, res.Remaining)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := &Result{ResetAt: now.Add(1500 * time.Millisecond)}
	if got := r.RetryAfter(now); got != 2 {
		t.Fatalf("RetryAfter = %d, want 2", got)
	}
	r.ResetAt = now.Add(-time.Second)
	if got := r.RetryAfter(now); got != 1 {
		t.Fatalf("RetryAfter = %d, want 1", got)
	}
}
