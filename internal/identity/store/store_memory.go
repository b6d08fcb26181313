package store

import (
	"context"
	"fmt"
	"sync"

	"healx/internal/identity/models"
	id "healx/pkg/domain"
	"healx/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.WalletAddress]*models.Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.WalletAddress]*models.Profile)}
}

func (s *InMemoryStore) CreateProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.Wallet]; ok {
		return fmt.Errorf("profile %s: %w", p.Wallet, sentinel.ErrAlreadyUsed)
	}
	stored := *p
	s.profiles[p.Wallet] = &stored
	return nil
}

func (s *InMemoryStore) FindProfile(_ context.Context, wallet id.WalletAddress) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[wallet]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", wallet, sentinel.ErrNotFound)
	}
	c := *p
	return &c, nil
}
