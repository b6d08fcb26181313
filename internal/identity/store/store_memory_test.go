package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healx/internal/identity/models"
	id "healx/pkg/domain"
	"healx/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) profile(wallet id.WalletAddress) *models.Profile {
	return &models.Profile{
		Wallet:    wallet,
		Name:      "Ravi",
		Email:     "ravi@example.com",
		Phone:     "555-0100",
		Role:      id.RoleDistributor,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateProfile(ctx, s.profile("W-1")))

	found, err := s.store.FindProfile(ctx, "W-1")
	s.Require().NoError(err)
	s.Equal(s.profile("W-1"), found)

	found.Name = "changed"
	again, _ := s.store.FindProfile(ctx, "W-1")
	s.Equal("Ravi", again.Name)
}

func (s *InMemoryStoreSuite) TestDuplicateWallet() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateProfile(ctx, s.profile("W-1")))
	s.ErrorIs(s.store.CreateProfile(ctx, s.profile("W-1")), sentinel.ErrAlreadyUsed)
}

func (s *InMemoryStoreSuite) TestMissingProfile() {
	_, err := s.store.FindProfile(context.Background(), "W-404")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
