package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healx/internal/identity/models"
	"healx/internal/identity/store"
	jwttoken "healx/internal/jwt_token"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/audit/publisher"
	auditmemory "healx/pkg/platform/audit/store/memory"
	"healx/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	tokens   *jwttoken.JWTService
	auditLog *auditmemory.InMemoryStore
	service  *Service
	ctx      context.Context
	now      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.tokens = jwttoken.NewJWTService("identity-test-key", "healx-test")
	s.auditLog = auditmemory.NewInMemoryStore()
	s.service = New(s.store, s.tokens,
		WithAuditPublisher(publisher.NewPublisher(s.auditLog)),
		WithSessionTTL(time.Hour))
	s.now = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) params(wallet id.WalletAddress, role id.Role) models.ProfileParams {
	return models.ProfileParams{
		Wallet: wallet,
		Name:   "Kiran Shah",
		Email:  "kiran@example.com",
		Phone:  "555-0199",
		Role:   role,
	}
}

func (s *ServiceSuite) TestSignup() {
	s.Run("creates the profile", func() {
		p, err := s.service.Signup(s.ctx, s.params("W-1", id.RoleRegulator))
		s.Require().NoError(err)
		s.Equal(id.RoleRegulator, p.Role)
		s.Equal(s.now, p.CreatedAt)

		resolved, err := s.service.Resolve(s.ctx, "W-1")
		s.Require().NoError(err)
		s.Equal(p, resolved)

		events, _ := s.auditLog.ListRecent(s.ctx, 10)
		s.Require().Len(events, 1)
		s.Equal(audit.EventProfileCreated.String(), events[0].Action)
		s.Equal(id.WalletAddress("W-1"), events[0].ActorWallet)
	})

	s.Run("refuses a second profile for the wallet", func() {
		_, err := s.service.Signup(s.ctx, s.params("W-1", id.RoleProducer))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		p, _ := s.service.Resolve(s.ctx, "W-1")
		s.Equal(id.RoleRegulator, p.Role)
	})

	s.Run("reports invalid fields as validation errors", func() {
		params := s.params("W-2", "admin")
		_, err := s.service.Signup(s.ctx, params)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestResolveMissing() {
	_, err := s.service.Resolve(s.ctx, "W-404")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestLogin() {
	s.Run("issues a token carrying wallet and role", func() {
		_, err := s.service.Signup(s.ctx, s.params("W-3", id.RoleDistributor))
		s.Require().NoError(err)

		session, err := s.service.Login(s.ctx, "W-3")
		s.Require().NoError(err)
		s.Equal(id.WalletAddress("W-3"), session.Profile.Wallet)

		claims, err := s.tokens.ValidateToken(session.Token)
		s.Require().NoError(err)
		s.Equal("W-3", claims.Wallet)
		s.Equal("distributor", claims.Role)
		s.WithinDuration(time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
	})

	s.Run("requires a profile", func() {
		_, err := s.service.Login(s.ctx, "W-unknown")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("surfaces signing failures as internal", func() {
		svc := New(s.store, failingIssuer{})
		_, err := svc.Login(s.ctx, "W-3")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

type failingIssuer struct{}

func (failingIssuer) IssueSession(id.WalletAddress, id.Role, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, errors.New("key unavailable")
}
