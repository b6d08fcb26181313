// Package service resolves wallets to profiles and issues session tokens.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"healx/internal/identity/metrics"
	"healx/internal/identity/models"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/sentinel"
	"healx/pkg/platform/tracing"
	"healx/pkg/requestcontext"
)

const (
	tracerScope = "healx/identity"

	// DefaultSessionTTL applies when no TTL option is given.
	DefaultSessionTTL = 12 * time.Hour
)

type Store interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	FindProfile(ctx context.Context, wallet id.WalletAddress) (*models.Profile, error)
}

// SessionIssuer signs session tokens.
type SessionIssuer interface {
	IssueSession(wallet id.WalletAddress, role id.Role, ttl time.Duration) (string, time.Time, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Session is a signed token bound to one profile.
type Session struct {
	Profile   *models.Profile
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	store          Store
	sessions       SessionIssuer
	sessionTTL     time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func New(store Store, sessions SessionIssuer, opts ...Option) *Service {
	s := &Service{store: store, sessions: sessions, sessionTTL: DefaultSessionTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates the profile for a wallet. A wallet holds one profile and
// one role for its lifetime.
func (s *Service) Signup(ctx context.Context, params models.ProfileParams) (profile *models.Profile, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "identity.Signup",
		attribute.String("wallet", params.Wallet.String()),
		attribute.String("role", params.Role.String()))
	defer func() { end(err) }()

	profile, err = models.NewProfile(params, requestcontext.Now(ctx))
	if err != nil {
		return nil, toValidation(err)
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a profile already exists for this wallet")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}

	s.metrics.IncrementProfileCreated(profile.Role.String())
	s.logAudit(ctx, audit.EventProfileCreated,
		"actor_wallet", profile.Wallet,
		"detail", profile.Role.String(),
	)
	return profile, nil
}

func (s *Service) Resolve(ctx context.Context, wallet id.WalletAddress) (*models.Profile, error) {
	p, err := s.store.FindProfile(ctx, wallet)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

// Login issues a session for a wallet that already has a profile.
func (s *Service) Login(ctx context.Context, wallet id.WalletAddress) (session *Session, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "identity.Login",
		attribute.String("wallet", wallet.String()))
	defer func() { end(err) }()

	profile, err := s.Resolve(ctx, wallet)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.sessions.IssueSession(profile.Wallet, profile.Role, s.sessionTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}

	s.metrics.IncrementSessionIssued()
	s.logAudit(ctx, audit.EventSessionIssued,
		"actor_wallet", profile.Wallet,
		"detail", profile.Role.String(),
	)
	return &Session{Profile: profile, Token: token, ExpiresAt: expiresAt}, nil
}

func toValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event.String(), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event.String(), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	e := audit.FromAttributes(event, attributes)
	e.Timestamp = requestcontext.Now(ctx)
	_ = s.auditPublisher.Emit(ctx, e)
}
