// Package service implements the regulatory review engine: the only path out
// of the pending state. A batch is decided at most once; the guard is the
// store's conditional update, so concurrent regulators race safely.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"healx/internal/batch/models"
	"healx/internal/provenance"
	"healx/internal/review/metrics"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/sentinel"
	"healx/pkg/platform/tracing"
	"healx/pkg/requestcontext"
)

const tracerScope = "healx/review"

// DefaultComplianceScore is recorded for approvals that carry no score
// unless the policy names another value.
const DefaultComplianceScore = 95

type Store interface {
	FindBatch(ctx context.Context, batchID id.BatchID) (*models.Batch, error)
	DecideIfPending(ctx context.Context, approval *models.Approval) (*models.Batch, error)
	FindApproval(ctx context.Context, batchID id.BatchID) (*models.Approval, error)
}

type Attestor interface {
	Resolve(ctx context.Context, supplied string, purpose provenance.Purpose, subject string, actor id.WalletAddress) (string, func(), error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DecideCommand is a regulator's verdict on a batch. ComplianceScore is
// optional for approvals; Marker is the regulator's own transaction hash,
// minted when empty.
type DecideCommand struct {
	BatchID         id.BatchID
	Regulator       id.WalletAddress
	Status          models.Status
	ComplianceScore *int
	RejectionReason string
	Marker          string
}

type Service struct {
	store          Store
	attestor       Attestor
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	defaultScore   int
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

// WithDefaultComplianceScore sets the score recorded for approvals that
// carry none.
func WithDefaultComplianceScore(score int) Option {
	return func(s *Service) {
		s.defaultScore = score
	}
}

func New(store Store, attestor Attestor, opts ...Option) *Service {
	s := &Service{store: store, attestor: attestor, defaultScore: DefaultComplianceScore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide moves a pending batch to approved or rejected and records the
// approval row in the same unit of work.
func (s *Service) Decide(ctx context.Context, cmd DecideCommand) (approval *models.Approval, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "review.Decide",
		attribute.String("batch_id", cmd.BatchID.String()),
		attribute.String("status", cmd.Status.String()))
	defer func() { end(err) }()
	start := time.Now()
	defer func() { s.metrics.ObserveDecideLatency(time.Since(start)) }()

	if cmd.Regulator.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "regulator wallet is required")
	}

	batch, err := s.store.FindBatch(ctx, cmd.BatchID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "medicine batch not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load batch")
	}
	if err := batch.CanDecide(); err != nil {
		s.metrics.IncrementConflict()
		return nil, err
	}

	decision, err := s.decisionFor(cmd)
	if err != nil {
		return nil, err
	}

	marker, release, err := s.attestor.Resolve(ctx, cmd.Marker, provenance.PurposeApproval, cmd.BatchID.String(), cmd.Regulator)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeMarkerReused) {
			s.logAudit(ctx, audit.EventMarkerReplayed,
				"batch_id", cmd.BatchID,
				"actor_wallet", cmd.Regulator,
				"marker", cmd.Marker,
			)
		}
		return nil, err
	}

	approval, err = models.NewApproval(cmd.BatchID, cmd.Regulator, decision, marker, requestcontext.Now(ctx))
	if err != nil {
		release()
		return nil, toValidation(err)
	}

	if _, err := s.store.DecideIfPending(ctx, approval); err != nil {
		release()
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			s.metrics.IncrementConflict()
			return nil, dErrors.New(dErrors.CodeAlreadyReviewed, "batch has already been reviewed")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "medicine batch not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
		}
	}

	event, detail := audit.EventBatchApproved, ""
	if score := approval.ComplianceScore(); score != nil {
		detail = "compliance_score=" + strconv.Itoa(*score)
	} else {
		event, detail = audit.EventBatchRejected, approval.RejectionReason()
	}
	s.logAudit(ctx, event,
		"batch_id", approval.BatchID,
		"actor_wallet", approval.RegulatorWallet,
		"status", approval.Status(),
		"marker", approval.Marker,
		"detail", detail,
	)
	s.metrics.IncrementOutcome(approval.Status().String())

	return approval, nil
}

func (s *Service) decisionFor(cmd DecideCommand) (models.Decision, error) {
	switch cmd.Status {
	case models.StatusApproved:
		score := s.defaultScore
		if cmd.ComplianceScore != nil {
			score = *cmd.ComplianceScore
		}
		if score < 0 || score > 100 {
			return nil, dErrors.New(dErrors.CodeValidation, "compliance score must be between 0 and 100")
		}
		return models.Approved{ComplianceScore: score}, nil
	case models.StatusRejected:
		if cmd.RejectionReason == "" {
			return nil, dErrors.New(dErrors.CodeMissingReason, "rejection reason is required")
		}
		return models.Rejected{Reason: cmd.RejectionReason}, nil
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "status must be approved or rejected")
	}
}

// GetApproval returns the decision recorded for a batch.
func (s *Service) GetApproval(ctx context.Context, batchID id.BatchID) (approval *models.Approval, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "review.GetApproval",
		attribute.String("batch_id", batchID.String()))
	defer func() { end(err) }()

	approval, err = s.store.FindApproval(ctx, batchID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "approval not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load approval")
	}
	return approval, nil
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
