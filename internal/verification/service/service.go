// Package service assembles verification reports. A report is always built
// from current state; nothing is cached. Every call leaves one verification
// record behind, which is the only write this package performs.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"healx/internal/batch/models"
	"healx/internal/verification/metrics"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/middleware/device"
	"healx/pkg/platform/sentinel"
	"healx/pkg/platform/tracing"
	"healx/pkg/requestcontext"
)

const tracerScope = "healx/verification"

type Store interface {
	FindBatch(ctx context.Context, batchID id.BatchID) (*models.Batch, error)
	FindApproval(ctx context.Context, batchID id.BatchID) (*models.Approval, error)
	ListEvents(ctx context.Context, batchID id.BatchID) ([]*models.TransferEvent, error)
	AppendVerification(ctx context.Context, record *models.VerificationRecord) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Report is the authenticity projection of one batch.
type Report struct {
	Batch *models.Batch
	// Approval is nil while the batch is pending.
	Approval    *models.Approval
	Events      []*models.TransferEvent
	IsAuthentic bool
}

type Service struct {
	store          Store
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify builds the report for batchID. The batch, its approval and its
// events are read concurrently; a read that straddles a decision is retried.
func (s *Service) Verify(ctx context.Context, batchID id.BatchID, method models.VerificationMethod) (report *Report, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "verification.Verify",
		attribute.String("batch_id", batchID.String()),
		attribute.String("method", string(method)))
	defer func() { end(err) }()
	start := time.Now()

	var (
		batch    *models.Batch
		approval *models.Approval
		events   []*models.TransferEvent
	)
	for attempt := 1; ; attempt++ {
		batch, approval, events, err = s.load(ctx, batchID)
		if err != nil {
			return nil, err
		}
		if consistent(batch, approval, events) {
			break
		}
		if attempt == maxReadAttempts {
			return nil, dErrors.New(dErrors.CodeInternal, "batch changed while it was being verified")
		}
	}
	s.metrics.ObserveVerifyLatency(time.Since(start))

	report = &Report{
		Batch:       batch,
		Approval:    approval,
		Events:      events,
		IsAuthentic: batch.IsAuthentic(),
	}

	s.record(ctx, report, method)
	s.logAudit(ctx, audit.EventBatchVerified,
		"batch_id", batch.ID,
		"status", batch.Status,
		"detail", string(method),
	)
	s.metrics.IncrementVerification(report.IsAuthentic, string(method))

	return report, nil
}

// maxReadAttempts bounds re-reads after a torn read. A decision lands at most
// once per batch, so a second read is normally enough.
const maxReadAttempts = 3

// load reads the three parts of a report concurrently. The reads are not a
// snapshot: a decision can land between them, which consistent detects.
func (s *Service) load(ctx context.Context, batchID id.BatchID) (batch *models.Batch, approval *models.Approval, events []*models.TransferEvent, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.store.FindBatch(gctx, batchID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "medicine not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load batch")
		}
		batch = b
		return nil
	})
	g.Go(func() error {
		a, err := s.store.FindApproval(gctx, batchID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load approval")
		}
		approval = a
		return nil
	})
	g.Go(func() error {
		ev, err := s.store.ListEvents(gctx, batchID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load supply chain events")
		}
		events = ev
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return batch, approval, events, nil
}

// consistent reports whether the three reads describe one state of the batch.
// The batch status moves out of pending exactly once, together with the
// approval row, and transfers only follow an approval.
func consistent(batch *models.Batch, approval *models.Approval, events []*models.TransferEvent) bool {
	if approval == nil {
		return batch.Status == models.StatusPending && len(events) == 0
	}
	return approval.Status() == batch.Status
}

// record appends the verification row. A failed write is logged and the
// report is still returned.
func (s *Service) record(ctx context.Context, report *Report, method models.VerificationMethod) {
	rec := models.NewVerificationRecord(report.Batch.ID, method, report.IsAuthentic,
		clientLabel(requestcontext.UserAgent(ctx)), requestcontext.Now(ctx))
	if err := s.store.AppendVerification(ctx, rec); err != nil {
		s.metrics.IncrementRecordFailure()
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to record verification",
				"request_id", requestcontext.RequestID(ctx),
				"batch_id", report.Batch.ID,
				"error", err,
			)
		}
	}
}

func clientLabel(userAgent string) string {
	if device.IsBot(userAgent) {
		return "bot"
	}
	return device.ParseUserAgent(userAgent)
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
