// Package service implements the distribution ledger. Custody events are
// append-only and may only land on an approved batch; the store re-checks
// the status inside the insert so a transfer never races a review.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"healx/internal/batch/models"
	"healx/internal/distribution/metrics"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/sentinel"
	"healx/pkg/platform/tracing"
	"healx/pkg/requestcontext"
)

const (
	tracerScope = "healx/distribution"

	defaultRecentLimit = 20
	maxRecentLimit     = 100
	maxLocationLength  = 256
	maxEventTypeLength = 64
)

type Store interface {
	FindBatch(ctx context.Context, batchID id.BatchID) (*models.Batch, error)
	AppendEvent(ctx context.Context, event *models.TransferEvent) error
	ListEvents(ctx context.Context, batchID id.BatchID) ([]*models.TransferEvent, error)
	LastEvent(ctx context.Context, batchID id.BatchID) (*models.TransferEvent, error)
	RecentEvents(ctx context.Context, limit int) ([]*models.TransferEvent, error)
}

// MarkerClaimer admits the distributor's transaction hash once.
type MarkerClaimer interface {
	Claim(ctx context.Context, supplied string) (string, func(), error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TransferCommand is one custody hand-over. Marker is required: transfers
// are always backed by the distributor's own payment transaction.
type TransferCommand struct {
	BatchID   id.BatchID
	EventType string
	Sender    id.WalletAddress
	Receiver  id.WalletAddress
	Location  string
	Marker    string
}

func (c TransferCommand) validate() error {
	switch {
	case c.Sender.IsNil():
		return dErrors.New(dErrors.CodeValidation, "sender wallet is required")
	case c.Receiver.IsNil():
		return dErrors.New(dErrors.CodeValidation, "receiver wallet is required")
	case c.Location == "":
		return dErrors.New(dErrors.CodeValidation, "location is required")
	case len(c.Location) > maxLocationLength:
		return dErrors.New(dErrors.CodeValidation, "location must be at most 256 characters")
	case len(c.EventType) > maxEventTypeLength:
		return dErrors.New(dErrors.CodeValidation, "event type must be at most 64 characters")
	case c.Marker == "":
		return dErrors.New(dErrors.CodeValidation, "blockchain transaction hash is required")
	}
	return nil
}

type Service struct {
	store          Store
	markers        MarkerClaimer
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	enforceChain   bool
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

// WithChainContinuity requires each transfer's sender to be the receiver of
// the batch's previous transfer.
func WithChainContinuity(enforce bool) Option {
	return func(s *Service) {
		s.enforceChain = enforce
	}
}

func New(store Store, markers MarkerClaimer, opts ...Option) *Service {
	s := &Service{store: store, markers: markers}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogTransfer appends a custody event to an approved batch. The timestamp is
// assigned here, never taken from the caller.
func (s *Service) LogTransfer(ctx context.Context, cmd TransferCommand) (event *models.TransferEvent, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "distribution.LogTransfer",
		attribute.String("batch_id", cmd.BatchID.String()))
	defer func() { end(err) }()

	batch, err := s.store.FindBatch(ctx, cmd.BatchID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "medicine batch not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load batch")
	}
	if err := batch.CanTransfer(); err != nil {
		s.metrics.IncrementRefused("not_approved")
		return nil, err
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	if s.enforceChain {
		if err := s.checkChain(ctx, cmd); err != nil {
			return nil, err
		}
	}

	marker, release, err := s.markers.Claim(ctx, cmd.Marker)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeMarkerReused) {
			s.metrics.IncrementRefused("marker_reused")
			s.logAudit(ctx, audit.EventMarkerReplayed,
				"batch_id", cmd.BatchID,
				"actor_wallet", cmd.Sender,
				"marker", cmd.Marker,
			)
		}
		return nil, err
	}

	event, err = models.NewTransferEvent(models.TransferParams{
		BatchID:        cmd.BatchID,
		EventType:      cmd.EventType,
		SenderWallet:   cmd.Sender,
		ReceiverWallet: cmd.Receiver,
		Location:       cmd.Location,
		Marker:         marker,
	}, requestcontext.Now(ctx))
	if err != nil {
		release()
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.store.AppendEvent(ctx, event); err != nil {
		release()
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			s.metrics.IncrementRefused("not_approved")
			return nil, dErrors.New(dErrors.CodeNotApproved, "medicine must be approved by regulator before distribution")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "medicine batch not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer")
		}
	}

	s.logAudit(ctx, audit.EventTransferLogged,
		"batch_id", event.BatchID,
		"actor_wallet", event.SenderWallet,
		"status", batch.Status,
		"marker", event.Marker,
		"detail", event.Location,
		"receiver_wallet", event.ReceiverWallet,
	)
	s.metrics.IncrementLogged(event.EventType)

	return event, nil
}

func (s *Service) checkChain(ctx context.Context, cmd TransferCommand) error {
	last, err := s.store.LastEvent(ctx, cmd.BatchID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load previous transfer")
	}
	if last.ReceiverWallet != cmd.Sender {
		s.metrics.IncrementRefused("broken_chain")
		return dErrors.New(dErrors.CodeConflict, "sender must be the receiver of the previous transfer")
	}
	return nil
}

// History returns a batch's custody events, oldest first.
func (s *Service) History(ctx context.Context, batchID id.BatchID) (events []*models.TransferEvent, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "distribution.History",
		attribute.String("batch_id", batchID.String()))
	defer func() { end(err) }()

	if _, err := s.store.FindBatch(ctx, batchID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "medicine batch not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load batch")
	}
	events, err = s.store.ListEvents(ctx, batchID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfers")
	}
	return events, nil
}

// Recent returns the latest custody events across all batches, newest first.
func (s *Service) Recent(ctx context.Context, limit int) (events []*models.TransferEvent, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "distribution.Recent")
	defer func() { end(err) }()

	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}
	events, err = s.store.RecentEvents(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recent transfers")
	}
	return events, nil
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
