package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"healx/internal/batch/metrics"
	"healx/internal/batch/models"
	"healx/internal/batch/store"
	"healx/internal/provenance"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/sentinel"
	"healx/pkg/platform/tracing"
	"healx/pkg/requestcontext"
)

const tracerScope = "healx/batch"

type BatchStore interface {
	CreateBatch(ctx context.Context, batch *models.Batch) error
	FindBatch(ctx context.Context, batchID id.BatchID) (*models.Batch, error)
	ListBatches(ctx context.Context, filter store.ListFilter) ([]*models.Batch, error)
}

// Attestor supplies the registration marker.
type Attestor interface {
	Resolve(ctx context.Context, supplied string, purpose provenance.Purpose, subject string, actor id.WalletAddress) (string, func(), error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Registration is the outcome of Register: the stored batch plus the
// rendered QR label, which is not persisted.
type Registration struct {
	Batch       *models.Batch
	QRCodeImage string
}

// Service owns the canonical batch record.
type Service struct {
	batches          BatchStore
	attestor         Attestor
	logger           *slog.Logger
	auditPublisher   AuditPublisher
	metrics          *metrics.Metrics
	enforceDateOrder bool
	newAppID         func() (string, error)
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

// WithDateOrder rejects registrations whose expiry date is not after the
// manufacture date.
func WithDateOrder(enforce bool) Option {
	return func(s *Service) {
		s.enforceDateOrder = enforce
	}
}

// New constructs a Service.
func New(batches BatchStore, attestor Attestor, opts ...Option) *Service {
	s := &Service{
		batches:  batches,
		attestor: attestor,
		newAppID: provenance.NewAppID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores a new pending batch. paymentTxID is the producer's own
// payment transaction; when empty a marker is minted.
func (s *Service) Register(ctx context.Context, params models.BatchParams, paymentTxID string) (reg *Registration, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "batch.Register",
		attribute.String("batch_id", params.ID.String()))
	defer func() { end(err) }()
	defer s.metrics.ObserveRegister(time.Now())

	params.EnforceDateOrder = s.enforceDateOrder
	if err := params.Validate(); err != nil {
		return nil, toValidation(err)
	}

	now := requestcontext.Now(ctx)
	qr, err := provenance.NewQRCode(params.ID.String(), params.DrugName, params.Manufacturer, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build qr code")
	}
	image, err := provenance.ImageDataURL(qr.Data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render qr code")
	}
	appID, err := s.newAppID()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate app id")
	}

	marker, release, err := s.attestor.Resolve(ctx, paymentTxID, provenance.PurposeRegistration, params.ID.String(), params.ProducerWallet)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeMarkerReused) {
			s.logAudit(ctx, audit.EventMarkerReplayed,
				"batch_id", params.ID,
				"actor_wallet", params.ProducerWallet,
				"marker", paymentTxID,
			)
			s.metrics.IncrementMarkerReplay()
		}
		return nil, err
	}

	params.RegistrationMarker = marker
	params.AppID = appID
	params.QRCodeData = qr.Data
	params.QRCodeHash = qr.Hash
	batch, err := models.NewBatch(params, now)
	if err != nil {
		release()
		return nil, toValidation(err)
	}

	if err := s.batches.CreateBatch(ctx, batch); err != nil {
		release()
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeDuplicateBatch, "batch id is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register batch")
	}

	s.logAudit(ctx, audit.EventBatchRegistered,
		"batch_id", batch.ID,
		"actor_wallet", batch.ProducerWallet,
		"status", batch.Status,
		"marker", batch.RegistrationMarker,
		"detail", batch.AppID,
	)
	s.metrics.IncrementRegistered()

	return &Registration{Batch: batch, QRCodeImage: image}, nil
}

func (s *Service) Get(ctx context.Context, batchID id.BatchID) (b *models.Batch, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "batch.Get",
		attribute.String("batch_id", batchID.String()))
	defer func() { end(err) }()

	b, err = s.batches.FindBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "medicine batch not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load batch")
	}
	return b, nil
}

// List returns batches newest first.
func (s *Service) List(ctx context.Context, filter store.ListFilter) (batches []*models.Batch, err error) {
	ctx, end := tracing.Start(ctx, tracerScope, "batch.List",
		attribute.String("status", filter.Status.String()))
	defer func() { end(err) }()

	batches, err = s.batches.ListBatches(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list batches")
	}
	return batches, nil
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
