package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"healx/internal/batch/models"
	"healx/internal/batch/service"
	"healx/internal/batch/store"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/httputil"
	"healx/pkg/platform/middleware/auth"
	"healx/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the batch registry operations the handler needs.
type Service interface {
	Register(ctx context.Context, params models.BatchParams, paymentTxID string) (*service.Registration, error)
	Get(ctx context.Context, batchID id.BatchID) (*models.Batch, error)
	List(ctx context.Context, filter store.ListFilter) ([]*models.Batch, error)
}

// Handler wires the batch registry to HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts batch routes. Callers mount it behind session validation.
func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireRole(h.logger, id.RoleProducer)).
		Post("/functions/register-medicine", h.HandleRegisterMedicine)
	r.Get("/batches", h.HandleListBatches)
	r.Get("/batches/{batchID}", h.HandleGetBatch)
}

// HandleRegisterMedicine handles POST /functions/register-medicine.
// Every failure answers 400 with the error code in the body.
func (h *Handler) HandleRegisterMedicine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := httputil.Decode[RegisterMedicineRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid register-medicine request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}
	producer, err := auth.ActingWallet(ctx, req.ProducerWallet)
	if err != nil {
		httputil.WriteActionError(w, err)
		return
	}

	reg, err := h.service.Register(ctx, req.Params(producer), req.PaymentTxID)
	if err != nil {
		h.logger.ErrorContext(ctx, "register-medicine failed",
			"request_id", requestID,
			"batch_id", req.BatchID,
			"producer_wallet", producer,
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "medicine registered",
		"request_id", requestID,
		"batch_id", reg.Batch.ID,
		"app_id", reg.Batch.AppID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRegistration(reg))
}

// HandleGetBatch handles GET /batches/{batchID}.
func (h *Handler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	batchID, err := id.ParseBatchID(chi.URLParam(r, "batchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	b, err := h.service.Get(ctx, batchID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get batch",
			"request_id", requestID,
			"batch_id", batchID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBatch(b))
}

// HandleListBatches handles GET /batches?status=&producer=&limit=.
func (h *Handler) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	batches, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list batches",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromBatches(batches))
}

func parseListFilter(r *http.Request) (store.ListFilter, error) {
	q := r.URL.Query()
	var filter store.ListFilter
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if raw := q.Get("producer"); raw != "" {
		producer, err := id.ParseWalletAddress(raw)
		if err != nil {
			return filter, err
		}
		filter.Producer = producer
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
