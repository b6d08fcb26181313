package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healx/internal/batch/models"
	"healx/internal/verification/service"
	id "healx/pkg/domain"
	"healx/pkg/platform/httputil"
	"healx/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

type Service interface {
	Verify(ctx context.Context, batchID id.BatchID, method models.VerificationMethod) (*service.Report, error)
}

// Handler serves the public verification action. It needs no session.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/functions/verify-medicine", h.HandleVerifyMedicine)
}

// HandleVerifyMedicine handles POST /functions/verify-medicine.
func (h *Handler) HandleVerifyMedicine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := httputil.Decode[VerifyMedicineRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid verify-medicine request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}

	report, err := h.service.Verify(ctx, req.ParsedBatchID(), req.ParsedMethod())
	if err != nil {
		h.logger.WarnContext(ctx, "verify-medicine failed",
			"request_id", requestID,
			"batch_id", req.ParsedBatchID(),
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "medicine verified",
		"request_id", requestID,
		"batch_id", report.Batch.ID,
		"is_authentic", report.IsAuthentic,
		"events", len(report.Events),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}
