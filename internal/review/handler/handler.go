package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healx/internal/batch/models"
	"healx/internal/review/service"
	id "healx/pkg/domain"
	"healx/pkg/platform/httputil"
	"healx/pkg/platform/middleware/auth"
	"healx/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

type Service interface {
	Decide(ctx context.Context, cmd service.DecideCommand) (*models.Approval, error)
	GetApproval(ctx context.Context, batchID id.BatchID) (*models.Approval, error)
}

// Handler wires the review engine to HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireRole(h.logger, id.RoleRegulator)).
		Post("/functions/approve-medicine", h.HandleApproveMedicine)
	r.Get("/batches/{batchID}/approval", h.HandleGetApproval)
}

// HandleApproveMedicine handles POST /functions/approve-medicine.
func (h *Handler) HandleApproveMedicine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := httputil.Decode[ApproveMedicineRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid approve-medicine request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}
	regulator, err := auth.ActingWallet(ctx, req.RegulatorWallet)
	if err != nil {
		httputil.WriteActionError(w, err)
		return
	}

	approval, err := h.service.Decide(ctx, service.DecideCommand{
		BatchID:         req.ParsedBatchID(),
		Regulator:       regulator,
		Status:          req.ParsedStatus(),
		ComplianceScore: req.ComplianceScore,
		RejectionReason: req.RejectionReason,
		Marker:          req.BlockchainTxHash,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "approve-medicine failed",
			"request_id", requestID,
			"batch_id", req.BatchID,
			"regulator_wallet", regulator,
			"status", req.Status,
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "approval processed",
		"request_id", requestID,
		"batch_id", approval.BatchID,
		"status", approval.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, &ApproveMedicineResponse{
		Success:         true,
		Approval:        FromApproval(approval),
		TransactionHash: approval.Marker,
	})
}

// HandleGetApproval handles GET /batches/{batchID}/approval.
func (h *Handler) HandleGetApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	batchID, err := id.ParseBatchID(chi.URLParam(r, "batchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	approval, err := h.service.GetApproval(ctx, batchID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get approval",
			"request_id", requestcontext.RequestID(ctx),
			"batch_id", batchID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApproval(approval))
}
