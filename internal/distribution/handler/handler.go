package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"healx/internal/batch/models"
	"healx/internal/distribution/service"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/httputil"
	"healx/pkg/platform/middleware/auth"
	"healx/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

type Service interface {
	LogTransfer(ctx context.Context, cmd service.TransferCommand) (*models.TransferEvent, error)
	History(ctx context.Context, batchID id.BatchID) ([]*models.TransferEvent, error)
	Recent(ctx context.Context, limit int) ([]*models.TransferEvent, error)
}

// Handler wires the distribution ledger to HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireRole(h.logger, id.RoleDistributor)).
		Post("/functions/track-transfer", h.HandleTrackTransfer)
	r.Get("/batches/{batchID}/events", h.HandleHistory)
	r.Get("/events/recent", h.HandleRecent)
}

// HandleTrackTransfer handles POST /functions/track-transfer. The sender
// defaults to the session wallet.
func (h *Handler) HandleTrackTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := httputil.Decode[TrackTransferRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid track-transfer request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}
	sender, err := auth.ActingWallet(ctx, req.SenderWallet)
	if err != nil {
		httputil.WriteActionError(w, err)
		return
	}

	event, err := h.service.LogTransfer(ctx, service.TransferCommand{
		BatchID:   req.ParsedBatchID(),
		EventType: req.EventType,
		Sender:    sender,
		Receiver:  req.ParsedReceiver(),
		Location:  req.Location,
		Marker:    req.BlockchainTxHash,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "track-transfer failed",
			"request_id", requestID,
			"batch_id", req.BatchID,
			"sender_wallet", sender,
			"error", err,
		)
		httputil.WriteActionError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "transfer recorded",
		"request_id", requestID,
		"batch_id", event.BatchID,
		"event_id", event.ID,
		"location", event.Location,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, &TrackTransferResponse{
		Success:         true,
		Transfer:        FromEvent(event),
		TransactionHash: event.Marker,
	})
}

// HandleHistory handles GET /batches/{batchID}/events.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	batchID, err := id.ParseBatchID(chi.URLParam(r, "batchID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.History(ctx, batchID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load transfer history",
			"request_id", requestcontext.RequestID(ctx),
			"batch_id", batchID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleRecent handles GET /events/recent?limit=.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	events, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load recent transfers",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}
