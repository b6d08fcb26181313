package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"healx/internal/identity/models"
	"healx/internal/identity/service"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/httputil"
	"healx/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

type Service interface {
	Signup(ctx context.Context, params models.ProfileParams) (*models.Profile, error)
	Resolve(ctx context.Context, wallet id.WalletAddress) (*models.Profile, error)
	Login(ctx context.Context, wallet id.WalletAddress) (*service.Session, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes that need no session.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.HandleSignup)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterSession mounts the routes that read the session wallet. The caller
// installs the session middleware.
func (h *Handler) RegisterSession(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
}

// HandleSignup creates the profile and logs the wallet in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SignupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	profile, err := h.service.Signup(ctx, req.Params())
	if err != nil {
		h.logger.WarnContext(ctx, "signup failed",
			"request_id", requestID,
			"wallet", req.Params().Wallet,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	session, err := h.service.Login(ctx, profile.Wallet)
	if err != nil {
		h.logger.ErrorContext(ctx, "login after signup failed",
			"request_id", requestID,
			"wallet", profile.Wallet,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromSession(session))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	session, err := h.service.Login(ctx, req.Wallet())
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"wallet", req.Wallet(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleMe returns the profile of the session wallet.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := requestcontext.Wallet(ctx)
	if wallet.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "session required"))
		return
	}
	profile, err := h.service.Resolve(ctx, wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}
