package identity

import (
	"log/slog"

	"healx/internal/identity/handler"
	"healx/internal/identity/service"
)

// Service resolves wallets to profiles and issues sessions.
type Service = service.Service

type Handler = handler.Handler

func NewService(store service.Store, sessions service.SessionIssuer, opts ...service.Option) *Service {
	return service.New(store, sessions, opts...)
}

func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
