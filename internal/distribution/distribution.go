package distribution

import (
	"log/slog"

	"healx/internal/distribution/handler"
	"healx/internal/distribution/service"
)

// Service exposes the distribution ledger.
type Service = service.Service

type Handler = handler.Handler

func NewService(store service.Store, markers service.MarkerClaimer, opts ...service.Option) *Service {
	return service.New(store, markers, opts...)
}

func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
