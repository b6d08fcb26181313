package verification

import (
	"log/slog"

	"healx/internal/verification/handler"
	"healx/internal/verification/service"
)

// Service exposes the verification projection.
type Service = service.Service

type Handler = handler.Handler

func NewService(store service.Store, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
