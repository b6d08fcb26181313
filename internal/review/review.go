package review

import (
	"log/slog"

	"healx/internal/review/handler"
	"healx/internal/review/service"
)

// Service exposes the regulatory review engine.
type Service = service.Service

type Handler = handler.Handler

func NewService(store service.Store, attestor service.Attestor, opts ...service.Option) *Service {
	return service.New(store, attestor, opts...)
}

func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
