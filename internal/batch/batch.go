package batch

import (
	"log/slog"

	"healx/internal/batch/handler"
	"healx/internal/batch/service"
)

// Service exposes the batch registry.
type Service = service.Service

// Handler wires HTTP endpoints to the batch registry.
type Handler = handler.Handler

// NewService constructs the batch registry with its store and marker source.
func NewService(batches service.BatchStore, attestor service.Attestor, opts ...service.Option) *Service {
	return service.New(batches, attestor, opts...)
}

// NewHandler constructs the HTTP handler for producer actions and batch reads.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
