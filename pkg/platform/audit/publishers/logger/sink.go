// Package logger writes lifecycle events as structured log lines. It is the
// sink used when no broker is configured.
package logger

import (
	"context"
	"log/slog"

	audit "healx/pkg/platform/audit"
)

type Sink struct {
	logger *slog.Logger
}

func NewSink(logger *slog.Logger) *Sink {
	return &Sink{logger: logger}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	s.logger.InfoContext(ctx, event.Action,
		"log_type", "audit",
		"category", string(audit.AuditEvent(event.Action).Category()),
		"batch_id", event.BatchID,
		"actor_wallet", event.ActorWallet,
		"status", event.Status,
		"marker", event.Marker,
		"detail", event.Detail,
		"request_id", event.RequestID,
		"occurred_at", event.Timestamp,
	)
	return nil
}
