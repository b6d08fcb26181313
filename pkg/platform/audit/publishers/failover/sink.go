// Package failover routes lifecycle events to a primary sink and falls back
// to a secondary one while the primary's circuit is open.
package failover

import (
	"context"
	"log/slog"

	audit "healx/pkg/platform/audit"
	"healx/pkg/platform/circuit"
)

type Sink struct {
	primary  audit.Store
	fallback audit.Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewSink(primary, fallback audit.Store, breaker *circuit.Breaker, logger *slog.Logger) *Sink {
	return &Sink{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

// Append tries the primary unless the breaker refuses it, in which case the
// event goes straight to the fallback. A failed primary write is retried on
// the fallback so the event is not lost. The fallback runs without the
// caller's deadline because a timed-out primary has usually used it up.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		return s.fallback.Append(context.WithoutCancel(ctx), event)
	}

	err := s.primary.Append(ctx, event)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed && s.logger != nil {
			s.logger.InfoContext(ctx, "lifecycle sink recovered", "sink", s.breaker.Name())
		}
		return nil
	}
	if _, change := s.breaker.RecordFailure(); change.Opened && s.logger != nil {
		s.logger.WarnContext(ctx, "lifecycle sink circuit opened",
			"sink", s.breaker.Name(),
			"error", err,
		)
	}
	return s.fallback.Append(context.WithoutCancel(ctx), event)
}

// Fanout appends to every store and returns the first error.
type Fanout []audit.Store

func (f Fanout) Append(ctx context.Context, event audit.Event) error {
	var first error
	for _, store := range f {
		if err := store.Append(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
