package worker

import (
	"context"
	"log/slog"
	"time"

	audit "healx/pkg/platform/audit"
)

// DefaultAppendTimeout bounds a single store write.
const DefaultAppendTimeout = 5 * time.Second

// Worker drains audit events from a channel into a store. It exits when the
// inbox is closed, so closing the channel doubles as a drain-and-stop signal.
type Worker struct {
	store         audit.Store
	inbox         <-chan audit.Event
	logger        *slog.Logger
	appendTimeout time.Duration
}

type Option func(*Worker)

// WithAppendTimeout caps each store write. Zero disables the cap.
func WithAppendTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d >= 0 {
			w.appendTimeout = d
		}
	}
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{store: store, inbox: inbox, logger: logger, appendTimeout: DefaultAppendTimeout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run forwards events until the inbox closes. Store failures are logged and
// skipped; a lost audit line must not stall the lifecycle.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		w.append(ctx, event)
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if w.appendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.appendTimeout)
		defer cancel()
	}
	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to append audit event",
			"action", event.Action,
			"batch_id", event.BatchID,
			"error", err,
		)
	}
}
