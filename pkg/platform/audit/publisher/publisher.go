// Package publisher fans lifecycle events out to an audit.Store, either inline
// or through a bounded async buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "healx/pkg/platform/audit"
	"healx/pkg/platform/audit/worker"
)

// ErrBufferFull is returned by Emit when the async buffer cannot take more events.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// DefaultDrainTimeout bounds how long Close waits for buffered events before
// abandoning in-flight writes.
const DefaultDrainTimeout = 10 * time.Second

type Publisher struct {
	store         audit.Store
	logger        *slog.Logger
	bufferSize    int
	appendTimeout time.Duration
	drainTimeout  time.Duration

	mu     sync.RWMutex
	closed bool
	inbox  chan audit.Event
	done   chan struct{}
	cancel context.CancelFunc
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

// WithAppendTimeout caps each async store write.
func WithAppendTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.appendTimeout = d
	}
}

// WithDrainTimeout sets how long Close waits for the buffer to drain. After
// it, in-flight and remaining writes run with a cancelled context.
func WithDrainTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.drainTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:         store,
		appendTimeout: worker.DefaultAppendTimeout,
		drainTimeout:  DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		runCtx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		w := worker.NewWorker(store, p.inbox, p.logger, worker.WithAppendTimeout(p.appendTimeout))
		go func() {
			defer close(p.done)
			w.Run(runCtx)
		}()
	}
	return p
}

// Emit records an event. The category is always derived from the action and
// a zero timestamp is filled in.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"batch_id", event.BatchID,
		)
	}
	return ErrBufferFull
}

// Close stops accepting events and, in async mode, waits for the buffer to
// drain. Past the drain timeout the worker's context is cancelled so stalled
// writes give up and the rest of the buffer is flushed quickly.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	if p.done == nil {
		return
	}
	defer p.cancel()
	timer := time.NewTimer(p.drainTimeout)
	defer timer.Stop()
	select {
	case <-p.done:
		return
	case <-timer.C:
	}
	if p.logger != nil {
		p.logger.Warn("audit drain timed out, cancelling pending writes")
	}
	p.cancel()
	<-p.done
}
