package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"healx/internal/ratelimit/metrics"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/httputil"
	"healx/pkg/requestcontext"
)

type Limiter struct {
	store    Store
	rules    map[Class]Rule
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Limiter)

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithDisabled turns every check into a pass, for local demos.
func WithDisabled(disabled bool) Option {
	return func(l *Limiter) {
		l.disabled = disabled
	}
}

func New(store Store, rules map[Class]Rule, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{store: store, rules: rules, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Middleware enforces the rule of class. Classes without a rule, and store
// failures, let the request through.
func (l *Limiter) Middleware(class Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := l.rules[class]
			if l.disabled || !ok || rule.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			result, err := l.store.Allow(ctx, key(class, ip), rule.Limit, rule.Window)
			if err != nil {
				l.logger.ErrorContext(ctx, "rate limit check failed",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				l.metrics.IncrementRejected(string(class))
				l.logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(time.Now())))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
