// Package httptransport assembles the chi router: shared middleware, the
// public actions, and the session-gated lifecycle routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healx/internal/platform/metrics"
	"healx/internal/ratelimit"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/httputil"
	"healx/pkg/platform/middleware/auth"
	"healx/pkg/platform/middleware/metadata"
	"healx/pkg/platform/middleware/request"
	"healx/pkg/platform/middleware/requesttime"
)

const defaultRequestTimeout = 30 * time.Second

// Routes is implemented by every module handler.
type Routes interface {
	Register(r chi.Router)
}

// SessionRoutes is a module with both public and session-gated routes.
type SessionRoutes interface {
	Routes
	RegisterSession(r chi.Router)
}

// RateLimiter guards the public routes per client.
type RateLimiter interface {
	Middleware(class ratelimit.Class) func(http.Handler) http.Handler
}

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger   *slog.Logger
	Sessions auth.SessionValidator
	Metrics  *metrics.HTTP
	Timeout  time.Duration
	// RateLimiter is optional.
	RateLimiter RateLimiter
	// TrustedProxyHops counts the reverse proxies whose X-Forwarded-For
	// entries are believed when resolving the client IP.
	TrustedProxyHops int

	Identity SessionRoutes
	// Public routes need no session.
	Public []Routes
	// Protected routes run behind RequireSession; role checks are applied by
	// each handler.
	Protected []Routes

	HealthChecks map[string]HealthCheck
}

func NewRouter(cfg Config) http.Handler {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.Logger(cfg.Logger))
	r.Use(observe(cfg.Metrics))
	r.Use(request.Timeout(timeout))
	r.Use(metadata.WithTrustedProxies(cfg.TrustedProxyHops))
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(cfg.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limit(cfg.RateLimiter, ratelimit.ClassAuth))
		if cfg.Identity != nil {
			cfg.Identity.Register(r)
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(limit(cfg.RateLimiter, ratelimit.ClassVerify))
		for _, routes := range cfg.Public {
			routes.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(cfg.Sessions, cfg.Logger))
		if cfg.Identity != nil {
			cfg.Identity.RegisterSession(r)
		}
		for _, routes := range cfg.Protected {
			routes.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}

func limit(l RateLimiter, class ratelimit.Class) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware(class)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// observe records latency per route pattern, so /batches/{batchID} is one
// series rather than one per batch.
func observe(m *metrics.HTTP) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			m.Observe(r.Method, route, rec.status, time.Since(start))
		})
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
