package metadata

import (
	"net"
	"net/http"
	"strings"

	"healx/pkg/requestcontext"
)

// ClientMetadata extracts client IP address and User-Agent from the request
// and adds them to the context for use by handlers and services. It trusts no
// proxy, so the client IP is always the peer address.
// This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return WithTrustedProxies(0)(next)
}

// WithTrustedProxies is ClientMetadata for a server running behind hops
// reverse proxies, each of which appends to X-Forwarded-For.
func WithTrustedProxies(hops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r, hops), r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest resolves the client IP. Forwarding headers are only
// read when hops > 0, and then only the entry appended by the outermost
// trusted proxy counts; anything left of it is client supplied.
func ClientIPFromRequest(r *http.Request, hops int) string {
	if hops > 0 {
		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			var chain []string
			for _, line := range xff {
				for _, part := range strings.Split(line, ",") {
					if ip := strings.TrimSpace(part); ip != "" {
						chain = append(chain, ip)
					}
				}
			}
			if len(chain) > 0 {
				i := len(chain) - hops
				if i < 0 {
					i = 0
				}
				return chain[i]
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	if addr := r.RemoteAddr; addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}

	return "unknown"
}
