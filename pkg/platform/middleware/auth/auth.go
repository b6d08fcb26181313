// Package auth resolves the session token on a request into an explicit
// wallet + role context. There is no ambient "active wallet": every action
// reads its actor from the request it serves.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/httputil"
	"healx/pkg/requestcontext"
)

// SessionClaims is what a validated session token asserts.
type SessionClaims struct {
	Wallet id.WalletAddress
	Role   id.Role
}

// SessionValidator validates a bearer token.
type SessionValidator interface {
	ValidateSession(token string) (*SessionClaims, error)
}

func bearerToken(r *http.Request) (string, bool) {
	return strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// RequireSession rejects requests without a valid session token.
func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := bearerToken(r)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}
			claims, err := validator.ValidateSession(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}
			ctx = requestcontext.WithSession(ctx, claims.Wallet, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits only sessions holding one of roles. It must run after
// RequireSession.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := requestcontext.Role(ctx)
			if !slices.Contains(roles, role) {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"request_id", requestcontext.RequestID(ctx),
					"wallet", requestcontext.Wallet(ctx),
					"role", role,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "role not permitted for this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActingWallet resolves the wallet an action body names against the session.
// An empty claim means the session wallet; a different wallet is forbidden.
func ActingWallet(ctx context.Context, claimed string) (id.WalletAddress, error) {
	session := requestcontext.Wallet(ctx)
	if strings.TrimSpace(claimed) == "" {
		if session.IsNil() {
			return "", dErrors.New(dErrors.CodeUnauthorized, "authentication required")
		}
		return session, nil
	}
	wallet, err := id.ParseWalletAddress(claimed)
	if err != nil {
		return "", err
	}
	if wallet != session {
		return "", dErrors.New(dErrors.CodeForbidden, "wallet does not match the signed-in session")
	}
	return wallet, nil
}
