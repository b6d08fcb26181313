package testutil

import (
	"net/http"

	id "healx/pkg/domain"
	"healx/pkg/requestcontext"
)

// WithSession attaches a wallet session to the request, as the session
// middleware would after validating a token.
func WithSession(req *http.Request, wallet string, role id.Role) *http.Request {
	ctx := requestcontext.WithSession(req.Context(), id.WalletAddress(wallet), role)
	return req.WithContext(ctx)
}
