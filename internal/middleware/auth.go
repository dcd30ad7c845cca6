package middleware

import (
	"context"
	"net/http"

	"github.com/GustavoFrossard/P.A.T.A/internal/auth"
	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	"github.com/GustavoFrossard/P.A.T.A/internal/transport"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Auth requires an authenticated, active identity on HTTP API routes. The
// websocket endpoint has its own, laxer connect-time handling.
func Auth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing credentials")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication failed")
				return
			}

			if !user.Active {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "account disabled")
				return
			}

			next.ServeHTTP(w, r.WithContext(InjectUser(r.Context(), user)))
		})
	}
}
