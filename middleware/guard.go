package middleware

import (
	"context"
	"net/http"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/transport"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [Guard], if any.
func IdentityFromContext(ctx context.Context) (*goToken.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*goToken.Identity)
	return id, ok
}

// Guard returns middleware that extracts the access token via tokens,
// verifies it with the engine, and injects the resulting identity into the
// request context. Every failure collapses to a plain 401 so the response
// never leaks why a token was rejected.
func Guard(engine *goToken.Engine, tokens *transport.Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || tokens == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := tokens.ExtractAccess(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := engine.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
