package middleware

import (
	"net/http"

	goToken "github.com/MrEthical07/goToken"
)

// RequireRole returns middleware that rejects requests whose verified
// identity carries a role below min. It must run after [Guard].
func RequireRole(min goToken.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if id.User.Role < min {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
