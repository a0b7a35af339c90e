package middleware

import (
	"net/http"

	"github.com/baharkarakas/betzone-api/internal/auth"
)

// Session installs a lazy, memoized session lookup on every request. The
// remote verification only happens if something asks for the identity.
func Session(rv *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			ctx := r.Context()
			ctx = auth.WithLazy(ctx, func() (*auth.Identity, bool) {
				return rv.Resolve(ctx, token)
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
