package middleware

import (
	"net/http"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/auth"
	"github.com/baharkarakas/betzone-api/internal/models"
)

// Predicate is a privilege check on a resolved identity.
type Predicate struct {
	Name  string
	Check func(*auth.Identity) bool
}

var (
	Active = Predicate{Name: "active", Check: func(id *auth.Identity) bool { return id.Profile.IsActive() }}
	Admin  = Predicate{Name: "admin", Check: func(id *auth.Identity) bool { return id.Profile.IsAdmin() }}
)

// Require answers 401 when there is no session and 403 when any predicate
// fails; otherwise the wrapped handler runs.
func Require(preds ...Predicate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
				return
			}
			for _, p := range preds {
				if !p.Check(id) {
					msg := "Forbidden"
					if p.Name == Active.Name && id.Profile.Status == models.StatusSuspended {
						msg = "Account suspended"
					}
					httpx.WriteError(w, http.StatusForbidden, "forbidden", msg, nil)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
