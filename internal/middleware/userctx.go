package middleware

import (
	"net/http"

	"github.com/baharkarakas/betzone-api/internal/auth"
)

// Caller returns the identity of a request that passed Require. It panics
// when used on an ungated route; Recover turns that into a 500.
func Caller(r *http.Request) *auth.Identity {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		panic("middleware.Caller on a request without a session")
	}
	return id
}
