package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags each request with an id, reusing a sane inbound one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		// SADECE header + context; body'ye yazmıyoruz
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(httpx.WithRequestID(r.Context(), id)))
	})
}
