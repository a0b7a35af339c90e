package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
)

// TimeoutMessage is the error text of a request that ran out of time.
const TimeoutMessage = "Request timed out"

type writeTracker struct {
	http.ResponseWriter
	wrote bool
}

func (w *writeTracker) WriteHeader(code int) {
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *writeTracker) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

// Timeout puts a deadline on the request context. A handler that hits the
// deadline without writing a response gets the standard 500 envelope.
func Timeout(d time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &writeTracker{ResponseWriter: w}
			next.ServeHTTP(tw, r.WithContext(ctx))

			if tw.wrote || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}
			log.Warn("request timed out",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("timeout", d),
				zap.String("request_id", httpx.RequestID(r.Context())),
			)
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", TimeoutMessage, nil)
		})
	}
}
