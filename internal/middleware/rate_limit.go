package middleware

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/metrics"
	"github.com/baharkarakas/betzone-api/internal/ratelimit"
)

// RateLimit rejects requests over the limiter's budget with 429. Limiter
// errors let the request through.
func RateLimit(l ratelimit.Limiter, scope string, log *zap.Logger) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), scope+":"+clientIP(r))
			if err != nil {
				log.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
				ok = true
			}
			if !ok {
				metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
				w.Header().Set("Retry-After", "60")
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP to have normalised RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
