package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/auth"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/ratelimit"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

func withProfile(r *http.Request, p models.Profile) *http.Request {
	id := &auth.Identity{Session: models.Session{UserID: p.ID}, Profile: p}
	return r.WithContext(auth.WithIdentity(r.Context(), id))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireNoSession(t *testing.T) {
	rec := httptest.NewRecorder()
	Require(Active)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestRequirePredicates(t *testing.T) {
	user := models.Profile{ID: "u1", Role: models.RoleUser, Status: models.StatusActive}
	admin := models.Profile{ID: "a1", Role: models.RoleAdmin, Status: models.StatusActive}
	suspended := models.Profile{ID: "u2", Role: models.RoleUser, Status: models.StatusSuspended}

	tests := []struct {
		name    string
		profile models.Profile
		preds   []Predicate
		want    int
	}{
		{"active user", user, []Predicate{Active}, http.StatusNoContent},
		{"user on admin route", user, []Predicate{Active, Admin}, http.StatusForbidden},
		{"admin on admin route", admin, []Predicate{Active, Admin}, http.StatusNoContent},
		{"suspended user", suspended, []Predicate{Active}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := withProfile(httptest.NewRequest(http.MethodGet, "/", nil), tt.profile)
			Require(tt.preds...)(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireSuspendedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withProfile(httptest.NewRequest(http.MethodGet, "/", nil), models.Profile{Status: models.StatusSuspended})
	Require(Active)(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, "Account suspended", decode(t, rec)["error"])
}

func TestSessionIsLazy(t *testing.T) {
	// a nil resolver would panic if anything tried to resolve
	h := Session(nil)(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	l := ratelimit.NewMemory(0.001, 2)
	h := RateLimit(l, "test", zap.NewNop())(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "rate_limited", decode(t, rec)["code"])
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// another client has its own budget
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) { return false, errors.New("down") }

func TestRateLimitFailsOpen(t *testing.T) {
	rec := httptest.NewRecorder()
	RateLimit(brokenLimiter{}, "test", zap.NewNop())(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecover(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	Recover(zap.NewNop())(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["error"])
}

func TestRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestID(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	rec = httptest.NewRecorder()
	RequestID(okHandler).ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-Id"))
}

func TestTimeoutWritesEnvelope(t *testing.T) {
	stuck := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { <-r.Context().Done() })
	rec := httptest.NewRecorder()
	Timeout(20*time.Millisecond, zap.NewNop())(stuck).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, TimeoutMessage, body["error"])
	assert.Equal(t, "internal_error", body["code"])
}

func TestTimeoutKeepsHandlerResponse(t *testing.T) {
	// the handler answers its own timeout; nothing is written twice
	late := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	Timeout(20*time.Millisecond, zap.NewNop())(late).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	Timeout(time.Second, zap.NewNop())(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
