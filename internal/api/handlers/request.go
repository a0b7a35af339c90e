package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/api/validate"
	"github.com/baharkarakas/betzone-api/internal/apperr"
)

// bindOptional is Bind for endpoints whose body may be omitted.
func bindOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return validate.Struct(dst)
	}
	return httpx.Bind(r, dst)
}

// idParam reads a UUID path parameter. A malformed id cannot exist, so it
// is reported as not found.
func idParam(r *http.Request, name, what string) (string, error) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.NotFound(what + " not found")
	}
	return id, nil
}

// enumQuery returns the named query value, which must be empty or one of
// allowed.
func enumQuery(r *http.Request, name string, allowed ...string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", nil
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", validate.Field(name, "must be one of: "+strings.Join(allowed, ", "))
}

func uuidQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", nil
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", validate.Field(name, "must be a valid UUID")
	}
	return v, nil
}

// timeQuery accepts RFC 3339 or a bare date. A bare "to" date covers the
// whole day.
func timeQuery(r *http.Request, name string, endOfDay bool) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, validate.Field(name, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func dateRange(r *http.Request) (from, to *time.Time, err error) {
	if from, err = timeQuery(r, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = timeQuery(r, "to", true); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, validate.Field("to", "must not be before from")
	}
	return from, to, nil
}
