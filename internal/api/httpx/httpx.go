package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/validate"
	"github.com/baharkarakas/betzone-api/internal/apperr"
)

// DefaultFallback is the only text a client sees for a 500.
const DefaultFallback = "Internal server error"

// APIError is the single error envelope used by every endpoint.
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Classified is implemented by errors from remote dependencies that know
// their own category (see supabase.Error).
type Classified interface {
	Category() apperr.Category
	ClientMessage() string
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{
		Success: false,
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// OK writes an action response: {"success": true, ...fields}.
func OK(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// Translate maps err onto a status and envelope. A 500 never carries the
// error's own text, only fallback.
func Translate(err error, fallback string) (int, APIError) {
	if fallback == "" {
		fallback = DefaultFallback
	}

	var verrs validate.Errs
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, APIError{
			Error:   "Validation failed",
			Code:    apperr.CategoryValidation.String(),
			Details: []validate.ErrField(verrs),
		}
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return envelope(ae.Category, ae.Message, fallback)
	}

	var ce Classified
	if errors.As(err, &ce) {
		return envelope(ce.Category(), ce.ClientMessage(), fallback)
	}

	return envelope(apperr.CategoryInternal, "", fallback)
}

func envelope(cat apperr.Category, msg, fallback string) (int, APIError) {
	status := cat.StatusCode()
	switch {
	case status == http.StatusInternalServerError:
		msg = fallback
	case msg == "":
		msg = http.StatusText(status)
	}
	return status, APIError{Error: msg, Code: cat.String()}
}

// Fail logs err in full and writes its translated envelope.
func Fail(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, fallback string) {
	status, body := Translate(err, fallback)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestID(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", fields...)
	} else {
		log.Debug("request rejected", fields...)
	}
	WriteJSON(w, status, body)
}

// HandlerFunc is a handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts h to http.HandlerFunc, translating any returned error.
func Handle(log *zap.Logger, fallback string, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			Fail(w, r, log, err, fallback)
		}
	}
}

// Bind decodes a JSON body into dst and validates it.
func Bind(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validate.Field("body", "is required")
		}
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			return validate.Field(ute.Field, "has the wrong type")
		}
		return validate.Field("body", "must be valid JSON")
	}
	return validate.Struct(dst)
}

type reqIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	if s, ok := ctx.Value(reqIDKey{}).(string); ok {
		return s
	}
	return ""
}
