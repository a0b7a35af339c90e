package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/baharkarakas/betzone-api/internal/apperr"
)

// Error is a non-2xx answer from the data service. Message and Details can
// carry raw database text and must never reach a client verbatim; use
// ClientMessage.
type Error struct {
	Op         string `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Hint       string `json:"hint,omitempty"`
	StatusCode int    `json:"status_code"`
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Message
	if e.Code != "" {
		s += " (" + e.Code + ")"
	}
	if e.Details != "" {
		s += ": " + e.Details
	}
	return s
}

func (e *Error) isAuth() bool { return strings.HasPrefix(e.Op, "auth:") }

// Category classifies the error by Postgres/PostgREST code, then by status.
func (e *Error) Category() apperr.Category {
	switch e.Code {
	case "23505", "23503", "user_already_exists", "email_exists":
		return apperr.CategoryConflict
	case "PGRST116", "P0002":
		return apperr.CategoryNotFound
	case "42501":
		return apperr.CategoryForbidden
	case "PGRST301", "PGRST302", "invalid_credentials", "bad_jwt", "session_not_found", "refresh_token_not_found":
		return apperr.CategoryUnauthenticated
	case "P0001", "22P02", "23514", "22023", "weak_password", "validation_failed", "email_address_invalid":
		return apperr.CategoryValidation
	}

	switch e.StatusCode {
	case http.StatusUnauthorized:
		return apperr.CategoryUnauthenticated
	case http.StatusForbidden:
		if e.isAuth() {
			return apperr.CategoryUnauthenticated
		}
		return apperr.CategoryForbidden
	case http.StatusNotFound:
		// PostgREST 404s mean a missing table or function, not a missing row.
		if e.isAuth() {
			return apperr.CategoryUnauthenticated
		}
	case http.StatusConflict:
		return apperr.CategoryConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		// GoTrue answers bad credentials and malformed input with 400/422.
		// PostgREST 400s without a known code are our own query bugs.
		if e.isAuth() {
			if e.Code == "invalid_grant" || strings.Contains(strings.ToLower(e.Message), "invalid login") {
				return apperr.CategoryUnauthenticated
			}
			if strings.Contains(strings.ToLower(e.Message), "already registered") {
				return apperr.CategoryConflict
			}
			return apperr.CategoryValidation
		}
	}
	return apperr.CategoryInternal
}

// ClientMessage is the text safe to show a caller. Only messages raised
// deliberately by our procedures (P0001) or by the auth service are passed
// through.
func (e *Error) ClientMessage() string {
	switch e.Category() {
	case apperr.CategoryValidation:
		if e.Code == "P0001" || e.isAuth() {
			return e.Message
		}
		return "Invalid request"
	case apperr.CategoryConflict:
		if e.isAuth() {
			return "User already registered"
		}
		if e.Code == "23503" {
			return "Resource is still referenced"
		}
		return "Resource already exists"
	case apperr.CategoryNotFound:
		if e.Code == "P0002" {
			return e.Message
		}
		return "Resource not found"
	case apperr.CategoryUnauthenticated:
		if e.isAuth() && e.Op == "auth:token" {
			return "Invalid email or password"
		}
		return "Unauthorized"
	case apperr.CategoryForbidden:
		return "Forbidden"
	}
	return ""
}

// IsNotFound reports whether err is a PostgREST "no rows" answer.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Category() == apperr.CategoryNotFound
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func parseError(body []byte, status int, op string) error {
	var raw struct {
		Code             json.RawMessage `json:"code"`
		ErrorCode        string          `json:"error_code"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		Details          string          `json:"details"`
		Hint             string          `json:"hint"`
		Error            string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return &Error{Op: op, Code: "unknown", Message: string(body), StatusCode: status}
	}

	// GoTrue sends a numeric "code" plus "error_code"; PostgREST a string.
	code := raw.ErrorCode
	if code == "" {
		var s string
		if json.Unmarshal(raw.Code, &s) == nil {
			code = s
		}
	}
	if code == "" && raw.Error != "" && raw.ErrorDescription != "" {
		code = raw.Error
	}

	msg := raw.Message
	for _, alt := range []string{raw.Msg, raw.ErrorDescription, raw.Error} {
		if msg == "" {
			msg = alt
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Op: op, Code: code, Message: msg, Details: raw.Details, Hint: raw.Hint, StatusCode: status}
}
