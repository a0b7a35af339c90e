// Package apperr holds the error categories the API layer translates into
// HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

type Category int

const (
	CategoryInternal Category = iota
	CategoryValidation
	CategoryUnauthenticated
	CategoryForbidden
	CategoryNotFound
	CategoryConflict
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryUnauthenticated:
		return "unauthorized"
	case CategoryForbidden:
		return "forbidden"
	case CategoryNotFound:
		return "not_found"
	case CategoryConflict:
		return "conflict"
	default:
		return "internal_error"
	}
}

// StatusCode maps the category to its HTTP status.
func (c Category) StatusCode() int {
	switch c {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryUnauthenticated:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client-safe Message; Err is for logs only.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err is an *Error of the given category.
func Is(err error, cat Category) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == cat
}

func Validation(msg string) error {
	return &Error{Category: CategoryValidation, Message: msg}
}

func Unauthenticated(msg string) error {
	if msg == "" {
		msg = "Unauthorized"
	}
	return &Error{Category: CategoryUnauthenticated, Message: msg}
}

func Forbidden(msg string) error {
	if msg == "" {
		msg = "Forbidden"
	}
	return &Error{Category: CategoryForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Category: CategoryNotFound, Message: msg}
}

func Conflict(msg string, err error) error {
	return &Error{Category: CategoryConflict, Message: msg, Err: err}
}

// Internal wraps err; clients only ever see the fallback message.
func Internal(err error) error {
	if err == nil {
		err = errors.New("internal error")
	}
	return &Error{Category: CategoryInternal, Message: "Internal server error", Err: err}
}
