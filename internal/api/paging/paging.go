// Package paging parses page/pageSize query parameters and builds the
// pagination object returned by list endpoints.
package paging

import (
	"net/http"
	"strconv"

	"github.com/baharkarakas/betzone-api/internal/api/validate"
)

const (
	MaxPageSize = 100
	// MaxPage keeps (page-1)*pageSize far away from int overflow.
	MaxPage = 100000
)

type Params struct {
	Page     int
	PageSize int
}

// Offset is the zero-based index of the first row on the page.
func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func New(total int, p Params) Pagination {
	pages := 0
	if p.PageSize > 0 {
		pages = (total + p.PageSize - 1) / p.PageSize
	}
	return Pagination{Total: total, Page: p.Page, PageSize: p.PageSize, TotalPages: pages}
}

// Parse reads page and pageSize from the query string. Absent values take
// page 1 and defaultSize; malformed or out-of-range values are a 400.
func Parse(r *http.Request, defaultSize int) (Params, error) {
	p := Params{Page: 1, PageSize: defaultSize}
	var errs validate.Errs

	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPage {
			errs = append(errs, validate.ErrField{Field: "page", Message: "must be between 1 and " + strconv.Itoa(MaxPage)})
		} else {
			p.Page = n
		}
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPageSize {
			errs = append(errs, validate.ErrField{Field: "pageSize", Message: "must be between 1 and " + strconv.Itoa(MaxPageSize)})
		} else {
			p.PageSize = n
		}
	}
	if len(errs) > 0 {
		return Params{}, errs
	}
	return p, nil
}

// Limit parses a bounded "limit"-style integer parameter.
func Limit(r *http.Request, name string, def, min, max int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return 0, validate.Field(name, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return n, nil
}

// Page is the body of a paginated list response.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage never returns a null data array.
func NewPage[T any](rows []T, total int, p Params) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	return Page[T]{Data: rows, Pagination: New(total, p)}
}
