package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// QueryBuilder builds one PostgREST request. Methods record the first
// error and Execute returns it.
type QueryBuilder struct {
	client  *Client
	table   string
	method  string
	columns string
	filters []string
	orders  []string
	limit   *int
	offset  *int
	count   string
	single  bool
	body    []byte
	headers map[string]string
	err     error
}

// Select sets the returned columns. On a write it picks the columns of the
// returned representation.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Insert adds rows and asks for them back.
func (q *QueryBuilder) Insert(data any) *QueryBuilder {
	q.method = http.MethodPost
	q.setBody(data)
	q.prefer("return=representation")
	return q
}

// Update patches the rows matched by the filters and asks for them back.
func (q *QueryBuilder) Update(data any) *QueryBuilder {
	q.method = http.MethodPatch
	q.setBody(data)
	q.prefer("return=representation")
	return q
}

func (q *QueryBuilder) Delete() *QueryBuilder {
	q.method = http.MethodDelete
	q.prefer("return=representation")
	return q
}

func (q *QueryBuilder) setBody(data any) {
	b, err := json.Marshal(data)
	if err != nil && q.err == nil {
		q.err = fmt.Errorf("marshal %s body: %w", q.table, err)
	}
	q.body = b
}

func (q *QueryBuilder) prefer(v string) {
	if cur := q.headers["Prefer"]; cur != "" {
		v = cur + "," + v
	}
	q.headers["Prefer"] = v
}

func (q *QueryBuilder) filter(column, op string, value any) *QueryBuilder {
	q.filters = append(q.filters, url.QueryEscape(column)+"="+op+"."+url.QueryEscape(formatValue(value)))
	return q
}

func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder  { return q.filter(column, "eq", value) }
func (q *QueryBuilder) Neq(column string, value any) *QueryBuilder { return q.filter(column, "neq", value) }
func (q *QueryBuilder) Gt(column string, value any) *QueryBuilder  { return q.filter(column, "gt", value) }
func (q *QueryBuilder) Gte(column string, value any) *QueryBuilder { return q.filter(column, "gte", value) }
func (q *QueryBuilder) Lt(column string, value any) *QueryBuilder  { return q.filter(column, "lt", value) }
func (q *QueryBuilder) Lte(column string, value any) *QueryBuilder { return q.filter(column, "lte", value) }

// ILike matches pattern case-insensitively; '*' is the PostgREST wildcard.
func (q *QueryBuilder) ILike(column, pattern string) *QueryBuilder {
	return q.filter(column, "ilike", pattern)
}

// Is filters on null/true/false.
func (q *QueryBuilder) Is(column string, value any) *QueryBuilder {
	if value == nil {
		value = "null"
	}
	return q.filter(column, "is", value)
}

func (q *QueryBuilder) In(column string, values ...any) *QueryBuilder {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	q.filters = append(q.filters, url.QueryEscape(column)+"=in.("+url.QueryEscape(strings.Join(parts, ","))+")")
	return q
}

// Or adds a raw PostgREST or-filter, e.g. "username.ilike.*x*,email.ilike.*x*".
func (q *QueryBuilder) Or(filters string) *QueryBuilder {
	q.filters = append(q.filters, "or=("+url.QueryEscape(filters)+")")
	return q
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = &n
	return q
}

// Range selects rows from..to inclusive.
func (q *QueryBuilder) Range(from, to int) *QueryBuilder {
	n := to - from + 1
	q.offset = &from
	q.limit = &n
	return q
}

// Single expects exactly one row; zero rows is a PGRST116 not-found error.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

// Count asks for the total row count ("exact", "planned" or "estimated").
func (q *QueryBuilder) Count(kind string) *QueryBuilder {
	q.count = kind
	return q
}

type Result struct {
	Body []byte
	// Count is the total from Content-Range, or -1 when not requested.
	Count int
}

func (q *QueryBuilder) Execute(ctx context.Context) (*Result, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.count != "" {
		q.prefer("count=" + q.count)
	}
	if q.single {
		q.headers["Accept"] = "application/vnd.pgrst.object+json"
	}

	resp, err := q.client.do(ctx, "rest:"+q.table, request{
		method:  q.method,
		url:     q.buildURL(),
		body:    q.body,
		headers: q.headers,
		key:     q.client.cfg.ServiceKey,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Body: resp.body, Count: -1}
	if q.count != "" {
		res.Count = parseContentRange(resp.header.Get("Content-Range"))
	}
	return res, nil
}

// ExecuteInto decodes the response into dest and returns the count (or -1).
func (q *QueryBuilder) ExecuteInto(ctx context.Context, dest any) (int, error) {
	res, err := q.Execute(ctx)
	if err != nil {
		return 0, err
	}
	if dest != nil && len(res.Body) > 0 {
		if err := json.Unmarshal(res.Body, dest); err != nil {
			return 0, fmt.Errorf("unmarshal %s: %w", q.table, err)
		}
	}
	return res.Count, nil
}

func (q *QueryBuilder) buildURL() string {
	u := q.client.restURL + "/" + url.PathEscape(q.table)

	params := make([]string, 0, len(q.filters)+4)
	if q.columns != "" && (q.method == http.MethodGet || q.headers["Prefer"] != "") {
		params = append(params, "select="+url.QueryEscape(q.columns))
	}
	params = append(params, q.filters...)
	if len(q.orders) > 0 {
		params = append(params, "order="+strings.Join(q.orders, ","))
	}
	if q.limit != nil {
		params = append(params, "limit="+strconv.Itoa(*q.limit))
	}
	if q.offset != nil {
		params = append(params, "offset="+strconv.Itoa(*q.offset))
	}
	if len(params) > 0 {
		u += "?" + strings.Join(params, "&")
	}
	return u
}

func formatValue(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// parseContentRange reads the total out of "0-9/57" or "*/0".
func parseContentRange(h string) int {
	i := strings.LastIndexByte(h, '/')
	if i < 0 {
		return -1
	}
	n, err := strconv.Atoi(h[i+1:])
	if err != nil {
		return -1
	}
	return n
}
