package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/async"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, AnonKey: "anon", ServiceKey: "service", Timeout: 200 * time.Millisecond})
	require.NoError(t, err)
	return c
}

func TestQueryBuildsPostgRESTRequest(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Range", "10-19/57")
		_, _ = w.Write([]byte(`[{"id":"g1"}]`))
	})

	var rows []struct{ ID string }
	n, err := c.From("games").
		Select("*").
		Eq("status", "scheduled").
		Gt("start_time", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)).
		Order("start_time", true).
		Range(10, 19).
		Count("exact").
		ExecuteInto(context.Background(), &rows)
	require.NoError(t, err)
	assert.Equal(t, 57, n)
	require.Len(t, rows, 1)

	assert.Equal(t, "/rest/v1/games", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "eq.scheduled", q.Get("status"))
	assert.Equal(t, "gt.2026-01-02T03:04:05Z", q.Get("start_time"))
	assert.Equal(t, "start_time.asc", q.Get("order"))
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "10", q.Get("offset"))
	assert.Equal(t, "count=exact", got.Header.Get("Prefer"))
	assert.Equal(t, "service", got.Header.Get("apikey"))
	assert.Equal(t, "Bearer service", got.Header.Get("Authorization"))
}

func TestInsertSendsBodyAndPrefer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"hi"}`, string(b))
		_, _ = w.Write([]byte(`{"id":"n1","title":"hi"}`))
	})

	var row struct{ ID, Title string }
	_, err := c.From("notifications").Insert(map[string]string{"title": "hi"}).Single().ExecuteInto(context.Background(), &row)
	require.NoError(t, err)
	assert.Equal(t, "n1", row.ID)
}

func TestSingleNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned","details":"The result contains 0 rows"}`))
	})

	_, err := c.From("bets").Select("*").Eq("id", "x").Single().Execute(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestRPCDecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/get_user_bet_stats", r.URL.Path)
		var params map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "u1", params["p_user_id"])
		_, _ = w.Write([]byte(`{"total_bets":3}`))
	})

	var out struct {
		TotalBets int `json:"total_bets"`
	}
	require.NoError(t, c.RPC(context.Background(), "get_user_bet_stats", map[string]string{"p_user_id": "u1"}, &out))
	assert.Equal(t, 3, out.TotalBets)
}

func TestRPCRaisedErrorIsValidation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"P0001","message":"Insufficient balance"}`))
	})

	err := c.RPC(context.Background(), "place_bet", nil, nil)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, apperr.CategoryValidation, se.Category())
	assert.Equal(t, "Insufficient balance", se.ClientMessage())
}

func TestCallTimesOut(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	_, err := c.From("games").Select("*").Execute(context.Background())
	assert.ErrorIs(t, err, async.ErrTimeout)
}

func TestAuthSignInMapsBadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`))
	})

	_, err := c.Auth().SignInWithPassword(context.Background(), "a@b.co", "wrong")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, apperr.CategoryUnauthenticated, se.Category())
	assert.Equal(t, "Invalid email or password", se.ClientMessage())
}

func TestAuthGetUserUsesAccessToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.co","aud":"authenticated"}`))
	})

	u, err := c.Auth().GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestErrorCategories(t *testing.T) {
	cases := []struct {
		err *Error
		cat apperr.Category
	}{
		{&Error{Op: "rest:referrals", Code: "23505", StatusCode: 409}, apperr.CategoryConflict},
		{&Error{Op: "rest:games", Code: "23503", StatusCode: 409}, apperr.CategoryConflict},
		{&Error{Op: "rest:games", Code: "42501", StatusCode: 403}, apperr.CategoryForbidden},
		{&Error{Op: "rest:games", Code: "PGRST301", StatusCode: 401}, apperr.CategoryUnauthenticated},
		{&Error{Op: "rest:games", Code: "PGRST100", StatusCode: 400}, apperr.CategoryInternal},
		{&Error{Op: "rest:games", Code: "42P01", StatusCode: 404}, apperr.CategoryInternal},
		{&Error{Op: "rpc:x", Code: "XX000", StatusCode: 500}, apperr.CategoryInternal},
		{&Error{Op: "auth:signup", Code: "user_already_exists", StatusCode: 422}, apperr.CategoryConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.cat, tc.err.Category(), tc.err.Error())
	}
	assert.Equal(t, "", (&Error{Op: "rpc:x", Code: "XX000", Message: "SQL blew up", StatusCode: 500}).ClientMessage())
}

func TestParseContentRange(t *testing.T) {
	assert.Equal(t, 57, parseContentRange("0-9/57"))
	assert.Equal(t, 0, parseContentRange("*/0"))
	assert.Equal(t, -1, parseContentRange("0-9/*"))
	assert.Equal(t, -1, parseContentRange(""))
}
