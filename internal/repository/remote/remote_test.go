package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

const noRows = `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned","details":"The result contains 0 rows"}`

type seen struct {
	Method string
	Path   string
	Raw    string
	Query  url.Values
	Prefer string
}

type dataService struct {
	mu   sync.Mutex
	reqs []seen
}

func (d *dataService) requests() []seen {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]seen(nil), d.reqs...)
}

// newRepos points the remote repositories at a test server; h answers every
// call after it has been recorded.
func newRepos(t *testing.T, h http.HandlerFunc) (repo.Repositories, *dataService) {
	t.Helper()
	ds := &dataService{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ds.mu.Lock()
		ds.reqs = append(ds.reqs, seen{
			Method: r.Method,
			Path:   r.URL.Path,
			Raw:    r.URL.RawQuery,
			Query:  r.URL.Query(),
			Prefer: r.Header.Get("Prefer"),
		})
		ds.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := supabase.New(supabase.Config{URL: srv.URL, AnonKey: "anon", ServiceKey: "service", Timeout: time.Second})
	require.NoError(t, err)
	return NewRepositories(c), ds
}

func writeNoRows(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotAcceptable)
	_, _ = w.Write([]byte(noRows))
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	repos, ds := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"n1","user_id":"u1","is_read":true}`))
	})

	n, err := repos.Notifications.MarkRead(context.Background(), "u1", "n1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	reqs := ds.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, "/rest/v1/notifications", reqs[0].Path)
	assert.Contains(t, reqs[0].Raw, "id=eq.n1&user_id=eq.u1")
}

func TestForeignNotificationMapsToNotFound(t *testing.T) {
	repos, ds := newRepos(t, func(w http.ResponseWriter, r *http.Request) { writeNoRows(w) })
	ctx := context.Background()

	_, err := repos.Notifications.MarkRead(ctx, "intruder", "n1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CategoryNotFound))
	assert.Equal(t, "Notification not found", err.Error())

	err = repos.Notifications.Delete(ctx, "intruder", "n1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CategoryNotFound))

	reqs := ds.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodDelete, reqs[1].Method)
	assert.Equal(t, "eq.n1", reqs[1].Query.Get("id"))
	assert.Equal(t, "eq.intruder", reqs[1].Query.Get("user_id"))
}

func TestNotificationListReadsExactCount(t *testing.T) {
	repos, ds := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "20-29/57")
		_, _ = w.Write([]byte(`[{"id":"n21"},{"id":"n22"}]`))
	})

	rows, total, err := repos.Notifications.List(context.Background(), "u1", true, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 57, total)
	assert.Len(t, rows, 2)

	q := ds.requests()[0]
	assert.Equal(t, "count=exact", q.Prefer)
	assert.Equal(t, "eq.u1", q.Query.Get("user_id"))
	assert.Equal(t, "eq.false", q.Query.Get("is_read"))
	assert.Equal(t, "created_at.desc", q.Query.Get("order"))
	assert.Equal(t, "10", q.Query.Get("limit"))
	assert.Equal(t, "20", q.Query.Get("offset"))
}

func TestUpcomingQuery(t *testing.T) {
	repos, ds := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"g1","status":"scheduled"}]`))
	})
	now := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)

	games, err := repos.Games.Upcoming(context.Background(), now, 5)
	require.NoError(t, err)
	require.Len(t, games, 1)

	q := ds.requests()[0]
	assert.Equal(t, http.MethodGet, q.Method)
	assert.Equal(t, "/rest/v1/games", q.Path)
	assert.Equal(t, "eq.scheduled", q.Query.Get("status"))
	assert.Equal(t, "gt.2026-10-19T12:30:00Z", q.Query.Get("start_time"))
	assert.Equal(t, "start_time.asc", q.Query.Get("order"))
	assert.Equal(t, "5", q.Query.Get("limit"))
	assert.Empty(t, q.Query.Get("offset"))
}

func TestGameListFiltersAndSearch(t *testing.T) {
	repos, ds := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "0-11/13")
		_, _ = w.Write([]byte(`[]`))
	})

	_, total, err := repos.Games.List(context.Background(),
		models.GameFilter{Status: string(models.GameLive), Search: "derby,(x)"}, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, 13, total)

	q := ds.requests()[0]
	assert.Equal(t, "eq.live", q.Query.Get("status"))
	assert.Equal(t, "ilike.*derbyx*", q.Query.Get("title"))
	assert.Equal(t, "start_time.desc", q.Query.Get("order"))
}

func TestGameDeleteWithBetsIsConflict(t *testing.T) {
	repos, _ := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23503","message":"update or delete on table \"games\" violates foreign key constraint"}`))
	})

	err := repos.Games.Delete(context.Background(), "g1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CategoryConflict))
}

func TestBetGetIsScopedToOwner(t *testing.T) {
	repos, ds := newRepos(t, func(w http.ResponseWriter, r *http.Request) { writeNoRows(w) })

	_, err := repos.Bets.Get(context.Background(), "u2", "b1")
	assert.True(t, apperr.Is(err, apperr.CategoryNotFound))

	q := ds.requests()[0]
	assert.Equal(t, "eq.b1", q.Query.Get("id"))
	assert.Equal(t, "eq.u2", q.Query.Get("user_id"))
}

func TestSetReferralCodeOnlyWhenUnset(t *testing.T) {
	repos, ds := newRepos(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			// a concurrent request already stored a code
			writeNoRows(w)
			return
		}
		_, _ = w.Write([]byte(`{"id":"u1","referral_code":"KEEPME12"}`))
	})

	p, err := repos.Profiles.SetReferralCode(context.Background(), "u1", "NEWCODE1")
	require.NoError(t, err)
	require.NotNil(t, p.ReferralCode)
	assert.Equal(t, "KEEPME12", *p.ReferralCode)

	reqs := ds.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, "eq.u1", reqs[0].Query.Get("id"))
	assert.Equal(t, "is.null", reqs[0].Query.Get("referral_code"))
	assert.Equal(t, http.MethodGet, reqs[1].Method)
}
