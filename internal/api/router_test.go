package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/async"
	"github.com/baharkarakas/betzone-api/internal/auth"
	"github.com/baharkarakas/betzone-api/internal/bot"
	"github.com/baharkarakas/betzone-api/internal/config"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/repository/memory"
	"github.com/baharkarakas/betzone-api/internal/services"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

const webhookSecret = "hook-secret"

type nopNotifier struct{}

func (nopNotifier) Notify(models.NewNotification) {}
func (nopNotifier) AlertAdmins(string, string)    {}

// stubBot satisfies both the admin bot surface and account linking.
type stubBot struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (b *stubBot) Username() string   { return "betzone_bot" }
func (b *stubBot) IsReady() bool      { return true }
func (b *stubBot) AdminChatID() int64 { return 0 }

func (b *stubBot) Status(context.Context) bot.Status {
	return bot.Status{Initialized: true, Connected: true, Username: b.Username()}
}

func (b *stubBot) Restart(ctx context.Context) (bot.Status, error) { return b.Status(ctx), nil }

func (b *stubBot) Send(_ context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sent == nil {
		b.sent = map[int64][]string{}
	}
	b.sent[chatID] = append(b.sent[chatID], text)
	return nil
}

type fixture struct {
	st     *memory.Store
	router http.Handler
	bot    *stubBot
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	st := memory.New()
	repos := st.Repositories()
	tm := auth.NewTokenManager("", "link-secret", 10*time.Minute)
	b := &stubBot{}

	accounts := services.NewAccountService(repos, tm, b, log)
	games := services.NewGameService(repos, nopNotifier{}, nil, log)
	router := NewRouter(RouterDeps{
		Cfg:           config.Config{Env: "test", SiteURL: "https://betzone.test", CORSOrigins: []string{"*"}, TelegramWebhookSecret: webhookSecret},
		Log:           log,
		Resolver:      auth.NewResolver(nil, repos.Identity, repos.Profiles, log),
		Accounts:      accounts,
		Wallet:        services.NewWalletService(repos, nopNotifier{}, log),
		Games:         games,
		Bets:          services.NewBetService(repos, log),
		Notifications: services.NewNotificationService(repos),
		Referrals:     services.NewReferralService(repos, "https://betzone.test", log),
		Dashboard:     services.NewDashboardService(repos, async.FailFast, log),
		Admin:         services.NewAdminService(repos, nopNotifier{}, nil, async.FailFast, log),
		Bot:           b,
	})
	return &fixture{st: st, router: router, bot: b, tokens: tm}
}

func (f *fixture) user(role, status string) (models.Profile, string) {
	p := f.st.AddProfile(models.Profile{Email: uuid.NewString() + "@example.com", Username: "user", Role: role, Status: status})
	return p, f.st.IssueToken(p.ID)
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func isPublic(pattern string) bool {
	for _, p := range []string{"/api/auth/", "/api/games", "/api/telegram/"} {
		if strings.HasPrefix(pattern, p) {
			return true
		}
	}
	return !strings.HasPrefix(pattern, "/api/")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newFixture(t)
	_, userToken := f.user(models.RoleUser, models.StatusActive)
	routes, ok := f.router.(chi.Routes)
	require.True(t, ok)

	checked := 0
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if isPublic(route) {
			return nil
		}
		path := strings.ReplaceAll(route, "{id}", uuid.NewString())

		rec := f.do(method, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s without session", method, route)

		if strings.HasPrefix(route, "/api/admin/") {
			rec = f.do(method, path, userToken, "")
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s as user", method, route)
		}
		checked++
		return nil
	})
	require.NoError(t, err)
	assert.Greater(t, checked, 30)
}

func TestSuspendedUserIsForbidden(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(models.RoleUser, models.StatusSuspended)

	rec := f.do(http.MethodGet, "/api/wallet", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Account suspended", decode(t, rec)["error"])
}

func TestLoginSetsCookies(t *testing.T) {
	f := newFixture(t)
	p := f.st.AddProfile(models.Profile{Email: "ada@example.com", Username: "ada"})
	f.st.AddAccount(p.ID, "ada@example.com", "correct-horse")

	rec := f.do(http.MethodPost, "/api/auth/login", "", `{"email":"ada@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])

	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.HttpOnly
	}
	assert.True(t, names[auth.AccessCookie])
	assert.True(t, names[auth.RefreshCookie])

	rec = f.do(http.MethodPost, "/api/auth/login", "", `{"email":"ada@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionEndpoint(t *testing.T) {
	f := newFixture(t)
	p, token := f.user(models.RoleUser, models.StatusActive)

	body := decode(t, f.do(http.MethodGet, "/api/auth/session", "", ""))
	assert.Nil(t, body["session"])

	body = decode(t, f.do(http.MethodGet, "/api/auth/session", token, ""))
	sess := body["session"].(map[string]any)
	assert.Equal(t, p.ID, sess["userId"])
	assert.NotContains(t, sess, "accessToken")
}

func TestReferralCodeIsCreatedOnce(t *testing.T) {
	f := newFixture(t)
	p, token := f.user(models.RoleUser, models.StatusActive)

	rec := f.do(http.MethodGet, "/api/referrals/code", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	code := body["referralCode"].(string)
	assert.Len(t, code, services.ReferralCodeLen)
	assert.True(t, strings.HasSuffix(body["shareUrl"].(string), "/register?ref="+code))

	stored, _ := f.st.Profile(p.ID)
	require.NotNil(t, stored.ReferralCode)
	assert.Equal(t, code, *stored.ReferralCode)

	again := decode(t, f.do(http.MethodGet, "/api/referrals/code", token, ""))
	assert.Equal(t, code, again["referralCode"])
}

func TestUpcomingGames(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	for i := 1; i <= 4; i++ {
		f.st.AddGame(models.Game{Title: "future", Status: models.GameScheduled, StartTime: now.Add(time.Duration(i) * time.Hour)})
	}
	f.st.AddGame(models.Game{Title: "past", Status: models.GameScheduled, StartTime: now.Add(-time.Hour)})
	f.st.AddGame(models.Game{Title: "live", Status: models.GameLive, StartTime: now.Add(time.Hour)})

	rec := f.do(http.MethodGet, "/api/games/upcoming?limit=3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.Game `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	for i, g := range body.Data {
		assert.Equal(t, models.GameScheduled, g.Status)
		assert.True(t, g.StartTime.After(now))
		if i > 0 {
			assert.False(t, g.StartTime.Before(body.Data[i-1].StartTime))
		}
	}

	rec = f.do(http.MethodGet, "/api/games/upcoming?limit=51", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForeignNotificationIsNotFound(t *testing.T) {
	f := newFixture(t)
	other, _ := f.user(models.RoleUser, models.StatusActive)
	_, token := f.user(models.RoleUser, models.StatusActive)
	n := f.st.AddNotification(models.Notification{UserID: other.ID, Title: "hi", Message: "there", Type: models.NotifyInfo})

	rec := f.do(http.MethodPost, "/api/notifications/"+n.ID+"/read", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, "/api/notifications/"+n.ID, token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, f.st.Notifications(other.ID), 1)
}

func TestValidationEnvelope(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(models.RoleUser, models.StatusActive)

	rec := f.do(http.MethodPost, "/api/bets", token, `{"gameId":"not-a-uuid","amount":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["error"])
	assert.NotEmpty(t, body["details"])

	rec = f.do(http.MethodGet, "/api/bets?pageSize=500", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/bets?pageSize=100&page=184467440737095517", token, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details, _ := decode(t, rec)["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "page", details[0].(map[string]any)["field"])

	rec = f.do(http.MethodGet, "/api/bets?pageSize=100&page=2", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(models.RoleUser, models.StatusActive)
	f.st.FailOn("bets.Stats", &supabase.Error{
		Op:         "rpc:get_user_bet_stats",
		Code:       "42P01",
		Message:    "SQL error: relation \"bets\" does not exist",
		StatusCode: http.StatusInternalServerError,
	})

	rec := f.do(http.MethodGet, "/api/bets/stats", token, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "SQL")
	assert.Equal(t, "Failed to fetch bet statistics", decode(t, rec)["error"])
}

func TestAdminCanAccessAdminRoutes(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(models.RoleAdmin, models.StatusActive)

	rec := f.do(http.MethodGet, "/api/admin/bot/status", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["connected"])

	rec = f.do(http.MethodPost, "/api/admin/bot/test", token, `{"message":"ping"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/bot/test", token, `{"chatId":42,"message":"ping"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ping"}, f.bot.sent[42])
}

func TestTelegramWebhookLinksChat(t *testing.T) {
	f := newFixture(t)
	p, _ := f.user(models.RoleUser, models.StatusActive)
	token, _, err := f.tokens.IssueLink(p.ID)
	require.NoError(t, err)
	update := `{"update_id":1,"message":{"chat":{"id":777},"from":{"username":"ada"},"text":"/start ` + token + `"}}`

	rec := f.do(http.MethodPost, "/api/telegram/webhook/wrong", "", update)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/telegram/webhook/"+webhookSecret, "", update)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, _ := f.st.Profile(p.ID)
	require.NotNil(t, stored.TelegramChatID)
	assert.Equal(t, int64(777), *stored.TelegramChatID)
	assert.Len(t, f.bot.sent[777], 1)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}
