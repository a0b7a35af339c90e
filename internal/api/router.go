package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/handlers"
	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/auth"
	"github.com/baharkarakas/betzone-api/internal/config"
	"github.com/baharkarakas/betzone-api/internal/metrics"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/ratelimit"
	"github.com/baharkarakas/betzone-api/internal/services"
)

// requestTimeout caps a whole request; single remote calls are bounded
// tighter by REMOTE_TIMEOUT.
const requestTimeout = 30 * time.Second

type RouterDeps struct {
	Cfg      config.Config
	Log      *zap.Logger
	Resolver *auth.Resolver

	// GlobalLimiter applies to every request, AuthLimiter to /api/auth.
	// Nil disables the limit.
	GlobalLimiter ratelimit.Limiter
	AuthLimiter   ratelimit.Limiter

	Accounts      *services.AccountService
	Wallet        *services.WalletService
	Games         *services.GameService
	Bets          *services.BetService
	Notifications *services.NotificationService
	Referrals     *services.ReferralService
	Dashboard     *services.DashboardService
	Admin         *services.AdminService

	Bot          handlers.BotControl
	HealthChecks map[string]handlers.Pinger
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log
	h := func(fallback string, fn httpx.HandlerFunc) http.HandlerFunc {
		return httpx.Handle(log, fallback, fn)
	}

	authH := handlers.NewAuthHandler(d.Accounts, d.Cfg.IsProd())
	profileH := handlers.NewProfileHandler(d.Accounts)
	walletH := handlers.NewWalletHandler(d.Wallet)
	gameH := handlers.NewGameHandler(d.Games)
	betH := handlers.NewBetHandler(d.Bets)
	notifH := handlers.NewNotificationHandler(d.Notifications)
	refH := handlers.NewReferralHandler(d.Referrals)
	dashH := handlers.NewDashboardHandler(d.Dashboard)
	adminH := handlers.NewAdminHandler(d.Admin, d.Games, d.Bot)
	tgH := handlers.NewTelegramHandler(d.Cfg.TelegramWebhookSecret, d.Bot, d.Accounts, log)
	healthH := handlers.NewHealthHandler(d.HealthChecks, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, middleware.Recover(log), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(d.GlobalLimiter, "global", log))
	r.Use(middleware.Timeout(requestTimeout, log))

	// health & metrics
	r.Get("/health", healthH.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(d.Resolver))

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(d.AuthLimiter, "auth", log))
			r.Post("/register", h("Registration failed", authH.Register))
			r.Post("/login", h("Login failed", authH.Login))
			r.Post("/refresh", h("Failed to refresh session", authH.Refresh))
			r.Post("/logout", h("Logout failed", authH.Logout))
			r.Get("/session", h("Failed to load session", authH.Session))
		})

		// ---------- public ----------
		r.Get("/games", h("Failed to fetch games", gameH.List))
		r.Get("/games/upcoming", h("Failed to fetch upcoming games", gameH.Upcoming))
		r.Get("/games/{id}", h("Failed to fetch game", gameH.Get))
		r.Post("/telegram/webhook/{secret}", h("Failed to process update", tgH.Webhook))

		// ---------- user ----------
		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(middleware.Active))

			r.Get("/profile", h("Failed to fetch profile", profileH.Get))
			r.Post("/profile", h("Failed to update profile", profileH.Update))
			r.Get("/profile/telegram-link", h("Failed to create Telegram link", profileH.TelegramLink))

			r.Get("/dashboard", h("Failed to load dashboard", dashH.Get))

			r.Get("/wallet", h("Failed to fetch wallet", walletH.Summary))
			r.Get("/wallet/transactions", h("Failed to fetch transactions", walletH.Transactions))
			r.Get("/wallet/requests", h("Failed to fetch payment requests", walletH.Requests))
			r.Post("/wallet/deposit", h("Failed to create deposit request", walletH.Deposit))
			r.Post("/wallet/withdraw", h("Failed to create withdrawal request", walletH.Withdraw))

			r.Post("/bets", h("Failed to place bet", betH.Place))
			r.Get("/bets", h("Failed to fetch bets", betH.List))
			r.Get("/bets/stats", h("Failed to fetch bet statistics", betH.Stats))
			r.Get("/bets/{id}", h("Failed to fetch bet", betH.Get))

			r.Get("/notifications", h("Failed to fetch notifications", notifH.List))
			r.Post("/notifications/read-all", h("Failed to update notifications", notifH.MarkAllRead))
			r.Post("/notifications/{id}/read", h("Failed to update notification", notifH.MarkRead))
			r.Delete("/notifications/{id}", h("Failed to delete notification", notifH.Delete))

			r.Get("/referrals/code", h("Failed to get referral code", refH.Code))
			r.Get("/referrals", h("Failed to fetch referrals", refH.List))
		})

		// ---------- admin ----------
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Require(middleware.Active, middleware.Admin))

			r.Get("/stats", h("Failed to fetch statistics", adminH.Stats))

			r.Get("/users", h("Failed to fetch users", adminH.Users))
			r.Get("/users/{id}", h("Failed to fetch user", adminH.User))
			r.Post("/users/{id}/status", h("Failed to update user status", adminH.SetUserStatus))
			r.Post("/users/{id}/balance", h("Failed to adjust balance", adminH.AdjustBalance))

			r.Get("/payments", h("Failed to fetch payment requests", adminH.Payments))
			r.Post("/payments/{id}/approve", h("Failed to approve payment", adminH.ApprovePayment))
			r.Post("/payments/{id}/reject", h("Failed to reject payment", adminH.RejectPayment))

			r.Post("/games", h("Failed to create game", adminH.CreateGame))
			r.Post("/games/{id}/status", h("Failed to update game status", adminH.SetGameStatus))
			r.Post("/games/{id}/settle", h("Failed to settle game", adminH.SettleGame))
			r.Delete("/games/{id}", h("Failed to delete game", adminH.DeleteGame))

			r.Post("/notifications", h("Failed to send notification", adminH.SendNotification))

			r.Get("/bot/status", h("Failed to fetch bot status", adminH.BotStatus))
			r.Post("/bot/restart", h("Failed to restart bot", adminH.BotRestart))
			r.Post("/bot/test", h("Failed to send test message", adminH.BotTest))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
	return r
}
