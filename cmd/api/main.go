package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api"
	"github.com/baharkarakas/betzone-api/internal/api/handlers"
	"github.com/baharkarakas/betzone-api/internal/async"
	"github.com/baharkarakas/betzone-api/internal/audit"
	"github.com/baharkarakas/betzone-api/internal/auth"
	"github.com/baharkarakas/betzone-api/internal/bot"
	"github.com/baharkarakas/betzone-api/internal/config"
	"github.com/baharkarakas/betzone-api/internal/db"
	"github.com/baharkarakas/betzone-api/internal/logger"
	"github.com/baharkarakas/betzone-api/internal/notify"
	"github.com/baharkarakas/betzone-api/internal/ratelimit"
	"github.com/baharkarakas/betzone-api/internal/repository/postgres"
	"github.com/baharkarakas/betzone-api/internal/repository/remote"
	"github.com/baharkarakas/betzone-api/internal/services"
	"github.com/baharkarakas/betzone-api/internal/supabase"
	"github.com/baharkarakas/betzone-api/internal/worker"
)

const linkTokenTTL = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// para tutarları JSON'da sayı olarak gider
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := supabase.New(supabase.Config{
		URL:        cfg.SupabaseURL,
		AnonKey:    cfg.SupabaseAnonKey,
		ServiceKey: cfg.SupabaseServiceKey,
		Timeout:    cfg.RemoteTimeout,
	})
	if err != nil {
		log.Fatal("data service client", zap.Error(err))
	}
	repos := remote.NewRepositories(client)

	checks := map[string]handlers.Pinger{"data_service": repos.Ping}

	// direct database access is optional: migrations and health only
	var dbPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		dbPool, err = db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db connect", zap.Error(err))
		}
		defer dbPool.Close()
		checks["database"] = dbPool.Ping

		if cfg.Migrate {
			applied, err := db.RunMigrations(ctx, dbPool, log)
			if err != nil {
				log.Fatal("migrations", zap.Error(err))
			}
			log.Info("migrations done", zap.Strings("applied", applied))
		}
	} else if cfg.Migrate {
		log.Warn("APP_MIGRATE is set but DATABASE_URL is empty; skipping migrations")
	}

	globalLimiter, authLimiter, closeLimiters := newLimiters(ctx, cfg, log, checks)
	defer closeLimiters()

	policy, err := async.ParsePolicy(cfg.FanOutPolicy)
	if err != nil {
		log.Fatal("fan-out policy", zap.Error(err))
	}

	wp := worker.NewPool(cfg.WorkerCount, log)

	webhookURL := ""
	if cfg.TelegramWebhookURL != "" && cfg.TelegramWebhookSecret != "" {
		webhookURL = cfg.TelegramWebhookURL + "/api/telegram/webhook/" + cfg.TelegramWebhookSecret
	}
	tg := bot.NewService(bot.Config{
		Token:       cfg.TelegramToken,
		WebhookURL:  webhookURL,
		AdminChatID: cfg.TelegramAdminChatID,
		InitDelay:   cfg.BotInitDelay,
		InitRetries: cfg.BotInitRetries,
		Timeout:     cfg.RemoteTimeout,
		HealthSpec:  cfg.BotHealthSpec,
	}, bot.DialTelegram, log)
	if err := tg.Start(ctx); err != nil {
		log.Fatal("telegram bot", zap.Error(err))
	}

	var auditWriter audit.MessageWriter
	if len(cfg.KafkaBrokers) > 0 {
		auditWriter = audit.NewWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		log.Info("audit events go to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaAuditTopic))
	}
	auditor := audit.New(auditWriter, wp, log)
	notifier := notify.New(repos.Notifications, repos.Profiles, tg, wp, log)
	adminSvc := services.NewAdminService(repos, notifier, auditor, policy, log)
	if dbPool != nil {
		auditLogs := postgres.NewAuditLogs(dbPool)
		auditor.WithStore(auditLogs)
		adminSvc.WithAuditHistory(auditLogs)
	}

	tokens := auth.NewTokenManager(cfg.SupabaseJWTSecret, cfg.LinkTokenSecret, linkTokenTTL)
	if !tokens.CanVerifyLocally() {
		log.Info("SUPABASE_JWT_SECRET not set; access tokens are verified remotely")
	}

	r := api.NewRouter(api.RouterDeps{
		Cfg:           cfg,
		Log:           log,
		Resolver:      auth.NewResolver(tokens, repos.Identity, repos.Profiles, log),
		GlobalLimiter: globalLimiter,
		AuthLimiter:   authLimiter,
		Accounts:      services.NewAccountService(repos, tokens, tg, log),
		Wallet:        services.NewWalletService(repos, notifier, log),
		Games:         services.NewGameService(repos, notifier, auditor, log),
		Bets:          services.NewBetService(repos, log),
		Notifications: services.NewNotificationService(repos),
		Referrals:     services.NewReferralService(repos, cfg.SiteURL, log),
		Dashboard:     services.NewDashboardService(repos, policy, log),
		Admin:         adminSvc,
		Bot:           tg,
		HealthChecks:  checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.HTTPPort), zap.String("fanout_policy", policy.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	tg.Stop()
	if err := wp.Stop(shutdownCtx); err != nil {
		log.Warn("worker pool shutdown", zap.Error(err))
	}
	if err := auditor.Close(); err != nil {
		log.Warn("audit writer close", zap.Error(err))
	}
}

// newLimiters returns Redis-backed limiters when REDIS_ADDR is set so that
// limits hold across instances, and in-process ones otherwise.
func newLimiters(ctx context.Context, cfg config.Config, log *zap.Logger, checks map[string]handlers.Pinger) (global, authL ratelimit.Limiter, closeFn func()) {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable; limiter fails open until it recovers", zap.Error(err))
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		global = ratelimit.NewRedis(rdb, "rl", cfg.RateRPS*60, time.Minute)
		authL = ratelimit.NewRedis(rdb, "rl", cfg.AuthRatePerMin, time.Minute)
		return global, authL, func() { _ = rdb.Close() }
	}

	g := ratelimit.NewMemory(float64(cfg.RateRPS), cfg.RateBurst)
	a := ratelimit.PerMinute(cfg.AuthRatePerMin)
	g.Start(time.Minute)
	a.Start(time.Minute)
	return g, a, func() {
		g.Stop()
		a.Stop()
	}
}
