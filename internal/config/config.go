package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	HTTPPort    string
	LogLevel    string
	SiteURL     string
	CORSOrigins []string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	SupabaseJWTSecret  string
	RemoteTimeout      time.Duration

	DatabaseURL string
	Migrate     bool

	RedisAddr      string
	RateRPS        int
	RateBurst      int
	AuthRatePerMin int

	FanOutPolicy string

	KafkaBrokers    []string
	KafkaAuditTopic string

	TelegramToken         string
	TelegramWebhookURL    string
	TelegramWebhookSecret string
	TelegramAdminChatID   int64
	BotInitDelay          time.Duration
	BotInitRetries        int
	BotHealthSpec         string

	LinkTokenSecret string
	WorkerCount     int
}

// Load reads the environment, optionally seeded from a .env file in the
// working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         get("APP_ENV", "dev"),
		HTTPPort:    get("HTTP_PORT", "8080"),
		LogLevel:    get("LOG_LEVEL", "info"),
		SiteURL:     strings.TrimRight(get("SITE_URL", "http://localhost:3000"), "/"),
		CORSOrigins: list(get("CORS_ALLOWED_ORIGINS", "*")),

		SupabaseURL:        strings.TrimRight(get("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:    get("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: get("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:  get("SUPABASE_JWT_SECRET", ""),

		DatabaseURL: get("DATABASE_URL", ""),

		RedisAddr:    get("REDIS_ADDR", ""),
		FanOutPolicy: get("FANOUT_POLICY", "fail_fast"),

		KafkaBrokers:    list(get("KAFKA_BROKERS", "")),
		KafkaAuditTopic: get("KAFKA_AUDIT_TOPIC", "admin.audit"),

		TelegramToken:         get("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookURL:    strings.TrimRight(get("TELEGRAM_WEBHOOK_URL", ""), "/"),
		TelegramWebhookSecret: get("TELEGRAM_WEBHOOK_SECRET", ""),
		BotHealthSpec:         get("BOT_HEALTH_SPEC", "@every 1m"),

		LinkTokenSecret: get("LINK_TOKEN_SECRET", ""),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.RemoteTimeout, err = getDuration("REMOTE_TIMEOUT", 10*time.Second)
	collect(err)
	cfg.BotInitDelay, err = getDuration("BOT_INIT_DELAY", 2*time.Second)
	collect(err)
	cfg.Migrate, err = getBool("APP_MIGRATE", false)
	collect(err)
	cfg.RateRPS, err = getInt("RATE_RPS", 20)
	collect(err)
	cfg.RateBurst, err = getInt("RATE_BURST", 40)
	collect(err)
	cfg.AuthRatePerMin, err = getInt("AUTH_RATE_PER_MIN", 10)
	collect(err)
	cfg.BotInitRetries, err = getInt("BOT_INIT_RETRIES", 3)
	collect(err)
	cfg.WorkerCount, err = getInt("WORKER_COUNT", 4)
	collect(err)

	if v := get("TELEGRAM_ADMIN_CHAT_ID", ""); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			collect(fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err))
		}
		cfg.TelegramAdminChatID = id
	}

	collect(cfg.validate())
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if cfg.LinkTokenSecret == "" {
		cfg.LinkTokenSecret = cfg.SupabaseServiceKey
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if c.SupabaseServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}
	switch c.FanOutPolicy {
	case "fail_fast", "best_effort":
	default:
		return fmt.Errorf("FANOUT_POLICY: unknown policy %q", c.FanOutPolicy)
	}
	if c.TelegramToken != "" && c.TelegramWebhookURL != "" && c.TelegramWebhookSecret == "" {
		return errors.New("TELEGRAM_WEBHOOK_SECRET is required when a webhook URL is set")
	}
	return nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func get(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
