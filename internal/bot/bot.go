// Package bot wraps the Telegram Bot API behind a service with an explicit
// lifecycle. The bot is optional: without a token every call reports
// ErrNotReady and the rest of the API keeps working.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/async"
	"github.com/baharkarakas/betzone-api/internal/metrics"
)

var (
	ErrNotReady = errors.New("bot is not connected")
	ErrDisabled = errors.New("bot token not configured")
)

// RestartTimeout bounds a manual restart.
const RestartTimeout = 10 * time.Second

// API is the part of *tgbotapi.BotAPI the service uses.
type API interface {
	GetMe() (tgbotapi.User, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
}

// Dialer opens an API client for token.
type Dialer func(token string) (API, error)

func DialTelegram(token string) (API, error) {
	return tgbotapi.NewBotAPI(token)
}

type Config struct {
	Token       string
	WebhookURL  string
	AdminChatID int64
	InitDelay   time.Duration
	InitRetries int
	Timeout     time.Duration
	HealthSpec  string
}

type Status struct {
	Initialized bool   `json:"initialized"`
	Connected   bool   `json:"connected"`
	Username    string `json:"username,omitempty"`
	WebhookURL  string `json:"webhookUrl,omitempty"`
	LastError   string `json:"lastError,omitempty"`
}

type Service struct {
	cfg  Config
	dial Dialer
	log  *zap.Logger

	mu          sync.RWMutex
	api         API
	initialized bool
	connected   bool
	username    string
	lastErr     string

	cron   *cron.Cron
	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(cfg Config, dial Dialer, log *zap.Logger) *Service {
	if dial == nil {
		dial = DialTelegram
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitRetries < 1 {
		cfg.InitRetries = 1
	}
	return &Service{cfg: cfg, dial: dial, log: log.Named("bot")}
}

func (s *Service) Enabled() bool { return s.cfg.Token != "" }

func (s *Service) AdminChatID() int64 { return s.cfg.AdminChatID }

// Start connects in the background after InitDelay, retrying up to
// InitRetries times, and schedules the health check. Ending up initialized
// but disconnected is not an error.
func (s *Service) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.log.Info("telegram bot disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	if s.cfg.HealthSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.cfg.HealthSpec, func() { s.healthCheck(ctx) }); err != nil {
			cancel()
			return fmt.Errorf("bot health schedule %q: %w", s.cfg.HealthSpec, err)
		}
		s.cron = c
	}

	go func() {
		defer close(s.done)
		s.init(ctx)
		if s.cron != nil && ctx.Err() == nil {
			s.cron.Start()
		}
	}()
	return nil
}

func (s *Service) init(ctx context.Context) {
	for attempt := 1; attempt <= s.cfg.InitRetries; attempt++ {
		if !sleep(ctx, s.cfg.InitDelay) {
			return
		}
		err := s.connect(ctx)
		if err == nil {
			break
		}
		s.log.Warn("bot init failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) connect(ctx context.Context) error {
	api, err := async.Call(ctx, s.cfg.Timeout, func(context.Context) (API, error) {
		return s.dial(s.cfg.Token)
	})
	if err == nil {
		var me tgbotapi.User
		me, err = async.Call(ctx, s.cfg.Timeout, func(context.Context) (tgbotapi.User, error) {
			return api.GetMe()
		})
		if err == nil && s.cfg.WebhookURL != "" {
			err = s.setWebhook(ctx, api, s.cfg.WebhookURL)
		}
		if err == nil {
			s.mu.Lock()
			s.api, s.connected, s.username, s.lastErr = api, true, me.UserName, ""
			s.mu.Unlock()
			metrics.BotConnected.Set(1)
			s.log.Info("telegram bot connected", zap.String("username", me.UserName))
			return nil
		}
	}

	s.markDown(err)
	return err
}

func (s *Service) markDown(err error) {
	s.mu.Lock()
	s.connected = false
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
	metrics.BotConnected.Set(0)
}

func (s *Service) setWebhook(ctx context.Context, api API, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	_, err = async.Call(ctx, s.cfg.Timeout, func(context.Context) (*tgbotapi.APIResponse, error) {
		return api.Request(wh)
	})
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// healthCheck pings the bot; on failure it marks the bot down and
// reconnects once.
func (s *Service) healthCheck(ctx context.Context) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()
	if api == nil {
		return
	}

	_, err := async.Call(ctx, s.cfg.Timeout, func(context.Context) (tgbotapi.User, error) {
		return api.GetMe()
	})
	if err == nil {
		return
	}
	s.log.Warn("bot health check failed", zap.Error(err))
	s.markDown(err)
	if err := s.connect(ctx); err != nil {
		s.log.Warn("bot reconnect failed", zap.Error(err))
	}
}

// Stop halts the health check and any pending init.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.markDown(nil)
}

func (s *Service) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized && s.connected
}

func (s *Service) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Status reports the current state; the webhook URL is read back from
// Telegram when connected.
func (s *Service) Status(ctx context.Context) Status {
	s.mu.RLock()
	st := Status{
		Initialized: s.initialized,
		Connected:   s.connected,
		Username:    s.username,
		WebhookURL:  s.cfg.WebhookURL,
		LastError:   s.lastErr,
	}
	api := s.api
	s.mu.RUnlock()

	if st.Connected && api != nil {
		info, err := async.Call(ctx, s.cfg.Timeout, func(context.Context) (tgbotapi.WebhookInfo, error) {
			return api.GetWebhookInfo()
		})
		if err != nil {
			st.LastError = err.Error()
		} else {
			st.WebhookURL = info.URL
			if info.LastErrorMessage != "" {
				st.LastError = info.LastErrorMessage
			}
		}
	}
	return st
}

// Restart reconnects, bounded by RestartTimeout.
func (s *Service) Restart(ctx context.Context) (Status, error) {
	if !s.Enabled() {
		return s.Status(ctx), ErrDisabled
	}
	s.markDown(nil)
	err := async.Do(ctx, RestartTimeout, s.connect)

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return s.Status(ctx), err
}

func (s *Service) Send(ctx context.Context, chatID int64, text string) error {
	s.mu.RLock()
	api, ok := s.api, s.connected
	s.mu.RUnlock()
	if !ok || api == nil {
		return ErrNotReady
	}

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := async.Call(ctx, s.cfg.Timeout, func(context.Context) (tgbotapi.Message, error) {
		return api.Send(msg)
	})
	if err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}
