package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu      sync.Mutex
	meErr   error
	sent    []tgbotapi.MessageConfig
	webhook string
}

func (f *fakeAPI) GetMe() (tgbotapi.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return tgbotapi.User{}, f.meErr
	}
	return tgbotapi.User{ID: 1, IsBot: true, UserName: "betzone_bot"}, nil
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if wh, ok := c.(tgbotapi.WebhookConfig); ok {
		f.webhook = wh.URL.String()
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetWebhookInfo() (tgbotapi.WebhookInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return tgbotapi.WebhookInfo{URL: f.webhook}, nil
}

func (f *fakeAPI) setMeErr(err error) {
	f.mu.Lock()
	f.meErr = err
	f.mu.Unlock()
}

func testConfig() Config {
	return Config{Token: "t", InitRetries: 3, Timeout: time.Second}
}

func TestStartConnects(t *testing.T) {
	api := &fakeAPI{}
	cfg := testConfig()
	cfg.WebhookURL = "https://api.example.com/api/telegram/webhook/s3cret"
	s := NewService(cfg, func(string) (API, error) { return api, nil }, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)
	require.Eventually(t, s.IsReady, time.Second, 5*time.Millisecond)

	st := s.Status(context.Background())
	assert.True(t, st.Initialized)
	assert.True(t, st.Connected)
	assert.Equal(t, "betzone_bot", st.Username)
	assert.Equal(t, cfg.WebhookURL, st.WebhookURL)
}

func TestStartGivesUpAfterRetries(t *testing.T) {
	var dials atomic.Int32
	s := NewService(testConfig(), func(string) (API, error) {
		dials.Add(1)
		return nil, errors.New("unauthorized")
	}, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)
	require.Eventually(t, func() bool { return s.Status(context.Background()).Initialized }, time.Second, 5*time.Millisecond)

	assert.False(t, s.IsReady())
	assert.Equal(t, int32(3), dials.Load())
	assert.Equal(t, "unauthorized", s.Status(context.Background()).LastError)
	assert.ErrorIs(t, s.Send(context.Background(), 1, "hi"), ErrNotReady)
}

func TestDisabledBot(t *testing.T) {
	s := NewService(Config{}, nil, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.False(t, s.IsReady())
	_, err := s.Restart(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestBadHealthSpec(t *testing.T) {
	cfg := testConfig()
	cfg.HealthSpec = "every now and then"
	s := NewService(cfg, func(string) (API, error) { return &fakeAPI{}, nil }, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
}

func TestSend(t *testing.T) {
	api := &fakeAPI{}
	s := NewService(testConfig(), func(string) (API, error) { return api, nil }, zap.NewNop())
	_, err := s.Restart(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), 42, "hello"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(42), api.sent[0].ChatID)
	assert.Equal(t, "hello", api.sent[0].Text)
}

func TestHealthCheckReconnects(t *testing.T) {
	first := &fakeAPI{}
	second := &fakeAPI{}
	var dials atomic.Int32
	s := NewService(testConfig(), func(string) (API, error) {
		if dials.Add(1) == 1 {
			return first, nil
		}
		return second, nil
	}, zap.NewNop())
	_, err := s.Restart(context.Background())
	require.NoError(t, err)

	first.setMeErr(errors.New("connection reset"))
	s.healthCheck(context.Background())

	assert.True(t, s.IsReady())
	assert.Equal(t, int32(2), dials.Load())
	require.NoError(t, s.Send(context.Background(), 7, "back"))
	assert.Len(t, second.sent, 1)
}
