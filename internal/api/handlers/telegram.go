package handlers

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/bot"
	"github.com/baharkarakas/betzone-api/internal/models"
)

const (
	replyWelcome = "Welcome! Open your profile on the website and use \"Link Telegram\" to receive notifications here."
	replyLinked  = "Your account is linked. You will get bet and payment notifications here."
	replyExpired = "This link has expired. Please request a new one from your profile."
	replyHelp    = "Commands:\n/start - link your account\n/help - show this message"
)

// Replier sends a text message to a chat.
type Replier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// ChatLinker binds a chat to the account a link token was issued for.
type ChatLinker interface {
	LinkTelegram(ctx context.Context, token string, chatID int64) (models.Profile, error)
}

type TelegramHandler struct {
	secret string
	reply  Replier
	linker ChatLinker
	log    *zap.Logger
}

// An empty secret disables the webhook.
func NewTelegramHandler(secret string, reply Replier, linker ChatLinker, log *zap.Logger) *TelegramHandler {
	return &TelegramHandler{secret: secret, reply: reply, linker: linker, log: log}
}

// Webhook always answers 200 for an authenticated call; Telegram retries
// anything else.
func (h *TelegramHandler) Webhook(w http.ResponseWriter, r *http.Request) error {
	got := chi.URLParam(r, "secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return apperr.NotFound("")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if u, ok := bot.ParseUpdate(body); ok {
		h.handle(r.Context(), u)
	}
	httpx.OK(w, http.StatusOK, nil)
	return nil
}

func (h *TelegramHandler) handle(ctx context.Context, u bot.Update) {
	var text string
	switch u.Command {
	case "start":
		if u.Payload == "" {
			text = replyWelcome
			break
		}
		if _, err := h.linker.LinkTelegram(ctx, u.Payload, u.ChatID); err != nil {
			h.log.Info("telegram link failed", zap.Int64("chat_id", u.ChatID), zap.Error(err))
			text = replyExpired
		} else {
			text = replyLinked
		}
	case "help":
		text = replyHelp
	default:
		return
	}
	if err := h.reply.Send(ctx, u.ChatID, text); err != nil {
		h.log.Warn("telegram reply failed", zap.Int64("chat_id", u.ChatID), zap.Error(err))
	}
}
