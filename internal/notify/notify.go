// Package notify delivers user-facing notifications: a stored row, plus a
// Telegram message when the user linked a chat. Delivery runs on the worker
// pool and never fails the request that triggered it.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
	"github.com/baharkarakas/betzone-api/internal/worker"
)

// Messenger is the chat side of the bot.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
	IsReady() bool
	AdminChatID() int64
}

type Submitter interface {
	Submit(worker.Task) error
}

type Notifier struct {
	notifications repo.Notifications
	profiles      repo.Profiles
	bot           Messenger
	pool          Submitter
	log           *zap.Logger
}

func New(n repo.Notifications, p repo.Profiles, bot Messenger, pool Submitter, log *zap.Logger) *Notifier {
	return &Notifier{notifications: n, profiles: p, bot: bot, pool: pool, log: log.Named("notify")}
}

// Notify queues a notification for one user.
func (n *Notifier) Notify(nn models.NewNotification) {
	n.submit(func(ctx context.Context) { n.Deliver(ctx, nn) })
}

// Deliver stores the notification and mirrors it to Telegram.
func (n *Notifier) Deliver(ctx context.Context, nn models.NewNotification) {
	log := n.log.With(zap.String("user_id", nn.UserID), zap.String("type", nn.Type))
	if _, err := n.notifications.Create(ctx, nn); err != nil {
		log.Warn("store notification failed", zap.Error(err))
	}
	if n.bot == nil || !n.bot.IsReady() {
		return
	}
	p, err := n.profiles.Get(ctx, nn.UserID)
	if err != nil {
		log.Warn("load profile for telegram failed", zap.Error(err))
		return
	}
	if p.TelegramChatID == nil {
		return
	}
	if err := n.bot.Send(ctx, *p.TelegramChatID, format(nn.Title, nn.Message)); err != nil {
		log.Warn("telegram delivery failed", zap.Error(err))
	}
}

// AlertAdmins posts to the admin chat, if one is configured.
func (n *Notifier) AlertAdmins(title, message string) {
	if n.bot == nil || n.bot.AdminChatID() == 0 {
		return
	}
	n.submit(func(ctx context.Context) {
		if !n.bot.IsReady() {
			return
		}
		if err := n.bot.Send(ctx, n.bot.AdminChatID(), format(title, message)); err != nil {
			n.log.Warn("admin alert failed", zap.Error(err))
		}
	})
}

func (n *Notifier) submit(t worker.Task) {
	if err := n.pool.Submit(t); err != nil {
		n.log.Warn("notification dropped", zap.Error(err))
	}
}

func format(title, message string) string {
	return fmt.Sprintf("%s\n\n%s", title, message)
}
