package services

import (
	"context"

	"github.com/baharkarakas/betzone-api/internal/models"
)

// Notifier queues user and admin notifications; delivery is best-effort.
type Notifier interface {
	Notify(n models.NewNotification)
	AlertAdmins(title, message string)
}

// Auditor records admin mutations.
type Auditor interface {
	Record(ev models.AuditEvent)
}

// AuditHistory reads recorded admin actions back, newest first.
type AuditHistory interface {
	ForEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.AuditEvent, error)
}

// BotInfo is what account linking needs from the bot.
type BotInfo interface {
	Username() string
	IsReady() bool
}

// Currency is the single wallet currency.
const Currency = "USD"
