// Package postgres holds the few tables the API writes directly over pgx
// rather than through the data service.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/betzone-api/internal/models"
)

type AuditLogs struct{ pool *pgxpool.Pool }

func NewAuditLogs(pool *pgxpool.Pool) *AuditLogs { return &AuditLogs{pool: pool} }

// Insert is idempotent on the event id.
func (r *AuditLogs) Insert(ctx context.Context, ev models.AuditEvent) error {
	details, err := json.Marshal(ev.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	if ev.Details == nil {
		details = []byte("{}")
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO admin_audit_log(id, actor_id, action, entity_type, entity_id, details, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		ON CONFLICT (id) DO NOTHING`,
		ev.ID, ev.ActorID, ev.Action, ev.EntityType, ev.EntityID, details, ev.RequestID, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event %s: %w", ev.ID, err)
	}
	return nil
}

// ForEntity returns the newest events for one entity first.
func (r *AuditLogs) ForEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.AuditEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, actor_id, action, entity_type, entity_id, details, COALESCE(request_id, ''), created_at
		FROM admin_audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AuditEvent, error) {
		var (
			ev      models.AuditEvent
			details []byte
			created time.Time
		)
		if err := row.Scan(&ev.ID, &ev.ActorID, &ev.Action, &ev.EntityType, &ev.EntityID, &details, &ev.RequestID, &created); err != nil {
			return ev, err
		}
		ev.CreatedAt = created.UTC()
		if len(details) > 0 {
			if err := json.Unmarshal(details, &ev.Details); err != nil {
				return ev, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		return ev, nil
	})
}
