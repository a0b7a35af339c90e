package remote

import (
	"context"
	"time"

	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/supabase"
)

type notificationsRepo struct{ c *supabase.Client }

func (r *notificationsRepo) Create(ctx context.Context, n models.NewNotification) (models.Notification, error) {
	var out models.Notification
	_, err := r.c.From("notifications").Insert(n).Single().ExecuteInto(ctx, &out)
	return out, err
}

func (r *notificationsRepo) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	q := r.c.From("notifications").Select("*").Count("exact").
		Eq("user_id", userID).
		Order("created_at", false).
		Range(offset, offset+limit-1)
	if unreadOnly {
		q = q.Eq("is_read", false)
	}
	var out []models.Notification
	n, err := q.ExecuteInto(ctx, &out)
	return out, n, err
}

func (r *notificationsRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	return r.c.From("notifications").Select("id").Count("exact").
		Eq("user_id", userID).Eq("is_read", false).
		Limit(1).
		ExecuteInto(ctx, nil)
}

func (r *notificationsRepo) MarkRead(ctx context.Context, userID, id string) (models.Notification, error) {
	var out models.Notification
	_, err := r.c.From("notifications").
		Update(map[string]any{"is_read": true, "read_at": time.Now().UTC()}).
		Eq("id", id).Eq("user_id", userID).
		Single().ExecuteInto(ctx, &out)
	return out, notFound(err, "Notification")
}

func (r *notificationsRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	_, err := r.c.From("notifications").
		Update(map[string]any{"is_read": true, "read_at": time.Now().UTC()}).
		Eq("user_id", userID).Eq("is_read", false).
		Select("id").
		ExecuteInto(ctx, &rows)
	return len(rows), err
}

func (r *notificationsRepo) Delete(ctx context.Context, userID, id string) error {
	_, err := r.c.From("notifications").Delete().Eq("id", id).Eq("user_id", userID).Single().Execute(ctx)
	return notFound(err, "Notification")
}

func (r *notificationsRepo) Broadcast(ctx context.Context, n models.NewNotification) (int, error) {
	var count int
	err := r.c.RPC(ctx, "broadcast_notification", map[string]any{
		"p_title":   n.Title,
		"p_message": n.Message,
		"p_type":    n.Type,
	}, &count)
	return count, err
}
