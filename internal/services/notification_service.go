package services

import (
	"context"

	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

type NotificationService struct {
	notifications repo.Notifications
}

func NewNotificationService(r repo.Repositories) *NotificationService {
	return &NotificationService{notifications: r.Notifications}
}

type NotificationPage struct {
	paging.Page[models.Notification]
	UnreadCount int `json:"unreadCount"`
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, p paging.Params) (NotificationPage, error) {
	rows, total, err := s.notifications.List(ctx, userID, unreadOnly, p.PageSize, p.Offset())
	if err != nil {
		return NotificationPage{}, err
	}
	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return NotificationPage{}, err
	}
	return NotificationPage{Page: paging.NewPage(rows, total, p), UnreadCount: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (models.Notification, error) {
	return s.notifications.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	return s.notifications.Delete(ctx, userID, id)
}
