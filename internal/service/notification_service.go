package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	Category  string `json:"category,omitempty"`
	RelatedID string `json:"related_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NotificationService reads and acknowledges the caller's own notifications.
type NotificationService interface {
	List(ctx context.Context, actor Actor, status string, page, limit int) ([]NotificationResponse, int64, error)
	CountUnread(ctx context.Context, actor Actor) (int64, error)
	MarkRead(ctx context.Context, actor Actor, id string) error
	MarkAllRead(ctx context.Context, actor Actor) error
}

type notificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) List(ctx context.Context, actor Actor, status string, page, limit int) ([]NotificationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if status != "" && status != model.NotificationUnread && status != model.NotificationRead {
		return nil, 0, apperror.Validation("status must be UNREAD or READ")
	}

	notifications, total, err := s.notifications.ListByUser(ctx, actor.ID, status, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch notifications")
	}

	result := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, NotificationResponse{
			ID:        n.ID.String(),
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Status:    n.Status,
			Category:  n.Category,
			RelatedID: n.RelatedID,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}

func (s *notificationService) CountUnread(ctx context.Context, actor Actor) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, apperror.Internal(err, "failed to count notifications")
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	notificationID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid notification id")
	}

	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("notification not found")
		}
		return apperror.Internal(err, "failed to fetch notification")
	}
	if notification.UserID != actor.ID {
		return apperror.Forbidden("this notification belongs to another user")
	}

	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return apperror.Internal(err, "failed to mark notification as read")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) error {
	if err := s.notifications.MarkAllRead(ctx, actor.ID); err != nil {
		return apperror.Internal(err, "failed to mark notifications as read")
	}
	return nil
}
