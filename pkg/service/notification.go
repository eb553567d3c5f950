package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

// NotificationService exposes the caller's own notifications. Every
// operation is recipient-scoped: an account can never touch another
// account's notifications.
type NotificationService struct {
	notifications *postgres.NotificationRepository
	logger        *zap.Logger
}

func NewNotificationService(notifications *postgres.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

func (s *NotificationService) List(ctx context.Context, actor policy.Actor, unreadOnly bool, limit, offset int) Result {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	notifications, total, err := s.notifications.List(ctx, actor.AccountID, unreadOnly, limit, offset)
	if err != nil {
		s.logger.Error("notification list failed", zap.Error(err))
		return Internal()
	}

	unread, err := s.notifications.UnreadCount(ctx, actor.AccountID)
	if err != nil {
		s.logger.Error("unread count failed", zap.Error(err))
		return Internal()
	}

	return OK(map[string]interface{}{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
		"limit":         limit,
		"offset":        offset,
	})
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor policy.Actor) Result {
	count, err := s.notifications.UnreadCount(ctx, actor.AccountID)
	if err != nil {
		s.logger.Error("unread count failed", zap.Error(err))
		return Internal()
	}
	return OK(map[string]interface{}{"unread": count})
}

func (s *NotificationService) MarkRead(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("thông báo không tồn tại")
		}
		s.logger.Error("notification get failed", zap.Error(err))
		return Internal()
	}
	if n.RecipientID != actor.AccountID {
		return Forbidden("không thể thao tác trên thông báo của người khác")
	}

	if err := s.notifications.MarkRead(ctx, id); err != nil {
		s.logger.Error("mark read failed", zap.Error(err))
		return Internal()
	}
	return OKMessage("đã đánh dấu là đã đọc")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor policy.Actor) Result {
	if err := s.notifications.MarkAllRead(ctx, actor.AccountID); err != nil {
		s.logger.Error("mark all read failed", zap.Error(err))
		return Internal()
	}
	return OKMessage("đã đánh dấu tất cả là đã đọc")
}

func (s *NotificationService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("thông báo không tồn tại")
		}
		s.logger.Error("notification get failed", zap.Error(err))
		return Internal()
	}
	if n.RecipientID != actor.AccountID {
		return Forbidden("không thể thao tác trên thông báo của người khác")
	}

	if err := s.notifications.Delete(ctx, id); err != nil {
		s.logger.Error("notification delete failed", zap.Error(err))
		return Internal()
	}
	return OKMessage("xóa thông báo thành công")
}
