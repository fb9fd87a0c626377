package repository

import (
	"context"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines read access to a user's notification feed.
// Writes happen inside the post, comment and follow transactions so a
// notification never exists without the interaction that produced it.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string, before *time.Time, limit int) ([]*models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, before *time.Time, limit int) ([]*models.Notification, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var notifications []*models.Notification
	if err := q.Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}
