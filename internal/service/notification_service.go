package service

import (
	"context"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/repository"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

type ListNotificationsInput struct {
	UserID string
	Before *time.Time
	Limit  int
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) ListNotifications(ctx context.Context, in ListNotificationsInput) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, in.UserID, in.Before, in.Limit)
}
