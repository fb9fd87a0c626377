package server

import (
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page, err := parseFeedPage(c)
	if err != nil {
		return nil
	}

	notifications, err := s.notificationService.ListNotifications(c.Context(), service.ListNotificationsInput{
		UserID: userID(c),
		Before: page.Before,
		Limit:  page.Limit,
	})
	if err != nil {
		return respondError(c, err)
	}

	var last time.Time
	if n := len(notifications); n > 0 {
		last = notifications[n-1].CreatedAt
	}
	return c.JSON(pageEnvelope(notifications, len(notifications), page.Limit, last))
}
