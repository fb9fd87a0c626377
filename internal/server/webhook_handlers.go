package server

import (
	"github.com/toni-krstic/pyjama-portal/internal/middleware"
	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	webhookUserCreated = "user.created"
	webhookUserUpdated = "user.updated"
	webhookUserDeleted = "user.deleted"
)

// identityWebhookEvent is the payload posted by the identity provider when a
// user account changes.
type identityWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		ImageURL  string `json:"image_url"`
	} `json:"data"`
}

// IdentityWebhook handles POST /api/webhook/identity. It keeps the local
// user table in sync with the external identity provider.
func (s *Server) IdentityWebhook(c *fiber.Ctx) error {
	var event identityWebhookEvent
	if err := c.BodyParser(&event); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid webhook payload"))
	}

	ctx := c.Context()
	switch event.Type {
	case webhookUserCreated, webhookUserUpdated:
		user, err := s.userService.SyncUser(ctx, service.SyncUserInput{
			ID:           event.Data.ID,
			Username:     event.Data.Username,
			FirstName:    event.Data.FirstName,
			LastName:     event.Data.LastName,
			ProfileImage: event.Data.ImageURL,
		})
		if err != nil {
			return respondError(c, err)
		}
		middleware.Logger.InfoContext(c.UserContext(), "identity webhook processed",
			"type", event.Type, "user_id", user.ID)
		return c.JSON(user)

	case webhookUserDeleted:
		if err := s.userService.RemoveUser(ctx, event.Data.ID); err != nil {
			return respondError(c, err)
		}
		middleware.Logger.InfoContext(c.UserContext(), "identity webhook processed",
			"type", event.Type, "user_id", event.Data.ID)
		return c.SendStatus(fiber.StatusNoContent)

	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown webhook event type"))
	}
}
