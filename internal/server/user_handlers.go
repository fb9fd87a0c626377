package server

import (
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfileByID(c.Context(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me. Completing this form also
// finishes onboarding.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Bio          string `json:"bio"`
		ProfileImage string `json:"profile_image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:       userID(c),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}

// GetProfile handles GET /api/users/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfileByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetProfileByUsername handles GET /api/users/username/:username
func (s *Server) GetProfileByUsername(c *fiber.Ctx) error {
	username, err := paramID(c, "username")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.Context(), username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page, err := parseFeedPage(c)
	if err != nil {
		return nil
	}

	users, err := s.userService.SearchUsers(c.Context(), service.SearchUsersInput{
		Query:  c.Query("q"),
		Before: page.Before,
		Limit:  page.Limit,
	})
	if err != nil {
		return respondError(c, err)
	}

	var last time.Time
	if n := len(users); n > 0 {
		last = users[n-1].CreatedAt
	}
	return c.JSON(pageEnvelope(users, len(users), page.Limit, last))
}

// ToggleFollow handles POST /api/users/:id/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.userService.ToggleFollow(c.Context(), userID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"following": following})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.ListFollowers(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.ListFollowing(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
