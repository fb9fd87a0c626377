package server

import (
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: userID(c),
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := parseFeedPage(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListFeed(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(postPage(posts, page.Limit))
}

// GetFollowingFeed handles GET /api/posts/following
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	page, err := parseFeedPage(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListFollowingFeed(c.Context(), userID(c), page)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(postPage(posts, page.Limit))
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := paramID(c, "id")
	if err != nil {
		return nil
	}
	page, err := parseFeedPage(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListUserPosts(c.Context(), authorID, page)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(postPage(posts, page.Limit))
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// GetPostThread handles GET /api/posts/:id/thread
func (s *Server) GetPostThread(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetThread(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		AuthorID: userID(c),
		PostID:   id,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		AuthorID: userID(c),
		PostID:   id,
	}); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLikePost handles POST /api/posts/:id/like
func (s *Server) ToggleLikePost(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleLike(c.Context(), userID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content   string  `json:"content"`
		CommentID *string `json:"comment_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	repost, err := s.postService.SharePost(c.Context(), service.SharePostInput{
		AuthorID:  userID(c),
		PostID:    id,
		Content:   req.Content,
		CommentID: req.CommentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(repost)
}

// GetLinkPreview handles GET /api/linkpreview?url=...
// The link_previews flag is a kill switch for when an upstream misbehaves;
// clients fall back to rendering the bare URL.
func (s *Server) GetLinkPreview(c *fiber.Ctx) error {
	if !s.flags.Enabled("link_previews", c.IP(), true) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Link previews are temporarily disabled",
		})
	}

	preview, err := s.linkPreviewService.GetPreview(c.Context(), c.Query("url"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(preview)
}

// postPage builds the {data, next_cursor} envelope for a page of posts.
func postPage(posts []*models.Post, limit int) fiber.Map {
	var last time.Time
	if n := len(posts); n > 0 {
		last = posts[n-1].CreatedAt
	}
	return pageEnvelope(posts, len(posts), limit, last)
}
