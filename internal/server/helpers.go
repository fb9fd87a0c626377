// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"errors"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageLimit = 5
	maxPageLimit     = 50
)

// parseFeedPage extracts the cursor and limit query parameters. The cursor
// is the created_at of the last item the caller has seen, in RFC3339Nano.
// On a malformed cursor it writes a 400 response and returns errResponseWritten.
func parseFeedPage(c *fiber.Ctx) (service.FeedInput, error) {
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	in := service.FeedInput{Limit: limit}
	if cursor := c.Query("cursor"); cursor != "" {
		ts, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid cursor"))
			return in, errResponseWritten
		}
		in.Before = &ts
	}
	return in, nil
}

// pageEnvelope wraps a result page as {data, next_cursor}. next_cursor is
// null on a short page, which signals end of stream to the client.
func pageEnvelope(data any, count, limit int, last time.Time) fiber.Map {
	envelope := fiber.Map{
		"data":        data,
		"next_cursor": nil,
	}
	if count == limit && count > 0 {
		envelope["next_cursor"] = last.UTC().Format(time.RFC3339Nano)
	}
	return envelope
}

// userID returns the authenticated user id placed in locals by AuthRequired.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// paramID extracts a non-empty route parameter. On failure it writes a 400
// response and returns errResponseWritten.
func paramID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if id == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name))
		return "", errResponseWritten
	}
	return id, nil
}

// respondError maps an application error to its HTTP status and writes the
// standard error payload.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
