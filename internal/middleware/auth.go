// Package middleware provides authentication, logging and rate-limiting middleware.
package middleware

import (
	"context"
	"strings"

	"github.com/toni-krstic/pyjama-portal/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces authentication for protected routes. The acting
// identity is always the verified token subject; handlers must never trust a
// client-supplied author id.
func AuthRequired(c *fiber.Ctx) error {
	userID, ok := parseBearerToken(c.Get("Authorization"))
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or missing authorization token",
		})
	}

	setUserIdentity(c, userID)
	return c.Next()
}

// OptionalAuth resolves the acting identity when a valid token is present but
// lets unauthenticated requests through. Read-only feed and profile routes
// use it.
func OptionalAuth(c *fiber.Ctx) error {
	if userID, ok := parseBearerToken(c.Get("Authorization")); ok {
		setUserIdentity(c, userID)
	}
	return c.Next()
}

// setUserIdentity records the resolved identity in fiber locals for handlers
// and in the user context so log lines written after this point carry the
// user id. Auth runs per route group, after ContextMiddleware has already
// copied locals, so the context value has to be set here.
func setUserIdentity(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// parseBearerToken validates a "Bearer <token>" header and returns the
// subject claim.
func parseBearerToken(authHeader string) (string, bool) {
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}

	return sub, true
}
