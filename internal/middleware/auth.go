package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "user_id"

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's id for UserID.
func RequireAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return unauthorized(c)
		}

		claims, err := ParseToken(secret, strings.TrimSpace(token))
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(userIDKey, claims.Sub)
		return c.Next()
	}
}

// UserID returns the authenticated caller, or "" outside RequireAuth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"detail": "Not authenticated",
	})
}
