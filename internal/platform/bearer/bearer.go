// Package bearer extracts the owner's backend token from BFF requests.
package bearer

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalsKey holds the token in fiber (and websocket) locals.
const LocalsKey = "bearer_token"

// FromRequest reads "Authorization: Bearer <t>", falling back to the token
// query parameter that browsers use for WebSocket upgrades.
func FromRequest(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}

// Require rejects requests without a token and stores it for Token.
func Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t := FromRequest(c)
		if t == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "bearer token required",
			})
		}
		c.Locals(LocalsKey, t)
		return c.Next()
	}
}

// Token returns the token stored by Require, or reads it from the request.
func Token(c *fiber.Ctx) string {
	if t, ok := c.Locals(LocalsKey).(string); ok {
		return t
	}
	return FromRequest(c)
}
