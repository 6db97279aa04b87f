package wspush

import (
	"chato-dashboard/internal/platform/bearer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

var requireToken = bearer.Require()

// RequireUpgrade admits only websocket upgrades that carry a bearer token,
// either as a header or as ?token=. The token reaches the connection
// through its locals.
func RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return requireToken(c)
}
