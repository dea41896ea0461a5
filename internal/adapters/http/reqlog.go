package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
)

// RequestIDLogMiddleware puts a logger tagged with the Fiber request ID into
// the user context, so services log with the same request_id as the access log.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", rid)
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger))
		return c.Next()
	}
}
