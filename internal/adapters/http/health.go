package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler checks the database, NATS, cache and artifact storage.
// Database and storage are required; NATS and cache are optional.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	type check struct {
		name     string
		pinger   Pinger
		required bool
	}
	checks := []check{
		{"database", deps.DB, true},
		{"storage", deps.Storage, true},
		{"nats", deps.NATS, false},
		{"cache", deps.Cache, false},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		allOK := true
		for _, ck := range checks {
			switch {
			case ck.pinger == nil:
				results[ck.name] = "not configured"
				if ck.required {
					allOK = false
				}
			case ck.pinger.Ping(ctx) != nil:
				results[ck.name] = "error"
				if ck.required {
					allOK = false
				}
			default:
				results[ck.name] = "ok"
			}
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	}
}
