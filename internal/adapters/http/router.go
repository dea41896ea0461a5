package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/Seikonolff/map-to-seventy/internal/pkg/metrics"
)

const (
	requestTimeout = 15 * time.Second
	// Plotting geocodes every distinct city, which is slow on public
	// Nominatim (about one lookup per second).
	plotTimeout = 2 * time.Minute
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		// Map pages may be embedded by the same origin.
		c.Set("X-Frame-Options", "SAMEORIGIN")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/tiles", ListTilesHandler())
	v1.Post("/curves", timeout.NewWithContext(CurveHandler(deps), requestTimeout))
	v1.Get("/maps", timeout.NewWithContext(ListMapsHandler(deps), requestTimeout))
	v1.Post("/maps", timeout.NewWithContext(CreateMapHandler(deps), plotTimeout))
	v1.Post("/maps/async", timeout.NewWithContext(CreateMapAsyncHandler(deps), requestTimeout))
	v1.Get("/maps/:id", timeout.NewWithContext(GetMapHandler(deps), requestTimeout))
	v1.Get("/maps/:id/html", timeout.NewWithContext(MapHTMLHandler(deps), requestTimeout))
	v1.Get("/maps/:id/geojson", timeout.NewWithContext(MapGeoJSONHandler(deps), requestTimeout))

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), plotTimeout))

	SetupDocs(app)

	if deps.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.Hub)))
	}
}
