package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/Seikonolff/map-to-seventy/internal/adapters/blobstore"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/http"
	natsadapter "github.com/Seikonolff/map-to-seventy/internal/adapters/nats"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/nominatim"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/postgres"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/valkey"
	"github.com/Seikonolff/map-to-seventy/internal/core/ports"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/config"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/metrics"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/telemetry"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
	"github.com/Seikonolff/map-to-seventy/internal/workflows"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("routemap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store, err := blobstore.Open(ctx, cfg.Storage.BucketURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	deps := &http.Dependencies{
		DB:      db,
		Storage: store,
		Hub:     http.NewHub(),
		Version: version,
	}

	// Optional: geocode cache
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "routemap:"); err != nil {
		slog.Warn("valkey unavailable, geocoding uncached", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// Optional: NATS events and the WebSocket relay
	var events ports.EventPublisher
	if nc, err := natsadapter.Connect(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer nc.Close()
		pub, err := natsadapter.NewPublisher(nc)
		if err != nil {
			slog.Warn("nats publisher unavailable", "error", err)
		} else {
			events = pub
			deps.NATS = pub
		}
		sub, err := natsadapter.NewSubscriber(nc)
		if err == nil {
			err = sub.SubscribeMapRendered(ctx, deps.Hub.HandleMapRendered)
		}
		if err != nil {
			slog.Warn("ws relay disabled", "error", err)
		} else {
			defer sub.Close()
		}
	}

	// Optional: background plotting
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable, async plotting disabled", "error", err)
		} else {
			defer tc.Close()
			deps.Scheduler = workflows.NewScheduler(tc, cfg.Temporal.TaskQueue)
		}
	}

	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	renderer := plotter.NewRenderer(plotter.Options{
		PointCount: cfg.Plotter.Points,
		Workers:    cfg.Plotter.Workers,
	})
	deps.Plots = usecases.NewPlotService(
		usecases.NewGeocodeService(geocoder, cache, cfg.Geocoder.CacheTTL),
		renderer,
		postgres.NewMapRepo(db),
		store,
		events,
		cfg.Plotter.DefaultTile,
	)
	deps.Curves = usecases.NewCurveService(cfg.Plotter.Points)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "Route Map API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
