package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/Seikonolff/map-to-seventy/internal/adapters/blobstore"
	natsadapter "github.com/Seikonolff/map-to-seventy/internal/adapters/nats"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/nominatim"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/postgres"
	"github.com/Seikonolff/map-to-seventy/internal/adapters/valkey"
	"github.com/Seikonolff/map-to-seventy/internal/core/ports"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/config"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/telemetry"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
	"github.com/Seikonolff/map-to-seventy/internal/workflows"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("routemap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

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

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "routemap:"); err != nil {
		slog.Warn("valkey unavailable, geocoding uncached", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	var events ports.EventPublisher
	if nc, err := natsadapter.Connect(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer nc.Close()
		if pub, err := natsadapter.NewPublisher(nc); err != nil {
			slog.Warn("nats publisher unavailable", "error", err)
		} else {
			events = pub
		}
	}

	plots := usecases.NewPlotService(
		usecases.NewGeocodeService(
			nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout),
			cache, cfg.Geocoder.CacheTTL,
		),
		plotter.NewRenderer(plotter.Options{PointCount: cfg.Plotter.Points, Workers: cfg.Plotter.Workers}),
		postgres.NewMapRepo(db),
		store,
		events,
		cfg.Plotter.DefaultTile,
	)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// Public Nominatim allows about one request per second.
	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: 2,
	})
	w.RegisterWorkflow(workflows.PlotWorkflow)
	w.RegisterActivity(&workflows.PlotActivities{Plots: plots})

	slog.Info("plot worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
