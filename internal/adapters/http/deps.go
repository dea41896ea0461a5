package http

import (
	"context"

	"github.com/Seikonolff/map-to-seventy/internal/core/ports"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Plots     *usecases.PlotService
	Curves    *usecases.CurveService
	Scheduler ports.PlotScheduler
	Hub       *Hub
	DB        Pinger
	NATS      Pinger
	Cache     Pinger
	Storage   Pinger
	Version   string
}
