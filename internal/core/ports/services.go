package ports

import (
	"context"
	"time"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// Geocoder resolves a free-form place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (domain.GeoPoint, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMapRendered(ctx context.Context, evt *domain.MapRendered) error
}

// EventSubscriber delivers domain events from a message broker.
type EventSubscriber interface {
	SubscribeMapRendered(ctx context.Context, handler func(ctx context.Context, evt *domain.MapRendered) error) error
}

// CacheService provides read-through caching. Get returns
// domain.ErrCacheMiss for absent keys.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PlotScheduler runs plot jobs asynchronously and returns a handle to the run.
type PlotScheduler interface {
	SchedulePlot(ctx context.Context, job domain.PlotJob) (runID string, err error)
}
