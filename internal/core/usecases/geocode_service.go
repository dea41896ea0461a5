package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/ports"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/metrics"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/telemetry"
)

// Reasons recorded on dropped rows.
const (
	ReasonInvalidRow        = "invalid_row"
	ReasonDepartureNotFound = "departure_not_found"
	ReasonArrivalNotFound   = "arrival_not_found"
)

// GeocodeService resolves city names to coordinates through a cache.
type GeocodeService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
	ttl      time.Duration
}

// NewGeocodeService creates a GeocodeService. cache may be nil.
func NewGeocodeService(geocoder ports.Geocoder, cache ports.CacheService, ttl time.Duration) *GeocodeService {
	return &GeocodeService{geocoder: geocoder, cache: cache, ttl: ttl}
}

// NormalizeCity lower-cases a name and collapses its whitespace.
func NormalizeCity(city string) string {
	return strings.Join(strings.Fields(strings.ToLower(city)), " ")
}

func geocodeCacheKey(city string) string {
	return "geocode:" + NormalizeCity(city)
}

// Geocode resolves one city, consulting the cache first.
func (s *GeocodeService) Geocode(ctx context.Context, city string) (domain.GeoPoint, error) {
	key := geocodeCacheKey(city)
	if key == "geocode:" {
		return domain.GeoPoint{}, fmt.Errorf("%w: empty city", domain.ErrInvalidRow)
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var pt domain.GeoPoint
			if err := json.Unmarshal(data, &pt); err == nil && pt.Valid() {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return pt, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	start := time.Now()
	pt, err := s.geocoder.Geocode(ctx, city)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, domain.ErrLocationNotFound):
		metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		return domain.GeoPoint{}, err
	case err != nil:
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeoPoint{}, err
	}
	metrics.GeocodeRequests.WithLabelValues("ok").Inc()

	if !pt.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("geocoder returned %s for %q: %w", pt, city, domain.ErrMalformedCoordinate)
	}

	if s.cache != nil {
		if data, err := json.Marshal(pt); err == nil {
			_ = s.cache.Set(ctx, key, data, s.ttl)
		}
	}
	return pt, nil
}

// ResolveRoutes geocodes every row and returns the routes that could be
// built, in input order, together with the rows that were dropped. Rows
// failing validation or naming an unknown place are dropped; any other
// geocoder failure aborts the whole batch so the caller may retry.
func (s *GeocodeService) ResolveRoutes(ctx context.Context, rows []domain.RouteRow) ([]domain.Route, []domain.DroppedRow, error) {
	if len(rows) == 0 {
		return nil, nil, domain.ErrNoRows
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanGeocode)
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)))

	log := logging.FromContext(ctx)
	resolved := make(map[string]domain.GeoPoint)
	missing := make(map[string]bool)

	lookup := func(city string) (domain.GeoPoint, bool, error) {
		key := NormalizeCity(city)
		if pt, ok := resolved[key]; ok {
			return pt, true, nil
		}
		if missing[key] {
			return domain.GeoPoint{}, false, nil
		}
		pt, err := s.Geocode(ctx, city)
		switch {
		case errors.Is(err, domain.ErrLocationNotFound), errors.Is(err, domain.ErrMalformedCoordinate):
			missing[key] = true
			return domain.GeoPoint{}, false, nil
		case err != nil:
			return domain.GeoPoint{}, false, fmt.Errorf("geocode %q: %w", city, err)
		}
		resolved[key] = pt
		return pt, true, nil
	}

	routes := make([]domain.Route, 0, len(rows))
	var dropped []domain.DroppedRow
	drop := func(i int, row domain.RouteRow, reason string) {
		dropped = append(dropped, domain.DroppedRow{Index: i, Row: row, Reason: reason})
		metrics.RowsDropped.WithLabelValues(reason).Inc()
		log.Info("row dropped", "index", i, "reason", reason,
			"departure", row.DepartureCity, "arrival", row.ArrivalCity)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := ValidateRow(row); err != nil {
			drop(i, row, ReasonInvalidRow)
			continue
		}

		dep, ok, err := lookup(row.DepartureCity)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			drop(i, row, ReasonDepartureNotFound)
			continue
		}
		arr, ok, err := lookup(row.ArrivalCity)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			drop(i, row, ReasonArrivalNotFound)
			continue
		}

		routes = append(routes, domain.Route{
			DepartureCity: row.DepartureCity,
			ArrivalCity:   row.ArrivalCity,
			Departure:     dep,
			Arrival:       arr,
			LineColor:     row.LineColor,
		})
	}

	span.SetAttributes(attribute.Int("routes", len(routes)), attribute.Int("dropped", len(dropped)))
	return routes, dropped, nil
}
