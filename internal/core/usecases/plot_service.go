package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/geodesic"
	"github.com/Seikonolff/map-to-seventy/internal/core/ports"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/logging"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/metrics"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/telemetry"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	maxListLimit    = 100
)

// RouteResolver turns uploaded rows into routes. GeocodeService is the
// production implementation.
type RouteResolver interface {
	ResolveRoutes(ctx context.Context, rows []domain.RouteRow) ([]domain.Route, []domain.DroppedRow, error)
}

// PlotRequest is one plot invocation. Routes, when set, are used as-is and
// Rows is ignored.
type PlotRequest struct {
	MapID     string
	Rows      []domain.RouteRow
	Routes    []domain.Route
	TileStyle string
}

// PlotResult is a stored map together with its artifact.
type PlotResult struct {
	Record *domain.MapRecord
	Map    *plotter.Map
}

// PlotService runs the plot pipeline and serves stored maps.
type PlotService struct {
	resolver    RouteResolver
	renderer    *plotter.Renderer
	maps        ports.MapRepository
	artifacts   ports.ArtifactStore
	events      ports.EventPublisher
	defaultTile string
	now         func() time.Time
}

// NewPlotService creates a PlotService. events may be nil.
func NewPlotService(
	resolver RouteResolver,
	renderer *plotter.Renderer,
	maps ports.MapRepository,
	artifacts ports.ArtifactStore,
	events ports.EventPublisher,
	defaultTile string,
) *PlotService {
	if defaultTile == "" {
		defaultTile = plotter.DefaultTileStyle
	}
	return &PlotService{
		resolver:    resolver,
		renderer:    renderer,
		maps:        maps,
		artifacts:   artifacts,
		events:      events,
		defaultTile: defaultTile,
		now:         time.Now,
	}
}

// NewMapID returns a fresh map identifier.
func NewMapID() string {
	return uuid.NewString()
}

// Plot validates and geocodes the rows, renders the map, stores the HTML
// artifact, persists the record and announces it.
func (s *PlotService) Plot(ctx context.Context, req PlotRequest) (*PlotResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanPlot)
	defer span.End()

	routes, dropped := req.Routes, []domain.DroppedRow(nil)
	if len(routes) == 0 {
		start := time.Now()
		var err error
		routes, dropped, err = s.resolver.ResolveRoutes(ctx, req.Rows)
		metrics.ObserveStage("geocode", start)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}
	return s.RenderAndStore(ctx, req.MapID, req.TileStyle, routes, dropped)
}

// Resolve exposes the geocoding stage on its own.
func (s *PlotService) Resolve(ctx context.Context, rows []domain.RouteRow) ([]domain.Route, []domain.DroppedRow, error) {
	return s.resolver.ResolveRoutes(ctx, rows)
}

// RenderAndStore renders already-resolved routes and stores the result
// under id. An empty id gets a fresh one.
func (s *PlotService) RenderAndStore(ctx context.Context, id, tileStyle string, routes []domain.Route, dropped []domain.DroppedRow) (*PlotResult, error) {
	if id == "" {
		id = NewMapID()
	}
	if tileStyle == "" {
		tileStyle = s.defaultTile
	}
	for i, rt := range routes {
		if err := ValidateRoute(rt); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRender)
	span.SetAttributes(attribute.String("map.id", id), attribute.Int("routes", len(routes)))
	start := time.Now()
	m, err := s.renderer.Render(ctx, routes, tileStyle)
	metrics.ObserveStage("render", start)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNoRenderableRoutes
	}

	start = time.Now()
	doc, err := m.ExportHTML()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	key := ArtifactKey(id)
	if err := s.artifacts.Put(ctx, key, doc, htmlContentType); err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}
	metrics.ObserveStage("store", start)

	rec := &domain.MapRecord{
		ID:          id,
		TileStyle:   m.Tiles.Name,
		Center:      m.Center,
		Zoom:        m.Zoom,
		RouteCount:  len(routes),
		MarkerCount: len(m.Markers),
		LineCount:   len(m.Lines),
		Dropped:     dropped,
		ArtifactKey: key,
		Routes:      mapRoutes(routes, m),
		CreatedAt:   s.now().UTC(),
	}

	start = time.Now()
	if err := s.maps.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist map: %w", err)
	}
	metrics.ObserveStage("persist", start)
	metrics.MapsRendered.WithLabelValues(rec.TileStyle).Inc()
	metrics.RoutesPlotted.Add(float64(len(routes)))

	log := logging.FromContext(ctx)
	if s.events != nil {
		evt := &domain.MapRendered{
			MapID:       rec.ID,
			TileStyle:   rec.TileStyle,
			RouteCount:  rec.RouteCount,
			DroppedRows: len(dropped),
			RenderedAt:  rec.CreatedAt,
		}
		if err := s.events.PublishMapRendered(ctx, evt); err != nil {
			log.Warn("publish map rendered", "map_id", rec.ID, "error", err)
		}
	}

	log.Info("map rendered", "map_id", rec.ID, "tile", rec.TileStyle,
		"routes", rec.RouteCount, "dropped", len(dropped))
	return &PlotResult{Record: rec, Map: m}, nil
}

// ArtifactKey is the blob key of a map's HTML document.
func ArtifactKey(id string) string {
	return "maps/" + id + ".html"
}

func mapRoutes(routes []domain.Route, m *plotter.Map) []domain.MapRoute {
	out := make([]domain.MapRoute, len(routes))
	for i, rt := range routes {
		curve := m.Lines[i].Locations
		out[i] = domain.MapRoute{
			Seq:           i,
			DepartureCity: rt.DepartureCity,
			ArrivalCity:   rt.ArrivalCity,
			Departure:     rt.Departure,
			Arrival:       rt.Arrival,
			LineColor:     rt.LineColor,
			Curve:         curve,
			Polyline:      geodesic.EncodePolyline(curve),
			DistanceKm:    geodesic.LengthKm(curve),
		}
	}
	return out
}

// Get returns a stored map record with its routes.
func (s *PlotService) Get(ctx context.Context, id string) (*domain.MapRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrMapNotFound
	}
	return s.maps.GetByID(ctx, id)
}

// HTML returns the stored HTML document of a map.
func (s *PlotService) HTML(ctx context.Context, id string) ([]byte, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.artifacts.Get(ctx, rec.ArtifactKey)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", rec.ArtifactKey, err)
	}
	return doc, nil
}

// Artifact reads a stored map back into its drawable form.
func (s *PlotService) Artifact(ctx context.Context, id string) (*plotter.Map, error) {
	doc, err := s.HTML(ctx, id)
	if err != nil {
		return nil, err
	}
	return plotter.ParseHTML(doc)
}

// GeoJSON returns a stored map as a GeoJSON FeatureCollection.
func (s *PlotService) GeoJSON(ctx context.Context, id string) ([]byte, error) {
	m, err := s.Artifact(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.ExportGeoJSON()
}

// List returns stored map records, newest first.
func (s *PlotService) List(ctx context.Context, offset, limit int) ([]domain.MapRecord, int, error) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = 20
	case limit > maxListLimit:
		limit = maxListLimit
	}
	recs, total, err := s.maps.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// IsClientError reports whether err was caused by the request rather than
// the service.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrNoRows) ||
		errors.Is(err, domain.ErrInvalidRow) ||
		errors.Is(err, domain.ErrNoRenderableRoutes) ||
		errors.Is(err, domain.ErrMalformedCoordinate) ||
		errors.Is(err, domain.ErrInvalidPointCount)
}
