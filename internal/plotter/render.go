package plotter

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/geodesic"
)

// Marker and line styling.
const (
	DefaultZoom     = 4
	MarkerRadius    = 5.0
	MarkerStroke    = "black"
	DepartureFill   = "blue"
	ArrivalFill     = "red"
	LineWeight      = 2.5
	departurePrefix = "Departure: "
	arrivalPrefix   = "Arrival: "
)

// Options configures a Renderer. Zero values fall back to defaults.
type Options struct {
	PointCount int
	Workers    int
	Zoom       int
}

// Renderer turns resolved routes into a Map. It keeps no state between
// calls and is safe for concurrent use.
type Renderer struct {
	pointCount int
	workers    int
	zoom       int
}

func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		pointCount: opts.PointCount,
		workers:    opts.Workers,
		zoom:       opts.Zoom,
	}
	if r.pointCount <= 0 {
		r.pointCount = geodesic.DefaultPointCount
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.zoom <= 0 {
		r.zoom = DefaultZoom
	}
	return r
}

// PointCount returns the number of interpolation segments per curve.
func (r *Renderer) PointCount() int { return r.pointCount }

// Render builds a map with two markers and one great-circle polyline per
// route, in input order. An empty route list yields a nil map and no error.
// The map is centred on the mean departure point.
func (r *Renderer) Render(ctx context.Context, routes []domain.Route, tileStyle string) (*Map, error) {
	if len(routes) == 0 {
		return nil, nil
	}

	for i, rt := range routes {
		if !rt.Departure.Valid() {
			return nil, fmt.Errorf("route %d (%s): departure %s: %w",
				i, rt.DepartureCity, rt.Departure, domain.ErrMalformedCoordinate)
		}
		if !rt.Arrival.Valid() {
			return nil, fmt.Errorf("route %d (%s): arrival %s: %w",
				i, rt.ArrivalCity, rt.Arrival, domain.ErrMalformedCoordinate)
		}
	}

	curves, err := r.curves(ctx, routes)
	if err != nil {
		return nil, err
	}

	tiles, _ := ResolveTile(tileStyle)
	m := NewMap(departureCenter(routes), r.zoom, tiles)
	for i, rt := range routes {
		m.AddMarker(CircleMarker{
			Kind:      Departure,
			Location:  rt.Departure,
			Radius:    MarkerRadius,
			Color:     MarkerStroke,
			Fill:      true,
			FillColor: DepartureFill,
			Tooltip:   departurePrefix + rt.DepartureCity,
		})
		m.AddMarker(CircleMarker{
			Kind:      Arrival,
			Location:  rt.Arrival,
			Radius:    MarkerRadius,
			Color:     MarkerStroke,
			Fill:      true,
			FillColor: ArrivalFill,
			Tooltip:   arrivalPrefix + rt.ArrivalCity,
		})
		m.AddPolyline(PolyLine{
			Locations: curves[i],
			Color:     rt.LineColor,
			Weight:    LineWeight,
		})
	}
	return m, nil
}

// curves computes one curve per route on at most r.workers goroutines.
// Results land in a pre-sized slice so input order is kept.
func (r *Renderer) curves(ctx context.Context, routes []domain.Route) ([]domain.CurvePath, error) {
	out := make([]domain.CurvePath, len(routes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, rt := range routes {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := geodesic.Curve(rt.Departure, rt.Arrival, r.pointCount)
			if err != nil {
				return fmt.Errorf("route %d (%s -> %s): %w", i, rt.DepartureCity, rt.ArrivalCity, err)
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func departureCenter(routes []domain.Route) domain.GeoPoint {
	var lat, lon float64
	for _, rt := range routes {
		lat += rt.Departure.Lat
		lon += rt.Departure.Lon
	}
	n := float64(len(routes))
	return domain.GeoPoint{Lat: lat / n, Lon: lon / n}
}
