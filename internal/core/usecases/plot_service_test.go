package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
	"github.com/Seikonolff/map-to-seventy/internal/plotter"
)

type plotFixture struct {
	svc    *usecases.PlotService
	geo    *mockGeocoder
	repo   *mockMapRepo
	store  *memStore
	events *mockPublisher
}

func newPlotFixture() *plotFixture {
	f := &plotFixture{
		geo:    newMockGeocoder(),
		repo:   newMockMapRepo(),
		store:  newMemStore(),
		events: &mockPublisher{},
	}
	geocode := usecases.NewGeocodeService(f.geo, newMemCache(), 0)
	renderer := plotter.NewRenderer(plotter.Options{PointCount: 16, Workers: 2})
	f.svc = usecases.NewPlotService(geocode, renderer, f.repo, f.store, f.events, "")
	return f
}

var sampleRows = []domain.RouteRow{
	{DepartureCity: "Paris", ArrivalCity: "New York", LineColor: "#ff0000"},
	{DepartureCity: "Tokyo", ArrivalCity: "Sydney", LineColor: "#00aa00"},
	{DepartureCity: "Atlantis", ArrivalCity: "Paris", LineColor: "#0000ff"},
}

func TestPlotService_Plot(t *testing.T) {
	f := newPlotFixture()

	res, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Rows: sampleRows, TileStyle: "cartodb positron"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := res.Record

	if rec.RouteCount != 2 || rec.MarkerCount != 4 || rec.LineCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 2/4/2", rec.RouteCount, rec.MarkerCount, rec.LineCount)
	}
	if rec.TileStyle != "Cartodb Positron" {
		t.Errorf("tile = %q", rec.TileStyle)
	}
	if len(rec.Dropped) != 1 || rec.Dropped[0].Index != 2 {
		t.Errorf("dropped = %+v", rec.Dropped)
	}
	if rec.ArtifactKey != "maps/"+rec.ID+".html" {
		t.Errorf("artifact key = %q", rec.ArtifactKey)
	}

	// Center is the mean of the departures only (Paris, Tokyo).
	wantLat := (48.8566 + 35.6762) / 2
	if diff := rec.Center.Lat - wantLat; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("center lat = %v, want %v", rec.Center.Lat, wantLat)
	}

	if len(rec.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(rec.Routes))
	}
	r0 := rec.Routes[0]
	if r0.Polyline == "" || len(r0.Curve) != 17 {
		t.Errorf("route 0 polyline %q, %d samples", r0.Polyline, len(r0.Curve))
	}
	if r0.DistanceKm < 5800 || r0.DistanceKm > 5880 {
		t.Errorf("Paris-New York distance = %.1f km", r0.DistanceKm)
	}

	if _, ok := f.repo.records[rec.ID]; !ok {
		t.Error("record not persisted")
	}
	doc := f.store.blobs[rec.ArtifactKey]
	if !strings.Contains(string(doc), "Departure: Tokyo") {
		t.Error("artifact missing tooltip")
	}
	if f.store.types[rec.ArtifactKey] != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", f.store.types[rec.ArtifactKey])
	}

	if len(f.events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.events.events))
	}
	evt := f.events.events[0]
	if evt.MapID != rec.ID || evt.RouteCount != 2 || evt.DroppedRows != 1 {
		t.Errorf("event = %+v", evt)
	}
}

func TestPlotService_Plot_FixedID(t *testing.T) {
	f := newPlotFixture()
	id := usecases.NewMapID()
	res, err := f.svc.Plot(context.Background(), usecases.PlotRequest{MapID: id, Rows: sampleRows[:1]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Record.ID != id {
		t.Errorf("id = %q, want %q", res.Record.ID, id)
	}
	if res.Record.TileStyle != "OpenStreetMap" {
		t.Errorf("default tile = %q", res.Record.TileStyle)
	}
}

func TestPlotService_Plot_NoRenderableRoutes(t *testing.T) {
	f := newPlotFixture()
	rows := []domain.RouteRow{{DepartureCity: "Atlantis", ArrivalCity: "El Dorado", LineColor: "#000000"}}

	_, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Rows: rows})
	if !errors.Is(err, domain.ErrNoRenderableRoutes) {
		t.Fatalf("expected ErrNoRenderableRoutes, got %v", err)
	}
	if len(f.repo.records) != 0 || len(f.store.blobs) != 0 || len(f.events.events) != 0 {
		t.Error("nothing should be stored for an empty map")
	}
}

func TestPlotService_Plot_NoRows(t *testing.T) {
	f := newPlotFixture()
	_, err := f.svc.Plot(context.Background(), usecases.PlotRequest{})
	if !errors.Is(err, domain.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if !usecases.IsClientError(err) {
		t.Error("ErrNoRows should be a client error")
	}
}

func TestPlotService_Plot_PreResolvedRoutes(t *testing.T) {
	f := newPlotFixture()
	routes := []domain.Route{{
		DepartureCity: "A", ArrivalCity: "B",
		Departure: domain.GeoPoint{Lat: 10, Lon: 20},
		Arrival:   domain.GeoPoint{Lat: -10, Lon: -160},
		LineColor: "purple",
	}}
	res, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Routes: routes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.geo.calls) != 0 {
		t.Errorf("geocoder should not be called, got %v", f.geo.calls)
	}
	if res.Record.RouteCount != 1 {
		t.Errorf("route count = %d", res.Record.RouteCount)
	}
}

func TestPlotService_Plot_InvalidRoute(t *testing.T) {
	f := newPlotFixture()
	routes := []domain.Route{{
		DepartureCity: "A", ArrivalCity: "B",
		Departure: domain.GeoPoint{Lat: 95, Lon: 0},
		Arrival:   domain.GeoPoint{Lat: 0, Lon: 0},
		LineColor: "#123456",
	}}
	_, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Routes: routes})
	if !errors.Is(err, domain.ErrInvalidRow) {
		t.Fatalf("expected ErrInvalidRow, got %v", err)
	}
}

func TestPlotService_Plot_PersistFailure(t *testing.T) {
	f := newPlotFixture()
	f.repo.createFn = func(ctx context.Context, rec *domain.MapRecord) error {
		return errors.New("connection refused")
	}
	_, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Rows: sampleRows})
	if err == nil || !strings.Contains(err.Error(), "persist map") {
		t.Fatalf("expected persist error, got %v", err)
	}
	if len(f.events.events) != 0 {
		t.Error("no event should be published when persisting fails")
	}
}

func TestPlotService_Plot_PublishFailureIsNotFatal(t *testing.T) {
	f := newPlotFixture()
	f.events.err = errors.New("nats down")
	if _, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Rows: sampleRows}); err != nil {
		t.Fatalf("publish failure should not fail the plot: %v", err)
	}
}

func TestPlotService_GetHTMLGeoJSON(t *testing.T) {
	f := newPlotFixture()
	res, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Rows: sampleRows})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := res.Record.ID

	rec, err := f.svc.Get(context.Background(), id)
	if err != nil || rec.ID != id {
		t.Fatalf("Get: %v, %+v", err, rec)
	}

	doc, err := f.svc.HTML(context.Background(), id)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.HasPrefix(string(doc), "<!DOCTYPE html>") {
		t.Error("HTML is not a document")
	}

	gj, err := f.svc.GeoJSON(context.Background(), id)
	if err != nil {
		t.Fatalf("GeoJSON: %v", err)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(gj, &fc); err != nil {
		t.Fatalf("decode geojson: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 6 {
		t.Errorf("type %q with %d features, want FeatureCollection with 6", fc.Type, len(fc.Features))
	}
}

func TestPlotService_Get_NotFound(t *testing.T) {
	f := newPlotFixture()
	for _, id := range []string{"not-a-uuid", usecases.NewMapID()} {
		if _, err := f.svc.Get(context.Background(), id); !errors.Is(err, domain.ErrMapNotFound) {
			t.Errorf("Get(%q): expected ErrMapNotFound, got %v", id, err)
		}
	}
}

func TestPlotService_List_ClampsLimit(t *testing.T) {
	f := newPlotFixture()
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Plot(context.Background(), usecases.PlotRequest{Rows: sampleRows[:1]}); err != nil {
			t.Fatalf("plot %d: %v", i, err)
		}
	}
	recs, total, err := f.svc.List(context.Background(), -5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(recs) != 3 {
		t.Errorf("total %d, page %d", total, len(recs))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-1, 20},
		{50, 50},
		{100, 100},
		{150, 100},
	}
	for _, tt := range tests {
		if _, _, err := f.svc.List(context.Background(), 0, tt.limit); err != nil {
			t.Fatalf("List(limit=%d): %v", tt.limit, err)
		}
		if f.repo.lastLimit != tt.want {
			t.Errorf("List(limit=%d) asked the repository for %d, want %d", tt.limit, f.repo.lastLimit, tt.want)
		}
	}
}

func TestCurveService_Compute(t *testing.T) {
	svc := usecases.NewCurveService(0)
	res, err := svc.Compute(domain.GeoPoint{Lat: 48.8566, Lon: 2.3522}, domain.GeoPoint{Lat: 40.7128, Lon: -74.0060}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Points != 100 || len(res.Path) != 101 {
		t.Errorf("points %d, path %d", res.Points, len(res.Path))
	}
	if res.Polyline == "" || res.DistanceKm < 5800 {
		t.Errorf("polyline %q, distance %.1f", res.Polyline, res.DistanceKm)
	}

	if _, err := svc.Compute(domain.GeoPoint{}, domain.GeoPoint{Lat: 1}, usecases.MaxCurvePoints+1); !errors.Is(err, domain.ErrInvalidPointCount) {
		t.Errorf("expected ErrInvalidPointCount, got %v", err)
	}
	if _, err := svc.Compute(domain.GeoPoint{}, domain.GeoPoint{Lat: 1}, -1); !errors.Is(err, domain.ErrInvalidPointCount) {
		t.Errorf("expected ErrInvalidPointCount for negative count, got %v", err)
	}
	if _, err := svc.Compute(domain.GeoPoint{Lat: 91}, domain.GeoPoint{}, 10); !errors.Is(err, domain.ErrMalformedCoordinate) {
		t.Errorf("expected ErrMalformedCoordinate, got %v", err)
	}
}
