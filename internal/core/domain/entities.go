package domain

import (
	"time"
)

// RouteRow is one uploaded row before geocoding.
type RouteRow struct {
	DepartureCity string `json:"departure_city" validate:"required,max=200"`
	ArrivalCity   string `json:"arrival_city" validate:"required,max=200"`
	LineColor     string `json:"line_color" validate:"required,linecolor"`
}

// Route is a row with both endpoints resolved.
type Route struct {
	DepartureCity string   `json:"departure_city" validate:"required"`
	ArrivalCity   string   `json:"arrival_city" validate:"required"`
	Departure     GeoPoint `json:"departure"`
	Arrival       GeoPoint `json:"arrival"`
	LineColor     string   `json:"line_color" validate:"required,linecolor"`
}

// DroppedRow records an input row that could not be turned into a Route.
type DroppedRow struct {
	Index  int      `json:"index"`
	Row    RouteRow `json:"row"`
	Reason string   `json:"reason"`
}

// MapRecord is the persisted summary of one rendered map.
type MapRecord struct {
	ID          string       `json:"id"`
	TileStyle   string       `json:"tile_style"`
	Center      GeoPoint     `json:"center"`
	Zoom        int          `json:"zoom"`
	RouteCount  int          `json:"route_count"`
	MarkerCount int          `json:"marker_count"`
	LineCount   int          `json:"line_count"`
	Dropped     []DroppedRow `json:"dropped,omitempty"`
	ArtifactKey string       `json:"artifact_key"`
	Routes      []MapRoute   `json:"routes,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// MapRoute is a rendered route as stored alongside its map.
type MapRoute struct {
	Seq           int       `json:"seq"`
	DepartureCity string    `json:"departure_city"`
	ArrivalCity   string    `json:"arrival_city"`
	Departure     GeoPoint  `json:"departure"`
	Arrival       GeoPoint  `json:"arrival"`
	LineColor     string    `json:"line_color"`
	Curve         CurvePath `json:"-"`
	Polyline      string    `json:"polyline"`
	DistanceKm    float64   `json:"distance_km"`
}

// MapRendered is published once a map has been rendered and stored.
type MapRendered struct {
	MapID       string    `json:"map_id"`
	TileStyle   string    `json:"tile_style"`
	RouteCount  int       `json:"route_count"`
	DroppedRows int       `json:"dropped_rows"`
	RenderedAt  time.Time `json:"rendered_at"`
}

// PlotJob is a plot request handed to the background workflow.
type PlotJob struct {
	MapID     string     `json:"map_id"`
	Rows      []RouteRow `json:"rows"`
	TileStyle string     `json:"tile_style"`
}
