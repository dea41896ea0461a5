// Package plotter assembles route maps: markers for every endpoint and a
// great-circle polyline for every route, over a named tile layer.
package plotter

import (
	"io"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// MarkerKind tells departure and arrival markers apart.
type MarkerKind string

const (
	Departure MarkerKind = "departure"
	Arrival   MarkerKind = "arrival"
)

// CircleMarker is a fixed-pixel-radius circle with a tooltip.
type CircleMarker struct {
	Kind      MarkerKind      `json:"kind"`
	Location  domain.GeoPoint `json:"location"`
	Radius    float64         `json:"radius"`
	Color     string          `json:"color"`
	Fill      bool            `json:"fill"`
	FillColor string          `json:"fill_color"`
	Tooltip   string          `json:"tooltip"`
}

// PolyLine is a colored line through an ordered list of points.
type PolyLine struct {
	Locations domain.CurvePath `json:"locations"`
	Color     string           `json:"color"`
	Weight    float64          `json:"weight"`
}

// Canvas is the drawing surface a renderer needs.
type Canvas interface {
	AddMarker(m CircleMarker)
	AddPolyline(l PolyLine)
	Export(w io.Writer) error
}

// Map is a rendered route map. It is built by Renderer and owned by the
// caller afterwards; nothing else holds a reference to it.
type Map struct {
	Center  domain.GeoPoint `json:"center"`
	Zoom    int             `json:"zoom"`
	Tiles   TileLayer       `json:"tiles"`
	Markers []CircleMarker  `json:"markers"`
	Lines   []PolyLine      `json:"lines"`
}

var _ Canvas = (*Map)(nil)

// NewMap returns an empty map centred on center.
func NewMap(center domain.GeoPoint, zoom int, tiles TileLayer) *Map {
	return &Map{
		Center:  center,
		Zoom:    zoom,
		Tiles:   tiles,
		Markers: []CircleMarker{},
		Lines:   []PolyLine{},
	}
}

func (m *Map) AddMarker(marker CircleMarker) {
	m.Markers = append(m.Markers, marker)
}

func (m *Map) AddPolyline(line PolyLine) {
	m.Lines = append(m.Lines, line)
}

// Bounds returns the box covering every marker and line sample.
func (m *Map) Bounds() (domain.Bounds, bool) {
	pts := make([]domain.GeoPoint, 0, len(m.Markers))
	for _, mk := range m.Markers {
		pts = append(pts, mk.Location)
	}
	for _, l := range m.Lines {
		pts = append(pts, l.Locations...)
	}
	return domain.BoundsOf(pts)
}
