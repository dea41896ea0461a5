package domain

import (
	"fmt"
	"math"
)

// GeoPoint represents a geographic coordinate (WGS 84) in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// Valid reports whether the point is finite and inside the lat/lon ranges.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) ||
		math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// CurvePath is an ordered sequence of samples along a great-circle arc,
// from origin to destination.
type CurvePath []GeoPoint

// Finite reports whether every sample has finite coordinates.
func (c CurvePath) Finite() bool {
	for _, p := range c {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) ||
			math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
			return false
		}
	}
	return true
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Extend grows the box to include p. A zero Bounds is treated as empty
// only by BoundsOf; callers extending by hand should seed it with a point.
func (b *Bounds) Extend(p GeoPoint) {
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MinLon = math.Min(b.MinLon, p.Lon)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
	b.MaxLon = math.Max(b.MaxLon, p.Lon)
}

// BoundsOf returns the bounding box of pts. It returns false for an empty slice.
func BoundsOf(pts []GeoPoint) (Bounds, bool) {
	if len(pts) == 0 {
		return Bounds{}, false
	}
	b := Bounds{MinLat: pts[0].Lat, MinLon: pts[0].Lon, MaxLat: pts[0].Lat, MaxLon: pts[0].Lon}
	for _, p := range pts[1:] {
		b.Extend(p)
	}
	return b, true
}
