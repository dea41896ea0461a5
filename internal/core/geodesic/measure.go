package geodesic

import (
	"github.com/golang/geo/s2"
	"github.com/twpayne/go-polyline"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/geospatial"
)

// LengthKm returns the summed great-circle length of the path in kilometres.
func LengthKm(path domain.CurvePath) float64 {
	if len(path) < 2 {
		return 0
	}
	var total float64
	prev := s2.LatLngFromDegrees(path[0].Lat, path[0].Lon)
	for _, p := range path[1:] {
		next := s2.LatLngFromDegrees(p.Lat, p.Lon)
		total += prev.Distance(next).Radians()
		prev = next
	}
	return total * geospatial.EarthRadiusKm
}

// DistanceKm returns the great-circle distance between two points in kilometres.
func DistanceKm(a, b domain.GeoPoint) float64 {
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return angle.Radians() * geospatial.EarthRadiusKm
}

// EncodePolyline encodes the path with the Google polyline algorithm
// (5 decimal places), as understood by most web map clients.
func EncodePolyline(path domain.CurvePath) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of EncodePolyline.
func DecodePolyline(encoded string) (domain.CurvePath, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	path := make(domain.CurvePath, 0, len(coords))
	for _, c := range coords {
		path = append(path, domain.GeoPoint{Lat: c[0], Lon: c[1]})
	}
	return path, nil
}
