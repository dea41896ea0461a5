package usecases

import (
	"fmt"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/geodesic"
)

// MaxCurvePoints bounds the interpolation count accepted from clients.
const MaxCurvePoints = 10000

// CurveResult is a sampled great-circle arc with derived measures.
type CurveResult struct {
	Origin      domain.GeoPoint  `json:"origin"`
	Destination domain.GeoPoint  `json:"destination"`
	Points      int              `json:"points"`
	Path        domain.CurvePath `json:"path"`
	Polyline    string           `json:"polyline"`
	DistanceKm  float64          `json:"distance_km"`
}

// CurveService computes stand-alone curves.
type CurveService struct {
	defaultPoints int
}

func NewCurveService(defaultPoints int) *CurveService {
	if defaultPoints <= 0 {
		defaultPoints = geodesic.DefaultPointCount
	}
	return &CurveService{defaultPoints: defaultPoints}
}

// Compute samples the arc between origin and destination. points == 0
// uses the service default.
func (s *CurveService) Compute(origin, destination domain.GeoPoint, points int) (*CurveResult, error) {
	if points == 0 {
		points = s.defaultPoints
	}
	if points > MaxCurvePoints {
		return nil, fmt.Errorf("%w: at most %d", domain.ErrInvalidPointCount, MaxCurvePoints)
	}
	path, err := geodesic.Curve(origin, destination, points)
	if err != nil {
		return nil, err
	}
	return &CurveResult{
		Origin:      origin,
		Destination: destination,
		Points:      points,
		Path:        path,
		Polyline:    geodesic.EncodePolyline(path),
		DistanceKm:  geodesic.LengthKm(path),
	}, nil
}
