package domain

import "errors"

var (
	// ErrMalformedCoordinate is returned for non-finite or out-of-range points.
	ErrMalformedCoordinate = errors.New("malformed coordinate")
	// ErrNonFiniteCurve is returned when curve interpolation produced NaN or Inf.
	ErrNonFiniteCurve = errors.New("curve contains non-finite coordinates")
	// ErrInvalidPointCount is returned for a non-positive interpolation count.
	ErrInvalidPointCount = errors.New("point count must be positive")

	ErrNoRows             = errors.New("no rows supplied")
	ErrInvalidRow         = errors.New("invalid row")
	ErrNoRenderableRoutes = errors.New("no renderable routes")
	ErrLocationNotFound   = errors.New("location not found")
	ErrGeocoderFailed     = errors.New("geocoder unavailable")
	ErrMapNotFound        = errors.New("map not found")
	ErrCacheMiss          = errors.New("cache miss")
)
