// Package geodesic samples great-circle arcs between two points on the sphere.
package geodesic

import (
	"fmt"
	"math"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/pkg/geospatial"
)

// DefaultPointCount is the number of interpolation segments used when the
// caller has no preference. A curve has DefaultPointCount+1 samples.
const DefaultPointCount = 100

// sin(Δσ) below this is treated as zero: the endpoints are either the same
// point or antipodal and the slerp weights are undefined. The law of cosines
// only resolves Δσ to about 1.5e-8 rad near 0 and π, so the cut-off sits
// above that noise (1e-7 rad is roughly 0.6 m on the ground).
const degenerateSin = 1e-7

// Curve returns pointCount+1 samples along the great circle from origin to
// destination, using spherical linear interpolation on the unit sphere.
//
// Identical points yield pointCount+1 copies of origin (the final sample is
// destination, which for identical input is the same point). Antipodal points have
// no unique great circle; the arc then leaves origin heading due north (the
// local meridian), which keeps the output deterministic.
func Curve(origin, destination domain.GeoPoint, pointCount int) (domain.CurvePath, error) {
	if pointCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidPointCount, pointCount)
	}
	if !origin.Valid() {
		return nil, fmt.Errorf("origin %s: %w", origin, domain.ErrMalformedCoordinate)
	}
	if !destination.Valid() {
		return nil, fmt.Errorf("destination %s: %w", destination, domain.ErrMalformedCoordinate)
	}

	lat1, lon1 := geospatial.ToRad(origin.Lat), geospatial.ToRad(origin.Lon)
	lat2, lon2 := geospatial.ToRad(destination.Lat), geospatial.ToRad(destination.Lon)

	deltaSigma := geospatial.CentralAngle(lat1, lon1, lat2, lon2)
	sinSigma := math.Sin(deltaSigma)

	var path domain.CurvePath
	switch {
	case sinSigma < degenerateSin && deltaSigma < math.Pi/2:
		path = repeat(origin, pointCount+1)
		path[pointCount] = destination
	case sinSigma < degenerateSin:
		path = antipodal(origin, destination, deltaSigma, pointCount)
	default:
		path = slerp(lat1, lon1, lat2, lon2, deltaSigma, sinSigma, pointCount)
	}

	if !path.Finite() {
		return nil, fmt.Errorf("%s -> %s: %w", origin, destination, domain.ErrNonFiniteCurve)
	}
	return path, nil
}

func slerp(lat1, lon1, lat2, lon2, deltaSigma, sinSigma float64, pointCount int) domain.CurvePath {
	x1, y1, z1 := geospatial.ToCartesian(lat1, lon1)
	x2, y2, z2 := geospatial.ToCartesian(lat2, lon2)

	path := make(domain.CurvePath, 0, pointCount+1)
	for i := 0; i <= pointCount; i++ {
		t := float64(i) / float64(pointCount)

		a := math.Sin((1-t)*deltaSigma) / sinSigma
		b := math.Sin(t*deltaSigma) / sinSigma

		path = append(path, fromCartesian(a*x1+b*x2, a*y1+b*y2, a*z1+b*z2))
	}
	return path
}

// antipodal rotates origin through its northward tangent. The tangent
// (-sinφ cosλ, -sinφ sinλ, cosφ) is a unit vector orthogonal to origin for
// every φ, poles included.
func antipodal(origin, destination domain.GeoPoint, deltaSigma float64, pointCount int) domain.CurvePath {
	lat1, lon1 := geospatial.ToRad(origin.Lat), geospatial.ToRad(origin.Lon)
	px, py, pz := geospatial.ToCartesian(lat1, lon1)
	nx := -math.Sin(lat1) * math.Cos(lon1)
	ny := -math.Sin(lat1) * math.Sin(lon1)
	nz := math.Cos(lat1)

	path := make(domain.CurvePath, 0, pointCount+1)
	for i := 0; i <= pointCount; i++ {
		theta := float64(i) / float64(pointCount) * deltaSigma
		c, s := math.Cos(theta), math.Sin(theta)

		path = append(path, fromCartesian(c*px+s*nx, c*py+s*ny, c*pz+s*nz))
	}
	path[0] = origin
	path[pointCount] = destination
	return path
}

// fromCartesian converts back to degrees, clamping the last ulp that the
// radian/degree round trip can push past ±90 or ±180.
func fromCartesian(x, y, z float64) domain.GeoPoint {
	lat, lon := geospatial.FromCartesian(x, y, z)
	return domain.GeoPoint{
		Lat: math.Max(-90, math.Min(90, geospatial.ToDeg(lat))),
		Lon: math.Max(-180, math.Min(180, geospatial.ToDeg(lon))),
	}
}

func repeat(p domain.GeoPoint, n int) domain.CurvePath {
	path := make(domain.CurvePath, n)
	for i := range path {
		path[i] = p
	}
	return path
}
