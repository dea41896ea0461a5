package geodesic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

const tolerance = 1e-6

var (
	paris   = domain.GeoPoint{Lat: 48.8566, Lon: 2.3522}
	newYork = domain.GeoPoint{Lat: 40.7128, Lon: -74.0060}
	tokyo   = domain.GeoPoint{Lat: 35.6762, Lon: 139.6503}
	sydney  = domain.GeoPoint{Lat: -33.8688, Lon: 151.2093}
)

func assertNear(t *testing.T, want, got domain.GeoPoint) {
	t.Helper()
	assert.InDelta(t, want.Lat, got.Lat, tolerance, "lat of %s", got)
	assert.InDelta(t, want.Lon, got.Lon, tolerance, "lon of %s", got)
}

func TestCurve_LengthAndEndpoints(t *testing.T) {
	cases := []struct {
		name        string
		origin      domain.GeoPoint
		destination domain.GeoPoint
		points      int
	}{
		{"paris-newyork default", paris, newYork, DefaultPointCount},
		{"tokyo-sydney", tokyo, sydney, 37},
		{"single segment", paris, tokyo, 1},
		{"equator crossing", domain.GeoPoint{Lat: 10, Lon: 10}, domain.GeoPoint{Lat: -10, Lon: 30}, 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path, err := Curve(tc.origin, tc.destination, tc.points)
			require.NoError(t, err)
			require.Len(t, path, tc.points+1)
			assertNear(t, tc.origin, path[0])
			assertNear(t, tc.destination, path[len(path)-1])
		})
	}
}

func TestCurve_ParisNewYorkFivePoints(t *testing.T) {
	path, err := Curve(paris, newYork, 4)
	require.NoError(t, err)
	require.Len(t, path, 5)

	assertNear(t, paris, path[0])
	assertNear(t, newYork, path[4])

	// No backtracking: distance from origin grows strictly.
	prev := -1.0
	for i, p := range path {
		d := DistanceKm(paris, p)
		assert.Greater(t, d, prev, "sample %d went backwards", i)
		prev = d
	}

	// Great circle from Paris to New York bulges north of both endpoints.
	assert.Greater(t, path[2].Lat, paris.Lat)

	// Samples are evenly spaced along the arc.
	total := DistanceKm(paris, newYork)
	for i := 1; i < len(path); i++ {
		assert.InDelta(t, total/4, DistanceKm(path[i-1], path[i]), 1e-3)
	}
}

func TestCurve_IdenticalPointsAreFinite(t *testing.T) {
	path, err := Curve(paris, paris, DefaultPointCount)
	require.NoError(t, err)
	require.Len(t, path, DefaultPointCount+1)

	for _, p := range path {
		assert.False(t, math.IsNaN(p.Lat) || math.IsNaN(p.Lon))
		assert.False(t, math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0))
		assertNear(t, paris, p)
	}
}

func TestCurve_AntipodalPointsAreFinite(t *testing.T) {
	origin := domain.GeoPoint{Lat: 10, Lon: 20}
	destination := domain.GeoPoint{Lat: -10, Lon: -160}

	path, err := Curve(origin, destination, 10)
	require.NoError(t, err)
	require.Len(t, path, 11)
	assert.True(t, path.Finite())
	assert.Equal(t, origin, path[0])
	assert.Equal(t, destination, path[10])

	// Half way round the globe.
	assert.InDelta(t, math.Pi*6371.0, LengthKm(path), 1)
}

func TestCurve_OutputsStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		origin := domain.GeoPoint{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		destination := domain.GeoPoint{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}

		path, err := Curve(origin, destination, 1+rng.Intn(50))
		require.NoError(t, err)
		for _, p := range path {
			require.True(t, p.Valid(), "sample %s out of range for %s -> %s", p, origin, destination)
		}
	}
}

func TestCurve_Idempotent(t *testing.T) {
	first, err := Curve(tokyo, sydney, 64)
	require.NoError(t, err)
	second, err := Curve(tokyo, sydney, 64)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCurve_InvalidInput(t *testing.T) {
	_, err := Curve(paris, newYork, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPointCount)

	_, err = Curve(paris, newYork, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidPointCount)

	_, err = Curve(domain.GeoPoint{Lat: 91, Lon: 0}, newYork, 10)
	assert.ErrorIs(t, err, domain.ErrMalformedCoordinate)

	_, err = Curve(paris, domain.GeoPoint{Lat: 0, Lon: math.NaN()}, 10)
	assert.ErrorIs(t, err, domain.ErrMalformedCoordinate)
}
