package geospatial

import "math"

// EarthRadiusKm is the mean Earth radius used for all distance conversions.
const EarthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := ToRad(lat2 - lat1)
	dLon := ToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(ToRad(lat1))*math.Cos(ToRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c * 1000 // meters
}

// CentralAngle returns the angular distance in radians between two points
// given in radians, using the spherical law of cosines. The cosine is clamped
// to [-1, 1] so rounding on near-identical or antipodal points cannot yield NaN.
func CentralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	cos := math.Sin(lat1)*math.Sin(lat2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// ToCartesian maps a (lat, lon) pair in radians onto the unit sphere.
func ToCartesian(lat, lon float64) (x, y, z float64) {
	return math.Cos(lat) * math.Cos(lon), math.Cos(lat) * math.Sin(lon), math.Sin(lat)
}

// FromCartesian is the inverse of ToCartesian and returns radians.
// The vector does not need to be normalised.
func FromCartesian(x, y, z float64) (lat, lon float64) {
	return math.Atan2(z, math.Sqrt(x*x+y*y)), math.Atan2(y, x)
}

// ToRad converts degrees to radians.
func ToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDeg converts radians to degrees.
func ToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
