// Package geo implements great-circle calculations on a spherical Earth.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for every calculation in this package.
const EarthRadiusKm = 6371.0

// LatLng is a point in degrees. Values are not validated.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the haversine great-circle distance between a and b in kilometers.
func Distance(a, b LatLng) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	// Rounding can push h just above 1 for antipodal points.
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(math.Min(1, h)))
}

// Destination solves the forward geodesic problem: the point reached by travelling
// distanceKm from (lat, lng) along the initial bearing bearingDeg (0 = north, clockwise).
// The returned longitude is normalized to (-180, 180].
func Destination(lat, lng, bearingDeg, distanceKm float64) (float64, float64) {
	brg := toRad(bearingDeg)
	delta := distanceKm / EarthRadiusKm
	phi1 := toRad(lat)
	lambda1 := toRad(lng)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(brg))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(brg)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	return toDeg(phi2), NormalizeLongitude(toDeg(lambda2))
}

// Bearing returns the initial compass bearing from a to b in degrees, in [0, 360).
func Bearing(a, b LatLng) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dLng := toRad(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLng)

	deg := math.Mod(toDeg(math.Atan2(y, x))+360, 360)
	if deg == 360 {
		return 0
	}

	return deg
}

// NormalizeLongitude wraps deg into (-180, 180].
func NormalizeLongitude(deg float64) float64 {
	m := math.Mod(deg+180, 360)
	if m <= 0 {
		m += 360
	}

	return m - 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
