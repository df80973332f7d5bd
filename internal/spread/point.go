// Package spread separates geo points that share, or nearly share, a location.
//
// Points are grouped by distance to a pivot and each multi-member group is redistributed
// evenly on a small ring around its pivot, so that every record stays visible and can still
// be traced back to its true coordinates.
package spread

import "github.com/UnknownOlympus/meridian/internal/geo"

const (
	// DefaultThresholdKm is the pivot distance under which points join a cluster.
	DefaultThresholdKm = 25.0
	// DefaultRingKm is the radius of the ring clustered points are moved onto.
	DefaultRingKm = 12.0
)

// Point is a located record. Payload is carried through every transform untouched.
type Point[T any] struct {
	Lat     float64
	Lng     float64
	Payload T
	// Origin is set only when the point was moved onto a fan-out ring.
	Origin *Origin
}

// Origin records where a fanned-out point really is and its slot on the ring.
type Origin struct {
	Lat   float64 `json:"origLat"`
	Lng   float64 `json:"origLng"`
	Index int     `json:"clusterIndex"`
	Size  int     `json:"clusterSize"`
}

// LatLng returns the current (possibly fanned-out) position.
func (p Point[T]) LatLng() geo.LatLng {
	return geo.LatLng{Lat: p.Lat, Lng: p.Lng}
}

// Source returns the original coordinates when the point was moved, its current ones otherwise.
func (p Point[T]) Source() geo.LatLng {
	if p.Origin != nil {
		return geo.LatLng{Lat: p.Origin.Lat, Lng: p.Origin.Lng}
	}

	return p.LatLng()
}
