package geo

import (
	"errors"
	"math"
)

const (
	// EarthRadiusKm is Earth's mean radius used by the haversine formula.
	EarthRadiusKm = 6371.0088
	degToRad      = math.Pi / 180
)

// ErrOutOfRange is returned for coordinates outside the WGS84 range.
var ErrOutOfRange = errors.New("coordinates out of range")

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point lies within latitude/longitude bounds.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return ErrOutOfRange
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrOutOfRange
	}
	return nil
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
func DistanceKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// BearingDeg returns the initial bearing from a to b in degrees, 0..360 clockwise from north.
func BearingDeg(a, b Point) float64 {
	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Atan2(y, x) / degToRad
	return math.Mod(deg+360, 360)
}

// WithinRadius reports whether b lies within meters of a.
func WithinRadius(a, b Point, meters float64) bool {
	return DistanceKm(a, b)*1000 <= meters
}
