// Package geo computes distances between points on the Earth.
package geo

import (
	"fmt"
	"math"

	"github.com/jftuga/geodist"
)

// EarthRadiusKm is the mean Earth radius used by HaversineMeters.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// NewPoint converts stored single precision coordinates.
func NewPoint(latitude, longitude float32) Point {
	return Point{Latitude: float64(latitude), Longitude: float64(longitude)}
}

// SinglePrecision rounds the point to the precision cards are stored with,
// so that a guess typed exactly as stored compares equal.
func (p Point) SinglePrecision() Point {
	return NewPoint(float32(p.Latitude), float32(p.Longitude))
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.Latitude, p.Longitude)
}

// DistanceTo returns the great-circle distance in meters.
func (p Point) DistanceTo(q Point) float64 {
	return HaversineMeters(p.Latitude, p.Longitude, q.Latitude, q.Longitude)
}

// HaversineMeters returns the great-circle distance between two coordinates in meters
// on a sphere of radius EarthRadiusKm.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δφ := (lat2 - lat1) * math.Pi / 180
	Δλ := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	// Rounding can push a slightly above 1 for antipodal points.
	a = math.Min(a, 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c * 1000
}

// VincentyMeters returns the distance on the WGS-84 ellipsoid in meters.
// Vincenty's formula does not converge for nearly antipodal points; the
// haversine distance is returned instead.
func VincentyMeters(p, q Point) float64 {
	_, km, err := geodist.VincentyDistance(
		geodist.Coord{Lat: p.Latitude, Lon: p.Longitude},
		geodist.Coord{Lat: q.Latitude, Lon: q.Longitude},
	)
	if err != nil {
		return p.DistanceTo(q)
	}
	return km * 1000
}
