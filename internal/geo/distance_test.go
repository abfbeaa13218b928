package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// referenceHaversine is the textbook formula with R = 6371 km.
func referenceHaversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c * 1000
}

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		want      float64
		wantDelta float64
	}{
		{
			name:      "same point",
			a:         Point{35.6895, 139.6917},
			b:         Point{35.6895, 139.6917},
			want:      0,
			wantDelta: 0,
		},
		{
			name:      "0.01 degree longitude in Tokyo",
			a:         Point{35.6895, 139.6917},
			b:         Point{35.6895, 139.7017},
			want:      903,
			wantDelta: 2,
		},
		{
			name:      "one degree of latitude on a meridian",
			a:         Point{0, 0},
			b:         Point{1, 0},
			want:      111195,
			wantDelta: 1,
		},
		{
			name:      "London to Paris",
			a:         Point{51.5074, -0.1278},
			b:         Point{48.8566, 2.3522},
			want:      343500,
			wantDelta: 1000,
		},
		{
			name:      "antipodal points",
			a:         Point{0, 0},
			b:         Point{0, 180},
			want:      math.Pi * EarthRadiusKm * 1000,
			wantDelta: 1,
		},
		{
			name:      "across the antimeridian",
			a:         Point{0, 179.5},
			b:         Point{0, -179.5},
			want:      111195,
			wantDelta: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.a.Latitude, tt.a.Longitude, tt.b.Latitude, tt.b.Longitude)
			assert.InDelta(t, tt.want, got, tt.wantDelta)
			assert.InDelta(t, referenceHaversine(tt.a.Latitude, tt.a.Longitude, tt.b.Latitude, tt.b.Longitude), got, 1e-6)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestHaversineMeters_UsesMeanEarthRadius(t *testing.T) {
	metersPerDegree := EarthRadiusKm * 1000 * math.Pi / 180

	for _, meters := range []float64{249.9, 250.1, 1000} {
		got := HaversineMeters(0, 0, meters/metersPerDegree, 0)
		assert.InDelta(t, meters, got, 1e-6, "meters=%v", meters)
	}
}

func TestHaversineMeters_Identity(t *testing.T) {
	for _, p := range []Point{{0, 0}, {90, 0}, {-90, 45}, {35.6895, 139.6917}, {-33.8688, 151.2093}, {64.1466, -21.9426}} {
		assert.Equal(t, 0.0, HaversineMeters(p.Latitude, p.Longitude, p.Latitude, p.Longitude), "point %s", p)
	}
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	points := []Point{{0, 0}, {35.6895, 139.6917}, {-33.8688, 151.2093}, {40.7128, -74.006}, {-54.8019, -68.303}, {89.9, 10}}
	for _, a := range points {
		for _, b := range points {
			ab := HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
			ba := HaversineMeters(b.Latitude, b.Longitude, a.Latitude, a.Longitude)
			assert.InDelta(t, ab, ba, 1e-6, "%s <-> %s", a, b)
		}
	}
}

func TestPoint_DistanceTo(t *testing.T) {
	a := Point{51.5074, -0.1278}
	b := Point{48.8566, 2.3522}
	assert.Equal(t, HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude), a.DistanceTo(b))
}

func TestPoint_SinglePrecision(t *testing.T) {
	stored := NewPoint(35.6895, 139.6917)
	guess := Point{35.6895, 139.6917}

	assert.NotEqual(t, stored, guess)
	assert.Equal(t, stored, guess.SinglePrecision())
	assert.Equal(t, 0.0, stored.DistanceTo(guess.SinglePrecision()))
}

func TestVincentyMeters(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		want      float64
		wantDelta float64
	}{
		{
			name:      "same point",
			a:         Point{35.6895, 139.6917},
			b:         Point{35.6895, 139.6917},
			want:      0,
			wantDelta: 1e-6,
		},
		{
			name:      "one degree of latitude at the equator is shorter on the ellipsoid",
			a:         Point{0, 0},
			b:         Point{1, 0},
			want:      110574,
			wantDelta: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VincentyMeters(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.wantDelta)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestVincentyMeters_NearlyAntipodal(t *testing.T) {
	got := VincentyMeters(Point{0, 0}, Point{0.5, 179.7})

	assert.False(t, math.IsNaN(got))
	assert.Greater(t, got, 19_000_000.0)
	assert.Less(t, got, 20_100_000.0)
}
