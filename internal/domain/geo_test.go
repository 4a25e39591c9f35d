package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		points := []Geo{{0, 0}, {27.95, -82.45}, {-33.9, 151.2}, {90, 0}, {-90, 180}}
		for _, p := range points {
			assert.Zero(t, HaversineKm(p.Lat, p.Lon, p.Lat, p.Lon))
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Geo{Lat: 27.95, Lon: -82.45}
		b := Geo{Lat: 25.76, Lon: -80.19}
		assert.Equal(t, HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon), HaversineKm(b.Lat, b.Lon, a.Lat, a.Lon))
	})

	t.Run("quarter great circle on the equator", func(t *testing.T) {
		d := HaversineKm(0, 0, 0, 90)
		assert.InDelta(t, 10007.5, d, 0.1)
		assert.InDelta(t, EarthRadiusKm*math.Pi/2, d, 1e-6)
	})

	t.Run("antipodes do not produce NaN", func(t *testing.T) {
		d := HaversineKm(10, 20, -10, -160)
		assert.False(t, math.IsNaN(d))
		assert.InDelta(t, EarthRadiusKm*math.Pi, d, 0.01)
	})

	t.Run("tampa to miami", func(t *testing.T) {
		assert.InDelta(t, 331, HaversineKm(27.95, -82.45, 25.76, -80.19), 1)
	})
}

func TestGeoValid(t *testing.T) {
	assert.True(t, Geo{Lat: 90, Lon: -180}.Valid())
	assert.True(t, Geo{Lat: -90, Lon: 180}.Valid())
	assert.False(t, Geo{Lat: 90.1, Lon: 0}.Valid())
	assert.False(t, Geo{Lat: 0, Lon: -180.5}.Valid())
}
