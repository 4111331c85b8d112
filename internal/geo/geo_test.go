package geo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	lasLat = 36.080
	lasLon = -115.152
)

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{lasLat, lasLon, 33.4342, -112.0116},
		{0, 0, 0, 180},
		{-33.9, 151.2, 51.47, -0.45},
		{36.211, -115.195, 35.976, -115.134},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1], p[2], p[3]), Distance(p[2], p[3], p[0], p[1]))
		assert.Equal(t, 0.0, Distance(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// LAS to PHX is roughly 411 km
	d := Distance(lasLat, lasLon, 33.4342, -112.0116)
	assert.InDelta(t, 411, d, 5)

	// One degree of latitude
	assert.InDelta(t, 111.19, Distance(0, 0, 1, 0), 0.01)
}

func TestBearing(t *testing.T) {
	assert.InDelta(t, 0, Bearing(0, 0, 1, 0), 1e-9)
	assert.InDelta(t, 90, Bearing(0, 0, 0, 1), 1e-9)
	assert.InDelta(t, 180, Bearing(1, 0, 0, 0), 1e-9)
	assert.InDelta(t, 270, Bearing(0, 1, 0, 0), 1e-9)

	for _, b := range []float64{
		Bearing(lasLat, lasLon, 36.5, -115.9),
		Bearing(lasLat, lasLon, 35.5, -114.0),
	} {
		assert.GreaterOrEqual(t, b, 0.0)
		assert.Less(t, b, 360.0)
	}
}

func TestAngularDifference(t *testing.T) {
	assert.Equal(t, 20.0, AngularDifference(350, 10))
	assert.Equal(t, 20.0, AngularDifference(10, 350))
	assert.Equal(t, 180.0, AngularDifference(0, 180))
	assert.Equal(t, 0.0, AngularDifference(720, 0))
	assert.Equal(t, 90.0, AngularDifference(-45, 45))

	for a := -720.0; a <= 720; a += 37.5 {
		for b := -360.0; b <= 360; b += 41 {
			d := AngularDifference(a, b)
			assert.Equal(t, d, AngularDifference(b, a))
			assert.True(t, d >= 0 && d <= 180, "difference %v out of range", d)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeHeading(360))
	assert.Equal(t, 350.0, NormalizeHeading(-10))
	assert.Equal(t, 10.0, NormalizeHeading(730))
}

func TestMagneticVariation(t *testing.T) {
	d := MagneticVariation(lasLat, lasLon, 2000, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, 0, d, 30)

	assert.InDelta(t, 349, MagneticHeading(0, 11), 1e-9)
}

func TestMetersToFeet(t *testing.T) {
	assert.InDelta(t, 3280.84, MetersToFeet(1000), 1e-6)
	assert.Equal(t, 0.0, MetersToFeet(0))
}

func TestDestinationRoundTrip(t *testing.T) {
	for _, brg := range []float64{0, 45, 90, 180, 270, 333} {
		lat, lon := Destination(36.08, -115.15, brg, 25)
		assert.InDelta(t, 25, Distance(36.08, -115.15, lat, lon), 0.01, "bearing %v", brg)
		assert.InDelta(t, 0, AngularDifference(brg, Bearing(36.08, -115.15, lat, lon)), 0.1, "bearing %v", brg)
	}
}
