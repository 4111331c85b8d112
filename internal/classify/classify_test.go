package classify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/flightboard/internal/adsb"
	"github.com/yegors/flightboard/internal/config"
	"github.com/yegors/flightboard/internal/geo"
	"github.com/yegors/flightboard/internal/routes"
)

const (
	lasLat = 36.080
	lasLon = -115.152
)

func lasStation() config.StationConfig {
	return config.StationConfig{
		AirportCode: "KLAS",
		IATACode:    "LAS",
		Latitude:    lasLat,
		Longitude:   lasLon,
		Runways: []config.RunwayConfig{
			{ID: "01L", Latitude: 36.058, Longitude: -115.158},
			{ID: "01R", Latitude: 36.058, Longitude: -115.145},
			{ID: "08L", Latitude: 36.069, Longitude: -115.178},
			{ID: "08R", Latitude: 36.069, Longitude: -115.165},
			{ID: "19L", Latitude: 36.101, Longitude: -115.139},
			{ID: "19R", Latitude: 36.101, Longitude: -115.152},
			{ID: "26L", Latitude: 36.092, Longitude: -115.126},
			{ID: "26R", Latitude: 36.092, Longitude: -115.139},
		},
		Satellites: []config.SatelliteField{
			{Code: "KHND", Latitude: 35.976, Longitude: -115.134},
			{Code: "KVGT", Latitude: 36.211, Longitude: -115.195},
		},
	}
}

func newEngine() *Engine {
	return NewEngine(lasStation(), config.DefaultClassifier())
}

// stateAt places an aircraft distKm from the airport on the given radial,
// heading toward the airport plus offset degrees
func stateAt(radial, distKm, offset, altFt, vrFPM float64) adsb.StateVector {
	lat, lon := geo.Destination(lasLat, lasLon, radial, distKm)
	return adsb.StateVector{
		Hex:             "a1b2c3",
		Callsign:        "TEST1",
		Latitude:        lat,
		Longitude:       lon,
		AltitudeFt:      altFt,
		GroundSpeedKts:  250,
		HeadingDeg:      geo.NormalizeHeading(geo.Bearing(lat, lon, lasLat, lasLon) + offset),
		VerticalRateFPM: vrFPM,
	}
}

func record(origin, dest string) *routes.Record {
	return &routes.Record{Callsign: "TEST1", Origin: origin, Destination: dest, AirlineIATA: "WN", AirlineICAO: "SWA"}
}

func TestScheduleDestinationOverridesGeometry(t *testing.T) {
	e := newEngine()
	// Climbing close in, which geometry alone would call a departure
	sv := stateAt(200, 15, 180, 5000, 1500)

	res := e.Classify(sv, "B738", record("PHX", "LAS"))
	assert.Equal(t, Arrival, res.Class)
	assert.Equal(t, ReasonScheduleDestination, res.Reason)
	assert.True(t, res.ScheduleConfirmed)

	res = e.Classify(sv, "B738", nil)
	assert.Equal(t, Departure, res.Class)
	assert.Equal(t, ReasonGeometry, res.Reason)
}

func TestICAODestinationIsHome(t *testing.T) {
	res := newEngine().Classify(stateAt(200, 15, 180, 5000, 1500), "B738", record("KPHX", "KLAS"))
	assert.Equal(t, Arrival, res.Class)
}

func TestGeometricArrival(t *testing.T) {
	sv := stateAt(200, 50, 10, 8000, -500)
	res := newEngine().Classify(sv, "B738", nil)

	assert.Equal(t, Arrival, res.Class)
	assert.Equal(t, ReasonGeometry, res.Reason)
	assert.False(t, res.ScheduleConfirmed)
	assert.InDelta(t, 50, res.DistanceKm, 0.1)
	assert.InDelta(t, 10, res.HeadingDiff, 0.5)
	assert.Empty(t, res.Runway, "too far out for a runway")
}

func TestGeometricArrivalByHeadingOnly(t *testing.T) {
	res := newEngine().Classify(stateAt(90, 100, 100, 12000, -800), "B738", nil)
	assert.Equal(t, Arrival, res.Class)

	res = newEngine().Classify(stateAt(90, 100, 150, 12000, -800), "B738", nil)
	assert.Equal(t, Unclassified, res.Class)
	assert.Equal(t, ReasonNoMatch, res.Reason)
	assert.False(t, res.Excluded)
}

func TestScheduleOriginDeparture(t *testing.T) {
	res := newEngine().Classify(stateAt(200, 50, 180, 8000, 200), "A320", record("LAS", "SEA"))
	assert.Equal(t, Departure, res.Class)
	assert.Equal(t, ReasonScheduleOrigin, res.Reason)
	assert.True(t, res.ScheduleConfirmed)
	assert.Empty(t, res.Runway)
}

func TestGeometricDeparture(t *testing.T) {
	res := newEngine().Classify(stateAt(250, 10, 180, 4000, 1500), "A320", nil)
	assert.Equal(t, Departure, res.Class)
	assert.Equal(t, ReasonGeometry, res.Reason)

	res = newEngine().Classify(stateAt(250, 35, 180, 4000, 1500), "A320", nil)
	assert.Equal(t, Unclassified, res.Class, "beyond the departure radius")
}

func TestExclusionFilters(t *testing.T) {
	e := newEngine()
	rec := record("PHX", "LAS")

	slow := stateAt(200, 15, 0, 3000, -700)
	slow.GroundSpeedKts = 100
	res := e.Classify(slow, "B738", rec)
	assert.True(t, res.Excluded)
	assert.Equal(t, ReasonBelowMinSpeed, res.Reason)

	high := stateAt(200, 15, 0, 16000, -700)
	res = e.Classify(high, "B738", rec)
	assert.True(t, res.Excluded)
	assert.Equal(t, ReasonAboveMaxAltitude, res.Reason)

	for _, typ := range []string{"C172", "r44", "EC99", "H500", "PA28", "TBM9"} {
		res = e.Classify(stateAt(200, 15, 0, 3000, -700), typ, rec)
		assert.Equal(t, ReasonIgnoredType, res.Reason, typ)
		assert.Equal(t, Unclassified, res.Class, typ)
	}
}

func TestIsIgnoredType(t *testing.T) {
	e := newEngine()
	assert.True(t, e.IsIgnoredType("C421"))
	assert.True(t, e.IsIgnoredType(" dhc6 "))
	assert.False(t, e.IsIgnoredType("B738"))
	assert.False(t, e.IsIgnoredType("A21N"))
	assert.False(t, e.IsIgnoredType("JET"))
}

func TestSatelliteFieldExclusion(t *testing.T) {
	e := newEngine()
	lat, lon := geo.Destination(35.976, -115.134, 180, 2)
	sv := adsb.StateVector{
		Callsign:        "N123AB",
		Latitude:        lat,
		Longitude:       lon,
		AltitudeFt:      3000,
		GroundSpeedKts:  140,
		HeadingDeg:      0,
		VerticalRateFPM: -700,
	}

	res := e.Classify(sv, "JET", nil)
	assert.True(t, res.Excluded)
	assert.Equal(t, ReasonSatelliteField, res.Reason)

	res = e.Classify(sv, "JET", record("PHX", "LAS"))
	assert.Equal(t, Arrival, res.Class, "a confirmed home arrival is kept")

	sv.VerticalRateFPM = 0
	res = e.Classify(sv, "JET", nil)
	assert.NotEqual(t, ReasonSatelliteField, res.Reason)
}

func TestNorthernFieldExclusion(t *testing.T) {
	e := newEngine()
	sv := adsb.StateVector{
		Latitude:        36.20,
		Longitude:       -115.10,
		AltitudeFt:      5000,
		GroundSpeedKts:  180,
		VerticalRateFPM: -800,
	}
	sv.HeadingDeg = geo.Bearing(sv.Latitude, sv.Longitude, lasLat, lasLon)

	res := e.Classify(sv, "B738", nil)
	assert.True(t, res.Excluded)
	assert.Equal(t, ReasonNorthernField, res.Reason)

	sv.AltitudeFt = 7000
	res = e.Classify(sv, "B738", nil)
	assert.Equal(t, Arrival, res.Class)

	params := config.DefaultClassifier()
	params.NorthernLatitude = 90
	sv.AltitudeFt = 5000
	res = NewEngine(lasStation(), params).Classify(sv, "B738", nil)
	assert.Equal(t, Arrival, res.Class, "disabled at 90 degrees")
}

func TestUnknownRouteFallback(t *testing.T) {
	// Descending but far out and pointed away, so geometry does not fire
	sv := stateAt(90, 80, 150, 11000, -800)

	res := newEngine().Classify(sv, "B738", nil)
	assert.Equal(t, Unclassified, res.Class, "fallback is off by default")

	params := config.DefaultClassifier()
	params.UnknownRouteFallback = true
	e := NewEngine(lasStation(), params)

	res = e.Classify(sv, "B738", nil)
	assert.Equal(t, Arrival, res.Class)
	assert.Equal(t, ReasonUnknownRoute, res.Reason)

	res = e.Classify(sv, "B738", record("LAS", "SEA"))
	assert.Equal(t, Departure, res.Class, "a known route disables the arrival fallback")

	climb := stateAt(90, 80, 150, 9000, 800)
	res = e.Classify(climb, "B738", nil)
	assert.Equal(t, Departure, res.Class)
	assert.Equal(t, ReasonUnknownRoute, res.Reason)

	slowClimb := stateAt(90, 80, 150, 9000, 50)
	res = e.Classify(slowClimb, "B738", nil)
	assert.Equal(t, Unclassified, res.Class)
}

func TestArrivalRunwayPrediction(t *testing.T) {
	e := newEngine()
	lat, lon := 36.092, -115.05
	sv := adsb.StateVector{
		Latitude:        lat,
		Longitude:       lon,
		AltitudeFt:      3000,
		GroundSpeedKts:  150,
		HeadingDeg:      geo.Bearing(lat, lon, 36.092, -115.126),
		VerticalRateFPM: -700,
	}

	first := e.Classify(sv, "B738", nil)
	require.Equal(t, Arrival, first.Class)
	assert.Equal(t, "26L", first.Runway)

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Classify(sv, "B738", nil))
	}
}

func TestIsHome(t *testing.T) {
	e := newEngine()
	assert.True(t, e.IsHome("las"))
	assert.True(t, e.IsHome(" KLAS"))
	assert.False(t, e.IsHome("PHX"))
	assert.False(t, e.IsHome(routes.Unknown))
}

func TestClassJSON(t *testing.T) {
	b, err := json.Marshal(Result{Class: Arrival, Reason: ReasonGeometry})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"class":"arrival"`)
	assert.Equal(t, "departure", Departure.String())
	assert.Equal(t, "unclassified", Unclassified.String())
}
