// Package runway estimates which runway threshold an arriving aircraft is lined up with.
package runway

import (
	"github.com/yegors/flightboard/internal/geo"
)

// Threshold is one runway end
type Threshold struct {
	ID        string
	Latitude  float64
	Longitude float64
}

// Limits bound when a prediction is attempted
type Limits struct {
	MaxDistanceKm  float64 // beyond this, no prediction
	MaxAltitudeFt  float64 // at or above this, no prediction
	MaxHeadingDiff float64 // heading must be within this of the bearing to the airport
}

// Predictor picks the threshold whose bearing best matches an aircraft's heading
type Predictor struct {
	airportLat float64
	airportLon float64
	thresholds []Threshold
	limits     Limits
}

// NewPredictor creates a predictor. Table order decides ties.
func NewPredictor(airportLat, airportLon float64, thresholds []Threshold, limits Limits) *Predictor {
	t := make([]Threshold, len(thresholds))
	copy(t, thresholds)
	return &Predictor{
		airportLat: airportLat,
		airportLon: airportLon,
		thresholds: t,
		limits:     limits,
	}
}

// Predict returns the runway ID, or "" when there is no prediction
func (p *Predictor) Predict(lat, lon, heading, altitudeFt float64) string {
	heading = geo.NormalizeHeading(heading)

	if geo.Distance(lat, lon, p.airportLat, p.airportLon) > p.limits.MaxDistanceKm {
		return ""
	}
	if altitudeFt >= p.limits.MaxAltitudeFt {
		return ""
	}

	toAirport := geo.Bearing(lat, lon, p.airportLat, p.airportLon)
	if geo.AngularDifference(heading, toAirport) >= p.limits.MaxHeadingDiff {
		return ""
	}

	best := ""
	bestDiff := 361.0
	for _, t := range p.thresholds {
		diff := geo.AngularDifference(heading, geo.Bearing(lat, lon, t.Latitude, t.Longitude))
		if diff < bestDiff {
			bestDiff = diff
			best = t.ID
		}
	}
	return best
}

// Thresholds returns a copy of the ordered table
func (p *Predictor) Thresholds() []Threshold {
	t := make([]Threshold, len(p.thresholds))
	copy(t, p.thresholds)
	return t
}
