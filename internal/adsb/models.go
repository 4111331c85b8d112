package adsb

import (
	"math"
	"strings"
)

// StateVector is one aircraft's instantaneous telemetry
type StateVector struct {
	Hex             string  `json:"hex"`
	Callsign        string  `json:"callsign"`
	Latitude        float64 `json:"lat"`
	Longitude       float64 `json:"lon"`
	AltitudeFt      float64 `json:"altitude_ft"`
	GroundSpeedKts  float64 `json:"ground_speed_kts"`
	HeadingDeg      float64 `json:"heading_deg"`
	VerticalRateFPM float64 `json:"vertical_rate_fpm"`
	OnGround        bool    `json:"on_ground"`
	TypeHint        string  `json:"type_hint,omitempty"` // type code reported by the source, if any
	Source          string  `json:"source"`
}

// NormalizedCallsign returns the trimmed, upper-cased callsign
func (s StateVector) NormalizedCallsign() string {
	return strings.ToUpper(strings.TrimSpace(s.Callsign))
}

// BoundingBox is a lat/lon rectangle
type BoundingBox struct {
	LatMin float64 `json:"lamin"`
	LonMin float64 `json:"lomin"`
	LatMax float64 `json:"lamax"`
	LonMax float64 `json:"lomax"`
}

// IsZero reports whether no box is set
func (b BoundingBox) IsZero() bool {
	return b.LatMin == 0 && b.LonMin == 0 && b.LatMax == 0 && b.LonMax == 0
}

// Contains reports whether the point lies inside the box
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// BoxAround derives a box from a center point and a radius in nautical miles
func BoxAround(lat, lon, radiusNM float64) BoundingBox {
	latDeg := radiusNM / 60.0
	lonDeg := radiusNM / (60.0 * math.Cos(lat*math.Pi/180.0))
	return BoundingBox{
		LatMin: lat - latDeg,
		LatMax: lat + latDeg,
		LonMin: lon - lonDeg,
		LonMax: lon + lonDeg,
	}
}
