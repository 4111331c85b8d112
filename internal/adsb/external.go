package adsb

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yegors/flightboard/internal/geo"
)

// FlexibleField can hold either a string or a number
type FlexibleField struct {
	value any
}

// UnmarshalJSON implements custom JSON unmarshaling for FlexibleField
func (f *FlexibleField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		f.value = nil
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.value = num
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		f.value = str
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		f.value = b
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleField", data)
}

// Valid reports whether the field was present and non-null
func (f FlexibleField) Valid() bool {
	return f.value != nil
}

// Float64 returns the value as a float64
func (f FlexibleField) Float64() float64 {
	switch v := f.value.(type) {
	case float64:
		return v
	case string:
		if v == "" || v == "ground" {
			return 0
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return n
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// String returns the value as a string
func (f FlexibleField) String() string {
	switch v := f.value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// receiverResponse covers both the dump1090/tar1090 aircraft.json layout
// ("aircraft") and the ADS-B Exchange style API layout ("ac")
type receiverResponse struct {
	Now      float64          `json:"now"`
	Messages int              `json:"messages"`
	Aircraft []receiverTarget `json:"aircraft"`
	AC       []receiverTarget `json:"ac"`
}

func (r receiverResponse) targets() []receiverTarget {
	if len(r.AC) > 0 {
		return r.AC
	}
	return r.Aircraft
}

type receiverTarget struct {
	Hex          string        `json:"hex"`
	Flight       string        `json:"flight"`
	AircraftType string        `json:"t"`
	AltBaro      FlexibleField `json:"alt_baro"`
	AltGeom      FlexibleField `json:"alt_geom"`
	GS           FlexibleField `json:"gs"`
	Track        FlexibleField `json:"track"`
	TrueHeading  FlexibleField `json:"true_heading"`
	BaroRate     FlexibleField `json:"baro_rate"`
	GeomRate     FlexibleField `json:"geom_rate"`
	Lat          FlexibleField `json:"lat"`
	Lon          FlexibleField `json:"lon"`
}

// toStateVector converts a receiver target. The bool is false when a
// required field (hex, position, altitude, speed) is missing.
func (t receiverTarget) toStateVector(source string) (StateVector, bool) {
	hex := strings.ToLower(strings.TrimSpace(t.Hex))
	if hex == "" || !t.Lat.Valid() || !t.Lon.Valid() || !t.GS.Valid() {
		return StateVector{}, false
	}

	alt := t.AltBaro
	if !alt.Valid() {
		alt = t.AltGeom
	}
	if !alt.Valid() {
		return StateVector{}, false
	}

	heading := t.Track
	if !heading.Valid() {
		heading = t.TrueHeading
	}
	vr := t.BaroRate
	if !vr.Valid() {
		vr = t.GeomRate
	}

	return StateVector{
		Hex:             hex,
		Callsign:        strings.TrimSpace(t.Flight),
		Latitude:        t.Lat.Float64(),
		Longitude:       t.Lon.Float64(),
		AltitudeFt:      alt.Float64(),
		GroundSpeedKts:  t.GS.Float64(),
		HeadingDeg:      geo.NormalizeHeading(heading.Float64()),
		VerticalRateFPM: vr.Float64(),
		OnGround:        alt.String() == "ground",
		TypeHint:        strings.ToUpper(strings.TrimSpace(t.AircraftType)),
		Source:          source,
	}, true
}

// openSkyState decodes one row of the OpenSky states array. The bool is
// false for short rows or rows missing a required field.
func openSkyState(s []interface{}) (StateVector, bool) {
	// icao24 through sensors
	if len(s) < 13 {
		return StateVector{}, false
	}

	hex, _ := s[0].(string)
	hex = strings.ToLower(strings.TrimSpace(hex))
	callsign, _ := s[1].(string)
	lon, lonOK := s[5].(float64)
	lat, latOK := s[6].(float64)
	baroAlt, altOK := s[7].(float64)
	onGround, _ := s[8].(bool)
	velocity, velOK := s[9].(float64)
	track, _ := s[10].(float64)
	vertRate, _ := s[11].(float64)

	// fall back to geometric altitude
	if !altOK && len(s) > 13 {
		baroAlt, altOK = s[13].(float64)
	}

	if hex == "" || !latOK || !lonOK || !altOK || !velOK {
		return StateVector{}, false
	}

	return StateVector{
		Hex:             hex,
		Callsign:        strings.TrimSpace(callsign),
		Latitude:        lat,
		Longitude:       lon,
		AltitudeFt:      geo.MetersToFeet(baroAlt),
		GroundSpeedKts:  velocity * geo.KnotsPerMs,
		HeadingDeg:      geo.NormalizeHeading(track),
		VerticalRateFPM: vertRate * geo.FeetPerMinPerMs,
		OnGround:        onGround,
		Source:          "external-opensky",
	}, true
}
