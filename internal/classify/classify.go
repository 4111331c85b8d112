// Package classify decides whether an observed aircraft is arriving at or
// departing from the home airport.
package classify

import (
	"strings"

	"github.com/yegors/flightboard/internal/adsb"
	"github.com/yegors/flightboard/internal/config"
	"github.com/yegors/flightboard/internal/geo"
	"github.com/yegors/flightboard/internal/routes"
	"github.com/yegors/flightboard/internal/runway"
)

// Class is the outcome of a classification
type Class int

const (
	Unclassified Class = iota
	Arrival
	Departure
)

func (c Class) String() string {
	switch c {
	case Arrival:
		return "arrival"
	case Departure:
		return "departure"
	default:
		return "unclassified"
	}
}

// MarshalText implements encoding.TextMarshaler
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Reason explains a result
type Reason string

const (
	ReasonBelowMinSpeed       Reason = "below_min_speed"
	ReasonAboveMaxAltitude    Reason = "above_max_altitude"
	ReasonIgnoredType         Reason = "ignored_type"
	ReasonSatelliteField      Reason = "satellite_field"
	ReasonNorthernField       Reason = "northern_field"
	ReasonScheduleDestination Reason = "schedule_destination"
	ReasonScheduleOrigin      Reason = "schedule_origin"
	ReasonGeometry            Reason = "geometry"
	ReasonUnknownRoute        Reason = "unknown_route"
	ReasonNoMatch             Reason = "no_match"
)

// Result is computed fresh on every poll and never cached
type Result struct {
	Class             Class   `json:"class"`
	Reason            Reason  `json:"reason"`
	Excluded          bool    `json:"excluded"`
	Runway            string  `json:"runway,omitempty"`
	DistanceKm        float64 `json:"distance_km"`
	HeadingDiff       float64 `json:"heading_diff_deg"`
	ScheduleConfirmed bool    `json:"schedule_confirmed"`
}

// Engine holds the home airport geometry and the tuned thresholds
type Engine struct {
	homeLat    float64
	homeLon    float64
	homeCodes  map[string]struct{}
	satellites []config.SatelliteField
	params     config.ClassifierConfig
	ignored    map[string]struct{}
	prefixes   []string
	runways    *runway.Predictor
}

// NewEngine creates an engine for one home airport
func NewEngine(station config.StationConfig, params config.ClassifierConfig) *Engine {
	e := &Engine{
		homeLat:    station.Latitude,
		homeLon:    station.Longitude,
		homeCodes:  make(map[string]struct{}),
		satellites: append([]config.SatelliteField(nil), station.Satellites...),
		params:     params,
		ignored:    make(map[string]struct{}, len(params.IgnoredTypes)),
	}

	for _, code := range station.HomeCodes() {
		e.homeCodes[strings.ToUpper(code)] = struct{}{}
	}
	for _, t := range params.IgnoredTypes {
		e.ignored[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	for _, p := range params.IgnoredPrefixes {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			e.prefixes = append(e.prefixes, p)
		}
	}

	thresholds := make([]runway.Threshold, 0, len(station.Runways))
	for _, r := range station.Runways {
		thresholds = append(thresholds, runway.Threshold{ID: r.ID, Latitude: r.Latitude, Longitude: r.Longitude})
	}
	e.runways = runway.NewPredictor(station.Latitude, station.Longitude, thresholds, runway.Limits{
		MaxDistanceKm:  params.RunwayMaxDistanceKm,
		MaxAltitudeFt:  params.RunwayMaxAltitudeFt,
		MaxHeadingDiff: params.RunwayMaxHeadingDiff,
	})

	return e
}

// IsHome reports whether code names the home airport, in IATA or ICAO form
func (e *Engine) IsHome(code string) bool {
	_, ok := e.homeCodes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsIgnoredType reports whether a type code is a helicopter or light aircraft
func (e *Engine) IsIgnoredType(typeCode string) bool {
	t := strings.ToUpper(strings.TrimSpace(typeCode))
	if _, ok := e.ignored[t]; ok {
		return true
	}
	for _, p := range e.prefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// Classify evaluates one state vector. rec is nil when the route cache has
// no record for the callsign.
func (e *Engine) Classify(sv adsb.StateVector, typeCode string, rec *routes.Record) Result {
	p := e.params
	dist := geo.Distance(sv.Latitude, sv.Longitude, e.homeLat, e.homeLon)
	headingDiff := geo.AngularDifference(sv.HeadingDeg, geo.Bearing(sv.Latitude, sv.Longitude, e.homeLat, e.homeLon))

	res := Result{DistanceKm: dist, HeadingDiff: headingDiff}
	exclude := func(r Reason) Result {
		res.Class = Unclassified
		res.Reason = r
		res.Excluded = true
		return res
	}

	if sv.GroundSpeedKts < p.MinGroundSpeedKts {
		return exclude(ReasonBelowMinSpeed)
	}
	if sv.AltitudeFt > p.MaxAltitudeFt {
		return exclude(ReasonAboveMaxAltitude)
	}
	if e.IsIgnoredType(typeCode) {
		return exclude(ReasonIgnoredType)
	}

	origin, dest := routes.Unknown, routes.Unknown
	if rec != nil {
		origin, dest = rec.Origin, rec.Destination
	}
	destHome := e.IsHome(dest)
	originHome := e.IsHome(origin)

	vr, alt := sv.VerticalRateFPM, sv.AltitudeFt

	isArrival, arrivalReason := false, ReasonGeometry
	switch {
	case destHome:
		isArrival, arrivalReason = true, ReasonScheduleDestination
	case vr < 0 && alt < p.ArrivalMaxAltitudeFt && (dist < p.ArrivalMaxDistanceKm || headingDiff < p.ArrivalMaxHeadingDiff):
		isArrival = true
	case p.UnknownRouteFallback && dest == routes.Unknown &&
		vr < -p.UnknownRouteMinRateFPM && alt < p.UnknownRouteArrivalMaxAltFt:
		isArrival, arrivalReason = true, ReasonUnknownRoute
	}

	isDeparture, departureReason := false, ReasonGeometry
	switch {
	case originHome:
		isDeparture, departureReason = true, ReasonScheduleOrigin
	case vr > 0 && alt < p.DepartureMaxAltitudeFt && dist < p.DepartureMaxDistanceKm:
		isDeparture = true
	case p.UnknownRouteFallback && origin == routes.Unknown &&
		vr > p.UnknownRouteMinRateFPM && alt < p.UnknownRouteDepartureMaxAltFt:
		isDeparture, departureReason = true, ReasonUnknownRoute
	}

	if vr < 0 && alt < p.SatelliteMaxAltitudeFt && !destHome && e.nearSatellite(sv.Latitude, sv.Longitude) {
		return exclude(ReasonSatelliteField)
	}
	if isArrival && sv.Latitude > p.NorthernLatitude && alt < p.NorthernMaxAltitudeFt {
		return exclude(ReasonNorthernField)
	}

	switch {
	case isArrival:
		res.Class = Arrival
		res.Reason = arrivalReason
		res.ScheduleConfirmed = destHome
		res.Runway = e.runways.Predict(sv.Latitude, sv.Longitude, sv.HeadingDeg, alt)
	case isDeparture:
		res.Class = Departure
		res.Reason = departureReason
		res.ScheduleConfirmed = originHome
	default:
		res.Reason = ReasonNoMatch
	}
	return res
}

func (e *Engine) nearSatellite(lat, lon float64) bool {
	for _, s := range e.satellites {
		if geo.Distance(lat, lon, s.Latitude, s.Longitude) < e.params.SatelliteRadiusKm {
			return true
		}
	}
	return false
}
