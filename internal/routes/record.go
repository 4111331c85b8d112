// Package routes keeps the callsign to schedule record cache for the home airport.
package routes

import (
	"strings"
	"time"
)

// Unknown marks an airport or airline code that could not be resolved
const Unknown = "---"

// Record is the schedule metadata for one callsign. One of Origin or
// Destination is the home airport.
type Record struct {
	Callsign      string     `json:"callsign"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	AirlineIATA   string     `json:"airline_iata"`
	AirlineICAO   string     `json:"airline_icao"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	ActualTime    *time.Time `json:"actual_time,omitempty"` // actual or estimated
}

// RelevanceTime is the actual/estimated time when known, else the scheduled time
func (r Record) RelevanceTime() time.Time {
	if r.ActualTime != nil {
		return *r.ActualTime
	}
	return r.ScheduledTime
}

// Known reports whether the record came from a schedule rather than Fallback
func (r Record) Known() bool {
	return !r.ScheduledTime.IsZero()
}

// NormalizeCallsign upper-cases and trims a callsign for use as a cache key
func NormalizeCallsign(callsign string) string {
	return strings.ToUpper(strings.TrimSpace(callsign))
}

// Fallback is the record shown for a callsign the cache does not know.
// The airline codes are guessed from the first three letters.
func Fallback(callsign string) Record {
	cs := NormalizeCallsign(callsign)
	if cs == "" {
		return Record{Origin: Unknown, Destination: Unknown, AirlineIATA: Unknown, AirlineICAO: Unknown}
	}
	prefix := cs
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return Record{
		Callsign:    cs,
		Origin:      Unknown,
		Destination: Unknown,
		AirlineIATA: prefix,
		AirlineICAO: prefix,
	}
}
