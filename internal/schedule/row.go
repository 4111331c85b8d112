package schedule

import (
	"context"
	"fmt"
	"strings"
)

// Direction says which panel a row came from
type Direction string

const (
	Arrival   Direction = "arrival"
	Departure Direction = "departure"
)

// ParseDirection accepts "arrival(s)" or "departure(s)" in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrival", "arrivals", "arr":
		return Arrival, nil
	case "departure", "departures", "dep":
		return Departure, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Row is one raw line of an arrivals or departures panel
type Row struct {
	Direction     Direction `json:"direction"`
	Ident         string    `json:"ident"`       // Flight number ("WN100") or callsign ("SWA100")
	Counterpart   string    `json:"counterpart"` // "Phoenix Sky Harbor (PHX)" or a bare code
	ScheduledText string    `json:"scheduled"`   // "4:20p", "4:20 PM / 4:35 PM", "16:20"
	ActualText    string    `json:"actual,omitempty"`
	Status        string    `json:"status,omitempty"` // "Departed at 4:20 PM", "On time", ...
	Airline       string    `json:"airline,omitempty"`
}

// Provider fetches the raw schedule rows for an airport
type Provider interface {
	FetchSchedule(ctx context.Context, homeAirport string) ([]Row, error)
}
