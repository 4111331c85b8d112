// Package board runs the schedule refresh and telemetry poll loops and
// publishes the classified arrivals and departures.
package board

import (
	"sort"
	"time"

	"github.com/yegors/flightboard/internal/adsb"
	"github.com/yegors/flightboard/internal/classify"
	"github.com/yegors/flightboard/internal/routes"
)

// Flight is one row of the board
type Flight struct {
	State           adsb.StateVector `json:"state"`
	TypeCode        string           `json:"type_code"`
	Route           routes.Record    `json:"route"`
	RouteKnown      bool             `json:"route_known"`
	Runway          string           `json:"runway,omitempty"` // arrivals only
	DistanceKm      float64          `json:"distance_km"`
	MagneticHeading float64          `json:"magnetic_heading_deg"`
	Reason          classify.Reason  `json:"reason"`
}

// CycleStats counts what one poll did with the aircraft it saw
type CycleStats struct {
	Observed     int `json:"observed"`
	NoCallsign   int `json:"no_callsign"`
	Excluded     int `json:"excluded"`
	Unclassified int `json:"unclassified"`
}

// Board is an immutable snapshot published after each poll
type Board struct {
	CycleID    string     `json:"cycle_id"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Band       Band       `json:"band"`
	Arrivals   []Flight   `json:"arrivals"`
	Departures []Flight   `json:"departures"`
	Stats      CycleStats `json:"stats"`
}

func emptyBoard() *Board {
	return &Board{Arrivals: []Flight{}, Departures: []Flight{}}
}

// sortByAltitude orders lowest first, keeping feed order for equal altitudes
func sortByAltitude(flights []Flight) {
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].State.AltitudeFt < flights[j].State.AltitudeFt
	})
}
