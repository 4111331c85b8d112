package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/flightboard/internal/routes"
	"github.com/yegors/flightboard/pkg/logger"
)

func vegas(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func newTestParser(t *testing.T) (*Parser, *time.Location) {
	loc := vegas(t)
	return NewParser("LAS", loc, nil, nil, logger.NewNop()), loc
}

func TestEndToEndSouthwestArrival(t *testing.T) {
	p, loc := newTestParser(t)
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, loc)

	rows := []Row{{
		Direction:     Arrival,
		Ident:         "SWA100",
		Counterpart:   "PHX",
		ScheduledText: "3:20 PM",
		Airline:       "SOUTHWEST AIRLINES",
	}}
	records, dropped := p.Parse(rows, now)
	require.Zero(t, dropped)

	cache := routes.NewCache(routes.Options{AdmissionWindow: time.Hour, ActualGrace: 30 * time.Minute}, logger.NewNop())
	cache.Merge(records, now)

	rec, ok := cache.Lookup("SWA100")
	require.True(t, ok)
	assert.Equal(t, "LAS", rec.Destination)
	assert.Equal(t, "PHX", rec.Origin)
	assert.Equal(t, "WN", rec.AirlineIATA)
	assert.Equal(t, "SWA", rec.AirlineICAO)
	assert.True(t, rec.ScheduledTime.Equal(now.Add(20*time.Minute)))
	assert.Nil(t, rec.ActualTime)
}

func TestParseTimes(t *testing.T) {
	p, loc := newTestParser(t)
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, loc)
	today := func(h, m int) time.Time { return time.Date(2025, 3, 14, h, m, 0, 0, loc) }

	tests := []struct {
		text      string
		scheduled time.Time
		estimated time.Time
	}{
		{"4:20p", today(16, 20), time.Time{}},
		{"4:20 PM", today(16, 20), time.Time{}},
		{"4:20 p.m.", today(16, 20), time.Time{}},
		{"4:20p *", today(16, 20), time.Time{}},
		{"16:20", today(16, 20), time.Time{}},
		{"9:05a", today(9, 5), time.Time{}},
		{"12:10 PM", today(12, 10), time.Time{}},
		{"4:20 PM / 4:35 PM", today(16, 20), today(16, 35)},
		{"4:20 PM / Delayed", today(16, 20), time.Time{}},
		{"16:20 Arrived", today(16, 20), time.Time{}},
		{"15:20 arr", today(15, 20), time.Time{}},
		{"4:20 PM Approx", today(16, 20), time.Time{}},
		{"4:20p arrived", today(16, 20), time.Time{}},
		{"4:20 Approx", today(4, 20), time.Time{}},
		{"9:05am", today(9, 5), time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sched, est := p.ParseTimes(tt.text, now)
			assert.True(t, tt.scheduled.Equal(sched), "got %v", sched)
			if tt.estimated.IsZero() {
				assert.Nil(t, est)
			} else {
				require.NotNil(t, est)
				assert.True(t, tt.estimated.Equal(*est), "got %v", *est)
			}
		})
	}
}

func TestParseTimesRejectsGarbage(t *testing.T) {
	p, loc := newTestParser(t)
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, loc)

	for _, text := range []string{"", "TBD", "25:00", "13:00 PM", "0:30 AM", "4:75p"} {
		sched, est := p.ParseTimes(text, now)
		assert.True(t, sched.IsZero(), text)
		assert.Nil(t, est, text)
	}
}

func TestParseTimesCrossMidnight(t *testing.T) {
	p, loc := newTestParser(t)

	lateEvening := time.Date(2025, 3, 14, 23, 50, 0, 0, loc)
	sched, _ := p.ParseTimes("12:05a", lateEvening)
	assert.True(t, time.Date(2025, 3, 15, 0, 5, 0, 0, loc).Equal(sched), "got %v", sched)

	justAfterMidnight := time.Date(2025, 3, 15, 0, 10, 0, 0, loc)
	sched, _ = p.ParseTimes("11:50 PM", justAfterMidnight)
	assert.True(t, time.Date(2025, 3, 14, 23, 50, 0, 0, loc).Equal(sched), "got %v", sched)
}

func TestParseStatus(t *testing.T) {
	p, loc := newTestParser(t)
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, loc)

	got := p.ParseStatus("Departed at 2:55 PM", now)
	require.NotNil(t, got)
	assert.True(t, time.Date(2025, 3, 14, 14, 55, 0, 0, loc).Equal(*got))

	got = p.ParseStatus("Landed 2:40p", now)
	require.NotNil(t, got)
	assert.Equal(t, 40, got.Minute())

	assert.Nil(t, p.ParseStatus("On Time", now))
	assert.Nil(t, p.ParseStatus("Departed", now))
	assert.Nil(t, p.ParseStatus("", now))
}

func TestParseCounterpart(t *testing.T) {
	tests := map[string]string{
		"Dallas-Fort Worth Intl (DFW)": "DFW",
		"Phoenix (PHX)":                "PHX",
		"Toronto (Terminal 3) (YYZ)":   "YYZ",
		"London Heathrow (EGLL)":       "EGLL",
		"phx":                          "PHX",
		" KDEN ":                       "KDEN",
		"Somewhere":                    routes.Unknown,
		"":                             routes.Unknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseCounterpart(in), in)
	}
}

func TestResolveAirline(t *testing.T) {
	p := NewParser("LAS", time.UTC,
		map[string]string{"Sun Country Airlines": "sy"},
		map[string]string{"SY": "SCX"},
		logger.NewNop())

	tests := []struct {
		airline, ident string
		iata, icao     string
	}{
		{"SOUTHWEST AIRLINES", "WN100", "WN", "SWA"},
		{"southwest airlines ", "SWA100", "WN", "SWA"},
		{"Delta Air Lines", "DL5", "DL", "DAL"},
		{"WN", "100", "WN", "SWA"},
		{"AAL", "AAL1", "AA", "AAL"},
		{"Sun Country Airlines", "SY401", "SY", "SCX"},
		{"Hawaiian Airlines", "HA11", "HA", "HA"},
		{"", "SWA100", "WN", "SWA"},
		{"", "F9123", "F9", "FFT"},
		{"", "UA220", "UA", "UAL"},
		{"", "EJA123", "EJA", "EJA"},
		{"Unknown Carrier", "4O123", "4O", "4O"},
		{"", "X", routes.Unknown, routes.Unknown},
	}
	for _, tt := range tests {
		iata, icao := p.ResolveAirline(tt.airline, tt.ident)
		assert.Equal(t, tt.iata, iata, "%s/%s", tt.airline, tt.ident)
		assert.Equal(t, tt.icao, icao, "%s/%s", tt.airline, tt.ident)
	}
}

func TestBuildCallsign(t *testing.T) {
	assert.Equal(t, "SWA100", BuildCallsign("WN100", "WN", "SWA"))
	assert.Equal(t, "SWA100", BuildCallsign("swa100", "WN", "SWA"))
	assert.Equal(t, "SWA100", BuildCallsign("100", "WN", "SWA"))
	assert.Equal(t, "FFT123", BuildCallsign("F9123", "F9", "FFT"))
	assert.Equal(t, "N123AB", BuildCallsign("N123AB", routes.Unknown, routes.Unknown))
	assert.Equal(t, "1", BuildCallsign("1", routes.Unknown, routes.Unknown))
}

func TestParseRowDeparture(t *testing.T) {
	p, loc := newTestParser(t)
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, loc)

	rec, err := p.ParseRow(Row{
		Direction:     "Departures",
		Ident:         "WN 1234",
		Counterpart:   "Denver Intl (DEN)",
		ScheduledText: "3:30 PM",
		Status:        "Departed at 3:05 PM",
		Airline:       "Southwest Airlines",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "SWA1234", rec.Callsign)
	assert.Equal(t, "LAS", rec.Origin)
	assert.Equal(t, "DEN", rec.Destination)
	require.NotNil(t, rec.ActualTime)
	assert.True(t, time.Date(2025, 3, 14, 15, 5, 0, 0, loc).Equal(*rec.ActualTime))
}

func TestParseRowActualPrecedence(t *testing.T) {
	p, loc := newTestParser(t)
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, loc)

	rec, err := p.ParseRow(Row{
		Direction:     Arrival,
		Ident:         "AA10",
		Counterpart:   "Dallas (DFW)",
		ScheduledText: "3:30 PM / 3:45 PM",
		ActualText:    "3:50 PM",
		Status:        "Arrived at 3:55 PM",
		Airline:       "American Airlines",
	}, now)
	require.NoError(t, err)
	require.NotNil(t, rec.ActualTime)
	assert.Equal(t, 45, rec.ActualTime.Minute(), "estimated time wins")

	rec, err = p.ParseRow(Row{
		Direction:     Arrival,
		Ident:         "AA10",
		Counterpart:   "Dallas (DFW)",
		ScheduledText: "3:30 PM",
		ActualText:    "3:50 PM",
		Status:        "Arrived at 3:55 PM",
	}, now)
	require.NoError(t, err)
	require.NotNil(t, rec.ActualTime)
	assert.Equal(t, 50, rec.ActualTime.Minute())
	assert.Equal(t, "AAL10", rec.Callsign)
}

func TestParseDropsBadRows(t *testing.T) {
	p, loc := newTestParser(t)
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, loc)

	records, dropped := p.Parse([]Row{
		{Direction: Arrival, Ident: "", Counterpart: "PHX", ScheduledText: "3:20 PM"},
		{Direction: Arrival, Ident: "WN1", Counterpart: "PHX", ScheduledText: "Cancelled"},
		{Direction: "sideways", Ident: "WN2", Counterpart: "PHX", ScheduledText: "3:20 PM"},
		{Direction: Arrival, Ident: "WN3", Counterpart: "garbled", ScheduledText: "3:20 PM"},
	}, now)

	assert.Equal(t, 3, dropped)
	require.Len(t, records, 1)
	rec := records["SWA3"]
	assert.Equal(t, routes.Unknown, rec.Origin, "unparsable counterpart becomes the sentinel")
	assert.Equal(t, "LAS", rec.Destination)
}
