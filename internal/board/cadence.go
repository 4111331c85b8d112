package board

import (
	"time"

	"github.com/yegors/flightboard/internal/config"
)

// Band names the traffic period a poll falls in
type Band string

const (
	BandPeak   Band = "peak"
	BandMidDay Band = "midday"
	BandNight  Band = "night"
)

// Cadence maps local time of day to a poll interval
type Cadence struct {
	peak          time.Duration
	midDay        time.Duration
	night         time.Duration
	peakWindows   []config.HourRange
	midDayWindows []config.HourRange
	loc           *time.Location
}

// NewCadence builds a cadence from the poll config. Hours are read in loc.
func NewCadence(cfg config.PollConfig, loc *time.Location) *Cadence {
	if loc == nil {
		loc = time.UTC
	}
	return &Cadence{
		peak:          time.Duration(cfg.PeakIntervalSecs) * time.Second,
		midDay:        time.Duration(cfg.MidDayIntervalSecs) * time.Second,
		night:         time.Duration(cfg.NightIntervalSecs) * time.Second,
		peakWindows:   cfg.PeakWindows,
		midDayWindows: cfg.MidDayWindows,
		loc:           loc,
	}
}

// At returns the band and interval for t. Peak windows win over mid-day
// windows when they overlap.
func (c *Cadence) At(t time.Time) (Band, time.Duration) {
	hour := t.In(c.loc).Hour()
	if inWindows(hour, c.peakWindows) {
		return BandPeak, c.peak
	}
	if inWindows(hour, c.midDayWindows) {
		return BandMidDay, c.midDay
	}
	return BandNight, c.night
}

func inWindows(hour int, windows []config.HourRange) bool {
	for _, w := range windows {
		if hour >= w.Start && hour < w.End {
			return true
		}
	}
	return false
}
