package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yegors/flightboard/internal/routes"
	"github.com/yegors/flightboard/pkg/logger"
)

var (
	errMissingIdent     = errors.New("row has no flight number")
	errMissingScheduled = errors.New("row has no parsable scheduled time")
)

var (
	clockRe       = regexp.MustCompile(`(\d{1,2}):(\d{2})(?:\s*([aApP])(?:\.?\s*[mM])?\.?\b)?`)
	statusTimeRe  = regexp.MustCompile(`(?i)\b(?:departed|arrived|landed)\b(.*)$`)
	codeInParenRe = regexp.MustCompile(`\(([A-Za-z0-9]{3,4})\)`)
	bareCodeRe    = regexp.MustCompile(`^[A-Za-z0-9]{3,4}$`)
)

// Parser turns panel rows into route records for one home airport
type Parser struct {
	home       string
	loc        *time.Location
	nameToIATA map[string]string
	iataToICAO map[string]string
	icaoToIATA map[string]string
	logger     *logger.Logger
}

// NewParser creates a parser. Clock times on the panels are read in loc.
// extraNames and extraICAO extend the built-in airline tables.
func NewParser(home string, loc *time.Location, extraNames, extraICAO map[string]string, log *logger.Logger) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	p := &Parser{
		home:       strings.ToUpper(home),
		loc:        loc,
		nameToIATA: make(map[string]string, len(airlineNameToIATA)+len(extraNames)),
		iataToICAO: make(map[string]string, len(iataToICAO)+len(extraICAO)),
		icaoToIATA: make(map[string]string),
		logger:     log.Named("schedule"),
	}
	for k, v := range airlineNameToIATA {
		p.nameToIATA[k] = v
	}
	for k, v := range extraNames {
		p.nameToIATA[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	for k, v := range iataToICAO {
		p.iataToICAO[k] = v
	}
	for k, v := range extraICAO {
		p.iataToICAO[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	for iata, icao := range p.iataToICAO {
		p.icaoToIATA[icao] = iata
	}
	return p
}

// Parse converts rows into records keyed by callsign. Rows that cannot be
// parsed are dropped and counted. A later row for the same callsign wins.
func (p *Parser) Parse(rows []Row, now time.Time) (map[string]routes.Record, int) {
	records := make(map[string]routes.Record, len(rows))
	dropped := 0
	for _, row := range rows {
		rec, err := p.ParseRow(row, now)
		if err != nil {
			dropped++
			p.logger.Debug("Dropping schedule row",
				logger.String("ident", row.Ident),
				logger.String("direction", string(row.Direction)),
				logger.Error(err))
			continue
		}
		records[rec.Callsign] = rec
	}
	return records, dropped
}

// ParseRow converts one row
func (p *Parser) ParseRow(row Row, now time.Time) (routes.Record, error) {
	dir, err := ParseDirection(string(row.Direction))
	if err != nil {
		return routes.Record{}, err
	}

	ident := strings.ToUpper(strings.Join(strings.Fields(row.Ident), ""))
	if ident == "" {
		return routes.Record{}, errMissingIdent
	}

	scheduled, estimated := p.ParseTimes(row.ScheduledText, now)
	if scheduled.IsZero() {
		return routes.Record{}, fmt.Errorf("%w: %q", errMissingScheduled, row.ScheduledText)
	}

	actual := estimated
	if actual == nil && row.ActualText != "" {
		if t, ok := p.parseClock(row.ActualText, now); ok {
			actual = &t
		}
	}
	if actual == nil {
		actual = p.ParseStatus(row.Status, now)
	}

	iata, icao := p.ResolveAirline(row.Airline, ident)
	rec := routes.Record{
		Callsign:      BuildCallsign(ident, iata, icao),
		AirlineIATA:   iata,
		AirlineICAO:   icao,
		ScheduledTime: scheduled,
		ActualTime:    actual,
	}

	counterpart := ParseCounterpart(row.Counterpart)
	if dir == Arrival {
		rec.Origin, rec.Destination = counterpart, p.home
	} else {
		rec.Origin, rec.Destination = p.home, counterpart
	}
	return rec, nil
}

// ParseTimes reads "scheduled" or "scheduled / estimated". A zero
// scheduled time means the text could not be parsed.
func (p *Parser) ParseTimes(text string, now time.Time) (time.Time, *time.Time) {
	parts := strings.SplitN(text, "/", 2)
	scheduled, ok := p.parseClock(parts[0], now)
	if !ok {
		return time.Time{}, nil
	}
	if len(parts) == 2 {
		if est, ok := p.parseClock(parts[1], now); ok {
			return scheduled, &est
		}
	}
	return scheduled, nil
}

// ParseStatus extracts the time from "Departed at 4:20 PM" style statuses
func (p *Parser) ParseStatus(status string, now time.Time) *time.Time {
	m := statusTimeRe.FindStringSubmatch(status)
	if m == nil {
		return nil
	}
	t, ok := p.parseClock(m[1], now)
	if !ok {
		return nil
	}
	return &t
}

// parseClock finds a wall-clock time in text and places it on the day
// (yesterday, today or tomorrow in the station zone) nearest to now
func (p *Parser) parseClock(text string, now time.Time) (time.Time, bool) {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return time.Time{}, false
	}

	switch strings.ToUpper(m[3]) {
	case "A", "P":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		hour %= 12
		if strings.EqualFold(m[3], "P") {
			hour += 12
		}
	default:
		if hour > 23 {
			return time.Time{}, false
		}
	}

	return nearestDay(hour, minute, now, p.loc), true
}

func nearestDay(hour, minute int, now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	var best time.Time
	var bestDiff time.Duration
	for i, offset := range []int{0, 1, -1} {
		c := time.Date(local.Year(), local.Month(), local.Day()+offset, hour, minute, 0, 0, loc)
		diff := c.Sub(now)
		if diff < 0 {
			diff = -diff
		}
		if i == 0 || diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	return best
}

// ParseCounterpart pulls the airport code out of "City Name (XXX)", accepts
// a bare 3-4 character code, and returns routes.Unknown otherwise
func ParseCounterpart(text string) string {
	if m := codeInParenRe.FindAllStringSubmatch(text, -1); len(m) > 0 {
		return strings.ToUpper(m[len(m)-1][1])
	}
	text = strings.TrimSpace(text)
	if bareCodeRe.MatchString(text) {
		return strings.ToUpper(text)
	}
	return routes.Unknown
}

// ResolveAirline maps the panel's airline column (a full name or a code)
// to IATA and ICAO codes, falling back to the flight number's prefix
func (p *Parser) ResolveAirline(airline, ident string) (string, string) {
	name := strings.ToUpper(strings.TrimSpace(airline))

	iata := ""
	if code, ok := p.nameToIATA[name]; ok {
		iata = code
	} else if _, ok := p.iataToICAO[name]; ok {
		iata = name
	} else if code, ok := p.icaoToIATA[name]; ok {
		iata = code
	}
	if iata != "" {
		return iata, p.icaoFor(iata)
	}
	return p.airlineFromIdent(ident)
}

func (p *Parser) icaoFor(iata string) string {
	if icao, ok := p.iataToICAO[iata]; ok {
		return icao
	}
	return iata
}

func (p *Parser) airlineFromIdent(ident string) (string, string) {
	letters := 0
	for letters < len(ident) && ident[letters] >= 'A' && ident[letters] <= 'Z' {
		letters++
	}

	if letters >= 3 {
		icao := ident[:3]
		if iata, ok := p.icaoToIATA[icao]; ok {
			return iata, icao
		}
		return icao, icao
	}
	if len(ident) >= 2 {
		iata := ident[:2]
		return iata, p.icaoFor(iata)
	}
	return routes.Unknown, routes.Unknown
}

// BuildCallsign turns a flight number into the ICAO callsign broadcast
// by the aircraft: "WN100" becomes "SWA100", "SWA100" is kept.
func BuildCallsign(ident, iata, icao string) string {
	ident = strings.ToUpper(strings.TrimSpace(ident))
	switch {
	case icao != "" && strings.HasPrefix(ident, icao):
		return ident
	case iata != "" && iata != routes.Unknown && strings.HasPrefix(ident, iata):
		return icao + ident[len(iata):]
	case isDigits(ident) && icao != routes.Unknown:
		return icao + ident
	default:
		return ident
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
