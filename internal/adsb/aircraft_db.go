package adsb

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yegors/flightboard/pkg/logger"
)

// DefaultType is reported when nothing better is known
const DefaultType = "JET"

// AircraftDB maps 24-bit addresses to ICAO type codes. It is filled once
// at startup and read-only afterwards.
type AircraftDB struct {
	types map[string]string

	// Callsign prefix defaults for airlines that fly a single type
	prefixDefaults map[string]string
}

// NewAircraftDB returns an empty database with the built-in airline defaults
func NewAircraftDB() *AircraftDB {
	return &AircraftDB{
		types: make(map[string]string),
		prefixDefaults: map[string]string{
			"SWA": "B737",
		},
	}
}

// LoadAircraftDB loads the file at path. A missing file yields an empty
// database and a warning, not an error.
func LoadAircraftDB(path string, log *logger.Logger) (*AircraftDB, error) {
	db := NewAircraftDB()
	if path == "" {
		return db, nil
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Warn("Aircraft database not found, types fall back to callsign defaults", logger.String("path", path))
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open aircraft database: %w", err)
	}
	defer file.Close()

	count, err := db.Load(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load aircraft database %s: %w", path, err)
	}

	log.Info("Loaded aircraft data", logger.Int("count", count), logger.String("path", path))
	return db, nil
}

// Load reads either a headered CSV (icao24/typecode or address/model
// columns) or the headerless hex;registration;type format.
func (db *AircraftDB) Load(r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, err
	}
	firstLine := string(first)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	if strings.Contains(firstLine, ";") && !strings.Contains(firstLine, ",") {
		return db.loadSemicolon(br)
	}
	return db.loadCSV(br)
}

func (db *AircraftDB) loadSemicolon(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	count := 0
	for scanner.Scan() {
		// Format: Hex;Registration;Type;...
		parts := strings.Split(scanner.Text(), ";")
		if len(parts) < 3 {
			continue
		}
		if db.Set(parts[0], parts[2]) {
			count++
		}
	}
	return count, scanner.Err()
}

func (db *AircraftDB) loadCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	hexIdx, typeIdx := -1, -1
	for i, h := range header {
		switch cleanField(h) {
		case "ICAO24", "ADDRESS":
			if hexIdx < 0 {
				hexIdx = i
			}
		case "TYPECODE", "MODEL":
			if typeIdx < 0 {
				typeIdx = i
			}
		}
	}
	if hexIdx < 0 || typeIdx < 0 {
		return 0, fmt.Errorf("aircraft CSV needs icao24/address and typecode/model columns")
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows
			continue
		}
		if hexIdx >= len(record) || typeIdx >= len(record) {
			continue
		}
		if db.Set(record[hexIdx], record[typeIdx]) {
			count++
		}
	}
	return count, nil
}

// cleanField strips quotes and whitespace and upper-cases
func cleanField(v string) string {
	v = strings.NewReplacer(`"`, "", "'", "", "\uFEFF", "").Replace(v)
	return strings.ToUpper(strings.TrimSpace(v))
}

// Set records a type for an address. Returns false if either is blank.
func (db *AircraftDB) Set(hex, typeCode string) bool {
	h := strings.ToLower(cleanField(hex))
	t := cleanField(typeCode)
	if h == "" || t == "" {
		return false
	}
	db.types[h] = t
	return true
}

// Len returns the number of known addresses
func (db *AircraftDB) Len() int {
	return len(db.types)
}

// TypeFor resolves a type code: database entry, then the source's own
// type report, then the airline default for the callsign, then DefaultType.
func (db *AircraftDB) TypeFor(hex, callsign, hint string) string {
	if t, ok := db.types[strings.ToLower(strings.TrimSpace(hex))]; ok {
		return t
	}
	if hint != "" {
		return strings.ToUpper(hint)
	}
	cs := strings.ToUpper(strings.TrimSpace(callsign))
	for prefix, t := range db.prefixDefaults {
		if strings.HasPrefix(cs, prefix) {
			return t
		}
	}
	return DefaultType
}
