package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yegors/flightboard/internal/routes"
	"github.com/yegors/flightboard/pkg/logger"
)

// RouteStorage persists route cache snapshots
type RouteStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewRouteStorage opens (or creates) the database at dbPath
func NewRouteStorage(dbPath string, log *logger.Logger) (*RouteStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := initRoutesTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &RouteStorage{
		db:     db,
		logger: storageLogger,
	}, nil
}

// Close closes the database connection
func (s *RouteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetDB returns the database connection
func (s *RouteStorage) GetDB() *sql.DB {
	return s.db
}

func initRoutesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS routes (
			callsign TEXT PRIMARY KEY,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			airline_iata TEXT,
			airline_icao TEXT,
			scheduled_time TIMESTAMP NOT NULL,
			actual_time TIMESTAMP,
			saved_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create routes table: %w", err)
	}
	return nil
}

// SaveRoutes replaces the stored snapshot with records
func (s *RouteStorage) SaveRoutes(records []routes.Record, savedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM routes`); err != nil {
		return fmt.Errorf("failed to clear routes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO routes (callsign, origin, destination, airline_iata, airline_icao, scheduled_time, actual_time, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare route insert statement: %w", err)
	}
	defer stmt.Close()

	saved := formatTime(savedAt)
	for _, r := range records {
		_, err := stmt.Exec(
			r.Callsign,
			r.Origin,
			r.Destination,
			r.AirlineIATA,
			r.AirlineICAO,
			formatTime(r.ScheduledTime),
			formatNullableTime(r.ActualTime),
			saved,
		)
		if err != nil {
			return fmt.Errorf("failed to insert route for %s: %w", r.Callsign, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit route snapshot: %w", err)
	}

	s.logger.Debug("Saved route snapshot", logger.Int("count", len(records)))
	return nil
}

// LoadRoutes returns the stored snapshot ordered by callsign
func (s *RouteStorage) LoadRoutes() ([]routes.Record, error) {
	rows, err := s.db.Query(`
		SELECT callsign, origin, destination, airline_iata, airline_icao, scheduled_time, actual_time
		FROM routes
		ORDER BY callsign
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var records []routes.Record
	for rows.Next() {
		var r routes.Record
		var scheduledStr string
		var iata, icao, actualStr sql.NullString

		if err := rows.Scan(&r.Callsign, &r.Origin, &r.Destination, &iata, &icao, &scheduledStr, &actualStr); err != nil {
			return nil, fmt.Errorf("failed to scan route row: %w", err)
		}
		r.AirlineIATA = iata.String
		r.AirlineICAO = icao.String

		r.ScheduledTime, err = time.Parse(time.RFC3339, scheduledStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse scheduled time for %s: %w", r.Callsign, err)
		}
		if actualStr.Valid && actualStr.String != "" {
			actual, err := time.Parse(time.RFC3339, actualStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse actual time for %s: %w", r.Callsign, err)
			}
			r.ActualTime = &actual
		}

		records = append(records, r)
	}
	return records, rows.Err()
}

// formatTime stores times as UTC RFC3339 so text comparison orders them
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatNullableTime formats a nullable time.Time for SQL
func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
