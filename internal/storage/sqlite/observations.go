package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/flightboard/pkg/logger"
)

// Observation is one classified aircraft from one poll cycle
type Observation struct {
	ID              int64     `json:"id"`
	CycleID         string    `json:"cycle_id"`
	ObservedAt      time.Time `json:"observed_at"`
	Hex             string    `json:"hex"`
	Callsign        string    `json:"callsign"`
	Class           string    `json:"class"`
	Runway          string    `json:"runway,omitempty"`
	TypeCode        string    `json:"type_code"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	Latitude        float64   `json:"lat"`
	Longitude       float64   `json:"lon"`
	AltitudeFt      float64   `json:"altitude_ft"`
	GroundSpeedKts  float64   `json:"ground_speed_kts"`
	HeadingDeg      float64   `json:"heading_deg"`
	VerticalRateFPM float64   `json:"vertical_rate_fpm"`
	DistanceKm      float64   `json:"distance_km"`
}

// ObservationStorage keeps the per-cycle board history
type ObservationStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewObservationStorage creates the observation table on a shared connection
func NewObservationStorage(db *sql.DB, log *logger.Logger) (*ObservationStorage, error) {
	storage := &ObservationStorage{
		db:     db,
		logger: log.Named("sqlite-obs"),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *ObservationStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id TEXT NOT NULL,
			observed_at TIMESTAMP NOT NULL,
			hex TEXT NOT NULL,
			callsign TEXT NOT NULL,
			class TEXT NOT NULL,
			runway TEXT,
			type_code TEXT,
			origin TEXT,
			destination TEXT,
			latitude REAL,
			longitude REAL,
			altitude_ft REAL,
			ground_speed_kts REAL,
			heading_deg REAL,
			vertical_rate_fpm REAL,
			distance_km REAL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create observations table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_observations_callsign ON observations(callsign)`)
	if err != nil {
		return fmt.Errorf("failed to create callsign index: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_observations_observed_at ON observations(observed_at)`)
	if err != nil {
		return fmt.Errorf("failed to create observed_at index: %w", err)
	}

	return nil
}

// InsertObservations inserts one cycle's rows in a single transaction
func (s *ObservationStorage) InsertObservations(obs []Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO observations (
			cycle_id, observed_at, hex, callsign, class, runway, type_code, origin, destination,
			latitude, longitude, altitude_ft, ground_speed_kts, heading_deg, vertical_rate_fpm, distance_km
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare observation insert statement: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		_, err := stmt.Exec(
			o.CycleID,
			formatTime(o.ObservedAt),
			o.Hex,
			o.Callsign,
			o.Class,
			o.Runway,
			o.TypeCode,
			o.Origin,
			o.Destination,
			o.Latitude,
			o.Longitude,
			o.AltitudeFt,
			o.GroundSpeedKts,
			o.HeadingDeg,
			o.VerticalRateFPM,
			o.DistanceKm,
		)
		if err != nil {
			return fmt.Errorf("failed to insert observation for %s: %w", o.Callsign, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit observations batch: %w", err)
	}

	s.logger.Debug("Inserted observations batch",
		logger.Int("count", len(obs)))

	return nil
}

// GetHistory returns the newest observations for a callsign, newest first
func (s *ObservationStorage) GetHistory(callsign string, limit int) ([]Observation, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, cycle_id, observed_at, hex, callsign, class, runway, type_code, origin, destination,
			latitude, longitude, altitude_ft, ground_speed_kts, heading_deg, vertical_rate_fpm, distance_km
		FROM observations
		WHERE callsign = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT ?
	`, callsign, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query observation history: %w", err)
	}
	defer rows.Close()

	var history []Observation
	for rows.Next() {
		var o Observation
		var observedStr string
		var runway, typeCode, origin, dest sql.NullString

		if err := rows.Scan(
			&o.ID, &o.CycleID, &observedStr, &o.Hex, &o.Callsign, &o.Class,
			&runway, &typeCode, &origin, &dest,
			&o.Latitude, &o.Longitude, &o.AltitudeFt, &o.GroundSpeedKts,
			&o.HeadingDeg, &o.VerticalRateFPM, &o.DistanceKm,
		); err != nil {
			return nil, fmt.Errorf("failed to scan observation row: %w", err)
		}

		o.ObservedAt, err = time.Parse(time.RFC3339, observedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		o.Runway = runway.String
		o.TypeCode = typeCode.String
		o.Origin = origin.String
		o.Destination = dest.String

		history = append(history, o)
	}
	return history, rows.Err()
}

// PruneBefore deletes observations older than cutoff
func (s *ObservationStorage) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM observations WHERE observed_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune observations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned observations: %w", err)
	}
	if n > 0 {
		s.logger.Debug("Pruned observations", logger.Int64("count", n))
	}
	return n, nil
}
