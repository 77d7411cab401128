// Package sqlite archives each analysis run's input batch and reconstructed
// trajectories. Detection results are never persisted; they are recomputed
// from the batch on demand.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/skyward-ops/sectorwatch/internal/flight"
	"github.com/skyward-ops/sectorwatch/internal/trajectory"
	"github.com/skyward-ops/sectorwatch/pkg/logger"
	_ "modernc.org/sqlite"
)

// FlightStorage is a SQLite-based archive for flight batches
type FlightStorage struct {
	db  *sql.DB
	log *logger.Logger
}

// NewFlightStorage opens (or creates) the archive database at dbPath
func NewFlightStorage(dbPath string, log *logger.Logger) (*FlightStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath))

	// Open the database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Set pragmas for better performance and concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Create tables if they don't exist
	if err := initDatabase(db, storageLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &FlightStorage{db: db, log: storageLogger}, nil
}

// Close closes the database connection
func (s *FlightStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initDatabase initializes the database schema
func initDatabase(db *sql.DB, log *logger.Logger) error {
	log.Info("Initializing database schema")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS flights (
			acid TEXT PRIMARY KEY,
			plane_type TEXT,
			route TEXT,
			altitude INTEGER,
			departure_airport TEXT,
			arrival_airport TEXT,
			departure_time INTEGER,
			aircraft_speed REAL,
			passengers INTEGER,
			is_cargo INTEGER DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create flights table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trajectory_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			acid TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			FOREIGN KEY (acid) REFERENCES flights(acid) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create trajectory_samples table: %w", err)
	}

	// Create indexes for efficient querying
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_trajectory_samples_acid ON trajectory_samples(acid)`)
	if err != nil {
		return fmt.Errorf("failed to create index on trajectory_samples.acid: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_trajectory_samples_timestamp ON trajectory_samples(timestamp)`)
	if err != nil {
		return fmt.Errorf("failed to create index on trajectory_samples.timestamp: %w", err)
	}

	return nil
}

// ArchiveBatch replaces the archived batch with the given flights and their
// reconstructed trajectories. One transaction covers both tables so a failed
// run never leaves a half-written archive.
func (s *FlightStorage) ArchiveBatch(flights []*flight.Flight, trajectories map[string]trajectory.Trajectory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.log.Error("Failed to rollback transaction", logger.Error(rollbackErr))
			}
		}
	}()

	if _, err = tx.Exec("DELETE FROM trajectory_samples"); err != nil {
		return fmt.Errorf("failed to clear trajectory samples: %w", err)
	}
	if _, err = tx.Exec("DELETE FROM flights"); err != nil {
		return fmt.Errorf("failed to clear flights: %w", err)
	}

	flightStmt, err := tx.Prepare(`
		INSERT INTO flights (
			acid, plane_type, route, altitude, departure_airport,
			arrival_airport, departure_time, aircraft_speed, passengers, is_cargo
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare flight insert: %w", err)
	}
	defer flightStmt.Close()

	for _, f := range flights {
		if _, err = flightStmt.Exec(
			f.ACID, f.PlaneType, f.Route, f.Altitude, f.DepartureAirport,
			f.ArrivalAirport, f.DepartureTime, f.AircraftSpeed, f.Passengers,
			boolToInt(f.IsCargo),
		); err != nil {
			return fmt.Errorf("failed to insert flight %s: %w", f.ACID, err)
		}
	}

	sampleStmt, err := tx.Prepare(`
		INSERT INTO trajectory_samples (acid, timestamp, lat, lon)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer sampleStmt.Close()

	sampleCount := 0
	for acid, traj := range trajectories {
		for _, sample := range traj.Samples(acid) {
			if _, err = sampleStmt.Exec(sample.ACID, sample.Timestamp, sample.Lat, sample.Lon); err != nil {
				return fmt.Errorf("failed to insert sample for %s: %w", acid, err)
			}
			sampleCount++
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}

	s.log.Info("Archived batch",
		logger.Int("flights", len(flights)),
		logger.Int("trajectories", len(trajectories)),
		logger.Int("samples", sampleCount))

	return nil
}

// GetFlights returns the archived batch ordered by ACID
func (s *FlightStorage) GetFlights() ([]*flight.Flight, error) {
	rows, err := s.db.Query(`
		SELECT acid, plane_type, route, altitude, departure_airport,
			arrival_airport, departure_time, aircraft_speed, passengers, is_cargo
		FROM flights
		ORDER BY acid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := []*flight.Flight{}
	for rows.Next() {
		var f flight.Flight
		var altitude sql.NullInt64
		var isCargo int

		if err := rows.Scan(&f.ACID, &f.PlaneType, &f.Route, &altitude, &f.DepartureAirport,
			&f.ArrivalAirport, &f.DepartureTime, &f.AircraftSpeed, &f.Passengers, &isCargo); err != nil {
			return nil, err
		}

		if altitude.Valid {
			alt := int(altitude.Int64)
			f.Altitude = &alt
		}
		f.IsCargo = isCargo != 0

		flights = append(flights, &f)
	}

	return flights, rows.Err()
}

// GetTrajectory returns up to limit archived samples for one flight in
// ascending time order. limit <= 0 returns all samples.
func (s *FlightStorage) GetTrajectory(acid string, limit int) ([]trajectory.Sample, error) {
	query := `
		SELECT acid, timestamp, lat, lon
		FROM trajectory_samples
		WHERE acid = ?
		ORDER BY timestamp ASC
	`
	args := []any{acid}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := []trajectory.Sample{}
	for rows.Next() {
		var sample trajectory.Sample
		if err := rows.Scan(&sample.ACID, &sample.Timestamp, &sample.Lat, &sample.Lon); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
