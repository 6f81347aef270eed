// Package sensordb keeps sensor descriptors in SQLite so a lookup table can
// be rebuilt by serial number without the original metadata file.
package sensordb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
	"github.com/banshee-data/xyzlut/internal/monitoring"
	"github.com/banshee-data/xyzlut/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when no sensor matches the lookup.
var ErrNotFound = errors.New("sensor not found")

var logf = monitoring.Component("sensordb")

// Record summarises a stored sensor.
type Record struct {
	ID        string
	Serial    string
	ProdLine  string
	LidarMode string
	Rows      int
	Columns   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DB is a sensor metadata store.
type DB struct {
	*sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the store at path and applies pending
// migrations. Use ":memory:" for a throwaway store.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)

	s := &DB{DB: db, clock: timeutil.RealClock{}}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp applies all pending migrations. Already being at the latest
// version is not an error.
func (s *DB) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close s.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the applied schema version, or 0 if none.
func (s *DB) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// SetClock replaces the clock used for record timestamps.
func (s *DB) SetClock(c timeutil.Clock) { s.clock = c }

// Put stores info under its serial number, replacing any earlier
// descriptor for the same serial. raw is stored verbatim when non-empty,
// otherwise info is re-encoded. The sensor id is stable across updates.
func (s *DB) Put(info *metadata.SensorInfo, raw []byte) (string, error) {
	if info == nil || info.ProdSN == "" {
		return "", fmt.Errorf("sensor metadata has no serial number")
	}
	if len(raw) == 0 {
		var err error
		if raw, err = info.Marshal(); err != nil {
			return "", fmt.Errorf("encode sensor metadata: %w", err)
		}
	}

	now := s.clock.Now().Unix()
	_, err := s.Exec(`
		INSERT INTO sensors (sensor_id, serial, prod_line, lidar_mode, pixel_rows, pixel_columns, metadata_json, created_unix, updated_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(serial) DO UPDATE SET
			prod_line = excluded.prod_line,
			lidar_mode = excluded.lidar_mode,
			pixel_rows = excluded.pixel_rows,
			pixel_columns = excluded.pixel_columns,
			metadata_json = excluded.metadata_json,
			updated_unix = excluded.updated_unix
	`, uuid.NewString(), info.ProdSN, info.ProdLine, info.LidarMode,
		info.Format.PixelsPerColumn, info.Format.ColumnsPerFrame, string(raw), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to store sensor %s: %w", info.ProdSN, err)
	}

	var id string
	if err := s.QueryRow(`SELECT sensor_id FROM sensors WHERE serial = ?`, info.ProdSN).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to read back sensor %s: %w", info.ProdSN, err)
	}
	logf("stored sensor %s (%s) as %s", info.ProdSN, info.ProdLine, id)
	return id, nil
}

// GetBySerial returns the descriptor stored for serial.
func (s *DB) GetBySerial(serial string) (*metadata.SensorInfo, error) {
	return s.get(`SELECT metadata_json FROM sensors WHERE serial = ?`, serial)
}

// Get returns the descriptor stored under id.
func (s *DB) Get(id string) (*metadata.SensorInfo, error) {
	return s.get(`SELECT metadata_json FROM sensors WHERE sensor_id = ?`, id)
}

func (s *DB) get(query, key string) (*metadata.SensorInfo, error) {
	var raw string
	err := s.QueryRow(query, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor %s: %w", key, err)
	}
	info, err := metadata.Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("stored metadata for %s: %w", key, err)
	}
	return info, nil
}

// List returns all stored sensors ordered by serial.
func (s *DB) List() ([]Record, error) {
	rows, err := s.Query(`
		SELECT sensor_id, serial, prod_line, lidar_mode, pixel_rows, pixel_columns, created_unix, updated_unix
		FROM sensors ORDER BY serial
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var created, updated int64
		if err := rows.Scan(&r.ID, &r.Serial, &r.ProdLine, &r.LidarMode, &r.Rows, &r.Columns, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan sensor row: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0)
		r.UpdatedAt = time.Unix(updated, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes the sensor with the given serial.
func (s *DB) Delete(serial string) error {
	res, err := s.Exec(`DELETE FROM sensors WHERE serial = ?`, serial)
	if err != nil {
		return fmt.Errorf("failed to delete sensor %s: %w", serial, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	return nil
}
