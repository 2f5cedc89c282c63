// Package sqlite provides SQLite-backed persistence for the engine.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	engineerrors "github.com/duskmere/worldengine/internal/errors"
	"github.com/duskmere/worldengine/internal/platform/storage/sqlitemigrate"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/storage/sqlite/migrations"
	"github.com/duskmere/worldengine/internal/world"
	_ "modernc.org/sqlite"
)

// defaultWorldID is assigned to worlds saved without an explicit id.
const defaultWorldID = 1

// Store provides SQLite-backed world, telemetry, and report persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens an engine SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadDefault returns the default world, or storage.ErrNotFound when no
// world has been saved yet.
func (s *Store) LoadDefault(ctx context.Context) (*world.World, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, current_turn, threat_level, rng_seed, flags
FROM worlds ORDER BY id LIMIT 1`)

	var w world.World
	var flagsJSON string
	err := row.Scan(&w.ID, &w.Name, &w.CurrentTurn, &w.ThreatLevel, &w.RNGSeed, &flagsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan world: %w", err)
	}
	if err := json.Unmarshal([]byte(flagsJSON), &w.Flags); err != nil {
		return nil, fmt.Errorf("decode world flags: %w", err)
	}
	return &w, nil
}

// Save upserts the world row, serializing the flag sub-records to JSON.
func (s *Store) Save(ctx context.Context, w *world.World) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if w == nil {
		return engineerrors.New(engineerrors.CodeWorldRequired, "world is required")
	}
	if w.ID == 0 {
		w.ID = defaultWorldID
	}

	flagsJSON, err := json.Marshal(w.Flags)
	if err != nil {
		return fmt.Errorf("encode world flags: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO worlds (id, name, current_turn, threat_level, rng_seed, flags, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    current_turn = excluded.current_turn,
    threat_level = excluded.threat_level,
    rng_seed = excluded.rng_seed,
    flags = excluded.flags,
    updated_at = excluded.updated_at`,
		w.ID, w.Name, w.CurrentTurn, w.ThreatLevel, w.RNGSeed, string(flagsJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	return nil
}

// AppendTelemetryEvent persists one telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (ts, severity, source, message, turn)
VALUES (?, ?, ?, ?, ?)`,
		ts.Unix(), evt.Severity, evt.Source, evt.Message, evt.Turn)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// AppendReportRow persists one narrative quality report row.
func (s *Store) AppendReportRow(ctx context.Context, row storage.ReportRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	created := row.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO narrative_reports
    (world_seed, ticks, injections, distinct_kinds, final_tension, tension_peak,
     quests_completed, quests_failed, cataclysm_phase, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.WorldSeed, row.Ticks, row.Injections, row.DistinctKinds, row.FinalTension,
		row.TensionPeak, row.QuestsCompleted, row.QuestsFailed, row.CataclysmPhase, created.Unix())
	if err != nil {
		return fmt.Errorf("append report row: %w", err)
	}
	return nil
}
