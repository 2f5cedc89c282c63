// Package memory provides in-memory stores for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"

	"github.com/duskmere/worldengine/internal/errors"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/world"
)

// Store keeps the world and telemetry in process memory. Loads and saves
// deep-copy through the world's canonical JSON form, so callers observe the
// same aliasing rules as a database-backed store.
type Store struct {
	world     *world.World
	telemetry []storage.TelemetryEvent
	reports   []storage.ReportRow
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// LoadDefault returns a copy of the stored world.
func (s *Store) LoadDefault(ctx context.Context) (*world.World, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.world == nil {
		return nil, storage.ErrNotFound
	}
	copied, err := s.world.Clone()
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	return copied, nil
}

// Save stores a copy of the world.
func (s *Store) Save(ctx context.Context, w *world.World) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w == nil {
		return errors.New(errors.CodeWorldRequired, "world is required")
	}
	copied, err := w.Clone()
	if err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	s.world = copied
	return nil
}

// AppendTelemetryEvent records a telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.telemetry = append(s.telemetry, evt)
	return nil
}

// TelemetryEvents returns the recorded telemetry events.
func (s *Store) TelemetryEvents() []storage.TelemetryEvent {
	out := make([]storage.TelemetryEvent, len(s.telemetry))
	copy(out, s.telemetry)
	return out
}

// AppendReportRow records a narrative quality report row.
func (s *Store) AppendReportRow(ctx context.Context, row storage.ReportRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.reports = append(s.reports, row)
	return nil
}

// ReportRows returns the recorded report rows.
func (s *Store) ReportRows() []storage.ReportRow {
	out := make([]storage.ReportRow, len(s.reports))
	copy(out, s.reports)
	return out
}
