// Package storage defines the persistence contracts the engine consumes.
//
// The engine treats persistence as an external collaborator: it loads the
// world, mutates it, and saves it back. Any atomic multi-field guarantee
// belongs to the implementing store, not to the engine.
package storage

import (
	"context"
	"time"

	"github.com/duskmere/worldengine/internal/errors"
	"github.com/duskmere/worldengine/internal/world"
)

// ErrNotFound indicates a requested record is missing. errors.Is matches
// it against any domain error carrying CodeNotFound.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// WorldStore persists the shared world record.
type WorldStore interface {
	// LoadDefault returns the default world, or ErrNotFound when no world
	// has been bootstrapped yet.
	LoadDefault(ctx context.Context) (*world.World, error)
	// Save persists the world. Save must not alias the passed record; a
	// later LoadDefault returns an independent copy.
	Save(ctx context.Context, w *world.World) error
}

// TelemetryEvent records one operational observation from an engine run.
type TelemetryEvent struct {
	Timestamp time.Time
	Severity  string
	Source    string
	Message   string
	Turn      int
}

// TelemetryStore persists telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}

// ReportRow is one scored run from a narrative quality batch.
type ReportRow struct {
	WorldSeed       int64
	Ticks           int
	Injections      int
	DistinctKinds   int
	FinalTension    int
	TensionPeak     int
	QuestsCompleted int
	QuestsFailed    int
	CataclysmPhase  string
	CreatedAt       time.Time
}

// ReportStore persists narrative quality report rows.
type ReportStore interface {
	AppendReportRow(ctx context.Context, row ReportRow) error
}
