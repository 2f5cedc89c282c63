// Package telemetry records operational events from engine runs.
package telemetry

import (
	"context"
	"time"

	"github.com/duskmere/worldengine/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, severity Severity, source, message string, turn int) error {
	if e == nil || e.store == nil {
		return nil
	}
	ts := time.Now().UTC()
	if e.clock != nil {
		ts = e.clock().UTC()
	}
	return e.store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{
		Timestamp: ts,
		Severity:  string(severity),
		Source:    source,
		Message:   message,
		Turn:      turn,
	})
}
