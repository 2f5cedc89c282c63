// Package replay captures per-tick trajectory samples so two engine runs
// can be compared for byte-identical behavior.
package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/duskmere/worldengine/internal/event"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/world"
)

// RecorderPriority orders the recorder after every gameplay handler, so a
// sample reflects the fully settled tick.
const RecorderPriority = 900

// Sample is the observable state of one tick.
type Sample struct {
	Turn              int
	Tension           int
	Injections        int
	LastInjectionKind string
	CataclysmPhase    string
	CataclysmProgress int
}

// Capture reads a sample from the world.
func Capture(w *world.World) Sample {
	narrative := w.Narrative()
	s := Sample{
		Turn:       w.CurrentTurn,
		Tension:    narrative.TensionLevel,
		Injections: len(narrative.Injections),
	}
	if last, ok := narrative.LastInjection(); ok {
		s.LastInjectionKind = last.Kind
	}
	if clock := w.Cataclysm(); clock.Active {
		s.CataclysmPhase = clock.Phase
		s.CataclysmProgress = clock.Progress
	}
	return s
}

// Trajectory is an ordered run of samples.
type Trajectory []Sample

// Equal reports whether two trajectories are identical.
func (t Trajectory) Equal(other Trajectory) bool {
	_, same := t.Diff(other)
	return same
}

// Diff returns the first index where the trajectories diverge. A length
// mismatch diverges at the shorter length.
func (t Trajectory) Diff(other Trajectory) (int, bool) {
	limit := min(len(t), len(other))
	for i := 0; i < limit; i++ {
		if t[i] != other[i] {
			return i, false
		}
	}
	if len(t) != len(other) {
		return limit, false
	}
	return -1, true
}

// Recorder appends one sample per published tick, reading the world as the
// other handlers left it.
type Recorder struct {
	store      storage.WorldStore
	trajectory Trajectory
}

// NewRecorder creates a Recorder.
func NewRecorder(store storage.WorldStore) *Recorder {
	return &Recorder{store: store}
}

// Register subscribes the recorder on the bus after the gameplay handlers.
func (r *Recorder) Register(bus *event.Bus) {
	bus.Subscribe(event.KindTickAdvanced, r.onTickAdvanced, RecorderPriority)
}

func (r *Recorder) onTickAdvanced(ctx context.Context, evt event.Event) error {
	if _, ok := evt.(event.TickAdvanced); !ok {
		return nil
	}
	w, err := r.store.LoadDefault(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}
	r.trajectory = append(r.trajectory, Capture(w))
	return nil
}

// Trajectory returns a copy of the recorded samples.
func (r *Recorder) Trajectory() Trajectory {
	out := make(Trajectory, len(r.trajectory))
	copy(out, r.trajectory)
	return out
}
