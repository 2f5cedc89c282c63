// Package progression advances the world turn counter and its hazard
// clock, then notifies the directors through the event bus.
package progression

import (
	"context"
	"fmt"

	"github.com/duskmere/worldengine/internal/errors"
	"github.com/duskmere/worldengine/internal/event"
	"github.com/duskmere/worldengine/internal/reference"
	"github.com/duskmere/worldengine/internal/seed"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/world"
)

// cataclysmSeedNamespace keys the per-step progress roll.
const cataclysmSeedNamespace = "world.cataclysm.clock"

// rollbackDrainMax caps how many buffered rollback points drain per tick.
const rollbackDrainMax = 12

// Progression is the tick scheduler. Tick mutates the world, persists it,
// and publishes exactly one TickAdvanced per call.
type Progression struct {
	store    storage.WorldStore
	bus      *event.Bus
	severity reference.SeverityIndex
}

// New creates a Progression. The severity index may be nil; every biome
// lookup then reports the neutral default.
func New(store storage.WorldStore, bus *event.Bus, severity reference.SeverityIndex) *Progression {
	return &Progression{store: store, bus: bus, severity: severity}
}

// Tick advances the world by ticks turns, advancing the cataclysm clock on
// each, saves the world once when persist is set, then publishes one
// TickAdvanced carrying the final turn. Batched ticks still yield a single
// notification.
func (p *Progression) Tick(ctx context.Context, w *world.World, ticks int, persist bool) error {
	if w == nil {
		return errors.New(errors.CodeWorldRequired, "world is required")
	}
	if ticks < 1 {
		ticks = 1
	}
	for i := 0; i < ticks; i++ {
		w.AdvanceTurn()
		p.advanceCataclysmClock(w)
	}
	if persist {
		if err := p.store.Save(ctx, w); err != nil {
			return fmt.Errorf("save world: %w", err)
		}
	}
	p.bus.Publish(ctx, event.TickAdvanced{TurnAfter: w.CurrentTurn})
	return nil
}

// advanceCataclysmClock runs one clock iteration. The clock is a no-op
// while inactive and locks to terminal ruin once progress reaches 100.
func (p *Progression) advanceCataclysmClock(w *world.World) {
	state := w.Cataclysm()
	if !state.Active {
		return
	}

	worldTurn := w.CurrentTurn
	progressBefore := clamp(state.Progress, 0, world.CataclysmProgressMax)
	if progressBefore >= world.CataclysmProgressMax {
		state.Phase = world.PhaseRuin
		state.Progress = world.CataclysmProgressMax
		state.LastAdvanceTurn = worldTurn
		return
	}

	phaseBefore := state.Phase
	if !world.ValidPhase(phaseBefore) {
		phaseBefore = world.PhaseFromProgress(progressBefore)
	}

	slowdown := state.SlowdownTicks
	if slowdown < 0 {
		slowdown = 0
	}
	rollback := state.RollbackBuffer
	if rollback < 0 {
		rollback = 0
	}

	cadence := baseCadence(phaseBefore)
	pressure := p.severity.Pressure(state.FocusBiome)
	switch {
	case pressure >= 70:
		if cadence > 1 {
			cadence--
		}
	case pressure <= 30:
		cadence++
	}
	if slowdown > 0 {
		cadence += 2
		slowdown--
	}

	started := state.StartedTurn
	if started < 0 {
		started = 0
	}
	elapsed := worldTurn - started
	if elapsed < 0 {
		elapsed = 0
	}

	progressAfter := progressBefore
	if elapsed%cadence == 0 {
		stepSeed := seed.Derive(cataclysmSeedNamespace, map[string]any{
			"world_turn": worldTurn,
			"world_seed": w.RNGSeed,
			"kind":       state.Kind,
			"phase":      phaseBefore,
			"progress":   progressBefore,
		})
		step := 4 + int(stepSeed%5)
		switch {
		case pressure >= 70:
			step++
		case pressure <= 30:
			step--
		}
		step = clamp(step, 2, 10)
		progressAfter = progressBefore + step
		if progressAfter > world.CataclysmProgressMax {
			progressAfter = world.CataclysmProgressMax
		}
	}

	if rollback > 0 {
		drained := rollback
		if drained > rollbackDrainMax {
			drained = rollbackDrainMax
		}
		progressAfter -= drained
		if progressAfter < 0 {
			progressAfter = 0
		}
		rollback -= drained
	}

	state.Progress = progressAfter
	state.Phase = world.PhaseFromProgress(progressAfter)
	state.LastAdvanceTurn = worldTurn
	state.SlowdownTicks = slowdown
	state.RollbackBuffer = rollback
}

// baseCadence is the ticks-between-steps floor per phase. Ruin never steps
// on its own; the terminal lock handles it first.
func baseCadence(phase string) int {
	switch phase {
	case world.PhaseWhispers:
		return 4
	case world.PhaseGripTightens:
		return 3
	case world.PhaseMapShrinks:
		return 2
	case world.PhaseRuin:
		return 999
	default:
		return 3
	}
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
