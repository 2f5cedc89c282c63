package director

import (
	"context"
	"testing"

	"github.com/duskmere/worldengine/internal/event"
	"github.com/duskmere/worldengine/internal/storage/memory"
	"github.com/duskmere/worldengine/internal/world"
)

// harness drives the director the way the engine does: each tick advances
// the persisted world, then publishes TickAdvanced for the handlers.
type harness struct {
	store *memory.Store
	bus   *event.Bus
}

func newHarness(t *testing.T, w *world.World, cadenceTurns int) *harness {
	t.Helper()
	store := memory.NewStore()
	if err := store.Save(context.Background(), w); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	bus := event.NewBus()
	New(store, cadenceTurns).Register(bus)
	return &harness{store: store, bus: bus}
}

func (h *harness) tick(t *testing.T) *world.World {
	t.Helper()
	ctx := context.Background()
	w, err := h.store.LoadDefault(ctx)
	if err != nil {
		t.Fatalf("load world: %v", err)
	}
	w.AdvanceTurn()
	if err := h.store.Save(ctx, w); err != nil {
		t.Fatalf("save world: %v", err)
	}
	h.bus.Publish(ctx, event.TickAdvanced{TurnAfter: w.CurrentTurn})
	for _, err := range h.bus.LastPublishErrors() {
		t.Fatalf("handler error: %v", err)
	}
	loaded, err := h.store.LoadDefault(ctx)
	if err != nil {
		t.Fatalf("reload world: %v", err)
	}
	return loaded
}

func TestTensionRiseCapped(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 7}, DefaultCadenceTurns)

	w := h.tick(t)
	if got := w.Narrative().TensionLevel; got != 6 {
		t.Fatalf("expected tension 6 after one tick at threat 7, got %d", got)
	}
	w = h.tick(t)
	if got := w.Narrative().TensionLevel; got != 12 {
		t.Fatalf("expected tension 12 after two ticks, got %d", got)
	}
}

func TestTensionFallCapped(t *testing.T) {
	w := &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 0}
	w.Narrative().TensionLevel = 50
	h := newHarness(t, w, DefaultCadenceTurns)

	loaded := h.tick(t)
	if got := loaded.Narrative().TensionLevel; got != 46 {
		t.Fatalf("expected tension to fall by at most 4, got %d", got)
	}
}

func TestTensionStaysClamped(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 20}, DefaultCadenceTurns)

	var w *world.World
	for i := 0; i < 40; i++ {
		w = h.tick(t)
		if got := w.Narrative().TensionLevel; got < 0 || got > world.TensionMax {
			t.Fatalf("tension escaped [0, %d]: %d", world.TensionMax, got)
		}
	}
	if w.Narrative().TensionLevel != world.TensionMax {
		t.Fatalf("expected sustained threat to pin tension at %d, got %d",
			world.TensionMax, w.Narrative().TensionLevel)
	}
}

func TestCanonicalGraphInstalled(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 3}, DefaultCadenceTurns)

	graph := h.tick(t).Narrative().RelationshipGraph()
	for _, key := range []string{"undead|wardens", "undead|wild", "wardens|wild"} {
		if _, ok := graph.FactionEdges[key]; !ok {
			t.Fatalf("expected canonical edge %s, got %v", key, graph.FactionEdges)
		}
	}
	for npc := range defaultAffinities {
		if _, ok := graph.NPCAffinity[npc]; !ok {
			t.Fatalf("expected affinity row for %s", npc)
		}
	}
}

func TestEdgeNudgesOnlyOnEvenTurns(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 5}, DefaultCadenceTurns)

	for i := 0; i < 20; i++ {
		w := h.tick(t)
		graph := w.Narrative().RelationshipGraph()
		for _, shift := range graph.History {
			if shift.Turn%2 != 0 {
				t.Fatalf("expected edge shifts on even turns only, got turn %d", shift.Turn)
			}
			if shift.Delta == 0 || shift.Delta < -2 || shift.Delta > 2 {
				t.Fatalf("expected nonzero delta in [-2, 2], got %d", shift.Delta)
			}
		}
		for key, score := range graph.FactionEdges {
			if score < world.EdgeScoreMin || score > world.EdgeScoreMax {
				t.Fatalf("edge %s escaped bounds: %d", key, score)
			}
		}
	}
}

func TestInjectionSpacingHonorsCadence(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 9}, DefaultCadenceTurns)

	var w *world.World
	for i := 0; i < 60; i++ {
		w = h.tick(t)
	}
	injections := w.Narrative().Injections
	if len(injections) < 2 {
		t.Fatalf("expected multiple injections over 60 ticks, got %d", len(injections))
	}
	for i := 1; i < len(injections); i++ {
		if gap := injections[i].Turn - injections[i-1].Turn; gap < DefaultCadenceTurns {
			t.Fatalf("injections at turns %d and %d violate cadence %d",
				injections[i-1].Turn, injections[i].Turn, DefaultCadenceTurns)
		}
	}
}

func TestRepetitionGuardAlternatesKinds(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 9}, DefaultCadenceTurns)

	var w *world.World
	for i := 0; i < 80; i++ {
		w = h.tick(t)
	}
	injections := w.Narrative().Injections
	for i := 1; i < len(injections); i++ {
		prev, cur := injections[i-1], injections[i]
		if cur.Turn-prev.Turn <= repeatWindowTurns && cur.Kind == prev.Kind {
			t.Fatalf("kind %s repeated at turns %d and %d inside the repeat window",
				cur.Kind, prev.Turn, cur.Turn)
		}
	}
}

func TestAtMostOneLiveThread(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 9}, DefaultCadenceTurns)

	for i := 0; i < 60; i++ {
		w := h.tick(t)
		if live := w.Narrative().LiveSeeds(); len(live) > 1 {
			t.Fatalf("expected at most one live thread, got %d", len(live))
		}
	}
}

func TestEscalationAdvancesInPlace(t *testing.T) {
	h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 12}, DefaultCadenceTurns)

	var w *world.World
	for i := 0; i < 60; i++ {
		w = h.tick(t)
	}
	narrative := w.Narrative()
	if len(narrative.Injections) < 3 {
		t.Fatalf("expected several injections, got %d", len(narrative.Injections))
	}
	live := narrative.LiveSeeds()
	if len(live) != 1 {
		t.Fatalf("expected one live thread, got %d", len(live))
	}
	// Repeated injections escalate the existing thread instead of piling
	// up seeds, so under sustained pressure it ends critical.
	if live[0].EscalationStage != world.StageCritical {
		t.Fatalf("expected the live thread to reach critical, got %s", live[0].EscalationStage)
	}
	if live[0].LastUpdateTurn <= live[0].CreatedTurn {
		t.Fatalf("expected the thread to be updated after creation, got created %d updated %d",
			live[0].CreatedTurn, live[0].LastUpdateTurn)
	}
}

func TestNewSeedBiasedTowardStrainedEdge(t *testing.T) {
	w := &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 9}
	graph := w.Narrative().RelationshipGraph()
	graph.EnsureEdge("undead", "wardens")
	graph.FactionEdges[world.EdgeKey("undead", "wardens")] = -90
	h := newHarness(t, w, DefaultCadenceTurns)

	var loaded *world.World
	for i := 0; i < 30; i++ {
		loaded = h.tick(t)
		if len(loaded.Narrative().StorySeeds) > 0 {
			break
		}
	}
	seeds := loaded.Narrative().StorySeeds
	if len(seeds) == 0 {
		t.Fatal("expected an injected seed within 30 ticks")
	}
	if seeds[0].FactionBias != "undead" {
		t.Fatalf("expected bias toward the strained pair's first faction, got %q", seeds[0].FactionBias)
	}
}

func TestNarrativeTrajectoryDeterministic(t *testing.T) {
	type sample struct {
		tension    int
		injections int
		lastKind   string
	}

	run := func() []sample {
		h := newHarness(t, &world.World{Name: "duskmere", RNGSeed: 42, ThreatLevel: 7}, DefaultCadenceTurns)
		var out []sample
		for i := 0; i < 50; i++ {
			w := h.tick(t)
			narrative := w.Narrative()
			s := sample{tension: narrative.TensionLevel, injections: len(narrative.Injections)}
			if last, ok := narrative.LastInjection(); ok {
				s.lastKind = last.Kind
			}
			out = append(out, s)
		}
		return out
	}

	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical trajectories, diverged at tick %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMissingWorldIsNoop(t *testing.T) {
	store := memory.NewStore()
	bus := event.NewBus()
	New(store, DefaultCadenceTurns).Register(bus)

	bus.Publish(context.Background(), event.TickAdvanced{TurnAfter: 1})
	if errs := bus.LastPublishErrors(); len(errs) != 0 {
		t.Fatalf("expected no handler errors without a world, got %v", errs)
	}
}
