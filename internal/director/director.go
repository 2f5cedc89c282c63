// Package director evolves the narrative each tick: it scores tension,
// maintains the faction relationship graph, and injects escalating story
// threads under pacing and variety guarantees.
package director

import (
	"context"
	"errors"
	"fmt"

	"github.com/duskmere/worldengine/internal/event"
	"github.com/duskmere/worldengine/internal/seed"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/world"
)

// TickPriority orders the director after the quest service on each tick.
const TickPriority = 60

// DefaultCadenceTurns is the minimum spacing between injections.
const DefaultCadenceTurns = 3

// Injection kinds.
const (
	InjectionStorySeed  = "story_seed"
	InjectionFlashpoint = "faction_flashpoint"
)

// injectionKinds lists every kind the repetition guard may fall back to.
var injectionKinds = []string{InjectionStorySeed, InjectionFlashpoint}

// repeatWindowTurns is how long the repetition guard remembers the
// previous injection kind.
const repeatWindowTurns = 6

// Seed derivation namespaces.
const (
	cadenceNamespace      = "story.cadence"
	kindNamespace         = "story.injection.kind"
	relationshipNamespace = "story.relationship.tick"
)

// Look-back windows feeding the tension target.
const (
	consequenceWindowTurns = 3
	flashpointWindowTurns  = 4
)

// Tension moves toward its target by at most these amounts per tick.
const (
	tensionRiseMax = 6
	tensionFallMax = 4
)

// canonicalFactions are the factions whose pairwise edges always exist,
// in sorted order.
var canonicalFactions = []string{"undead", "wardens", "wild"}

// defaultAffinities are the fixed npc rows installed on first upkeep.
var defaultAffinities = map[string]map[string]int{
	"broker_silas":   {"wardens": 2, "wild": -1, "undead": -2},
	"captain_ren":    {"wardens": 5, "wild": -3, "undead": -4},
	"innkeeper_mara": {"wardens": 1, "wild": 1, "undead": -1},
}

// Director is the narrative tick handler.
type Director struct {
	store        storage.WorldStore
	cadenceTurns int
}

// New creates a Director. cadenceTurns below 1 is raised to 1.
func New(store storage.WorldStore, cadenceTurns int) *Director {
	if cadenceTurns < 1 {
		cadenceTurns = 1
	}
	return &Director{store: store, cadenceTurns: cadenceTurns}
}

// Register subscribes the director's tick handler on the bus.
func (d *Director) Register(bus *event.Bus) {
	bus.Subscribe(event.KindTickAdvanced, d.onTickAdvanced, TickPriority)
}

func (d *Director) onTickAdvanced(ctx context.Context, evt event.Event) error {
	tick, ok := evt.(event.TickAdvanced)
	if !ok {
		return nil
	}

	w, err := d.store.LoadDefault(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	turnAfter := tick.TurnAfter
	narrative := w.Narrative()

	// Tension and graph upkeep read the state as loaded, before any of
	// this handler's own writes land.
	tension := d.calculateTension(w, narrative.TensionLevel)
	narrative.TensionLevel = tension
	d.updateRelationshipGraph(w, narrative, turnAfter, tension)

	inject, cadenceSeed := d.shouldInject(w, narrative, turnAfter, tension)
	narrative.LastCadenceSeed = cadenceSeed
	narrative.LastCheckedTurn = turnAfter

	if inject {
		kind := d.selectInjectionKind(w, narrative, turnAfter, tension)
		narrative.LastInjectionTurn = turnAfter
		narrative.AppendInjection(world.InjectionMarker{Turn: turnAfter, Seed: cadenceSeed, Kind: kind})
		d.applyInjection(narrative, kind, turnAfter, cadenceSeed, tension)
	}

	if err := d.store.Save(ctx, w); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	return nil
}

// calculateTension moves tension toward its target without jumping: at
// most +6 rising and -4 falling per tick, clamped to [0, 100].
func (d *Director) calculateTension(w *world.World, before int) int {
	threat := w.ThreatLevel
	if threat < 0 {
		threat = 0
	}
	consequencePressure := w.RecentConsequences(w.CurrentTurn, consequenceWindowTurns)
	flashpointPressure := w.Narrative().FlashpointPressure(w.CurrentTurn, flashpointWindowTurns)
	target := world.ClampTension(threat*8 + consequencePressure*5 + flashpointPressure*2)

	switch {
	case before < target:
		rise := target - before
		if rise > tensionRiseMax {
			rise = tensionRiseMax
		}
		return world.ClampTension(before + rise)
	case before > target:
		fall := before - target
		if fall > tensionFallMax {
			fall = tensionFallMax
		}
		return world.ClampTension(before - fall)
	default:
		return world.ClampTension(before)
	}
}

// updateRelationshipGraph ensures the canonical edges and affinity rows
// exist, then nudges one seeded edge on even turns.
func (d *Director) updateRelationshipGraph(w *world.World, narrative *world.NarrativeState, turnAfter, tension int) {
	graph := narrative.RelationshipGraph()
	for i, left := range canonicalFactions {
		for _, right := range canonicalFactions[i+1:] {
			graph.EnsureEdge(left, right)
		}
	}
	for npc, row := range defaultAffinities {
		graph.EnsureAffinity(npc, row)
	}

	if turnAfter%2 != 0 {
		return
	}
	edgeKeys := graph.SortedEdgeKeys()
	if len(edgeKeys) == 0 {
		return
	}

	seedValue := seed.Derive(relationshipNamespace, map[string]any{
		"world_turn": turnAfter,
		"world_seed": w.RNGSeed,
		"threat":     w.ThreatLevel,
		"tension":    tension,
		"edge_count": len(edgeKeys),
	})
	rng := seed.Rand(seedValue)
	edgeKey := edgeKeys[rng.Intn(len(edgeKeys))]

	deltaPool := []int{-2, -1, 1, 2}
	if tension < 20 {
		deltaPool = []int{-1, 1}
	}
	delta := deltaPool[rng.Intn(len(deltaPool))]
	graph.ApplyDelta(edgeKey, delta, turnAfter, seedValue)
}

// shouldInject checks the cadence gate and then rolls a seeded percentile
// against a tension-scaled threshold. The cadence seed is returned even
// when the roll fails, for audit.
func (d *Director) shouldInject(w *world.World, narrative *world.NarrativeState, turnAfter, tension int) (bool, int64) {
	if turnAfter-narrative.LastInjectionTurn < d.cadenceTurns {
		return false, 0
	}

	seedValue := seed.Derive(cadenceNamespace, map[string]any{
		"world_turn": turnAfter,
		"world_seed": w.RNGSeed,
		"threat":     w.ThreatLevel,
		"tension":    tension,
	})
	roll := seed.Rand(seedValue).Intn(100) + 1
	threshold := 35 + min(40, tension/2)
	return roll <= threshold, seedValue
}

// selectInjectionKind makes a seeded weighted choice between the two
// injection kinds, then applies the repetition guard.
func (d *Director) selectInjectionKind(w *world.World, narrative *world.NarrativeState, turnAfter, tension int) string {
	imbalance := narrative.RelationshipGraph().WorstNegativeMagnitude()
	recentTags := narrative.RecentTags(4)

	storyWeight := 55
	flashpointWeight := 45

	if tension >= 45 {
		flashpointWeight += 15
	}
	if imbalance >= 12 {
		flashpointWeight += 15
	}
	if containsTag(recentTags, "scarcity") {
		storyWeight -= 10
		flashpointWeight += 10
	}
	if containsTag(recentTags, "rivalry") {
		flashpointWeight -= 10
		storyWeight += 10
	}
	storyWeight = max(10, storyWeight)
	flashpointWeight = max(10, flashpointWeight)

	kindSeed := seed.Derive(kindNamespace, map[string]any{
		"world_turn": turnAfter,
		"world_seed": w.RNGSeed,
		"threat":     w.ThreatLevel,
		"tension":    tension,
		"imbalance":  imbalance,
		"tag_count":  len(recentTags),
	})
	roll := seed.Rand(kindSeed).Intn(storyWeight + flashpointWeight)
	preferred := InjectionStorySeed
	if roll >= storyWeight {
		preferred = InjectionFlashpoint
	}
	return guardRepetition(narrative, turnAfter, preferred, kindSeed)
}

// guardRepetition forces the alternate kind when the previous injection
// used the preferred kind within the repeat window, unless no alternate
// exists.
func guardRepetition(narrative *world.NarrativeState, turnAfter int, preferred string, guardSeed int64) string {
	last, ok := narrative.LastInjection()
	if !ok {
		return preferred
	}
	if last.Kind != preferred {
		return preferred
	}
	if turnAfter-last.Turn > repeatWindowTurns {
		return preferred
	}

	var alternatives []string
	for _, kind := range injectionKinds {
		if kind != preferred {
			alternatives = append(alternatives, kind)
		}
	}
	if len(alternatives) == 0 {
		return preferred
	}
	rng := seed.Rand(guardSeed + 17)
	return alternatives[rng.Intn(len(alternatives))]
}

// applyInjection escalates the live seed in place when one exists;
// otherwise it creates a new thread from the kind's template. At most one
// live thread exists at a time by construction.
func (d *Director) applyInjection(narrative *world.NarrativeState, kind string, turnAfter int, seedValue int64, tension int) {
	live := narrative.LiveSeeds()
	if len(live) > 0 {
		for _, row := range live {
			row.EscalationStage = nextStage(row.EscalationStage, tension)
			row.LastUpdateTurn = turnAfter
		}
		return
	}

	row := seedTemplate(kind)
	row.ID = fmt.Sprintf("seed_%d_%04d", turnAfter, seedValue%10000)
	row.Status = world.SeedStatusActive
	row.EscalationStage = world.StageSimmering
	row.CreatedTurn = turnAfter
	row.LastUpdateTurn = turnAfter
	row.FactionBias = pickFactionForSeed(narrative, seedValue)
	narrative.AppendSeed(row)
}

// nextStage computes the escalation stage under pressure. Critical is
// sticky.
func nextStage(current string, tension int) string {
	switch {
	case current == world.StageCritical:
		return world.StageCritical
	case tension >= 60:
		return world.StageCritical
	case tension >= 30:
		return world.StageEscalated
	default:
		return world.StageSimmering
	}
}

// seedTemplate returns the fixed template for an injection kind.
func seedTemplate(kind string) *world.StorySeed {
	if kind == InjectionFlashpoint {
		return &world.StorySeed{
			Kind:        InjectionFlashpoint,
			Initiator:   "captain_ren",
			Motivation:  "Stabilize borders",
			Pressure:    "Border skirmishes threaten fragile truces",
			Opportunity: "Broker terms before militia escalation",
			EscalationPath: []string{
				"patrol_incident",
				"reprisal_raid",
				"open_faction_conflict",
			},
			ResolutionVariants: []string{"prosperity", "debt", "faction_shift"},
			NarrativeTags:      []string{"rivalry", "power"},
		}
	}
	return &world.StorySeed{
		Kind:        "merchant_under_pressure",
		Initiator:   "broker_silas",
		Motivation:  "Protect caravan profits",
		Pressure:    "Faction raids on trade routes",
		Opportunity: "Hire local help to secure shipments",
		EscalationPath: []string{
			"caravan_delayed",
			"route_sabotage",
			"open_trade_conflict",
		},
		ResolutionVariants: []string{"prosperity", "debt", "faction_shift"},
		NarrativeTags:      []string{"scarcity", "ambition"},
	}
}

func containsTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

// pickFactionForSeed biases a new thread toward the most strained edge:
// the alphabetically first faction of the most negative pair, with a
// seeded pick among the canonical factions when no edge is negative.
func pickFactionForSeed(narrative *world.NarrativeState, seedValue int64) string {
	if left, _, ok := narrative.RelationshipGraph().MostNegativePair(); ok {
		return left
	}
	rng := seed.Rand(seedValue)
	return canonicalFactions[rng.Intn(len(canonicalFactions))]
}
