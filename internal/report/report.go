// Package report scores simulated narrative arcs and gates a batch of
// seeds into a release verdict.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/duskmere/worldengine/internal/director"
	"github.com/duskmere/worldengine/internal/event"
	"github.com/duskmere/worldengine/internal/progression"
	"github.com/duskmere/worldengine/internal/quest"
	"github.com/duskmere/worldengine/internal/reference"
	"github.com/duskmere/worldengine/internal/replay"
	"github.com/duskmere/worldengine/internal/seed"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/storage/memory"
	"github.com/duskmere/worldengine/internal/world"
)

// Arc quality targets.
const (
	TargetSemanticScoreMin = 55
	TargetTensionMin       = 45
	TargetTensionMax       = 75
	TargetMaxActiveSeeds   = 1
	TargetMinQuestEvents   = 1
)

// Arc statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// Release verdicts.
const (
	VerdictGo   = "go"
	VerdictHold = "hold"
)

// Profile is a batch gate threshold set.
type Profile struct {
	Name        string
	MinPassRate float64
	MaxWarns    int
	MaxFails    int
}

// Profiles returns the built-in gate profiles.
func Profiles() map[string]Profile {
	return map[string]Profile{
		"strict":      {Name: "strict", MinPassRate: 0.8, MaxWarns: 0, MaxFails: 0},
		"balanced":    {Name: "balanced", MinPassRate: 0.66, MaxWarns: 1, MaxFails: 0},
		"exploratory": {Name: "exploratory", MinPassRate: 0.5, MaxWarns: 2, MaxFails: 1},
	}
}

// ResolveProfile returns the named profile, falling back to balanced.
func ResolveProfile(name string) Profile {
	if p, ok := Profiles()[name]; ok {
		return p
	}
	return Profiles()["balanced"]
}

// SeedList derives a reproducible batch of world seeds from a base seed.
func SeedList(baseSeed int64, count int) []int64 {
	if count < 1 {
		count = 1
	}
	out := make([]int64, 0, count)
	for index := 0; index < count; index++ {
		out = append(out, seed.Derive("narrative.session.report.seed", map[string]any{
			"base_seed": baseSeed,
			"index":     index,
		}))
	}
	return out
}

// Summary is the scored outcome of one simulated arc.
type Summary struct {
	Seed            int64
	Ticks           int
	FinalTension    int
	TensionPeak     int
	Injections      int
	DistinctKinds   int
	SeedsActive     int
	SeedsResolved   int
	QuestsCompleted int
	QuestsFailed    int
	CataclysmPhase  string
	SemanticScore   int
	SemanticBand    string
	Alerts          []string
	Status          string
}

// Row converts the summary to a persistable report row.
func (s Summary) Row() storage.ReportRow {
	return storage.ReportRow{
		WorldSeed:       s.Seed,
		Ticks:           s.Ticks,
		Injections:      s.Injections,
		DistinctKinds:   s.DistinctKinds,
		FinalTension:    s.FinalTension,
		TensionPeak:     s.TensionPeak,
		QuestsCompleted: s.QuestsCompleted,
		QuestsFailed:    s.QuestsFailed,
		CataclysmPhase:  s.CataclysmPhase,
		CreatedAt:       time.Now().UTC(),
	}
}

// Gate aggregates arc statuses against a profile.
type Gate struct {
	Profile  string
	Total    int
	Passes   int
	Warns    int
	Fails    int
	PassRate float64
	Blockers []string
	Verdict  string
}

// DefaultScript is the scripted player behavior the batch cycles through:
// hunt ticks publish a kill for the quest board, the rest just advance.
var DefaultScript = []string{"rest", "hunt", "travel", "rest", "hunt", "travel", "hunt", "rest"}

// batchCharacterID identifies the scripted character in quest ownership.
const batchCharacterID = 901

// SimulateArc runs a fresh engine for the given seed and ticks against
// in-memory storage, drives a scripted player through the quest board, and
// scores the resulting narrative arc.
func SimulateArc(ctx context.Context, seedValue int64, ticks int, severity reference.SeverityIndex) (Summary, error) {
	store := memory.NewStore()
	w := &world.World{Name: "batch", RNGSeed: seedValue, ThreatLevel: 7}
	if err := store.Save(ctx, w); err != nil {
		return Summary{}, fmt.Errorf("bootstrap world: %w", err)
	}

	bus := event.NewBus()
	quest.New(store).Register(bus)
	director.New(store, director.DefaultCadenceTurns).Register(bus)
	recorder := replay.NewRecorder(store)
	recorder.Register(bus)
	p := progression.New(store, bus, severity)

	for i := 0; i < ticks; i++ {
		loaded, err := store.LoadDefault(ctx)
		if err != nil {
			return Summary{}, fmt.Errorf("load world: %w", err)
		}
		if err := p.Tick(ctx, loaded, 1, true); err != nil {
			return Summary{}, fmt.Errorf("tick %d: %w", i+1, err)
		}
		for _, err := range bus.LastPublishErrors() {
			return Summary{}, fmt.Errorf("tick %d handler: %w", i+1, err)
		}

		if err := acceptNextContract(ctx, store); err != nil {
			return Summary{}, fmt.Errorf("accept contract: %w", err)
		}
		if DefaultScript[i%len(DefaultScript)] == "hunt" {
			bus.Publish(ctx, event.MonsterSlain{
				MonsterID: 1 + i%3, LocationID: 2,
				ByCharacterID: batchCharacterID, Turn: loaded.CurrentTurn,
			})
			for _, err := range bus.LastPublishErrors() {
				return Summary{}, fmt.Errorf("tick %d hunt handler: %w", i+1, err)
			}
		}
	}

	// The recorder sampled the settled world after every tick; the peak
	// comes from its trajectory rather than a second bookkeeping path.
	tensionPeak := 0
	for _, sample := range recorder.Trajectory() {
		if sample.Tension > tensionPeak {
			tensionPeak = sample.Tension
		}
	}

	final, err := store.LoadDefault(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load final world: %w", err)
	}
	summary := summarize(final, seedValue, ticks, tensionPeak)
	summary.SemanticScore, summary.SemanticBand = SemanticArcScore(summary)
	summary.Alerts = QualityAlerts(summary)
	summary.Status = QualityStatus(summary.Alerts)
	return summary, nil
}

// acceptNextContract marks the lexically first available contract active
// when the scripted character has no active one, mirroring a player
// working the board one job at a time.
func acceptNextContract(ctx context.Context, store storage.WorldStore) error {
	w, err := store.LoadDefault(ctx)
	if err != nil {
		return err
	}
	quests := w.Quests()
	var available []string
	for id, q := range quests {
		switch q.Status {
		case world.QuestStatusActive:
			return nil
		case world.QuestStatusAvailable:
			available = append(available, id)
		}
	}
	if len(available) == 0 {
		return nil
	}
	sort.Strings(available)
	picked := quests[available[0]]
	picked.Status = world.QuestStatusActive
	picked.OwnerCharacterID = batchCharacterID
	return store.Save(ctx, w)
}

func summarize(w *world.World, seedValue int64, ticks, tensionPeak int) Summary {
	narrative := w.Narrative()
	s := Summary{
		Seed:         seedValue,
		Ticks:        ticks,
		FinalTension: narrative.TensionLevel,
		TensionPeak:  tensionPeak,
		Injections:   len(narrative.Injections),
	}

	kinds := map[string]bool{}
	for _, marker := range narrative.Injections {
		if marker.Kind != "" {
			kinds[marker.Kind] = true
		}
	}
	s.DistinctKinds = len(kinds)

	for _, row := range narrative.StorySeeds {
		switch row.Status {
		case world.SeedStatusResolved:
			s.SeedsResolved++
		case world.SeedStatusActive, world.SeedStatusSimmering,
			world.SeedStatusEscalated, world.SeedStatusCritical:
			s.SeedsActive++
		}
	}

	for _, q := range w.Quests() {
		switch q.Status {
		case world.QuestStatusCompleted, world.QuestStatusReady:
			s.QuestsCompleted++
		case world.QuestStatusFailed:
			s.QuestsFailed++
		}
	}

	if clock := w.Cataclysm(); clock.Active {
		s.CataclysmPhase = clock.Phase
	}
	return s
}

// SemanticArcScore scores an arc in [0, 100] and names its band. Resolved
// threads, quest throughput, injection density, and variety all contribute;
// a crowded stage costs points.
func SemanticArcScore(s Summary) (int, string) {
	score := 0
	score += min(25, s.SeedsResolved*12)
	score += min(20, s.QuestsCompleted*8)
	score += min(15, max(0, s.Injections-1)*3)
	score += min(15, s.DistinctKinds*7)

	switch {
	case s.FinalTension >= 40 && s.FinalTension <= 75:
		score += 15
	case s.FinalTension >= 25 && s.FinalTension <= 90:
		score += 8
	}

	switch {
	case s.SeedsActive == 0:
		score += 10
	case s.SeedsActive == 1:
		score += 5
	default:
		score -= min(10, (s.SeedsActive-1)*4)
	}

	score = max(0, min(100, score))
	switch {
	case score >= 75:
		return score, "strong"
	case score >= 50:
		return score, "stable"
	case score >= 30:
		return score, "fragile"
	default:
		return score, "weak"
	}
}

// QualityAlerts lists the targets the arc missed.
func QualityAlerts(s Summary) []string {
	var alerts []string
	if s.SemanticScore < TargetSemanticScoreMin {
		alerts = append(alerts, "semantic_below_target")
	}
	if s.FinalTension < TargetTensionMin {
		alerts = append(alerts, "tension_under_target")
	}
	if s.FinalTension > TargetTensionMax {
		alerts = append(alerts, "tension_over_target")
	}
	if s.SeedsActive > TargetMaxActiveSeeds {
		alerts = append(alerts, "too_many_active_seeds")
	}
	if s.QuestsCompleted < TargetMinQuestEvents {
		alerts = append(alerts, "low_event_density")
	}
	return alerts
}

// QualityStatus folds alerts into pass, warn, or fail. Only the compound
// signal of a weak arc with no event density fails outright.
func QualityStatus(alerts []string) string {
	if len(alerts) == 0 {
		return StatusPass
	}
	semantic, density := false, false
	for _, alert := range alerts {
		switch alert {
		case "semantic_below_target":
			semantic = true
		case "low_event_density":
			density = true
		}
	}
	if semantic && density {
		return StatusFail
	}
	return StatusWarn
}

// BatchGate aggregates summaries against a profile and issues a verdict.
func BatchGate(summaries []Summary, profile Profile) Gate {
	gate := Gate{Profile: profile.Name, Total: len(summaries)}
	for _, s := range summaries {
		switch s.Status {
		case StatusPass:
			gate.Passes++
		case StatusWarn:
			gate.Warns++
		case StatusFail:
			gate.Fails++
		}
	}
	if gate.Total > 0 {
		gate.PassRate = float64(gate.Passes) / float64(gate.Total)
	}

	if gate.Fails > profile.MaxFails {
		gate.Blockers = append(gate.Blockers, "too_many_failures")
	}
	if gate.PassRate < profile.MinPassRate {
		gate.Blockers = append(gate.Blockers, "pass_rate_below_target")
	}
	if gate.Warns > profile.MaxWarns {
		gate.Blockers = append(gate.Blockers, "too_many_warnings")
	}

	gate.Verdict = VerdictGo
	if len(gate.Blockers) > 0 {
		gate.Verdict = VerdictHold
	}
	return gate
}
