// Package world defines the shared world record and the typed sub-records
// the directors mutate each tick.
//
// The world is the single shared mutable record of the engine. Each
// director owns exclusive write access to its own sub-record and reads the
// others read-only; missing sub-records are re-initialized to their
// canonical empty shape instead of failing, so a tick can always complete
// against a well-formed world.
package world

import (
	"encoding/json"
	"fmt"
)

// World is the per-turn shared record advanced by the tick scheduler.
type World struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CurrentTurn int    `json:"current_turn"`
	ThreatLevel int    `json:"threat_level"`
	RNGSeed     int64  `json:"rng_seed"`
	Flags       Flags  `json:"flags"`
}

// Flags groups the typed sub-records written for downstream consumers.
// Pointers are lazily initialized through the World accessors; readers must
// not assume presence.
type Flags struct {
	Narrative    *NarrativeState `json:"narrative,omitempty"`
	Quests       QuestRegistry   `json:"quests,omitempty"`
	Cataclysm    *CataclysmState `json:"cataclysm_state,omitempty"`
	Consequences []Consequence   `json:"consequences,omitempty"`
}

// Consequence is one line of the bounded world consequence log.
type Consequence struct {
	Message  string `json:"message"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Turn     int    `json:"turn"`
}

// consequenceLogMax bounds the consequence log.
const consequenceLogMax = 20

// AdvanceTurn increments the turn counter by one.
func (w *World) AdvanceTurn() {
	w.CurrentTurn++
}

// Narrative returns the narrative sub-record, creating the canonical empty
// shape when absent.
func (w *World) Narrative() *NarrativeState {
	if w.Flags.Narrative == nil {
		w.Flags.Narrative = NewNarrativeState()
	}
	return w.Flags.Narrative
}

// Quests returns the quest registry, creating it when absent.
func (w *World) Quests() QuestRegistry {
	if w.Flags.Quests == nil {
		w.Flags.Quests = make(QuestRegistry)
	}
	return w.Flags.Quests
}

// Cataclysm returns the cataclysm clock state, creating an inactive clock
// when absent.
func (w *World) Cataclysm() *CataclysmState {
	if w.Flags.Cataclysm == nil {
		w.Flags.Cataclysm = &CataclysmState{}
	}
	return w.Flags.Cataclysm
}

// AppendConsequence appends one line to the bounded consequence log.
func (w *World) AppendConsequence(message, kind string, turn int) {
	w.Flags.Consequences = append(w.Flags.Consequences, Consequence{
		Message:  message,
		Kind:     kind,
		Severity: "normal",
		Turn:     turn,
	})
	if overflow := len(w.Flags.Consequences) - consequenceLogMax; overflow > 0 {
		w.Flags.Consequences = w.Flags.Consequences[overflow:]
	}
}

// RecentConsequences counts consequence lines within the look-back window
// ending at turn.
func (w *World) RecentConsequences(turn, window int) int {
	lowerBound := turn - window
	count := 0
	for _, row := range w.Flags.Consequences {
		if row.Turn >= lowerBound {
			count++
		}
	}
	return count
}

// Clone deep-copies the world through its canonical JSON form. Stores use
// it so that a loaded world never aliases a saved one.
func (w *World) Clone() (*World, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal world: %w", err)
	}
	var out World
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal world: %w", err)
	}
	return &out, nil
}

// clampInt bounds value to [low, high].
func clampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
