package world

// Cataclysm phases, in escalation order. Ruin is terminal: once progress
// hits 100 the clock locks there.
const (
	PhaseWhispers     = "whispers"
	PhaseGripTightens = "grip_tightens"
	PhaseMapShrinks   = "map_shrinks"
	PhaseRuin         = "ruin"
)

// CataclysmProgressMax is the terminal progress value.
const CataclysmProgressMax = 100

// CataclysmState is the slow, phase-gated hazard clock advanced by the
// tick scheduler.
type CataclysmState struct {
	Active          bool   `json:"active"`
	Kind            string `json:"kind,omitempty"`
	Phase           string `json:"phase,omitempty"`
	Progress        int    `json:"progress"`
	StartedTurn     int    `json:"started_turn,omitempty"`
	LastAdvanceTurn int    `json:"last_advance_turn,omitempty"`
	SlowdownTicks   int    `json:"slowdown_ticks,omitempty"`
	RollbackBuffer  int    `json:"rollback_buffer,omitempty"`
	Seed            int64  `json:"seed,omitempty"`
	FocusBiome      string `json:"focus_biome,omitempty"`
}

// PhaseFromProgress maps a progress value onto its phase via the fixed
// thresholds (≤24 whispers, ≤59 grip_tightens, ≤99 map_shrinks, else ruin).
func PhaseFromProgress(progress int) string {
	bounded := clampInt(progress, 0, CataclysmProgressMax)
	switch {
	case bounded <= 24:
		return PhaseWhispers
	case bounded <= 59:
		return PhaseGripTightens
	case bounded <= 99:
		return PhaseMapShrinks
	default:
		return PhaseRuin
	}
}

// ValidPhase reports whether the stored phase names a known phase.
func ValidPhase(phase string) bool {
	switch phase {
	case PhaseWhispers, PhaseGripTightens, PhaseMapShrinks, PhaseRuin:
		return true
	}
	return false
}
