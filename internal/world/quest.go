package world

// Quest contract statuses.
const (
	QuestStatusAvailable = "available"
	QuestStatusActive    = "active"
	QuestStatusReady     = "ready_to_turn_in"
	QuestStatusCompleted = "completed"
	QuestStatusFailed    = "failed"
)

// Quest objective kinds.
const (
	ObjectiveKillAny     = "kill_any"
	ObjectiveTravelCount = "travel_count"
)

// QuestRegistry maps quest id to its contract.
type QuestRegistry map[string]*QuestContract

// QuestContract is a templated objective record with progress and reward
// counters. Terminal contracts are kept for audit and consequence
// messaging, never deleted.
type QuestContract struct {
	ID               string `json:"quest_id"`
	Status           string `json:"status"`
	ObjectiveKind    string `json:"objective_kind"`
	Progress         int    `json:"progress"`
	Target           int    `json:"target"`
	RewardXP         int    `json:"reward_xp"`
	RewardMoney      int    `json:"reward_money"`
	SeedKey          string `json:"seed_key"`
	OwnerCharacterID int    `json:"owner_character_id,omitempty"`
	ExpiresTurn      int    `json:"expires_turn,omitempty"`
	CompletedTurn    int    `json:"completed_turn,omitempty"`
	FailedTurn       int    `json:"failed_turn,omitempty"`
	FailedReason     string `json:"failed_reason,omitempty"`

	// Cataclysm pushback contracts only.
	CataclysmPushback bool   `json:"cataclysm_pushback,omitempty"`
	PushbackTier      int    `json:"pushback_tier,omitempty"`
	SpawnedTurn       int    `json:"spawned_turn,omitempty"`
	PushbackFocus     string `json:"pushback_focus,omitempty"`
	Phase             string `json:"phase,omitempty"`

	// Tier-2 pushback gating. Zero means no requirement.
	RequiresAllianceRep   int `json:"requires_alliance_reputation,omitempty"`
	RequiresAllianceCount int `json:"requires_alliance_count,omitempty"`
}

// AddProgress advances the contract by amount, capping at the target, and
// flips it to ready_to_turn_in when the target is reached. It reports
// whether the contract became ready.
func (q *QuestContract) AddProgress(amount, turn int) bool {
	target := q.Target
	if target < 1 {
		target = 1
	}
	progress := q.Progress + amount
	if progress > target {
		progress = target
	}
	q.Progress = progress
	if progress < target {
		return false
	}
	q.Status = QuestStatusReady
	q.CompletedTurn = turn
	return true
}
