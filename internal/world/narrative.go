package world

// Story seed statuses. A seed is created active, escalates in place, and is
// terminally marked resolved; it is never deleted early, only pruned by the
// list cap.
const (
	SeedStatusActive    = "active"
	SeedStatusSimmering = "simmering"
	SeedStatusEscalated = "escalated"
	SeedStatusCritical  = "critical"
	SeedStatusResolved  = "resolved"
)

// Escalation stages for a live story seed.
const (
	StageSimmering = "simmering"
	StageEscalated = "escalated"
	StageCritical  = "critical"
)

const (
	// TensionMax caps the narrative tension scalar.
	TensionMax = 100

	storySeedMax    = 12
	injectionLogMax = 20
)

// NarrativeState is the story director's sub-record.
type NarrativeState struct {
	TensionLevel      int                `json:"tension_level"`
	StorySeeds        []*StorySeed       `json:"story_seeds"`
	Relationships     *RelationshipGraph `json:"relationship_graph"`
	Injections        []InjectionMarker  `json:"injections"`
	FlashpointEchoes  []FlashpointEcho   `json:"flashpoint_echoes,omitempty"`
	LastInjectionTurn int                `json:"last_injection_turn"`
	LastCheckedTurn   int                `json:"last_checked_turn"`
	LastCadenceSeed   int64              `json:"last_cadence_seed"`
}

// NewNarrativeState returns the canonical empty narrative shape.
func NewNarrativeState() *NarrativeState {
	return &NarrativeState{
		StorySeeds:        []*StorySeed{},
		Relationships:     NewRelationshipGraph(),
		Injections:        []InjectionMarker{},
		LastInjectionTurn: noTurn,
	}
}

// StorySeed is a persistent narrative thread with an escalation stage,
// motivating pressure, and resolution variants.
type StorySeed struct {
	ID                 string   `json:"seed_id"`
	Kind               string   `json:"kind"`
	Status             string   `json:"status"`
	Initiator          string   `json:"initiator"`
	Motivation         string   `json:"motivation"`
	Pressure           string   `json:"pressure"`
	Opportunity        string   `json:"opportunity"`
	EscalationStage    string   `json:"escalation_stage"`
	EscalationPath     []string `json:"escalation_path"`
	ResolutionVariants []string `json:"resolution_variants"`
	FactionBias        string   `json:"faction_bias"`
	NarrativeTags      []string `json:"narrative_tags"`
	CreatedTurn        int      `json:"created_turn"`
	LastUpdateTurn     int      `json:"last_update_turn"`
}

// Live reports whether the seed still accepts escalation pressure.
func (s *StorySeed) Live() bool {
	switch s.Status {
	case SeedStatusActive, SeedStatusSimmering, SeedStatusEscalated:
		return true
	}
	return false
}

// InjectionMarker records one applied injection for pacing and variety
// checks.
type InjectionMarker struct {
	Turn int    `json:"turn"`
	Seed int64  `json:"seed"`
	Kind string `json:"kind"`
}

// FlashpointEcho is written by external systems when a flashpoint plays
// out; the director reads it as pressure on the tension target.
type FlashpointEcho struct {
	Turn         int    `json:"turn"`
	SeverityBand string `json:"severity_band"`
}

// noTurn marks "never happened" turn stamps so look-back windows stay
// closed on fresh worlds.
const noTurn = -10000

// RelationshipGraph returns the relationship graph, creating the canonical
// empty shape when absent.
func (n *NarrativeState) RelationshipGraph() *RelationshipGraph {
	if n.Relationships == nil {
		n.Relationships = NewRelationshipGraph()
	}
	return n.Relationships
}

// LiveSeeds returns the story seeds that still accept escalation pressure.
func (n *NarrativeState) LiveSeeds() []*StorySeed {
	var live []*StorySeed
	for _, row := range n.StorySeeds {
		if row != nil && row.Live() {
			live = append(live, row)
		}
	}
	return live
}

// AppendSeed appends a story seed, dropping the oldest beyond the cap.
func (n *NarrativeState) AppendSeed(row *StorySeed) {
	n.StorySeeds = append(n.StorySeeds, row)
	if overflow := len(n.StorySeeds) - storySeedMax; overflow > 0 {
		n.StorySeeds = n.StorySeeds[overflow:]
	}
}

// AppendInjection appends an injection marker to the bounded history.
func (n *NarrativeState) AppendInjection(marker InjectionMarker) {
	n.Injections = append(n.Injections, marker)
	if overflow := len(n.Injections) - injectionLogMax; overflow > 0 {
		n.Injections = n.Injections[overflow:]
	}
}

// LastInjection returns the most recent injection marker, if any.
func (n *NarrativeState) LastInjection() (InjectionMarker, bool) {
	if len(n.Injections) == 0 {
		return InjectionMarker{}, false
	}
	return n.Injections[len(n.Injections)-1], true
}

// RecentTags collects up to limit narrative tags from the newest story
// seeds backwards.
func (n *NarrativeState) RecentTags(limit int) []string {
	var tags []string
	for i := len(n.StorySeeds) - 1; i >= 0; i-- {
		row := n.StorySeeds[i]
		if row == nil {
			continue
		}
		for _, tag := range row.NarrativeTags {
			if tag == "" {
				continue
			}
			tags = append(tags, tag)
			if len(tags) >= limit {
				return tags
			}
		}
	}
	return tags
}

// AppendFlashpointEcho records flashpoint fallout for later tension
// scoring. It is the only sanctioned external write into NarrativeState.
func (n *NarrativeState) AppendFlashpointEcho(echo FlashpointEcho) {
	n.FlashpointEchoes = append(n.FlashpointEchoes, echo)
}

// FlashpointPressure scores recent flashpoint echoes within the window
// ending at turn: critical 4, high 3, moderate 2, anything else 1, capped
// at 12.
func (n *NarrativeState) FlashpointPressure(turn, window int) int {
	lowerBound := turn - window
	score := 0
	for _, row := range n.FlashpointEchoes {
		if row.Turn < lowerBound {
			continue
		}
		switch row.SeverityBand {
		case "critical":
			score += 4
		case "high":
			score += 3
		case "moderate":
			score += 2
		default:
			score++
		}
	}
	if score > 12 {
		return 12
	}
	return score
}

// ClampTension bounds a tension value to [0, TensionMax].
func ClampTension(value int) int {
	return clampInt(value, 0, TensionMax)
}
