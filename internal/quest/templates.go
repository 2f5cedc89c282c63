package quest

import "github.com/duskmere/worldengine/internal/world"

// Reward tuning for the tutorial hunt.
const (
	firstHuntQuestID     = "first_hunt"
	firstHuntTargetKills = 1
	firstHuntRewardXP    = 10
	firstHuntRewardMoney = 5
)

// standardTemplates is the fixed roster posted while no cataclysm runs.
// Order matters only for readability; posting is keyed by id.
var standardTemplates = []world.QuestContract{
	{
		ID:            firstHuntQuestID,
		Status:        world.QuestStatusAvailable,
		ObjectiveKind: world.ObjectiveKillAny,
		Target:        firstHuntTargetKills,
		RewardXP:      firstHuntRewardXP,
		RewardMoney:   firstHuntRewardMoney,
	},
	{
		ID:            "trail_patrol",
		Status:        world.QuestStatusAvailable,
		ObjectiveKind: world.ObjectiveKillAny,
		Target:        2,
		RewardXP:      16,
		RewardMoney:   7,
	},
	{
		ID:            "supply_drop",
		Status:        world.QuestStatusAvailable,
		ObjectiveKind: world.ObjectiveTravelCount,
		Target:        2,
		RewardXP:      12,
		RewardMoney:   8,
	},
	{
		ID:            "crown_hunt_order",
		Status:        world.QuestStatusAvailable,
		ObjectiveKind: world.ObjectiveKillAny,
		Target:        2,
		RewardXP:      18,
		RewardMoney:   9,
	},
	{
		ID:            "syndicate_route_run",
		Status:        world.QuestStatusAvailable,
		ObjectiveKind: world.ObjectiveTravelCount,
		Target:        3,
		RewardXP:      16,
		RewardMoney:   10,
	},
	{
		ID:            "forest_path_clearance",
		Status:        world.QuestStatusAvailable,
		ObjectiveKind: world.ObjectiveKillAny,
		Target:        3,
		RewardXP:      20,
		RewardMoney:   8,
	},
	{
		ID:            "ruins_wayfinding",
		Status:        world.QuestStatusAvailable,
		ObjectiveKind: world.ObjectiveTravelCount,
		Target:        2,
		RewardXP:      14,
		RewardMoney:   9,
	},
}

// cataclysmTemplates replace the standard roster while the hazard clock
// runs. Completing one feeds pushback against the clock.
var cataclysmTemplates = []world.QuestContract{
	{
		ID:                "cataclysm_scout_front",
		Status:            world.QuestStatusAvailable,
		ObjectiveKind:     world.ObjectiveKillAny,
		Target:            3,
		RewardXP:          26,
		RewardMoney:       12,
		CataclysmPushback: true,
		PushbackTier:      1,
	},
	{
		ID:                "cataclysm_supply_lines",
		Status:            world.QuestStatusAvailable,
		ObjectiveKind:     world.ObjectiveTravelCount,
		Target:            2,
		RewardXP:          24,
		RewardMoney:       14,
		CataclysmPushback: true,
		PushbackTier:      1,
	},
	{
		ID:                    "cataclysm_alliance_accord",
		Status:                world.QuestStatusAvailable,
		ObjectiveKind:         world.ObjectiveKillAny,
		Target:                4,
		RewardXP:              34,
		RewardMoney:           18,
		CataclysmPushback:     true,
		PushbackTier:          2,
		RequiresAllianceRep:   10,
		RequiresAllianceCount: 2,
	},
}
