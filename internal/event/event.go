// Package event defines the engine's event kinds and the dispatch bus that
// fans them out to subscribers in a deterministic order.
package event

// Kind identifies the kind of an engine event.
type Kind string

// World progression events.
const (
	// KindTickAdvanced records that the world turn counter advanced.
	KindTickAdvanced Kind = "world.tick_advanced"
)

// Combat events. Produced by the external combat resolver; the engine only
// consumes them.
const (
	// KindMonsterSlain records that a monster died in combat.
	KindMonsterSlain Kind = "combat.monster_slain"
)

// Event is implemented by every payload dispatched through the Bus.
type Event interface {
	// EventKind identifies the kind used for subscriber routing.
	EventKind() Kind
}

// TickAdvanced announces that the world turn counter reached TurnAfter.
// Exactly one TickAdvanced is published per Tick call, even when the call
// batches several turns.
type TickAdvanced struct {
	// TurnAfter is the turn counter value after the tick completed.
	TurnAfter int
}

// EventKind implements Event.
func (TickAdvanced) EventKind() Kind { return KindTickAdvanced }

// MonsterSlain announces a combat kill. IDs are opaque references owned by
// the combat and persistence layers.
type MonsterSlain struct {
	// MonsterID identifies the slain monster.
	MonsterID int
	// LocationID identifies where the kill happened.
	LocationID int
	// ByCharacterID identifies the killing character.
	ByCharacterID int
	// Turn is the world turn the kill occurred on.
	Turn int
}

// EventKind implements Event.
func (MonsterSlain) EventKind() Kind { return KindMonsterSlain }
