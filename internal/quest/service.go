// Package quest maintains the quest board: it expires stale contracts,
// posts templated contracts each tick, and scores objective progress from
// combat and travel.
package quest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/duskmere/worldengine/internal/event"
	"github.com/duskmere/worldengine/internal/seed"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/world"
)

// TickPriority orders the quest handlers before the director on each tick.
const TickPriority = 20

// Seed derivation namespaces.
const (
	templateNamespace          = "quest.template"
	cataclysmTemplateNamespace = "quest.cataclysm.template"
)

// Service is the quest board handler.
type Service struct {
	store storage.WorldStore
}

// New creates a quest Service.
func New(store storage.WorldStore) *Service {
	return &Service{store: store}
}

// Register subscribes the tick and combat handlers on the bus.
func (s *Service) Register(bus *event.Bus) {
	bus.Subscribe(event.KindTickAdvanced, s.onTickAdvanced, TickPriority)
	bus.Subscribe(event.KindMonsterSlain, s.onMonsterSlain, TickPriority)
}

func (s *Service) onTickAdvanced(ctx context.Context, evt event.Event) error {
	tick, ok := evt.(event.TickAdvanced)
	if !ok {
		return nil
	}

	w, err := s.store.LoadDefault(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	turnAfter := tick.TurnAfter
	quests := w.Quests()

	expireOverdue(w, quests, turnAfter)

	// Turn zero and below never posts the board.
	if turnAfter < 1 {
		return s.save(ctx, w)
	}

	if w.Cataclysm().Active {
		syncCataclysmTemplates(w, quests, turnAfter)
	} else {
		syncStandardTemplates(quests, turnAfter)
	}

	// Travel objectives score one leg per tick while active.
	for _, q := range quests {
		if q == nil || q.Status != world.QuestStatusActive {
			continue
		}
		if q.ObjectiveKind != world.ObjectiveTravelCount {
			continue
		}
		q.AddProgress(1, turnAfter)
	}

	return s.save(ctx, w)
}

func (s *Service) onMonsterSlain(ctx context.Context, evt event.Event) error {
	slain, ok := evt.(event.MonsterSlain)
	if !ok {
		return nil
	}

	w, err := s.store.LoadDefault(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	touched := false
	for _, q := range w.Quests() {
		if q == nil || q.Status != world.QuestStatusActive {
			continue
		}
		if q.ObjectiveKind != world.ObjectiveKillAny {
			continue
		}
		q.AddProgress(1, slain.Turn)
		q.OwnerCharacterID = slain.ByCharacterID
		touched = true
	}
	if !touched {
		return nil
	}
	return s.save(ctx, w)
}

func (s *Service) save(ctx context.Context, w *world.World) error {
	if err := s.store.Save(ctx, w); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	return nil
}

// expireOverdue fails active contracts past their deadline and records one
// consequence per failure. Contracts without a deadline never expire. Ids
// are walked in sorted order so same-tick failures append their
// consequences identically on every run.
func expireOverdue(w *world.World, quests world.QuestRegistry, turnAfter int) {
	ids := make([]string, 0, len(quests))
	for id := range quests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		q := quests[id]
		if q == nil || q.Status != world.QuestStatusActive {
			continue
		}
		if q.ExpiresTurn <= 0 || turnAfter <= q.ExpiresTurn {
			continue
		}
		q.Status = world.QuestStatusFailed
		q.FailedTurn = turnAfter
		q.FailedReason = "expired"
		w.AppendConsequence(
			fmt.Sprintf("You failed to finish %s in time.", questTitle(id)),
			"quest_expired",
			turnAfter,
		)
	}
}

// syncStandardTemplates removes unclaimed pushback contracts and posts any
// missing standard contracts with a fresh seed key.
func syncStandardTemplates(quests world.QuestRegistry, worldTurn int) {
	for id, q := range quests {
		if q != nil && q.CataclysmPushback && q.Status == world.QuestStatusAvailable {
			delete(quests, id)
		}
	}

	for _, template := range standardTemplates {
		if _, exists := quests[template.ID]; exists {
			continue
		}
		seedValue := seed.Derive(templateNamespace, map[string]any{
			"world_turn":     worldTurn,
			"quest_id":       template.ID,
			"objective_kind": template.ObjectiveKind,
		})
		contract := template
		contract.SeedKey = fmt.Sprintf("quest:%s:%d", template.ID, seedValue)
		quests[template.ID] = &contract
	}
}

// syncCataclysmTemplates removes unclaimed standard contracts and posts the
// pushback roster stamped with the clock's kind and phase. Contracts a
// player already engaged are left alone.
func syncCataclysmTemplates(w *world.World, quests world.QuestRegistry, worldTurn int) {
	clock := w.Cataclysm()

	for id, q := range quests {
		if q != nil && !q.CataclysmPushback && q.Status == world.QuestStatusAvailable {
			delete(quests, id)
		}
	}

	for _, template := range cataclysmTemplates {
		if existing := quests[template.ID]; existing != nil {
			switch existing.Status {
			case world.QuestStatusActive, world.QuestStatusReady,
				world.QuestStatusCompleted, world.QuestStatusFailed:
				continue
			}
		}
		seedValue := seed.Derive(cataclysmTemplateNamespace, map[string]any{
			"cataclysm_seed": clock.Seed,
			"quest_id":       template.ID,
			"kind":           clock.Kind,
			"phase":          clock.Phase,
		})
		contract := template
		contract.SeedKey = fmt.Sprintf("quest:%s:%d", template.ID, seedValue)
		contract.SpawnedTurn = worldTurn
		contract.PushbackFocus = clock.Kind
		contract.Phase = clock.Phase
		quests[template.ID] = &contract
	}
}

// questTitle renders a quest id for player-facing messages: underscores to
// spaces, each word capitalized.
func questTitle(id string) string {
	words := strings.Split(id, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
