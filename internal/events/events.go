// Package events generates the weighted random world events (storms,
// blights, festivals, discoveries) and the separately-scheduled
// production shocks (booms/busts), grounded on the teacher's
// processRandomEvents (weighted percent-chance rolls producing a
// human-readable Event) and its ActiveBoosts/expiry-sweep idiom for
// time-limited modifiers.
package events

import (
	"fmt"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/rng"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// Generate rolls independently for each event kind this tick and
// returns any newly-created events. Each kind gets its own sub-stream
// (internal/rng.Stream.Split). Each Split draws one value from stream,
// so a kind's draws depend on its label and its position in the
// sequence below; a kind appended at the end leaves the earlier kinds'
// draws unchanged.
func Generate(w *worldstate.WorldState, stream *rng.Stream, cfg config.Events) []worldstate.WorldEvent {
	var out []worldstate.WorldEvent
	islandIDs := w.SortedIslandIDs()
	if len(islandIDs) == 0 {
		return out
	}

	if e, ok := rollStorm(islandIDs, stream.Split("storm"), cfg, w.Tick); ok {
		out = append(out, e)
	}
	if e, ok := rollBlight(islandIDs, stream.Split("blight"), cfg, w.Tick); ok {
		out = append(out, e)
	}
	if e, ok := rollFestival(islandIDs, stream.Split("festival"), cfg, w.Tick); ok {
		out = append(out, e)
	}
	if e, ok := rollDiscovery(islandIDs, stream.Split("discovery"), cfg, w.Tick); ok {
		out = append(out, e)
	}
	return out
}

func rollStorm(islandIDs []string, s *rng.Stream, cfg config.Events, tick uint64) (worldstate.WorldEvent, bool) {
	if !s.Bool(cfg.StormChancePerTick) {
		return worldstate.WorldEvent{}, false
	}
	target := islandIDs[s.IntN(len(islandIDs))]
	return worldstate.WorldEvent{
		ID: newEventID(s, "storm", tick), Type: worldstate.EventStorm, Target: target,
		StartTick: tick, EndTick: tick + uint64(6+s.IntN(12)),
		Modifiers: worldstate.EventModifiers{ShipSpeedMultiplier: 0.4, SpoilageMultiplier: 1.8},
	}, true
}

func rollBlight(islandIDs []string, s *rng.Stream, cfg config.Events, tick uint64) (worldstate.WorldEvent, bool) {
	if !s.Bool(cfg.BlightChancePerTick) {
		return worldstate.WorldEvent{}, false
	}
	target := islandIDs[s.IntN(len(islandIDs))]
	return worldstate.WorldEvent{
		ID: newEventID(s, "blight", tick), Type: worldstate.EventBlight, Target: target,
		StartTick: tick, EndTick: tick + uint64(24+s.IntN(48)),
		Modifiers: worldstate.EventModifiers{GrainProductionMultiplier: 0.5, SoilRegenMultiplier: 0.5},
	}, true
}

func rollFestival(islandIDs []string, s *rng.Stream, cfg config.Events, tick uint64) (worldstate.WorldEvent, bool) {
	if !s.Bool(cfg.FestivalChancePerTick) {
		return worldstate.WorldEvent{}, false
	}
	target := islandIDs[s.IntN(len(islandIDs))]
	return worldstate.WorldEvent{
		ID: newEventID(s, "festival", tick), Type: worldstate.EventFestival, Target: target,
		StartTick: tick, EndTick: tick + uint64(12+s.IntN(12)),
		Modifiers: worldstate.EventModifiers{LuxuryDemandMultiplier: 1.6, FoodDemandMultiplier: 1.2},
	}, true
}

func rollDiscovery(islandIDs []string, s *rng.Stream, cfg config.Events, tick uint64) (worldstate.WorldEvent, bool) {
	if !s.Bool(cfg.DiscoveryChancePerTick) {
		return worldstate.WorldEvent{}, false
	}
	target := islandIDs[s.IntN(len(islandIDs))]
	return worldstate.WorldEvent{
		ID: newEventID(s, "discovery", tick), Type: worldstate.EventDiscovery, Target: target,
		StartTick: tick, EndTick: tick + uint64(36+s.IntN(36)),
		Modifiers: worldstate.EventModifiers{ToolEfficiencyBoost: 0.25},
	}, true
}

// PruneExpired drops events whose EndTick has passed, the teacher's
// ActiveBoosts expiry-sweep idiom run once per tick.
func PruneExpired(w *worldstate.WorldState) {
	kept := w.Events[:0]
	for _, e := range w.Events {
		if e.Active(w.Tick) || e.StartTick > w.Tick {
			kept = append(kept, e)
		}
	}
	w.Events = kept
}

// RollProductionShocks separately schedules per-island, per-good boom/
// bust multipliers, a distinct mechanism from the worldwide event list
// because shocks are keyed to a specific good rather than broadcast via
// Modifiers (SPEC_FULL.md §4.10).
func RollProductionShocks(w *worldstate.WorldState, stream *rng.Stream, cfg config.Events) {
	shockStream := stream.Split("production-shock")
	for _, islandID := range w.SortedIslandIDs() {
		isl := w.Islands[islandID]
		for good := range isl.ProductionShocks {
			shock := isl.ProductionShocks[good]
			shock.TicksRemaining--
			if shock.TicksRemaining <= 0 {
				delete(isl.ProductionShocks, good)
			}
		}
		if !shockStream.Bool(cfg.ShockChancePerTick) {
			continue
		}
		goods := isl.SortedGoodIDs()
		if len(goods) == 0 {
			continue
		}
		good := goods[shockStream.IntN(len(goods))]
		if isl.ProductionShocks == nil {
			isl.ProductionShocks = map[worldstate.GoodID]*worldstate.ProductionShock{}
		}
		kind, mult := "boom", 1.5
		if shockStream.Bool(0.5) {
			kind, mult = "bust", 0.5
		}
		isl.ProductionShocks[good] = &worldstate.ProductionShock{
			Good: good, Kind: kind, Multiplier: mult, TicksRemaining: 12 + shockStream.IntN(24),
		}
	}
}

// newEventID derives a deterministic event id from the already-advanced
// stream state rather than a random UUID, since property 1 (determinism)
// requires identical ids across identically-seeded runs.
func newEventID(s *rng.Stream, kind string, tick uint64) string {
	return fmt.Sprintf("evt-%s-%d-%x", kind, tick, s.Uint64())
}
