// Package agent implements the two-tier trader cognition loop: a
// trigger classifier decides whether an agent needs to think this tick,
// a Strategist (advisor-backed or deterministic fallback) sets a
// Strategy, and an Executor turns that strategy into concrete market
// and shipping actions.
//
// ObservableState is the agent-facing read-only world view, grounded on
// the teacher's gardener.Observer (internal/gardener/observe.go), which
// fetched a handful of read-only JSON views of world state rather than
// handing the Gardener the live simulation object. Here the same
// boundary exists in-process: agents never see *worldstate.WorldState
// directly, only the snapshot a Manager builds for them each turn.
package agent

import (
	"github.com/brinewake/archipelago/internal/worldstate"
)

// IslandView is one island's agent-visible state.
type IslandView struct {
	ID         string
	Name       string
	Position   worldstate.Vec2
	Prices     map[worldstate.GoodID]float64
	Inventory  map[worldstate.GoodID]float64
	BuyDepth   map[worldstate.GoodID]float64
	SellDepth  map[worldstate.GoodID]float64
	Population float64
	Health     float64
}

// ShipView is one ship's agent-visible state.
type ShipView struct {
	ID            string
	Cash          float64
	Cargo         map[worldstate.GoodID]float64
	CargoCapacity float64
	AtIsland      string // empty if at sea
	AtSea         bool
	Destination   string
	Progress      float64
	Condition     float64
	CrewCount     int
	CrewMorale    float64
}

// ObservableState is the full read-only view an agent's strategist and
// executor act on for one tick.
type ObservableState struct {
	Tick      uint64
	AgentID   string
	Cash      float64
	Ships     []ShipView
	Islands   []IslandView
	Events    []worldstate.WorldEvent
}

// BuildObservableState projects the world into one agent's view,
// iterating islands and ships in sorted order so two identical worlds
// always produce byte-identical views (spec property 1).
func BuildObservableState(w *worldstate.WorldState, agentID string) ObservableState {
	a := w.Agents[agentID]
	obs := ObservableState{Tick: w.Tick, AgentID: agentID}
	if a == nil {
		return obs
	}
	obs.Cash = a.Assets.Cash

	for _, islandID := range w.SortedIslandIDs() {
		isl := w.Islands[islandID]
		obs.Islands = append(obs.Islands, IslandView{
			ID: isl.ID, Name: isl.Name, Position: isl.Position,
			Prices:     copyGoodMap(isl.Market.Price),
			Inventory:  copyGoodMap(isl.Inventory),
			BuyDepth:   copyGoodMap(isl.Market.BuyDepth),
			SellDepth:  copyGoodMap(isl.Market.SellDepth),
			Population: isl.Population.Size,
			Health:     isl.Population.Health,
		})
	}

	for _, shipID := range a.Assets.ShipIDs {
		ship, ok := w.Ships[shipID]
		if !ok {
			continue
		}
		sv := ShipView{
			ID: ship.ID, Cash: ship.Cash, Cargo: copyGoodMap(ship.Cargo),
			CargoCapacity: ship.CargoCapacity, Condition: ship.Condition,
			CrewCount: ship.Crew.Count, CrewMorale: ship.Crew.Morale,
		}
		if ship.Location.Kind == worldstate.LocationAtSea {
			sv.AtSea = true
			if ship.Location.Route != nil {
				sv.Destination = ship.Location.Route.Destination
				sv.Progress = ship.Location.Route.Progress
			}
		} else {
			sv.AtIsland = ship.Location.IslandID
		}
		obs.Ships = append(obs.Ships, sv)
	}

	obs.Events = w.SortedEvents()
	return obs
}

func copyGoodMap(m map[worldstate.GoodID]float64) map[worldstate.GoodID]float64 {
	out := make(map[worldstate.GoodID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
