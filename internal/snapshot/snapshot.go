// Package snapshot defines the JSON-tagged structs that form the
// external boundary named in spec §6: a dashboard, a WebSocket feed, or
// a SQLite analytics writer all consume this shape without this module
// implementing any of those transports itself. Grounded on the
// teacher's gardener.WorldStatus/EconomyData
// (internal/gardener/observe.go), which is the same kind of "mirror an
// external API's shape without implementing the transport" struct set.
package snapshot

import (
	"github.com/brinewake/archipelago/internal/engine"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// IslandSnapshot is one island's externally-visible state for the tick.
type IslandSnapshot struct {
	ID         string                         `json:"id"`
	Name       string                         `json:"name"`
	Position   worldstate.Vec2                `json:"position"`
	Population float64                        `json:"population"`
	Health     float64                        `json:"health"`
	Prices     map[worldstate.GoodID]float64  `json:"prices"`
	Inventory  map[worldstate.GoodID]float64  `json:"inventory"`
	Treasury   float64                        `json:"treasury"`
}

// ShipSnapshot is one ship's externally-visible state for the tick.
type ShipSnapshot struct {
	ID        string                         `json:"id"`
	OwnerID   string                         `json:"owner_agent_id"`
	Cash      float64                        `json:"cash"`
	Cargo     map[worldstate.GoodID]float64  `json:"cargo"`
	AtIsland  string                         `json:"at_island,omitempty"`
	AtSea     bool                           `json:"at_sea"`
	Condition float64                        `json:"condition"`
}

// EconomySnapshot mirrors worldstate.EconomyMetrics for the external
// boundary, keeping the internal type decoupled from the wire shape.
type EconomySnapshot struct {
	TaxDestroyed           float64 `json:"tax_destroyed"`
	TransportCostDestroyed float64 `json:"transport_cost_destroyed"`
	WageDestroyed          float64 `json:"wage_destroyed"`
}

// Snapshot is the full externally-consumable view of one tick (spec §6).
type Snapshot struct {
	Tick    uint64             `json:"tick"`
	Hash    uint64             `json:"hash"`
	Islands []IslandSnapshot   `json:"islands"`
	Ships   []ShipSnapshot     `json:"ships"`
	Events  []worldstate.WorldEvent `json:"events"`
	Economy EconomySnapshot    `json:"economy"`
}

// Build projects a committed WorldState plus the engine's tick metrics
// into the external Snapshot shape.
func Build(w *worldstate.WorldState, metrics engine.TickMetrics) Snapshot {
	snap := Snapshot{Tick: w.Tick, Hash: metrics.Hash, Events: w.SortedEvents()}

	for _, id := range w.SortedIslandIDs() {
		isl := w.Islands[id]
		treasury := 0.0
		if isl.Treasury != nil {
			treasury = isl.Treasury.Balance
		}
		snap.Islands = append(snap.Islands, IslandSnapshot{
			ID: isl.ID, Name: isl.Name, Position: isl.Position,
			Population: isl.Population.Size, Health: isl.Population.Health,
			Prices: copyGoodMap(isl.Market.Price), Inventory: copyGoodMap(isl.Inventory),
			Treasury: treasury,
		})
	}

	for _, id := range w.SortedShipIDs() {
		s := w.Ships[id]
		sn := ShipSnapshot{
			ID: s.ID, OwnerID: s.OwnerAgentID, Cash: s.Cash,
			Cargo: copyGoodMap(s.Cargo), Condition: s.Condition,
		}
		if s.Location.Kind == worldstate.LocationAtSea {
			sn.AtSea = true
		} else {
			sn.AtIsland = s.Location.IslandID
		}
		snap.Ships = append(snap.Ships, sn)
	}

	snap.Economy = EconomySnapshot{
		TaxDestroyed:           w.Economy.TaxDestroyed,
		TransportCostDestroyed: w.Economy.TransportCostDestroyed,
		WageDestroyed:          w.Economy.WageDestroyed,
	}
	return snap
}

func copyGoodMap(m map[worldstate.GoodID]float64) map[worldstate.GoodID]float64 {
	out := make(map[worldstate.GoodID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
