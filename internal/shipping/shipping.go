// Package shipping drives a ship's voyage life-cycle: progress toward
// destination, cargo spoilage, hull condition wear, transport-cost
// debits, and the small per-tick chance of sinking. Repair converts
// island timber back into condition.
//
// Route/progress/ETA generalizes the teacher's resolveMerchantTrade
// travel-ticks/cargo/destination triad (internal/engine/market.go),
// with terrain-cost hex-stepping replaced by straight-line Euclidean
// distance since ships here cross open water rather than hex edges.
package shipping

import (
	"math"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/rng"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// BeginVoyage starts a ship toward destination from its current island
// dock. It is a no-op if the ship is already at sea.
func BeginVoyage(ship *worldstate.ShipState, originPos, destPos worldstate.Vec2, destinationID string) {
	if ship.Location.Kind == worldstate.LocationAtSea {
		return
	}
	dist := distance(originPos, destPos)
	ship.Location = worldstate.ShipLocation{
		Kind: worldstate.LocationAtSea,
		Route: &worldstate.Route{
			Origin:        ship.Location.IslandID,
			Destination:   destinationID,
			TotalDistance: dist,
			Progress:      0,
		},
	}
}

func distance(a, b worldstate.Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AdvanceVoyage moves a ship along its route by one tick of effective
// speed (base speed scaled by condition and any active event
// modifier), and returns true once it has arrived. Progress is
// monotone non-decreasing (spec §4.7 invariant), enforced by clamping
// to [0,1] here rather than trusting the distance arithmetic.
func AdvanceVoyage(ship *worldstate.ShipState, speedMultiplier float64, hoursPerTick float64) bool {
	route := ship.Location.Route
	if route == nil {
		return false
	}
	effectiveSpeed := ship.BaseSpeed * (0.4 + 0.6*ship.Condition) * speedMultiplier
	if route.TotalDistance <= 0 {
		route.Progress = 1
	} else {
		advance := effectiveSpeed * hoursPerTick / route.TotalDistance
		route.Progress += advance
	}
	if route.Progress >= 1 {
		route.Progress = 1
		return true
	}
	if route.Progress < 0 {
		route.Progress = 0
	}
	remaining := route.TotalDistance * (1 - route.Progress)
	if effectiveSpeed > 0 {
		route.ETAHours = remaining / effectiveSpeed
	}
	ship.TotalDistanceTraveled += effectiveSpeed * hoursPerTick
	return false
}

// CompleteVoyage docks an arrived ship at its route's destination.
func CompleteVoyage(ship *worldstate.ShipState) {
	if ship.Location.Route == nil {
		return
	}
	dest := ship.Location.Route.Destination
	ship.Location = worldstate.ShipLocation{Kind: worldstate.LocationAtIsland, IslandID: dest}
}

// ApplySpoilage decays cargo exponentially by each good's spoilage
// rate, worsened by a storm modifier and eased by a docked warehouse.
func ApplySpoilage(ship *worldstate.ShipState, goods map[worldstate.GoodID]worldstate.GoodDefinition, warehouseMultiplier, eventMultiplier float64, cfg config.Shipping) {
	for _, good := range ship.SortedCargoGoods() {
		rate := goods[good].Spoilage * cfg.SpoilageBaseRate / 0.01 * warehouseMultiplier * eventMultiplier
		qty := ship.Cargo[good]
		decayed := qty * math.Exp(-rate)
		ship.Cargo[good] = decayed
	}
}

// ApplyTransportCost debits the per-tick operating cost from the ship
// and destroys it (SPEC_FULL.md §9 decision 1: transport cost is a
// sink, matching the teacher's settlement-upkeep destruction idiom in
// collectTaxes), recording the destroyed amount on the world economy
// ledger for the conservation property check.
func ApplyTransportCost(ship *worldstate.ShipState, w *worldstate.WorldState, costPerTick float64) {
	if costPerTick <= 0 {
		return
	}
	pay := costPerTick
	if ship.Cash < pay {
		pay = ship.Cash
	}
	ship.Cash -= pay
	ship.CumulativeTransportCost += pay
	ship.LastVoyageCost = pay
	w.Economy.TransportCostDestroyed += pay
}

// ApplyWear degrades hull condition by the configured per-tick rate
// while at sea, worsened during storms.
func ApplyWear(ship *worldstate.ShipState, eventMultiplier float64, cfg config.Shipping) {
	if ship.Location.Kind != worldstate.LocationAtSea {
		return
	}
	ship.Condition -= cfg.ConditionWearRate * eventMultiplier
	if ship.Condition < 0 {
		ship.Condition = 0
	}
}

// RollForSinking draws this tick's sinking check for a ship at sea; the
// probability rises steeply as condition approaches zero and during
// storms. Returns true if the ship sinks.
func RollForSinking(ship *worldstate.ShipState, stream *rng.Stream, eventMultiplier float64, cfg config.Shipping) bool {
	if ship.Location.Kind != worldstate.LocationAtSea {
		return false
	}
	conditionFactor := 1.0
	if ship.Condition < 0.3 {
		conditionFactor = 1 + (0.3-ship.Condition)*10
	}
	p := cfg.SinkProbabilityBase * conditionFactor * eventMultiplier
	return stream.Bool(p)
}

// Repair spends island timber to restore condition, limited by the
// island's available timber inventory. It charges the ship no coin.
// Returns the condition restored.
func Repair(ship *worldstate.ShipState, isl *worldstate.IslandState, cfg config.Shipping) float64 {
	if ship.Condition >= 1 {
		return 0
	}
	deficitPct := (1 - ship.Condition) * 100
	timberNeeded := deficitPct * cfg.RepairTimberPerPct
	timberAvailable := isl.Inventory["timber"]
	if timberAvailable < timberNeeded {
		timberNeeded = timberAvailable
	}
	restoredPct := 0.0
	if cfg.RepairTimberPerPct > 0 {
		restoredPct = timberNeeded / cfg.RepairTimberPerPct
	}
	isl.Inventory["timber"] -= timberNeeded
	ship.Condition += restoredPct / 100
	if ship.Condition > 1 {
		ship.Condition = 1
	}
	return restoredPct / 100
}
