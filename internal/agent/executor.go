// Executor: the rule-based sell→buy→navigate→wait cascade that turns
// a Strategy into concrete worldstate mutations. Grounded on the
// teacher's tiered Tier0Decide cascade (internal/agents/behavior.go):
// a fixed priority order of concrete actions, each checked and applied
// in sequence rather than chosen by a single scoring function.
package agent

import (
	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/market"
	"github.com/brinewake/archipelago/internal/shipping"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// Executor applies one agent's Plan against the live world for the
// tick, advancing its Stage as each step completes.
type Executor struct {
	MarketCfg config.Market
}

// Step advances plan by exactly one cascade stage against w, returning
// true once the plan can be retired: its ship is docked at the wait
// stage, or the ship no longer exists. Stage itself stops at StageWait.
func (ex *Executor) Step(w *worldstate.WorldState, plan *Plan) bool {
	ship, ok := w.Ships[plan.Strategy.ShipID]
	if !ok {
		return true
	}

	switch plan.Stage {
	case StageSell:
		ex.trySell(w, ship, plan)
		plan.Stage = StageBuy
		return false
	case StageBuy:
		ex.tryBuy(w, ship, plan)
		plan.Stage = StageNavigate
		return false
	case StageNavigate:
		ex.tryNavigate(w, ship, plan)
		plan.Stage = StageWait
		return false
	case StageWait:
		if ship.Location.Kind == worldstate.LocationAtIsland {
			return true
		}
		return false
	default:
		return true
	}
}

// trySell liquidates cargo the plan doesn't need at the ship's current
// island, ignoring the attempt entirely if the ship is at sea (the
// cascade simply no-ops that stage rather than failing the plan).
func (ex *Executor) trySell(w *worldstate.WorldState, ship *worldstate.ShipState, plan *Plan) {
	if ship.Location.Kind != worldstate.LocationAtIsland {
		return
	}
	isl, ok := w.Islands[ship.Location.IslandID]
	if !ok {
		return
	}
	var lines []market.TradeLine
	for good, qty := range ship.Cargo {
		if qty <= 0 {
			continue
		}
		if plan.Strategy.Kind == StrategyLiquidate || string(good) != plan.Strategy.BuyGood {
			lines = append(lines, market.TradeLine{Good: good, Quantity: qty})
		}
	}
	if len(lines) == 0 {
		return
	}
	taxDestroyed, err := market.ExecuteTrade(isl, ship, lines, false, ex.MarketCfg)
	if err == nil {
		w.Economy.TaxDestroyed += taxDestroyed
	}
}

// tryBuy loads cargo for a trade-route strategy, spending as much cash
// as the ship can safely commit while leaving room under capacity.
func (ex *Executor) tryBuy(w *worldstate.WorldState, ship *worldstate.ShipState, plan *Plan) {
	if plan.Strategy.Kind != StrategyTradeRoute {
		return
	}
	if ship.Location.Kind != worldstate.LocationAtIsland || ship.Location.IslandID != plan.Strategy.BuyIsland {
		return
	}
	isl, ok := w.Islands[ship.Location.IslandID]
	if !ok {
		return
	}
	good := worldstate.GoodID(plan.Strategy.BuyGood)
	price := isl.Market.Price[good]
	if price <= 0 {
		return
	}
	// Size against the worst-case fill (price impact capped at 0.5, plus
	// tax) so a cash-bound order is never rejected for insufficient funds.
	affordable := ship.Cash / (price * 1.5 * (1 + ex.MarketCfg.TaxRate))
	roomLeft := ship.CargoCapacity - ship.CargoVolume(w.Goods)
	bulk := w.Goods[good].Bulkiness
	if bulk <= 0 {
		bulk = 1
	}
	byRoom := roomLeft / bulk
	qty := affordable
	if byRoom < qty {
		qty = byRoom
	}
	available := isl.Inventory[good]
	if available < qty {
		qty = available
	}
	if qty <= 0 {
		return
	}
	taxDestroyed, err := market.ExecuteTrade(isl, ship, []market.TradeLine{{Good: good, Quantity: qty}}, true, ex.MarketCfg)
	if err == nil {
		w.Economy.TaxDestroyed += taxDestroyed
	}
}

// tryNavigate starts the voyage toward the plan's sell island if the
// ship is docked and has somewhere to go.
func (ex *Executor) tryNavigate(w *worldstate.WorldState, ship *worldstate.ShipState, plan *Plan) {
	if plan.Strategy.Kind != StrategyTradeRoute {
		return
	}
	if ship.Location.Kind != worldstate.LocationAtIsland {
		return
	}
	destIsl, ok := w.Islands[plan.Strategy.SellIsland]
	if !ok {
		return
	}
	originIsl, ok := w.Islands[ship.Location.IslandID]
	if !ok {
		return
	}
	shipping.BeginVoyage(ship, originIsl.Position, destIsl.Position, destIsl.ID)
}
