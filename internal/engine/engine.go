// Package engine runs the fixed-order tick pipeline: per island,
// production, consumption, population, ecology, market pricing and depth
// recovery, and upkeep; then fish migration, shipping and crew per ship,
// shipyards, event generation, and finally the rng-state advance and
// canonical hash. It generalizes the
// teacher's tiered Engine/Simulation cascade
// (internal/engine/tick.go + simulation.go, whose TickMinute/Hour/Day/
// Week/Season callbacks each run a named phase in a fixed order) into
// a single per-tick cascade, since this simulation has one clock
// instead of five nested cadences.
package engine

import (
	"log/slog"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/consumption"
	"github.com/brinewake/archipelago/internal/crew"
	"github.com/brinewake/archipelago/internal/ecology"
	"github.com/brinewake/archipelago/internal/events"
	"github.com/brinewake/archipelago/internal/market"
	"github.com/brinewake/archipelago/internal/population"
	"github.com/brinewake/archipelago/internal/production"
	"github.com/brinewake/archipelago/internal/rng"
	"github.com/brinewake/archipelago/internal/shipping"
	"github.com/brinewake/archipelago/internal/shipyard"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// TickMetrics summarizes one tick's outcome for the external snapshot
// boundary (spec §6), mirroring the teacher's SimStats idiom.
type TickMetrics struct {
	Tick            uint64
	Hash            uint64
	EventsStarted   int
	ShipsArrived    int
	ShipsSunk       int
	ShipsDelivered  int
	FoodDeficit     float64
}

// Engine owns the configuration and rng stream that persist across
// ticks; WorldState itself is passed in and returned so callers (the
// agent manager included) control its lifetime explicitly.
type Engine struct {
	Cfg    config.Config
	Log    *slog.Logger
	stream *rng.Stream
}

// New constructs an Engine seeded from cfg.WorldGen.Seed.
func New(cfg config.Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Cfg: cfg, Log: log, stream: rng.New(uint64(cfg.WorldGen.Seed))}
}

// Resume rebuilds the engine's rng stream from a persisted state value,
// used when resuming a run from a snapshot rather than starting fresh.
func (e *Engine) Resume(rngState uint64) {
	e.stream = rng.New(rngState)
}

// Step runs exactly one tick of the fixed-order pipeline against w,
// mutating it in place, and returns the tick's metrics. Callers that
// need the pre-tick state preserved should call w.Clone() first; the
// agent manager does not, since it copies what it reads into an
// ObservableState before acting.
func (e *Engine) Step(w *worldstate.WorldState) TickMetrics {
	metrics := TickMetrics{Tick: w.Tick}

	for _, islandID := range w.SortedIslandIDs() {
		isl := w.Islands[islandID]

		outputs := production.Compute(isl, e.Cfg.Ecology, e.Cfg.Production)
		var fishExtraction, timberExtraction, farmingExtraction float64
		for _, o := range outputs {
			isl.Inventory[o.Good] += o.Amount
			switch o.Good {
			case "fish":
				fishExtraction = o.Extraction
			case "timber":
				timberExtraction = o.Extraction
			case "grain":
				farmingExtraction = o.Amount
			}
		}

		foodMod, luxuryMod := 1.0, 1.0
		for _, ev := range w.Events {
			if ev.Active(w.Tick) && ev.AppliesTo(islandID) {
				if ev.Modifiers.FoodDemandMultiplier > 0 {
					foodMod *= ev.Modifiers.FoodDemandMultiplier
				}
				if ev.Modifiers.LuxuryDemandMultiplier > 0 {
					luxuryMod *= ev.Modifiers.LuxuryDemandMultiplier
				}
			}
		}
		consResult := consumption.Apply(isl, e.Cfg.Consumption, foodMod, luxuryMod)
		metrics.FoodDeficit += consResult.FoodDeficit

		wageBySector := sectorWages(isl)
		population.Apply(isl, consResult, wageBySector, e.Cfg.Population)

		ecology.Apply(isl, fishExtraction, timberExtraction, farmingExtraction, e.Cfg.Ecology)

		market.UpdateConsumptionVelocity(isl, consResult.Consumed, e.Cfg.Market)
		market.UpdatePricing(isl, w.Goods, e.Cfg.Market, foodMod, luxuryMod)
		market.RecoverDepth(isl, e.Cfg.Market)

		settleUpkeep(isl, w)
	}

	ecology.MigrateFish(w, e.Cfg.Ecology)

	for _, shipID := range w.SortedShipIDs() {
		ship := w.Ships[shipID]
		e.stepShip(w, ship, &metrics)
	}

	for _, syID := range w.SortedShipyardIDs() {
		sy := w.Shipyards[syID]
		e.stepShipyard(w, sy, &metrics)
	}

	newEvents := events.Generate(w, e.stream.Split("events"), e.Cfg.Events)
	w.Events = append(w.Events, newEvents...)
	metrics.EventsStarted = len(newEvents)
	events.PruneExpired(w)
	events.RollProductionShocks(w, e.stream.Split("shocks"), e.Cfg.Events)

	w.RngState = e.stream.Uint64()
	w.Tick++

	hash, err := w.Hash()
	if err != nil {
		e.Log.Error("tick hash failed", "tick", w.Tick, "error", err)
	}
	metrics.Hash = hash
	return metrics
}

// stepShip advances one ship's voyage or dockside upkeep before its
// crew's pay/morale/desertion update, per spec §4.11 ("ship movement
// must precede crew update"): a ship that arrives or sinks this tick
// does so under the crew state it sailed the tick with, not the one
// its desertions leave behind.
func (e *Engine) stepShip(w *worldstate.WorldState, ship *worldstate.ShipState, metrics *TickMetrics) {
	eventMult := shipEventMultiplier(w, ship)
	atSea := ship.Location.Kind == worldstate.LocationAtSea

	if atSea {
		speedMult := eventMult.shipSpeed * crew.Efficiency(ship.Crew.Count, ship.Crew.Capacity, ship.Crew.Morale, e.Cfg.Crew)
		arrived := shipping.AdvanceVoyage(ship, speedMult, 1.0)
		shipping.ApplySpoilage(ship, w.Goods, 1.0, eventMult.spoilage, e.Cfg.Shipping)
		shipping.ApplyWear(ship, eventMult.wear, e.Cfg.Shipping)
		if ship.OperatingCostPerDay > 0 {
			shipping.ApplyTransportCost(ship, w, ship.OperatingCostPerDay/24)
		}
		if shipping.RollForSinking(ship, e.stream.Split("sink-"+ship.ID), eventMult.wear, e.Cfg.Shipping) {
			metrics.ShipsSunk++
			ship.Cargo = map[worldstate.GoodID]float64{}
			ship.Condition = 0
			return
		}
		if arrived {
			shipping.CompleteVoyage(ship)
			metrics.ShipsArrived++
		}
	} else if isl, ok := w.Islands[ship.Location.IslandID]; ok {
		warehouseMult := 1.0
		if wh, ok := isl.Buildings[worldstate.BuildingWarehouse]; ok {
			warehouseMult = 1.0 - 0.15*float64(wh.Level)*wh.Condition
			if warehouseMult < 0.2 {
				warehouseMult = 0.2
			}
		}
		shipping.ApplySpoilage(ship, w.Goods, warehouseMult, eventMult.spoilage, e.Cfg.Shipping)
		shipping.Repair(ship, isl, e.Cfg.Shipping)
	}

	paid, destroyed := crew.PayWages(&ship.Cash, &ship.Crew.UnpaidTicks, ship.Crew.Count, ship.Crew.WageRate*e.Cfg.Crew.BaseWageRate)
	_ = paid
	w.Economy.WageDestroyed += destroyed
	ship.Crew.Morale = crew.UpdateMorale(ship.Crew.Morale, ship.Crew.UnpaidTicks, ship.Crew.Count, ship.Crew.Capacity, atSea, e.Cfg.Crew)
	if deserters := crew.CheckDesertion(ship.Crew.Count, ship.Crew.Capacity, ship.Crew.Morale, ship.Crew.UnpaidTicks, 1.0, e.Cfg.Crew); deserters > 0 {
		ship.Crew.Count -= deserters
		if ship.Crew.Count < 0 {
			deserters += ship.Crew.Count
			ship.Crew.Count = 0
		}
		if !atSea {
			if isl, ok := w.Islands[ship.Location.IslandID]; ok {
				isl.Population.Size += float64(deserters)
			}
		}
	}
}

func (e *Engine) stepShipyard(w *worldstate.WorldState, sy *worldstate.ShipyardState, metrics *TickMetrics) {
	if sy.Active == nil {
		return
	}
	isl := w.Islands[sy.IslandID]
	laborAvailable := isl != nil && isl.Population.LaborShares[worldstate.SectorCrafting] > 0.01
	order := shipyard.Advance(sy, laborAvailable)
	if order == nil {
		return
	}
	shipID := e.newShipID()
	ship := shipyard.Deliver(order, shipID, sy.IslandID)
	w.Ships[shipID] = ship
	metrics.ShipsDelivered++
}

func (e *Engine) newShipID() string {
	return "ship-" + hexUint(e.stream.Uint64())
}

func hexUint(v uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}

type eventMultipliers struct {
	shipSpeed float64
	spoilage  float64
	wear      float64
}

func shipEventMultiplier(w *worldstate.WorldState, ship *worldstate.ShipState) eventMultipliers {
	m := eventMultipliers{shipSpeed: 1.0, spoilage: 1.0, wear: 1.0}
	target := ship.ID
	if ship.Location.Kind == worldstate.LocationAtSea && ship.Location.Route != nil {
		target = ship.Location.Route.Origin
	}
	for _, ev := range w.Events {
		if !ev.Active(w.Tick) {
			continue
		}
		if !ev.AppliesTo(target) && !ev.AppliesTo(ship.ID) {
			continue
		}
		if ev.Modifiers.ShipSpeedMultiplier > 0 {
			m.shipSpeed *= ev.Modifiers.ShipSpeedMultiplier
			m.wear *= 1.5
		}
		if ev.Modifiers.SpoilageMultiplier > 0 {
			m.spoilage *= ev.Modifiers.SpoilageMultiplier
		}
	}
	return m
}

func sectorWages(isl *worldstate.IslandState) map[worldstate.Sector]float64 {
	goodOfSector := map[worldstate.Sector]worldstate.GoodID{
		worldstate.SectorFarming: "grain", worldstate.SectorFishing: "fish",
		worldstate.SectorForestry: "timber", worldstate.SectorMining: "ore",
		worldstate.SectorCrafting: "tools",
	}
	out := make(map[worldstate.Sector]float64, len(goodOfSector)+1)
	for sector, good := range goodOfSector {
		out[sector] = isl.Market.Price[good]
	}
	out[worldstate.SectorServices] = 1.0
	return out
}

// settleUpkeep deducts an island's population upkeep from its
// treasury; if the island can't cover it, whatever balance remains is
// taken and added to Economy.TaxDestroyed, and the treasury stops at
// zero rather than going negative, directly grounding the
// teacher's collectTaxes upkeep-destruction idiom (SPEC_FULL.md §9
// decision 1). This is separate from the per-trade transaction tax
// market.ExecuteTrade destroys — upkeep is a population-driven expense,
// not a trade-driven one.
func settleUpkeep(isl *worldstate.IslandState, w *worldstate.WorldState) {
	if isl.Treasury == nil {
		return
	}
	upkeep := isl.Population.Size * 0.001
	if isl.Treasury.Balance >= upkeep {
		isl.Treasury.Balance -= upkeep
		isl.Treasury.Expenses += upkeep
	} else {
		destroyed := isl.Treasury.Balance
		isl.Treasury.Balance = 0
		w.Economy.TaxDestroyed += destroyed
	}
	isl.Treasury.Income = 0
	isl.Treasury.Expenses = 0
}
