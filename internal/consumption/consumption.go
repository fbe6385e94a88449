// Package consumption applies each island's population food and luxury
// draw against inventory, in the teacher's decayGood/applyEat idiom:
// deduct what's available first, treat anything unmet as an explicit
// deficit rather than going negative. The teacher preferred grain over
// fish "due to lower spoilage" (internal/agents/behavior.go, applyEat);
// this consumption order keeps that preference as a per-island
// priority list rather than a per-agent choice.
package consumption

import (
	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// foodPriority is the order food goods are drawn down in: grain, the
// lower-spoilage good, first, then fish, regardless of market price.
var foodPriority = []worldstate.GoodID{"grain", "fish"}

var luxuryPriority = []worldstate.GoodID{"spices", "cloth"}

// Result reports one island's consumption outcome for the tick.
type Result struct {
	FoodDeficit   float64 // unmet food demand, in grain-equivalent units
	LuxuryDeficit float64
	// Consumed is the actual amount of each good drawn from inventory
	// this tick, keyed by good id. The market engine feeds this into
	// the good's consumption-velocity EMA (spec §4.6).
	Consumed map[worldstate.GoodID]float64
}

// Apply draws food and luxury consumption from an island's inventory
// proportional to population size, mutating Inventory in place and
// returning any unmet demand.
func Apply(isl *worldstate.IslandState, cfg config.Consumption, eventFoodMod, eventLuxuryMod float64) Result {
	res := Result{Consumed: make(map[worldstate.GoodID]float64, len(foodPriority)+len(luxuryPriority))}

	healthFactor := cfg.HealthConsumptionFactor
	if healthFactor <= 0 {
		healthFactor = 1.0
	}
	demand := isl.Population.Size * cfg.FoodPerCapita * eventFoodMod * healthFactor
	for i, good := range foodPriority {
		if demand <= 0 {
			break
		}
		drawable := demand
		if i > 0 {
			// Secondary food goods are an imperfect substitute for the
			// priority good: a substitution elasticity below 1 leaves
			// part of the unmet demand as deficit rather than fully
			// covering it from the next good in line.
			drawable = demand * cfg.FoodSubstitutionElasticity
		}
		available := isl.Inventory[good]
		take := available
		if take > drawable {
			take = drawable
		}
		isl.Inventory[good] = available - take
		res.Consumed[good] += take
		demand -= take
	}
	res.FoodDeficit = demand

	luxuryDemand := isl.Population.Size * cfg.LuxuryPerCapita * eventLuxuryMod
	for _, good := range luxuryPriority {
		if luxuryDemand <= 0 {
			break
		}
		available := isl.Inventory[good]
		take := available
		if take > luxuryDemand {
			take = luxuryDemand
		}
		isl.Inventory[good] = available - take
		res.Consumed[good] += take
		luxuryDemand -= take
	}
	res.LuxuryDeficit = luxuryDemand

	return res
}
