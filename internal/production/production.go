// Package production computes each island's per-good output for the
// tick from a multiplicative modifier stack (labor share, ecosystem
// yield, tool availability, population health, the workshop building
// bonus, and any active production shock). WorldEvent modifiers, such
// as a blight's grain multiplier, are not applied. It generalizes the
// teacher's ResolveWork/productionAmount pair
// (internal/engine/production.go), which combined a skill factor with
// hex-resource depletion gating into a single per-agent output number;
// here the same shape runs per-island, per-good, over a labor share
// instead of a single agent's skill.
package production

import (
	"math"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/ecology"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// Output is one good's computed production for the tick, returned
// alongside the extraction it drew from the renewable stock so the
// ecology engine can apply it without recomputing production logic.
type Output struct {
	Good       worldstate.GoodID
	Amount     float64
	Extraction float64 // 0 for non-extractive goods
}

var sectorOf = map[worldstate.GoodID]worldstate.Sector{
	"grain": worldstate.SectorFarming, "fish": worldstate.SectorFishing,
	"timber": worldstate.SectorForestry, "ore": worldstate.SectorMining,
	"tools": worldstate.SectorCrafting, "spices": worldstate.SectorCrafting, "cloth": worldstate.SectorCrafting,
}

// Compute returns this tick's production for every good the island has
// a base rate for. It does not mutate isl; callers apply Output.Amount
// to inventory and Output.Extraction to the ecology engine separately,
// keeping the fixed stage order (production reads last tick's ecology
// state, ecology consumes this tick's extraction) explicit rather than
// implicit in shared mutation.
func Compute(isl *worldstate.IslandState, ecoCfg config.Ecology, prodCfg config.Production) []Output {
	outputs := make([]Output, 0, len(isl.Production.BaseRate))
	toolUnits := isl.Inventory["tools"]
	healthMod := 0.5 + 0.5*isl.Population.Health

	labourAlpha := prodCfg.LabourAlpha
	if labourAlpha <= 0 {
		labourAlpha = 1.0
	}
	toolBeta := prodCfg.ToolBeta
	if toolBeta <= 0 {
		toolBeta = 1.0
	}

	for _, good := range sortedGoods(isl.Production.BaseRate) {
		base := isl.Production.BaseRate[good]
		sector := sectorOf[good]
		laborShare := isl.Population.LaborShares[sector]
		laborWorkers := isl.Population.Size * laborShare

		toolSens := isl.Production.ToolSensitivity[good]
		toolMod := 1.0
		if toolSens > 0 {
			toolMod = 1.0 + toolSens*math.Pow(toolAvailability(toolUnits, laborWorkers), toolBeta)
		}

		ecoSens := isl.Production.EcosystemSensitivity[good]
		ecoMod := 1.0
		if ecoSens > 0 {
			yield := ecology.YieldMultiplier(isl, good, ecoCfg)
			ecoMod = 1.0 - ecoSens + ecoSens*yield
		}

		buildingMod := buildingModifier(isl, good)
		shockMod := shockModifier(isl, good)

		amount := base * math.Pow(laborWorkers/100.0, labourAlpha) * healthMod * toolMod * ecoMod * buildingMod * shockMod
		if amount < 0 {
			amount = 0
		}

		out := Output{Good: good, Amount: amount}
		if isExtractive(good) {
			out.Extraction = amount
		}
		outputs = append(outputs, out)
	}
	return outputs
}

func toolAvailability(toolUnits, workers float64) float64 {
	if workers <= 0 {
		return 0
	}
	ratio := toolUnits / workers
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func buildingModifier(isl *worldstate.IslandState, good worldstate.GoodID) float64 {
	if good != "tools" {
		return 1.0
	}
	workshop, ok := isl.Buildings[worldstate.BuildingWorkshop]
	if !ok {
		return 1.0
	}
	return 1.0 + 0.1*float64(workshop.Level)*workshop.Condition
}

func shockModifier(isl *worldstate.IslandState, good worldstate.GoodID) float64 {
	shock, ok := isl.ProductionShocks[good]
	if !ok {
		return 1.0
	}
	return shock.Multiplier
}

func isExtractive(good worldstate.GoodID) bool {
	return good == "fish" || good == "timber"
}

func sortedGoods(m map[worldstate.GoodID]float64) []worldstate.GoodID {
	out := make([]worldstate.GoodID, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	// Map iteration order is randomized, so the keys are sorted
	// (insertion sort; the good set is small) to keep the output order
	// deterministic.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
