// Package population updates each island's aggregate population: health
// responds to the consumption engine's deficits, size grows or shrinks
// around a health-dependent equilibrium, and labor shifts toward
// sectors with a higher relative wage. The health clamp-and-drift shape
// mirrors the teacher's clampNeeds/DecayNeeds pair
// (internal/agents/behavior.go); labor reallocation generalizes the
// same "move a fraction of the gap toward target each tick" idiom from
// per-agent needs onto per-island labor shares.
package population

import (
	"sort"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/consumption"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// Apply updates population health, size, and labor allocation for one
// island for the tick, given this tick's consumption result and the
// relative wage (price) signal per sector.
func Apply(isl *worldstate.IslandState, cons consumption.Result, wageBySector map[worldstate.Sector]float64, cfg config.Population) {
	updateHealth(isl, cons, cfg)
	updateSize(isl, cfg)
	reallocateLabor(isl, wageBySector, cfg)
}

func updateHealth(isl *worldstate.IslandState, cons consumption.Result, cfg config.Population) {
	h := isl.Population.Health
	if cons.FoodDeficit > 0 && isl.Population.Size > 0 {
		severity := cons.FoodDeficit / isl.Population.Size
		if severity > 1 {
			severity = 1
		}
		h -= cfg.HealthPenaltyRate * severity
	} else {
		h += cfg.HealthRecoveryRate * (1 - h)
	}
	if h < 0 {
		h = 0
	}
	if h > 1 {
		h = 1
	}
	isl.Population.Health = h
}

func updateSize(isl *worldstate.IslandState, cfg config.Population) {
	// Population drifts toward a health-scaled carrying equilibrium:
	// below stableHealthThreshold the island is in net decline (at up
	// to maxDeclineRate), above optimalHealthThreshold it's in net
	// growth (at up to maxGrowthRate). A health below
	// crisisHealthThreshold or a population already under
	// populationDeclineThreshold accelerates the decline, matching the
	// teacher's clampNeeds "crisis compounds" idiom.
	span := cfg.OptimalHealthThreshold - cfg.StableHealthThreshold
	if span <= 0 {
		span = 1
	}
	equilibriumFactor := (isl.Population.Health - cfg.StableHealthThreshold) / span
	if equilibriumFactor > 1 {
		equilibriumFactor = 1
	}

	rate := cfg.MaxGrowthRate
	if equilibriumFactor < 0 {
		rate = cfg.MaxDeclineRate
	}
	if isl.Population.Health < cfg.CrisisHealthThreshold {
		rate = cfg.MaxDeclineRate * 2
		equilibriumFactor = -1
	}
	if isl.Population.Size < cfg.PopulationDeclineThreshold {
		equilibriumFactor -= 1
	}

	delta := rate * equilibriumFactor * isl.Population.Size
	size := isl.Population.Size + delta
	if size < 0 {
		size = 0
	}
	isl.Population.Size = size
}

// reallocateLabor nudges each sector's labor share toward its relative
// wage weight, moving a fixed fraction of the gap per tick so the
// allocation never jumps discontinuously in one tick (spec §4.5
// "gradual, not instantaneous").
func reallocateLabor(isl *worldstate.IslandState, wageBySector map[worldstate.Sector]float64, cfg config.Population) {
	sectors := sortedSectors(isl.Population.LaborShares)
	if len(sectors) == 0 {
		return
	}
	laborMoveRate := cfg.LaborMoveRate
	if laborMoveRate <= 0 {
		laborMoveRate = 0.05
	}
	totalWage := 0.0
	for _, s := range sectors {
		totalWage += wageBySector[s]
	}
	if totalWage <= 0 {
		return
	}

	targets := make(map[worldstate.Sector]float64, len(sectors))
	for _, s := range sectors {
		targets[s] = wageBySector[s] / totalWage
	}

	newShares := make(map[worldstate.Sector]float64, len(sectors))
	sum := 0.0
	for _, s := range sectors {
		cur := isl.Population.LaborShares[s]
		next := cur + laborMoveRate*(targets[s]-cur)
		if next < 0 {
			next = 0
		}
		newShares[s] = next
		sum += next
	}
	if sum <= 0 {
		return
	}
	for _, s := range sectors {
		isl.Population.LaborShares[s] = newShares[s] / sum
	}
}

func sortedSectors(m map[worldstate.Sector]float64) []worldstate.Sector {
	out := make([]worldstate.Sector, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
