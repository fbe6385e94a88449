// Package ecology runs the per-tick renewable-resource model: fish
// stock, forest biomass, and soil fertility regrow toward capacity
// unless extraction outpaces it, in which case a hysteresis band
// applies an asymmetric, harsher regen penalty. The band thresholds
// and degrade-then-regrow shape generalize the teacher's Hex.Health
// field (internal/world/hex.go), which degrades on extraction and
// regrows each tick toward 1.0.
package ecology

import (
	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// Band classifies a resource's current ratio to capacity.
type Band int

const (
	BandHealthy Band = iota
	BandStressed
	BandDegraded
	BandCollapsed
	BandDead
)

// Classify buckets a stock/capacity ratio into a Band using the
// configured thresholds (spec §4.2).
func Classify(ratio float64, cfg config.Ecology) Band {
	switch {
	case ratio >= cfg.HealthyThreshold:
		return BandHealthy
	case ratio >= cfg.StressedThreshold:
		return BandStressed
	case ratio >= cfg.DegradedThreshold:
		return BandDegraded
	case ratio > cfg.CollapsedThreshold:
		return BandCollapsed
	default:
		return BandDead
	}
}

// regenMultiplier is the asymmetric hysteresis: regen slows sharply as
// a stock falls into worse bands, so collapse is easy to trigger and
// hard to recover from — the punishing half of the curve is steeper
// than the rewarding half.
func regenMultiplier(b Band) float64 {
	switch b {
	case BandHealthy:
		return 1.0
	case BandStressed:
		return 0.6
	case BandDegraded:
		return 0.25
	case BandCollapsed:
		return 0.05
	default:
		return 0.0
	}
}

// logisticRegrow applies one tick of logistic regrowth toward capacity,
// scaled by the hysteresis multiplier for the stock's current band.
func logisticRegrow(stock, capacity, rate float64, band Band) float64 {
	if capacity <= 0 {
		return 0
	}
	mult := regenMultiplier(band)
	growth := rate * mult * stock * (1 - stock/capacity)
	next := stock + growth
	if next < 0 {
		return 0
	}
	if next > capacity {
		return capacity
	}
	return next
}

// ExtractionRequest is one sector's demand on a renewable stock for the
// tick, computed by the production engine before ecology runs.
type ExtractionRequest struct {
	Good   worldstate.GoodID
	Amount float64
}

// Apply regrows one island's renewable stocks by one tick, after
// subtracting the tick's extraction (fish/timber catches, farming's
// soil depletion) (spec §4.2). It returns nothing; production reads the
// yield curve separately through YieldMultiplier.
//
// The engine runs Apply after production in each island's pass, so
// production's YieldMultiplier read sees the stock level the previous
// tick's Apply left behind, avoiding a same-tick read-after-write cycle
// between the two engines.
func Apply(isl *worldstate.IslandState, fishExtraction, timberExtraction, farmingExtraction float64, cfg config.Ecology) {
	eco := &isl.Ecosystem
	params := isl.EcosystemParams

	fishRatio := safeRatio(eco.FishStock, params.FishCapacity)
	fishBand := Classify(fishRatio, cfg)
	eco.FishStock -= fishExtraction
	if eco.FishStock < 0 {
		eco.FishStock = 0
	}
	eco.FishStock = logisticRegrow(eco.FishStock, params.FishCapacity, params.FishRegenRate, fishBand)

	forestRatio := safeRatio(eco.ForestBiomass, params.ForestCapacity)
	forestBand := Classify(forestRatio, cfg)
	eco.ForestBiomass -= timberExtraction
	if eco.ForestBiomass < 0 {
		eco.ForestBiomass = 0
	}
	eco.ForestBiomass = logisticRegrow(eco.ForestBiomass, params.ForestCapacity, params.ForestRegenRate, forestBand)

	soilBand := Classify(eco.SoilFertility, cfg)
	eco.SoilFertility -= farmingExtraction * params.FarmingDepletion
	if eco.SoilFertility < 0 {
		eco.SoilFertility = 0
	}
	eco.SoilFertility = logisticRegrow(eco.SoilFertility, 1.0, params.SoilRegenRate, soilBand)
	if eco.SoilFertility > 1 {
		eco.SoilFertility = 1
	}
}

func safeRatio(stock, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	r := stock / capacity
	if r > 1 {
		return 1
	}
	return r
}

// YieldMultiplier reports the production-scaling factor for an
// extractive good based on its current band, read by internal/production
// before it computes this tick's output (spec §4.3). Fish and timber
// are classified with the same Classify thresholds Apply uses, so
// production and ecology never duplicate the threshold logic; the
// per-band yield values are separate from Apply's regen multipliers.
// Grain scales with soil fertility instead of a band.
func YieldMultiplier(isl *worldstate.IslandState, good worldstate.GoodID, cfg config.Ecology) float64 {
	switch good {
	case "fish":
		ratio := safeRatio(isl.Ecosystem.FishStock, isl.EcosystemParams.FishCapacity)
		return yieldCurve(Classify(ratio, cfg))
	case "timber":
		ratio := safeRatio(isl.Ecosystem.ForestBiomass, isl.EcosystemParams.ForestCapacity)
		return yieldCurve(Classify(ratio, cfg))
	case "grain":
		return 0.5 + 0.5*isl.Ecosystem.SoilFertility
	default:
		return 1.0
	}
}

func yieldCurve(b Band) float64 {
	switch b {
	case BandHealthy:
		return 1.0
	case BandStressed:
		return 0.7
	case BandDegraded:
		return 0.35
	case BandCollapsed:
		return 0.1
	default:
		return 0.0
	}
}

// MigrateFish moves a small fraction of each island's fish stock toward
// the archipelago-wide average, run once per tick as a single pass over
// all islands in sorted order (SPEC_FULL.md §9 decision 3). This lets a
// collapsed fishery recover by draw from healthy neighbors rather than
// only from its own regrowth, while keeping the operation conservative
// (fish biomass moved, not created).
func MigrateFish(w *worldstate.WorldState, cfg config.Ecology) {
	ids := w.SortedIslandIDs()
	if len(ids) == 0 {
		return
	}
	total := 0.0
	for _, id := range ids {
		total += w.Islands[id].Ecosystem.FishStock
	}
	avg := total / float64(len(ids))

	deltas := make(map[string]float64, len(ids))
	for _, id := range ids {
		isl := w.Islands[id]
		deltas[id] = (avg - isl.Ecosystem.FishStock) * cfg.MigrationFraction
	}
	for _, id := range ids {
		isl := w.Islands[id]
		isl.Ecosystem.FishStock += deltas[id]
		if isl.Ecosystem.FishStock < 0 {
			isl.Ecosystem.FishStock = 0
		}
		if isl.Ecosystem.FishStock > isl.EcosystemParams.FishCapacity {
			isl.Ecosystem.FishStock = isl.EcosystemParams.FishCapacity
		}
	}
}
