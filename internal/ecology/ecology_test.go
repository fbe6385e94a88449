package ecology

import (
	"testing"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

func testCfg() config.Ecology {
	return config.Default().Ecology
}

func newIsland(fishStock, fishCap float64) *worldstate.IslandState {
	return &worldstate.IslandState{
		Ecosystem:       worldstate.EcosystemState{FishStock: fishStock, ForestBiomass: 400, SoilFertility: 0.8},
		EcosystemParams: worldstate.EcosystemParams{FishCapacity: fishCap, ForestCapacity: 600, FishRegenRate: 0.03, ForestRegenRate: 0.015, SoilRegenRate: 0.01},
	}
}

func TestStocksNeverNegative(t *testing.T) {
	isl := newIsland(10, 1000)
	cfg := testCfg()
	Apply(isl, 500, 0, 0, cfg) // extract far more than available
	if isl.Ecosystem.FishStock < 0 {
		t.Fatalf("fish stock went negative: %v", isl.Ecosystem.FishStock)
	}
}

func TestStocksNeverExceedCapacity(t *testing.T) {
	isl := newIsland(999, 1000)
	cfg := testCfg()
	for i := 0; i < 1000; i++ {
		Apply(isl, 0, 0, 0, cfg)
	}
	if isl.Ecosystem.FishStock > isl.EcosystemParams.FishCapacity {
		t.Fatalf("fish stock exceeded capacity: %v > %v", isl.Ecosystem.FishStock, isl.EcosystemParams.FishCapacity)
	}
}

func TestOverfishingCollapseRecoversSlowlyUnderHysteresis(t *testing.T) {
	// Scenario A: a fishery left below CollapsedThreshold for 20 ticks of
	// rest. Hysteresis means the collapsed band regenerates slower than
	// the healthy band; at ratio 0.04 Classify puts the stock in BandDead,
	// which does not regrow, so the stock must simply stay above zero.
	cfg := testCfg()
	cap := 1000.0

	collapsed := newIsland(cap*0.04, cap) // below CollapsedThreshold
	for i := 0; i < 20; i++ {
		Apply(collapsed, 0, 0, 0, cfg)
	}

	if regenMultiplier(BandCollapsed) >= regenMultiplier(BandHealthy) {
		t.Fatalf("collapsed band must regen slower than healthy band")
	}
	if collapsed.Ecosystem.FishStock <= 0 && cfg.CollapsedThreshold > 0 {
		t.Fatalf("expected the collapsed stock to stay above zero, got zero")
	}
}

func TestYieldMultiplierMatchesBand(t *testing.T) {
	cfg := testCfg()
	isl := newIsland(50, 1000) // ratio 0.05, BandDead territory at <=0.05 threshold boundary
	mult := YieldMultiplier(isl, "fish", cfg)
	if mult < 0 || mult > 1 {
		t.Fatalf("yield multiplier out of [0,1] range: %v", mult)
	}
	if want := yieldCurve(BandDead); mult != want {
		t.Fatalf("expected BandDead yield %v at ratio 0.05, got %v", want, mult)
	}
}

func TestMigrateFishConservesTotalBiomassApproximately(t *testing.T) {
	w := worldstate.NewWorldState()
	w.Islands["a"] = newIsland(900, 1000)
	w.Islands["b"] = newIsland(100, 1000)
	cfg := testCfg()

	before := w.Islands["a"].Ecosystem.FishStock + w.Islands["b"].Ecosystem.FishStock
	MigrateFish(w, cfg)
	after := w.Islands["a"].Ecosystem.FishStock + w.Islands["b"].Ecosystem.FishStock

	diff := before - after
	if diff < -0.01 || diff > 0.01 {
		t.Fatalf("migration should conserve total biomass (no capacity clamp hit here): before=%v after=%v", before, after)
	}
	if w.Islands["a"].Ecosystem.FishStock >= 900 {
		t.Fatalf("richer island should lose some stock to migration")
	}
	if w.Islands["b"].Ecosystem.FishStock <= 100 {
		t.Fatalf("poorer island should gain some stock from migration")
	}
}
