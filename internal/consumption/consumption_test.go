package consumption

import (
	"testing"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

func testConsumptionConfig() config.Consumption {
	return config.Consumption{
		FoodPerCapita:              0.1,
		LuxuryPerCapita:            0,
		FoodSubstitutionElasticity: 1.0,
		HealthConsumptionFactor:    1.0,
	}
}

func TestGrainConsumedBeforeFish(t *testing.T) {
	isl := &worldstate.IslandState{
		Population: worldstate.PopulationState{Size: 100, Health: 1.0},
		Inventory:  map[worldstate.GoodID]float64{"grain": 5, "fish": 100},
	}
	Apply(isl, testConsumptionConfig(), 1, 1) // demand = 10, grain only covers 5
	if isl.Inventory["grain"] != 0 {
		t.Fatalf("expected grain fully consumed first, got %v", isl.Inventory["grain"])
	}
	if isl.Inventory["fish"] != 95 {
		t.Fatalf("expected fish to cover the remaining 5 units of demand, got %v", isl.Inventory["fish"])
	}
}

func TestDeficitReportedWhenInventoryInsufficient(t *testing.T) {
	isl := &worldstate.IslandState{
		Population: worldstate.PopulationState{Size: 1000, Health: 1.0},
		Inventory:  map[worldstate.GoodID]float64{"grain": 1, "fish": 1},
	}
	res := Apply(isl, testConsumptionConfig(), 1, 1) // demand = 100, only 2 available
	if res.FoodDeficit <= 0 {
		t.Fatalf("expected a reported food deficit, got %v", res.FoodDeficit)
	}
	if isl.Inventory["grain"] != 0 || isl.Inventory["fish"] != 0 {
		t.Fatalf("inventory should never go negative: grain=%v fish=%v", isl.Inventory["grain"], isl.Inventory["fish"])
	}
}

func TestEventModifierScalesDemand(t *testing.T) {
	isl := &worldstate.IslandState{
		Population: worldstate.PopulationState{Size: 100, Health: 1.0},
		Inventory:  map[worldstate.GoodID]float64{"grain": 1000, "fish": 1000},
	}
	Apply(isl, testConsumptionConfig(), 2.0, 1) // festival doubling food demand
	consumed := 1000 - isl.Inventory["grain"]
	if consumed != 20 {
		t.Fatalf("expected doubled demand of 20 grain consumed, got %v", consumed)
	}
}

func TestHealthConsumptionFactorScalesDraw(t *testing.T) {
	isl := &worldstate.IslandState{
		Population: worldstate.PopulationState{Size: 100, Health: 1.0},
		Inventory:  map[worldstate.GoodID]float64{"grain": 1000, "fish": 1000},
	}
	cfg := testConsumptionConfig()
	cfg.HealthConsumptionFactor = 0.5
	res := Apply(isl, cfg, 1, 1)
	consumed := 1000 - isl.Inventory["grain"]
	if consumed != 5 {
		t.Fatalf("expected health factor to halve draw to 5, got %v", consumed)
	}
	if res.Consumed["grain"] != 5 {
		t.Fatalf("expected Consumed map to report 5 grain, got %v", res.Consumed["grain"])
	}
}
