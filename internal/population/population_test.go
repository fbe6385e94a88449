package population

import (
	"testing"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/consumption"
	"github.com/brinewake/archipelago/internal/worldstate"
)

func newTestIsland() *worldstate.IslandState {
	return &worldstate.IslandState{
		Population: worldstate.PopulationState{
			Size: 500, Health: 0.8,
			LaborShares: map[worldstate.Sector]float64{
				worldstate.SectorFarming: 0.3, worldstate.SectorFishing: 0.3, worldstate.SectorServices: 0.4,
			},
		},
	}
}

func TestHealthDropsOnFoodDeficit(t *testing.T) {
	isl := newTestIsland()
	cfg := config.Default().Population
	before := isl.Population.Health
	Apply(isl, consumption.Result{FoodDeficit: 200}, map[worldstate.Sector]float64{}, cfg)
	if isl.Population.Health >= before {
		t.Fatalf("expected health to drop on deficit: before=%v after=%v", before, isl.Population.Health)
	}
}

func TestHealthRecoversWithoutDeficit(t *testing.T) {
	isl := newTestIsland()
	cfg := config.Default().Population
	isl.Population.Health = 0.5
	Apply(isl, consumption.Result{}, map[worldstate.Sector]float64{}, cfg)
	if isl.Population.Health <= 0.5 {
		t.Fatalf("expected health to recover without deficit: %v", isl.Population.Health)
	}
}

func TestHealthStaysInBounds(t *testing.T) {
	isl := newTestIsland()
	cfg := config.Default().Population
	isl.Population.Health = 0.01
	for i := 0; i < 100; i++ {
		Apply(isl, consumption.Result{FoodDeficit: 1000}, map[worldstate.Sector]float64{}, cfg)
	}
	if isl.Population.Health < 0 || isl.Population.Health > 1 {
		t.Fatalf("health out of [0,1]: %v", isl.Population.Health)
	}
}

func TestLaborSharesSumToOne(t *testing.T) {
	isl := newTestIsland()
	cfg := config.Default().Population
	wages := map[worldstate.Sector]float64{
		worldstate.SectorFarming: 5, worldstate.SectorFishing: 1, worldstate.SectorServices: 1,
	}
	for i := 0; i < 50; i++ {
		Apply(isl, consumption.Result{}, wages, cfg)
	}
	sum := 0.0
	for _, v := range isl.Population.LaborShares {
		sum += v
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("labor shares should sum to ~1, got %v", sum)
	}
}

func TestLaborShiftsTowardHigherWage(t *testing.T) {
	isl := newTestIsland()
	cfg := config.Default().Population
	wages := map[worldstate.Sector]float64{
		worldstate.SectorFarming: 10, worldstate.SectorFishing: 1, worldstate.SectorServices: 1,
	}
	before := isl.Population.LaborShares[worldstate.SectorFarming]
	for i := 0; i < 20; i++ {
		Apply(isl, consumption.Result{}, wages, cfg)
	}
	after := isl.Population.LaborShares[worldstate.SectorFarming]
	if after <= before {
		t.Fatalf("expected farming's labor share to grow toward its higher wage: before=%v after=%v", before, after)
	}
}
