package agent

import (
	"testing"

	"github.com/brinewake/archipelago/internal/worldstate"
)

func newTestMemory() *Memory {
	return NewMemory(50, 0.15, 6)
}

func TestDistressTakesPriorityOverEverything(t *testing.T) {
	obs := ObservableState{
		Tick: 10,
		Ships: []ShipView{{ID: "s1", AtSea: true, Condition: 0.05, CrewMorale: 0.9}},
	}
	mem := newTestMemory()
	mem.CashBuffer = -1 // never triggers low-cash regardless of obs.Cash
	if got := Evaluate(obs, mem); got != TriggerDistress {
		t.Fatalf("expected distress trigger, got %v", got)
	}
}

func TestNoTriggerWhenNothingIsWrong(t *testing.T) {
	obs := ObservableState{
		Tick:  1,
		Cash:  1000,
		Ships: []ShipView{{ID: "s1", AtSea: true, Condition: 1, CrewMorale: 1}},
	}
	mem := newTestMemory()
	mem.CashBuffer = 0
	mem.LastActedTick = 1
	if got := Evaluate(obs, mem); got != TriggerNone {
		t.Fatalf("expected no trigger, got %v", got)
	}
}

func TestIdleShipTriggersWhenDockedWithoutPlan(t *testing.T) {
	obs := ObservableState{
		Tick:  1,
		Cash:  1000,
		Ships: []ShipView{{ID: "s1", AtSea: false, Condition: 1, CrewMorale: 1}},
	}
	mem := newTestMemory()
	mem.CashBuffer = 0
	mem.LastActedTick = 1
	if got := Evaluate(obs, mem); got != TriggerIdleShip {
		t.Fatalf("expected idle ship trigger, got %v", got)
	}
}

func TestArbitrageDetectedAcrossIslands(t *testing.T) {
	obs := ObservableState{
		Tick: 1,
		Cash: 1000,
		Ships: []ShipView{{ID: "s1", AtSea: true, Condition: 1, CrewMorale: 1}}, // at sea, so idle-ship never fires
		Islands: []IslandView{
			{ID: "a", Prices: map[worldstate.GoodID]float64{"grain": 1}},
			{ID: "b", Prices: map[worldstate.GoodID]float64{"grain": 10}},
		},
	}
	mem := newTestMemory()
	mem.CashBuffer = 0
	mem.LastActedTick = 1
	mem.ArbitrageThreshold = 0.5
	if got := Evaluate(obs, mem); got != TriggerArbitrage {
		t.Fatalf("expected arbitrage trigger, got %v", got)
	}
}
