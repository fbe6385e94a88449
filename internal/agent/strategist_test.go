package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brinewake/archipelago/internal/worldstate"
)

func arbitrageObservable() ObservableState {
	return ObservableState{
		AgentID: "a1",
		Ships:   []ShipView{{ID: "s1", AtSea: false, Condition: 1, CrewMorale: 1}},
		Islands: []IslandView{
			{ID: "buy", Prices: map[worldstate.GoodID]float64{"grain": 1}},
			{ID: "sell", Prices: map[worldstate.GoodID]float64{"grain": 5}},
		},
	}
}

func TestDecideFallsBackWhenNoAdvisorConfigured(t *testing.T) {
	st := &Strategist{Timeout: time.Second}
	mem := NewMemory(50, 0.1, 6)
	s := st.Decide(context.Background(), TriggerArbitrage, arbitrageObservable(), mem)
	if s.Kind != StrategyTradeRoute {
		t.Fatalf("expected fallback trade route strategy, got %v", s.Kind)
	}
	if s.FromAdvisor {
		t.Fatalf("fallback strategy must not be marked FromAdvisor")
	}
}

type stubAdvisor struct {
	strategy Strategy
	err      error
	delay    time.Duration
}

func (a stubAdvisor) Propose(ctx context.Context, obs ObservableState, mem *Memory) (Strategy, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
		}
	}
	return a.strategy, a.err
}

func TestDecideUsesAdvisorWhenItAnswersInTime(t *testing.T) {
	st := &Strategist{
		Advisor: stubAdvisor{strategy: Strategy{Kind: StrategyRepair, ShipID: "s1", Rationale: "advisor says repair"}},
		Timeout: time.Second,
	}
	mem := NewMemory(50, 0.1, 6)
	s := st.Decide(context.Background(), TriggerArbitrage, arbitrageObservable(), mem)
	if s.Kind != StrategyRepair || !s.FromAdvisor {
		t.Fatalf("expected advisor's repair strategy marked FromAdvisor, got %+v", s)
	}
}

func TestDecideFallsBackOnAdvisorError(t *testing.T) {
	st := &Strategist{
		Advisor: stubAdvisor{err: errors.New("boom")},
		Timeout: time.Second,
	}
	mem := NewMemory(50, 0.1, 6)
	s := st.Decide(context.Background(), TriggerArbitrage, arbitrageObservable(), mem)
	if s.Kind != StrategyTradeRoute || s.FromAdvisor {
		t.Fatalf("expected deterministic fallback on advisor error, got %+v", s)
	}
}

func TestDecideFallsBackOnAdvisorTimeout(t *testing.T) {
	st := &Strategist{
		Advisor: stubAdvisor{strategy: Strategy{Kind: StrategyRepair, ShipID: "s1"}, delay: 50 * time.Millisecond},
		Timeout: time.Millisecond,
	}
	mem := NewMemory(50, 0.1, 6)
	s := st.Decide(context.Background(), TriggerArbitrage, arbitrageObservable(), mem)
	if s.Kind != StrategyTradeRoute || s.FromAdvisor {
		t.Fatalf("expected deterministic fallback on advisor timeout, got %+v", s)
	}
}

func TestGuardrailClampRejectsUnknownShip(t *testing.T) {
	obs := arbitrageObservable()
	s := DefaultGuardrailClamp(obs, Strategy{Kind: StrategyRepair, ShipID: "ghost"})
	if s.Kind != StrategyHold {
		t.Fatalf("expected clamp to reject unknown ship, got %+v", s)
	}
}

func TestGuardrailClampRejectsUnknownIsland(t *testing.T) {
	obs := arbitrageObservable()
	s := DefaultGuardrailClamp(obs, Strategy{
		Kind: StrategyTradeRoute, ShipID: "s1", BuyIsland: "buy", SellIsland: "nowhere",
	})
	if s.Kind != StrategyHold {
		t.Fatalf("expected clamp to reject unknown island, got %+v", s)
	}
}

func TestGuardrailClampPassesKnownReferences(t *testing.T) {
	obs := arbitrageObservable()
	want := Strategy{Kind: StrategyTradeRoute, ShipID: "s1", BuyIsland: "buy", SellIsland: "sell"}
	s := DefaultGuardrailClamp(obs, want)
	if s.Kind != StrategyTradeRoute || s.ShipID != "s1" {
		t.Fatalf("expected clamp to pass through valid strategy unchanged, got %+v", s)
	}
}

func TestFallbackDistressPrioritizesLowConditionShip(t *testing.T) {
	st := &Strategist{}
	obs := ObservableState{
		Ships: []ShipView{{ID: "s1", Condition: 0.05, CrewMorale: 0.9}},
	}
	mem := NewMemory(50, 0.1, 6)
	s := st.fallback(TriggerDistress, obs, mem)
	if s.Kind != StrategyRepair || s.ShipID != "s1" {
		t.Fatalf("expected repair strategy for distressed ship, got %+v", s)
	}
}
