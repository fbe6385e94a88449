package agent

import (
	"context"
	"testing"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

func managerTestWorld() *worldstate.WorldState {
	w, ship := newTradeWorld()
	w.Agents["a1"] = &worldstate.AgentState{
		ID:     "a1",
		Assets: worldstate.AgentAssets{Cash: 1000, ShipIDs: []string{ship.ID}},
	}
	return w
}

func TestManagerStepRegistersMemoryLazily(t *testing.T) {
	w := managerTestWorld()
	m := NewManager(&Strategist{}, &Executor{MarketCfg: config.Default().Market}, nil)
	m.Step(context.Background(), w)

	if _, ok := m.memory["a1"]; !ok {
		t.Fatalf("expected manager to lazily register memory for a1")
	}
}

func TestManagerStepAdvancesInProgressPlanBeforeEvaluatingTrigger(t *testing.T) {
	w := managerTestWorld()
	m := NewManager(&Strategist{}, &Executor{MarketCfg: config.Default().Market}, nil)
	mem := NewMemory(0, 0.15, 6)
	mem.Plans["s1"] = &Plan{Stage: StageSell, Strategy: Strategy{
		Kind: StrategyTradeRoute, ShipID: "s1",
		BuyGood: "grain", BuyIsland: "buy", SellGood: "grain", SellIsland: "sell",
	}}
	m.Register("a1", mem)

	m.Step(context.Background(), w)

	plan, stillOpen := mem.Plans["s1"]
	if !stillOpen {
		t.Fatalf("expected plan to remain open after one stage advance")
	}
	if plan.Stage != StageBuy {
		t.Fatalf("expected plan to advance from sell to buy stage, got %v", plan.Stage)
	}
}

func TestManagerStepIsDeterministicAcrossIdenticalWorlds(t *testing.T) {
	run := func() uint64 {
		w := managerTestWorld()
		m := NewManager(&Strategist{}, &Executor{MarketCfg: config.Default().Market}, nil)
		m.Step(context.Background(), w)
		h, err := w.Hash()
		if err != nil {
			t.Fatal(err)
		}
		return h
	}
	if run() != run() {
		t.Fatalf("identical worlds produced different post-step hashes")
	}
}
