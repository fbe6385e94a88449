package agent

import (
	"testing"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

func newTradeWorld() (*worldstate.WorldState, *worldstate.ShipState) {
	w := worldstate.NewWorldState()
	w.Goods["grain"] = worldstate.GoodDefinition{ID: "grain", BasePrice: 2, Bulkiness: 1}

	buy := &worldstate.IslandState{
		ID: "buy", Inventory: map[worldstate.GoodID]float64{"grain": 500},
		Market: worldstate.NewMarketState(), Position: worldstate.Vec2{X: 0, Y: 0},
	}
	sell := &worldstate.IslandState{
		ID: "sell", Inventory: map[worldstate.GoodID]float64{"grain": 10},
		Market: worldstate.NewMarketState(), Position: worldstate.Vec2{X: 100, Y: 0},
	}
	buy.Market.Price["grain"] = 1
	buy.Market.BuyDepth["grain"] = 1000
	sell.Market.Price["grain"] = 5
	sell.Market.SellDepth["grain"] = 1000

	w.Islands["buy"] = buy
	w.Islands["sell"] = sell

	ship := &worldstate.ShipState{
		ID: "s1", Cash: 1000, CargoCapacity: 1000, BaseSpeed: 1000,
		Cargo:    map[worldstate.GoodID]float64{},
		Location: worldstate.ShipLocation{Kind: worldstate.LocationAtIsland, IslandID: "buy"},
		Condition: 1,
	}
	w.Ships["s1"] = ship
	return w, ship
}

func TestExecutorTradeRouteCascade(t *testing.T) {
	w, ship := newTradeWorld()
	ex := &Executor{MarketCfg: config.Default().Market}
	plan := &Plan{Stage: StageSell, Strategy: Strategy{
		Kind: StrategyTradeRoute, ShipID: "s1",
		BuyGood: "grain", BuyIsland: "buy", SellGood: "grain", SellIsland: "sell",
	}}

	// StageSell: no cargo to sell yet, just advances.
	if ex.Step(w, plan) {
		t.Fatalf("plan should not complete on stage sell")
	}
	if plan.Stage != StageBuy {
		t.Fatalf("expected stage buy, got %v", plan.Stage)
	}

	// StageBuy: should load grain.
	ex.Step(w, plan)
	if ship.Cargo["grain"] <= 0 {
		t.Fatalf("expected ship to buy grain, got %v", ship.Cargo["grain"])
	}
	if plan.Stage != StageNavigate {
		t.Fatalf("expected stage navigate, got %v", plan.Stage)
	}

	// StageNavigate: should begin voyage.
	ex.Step(w, plan)
	if ship.Location.Kind != worldstate.LocationAtSea {
		t.Fatalf("expected ship at sea after navigate stage")
	}
	if plan.Stage != StageWait {
		t.Fatalf("expected stage wait, got %v", plan.Stage)
	}

	// StageWait: not arrived yet, plan stays open.
	if ex.Step(w, plan) {
		t.Fatalf("plan should not complete before arrival")
	}
}

func TestExecutorIgnoresUnknownShip(t *testing.T) {
	w, _ := newTradeWorld()
	ex := &Executor{MarketCfg: config.Default().Market}
	plan := &Plan{Stage: StageSell, Strategy: Strategy{ShipID: "ghost"}}
	if !ex.Step(w, plan) {
		t.Fatalf("expected plan referencing an unknown ship to retire immediately")
	}
}
