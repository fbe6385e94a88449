package market

import (
	"errors"
	"testing"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

func newTestIsland() *worldstate.IslandState {
	isl := &worldstate.IslandState{
		Inventory: map[worldstate.GoodID]float64{"grain": 100},
		Market:    worldstate.NewMarketState(),
		Treasury:  &worldstate.TreasuryState{Balance: 1000},
		Buildings: map[worldstate.BuildingType]worldstate.BuildingState{},
	}
	isl.Market.Price["grain"] = 2
	isl.Market.IdealStock["grain"] = 100
	isl.Market.BuyDepth["grain"] = 50
	isl.Market.SellDepth["grain"] = 50
	return isl
}

func testGoods() map[worldstate.GoodID]worldstate.GoodDefinition {
	return map[worldstate.GoodID]worldstate.GoodDefinition{
		"grain": {ID: "grain", BasePrice: 2, Category: worldstate.CategoryFood},
	}
}

func TestPriceRisesWhenStockBelowIdeal(t *testing.T) {
	isl := newTestIsland()
	isl.Inventory["grain"] = 20 // far under ideal of 100
	cfg := config.Default().Market
	UpdatePricing(isl, testGoods(), cfg, 1, 1)
	if isl.Market.Price["grain"] <= 2 {
		t.Fatalf("expected price to rise above base when stock is scarce, got %v", isl.Market.Price["grain"])
	}
}

func TestPriceStaysWithinBand(t *testing.T) {
	isl := newTestIsland()
	isl.Inventory["grain"] = 0.0001
	cfg := config.Default().Market
	for i := 0; i < 50; i++ {
		UpdatePricing(isl, testGoods(), cfg, 1, 1)
	}
	base := 2.0
	hi := base * cfg.PriceBandMax
	if cfg.MaxPrice < hi {
		hi = cfg.MaxPrice
	}
	lo := base * cfg.PriceBandMin
	if cfg.MinPrice > lo {
		lo = cfg.MinPrice
	}
	if isl.Market.Price["grain"] > hi+1e-9 {
		t.Fatalf("price exceeded band max: %v", isl.Market.Price["grain"])
	}
	if isl.Market.Price["grain"] < lo-1e-9 {
		t.Fatalf("price under band min: %v", isl.Market.Price["grain"])
	}
}

func TestEventModifierLiftsPrice(t *testing.T) {
	base := newTestIsland()
	boosted := newTestIsland()
	cfg := config.Default().Market

	UpdatePricing(base, testGoods(), cfg, 1.0, 1.0)
	UpdatePricing(boosted, testGoods(), cfg, 2.0, 1.0)

	if boosted.Market.Price["grain"] <= base.Market.Price["grain"] {
		t.Fatalf("expected a food-demand event to raise price relative to baseline: base=%v boosted=%v",
			base.Market.Price["grain"], boosted.Market.Price["grain"])
	}
}

func TestConsumptionVelocityRaisesPrice(t *testing.T) {
	cfg := config.Default().Market
	quiet := newTestIsland()
	brisk := newTestIsland()

	for i := 0; i < 6; i++ {
		UpdateConsumptionVelocity(brisk, map[worldstate.GoodID]float64{"grain": 50}, cfg)
	}
	UpdatePricing(quiet, testGoods(), cfg, 1, 1)
	UpdatePricing(brisk, testGoods(), cfg, 1, 1)

	if brisk.Market.Price["grain"] <= quiet.Market.Price["grain"] {
		t.Fatalf("expected higher consumption velocity to raise price: quiet=%v brisk=%v",
			quiet.Market.Price["grain"], brisk.Market.Price["grain"])
	}
}

func TestMarketBuildingStabilizesPrice(t *testing.T) {
	cfg := config.Default().Market
	plain := newTestIsland()
	plain.Inventory["grain"] = 20

	stabilized := newTestIsland()
	stabilized.Inventory["grain"] = 20
	stabilized.Buildings[worldstate.BuildingMarket] = worldstate.BuildingState{Level: 5, Condition: 1.0}

	UpdatePricing(plain, testGoods(), cfg, 1, 1)
	UpdatePricing(stabilized, testGoods(), cfg, 1, 1)

	plainDelta := plain.Market.Price["grain"] - 2
	stabilizedDelta := stabilized.Market.Price["grain"] - 2
	if stabilizedDelta >= plainDelta {
		t.Fatalf("expected a high-level market building to dampen the price move: plain=%v stabilized=%v",
			plain.Market.Price["grain"], stabilized.Market.Price["grain"])
	}
}

func TestDepthRecoversTowardTarget(t *testing.T) {
	isl := newTestIsland()
	isl.Market.BuyDepth["grain"] = 0
	cfg := config.Default().Market
	RecoverDepth(isl, cfg)
	if isl.Market.BuyDepth["grain"] <= 0 {
		t.Fatalf("expected depth to recover from zero, got %v", isl.Market.BuyDepth["grain"])
	}
}

func TestPriceImpactCappedAtHalf(t *testing.T) {
	isl := newTestIsland()
	isl.Market.BuyDepth["grain"] = 1
	cfg := config.Default().Market
	price := PriceImpact(isl, "grain", 1000, true, cfg)
	if price > isl.Market.Price["grain"]*1.5+1e-9 {
		t.Fatalf("expected price impact capped at 0.5, got effective price %v on quote %v", price, isl.Market.Price["grain"])
	}
}

func TestPriceImpactNeverGoesNegativeOnSell(t *testing.T) {
	isl := newTestIsland()
	isl.Market.SellDepth["grain"] = 1
	cfg := config.Default().Market
	price := PriceImpact(isl, "grain", 1000, false, cfg)
	if price < 0 {
		t.Fatalf("sell price impact must never go negative, got %v", price)
	}
}

func TestExecuteTradeIsAtomicOnInsufficientFunds(t *testing.T) {
	isl := newTestIsland()
	ship := &worldstate.ShipState{Cash: 5, Cargo: map[worldstate.GoodID]float64{}}
	cfg := config.Default().Market
	_, err := ExecuteTrade(isl, ship, []TradeLine{{Good: "grain", Quantity: 10}}, true, cfg)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient-funds error, got %v", err)
	}
	if ship.Cash != 5 {
		t.Fatalf("ship cash must be untouched on a failed trade, got %v", ship.Cash)
	}
	if ship.Cargo["grain"] != 0 {
		t.Fatalf("ship cargo must be untouched on a failed trade, got %v", ship.Cargo["grain"])
	}
}

func TestExecuteTradeMovesCashAndGoods(t *testing.T) {
	isl := newTestIsland()
	ship := &worldstate.ShipState{Cash: 1000, Cargo: map[worldstate.GoodID]float64{}}
	cfg := config.Default().Market
	cfg.TaxRate = 0
	if _, err := ExecuteTrade(isl, ship, []TradeLine{{Good: "grain", Quantity: 10}}, true, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ship.Cargo["grain"] != 10 {
		t.Fatalf("expected ship to receive 10 grain, got %v", ship.Cargo["grain"])
	}
	if isl.Inventory["grain"] != 90 {
		t.Fatalf("expected island inventory to drop by 10, got %v", isl.Inventory["grain"])
	}
	if ship.Cash >= 1000 {
		t.Fatalf("expected ship cash to decrease, got %v", ship.Cash)
	}
}

func TestBuyDestroysTax(t *testing.T) {
	isl := newTestIsland()
	ship := &worldstate.ShipState{Cash: 1000, Cargo: map[worldstate.GoodID]float64{}}
	cfg := config.Default().Market
	cfg.TaxRate = 0.1
	treasuryBefore := isl.Treasury.Balance

	taxDestroyed, err := ExecuteTrade(isl, ship, []TradeLine{{Good: "grain", Quantity: 10}}, true, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if taxDestroyed <= 0 {
		t.Fatalf("expected buy-side tax to be destroyed, got %v", taxDestroyed)
	}
	gained := isl.Treasury.Balance - treasuryBefore
	spent := 1000 - ship.Cash
	if spent <= gained {
		t.Fatalf("expected ship to spend more than the treasury gained (tax destroyed): spent=%v gained=%v", spent, gained)
	}
}

func TestSellDestroysTaxAndDebitsFullGross(t *testing.T) {
	isl := newTestIsland()
	isl.Treasury.Balance = 100000 // large enough the purchasing-power cap doesn't bind
	ship := &worldstate.ShipState{Cash: 0, Cargo: map[worldstate.GoodID]float64{"grain": 10}}
	cfg := config.Default().Market
	cfg.TaxRate = 0.1
	cfg.EnforcePurchasingPower = false

	taxDestroyed, err := ExecuteTrade(isl, ship, []TradeLine{{Good: "grain", Quantity: 10}}, false, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if taxDestroyed <= 0 {
		t.Fatalf("expected sell-side tax to be destroyed, got %v", taxDestroyed)
	}
	treasurySpent := 100000 - isl.Treasury.Balance
	if treasurySpent <= ship.Cash {
		t.Fatalf("expected treasury to debit the full gross (more than the ship's net proceeds): spent=%v net=%v", treasurySpent, ship.Cash)
	}
}

func TestSellClampsToTreasuryPurchasingPower(t *testing.T) {
	isl := newTestIsland()
	isl.Treasury.Balance = 100
	isl.Market.Price["grain"] = 5
	isl.Market.SellDepth["grain"] = 1000 // large depth so price impact is negligible
	ship := &worldstate.ShipState{Cash: 0, Cargo: map[worldstate.GoodID]float64{"grain": 100}}

	cfg := config.Default().Market
	cfg.TaxRate = 0
	cfg.EnforcePurchasingPower = true
	cfg.MaxSpendRatio = 0.1
	cfg.MaxTreasuryFraction = 0.5

	if _, err := ExecuteTrade(isl, ship, []TradeLine{{Good: "grain", Quantity: 100}}, false, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ship.Cargo["grain"] != 99 {
		t.Fatalf("expected only 1 unit sold under the purchasing-power cap, got cargo remaining=%v", ship.Cargo["grain"])
	}
	if isl.Treasury.Balance < 0 {
		t.Fatalf("treasury must never go negative, got %v", isl.Treasury.Balance)
	}
}
