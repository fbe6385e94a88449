// Package market prices island goods from inventory pressure and
// consumption velocity, maintains a separate liquidity depth per good,
// and executes agent trades against both with treasury and tax
// accounting.
//
// The pricing core generalizes the teacher's MarketEntry.ResolvePrice
// (internal/economy/goods.go): base price times a supply/demand ratio,
// clamped to a band. The asymmetric buy/sell depth response and the
// tick-wise recovery toward a target are grounded on
// other_examples/.../terminal-velocity/pricing.go's UpdateMarketPrice
// and SimulateMarketTick (buying/selling move stock and demand by
// different fractions "to prevent market manipulation"; a market
// recovers 5%/hour toward equilibrium even with no trades).
package market

import (
	"fmt"
	"math"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

// consumptionMomentumAlpha, the slow Momentum smoothing rate, is
// deliberately not a config knob: with cfg.PriceEMAAlpha as the fast
// rate, it sets the fast/slow pair that makes ConsumptionEMA a
// short-window read of "how fast is this good moving right now" against
// Momentum as the longer-window reference consumption rate the spec's
// velocity term divides by. Exposing both as independently tunable
// config fields would let them invert (fast slower than slow), which
// has no sensible interpretation.
const consumptionMomentumAlpha = 0.05

// UpdateConsumptionVelocity folds this tick's actual per-good
// consumption into the good's fast (ConsumptionEMA) and slow
// (Momentum) exponential moving averages, which UpdatePricing's
// velocity term compares against each other (spec §4.6: "the
// consumption-velocity EMA ... updates with the tick's actual
// consumption").
func UpdateConsumptionVelocity(isl *worldstate.IslandState, consumed map[worldstate.GoodID]float64, cfg config.Market) {
	for _, good := range isl.SortedGoodIDs() {
		actual := consumed[good]
		isl.Market.ConsumptionEMA[good] += cfg.PriceEMAAlpha * (actual - isl.Market.ConsumptionEMA[good])
		isl.Market.Momentum[good] += consumptionMomentumAlpha * (actual - isl.Market.Momentum[good])
	}
}

// UpdatePricing recomputes one island's per-good price for the tick
// (spec §4.6):
//
//	pressure  = (idealStock / max(stock, ε)) ^ γ_g
//	velocity  = 1 + k_v,g * (consumptionEMA / max(refConsumption, ε))
//	raw       = basePrice * pressure * velocity * eventMod
//	stabilized = raw*(1-s) + basePrice*s     (s from the island's market building)
//	price'    = price + λ*(stabilized - price)
//
// clamped to [max(minPrice, band-min*base), min(maxPrice, band-max*base)].
func UpdatePricing(isl *worldstate.IslandState, goods map[worldstate.GoodID]worldstate.GoodDefinition, cfg config.Market, foodDemandMod, luxuryDemandMod float64) {
	s := marketStabilization(isl)

	for _, good := range isl.SortedGoodIDs() {
		stock := isl.Inventory[good]
		ideal := isl.Market.IdealStock[good]
		if ideal <= 0 {
			ideal = stock
			isl.Market.IdealStock[good] = ideal
		}

		def := goods[good]
		base := def.BasePrice
		if base <= 0 {
			base = 1
		}
		cat := cfg.CategoryConfig(def.Category)

		pressure := math.Pow(maxf(ideal, 1e-6)/maxf(stock, 1e-6), cat.PriceElasticity)

		refConsumption := isl.Market.Momentum[good]
		velocity := 1 + cat.VelocityCoefficient*(isl.Market.ConsumptionEMA[good]/maxf(refConsumption, 1e-6))

		eventMod := eventPriceModifier(def, foodDemandMod, luxuryDemandMod)

		raw := base * pressure * velocity * eventMod
		stabilized := raw*(1-s) + base*s

		price := isl.Market.Price[good]
		if price <= 0 {
			price = stabilized
		}
		price += cfg.PriceLambda * (stabilized - price)

		lo := maxf(cfg.MinPrice, base*cfg.PriceBandMin)
		hi := minf(cfg.MaxPrice, base*cfg.PriceBandMax)
		if price < lo {
			price = lo
		}
		if price > hi {
			price = hi
		}
		isl.Market.Price[good] = price
	}
}

// eventPriceModifier reuses the tick's active food/luxury demand
// events as a direct price shifter, on top of the slower
// consumption-velocity feedback loop: a festival or blight visibly
// moves prices the same tick it starts, not several ticks later once
// the EMA catches up.
func eventPriceModifier(def worldstate.GoodDefinition, foodDemandMod, luxuryDemandMod float64) float64 {
	switch def.Category {
	case worldstate.CategoryFood:
		return foodDemandMod
	case worldstate.CategoryLuxury:
		return luxuryDemandMod
	default:
		return 1.0
	}
}

// marketStabilization returns the island's market-building stabilizer
// s: a level-1 undamaged market building blends 10% of the raw price
// toward base, capped at 0.5 so a maxed-out market can never fully
// peg prices, echoing the warehouse spoilage-reduction idiom in
// internal/engine's stepShip (level*condition scaling, floored/capped).
func marketStabilization(isl *worldstate.IslandState) float64 {
	mkt, ok := isl.Buildings[worldstate.BuildingMarket]
	if !ok {
		return 0
	}
	s := 0.1 * float64(mkt.Level) * mkt.Condition
	if s > 0.5 {
		s = 0.5
	}
	return s
}

// RecoverDepth moves each good's buy/sell depth one tick toward its
// target liquidity (max(minDepth, idealStock*baseDepthMultiplier)), the
// "recovers toward equilibrium even with no trades" idiom from
// SimulateMarketTick.
func RecoverDepth(isl *worldstate.IslandState, cfg config.Market) {
	for _, good := range isl.SortedGoodIDs() {
		target := maxf(cfg.MinDepth, isl.Market.IdealStock[good]*cfg.BaseDepthMultiplier)
		isl.Market.BuyDepth[good] = recoverOne(isl.Market.BuyDepth[good], target, cfg.DepthRecoveryRate)
		isl.Market.SellDepth[good] = recoverOne(isl.Market.SellDepth[good], target, cfg.DepthRecoveryRate)
	}
}

func recoverOne(cur, target, rate float64) float64 {
	next := cur + rate*(target-cur)
	if next < 0 {
		return 0
	}
	return next
}

// PriceImpact returns the effective per-unit price a trade of the
// given size and direction (buy=true) pays, after depth-based slippage
// (spec §4.6):
//
//	ratio  = quantity / max(depth, minDepth)
//	impact = ratio*k                  if ratio <= 1
//	impact = k + (ratio-1)^2 * 2k      otherwise
//
// impact is capped at 0.5 so a trade can never clear at a negative or
// zero per-unit price regardless of how illiquid the market is.
func PriceImpact(isl *worldstate.IslandState, good worldstate.GoodID, quantity float64, buy bool, cfg config.Market) float64 {
	price := isl.Market.Price[good]
	depth := isl.Market.SellDepth[good]
	if buy {
		depth = isl.Market.BuyDepth[good]
	}
	d := maxf(depth, cfg.MinDepth)
	ratio := quantity / d
	k := cfg.PriceImpactCoefficient

	var impact float64
	if ratio <= 1 {
		impact = ratio * k
	} else {
		impact = k + (ratio-1)*(ratio-1)*2*k
	}
	if impact > 0.5 {
		impact = 0.5
	}

	if buy {
		return price * (1 + impact)
	}
	return price * (1 - impact)
}

// TradeLine is one good's quantity within a multi-good trade order.
type TradeLine struct {
	Good     worldstate.GoodID
	Quantity float64
}

// ErrInsufficientFunds is returned when a buy order would exceed the
// ship's cash.
var ErrInsufficientFunds = fmt.Errorf("market: insufficient funds")

// ErrInsufficientInventory is returned when a sell order exceeds the
// ship's cargo, or a buy order exceeds island inventory.
var ErrInsufficientInventory = fmt.Errorf("market: insufficient inventory")

type plannedLine struct {
	good  worldstate.GoodID
	qty   float64
	price float64
	gross float64
	tax   float64
}

// ExecuteTrade applies a multi-line buy or sell order against an
// island market and a ship, returning the amount of transaction tax
// destroyed (spec §4.6: tax is a sink, not a transfer). It is atomic
// only with respect to hard invariant violations — insufficient funds
// or inventory reject the whole order — not with respect to the
// purchasing-power cap on sells, which instead soft-clamps the
// executed quantity (spec §4.6/§4.12 enforcePurchasingPower): an
// island's treasury will never spend more than
// treasury*maxSpendRatio*maxTreasuryFraction in one trade, but it buys
// as much of the order as that budget allows rather than rejecting the
// whole thing.
func ExecuteTrade(isl *worldstate.IslandState, ship *worldstate.ShipState, lines []TradeLine, buy bool, cfg config.Market) (taxDestroyed float64, err error) {
	if buy {
		return executeBuy(isl, ship, lines, cfg)
	}
	return executeSell(isl, ship, lines, cfg)
}

// executeBuy charges the ship execPrice*qty plus a destroyed tax on
// top, and credits the island treasury the pre-tax execution price
// (spec §4.6).
func executeBuy(isl *worldstate.IslandState, ship *worldstate.ShipState, lines []TradeLine, cfg config.Market) (float64, error) {
	planned := make([]plannedLine, 0, len(lines))
	totalCost := 0.0

	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if isl.Inventory[l.Good] < l.Quantity {
			return 0, fmt.Errorf("%w: island lacks %s", ErrInsufficientInventory, l.Good)
		}
		price := PriceImpact(isl, l.Good, l.Quantity, true, cfg)
		gross := price * l.Quantity
		tax := gross * cfg.TaxRate
		totalCost += gross + tax
		planned = append(planned, plannedLine{good: l.Good, qty: l.Quantity, price: price, gross: gross, tax: tax})
	}
	if ship.Cash < totalCost {
		return 0, ErrInsufficientFunds
	}

	var taxDestroyed float64
	for _, p := range planned {
		ship.Cash -= p.gross + p.tax
		ship.Cargo[p.good] += p.qty
		isl.Inventory[p.good] -= p.qty
		isl.Market.BuyDepth[p.good] = maxf(isl.Market.BuyDepth[p.good]-p.qty, 0)
		if isl.Treasury != nil {
			isl.Treasury.Balance += p.gross
			isl.Treasury.Income += p.gross
		}
		taxDestroyed += p.tax
	}
	return taxDestroyed, nil
}

// executeSell clamps each line's quantity to what the island's
// treasury can afford to spend this transaction (enforcePurchasingPower),
// pays the ship the net-of-tax proceeds, and debits the treasury the
// full gross so the tax amount is destroyed rather than merely
// withheld from the ship (spec §4.6).
func executeSell(isl *worldstate.IslandState, ship *worldstate.ShipState, lines []TradeLine, cfg config.Market) (float64, error) {
	budget := math.MaxFloat64
	if cfg.EnforcePurchasingPower && isl.Treasury != nil {
		budget = isl.Treasury.Balance * cfg.MaxSpendRatio * cfg.MaxTreasuryFraction
	}

	planned := make([]plannedLine, 0, len(lines))
	spent := 0.0
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if ship.Cargo[l.Good] < l.Quantity {
			return 0, fmt.Errorf("%w: ship lacks %s", ErrInsufficientInventory, l.Good)
		}
		price := PriceImpact(isl, l.Good, l.Quantity, false, cfg)
		qty := l.Quantity
		gross := price * qty

		if cfg.EnforcePurchasingPower && spent+gross > budget {
			remaining := budget - spent
			if remaining <= 0 {
				continue
			}
			qty = math.Floor(remaining / price)
			if qty <= 0 {
				continue
			}
			gross = price * qty
		}

		tax := gross * cfg.TaxRate
		spent += gross
		planned = append(planned, plannedLine{good: l.Good, qty: qty, price: price, gross: gross, tax: tax})
	}

	var taxDestroyed float64
	for _, p := range planned {
		net := p.gross - p.tax
		ship.Cash += net
		ship.Cargo[p.good] -= p.qty
		isl.Inventory[p.good] += p.qty
		isl.Market.SellDepth[p.good] = maxf(isl.Market.SellDepth[p.good]-p.qty, 0)
		if isl.Treasury != nil {
			isl.Treasury.Balance -= p.gross
			isl.Treasury.Expenses += p.gross
		}
		taxDestroyed += p.tax
	}
	return taxDestroyed, nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
