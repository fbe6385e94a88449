// Strategist: the external-advisor capability contract plus its
// deterministic fallback. Grounded on the teacher's gardener.Decide
// (prompt construction, strict JSON response shape, guardrail-enforced
// clamping of whatever the advisor returns) and internal/llm.Client's
// rate-limited, "nil client = disabled" capability shape
// (internal/llm/client.go). The advisor's HTTP transport itself is out
// of scope here (spec §1/§6): Advisor is the seam a real client would
// implement, not an implementation of one.
package agent

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/brinewake/archipelago/internal/worldstate"
)

// Advisor is the external LLM-backed planning capability. A concrete
// implementation lives outside this module's scope (spec §6): it would
// wrap an HTTP client the way the teacher's internal/llm.Client wraps
// the Anthropic Messages API, including its own rate limiting.
type Advisor interface {
	Propose(ctx context.Context, obs ObservableState, mem *Memory) (Strategy, error)
}

// Strategist decides a Strategy for a triggered agent. It always tries
// the advisor first (if configured and enabled) within a bounded
// deadline, and falls back to deterministic rule-based logic either if
// no advisor is configured or if the advisor doesn't answer in time.
type Strategist struct {
	Advisor        Advisor
	Timeout        time.Duration
	Log            *slog.Logger
	GuardrailClamp GuardrailClamp
}

// GuardrailClamp bounds the advisor's proposed strategy the way
// enforceGuardrails bounds the Gardener's Decision: whatever the
// advisor requests, the clamp keeps the result inside rules the
// simulation can't violate (e.g. a sell island the agent doesn't
// actually know about is not a valid advisor output).
type GuardrailClamp func(obs ObservableState, s Strategy) Strategy

// Decide resolves a Strategy for the given trigger. Per the non-
// blocking concurrency model (spec §5, DESIGN.md open-question decision 4), the
// advisor call runs in its own goroutine with a bounded context; if it
// doesn't resolve by the deadline, Decide returns the deterministic
// fallback immediately and the late advisor reply — if it ever arrives
// — is discarded rather than retroactively applied to a tick that has
// already moved on.
func (st *Strategist) Decide(ctx context.Context, trigger TriggerKind, obs ObservableState, mem *Memory) Strategy {
	if st.Advisor == nil {
		return st.fallback(trigger, obs, mem)
	}

	type result struct {
		strategy Strategy
		err      error
	}
	ch := make(chan result, 1)
	callCtx, cancel := context.WithTimeout(ctx, st.Timeout)
	defer cancel()

	go func() {
		s, err := st.Advisor.Propose(callCtx, obs, mem)
		ch <- result{strategy: s, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			st.logf("advisor error, using fallback", "agent", obs.AgentID, "error", r.err)
			return st.fallback(trigger, obs, mem)
		}
		r.strategy.FromAdvisor = true
		if st.GuardrailClamp != nil {
			r.strategy = st.GuardrailClamp(obs, r.strategy)
		}
		return r.strategy
	case <-callCtx.Done():
		st.logf("advisor timed out, using fallback", "agent", obs.AgentID)
		return st.fallback(trigger, obs, mem)
	}
}

func (st *Strategist) logf(msg string, args ...any) {
	if st.Log != nil {
		st.Log.Warn(msg, args...)
	}
}

// fallback is the deterministic rule-based strategist: for each
// trigger kind, pick the simplest safe strategy without drawing on any
// external capability, so a run with advisor_enabled=false is still a
// complete, self-consistent simulation (spec §4.14 "must function
// fully without the advisor").
func (st *Strategist) fallback(trigger TriggerKind, obs ObservableState, mem *Memory) Strategy {
	switch trigger {
	case TriggerDistress:
		for _, s := range obs.Ships {
			if s.CrewMorale < 0.2 || s.Condition < 0.15 {
				return Strategy{Kind: StrategyRepair, ShipID: s.ID, Rationale: "low morale or condition"}
			}
		}
	case TriggerLowCash:
		if ship, ok := bestLiquidationShip(obs); ok {
			return Strategy{Kind: StrategyLiquidate, ShipID: ship, Rationale: "cash below buffer"}
		}
	case TriggerArbitrage, TriggerIdleShip, TriggerVoyageComplete, TriggerCooldownElapsed:
		if s, ok := bestTradeRoute(obs); ok {
			return s
		}
	}
	return Strategy{Kind: StrategyHold, Rationale: "no actionable opportunity"}
}

// bestTradeRoute picks the good and island pair with the largest price
// spread reachable by any idle or docked ship, favoring the simplest
// deterministic choice (lowest island id, then lowest good id, on ties)
// so repeated runs from the same seed make the same pick.
func bestTradeRoute(obs ObservableState) (Strategy, bool) {
	var bestShip string
	var bestBuyIsland, bestSellIsland, bestGood string
	bestSpread := 0.0
	found := false

	for _, s := range obs.Ships {
		if s.AtSea {
			continue
		}
		for _, buyIsl := range obs.Islands {
			goods := make([]worldstate.GoodID, 0, len(buyIsl.Prices))
			for good := range buyIsl.Prices {
				goods = append(goods, good)
			}
			sort.Slice(goods, func(i, j int) bool { return goods[i] < goods[j] })
			for _, good := range goods {
				buyPrice := buyIsl.Prices[good]
				if buyPrice <= 0 {
					continue
				}
				for _, sellIsl := range obs.Islands {
					if sellIsl.ID == buyIsl.ID {
						continue
					}
					sellPrice, ok := sellIsl.Prices[good]
					if !ok {
						continue
					}
					spread := sellPrice - buyPrice
					if spread > bestSpread || (spread == bestSpread && spread > 0 && !found) {
						bestSpread = spread
						bestShip = s.ID
						bestBuyIsland = buyIsl.ID
						bestSellIsland = sellIsl.ID
						bestGood = string(good)
						found = true
					}
				}
			}
		}
	}
	if !found || bestSpread <= 0 {
		return Strategy{}, false
	}
	return Strategy{
		Kind: StrategyTradeRoute, ShipID: bestShip,
		BuyGood: bestGood, BuyIsland: bestBuyIsland,
		SellGood: bestGood, SellIsland: bestSellIsland,
		Rationale: "arbitrage spread",
	}, true
}

func bestLiquidationShip(obs ObservableState) (string, bool) {
	for _, s := range obs.Ships {
		if !s.AtSea && len(s.Cargo) > 0 {
			return s.ID, true
		}
	}
	return "", false
}

// DefaultGuardrailClamp keeps an advisor's proposed strategy confined
// to islands and ships the agent actually observed this tick, the same
// "never trust the advisor's entity references blindly" discipline the
// teacher applies to settlement names in enforceGuardrails.
func DefaultGuardrailClamp(obs ObservableState, s Strategy) Strategy {
	knownIslands := map[string]bool{}
	for _, isl := range obs.Islands {
		knownIslands[isl.ID] = true
	}
	knownShips := map[string]bool{}
	for _, sh := range obs.Ships {
		knownShips[sh.ID] = true
	}
	if !knownShips[s.ShipID] {
		return Strategy{Kind: StrategyHold, Rationale: "advisor referenced unknown ship"}
	}
	if s.Kind == StrategyTradeRoute && (!knownIslands[s.BuyIsland] || !knownIslands[s.SellIsland]) {
		return Strategy{Kind: StrategyHold, Rationale: "advisor referenced unknown island"}
	}
	return s
}
