// Trigger classification: a free, deterministic pre-strategist check
// for whether an agent needs to spend a strategist call this tick.
// Grounded on the teacher's gardener.Triage (internal/gardener/
// triage.go), which computed a WorldHealth/CrisisLevel purely from
// arithmetic on the observed snapshot before any LLM call was made.
package agent

// TriggerKind names why an agent's turn fired.
type TriggerKind string

const (
	TriggerNone           TriggerKind = "none"
	TriggerIdleShip       TriggerKind = "idle_ship"       // a ship sits docked with no plan
	TriggerArbitrage      TriggerKind = "arbitrage"       // large price spread between two known islands
	TriggerLowCash        TriggerKind = "low_cash"        // cash below operating buffer
	TriggerVoyageComplete TriggerKind = "voyage_complete" // a ship just docked
	TriggerDistress       TriggerKind = "distress"        // crew morale or ship condition critical
	TriggerCooldownElapsed TriggerKind = "cooldown_elapsed"
)

// priority is the fixed evaluation order (spec §4.13): the first
// matching trigger wins, so two runs with identical state always fire
// the same trigger.
var priority = []TriggerKind{
	TriggerDistress,
	TriggerVoyageComplete,
	TriggerLowCash,
	TriggerArbitrage,
	TriggerIdleShip,
	TriggerCooldownElapsed,
}

// Evaluate walks the fixed trigger priority and returns the first that
// fires, or TriggerNone if the agent has nothing to react to this tick.
func Evaluate(obs ObservableState, mem *Memory) TriggerKind {
	for _, kind := range priority {
		if fires(kind, obs, mem) {
			return kind
		}
	}
	return TriggerNone
}

func fires(kind TriggerKind, obs ObservableState, mem *Memory) bool {
	switch kind {
	case TriggerDistress:
		for _, s := range obs.Ships {
			if s.CrewMorale < 0.2 || s.Condition < 0.15 {
				return true
			}
		}
		return false
	case TriggerVoyageComplete:
		for _, s := range obs.Ships {
			if !s.AtSea && mem.LastKnownAtSea[s.ID] {
				return true
			}
		}
		return false
	case TriggerLowCash:
		return obs.Cash < mem.CashBuffer
	case TriggerArbitrage:
		return hasArbitrageOpportunity(obs, mem.ArbitrageThreshold)
	case TriggerIdleShip:
		for _, s := range obs.Ships {
			if !s.AtSea && mem.Plans[s.ID] == nil {
				return true
			}
		}
		return false
	case TriggerCooldownElapsed:
		return obs.Tick-mem.LastActedTick >= mem.CooldownTicks
	default:
		return false
	}
}

// hasArbitrageOpportunity reports whether any good's price spread
// between two known islands exceeds the configured threshold fraction
// of the lower price.
func hasArbitrageOpportunity(obs ObservableState, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	type minMax struct{ min, max float64 }
	spread := map[string]minMax{}
	for _, isl := range obs.Islands {
		for good, price := range isl.Prices {
			key := string(good)
			cur, ok := spread[key]
			if !ok {
				spread[key] = minMax{min: price, max: price}
				continue
			}
			if price < cur.min {
				cur.min = price
			}
			if price > cur.max {
				cur.max = price
			}
			spread[key] = cur
		}
	}
	for _, mm := range spread {
		if mm.min <= 0 {
			continue
		}
		if (mm.max-mm.min)/mm.min >= threshold {
			return true
		}
	}
	return false
}
