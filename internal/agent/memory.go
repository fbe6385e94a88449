package agent

// StrategyKind names the high-level posture the strategist sets; the
// executor turns it into concrete actions (spec §4.14/§4.15).
type StrategyKind string

const (
	StrategyHold       StrategyKind = "hold"
	StrategyTradeRoute StrategyKind = "trade_route"
	StrategyRepair     StrategyKind = "repair"
	StrategyLiquidate  StrategyKind = "liquidate"
)

// Strategy is the strategist's output for one agent-ship pair: a
// posture plus the parameters the executor needs to act on it. It
// mirrors the shape of the teacher's Decision/Intervention pair
// (internal/gardener/decide.go) scaled down from a world-steward's
// action menu to a trader's.
type Strategy struct {
	Kind            StrategyKind
	ShipID          string
	BuyGood         string
	BuyIsland       string
	SellGood        string
	SellIsland      string
	Rationale       string
	FromAdvisor     bool
}

// Plan is the executor's in-progress realization of a Strategy across
// multiple ticks (spec §3): sell current cargo, buy the new cargo,
// navigate to the sell island, then wait for arrival.
type Plan struct {
	Strategy Strategy
	Stage    PlanStage
}

// PlanStage is the sell→buy→navigate→wait cascade position (spec §4.15).
type PlanStage int

const (
	StageSell PlanStage = iota
	StageBuy
	StageNavigate
	StageWait
	StageDone
)

// Memory is an agent's private, non-canonical state: trigger
// thresholds, outstanding plans per ship, and trigger bookkeeping. It
// is intentionally excluded from worldstate.WorldState and therefore
// from the canonical hash (SPEC_FULL.md §3/§9) — two runs with
// identical seeds must produce identical WorldState hashes even if an
// advisor's prose rationale differs, since that prose never enters
// WorldState.
type Memory struct {
	CashBuffer         float64
	ArbitrageThreshold float64
	CooldownTicks      uint64
	LastActedTick      uint64
	LastKnownAtSea     map[string]bool
	Plans              map[string]*Plan
	History            []Strategy
}

// NewMemory returns a Memory with the given trigger thresholds, ready
// for use by a freshly added agent.
func NewMemory(cashBuffer, arbitrageThreshold float64, cooldownTicks uint64) *Memory {
	return &Memory{
		CashBuffer:         cashBuffer,
		ArbitrageThreshold: arbitrageThreshold,
		CooldownTicks:      cooldownTicks,
		LastKnownAtSea:     map[string]bool{},
		Plans:              map[string]*Plan{},
	}
}
