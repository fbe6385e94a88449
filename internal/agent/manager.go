// Manager runs the agent layer for one tick: build each agent's
// ObservableState, evaluate its trigger, consult the strategist if
// triggered, and advance its executor plan. Grounded on the teacher's
// TickMinute (internal/engine/simulation.go), which looped every agent
// in a fixed order and ran decide-then-act per agent before moving to
// the next — the same sequential-commit discipline SPEC_FULL.md §9
// decision 2 requires here for determinism.
package agent

import (
	"context"
	"log/slog"

	"github.com/brinewake/archipelago/internal/worldstate"
)

// Manager owns per-agent Memory and the shared Strategist/Executor used
// to process every agent's turn.
type Manager struct {
	Strategist *Strategist
	Executor   *Executor
	Log        *slog.Logger
	memory     map[string]*Memory
}

// NewManager constructs a Manager. Callers register each agent's
// starting Memory via Register before the first tick.
func NewManager(strategist *Strategist, executor *Executor, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{Strategist: strategist, Executor: executor, Log: log, memory: map[string]*Memory{}}
}

// Register attaches Memory to an agent id, called once when the agent
// is created.
func (m *Manager) Register(agentID string, mem *Memory) {
	m.memory[agentID] = mem
}

// Step processes every agent's turn for the tick in sorted agent-id
// order, committing each agent's mutations to w before the next agent
// observes it (spec §9 decision 2: later agents in the same tick see
// earlier agents' committed trades).
func (m *Manager) Step(ctx context.Context, w *worldstate.WorldState) {
	for _, agentID := range w.SortedAgentIDs() {
		mem := m.memory[agentID]
		if mem == nil {
			mem = NewMemory(50, 0.15, 6)
			m.memory[agentID] = mem
		}
		m.stepAgent(ctx, w, agentID, mem)
	}
}

func (m *Manager) stepAgent(ctx context.Context, w *worldstate.WorldState, agentID string, mem *Memory) {
	obs := BuildObservableState(w, agentID)

	// Advance any in-progress plans regardless of trigger state: a plan
	// already underway keeps executing every tick, it doesn't wait for
	// a fresh trigger to fire again.
	for shipID, plan := range mem.Plans {
		if plan == nil {
			continue
		}
		if m.Executor.Step(w, plan) {
			mem.History = append(mem.History, plan.Strategy)
			delete(mem.Plans, shipID)
		}
	}

	trigger := Evaluate(obs, mem)
	m.recordVoyageState(obs, mem)
	if trigger == TriggerNone {
		return
	}

	strategy := m.Strategist.Decide(ctx, trigger, obs, mem)
	mem.LastActedTick = w.Tick

	if strategy.Kind == StrategyHold || strategy.ShipID == "" {
		return
	}
	if _, busy := mem.Plans[strategy.ShipID]; busy {
		return
	}
	mem.Plans[strategy.ShipID] = &Plan{Strategy: strategy, Stage: StageSell}
}

// recordVoyageState updates the at-sea bookkeeping TriggerVoyageComplete
// relies on to detect the tick a ship docks.
func (m *Manager) recordVoyageState(obs ObservableState, mem *Memory) {
	for _, s := range obs.Ships {
		mem.LastKnownAtSea[s.ID] = s.AtSea
	}
}
