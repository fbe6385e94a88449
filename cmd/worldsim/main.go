// Command worldsim runs the archipelago trade simulation headlessly:
// generate an archipelago from a config file (or defaults), spawn a
// founding fleet of trader agents, and step the tick pipeline until
// interrupted or a configured tick limit is reached.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/brinewake/archipelago/internal/agent"
	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/engine"
	"github.com/brinewake/archipelago/internal/snapshot"
	"github.com/brinewake/archipelago/internal/worldgen"
	"github.com/brinewake/archipelago/internal/worldstate"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("archipelago — autonomous trade simulation")

	cfgPath := "worldsim.yaml"
	cfg := config.Default()
	if _, err := os.Stat(cfgPath); err == nil {
		loaded, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			slog.Error("failed to load config", "path", cfgPath, "error", loadErr)
			os.Exit(1)
		}
		cfg = loaded
		slog.Info("config loaded", "path", cfgPath)
	} else {
		slog.Info("no config file found, using defaults", "path", cfgPath)
	}

	slog.Info("generating archipelago", "seed", cfg.WorldGen.Seed, "islands", cfg.WorldGen.IslandCount)
	w := worldgen.Generate(cfg)
	slog.Info("archipelago generated", "islands", len(w.Islands), "shipyards", len(w.Shipyards))

	spawnFoundingFleet(w, cfg)

	eng := engine.New(cfg, logger)
	strategist := &agent.Strategist{
		Advisor:        nil, // no advisor wired in this build; always falls back to rule-based logic
		Timeout:        0,
		Log:            logger,
		GuardrailClamp: agent.DefaultGuardrailClamp,
	}
	executor := &agent.Executor{MarketCfg: cfg.Market}
	manager := agent.NewManager(strategist, executor, logger)
	for _, agentID := range w.SortedAgentIDs() {
		manager.Register(agentID, agent.NewMemory(cfg.Agents.StartingCash*0.1, 0.15, uint64(cfg.Agents.CooldownTicks)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLoop(ctx, eng, manager, w, cfg)
}

func spawnFoundingFleet(w *worldstate.WorldState, cfg config.Config) {
	islandIDs := w.SortedIslandIDs()
	if len(islandIDs) == 0 {
		return
	}
	// Fleet ids are derived from the world seed rather than
	// uuid.NewString()'s crypto/rand source, since property 1
	// (determinism) requires two runs of the same seed to produce byte-
	// identical agent and ship ids, not merely identical tick hashes.
	agentIDs := worldgen.DeterministicUUIDSource(cfg.WorldGen.Seed, "archipelago-founding-agent")
	shipIDs := worldgen.DeterministicUUIDSource(cfg.WorldGen.Seed, "archipelago-founding-ship")
	for i := 0; i < cfg.Agents.Count; i++ {
		agentID := agentIDs()
		shipID := shipIDs()
		homeIsland := islandIDs[i%len(islandIDs)]

		w.Agents[agentID] = &worldstate.AgentState{
			ID: agentID, Name: "Trader " + humanize.Ordinal(i+1), Type: worldstate.AgentTrader,
			Assets: worldstate.AgentAssets{Cash: cfg.Agents.StartingCash, ShipIDs: []string{shipID}},
		}
		w.Ships[shipID] = &worldstate.ShipState{
			ID: shipID, Name: "Hull " + humanize.Ordinal(i+1), OwnerAgentID: agentID,
			CargoCapacity: 100, BaseSpeed: 12, Cash: 0,
			Cargo:    map[worldstate.GoodID]float64{},
			Location: worldstate.ShipLocation{Kind: worldstate.LocationAtIsland, IslandID: homeIsland},
			Condition: 1.0,
			Crew:      worldstate.CrewState{Count: 4, Capacity: 6, Morale: 1.0, WageRate: cfg.Crew.BaseWageRate},
			OperatingCostPerDay: 2,
		}
	}
}

func runLoop(ctx context.Context, eng *engine.Engine, manager *agent.Manager, w *worldstate.WorldState, cfg config.Config) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down", "tick", w.Tick)
			return
		default:
		}

		manager.Step(ctx, w)
		metrics := eng.Step(w)
		snap := snapshot.Build(w, metrics)

		slog.Info("tick complete",
			"tick", snap.Tick, "hash", snap.Hash,
			"events_started", metrics.EventsStarted,
			"ships_arrived", metrics.ShipsArrived,
			"ships_sunk", metrics.ShipsSunk,
			"food_deficit", humanize.FormatFloat("#,###.##", metrics.FoodDeficit),
		)

		if cfg.Engine.MaxTicks > 0 && w.Tick >= cfg.Engine.MaxTicks {
			slog.Info("reached configured tick limit", "max_ticks", cfg.Engine.MaxTicks)
			return
		}
	}
}
