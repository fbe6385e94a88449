// Package worldgen builds the initial archipelago: island placement,
// starting ecosystem capacities, markets, and one shipyard per island
// (the founding agents and ships are created by cmd/worldsim). It is
// a direct generalization of the teacher's internal/world/generation.go
// (three independent opensimplex noise fields sampled over a hex grid)
// to continuous 2-D placement over open water, since ships in this
// simulation travel in straight lines rather than along hex edges.
package worldgen

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/ojrac/opensimplex-go"

	"github.com/brinewake/archipelago/internal/config"
	"github.com/brinewake/archipelago/internal/worldstate"
)

var goodCatalog = []worldstate.GoodDefinition{
	{ID: "grain", Name: "Grain", Category: worldstate.CategoryFood, Sector: worldstate.SectorFarming, Bulkiness: 1.0, Spoilage: 0.01, BasePrice: 2, Extractive: false},
	{ID: "fish", Name: "Fish", Category: worldstate.CategoryFood, Sector: worldstate.SectorFishing, Bulkiness: 1.0, Spoilage: 0.06, BasePrice: 2, Extractive: true},
	{ID: "timber", Name: "Timber", Category: worldstate.CategoryMaterial, Sector: worldstate.SectorForestry, Bulkiness: 2.0, Spoilage: 0.0, BasePrice: 3, Extractive: true},
	{ID: "ore", Name: "Ore", Category: worldstate.CategoryMaterial, Sector: worldstate.SectorMining, Bulkiness: 1.5, Spoilage: 0.0, BasePrice: 4, Extractive: false},
	{ID: "tools", Name: "Tools", Category: worldstate.CategoryTool, Sector: worldstate.SectorCrafting, Bulkiness: 0.5, Spoilage: 0.0, BasePrice: 10, Extractive: false},
	{ID: "spices", Name: "Spices", Category: worldstate.CategoryLuxury, Sector: worldstate.SectorCrafting, Bulkiness: 0.2, Spoilage: 0.02, BasePrice: 20, Extractive: false},
	{ID: "cloth", Name: "Cloth", Category: worldstate.CategoryLuxury, Sector: worldstate.SectorCrafting, Bulkiness: 0.8, Spoilage: 0.0, BasePrice: 12, Extractive: false},
}

// islandArchetype gives each generated island a production bias so the
// archipelago has the arbitrage opportunities the strategist is meant
// to find (spec §2 scenario B), sampled by a noise field rather than
// assigned by hand.
type islandArchetype struct {
	name              string
	farmingBias       float64
	fishingBias       float64
	forestryBias      float64
	miningBias        float64
	craftingBias      float64
}

var archetypes = []islandArchetype{
	{name: "Farmland", farmingBias: 1.6, fishingBias: 0.6, forestryBias: 0.8, miningBias: 0.4, craftingBias: 0.8},
	{name: "Fishing Ground", farmingBias: 0.5, fishingBias: 1.8, forestryBias: 0.6, miningBias: 0.4, craftingBias: 0.7},
	{name: "Timberland", farmingBias: 0.6, fishingBias: 0.7, forestryBias: 1.8, miningBias: 0.5, craftingBias: 0.9},
	{name: "Mining Hold", farmingBias: 0.4, fishingBias: 0.5, forestryBias: 0.6, miningBias: 1.9, craftingBias: 1.1},
	{name: "Crafters' Port", farmingBias: 0.7, fishingBias: 0.8, forestryBias: 0.7, miningBias: 0.8, craftingBias: 1.7},
}

// Generate builds a fresh WorldState deterministically from cfg. Equal
// cfg values always produce byte-identical output (spec property 1).
func Generate(cfg config.Config) *worldstate.WorldState {
	w := worldstate.NewWorldState()
	for _, g := range goodCatalog {
		w.Goods[g.ID] = g
	}

	seed := cfg.WorldGen.Seed
	elevationNoise := opensimplex.NewNormalized(seed)
	fertilityNoise := opensimplex.NewNormalized(seed + 1)
	archetypeNoise := opensimplex.NewNormalized(seed + 2)

	idSeq := deterministicUUIDSource(seed)

	n := cfg.WorldGen.IslandCount
	radius := cfg.WorldGen.MapRadius
	golden := math.Pi * (3 - math.Sqrt(5)) // golden angle, for an even sunflower spread

	for i := 0; i < n; i++ {
		frac := (float64(i) + 0.5) / float64(n)
		r := radius * math.Sqrt(frac)
		theta := float64(i) * golden
		pos := worldstate.Vec2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}

		elevation := elevationNoise.Eval2(pos.X/120, pos.Y/120)
		fertility := fertilityNoise.Eval2(pos.X/90, pos.Y/90)
		archSample := archetypeNoise.Eval2(pos.X/200, pos.Y/200)
		arch := archetypes[int(archSample*float64(len(archetypes)))%len(archetypes)]

		id := idSeq()
		isl := buildIsland(id, fmt.Sprintf("%s %d", arch.name, i+1), pos, elevation, fertility, arch)
		w.Islands[id] = isl

		sy := &worldstate.ShipyardState{ID: idSeq(), IslandID: id}
		w.Shipyards[sy.ID] = sy
	}

	return w
}

func buildIsland(id, name string, pos worldstate.Vec2, elevation, fertility float64, arch islandArchetype) *worldstate.IslandState {
	fishCap := 800 + 400*elevation
	forestCap := 600 + 500*(1-elevation)
	soil := 0.4 + 0.5*fertility

	isl := &worldstate.IslandState{
		ID:       id,
		Name:     name,
		Position: pos,
		Ecosystem: worldstate.EcosystemState{
			FishStock:     fishCap * 0.8,
			ForestBiomass: forestCap * 0.8,
			SoilFertility: soil,
		},
		EcosystemParams: worldstate.EcosystemParams{
			FishCapacity:     fishCap,
			ForestCapacity:   forestCap,
			FishRegenRate:    0.03,
			ForestRegenRate:  0.015,
			SoilRegenRate:    0.01,
			FarmingDepletion: 0.004,
		},
		Population: worldstate.PopulationState{
			Size:   400 + 200*fertility,
			Health: 0.85,
			LaborShares: map[worldstate.Sector]float64{
				worldstate.SectorFarming:  0.25,
				worldstate.SectorFishing:  0.25,
				worldstate.SectorForestry: 0.15,
				worldstate.SectorMining:   0.15,
				worldstate.SectorCrafting: 0.1,
				worldstate.SectorServices: 0.1,
			},
		},
		Inventory: map[worldstate.GoodID]float64{
			"grain": 200, "fish": 150, "timber": 150, "ore": 80, "tools": 40, "spices": 10, "cloth": 30,
		},
		Market: worldstate.NewMarketState(),
		Production: worldstate.ProductionParams{
			BaseRate: map[worldstate.GoodID]float64{
				"grain": 6 * arch.farmingBias, "fish": 5 * arch.fishingBias,
				"timber": 4 * arch.forestryBias, "ore": 3 * arch.miningBias,
				"tools": 1.2 * arch.craftingBias, "spices": 0.4 * arch.craftingBias, "cloth": 1.5 * arch.craftingBias,
			},
			ToolSensitivity: map[worldstate.GoodID]float64{
				"grain": 0.3, "fish": 0.2, "timber": 0.4, "ore": 0.5, "tools": 0, "spices": 0.2, "cloth": 0.3,
			},
			EcosystemSensitivity: map[worldstate.GoodID]float64{
				"fish": 1.0, "timber": 1.0, "grain": 0.6,
			},
		},
		Buildings: map[worldstate.BuildingType]worldstate.BuildingState{
			worldstate.BuildingWarehouse: {Level: 1, Condition: 1.0},
			worldstate.BuildingMarket:    {Level: 1, Condition: 1.0},
			worldstate.BuildingWorkshop:  {Level: 1, Condition: 1.0},
		},
		Treasury: &worldstate.TreasuryState{Balance: 1000},
	}
	for g, def := range goodCatalog {
		_ = g
		isl.Market.Price[def.ID] = def.BasePrice
		isl.Market.IdealStock[def.ID] = isl.Inventory[def.ID]
		isl.Market.BuyDepth[def.ID] = 100
		isl.Market.SellDepth[def.ID] = 100
	}
	return isl
}

// deterministicUUIDSource returns a function that mints RFC-4122 v5
// (namespace+name, hence deterministic) UUIDs keyed by the world seed,
// since github.com/google/uuid's v4 generator is non-deterministic and
// would break property 1 if used for initial id assignment.
func deterministicUUIDSource(seed int64) func() string {
	return DeterministicUUIDSource(seed, "archipelago-seed")
}

// DeterministicUUIDSource is the exported form of deterministicUUIDSource,
// namespaced by an arbitrary tag so unrelated deterministic id streams
// (world generation, founding-fleet spawn) never collide with each other
// even when seeded from the same world seed.
func DeterministicUUIDSource(seed int64, tag string) func() string {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s-%d", tag, seed)))
	counter := 0
	return func() string {
		counter++
		id := uuid.NewSHA1(ns, []byte(fmt.Sprintf("entity-%d", counter)))
		return id.String()
	}
}
