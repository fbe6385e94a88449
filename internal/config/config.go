// Package config loads and defaults the simulation's run configuration.
// The shape follows the teacher's GenConfig/DefaultGenConfig/
// SmallTestConfig preset idiom (internal/world/generation.go), widened
// to cover every tunable SPEC_FULL.md names and loaded from YAML rather
// than hardcoded in cmd/worldsim/main.go.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brinewake/archipelago/internal/worldstate"
)

// WorldGen controls archipelago generation.
type WorldGen struct {
	Seed       int64   `yaml:"seed"`
	IslandCount int    `yaml:"island_count"`
	MapRadius  float64 `yaml:"map_radius"`
}

// Ecology controls the hysteresis regen model (spec §4.2, §6).
type Ecology struct {
	HealthyThreshold   float64 `yaml:"healthy_threshold"`
	StressedThreshold  float64 `yaml:"stressed_threshold"`
	DegradedThreshold  float64 `yaml:"degraded_threshold"`
	CollapsedThreshold float64 `yaml:"collapsed_threshold"`
	MigrationFraction  float64 `yaml:"migration_fraction"`
}

// GoodCategoryConfig holds the per-category pricing coefficients spec
// §4.6/§6 names: the price-pressure exponent γ, the consumption-
// velocity coefficient k_v, and the number of days of typical
// consumption an island tries to hold as its ideal stock.
type GoodCategoryConfig struct {
	PriceElasticity     float64 `yaml:"price_elasticity"`     // γ
	VelocityCoefficient float64 `yaml:"velocity_coefficient"` // k_v
	IdealStockDays      float64 `yaml:"ideal_stock_days"`
}

// Market controls pricing and depth dynamics (spec §4.6, §6).
type Market struct {
	PriceEMAAlpha      float64 `yaml:"price_ema_alpha"`      // smooths the consumption-velocity EMA itself
	PriceLambda        float64 `yaml:"price_lambda"`         // λ: final price's own EMA smoothing factor
	PriceBandMin       float64 `yaml:"price_band_min"`
	PriceBandMax       float64 `yaml:"price_band_max"`
	MinPrice           float64 `yaml:"min_price"`
	MaxPrice           float64 `yaml:"max_price"`
	DepthRecoveryRate  float64 `yaml:"depth_recovery_rate"`
	TaxRate            float64 `yaml:"tax_rate"`

	MinDepth               float64 `yaml:"min_depth"`
	BaseDepthMultiplier    float64 `yaml:"base_depth_multiplier"`
	PriceImpactCoefficient float64 `yaml:"price_impact_coefficient"`

	EnforcePurchasingPower bool    `yaml:"enforce_purchasing_power"`
	MaxSpendRatio          float64 `yaml:"max_spend_ratio"`
	MaxTreasuryFraction    float64 `yaml:"max_treasury_fraction"`

	Categories map[worldstate.GoodCategory]GoodCategoryConfig `yaml:"categories"`
}

// CategoryConfig returns the pricing coefficients for cat, falling back
// to a neutral default (γ=1, k_v=0, 7 ideal-stock days) if the config
// doesn't name the category.
func (m Market) CategoryConfig(cat worldstate.GoodCategory) GoodCategoryConfig {
	if c, ok := m.Categories[cat]; ok {
		return c
	}
	return GoodCategoryConfig{PriceElasticity: 1.0, VelocityCoefficient: 0, IdealStockDays: 7}
}

// Consumption controls per-capita population draw (spec §4.4, §6).
type Consumption struct {
	FoodPerCapita              float64 `yaml:"food_per_capita"`
	LuxuryPerCapita            float64 `yaml:"luxury_per_capita"`
	FoodPriceElasticity        float64 `yaml:"food_price_elasticity"`
	LuxuryPriceElasticity      float64 `yaml:"luxury_price_elasticity"`
	FoodSubstitutionElasticity float64 `yaml:"food_substitution_elasticity"`
	HealthConsumptionFactor    float64 `yaml:"health_consumption_factor"`
}

// Population controls the health/size/labor model (spec §4.5, §6).
type Population struct {
	MaxGrowthRate            float64 `yaml:"max_growth_rate"`
	MaxDeclineRate           float64 `yaml:"max_decline_rate"`
	StableHealthThreshold    float64 `yaml:"stable_health_threshold"`
	OptimalHealthThreshold   float64 `yaml:"optimal_health_threshold"`
	CrisisHealthThreshold    float64 `yaml:"crisis_health_threshold"`
	PopulationDeclineThreshold float64 `yaml:"population_decline_threshold"`
	HealthPenaltyRate        float64 `yaml:"health_penalty_rate"`
	HealthRecoveryRate       float64 `yaml:"health_recovery_rate"`
	LaborMoveRate            float64 `yaml:"labor_move_rate"`
}

// Production controls the labor/tool responsiveness exponents (spec
// §4.3, §6).
type Production struct {
	LabourAlpha float64 `yaml:"labour_alpha"`
	ToolBeta    float64 `yaml:"tool_beta"`
}

// Shipping controls voyage, spoilage, and wear constants (spec §4.7).
type Shipping struct {
	SpoilageBaseRate    float64 `yaml:"spoilage_base_rate"`
	ConditionWearRate   float64 `yaml:"condition_wear_rate"`
	SinkProbabilityBase float64 `yaml:"sink_probability_base"`
	RepairTimberPerPct  float64 `yaml:"repair_timber_per_pct"`
}

// Crew controls wage/morale/desertion/efficiency dynamics (spec §4.8,
// §6).
type Crew struct {
	BaseWageRate float64 `yaml:"base_wage_rate"`

	MoraleDecayRate      float64 `yaml:"morale_decay_rate"`       // unpaid-ticks decay
	MoraleRecoveryRate   float64 `yaml:"morale_recovery_rate"`    // paid recovery
	AtSeaMoralePenalty   float64 `yaml:"at_sea_morale_penalty"`
	LowCrewMoralePenalty float64 `yaml:"low_crew_morale_penalty"` // count < half capacity
	MinCrewRatio         float64 `yaml:"min_crew_ratio"`          // minimum-operating-crew, fraction of capacity

	DesertionMoraleThreshold float64 `yaml:"desertion_morale_threshold"`
	UnpaidDesertionThreshold int     `yaml:"unpaid_desertion_threshold"`
	DesertionRate            float64 `yaml:"desertion_rate"`

	EfficiencyBonusMoraleThreshold   float64 `yaml:"efficiency_bonus_morale_threshold"`
	EfficiencyBonus                  float64 `yaml:"efficiency_bonus"`
	EfficiencyPenaltyMoraleThreshold float64 `yaml:"efficiency_penalty_morale_threshold"`
	EfficiencyPenalty                float64 `yaml:"efficiency_penalty"`
}

// Events controls the event generator's per-tick odds (spec §4.10).
type Events struct {
	StormChancePerTick     float64 `yaml:"storm_chance_per_tick"`
	BlightChancePerTick    float64 `yaml:"blight_chance_per_tick"`
	FestivalChancePerTick  float64 `yaml:"festival_chance_per_tick"`
	DiscoveryChancePerTick float64 `yaml:"discovery_chance_per_tick"`
	ShockChancePerTick     float64 `yaml:"shock_chance_per_tick"`
}

// Agents controls the agent manager and strategist fallback behavior
// (spec §4.12–§4.15, §5).
type Agents struct {
	Count                int     `yaml:"count"`
	CooldownTicks         int     `yaml:"cooldown_ticks"`
	AdvisorEnabled        bool    `yaml:"advisor_enabled"`
	AdvisorTimeoutMillis  int     `yaml:"advisor_timeout_millis"`
	StartingCash          float64 `yaml:"starting_cash"`
}

// Engine controls the tick orchestrator (spec §4.11).
type Engine struct {
	TickIntervalMillis int `yaml:"tick_interval_millis"`
	MaxTicks           uint64 `yaml:"max_ticks"` // 0 = unbounded
}

// Config is the full simulation configuration (spec §6).
type Config struct {
	WorldGen    WorldGen    `yaml:"world_gen"`
	Ecology     Ecology     `yaml:"ecology"`
	Market      Market      `yaml:"market"`
	Consumption Consumption `yaml:"consumption"`
	Population  Population  `yaml:"population"`
	Production  Production  `yaml:"production"`
	Shipping    Shipping    `yaml:"shipping"`
	Crew        Crew        `yaml:"crew"`
	Events      Events      `yaml:"events"`
	Agents      Agents      `yaml:"agents"`
	Engine      Engine      `yaml:"engine"`
}

// Default returns the baseline configuration used when no file is
// given, mirroring the teacher's DefaultGenConfig constructor idiom.
func Default() Config {
	return Config{
		WorldGen: WorldGen{Seed: 42, IslandCount: 12, MapRadius: 500},
		Ecology: Ecology{
			HealthyThreshold:   0.75,
			StressedThreshold:  0.5,
			DegradedThreshold:  0.25,
			CollapsedThreshold: 0.05,
			MigrationFraction:  0.02,
		},
		Market: Market{
			PriceEMAAlpha:     0.3,
			PriceLambda:       0.2,
			PriceBandMin:      0.25,
			PriceBandMax:      4.0,
			MinPrice:          0.05,
			MaxPrice:          10000,
			DepthRecoveryRate: 0.05,
			TaxRate:           0.05,

			MinDepth:               5,
			BaseDepthMultiplier:    0.5,
			PriceImpactCoefficient: 0.1,

			EnforcePurchasingPower: true,
			MaxSpendRatio:          0.1,
			MaxTreasuryFraction:    0.5,

			Categories: map[worldstate.GoodCategory]GoodCategoryConfig{
				worldstate.CategoryFood:     {PriceElasticity: 0.6, VelocityCoefficient: 0.8, IdealStockDays: 3},
				worldstate.CategoryMaterial: {PriceElasticity: 0.9, VelocityCoefficient: 0.3, IdealStockDays: 14},
				worldstate.CategoryTool:     {PriceElasticity: 0.8, VelocityCoefficient: 0.3, IdealStockDays: 10},
				worldstate.CategoryLuxury:   {PriceElasticity: 1.4, VelocityCoefficient: 1.0, IdealStockDays: 7},
			},
		},
		Consumption: Consumption{
			FoodPerCapita:              0.02,
			LuxuryPerCapita:            0.005,
			FoodPriceElasticity:        0.3,
			LuxuryPriceElasticity:      0.6,
			FoodSubstitutionElasticity: 1.0,
			HealthConsumptionFactor:    1.0,
		},
		Population: Population{
			MaxGrowthRate:              0.01,
			MaxDeclineRate:             0.02,
			StableHealthThreshold:      0.3,
			OptimalHealthThreshold:     0.8,
			CrisisHealthThreshold:      0.15,
			PopulationDeclineThreshold: 50,
			HealthPenaltyRate:          0.08,
			HealthRecoveryRate:         0.02,
			LaborMoveRate:              0.05,
		},
		Production: Production{
			LabourAlpha: 1.0,
			ToolBeta:    1.0,
		},
		Shipping: Shipping{
			SpoilageBaseRate:    0.01,
			ConditionWearRate:  0.002,
			SinkProbabilityBase: 0.0005,
			RepairTimberPerPct:  0.5,
		},
		Crew: Crew{
			BaseWageRate: 1.0,

			MoraleDecayRate:      0.02,
			MoraleRecoveryRate:   0.03,
			AtSeaMoralePenalty:   0.01,
			LowCrewMoralePenalty: 0.02,
			MinCrewRatio:         0.25,

			DesertionMoraleThreshold: 0.15,
			UnpaidDesertionThreshold: 24,
			DesertionRate:            0.1,

			EfficiencyBonusMoraleThreshold:   0.7,
			EfficiencyBonus:                  0.2,
			EfficiencyPenaltyMoraleThreshold: 0.4,
			EfficiencyPenalty:                0.2,
		},
		Events: Events{
			StormChancePerTick:     0.01,
			BlightChancePerTick:    0.005,
			FestivalChancePerTick:  0.004,
			DiscoveryChancePerTick: 0.002,
			ShockChancePerTick:     0.01,
		},
		Agents: Agents{
			Count:                6,
			CooldownTicks:        6,
			AdvisorEnabled:       false,
			AdvisorTimeoutMillis: 250,
			StartingCash:         500,
		},
		Engine: Engine{
			TickIntervalMillis: 0,
			MaxTicks:           0,
		},
	}
}

// SmallTestConfig returns a tiny configuration suitable for fast unit
// and property tests, mirroring the teacher's SmallTestConfig preset.
func SmallTestConfig() Config {
	c := Default()
	c.WorldGen.IslandCount = 3
	c.WorldGen.MapRadius = 100
	c.Agents.Count = 2
	return c
}

// Load reads a YAML configuration file into a Default()-seeded Config,
// so any field the file omits keeps its default value, and then runs
// Validate on the result.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants the downstream engines assume and
// refuses to silently clamp, per the fail-fast preference in SPEC_FULL
// §7 for configuration errors.
func (c Config) Validate() error {
	if c.WorldGen.IslandCount < 1 {
		return fmt.Errorf("world_gen.island_count must be >= 1")
	}
	if c.Market.PriceBandMin <= 0 || c.Market.PriceBandMax <= c.Market.PriceBandMin {
		return fmt.Errorf("market.price_band_min/max invalid")
	}
	if c.Market.MinDepth < 0 {
		return fmt.Errorf("market.min_depth must be >= 0")
	}
	if c.Agents.Count < 0 {
		return fmt.Errorf("agents.count must be >= 0")
	}
	return nil
}
