package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestSmallTestConfigValidates(t *testing.T) {
	c := SmallTestConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("small test config should validate, got %v", err)
	}
	if c.WorldGen.IslandCount != 3 {
		t.Fatalf("expected 3 islands, got %d", c.WorldGen.IslandCount)
	}
}

func TestValidateRejectsBadIslandCount(t *testing.T) {
	c := Default()
	c.WorldGen.IslandCount = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for zero island count")
	}
}

func TestValidateRejectsBadPriceBand(t *testing.T) {
	c := Default()
	c.Market.PriceBandMin = 2
	c.Market.PriceBandMax = 1
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for inverted price band")
	}
}

func TestLoadOverridesDefaultsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worldsim.yaml")
	contents := "world_gen:\n  seed: 7\n  island_count: 5\nagents:\n  count: 9\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorldGen.Seed != 7 || cfg.WorldGen.IslandCount != 5 {
		t.Fatalf("expected overridden world_gen fields, got %+v", cfg.WorldGen)
	}
	if cfg.Agents.Count != 9 {
		t.Fatalf("expected overridden agents.count, got %d", cfg.Agents.Count)
	}
	// Fields the file omits keep Default()'s values.
	if cfg.Market.TaxRate != Default().Market.TaxRate {
		t.Fatalf("expected untouched market.tax_rate to keep default, got %v", cfg.Market.TaxRate)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worldsim.yaml")
	if err := os.WriteFile(path, []byte("world_gen:\n  island_count: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error from Load")
	}
}
