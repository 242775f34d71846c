package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	sum := cfg.Weights.CallFanIn + cfg.Weights.ModuleFanIn + cfg.Weights.EntryPoint +
		cfg.Weights.DepthPenalty + cfg.Weights.DocBonus + cfg.Weights.NameHint
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("default weights should sum to 1.0, got %f", sum)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("missing config should fall back to defaults: %v", err)
	}
	if cfg.Budget.OverviewTokens != 4000 {
		t.Errorf("expected default overview budget, got %d", cfg.Budget.OverviewTokens)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Budget.OverviewTokens = 1234
	cfg.Scan.MaxFiles = 99
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".codemap", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Budget.OverviewTokens != 1234 {
		t.Errorf("expected 1234, got %d", loaded.Budget.OverviewTokens)
	}
	if loaded.Scan.MaxFiles != 99 {
		t.Errorf("expected 99, got %d", loaded.Scan.MaxFiles)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.MaxFiles = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero maxFiles should fail validation")
	}

	cfg = DefaultConfig()
	cfg.Build.Workers = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative workers should fail validation")
	}
}
