package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete codemap configuration.
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Weights WeightsConfig `json:"weights" mapstructure:"weights"`
	Budget  BudgetConfig  `json:"budget" mapstructure:"budget"`
	Build   BuildConfig   `json:"build" mapstructure:"build"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig controls repository scanning.
type ScanConfig struct {
	Include          []string `json:"include" mapstructure:"include"`
	Exclude          []string `json:"exclude" mapstructure:"exclude"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	MaxFiles         int      `json:"maxFiles" mapstructure:"maxFiles"`
	UseGitignore     bool     `json:"useGitignore" mapstructure:"useGitignore"`
}

// WeightsConfig holds the tunable importance-scoring weights.
// Scoring policy is configuration, not constants scattered in the scorer.
type WeightsConfig struct {
	CallFanIn    float64 `json:"callFanIn" mapstructure:"callFanIn"`
	ModuleFanIn  float64 `json:"moduleFanIn" mapstructure:"moduleFanIn"`
	EntryPoint   float64 `json:"entryPoint" mapstructure:"entryPoint"`
	DepthPenalty float64 `json:"depthPenalty" mapstructure:"depthPenalty"`
	DocBonus     float64 `json:"docBonus" mapstructure:"docBonus"`
	NameHint     float64 `json:"nameHint" mapstructure:"nameHint"`
}

// BudgetConfig contains token-budget defaults for compression.
type BudgetConfig struct {
	OverviewTokens  int `json:"overviewTokens" mapstructure:"overviewTokens"`
	ExpansionTokens int `json:"expansionTokens" mapstructure:"expansionTokens"`
	MaxSearchHits   int `json:"maxSearchHits" mapstructure:"maxSearchHits"`
}

// BuildConfig bounds worst-case build cost.
type BuildConfig struct {
	Workers          int `json:"workers" mapstructure:"workers"`
	WallClockSeconds int `json:"wallClockSeconds" mapstructure:"wallClockSeconds"`
}

// CacheConfig contains snapshot cache configuration.
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Scan: ScanConfig{
			Include:          []string{},
			Exclude:          []string{"vendor/**", "node_modules/**", "**/testdata/**"},
			MaxFileSizeBytes: 1_000_000,
			MaxFiles:         5000,
			UseGitignore:     true,
		},
		Weights: WeightsConfig{
			CallFanIn:    0.35,
			ModuleFanIn:  0.20,
			EntryPoint:   0.20,
			DepthPenalty: 0.10,
			DocBonus:     0.10,
			NameHint:     0.05,
		},
		Budget: BudgetConfig{
			OverviewTokens:  4000,
			ExpansionTokens: 2000,
			MaxSearchHits:   50,
		},
		Build: BuildConfig{
			Workers:          4,
			WallClockSeconds: 120,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    ".codemap/cache.db",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .codemap/config.json under repoRoot,
// falling back to defaults when no file exists.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".codemap"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .codemap/config.json.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".codemap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Scan.MaxFiles <= 0 {
		return &ConfigError{Field: "scan.maxFiles", Message: "must be positive"}
	}
	if c.Build.Workers <= 0 {
		return &ConfigError{Field: "build.workers", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
