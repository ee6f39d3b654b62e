package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// StateDirName is the project-local hidden directory holding the persisted
// graph, history snapshots and the git query cache.
const StateDirName = ".reposcope"

// Config holds all tunable settings. Every heuristic threshold used by the
// analyzers lives here under a named key so it is independently testable.
type Config struct {
	History   HistoryConfig   `yaml:"history"`
	Git       GitConfig       `yaml:"git"`
	Coupling  CouplingConfig  `yaml:"coupling"`
	BusFactor BusFactorConfig `yaml:"busfactor"`
	Cost      CostConfig      `yaml:"cost"`
	Trends    TrendsConfig    `yaml:"trends"`
}

// HistoryConfig controls snapshot retention.
type HistoryConfig struct {
	MaxSnapshots int `yaml:"max_snapshots"`
}

// GitConfig bounds history mining.
type GitConfig struct {
	MaxCommits  int `yaml:"max_commits"`  // cap on commits parsed per invocation
	WindowDays  int `yaml:"window_days"`  // how far back git log reaches
	Concurrency int `yaml:"concurrency"`  // parallel per-file git queries
}

// CouplingConfig controls change-coupling discovery.
type CouplingConfig struct {
	MinStrength         float64 `yaml:"min_strength"`         // pairs below this are dropped
	HiddenThreshold     float64 `yaml:"hidden_threshold"`     // no-edge pairs at or above are "hidden"
	SuspiciousThreshold float64 `yaml:"suspicious_threshold"` // edge pairs below are "suspicious"
}

// BusFactorConfig controls knowledge-distribution analysis.
type BusFactorConfig struct {
	SignificantShare float64 `yaml:"significant_share"` // contributor share counted toward bus factor
	SoleOwnerShare   float64 `yaml:"sole_owner_share"`  // single-owner share that means critical
	StaleDays        int     `yaml:"stale_days"`        // staleness penalty kicks in past this
}

// CostConfig controls debt cost estimation.
type CostConfig struct {
	HourlyRate   float64 `yaml:"hourly_rate"`
	QuickWinMax  float64 `yaml:"quick_win_max_hours"`
	QuickWinMin  float64 `yaml:"quick_win_min_cost"`
}

// TrendsConfig controls trend classification.
type TrendsConfig struct {
	StableBand float64 `yaml:"stable_band"` // |health delta| within band is "stable"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{MaxSnapshots: 50},
		Git: GitConfig{
			MaxCommits:  500,
			WindowDays:  90,
			Concurrency: 8,
		},
		Coupling: CouplingConfig{
			MinStrength:         0.3,
			HiddenThreshold:     0.7,
			SuspiciousThreshold: 0.2,
		},
		BusFactor: BusFactorConfig{
			SignificantShare: 0.2,
			SoleOwnerShare:   0.8,
			StaleDays:        180,
		},
		Cost: CostConfig{
			HourlyRate:  100,
			QuickWinMax: 8,
			QuickWinMin: 200,
		},
		Trends: TrendsConfig{StableBand: 2},
	}
}

// Load reads configuration from the given file (or the default location
// under the state directory), layered under environment overrides with the
// REPOSCOPE_ prefix. A missing config file is not an error; defaults apply.
func Load(cfgFile string) (*Config, error) {
	// .env is optional, used for local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REPOSCOPE")
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(StateDirName)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg.History.MaxSnapshots = v.GetInt("history.max_snapshots")
	cfg.Git.MaxCommits = v.GetInt("git.max_commits")
	cfg.Git.WindowDays = v.GetInt("git.window_days")
	cfg.Git.Concurrency = v.GetInt("git.concurrency")
	cfg.Coupling.MinStrength = v.GetFloat64("coupling.min_strength")
	cfg.Coupling.HiddenThreshold = v.GetFloat64("coupling.hidden_threshold")
	cfg.Coupling.SuspiciousThreshold = v.GetFloat64("coupling.suspicious_threshold")
	cfg.BusFactor.SignificantShare = v.GetFloat64("busfactor.significant_share")
	cfg.BusFactor.SoleOwnerShare = v.GetFloat64("busfactor.sole_owner_share")
	cfg.BusFactor.StaleDays = v.GetInt("busfactor.stale_days")
	cfg.Cost.HourlyRate = v.GetFloat64("cost.hourly_rate")
	cfg.Cost.QuickWinMax = v.GetFloat64("cost.quick_win_max_hours")
	cfg.Cost.QuickWinMin = v.GetFloat64("cost.quick_win_min_cost")
	cfg.Trends.StableBand = v.GetFloat64("trends.stable_band")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("history.max_snapshots", cfg.History.MaxSnapshots)
	v.SetDefault("git.max_commits", cfg.Git.MaxCommits)
	v.SetDefault("git.window_days", cfg.Git.WindowDays)
	v.SetDefault("git.concurrency", cfg.Git.Concurrency)
	v.SetDefault("coupling.min_strength", cfg.Coupling.MinStrength)
	v.SetDefault("coupling.hidden_threshold", cfg.Coupling.HiddenThreshold)
	v.SetDefault("coupling.suspicious_threshold", cfg.Coupling.SuspiciousThreshold)
	v.SetDefault("busfactor.significant_share", cfg.BusFactor.SignificantShare)
	v.SetDefault("busfactor.sole_owner_share", cfg.BusFactor.SoleOwnerShare)
	v.SetDefault("busfactor.stale_days", cfg.BusFactor.StaleDays)
	v.SetDefault("cost.hourly_rate", cfg.Cost.HourlyRate)
	v.SetDefault("cost.quick_win_max_hours", cfg.Cost.QuickWinMax)
	v.SetDefault("cost.quick_win_min_cost", cfg.Cost.QuickWinMin)
	v.SetDefault("trends.stable_band", cfg.Trends.StableBand)
}

// Validate rejects settings the analyzers cannot work with.
func (c *Config) Validate() error {
	if c.History.MaxSnapshots < 1 {
		return fmt.Errorf("history.max_snapshots must be >= 1, got %d", c.History.MaxSnapshots)
	}
	if c.Git.Concurrency < 1 {
		return fmt.Errorf("git.concurrency must be >= 1, got %d", c.Git.Concurrency)
	}
	if c.Coupling.MinStrength < 0 || c.Coupling.MinStrength > 1 {
		return fmt.Errorf("coupling.min_strength must be in [0,1], got %f", c.Coupling.MinStrength)
	}
	if c.BusFactor.SignificantShare <= 0 || c.BusFactor.SignificantShare > 1 {
		return fmt.Errorf("busfactor.significant_share must be in (0,1], got %f", c.BusFactor.SignificantShare)
	}
	if c.Cost.HourlyRate <= 0 {
		return fmt.Errorf("cost.hourly_rate must be positive, got %f", c.Cost.HourlyRate)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML under the state
// directory so users have a file to edit.
func WriteDefault(rootDir string) (string, error) {
	dir := filepath.Join(rootDir, StateDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
