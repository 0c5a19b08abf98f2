package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the backtester.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Logging  Logging  `yaml:"logging"`
	Annotate Annotate `yaml:"annotate"`
	Backtest Backtest `yaml:"backtest"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir      string `yaml:"data_dir"`
	SQLitePath   string `yaml:"sqlite_path"`
	MetadataPath string `yaml:"metadata_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Annotate controls the indicator derivation fan-out.
type Annotate struct {
	MaxWorkers int `yaml:"max_workers"`
}

// Backtest defines the simulation parameters. An InitialAmount of zero
// selects unconstrained mode: every qualifying buy candidate is bought and
// MinVolume filters out illiquid names.
type Backtest struct {
	StartDate          string   `yaml:"start_date"`
	InitialAmount      int64    `yaml:"initial_amount"`
	InvestmentPerTrade int64    `yaml:"investment_per_trade"`
	BuyRule            string   `yaml:"buy_rule"`
	SellRule           string   `yaml:"sell_rule"`
	Groups             []string `yaml:"groups"`
	MinVolume          int64    `yaml:"min_volume"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks fields whose bad values would only surface mid-run.
func (c *Config) Validate() error {
	if c.Backtest.StartDate != "" {
		if _, err := time.Parse("2006-01-02", c.Backtest.StartDate); err != nil {
			return fmt.Errorf("backtest.start_date %q: %w", c.Backtest.StartDate, err)
		}
	}
	if c.Backtest.InvestmentPerTrade < 0 {
		return fmt.Errorf("backtest.investment_per_trade must not be negative")
	}
	if c.Backtest.InitialAmount < 0 {
		return fmt.Errorf("backtest.initial_amount must not be negative")
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("METADATA_PATH"); v != "" {
		cfg.Storage.MetadataPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// applyDefaults fills zero fields that have a sensible default.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Backtest.InvestmentPerTrade == 0 {
		cfg.Backtest.InvestmentPerTrade = 500000
	}
	if cfg.Backtest.MinVolume == 0 {
		cfg.Backtest.MinVolume = 1000
	}
	if cfg.Backtest.BuyRule == "" {
		cfg.Backtest.BuyRule = "high-and-high"
	}
	if cfg.Backtest.SellRule == "" {
		cfg.Backtest.SellRule = "low-and-low"
	}
}
