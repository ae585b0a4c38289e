// Package config loads agentspend configuration and the model pricing table.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all agentspend configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Pricing    PricingOverrides `toml:"pricing"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultDays int    `toml:"default_days"`
	SessionsDir string `toml:"sessions_dir,omitempty"`
	DataDir     string `toml:"data_dir,omitempty"`
}

// ThresholdsConfig holds the tunables behind projections and report
// recommendations.
type ThresholdsConfig struct {
	LocalInfraMonthlyUSD  float64 `toml:"local_infra_monthly_usd"`
	MonthlyCostWarnUSD    float64 `toml:"monthly_cost_warn_usd"`
	AgentConcentrationPct float64 `toml:"agent_concentration_pct"`
	EdgeCaseReviewCount   int     `toml:"edge_case_review_count"`
}

// PricingOverrides allows user-defined pricing for specific models.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides.
type ModelPricingOverride struct {
	InputPerMTok  *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok *float64 `toml:"output_per_mtok,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays: 7,
		},
		Thresholds: ThresholdsConfig{
			LocalInfraMonthlyUSD:  20,
			MonthlyCostWarnUSD:    180,
			AgentConcentrationPct: 40,
			EdgeCaseReviewCount:   20,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentspend")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "agentspend")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// SessionsDir resolves the agent sessions directory from env, config, or
// the conventional default, in that order.
func SessionsDir(cfg Config) string {
	if dir := os.Getenv("OPENCLAW_SESSIONS_DIR"); dir != "" {
		return dir
	}
	if cfg.General.SessionsDir != "" {
		return cfg.General.SessionsDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".openclaw", "agents")
}

// DataDir resolves where the ledger, metrics, and reports are persisted.
func DataDir(cfg Config) string {
	if dir := os.Getenv("OPENCLAW_DATA_DIR"); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentspend")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "agentspend")
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
