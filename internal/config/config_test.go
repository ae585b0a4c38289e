package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.DefaultDays != 7 {
		t.Errorf("DefaultDays = %d, want 7", cfg.General.DefaultDays)
	}
	if cfg.Thresholds.MonthlyCostWarnUSD != 180 {
		t.Errorf("MonthlyCostWarnUSD = %v, want 180", cfg.Thresholds.MonthlyCostWarnUSD)
	}
	if Exists() {
		t.Error("Exists() = true with no config file")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.DefaultDays = 30
	cfg.General.SessionsDir = "/srv/agents"
	cfg.Thresholds.LocalInfraMonthlyUSD = 35
	in := 5.0
	cfg.Pricing.Overrides = map[string]ModelPricingOverride{
		"claude-sonnet-4-6": {InputPerMTok: &in},
	}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.General.DefaultDays != 30 {
		t.Errorf("DefaultDays = %d, want 30", got.General.DefaultDays)
	}
	if got.General.SessionsDir != "/srv/agents" {
		t.Errorf("SessionsDir = %q, want /srv/agents", got.General.SessionsDir)
	}
	if got.Thresholds.LocalInfraMonthlyUSD != 35 {
		t.Errorf("LocalInfraMonthlyUSD = %v, want 35", got.Thresholds.LocalInfraMonthlyUSD)
	}
	ov, ok := got.Pricing.Overrides["claude-sonnet-4-6"]
	if !ok || ov.InputPerMTok == nil || *ov.InputPerMTok != 5.0 {
		t.Errorf("pricing override not round-tripped: %+v", ov)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "agentspend")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("not = [valid"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() with malformed TOML, want error")
	}
}

func TestSessionsDir_Precedence(t *testing.T) {
	t.Setenv("OPENCLAW_SESSIONS_DIR", "/env/agents")
	cfg := DefaultConfig()
	cfg.General.SessionsDir = "/cfg/agents"

	if got := SessionsDir(cfg); got != "/env/agents" {
		t.Errorf("env should win: got %q", got)
	}

	t.Setenv("OPENCLAW_SESSIONS_DIR", "")
	if got := SessionsDir(cfg); got != "/cfg/agents" {
		t.Errorf("config should win over default: got %q", got)
	}
}

func TestDataDir_XDGFallback(t *testing.T) {
	t.Setenv("OPENCLAW_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	got := DataDir(DefaultConfig())
	if got != filepath.Join("/xdg/data", "agentspend") {
		t.Errorf("DataDir = %q, want XDG path", got)
	}
}
