package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/source"
)

// RunSetup walks the first-run wizard and persists the resulting config.
func RunSetup() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	sessionsDir := config.SessionsDir(cfg)
	dataDir := config.DataDir(cfg)
	days := strconv.Itoa(cfg.General.DefaultDays)
	infra := strconv.FormatFloat(cfg.Thresholds.LocalInfraMonthlyUSD, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Agent sessions directory").
				Description("Root of the per-agent session logs.").
				Value(&sessionsDir),
			huh.NewInput().
				Title("Data directory").
				Description("Where the ledger, metrics, and reports are stored.").
				Value(&dataDir),
			huh.NewSelect[string]().
				Title("Default window").
				Options(
					huh.NewOption("7 days", "7"),
					huh.NewOption("30 days", "30"),
					huh.NewOption("90 days", "90"),
				).
				Value(&days),
			huh.NewInput().
				Title("Local inference cost (USD/month)").
				Description("Flat monthly cost the savings projection compares against.").
				Validate(func(s string) error {
					if _, err := strconv.ParseFloat(s, 64); err != nil {
						return fmt.Errorf("enter a number")
					}
					return nil
				}).
				Value(&infra),
		),
	)

	if err := form.Run(); err != nil {
		return cfg, err
	}

	cfg.General.SessionsDir = sessionsDir
	cfg.General.DataDir = dataDir
	if n, err := strconv.Atoi(days); err == nil && n > 0 {
		cfg.General.DefaultDays = n
	}
	if v, err := strconv.ParseFloat(infra, 64); err == nil && v >= 0 {
		cfg.Thresholds.LocalInfraMonthlyUSD = v
	}

	if err := config.Save(cfg); err != nil {
		return cfg, fmt.Errorf("saving config: %w", err)
	}

	if agents, err := source.ListAgents(sessionsDir); err == nil {
		fmt.Printf("Config written to %s (%d agents found)\n", config.ConfigPath(), len(agents))
	} else {
		fmt.Printf("Config written to %s\n", config.ConfigPath())
	}
	return cfg, nil
}
