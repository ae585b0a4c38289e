package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default days:  %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Sessions dir:  %s\n", config.SessionsDir(cfg))
	fmt.Printf("    Data dir:      %s\n", config.DataDir(cfg))
	fmt.Println()

	fmt.Println("  [Thresholds]")
	fmt.Printf("    Local infra cost:    $%.2f/month\n", cfg.Thresholds.LocalInfraMonthlyUSD)
	fmt.Printf("    Monthly cost warn:   $%.2f\n", cfg.Thresholds.MonthlyCostWarnUSD)
	fmt.Printf("    Agent concentration: %.0f%%\n", cfg.Thresholds.AgentConcentrationPct)
	fmt.Printf("    Edge-case review:    %d requests\n", cfg.Thresholds.EdgeCaseReviewCount)
	fmt.Println()

	if len(cfg.Pricing.Overrides) > 0 {
		fmt.Println("  [Pricing overrides]")
		for name, ov := range cfg.Pricing.Overrides {
			in, out := "-", "-"
			if ov.InputPerMTok != nil {
				in = fmt.Sprintf("$%.2f", *ov.InputPerMTok)
			}
			if ov.OutputPerMTok != nil {
				out = fmt.Sprintf("$%.2f", *ov.OutputPerMTok)
			}
			fmt.Printf("    %s: in %s/MTok, out %s/MTok\n", name, in, out)
		}
		fmt.Println()
	}

	fmt.Println("  Run `agentspend setup` to reconfigure.")
	return nil
}
