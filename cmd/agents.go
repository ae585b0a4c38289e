package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/cli"
	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/source"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Show fleet liveness and per-agent spend",
	RunE:  runAgents,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

func runAgents(_ *cobra.Command, _ []string) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	now := time.Now()
	fleet, err := source.FleetStatus(rc.sessionsDir, now)
	if err != nil {
		return fmt.Errorf("scanning agents: %w", err)
	}
	if len(fleet) == 0 {
		fmt.Printf("\n  No agents found under %s\n", rc.sessionsDir)
		return nil
	}

	result, err := rc.ingest()
	if err != nil {
		return err
	}
	snap := metrics.Compute(rc.windowed(result.Retained), rc.cfg.Thresholds.LocalInfraMonthlyUSD)

	rows := make([][]string, 0, len(fleet))
	for _, a := range fleet {
		last := "never"
		if a.LastActive != nil {
			age := int64(now.Sub(*a.LastActive).Seconds())
			last = cli.FormatDuration(age) + " ago"
		}

		count, cost, localPct := 0, 0.0, 0
		if m, ok := snap.ByAgent[a.Agent]; ok {
			count, cost, localPct = m.Count, m.Cost, m.PercentageLocal
		}

		rows = append(rows, []string{
			a.Agent,
			a.Status,
			last,
			cli.FormatNumber(int64(count)),
			cli.FormatCost(cost),
			fmt.Sprintf("%d%%", localPct),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Agents  last %dd", rc.days),
		Headers: []string{"Agent", "Status", "Last active", "Requests", "Cost", "Local-viable"},
		Rows:    rows,
	}))
	return nil
}
