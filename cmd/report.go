package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate periodic cost reports",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Generate the daily report",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runReport(report.DailyPeriod(time.Now()))
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generate the weekly report",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runReport(report.WeeklyPeriod(time.Now()))
	},
}

func init() {
	reportCmd.AddCommand(reportDailyCmd)
	reportCmd.AddCommand(reportWeeklyCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReport(period report.Period) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	result, err := rc.ingest()
	if err != nil {
		return err
	}

	now := time.Now()
	windowed := metrics.Filter{Days: period.Days}.Apply(result.Retained, now)
	snap := metrics.Compute(windowed, rc.cfg.Thresholds.LocalInfraMonthlyUSD)
	rep := report.Build(snap, windowed, period, rc.cfg.Thresholds, now)

	writer := report.NewWriter(rc.dataDir)
	if err := writer.Write(rep); err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(report.RenderText(rep))
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\n  Report written to %s\n", writer.Dir())
	}

	warnLoadErrors(result.Load)
	return nil
}
