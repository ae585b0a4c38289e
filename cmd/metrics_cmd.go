package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/cli"
	"github.com/rmirandamx/agentspend/internal/metrics"
)

var flagMetricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute the metrics snapshot and persist a copy",
	RunE:  runMetrics,
}

func init() {
	metricsCmd.Flags().BoolVar(&flagMetricsJSON, "json", false, "Print the snapshot as JSON")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(_ *cobra.Command, _ []string) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	result, err := rc.ingest()
	if err != nil {
		return err
	}

	snap := metrics.Compute(rc.windowed(result.Retained), rc.cfg.Thresholds.LocalInfraMonthlyUSD)

	if err := metrics.WriteSnapshot(rc.dataDir, snap); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Metrics snapshot written to %s\n", rc.dataDir)
	}

	if flagMetricsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Metrics  " + snap.Period,
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Requests", cli.FormatNumber(int64(snap.Summary.TotalRequests))},
			{"Total cost", cli.FormatCost(snap.Summary.TotalCost)},
			{"Monthly estimate", cli.FormatCost(snap.Projection.CurrentMonthlyEstimate)},
			{"Potential savings", cli.FormatCost(snap.Projection.PotentialSavingsMonthly) + "/month"},
			{"ROI", snap.Projection.ROI},
		},
	}))
	return nil
}
