package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/cli"
	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Cost summary with classification breakdown and projection",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	result, err := rc.ingest()
	if err != nil {
		return err
	}

	if len(result.Retained) == 0 {
		fmt.Println("\n  No agent requests found.")
		fmt.Println("  Point --sessions-dir at your agent logs, or run `agentspend setup`.")
		return nil
	}

	windowed := rc.windowed(result.Retained)
	if len(windowed) == 0 {
		fmt.Println("\n  No requests in the selected window.")
		return nil
	}

	snap := metrics.Compute(windowed, rc.cfg.Thresholds.LocalInfraMonthlyUSD)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("AGENT API SPEND  Last %dd", rc.days)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Requests", cli.FormatNumber(int64(snap.Summary.TotalRequests))},
			{"Period", snap.Period},
			{"---"},
			{"Total cost", cli.FormatCost(snap.Summary.TotalCost)},
			{"Avg cost/request", fmt.Sprintf("$%.6f", snap.Summary.AvgCostPerRequest)},
			{"Avg input tokens", cli.FormatTokens(snap.Summary.AvgInputTokens)},
			{"Avg output tokens", cli.FormatTokens(snap.Summary.AvgOutputTokens)},
		},
	}))
	fmt.Println()

	clsRows := make([][]string, 0, 3)
	for _, cls := range []string{string(model.LocalViable), string(model.NeedsClaude), string(model.EdgeCase)} {
		row, ok := snap.ClassificationBreakdown[cls]
		if !ok {
			continue
		}
		clsRows = append(clsRows, []string{
			cls,
			cli.FormatNumber(int64(row.Count)),
			fmt.Sprintf("%d%%", row.Percentage),
			cli.FormatCost(row.TotalCost),
		})
	}
	if len(clsRows) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Classification",
			Headers: []string{"Class", "Count", "Share", "Cost"},
			Rows:    clsRows,
		}))
		fmt.Println()
	}

	p := snap.Projection
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Projection",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Monthly estimate", cli.FormatCost(p.CurrentMonthlyEstimate)},
			{"Potential savings", cli.FormatCost(p.PotentialSavingsMonthly) + "/month"},
			{"Local infra cost", cli.FormatCost(p.LocalInfraMonthlyCost) + "/month"},
			{"Breakeven volume", cli.FormatNumber(int64(p.BreakevenRequestsMonthly)) + " req/month"},
			{"ROI", p.ROI},
		},
	}))

	warnLoadErrors(result.Load)
	return nil
}
