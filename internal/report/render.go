package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rmirandamx/agentspend/internal/cli"
	"github.com/rmirandamx/agentspend/internal/model"
)

// RenderText renders a report as plain terminal text. The same rendering is
// persisted as the .txt artifact, so it avoids color escapes.
func RenderText(r model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.Metadata.PeriodLabel)
	fmt.Fprintf(&b, "Period: %s    Generated: %s\n\n", r.Metadata.Period, r.Metadata.GeneratedAt)

	fmt.Fprintf(&b, "SUMMARY\n")
	fmt.Fprintf(&b, "  Requests:     %s\n", cli.FormatNumber(int64(r.Summary.TotalRequests)))
	fmt.Fprintf(&b, "  Total cost:   %s\n", cli.FormatCost(r.Summary.TotalCost))
	fmt.Fprintf(&b, "  Avg cost:     $%.6f/request\n", r.Summary.AvgCostPerRequest)
	fmt.Fprintf(&b, "  Avg tokens:   %s in / %s out\n\n",
		cli.FormatTokens(r.Summary.AvgInputTokens), cli.FormatTokens(r.Summary.AvgOutputTokens))

	if len(r.Classifications) > 0 {
		fmt.Fprintf(&b, "CLASSIFICATION\n")
		for _, cls := range []string{string(model.LocalViable), string(model.NeedsClaude), string(model.EdgeCase)} {
			row, ok := r.Classifications[cls]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %-13s %4d (%3d%%)  %s\n", cls, row.Count, row.Percentage, cli.FormatCost(row.TotalCost))
		}
		b.WriteString("\n")
	}

	if len(r.TopAgents) > 0 {
		fmt.Fprintf(&b, "TOP AGENTS\n")
		for _, a := range r.TopAgents {
			fmt.Fprintf(&b, "  %-20s %5d req  %s  (%d%% local-viable)\n",
				a.Agent, a.Count, cli.FormatCost(a.Cost), a.PercentageLocal)
		}
		b.WriteString("\n")
	}

	if len(r.TopModels) > 0 {
		fmt.Fprintf(&b, "MODELS\n")
		for _, m := range r.TopModels {
			fmt.Fprintf(&b, "  %-28s %5d req  %s  (%d%%)\n", m.Model, m.Count, cli.FormatCost(m.Cost), m.Percentage)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "PROJECTION\n")
	fmt.Fprintf(&b, "  Monthly estimate:  %s\n", cli.FormatCost(r.Projection.CurrentMonthlyEstimate))
	fmt.Fprintf(&b, "  Potential savings: %s/month\n", cli.FormatCost(r.Projection.PotentialSavingsMonthly))
	fmt.Fprintf(&b, "  Local infra cost:  %s/month\n", cli.FormatCost(r.Projection.LocalInfraMonthlyCost))
	fmt.Fprintf(&b, "  ROI:               %s\n\n", r.Projection.ROI)

	if len(r.RequestsByHour) > 0 {
		fmt.Fprintf(&b, "REQUESTS BY HOUR (UTC)\n")
		hours := make([]string, 0, len(r.RequestsByHour))
		for h := range r.RequestsByHour {
			hours = append(hours, h)
		}
		sort.Strings(hours)
		values := make([]float64, 0, len(hours))
		for _, h := range hours {
			values = append(values, float64(r.RequestsByHour[h].Count))
		}
		fmt.Fprintf(&b, "  %s\n", cli.RenderSparkline(values))
		for _, h := range hours {
			bucket := r.RequestsByHour[h]
			fmt.Fprintf(&b, "  %s  %4d req  %s\n", h, bucket.Count, cli.FormatCost(bucket.Cost))
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "RECOMMENDATIONS\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  [%s] %s\n", rec.Priority, rec.Title)
			fmt.Fprintf(&b, "    %s\n", rec.Description)
			fmt.Fprintf(&b, "    Action: %s\n", rec.Action)
			fmt.Fprintf(&b, "    Impact: %s\n", rec.EstimatedImpact)
		}
	} else {
		fmt.Fprintf(&b, "RECOMMENDATIONS\n  None. Spend profile looks healthy.\n")
	}

	return b.String()
}
