// Package metrics derives windowed cost views from the request ledger.
package metrics

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/model"
)

// BreakevenRequestsMonthly is the request volume at which dedicated local
// inference infrastructure pays for itself.
const BreakevenRequestsMonthly = 50_000

const dateLayout = "2006-01-02"

// Compute builds a snapshot over the given requests. Pure; the snapshot is
// always reproducible from the ledger. Empty input yields a zero snapshot
// with initialized maps. localInfraMonthly is the flat monthly cost of the
// local-inference alternative the projection compares against.
func Compute(requests []model.Request, localInfraMonthly float64) model.MetricsSnapshot {
	snap := model.MetricsSnapshot{
		ClassificationBreakdown: map[string]model.ClassificationMetrics{},
		ByAgent:                 map[string]model.AgentMetrics{},
		ByModel:                 map[string]model.ModelMetrics{},
		Projection: model.Projection{
			LocalInfraMonthlyCost:    localInfraMonthly,
			BreakevenRequestsMonthly: BreakevenRequestsMonthly,
			ROI:                      "EVALUATE",
		},
	}
	if len(requests) == 0 {
		return snap
	}

	oldest, newest := requests[0].Timestamp, requests[0].Timestamp
	var totalCost float64
	var totalIn, totalOut int64
	for _, r := range requests {
		if r.Timestamp < oldest {
			oldest = r.Timestamp
		}
		if r.Timestamp > newest {
			newest = r.Timestamp
		}
		totalCost += r.TotalCostUSD
		totalIn += r.InputTokens
		totalOut += r.OutputTokens
	}

	n := len(requests)
	snap.Period = time.UnixMilli(oldest).Format(dateLayout) + " → " + time.UnixMilli(newest).Format(dateLayout)
	snap.Summary = model.Summary{
		TotalRequests:     n,
		TotalCost:         config.Round6(totalCost),
		AvgCostPerRequest: config.Round6(totalCost / float64(n)),
		AvgInputTokens:    int64(math.Round(float64(totalIn) / float64(n))),
		AvgOutputTokens:   int64(math.Round(float64(totalOut) / float64(n))),
	}

	// UNKNOWN never carries usage data, so it stays out of the breakdown.
	byClass := lo.GroupBy(requests, func(r model.Request) model.Classification {
		return r.Classification
	})
	for _, cls := range []model.Classification{model.LocalViable, model.NeedsClaude, model.EdgeCase} {
		rows := byClass[cls]
		if len(rows) == 0 {
			continue
		}
		cost := lo.SumBy(rows, func(r model.Request) float64 { return r.TotalCostUSD })
		cm := model.ClassificationMetrics{
			Count:      len(rows),
			Percentage: pct(len(rows), n),
			TotalCost:  config.Round6(cost),
		}
		if cls == model.LocalViable {
			cm.PotentialSavings = config.Round6(cost)
		}
		snap.ClassificationBreakdown[string(cls)] = cm
	}

	for agent, rows := range lo.GroupBy(requests, func(r model.Request) string { return r.AgentName }) {
		local := lo.CountBy(rows, func(r model.Request) bool { return r.Classification == model.LocalViable })
		snap.ByAgent[agent] = model.AgentMetrics{
			Count:           len(rows),
			Cost:            config.Round6(lo.SumBy(rows, func(r model.Request) float64 { return r.TotalCostUSD })),
			LocalViable:     local,
			PercentageLocal: pct(local, len(rows)),
		}
	}

	for mdl, rows := range lo.GroupBy(requests, func(r model.Request) string { return r.ModelUsed }) {
		snap.ByModel[mdl] = model.ModelMetrics{
			Count:      len(rows),
			Cost:       config.Round6(lo.SumBy(rows, func(r model.Request) float64 { return r.TotalCostUSD })),
			Percentage: pct(len(rows), n),
		}
	}

	snap.Projection = project(totalCost, snap.ClassificationBreakdown, oldest, newest, localInfraMonthly)
	return snap
}

// project extrapolates observed cost linearly to a 30-day month. Windows
// shorter than a day are treated as a full day so a fresh install does not
// produce absurd monthly estimates.
func project(totalCost float64, breakdown map[string]model.ClassificationMetrics, oldest, newest int64, localInfraMonthly float64) model.Projection {
	spanDays := float64(newest-oldest) / float64(24*time.Hour/time.Millisecond)
	if spanDays < 1 {
		spanDays = 1
	}
	factor := 30 / spanDays

	monthly := totalCost * factor
	var savings float64
	if lv, ok := breakdown[string(model.LocalViable)]; ok {
		savings = lv.TotalCost * factor
	}

	roi := "EVALUATE"
	if savings > localInfraMonthly {
		roi = "POSITIVE"
	}

	return model.Projection{
		LocalInfraMonthlyCost:    localInfraMonthly,
		CurrentMonthlyEstimate:   config.Round6(monthly),
		PotentialSavingsMonthly:  config.Round6(savings),
		BreakevenRequestsMonthly: BreakevenRequestsMonthly,
		ROI:                      roi,
	}
}

func pct(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
