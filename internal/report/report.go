// Package report builds periodic cost rollups with recommendations.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/model"
)

const maxTopAgents = 10

// Period identifies a report window.
type Period struct {
	ID    string
	Label string
	Days  int
}

// DailyPeriod returns the period for the calendar day containing now.
func DailyPeriod(now time.Time) Period {
	id := now.Format("2006-01-02")
	return Period{ID: id, Label: "Daily report " + id, Days: 1}
}

// WeeklyPeriod returns the period for the ISO week containing now,
// identified by the date of its Monday.
func WeeklyPeriod(now time.Time) Period {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	monday := now.AddDate(0, 0, -(weekday - 1))
	id := monday.Format("2006-01-02")
	return Period{ID: "week-" + id, Label: "Weekly report, week of " + id, Days: 7}
}

// Build assembles a report from a computed snapshot and the window's
// requests. Recommendation rules are independent; every applicable one
// fires, so a report can carry zero to four of them.
func Build(snap model.MetricsSnapshot, requests []model.Request, period Period, th config.ThresholdsConfig, now time.Time) model.Report {
	r := model.Report{
		Metadata: model.ReportMetadata{
			GeneratedAt: now.UTC().Format(time.RFC3339),
			PeriodID:    period.ID,
			PeriodLabel: period.Label,
			Period:      snap.Period,
		},
		Summary:         snap.Summary,
		Classifications: snap.ClassificationBreakdown,
		TopAgents:       topAgents(snap.ByAgent),
		TopModels:       allModels(snap.ByModel),
		Projection:      snap.Projection,
		RequestsByHour:  hourHistogram(requests),
	}
	r.Recommendations = recommend(r, th)
	return r
}

func topAgents(byAgent map[string]model.AgentMetrics) []model.AgentReportRow {
	rows := make([]model.AgentReportRow, 0, len(byAgent))
	for agent, m := range byAgent {
		rows = append(rows, model.AgentReportRow{Agent: agent, AgentMetrics: m})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cost != rows[j].Cost {
			return rows[i].Cost > rows[j].Cost
		}
		return rows[i].Agent < rows[j].Agent
	})
	if len(rows) > maxTopAgents {
		rows = rows[:maxTopAgents]
	}
	return rows
}

func allModels(byModel map[string]model.ModelMetrics) []model.ModelReportRow {
	rows := make([]model.ModelReportRow, 0, len(byModel))
	for mdl, m := range byModel {
		rows = append(rows, model.ModelReportRow{Model: mdl, ModelMetrics: m})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cost != rows[j].Cost {
			return rows[i].Cost > rows[j].Cost
		}
		return rows[i].Model < rows[j].Model
	})
	return rows
}

func hourHistogram(requests []model.Request) map[string]model.HourBucket {
	buckets := make(map[string]model.HourBucket)
	for _, r := range requests {
		key := fmt.Sprintf("%02d:00", r.Time().UTC().Hour())
		b := buckets[key]
		b.Count++
		b.Cost = config.Round6(b.Cost + r.TotalCostUSD)
		if b.Classifications == nil {
			b.Classifications = make(map[string]int)
		}
		b.Classifications[string(r.Classification)]++
		buckets[key] = b
	}
	return buckets
}

func recommend(r model.Report, th config.ThresholdsConfig) []model.Recommendation {
	var recs []model.Recommendation

	if lv, ok := r.Classifications[string(model.LocalViable)]; ok && lv.Percentage >= 50 {
		annual := r.Projection.PotentialSavingsMonthly * 12
		recs = append(recs, model.Recommendation{
			Priority:        model.PriorityHigh,
			Type:            "optimization",
			Title:           "Route local-viable work to local inference",
			Description:     fmt.Sprintf("%d%% of requests (%d) were classified LOCAL_VIABLE.", lv.Percentage, lv.Count),
			Action:          "Point simple transcription, extraction, and formatting tasks at a local model.",
			EstimatedImpact: fmt.Sprintf("~$%.2f/year at current volume", annual),
		})
	}

	if ec, ok := r.Classifications[string(model.EdgeCase)]; ok && ec.Count > th.EdgeCaseReviewCount {
		recs = append(recs, model.Recommendation{
			Priority:        model.PriorityMedium,
			Type:            "review",
			Title:           "Review edge-case requests",
			Description:     fmt.Sprintf("%d requests fell into the ambiguous EDGE_CASE band.", ec.Count),
			Action:          "Sample the edge cases and tighten routing rules for the recurring shapes.",
			EstimatedImpact: fmt.Sprintf("up to $%.2f in the window", ec.TotalCost),
		})
	}

	if r.Projection.CurrentMonthlyEstimate > th.MonthlyCostWarnUSD {
		recs = append(recs, model.Recommendation{
			Priority:        model.PriorityHigh,
			Type:            "cost-trend",
			Title:           "Projected monthly spend above threshold",
			Description:     fmt.Sprintf("Current usage projects to $%.2f/month, above the $%.2f warning threshold.", r.Projection.CurrentMonthlyEstimate, th.MonthlyCostWarnUSD),
			Action:          "Audit the top agents and models below before the trend compounds.",
			EstimatedImpact: fmt.Sprintf("$%.2f/month at the current rate", r.Projection.CurrentMonthlyEstimate),
		})
	}

	if len(r.TopAgents) > 0 && r.Summary.TotalCost > 0 {
		top := r.TopAgents[0]
		share := top.Cost / r.Summary.TotalCost * 100
		if share > th.AgentConcentrationPct {
			recs = append(recs, model.Recommendation{
				Priority:        model.PriorityMedium,
				Type:            "concentration",
				Title:           fmt.Sprintf("Agent %q dominates spend", top.Agent),
				Description:     fmt.Sprintf("%q accounts for %.0f%% of window cost ($%.2f of $%.2f).", top.Agent, share, top.Cost, r.Summary.TotalCost),
				Action:          fmt.Sprintf("Profile %q: batch its prompts or downgrade its default model.", top.Agent),
				EstimatedImpact: fmt.Sprintf("$%.2f in the window", top.Cost),
			})
		}
	}

	return recs
}
