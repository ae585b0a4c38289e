package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/model"
)

func mkReq(id string, ts int64, agent string, cls model.Classification, cost float64) model.Request {
	return model.Request{
		ID:             id,
		Timestamp:      ts,
		AgentName:      agent,
		ModelUsed:      "claude-haiku-4-5",
		TotalCostUSD:   cost,
		Classification: cls,
	}
}

func thresholds() config.ThresholdsConfig {
	return config.DefaultConfig().Thresholds
}

func TestPeriods(t *testing.T) {
	// 2026-08-29 is a Saturday; the ISO week began Monday 2026-08-24.
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	daily := DailyPeriod(now)
	if daily.ID != "2026-08-29" || daily.Days != 1 {
		t.Fatalf("daily = %+v", daily)
	}

	weekly := WeeklyPeriod(now)
	if weekly.ID != "week-2026-08-24" || weekly.Days != 7 {
		t.Fatalf("weekly = %+v", weekly)
	}

	// Sunday still belongs to the week that started the prior Monday.
	sunday := WeeklyPeriod(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	if sunday.ID != "week-2026-08-24" {
		t.Fatalf("sunday week = %s", sunday.ID)
	}
}

func TestBuild_LocalViableRecommendation(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC).UnixMilli()
	// 3 of 5 local-viable: 60% crosses the 50% rule.
	reqs := []model.Request{
		mkReq("a", base, "atlas", model.LocalViable, 0.02),
		mkReq("b", base+1000, "atlas", model.LocalViable, 0.02),
		mkReq("c", base+2000, "scout", model.LocalViable, 0.02),
		mkReq("d", base+3000, "scout", model.NeedsClaude, 0.30),
		mkReq("e", base+4000, "scout", model.EdgeCase, 0.05),
	}
	snap := metrics.Compute(reqs, 20)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	r := Build(snap, reqs, DailyPeriod(now), thresholds(), now)

	var found bool
	for _, rec := range r.Recommendations {
		if rec.Type == "optimization" {
			found = true
			if rec.Priority != model.PriorityHigh {
				t.Errorf("optimization priority = %s, want HIGH", rec.Priority)
			}
		}
	}
	if !found {
		t.Fatalf("60%% LOCAL_VIABLE produced no optimization rec: %+v", r.Recommendations)
	}
}

func TestBuild_AllRulesIndependent(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC).UnixMilli()

	// Engineer a window that trips all four rules at once: half the
	// requests local-viable, >20 edge cases, heavy spend on one agent.
	var reqs []model.Request
	for i := 0; i < 30; i++ {
		reqs = append(reqs, mkReq(idFor("lv", i), base+int64(i)*1000, "atlas", model.LocalViable, 0.02))
	}
	for i := 0; i < 25; i++ {
		reqs = append(reqs, mkReq(idFor("ec", i), base+int64(i)*1000, "scout", model.EdgeCase, 0.40))
	}
	// One expensive agent dominating the rest.
	reqs = append(reqs, mkReq("big", base, "hoarder", model.NeedsClaude, 40))

	snap := metrics.Compute(reqs, 20)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	r := Build(snap, reqs, WeeklyPeriod(now), thresholds(), now)

	types := map[string]bool{}
	for _, rec := range r.Recommendations {
		types[rec.Type] = true
	}
	for _, want := range []string{"optimization", "review", "cost-trend", "concentration"} {
		if !types[want] {
			t.Errorf("missing %s recommendation (got %v)", want, types)
		}
	}

	// The concentration rec must name the dominating agent.
	for _, rec := range r.Recommendations {
		if rec.Type == "concentration" && !strings.Contains(rec.Title, "hoarder") {
			t.Errorf("concentration rec does not name the agent: %q", rec.Title)
		}
	}
}

func idFor(prefix string, i int) string {
	return prefix + "-" + time.Duration(i).String()
}

func TestBuild_QuietWindowHasNoRecommendations(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	span := (20 * 24 * time.Hour).Milliseconds()
	// Three agents at a third of spend each, no local-viable share, tiny
	// projected monthly cost: nothing to recommend.
	reqs := []model.Request{
		mkReq("a", base, "atlas", model.NeedsClaude, 0.30),
		mkReq("b", base+span/2, "scout", model.NeedsClaude, 0.30),
		mkReq("c", base+span, "probe", model.NeedsClaude, 0.30),
	}
	snap := metrics.Compute(reqs, 20)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	r := Build(snap, reqs, DailyPeriod(now), thresholds(), now)
	if len(r.Recommendations) != 0 {
		t.Fatalf("quiet window produced recommendations: %+v", r.Recommendations)
	}
}

func TestBuild_HourHistogram(t *testing.T) {
	reqs := []model.Request{
		mkReq("a", time.Date(2026, 8, 28, 9, 15, 0, 0, time.UTC).UnixMilli(), "atlas", model.LocalViable, 0.02),
		mkReq("b", time.Date(2026, 8, 28, 9, 45, 0, 0, time.UTC).UnixMilli(), "atlas", model.NeedsClaude, 0.30),
		mkReq("c", time.Date(2026, 8, 28, 17, 5, 0, 0, time.UTC).UnixMilli(), "scout", model.EdgeCase, 0.05),
	}
	snap := metrics.Compute(reqs, 20)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	r := Build(snap, reqs, DailyPeriod(now), thresholds(), now)

	nine := r.RequestsByHour["09:00"]
	if nine.Count != 2 || nine.Cost != 0.32 {
		t.Fatalf("09:00 bucket = %+v", nine)
	}
	if nine.Classifications[string(model.LocalViable)] != 1 || nine.Classifications[string(model.NeedsClaude)] != 1 {
		t.Fatalf("09:00 classifications = %v", nine.Classifications)
	}
	if r.RequestsByHour["17:00"].Count != 1 {
		t.Fatalf("17:00 bucket = %+v", r.RequestsByHour["17:00"])
	}
}

func TestWriter_PersistsArtifactPairs(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC).UnixMilli()
	reqs := []model.Request{mkReq("a", base, "atlas", model.LocalViable, 0.02)}
	snap := metrics.Compute(reqs, 20)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	r := Build(snap, reqs, DailyPeriod(now), thresholds(), now)

	if err := w.Write(r); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"2026-08-29.json", "2026-08-29.txt", "latest.json", "latest.txt"} {
		if _, err := os.Stat(filepath.Join(w.Dir(), name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	got, err := w.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata.PeriodID != "2026-08-29" {
		t.Fatalf("latest period = %s", got.Metadata.PeriodID)
	}

	text, err := os.ReadFile(filepath.Join(w.Dir(), "latest.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(text), "SUMMARY") {
		t.Fatal("rendered text missing summary section")
	}
}

func TestRenderText_MentionsRecommendations(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC).UnixMilli()
	reqs := []model.Request{
		mkReq("a", base, "atlas", model.LocalViable, 0.02),
		mkReq("b", base+1000, "atlas", model.LocalViable, 0.02),
	}
	snap := metrics.Compute(reqs, 20)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	r := Build(snap, reqs, DailyPeriod(now), thresholds(), now)

	out := RenderText(r)
	if !strings.Contains(out, "RECOMMENDATIONS") || !strings.Contains(out, "[HIGH]") {
		t.Fatalf("rendered text missing recommendation block:\n%s", out)
	}
}
