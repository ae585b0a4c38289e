package model

// Report is a periodic rollup built from a MetricsSnapshot plus the
// underlying request list. Immutable once generated; the next period's
// report supersedes it but historical reports are kept by period id.
type Report struct {
	Metadata        ReportMetadata                   `json:"metadata"`
	Summary         Summary                          `json:"summary"`
	Classifications map[string]ClassificationMetrics `json:"classifications"`
	TopAgents       []AgentReportRow                 `json:"top_agents"`
	TopModels       []ModelReportRow                 `json:"top_models"`
	Projection      Projection                       `json:"projection"`
	Recommendations []Recommendation                 `json:"recommendations"`
	RequestsByHour  map[string]HourBucket            `json:"requests_by_hour"`
}

// ReportMetadata identifies the covered period.
type ReportMetadata struct {
	GeneratedAt string `json:"generated_at"`
	PeriodID    string `json:"period_id"`
	PeriodLabel string `json:"period_label"`
	Period      string `json:"period"`
}

// AgentReportRow is a per-agent table entry sorted by cost.
type AgentReportRow struct {
	Agent string `json:"agent"`
	AgentMetrics
}

// ModelReportRow is a per-model table entry sorted by cost.
type ModelReportRow struct {
	Model string `json:"model"`
	ModelMetrics
}

// Recommendation priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
)

// Recommendation is a threshold-triggered advisory. Rules are independent;
// every applicable one fires.
type Recommendation struct {
	Priority        string `json:"priority"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Action          string `json:"action"`
	EstimatedImpact string `json:"estimated_impact"`
}

// HourBucket aggregates requests that started within one hour of the day.
type HourBucket struct {
	Count           int            `json:"count"`
	Cost            float64        `json:"cost"`
	Classifications map[string]int `json:"classifications"`
}
