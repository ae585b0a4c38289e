package model

// MetricsSnapshot is a derived, disposable view over a request window.
// Always reproducible from the ledger; a persisted copy is for external
// consumers only and never the source of truth.
type MetricsSnapshot struct {
	Period                  string                           `json:"period"`
	Summary                 Summary                          `json:"summary"`
	ClassificationBreakdown map[string]ClassificationMetrics `json:"classification_breakdown"`
	ByAgent                 map[string]AgentMetrics          `json:"by_agent"`
	ByModel                 map[string]ModelMetrics          `json:"by_model"`
	Projection              Projection                       `json:"projection"`
}

// Summary holds the top-level counters for a window.
type Summary struct {
	TotalRequests     int     `json:"total_requests"`
	TotalCost         float64 `json:"total_cost"`
	AvgCostPerRequest float64 `json:"avg_cost_per_request"`
	AvgInputTokens    int64   `json:"avg_input_tokens"`
	AvgOutputTokens   int64   `json:"avg_output_tokens"`
}

// ClassificationMetrics is one row of the classification breakdown.
// PotentialSavings is non-zero only for LOCAL_VIABLE.
type ClassificationMetrics struct {
	Count            int     `json:"count"`
	Percentage       int     `json:"percentage"`
	TotalCost        float64 `json:"total_cost"`
	PotentialSavings float64 `json:"potential_savings"`
}

// AgentMetrics is one row of the per-agent breakdown.
type AgentMetrics struct {
	Count           int     `json:"count"`
	Cost            float64 `json:"cost"`
	LocalViable     int     `json:"local_viable"`
	PercentageLocal int     `json:"percentage_local"`
}

// ModelMetrics is one row of the per-model breakdown.
type ModelMetrics struct {
	Count      int     `json:"count"`
	Cost       float64 `json:"cost"`
	Percentage int     `json:"percentage"`
}

// Projection is a linear extrapolation of observed cost to a 30-day month,
// compared against a flat local-infrastructure subscription.
type Projection struct {
	LocalInfraMonthlyCost    float64 `json:"local_infra_monthly_cost"`
	CurrentMonthlyEstimate   float64 `json:"current_monthly_estimate"`
	PotentialSavingsMonthly  float64 `json:"potential_savings_monthly"`
	BreakevenRequestsMonthly int     `json:"breakeven_requests_per_month"`
	ROI                      string  `json:"roi"` // POSITIVE | EVALUATE
}

// RequestPage is the paginated result of a ledger query.
type RequestPage struct {
	Requests []Request `json:"requests"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Pages    int       `json:"pages"`
}
