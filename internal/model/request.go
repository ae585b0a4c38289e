// Package model defines domain types for agentspend requests, metrics, and reports.
package model

import "time"

// Classification labels whether a request could have run on cheaper/local inference.
type Classification string

const (
	LocalViable Classification = "LOCAL_VIABLE"
	NeedsClaude Classification = "NEEDS_CLAUDE"
	EdgeCase    Classification = "EDGE_CASE"
	Unknown     Classification = "UNKNOWN"
)

// Request is one billed unit of work extracted from an agent session log.
// Immutable after ingestion; evicted only by the ledger retention cap.
type Request struct {
	ID             string         `json:"id"`
	Timestamp      int64          `json:"timestamp"` // epoch millis
	AgentName      string         `json:"agent_name"`
	ModelUsed      string         `json:"model_used"`
	InputTokens    int64          `json:"input_tokens"`
	OutputTokens   int64          `json:"output_tokens"`
	CacheRead      int64          `json:"cache_read"`
	CacheWrite     int64          `json:"cache_write"`
	ThinkingTokens int64          `json:"thinking_tokens"`
	ToolsCount     int            `json:"tools_count"`
	TotalCostUSD   float64        `json:"total_cost_usd"` // rounded to 6 decimals
	Classification Classification `json:"classification"`
	Reasoning      string         `json:"reasoning"`
	PromptPreview  string         `json:"prompt_preview"`
	Success        bool           `json:"success"`
	StopReason     string         `json:"stop_reason"`
}

// Time returns the request timestamp as a time.Time.
func (r Request) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// LedgerFile is the persisted, deduplicated request collection.
// TotalCount is the pre-truncation count; CachedCount is what survived the cap.
type LedgerFile struct {
	Requests    []Request `json:"requests"`
	GeneratedAt string    `json:"generated_at"`
	TotalCount  int       `json:"total_count"`
	CachedCount int       `json:"cached_count"`
}

// AgentActivity is a presence/liveness view of one agent, derived from the
// modification time of its most recent session file. Not used for billing.
type AgentActivity struct {
	Agent      string     `json:"agent"`
	Status     string     `json:"status"` // active | idle | offline
	LastActive *time.Time `json:"last_active,omitempty"`
	SessionLog string     `json:"session_log,omitempty"`
}

const (
	StatusActive  = "active"
	StatusIdle    = "idle"
	StatusOffline = "offline"
)
