package config

import (
	"math"
	"strings"
)

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// FallbackModel is the price row applied to unknown model identifiers.
// Lowest tier, so unrecognized models are never over-billed.
const FallbackModel = "claude-haiku-4-5"

// DefaultPricing maps model base names to USD-per-MTok rates.
// Prices are configuration, not a reproduction of any vendor's billing.
var DefaultPricing = map[string]ModelPricing{
	"claude-opus-4-6":   {InputPerMTok: 15.00, OutputPerMTok: 45.00},
	"claude-sonnet-4-6": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-haiku-4-5":  {InputPerMTok: 0.80, OutputPerMTok: 4.00},
}

// PriceTable resolves model identifiers to pricing rows.
type PriceTable struct {
	rows     map[string]ModelPricing
	fallback ModelPricing
}

// NewPriceTable builds a price table from the defaults plus any overrides.
func NewPriceTable(overrides PricingOverrides) *PriceTable {
	rows := make(map[string]ModelPricing, len(DefaultPricing))
	for name, p := range DefaultPricing {
		rows[name] = p
	}
	for name, ov := range overrides.Overrides {
		p := rows[name]
		if ov.InputPerMTok != nil {
			p.InputPerMTok = *ov.InputPerMTok
		}
		if ov.OutputPerMTok != nil {
			p.OutputPerMTok = *ov.OutputPerMTok
		}
		rows[name] = p
	}
	return &PriceTable{rows: rows, fallback: rows[FallbackModel]}
}

// Lookup returns the pricing for a model, normalizing the name first.
// Unknown models resolve to the fallback row; Lookup never fails.
func (t *PriceTable) Lookup(model string) ModelPricing {
	if p, ok := t.rows[NormalizeModelName(model)]; ok {
		return p
	}
	return t.fallback
}

// CalculateCost computes the USD cost of one request at full float precision.
// Round to 6 decimals with Round6 at the point of persistence.
func (t *PriceTable) CalculateCost(inputTokens, outputTokens int64, model string) float64 {
	p := t.Lookup(model)
	return float64(inputTokens)/1_000_000*p.InputPerMTok +
		float64(outputTokens)/1_000_000*p.OutputPerMTok
}

// NormalizeModelName strips date suffixes from model identifiers.
// e.g., "claude-sonnet-4-6-20260115" -> "claude-sonnet-4-6"
func NormalizeModelName(raw string) string {
	if _, ok := DefaultPricing[raw]; ok {
		return raw
	}

	parts := strings.Split(raw, "-")
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if isAllDigits(last) && len(last) >= 8 {
			candidate := strings.Join(parts[:len(parts)-1], "-")
			if _, ok := DefaultPricing[candidate]; ok {
				return candidate
			}
		}
	}

	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Round6 rounds a USD amount to 6 decimal places.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
