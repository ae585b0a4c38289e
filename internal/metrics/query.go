package metrics

import (
	"time"

	"github.com/samber/lo"

	"github.com/rmirandamx/agentspend/internal/model"
)

// Filter narrows a ledger query. Zero values mean "no constraint".
type Filter struct {
	Agent          string
	Classification model.Classification
	Model          string
	Days           int
}

// Window keeps requests newer than the given day count. Days <= 0 keeps
// everything.
func Window(requests []model.Request, days int, now time.Time) []model.Request {
	if days <= 0 {
		return requests
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
	return lo.Filter(requests, func(r model.Request, _ int) bool {
		return r.Timestamp >= cutoff
	})
}

// Apply returns the requests matching every set constraint, preserving the
// ledger's newest-first order.
func (f Filter) Apply(requests []model.Request, now time.Time) []model.Request {
	out := Window(requests, f.Days, now)
	return lo.Filter(out, func(r model.Request, _ int) bool {
		if f.Agent != "" && r.AgentName != f.Agent {
			return false
		}
		if f.Classification != "" && r.Classification != f.Classification {
			return false
		}
		if f.Model != "" && r.ModelUsed != f.Model {
			return false
		}
		return true
	})
}

// Paginate slices a filtered result into a one-based page. Page and limit
// are clamped to sane values; a page past the end returns an empty slice
// with the real totals so clients can re-request.
func Paginate(requests []model.Request, page, limit int) model.RequestPage {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}

	total := len(requests)
	pages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return model.RequestPage{
		Requests: requests[start:end],
		Total:    total,
		Page:     page,
		Limit:    limit,
		Pages:    pages,
	}
}
