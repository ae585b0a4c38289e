package pipeline

import (
	"fmt"

	"github.com/rmirandamx/agentspend/internal/classify"
	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/ledger"
	"github.com/rmirandamx/agentspend/internal/model"
	"github.com/rmirandamx/agentspend/internal/store"
)

// IngestResult is one complete scan-classify-merge cycle.
type IngestResult struct {
	Load     TrackedLoadResult
	Retained []model.Request
}

// Ingest scans the sessions tree, classifies and prices every billable
// message, and folds the results into the ledger. A nil tracker forces a
// full re-parse of every file.
func Ingest(sessionsDir string, lstore *ledger.Store, cls *classify.Classifier, prices *config.PriceTable, tracker *store.Tracker, progressFn ProgressFunc) (*IngestResult, error) {
	var result IngestResult

	if tracker != nil {
		lr, err := LoadWithTracker(sessionsDir, cls, prices, tracker, progressFn)
		if err != nil {
			return nil, fmt.Errorf("scanning sessions: %w", err)
		}
		result.Load = *lr
	} else {
		lr, err := Load(sessionsDir, cls, prices, progressFn)
		if err != nil {
			return nil, fmt.Errorf("scanning sessions: %w", err)
		}
		result.Load = TrackedLoadResult{LoadResult: *lr, Reparsed: lr.ParsedFiles}
	}

	retained, err := lstore.Merge(result.Load.Requests)
	if err != nil {
		return nil, fmt.Errorf("merging ledger: %w", err)
	}
	result.Retained = retained
	return &result, nil
}
