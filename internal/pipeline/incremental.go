package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmirandamx/agentspend/internal/classify"
	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/source"
	"github.com/rmirandamx/agentspend/internal/store"
)

// TrackedLoadResult extends LoadResult with scan-cursor metadata.
type TrackedLoadResult struct {
	LoadResult
	Skipped  int
	Reparsed int
}

// LoadWithTracker diffs the discovered files against the tracker's cursors
// and parses only the changed ones. Requests from skipped files are already
// in the ledger under their stable IDs, so skipping never loses data.
func LoadWithTracker(sessionsDir string, cls *classify.Classifier, prices *config.PriceTable, tracker *store.Tracker, progressFn ProgressFunc) (*TrackedLoadResult, error) {
	files, err := discover(sessionsDir)
	if err != nil {
		return nil, err
	}

	result := &TrackedLoadResult{
		LoadResult: LoadResult{
			TotalFiles: len(files),
			AgentCount: source.CountAgents(files),
		},
	}
	if len(files) == 0 {
		return result, nil
	}

	cursors, err := tracker.Cursors()
	if err != nil {
		return nil, fmt.Errorf("reading tracker: %w", err)
	}

	type stat struct {
		mtimeNs int64
		size    int64
	}
	stats := make(map[string]stat, len(files))

	var toReparse []source.DiscoveredFile
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		stats[f.Path] = stat{mtimeNs: info.ModTime().UnixNano(), size: info.Size()}

		if tracker.Unchanged(cursors, f.Path, info.ModTime().UnixNano(), info.Size()) {
			result.Skipped++
			continue
		}
		toReparse = append(toReparse, f)
	}
	result.Reparsed = len(toReparse)

	if len(toReparse) == 0 {
		return result, nil
	}

	results := parseAll(toReparse, cls, prices, progressFn, result.Skipped, result.TotalFiles)
	for i, pr := range results {
		collect(&result.LoadResult, pr)
		if pr.Err != nil {
			continue
		}
		f := toReparse[i]
		if st, ok := stats[f.Path]; ok {
			_ = tracker.Record(f.Path, f.Agent, st.mtimeNs, st.size, len(pr.Requests))
		}
	}
	return result, nil
}

// TrackerDir returns the platform-appropriate cache directory for the scan
// cursor database.
func TrackerDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentspend")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "agentspend")
}

// TrackerPath returns the full path to the scan cursor database.
func TrackerPath() string {
	return filepath.Join(TrackerDir(), "tracker.db")
}
