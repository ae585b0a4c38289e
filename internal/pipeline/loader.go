// Package pipeline runs the scan-classify-merge ingestion flow.
package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rmirandamx/agentspend/internal/classify"
	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/model"
	"github.com/rmirandamx/agentspend/internal/source"
)

// LoadResult holds the output of one full corpus scan.
type LoadResult struct {
	Requests    []model.Request
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
	AgentCount  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every live session file under the sessions root.
// Parsing runs on a bounded worker pool. Per-agent and per-file failures are
// counted and skipped; a partial corpus is still a usable corpus.
func Load(sessionsDir string, cls *classify.Classifier, prices *config.PriceTable, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := discover(sessionsDir)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{
		TotalFiles: len(files),
		AgentCount: source.CountAgents(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, cls, prices, progressFn, 0, len(files))
	for _, pr := range results {
		collect(result, pr)
	}
	return result, nil
}

// discover lists every live session file across all agents.
func discover(sessionsDir string) ([]source.DiscoveredFile, error) {
	agents, err := source.ListAgents(sessionsDir)
	if err != nil {
		return nil, err
	}

	var files []source.DiscoveredFile
	for _, agent := range agents {
		files = append(files, source.SessionFiles(sessionsDir, agent)...)
	}
	return files, nil
}

// parseAll fans files out to a bounded worker pool and returns per-file
// results in input order. done/total seed the progress callback so callers
// mixing skipped and parsed files report one coherent count.
func parseAll(files []source.DiscoveredFile, cls *classify.Classifier, prices *config.PriceTable, progressFn ProgressFunc, done, total int) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx], cls, prices)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(done+int(n), total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

func collect(result *LoadResult, pr source.ParseResult) {
	if pr.Err != nil {
		result.FileErrors++
		return
	}
	result.ParsedFiles++
	result.ParseErrors += pr.ParseErrors
	result.Requests = append(result.Requests, pr.Requests...)
}
