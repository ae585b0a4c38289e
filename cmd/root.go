// Package cmd implements the agentspend CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/classify"
	"github.com/rmirandamx/agentspend/internal/cli"
	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/ledger"
	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/model"
	"github.com/rmirandamx/agentspend/internal/pipeline"
	"github.com/rmirandamx/agentspend/internal/store"
)

var (
	flagDays        int
	flagAgent       string
	flagModel       string
	flagNoCache     bool
	flagDataDir     string
	flagSessionsDir string
	flagQuiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "agentspend",
	Short: "AI agent API cost tracker",
	Long:  "Track what your agent fleet spends on model APIs and find the requests a local model could have served.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Time window in days (0 = config default)")
	rootCmd.PersistentFlags().StringVarP(&flagAgent, "agent", "a", "", "Filter to one agent")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Filter to one model")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the scan tracker, reparse everything")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Override data directory")
	rootCmd.PersistentFlags().StringVarP(&flagSessionsDir, "sessions-dir", "s", "", "Override agent sessions directory")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// runContext resolves config plus flag overrides into the paths and window
// every command needs.
type runContext struct {
	cfg         config.Config
	sessionsDir string
	dataDir     string
	days        int
	cls         *classify.Classifier
	prices      *config.PriceTable
	lstore      *ledger.Store
}

func newRunContext() (*runContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sessionsDir := config.SessionsDir(cfg)
	if flagSessionsDir != "" {
		sessionsDir = flagSessionsDir
	}
	dataDir := config.DataDir(cfg)
	if flagDataDir != "" {
		dataDir = flagDataDir
	}
	days := cfg.General.DefaultDays
	if flagDays > 0 {
		days = flagDays
	}
	if days < 1 {
		days = 7
	}

	return &runContext{
		cfg:         cfg,
		sessionsDir: sessionsDir,
		dataDir:     dataDir,
		days:        days,
		cls:         classify.New(),
		prices:      config.NewPriceTable(cfg.Pricing),
		lstore:      ledger.NewStore(dataDir),
	}, nil
}

// ingest is the shared scan-classify-merge path used by all commands.
// The SQLite tracker skips unchanged files unless --no-cache is set.
func (rc *runContext) ingest() (*pipeline.IngestResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning agent sessions...\n")
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 24))
		}
	}

	var tracker *store.Tracker
	if !flagNoCache {
		t, err := store.Open(pipeline.TrackerPath())
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Tracker unavailable, doing full parse\n")
			}
		} else {
			tracker = t
			defer func() { _ = t.Close() }()
		}
	}

	result, err := pipeline.Ingest(rc.sessionsDir, rc.lstore, rc.cls, rc.prices, tracker, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.Load.TotalFiles > 0 {
		if result.Load.Skipped > 0 {
			fmt.Fprintf(os.Stderr, "\r  %d files unchanged, %d reparsed, %d agents    \n",
				result.Load.Skipped, result.Load.Reparsed, result.Load.AgentCount)
		} else {
			fmt.Fprintf(os.Stderr, "\r  Parsed %d files across %d agents    \n",
				result.Load.ParsedFiles, result.Load.AgentCount)
		}
	}
	return result, nil
}

// windowed applies the persistent flags to the retained ledger.
func (rc *runContext) windowed(requests []model.Request) []model.Request {
	return metrics.Filter{
		Agent: flagAgent,
		Model: flagModel,
		Days:  rc.days,
	}.Apply(requests, time.Now())
}

func warnLoadErrors(load pipeline.TrackedLoadResult) {
	if load.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be read\n", load.FileErrors)
	}
	if load.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed lines skipped\n", load.ParseErrors)
	}
}
