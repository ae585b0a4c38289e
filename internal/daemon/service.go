// Package daemon provides the long-running background cost monitor service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/rmirandamx/agentspend/internal/classify"
	appconfig "github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/ledger"
	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/model"
	"github.com/rmirandamx/agentspend/internal/pipeline"
	"github.com/rmirandamx/agentspend/internal/report"
	"github.com/rmirandamx/agentspend/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	SessionsDir  string
	DataDir      string
	Days         int
	UseTracker   bool
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	MetricsTTL   time.Duration
	Thresholds   appconfig.ThresholdsConfig
}

// Snapshot is a compact cost state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	Requests        int       `json:"requests"`
	CostUSD         float64   `json:"cost_usd"`
	LocalViablePct  int       `json:"local_viable_pct"`
	Agents          int       `json:"agents"`
	MonthlyEstimate float64   `json:"monthly_estimate"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Requests int     `json:"requests"`
	CostUSD  float64 `json:"cost_usd"`
}

func (d Delta) isZero() bool {
	return d.Requests == 0 && d.CostUSD == 0
}

// Event is emitted whenever the cost snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time             `json:"started_at"`
	LastPollAt      time.Time             `json:"last_poll_at"`
	PollIntervalSec int                   `json:"poll_interval_sec"`
	PollCount       int64                 `json:"poll_count"`
	SessionsDir     string                `json:"sessions_dir"`
	DataDir         string                `json:"data_dir"`
	Days            int                   `json:"days"`
	Summary         Snapshot              `json:"summary"`
	Fleet           []model.AgentActivity `json:"fleet"`
	LastError       string                `json:"last_error,omitempty"`
	EventCount      int                   `json:"event_count"`
	SubscriberCount int                   `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	cls    *classify.Classifier
	prices *appconfig.PriceTable
	lstore *ledger.Store
	cache  *metrics.SnapshotCache

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, cls *classify.Classifier, prices *appconfig.PriceTable) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Days < 1 {
		cfg.Days = 7
	}
	if cfg.MetricsTTL < time.Second {
		cfg.MetricsTTL = cfg.Interval
	}

	return &Service{
		cfg:       cfg,
		cls:       cls,
		prices:    prices,
		lstore:    ledger.NewStore(cfg.DataDir),
		cache:     metrics.NewSnapshotCache(cfg.MetricsTTL),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints, interval polling, and the session-tree watcher
// until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/metrics", s.handleMetrics)
	mux.HandleFunc("/v1/requests", s.handleRequests)
	mux.HandleFunc("/v1/report/latest", s.handleLatestReport)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// A filesystem watcher triggers early polls on session writes; the
	// ticker remains the floor so missed events only delay, never lose.
	wakeup := watchSessions(ctx, s.cfg.SessionsDir)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case <-wakeup:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	retained, err := s.ingest()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		log.Printf("agentspend daemon poll error: %v", err)
		return
	}

	windowed := metrics.Window(retained, s.cfg.Days, now)
	full := metrics.Compute(windowed, s.cfg.Thresholds.LocalInfraMonthlyUSD)
	s.cache.Put(full, now)

	snap := compactSnapshot(full, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "usage_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) ingest() ([]model.Request, error) {
	var tracker *store.Tracker
	if s.cfg.UseTracker {
		if t, err := store.Open(pipeline.TrackerPath()); err == nil {
			tracker = t
			defer func() { _ = t.Close() }()
		}
	}

	ir, err := pipeline.Ingest(s.cfg.SessionsDir, s.lstore, s.cls, s.prices, tracker, nil)
	if err != nil {
		return nil, err
	}
	return ir.Retained, nil
}

// windowedSnapshot serves the metrics read path, preferring the TTL cache.
func (s *Service) windowedSnapshot(now time.Time) model.MetricsSnapshot {
	if snap, ok := s.cache.Get(now); ok {
		return snap
	}

	requests := metrics.Window(s.lstore.Load().Requests, s.cfg.Days, now)
	snap := metrics.Compute(requests, s.cfg.Thresholds.LocalInfraMonthlyUSD)
	s.cache.Put(snap, now)
	return snap
}

func compactSnapshot(full model.MetricsSnapshot, at time.Time) Snapshot {
	lvPct := 0
	if lv, ok := full.ClassificationBreakdown[string(model.LocalViable)]; ok {
		lvPct = lv.Percentage
	}
	return Snapshot{
		At:              at,
		Requests:        full.Summary.TotalRequests,
		CostUSD:         full.Summary.TotalCost,
		LocalViablePct:  lvPct,
		Agents:          len(full.ByAgent),
		MonthlyEstimate: full.Projection.CurrentMonthlyEstimate,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Requests: curr.Requests - prev.Requests,
		CostUSD:  appconfig.Round6(curr.CostUSD - prev.CostUSD),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	fleet, _ := fleetStatus(s.cfg.SessionsDir)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		SessionsDir:     s.cfg.SessionsDir,
		DataDir:         s.cfg.DataDir,
		Days:            s.cfg.Days,
		Summary:         s.snapshot,
		Fleet:           fleet,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// latestReport reads the most recent persisted report artifact.
func (s *Service) latestReport() (model.Report, error) {
	return report.NewWriter(s.cfg.DataDir).Latest()
}
