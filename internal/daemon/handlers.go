package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/model"
	"github.com/rmirandamx/agentspend/internal/source"
)

func fleetStatus(sessionsDir string) ([]model.AgentActivity, error) {
	return source.FleetStatus(sessionsDir, time.Now())
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleMetrics(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	snap := s.windowedSnapshot(now)
	if r.URL.Query().Get("fresh") == "true" {
		s.cache.Invalidate()
		snap = s.windowedSnapshot(now)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// handleRequests serves the paginated ledger query:
// /v1/requests?agent=&classification=&model=&days=&page=&limit=
func (s *Service) handleRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := metrics.Filter{
		Agent:          q.Get("agent"),
		Classification: model.Classification(q.Get("classification")),
		Model:          q.Get("model"),
		Days:           intParam(q.Get("days"), s.cfg.Days),
	}
	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), 50)

	requests := filter.Apply(s.lstore.Load().Requests, time.Now())
	result := metrics.Paginate(requests, page, limit)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (s *Service) handleLatestReport(w http.ResponseWriter, _ *http.Request) {
	rep, err := s.latestReport()
	if err != nil {
		http.Error(w, "no report generated yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	s.mu.RLock()
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshot,
	}
	s.mu.RUnlock()
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
