package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmirandamx/agentspend/internal/classify"
	"github.com/rmirandamx/agentspend/internal/config"
	"github.com/rmirandamx/agentspend/internal/ledger"
	"github.com/rmirandamx/agentspend/internal/store"
)

const (
	lineLocal   = `{"type":"message","timestamp":1755000000000,"message":{"role":"assistant","model":"claude-haiku-4-5","usage":{"input":2000,"output":100},"content":"transcribe this audio"}}`
	linePremium = `{"type":"message","timestamp":1755000001000,"message":{"role":"assistant","model":"claude-opus-4-6","usage":{"input":9000,"output":1500,"thinking":400},"content":"refactor the scheduler"},"data":{"tools_used":["bash","edit","read"]}}`
)

func writeAgentLog(t *testing.T, root, agent, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, agent, "sessions")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FullScan(t *testing.T) {
	root := t.TempDir()
	writeAgentLog(t, root, "atlas", "a.jsonl", lineLocal+"\n"+linePremium+"\n")
	writeAgentLog(t, root, "scout", "b.jsonl", lineLocal+"\n")

	var calls int
	lr, err := Load(root, classify.New(), config.NewPriceTable(config.PricingOverrides{}), func(current, total int) {
		calls++
		if total != 2 {
			t.Errorf("progress total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if lr.TotalFiles != 2 || lr.ParsedFiles != 2 || lr.AgentCount != 2 {
		t.Fatalf("load = %+v", lr)
	}
	if len(lr.Requests) != 3 {
		t.Fatalf("requests = %d, want 3", len(lr.Requests))
	}
	if calls != 2 {
		t.Fatalf("progress calls = %d, want 2", calls)
	}
}

func TestLoad_EmptyRoot(t *testing.T) {
	lr, err := Load(t.TempDir(), classify.New(), config.NewPriceTable(config.PricingOverrides{}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if lr.TotalFiles != 0 || len(lr.Requests) != 0 {
		t.Fatalf("empty root load = %+v", lr)
	}
}

func TestIngest_IdempotentAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeAgentLog(t, root, "atlas", "a.jsonl", lineLocal+"\n"+linePremium+"\n")

	lstore := ledger.NewStore(t.TempDir())
	cls := classify.New()
	prices := config.NewPriceTable(config.PricingOverrides{})

	first, err := Ingest(root, lstore, cls, prices, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Retained) != 2 {
		t.Fatalf("first ingest retained %d, want 2", len(first.Retained))
	}

	second, err := Ingest(root, lstore, cls, prices, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Retained) != 2 {
		t.Fatalf("second ingest retained %d, want 2 (stable IDs)", len(second.Retained))
	}
}

func TestIngest_TrackerSkipsUnchanged(t *testing.T) {
	root := t.TempDir()
	writeAgentLog(t, root, "atlas", "a.jsonl", lineLocal+"\n")

	tracker, err := store.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tracker.Close() }()

	lstore := ledger.NewStore(t.TempDir())
	cls := classify.New()
	prices := config.NewPriceTable(config.PricingOverrides{})

	first, err := Ingest(root, lstore, cls, prices, tracker, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Load.Reparsed != 1 || first.Load.Skipped != 0 {
		t.Fatalf("first run reparsed=%d skipped=%d", first.Load.Reparsed, first.Load.Skipped)
	}

	second, err := Ingest(root, lstore, cls, prices, tracker, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Load.Skipped != 1 || second.Load.Reparsed != 0 {
		t.Fatalf("second run reparsed=%d skipped=%d", second.Load.Reparsed, second.Load.Skipped)
	}
	// Skipping must not shrink the ledger.
	if len(second.Retained) != 1 {
		t.Fatalf("second run retained %d, want 1", len(second.Retained))
	}
}

func TestLoadWithTracker_ReparsesGrownFile(t *testing.T) {
	root := t.TempDir()
	path := writeAgentLog(t, root, "atlas", "a.jsonl", lineLocal+"\n")

	tracker, err := store.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tracker.Close() }()

	cls := classify.New()
	prices := config.NewPriceTable(config.PricingOverrides{})

	if _, err := LoadWithTracker(root, cls, prices, tracker, nil); err != nil {
		t.Fatal(err)
	}

	// Append a line: the size change must force a re-parse.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(linePremium + "\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	lr, err := LoadWithTracker(root, cls, prices, tracker, nil)
	if err != nil {
		t.Fatal(err)
	}
	if lr.Reparsed != 1 || lr.Skipped != 0 {
		t.Fatalf("after append reparsed=%d skipped=%d", lr.Reparsed, lr.Skipped)
	}
	if len(lr.Requests) != 2 {
		t.Fatalf("after append requests = %d, want 2", len(lr.Requests))
	}
}
