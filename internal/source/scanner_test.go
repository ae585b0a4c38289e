package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rmirandamx/agentspend/internal/model"
)

func mkSessionTree(t *testing.T, agents map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for agent, files := range agents {
		dir := filepath.Join(root, agent, "sessions")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatal(err)
		}
		for _, name := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0o600); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func TestListAgents(t *testing.T) {
	root := mkSessionTree(t, map[string][]string{
		"scout": {"a.jsonl"},
		"atlas": {"b.jsonl"},
	})

	agents, err := ListAgents(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(agents) != 2 || agents[0] != "atlas" || agents[1] != "scout" {
		t.Fatalf("agents = %v, want sorted [atlas scout]", agents)
	}
}

func TestListAgents_MissingRoot(t *testing.T) {
	agents, err := ListAgents(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing root must not error: %v", err)
	}
	if agents != nil {
		t.Fatalf("missing root = %v, want nil", agents)
	}
}

func TestSessionFiles_ExcludesRotated(t *testing.T) {
	root := mkSessionTree(t, map[string][]string{
		"atlas": {"live.jsonl", "old.jsonl.deleted.1", "notes.txt"},
	})

	files := SessionFiles(root, "atlas")
	if len(files) != 1 {
		t.Fatalf("live files = %d, want 1", len(files))
	}
	if files[0].Name != "live.jsonl" || files[0].Rotated {
		t.Fatalf("file = %+v", files[0])
	}
}

func TestLatestSessionFile_IncludesRotated(t *testing.T) {
	root := mkSessionTree(t, map[string][]string{
		"atlas": {"live.jsonl", "old.jsonl.deleted.1"},
	})
	dir := filepath.Join(root, "atlas", "sessions")

	// Make the rotated file the most recently modified.
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "live.jsonl"), past, past); err != nil {
		t.Fatal(err)
	}

	latest, ok := LatestSessionFile(root, "atlas")
	if !ok {
		t.Fatal("expected a latest file")
	}
	if latest.Name != "old.jsonl.deleted.1" || !latest.Rotated {
		t.Fatalf("latest = %+v, want the rotated file", latest)
	}
}

func TestLatestSessionFile_NoFiles(t *testing.T) {
	root := mkSessionTree(t, map[string][]string{"atlas": nil})

	if _, ok := LatestSessionFile(root, "atlas"); ok {
		t.Fatal("empty sessions dir must report no latest file")
	}
}

func TestAgentStatus(t *testing.T) {
	root := mkSessionTree(t, map[string][]string{
		"atlas": {"live.jsonl"},
	})
	path := filepath.Join(root, "atlas", "sessions", "live.jsonl")
	now := time.Now()

	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"recent write is active", 2 * time.Minute, model.StatusActive},
		{"stale write is idle", 30 * time.Minute, model.StatusIdle},
		{"old write is offline", 3 * time.Hour, model.StatusOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mtime := now.Add(-tt.age)
			if err := os.Chtimes(path, mtime, mtime); err != nil {
				t.Fatal(err)
			}

			got := AgentStatus(root, "atlas", now)
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
			if got.LastActive == nil {
				t.Error("LastActive must be set when a session file exists")
			}
		})
	}
}

func TestAgentStatus_NoSessions(t *testing.T) {
	got := AgentStatus(t.TempDir(), "ghost", time.Now())
	if got.Status != model.StatusOffline {
		t.Fatalf("status = %s, want offline", got.Status)
	}
	if got.LastActive != nil {
		t.Fatal("LastActive must be nil when no session file exists")
	}
}

func TestFleetStatus(t *testing.T) {
	root := mkSessionTree(t, map[string][]string{
		"atlas": {"a.jsonl"},
		"scout": {"b.jsonl"},
	})

	statuses, err := FleetStatus(root, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 2 {
		t.Fatalf("fleet size = %d, want 2", len(statuses))
	}
	if statuses[0].Agent != "atlas" || statuses[1].Agent != "scout" {
		t.Fatalf("fleet order = %v", statuses)
	}
}
