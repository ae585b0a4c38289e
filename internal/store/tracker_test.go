package store

import (
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Tracker {
	t.Helper()
	tr, err := Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestTracker_RecordAndCursors(t *testing.T) {
	tr := openTest(t)

	if err := tr.Record("/logs/atlas/sessions/a.jsonl", "atlas", 100, 2048, 7); err != nil {
		t.Fatal(err)
	}
	if err := tr.Record("/logs/scout/sessions/b.jsonl", "scout", 200, 4096, 3); err != nil {
		t.Fatal(err)
	}

	cursors, err := tr.Cursors()
	if err != nil {
		t.Fatal(err)
	}
	if len(cursors) != 2 {
		t.Fatalf("tracked %d files, want 2", len(cursors))
	}

	c := cursors["/logs/atlas/sessions/a.jsonl"]
	if c.MtimeNs != 100 || c.SizeBytes != 2048 {
		t.Fatalf("cursor = %+v", c)
	}
}

func TestTracker_Unchanged(t *testing.T) {
	tr := openTest(t)

	if err := tr.Record("/logs/atlas/sessions/a.jsonl", "atlas", 100, 2048, 7); err != nil {
		t.Fatal(err)
	}
	cursors, err := tr.Cursors()
	if err != nil {
		t.Fatal(err)
	}

	if !tr.Unchanged(cursors, "/logs/atlas/sessions/a.jsonl", 100, 2048) {
		t.Error("matching cursor reported as changed")
	}
	if tr.Unchanged(cursors, "/logs/atlas/sessions/a.jsonl", 101, 2048) {
		t.Error("touched file reported as unchanged")
	}
	if tr.Unchanged(cursors, "/logs/atlas/sessions/a.jsonl", 100, 4096) {
		t.Error("grown file reported as unchanged")
	}
	if tr.Unchanged(cursors, "/logs/atlas/sessions/new.jsonl", 100, 2048) {
		t.Error("untracked file reported as unchanged")
	}
}

func TestTracker_RecordOverwrites(t *testing.T) {
	tr := openTest(t)

	if err := tr.Record("/logs/atlas/sessions/a.jsonl", "atlas", 100, 2048, 7); err != nil {
		t.Fatal(err)
	}
	if err := tr.Record("/logs/atlas/sessions/a.jsonl", "atlas", 150, 3000, 9); err != nil {
		t.Fatal(err)
	}

	cursors, err := tr.Cursors()
	if err != nil {
		t.Fatal(err)
	}
	c := cursors["/logs/atlas/sessions/a.jsonl"]
	if c.MtimeNs != 150 || c.SizeBytes != 3000 {
		t.Fatalf("cursor after overwrite = %+v", c)
	}

	n, err := tr.TrackedCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("TrackedCount = %d, want 1", n)
	}
}

func TestTracker_Forget(t *testing.T) {
	tr := openTest(t)

	if err := tr.Record("/logs/atlas/sessions/a.jsonl", "atlas", 100, 2048, 7); err != nil {
		t.Fatal(err)
	}
	if err := tr.Forget("/logs/atlas/sessions/a.jsonl"); err != nil {
		t.Fatal(err)
	}

	n, err := tr.TrackedCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("TrackedCount after Forget = %d, want 0", n)
	}
}
