// Package store tracks per-file scan cursors in SQLite so rescans can skip
// session logs whose bytes have not changed. The JSON ledger remains the
// source of truth for requests; dropping the tracker database only costs a
// full re-parse.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Tracker records the last-seen mtime and size of each session file.
type Tracker struct {
	db *sql.DB
}

// Open opens or creates the tracker database at the given path.
func Open(dbPath string) (*Tracker, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating tracker dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening tracker db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Tracker{db: db}, nil
}

// Close closes the tracker database.
func (t *Tracker) Close() error {
	return t.db.Close()
}

// Cursor holds the tracked mtime and size for one file.
type Cursor struct {
	MtimeNs   int64
	SizeBytes int64
}

// Cursors returns a map of file path to tracked cursor for all files.
func (t *Tracker) Cursors() (map[string]Cursor, error) {
	rows, err := t.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]Cursor)
	for rows.Next() {
		var path string
		var c Cursor
		if err := rows.Scan(&path, &c.MtimeNs, &c.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = c
	}
	return result, rows.Err()
}

// Unchanged reports whether the file matches its tracked cursor. A file
// that was never tracked, grew, shrank, or was touched must be re-parsed.
func (t *Tracker) Unchanged(cursors map[string]Cursor, path string, mtimeNs, sizeBytes int64) bool {
	c, ok := cursors[path]
	return ok && c.MtimeNs == mtimeNs && c.SizeBytes == sizeBytes
}

// Record upserts the cursor for a file after a successful parse.
func (t *Tracker) Record(path, agent string, mtimeNs, sizeBytes int64, requestCount int) error {
	_, err := t.db.Exec(`INSERT OR REPLACE INTO file_tracker
		(file_path, agent, mtime_ns, size_bytes, request_count, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		path, agent, mtimeNs, sizeBytes, requestCount, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Forget removes the cursor for a file, e.g. after rotation or deletion.
func (t *Tracker) Forget(path string) error {
	_, err := t.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// TrackedCount returns the number of tracked files.
func (t *Tracker) TrackedCount() (int, error) {
	var count int
	err := t.db.QueryRow("SELECT COUNT(*) FROM file_tracker").Scan(&count)
	return count, err
}
