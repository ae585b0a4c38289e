// Package ledger owns the persisted, deduplicated request collection.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rmirandamx/agentspend/internal/model"
)

// MaxCachedRequests caps ledger retention. Older entries beyond the cap are
// evicted en masse on merge; individual requests are never deleted.
const MaxCachedRequests = 50_000

const ledgerFileName = "api-cost-requests.json"

// Store persists the request ledger as a single JSON document.
// Merge-and-persist is serialized behind a mutex and writes go through a
// temp file plus atomic rename, so overlapping runs cannot corrupt the
// previously persisted state.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a ledger store rooted at the given data directory.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, ledgerFileName)}
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted ledger. A missing or corrupt file is a cold
// start: an empty ledger, never an error that blocks ingestion.
func (s *Store) Load() model.LedgerFile {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return model.LedgerFile{}
	}

	var lf model.LedgerFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return model.LedgerFile{}
	}
	return lf
}

// Merge folds freshly scanned requests into the persisted ledger:
// keep only unseen IDs, concatenate, sort descending by timestamp,
// truncate to the retention cap, persist. Returns the retained requests.
//
// Request IDs are content-derived (see source.ParseFile), so re-merging an
// unchanged corpus is a no-op at the logical request level.
func (s *Store) Merge(scanned []model.Request) ([]model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.Load().Requests

	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}

	combined := existing
	for _, r := range scanned {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		combined = append(combined, r)
	}

	// Descending by timestamp; ID tie-break keeps the order reproducible.
	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].Timestamp != combined[j].Timestamp {
			return combined[i].Timestamp > combined[j].Timestamp
		}
		return combined[i].ID < combined[j].ID
	})

	total := len(combined)
	trimmed := combined
	if len(trimmed) > MaxCachedRequests {
		trimmed = trimmed[:MaxCachedRequests]
	}

	lf := model.LedgerFile{
		Requests:    trimmed,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		TotalCount:  total,
		CachedCount: len(trimmed),
	}
	if err := s.persist(lf); err != nil {
		return nil, err
	}
	return trimmed, nil
}

// persist writes the ledger document via temp file + rename so a failed
// write never clobbers the previous artifact.
func (s *Store) persist(lf model.LedgerFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("creating ledger temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing ledger temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}
