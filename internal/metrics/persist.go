package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmirandamx/agentspend/internal/model"
)

const metricsFileName = "api-cost-metrics.json"

// WriteSnapshot persists a snapshot copy for external consumers. The file
// is derived output; the ledger stays the source of truth.
func WriteSnapshot(dataDir string, snap model.MetricsSnapshot) error {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	path := filepath.Join(dataDir, metricsFileName)
	tmp, err := os.CreateTemp(dataDir, ".metrics-*.tmp")
	if err != nil {
		return fmt.Errorf("creating metrics temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing metrics temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing metrics file: %w", err)
	}
	return nil
}
