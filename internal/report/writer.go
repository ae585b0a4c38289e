package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rmirandamx/agentspend/internal/model"
)

const reportsDirName = "reports"

// Writer persists report artifacts under <dataDir>/reports.
type Writer struct {
	dir string
}

// NewWriter returns a writer rooted at the given data directory.
func NewWriter(dataDir string) *Writer {
	return &Writer{dir: filepath.Join(dataDir, reportsDirName)}
}

// Dir returns the reports directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write persists <id>.json and <id>.txt plus the latest.json/latest.txt
// pair. Each file goes through a temp file and rename so a failed write
// never corrupts a previous artifact.
func (w *Writer) Write(r model.Report) error {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return fmt.Errorf("creating reports dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	text := []byte(RenderText(r))

	id := r.Metadata.PeriodID
	for _, f := range []struct {
		name string
		data []byte
	}{
		{id + ".json", data},
		{id + ".txt", text},
		{"latest.json", data},
		{"latest.txt", text},
	} {
		if err := w.writeFile(f.name, f.data); err != nil {
			return err
		}
	}
	return nil
}

// Latest loads the most recently written report.
func (w *Writer) Latest() (model.Report, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, "latest.json"))
	if err != nil {
		return model.Report{}, fmt.Errorf("reading latest report: %w", err)
	}
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Report{}, fmt.Errorf("decoding latest report: %w", err)
	}
	return r, nil
}

func (w *Writer) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(w.dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("creating report temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing report temp file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(w.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
