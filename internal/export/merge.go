package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/worldtransit-data/internal/common/logger"
	"github.com/worldtransit-data/pkg/transport/models"
)

// Merger unions connector outputs with any vendor-supplied static files and
// writes one combined tabular dataset.
type Merger struct {
	logger logger.Logger
}

func NewMerger(log logger.Logger) *Merger {
	// Vendor files come from many tools; don't insist on a fixed column
	// count per record.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	return &Merger{logger: log}
}

// Merge concatenates row sets and drops exact duplicate rows, keeping
// first-seen order.
func (m *Merger) Merge(frames ...[]models.ODRecord) []models.ODRecord {
	var total int
	for _, f := range frames {
		total += len(f)
	}

	seen := make(map[models.ODRecord]struct{}, total)
	out := make([]models.ODRecord, 0, total)
	for _, frame := range frames {
		for _, r := range frame {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// LoadVendorDir reads every *.csv in dir as ODRecord rows. A missing
// directory or an unreadable file is logged and skipped; vendor data is a
// bonus, never a build blocker.
func (m *Merger) LoadVendorDir(dir string) []models.ODRecord {
	entries, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil || len(entries) == 0 {
		m.logger.Debug("No vendor datasets found", "dir", dir)
		return nil
	}

	var out []models.ODRecord
	for _, path := range entries {
		f, err := os.Open(path)
		if err != nil {
			m.logger.Warn("Skipping unreadable vendor file", "path", path, "error", err)
			continue
		}

		var rows []models.ODRecord
		err = gocsv.Unmarshal(f, &rows)
		f.Close()
		if err != nil {
			m.logger.Warn("Skipping malformed vendor file", "path", path, "error", err)
			continue
		}

		m.logger.Info("Added vendor dataset", "path", path, "rows", len(rows))
		out = append(out, rows...)
	}
	return out
}

// WriteCSV writes the combined dataset, creating the output directory as
// needed.
func (m *Merger) WriteCSV(path string, records []models.ODRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(&records, f); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	m.logger.Info("Combined dataset written", "path", path, "rows", len(records))
	return nil
}
