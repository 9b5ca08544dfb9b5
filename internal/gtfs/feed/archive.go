package feed

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/worldtransit-data/internal/common/logger"
)

// MissingTableError reports an absent table that the caller declared
// mandatory. Optional tables are simply read as empty.
type MissingTableError struct {
	Table string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("gtfs archive is missing mandatory table %s", e.Table)
}

// Archive is a decoded GTFS zip archive. Tables are read on demand and
// streamed row by row; nothing is retained between ReadTable calls.
type Archive struct {
	files  map[string]*zip.File
	repair TextRepairer
	logger logger.Logger
}

// OpenArchive wraps raw zip bytes. The repair function is applied to
// free-text fields fetched through Row.GetText; pass nil to disable.
func OpenArchive(raw []byte, repair TextRepairer, log logger.Logger) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	return &Archive{files: files, repair: repair, logger: log}, nil
}

// Has reports whether the archive contains the named table.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// Require returns a MissingTableError for the first absent mandatory table.
func (a *Archive) Require(names ...string) error {
	for _, name := range names {
		if !a.Has(name) {
			return &MissingTableError{Table: name}
		}
	}
	return nil
}

// ReadTable streams the named table through fn, one row at a time. An absent
// table yields zero rows and a nil error; callers decide whether absence is
// fatal via Require. Rows that fail CSV parsing are skipped, not fatal.
func (a *Archive) ReadTable(name string, fn func(row Row) error) error {
	zf, ok := a.files[name]
	if !ok {
		a.logger.Debug("Table not found in archive", "table", name)
		return nil
	}

	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	text := decodeTable(raw)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1 // variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s header: %w", name, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	count := 0
	dropped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		if err := fn(Row{record: record, index: index, repair: a.repair}); err != nil {
			return err
		}

		count++
		if count%100000 == 0 {
			a.logger.Debug("Progress", "table", name, "rows", count)
		}
	}

	if dropped > 0 {
		a.logger.Debug("Skipped malformed csv rows", "table", name, "rows", dropped)
	}
	a.logger.Debug("Table read", "table", name, "rows", count)

	return nil
}

// Row is one record of a table, addressed by column name.
type Row struct {
	record []string
	index  map[string]int
	repair TextRepairer
}

// NewRow builds a standalone row from a header and a record, outside any
// archive. Mainly useful for exercising row consumers directly.
func NewRow(header, record []string, repair TextRepairer) Row {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	return Row{record: record, index: index, repair: repair}
}

// Get returns the trimmed value of the named column, or "" when the column
// is absent from the header or the record is short.
func (r Row) Get(field string) string {
	if idx, ok := r.index[field]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

// GetText returns a free-text column with the archive's repair function
// applied. Use for station and agency names, not identifiers.
func (r Row) GetText(field string) string {
	v := r.Get(field)
	if v != "" && r.repair != nil {
		v = r.repair(v)
	}
	return v
}

// GetInt parses the named column as an integer.
func (r Row) GetInt(field string) (int, bool) {
	s := r.Get(field)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetFloat parses the named column as a float.
func (r Row) GetFloat(field string) (float64, bool) {
	s := r.Get(field)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
