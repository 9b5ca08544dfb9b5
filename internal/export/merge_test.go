package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/worldtransit-data/internal/common/logger"
	"github.com/worldtransit-data/pkg/transport/models"
)

func testLogger() logger.Logger {
	return logger.New(io.Discard)
}

func record(operator, origin, dest string) models.ODRecord {
	return models.ODRecord{
		TransportType:      "bus",
		OperatorName:       operator,
		Duration:           "01:00",
		FrequencyDaily:     2,
		FrequencyLabel:     "Very Low (0-5)",
		OriginStation:      origin,
		DestinationStation: dest,
	}
}

func TestMergeDropsExactDuplicates(t *testing.T) {
	m := NewMerger(testLogger())

	a := []models.ODRecord{record("Op", "A", "B"), record("Op", "B", "A")}
	b := []models.ODRecord{record("Op", "A", "B"), record("Other", "A", "B")}

	merged := m.Merge(a, b)
	if len(merged) != 3 {
		t.Fatalf("got %d rows, want 3", len(merged))
	}
	if merged[0].OriginStation != "A" || merged[0].OperatorName != "Op" {
		t.Errorf("first-seen order not preserved: %+v", merged[0])
	}
}

func TestWriteCSVContract(t *testing.T) {
	m := NewMerger(testLogger())
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "world_bus.csv")

	if err := m.WriteCSV(path, []models.ODRecord{record("Op", "A", "B")}); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one row", len(lines))
	}

	wantHeader := "transport_type,operator_name,duration,frequency_daily,frequency_label," +
		"origin_station,destination_station,origin_city,destination_city,origin_country,destination_country"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if !strings.HasPrefix(lines[1], "bus,Op,01:00,2,") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestLoadVendorDir(t *testing.T) {
	m := NewMerger(testLogger())
	dir := t.TempDir()

	// Round-trip a written dataset as a vendor file.
	if err := m.WriteCSV(filepath.Join(dir, "alsa.csv"), []models.ODRecord{record("ALSA", "Madrid", "Sevilla")}); err != nil {
		t.Fatal(err)
	}
	// A malformed file is skipped, not fatal.
	if err := os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("not,a\nvalid\"csv"), 0644); err != nil {
		t.Fatal(err)
	}

	rows := m.LoadVendorDir(dir)
	if len(rows) != 1 {
		t.Fatalf("got %d vendor rows, want 1", len(rows))
	}
	if rows[0].OperatorName != "ALSA" || rows[0].OriginStation != "Madrid" {
		t.Errorf("vendor row = %+v", rows[0])
	}
}

func TestLoadVendorDirMissing(t *testing.T) {
	m := NewMerger(testLogger())
	if rows := m.LoadVendorDir(filepath.Join(t.TempDir(), "nope")); rows != nil {
		t.Errorf("missing dir yielded %d rows", len(rows))
	}
}
