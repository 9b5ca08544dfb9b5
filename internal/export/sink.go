package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/worldtransit-data/internal/common/db"
	"github.com/worldtransit-data/pkg/transport/models"
)

// odColumns matches the CSV contract column for column.
var odColumns = []string{
	"transport_type", "operator_name", "duration", "frequency_daily",
	"frequency_label", "origin_station", "destination_station",
	"origin_city", "destination_city", "origin_country", "destination_country",
}

const createSinkSchema = `CREATE SCHEMA IF NOT EXISTS transport`

const createSinkTable = `
CREATE TABLE IF NOT EXISTS transport.od_routes (
	transport_type      TEXT NOT NULL,
	operator_name       TEXT NOT NULL,
	duration            TEXT,
	frequency_daily     INTEGER,
	frequency_label     TEXT,
	origin_station      TEXT,
	destination_station TEXT,
	origin_city         TEXT,
	destination_city    TEXT,
	origin_country      TEXT,
	destination_country TEXT
)`

// PostgresSink bulk-inserts the combined dataset into transport.od_routes.
// Optional; the CSV file remains the primary output.
type PostgresSink struct {
	db        *db.DB
	batchSize int
}

func NewPostgresSink(database *db.DB) *PostgresSink {
	return &PostgresSink{
		db:        database,
		batchSize: 1000,
	}
}

// Store replaces the table contents with the given rows in one transaction.
func (s *PostgresSink) Store(ctx context.Context, records []models.ODRecord) error {
	if _, err := s.db.ExecContext(ctx, createSinkSchema); err != nil {
		return fmt.Errorf("ensuring sink schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createSinkTable); err != nil {
		return fmt.Errorf("ensuring sink table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("TRUNCATE transport.od_routes"); err != nil {
		return fmt.Errorf("truncating sink table: %w", err)
	}

	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := insertBatch(tx, records[start:end]); err != nil {
			return fmt.Errorf("inserting batch at %d: %w", start, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.db.Logger().Info("Combined dataset stored", "rows", len(records))
	return nil
}

func insertBatch(tx *sql.Tx, batch []models.ODRecord) error {
	if len(batch) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("INSERT INTO transport.od_routes (%s) VALUES ",
		strings.Join(odColumns, ", ")))

	values := make([]interface{}, 0, len(batch)*len(odColumns))
	for i, r := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < len(odColumns); j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("$%d", i*len(odColumns)+j+1))
		}
		sb.WriteString(")")

		values = append(values,
			r.TransportType, r.OperatorName, r.Duration, r.FrequencyDaily,
			r.FrequencyLabel, r.OriginStation, r.DestinationStation,
			r.OriginCity, r.DestinationCity, r.OriginCountry, r.DestinationCountry,
		)
	}

	_, err := tx.Exec(sb.String(), values...)
	return err
}
