package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"feedbacktriage/internal/models"
)

// ReadRows parses a CSV file into header-keyed rows.
func ReadRows(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadFile reads and normalizes one source file. Rows failing schema
// validation are logged and counted as skipped, never fatal to the batch.
func LoadFile(path string, source models.SourceType, logger *zap.Logger) ([]models.FeedbackRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	var records []models.FeedbackRecord
	skipped := 0
	for i, row := range rows {
		rec, err := Normalize(row, source)
		if err != nil {
			skipped++
			var schemaErr *SchemaError
			if errors.As(err, &schemaErr) {
				logger.Warn("skipping row with invalid schema",
					zap.String("file", path),
					zap.Int("row", i+1),
					zap.String("column", schemaErr.Column))
			} else {
				logger.Warn("skipping unparseable row",
					zap.String("file", path),
					zap.Int("row", i+1),
					zap.Error(err))
			}
			continue
		}
		records = append(records, rec)
	}

	logger.Info("loaded input file",
		zap.String("file", path),
		zap.String("source_type", string(source)),
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped))
	return records, skipped, nil
}
