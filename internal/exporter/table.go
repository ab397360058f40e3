package exporter

import (
	"fmt"
	"log/slog"

	"lsforce/internal/config"
	"lsforce/internal/measurement"
)

// Exporter flattens force tables and metadata records into files under the
// configured output directory.
type Exporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// New creates an Exporter writing below paths.OutputDir. A nil logger falls
// back to slog.Default().
func New(paths config.PathsConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		writer: NewCSVWriter(paths),
		logger: logger,
	}
}

// TableColumns returns the effective column list for a table export: the
// configured allow-list, plus the centered-force column when the table has
// been baseline-corrected.
func TableColumns(cols []string, t *measurement.Table) []string {
	if t == nil || !t.Centered || config.Has(cols, measurement.ColForceCentered) {
		return cols
	}
	out := make([]string, 0, len(cols)+1)
	out = append(out, cols...)
	return append(out, measurement.ColForceCentered)
}

// TableRecords flattens the table into one string record per row, keeping
// the given column order. Unknown column names yield empty cells.
func TableRecords(t *measurement.Table, cols []string) [][]string {
	records := make([][]string, 0, t.Len())
	for _, row := range t.Rows {
		rec := make([]string, len(cols))
		for i, col := range cols {
			if v, ok := row.Value(col); ok {
				rec[i] = formatValue(v)
			}
		}
		records = append(records, rec)
	}
	return records
}

// MetadataRecords flattens metadata maps into string records, keeping the
// given column order. Keys absent from a record yield empty cells.
func MetadataRecords(records []map[string]interface{}, cols []string) [][]string {
	out := make([][]string, 0, len(records))
	for _, md := range records {
		rec := make([]string, len(cols))
		for i, col := range cols {
			if v, ok := md[col]; ok {
				rec[i] = formatValue(v)
			}
		}
		out = append(out, rec)
	}
	return out
}

// ExportTable streams the table to a CSV file, one record per sample row.
func (e *Exporter) ExportTable(filePath string, t *measurement.Table, cols []string) error {
	cols = TableColumns(cols, t)

	stream, err := e.writer.CreateStreamWriter(filePath, cols)
	if err != nil {
		return err
	}

	for _, row := range t.Rows {
		rec := make([]string, len(cols))
		for i, col := range cols {
			if v, ok := row.Value(col); ok {
				rec[i] = formatValue(v)
			}
		}
		if err := stream.WriteRecord(rec); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}

	if err := stream.Close(); err != nil {
		return err
	}

	e.logger.Info("table exported",
		slog.String("file", filePath),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(cols)))
	return nil
}

// ExportMetadata writes one CSV record per metadata map.
func (e *Exporter) ExportMetadata(filePath string, records []map[string]interface{}, cols []string) error {
	if err := e.writer.WriteSimpleCSV(filePath, cols, MetadataRecords(records, cols)); err != nil {
		return err
	}

	e.logger.Info("metadata exported",
		slog.String("file", filePath),
		slog.Int("records", len(records)))
	return nil
}
