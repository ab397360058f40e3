package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"lsforce/internal/measurement"
)

// Sheet names of exported workbooks.
const (
	sheetData     = "Data"
	sheetMetadata = "Metadata"
)

// ExportWorkbook writes an Excel workbook with the table on one sheet, the
// metadata records on another, and a force-over-time line chart next to the
// data. The chart plots the centered force when the table has been
// baseline-corrected, the raw force otherwise.
func (e *Exporter) ExportWorkbook(filePath, title string, t *measurement.Table, cols []string, metadata []map[string]interface{}, metaCols []string) error {
	cols = TableColumns(cols, t)
	fullPath := e.writer.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{Title: title}); err != nil {
		return fmt.Errorf("failed to set workbook title: %w", err)
	}
	if err := f.SetSheetName("Sheet1", sheetData); err != nil {
		return fmt.Errorf("failed to rename data sheet: %w", err)
	}
	if err := writeDataSheet(f, t, cols); err != nil {
		return err
	}
	if err := writeMetadataSheet(f, metadata, metaCols); err != nil {
		return err
	}
	if err := addForceCharts(f, t, cols, metadata); err != nil {
		return err
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("workbook exported",
		slog.String("file", filePath),
		slog.Int("rows", t.Len()),
		slog.Int("metadata_records", len(metadata)))
	return nil
}

func writeDataSheet(f *excelize.File, t *measurement.Table, cols []string) error {
	header := make([]interface{}, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetData, "A1", &header); err != nil {
		return fmt.Errorf("failed to write data header: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(cols))
		for j, col := range cols {
			if v, ok := row.Value(col); ok {
				values[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetData, cell, &values); err != nil {
			return fmt.Errorf("failed to write data row %d: %w", i, err)
		}
	}
	return nil
}

func writeMetadataSheet(f *excelize.File, records []map[string]interface{}, cols []string) error {
	if _, err := f.NewSheet(sheetMetadata); err != nil {
		return fmt.Errorf("failed to create metadata sheet: %w", err)
	}

	header := make([]interface{}, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetMetadata, "A1", &header); err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}

	for i, md := range records {
		values := make([]interface{}, len(cols))
		for j, col := range cols {
			if v, ok := md[col]; ok {
				values[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetMetadata, cell, &values); err != nil {
			return fmt.Errorf("failed to write metadata row %d: %w", i, err)
		}
	}
	return nil
}

// chartRowSpan is the vertical spacing of stacked charts in sheet rows.
const chartRowSpan = 16

// addForceCharts adds one line chart of force over elapsed seconds per
// measurement in the table, annotated with the measurement's max, release
// and integral values where the metadata carries them. Charts are silently
// skipped when the export's column list carries no time or force column to
// plot.
func addForceCharts(f *excelize.File, t *measurement.Table, cols []string, metadata []map[string]interface{}) error {
	forceCol := measurement.ColForce
	if t.Centered {
		forceCol = measurement.ColForceCentered
	}
	forceIdx := indexOf(cols, forceCol)
	timeIdx := indexOf(cols, measurement.ColSecSinceStart)
	if forceIdx < 0 || timeIdx < 0 || t.Len() == 0 {
		return nil
	}

	forceName, err := excelize.ColumnNumberToName(forceIdx + 1)
	if err != nil {
		return err
	}
	timeName, err := excelize.ColumnNumberToName(timeIdx + 1)
	if err != nil {
		return err
	}

	for i, span := range measurementSpans(t) {
		anchor, err := excelize.CoordinatesToCellName(len(cols)+2, 2+i*chartRowSpan)
		if err != nil {
			return err
		}

		// Data rows start at sheet row 2; spans are zero-based row indexes.
		firstRow := span.start + 2
		lastRow := span.end + 1

		chart := &excelize.Chart{
			Type:  excelize.Line,
			Title: []excelize.RichTextRun{{Text: chartTitle(span.name, metadata)}},
			Series: []excelize.ChartSeries{
				{
					Name:       span.name,
					Categories: fmt.Sprintf("%s!$%s$%d:$%s$%d", sheetData, timeName, firstRow, timeName, lastRow),
					Values:     fmt.Sprintf("%s!$%s$%d:$%s$%d", sheetData, forceName, firstRow, forceName, lastRow),
				},
			},
			XAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: measurement.ColSecSinceStart}}},
			YAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: rowUnit(t)}}},
		}
		if err := f.AddChart(sheetData, anchor, chart); err != nil {
			return fmt.Errorf("failed to add force chart for %s: %w", span.name, err)
		}
	}
	return nil
}

// rowSpan is a contiguous run of table rows belonging to one measurement.
type rowSpan struct {
	name       string
	start, end int // zero-based, end exclusive
}

// measurementSpans splits the concatenated table back into per-measurement
// row ranges. Concatenation preserves discovery order, so each measurement
// occupies one contiguous run.
func measurementSpans(t *measurement.Table) []rowSpan {
	var spans []rowSpan
	for i, row := range t.Rows {
		if len(spans) == 0 || spans[len(spans)-1].name != row.MeasurementName {
			spans = append(spans, rowSpan{name: row.MeasurementName, start: i})
		}
		spans[len(spans)-1].end = i + 1
	}
	return spans
}

// chartTitle annotates the measurement name with its derived scalars when
// the metadata records carry them.
func chartTitle(name string, metadata []map[string]interface{}) string {
	for _, md := range metadata {
		if md[measurement.ColMeasurementName] != name {
			continue
		}
		title := name
		if v, ok := md["max_value"]; ok {
			title += fmt.Sprintf("  max=%s", formatValue(v))
		}
		if v, ok := md[measurement.KeyRelease]; ok {
			title += fmt.Sprintf("  release=%s", formatValue(v))
		}
		if v, ok := md[measurement.KeyIntegral]; ok {
			title += fmt.Sprintf("  integral=%s", formatValue(v))
			if u, ok := md[measurement.KeyIntegralUnit]; ok {
				title += fmt.Sprintf(" %s", u)
			}
		}
		return title
	}
	return name
}

// rowUnit returns the unit broadcast on the table's rows.
func rowUnit(t *measurement.Table) string {
	if t.Len() == 0 {
		return ""
	}
	return t.Rows[0].Unit
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
