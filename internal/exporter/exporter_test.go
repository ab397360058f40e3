package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lsforce/internal/config"
	"lsforce/internal/measurement"
)

func newTestTable(centered bool) *measurement.Table {
	start := time.Date(2024, 7, 1, 13, 45, 2, 0, time.UTC)
	rows := make([]measurement.Row, 3)
	forces := []float64{0.5, 2.25, 1}
	for i := range rows {
		rows[i] = measurement.Row{
			Index:           i,
			Timestamp:       start.Add(time.Duration(i) * time.Second),
			SecSinceStart:   float64(i),
			Force:           forces[i],
			ForceCentered:   forces[i] - 0.5,
			SensorID:        "4A:1C:22:F0:9A",
			MeasurementName: "M_0001",
			MeasurementID:   1,
			Unit:            "kN",
			Speed:           1,
			TimingFactor:    1,
		}
	}
	return &measurement.Table{Rows: rows, Centered: centered}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "kN", "kN"},
		{"int", 42, "42"},
		{"float exact", 2.25, "2.25"},
		{"float shortest round trip", 1.0 / 3.0, "0.3333333333333333"},
		{"bool", true, "true"},
		{"time", time.Date(2024, 7, 1, 13, 45, 2, 0, time.UTC), "2024-07-01 13:45:02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}

func TestTableColumns(t *testing.T) {
	cols := []string{measurement.ColID, measurement.ColForce}

	assert.Equal(t, cols, TableColumns(cols, newTestTable(false)))
	assert.Equal(t,
		[]string{measurement.ColID, measurement.ColForce, measurement.ColForceCentered},
		TableColumns(cols, newTestTable(true)))

	// Already listed: not appended twice.
	withCentered := append(cols, measurement.ColForceCentered)
	assert.Equal(t, withCentered, TableColumns(withCentered, newTestTable(true)))
}

func TestTableRecords(t *testing.T) {
	records := TableRecords(newTestTable(false), []string{
		measurement.ColID,
		measurement.ColSecSinceStart,
		measurement.ColForce,
		measurement.ColSensorID,
		"bogus",
	})

	require.Len(t, records, 3)
	assert.Equal(t, []string{"0", "0", "0.5", "4A:1C:22:F0:9A", ""}, records[0])
	assert.Equal(t, []string{"1", "1", "2.25", "4A:1C:22:F0:9A", ""}, records[1])
}

func TestMetadataRecords(t *testing.T) {
	records := MetadataRecords([]map[string]interface{}{
		{"measurement_name": "M_0001", "mean": 1.25},
		{"measurement_name": "M_0002"},
	}, []string{"measurement_name", "mean"})

	require.Len(t, records, 2)
	assert.Equal(t, []string{"M_0001", "1.25"}, records[0])
	assert.Equal(t, []string{"M_0002", ""}, records[1], "missing keys yield empty cells")
}

func TestExportTable(t *testing.T) {
	dir := t.TempDir()
	e := New(config.PathsConfig{OutputDir: dir}, nil)

	err := e.ExportTable("series/data.csv", newTestTable(true), []string{
		measurement.ColID,
		measurement.ColForce,
	})
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(dir, "series", "data.csv"))
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "force", "force_centered"}, records[0])
	assert.Equal(t, []string{"1", "2.25", "1.75"}, records[2])
}

func TestExportMetadata(t *testing.T) {
	dir := t.TempDir()
	e := New(config.PathsConfig{OutputDir: dir}, nil)

	err := e.ExportMetadata("metadata.csv", []map[string]interface{}{
		{"measurement_name": "M_0001", "length": 3},
	}, []string{"measurement_name", "length"})
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(dir, "metadata.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, []string{"measurement_name", "length"}, records[0])
	assert.Equal(t, []string{"M_0001", "3"}, records[1])
}

func TestWriteCSVAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(config.PathsConfig{OutputDir: dir})

	require.NoError(t, w.WriteSimpleCSV("log.csv", []string{"a", "b"}, [][]string{{"1", "2"}}))
	require.NoError(t, w.AppendToCSV("log.csv", [][]string{{"3", "4"}}))

	records := readCSV(t, filepath.Join(dir, "log.csv"))
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, records)
}

func TestExportWorkbook(t *testing.T) {
	dir := t.TempDir()
	e := New(config.PathsConfig{OutputDir: dir}, nil)

	cols := []string{
		measurement.ColID,
		measurement.ColSecSinceStart,
		measurement.ColForce,
	}
	metadata := []map[string]interface{}{
		{"measurement_name": "M_0001", "mean": 1.25},
	}

	err := e.ExportWorkbook("series.xlsx", "pull-test", newTestTable(true), cols, metadata, []string{"measurement_name", "mean"})
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(dir, "series.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Data", "Metadata"}, f.GetSheetList())

	got, err := f.GetCellValue(sheetData, "A1")
	require.NoError(t, err)
	assert.Equal(t, "id", got)

	// Centered table: the centered column is appended after the allow-list.
	got, err = f.GetCellValue(sheetData, "D1")
	require.NoError(t, err)
	assert.Equal(t, "force_centered", got)

	got, err = f.GetCellValue(sheetData, "C3")
	require.NoError(t, err)
	assert.Equal(t, "2.25", got)

	got, err = f.GetCellValue(sheetMetadata, "A2")
	require.NoError(t, err)
	assert.Equal(t, "M_0001", got)
}

func TestMeasurementSpans(t *testing.T) {
	tbl := &measurement.Table{Rows: []measurement.Row{
		{MeasurementName: "M_0001"},
		{MeasurementName: "M_0001"},
		{MeasurementName: "M_0002"},
		{MeasurementName: "M_0003"},
		{MeasurementName: "M_0003"},
	}}

	spans := measurementSpans(tbl)
	require.Len(t, spans, 3)
	assert.Equal(t, rowSpan{name: "M_0001", start: 0, end: 2}, spans[0])
	assert.Equal(t, rowSpan{name: "M_0002", start: 2, end: 3}, spans[1])
	assert.Equal(t, rowSpan{name: "M_0003", start: 3, end: 5}, spans[2])
}

func TestChartTitle(t *testing.T) {
	metadata := []map[string]interface{}{
		{
			measurement.ColMeasurementName: "M_0001",
			"max_value":                    5.0,
			measurement.KeyRelease:         11.0 / 3.0,
			measurement.KeyIntegral:        19.0,
			measurement.KeyIntegralUnit:    "kN·s",
		},
	}

	title := chartTitle("M_0001", metadata)
	assert.Contains(t, title, "M_0001")
	assert.Contains(t, title, "max=5")
	assert.Contains(t, title, "release=3.6666666666666665")
	assert.Contains(t, title, "integral=19 kN·s")

	assert.Equal(t, "M_0002", chartTitle("M_0002", metadata), "no metadata record: plain name")
}

func TestExportWorkbookWithoutPlottableColumns(t *testing.T) {
	dir := t.TempDir()
	e := New(config.PathsConfig{OutputDir: dir}, nil)

	// No sec_since_start column: the chart is skipped, the export succeeds.
	err := e.ExportWorkbook("plain.xlsx", "pull-test", newTestTable(false),
		[]string{measurement.ColID, measurement.ColForce}, nil, []string{"measurement_name"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "plain.xlsx"))
	assert.NoError(t, err)
}
