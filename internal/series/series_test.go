package series

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lsforce/internal/config"
	"lsforce/internal/measurement"
)

// writeRecordFile writes a minimal gauge export with the given samples at
// the given sample rate.
func writeRecordFile(t *testing.T, dir, name string, speed int, forces []float64) {
	t.Helper()
	var b strings.Builder
	b.WriteString("AB:4A:1C:22:F0:9A\n")
	b.WriteString("01\\07\\24\n13:45:02\n")
	b.WriteString("Nr=1\nUnit=kN\nMode=ABS\nRelZero=0.00\n")
	fmt.Fprintf(&b, "Speed=%d\n", speed)
	b.WriteString("Trig=0.00\nStop=0.00\nPre=0\nCatch=0\n")
	fmt.Fprintf(&b, "Total=%d\n", len(forces))
	for _, f := range forces {
		fmt.Fprintf(&b, "%.3f\n", f)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0644))
}

func newTestSensor(t *testing.T) *Sensor {
	t.Helper()
	dir := t.TempDir()
	writeRecordFile(t, dir, "M_0001.CSV", 1, []float64{0, 1, 2})
	writeRecordFile(t, dir, "M_0002.CSV", 1, []float64{3, 4})

	s, err := NewSensor("4A:1C:22:F0:9A", dir, config.Default(), nil)
	require.NoError(t, err)
	return s
}

func TestNewSensorDiscoveryOrder(t *testing.T) {
	s := newTestSensor(t)

	require.Len(t, s.Measurements(), 2)
	assert.Equal(t, []string{"M_0001.CSV", "M_0002.CSV"}, s.FileNames())
	assert.Equal(t, "M_0001", s.Measurements()[0].Name())
	assert.Equal(t, "M_0002", s.Measurements()[1].Name())
}

func TestNewSensorSkipsUnparseableFiles(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "M_0001.CSV", 1, []float64{0, 1, 2})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "M_0002.CSV"), []byte("garbage\n"), 0644))

	s, err := NewSensor("S01", dir, config.Default(), nil)
	require.NoError(t, err)

	assert.Len(t, s.FileNames(), 2, "the broken file is still recorded as discovered")
	assert.Len(t, s.Measurements(), 1)
}

func TestNewSensorMissingDirectory(t *testing.T) {
	_, err := NewSensor("S01", filepath.Join(t.TempDir(), "absent"), config.Default(), nil)
	assert.Error(t, err)
}

func TestSensorTableConcatenation(t *testing.T) {
	s := newTestSensor(t)

	tbl, err := s.Table()
	require.NoError(t, err)
	require.Equal(t, 5, tbl.Len())

	// Rows keep discovery order: first measurement's samples, then the next.
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, tbl.Forces())
	assert.Equal(t, "M_0001", tbl.Rows[0].MeasurementName)
	assert.Equal(t, "M_0002", tbl.Rows[4].MeasurementName)
}

func TestSensorTableCachedAndReplaceable(t *testing.T) {
	s := newTestSensor(t)

	first, err := s.Table()
	require.NoError(t, err)
	second, err := s.Table()
	require.NoError(t, err)
	assert.Same(t, first, second)

	replacement := &measurement.Table{Rows: first.Rows[:2]}
	s.SetTable(replacement)
	got, err := s.Table()
	require.NoError(t, err)
	assert.Same(t, replacement, got)

	s.InvalidateTables()
	rebuilt, err := s.Table()
	require.NoError(t, err)
	assert.NotSame(t, replacement, rebuilt)
	assert.Equal(t, 5, rebuilt.Len())
}

func TestSensorMetadataTable(t *testing.T) {
	s := newTestSensor(t)

	records := s.MetadataTable()
	require.Len(t, records, 2)
	assert.Equal(t, "M_0001", records[0][measurement.ColMeasurementName])
	assert.Equal(t, "M_0002", records[1][measurement.ColMeasurementName])
	assert.Equal(t, 3, records[0][measurement.KeyLength])
	assert.Equal(t, 2, records[1][measurement.KeyLength])
}

func TestSensorApply(t *testing.T) {
	s := newTestSensor(t)

	results, err := s.Apply(measurement.InterceptOperation(0))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "M_0001", results[0].Measurement)
	assert.Equal(t, "4A:1C:22:F0:9A", results[0].Sensor)
	assert.Equal(t, "apply_force_intercept", results[0].Operation)
}

func TestSensorApplyPartialResults(t *testing.T) {
	s := newTestSensor(t)

	// Center only the first measurement, then run the integral over both:
	// the uncentered one fails its precondition and is skipped.
	require.NoError(t, s.Measurements()[0].ApplyForceIntercept(0))

	results, err := s.Apply(measurement.IntegralOperation())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "M_0001", results[0].Measurement)
	assert.InDelta(t, 3.0, results[0].Value, 1e-12)
}

func TestSensorApplyAllFailed(t *testing.T) {
	s := newTestSensor(t)

	_, err := s.Apply(measurement.IntegralOperation())
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestSensorIDFromDir(t *testing.T) {
	tests := []struct {
		name   string
		dir    string
		scheme string
		want   string
	}{
		{"mac scheme", "LS4A1C22F09A", "mac", "4A:1C:22:F0:9A"},
		{"mac scheme odd remainder", "LS4A1C2", "mac", "4A:1C:2"},
		{"mac scheme short name", "LS", "mac", "LS"},
		{"dir scheme verbatim", "LS4A1C22F09A", "dir", "LS4A1C22F09A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SensorIDFromDir(tt.dir, tt.scheme))
		})
	}
}

func newTestSeries(t *testing.T) *Series {
	t.Helper()
	root := t.TempDir()

	dirA := filepath.Join(root, "LS4A1C22F09A")
	require.NoError(t, os.Mkdir(dirA, 0755))
	writeRecordFile(t, dirA, "M_0001.CSV", 1, []float64{0, 1, 2})

	dirB := filepath.Join(root, "LSAABBCCDDEE")
	require.NoError(t, os.Mkdir(dirB, 0755))
	writeRecordFile(t, dirB, "M_0001.CSV", 1, []float64{3, 4})
	writeRecordFile(t, dirB, "M_0002.CSV", 1, []float64{5})

	sr, err := NewSeries("pull-test", root, config.Default(), nil)
	require.NoError(t, err)
	return sr
}

func TestNewSeriesSensorNaming(t *testing.T) {
	sr := newTestSeries(t)

	require.Len(t, sr.Sensors(), 2)
	assert.Equal(t, "4A:1C:22:F0:9A", sr.Sensors()[0].Name())
	assert.Equal(t, "AA:BB:CC:DD:EE", sr.Sensors()[1].Name())
	assert.Len(t, sr.Measurements(), 3)
}

func TestNewSeriesDirScheme(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "bench-left")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeRecordFile(t, dir, "M_0001.CSV", 1, []float64{1})

	cfg := config.Default()
	cfg.Naming.SensorIDScheme = "dir"

	sr, err := NewSeries("pull-test", root, cfg, nil)
	require.NoError(t, err)
	require.Len(t, sr.Sensors(), 1)
	assert.Equal(t, "bench-left", sr.Sensors()[0].Name())
}

func TestSeriesTableConcatenation(t *testing.T) {
	sr := newTestSeries(t)

	tbl, err := sr.Table()
	require.NoError(t, err)
	require.Equal(t, 6, tbl.Len())
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, tbl.Forces())
	assert.Equal(t, "4A:1C:22:F0:9A", tbl.Rows[0].SensorID)

	again, err := sr.Table()
	require.NoError(t, err)
	assert.Same(t, tbl, again)
}

func TestSeriesMetadataTable(t *testing.T) {
	sr := newTestSeries(t)

	records := sr.MetadataTable()
	require.Len(t, records, 3)
	assert.Equal(t, "4A:1C:22:F0:9A", records[0][measurement.ColSensorID])
	assert.Equal(t, "AA:BB:CC:DD:EE", records[1][measurement.ColSensorID])
}

func TestSeriesApply(t *testing.T) {
	sr := newTestSeries(t)

	results, err := sr.Apply(measurement.AutoInterceptOperation(measurement.InterceptSpec{
		IndexWindow: &[2]float64{0, 1},
		Method:      measurement.MethodMean,
	}))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.InDelta(t, 1.0, results[0].Value, 1e-12) // mean of 0,1,2
	assert.InDelta(t, 3.5, results[1].Value, 1e-12) // mean of 3,4
	assert.InDelta(t, 5.0, results[2].Value, 1e-12) // single sample

	// All measurements are now centered, so the integral succeeds for each.
	results, err = sr.Apply(measurement.IntegralOperation())
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSeriesApplyAllFailed(t *testing.T) {
	sr := newTestSeries(t)
	_, err := sr.Apply(measurement.IntegralOperation())
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestSeriesEmptyRoot(t *testing.T) {
	sr, err := NewSeries("empty", t.TempDir(), config.Default(), nil)
	require.NoError(t, err)
	assert.Empty(t, sr.Sensors())

	_, err = sr.Table()
	assert.Error(t, err)
	assert.Empty(t, sr.MetadataTable())
}
