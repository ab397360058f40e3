package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lsforce/internal/config"
	"lsforce/internal/measurement"
	"lsforce/internal/series"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [2]float64
		wantErr bool
	}{
		{"fractions", "0,0.1", [2]float64{0, 0.1}, false},
		{"seconds with spaces", "1.5, 30", [2]float64{1.5, 30}, false},
		{"missing comma", "0.1", [2]float64{}, true},
		{"non-numeric low", "x,1", [2]float64{}, true},
		{"non-numeric high", "0,y", [2]float64{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWindow(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestSensorDirName(t *testing.T) {
	assert.Equal(t, "4A1C22F09A", sensorDirName("4A:1C:22:F0:9A"))
	assert.Equal(t, "bench-left", sensorDirName("bench-left"))
}

func writeRecordFile(t *testing.T, dir, name string, forces []float64) {
	t.Helper()
	var b strings.Builder
	b.WriteString("AB:4A:1C:22:F0:9A\n01\\07\\24\n13:45:02\n")
	b.WriteString("Nr=1\nUnit=kN\nMode=ABS\nRelZero=0.00\nSpeed=1\n")
	b.WriteString("Trig=0.00\nStop=0.00\nPre=0\nCatch=0\n")
	fmt.Fprintf(&b, "Total=%d\n", len(forces))
	for _, f := range forces {
		fmt.Fprintf(&b, "%.3f\n", f)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0644))
}

func TestProcessAndExportSeries(t *testing.T) {
	root := t.TempDir()
	sensorDir := filepath.Join(root, "LS4A1C22F09A")
	require.NoError(t, os.Mkdir(sensorDir, 0755))
	writeRecordFile(t, sensorDir, "M_0001.CSV", []float64{0, 0.5, 1, 2, 3, 4, 5, 2, 1, 0.5})

	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()

	sr, err := series.NewSeries("pull-test", root, cfg, nil)
	require.NoError(t, err)
	require.Len(t, sr.Measurements(), 1)

	results := runOperations(slog.Default(), sr, measurement.InterceptSpec{
		IndexWindow: &[2]float64{0, 0.2},
		Method:      measurement.MethodMean,
	}, measurement.ReleaseParams{MinForce: 0.6, WindowSec: 3, DistanceToEndSec: 1})

	// One result per operation: baseline, integral, release.
	require.Len(t, results, 3)
	assert.Equal(t, "auto_force_intercept", results[0].Operation)
	assert.InDelta(t, 0.25, results[0].Value, 1e-12) // mean of the first two samples
	assert.Equal(t, "force_integral", results[1].Operation)
	assert.Equal(t, "release_force", results[2].Operation)
	assert.InDelta(t, 11.0/3.0, results[2].Value, 1e-12)

	require.NoError(t, exportSeries(cfg, slog.Default(), sr, results, true))

	base := filepath.Join(cfg.Paths.OutputDir, "pull-test")
	for _, f := range []string{
		"data.csv",
		"metadata.csv",
		"results.csv",
		filepath.Join("sensors", "4A1C22F09A", "data.csv"),
		filepath.Join("sensors", "4A1C22F09A", "metadata.csv"),
		"pull-test.xlsx",
	} {
		_, err := os.Stat(filepath.Join(base, f))
		assert.NoError(t, err, "expected output file %s", f)
	}
}
