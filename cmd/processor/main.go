// Command processor turns a directory tree of force-gauge CSV exports into
// processed series output: baseline-corrected force tables, per-measurement
// metadata, derived metrics and an Excel workbook with a force chart.
//
// The input layout is one subdirectory per sensor under the series root,
// each holding the gauge's raw CSV export files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"lsforce/internal/config"
	"lsforce/internal/exporter"
	"lsforce/internal/infrastructure"
	"lsforce/internal/measurement"
	"lsforce/internal/series"
)

// resultColumns is the header of the exported batch-results CSV.
var resultColumns = []string{"sensor_id", "measurement_name", "operation", "value"}

func main() {
	seriesDir := flag.String("series", "", "series root directory, one sensor subdirectory per device (required)")
	seriesName := flag.String("name", "", "series name (defaults to the root directory name)")
	outDir := flag.String("out", "", "output directory (overrides the configured one)")
	configFile := flag.String("config", "", "optional YAML configuration file")

	baselineIndex := flag.String("baseline-index", "0,0.1", "index window for the baseline estimate, as fractions 'p0,p1'")
	baselineTime := flag.String("baseline-time", "", "time window for the baseline estimate in seconds 'start,end' (overrides -baseline-index)")
	baselineMethod := flag.String("baseline-method", measurement.MethodMean, "baseline estimator: mean or median")

	defaults := measurement.DefaultReleaseParams()
	releaseMin := flag.Float64("release-min", defaults.MinForce, "minimum force for a sample to count towards the release window")
	releaseWindow := flag.Int("release-window", defaults.WindowSec, "release window length in seconds")
	releaseDistance := flag.Int("release-distance", defaults.DistanceToEndSec, "distance of the release window from the end, in seconds")

	workbook := flag.Bool("xlsx", true, "also write an Excel workbook with a force chart")
	flag.Parse()

	if *seriesDir == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -series")
		flag.Usage()
		os.Exit(2)
	}
	if *seriesName == "" {
		*seriesName = filepath.Base(filepath.Clean(*seriesDir))
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger = logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("series", *seriesName))
	slog.SetDefault(logger)

	spec := measurement.InterceptSpec{Method: *baselineMethod}
	if *baselineTime != "" {
		window, err := parseWindow(*baselineTime)
		if err != nil {
			logger.Error("Invalid -baseline-time", "error", err)
			os.Exit(2)
		}
		spec.TimeWindow = window
	} else {
		window, err := parseWindow(*baselineIndex)
		if err != nil {
			logger.Error("Invalid -baseline-index", "error", err)
			os.Exit(2)
		}
		spec.IndexWindow = window
	}

	releaseParams := measurement.ReleaseParams{
		MinForce:         *releaseMin,
		WindowSec:        *releaseWindow,
		DistanceToEndSec: *releaseDistance,
	}

	logger.Info("Starting series processing",
		slog.String("input_dir", *seriesDir),
		slog.String("output_dir", cfg.Paths.OutputDir))

	sr, err := series.NewSeries(*seriesName, *seriesDir, cfg, logger)
	if err != nil {
		logger.Error("Failed to load series", "error", err)
		os.Exit(1)
	}
	if len(sr.Measurements()) == 0 {
		logger.Error("No measurements found under series root",
			slog.String("input_dir", *seriesDir),
			slog.String("extension", cfg.Parser.Extension))
		os.Exit(1)
	}

	results := runOperations(logger, sr, spec, releaseParams)

	if err := exportSeries(cfg, logger, sr, results, *workbook); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Series processing complete",
		slog.Int("sensors", len(sr.Sensors())),
		slog.Int("measurements", len(sr.Measurements())),
		slog.Int("results", len(results)))
}

// runOperations applies the processing chain to every measurement of the
// series: baseline correction first, then the integral over the corrected
// force and the release force. Per-measurement failures are logged inside
// the batch application; a fully absent result set aborts only the
// operations that depend on it.
func runOperations(logger *slog.Logger, sr *series.Series, spec measurement.InterceptSpec, release measurement.ReleaseParams) []series.Result {
	var results []series.Result

	ops := []measurement.Operation{
		measurement.AutoInterceptOperation(spec),
		measurement.IntegralOperation(),
		measurement.ReleaseOperation(release),
	}
	for _, op := range ops {
		part, err := sr.Apply(op)
		if err != nil {
			if errors.Is(err, series.ErrNoResults) {
				logger.Warn("operation produced no results",
					slog.String("operation", op.Name))
				continue
			}
			logger.Error("operation failed",
				slog.String("operation", op.Name),
				slog.Any("error", err))
			continue
		}
		results = append(results, part...)
	}
	return results
}

// exportSeries writes the processed output below the configured output
// directory: the aggregated force table, the per-measurement metadata, the
// batch results, one table per sensor, and optionally an Excel workbook.
func exportSeries(cfg *config.Config, logger *slog.Logger, sr *series.Series, results []series.Result, workbook bool) error {
	e := exporter.New(cfg.Paths, logger)
	base := sr.Name()
	metaCols := measurement.MetadataColumnsFor(cfg.Columns)

	tbl, err := sr.Table()
	if err != nil {
		return fmt.Errorf("aggregate series table: %w", err)
	}
	if err := e.ExportTable(filepath.Join(base, "data.csv"), tbl, cfg.Columns.DFCols); err != nil {
		return err
	}
	if err := e.ExportMetadata(filepath.Join(base, "metadata.csv"), sr.MetadataTable(), metaCols); err != nil {
		return err
	}

	records := make([][]string, 0, len(results))
	for _, r := range results {
		records = append(records, []string{
			r.Sensor,
			r.Measurement,
			r.Operation,
			strconv.FormatFloat(r.Value, 'g', -1, 64),
		})
	}
	if err := exportResults(e, filepath.Join(base, "results.csv"), records); err != nil {
		return err
	}

	for _, sensor := range sr.Sensors() {
		st, err := sensor.Table()
		if err != nil {
			logger.Warn("skipping sensor export",
				slog.String("sensor", sensor.Name()),
				slog.Any("error", err))
			continue
		}
		dir := filepath.Join(base, "sensors", sensorDirName(sensor.Name()))
		if err := e.ExportTable(filepath.Join(dir, "data.csv"), st, cfg.Columns.DFCols); err != nil {
			return err
		}
		if err := e.ExportMetadata(filepath.Join(dir, "metadata.csv"), sensor.MetadataTable(), metaCols); err != nil {
			return err
		}
	}

	if workbook {
		path := filepath.Join(base, base+".xlsx")
		if err := e.ExportWorkbook(path, sr.Name(), tbl, cfg.Columns.DFCols, sr.MetadataTable(), metaCols); err != nil {
			return err
		}
	}
	return nil
}

func exportResults(e *exporter.Exporter, path string, records [][]string) error {
	metadata := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		md := make(map[string]interface{}, len(resultColumns))
		for i, col := range resultColumns {
			md[col] = rec[i]
		}
		metadata = append(metadata, md)
	}
	return e.ExportMetadata(path, metadata, resultColumns)
}

// sensorDirName makes a sensor id safe to use as a directory name.
func sensorDirName(id string) string {
	return strings.ReplaceAll(id, ":", "")
}

// parseWindow parses a "low,high" pair of floats.
func parseWindow(s string) (*[2]float64, error) {
	lowStr, highStr, found := strings.Cut(s, ",")
	if !found {
		return nil, fmt.Errorf("expected 'low,high', got %q", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lowStr), 64)
	if err != nil {
		return nil, fmt.Errorf("window lower bound: %w", err)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(highStr), 64)
	if err != nil {
		return nil, fmt.Errorf("window upper bound: %w", err)
	}
	return &[2]float64{low, high}, nil
}
