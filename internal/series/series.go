package series

import (
	"log/slog"

	"lsforce/internal/config"
	apperrors "lsforce/internal/errors"
	"lsforce/internal/files"
	"lsforce/internal/measurement"
)

// Series represents one test campaign: a named collection of sensors, each
// built from a subdirectory of the series root.
type Series struct {
	name string
	path string

	sensors []*Sensor
	logger  *slog.Logger

	table         *measurement.Table
	metadataTable []map[string]interface{}
}

// NewSeries enumerates the immediate subdirectories of root and builds one
// Sensor per directory, deriving each sensor's identifier from the
// directory name under the configured naming scheme. Directories whose
// sensor fails to construct are logged and skipped.
func NewSeries(name, root string, cfg *config.Config, logger *slog.Logger) (*Series, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sr := &Series{name: name, path: root, logger: logger}

	discovery := files.NewDiscovery(root)
	dirs, err := discovery.ListDirectories(".")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseFailed, "series "+name+": list sensor directories", err)
	}

	for _, d := range dirs {
		sensorID := SensorIDFromDir(d.Name, cfg.Naming.SensorIDScheme)
		sensor, err := NewSensor(sensorID, d.Path, cfg, logger)
		if err != nil {
			logger.Warn("skipping sensor directory",
				slog.String("series", name),
				slog.String("dir", d.Path),
				slog.Any("error", err))
			continue
		}
		sr.sensors = append(sr.sensors, sensor)
	}

	logger.Info("series loaded",
		slog.String("series", name),
		slog.String("path", root),
		slog.Int("sensors", len(sr.sensors)))
	return sr, nil
}

// Name returns the series name.
func (sr *Series) Name() string {
	return sr.name
}

// Path returns the series root directory.
func (sr *Series) Path() string {
	return sr.path
}

// Sensors returns the owned sensors in directory order.
func (sr *Series) Sensors() []*Sensor {
	return sr.sensors
}

// Measurements returns every measurement in the series, flattened in
// sensor-then-discovery order.
func (sr *Series) Measurements() []*measurement.Measurement {
	var all []*measurement.Measurement
	for _, s := range sr.sensors {
		all = append(all, s.measurements...)
	}
	return all
}

// Table returns the row-wise concatenation of all sensor tables in
// directory order, cached after the first call. Sensors whose table cannot
// be built are logged and skipped; the aggregate fails only when no sensor
// contributed any rows.
func (sr *Series) Table() (*measurement.Table, error) {
	if sr.table != nil {
		return sr.table, nil
	}

	combined := &measurement.Table{}
	for _, s := range sr.sensors {
		t, err := s.Table()
		if err != nil {
			sr.logger.Warn("skipping sensor without table",
				slog.String("series", sr.name),
				slog.String("sensor", s.Name()),
				slog.Any("error", err))
			continue
		}
		combined.Append(t)
	}

	if combined.Len() == 0 {
		return nil, apperrors.Newf(apperrors.CodeComputationFailed,
			"series %s: no sensor produced a table", sr.name)
	}

	sr.table = combined
	return sr.table, nil
}

// SetTable replaces the cached aggregate table.
func (sr *Series) SetTable(t *measurement.Table) {
	sr.table = t
}

// MetadataTable returns the concatenation of all sensor metadata tables in
// directory order, cached after the first call.
func (sr *Series) MetadataTable() []map[string]interface{} {
	if sr.metadataTable != nil {
		return sr.metadataTable
	}
	var records []map[string]interface{}
	for _, s := range sr.sensors {
		records = append(records, s.MetadataTable()...)
	}
	sr.metadataTable = records
	return sr.metadataTable
}

// InvalidateTables clears the cached aggregates on the series itself. The
// sensors keep their own caches; invalidate them individually when their
// children changed.
func (sr *Series) InvalidateTables() {
	sr.table = nil
	sr.metadataTable = nil
}

// Apply runs the operation against every measurement of every sensor,
// collecting the successful results. Per-sensor absence is tolerated; when
// no sensor produced any result ErrNoResults is returned.
func (sr *Series) Apply(op measurement.Operation) ([]Result, error) {
	var results []Result
	for _, s := range sr.sensors {
		part, err := s.Apply(op)
		if err != nil {
			sr.logger.Warn("batch operation produced no results for sensor",
				slog.String("series", sr.name),
				slog.String("sensor", s.Name()),
				slog.String("operation", op.Name))
			continue
		}
		results = append(results, part...)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}
