package series

import (
	"log/slog"

	"lsforce/internal/config"
	apperrors "lsforce/internal/errors"
	"lsforce/internal/files"
	"lsforce/internal/measurement"
)

// Sensor represents one measuring device: the measurements parsed from the
// record files under its directory, plus lazily cached aggregates over them.
type Sensor struct {
	name string
	path string

	fileNames    []string
	measurements []*measurement.Measurement
	logger       *slog.Logger

	table         *measurement.Table
	metadataTable []map[string]interface{}
}

// NewSensor scans path (recursively) for record files and parses each into
// a Measurement. Files that fail to parse are logged and skipped; only an
// unreadable directory is fatal.
func NewSensor(name, path string, cfg *config.Config, logger *slog.Logger) (*Sensor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sensor{name: name, path: path, logger: logger}

	discovery := files.NewDiscovery(path)
	found, err := discovery.FindRecordFiles(".", cfg.Parser.Extension)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseFailed, "sensor "+name+": scan directory", err)
	}

	for _, f := range found {
		s.fileNames = append(s.fileNames, f.Name)
		m, err := measurement.ReadFile(f.Path, cfg, logger)
		if err != nil {
			logger.Warn("skipping unparseable record file",
				slog.String("sensor", name),
				slog.String("file", f.Path),
				slog.Any("error", err))
			continue
		}
		s.measurements = append(s.measurements, m)
	}

	logger.Info("sensor loaded",
		slog.String("sensor", name),
		slog.String("path", path),
		slog.Int("files", len(s.fileNames)),
		slog.Int("measurements", len(s.measurements)))
	return s, nil
}

// Name returns the sensor identifier.
func (s *Sensor) Name() string {
	return s.name
}

// Path returns the sensor's source directory.
func (s *Sensor) Path() string {
	return s.path
}

// FileNames returns the names of all discovered record files, including the
// ones that failed to parse.
func (s *Sensor) FileNames() []string {
	return s.fileNames
}

// Measurements returns the owned measurements in discovery order.
func (s *Sensor) Measurements() []*measurement.Measurement {
	return s.measurements
}

// Table returns the row-wise concatenation of all child measurement tables
// in discovery order, cached after the first call. Children whose table
// cannot be built are logged and skipped; the aggregate fails only when no
// child contributed any rows.
func (s *Sensor) Table() (*measurement.Table, error) {
	if s.table != nil {
		return s.table, nil
	}

	combined := &measurement.Table{}
	for _, m := range s.measurements {
		t, err := m.Table()
		if err != nil {
			s.logger.Warn("skipping measurement without table",
				slog.String("sensor", s.name),
				slog.String("measurement", m.Name()),
				slog.Any("error", err))
			continue
		}
		combined.Append(t)
	}

	if combined.Len() == 0 {
		return nil, apperrors.Newf(apperrors.CodeComputationFailed,
			"sensor %s: no measurement produced a table", s.name)
	}

	s.table = combined
	return s.table, nil
}

// SetTable replaces the cached aggregate table.
func (s *Sensor) SetTable(t *measurement.Table) {
	s.table = t
}

// MetadataTable returns one full-metadata record per owned measurement, in
// discovery order, cached after the first call.
func (s *Sensor) MetadataTable() []map[string]interface{} {
	if s.metadataTable != nil {
		return s.metadataTable
	}
	records := make([]map[string]interface{}, 0, len(s.measurements))
	for _, m := range s.measurements {
		records = append(records, m.FullMetadata())
	}
	s.metadataTable = records
	return s.metadataTable
}

// InvalidateTables clears the cached aggregates so the next access
// recomputes them from the children.
func (s *Sensor) InvalidateTables() {
	s.table = nil
	s.metadataTable = nil
}

// Apply runs the operation against every owned measurement in order,
// collecting the successful results paired with measurement identity.
// Individual failures are logged and skipped; when no measurement produced
// a result the batch itself is absent and ErrNoResults is returned.
func (s *Sensor) Apply(op measurement.Operation) ([]Result, error) {
	var results []Result
	for _, m := range s.measurements {
		value, err := op.Apply(m)
		if err != nil {
			s.logger.Warn("batch operation failed for measurement",
				slog.String("sensor", s.name),
				slog.String("measurement", m.Name()),
				slog.String("operation", op.Name),
				slog.Any("error", err))
			continue
		}
		results = append(results, Result{
			Sensor:      s.name,
			Measurement: m.Name(),
			Operation:   op.Name,
			Value:       value,
		})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}
