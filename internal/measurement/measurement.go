package measurement

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"lsforce/internal/config"
	"lsforce/internal/record"
)

// Optional metadata keys populated by the derived-metric calculations.
const (
	KeyIntercept    = "intercept"
	KeyIntegral     = "integral"
	KeyIntegralUnit = "integral_unit"
	KeyRelease      = "release"
)

// Measurement wraps one parsed gauge record and derives its force table and
// metrics. Instances are exclusively owned by a single caller; no internal
// locking is performed.
type Measurement struct {
	name         string
	rec          *record.RawRecord
	columns      config.ColumnsConfig
	timingFactor float64
	logger       *slog.Logger

	table  *Table
	edited *Table

	intercept        float64
	interceptApplied bool
	optional         map[string]interface{}
}

// New creates a Measurement over an already parsed record. The configuration
// supplies the column allow-lists and the timing factor; a nil logger falls
// back to slog.Default().
func New(name string, rec *record.RawRecord, cfg *config.Config, logger *slog.Logger) *Measurement {
	if logger == nil {
		logger = slog.Default()
	}
	return &Measurement{
		name:         name,
		rec:          rec,
		columns:      cfg.Columns,
		timingFactor: cfg.Parser.TimingFactor,
		logger:       logger,
		optional:     make(map[string]interface{}),
	}
}

// ReadFile parses one gauge export and wraps it in a Measurement. The
// measurement name is the file stem. A parse failure is returned to the
// caller, which is expected to log it and skip the file.
func ReadFile(path string, cfg *config.Config, logger *slog.Logger) (*Measurement, error) {
	rec, err := record.ParseFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, rec, cfg, logger), nil
}

// Name returns the measurement name (source file stem).
func (m *Measurement) Name() string {
	return m.name
}

// Record returns the underlying raw record.
func (m *Measurement) Record() *record.RawRecord {
	return m.rec
}

// Intercept returns the currently stored force intercept. It is zero until
// a baseline correction has been applied.
func (m *Measurement) Intercept() float64 {
	return m.intercept
}

// Table returns the measurement's time-indexed force table, building and
// caching it on first access. Construction fails when the record carries no
// samples or a non-positive sampling rate.
func (m *Measurement) Table() (*Table, error) {
	if m.table != nil {
		return m.table, nil
	}

	if err := m.rec.Validate(); err != nil {
		m.logger.Error("failed to build measurement table",
			slog.String("measurement", m.name),
			slog.String("sensor_id", m.rec.SensorID),
			slog.Any("error", err))
		return nil, fmt.Errorf("measurement %s: build table: %w", m.name, err)
	}

	step := m.timingFactor / float64(m.rec.Speed)
	rows := make([]Row, len(m.rec.Force))
	for i, force := range m.rec.Force {
		ts := m.rec.Start.Add(time.Duration(float64(i) * step * float64(time.Second)))
		rows[i] = Row{
			Index:           i,
			Timestamp:       ts,
			SecSinceStart:   ts.Sub(m.rec.Start).Seconds(),
			Force:           force,
			SensorID:        m.rec.SensorID,
			MeasurementName: m.name,
			MeasurementID:   m.rec.MeasurementID,
			Unit:            m.rec.Unit,
			Mode:            m.rec.Mode,
			RelZero:         m.rec.RelZero,
			Speed:           m.rec.Speed,
			Trig:            m.rec.Trig,
			Stop:            m.rec.Stop,
			Pre:             m.rec.Pre,
			Catch:           m.rec.Catch,
			Total:           m.rec.Total,
			TimingFactor:    m.timingFactor,
		}
	}

	m.table = &Table{Rows: rows}
	return m.table, nil
}

// SetTable replaces the cached table wholesale. The edited table is not
// touched; callers running correction workflows against a replaced table
// should rebuild it via InvalidateEdited.
func (m *Measurement) SetTable(t *Table) {
	m.table = t
}

// Edited returns the edited table, a lazily created copy of the base table
// used by the baseline-correction workflow.
func (m *Measurement) Edited() (*Table, error) {
	if m.edited != nil {
		return m.edited, nil
	}
	t, err := m.Table()
	if err != nil {
		return nil, err
	}
	m.edited = t.Clone()
	return m.edited, nil
}

// InvalidateEdited drops the edited table and the stored intercept so the
// next correction starts from a fresh copy of the base table.
func (m *Measurement) InvalidateEdited() {
	m.edited = nil
	m.intercept = 0
	m.interceptApplied = false
}

// DFColumns returns the configured column allow-list for exported tables.
func (m *Measurement) DFColumns() []string {
	return m.columns.DFCols
}

// setOptional stores a derived metric under its optional-metadata key when
// the key is part of the configured allow-list.
func (m *Measurement) setOptional(key string, value interface{}) {
	if !config.Has(m.columns.OptionalMetadataCols, key) {
		return
	}
	m.optional[key] = value
}
