package measurement

import (
	"time"
)

// Column names carried by measurement tables. DFCols in the configuration
// selects which of these an exported table exposes; the full set is always
// computed internally.
const (
	ColID              = "id"
	ColDatetime        = "datetime"
	ColSecSinceStart   = "sec_since_start"
	ColForce           = "force"
	ColForceCentered   = "force_centered"
	ColSensorID        = "sensor_id"
	ColMeasurementName = "measurement_name"
	ColMeasurementID   = "measurement_id"
	ColUnit            = "unit"
	ColMode            = "mode"
	ColRelZero         = "rel_zero"
	ColSpeed           = "speed"
	ColTrig            = "trig"
	ColStop            = "stop"
	ColPre             = "pre"
	ColCatch           = "catch"
	ColTotal           = "total"
	ColTimingFactor    = "timing_factor"
)

// Row is one sample of a measurement table: the per-sample values plus the
// run header broadcast to every row.
type Row struct {
	Index         int
	Timestamp     time.Time
	SecSinceStart float64
	Force         float64
	// ForceCentered is only meaningful on tables whose Centered flag is
	// set, i.e. after a baseline correction.
	ForceCentered float64

	SensorID        string
	MeasurementName string
	MeasurementID   int
	Unit            string
	Mode            string
	RelZero         string
	Speed           int
	Trig            float64
	Stop            float64
	Pre             int
	Catch           int
	Total           int
	TimingFactor    float64
}

// Value returns the named column of the row. The second return is false for
// unknown column names.
func (r Row) Value(col string) (interface{}, bool) {
	switch col {
	case ColID:
		return r.Index, true
	case ColDatetime:
		return r.Timestamp, true
	case ColSecSinceStart:
		return r.SecSinceStart, true
	case ColForce:
		return r.Force, true
	case ColForceCentered:
		return r.ForceCentered, true
	case ColSensorID:
		return r.SensorID, true
	case ColMeasurementName:
		return r.MeasurementName, true
	case ColMeasurementID:
		return r.MeasurementID, true
	case ColUnit:
		return r.Unit, true
	case ColMode:
		return r.Mode, true
	case ColRelZero:
		return r.RelZero, true
	case ColSpeed:
		return r.Speed, true
	case ColTrig:
		return r.Trig, true
	case ColStop:
		return r.Stop, true
	case ColPre:
		return r.Pre, true
	case ColCatch:
		return r.Catch, true
	case ColTotal:
		return r.Total, true
	case ColTimingFactor:
		return r.TimingFactor, true
	default:
		return nil, false
	}
}

// Table is a time-indexed force table, one row per sample.
type Table struct {
	Rows []Row
	// Centered marks that the force_centered column has been populated by
	// a baseline correction.
	Centered bool
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	return &Table{Rows: rows, Centered: t.Centered}
}

// Forces returns the force column as a slice.
func (t *Table) Forces() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Force
	}
	return out
}

// CenteredForces returns the force_centered column as a slice.
func (t *Table) CenteredForces() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.ForceCentered
	}
	return out
}

// Append concatenates other's rows onto t, preserving row order. Used by the
// sensor and series aggregations.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}
	t.Rows = append(t.Rows, other.Rows...)
}
