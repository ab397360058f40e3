package record

import (
	"time"

	"lsforce/internal/errors"
)

// RawRecord is one parsed gauge export: the run header plus the ordered
// force samples. It is immutable once produced by the parser.
type RawRecord struct {
	// SensorID is the raw identifier from the first header line, not
	// validated against any address format.
	SensorID string
	// Start is the combined date+time the run began.
	Start time.Time
	// MeasurementID is the numeric run identifier assigned by the device.
	MeasurementID int
	// Unit is the force unit string, e.g. "kN".
	Unit string
	// Mode is the device capture mode.
	Mode string
	// RelZero is the relative-zero marker reported by the device.
	RelZero string
	// Speed is the sampling rate in Hz.
	Speed int
	// Trig and Stop are the trigger and stop force thresholds.
	Trig float64
	Stop float64
	// Pre, Catch and Total are the device's declared sample counts.
	// Total is descriptive metadata only; the authoritative series length
	// is len(Force).
	Pre   int
	Catch int
	Total int
	// Force holds the raw samples in file order. Any sign is allowed.
	Force []float64
}

// Validate checks the invariants table construction depends on: a positive
// sampling rate and a non-empty force series.
func (r *RawRecord) Validate() error {
	if r.Speed <= 0 {
		return errors.Validation("speed", "sampling rate must be positive", r.Speed)
	}
	if len(r.Force) == 0 {
		return errors.Validation("force", "record contains no force samples", len(r.Force))
	}
	return nil
}

// SampleCountMismatch reports whether the declared total differs from the
// number of parsed samples. The mismatch is tolerated but worth flagging.
func (r *RawRecord) SampleCountMismatch() bool {
	return r.Total != len(r.Force)
}
