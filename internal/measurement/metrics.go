package measurement

import (
	"log/slog"

	"lsforce/internal/errors"
)

// ForceIntegral computes the rectangle-rule integral of the baseline-
// corrected force over time: sum(force_centered) x (1 / sampling rate).
// A baseline correction (even a zero intercept) must have been applied
// first. The result is stored under the optional-metadata keys "integral"
// and "integral_unit".
func (m *Measurement) ForceIntegral() (float64, error) {
	if m.edited == nil || !m.edited.Centered {
		err := errors.New(errors.CodeMissingPrecondition,
			"force integral requires a prior baseline correction (ApplyForceIntercept)")
		m.logger.Error("cannot calculate force integral",
			slog.String("measurement", m.name),
			slog.Any("error", err))
		return 0, err
	}

	var sum float64
	for _, r := range m.edited.Rows {
		sum += r.ForceCentered
	}
	integral := sum / float64(m.rec.Speed)

	m.setOptional(KeyIntegral, integral)
	m.setOptional(KeyIntegralUnit, m.rec.Unit+"·s")

	m.logger.Info("calculated force integral",
		slog.String("measurement", m.name),
		slog.Float64("integral", integral),
		slog.String("unit", m.rec.Unit+"·s"))
	return integral, nil
}

// ReleaseParams parameterize the release-force calculation.
type ReleaseParams struct {
	// MinForce is the threshold below which samples are discarded before
	// windowing.
	MinForce float64
	// WindowSec is the averaging window length in seconds.
	WindowSec int `validate:"gt=0"`
	// DistanceToEndSec is how many seconds before the end of the filtered
	// series the window closes.
	DistanceToEndSec int `validate:"gte=0"`
}

// DefaultReleaseParams returns the parameters used by the field protocol:
// samples above 1 force unit, a 5 s window ending 3 s before release.
func DefaultReleaseParams() ReleaseParams {
	return ReleaseParams{MinForce: 1, WindowSec: 5, DistanceToEndSec: 3}
}

// ReleaseForce estimates the force at which the load was released: the mean
// over a window of above-threshold samples just before the end of the run.
// An empty window is a fault, never a zero result. The value is stored under
// the optional-metadata key "release".
func (m *Measurement) ReleaseForce(p ReleaseParams) (float64, error) {
	if err := validate.Struct(p); err != nil {
		return 0, errors.Wrap(errors.CodeValidationFailed, "invalid release-force parameters", err)
	}

	t, err := m.Table()
	if err != nil {
		return 0, err
	}

	var filtered []float64
	for _, r := range t.Rows {
		if r.Force > p.MinForce {
			filtered = append(filtered, r.Force)
		}
	}

	window := m.rec.Speed * p.WindowSec
	distance := m.rec.Speed * p.DistanceToEndSec

	n := len(filtered)
	end := n - distance
	if distance == 0 {
		// A zero distance selects nothing: the window must close strictly
		// before the end of the filtered series.
		end = 0
	}
	start := n - window - distance
	if start < 0 {
		start = 0
	}

	if start >= end {
		err := errors.NewWithDetails(errors.CodeComputationFailed,
			"release-force window is empty",
			map[string]interface{}{
				"measurement":     m.name,
				"filtered_length": n,
				"window_samples":  window,
				"distance":        distance,
			})
		m.logger.Error("cannot calculate release force",
			slog.String("measurement", m.name),
			slog.Float64("min_force", p.MinForce),
			slog.Int("window_sec", p.WindowSec),
			slog.Int("distance_to_end_sec", p.DistanceToEndSec),
			slog.Any("error", err))
		return 0, err
	}

	release := meanOf(filtered[start:end])
	m.setOptional(KeyRelease, release)

	m.logger.Info("calculated release force",
		slog.String("measurement", m.name),
		slog.Float64("release", release),
		slog.Int("window_samples", end-start))
	return release, nil
}
