package measurement

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"lsforce/internal/errors"
)

// Statistic methods accepted by AutoForceIntercept.
const (
	MethodMean   = "mean"
	MethodMedian = "median"
)

var validate = validator.New()

// ApplyForceIntercept subtracts intercept from every force sample of the
// edited table and clips the result at zero, populating the force_centered
// column. Applying the same intercept twice yields the same edited table.
func (m *Measurement) ApplyForceIntercept(intercept float64) error {
	ed, err := m.Edited()
	if err != nil {
		return err
	}

	for i := range ed.Rows {
		centered := ed.Rows[i].Force - intercept
		if centered < 0 {
			centered = 0
		}
		ed.Rows[i].ForceCentered = centered
	}
	ed.Centered = true

	m.intercept = intercept
	m.interceptApplied = true
	m.setOptional(KeyIntercept, intercept)

	if err := m.validateEdited(); err != nil {
		return err
	}

	m.logger.Debug("applied force intercept",
		slog.String("measurement", m.name),
		slog.Float64("intercept", intercept))
	return nil
}

// validateEdited checks that the edited table still carries every base-table
// row plus the force_centered column.
func (m *Measurement) validateEdited() error {
	t, err := m.Table()
	if err != nil {
		return err
	}
	if m.edited == nil || !m.edited.Centered {
		return errors.New(errors.CodeComputationFailed, "edited table lost its force_centered column")
	}
	if m.edited.Len() != t.Len() {
		return errors.NewWithDetails(errors.CodeComputationFailed,
			"edited table row count diverged from base table",
			map[string]int{"base": t.Len(), "edited": m.edited.Len()})
	}
	return nil
}

// InterceptSpec selects the samples and the statistic AutoForceIntercept
// estimates the baseline from. At most one of TimeWindow and IndexWindow may
// be set; with neither, the whole series is used.
type InterceptSpec struct {
	// TimeWindow is an inclusive [t0, t1] window in seconds since start.
	TimeWindow *[2]float64
	// IndexWindow is a [p0, p1) window of row-count fractions,
	// 0 <= p0 < p1 <= 1.
	IndexWindow *[2]float64
	// Method is the statistic computed over the selected samples.
	Method string `validate:"required,oneof=mean median"`
}

// AutoForceIntercept estimates the baseline force from a window of the
// original (uncorrected) table, applies it via ApplyForceIntercept and
// returns the estimated value.
func (m *Measurement) AutoForceIntercept(spec InterceptSpec) (float64, error) {
	if err := m.validateInterceptSpec(spec); err != nil {
		m.logger.Error("invalid intercept specification",
			slog.String("measurement", m.name),
			slog.Any("time_window", spec.TimeWindow),
			slog.Any("index_window", spec.IndexWindow),
			slog.String("method", spec.Method),
			slog.Any("error", err))
		return 0, err
	}

	t, err := m.Table()
	if err != nil {
		return 0, err
	}

	selected := m.selectWindow(t, spec)
	if len(selected) == 0 {
		return 0, errors.NewWithDetails(errors.CodeValidationFailed,
			"intercept window selects no samples",
			map[string]interface{}{
				"measurement":  m.name,
				"time_window":  spec.TimeWindow,
				"index_window": spec.IndexWindow,
				"rows":         t.Len(),
			})
	}

	var intercept float64
	switch spec.Method {
	case MethodMean:
		intercept = meanOf(selected)
	case MethodMedian:
		intercept = medianOf(selected)
	}

	if err := m.ApplyForceIntercept(intercept); err != nil {
		return 0, err
	}

	m.logger.Info("auto-calculated force intercept",
		slog.String("measurement", m.name),
		slog.String("method", spec.Method),
		slog.Int("samples", len(selected)),
		slog.Float64("intercept", intercept))
	return intercept, nil
}

func (m *Measurement) validateInterceptSpec(spec InterceptSpec) error {
	if spec.TimeWindow != nil && spec.IndexWindow != nil {
		return errors.Validation("window",
			"time window and index window are mutually exclusive", nil)
	}
	if w := spec.IndexWindow; w != nil {
		if w[0] < 0 || w[1] > 1 || w[0] >= w[1] {
			return errors.Validation("index_window",
				"index window fractions must satisfy 0 <= p0 < p1 <= 1", *w)
		}
	}
	if w := spec.TimeWindow; w != nil {
		if w[0] > w[1] {
			return errors.Validation("time_window",
				"time window bounds must be ordered", *w)
		}
	}
	if err := validate.Struct(spec); err != nil {
		return errors.Wrap(errors.CodeValidationFailed,
			"unknown intercept statistic method", err)
	}
	return nil
}

// selectWindow picks the force values of the original table inside the
// window. With no window the entire series is returned.
func (m *Measurement) selectWindow(t *Table, spec InterceptSpec) []float64 {
	switch {
	case spec.TimeWindow != nil:
		var out []float64
		for _, r := range t.Rows {
			if r.SecSinceStart >= spec.TimeWindow[0] && r.SecSinceStart <= spec.TimeWindow[1] {
				out = append(out, r.Force)
			}
		}
		return out
	case spec.IndexWindow != nil:
		n := float64(t.Len())
		start := int(spec.IndexWindow[0] * n)
		end := int(spec.IndexWindow[1] * n)
		return t.Forces()[start:end]
	default:
		return t.Forces()
	}
}
