package measurement

import (
	"log/slog"

	"lsforce/internal/config"
)

// Metadata keys derived from the table's time axis.
const (
	KeyDatetimeStart = "datetime_start"
	KeyDatetimeEnd   = "datetime_end"
	KeyDuration      = "duration"
	KeyLength        = "length"
)

// BaseMetadata returns a direct copy of the header fields selected by the
// metadata column allow-list.
func (m *Measurement) BaseMetadata() map[string]interface{} {
	md := make(map[string]interface{})
	for _, col := range m.columns.MetadataCols {
		switch col {
		case ColMeasurementName:
			md[col] = m.name
		case ColSensorID:
			md[col] = m.rec.SensorID
		case ColDatetime:
			md[col] = m.rec.Start
		case ColMeasurementID:
			md[col] = m.rec.MeasurementID
		case ColUnit:
			md[col] = m.rec.Unit
		case ColMode:
			md[col] = m.rec.Mode
		case ColRelZero:
			md[col] = m.rec.RelZero
		case ColSpeed:
			md[col] = m.rec.Speed
		case ColTrig:
			md[col] = m.rec.Trig
		case ColStop:
			md[col] = m.rec.Stop
		case ColPre:
			md[col] = m.rec.Pre
		case ColCatch:
			md[col] = m.rec.Catch
		case ColTotal:
			md[col] = m.rec.Total
		case ColTimingFactor:
			md[col] = m.timingFactor
		}
	}
	return md
}

// TimeMetadata derives the configured start/end/duration/length fields from
// the table's timestamp column.
func (m *Measurement) TimeMetadata() (map[string]interface{}, error) {
	t, err := m.Table()
	if err != nil {
		return nil, err
	}

	first := t.Rows[0].Timestamp
	last := t.Rows[0].Timestamp
	for _, r := range t.Rows[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	md := make(map[string]interface{})
	for _, col := range m.columns.TimeMetadataCols {
		switch col {
		case KeyDatetimeStart:
			md[col] = first
		case KeyDatetimeEnd:
			md[col] = last
		case KeyDuration:
			md[col] = last.Sub(first).Seconds()
		case KeyLength:
			md[col] = t.Len()
		}
	}
	return md, nil
}

// ForceMetadata computes the configured summary statistics over the raw
// force series. The max and min entries expand into index and value keys.
func (m *Measurement) ForceMetadata() map[string]interface{} {
	force := m.rec.Force
	md := make(map[string]interface{})
	if len(force) == 0 {
		return md
	}

	for _, col := range m.columns.ForceMetadataCols {
		switch col {
		case "max":
			idx := 0
			for i, f := range force {
				if f > force[idx] {
					idx = i
				}
			}
			md["max_index"] = idx
			md["max_value"] = force[idx]
		case "min":
			idx := 0
			for i, f := range force {
				if f < force[idx] {
					idx = i
				}
			}
			md["min_index"] = idx
			md["min_value"] = force[idx]
		case "mean":
			md["mean"] = meanOf(force)
		case "median":
			md["median"] = medianOf(force)
		}
	}
	return md
}

// OptionalMetadata returns the metrics stored by the release-force,
// integral and intercept calculations, filtered to the configured keys.
// Keys whose calculation has not run are absent.
func (m *Measurement) OptionalMetadata() map[string]interface{} {
	md := make(map[string]interface{})
	for _, col := range m.columns.OptionalMetadataCols {
		if v, ok := m.optional[col]; ok {
			md[col] = v
		}
	}
	return md
}

// FullMetadata is the union of base, time, force and optional metadata.
// Time metadata is skipped (with a log record) when the table cannot be
// built; the remaining groups are still returned.
func (m *Measurement) FullMetadata() map[string]interface{} {
	md := m.BaseMetadata()

	timeMD, err := m.TimeMetadata()
	if err != nil {
		m.logger.Error("skipping time metadata",
			slog.String("measurement", m.name),
			slog.Any("error", err))
	} else {
		for k, v := range timeMD {
			md[k] = v
		}
	}

	for k, v := range m.ForceMetadata() {
		md[k] = v
	}
	for k, v := range m.OptionalMetadata() {
		md[k] = v
	}
	return md
}

// MetadataColumns returns the ordered column list a metadata table exposes:
// the configured base, time, force (expanded) and optional keys.
func (m *Measurement) MetadataColumns() []string {
	return MetadataColumnsFor(m.columns)
}

// MetadataColumnsFor expands the configured allow-lists into the ordered
// metadata column list without needing a measurement instance.
func MetadataColumnsFor(columns config.ColumnsConfig) []string {
	cols := append([]string(nil), columns.MetadataCols...)
	cols = append(cols, columns.TimeMetadataCols...)
	for _, col := range columns.ForceMetadataCols {
		switch col {
		case "max":
			cols = append(cols, "max_index", "max_value")
		case "min":
			cols = append(cols, "min_index", "min_value")
		default:
			cols = append(cols, col)
		}
	}
	cols = append(cols, columns.OptionalMetadataCols...)
	return cols
}
