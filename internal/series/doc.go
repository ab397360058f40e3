// Package series implements the three-level containment hierarchy of a
// load-test campaign: a Series owns one Sensor per subdirectory of its root,
// and each Sensor owns one Measurement per record file found under its
// directory.
//
// Aggregation flows bottom-up: measurement tables concatenate into sensor
// tables, sensor tables into the series table, and the same for metadata
// records. Aggregates are cached lazily; mutating a child does not
// invalidate an already cached parent aggregate, callers invalidate
// explicitly via InvalidateTables.
package series
