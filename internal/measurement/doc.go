// Package measurement owns one parsed gauge record and derives everything
// the analysis layer consumes from it: the time-indexed force table, the
// baseline-corrected (edited) table, summary metadata, and the derived
// metrics (automatic intercept estimation, force integral, release force).
//
// Tables are computed lazily on first access and cached for the lifetime of
// the Measurement. Mutating operations (intercept application, integral and
// release calculations) work in place; none of them invalidates an already
// aggregated parent table, callers clear parent caches explicitly.
package measurement
