// Package record parses the proprietary CSV export of a line-scale force
// gauge into a flat header+samples structure.
//
// The export layout is fixed: 13 header lines (sensor id, date, time and ten
// key=value run parameters) followed by one floating-point force sample per
// line. There is no format versioning; layout changes require parser changes.
package record
