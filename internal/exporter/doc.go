// Package exporter writes processed measurement data to disk.
//
// CSVWriter is the core CSV writing layer: headers, streaming, and a UTF-8
// BOM so the files open cleanly in Excel. On top of it the Exporter
// flattens force tables and metadata records into CSV files, and
// WriteWorkbook produces an Excel workbook with the table, the metadata and
// a force-over-time chart per export.
package exporter
