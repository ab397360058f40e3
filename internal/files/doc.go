// Package files provides file system discovery utilities for the
// force-gauge processing toolkit.
//
// Discovery locates raw gauge record files inside sensor directories and
// enumerates the sensor subdirectories of a series root. Results are
// returned in deterministic (sorted path) order so that table aggregation
// order is reproducible across runs.
//
// Example usage:
//
//	// Create a discovery instance
//	discovery := files.NewDiscovery("/path/to/series")
//
//	// Find all record files under one sensor directory
//	records, err := discovery.FindRecordFiles("AB4A1C22F09A", ".CSV")
//
//	// List the sensor directories of the series root
//	sensors, err := discovery.ListDirectories(".")
package files
