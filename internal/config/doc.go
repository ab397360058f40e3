// Package config provides centralized configuration management for the
// force-gauge processing toolkit. It handles loading configuration from
// multiple sources, validation, and a type-safe API for the column
// selections that drive table and metadata construction.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Configuration file (YAML, highest priority)
//	2. Environment variables
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern LSF_* for namespacing:
//
//	LSF_LOGGING_LEVEL=info
//	LSF_PARSER_EXTENSION=.CSV
//	LSF_COLUMNS_DFCOLS=id,datetime,sec_since_start,force
//	LSF_NAMING_SENSORIDSCHEME=mac
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
