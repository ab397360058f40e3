package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Parser  ParserConfig  `yaml:"parser" envconfig:"PARSER"`
	Columns ColumnsConfig `yaml:"columns" envconfig:"COLUMNS"`
	Naming  NamingConfig  `yaml:"naming" envconfig:"NAMING"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/lsforce.log"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// ParserConfig controls how raw gauge exports are read.
type ParserConfig struct {
	// Extension of record files inside a sensor directory.
	// Matching is case-insensitive.
	Extension string `yaml:"extension" envconfig:"EXTENSION" default:".CSV" validate:"required,startswith=."`
	// TimingFactor scales the per-sample time step. The gauge family this
	// tool was written for needs 1.0; one historical device batch shipped
	// with a clock that ran fast and needed 0.9.
	TimingFactor float64 `yaml:"timing_factor" envconfig:"TIMING_FACTOR" default:"1.0" validate:"gt=0"`
}

// ColumnsConfig selects which derived fields are exposed. The full set is
// always computed internally; these allow-lists filter what the tables and
// metadata records carry.
type ColumnsConfig struct {
	DFCols               []string `yaml:"df_cols" envconfig:"DFCOLS" default:"id,datetime,sec_since_start,force,sensor_id,measurement_id,speed"`
	MetadataCols         []string `yaml:"metadata_cols" envconfig:"METADATACOLS" default:"measurement_name,sensor_id,datetime,measurement_id,unit,mode,rel_zero,speed,trig,stop,pre,catch,total,timing_factor"`
	TimeMetadataCols     []string `yaml:"time_metadata_cols" envconfig:"TIMEMETADATACOLS" default:"datetime_start,datetime_end,duration,length"`
	ForceMetadataCols    []string `yaml:"force_metadata_cols" envconfig:"FORCEMETADATACOLS" default:"max,mean,median,min"`
	OptionalMetadataCols []string `yaml:"optional_metadata_cols" envconfig:"OPTIONALMETADATACOLS" default:"release,integral,integral_unit,intercept"`
}

// NamingConfig controls how sensor identifiers are derived from directory
// names. The "mac" scheme reformats a MAC-address-like directory token into
// colon-delimited pairs; "dir" keeps the directory name as an opaque id.
type NamingConfig struct {
	SensorIDScheme string `yaml:"sensor_id_scheme" envconfig:"SENSORIDSCHEME" default:"mac" validate:"oneof=mac dir"`
}

// Load loads configuration from environment variables and an optional YAML
// file. File values take precedence over environment variables, which take
// precedence over defaults.
func Load(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first (defaults fill the gaps)
	if err := envconfig.Process("LSF", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Overlay file values on top of the environment pass
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration produced by defaults alone. It never
// consults the environment and is intended for tests and library embedding.
func Default() *Config {
	var cfg Config
	// envconfig fills defaults for unset variables; an empty prefix that no
	// deployment uses keeps real LSF_* variables out of the result.
	if err := envconfig.Process("LSFORCE_DEFAULTS_ONLY", &cfg); err != nil {
		panic(fmt.Sprintf("config defaults are invalid: %v", err))
	}
	return &cfg
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config over env config. Only fields the file
// actually set are replaced; everything else keeps the env/default value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Format != "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if fileConfig.Paths.OutputDir != "" {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if fileConfig.Paths.LogsDir != "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if fileConfig.Parser.Extension != "" {
		envConfig.Parser.Extension = fileConfig.Parser.Extension
	}
	if fileConfig.Parser.TimingFactor != 0 {
		envConfig.Parser.TimingFactor = fileConfig.Parser.TimingFactor
	}
	if len(fileConfig.Columns.DFCols) > 0 {
		envConfig.Columns.DFCols = fileConfig.Columns.DFCols
	}
	if len(fileConfig.Columns.MetadataCols) > 0 {
		envConfig.Columns.MetadataCols = fileConfig.Columns.MetadataCols
	}
	if len(fileConfig.Columns.TimeMetadataCols) > 0 {
		envConfig.Columns.TimeMetadataCols = fileConfig.Columns.TimeMetadataCols
	}
	if len(fileConfig.Columns.ForceMetadataCols) > 0 {
		envConfig.Columns.ForceMetadataCols = fileConfig.Columns.ForceMetadataCols
	}
	if len(fileConfig.Columns.OptionalMetadataCols) > 0 {
		envConfig.Columns.OptionalMetadataCols = fileConfig.Columns.OptionalMetadataCols
	}
	if fileConfig.Naming.SensorIDScheme != "" {
		envConfig.Naming.SensorIDScheme = fileConfig.Naming.SensorIDScheme
	}

	return envConfig
}

// Has reports whether the given column set contains name.
func Has(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
