// Package config provides configuration management for the harmonizer.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > emh.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in emh.yaml)
//
// # Environment Variables
//
// Use EMH_ prefix with underscores for nesting:
//
//	EMH_VOCABULARY_TIMEOUT_SEC=20
//	EMH_LOG_LEVEL=debug
//	EMH_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete harmonizer configuration.
type Config struct {
	// Vocabulary contains settings for the controlled-vocabulary resolver.
	Vocabulary VocabularyConfig `mapstructure:"vocabulary" yaml:"vocabulary"`

	// Dataset contains settings for tabular source loading and assembly.
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`

	// Erddap contains settings for serving-layer config generation.
	Erddap ErddapConfig `mapstructure:"erddap" yaml:"erddap"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for batched
	// vocabulary resolution. Defaults to the number of CPU threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// VocabularyConfig contains settings for the term-authority client.
type VocabularyConfig struct {
	// AuthorityURL optionally rewrites term URIs to a different base, so a
	// mirror or a test server can stand in for the public authority.
	// Empty means term URIs are dereferenced directly.
	AuthorityURL string `mapstructure:"authority_url" yaml:"authority_url"`

	// TimeoutSec limits a single fetch attempt.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries bounds retry attempts after the first failed fetch.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// RetryDelayMs is the initial backoff delay; it doubles per attempt.
	RetryDelayMs int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// DatasetConfig contains settings for source loading and assembly.
type DatasetConfig struct {
	// TimeColumn is the name of the timestamp column in tabular sources.
	TimeColumn string `mapstructure:"time_column" yaml:"time_column"`

	// SensorColumn is the name of the sensor-identifier column.
	SensorColumn string `mapstructure:"sensor_column" yaml:"sensor_column"`

	// StrictDrop drops rows with unparsable keys instead of retaining
	// them with a validation warning. The default keeps every row.
	StrictDrop bool `mapstructure:"strict_drop" yaml:"strict_drop"`

	// KeepSourceCasing retains source casing of coordinate variable
	// names. By default they are lower-cased on export.
	KeepSourceCasing bool `mapstructure:"keep_source_casing" yaml:"keep_source_casing"`
}

// ErddapConfig contains settings for datasets.xml fragment generation.
type ErddapConfig struct {
	// FileDir is the directory ERDDAP reads dataset files from.
	FileDir string `mapstructure:"file_dir" yaml:"file_dir"`

	// FileAccess enables direct file access for the dataset.
	FileAccess bool `mapstructure:"file_access" yaml:"file_access"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Vocabulary: VocabularyConfig{
			TimeoutSec:   10,
			MaxRetries:   3,
			RetryDelayMs: 200,
		},
		Dataset: DatasetConfig{
			TimeColumn:   "time",
			SensorColumn: "sensor_id",
		},
		Erddap: ErddapConfig{
			FileDir:    "/data/datasets",
			FileAccess: true,
		},
		Log: LogConfig{
			Format:      "text",
			Level:       "info",
			Destination: "stderr",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
