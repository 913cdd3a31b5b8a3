package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptAuthorityURL sets an alternative base URL for the term authority.
// Empty (the default) dereferences term URIs directly.
func OptAuthorityURL(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Vocabulary.AuthorityURL = s
	}
}

// OptVocabularyTimeout sets the per-attempt fetch timeout in seconds.
func OptVocabularyTimeout(i int) Option {
	return func(c *Config) {
		if isValidInt("Vocabulary Timeout", i) {
			c.Vocabulary.TimeoutSec = i
		}
	}
}

// OptVocabularyMaxRetries sets the retry bound for failed fetches.
func OptVocabularyMaxRetries(i int) Option {
	return func(c *Config) {
		if isValidInt("Vocabulary Max Retries", i) {
			c.Vocabulary.MaxRetries = i
		}
	}
}

// OptVocabularyRetryDelay sets the initial backoff delay in milliseconds.
func OptVocabularyRetryDelay(i int) Option {
	return func(c *Config) {
		if isValidInt("Vocabulary Retry Delay", i) {
			c.Vocabulary.RetryDelayMs = i
		}
	}
}

// OptTimeColumn sets the timestamp column name for tabular sources.
func OptTimeColumn(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Time Column", s) {
			c.Dataset.TimeColumn = s
		}
	}
}

// OptSensorColumn sets the sensor-identifier column name.
func OptSensorColumn(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Sensor Column", s) {
			c.Dataset.SensorColumn = s
		}
	}
}

// OptStrictDrop enables dropping of rows with unparsable keys.
// By default such rows are retained with a validation warning.
func OptStrictDrop(b bool) Option {
	return func(c *Config) {
		c.Dataset.StrictDrop = b
	}
}

// OptKeepSourceCasing retains source casing of coordinate variable names
// instead of lower-casing them on export.
func OptKeepSourceCasing(b bool) Option {
	return func(c *Config) {
		c.Dataset.KeepSourceCasing = b
	}
}

// OptErddapFileDir sets the directory ERDDAP serves dataset files from.
func OptErddapFileDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("ERDDAP File Dir", s) {
			c.Erddap.FileDir = s
		}
	}
}

// OptErddapFileAccess toggles direct file access for generated datasets.
func OptErddapFileAccess(b bool) Option {
	return func(c *Config) {
		c.Erddap.FileAccess = b
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for batched
// vocabulary resolution. Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
