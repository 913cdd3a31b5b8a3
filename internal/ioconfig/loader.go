// Package ioconfig loads harmonizer configuration from files,
// environment variables and defaults. This is an impure I/O package.
package ioconfig

import (
	"os"
	"strings"

	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/spf13/viper"
)

// LoadResult reports where the effective configuration came from.
type LoadResult struct {
	Config *config.Config

	// Source is "file", "defaults+env" or "defaults".
	Source string

	// SourcePath is the config file path when Source is "file".
	SourcePath string
}

// Load builds the effective configuration. Precedence, highest first:
// EMH_* environment variables, the config file, built-in defaults.
// CLI flags are applied on top by the cmd layer through Update.
// If configPath is empty the default locations are searched:
// ./emh.yaml, then ~/.config/emh/emh.yaml.
func Load(configPath string) (*LoadResult, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("EMH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, config.New())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(config.AppName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(config.ConfigDir(home))
		}
	}

	res := &LoadResult{Source: "defaults"}
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		missingExplicit := configPath == "" && os.IsNotExist(err)
		if !notFound && !missingExplicit {
			return nil, LoadError(configPath, err)
		}
		if hasEnvOverrides() {
			res.Source = "defaults+env"
		}
	} else {
		res.Source = "file"
		res.SourcePath = v.ConfigFileUsed()
	}

	cfg := config.New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, LoadError(v.ConfigFileUsed(), err)
	}
	// normalize through the option layer so invalid values fall back
	// to defaults with a warning instead of poisoning the run
	validated := config.New()
	validated.Update(cfg.ToOptions())
	res.Config = validated
	return res, nil
}

// setDefaults registers every known key so environment overrides are
// visible to Unmarshal.
func setDefaults(v *viper.Viper, cfg *config.Config) {
	v.SetDefault("vocabulary.authority_url", cfg.Vocabulary.AuthorityURL)
	v.SetDefault("vocabulary.timeout_sec", cfg.Vocabulary.TimeoutSec)
	v.SetDefault("vocabulary.max_retries", cfg.Vocabulary.MaxRetries)
	v.SetDefault("vocabulary.retry_delay_ms", cfg.Vocabulary.RetryDelayMs)
	v.SetDefault("dataset.time_column", cfg.Dataset.TimeColumn)
	v.SetDefault("dataset.sensor_column", cfg.Dataset.SensorColumn)
	v.SetDefault("dataset.strict_drop", cfg.Dataset.StrictDrop)
	v.SetDefault("dataset.keep_source_casing", cfg.Dataset.KeepSourceCasing)
	v.SetDefault("erddap.file_dir", cfg.Erddap.FileDir)
	v.SetDefault("erddap.file_access", cfg.Erddap.FileAccess)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.destination", cfg.Log.Destination)
	v.SetDefault("jobs_number", cfg.JobsNumber)
}

func hasEnvOverrides() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "EMH_") {
			return true
		}
	}
	return false
}
