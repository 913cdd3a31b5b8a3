package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for emh.yaml.
// Excludes runtime-only fields (HomeDir).
// Used for round-tripping emh.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Vocabulary.AuthorityURL
	if s != "" {
		res = append(res, OptAuthorityURL(s))
	}
	i = c.Vocabulary.TimeoutSec
	if i > 0 {
		res = append(res, OptVocabularyTimeout(i))
	}
	i = c.Vocabulary.MaxRetries
	if i > 0 {
		res = append(res, OptVocabularyMaxRetries(i))
	}
	i = c.Vocabulary.RetryDelayMs
	if i > 0 {
		res = append(res, OptVocabularyRetryDelay(i))
	}

	s = c.Dataset.TimeColumn
	if s != "" {
		res = append(res, OptTimeColumn(s))
	}
	s = c.Dataset.SensorColumn
	if s != "" {
		res = append(res, OptSensorColumn(s))
	}
	res = append(res, OptStrictDrop(c.Dataset.StrictDrop))
	res = append(res, OptKeepSourceCasing(c.Dataset.KeepSourceCasing))

	s = c.Erddap.FileDir
	if s != "" {
		res = append(res, OptErddapFileDir(s))
	}
	res = append(res, OptErddapFileAccess(c.Erddap.FileAccess))

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	} else {
		gn.Warn(
			"<em>%s</em> does not support '%s' as a value. "+
				"Valid values are: \n%s\nIgnoring...",
			[]string{name, val, strings.Join(lines, "\n")},
		)
		return false
	}
}
