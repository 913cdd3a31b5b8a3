package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "emh"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/emh by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/emh by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/emh/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the emh.yaml file.
// Returns ~/.config/emh/emh.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "emh.yaml")
}

// RulesFilePath returns the full path to the compliance rules file.
// Returns ~/.config/emh/emso-rules.yaml by default.
func RulesFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "emso-rules.yaml")
}

// VocabCachePath returns the full path to the persistent vocabulary cache.
// Returns ~/.cache/emh/vocabulary.db by default.
func VocabCachePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "vocabulary.db")
}
