package ioconfig

import (
	"os"
	"path/filepath"

	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/templates"
)

// ConfigFileExists reports whether the default config file is present.
func ConfigFileExists() (bool, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(config.ConfigFilePath(home))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GenerateDefaultConfig writes the documented default emh.yaml to the
// user config directory. Existing files are never overwritten.
func GenerateDefaultConfig() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", GenerateError("", err)
	}
	return generateAt(config.ConfigFilePath(home))
}

func generateAt(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", GenerateError(path, os.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", GenerateError(path, err)
	}
	if err := os.WriteFile(path, []byte(templates.ConfigYAML), 0644); err != nil {
		return "", GenerateError(path, err)
	}
	return path, nil
}
