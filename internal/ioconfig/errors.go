package ioconfig

import (
	"fmt"

	"github.com/emso-eric/metadata-harmonizer/pkg/errcode"
	"github.com/gnames/gn"
)

// LoadError creates an error for when configuration cannot be loaded.
func LoadError(path string, err error) error {
	msg := `Cannot load configuration

<em>Configuration file:</em> %s

<em>Possible causes:</em>
  - Invalid YAML format
  - Permission denied

<em>How to fix:</em>
  1. Validate the YAML syntax
  2. Regenerate the default: remove the file and rerun`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.ConfigLoadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to load config: %w", err),
	}
}

// GenerateError creates an error for when the default configuration
// file cannot be written.
func GenerateError(path string, err error) error {
	msg := `Cannot generate configuration file

<em>Target path:</em> %s

<em>How to fix:</em>
  1. Check the directory is writable
  2. If the file already exists, edit it instead`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.ConfigGenerateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to generate config: %w", err),
	}
}
