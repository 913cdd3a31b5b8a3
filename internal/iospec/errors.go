package iospec

import (
	"fmt"

	"github.com/emso-eric/metadata-harmonizer/pkg/errcode"
	"github.com/gnames/gn"
)

// LoadError creates an error for when a rule-set file cannot be read.
func LoadError(path string, err error) error {
	msg := `Cannot load compliance rules

<em>Rules file:</em> %s

<em>Possible causes:</em>
  - File does not exist
  - Permission denied

<em>How to fix:</em>
  1. Check if file exists: <em>ls -l %s</em>
  2. Or omit the flag to use the built-in EMSO rules`

	vars := []any{path, path}

	return &gn.Error{
		Code: errcode.SpecLoadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to load rules file: %w", err),
	}
}

// ParseError creates an error for invalid rule-set YAML.
func ParseError(source string, err error) error {
	msg := `Cannot parse compliance rules

<em>Rules source:</em> %s

<em>How to fix:</em>
  1. Validate the YAML syntax
  2. Compare against the built-in rules:
     <em>emh config rules</em>`

	vars := []any{source}

	return &gn.Error{
		Code: errcode.SpecParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to parse rules: %w", err),
	}
}

// RuleError creates an error for a structurally invalid rule set.
func RuleError(source string, err error) error {
	msg := `Invalid compliance rule set

<em>Rules source:</em> %s
<em>Problem:</em> %v

<em>How to fix:</em>
  1. Every rule needs a unique id, a known scope
     (dataset, variable, sensor, platform), a severity
     (required, optional) and a known check
  2. Attribute checks (presence, uri, unit, cross_ref) need an
     'attribute' field`

	vars := []any{source, err}

	return &gn.Error{
		Code: errcode.SpecRuleError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid rule set: %w", err),
	}
}
