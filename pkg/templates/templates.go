// Package templates provides embedded YAML configuration templates.
package templates

import _ "embed"

// ConfigYAML contains the default emh.yaml template for application
// configuration.
//
//go:embed emh.yaml
var ConfigYAML string

// RulesYAML contains the default EMSO compliance rule set used when the
// user does not supply one.
//
//go:embed emso-rules.yaml
var RulesYAML string
