// Package iospec loads compliance rule sets from YAML files, falling
// back to the embedded default set.
package iospec

import (
	"log/slog"
	"os"

	"github.com/emso-eric/metadata-harmonizer/pkg/compliance"
	"github.com/emso-eric/metadata-harmonizer/pkg/templates"
	"gopkg.in/yaml.v3"
)

// Load reads a rule set from path. An empty path loads the embedded
// default rules.
func Load(path string) (*compliance.RuleSet, error) {
	data := []byte(templates.RulesYAML)
	source := "embedded default"
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, LoadError(path, err)
		}
		source = path
	}

	rules, err := Parse(source, data)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded compliance rules",
		"source", source, "name", rules.Name, "rules", len(rules.Rules))
	return rules, nil
}

// Parse decodes and validates rule-set YAML.
func Parse(source string, data []byte) (*compliance.RuleSet, error) {
	var rules compliance.RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, ParseError(source, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, RuleError(source, err)
	}
	return &rules, nil
}
