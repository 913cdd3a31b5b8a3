// Package compliance evaluates resolved metadata documents, and
// optionally their assembled datasets, against an ordered rule set.
package compliance

import (
	"fmt"
	"slices"
)

// Rule scopes.
const (
	ScopeDataset  = "dataset"
	ScopeVariable = "variable"
	ScopeSensor   = "sensor"
	ScopePlatform = "platform"
)

// Rule severities.
const (
	SeverityRequired = "required"
	SeverityOptional = "optional"
)

// Check kinds. The first four inspect metadata only; the last three
// are operational and need an assembled dataset.
const (
	CheckPresence    = "presence"
	CheckURI         = "uri"
	CheckUnit        = "unit"
	CheckCrossRef    = "cross_ref"
	CheckCoordinates = "coordinates"
	CheckDimensions  = "dimensions"
	CheckResolvedRef = "resolved_ref"
)

var knownScopes = []string{
	ScopeDataset, ScopeVariable, ScopeSensor, ScopePlatform,
}

var knownChecks = []string{
	CheckPresence, CheckURI, CheckUnit, CheckCrossRef,
	CheckCoordinates, CheckDimensions, CheckResolvedRef,
}

// attributeChecks lists the checks that need an attribute name.
var attributeChecks = []string{
	CheckPresence, CheckURI, CheckUnit, CheckCrossRef,
}

// operationalChecks lists the checks that need an assembled dataset.
var operationalChecks = []string{
	CheckCoordinates, CheckDimensions, CheckResolvedRef,
}

// Rule is one compliance test. Rules are applied in the order they
// appear in the rule set.
type Rule struct {
	ID        string   `yaml:"id"`
	Scope     string   `yaml:"scope"`
	Severity  string   `yaml:"severity"`
	Check     string   `yaml:"check"`
	Attribute string   `yaml:"attribute,omitempty"`
	Args      []string `yaml:"args,omitempty"`

	// Warn downgrades a failing check to a warning row, which is
	// reported but not scored.
	Warn bool `yaml:"warn,omitempty"`
}

// IsOperational reports whether the rule needs an assembled dataset.
func (r Rule) IsOperational() bool {
	return slices.Contains(operationalChecks, r.Check)
}

// RuleSet is an externally supplied, ordered collection of rules.
type RuleSet struct {
	Name string `yaml:"name"`

	// AllowedUnits is the unit whitelist used by 'unit' checks that
	// list no args of their own.
	AllowedUnits []string `yaml:"allowed_units"`

	Rules []Rule `yaml:"rules"`
}

// Validate checks the rule set for structural problems.
func (rs *RuleSet) Validate() error {
	if len(rs.Rules) == 0 {
		return fmt.Errorf("rule set %q has no rules", rs.Name)
	}

	seen := make(map[string]struct{}, len(rs.Rules))
	for i, rule := range rs.Rules {
		if rule.ID == "" {
			return fmt.Errorf("rule %d has no id", i+1)
		}
		if _, dup := seen[rule.ID]; dup {
			return fmt.Errorf("duplicate rule id %q", rule.ID)
		}
		seen[rule.ID] = struct{}{}

		if !slices.Contains(knownScopes, rule.Scope) {
			return fmt.Errorf("rule %q: unknown scope %q", rule.ID, rule.Scope)
		}
		if rule.Severity != SeverityRequired &&
			rule.Severity != SeverityOptional {
			return fmt.Errorf(
				"rule %q: unknown severity %q", rule.ID, rule.Severity,
			)
		}
		if !slices.Contains(knownChecks, rule.Check) {
			return fmt.Errorf("rule %q: unknown check %q", rule.ID, rule.Check)
		}
		if slices.Contains(attributeChecks, rule.Check) &&
			rule.Attribute == "" {
			return fmt.Errorf(
				"rule %q: check %q needs an attribute", rule.ID, rule.Check,
			)
		}
	}
	return nil
}
