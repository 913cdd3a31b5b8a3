package compliance_test

import (
	"testing"

	"github.com/emso-eric/metadata-harmonizer/pkg/compliance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRules() *compliance.RuleSet {
	return &compliance.RuleSet{
		Name:         "test rules",
		AllowedUnits: []string{"degrees_Celsius", "psu"},
		Rules: []compliance.Rule{
			{ID: "title", Scope: "dataset", Severity: "required",
				Check: "presence", Attribute: "title"},
			{ID: "units", Scope: "variable", Severity: "required",
				Check: "unit", Attribute: "units"},
		},
	}
}

func TestRuleSetValidate(t *testing.T) {
	require.NoError(t, validRules().Validate())

	tests := []struct {
		msg    string
		mutate func(*compliance.RuleSet)
	}{
		{"empty set", func(rs *compliance.RuleSet) { rs.Rules = nil }},
		{"missing id", func(rs *compliance.RuleSet) { rs.Rules[0].ID = "" }},
		{"duplicate id", func(rs *compliance.RuleSet) { rs.Rules[1].ID = "title" }},
		{"unknown scope", func(rs *compliance.RuleSet) { rs.Rules[0].Scope = "file" }},
		{"unknown severity", func(rs *compliance.RuleSet) { rs.Rules[0].Severity = "fatal" }},
		{"unknown check", func(rs *compliance.RuleSet) { rs.Rules[0].Check = "exists" }},
		{"attribute missing", func(rs *compliance.RuleSet) { rs.Rules[0].Attribute = "" }},
	}

	for _, v := range tests {
		rs := validRules()
		v.mutate(rs)
		assert.Error(t, rs.Validate(), v.msg)
	}
}

func TestRuleIsOperational(t *testing.T) {
	assert.False(t, compliance.Rule{Check: "presence"}.IsOperational())
	assert.True(t, compliance.Rule{Check: "coordinates"}.IsOperational())
	assert.True(t, compliance.Rule{Check: "dimensions"}.IsOperational())
	assert.True(t, compliance.Rule{Check: "resolved_ref"}.IsOperational())
}
