// Package metadata implements metadata descriptors and the priority
// merge that collapses several partial descriptors into one resolved
// document bound to controlled-vocabulary terms.
package metadata

import (
	"fmt"
	"strings"
)

// Mode is the resolution mode of an attribute. On disk it is signaled
// by a one-character name prefix; in memory it is a tagged enum so the
// merge logic can be exhaustive over a closed set.
type Mode int

const (
	// ModeNone marks a plain attribute with no special handling.
	ModeNone Mode = iota

	// ModeRequired ('*') must be non-empty before export.
	ModeRequired

	// ModeDerived ('~') may be auto-filled from a vocabulary lookup.
	ModeDerived

	// ModeInteractive ('$') may be filled by an external prompt
	// callback; once filled the value is persisted back into its
	// originating descriptor so re-runs are idempotent.
	ModeInteractive
)

// ParseAttrName splits a raw descriptor key into the bare attribute
// name and its resolution mode.
func ParseAttrName(raw string) (string, Mode) {
	switch {
	case strings.HasPrefix(raw, "*"):
		return raw[1:], ModeRequired
	case strings.HasPrefix(raw, "~"):
		return raw[1:], ModeDerived
	case strings.HasPrefix(raw, "$"):
		return raw[1:], ModeInteractive
	default:
		return raw, ModeNone
	}
}

// Prefix returns the on-disk prefix character for the mode.
func (m Mode) Prefix() string {
	switch m {
	case ModeRequired:
		return "*"
	case ModeDerived:
		return "~"
	case ModeInteractive:
		return "$"
	default:
		return ""
	}
}

func (m Mode) String() string {
	switch m {
	case ModeRequired:
		return "required"
	case ModeDerived:
		return "derived"
	case ModeInteractive:
		return "interactive"
	default:
		return "none"
	}
}

// AttributeValue pairs an attribute value with its resolution mode.
type AttributeValue struct {
	Value any
	Mode  Mode
}

// IsEmpty reports whether the value is absent for merge purposes:
// nil, an empty string, or an empty list.
func (a AttributeValue) IsEmpty() bool {
	return isEmptyValue(a.Value)
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}

// valueString renders an attribute value for diagnostics.
func valueString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
