package metadata

import (
	"github.com/gnames/gnfmt"
)

// Section names used across the merge and compliance code.
const (
	SectionGlobal    = "global"
	SectionVariables = "variables"
	SectionPlatforms = "platforms"
	SectionSensors   = "sensors"
)

// globalKey is the pseudo-instance id used internally so the global
// section can share the keyed-section merge path.
const globalKey = "global"

// Provenance records which descriptor supplied a resolved attribute.
type Provenance struct {
	// Descriptor is the name of the supplying descriptor.
	Descriptor string
	// Priority is the descriptor's ordinal position, 0 = highest.
	Priority int
}

// ConflictWarning is emitted when descriptors disagree on a non-empty
// attribute value. Non-fatal; the higher-priority value wins.
type ConflictWarning struct {
	Section   string
	Instance  string
	Attribute string
	Winner    Provenance
	Loser     Provenance
	Won       any
	Lost      any
}

// InteractiveFill records a value obtained from the prompt callback,
// together with the descriptor it should be persisted into.
type InteractiveFill struct {
	// DescriptorIndex is the priority index of the descriptor the
	// value was written into.
	DescriptorIndex int
	Section         string
	Instance        string
	Attribute       string
	Value           string
}

// ResolvedSection is a fully-collapsed attribute mapping.
type ResolvedSection map[string]any

// ResolvedDocument is the outcome of merging descriptors: one collapsed
// mapping per section, with provenance retained for diagnostics.
// A document is built once per run and never mutated afterwards.
type ResolvedDocument struct {
	Global    ResolvedSection            `json:"global"`
	Variables map[string]ResolvedSection `json:"variables"`
	Platforms map[string]ResolvedSection `json:"platforms"`
	Sensors   map[string]ResolvedSection `json:"sensors"`

	// Provenance is keyed by "section/instance/attribute".
	Provenance map[string]Provenance `json:"-"`

	// Conflicts lists the non-fatal value divergences seen during merge.
	Conflicts []ConflictWarning `json:"-"`

	// Modes records the effective resolution mode per attribute key,
	// using the same keys as Provenance.
	Modes map[string]Mode `json:"-"`

	// Incomplete is set when required attributes are missing and the
	// merge was asked to proceed anyway.
	Incomplete bool `json:"-"`

	// MissingRequired lists "section/instance/attribute" keys of empty
	// required attributes when Incomplete is set.
	MissingRequired []string `json:"-"`

	// InteractiveFills lists prompt-supplied values pending write-back.
	InteractiveFills []InteractiveFill `json:"-"`
}

// Export serializes the four resolved sections to pretty JSON. The
// result reparsed with ParseResolved reproduces every attribute value.
func (doc *ResolvedDocument) Export() ([]byte, error) {
	enc := gnfmt.GNjson{Pretty: true}
	return enc.Encode(doc)
}

// ParseResolved decodes a previously exported resolved document.
func ParseResolved(name string, data []byte) (*ResolvedDocument, error) {
	enc := gnfmt.GNjson{}
	var doc ResolvedDocument
	if err := enc.Decode(data, &doc); err != nil {
		return nil, NewMalformedDescriptorError(name, err)
	}
	if doc.Global == nil {
		doc.Global = ResolvedSection{}
	}
	if doc.Variables == nil {
		doc.Variables = map[string]ResolvedSection{}
	}
	if doc.Platforms == nil {
		doc.Platforms = map[string]ResolvedSection{}
	}
	if doc.Sensors == nil {
		doc.Sensors = map[string]ResolvedSection{}
	}
	return &doc, nil
}

// section returns the resolved instances of a named section.
func (doc *ResolvedDocument) section(name string) map[string]ResolvedSection {
	switch name {
	case SectionGlobal:
		return map[string]ResolvedSection{globalKey: doc.Global}
	case SectionVariables:
		return doc.Variables
	case SectionPlatforms:
		return doc.Platforms
	case SectionSensors:
		return doc.Sensors
	default:
		return nil
	}
}

// Variable returns the resolved attributes for a variable id.
func (doc *ResolvedDocument) Variable(id string) (ResolvedSection, bool) {
	sec, ok := doc.Variables[id]
	return sec, ok
}
