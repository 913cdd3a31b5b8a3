package metadata

import (
	"maps"
	"slices"

	"github.com/gnames/gnfmt"
)

// Section maps bare attribute names to their values and modes.
type Section map[string]AttributeValue

// Descriptor is one partial metadata input document with the four
// standard sections. Descriptors are read-only inputs for a merge pass;
// the only mutation is the write-back of interactively filled values.
type Descriptor struct {
	// Name identifies the descriptor in diagnostics, normally the
	// source file path.
	Name string

	Global    Section
	Variables map[string]Section
	Platforms map[string]Section
	Sensors   map[string]Section
}

// rawDescriptor mirrors the JSON layout of a descriptor file, with
// mode prefixes still embedded in the keys.
type rawDescriptor struct {
	README    map[string]any            `json:"README,omitempty"`
	Global    map[string]any            `json:"global"`
	Variables map[string]map[string]any `json:"variables"`
	Platforms map[string]map[string]any `json:"platforms"`
	Sensors   map[string]map[string]any `json:"sensors"`
}

// ParseDescriptor decodes a descriptor from JSON, converting prefixed
// attribute names into tagged modes. The README section, if present,
// is documentation for editors and is dropped.
func ParseDescriptor(name string, data []byte) (*Descriptor, error) {
	enc := gnfmt.GNjson{}
	var raw rawDescriptor
	if err := enc.Decode(data, &raw); err != nil {
		return nil, NewMalformedDescriptorError(name, err)
	}

	d := &Descriptor{
		Name:      name,
		Global:    parseSection(raw.Global),
		Variables: parseKeyed(raw.Variables),
		Platforms: parseKeyed(raw.Platforms),
		Sensors:   parseKeyed(raw.Sensors),
	}
	return d, nil
}

func parseSection(raw map[string]any) Section {
	res := make(Section, len(raw))
	for key, value := range raw {
		name, mode := ParseAttrName(key)
		res[name] = AttributeValue{Value: value, Mode: mode}
	}
	return res
}

func parseKeyed(raw map[string]map[string]any) map[string]Section {
	res := make(map[string]Section, len(raw))
	for id, sec := range raw {
		res[id] = parseSection(sec)
	}
	return res
}

// Encode serializes the descriptor back to JSON with mode prefixes
// restored, so interactively filled values can be persisted into the
// originating file.
func (d *Descriptor) Encode() ([]byte, error) {
	raw := rawDescriptor{
		Global:    encodeSection(d.Global),
		Variables: encodeKeyed(d.Variables),
		Platforms: encodeKeyed(d.Platforms),
		Sensors:   encodeKeyed(d.Sensors),
	}
	enc := gnfmt.GNjson{Pretty: true}
	return enc.Encode(raw)
}

func encodeSection(sec Section) map[string]any {
	res := make(map[string]any, len(sec))
	for name, attr := range sec {
		res[attr.Mode.Prefix()+name] = attr.Value
	}
	return res
}

func encodeKeyed(m map[string]Section) map[string]map[string]any {
	res := make(map[string]map[string]any, len(m))
	for id, sec := range m {
		res[id] = encodeSection(sec)
	}
	return res
}

// section returns the named keyed-section map, or a single-instance
// map for the global section, so merge logic can treat all four
// sections uniformly.
func (d *Descriptor) section(name string) map[string]Section {
	switch name {
	case SectionGlobal:
		return map[string]Section{globalKey: d.Global}
	case SectionVariables:
		return d.Variables
	case SectionPlatforms:
		return d.Platforms
	case SectionSensors:
		return d.Sensors
	default:
		return nil
	}
}

// instanceIDs returns the sorted union of instance identifiers for a
// keyed section across descriptors.
func instanceIDs(descriptors []*Descriptor, section string) []string {
	ids := make(map[string]struct{})
	for _, d := range descriptors {
		for id := range d.section(section) {
			ids[id] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(ids))
}
