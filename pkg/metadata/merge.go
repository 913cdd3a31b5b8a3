package metadata

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/emso-eric/metadata-harmonizer/pkg/vocabulary"
)

// PromptFunc supplies a value for an interactive attribute that no
// descriptor filled. It decouples the merge from any particular
// user-interaction surface; tests use a scripted stub.
type PromptFunc func(section, instance, attribute string) (string, error)

// Merger collapses an ordered list of descriptors (index 0 = highest
// priority) into a ResolvedDocument.
type Merger struct {
	resolver        vocabulary.Resolver
	prompt          PromptFunc
	allowIncomplete bool
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithPrompt installs the callback used for interactive attributes.
func WithPrompt(p PromptFunc) MergerOption {
	return func(m *Merger) { m.prompt = p }
}

// AllowIncomplete marks missing required attributes on the document
// instead of failing the merge. Used by the compliance path, which
// must be able to report on incomplete metadata.
func AllowIncomplete() MergerOption {
	return func(m *Merger) { m.allowIncomplete = true }
}

// NewMerger creates a Merger that resolves derived attributes through
// the given vocabulary resolver.
func NewMerger(resolver vocabulary.Resolver, opts ...MergerOption) *Merger {
	m := &Merger{resolver: resolver}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// seedSpec associates a seed URI attribute with the attributes that a
// resolved term can fill.
type seedSpec struct {
	seed  string
	fills map[string]func(vocabulary.Term) string
}

func prefLabel(t vocabulary.Term) string    { return t.PrefLabel }
func urn(t vocabulary.Term) string          { return t.URN }
func unit(t vocabulary.Term) string         { return t.Unit }
func standardName(t vocabulary.Term) string { return t.StandardName }

// derivedSeeds lists, per section, the seed URI attributes and the
// derived attributes each one can fill. More specific seeds come
// first; a filled attribute is never overwritten.
var derivedSeeds = map[string][]seedSpec{
	SectionGlobal: {
		{seed: "institution_edmo_uri", fills: map[string]func(vocabulary.Term) string{
			"institution": prefLabel,
		}},
	},
	SectionVariables: {
		{seed: "sdn_uom_uri", fills: map[string]func(vocabulary.Term) string{
			"units":        prefLabel,
			"sdn_uom_name": prefLabel,
			"sdn_uom_urn":  urn,
		}},
		{seed: "sdn_parameter_uri", fills: map[string]func(vocabulary.Term) string{
			"long_name":          prefLabel,
			"sdn_parameter_name": prefLabel,
			"sdn_parameter_urn":  urn,
			"standard_name":      standardName,
			"units":              unit,
		}},
	},
	SectionSensors: {
		{seed: "sensor_model_uri", fills: map[string]func(vocabulary.Term) string{
			"sensor_model":           prefLabel,
			"sensor_SeaVoX_L22_code": urn,
		}},
	},
	SectionPlatforms: {
		{seed: "platform_uri", fills: map[string]func(vocabulary.Term) string{
			"platform_name": prefLabel,
		}},
	},
}

var sectionOrder = []string{
	SectionGlobal, SectionVariables, SectionPlatforms, SectionSensors,
}

// attrState tracks merge bookkeeping for one attribute of one
// section instance.
type attrState struct {
	section  string
	instance string
	name     string
	mode     Mode
	declIdx  int
}

// Merge scans descriptors in priority order, taking the first
// non-empty value for every attribute present in any descriptor.
// Conflicting non-empty values are not an error: the higher-priority
// value wins and a ConflictWarning is recorded. Interactive gaps are
// filled through the prompt callback; derived gaps through the
// vocabulary resolver. A required attribute left empty fails the
// merge unless AllowIncomplete was set.
func (m *Merger) Merge(
	ctx context.Context, descriptors []*Descriptor,
) (*ResolvedDocument, error) {
	if len(descriptors) == 0 {
		return nil, NewNoDescriptorsError()
	}

	doc := &ResolvedDocument{
		Global:     ResolvedSection{},
		Variables:  map[string]ResolvedSection{},
		Platforms:  map[string]ResolvedSection{},
		Sensors:    map[string]ResolvedSection{},
		Provenance: map[string]Provenance{},
		Modes:      map[string]Mode{},
	}

	var states []attrState
	for _, section := range sectionOrder {
		for _, id := range instanceIDs(descriptors, section) {
			states = append(
				states, m.mergeInstance(doc, descriptors, section, id)...,
			)
		}
	}

	if err := m.fillInteractive(doc, descriptors, states); err != nil {
		return nil, err
	}
	if err := m.fillDerived(ctx, doc, states); err != nil {
		return nil, err
	}
	if err := m.checkRequired(doc, descriptors, states); err != nil {
		return nil, err
	}
	return doc, nil
}

// mergeInstance collapses one section instance across all descriptors.
func (m *Merger) mergeInstance(
	doc *ResolvedDocument,
	descriptors []*Descriptor,
	section, id string,
) []attrState {
	attrNames := make(map[string]struct{})
	for _, d := range descriptors {
		for name := range d.section(section)[id] {
			attrNames[name] = struct{}{}
		}
	}

	resolved := ResolvedSection{}
	var states []attrState

	for _, name := range slices.Sorted(maps.Keys(attrNames)) {
		st := attrState{section: section, instance: id, name: name, declIdx: -1}
		var winner Provenance
		var value any
		haveValue := false

		for i, d := range descriptors {
			av, ok := d.section(section)[id][name]
			if !ok {
				continue
			}
			if st.declIdx < 0 {
				st.declIdx = i
				st.mode = av.Mode
			}
			if av.IsEmpty() {
				continue
			}
			if !haveValue {
				haveValue = true
				value = av.Value
				winner = Provenance{Descriptor: d.Name, Priority: i}
				continue
			}
			if valueString(av.Value) != valueString(value) {
				conflict := ConflictWarning{
					Section:   section,
					Instance:  id,
					Attribute: name,
					Winner:    winner,
					Loser:     Provenance{Descriptor: d.Name, Priority: i},
					Won:       value,
					Lost:      av.Value,
				}
				doc.Conflicts = append(doc.Conflicts, conflict)
				slog.Warn("conflicting attribute values, higher priority wins",
					"section", section, "instance", id, "attribute", name,
					"winner", winner.Descriptor, "won", valueString(value),
					"loser", d.Name, "lost", valueString(av.Value))
			}
		}

		key := attrKey(section, id, name)
		doc.Modes[key] = st.mode
		if haveValue {
			resolved[name] = value
			doc.Provenance[key] = winner
		} else {
			resolved[name] = ""
		}
		states = append(states, st)
	}

	doc.setSection(section, id, resolved)
	return states
}

// fillInteractive asks the prompt callback for every interactive
// attribute that is still empty and writes answers back into the
// declaring descriptor so the caller can persist them.
func (m *Merger) fillInteractive(
	doc *ResolvedDocument, descriptors []*Descriptor, states []attrState,
) error {
	if m.prompt == nil {
		return nil
	}
	for _, st := range states {
		if st.mode != ModeInteractive {
			continue
		}
		sec := doc.section(st.section)[st.instance]
		if !isEmptyValue(sec[st.name]) {
			continue
		}
		value, err := m.prompt(st.section, st.instance, st.name)
		if err != nil {
			return NewPromptError(st.section, st.name, err)
		}
		if value == "" {
			continue
		}
		sec[st.name] = value
		key := attrKey(st.section, st.instance, st.name)
		target := descriptors[st.declIdx]
		doc.Provenance[key] = Provenance{
			Descriptor: target.Name, Priority: st.declIdx,
		}
		target.section(st.section)[st.instance][st.name] = AttributeValue{
			Value: value, Mode: ModeInteractive,
		}
		doc.InteractiveFills = append(doc.InteractiveFills, InteractiveFill{
			DescriptorIndex: st.declIdx,
			Section:         st.section,
			Instance:        st.instance,
			Attribute:       st.name,
			Value:           value,
		})
	}
	return nil
}

// fillDerived resolves the seed URIs needed by still-empty derived
// attributes in one deduplicated batch, then fills the gaps. Derived
// values go only into the resolved document, never into descriptors,
// and never overwrite an explicitly supplied value.
func (m *Merger) fillDerived(
	ctx context.Context, doc *ResolvedDocument, states []attrState,
) error {
	type fill struct {
		sec  ResolvedSection
		name string
		uri  string
		fn   func(vocabulary.Term) string
	}

	var fills []fill
	uriSet := make(map[string]struct{})

	for _, st := range states {
		if st.mode != ModeDerived {
			continue
		}
		sec := doc.section(st.section)[st.instance]
		if !isEmptyValue(sec[st.name]) {
			continue
		}
		for _, spec := range derivedSeeds[st.section] {
			fn, ok := spec.fills[st.name]
			if !ok {
				continue
			}
			seed, _ := sec[spec.seed].(string)
			if seed == "" {
				continue
			}
			uri := vocabulary.HarmonizeURI(seed)
			uriSet[uri] = struct{}{}
			fills = append(fills, fill{sec: sec, name: st.name, uri: uri, fn: fn})
			break
		}
	}

	if len(fills) == 0 {
		return nil
	}

	terms, err := m.resolver.ResolveBatch(
		ctx, slices.Sorted(maps.Keys(uriSet)),
	)
	if err != nil {
		return err
	}

	for _, f := range fills {
		if !isEmptyValue(f.sec[f.name]) {
			continue
		}
		if v := f.fn(terms[f.uri]); v != "" {
			f.sec[f.name] = v
		}
	}
	return nil
}

// checkRequired verifies that every required attribute ended up
// non-empty. The error names the section, the attribute, and the
// highest-priority descriptor that should have supplied it.
func (m *Merger) checkRequired(
	doc *ResolvedDocument, descriptors []*Descriptor, states []attrState,
) error {
	for _, st := range states {
		if st.mode != ModeRequired {
			continue
		}
		sec := doc.section(st.section)[st.instance]
		if !isEmptyValue(sec[st.name]) {
			continue
		}
		expected := descriptors[st.declIdx].Name
		if !m.allowIncomplete {
			return NewMissingRequiredAttributeError(
				st.section, st.instance, st.name, expected,
			)
		}
		doc.Incomplete = true
		doc.MissingRequired = append(
			doc.MissingRequired, attrKey(st.section, st.instance, st.name),
		)
	}
	return nil
}

func attrKey(section, instance, name string) string {
	return section + "/" + instance + "/" + name
}

// setSection stores a resolved instance into the right document field.
func (doc *ResolvedDocument) setSection(
	section, id string, resolved ResolvedSection,
) {
	switch section {
	case SectionGlobal:
		doc.Global = resolved
	case SectionVariables:
		doc.Variables[id] = resolved
	case SectionPlatforms:
		doc.Platforms[id] = resolved
	case SectionSensors:
		doc.Sensors[id] = resolved
	}
}
