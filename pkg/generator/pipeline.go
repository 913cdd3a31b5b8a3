// Package generator orchestrates a harmonization run: merge and
// resolve metadata, assemble the dataset, apply export attributes and
// evaluate compliance. Stages run strictly in order and the run halts
// on the first fatal error; the only concurrency inside a run is the
// resolver's batched term fetching.
package generator

import (
	"context"

	"github.com/emso-eric/metadata-harmonizer/pkg/compliance"
	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/emso-eric/metadata-harmonizer/pkg/vocabulary"
)

// Inputs are the already-loaded materials of one run. Reading files
// belongs to the cmd layer; the pipeline is IO-free.
type Inputs struct {
	// Descriptors in priority order, highest first.
	Descriptors []*metadata.Descriptor

	// Tables are the tabular sources to assemble. Optional: without
	// them the run produces metadata only.
	Tables []*dataset.SourceTable

	// Rules enables the compliance stage when set.
	Rules *compliance.RuleSet

	// Bindings maps data columns to variable ids when names differ.
	Bindings map[string]string

	// Prompt fills interactive attributes when set.
	Prompt metadata.PromptFunc

	// AllowIncomplete lets the merge proceed past missing required
	// attributes, so compliance can report on incomplete metadata.
	AllowIncomplete bool
}

// Outputs collects the products of a run.
type Outputs struct {
	Doc     *metadata.ResolvedDocument
	Dataset *dataset.AssembledDataset
	Report  *compliance.Report
}

// Pipeline runs harmonization stages against one configuration.
type Pipeline struct {
	cfg      *config.Config
	resolver vocabulary.Resolver
}

// New creates a Pipeline.
func New(cfg *config.Config, resolver vocabulary.Resolver) *Pipeline {
	return &Pipeline{cfg: cfg, resolver: resolver}
}

// Run executes merge, build, export-attribute and compliance stages.
func (p *Pipeline) Run(ctx context.Context, in *Inputs) (*Outputs, error) {
	out := &Outputs{}

	var mopts []metadata.MergerOption
	if in.Prompt != nil {
		mopts = append(mopts, metadata.WithPrompt(in.Prompt))
	}
	if in.AllowIncomplete {
		mopts = append(mopts, metadata.AllowIncomplete())
	}
	merger := metadata.NewMerger(p.resolver, mopts...)
	doc, err := merger.Merge(ctx, in.Descriptors)
	if err != nil {
		return nil, err
	}
	out.Doc = doc

	if len(in.Tables) > 0 {
		bld := dataset.NewBuilder(
			dataset.OptStrictDrop(p.cfg.Dataset.StrictDrop),
			dataset.OptBindings(in.Bindings),
		)
		ds, err := bld.Build(doc, in.Tables)
		if err != nil {
			return nil, err
		}
		normalizeCoordinateCasing(ds, p.cfg.Dataset.KeepSourceCasing)
		applyCoverage(doc, ds)
		out.Dataset = ds
	}

	if in.Rules != nil {
		engine := compliance.NewEngine(in.Rules)
		out.Report = engine.Evaluate(doc, out.Dataset)
	}
	return out, nil
}
