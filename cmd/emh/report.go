package main

import (
	"fmt"
	"os"

	"github.com/emso-eric/metadata-harmonizer/internal/iospec"
	"github.com/emso-eric/metadata-harmonizer/internal/iotable"
	"github.com/emso-eric/metadata-harmonizer/pkg/compliance"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/spf13/cobra"
)

var (
	reportRules  string
	reportOutput string
)

func getReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [metadata.json]... [source.csv]...",
		Short: "Check resolved metadata against the specifications",
		Long: `Evaluate resolved metadata documents against a compliance rule
set and write a report table.

With a single document the report lists every rule outcome per
target. With several documents one aggregate line per dataset is
written instead, so a whole observatory can be surveyed at once.

Tabular sources (.csv) given alongside a single document enable the
operational checks that need the assembled data.

Examples:
  emh report metadata.json
  emh report metadata.json ctd.csv -o report.tsv
  emh report --rules harmonization.yaml site1.json site2.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runReport,
	}

	cmd.Flags().StringVar(&reportRules, "rules", "",
		"rule set file (default: embedded EMSO specifications)")
	cmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"write the report table to a file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := getConfig()

	docPaths, sourcePaths := splitArgs(args)
	if len(docPaths) == 0 {
		return fmt.Errorf("at least one resolved metadata document is required")
	}
	if len(docPaths) > 1 && len(sourcePaths) > 0 {
		return fmt.Errorf(
			"tabular sources can only accompany a single document")
	}

	rules, err := iospec.Load(reportRules)
	if err != nil {
		return err
	}

	var tables []*dataset.SourceTable
	if len(sourcePaths) > 0 {
		reader := iotable.NewReader(cfg)
		for _, path := range sourcePaths {
			tbl, err := reader.Read(path)
			if err != nil {
				return err
			}
			tables = append(tables, tbl)
		}
	}

	engine := compliance.NewEngine(rules)
	var reports []*compliance.Report
	for _, path := range docPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		doc, err := metadata.ParseResolved(path, data)
		if err != nil {
			return err
		}

		var ds *dataset.AssembledDataset
		if len(tables) > 0 {
			ds, err = dataset.NewBuilder(
				dataset.OptStrictDrop(cfg.Dataset.StrictDrop),
			).Build(doc, tables)
			if err != nil {
				return err
			}
		}
		reports = append(reports, engine.Evaluate(doc, ds))
	}

	out := os.Stdout
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if len(reports) == 1 {
		r := reports[0]
		if err := r.WriteCSV(out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr,
			"Required: %.1f%%  Optional: %.1f%%  Operational valid: %t\n",
			r.RequiredScore*100, r.OptionalScore*100, r.OperationalValid)
	} else {
		if err := compliance.WriteAggregate(out, reports); err != nil {
			return err
		}
	}
	if reportOutput != "" {
		fmt.Printf("Report written to: %s\n", reportOutput)
	}
	return nil
}
