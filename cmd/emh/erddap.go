package main

import (
	"fmt"
	"os"

	"github.com/emso-eric/metadata-harmonizer/internal/ioerddap"
	"github.com/emso-eric/metadata-harmonizer/internal/iotable"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/erddap"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/spf13/cobra"
)

var (
	erddapOutput string
	erddapStore  string
)

func getErddapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "erddap metadata.json [source.csv]...",
		Short: "Generate an ERDDAP datasets.xml fragment",
		Long: `Derive an ERDDAP dataset configuration fragment from a resolved
metadata document and its tabular sources, then write it to a file
or merge it into an existing datasets.xml store.

A merge replaces the fragment with the same datasetID in place and
leaves every other byte of the store untouched. The previous store
is backed up next to it before any change.

Examples:
  emh erddap metadata.json ctd.csv -o fragment.xml
  emh erddap metadata.json ctd.csv --store /erddap/content/datasets.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runErddap,
	}

	cmd.Flags().StringVarP(&erddapOutput, "output", "o", "",
		"write the fragment to a file (default: stdout)")
	cmd.Flags().StringVar(&erddapStore, "store", "",
		"merge the fragment into this datasets.xml store")

	return cmd
}

func runErddap(cmd *cobra.Command, args []string) error {
	cfg := getConfig()

	docPaths, sourcePaths := splitArgs(args)
	if len(docPaths) != 1 {
		return fmt.Errorf("exactly one resolved metadata document is required")
	}

	data, err := os.ReadFile(docPaths[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := metadata.ParseResolved(docPaths[0], data)
	if err != nil {
		return err
	}

	reader := iotable.NewReader(cfg)
	var tables []*dataset.SourceTable
	for _, path := range sourcePaths {
		tbl, err := reader.Read(path)
		if err != nil {
			return err
		}
		tables = append(tables, tbl)
	}
	if len(tables) == 0 {
		return fmt.Errorf("at least one tabular source is required")
	}

	ds, err := dataset.NewBuilder(
		dataset.OptStrictDrop(cfg.Dataset.StrictDrop),
	).Build(doc, tables)
	if err != nil {
		return err
	}

	fragment, err := erddap.Build(doc, ds, cfg.Erddap)
	if err != nil {
		return err
	}
	rendered, err := fragment.Render()
	if err != nil {
		return fmt.Errorf("failed to render fragment: %w", err)
	}

	if erddapStore != "" {
		store := ioerddap.NewStore(erddapStore)
		if err := store.Merge(ds.ID, rendered); err != nil {
			return err
		}
		fmt.Printf("Fragment for %q merged into: %s\n", ds.ID, erddapStore)
	}

	switch {
	case erddapOutput != "":
		if err := os.WriteFile(erddapOutput, rendered, 0644); err != nil {
			return fmt.Errorf("failed to write fragment: %w", err)
		}
		fmt.Printf("Fragment written to: %s\n", erddapOutput)
	case erddapStore == "":
		fmt.Println(string(rendered))
	}
	return nil
}
