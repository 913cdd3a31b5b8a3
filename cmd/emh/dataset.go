package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emso-eric/metadata-harmonizer/internal/iotable"
	"github.com/emso-eric/metadata-harmonizer/internal/iovocab"
	pkgconfig "github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/generator"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/emso-eric/metadata-harmonizer/pkg/vocabulary"
	"github.com/spf13/cobra"
)

var (
	datasetOutput      string
	datasetBindings    []string
	datasetInteractive bool
	datasetIncomplete  bool
	datasetGenerate    bool
)

func getDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset [descriptor.json]... [source.csv]...",
		Short: "Merge metadata and assemble a harmonized dataset",
		Long: `Merge metadata descriptors into one resolved document, resolve
controlled-vocabulary terms, and outer-join tabular sensor sources
into a time-indexed dataset.

Descriptor files (.json) are merged in the order given, first file
having the highest priority. Remaining arguments (.csv) are the
tabular sources.

With --generate, a minimal descriptor template is derived from the
first tabular source instead; fill it in and rerun.

Examples:
  emh dataset deployment.json defaults.json ctd.csv
  emh dataset --generate ctd.csv
  emh dataset --interactive --bind temp=TEMP site.json ctd.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDataset,
	}

	cmd.Flags().StringVarP(&datasetOutput, "output", "o", "metadata.json",
		"path for the resolved metadata document")
	cmd.Flags().StringArrayVar(&datasetBindings, "bind", nil,
		"column-to-variable association, e.g. --bind temp=TEMP")
	cmd.Flags().BoolVar(&datasetInteractive, "interactive", false,
		"prompt for empty interactive attributes and persist answers")
	cmd.Flags().BoolVar(&datasetIncomplete, "allow-incomplete", false,
		"proceed past missing required attributes")
	cmd.Flags().BoolVar(&datasetGenerate, "generate", false,
		"write a minimal descriptor template for the first source")

	return cmd
}

func runDataset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

	descriptorPaths, sourcePaths := splitArgs(args)

	reader := iotable.NewReader(cfg)
	var tables []*dataset.SourceTable
	for _, path := range sourcePaths {
		tbl, err := reader.Read(path)
		if err != nil {
			return err
		}
		tables = append(tables, tbl)
	}

	if datasetGenerate {
		return generateTemplate(tables)
	}

	descriptors, err := loadDescriptors(descriptorPaths)
	if err != nil {
		return err
	}

	bindings, err := parseBindings(datasetBindings)
	if err != nil {
		return err
	}

	resolver, closeCache, err := newResolver(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	in := &generator.Inputs{
		Descriptors:     descriptors,
		Tables:          tables,
		Bindings:        bindings,
		AllowIncomplete: datasetIncomplete,
	}
	if datasetInteractive {
		in.Prompt = stdinPrompt
	}

	out, err := generator.New(cfg, resolver).Run(ctx, in)
	if err != nil {
		return err
	}

	if err := persistInteractiveFills(out.Doc, descriptors, descriptorPaths); err != nil {
		return err
	}

	data, err := out.Doc.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(datasetOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Resolved metadata written to: %s\n", datasetOutput)

	for _, w := range warningsOf(out) {
		fmt.Printf("Warning: %s\n", w)
	}
	if out.Dataset != nil {
		fmt.Printf("Assembled %d rows over %d columns\n",
			len(out.Dataset.Index), len(out.Dataset.Columns))
	}
	return nil
}

// splitArgs separates descriptor files from tabular sources by
// extension, keeping the order within each group.
func splitArgs(args []string) (descriptors, sources []string) {
	for _, arg := range args {
		if strings.EqualFold(filepath.Ext(arg), ".json") {
			descriptors = append(descriptors, arg)
		} else {
			sources = append(sources, arg)
		}
	}
	return descriptors, sources
}

func loadDescriptors(paths []string) ([]*metadata.Descriptor, error) {
	var res []*metadata.Descriptor
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read descriptor: %w", err)
		}
		d, err := metadata.ParseDescriptor(path, data)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, nil
}

func parseBindings(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	res := make(map[string]string, len(raw))
	for _, b := range raw {
		col, variable, ok := strings.Cut(b, "=")
		if !ok || col == "" || variable == "" {
			return nil, fmt.Errorf("invalid binding %q, expected COLUMN=VARIABLE", b)
		}
		res[col] = variable
	}
	return res, nil
}

// newResolver wires the vocabulary resolver with its persistent cache.
func newResolver(cfg *pkgconfig.Config) (vocabulary.Resolver, func(), error) {
	cachePath := "vocabulary.db"
	if cfg.HomeDir != "" {
		if err := os.MkdirAll(pkgconfig.CacheDir(cfg.HomeDir), 0755); err == nil {
			cachePath = pkgconfig.VocabCachePath(cfg.HomeDir)
		}
	}
	cache, err := iovocab.NewCache(cachePath)
	if err != nil {
		return nil, nil, err
	}
	res := iovocab.NewResolver(cfg, cache, iovocab.WithProgress())
	return res, func() { cache.Close() }, nil
}

// stdinPrompt asks for an attribute value on the terminal.
func stdinPrompt(section, instance, attribute string) (string, error) {
	if instance == section {
		fmt.Printf("Value for %s attribute '%s': ", section, attribute)
	} else {
		fmt.Printf("Value for %s '%s' attribute '%s': ",
			section, instance, attribute)
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// persistInteractiveFills writes descriptors that received prompt
// answers back to their files, so reruns are idempotent.
func persistInteractiveFills(
	doc *metadata.ResolvedDocument,
	descriptors []*metadata.Descriptor,
	paths []string,
) error {
	dirty := make(map[int]struct{})
	for _, fill := range doc.InteractiveFills {
		dirty[fill.DescriptorIndex] = struct{}{}
	}
	for idx := range dirty {
		data, err := descriptors[idx].Encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(paths[idx], data, 0644); err != nil {
			return fmt.Errorf("failed to update descriptor: %w", err)
		}
		fmt.Printf("Updated descriptor: %s\n", paths[idx])
	}
	return nil
}

func generateTemplate(tables []*dataset.SourceTable) error {
	if len(tables) == 0 {
		return fmt.Errorf("--generate needs at least one tabular source")
	}
	tmpl := generator.MinimalTemplate(tables[0])
	data, err := tmpl.Encode()
	if err != nil {
		return err
	}

	path := templatePath(tables[0].Name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	fmt.Printf("Minimal metadata template written to: %s\n", path)
	return nil
}

// templatePath derives a collision-free output name next to the
// current directory.
func templatePath(source string) string {
	base := strings.TrimSuffix(filepath.Base(source),
		filepath.Ext(source)) + ".min.json"
	path := base
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = fmt.Sprintf("%s.%d", base, n)
	}
}

func warningsOf(out *generator.Outputs) []string {
	var res []string
	for _, c := range out.Doc.Conflicts {
		res = append(res, fmt.Sprintf(
			"conflicting values for %s/%s: kept %v from %s, ignored %v from %s",
			c.Section, c.Attribute, c.Won, c.Winner.Descriptor,
			c.Lost, c.Loser.Descriptor))
	}
	if out.Doc.Incomplete {
		res = append(res, fmt.Sprintf(
			"document is incomplete, missing: %s",
			strings.Join(out.Doc.MissingRequired, ", ")))
	}
	if out.Dataset != nil {
		for _, w := range out.Dataset.Warnings {
			res = append(res, fmt.Sprintf(
				"%s line %d: %s", w.Table, w.Line, w.Reason))
		}
	}
	return res
}
