package generator_test

import (
	"context"
	"testing"

	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/generator"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coordDescriptor(t *testing.T) *metadata.Descriptor {
	t.Helper()
	d, err := metadata.ParseDescriptor("d.json", []byte(`{
		"global": {"dataset_id": "obsea_ctd"},
		"variables": {
			"TEMP": {"units": "degrees_Celsius"},
			"DEPTH": {"units": "m"}
		},
		"platforms": {}, "sensors": {}
	}`))
	require.NoError(t, err)
	return d
}

func coordTable(t *testing.T) *dataset.SourceTable {
	t.Helper()
	return &dataset.SourceTable{
		Name:    "a.csv",
		Columns: []string{"TEMP", "DEPTH"},
		Rows: []dataset.SourceRow{
			{Time: mustTime(t, "2023-01-01T00:00:00Z"), TimeValid: true,
				Sensor: "sbe37",
				Values: map[string]string{"TEMP": "13.1", "DEPTH": "19.5"}},
			{Time: mustTime(t, "2023-01-01T01:00:00Z"), TimeValid: true,
				Sensor: "sbe37",
				Values: map[string]string{"TEMP": "13.2", "DEPTH": "20.5"}},
		},
	}
}

func TestCoordinateCasingLowered(t *testing.T) {
	p := generator.New(config.New(), fakeResolver{})
	out, err := p.Run(context.Background(), &generator.Inputs{
		Descriptors: []*metadata.Descriptor{coordDescriptor(t)},
		Tables:      []*dataset.SourceTable{coordTable(t)},
	})
	require.NoError(t, err)

	_, upper := out.Dataset.Column("DEPTH")
	assert.False(t, upper)
	lower, ok := out.Dataset.Column("depth")
	require.True(t, ok)
	assert.Equal(t, "DEPTH", lower.Source)

	// non-coordinate columns keep their casing
	_, ok = out.Dataset.Column("TEMP")
	assert.True(t, ok)
}

func TestCoordinateCasingKept(t *testing.T) {
	cfg := config.New()
	cfg.Dataset.KeepSourceCasing = true

	p := generator.New(cfg, fakeResolver{})
	out, err := p.Run(context.Background(), &generator.Inputs{
		Descriptors: []*metadata.Descriptor{coordDescriptor(t)},
		Tables:      []*dataset.SourceTable{coordTable(t)},
	})
	require.NoError(t, err)

	_, ok := out.Dataset.Column("DEPTH")
	assert.True(t, ok)
}

func TestGeospatialCoverage(t *testing.T) {
	p := generator.New(config.New(), fakeResolver{})
	out, err := p.Run(context.Background(), &generator.Inputs{
		Descriptors: []*metadata.Descriptor{coordDescriptor(t)},
		Tables:      []*dataset.SourceTable{coordTable(t)},
	})
	require.NoError(t, err)

	assert.Equal(t, "19.5", out.Doc.Global["geospatial_vertical_min"])
	assert.Equal(t, "20.5", out.Doc.Global["geospatial_vertical_max"])
}

func TestCoverageDoesNotOverwrite(t *testing.T) {
	d := coordDescriptor(t)
	d.Global["time_coverage_start"] = metadata.AttributeValue{
		Value: "2020-01-01T00:00:00Z",
	}

	p := generator.New(config.New(), fakeResolver{})
	out, err := p.Run(context.Background(), &generator.Inputs{
		Descriptors: []*metadata.Descriptor{d},
		Tables:      []*dataset.SourceTable{coordTable(t)},
	})
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01T00:00:00Z",
		out.Doc.Global["time_coverage_start"])
}
