package generator_test

import (
	"testing"

	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/generator"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimalTemplate(t *testing.T) {
	tbl := &dataset.SourceTable{
		Name:    "a.csv",
		Columns: []string{"TEMP", "TEMP_QC", "PSAL"},
		Rows: []dataset.SourceRow{
			{Sensor: "sbe37"},
			{Sensor: "sbe37"},
			{Sensor: "aadi"},
		},
	}

	d := generator.MinimalTemplate(tbl)

	assert.Equal(t, metadata.ModeRequired, d.Global["title"].Mode)
	assert.Equal(t, metadata.ModeInteractive,
		d.Global["institution_edmo_uri"].Mode)
	assert.Equal(t, "TimeSeries", d.Global["featureType"].Value)

	// QC companions never get their own variable entry
	assert.Len(t, d.Variables, 2)
	require.Contains(t, d.Variables, "TEMP")
	require.Contains(t, d.Variables, "PSAL")
	assert.Equal(t, metadata.ModeDerived,
		d.Variables["TEMP"]["standard_name"].Mode)
	assert.Equal(t, metadata.ModeRequired,
		d.Variables["TEMP"]["sdn_parameter_uri"].Mode)

	require.Len(t, d.Sensors, 2)
	require.Contains(t, d.Sensors, "sbe37")
	require.Contains(t, d.Sensors, "aadi")

	// the skeleton round-trips through the descriptor codec
	data, err := d.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"*title"`)
	assert.Contains(t, string(data), `"~standard_name"`)
	_, err = metadata.ParseDescriptor("a.json", data)
	require.NoError(t, err)
}
