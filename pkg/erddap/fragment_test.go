package erddap_test

import (
	"strings"
	"testing"
	"time"

	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/erddap"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(t *testing.T) *metadata.ResolvedDocument {
	t.Helper()
	doc, err := metadata.ParseResolved("doc.json", []byte(`{
		"global": {
			"dataset_id": "obsea_ctd",
			"title": "OBSEA CTD",
			"featureType": "TimeSeries"
		},
		"variables": {
			"TEMP": {
				"long_name": "Sea temperature",
				"standard_name": "sea_water_temperature",
				"units": "degrees_Celsius"
			}
		},
		"platforms": {}, "sensors": {}
	}`))
	require.NoError(t, err)
	return doc
}

func testDataset() *dataset.AssembledDataset {
	return &dataset.AssembledDataset{
		ID:    "obsea_ctd",
		Index: []time.Time{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		Columns: []*dataset.Column{
			{Name: "TEMP", Variable: "TEMP",
				Values: []dataset.Value{{Raw: "13.1"}}},
			{Name: "TEMP_QC", Variable: "TEMP", IsQC: true, QCFor: "TEMP",
				Values: []dataset.Value{{Raw: "1"}}},
		},
	}
}

func TestBuildFragment(t *testing.T) {
	cfg := config.New().Erddap
	f, err := erddap.Build(testDoc(t), testDataset(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "obsea_ctd", f.DatasetID)
	assert.Equal(t, "EDDTableFromAsciiFiles", f.Type)
	assert.True(t, f.Active)
	assert.Equal(t, "/data/datasets/obsea_ctd", f.FileDir)

	atts := make(map[string]string)
	for _, att := range f.AddAttributes.Atts {
		atts[att.Name] = att.Value
	}
	assert.Equal(t, "OBSEA CTD", atts["title"])
	assert.Equal(t, "TimeSeries", atts["cdm_data_type"])
	assert.Equal(t, "TEMP_QC", atts["subsetVariables"])

	// four coordinates plus the two assembled columns
	require.Len(t, f.DataVariables, 6)
	assert.Equal(t, "time", f.DataVariables[0].SourceName)
	assert.Equal(t, "double", f.DataVariables[0].DataType)

	temp := f.DataVariables[4]
	assert.Equal(t, "TEMP", temp.SourceName)
	assert.Equal(t, "double", temp.DataType)

	qc := f.DataVariables[5]
	assert.Equal(t, "TEMP_QC", qc.SourceName)
	assert.Equal(t, "ubyte", qc.DataType)
}

func TestBuildFragmentNeedsID(t *testing.T) {
	ds := testDataset()
	ds.ID = ""
	_, err := erddap.Build(testDoc(t), ds, config.New().Erddap)
	require.Error(t, err)
	var merr erddap.MissingDatasetIDError
	assert.ErrorAs(t, err, &merr)
}

func TestRender(t *testing.T) {
	f, err := erddap.Build(testDoc(t), testDataset(), config.New().Erddap)
	require.NoError(t, err)

	data, err := f.Render()
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `<dataset `))
	assert.Contains(t, s, `datasetID="obsea_ctd"`)
	assert.Contains(t, s, `<att name="title">OBSEA CTD</att>`)
	assert.Contains(t, s, `<sourceName>TEMP</sourceName>`)
}
