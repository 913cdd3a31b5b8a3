package metadata_test

import (
	"testing"

	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var descriptorJSON = []byte(`{
  "README": {"purpose": "editor notes are dropped"},
  "global": {
    "*title": "OBSEA expansion",
    "~institution": "",
    "$edmo_code": ""
  },
  "variables": {
    "TEMP": {
      "*units": "degrees_celsius",
      "~standard_name": "",
      "sdn_parameter_uri": "http://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01"
    }
  },
  "platforms": {},
  "sensors": {
    "SBE37": {"*sensor_model": "SBE 37-SMP"}
  }
}`)

func TestParseDescriptor(t *testing.T) {
	d, err := metadata.ParseDescriptor("obsea.json", descriptorJSON)
	require.NoError(t, err)

	assert.Equal(t, "obsea.json", d.Name)

	title := d.Global["title"]
	assert.Equal(t, "OBSEA expansion", title.Value)
	assert.Equal(t, metadata.ModeRequired, title.Mode)
	assert.Equal(t, metadata.ModeDerived, d.Global["institution"].Mode)
	assert.Equal(t, metadata.ModeInteractive, d.Global["edmo_code"].Mode)

	temp := d.Variables["TEMP"]
	require.NotNil(t, temp)
	assert.Equal(t, metadata.ModeNone, temp["sdn_parameter_uri"].Mode)
	assert.True(t, temp["standard_name"].IsEmpty())
}

func TestParseDescriptorMalformed(t *testing.T) {
	_, err := metadata.ParseDescriptor("bad.json", []byte(`{"global": [1,2]}`))
	require.Error(t, err)

	var merr metadata.MalformedDescriptorError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "bad.json", merr.File)
}

func TestDescriptorEncodeRoundTrip(t *testing.T) {
	d, err := metadata.ParseDescriptor("obsea.json", descriptorJSON)
	require.NoError(t, err)

	data, err := d.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"*title"`)
	assert.Contains(t, string(data), `"~standard_name"`)
	assert.Contains(t, string(data), `"$edmo_code"`)

	d2, err := metadata.ParseDescriptor("obsea.json", data)
	require.NoError(t, err)
	assert.Equal(t, d.Global, d2.Global)
	assert.Equal(t, d.Variables, d2.Variables)
	assert.Equal(t, d.Sensors, d2.Sensors)
}
