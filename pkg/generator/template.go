package generator

import (
	"strings"

	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
)

// MinimalTemplate builds a skeleton descriptor for a loaded tabular
// source: required and derivable attributes are pre-declared with
// their mode prefixes so an operator only has to fill in values.
func MinimalTemplate(tbl *dataset.SourceTable) *metadata.Descriptor {
	d := &metadata.Descriptor{
		Name: tbl.Name,
		Global: metadata.Section{
			"dataset_id":           attr(metadata.ModeRequired),
			"title":                attr(metadata.ModeRequired),
			"summary":              attr(metadata.ModeRequired),
			"institution":          attr(metadata.ModeDerived),
			"institution_edmo_uri": attr(metadata.ModeInteractive),
			"license":              attr(metadata.ModeRequired),
			"featureType": metadata.AttributeValue{
				Value: "TimeSeries", Mode: metadata.ModeNone,
			},
		},
		Variables: map[string]metadata.Section{},
		Platforms: map[string]metadata.Section{},
		Sensors:   map[string]metadata.Section{},
	}

	for _, col := range tbl.Columns {
		if strings.HasSuffix(col, "_QC") {
			continue
		}
		d.Variables[col] = metadata.Section{
			"long_name":         attr(metadata.ModeDerived),
			"standard_name":     attr(metadata.ModeDerived),
			"units":             attr(metadata.ModeDerived),
			"sdn_parameter_uri": attr(metadata.ModeRequired),
			"sensor_id":         attr(metadata.ModeRequired),
		}
	}

	for _, sensor := range sensorIDs(tbl) {
		d.Sensors[sensor] = metadata.Section{
			"sensor_model":         attr(metadata.ModeDerived),
			"sensor_model_uri":     attr(metadata.ModeRequired),
			"sensor_serial_number": attr(metadata.ModeInteractive),
		}
	}
	return d
}

func attr(mode metadata.Mode) metadata.AttributeValue {
	return metadata.AttributeValue{Value: "", Mode: mode}
}

func sensorIDs(tbl *dataset.SourceTable) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, row := range tbl.Rows {
		s := strings.TrimSpace(row.Sensor)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			ids = append(ids, s)
		}
	}
	return ids
}
