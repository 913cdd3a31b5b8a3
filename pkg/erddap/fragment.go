// Package erddap models the serving-layer configuration fragment for
// one dataset, a <dataset> chunk of an ERDDAP datasets.xml file.
// Merging fragments into a store lives in internal/ioerddap.
package erddap

import (
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
)

// defaultReloadMinutes is a weekly reload, matching ERDDAP's
// recommendation for slowly changing observatory archives.
const defaultReloadMinutes = 10080

// Att is one <att name="..."> element.
type Att struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// AddAttributes is an <addAttributes> block.
type AddAttributes struct {
	Atts []Att `xml:"att"`
}

// DataVariable is one <dataVariable> element.
type DataVariable struct {
	SourceName      string        `xml:"sourceName"`
	DestinationName string        `xml:"destinationName"`
	DataType        string        `xml:"dataType"`
	AddAttributes   AddAttributes `xml:"addAttributes"`
}

// Fragment is one <dataset> chunk of a datasets.xml file.
type Fragment struct {
	XMLName xml.Name `xml:"dataset"`

	Type      string `xml:"type,attr"`
	DatasetID string `xml:"datasetID,attr"`
	Active    bool   `xml:"active,attr"`

	ReloadEveryNMinutes int    `xml:"reloadEveryNMinutes"`
	FileDir             string `xml:"fileDir,omitempty"`
	FileNameRegex       string `xml:"fileNameRegex,omitempty"`

	AddAttributes AddAttributes  `xml:"addAttributes"`
	DataVariables []DataVariable `xml:"dataVariable"`
}

// Render serializes the fragment as indented XML.
func (f *Fragment) Render() ([]byte, error) {
	return xml.MarshalIndent(f, "", "    ")
}

// Build derives a fragment from the dataset structure and the resolved
// document: global attributes, the four coordinate variables, and one
// data variable per assembled column.
func Build(
	doc *metadata.ResolvedDocument,
	ds *dataset.AssembledDataset,
	cfg config.ErddapConfig,
) (*Fragment, error) {
	if ds.ID == "" {
		return nil, NewMissingDatasetIDError()
	}

	f := &Fragment{
		Type:                "EDDTableFromAsciiFiles",
		DatasetID:           ds.ID,
		Active:              true,
		ReloadEveryNMinutes: defaultReloadMinutes,
		FileNameRegex:       `.*\.csv`,
	}
	if cfg.FileAccess && cfg.FileDir != "" {
		f.FileDir = strings.TrimSuffix(cfg.FileDir, "/") + "/" + ds.ID
	}

	f.AddAttributes = globalAtts(doc, ds)
	f.DataVariables = coordinateVariables()
	for _, col := range ds.Columns {
		f.DataVariables = append(f.DataVariables, dataVariable(doc, col))
	}
	return f, nil
}

// globalAtts collects the string-valued global attributes, plus the
// serving-layer additions ERDDAP needs.
func globalAtts(
	doc *metadata.ResolvedDocument, ds *dataset.AssembledDataset,
) AddAttributes {
	atts := make(map[string]string)
	for name, value := range doc.Global {
		if s, ok := value.(string); ok && s != "" {
			atts[name] = s
		} else if value != nil {
			if s := fmt.Sprintf("%v", value); s != "" {
				atts[name] = s
			}
		}
	}

	featureType := atts["featureType"]
	if featureType == "" {
		featureType = "TimeSeries"
	}
	atts["cdm_data_type"] = featureType

	var subset []string
	for _, col := range ds.Columns {
		if col.IsQC {
			subset = append(subset, col.Name)
		}
	}
	if len(subset) > 0 {
		atts["subsetVariables"] = strings.Join(subset, ", ")
	}

	var res AddAttributes
	for _, name := range slices.Sorted(maps.Keys(atts)) {
		res.Atts = append(res.Atts, Att{Name: name, Value: atts[name]})
	}
	return res
}

// coordinateVariables returns the standard coordinate set of a
// time-series dataset.
func coordinateVariables() []DataVariable {
	return []DataVariable{
		{
			SourceName:      "time",
			DestinationName: "time",
			DataType:        "double",
			AddAttributes: AddAttributes{Atts: []Att{
				{Name: "units", Value: "seconds since 1970-01-01T00:00:00Z"},
				{Name: "standard_name", Value: "time"},
				{Name: "axis", Value: "T"},
			}},
		},
		{
			SourceName:      "depth",
			DestinationName: "depth",
			DataType:        "float",
			AddAttributes: AddAttributes{Atts: []Att{
				{Name: "units", Value: "m"},
				{Name: "standard_name", Value: "depth"},
				{Name: "axis", Value: "Z"},
				{Name: "positive", Value: "down"},
			}},
		},
		{
			SourceName:      "latitude",
			DestinationName: "latitude",
			DataType:        "float",
			AddAttributes: AddAttributes{Atts: []Att{
				{Name: "units", Value: "degrees_north"},
				{Name: "standard_name", Value: "latitude"},
				{Name: "axis", Value: "Y"},
			}},
		},
		{
			SourceName:      "longitude",
			DestinationName: "longitude",
			DataType:        "float",
			AddAttributes: AddAttributes{Atts: []Att{
				{Name: "units", Value: "degrees_east"},
				{Name: "standard_name", Value: "longitude"},
				{Name: "axis", Value: "X"},
			}},
		},
	}
}

// dataVariable maps one assembled column to a <dataVariable>. Quality
// flags are small integers; everything else stays double precision.
func dataVariable(
	doc *metadata.ResolvedDocument, col *dataset.Column,
) DataVariable {
	v := DataVariable{
		SourceName:      col.Name,
		DestinationName: col.Name,
		DataType:        "double",
	}
	if col.IsQC {
		v.DataType = "ubyte"
		v.AddAttributes.Atts = []Att{
			{Name: "long_name", Value: "Quality flag for " + col.QCFor},
			{Name: "flag_values", Value: "0, 1, 2, 3, 4, 7, 8, 9"},
			{Name: "flag_meanings", Value: qcFlagMeanings},
		}
		return v
	}

	sec, ok := doc.Variable(col.Variable)
	if !ok {
		return v
	}
	for _, name := range []string{
		"long_name", "standard_name", "units", "sdn_parameter_uri",
	} {
		if s, ok := sec[name].(string); ok && s != "" {
			v.AddAttributes.Atts = append(
				v.AddAttributes.Atts, Att{Name: name, Value: s},
			)
		}
	}
	return v
}

// qcFlagMeanings follows the OceanSITES quality-flag convention.
const qcFlagMeanings = "no_qc_performed good_data probably_good_data " +
	"bad_data_that_are_potentially_correctable bad_data " +
	"nominal_value interpolated_value missing_value"
