package metadata_test

import (
	"context"
	"errors"
	"testing"

	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/emso-eric/metadata-harmonizer/pkg/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver serves canned terms and counts batch calls.
type fakeResolver struct {
	terms   map[string]vocabulary.Term
	batches int
	asked   []string
}

func (f *fakeResolver) Resolve(
	_ context.Context, uri string,
) (vocabulary.Term, error) {
	return f.terms[uri], nil
}

func (f *fakeResolver) ResolveBatch(
	_ context.Context, uris []string,
) (map[string]vocabulary.Term, error) {
	f.batches++
	f.asked = append(f.asked, uris...)
	res := make(map[string]vocabulary.Term, len(uris))
	for _, uri := range uris {
		res[uri] = f.terms[uri]
	}
	return res, nil
}

func mustParse(t *testing.T, name, src string) *metadata.Descriptor {
	t.Helper()
	d, err := metadata.ParseDescriptor(name, []byte(src))
	require.NoError(t, err)
	return d
}

func TestMergePriority(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {"title": "from-a", "site": ""},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)
	b := mustParse(t, "b.json", `{
		"global": {"title": "from-b", "site": "obsea", "pi": "someone"},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)
	c := mustParse(t, "c.json", `{
		"global": {"title": "from-c"},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)

	m := metadata.NewMerger(&fakeResolver{})
	doc, err := m.Merge(context.Background(), []*metadata.Descriptor{a, b, c})
	require.NoError(t, err)

	// highest priority non-empty value wins
	assert.Equal(t, "from-a", doc.Global["title"])
	// empty values never win
	assert.Equal(t, "obsea", doc.Global["site"])
	// attributes present in only one descriptor pass through
	assert.Equal(t, "someone", doc.Global["pi"])

	prov := doc.Provenance["global/global/title"]
	assert.Equal(t, "a.json", prov.Descriptor)
	assert.Equal(t, 0, prov.Priority)
	assert.Equal(t, "b.json", doc.Provenance["global/global/site"].Descriptor)

	// two descriptors disagreed with a.json on title
	require.Len(t, doc.Conflicts, 2)
	for _, cw := range doc.Conflicts {
		assert.Equal(t, "title", cw.Attribute)
		assert.Equal(t, "a.json", cw.Winner.Descriptor)
		assert.Equal(t, "from-a", cw.Won)
	}
	assert.Equal(t, "b.json", doc.Conflicts[0].Loser.Descriptor)
	assert.Equal(t, "c.json", doc.Conflicts[1].Loser.Descriptor)
}

func TestMergeAgreementIsNotConflict(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {"title": "same"},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)
	b := mustParse(t, "b.json", `{
		"global": {"title": "same"},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)

	m := metadata.NewMerger(&fakeResolver{})
	doc, err := m.Merge(context.Background(), []*metadata.Descriptor{a, b})
	require.NoError(t, err)
	assert.Empty(t, doc.Conflicts)
}

func TestMergeNoDescriptors(t *testing.T) {
	m := metadata.NewMerger(&fakeResolver{})
	_, err := m.Merge(context.Background(), nil)
	require.Error(t, err)
	var nerr metadata.NoDescriptorsError
	assert.ErrorAs(t, err, &nerr)
}

func TestMergeRequired(t *testing.T) {
	src := `{
		"global": {"*title": ""},
		"variables": {}, "platforms": {}, "sensors": {}
	}`

	m := metadata.NewMerger(&fakeResolver{})
	_, err := m.Merge(
		context.Background(),
		[]*metadata.Descriptor{mustParse(t, "a.json", src)},
	)
	require.Error(t, err)

	var merr metadata.MissingRequiredAttributeError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "global", merr.Section)
	assert.Equal(t, "title", merr.Attribute)
	assert.Equal(t, "a.json", merr.Descriptor)

	// AllowIncomplete marks the document instead of failing
	m = metadata.NewMerger(&fakeResolver{}, metadata.AllowIncomplete())
	doc, err := m.Merge(
		context.Background(),
		[]*metadata.Descriptor{mustParse(t, "a.json", src)},
	)
	require.NoError(t, err)
	assert.True(t, doc.Incomplete)
	assert.Equal(t, []string{"global/global/title"}, doc.MissingRequired)
}

func TestMergeInteractive(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {"$edmo_code": ""},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)

	var askedFor []string
	prompt := func(section, instance, attribute string) (string, error) {
		askedFor = append(askedFor, section+"/"+attribute)
		return "2150", nil
	}

	m := metadata.NewMerger(&fakeResolver{}, metadata.WithPrompt(prompt))
	doc, err := m.Merge(context.Background(), []*metadata.Descriptor{a})
	require.NoError(t, err)

	assert.Equal(t, []string{"global/edmo_code"}, askedFor)
	assert.Equal(t, "2150", doc.Global["edmo_code"])

	// the answer is written back into the declaring descriptor
	assert.Equal(t, "2150", a.Global["edmo_code"].Value)
	assert.Equal(t, metadata.ModeInteractive, a.Global["edmo_code"].Mode)

	require.Len(t, doc.InteractiveFills, 1)
	fill := doc.InteractiveFills[0]
	assert.Equal(t, 0, fill.DescriptorIndex)
	assert.Equal(t, "edmo_code", fill.Attribute)
	assert.Equal(t, "2150", fill.Value)
}

func TestMergeInteractiveWithoutPrompt(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {"$edmo_code": "", "title": "t"},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)

	// no prompt installed: the attribute simply stays empty
	m := metadata.NewMerger(&fakeResolver{})
	doc, err := m.Merge(context.Background(), []*metadata.Descriptor{a})
	require.NoError(t, err)
	assert.Equal(t, "", doc.Global["edmo_code"])
	assert.Empty(t, doc.InteractiveFills)
}

func TestMergeInteractivePromptFailure(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {"$edmo_code": ""},
		"variables": {}, "platforms": {}, "sensors": {}
	}`)

	prompt := func(_, _, _ string) (string, error) {
		return "", errors.New("stdin closed")
	}
	m := metadata.NewMerger(&fakeResolver{}, metadata.WithPrompt(prompt))
	_, err := m.Merge(context.Background(), []*metadata.Descriptor{a})
	require.Error(t, err)
	var perr metadata.PromptError
	assert.ErrorAs(t, err, &perr)
}

func TestMergeDerived(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {},
		"variables": {
			"TEMP": {
				"sdn_parameter_uri": "https://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01/",
				"~standard_name": "",
				"~units": "",
				"~long_name": "already set by hand"
			}
		},
		"platforms": {}, "sensors": {
			"SBE37": {
				"sensor_model_uri": "http://vocab.nerc.ac.uk/collection/L22/current/TOOL0022",
				"~sensor_model": ""
			}
		}
	}`)

	res := &fakeResolver{terms: map[string]vocabulary.Term{
		"http://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01/": {
			URI:          "http://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01/",
			PrefLabel:    "Temperature of the water body",
			Unit:         "Degrees Celsius",
			StandardName: "sea_water_temperature",
		},
		"http://vocab.nerc.ac.uk/collection/L22/current/TOOL0022/": {
			URI:       "http://vocab.nerc.ac.uk/collection/L22/current/TOOL0022/",
			PrefLabel: "SBE 37-SMP MicroCAT",
		},
	}}

	m := metadata.NewMerger(res)
	doc, err := m.Merge(context.Background(), []*metadata.Descriptor{a})
	require.NoError(t, err)

	temp, ok := doc.Variable("TEMP")
	require.True(t, ok)
	assert.Equal(t, "sea_water_temperature", temp["standard_name"])
	assert.Equal(t, "Degrees Celsius", temp["units"])
	// derived autofill never overwrites an explicit value
	assert.Equal(t, "already set by hand", temp["long_name"])
	// the https seed URI was harmonized before lookup
	assert.NotContains(t, res.asked, "https://vocab.nerc.ac.uk/collection/P01/current/TEMPPR01/")

	assert.Equal(t, "SBE 37-SMP MicroCAT", doc.Sensors["SBE37"]["sensor_model"])

	// the descriptor itself stays untouched by autofill
	assert.True(t, a.Variables["TEMP"]["standard_name"].IsEmpty())

	// one batch resolves every seed
	assert.Equal(t, 1, res.batches)
}

func TestMergeDerivedWithoutSeed(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {},
		"variables": {"TEMP": {"~standard_name": ""}},
		"platforms": {}, "sensors": {}
	}`)

	res := &fakeResolver{}
	m := metadata.NewMerger(res)
	doc, err := m.Merge(context.Background(), []*metadata.Descriptor{a})
	require.NoError(t, err)

	// no seed URI: the attribute stays empty and nothing is fetched
	assert.Equal(t, "", doc.Variables["TEMP"]["standard_name"])
	assert.Equal(t, 0, res.batches)
}

func TestMergeExportRoundTrip(t *testing.T) {
	a := mustParse(t, "a.json", `{
		"global": {"title": "t", "depth": 20.0},
		"variables": {"TEMP": {"units": "degC"}},
		"platforms": {"OBSEA": {"platform_name": "OBSEA"}},
		"sensors": {}
	}`)

	m := metadata.NewMerger(&fakeResolver{})
	doc, err := m.Merge(context.Background(), []*metadata.Descriptor{a})
	require.NoError(t, err)

	data, err := doc.Export()
	require.NoError(t, err)

	doc2, err := metadata.ParseResolved("export.json", data)
	require.NoError(t, err)
	assert.Equal(t, doc.Global, doc2.Global)
	assert.Equal(t, doc.Variables, doc2.Variables)
	assert.Equal(t, doc.Platforms, doc2.Platforms)
	assert.Equal(t, doc.Sensors, doc2.Sensors)
}
