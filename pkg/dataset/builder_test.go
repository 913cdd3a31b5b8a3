package dataset_test

import (
	"testing"
	"time"

	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}

func testDoc(t *testing.T, variables ...string) *metadata.ResolvedDocument {
	t.Helper()
	src := `{
		"global": {"dataset_id": "obsea_ctd"},
		"variables": {`
	for i, v := range variables {
		if i > 0 {
			src += ","
		}
		src += `"` + v + `": {"units": "u"}`
	}
	src += `}, "platforms": {}, "sensors": {}}`

	doc, err := metadata.ParseResolved("doc.json", []byte(src))
	require.NoError(t, err)
	return doc
}

func row(t *testing.T, stamp, sensor string, values map[string]string) dataset.SourceRow {
	t.Helper()
	return dataset.SourceRow{
		Time:      ts(t, stamp),
		TimeValid: true,
		RawTime:   stamp,
		Sensor:    sensor,
		Values:    values,
	}
}

func TestBuildOuterJoin(t *testing.T) {
	// two sensors overlap on t2 only; the union of t1..t4 must
	// produce exactly four rows with explicit missing cells.
	a := &dataset.SourceTable{
		Name: "a.csv", TimeColumn: "time", SensorColumn: "sensor_id",
		Columns: []string{"TEMP"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T00:00:00Z", "sbe37", map[string]string{"TEMP": "13.1"}),
			row(t, "2023-01-01T01:00:00Z", "sbe37", map[string]string{"TEMP": "13.2"}),
		},
	}
	b := &dataset.SourceTable{
		Name: "b.csv", TimeColumn: "time", SensorColumn: "sensor_id",
		Columns: []string{"PSAL"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T01:00:00Z", "aadi", map[string]string{"PSAL": "38.0"}),
			row(t, "2023-01-01T02:00:00Z", "aadi", map[string]string{"PSAL": "38.1"}),
			row(t, "2023-01-01T03:00:00Z", "aadi", map[string]string{"PSAL": "38.2"}),
		},
	}

	bld := dataset.NewBuilder()
	ds, err := bld.Build(testDoc(t, "TEMP", "PSAL"), []*dataset.SourceTable{a, b})
	require.NoError(t, err)

	assert.Equal(t, "obsea_ctd", ds.ID)
	require.Len(t, ds.Index, 4)
	assert.True(t, ds.Index[0].Before(ds.Index[1]))
	assert.True(t, ds.Index[2].Before(ds.Index[3]))

	temp, ok := ds.Column("TEMP")
	require.True(t, ok)
	assert.Equal(t, "sbe37", temp.Sensor)
	assert.Equal(t, []dataset.Value{
		{Raw: "13.1"}, {Raw: "13.2"}, {Missing: true}, {Missing: true},
	}, temp.Values)

	psal, ok := ds.Column("PSAL")
	require.True(t, ok)
	assert.Equal(t, []dataset.Value{
		{Missing: true}, {Raw: "38.0"}, {Raw: "38.1"}, {Raw: "38.2"},
	}, psal.Values)
}

func TestBuildCollidingColumns(t *testing.T) {
	a := &dataset.SourceTable{
		Name: "a.csv", Columns: []string{"TEMP"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T00:00:00Z", "sbe37", map[string]string{"TEMP": "13.1"}),
		},
	}
	b := &dataset.SourceTable{
		Name: "b.csv", Columns: []string{"TEMP"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T00:00:00Z", "aadi", map[string]string{"TEMP": "13.4"}),
		},
	}

	bld := dataset.NewBuilder()
	ds, err := bld.Build(testDoc(t, "TEMP"), []*dataset.SourceTable{a, b})
	require.NoError(t, err)

	_, ok := ds.Column("TEMP")
	assert.False(t, ok, "colliding names must be disambiguated")

	first, ok := ds.Column("TEMP_sbe37")
	require.True(t, ok)
	assert.Equal(t, "TEMP", first.Variable)
	second, ok := ds.Column("TEMP_aadi")
	require.True(t, ok)
	assert.Equal(t, "TEMP", second.Variable)
}

func TestBuildUnboundColumn(t *testing.T) {
	tbl := &dataset.SourceTable{
		Name: "a.csv", Columns: []string{"TURB"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T00:00:00Z", "s1", map[string]string{"TURB": "1"}),
		},
	}

	bld := dataset.NewBuilder()
	_, err := bld.Build(testDoc(t, "TEMP"), []*dataset.SourceTable{tbl})
	require.Error(t, err)

	var uerr dataset.UnboundColumnError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "TURB", uerr.Column)
	assert.Equal(t, "a.csv", uerr.Table)

	// an explicit binding resolves the association
	bld = dataset.NewBuilder(dataset.OptBindings(map[string]string{"TURB": "TEMP"}))
	ds, err := bld.Build(testDoc(t, "TEMP"), []*dataset.SourceTable{tbl})
	require.NoError(t, err)
	col, ok := ds.Column("TURB")
	require.True(t, ok)
	assert.Equal(t, "TEMP", col.Variable)
}

func TestBuildInvalidRowsRetained(t *testing.T) {
	bad := dataset.SourceRow{
		RawTime: "not-a-time", Sensor: "sbe37", Line: 3,
		Values: map[string]string{"TEMP": "13.0"},
	}
	tbl := &dataset.SourceTable{
		Name: "a.csv", Columns: []string{"TEMP"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T00:00:00Z", "sbe37", map[string]string{"TEMP": "13.1"}),
			bad,
		},
	}

	bld := dataset.NewBuilder()
	ds, err := bld.Build(testDoc(t, "TEMP"), []*dataset.SourceTable{tbl})
	require.NoError(t, err)

	require.Len(t, ds.Warnings, 1)
	assert.Equal(t, 3, ds.Warnings[0].Line)
	assert.Contains(t, ds.Warnings[0].Reason, "not-a-time")
	require.Len(t, ds.Unindexed, 1)
	assert.Equal(t, "not-a-time", ds.Unindexed[0].RawTime)
	assert.Len(t, ds.Index, 1)

	// strict mode drops instead, still with a warning
	bld = dataset.NewBuilder(dataset.OptStrictDrop(true))
	ds, err = bld.Build(testDoc(t, "TEMP"), []*dataset.SourceTable{tbl})
	require.NoError(t, err)
	assert.Len(t, ds.Warnings, 1)
	assert.Empty(t, ds.Unindexed)
}

func TestBuildQCCompanions(t *testing.T) {
	a := &dataset.SourceTable{
		Name: "a.csv", Columns: []string{"TEMP", "TEMP_QC"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T00:00:00Z", "sbe37",
				map[string]string{"TEMP": "13.1", "TEMP_QC": "1"}),
		},
	}
	b := &dataset.SourceTable{
		Name: "b.csv", Columns: []string{"PSAL"},
		Rows: []dataset.SourceRow{
			row(t, "2023-01-01T00:00:00Z", "aadi", map[string]string{"PSAL": "38.0"}),
		},
	}

	bld := dataset.NewBuilder()
	ds, err := bld.Build(testDoc(t, "TEMP", "PSAL"), []*dataset.SourceTable{a, b})
	require.NoError(t, err)

	qc, ok := ds.Column("TEMP_QC")
	require.True(t, ok)
	assert.True(t, qc.IsQC)
	assert.Equal(t, "TEMP", qc.QCFor)
	assert.Equal(t, []dataset.Value{{Raw: "1"}}, qc.Values)

	// PSAL had no flags in its source; it gains a missing-filled
	// companion because another sensor ships flags
	psalQC, ok := ds.Column("PSAL_QC")
	require.True(t, ok)
	assert.True(t, psalQC.IsQC)
	assert.Equal(t, "PSAL", psalQC.QCFor)
	assert.Equal(t, []dataset.Value{{Missing: true}}, psalQC.Values)
}
