package dataset

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
)

// qcSuffix marks quality-control companion columns.
const qcSuffix = "_QC"

// Option configures a Builder.
type Option func(*Builder)

// OptStrictDrop drops invalid rows instead of retaining them with a
// warning.
func OptStrictDrop(b bool) Option {
	return func(bld *Builder) { bld.strictDrop = b }
}

// OptBindings supplies explicit column-to-variable associations for
// columns whose names do not match a variable id.
func OptBindings(bindings map[string]string) Option {
	return func(bld *Builder) { bld.bindings = bindings }
}

// Builder assembles source tables into one dataset.
type Builder struct {
	strictDrop bool
	bindings   map[string]string
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	bld := &Builder{}
	for _, opt := range opts {
		opt(bld)
	}
	return bld
}

// series is the value stream of one (sensor, column) pair.
type series struct {
	sensor string
	source string
	table  string
	isQC   bool
	values map[time.Time]string
}

// Build outer-joins the tables over the union of their timestamps and
// binds every data column to a variable of the document. No row is
// ever dropped silently: rows failing validation are retained with a
// warning (or dropped with one under OptStrictDrop), and rows without
// a usable timestamp are kept aside in Unindexed.
func (bld *Builder) Build(
	doc *metadata.ResolvedDocument, tables []*SourceTable,
) (*AssembledDataset, error) {
	ds := &AssembledDataset{ID: documentID(doc)}

	ordered := bld.collectSeries(ds, tables)
	ds.Index = unionIndex(ordered)

	names := outputNames(ordered)
	for _, ser := range ordered {
		col := &Column{
			Name:   names[ser],
			Source: ser.source,
			Sensor: ser.sensor,
			IsQC:   ser.isQC,
		}
		variable, err := bld.bindVariable(doc, ser)
		if err != nil {
			return nil, err
		}
		col.Variable = variable
		if ser.isQC {
			col.QCFor = strings.TrimSuffix(col.Name, qcSuffix)
		}
		col.Values = make([]Value, len(ds.Index))
		for i, ts := range ds.Index {
			raw, ok := ser.values[ts]
			if !ok || raw == "" {
				col.Values[i] = Value{Missing: true}
			} else {
				col.Values[i] = Value{Raw: raw}
			}
		}
		ds.Columns = append(ds.Columns, col)
	}

	bld.fillQCCompanions(ds)

	slog.Info("assembled dataset",
		"rows", humanize.Comma(int64(len(ds.Index))),
		"columns", len(ds.Columns),
		"warnings", len(ds.Warnings))
	return ds, nil
}

// collectSeries validates rows and groups cell values into
// per-sensor, per-column series, preserving source order.
func (bld *Builder) collectSeries(
	ds *AssembledDataset, tables []*SourceTable,
) []*series {
	var ordered []*series
	byKey := make(map[[2]string]*series)

	for _, tbl := range tables {
		for _, row := range tbl.Rows {
			reason := rowProblem(row)
			if reason != "" {
				ds.Warnings = append(ds.Warnings, RowWarning{
					Table: tbl.Name, Line: row.Line, Reason: reason,
				})
				if bld.strictDrop {
					continue
				}
			}
			if !row.TimeValid {
				if !bld.strictDrop {
					ds.Unindexed = append(ds.Unindexed, row)
				}
				continue
			}

			for _, colName := range tbl.Columns {
				key := [2]string{row.Sensor, colName}
				ser, ok := byKey[key]
				if !ok {
					ser = &series{
						sensor: row.Sensor,
						source: colName,
						table:  tbl.Name,
						isQC:   strings.HasSuffix(colName, qcSuffix),
						values: make(map[time.Time]string),
					}
					byKey[key] = ser
					ordered = append(ordered, ser)
				}
				if raw := row.Values[colName]; raw != "" {
					ser.values[row.Time] = raw
				}
			}
		}
	}
	return ordered
}

func rowProblem(row SourceRow) string {
	switch {
	case !row.TimeValid:
		return "unparsable timestamp " + strconv.Quote(row.RawTime)
	case strings.TrimSpace(row.Sensor) == "":
		return "empty sensor identifier"
	default:
		return ""
	}
}

// unionIndex returns the sorted union of timestamps over all series.
func unionIndex(ordered []*series) []time.Time {
	set := make(map[time.Time]struct{})
	for _, ser := range ordered {
		for ts := range ser.values {
			set[ts] = struct{}{}
		}
	}
	index := make([]time.Time, 0, len(set))
	for ts := range set {
		index = append(index, ts)
	}
	slices.SortFunc(index, func(a, b time.Time) int { return a.Compare(b) })
	return index
}

// outputNames assigns output column names, suffixing with the sensor
// identifier when the same source name appears under several sensors.
func outputNames(ordered []*series) map[*series]string {
	sensors := make(map[string]map[string]struct{})
	for _, ser := range ordered {
		if sensors[ser.source] == nil {
			sensors[ser.source] = make(map[string]struct{})
		}
		sensors[ser.source][ser.sensor] = struct{}{}
	}

	names := make(map[*series]string, len(ordered))
	for _, ser := range ordered {
		name := ser.source
		if len(sensors[ser.source]) > 1 {
			if ser.isQC {
				base := strings.TrimSuffix(ser.source, qcSuffix)
				name = base + "_" + ser.sensor + qcSuffix
			} else {
				name = ser.source + "_" + ser.sensor
			}
		}
		names[ser] = name
	}
	return names
}

// bindVariable associates a series with a variable entry of the
// document: explicit bindings first, then the column name itself.
func (bld *Builder) bindVariable(
	doc *metadata.ResolvedDocument, ser *series,
) (string, error) {
	base := ser.source
	if ser.isQC {
		base = strings.TrimSuffix(base, qcSuffix)
	}
	if id, ok := bld.bindings[base]; ok {
		if _, found := doc.Variable(id); found {
			return id, nil
		}
		return "", NewUnboundColumnError(ser.table, ser.source)
	}
	if _, found := doc.Variable(base); found {
		return base, nil
	}
	return "", NewUnboundColumnError(ser.table, ser.source)
}

// fillQCCompanions synthesizes missing-filled QC columns so that when
// any sensor ships quality flags, every data column has a companion.
func (bld *Builder) fillQCCompanions(ds *AssembledDataset) {
	anyQC := false
	hasQC := make(map[string]bool)
	for _, col := range ds.Columns {
		if col.IsQC {
			anyQC = true
			hasQC[col.QCFor] = true
		}
	}
	if !anyQC {
		return
	}

	var companions []*Column
	for _, col := range ds.Columns {
		if col.IsQC || hasQC[col.Name] {
			continue
		}
		qc := &Column{
			Name:     col.Name + qcSuffix,
			Source:   col.Source + qcSuffix,
			Sensor:   col.Sensor,
			Variable: col.Variable,
			IsQC:     true,
			QCFor:    col.Name,
			Values:   make([]Value, len(ds.Index)),
		}
		for i := range qc.Values {
			qc.Values[i] = Value{Missing: true}
		}
		companions = append(companions, qc)
	}
	ds.Columns = append(ds.Columns, companions...)
}

// documentID extracts the dataset identifier from document globals.
func documentID(doc *metadata.ResolvedDocument) string {
	for _, key := range []string{"dataset_id", "id"} {
		if v, ok := doc.Global[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
