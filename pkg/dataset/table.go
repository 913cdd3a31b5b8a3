// Package dataset assembles tabular sensor sources into one
// time-indexed dataset bound to resolved metadata. Reading sources
// from disk lives in internal/iotable.
package dataset

import (
	"time"
)

// SourceRow is one observation row of a tabular source.
type SourceRow struct {
	// Time is the parsed timestamp. Valid only when TimeValid is set.
	Time time.Time

	// TimeValid reports whether RawTime parsed.
	TimeValid bool

	// RawTime is the timestamp cell as read from the source.
	RawTime string

	// Sensor is the sensor-identifier cell.
	Sensor string

	// Values maps data column names to raw cell contents. An absent
	// key or empty string is a missing measurement.
	Values map[string]string

	// Line is the 1-based line number in the source, for diagnostics.
	Line int
}

// SourceTable is one loaded tabular source before assembly.
type SourceTable struct {
	// Name identifies the source in diagnostics, normally a file path.
	Name string

	// TimeColumn and SensorColumn name the index columns.
	TimeColumn   string
	SensorColumn string

	// Columns lists the data column names in source order, index
	// columns excluded.
	Columns []string

	Rows []SourceRow
}

// RowWarning flags a row that failed validation. Such rows are
// reported, never silently discarded.
type RowWarning struct {
	Table  string
	Line   int
	Reason string
}

// Value is one cell of an assembled column. Missing cells are
// explicit; no sentinel values are invented.
type Value struct {
	Raw     string
	Missing bool
}

// Column is one assembled data column.
type Column struct {
	// Name is the output column name, suffixed with the sensor
	// identifier when the source name collides across sensors.
	Name string

	// Source is the data column name as it appears in its table.
	Source string

	// Sensor identifies the sensor the column belongs to.
	Sensor string

	// Variable is the id of the bound metadata variable entry.
	Variable string

	// IsQC marks a quality-control flag column; QCFor names the data
	// column it qualifies.
	IsQC  bool
	QCFor string

	// Values is aligned with the dataset time index.
	Values []Value
}

// AssembledDataset is the outer join of all sources over the union of
// their timestamps, bound to a resolved metadata document.
type AssembledDataset struct {
	// ID is the dataset identifier taken from the document globals.
	ID string

	// Index is the non-decreasing union of source timestamps.
	Index []time.Time

	Columns []*Column

	// Unindexed holds retained rows whose timestamp did not parse and
	// that therefore have no place on the index.
	Unindexed []SourceRow

	Warnings []RowWarning
}

// Column returns the assembled column with the given output name.
func (ds *AssembledDataset) Column(name string) (*Column, bool) {
	for _, col := range ds.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}

// TimeRange returns the first and last index timestamps.
func (ds *AssembledDataset) TimeRange() (time.Time, time.Time, bool) {
	if len(ds.Index) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return ds.Index[0], ds.Index[len(ds.Index)-1], true
}
