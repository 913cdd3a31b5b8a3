// Package iotable reads tabular sensor sources from disk. This is an
// impure I/O package; the assembled-dataset logic lives in pkg/dataset.
package iotable

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
)

// timeLayouts are tried in order when parsing timestamp cells.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Reader loads CSV sources into SourceTables.
type Reader struct {
	timeColumn   string
	sensorColumn string
}

// NewReader creates a Reader using the configured index column names.
func NewReader(cfg *config.Config) *Reader {
	return &Reader{
		timeColumn:   cfg.Dataset.TimeColumn,
		sensorColumn: cfg.Dataset.SensorColumn,
	}
}

// Read loads one CSV source. Comment and unit lines above the header
// are skipped: the header is the last line whose field count differs
// from the data body's.
func (r *Reader) Read(path string) (*dataset.SourceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ReadError(path, err)
	}
	return r.Parse(filepath.Base(path), data)
}

// Parse decodes CSV bytes into a SourceTable.
func (r *Reader) Parse(name string, data []byte) (*dataset.SourceTable, error) {
	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, ReadError(name, err)
	}

	headerIdx, err := detectHeader(name, records)
	if err != nil {
		return nil, err
	}
	header := records[headerIdx]

	timeIdx := slices.Index(header, r.timeColumn)
	if timeIdx < 0 {
		return nil, ColumnError(name, r.timeColumn)
	}
	sensorIdx := slices.Index(header, r.sensorColumn)

	tbl := &dataset.SourceTable{
		Name:         name,
		TimeColumn:   r.timeColumn,
		SensorColumn: r.sensorColumn,
	}
	for i, col := range header {
		if i == timeIdx || i == sensorIdx {
			continue
		}
		tbl.Columns = append(tbl.Columns, col)
	}

	for i, record := range records[headerIdx+1:] {
		row := dataset.SourceRow{
			Line:   headerIdx + i + 2,
			Values: make(map[string]string, len(tbl.Columns)),
		}
		if timeIdx < len(record) {
			row.RawTime = strings.TrimSpace(record[timeIdx])
			row.Time, row.TimeValid = parseTime(row.RawTime)
		}
		if sensorIdx >= 0 && sensorIdx < len(record) {
			row.Sensor = strings.TrimSpace(record[sensorIdx])
		}
		for j, col := range header {
			if j == timeIdx || j == sensorIdx || j >= len(record) {
				continue
			}
			if v := strings.TrimSpace(record[j]); v != "" {
				row.Values[col] = v
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}

	slog.Debug("loaded tabular source", "source", name,
		"rows", humanize.Comma(int64(len(tbl.Rows))),
		"columns", len(tbl.Columns))
	return tbl, nil
}

// detectHeader finds the header line. Files may start with comment or
// unit lines of a different width; the header is the first line from
// the top whose field count matches the data body, taken from the
// last line of the file.
func detectHeader(name string, records [][]string) (int, error) {
	if len(records) < 2 {
		return 0, HeaderError(name)
	}

	bodyWidth := len(records[len(records)-1])
	for i, rec := range records {
		if len(rec) == bodyWidth {
			return i, nil
		}
	}
	return 0, HeaderError(name)
}

func parseTime(raw string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
