package generator

import (
	"strconv"
	"strings"
	"time"

	"github.com/emso-eric/metadata-harmonizer/pkg/dataset"
	"github.com/emso-eric/metadata-harmonizer/pkg/metadata"
)

// coordinateNames are recognized in any casing.
var coordinateNames = map[string]string{
	"time":      "time",
	"depth":     "depth",
	"latitude":  "latitude",
	"longitude": "longitude",
	"lat":       "latitude",
	"lon":       "longitude",
}

// normalizeCoordinateCasing lower-cases coordinate column names so
// exports follow the CF convention, unless the source casing is
// explicitly kept.
func normalizeCoordinateCasing(ds *dataset.AssembledDataset, keep bool) {
	if keep {
		return
	}
	for _, col := range ds.Columns {
		if canonical, ok := coordinateNames[strings.ToLower(col.Name)]; ok {
			col.Name = canonical
		}
	}
}

// applyCoverage computes time and geospatial coverage attributes from
// the assembled data and writes them into the document globals.
// Explicitly supplied values are never overwritten.
func applyCoverage(
	doc *metadata.ResolvedDocument, ds *dataset.AssembledDataset,
) {
	setIfEmpty := func(name, value string) {
		if value == "" {
			return
		}
		if cur, ok := doc.Global[name].(string); ok && cur != "" {
			return
		}
		doc.Global[name] = value
	}

	if start, end, ok := ds.TimeRange(); ok {
		setIfEmpty("time_coverage_start", start.UTC().Format(time.RFC3339))
		setIfEmpty("time_coverage_end", end.UTC().Format(time.RFC3339))
	}

	ranges := map[string][2]string{
		"latitude":  {"geospatial_lat_min", "geospatial_lat_max"},
		"longitude": {"geospatial_lon_min", "geospatial_lon_max"},
		"depth":     {"geospatial_vertical_min", "geospatial_vertical_max"},
	}
	for _, col := range ds.Columns {
		attrs, ok := ranges[strings.ToLower(col.Name)]
		if !ok || col.IsQC {
			continue
		}
		if lo, hi, found := numericRange(col.Values); found {
			setIfEmpty(attrs[0], formatFloat(lo))
			setIfEmpty(attrs[1], formatFloat(hi))
		}
	}
}

func numericRange(values []dataset.Value) (float64, float64, bool) {
	var lo, hi float64
	found := false
	for _, v := range values {
		if v.Missing {
			continue
		}
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			continue
		}
		if !found {
			lo, hi = f, f
			found = true
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return lo, hi, found
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
