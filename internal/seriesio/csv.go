// Package seriesio loads time series from CSV files for the CLI. The engine
// itself never touches the filesystem; callers hand it parsed series.
package seriesio

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/heatflex/heatflex/core/faults"
	"github.com/heatflex/heatflex/core/timeseries"
)

// ReadFile loads a two-column CSV file (timestamp,value) into a series.
// A header row is skipped when its second column is not numeric.
func ReadFile(path, name string, ignoreTimezone bool) (timeseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return timeseries.Series{}, faults.Dataf("seriesio: open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, name, ignoreTimezone)
}

// Read parses CSV rows from r into a series named name.
func Read(r io.Reader, name string, ignoreTimezone bool) (timeseries.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var raw []timeseries.RawPoint
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return timeseries.Series{}, faults.Dataf("seriesio: %s line %d: %v", name, line, err)
		}
		if len(rec) < 2 {
			return timeseries.Series{}, faults.Dataf("seriesio: %s line %d: need timestamp and value columns", name, line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if line == 1 {
				// header row
				continue
			}
			return timeseries.Series{}, faults.Dataf("seriesio: %s line %d: bad value %q", name, line, rec[1])
		}
		raw = append(raw, timeseries.RawPoint{Timestamp: strings.TrimSpace(rec[0]), Value: v})
	}
	if len(raw) == 0 {
		return timeseries.Series{}, faults.Dataf("seriesio: %s: no rows", name)
	}
	return timeseries.ParseSeries(name, raw, ignoreTimezone)
}
