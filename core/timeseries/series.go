// Package timeseries provides the time-indexed value types consumed by the
// scheduling engine and the granularity reconciliation logic that aligns
// independently-sampled series onto one common grid.
package timeseries

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/heatflex/heatflex/core/faults"
)

// Point is a single observation of a series.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is an ordered sequence of timestamped values with a column name.
type Series struct {
	Name   string
	Points []Point
}

// RawPoint carries an unparsed timestamp as delivered by ingestion paths.
type RawPoint struct {
	Timestamp string
	Value     float64
}

var trailingOffset = regexp.MustCompile(`([+-]\d{2}:?\d{0,2})$`)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseSeries builds a Series from raw string-timestamped points. When
// ignoreTimezone is set, a trailing numeric UTC offset is stripped before
// parsing so that inconsistently annotated exports are read as UTC wall time.
func ParseSeries(name string, raw []RawPoint, ignoreTimezone bool) (Series, error) {
	s := Series{Name: name, Points: make([]Point, 0, len(raw))}
	for _, rp := range raw {
		ts := strings.TrimSpace(rp.Timestamp)
		if ignoreTimezone {
			ts = strings.TrimSpace(trailingOffset.ReplaceAllString(ts, ""))
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return Series{}, faults.Dataf("series %s: unparseable timestamp %q", name, rp.Timestamp)
		}
		s.Points = append(s.Points, Point{Time: t.UTC(), Value: rp.Value})
	}
	return s, nil
}

func parseTimestamp(ts string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, ts)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Normalized returns a copy with UTC timestamps in strictly increasing order.
// Duplicate timestamps keep the first occurrence.
func (s Series) Normalized() Series {
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		pts[i] = Point{Time: p.Time.UTC(), Value: p.Value}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && p.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, p)
	}
	return Series{Name: s.Name, Points: out}
}

// Granularity returns the minimum positive gap between consecutive
// timestamps. A series with fewer than two rows has no defined granularity.
func (s Series) Granularity() (time.Duration, error) {
	if len(s.Points) < 2 {
		return 0, faults.Dataf("series %s: granularity undefined for %d row(s)", s.Name, len(s.Points))
	}
	var min time.Duration
	for i := 1; i < len(s.Points); i++ {
		d := s.Points[i].Time.Sub(s.Points[i-1].Time)
		if d <= 0 {
			continue
		}
		if min == 0 || d < min {
			min = d
		}
	}
	if min == 0 {
		return 0, faults.Dataf("series %s: granularity undefined, no increasing timestamps", s.Name)
	}
	return min, nil
}

// Start returns the first timestamp of the series.
func (s Series) Start() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Time
}

// End returns the last timestamp of the series.
func (s Series) End() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Time
}

// Constant generates a series with one point every step in [start, end],
// all carrying the same value. Used for flat fallback-fuel price inputs.
func Constant(name string, value float64, start, end time.Time, step time.Duration) Series {
	s := Series{Name: name}
	for t := start.UTC(); !t.After(end.UTC()); t = t.Add(step) {
		s.Points = append(s.Points, Point{Time: t, Value: value})
	}
	return s
}
