package timeseries

import (
	"errors"
	"testing"
	"time"

	"github.com/heatflex/heatflex/core/faults"
)

func mkSeries(name string, start time.Time, step time.Duration, values ...float64) Series {
	s := Series{Name: name}
	for i, v := range values {
		s.Points = append(s.Points, Point{Time: start.Add(time.Duration(i) * step), Value: v})
	}
	return s
}

func TestNormalizedSortsAndDeduplicates(t *testing.T) {
	base := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	s := Series{Name: "price", Points: []Point{
		{Time: base.Add(30 * time.Minute), Value: 3},
		{Time: base, Value: 1},
		{Time: base, Value: 99}, // duplicate, keep-first after sort
		{Time: base.Add(15 * time.Minute), Value: 2},
	}}
	n := s.Normalized()
	if len(n.Points) != 3 {
		t.Fatalf("expected 3 points got %d", len(n.Points))
	}
	if n.Points[0].Value != 1 || n.Points[1].Value != 2 || n.Points[2].Value != 3 {
		t.Fatalf("unexpected order: %+v", n.Points)
	}
}

func TestNormalizedConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	s := Series{Name: "x", Points: []Point{{Time: time.Date(2024, 10, 1, 1, 0, 0, 0, loc), Value: 1}}}
	n := s.Normalized()
	if got := n.Points[0].Time; !got.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) || got.Location() != time.UTC {
		t.Fatalf("expected UTC midnight got %v", got)
	}
}

func TestGranularity(t *testing.T) {
	base := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	s := mkSeries("x", base, 15*time.Minute, 1, 2, 3, 4)
	g, err := s.Granularity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != 15*time.Minute {
		t.Fatalf("expected 15m got %v", g)
	}
}

func TestGranularitySingleRow(t *testing.T) {
	s := Series{Name: "x", Points: []Point{{Time: time.Now(), Value: 1}}}
	if _, err := s.Granularity(); !errors.Is(err, faults.ErrData) {
		t.Fatalf("expected data error got %v", err)
	}
}

func TestGranularityIgnoresGaps(t *testing.T) {
	base := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	s := Series{Name: "x", Points: []Point{
		{Time: base, Value: 1},
		{Time: base.Add(time.Hour), Value: 2},
		{Time: base.Add(75 * time.Minute), Value: 3},
	}}
	g, err := s.Granularity()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != 15*time.Minute {
		t.Fatalf("expected minimum gap 15m got %v", g)
	}
}

func TestParseSeriesStripsOffsetWhenIgnoringTimezone(t *testing.T) {
	raw := []RawPoint{
		{Timestamp: "2024-10-01 00:00:00+02", Value: 1},
		{Timestamp: "2024-10-01 00:15:00+02:00", Value: 2},
	}
	s, err := ParseSeries("price", raw, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	if !s.Points[0].Time.Equal(want) {
		t.Fatalf("expected %v got %v", want, s.Points[0].Time)
	}
}

func TestParseSeriesBadTimestamp(t *testing.T) {
	_, err := ParseSeries("x", []RawPoint{{Timestamp: "not a time", Value: 1}}, false)
	if !errors.Is(err, faults.ErrData) {
		t.Fatalf("expected data error got %v", err)
	}
}

func TestConstant(t *testing.T) {
	start := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	s := Constant("fuel", 60, start, end, 15*time.Minute)
	if len(s.Points) != 4 {
		t.Fatalf("expected 4 points got %d", len(s.Points))
	}
	for _, p := range s.Points {
		if p.Value != 60 {
			t.Fatalf("expected constant 60 got %v", p.Value)
		}
	}
}
