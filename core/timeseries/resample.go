package timeseries

import (
	"sort"
	"time"

	"github.com/heatflex/heatflex/core/faults"
)

// Aggregation selects how fine-grained values are combined when a series is
// resampled onto a coarser grid.
type Aggregation int

const (
	AggMean Aggregation = iota
	AggSum
)

// ParseAggregation maps the textual policy names to an Aggregation.
func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "", "mean":
		return AggMean, nil
	case "sum":
		return AggSum, nil
	default:
		return 0, faults.Validationf("unknown aggregation policy %q", s)
	}
}

func (a Aggregation) String() string {
	if a == AggSum {
		return "sum"
	}
	return "mean"
}

func (a Aggregation) combine(sum float64, n int) float64 {
	if a == AggSum || n == 0 {
		return sum
	}
	return sum / float64(n)
}

// Resample buckets the series onto the given granularity using left-closed
// intervals anchored on the epoch and aggregates each bucket.
func (s Series) Resample(gran time.Duration, agg Aggregation) Series {
	type bucket struct {
		sum float64
		n   int
	}
	buckets := make(map[time.Time]*bucket)
	for _, p := range s.Points {
		key := p.Time.UTC().Truncate(gran)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += p.Value
		b.n++
	}
	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	out := Series{Name: s.Name, Points: make([]Point, 0, len(keys))}
	for _, k := range keys {
		b := buckets[k]
		out.Points = append(out.Points, Point{Time: k, Value: agg.combine(b.sum, b.n)})
	}
	return out
}

// ForwardFill expands the series onto the finer grid, repeating the last
// observed value until the next observation. Daily fuel prices are brought
// onto the quarter-hour grid this way.
func (s Series) ForwardFill(gran time.Duration) Series {
	norm := s.Normalized()
	if len(norm.Points) < 2 {
		return norm
	}
	out := Series{Name: s.Name}
	for i, p := range norm.Points {
		out.Points = append(out.Points, p)
		if i == len(norm.Points)-1 {
			break
		}
		next := norm.Points[i+1].Time
		for t := p.Time.Add(gran); t.Before(next); t = t.Add(gran) {
			out.Points = append(out.Points, Point{Time: t, Value: p.Value})
		}
	}
	return out
}

// NormalizeGranularity resamples a series onto its own detected granularity
// so that gaps and duplicates are evened out. It returns the resampled series
// and the granularity in hours.
func NormalizeGranularity(s Series, agg Aggregation) (Series, float64, error) {
	norm := s.Normalized()
	gran, err := norm.Granularity()
	if err != nil {
		return Series{}, 0, err
	}
	return norm.Resample(gran, agg), gran.Hours(), nil
}

// ParseAndNormalize parses raw points and normalizes the result onto its own
// granularity. ignoreTimezone strips spurious textual UTC offsets before
// parsing.
func ParseAndNormalize(name string, raw []RawPoint, agg Aggregation, ignoreTimezone bool) (Series, float64, error) {
	s, err := ParseSeries(name, raw, ignoreTimezone)
	if err != nil {
		return Series{}, 0, err
	}
	return NormalizeGranularity(s, agg)
}
