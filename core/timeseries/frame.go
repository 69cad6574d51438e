package timeseries

import (
	"time"

	"github.com/heatflex/heatflex/core/faults"
)

// Frame is the result of merging named series onto one time index. Every row
// holds a value for every column; rows missing any input after alignment are
// dropped.
type Frame struct {
	Times []time.Time
	names []string
	cols  map[string][]float64
}

// NewFrame builds a single-column frame from a normalized series.
func NewFrame(s Series) *Frame {
	norm := s.Normalized()
	f := &Frame{
		Times: make([]time.Time, len(norm.Points)),
		names: []string{norm.Name},
		cols:  map[string][]float64{norm.Name: make([]float64, len(norm.Points))},
	}
	for i, p := range norm.Points {
		f.Times[i] = p.Time
		f.cols[norm.Name][i] = p.Value
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Times) }

// Columns returns the column names in merge order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Column returns the values of the named column, or nil if absent.
func (f *Frame) Column(name string) []float64 { return f.cols[name] }

// AddColumn attaches a derived column such as a window class or an adjusted
// price. The column must match the frame's row count.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.Times) {
		return faults.Validationf("column %s: %d values for %d rows", name, len(values), len(f.Times))
	}
	if _, ok := f.cols[name]; ok {
		return faults.Validationf("column %s already present", name)
	}
	f.names = append(f.names, name)
	f.cols[name] = values
	return nil
}

// Granularity returns the minimum positive gap between consecutive rows.
func (f *Frame) Granularity() (time.Duration, error) {
	if len(f.Times) < 2 {
		return 0, faults.Dataf("frame: granularity undefined for %d row(s)", len(f.Times))
	}
	var min time.Duration
	for i := 1; i < len(f.Times); i++ {
		d := f.Times[i].Sub(f.Times[i-1])
		if d <= 0 {
			continue
		}
		if min == 0 || d < min {
			min = d
		}
	}
	if min == 0 {
		return 0, faults.Dataf("frame: granularity undefined, no increasing timestamps")
	}
	return min, nil
}

// Start returns the first row's timestamp.
func (f *Frame) Start() time.Time {
	if len(f.Times) == 0 {
		return time.Time{}
	}
	return f.Times[0]
}

// End returns the last row's timestamp.
func (f *Frame) End() time.Time {
	if len(f.Times) == 0 {
		return time.Time{}
	}
	return f.Times[len(f.Times)-1]
}

// resampleColumns buckets every column of the frame onto gran, aggregating
// each bucket with agg.
func (f *Frame) resampleColumns(gran time.Duration, agg Aggregation) *Frame {
	out := &Frame{names: f.Columns(), cols: make(map[string][]float64, len(f.names))}
	if len(f.Times) == 0 {
		for _, n := range out.names {
			out.cols[n] = nil
		}
		return out
	}
	// Bucket row indices first so all columns share the same grid.
	order := make([]time.Time, 0)
	rows := make(map[time.Time][]int)
	for i, t := range f.Times {
		key := t.Truncate(gran)
		if _, ok := rows[key]; !ok {
			order = append(order, key)
		}
		rows[key] = append(rows[key], i)
	}
	out.Times = order
	for _, n := range f.names {
		src := f.cols[n]
		vals := make([]float64, len(order))
		for bi, key := range order {
			var sum float64
			for _, ri := range rows[key] {
				sum += src[ri]
			}
			vals[bi] = agg.combine(sum, len(rows[key]))
		}
		out.cols[n] = vals
	}
	return out
}

// Merge aligns the series with the frame and inner-joins it as a new column.
// The coarser side keeps its grid; the finer side is resampled onto it using
// the aggregation policy. Rows present on only one side are dropped, which
// can shrink the covered range.
func (f *Frame) Merge(s Series, agg Aggregation) (*Frame, error) {
	if s.Name == "" {
		return nil, faults.Validationf("merge: series has no name")
	}
	if _, ok := f.cols[s.Name]; ok {
		return nil, faults.Validationf("merge: column %s already present", s.Name)
	}
	norm := s.Normalized()
	fg, err := f.Granularity()
	if err != nil {
		return nil, err
	}
	sg, err := norm.Granularity()
	if err != nil {
		return nil, err
	}

	left := f
	if fg < sg {
		left = f.resampleColumns(sg, agg)
	} else if sg < fg {
		norm = norm.Resample(fg, agg)
	}

	byTime := make(map[time.Time]float64, len(norm.Points))
	for _, p := range norm.Points {
		byTime[p.Time] = p.Value
	}

	out := &Frame{names: append(left.Columns(), s.Name), cols: make(map[string][]float64)}
	for _, n := range left.names {
		out.cols[n] = nil
	}
	out.cols[s.Name] = nil
	for i, t := range left.Times {
		v, ok := byTime[t]
		if !ok {
			continue
		}
		out.Times = append(out.Times, t)
		for _, n := range left.names {
			out.cols[n] = append(out.cols[n], left.cols[n][i])
		}
		out.cols[s.Name] = append(out.cols[s.Name], v)
	}
	if len(out.Times) == 0 {
		return nil, faults.Dataf("merge: no overlapping rows between frame and %s", s.Name)
	}
	return out, nil
}

// Reconcile merges two series onto the coarser of their grids and joins them
// on exact timestamp equality.
func Reconcile(a, b Series, agg Aggregation) (*Frame, error) {
	if a.Name == b.Name {
		return nil, faults.Validationf("reconcile: both series named %q", a.Name)
	}
	return NewFrame(a).Merge(b, agg)
}
