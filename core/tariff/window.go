// Package tariff classifies scheduling intervals into network-fee windows.
// Window boundaries for a day are taken from a historical reference day's
// realized prices, never from the day's own prices, so the classification is
// safe to feed into a day-ahead optimizer.
package tariff

import (
	"sort"
	"time"

	"github.com/heatflex/heatflex/core/faults"
)

// WindowClass tags an interval with the applicable network-fee regime.
type WindowClass int

const (
	WindowNormal WindowClass = 0
	WindowLow    WindowClass = 1
	WindowHigh   WindowClass = 2
)

func (c WindowClass) String() string {
	switch c {
	case WindowLow:
		return "low"
	case WindowHigh:
		return "high"
	default:
		return "normal"
	}
}

// Params configures the dynamic network fee calculation.
type Params struct {
	BaseFee       float64       // network fee added to every interval, per MWh
	LowReduction  float64       // relative fee reduction inside low windows
	HighSurcharge float64       // relative fee surcharge inside high windows
	HalfWidth     time.Duration // half width of each price window
}

// Validate checks the parameters before any window selection.
func (p Params) Validate() error {
	if p.BaseFee < 0 {
		return faults.Validationf("tariff: base fee must not be negative, got %v", p.BaseFee)
	}
	if p.LowReduction < 0 || p.LowReduction > 1 {
		return faults.Validationf("tariff: low reduction must be in [0,1], got %v", p.LowReduction)
	}
	if p.HighSurcharge < 0 {
		return faults.Validationf("tariff: high surcharge must not be negative, got %v", p.HighSurcharge)
	}
	if p.HalfWidth <= 0 {
		return faults.Validationf("tariff: window half width must be positive, got %v", p.HalfWidth)
	}
	return nil
}

// Assignment is the per-interval window classification with the resulting
// adjusted price. The input price slice is never modified.
type Assignment struct {
	Classes       []WindowClass
	AdjustedPrice []float64
}

// ClassColumn returns the classes as a numeric column for frame insertion.
func (a Assignment) ClassColumn() []float64 {
	out := make([]float64, len(a.Classes))
	for i, c := range a.Classes {
		out[i] = float64(c)
	}
	return out
}

// ReferenceDay returns the day whose realized prices define the windows for
// date. Weekdays look back one day, Mondays to the preceding Friday, and
// weekend days exactly one week.
func ReferenceDay(date time.Time) time.Time {
	d := midnight(date)
	switch wd := d.Weekday(); {
	case wd == time.Monday:
		return d.AddDate(0, 0, -3)
	case wd >= time.Tuesday && wd <= time.Friday:
		return d.AddDate(0, 0, -1)
	default:
		return d.AddDate(0, 0, -7)
	}
}

func midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

type peakInfo struct {
	lowCenters  []time.Time
	highCenters []time.Time
}

// selectPeaks returns up to two non-overlapping window centers for one day.
// Candidates are restricted to [06:00, 22:00) so that a window cannot spill
// into the neighboring day. ascending selects the cheapest centers first;
// otherwise the most expensive.
func selectPeaks(times []time.Time, prices []float64, grid, half time.Duration, ascending bool) []time.Time {
	type cand struct {
		t time.Time
		p float64
	}
	var cands []cand
	for i, t := range times {
		if h := t.Hour(); h >= 6 && h < 22 {
			cands = append(cands, cand{t: t, p: prices[i]})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].p != cands[j].p {
			if ascending {
				return cands[i].p < cands[j].p
			}
			return cands[i].p > cands[j].p
		}
		return cands[i].t.Before(cands[j].t)
	})

	used := make(map[time.Time]struct{})
	var centers []time.Time
	for _, c := range cands {
		span := windowIntervals(c.t, grid, half)
		overlap := false
		for _, ts := range span {
			if _, ok := used[ts]; ok {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		for _, ts := range span {
			used[ts] = struct{}{}
		}
		centers = append(centers, c.t)
		if len(centers) == 2 {
			break
		}
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i].Before(centers[j]) })
	return centers
}

// windowIntervals rasterizes [center-half, center+half) onto the grid.
func windowIntervals(center time.Time, grid, half time.Duration) []time.Time {
	var out []time.Time
	for t := center.Add(-half); t.Before(center.Add(half)); t = t.Add(grid) {
		out = append(out, t)
	}
	return out
}

// secondsOfDay maps a timestamp to its wall-clock offset within the day.
func secondsOfDay(t time.Time) int {
	u := t.UTC()
	return u.Hour()*3600 + u.Minute()*60 + u.Second()
}

// inWindow reports whether the interval's wall-clock time falls inside the
// window span [center-half, center+half). Windows that would wrap past
// midnight match nothing, mirroring the candidate restriction above.
func inWindow(tod int, center time.Time, half time.Duration) bool {
	start := secondsOfDay(center.Add(-half))
	end := secondsOfDay(center.Add(half))
	if end <= start {
		return false
	}
	return tod >= start && tod < end
}

// ApplyDynamicFee classifies every interval into a window using its reference
// day's peaks and computes the adjusted price. prices must be the raw market
// prices: feeding an already-adjusted series back in shifts the peak ranking,
// so callers must snapshot prices before adjustment.
func ApplyDynamicFee(times []time.Time, prices []float64, p Params) (Assignment, error) {
	if err := p.Validate(); err != nil {
		return Assignment{}, err
	}
	if len(times) != len(prices) {
		return Assignment{}, faults.Validationf("tariff: %d timestamps for %d prices", len(times), len(prices))
	}
	if len(times) < 2 {
		return Assignment{}, faults.Dataf("tariff: need at least two intervals, got %d", len(times))
	}
	var grid time.Duration
	for i := 1; i < len(times); i++ {
		d := times[i].Sub(times[i-1])
		if d > 0 && (grid == 0 || d < grid) {
			grid = d
		}
	}
	if grid == 0 {
		return Assignment{}, faults.Dataf("tariff: no increasing timestamps")
	}

	days := make(map[time.Time][]int)
	var dayOrder []time.Time
	for i, t := range times {
		d := midnight(t)
		if _, ok := days[d]; !ok {
			dayOrder = append(dayOrder, d)
		}
		days[d] = append(days[d], i)
	}

	peaks := make(map[time.Time]peakInfo, len(dayOrder))
	for _, d := range dayOrder {
		idx := days[d]
		dayTimes := make([]time.Time, len(idx))
		dayPrices := make([]float64, len(idx))
		for j, i := range idx {
			dayTimes[j] = times[i]
			dayPrices[j] = prices[i]
		}
		peaks[d] = peakInfo{
			lowCenters:  selectPeaks(dayTimes, dayPrices, grid, p.HalfWidth, true),
			highCenters: selectPeaks(dayTimes, dayPrices, grid, p.HalfWidth, false),
		}
	}

	asn := Assignment{
		Classes:       make([]WindowClass, len(times)),
		AdjustedPrice: make([]float64, len(times)),
	}
	for _, d := range dayOrder {
		info, ok := peaks[ReferenceDay(d)]
		if !ok {
			continue
		}
		for _, i := range days[d] {
			tod := secondsOfDay(times[i])
			low, high := false, false
			for _, c := range info.lowCenters {
				if inWindow(tod, c, p.HalfWidth) {
					low = true
					break
				}
			}
			for _, c := range info.highCenters {
				if inWindow(tod, c, p.HalfWidth) {
					high = true
					break
				}
			}
			switch {
			case low: // low takes precedence over high
				asn.Classes[i] = WindowLow
			case high:
				asn.Classes[i] = WindowHigh
			}
		}
	}

	for i, price := range prices {
		fee := p.BaseFee
		switch asn.Classes[i] {
		case WindowLow:
			fee = p.BaseFee * (1 - p.LowReduction)
		case WindowHigh:
			fee = p.BaseFee * (1 + p.HighSurcharge)
		}
		asn.AdjustedPrice[i] = price + fee
	}
	return asn, nil
}
