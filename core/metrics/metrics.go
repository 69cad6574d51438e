package metrics

import (
	"time"

	"github.com/heatflex/heatflex/core/optimizer"
)

// RunEvent represents one finished optimization run to be recorded.
type RunEvent struct {
	RunID     string
	CaseName  string
	Mode      string // "dispatch" or "threshold"
	Status    string // solver termination status, or "failed"
	Succeeded bool
	Error     string

	Start         time.Time
	End           time.Time
	IntervalHours float64
	SolveTime     time.Duration

	Summary optimizer.Summary
	Time    time.Time
}

// Sink records run events for observability purposes.
type Sink interface {
	RecordRun(ev RunEvent) error
}

// SchedulePoint is one interval of a solved dispatch plan.
type SchedulePoint struct {
	RunID    string
	CaseName string
	Time     time.Time

	ElectricPowerKW float64
	FuelEnergyKWh   float64
	HeaterOn        bool
	Window          string
}

// ScheduleRecorder is implemented by sinks able to persist the per-interval
// schedule, not just the run aggregates.
type ScheduleRecorder interface {
	RecordSchedule(points []SchedulePoint) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error             { return nil }
func (NopSink) RecordSchedule([]SchedulePoint) error { return nil }
