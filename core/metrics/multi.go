package metrics

// MultiSink fans run events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSchedule forwards the schedule to sinks that support it.
func (m *MultiSink) RecordSchedule(points []SchedulePoint) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ScheduleRecorder); ok {
			if err := rec.RecordSchedule(points); err != nil {
				return err
			}
		}
	}
	return nil
}
