package history

import "time"

// Store persists daily run-history records.
type Store interface {
	Add(Record) error
	Query(caseName string, start, end time.Time) ([]Record, error)
}

// Day aligns a timestamp to the start of its UTC day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
