package history

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add inserts or updates the record aggregated by day and case.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.CaseName] == nil {
		s.data[r.CaseName] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.CaseName][d]
	if rec == nil {
		rec = &Record{CaseName: r.CaseName, Date: d}
		s.data[r.CaseName][d] = rec
	}
	rec.ElectricityShiftKWh += r.ElectricityShiftKWh
	rec.CostSavings += r.CostSavings
	rec.EmissionsSavedTonnes += r.EmissionsSavedTonnes
	rec.Runs += r.Runs
	return nil
}

// Query returns records between start and end inclusive, ordered by day.
func (s *MemoryStore) Query(caseName string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	for d, r := range s.data[caseName] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
