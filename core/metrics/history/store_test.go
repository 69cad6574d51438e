package history

import (
	"testing"
	"time"
)

func TestMemoryStoreAggregation(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	if err := s.Add(Record{CaseName: "plant-a", Date: d, ElectricityShiftKWh: 2000, CostSavings: 15, Runs: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{CaseName: "plant-a", Date: d.Add(2 * time.Hour), ElectricityShiftKWh: 1000, CostSavings: 5, Runs: 1}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	recs, err := s.Query("plant-a", d, d)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].ElectricityShiftKWh != 3000 || recs[0].CostSavings != 20 || recs[0].Runs != 2 {
		t.Fatalf("aggregated %+v", recs[0])
	}
}

func TestMemoryStoreRangeFilter(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	for i := 0; i < 3; i++ {
		if err := s.Add(Record{CaseName: "plant-a", Date: d.AddDate(0, 0, i), Runs: 1}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	recs, err := s.Query("plant-a", d, d.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if !recs[0].Date.Before(recs[1].Date) {
		t.Fatalf("records not ordered: %v %v", recs[0].Date, recs[1].Date)
	}
}

func TestSavingsPerMWh(t *testing.T) {
	r := Record{ElectricityShiftKWh: 2000, CostSavings: 30}
	if got := r.SavingsPerMWh(); got != 15 {
		t.Fatalf("savings per MWh = %v, want 15", got)
	}
	if got := (Record{}).SavingsPerMWh(); got != 0 {
		t.Fatalf("empty record savings = %v, want 0", got)
	}
}
