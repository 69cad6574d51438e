package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/core/metrics/history"
	"github.com/heatflex/heatflex/core/optimizer"
)

func TestHistorySinkAggregatesByDay(t *testing.T) {
	store := history.NewMemoryStore()
	reg := prometheus.NewRegistry()
	sink := NewHistorySink(store, reg)

	start := time.Date(2024, 10, 1, 6, 0, 0, 0, time.UTC)
	ev := coremetrics.RunEvent{
		CaseName:  "plant-a",
		Succeeded: true,
		Start:     start,
		Summary: optimizer.Summary{
			ElectricityUsedKWh:     2000,
			CostSavings:            15,
			EmissionsSavingsTonnes: 0.3,
		},
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	ev.Start = start.Add(6 * time.Hour)
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record2: %v", err)
	}

	recs, err := store.Query("plant-a", start, start)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].Runs != 2 || recs[0].ElectricityShiftKWh != 4000 {
		t.Fatalf("aggregated %+v", recs[0])
	}
	if got := testutil.ToFloat64(sink.savings.WithLabelValues("plant-a", "2024-10-01")); got != 30 {
		t.Fatalf("savings gauge = %v, want 30", got)
	}
}

func TestHistorySinkIgnoresFailedRuns(t *testing.T) {
	store := history.NewMemoryStore()
	sink := NewHistorySink(store, prometheus.NewRegistry())
	if err := sink.RecordRun(coremetrics.RunEvent{CaseName: "plant-a", Succeeded: false, Start: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}
	recs, err := store.Query("plant-a", time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("failed run stored: %+v", recs)
	}
}
