package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/core/optimizer"
)

func TestPromSinkRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	ev := coremetrics.RunEvent{
		RunID:     "r1",
		CaseName:  "plant-a",
		Mode:      "dispatch",
		Status:    "optimal",
		Succeeded: true,
		SolveTime: 150 * time.Millisecond,
		Summary: optimizer.Summary{
			CostSavings:            15,
			EmissionsSavingsTonnes: 0.3,
			ElectricityUsedKWh:     2000,
		},
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record: %v", err)
	}

	expected := `
# HELP optimization_runs_total Total number of optimization runs
# TYPE optimization_runs_total counter
optimization_runs_total{case="plant-a",mode="dispatch",status="optimal"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.solveTime); c == 0 {
		t.Errorf("solve time not recorded")
	}
	if got := testutil.ToFloat64(sink.savings.WithLabelValues("plant-a")); got != 15 {
		t.Errorf("savings gauge = %v, want 15", got)
	}
}

func TestPromSinkFailedRunSkipsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	ev := coremetrics.RunEvent{CaseName: "plant-a", Mode: "dispatch", Status: "failed"}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	if c := testutil.CollectAndCount(sink.solveTime); c != 0 {
		t.Errorf("solve time recorded for failed run")
	}
	if got := testutil.ToFloat64(sink.runs.WithLabelValues("plant-a", "dispatch", "failed")); got != 1 {
		t.Errorf("runs counter = %v, want 1", got)
	}
}
