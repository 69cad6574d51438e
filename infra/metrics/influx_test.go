package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/core/optimizer"
)

// fakeInflux captures line-protocol writes and answers health checks.
type fakeInflux struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeInflux) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"influxdb","status":"pass"}`))
	})
	mux.HandleFunc("/api/v2/write", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.lines = append(f.lines, string(body))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeInflux) joined() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.lines, "\n")
}

func TestInfluxSinkRecordRun(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL, "token", "org", "bucket")
	if _, ok := sink.(*InfluxSink); !ok {
		t.Fatalf("sink = %T, want InfluxSink after passing health check", sink)
	}
	ev := coremetrics.RunEvent{
		RunID:     "r1",
		CaseName:  "plant-a",
		Mode:      "dispatch",
		Status:    "optimal",
		Succeeded: true,
		SolveTime: 2 * time.Second,
		Summary:   optimizer.Summary{CostSavings: 15},
		Time:      time.Now(),
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record run: %v", err)
	}
	got := fake.joined()
	if !strings.Contains(got, "optimization_run") {
		t.Fatalf("write missing measurement: %q", got)
	}
	if !strings.Contains(got, `case=plant-a`) || !strings.Contains(got, "cost_savings=15") {
		t.Fatalf("write missing tags or fields: %q", got)
	}
}

func TestInfluxSinkRecordSchedule(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	points := []coremetrics.SchedulePoint{
		{RunID: "r1", CaseName: "plant-a", Time: time.Now(), ElectricPowerKW: 1000, HeaterOn: true, Window: "low"},
		{RunID: "r1", CaseName: "plant-a", Time: time.Now().Add(time.Hour), FuelEnergyKWh: 500, Window: "normal"},
	}
	if err := sink.RecordSchedule(points); err != nil {
		t.Fatalf("record schedule: %v", err)
	}
	got := fake.joined()
	if !strings.Contains(got, "dispatch_schedule") || !strings.Contains(got, "window=low") {
		t.Fatalf("schedule write missing data: %q", got)
	}
}

func TestInfluxSinkFallsBackToNop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL, "token", "org", "bucket")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("sink = %T, want NopSink on failed health check", sink)
	}
}
