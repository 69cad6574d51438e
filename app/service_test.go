package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/heatflex/heatflex/config"
	"github.com/heatflex/heatflex/core/factory"
	coremetrics "github.com/heatflex/heatflex/core/metrics"
)

func writeSeries(t *testing.T, dir, name string, values []float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := "timestamp,value\n"
	for i, v := range values {
		data += fmt.Sprintf("2024-10-01T%02d:00:00Z,%g\n", i, v)
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Inputs: config.InputsConfig{
			CaseName:            "plant-a",
			Start:               "2024-10-01T00:00:00Z",
			End:                 "2024-10-01T03:00:00Z",
			CO2CSV:              writeSeries(t, dir, "co2.csv", []float64{100, 500, 100, 500}),
			HeatDemandCSV:       writeSeries(t, dir, "heat.csv", []float64{1000, 1000, 1000, 1000}),
			BaselineDemandCSV:   writeSeries(t, dir, "baseline.csv", []float64{3000, 3000, 3000, 3000}),
			ElectricityPriceCSV: writeSeries(t, dir, "price.csv", []float64{0, 0, 0, 0}),
		},
		Engine: config.EngineConfig{
			Mode:                config.ModeDispatch,
			CapacityKW:          1000,
			FuelEmissionsFactor: 250,
			CO2Price:            50,
			RampUpRateKWPerH:    1000,
			RampDownRateKWPerH:  1000,
			MinRuntimeHours:     1,
		},
		Tariff: config.TariffConfig{NetworkFeeMode: "static"},
		Export: config.ExportConfig{Dir: filepath.Join(dir, "out"), Formats: []string{"json", "csv"}},
	}
	cfg.Logging.SetDefaults()
	cfg.MQTT.SetDefaults()
	return cfg
}

func TestServiceRunExportsResult(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Plan.Status.String() != "optimal" {
		t.Fatalf("status = %s", res.Plan.Status)
	}
	if res.Summary.ElectricityUsedKWh != 2000 {
		t.Fatalf("electricity used = %v", res.Summary.ElectricityUsedKWh)
	}

	jsonPath := filepath.Join(cfg.Export.Dir, fmt.Sprintf("plant-a_%s.json", res.RunID))
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export not valid JSON: %v", err)
	}
	if doc["run_id"] != res.RunID {
		t.Fatalf("exported run_id = %v", doc["run_id"])
	}
	csvPath := filepath.Join(cfg.Export.Dir, fmt.Sprintf("plant-a_%s.csv", res.RunID))
	if _, err := os.Stat(csvPath); err != nil {
		t.Fatalf("csv export missing: %v", err)
	}
}

func TestServiceRunThresholdMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.Mode = config.ModeThreshold
	cfg.Export.Formats = []string{"json"}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Threshold rule heats exactly when intensity is below the fuel factor.
	wantOn := []bool{true, false, true, false}
	for i, w := range wantOn {
		if res.Plan.HeaterOn[i] != w {
			t.Fatalf("interval %d: heater on = %v", i, res.Plan.HeaterOn[i])
		}
	}
}

func TestServiceRunRecordsFailureEvent(t *testing.T) {
	recorded := make(chan coremetrics.RunEvent, 4)
	sinkName := "service-test-capture"
	if err := coremetrics.RegisterSink(sinkName, func(map[string]any) (coremetrics.Sink, error) {
		return captureFunc(func(ev coremetrics.RunEvent) error {
			recorded <- ev
			return nil
		}), nil
	}); err != nil {
		t.Fatalf("register sink: %v", err)
	}

	cfg := testConfig(t)
	cfg.Inputs.End = "2024-10-01T05:00:00Z" // beyond the data
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: sinkName}}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected coverage error")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case ev := <-recorded:
		if ev.Status != "failed" || ev.CaseName != "plant-a" {
			t.Fatalf("recorded event %+v", ev)
		}
	default:
		t.Fatal("failure event not recorded")
	}
}

type captureFunc func(coremetrics.RunEvent) error

func (f captureFunc) RecordRun(ev coremetrics.RunEvent) error { return f(ev) }
