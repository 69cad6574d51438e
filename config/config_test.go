package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `inputs:
  case_name: "plant-a"
  start: "2024-10-01"
  end: "2024-10-07"
  ignore_timezone: true
  co2_csv: "data/co2.csv"
  heat_demand_csv: "data/heat.csv"
  baseline_demand_csv: "data/baseline.csv"
  electricity_price_csv: "data/price.csv"
engine:
  mode: "dispatch"
  capacity_kw: 4000
  fuel_emissions_factor: 204
  co2_price: 55
tariff:
  network_fee_mode: "dynamic"
  network_fee: 25.0
  low_reduction: 0.8
  window_half_width_minutes: 120
metrics:
  prom_addr: ":9100"
  sinks:
    - type: "nop"
mqtt:
  enabled: true
  client:
    broker: "tcp://localhost:1883"
    client_id: "heatflex"
export:
  dir: "out"
  formats: ["json", "csv"]
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"case_name", cfg.Inputs.CaseName, "plant-a"},
		{"ignore_timezone", cfg.Inputs.IgnoreTimezone, true},
		{"co2_csv", cfg.Inputs.CO2CSV, "data/co2.csv"},
		{"mode", cfg.Engine.Mode, "dispatch"},
		{"capacity_kw", cfg.Engine.CapacityKW, 4000.0},
		{"co2_price", cfg.Engine.CO2Price, 55.0},
		{"ramp_default", cfg.Engine.RampUpRateKWPerH, 6000.0},
		{"fee_mode", cfg.Tariff.NetworkFeeMode, "dynamic"},
		{"network_fee", cfg.Tariff.NetworkFee, 25.0},
		{"half_width", cfg.Tariff.WindowHalfWidth(), 2 * time.Hour},
		{"fuel_price_default", cfg.Tariff.FuelPricePerMWh, 60.0},
		{"prom_addr", cfg.Metrics.PromAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"mqtt_enabled", cfg.MQTT.Enabled, true},
		{"mqtt_broker", cfg.MQTT.Client.Broker, "tcp://localhost:1883"},
		{"ack_timeout_default", cfg.MQTT.AckTimeoutSeconds, 5},
		{"export_dir", cfg.Export.Dir, "out"},
		{"export_formats", len(cfg.Export.Formats), 2},
		{"log_level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}

	start, end, err := cfg.Inputs.Range()
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if !start.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "inputs": {
    "case_name": "plant-b",
    "start": "2024-10-01T00:00:00Z",
    "end": "2024-10-02T00:00:00Z",
    "co2_csv": "co2.csv",
    "heat_demand_csv": "heat.csv",
    "baseline_demand_csv": "baseline.csv",
    "electricity_price_csv": "price.csv"
  }
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Engine.Mode != ModeDispatch {
		t.Errorf("mode default = %s", cfg.Engine.Mode)
	}
	if cfg.Engine.CapacityKW != 8000 {
		t.Errorf("capacity default = %v", cfg.Engine.CapacityKW)
	}
	if cfg.Tariff.NetworkFeeMode != "static" {
		t.Errorf("fee mode default = %s", cfg.Tariff.NetworkFeeMode)
	}
	if cfg.Tariff.WindowHalfWidth() != 2*time.Hour {
		t.Errorf("half width default = %v", cfg.Tariff.WindowHalfWidth())
	}
	if cfg.Export.Dir != "results" || len(cfg.Export.Formats) != 1 || cfg.Export.Formats[0] != "json" {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level default = %s", cfg.Logging.Level)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `inputs:
  case_name: "plant-a"
  start: "2024-10-01"
  end: "2024-10-07"
  co2_csv: "co2.csv"
  heat_demand_csv: "heat.csv"
  baseline_demand_csv: "baseline.csv"
  electricity_price_csv: "price.csv"
`)
	t.Setenv("K_LOGGING__LEVEL", "warn")
	t.Setenv("K_ENGINE__MODE", "threshold")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %s, want env override", cfg.Logging.Level)
	}
	if cfg.Engine.Mode != ModeThreshold {
		t.Errorf("mode = %s, want env override", cfg.Engine.Mode)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing case name", `inputs:
  start: "2024-10-01"
  end: "2024-10-07"
  co2_csv: "co2.csv"
  heat_demand_csv: "heat.csv"
  baseline_demand_csv: "baseline.csv"
  electricity_price_csv: "price.csv"
`},
		{"bad engine mode", `inputs:
  case_name: "x"
  start: "2024-10-01"
  end: "2024-10-07"
  co2_csv: "co2.csv"
  heat_demand_csv: "heat.csv"
  baseline_demand_csv: "baseline.csv"
  electricity_price_csv: "price.csv"
engine:
  mode: "simulated_annealing"
`},
		{"bad fee mode", `inputs:
  case_name: "x"
  start: "2024-10-01"
  end: "2024-10-07"
  co2_csv: "co2.csv"
  heat_demand_csv: "heat.csv"
  baseline_demand_csv: "baseline.csv"
  electricity_price_csv: "price.csv"
tariff:
  network_fee_mode: "hybrid"
`},
		{"bad export format", `inputs:
  case_name: "x"
  start: "2024-10-01"
  end: "2024-10-07"
  co2_csv: "co2.csv"
  heat_demand_csv: "heat.csv"
  baseline_demand_csv: "baseline.csv"
  electricity_price_csv: "price.csv"
export:
  formats: ["parquet"]
`},
		{"bad date", `inputs:
  case_name: "x"
  start: "soon"
  end: "2024-10-07"
  co2_csv: "co2.csv"
  heat_demand_csv: "heat.csv"
  baseline_demand_csv: "baseline.csv"
  electricity_price_csv: "price.csv"
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tc.data)
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error")
	}
}
