package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/infra/logger"
)

// InfluxSink writes run events to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink", "info"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run aggregates as one point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimization_run").
		AddTag("case", ev.CaseName).
		AddTag("mode", ev.Mode).
		AddTag("status", ev.Status).
		AddTag("run_id", ev.RunID).
		AddField("succeeded", ev.Succeeded).
		AddField("solve_seconds", round3(ev.SolveTime.Seconds())).
		AddField("interval_hours", ev.IntervalHours).
		AddField("electricity_used_kwh", round3(ev.Summary.ElectricityUsedKWh)).
		AddField("fuel_used_kwh", round3(ev.Summary.FuelUsedKWh)).
		AddField("cost_savings", round3(ev.Summary.CostSavings)).
		AddField("emissions_saved_t", round3(ev.Summary.EmissionsSavingsTonnes)).
		AddField("full_load_hours_after", round3(ev.Summary.FullLoadHoursAfterOptimization)).
		AddField("low_window_ratio", round3(ev.Summary.LowWindowEnergyRatio)).
		SetTime(ev.Time)
	if ev.Error != "" {
		p.AddField("errors", ev.Error)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSchedule writes the solved per-interval setpoints.
func (s *InfluxSink) RecordSchedule(points []coremetrics.SchedulePoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, sp := range points {
		p := write.NewPointWithMeasurement("dispatch_schedule").
			AddTag("case", sp.CaseName).
			AddTag("run_id", sp.RunID).
			AddTag("window", sp.Window).
			AddTag("heater_on", strconv.FormatBool(sp.HeaterOn)).
			AddField("electric_power_kw", round3(sp.ElectricPowerKW)).
			AddField("fuel_energy_kwh", round3(sp.FuelEnergyKWh)).
			SetTime(sp.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
