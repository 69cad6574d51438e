// Package app wires configuration, metrics and transport around the
// scheduling engine and exposes the operations the CLI commands call.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/heatflex/heatflex/config"
	"github.com/heatflex/heatflex/core/engine"
	"github.com/heatflex/heatflex/core/events"
	corelogger "github.com/heatflex/heatflex/core/logger"
	coremetrics "github.com/heatflex/heatflex/core/metrics"
	coremqtt "github.com/heatflex/heatflex/core/mqtt"
	"github.com/heatflex/heatflex/core/timeseries"
	"github.com/heatflex/heatflex/infra/logger"
	"github.com/heatflex/heatflex/infra/metrics"
	"github.com/heatflex/heatflex/infra/mqtt"
	"github.com/heatflex/heatflex/internal/eventbus"
	"github.com/heatflex/heatflex/internal/seriesio"
	"github.com/heatflex/heatflex/pkg/export"
)

// Service orchestrates one optimization run: load the input series, run the
// configured solver, record metrics, export the result and optionally push
// the schedule to the plant controller.
type Service struct {
	cfg  *config.Config
	bus  eventbus.EventBus
	sink coremetrics.Sink
	pub  coremqtt.Publisher
	log  corelogger.Logger

	collectorDone <-chan struct{}
	disconnect    func()
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service", cfg.Logging.Level)
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	svc := &Service{cfg: cfg, bus: eventbus.New(), sink: sink, log: log}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT.Client)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.pub = client
		svc.disconnect = client.Disconnect
	}
	return svc, nil
}

// Run executes the configured optimization case and blocks until the result
// is recorded and exported.
func (s *Service) Run(ctx context.Context) (*engine.Result, error) {
	s.collectorDone = metrics.StartEventCollector(ctx, s.bus, s.sink)
	if addr := s.cfg.Metrics.PromAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	req, err := s.buildRequest()
	if err != nil {
		return nil, err
	}
	mode := s.cfg.Engine.Mode
	s.bus.Publish(events.RunStarted{CaseName: req.CaseName, Mode: mode, Start: req.Start, End: req.End})
	s.log.Infof("running case %s mode=%s range=[%s, %s]", req.CaseName, mode,
		req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))

	var res *engine.Result
	if mode == config.ModeThreshold {
		res, err = engine.RunThreshold(req)
	} else {
		res, err = engine.Run(req)
	}
	if err != nil {
		s.bus.Publish(events.RunFailed{CaseName: req.CaseName, Mode: mode, Err: err})
		return nil, err
	}
	s.bus.Publish(events.RunCompleted{Mode: mode, Result: res})
	s.log.Infof("run %s finished status=%s elapsed=%s", res.RunID, res.Plan.Status, res.Elapsed)

	if s.pub != nil {
		if err := s.publishSchedule(res); err != nil {
			s.log.Errorf("schedule publish: %v", err)
		}
	}
	if err := s.exportResult(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) buildRequest() (engine.Request, error) {
	in := s.cfg.Inputs
	start, end, err := in.Range()
	if err != nil {
		return engine.Request{}, err
	}

	load := func(path, name string) (timeseries.Series, error) {
		if path == "" {
			return timeseries.Series{}, nil
		}
		return seriesio.ReadFile(path, name, in.IgnoreTimezone)
	}
	co2, err := load(in.CO2CSV, engine.ColCO2)
	if err != nil {
		return engine.Request{}, err
	}
	heat, err := load(in.HeatDemandCSV, engine.ColHeatDemand)
	if err != nil {
		return engine.Request{}, err
	}
	baseline, err := load(in.BaselineDemandCSV, engine.ColBaselineDemand)
	if err != nil {
		return engine.Request{}, err
	}
	price, err := load(in.ElectricityPriceCSV, engine.ColElectricityPrice)
	if err != nil {
		return engine.Request{}, err
	}
	fuel, err := load(in.FuelPriceCSV, engine.ColFuelPrice)
	if err != nil {
		return engine.Request{}, err
	}

	t := s.cfg.Tariff
	return engine.Request{
		CaseName:         in.CaseName,
		Start:            start,
		End:              end,
		CO2:              co2,
		HeatDemand:       heat,
		BaselineDemand:   baseline,
		ElectricityPrice: price,
		FuelPrice:        fuel,
		NetworkFeeMode:   t.NetworkFeeMode,
		NetworkFee:       t.NetworkFee,
		LowReduction:     t.LowReduction,
		HighSurcharge:    t.HighSurcharge,
		WindowHalfWidth:  t.WindowHalfWidth(),
		FuelNetworkFee:   t.FuelNetworkFee,
		FuelPricePerMWh:  t.FuelPricePerMWh,
		Optimizer:        s.cfg.Engine.Params(),
	}, nil
}

func (s *Service) publishSchedule(res *engine.Result) error {
	sched := coremqtt.Schedule{
		RunID:         res.RunID,
		CaseName:      res.CaseName,
		IntervalHours: res.IntervalHours,
		Setpoints:     make([]coremqtt.Setpoint, len(res.Times)),
	}
	for i, at := range res.Times {
		sched.Setpoints[i] = coremqtt.Setpoint{
			Time:     at,
			PowerKW:  res.Plan.ElectricPowerKW[i],
			HeaterOn: res.Plan.HeaterOn[i],
		}
	}
	cmdID, err := s.pub.PublishSchedule(sched)
	if err != nil {
		return err
	}
	timeout := time.Duration(s.cfg.MQTT.AckTimeoutSeconds) * time.Second
	acked, err := s.pub.WaitForAck(cmdID, timeout)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("schedule %s not acknowledged", cmdID)
	}
	s.log.Infof("schedule %s acknowledged by plant controller", cmdID)
	return nil
}

func (s *Service) exportResult(res *engine.Result) error {
	dir := s.cfg.Export.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}
	for _, format := range s.cfg.Export.Formats {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", res.CaseName, res.RunID, format))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		switch format {
		case "csv":
			err = export.WriteCSV(f, res)
		default:
			err = export.WriteJSON(f, res)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
		s.log.Infof("result written to %s", path)
	}
	return nil
}

// Close flushes pending metric events and releases transport resources.
func (s *Service) Close() error {
	s.bus.Close()
	if s.collectorDone != nil {
		select {
		case <-s.collectorDone:
		case <-time.After(2 * time.Second):
		}
	}
	if s.disconnect != nil {
		s.disconnect()
	}
	return nil
}
