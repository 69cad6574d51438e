package metrics

import (
	"context"
	"time"

	"github.com/heatflex/heatflex/core/engine"
	"github.com/heatflex/heatflex/core/events"
	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for run
// lifecycle events. It stops when the context is canceled or the bus closes;
// the returned channel is closed once the collector has drained.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.RunCompleted:
					res := e.Result
					_ = sink.RecordRun(coremetrics.RunEvent{
						RunID:         res.RunID,
						CaseName:      res.CaseName,
						Mode:          e.Mode,
						Status:        res.Plan.Status.String(),
						Succeeded:     true,
						Start:         res.Start,
						End:           res.End,
						IntervalHours: res.IntervalHours,
						SolveTime:     res.Elapsed,
						Summary:       *res.Summary,
						Time:          time.Now(),
					})
					if rec, ok := sink.(coremetrics.ScheduleRecorder); ok {
						_ = rec.RecordSchedule(schedulePoints(res))
					}
				case events.RunFailed:
					errStr := ""
					if e.Err != nil {
						errStr = e.Err.Error()
					}
					_ = sink.RecordRun(coremetrics.RunEvent{
						CaseName: e.CaseName,
						Mode:     e.Mode,
						Status:   "failed",
						Error:    errStr,
						Time:     time.Now(),
					})
				}
			}
		}
	}()
	return done
}

func schedulePoints(res *engine.Result) []coremetrics.SchedulePoint {
	points := make([]coremetrics.SchedulePoint, len(res.Times))
	for i, t := range res.Times {
		points[i] = coremetrics.SchedulePoint{
			RunID:           res.RunID,
			CaseName:        res.CaseName,
			Time:            t,
			ElectricPowerKW: res.Plan.ElectricPowerKW[i],
			FuelEnergyKWh:   res.Plan.FuelEnergyKWh[i],
			HeaterOn:        res.Plan.HeaterOn[i],
			Window:          res.Window[i].String(),
		}
	}
	return points
}
