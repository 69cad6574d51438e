package metrics

import (
	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/core/metrics/history"
	"github.com/prometheus/client_golang/prometheus"
)

// HistorySink aggregates run events into the daily run-history store and
// exposes the rolling totals as Prometheus gauges.
type HistorySink struct {
	store   history.Store
	shifted *prometheus.GaugeVec
	savings *prometheus.GaugeVec
	co2     *prometheus.GaugeVec
}

// NewHistorySink creates a sink with Prometheus gauges registered on reg.
func NewHistorySink(store history.Store, reg prometheus.Registerer) *HistorySink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	shifted := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "case_daily_electricity_used_kwh",
		Help: "Daily electric heating energy per case",
	}, []string{"case", "day"})
	savings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "case_daily_cost_savings",
		Help: "Daily cost savings per case",
	}, []string{"case", "day"})
	co2 := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "case_daily_emissions_saved_tonnes",
		Help: "Daily CO2 savings per case",
	}, []string{"case", "day"})
	reg.MustRegister(shifted, savings, co2)
	return &HistorySink{store: store, shifted: shifted, savings: savings, co2: co2}
}

// RecordRun folds the run into its day's aggregate and refreshes the gauges.
func (s *HistorySink) RecordRun(ev coremetrics.RunEvent) error {
	if !ev.Succeeded {
		return nil
	}
	rec := history.Record{
		CaseName:             ev.CaseName,
		Date:                 ev.Start,
		ElectricityShiftKWh:  ev.Summary.ElectricityUsedKWh,
		CostSavings:          ev.Summary.CostSavings,
		EmissionsSavedTonnes: ev.Summary.EmissionsSavingsTonnes,
		Runs:                 1,
	}
	if err := s.store.Add(rec); err != nil {
		return err
	}
	day := history.Day(ev.Start)
	records, err := s.store.Query(ev.CaseName, day, day)
	if err != nil || len(records) == 0 {
		return err
	}
	r := records[0]
	dayStr := day.Format("2006-01-02")
	s.shifted.WithLabelValues(ev.CaseName, dayStr).Set(r.ElectricityShiftKWh)
	s.savings.WithLabelValues(ev.CaseName, dayStr).Set(r.CostSavings)
	s.co2.WithLabelValues(ev.CaseName, dayStr).Set(r.EmissionsSavedTonnes)
	return nil
}
