package metrics

import (
	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records optimization runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	solveTime *prometheus.HistogramVec
	savings   *prometheus.GaugeVec
	emissions *prometheus.GaugeVec
	shifted   *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The Prometheus server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimization_runs_total",
		Help: "Total number of optimization runs",
	}, []string{"case", "mode", "status"})
	solveTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimization_solve_seconds",
		Help:    "Wall-clock time spent solving one run",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"case", "mode"})
	savings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optimization_cost_savings",
		Help: "Cost savings of the most recent run per case",
	}, []string{"case"})
	emissions := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optimization_emissions_saved_tonnes",
		Help: "CO2 savings of the most recent run per case",
	}, []string{"case"})
	shifted := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optimization_electricity_used_kwh",
		Help: "Electric heating energy of the most recent run per case",
	}, []string{"case"})

	s := &PromSink{runs: runs, solveTime: solveTime, savings: savings, emissions: emissions, shifted: shifted}
	for _, c := range []prometheus.Collector{runs, solveTime, savings, emissions, shifted} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordRun updates the run counter, solve-time histogram and KPI gauges.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.CaseName, ev.Mode, ev.Status).Inc()
	if !ev.Succeeded {
		return nil
	}
	s.solveTime.WithLabelValues(ev.CaseName, ev.Mode).Observe(ev.SolveTime.Seconds())
	s.savings.WithLabelValues(ev.CaseName).Set(ev.Summary.CostSavings)
	s.emissions.WithLabelValues(ev.CaseName).Set(ev.Summary.EmissionsSavingsTonnes)
	s.shifted.WithLabelValues(ev.CaseName).Set(ev.Summary.ElectricityUsedKWh)
	return nil
}
