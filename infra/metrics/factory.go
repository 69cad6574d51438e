package metrics

import (
	"github.com/heatflex/heatflex/core/factory"
	coremetrics "github.com/heatflex/heatflex/core/metrics"
	"github.com/heatflex/heatflex/core/metrics/history"
	"github.com/heatflex/heatflex/infra/kpi"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.Sink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.Sink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterSink("history", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		var store history.Store
		if c.Path == "" {
			store = history.NewMemoryStore()
		} else {
			s, err := kpi.NewSQLiteStore(c.Path)
			if err != nil {
				return nil, err
			}
			store = s
		}
		return NewHistorySink(store, prometheus.DefaultRegisterer), nil
	})
}
