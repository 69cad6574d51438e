package metrics

import "github.com/heatflex/heatflex/core/factory"

// Config defines settings for metrics sinks. When PromAddr is set, the
// service exposes the default Prometheus registry on that address.
type Config struct {
	Sinks    []factory.ModuleConfig `json:"sinks"`
	PromAddr string                 `json:"prom_addr"`
}
