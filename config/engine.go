package config

import (
	"fmt"
	"time"

	"github.com/heatflex/heatflex/core/optimizer"
)

// Dispatch modes.
const (
	ModeDispatch  = "dispatch"
	ModeThreshold = "threshold"
)

// EngineConfig holds the dispatch parameters of the flexible load. Defaults
// describe an 8 MW electrode boiler backed by natural gas.
type EngineConfig struct {
	// Mode selects the solver: "dispatch" runs the mixed-integer program,
	// "threshold" the emissions-threshold heuristic.
	Mode string `json:"mode"`

	CapacityKW          float64 `json:"capacity_kw"`
	MinOnPowerKW        float64 `json:"min_on_power_kw"`
	FuelEmissionsFactor float64 `json:"fuel_emissions_factor"`
	CO2Price            float64 `json:"co2_price"`
	RampUpRateKWPerH    float64 `json:"ramp_up_rate_kw_per_h"`
	RampDownRateKWPerH  float64 `json:"ramp_down_rate_kw_per_h"`
	MinRuntimeHours     float64 `json:"min_runtime_hours"`
	MinLoadFactor       float64 `json:"min_load_factor"`
	RelGap              float64 `json:"rel_gap"`
	TimeLimitSeconds    int     `json:"time_limit_seconds"`
}

// SetDefaults applies the standard parameter set.
func (c *EngineConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDispatch
	}
	if c.CapacityKW == 0 {
		c.CapacityKW = 8000
	}
	if c.FuelEmissionsFactor == 0 {
		c.FuelEmissionsFactor = 204
	}
	if c.CO2Price == 0 {
		c.CO2Price = 55
	}
	if c.RampUpRateKWPerH == 0 {
		c.RampUpRateKWPerH = 6000
	}
	if c.RampDownRateKWPerH == 0 {
		c.RampDownRateKWPerH = 6000
	}
	if c.MinRuntimeHours == 0 {
		c.MinRuntimeHours = 0.5
	}
}

// Validate checks the mode; the scalar parameters are validated by the
// optimizer itself before every solve.
func (c EngineConfig) Validate() error {
	if c.Mode != ModeDispatch && c.Mode != ModeThreshold {
		return fmt.Errorf("unknown engine mode %s", c.Mode)
	}
	return nil
}

// Params converts the section into solver parameters.
func (c EngineConfig) Params() optimizer.Params {
	return optimizer.Params{
		CapacityKW:          c.CapacityKW,
		MinOnPowerKW:        c.MinOnPowerKW,
		FuelEmissionsFactor: c.FuelEmissionsFactor,
		CO2Price:            c.CO2Price,
		RampUpRateKWPerH:    c.RampUpRateKWPerH,
		RampDownRateKWPerH:  c.RampDownRateKWPerH,
		MinRuntimeHours:     c.MinRuntimeHours,
		MinLoadFactor:       c.MinLoadFactor,
		RelGap:              c.RelGap,
		TimeLimit:           time.Duration(c.TimeLimitSeconds) * time.Second,
	}
}
