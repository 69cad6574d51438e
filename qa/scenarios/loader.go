// Package scenarios runs YAML-defined optimization cases against the engine.
// Each scenario file declares the input series inline together with the
// expected dispatch outcome, so regressions in the pipeline show up as a
// readable diff instead of a number soup.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/heatflex/heatflex/core/engine"
	"github.com/heatflex/heatflex/core/optimizer"
	"github.com/heatflex/heatflex/core/timeseries"
)

type ParamsDef struct {
	CapacityKW          float64 `yaml:"capacity_kw"`
	MinOnPowerKW        float64 `yaml:"min_on_power_kw"`
	FuelEmissionsFactor float64 `yaml:"fuel_emissions_factor"`
	CO2Price            float64 `yaml:"co2_price"`
	RampUpRateKWPerH    float64 `yaml:"ramp_up_rate_kw_per_h"`
	RampDownRateKWPerH  float64 `yaml:"ramp_down_rate_kw_per_h"`
	MinRuntimeHours     float64 `yaml:"min_runtime_hours"`
	MinLoadFactor       float64 `yaml:"min_load_factor"`
}

func (p ParamsDef) ToParams() optimizer.Params {
	return optimizer.Params{
		CapacityKW:          p.CapacityKW,
		MinOnPowerKW:        p.MinOnPowerKW,
		FuelEmissionsFactor: p.FuelEmissionsFactor,
		CO2Price:            p.CO2Price,
		RampUpRateKWPerH:    p.RampUpRateKWPerH,
		RampDownRateKWPerH:  p.RampDownRateKWPerH,
		MinRuntimeHours:     p.MinRuntimeHours,
		MinLoadFactor:       p.MinLoadFactor,
	}
}

type Expected struct {
	Status             string  `yaml:"status"`
	HeaterOn           []bool  `yaml:"heater_on,omitempty"`
	ElectricityUsedKWh float64 `yaml:"electricity_used_kwh"`
	// Error names the expected failure class: "validation", "coverage",
	// "data" or "optimization". Empty means the run must succeed.
	Error string `yaml:"error,omitempty"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Start           string  `yaml:"start"`
	IntervalMinutes int     `yaml:"interval_minutes"`
	Mode            string  `yaml:"mode,omitempty"`
	NetworkFeeMode  string  `yaml:"network_fee_mode"`
	NetworkFee      float64 `yaml:"network_fee"`
	LowReduction    float64 `yaml:"low_reduction"`
	FuelPricePerMWh float64 `yaml:"fuel_price_per_mwh"`

	CO2              []float64 `yaml:"co2"`
	HeatDemand       []float64 `yaml:"heat_demand"`
	BaselineDemand   []float64 `yaml:"baseline_demand"`
	ElectricityPrice []float64 `yaml:"electricity_price"`

	Params   ParamsDef `yaml:"params"`
	Expected Expected  `yaml:"expected"`
}

// ToRequest converts the scenario into an engine request. The horizon is
// implied by the series length and the interval.
func (sc Scenario) ToRequest() (engine.Request, error) {
	start, err := time.Parse(time.RFC3339, sc.Start)
	if err != nil {
		return engine.Request{}, fmt.Errorf("scenario %s: bad start: %w", sc.Name, err)
	}
	step := time.Duration(sc.IntervalMinutes) * time.Minute
	if step <= 0 {
		return engine.Request{}, fmt.Errorf("scenario %s: interval_minutes must be positive", sc.Name)
	}
	n := len(sc.CO2)
	if n == 0 {
		return engine.Request{}, fmt.Errorf("scenario %s: co2 series is empty", sc.Name)
	}
	end := start.Add(time.Duration(n-1) * step)

	series := func(name string, values []float64) timeseries.Series {
		s := timeseries.Series{Name: name}
		for i, v := range values {
			s.Points = append(s.Points, timeseries.Point{Time: start.Add(time.Duration(i) * step).UTC(), Value: v})
		}
		return s
	}
	return engine.Request{
		CaseName:         sc.Name,
		Start:            start,
		End:              end,
		CO2:              series(engine.ColCO2, sc.CO2),
		HeatDemand:       series(engine.ColHeatDemand, sc.HeatDemand),
		BaselineDemand:   series(engine.ColBaselineDemand, sc.BaselineDemand),
		ElectricityPrice: series(engine.ColElectricityPrice, sc.ElectricityPrice),
		NetworkFeeMode:   sc.NetworkFeeMode,
		NetworkFee:       sc.NetworkFee,
		LowReduction:     sc.LowReduction,
		WindowHalfWidth:  time.Hour,
		FuelPricePerMWh:  sc.FuelPricePerMWh,
		Optimizer:        sc.Params.ToParams(),
	}, nil
}

// Load reads one scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
