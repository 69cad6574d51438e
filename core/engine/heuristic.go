package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/heatflex/heatflex/core/optimizer"
	"github.com/heatflex/heatflex/core/tariff"
)

// RunThreshold evaluates the request with a simple switching rule instead of
// the optimizer: the electric heater runs at capacity in every interval whose
// grid intensity is below the fuel emissions factor, and stays off otherwise.
// Ramp, runtime and full-load-hour constraints are ignored, so the result is
// an upper bound on the achievable savings rather than a dispatchable plan.
func RunThreshold(req Request) (*Result, error) {
	started := time.Now()
	if err := req.validate(); err != nil {
		return nil, err
	}
	p := req.Optimizer
	if err := p.Prepare(); err != nil {
		return nil, err
	}

	frame, err := reconcileInputs(req)
	if err != nil {
		return nil, err
	}
	gran, err := frame.Granularity()
	if err != nil {
		return nil, err
	}
	dt := gran.Hours()

	co2 := frame.Column(ColCO2)
	heat := frame.Column(ColHeatDemand)
	prices := frame.Column(ColElectricityPrice)
	fuel := frame.Column(ColFuelPrice)
	n := frame.Len()

	plan := &optimizer.Plan{
		ElectricPowerKW:    make([]float64, n),
		HeaterOn:           make([]bool, n),
		HeaterStart:        make([]bool, n),
		FuelEnergyKWh:      make([]float64, n),
		FuelEmissionsG:     make([]float64, n),
		ElectricEmissionsG: make([]float64, n),
	}
	var totalDemand, elecUsed, fuelEnergy float64
	var priceSum float64
	var heatingIntervals int
	var emissionsSavings, costDelta float64
	for t := 0; t < n; t++ {
		totalDemand += heat[t]
		if co2[t] >= p.FuelEmissionsFactor {
			plan.FuelEnergyKWh[t] = heat[t]
			plan.FuelEmissionsG[t] = heat[t] * p.FuelEmissionsFactor
			fuelEnergy += heat[t]
			continue
		}
		energy := p.CapacityKW * dt
		plan.ElectricPowerKW[t] = p.CapacityKW
		plan.HeaterOn[t] = true
		plan.HeaterStart[t] = t == 0 || !plan.HeaterOn[t-1]
		plan.FuelEnergyKWh[t] = math.Max(heat[t]-energy, 0)
		plan.FuelEmissionsG[t] = plan.FuelEnergyKWh[t] * p.FuelEmissionsFactor
		plan.ElectricEmissionsG[t] = energy * co2[t]
		fuelEnergy += plan.FuelEnergyKWh[t]
		elecUsed += energy
		priceSum += prices[t]
		heatingIntervals++
		emissionsSavings += (p.FuelEmissionsFactor - co2[t]) * energy * 1e-6
		costDelta += (fuel[t] - prices[t]) * energy * 1e-3
	}

	emissionsFuelOnly := totalDemand * p.FuelEmissionsFactor * 1e-6
	costFuelOnly := totalDemand*1e-3*mean(fuel) + emissionsFuelOnly*p.CO2Price
	savings := emissionsSavings*p.CO2Price + costDelta

	meanPrice := math.NaN()
	if heatingIntervals > 0 {
		meanPrice = priceSum / float64(heatingIntervals)
	}

	summary := &optimizer.Summary{
		TotalEnergyDemandKWh:               totalDemand,
		ElectricityUsedKWh:                 elecUsed,
		FuelUsedKWh:                        fuelEnergy,
		CostFuelOnly:                       costFuelOnly,
		CostWithElectricHeating:            costFuelOnly - savings,
		CostSavings:                        savings,
		EmissionsFuelOnlyTonnes:            emissionsFuelOnly,
		EmissionsWithElectricHeatingTonnes: emissionsFuelOnly - emissionsSavings,
		EmissionsSavingsTonnes:             emissionsSavings,
		MeanPriceWhileHeating:              meanPrice,
	}

	return &Result{
		RunID:          uuid.NewString(),
		CaseName:       req.CaseName,
		Start:          req.Start.UTC(),
		End:            req.End.UTC(),
		Times:          frame.Times,
		Window:         make([]tariff.WindowClass, n),
		Plan:           plan,
		Summary:        summary,
		IntervalHours:  dt,
		NetworkFeeMode: req.NetworkFeeMode,
		NetworkFee:     req.NetworkFee,
		Elapsed:        time.Since(started),
	}, nil
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}
