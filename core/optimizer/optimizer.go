// Package optimizer builds and solves the mixed-integer dispatch program that
// splits a flexible thermal load between electricity and a fallback fuel.
package optimizer

import (
	"math"
	"time"

	"github.com/heatflex/heatflex/core/faults"
	"github.com/heatflex/heatflex/core/tariff"
)

// Params are the scalar knobs of one optimization run.
type Params struct {
	CapacityKW          float64 // maximum electric heating power
	MinOnPowerKW        float64 // minimum draw whenever the heater is on
	FuelEmissionsFactor float64 // g/kWh of the fallback fuel
	CO2Price            float64 // per tonne of CO2
	RampUpRateKWPerH    float64
	RampDownRateKWPerH  float64
	MinRuntimeHours     float64
	MinLoadFactor       float64 // lower bound on the realized full-load-hour ratio

	RelGap    float64
	TimeLimit time.Duration
}

const (
	defaultMinOnPowerKW  = 100.0
	defaultMinLoadFactor = 0.8
	defaultRelGap        = 0.001
	defaultTimeLimit     = 120 * time.Second
	defaultIntTol        = 1e-5
	defaultSimplexTol    = 1e-7
)

func (p *Params) setDefaults() {
	if p.MinOnPowerKW == 0 {
		p.MinOnPowerKW = defaultMinOnPowerKW
	}
	if p.MinLoadFactor == 0 {
		p.MinLoadFactor = defaultMinLoadFactor
	}
	if p.RelGap == 0 {
		p.RelGap = defaultRelGap
	}
	if p.TimeLimit == 0 {
		p.TimeLimit = defaultTimeLimit
	}
}

// Prepare fills in defaulted fields and validates the parameters. Optimize
// does this on its own; callers that evaluate the parameters outside the
// solver use Prepare directly.
func (p *Params) Prepare() error {
	p.setDefaults()
	return p.validate()
}

func (p Params) validate() error {
	vals := map[string]float64{
		"capacity_kw":           p.CapacityKW,
		"min_on_power_kw":       p.MinOnPowerKW,
		"fuel_emissions_factor": p.FuelEmissionsFactor,
		"co2_price":             p.CO2Price,
		"ramp_up_rate":          p.RampUpRateKWPerH,
		"ramp_down_rate":        p.RampDownRateKWPerH,
		"min_runtime_hours":     p.MinRuntimeHours,
		"min_load_factor":       p.MinLoadFactor,
		"rel_gap":               p.RelGap,
	}
	for name, v := range vals {
		if math.IsNaN(v) || v < 0 {
			return faults.Validationf("optimizer: %s must be a non-negative number, got %v", name, v)
		}
	}
	if p.CapacityKW == 0 {
		return faults.Validationf("optimizer: capacity_kw must be positive")
	}
	if p.MinLoadFactor > 1 {
		return faults.Validationf("optimizer: min_load_factor must be in [0,1], got %v", p.MinLoadFactor)
	}
	return nil
}

// Input groups the reconciled per-interval series with the run parameters.
// All series must share one implied time index.
type Input struct {
	HeatDemandKWh    []float64 // thermal demand per interval
	CO2Intensity     []float64 // grid emissions, g/kWh
	ElectricityPrice []float64 // adjusted price, per MWh
	FuelPrice        []float64 // fallback fuel price, per MWh
	BaselineDemand   []float64 // inflexible site demand per interval, kWh
	Window           []tariff.WindowClass

	IntervalHours float64
	Params        Params
}

func (in Input) validate() error {
	n := len(in.HeatDemandKWh)
	if n == 0 {
		return faults.Validationf("optimizer: schedule horizon is empty")
	}
	if len(in.CO2Intensity) != n || len(in.ElectricityPrice) != n ||
		len(in.FuelPrice) != n || len(in.BaselineDemand) != n || len(in.Window) != n {
		return faults.Validationf(
			"optimizer: series lengths differ: heat=%d co2=%d price=%d fuel=%d baseline=%d window=%d",
			n, len(in.CO2Intensity), len(in.ElectricityPrice), len(in.FuelPrice), len(in.BaselineDemand), len(in.Window))
	}
	if in.IntervalHours <= 0 || math.IsNaN(in.IntervalHours) {
		return faults.Validationf("optimizer: interval_hours must be positive, got %v", in.IntervalHours)
	}
	return in.Params.validate()
}

// buildProblem assembles the MILP. Variable layout: electric power per
// interval, then the heater-on binaries, then the scalar peak demand.
func buildProblem(in Input) *milpProblem {
	T := len(in.HeatDemandKWh)
	dt := in.IntervalHours
	pr := in.Params
	n := 2*T + 1
	pIdx := func(t int) int { return t }
	onIdx := func(t int) int { return T + t }
	peakIdx := 2 * T

	prob := &milpProblem{c: make([]float64, n)}
	addRow := func(rhs float64, set func(row []float64)) {
		row := make([]float64, n)
		set(row)
		prob.g = append(prob.g, row)
		prob.h = append(prob.h, rhs)
	}

	for t := 0; t < T; t++ {
		// Electric heating may never exceed the interval's heat requirement.
		addRow(in.HeatDemandKWh[t], func(r []float64) { r[pIdx(t)] = dt })
		// Capacity gating and the minimum operating point.
		addRow(0, func(r []float64) { r[pIdx(t)] = 1; r[onIdx(t)] = -pr.CapacityKW })
		addRow(0, func(r []float64) { r[pIdx(t)] = -1; r[onIdx(t)] = pr.MinOnPowerKW })
		// Variable bounds.
		addRow(0, func(r []float64) { r[pIdx(t)] = -1 })
		addRow(1, func(r []float64) { r[onIdx(t)] = 1 })
		addRow(0, func(r []float64) { r[onIdx(t)] = -1 })
		// Peak demand: flexible load inside a low window is exempt.
		if in.Window[t] == tariff.WindowLow {
			addRow(-in.BaselineDemand[t], func(r []float64) { r[peakIdx] = -1 })
		} else {
			addRow(-in.BaselineDemand[t], func(r []float64) { r[pIdx(t)] = dt; r[peakIdx] = -1 })
		}
	}
	addRow(0, func(r []float64) { r[peakIdx] = -1 })

	for t := 1; t < T; t++ {
		addRow(pr.RampUpRateKWPerH*dt, func(r []float64) { r[pIdx(t)] = 1; r[pIdx(t-1)] = -1 })
		addRow(pr.RampDownRateKWPerH*dt, func(r []float64) { r[pIdx(t)] = -1; r[pIdx(t-1)] = 1 })
	}

	required := int(math.Ceil(pr.MinRuntimeHours / dt))
	if required > 1 {
		for t := 0; t < T; t++ {
			k := required
			if T-t < k {
				k = T - t
			}
			addRow(0, func(r []float64) {
				for i := 0; i < k; i++ {
					r[onIdx(t+i)] -= 1
				}
				r[onIdx(t)] += float64(k)
				if t > 0 {
					r[onIdx(t-1)] -= float64(k)
				}
			})
		}
	}

	// Full-load-hours floor: total effective demand must reach at least
	// MinLoadFactor of the horizon at peak demand.
	flhRow := make([]float64, n)
	var baseSum float64
	for t := 0; t < T; t++ {
		baseSum += in.BaselineDemand[t]
		if in.Window[t] != tariff.WindowLow {
			flhRow[pIdx(t)] = -dt
		}
	}
	flhRow[peakIdx] = pr.MinLoadFactor * float64(T)
	prob.g = append(prob.g, flhRow)
	prob.h = append(prob.h, baseSum)

	for t := 0; t < T; t++ {
		elec := in.ElectricityPrice[t] * dt * 1e-3
		fuel := in.FuelPrice[t] * dt * 1e-3
		co2 := (in.CO2Intensity[t] - pr.FuelEmissionsFactor) * dt * 1e-6 * pr.CO2Price
		prob.c[pIdx(t)] = elec - fuel + co2
	}

	prob.binary = make([]int, T)
	for t := 0; t < T; t++ {
		prob.binary[t] = onIdx(t)
	}
	return prob
}

// constantCost is the part of the objective that does not depend on the
// decision variables: serving the whole heat demand with fuel.
func constantCost(in Input) float64 {
	var cost float64
	for t, heat := range in.HeatDemandKWh {
		cost += heat * in.FuelPrice[t] * 1e-3
		cost += heat * in.Params.FuelEmissionsFactor * 1e-6 * in.Params.CO2Price
	}
	return cost
}

// Optimize solves the dispatch program and post-processes the solution into a
// plan and its summary. It fails with an optimization error whenever the
// solver terminates in any state other than optimal or within-gap.
func Optimize(in Input) (*Plan, *Summary, error) {
	in.Params.setDefaults()
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	prob := buildProblem(in)
	res := milpSolve(prob, milpOptions{
		relGap:     in.Params.RelGap,
		timeLimit:  in.Params.TimeLimit,
		intTol:     defaultIntTol,
		simplexTol: defaultSimplexTol,
	})
	if res.status != StatusOptimal && res.status != StatusGapReached {
		return nil, nil, faults.Optimizationf("optimizer: solver terminated with status %s after %d nodes", res.status, res.nodes)
	}

	T := len(in.HeatDemandKWh)
	dt := in.IntervalHours
	plan := &Plan{
		ElectricPowerKW:    make([]float64, T),
		HeaterOn:           make([]bool, T),
		HeaterStart:        make([]bool, T),
		FuelEnergyKWh:      make([]float64, T),
		FuelEmissionsG:     make([]float64, T),
		ElectricEmissionsG: make([]float64, T),
		Status:             res.status,
		Objective:          res.objective + constantCost(in),
		Gap:                res.gap,
		Nodes:              res.nodes,
	}
	for t := 0; t < T; t++ {
		p := res.x[t]
		if p < 0 {
			p = 0
		}
		if p > in.Params.CapacityKW {
			p = in.Params.CapacityKW
		}
		on := res.x[T+t] > 0.5
		if !on {
			p = 0
		}
		plan.ElectricPowerKW[t] = p
		plan.HeaterOn[t] = on
		plan.HeaterStart[t] = on && (t == 0 || !plan.HeaterOn[t-1])
		plan.FuelEnergyKWh[t] = in.HeatDemandKWh[t] - p*dt
		plan.FuelEmissionsG[t] = plan.FuelEnergyKWh[t] * in.Params.FuelEmissionsFactor
		plan.ElectricEmissionsG[t] = p * dt * in.CO2Intensity[t]
	}

	return plan, summarize(in, plan), nil
}

func summarize(in Input, plan *Plan) *Summary {
	dt := in.IntervalHours
	s := &Summary{MeanPriceWhileHeating: math.NaN()}

	var fuelG, elecG, priceSum float64
	heated := 0
	for t, heat := range in.HeatDemandKWh {
		s.TotalEnergyDemandKWh += heat
		s.ElectricityUsedKWh += plan.ElectricPowerKW[t] * dt
		fuelG += plan.FuelEmissionsG[t]
		elecG += plan.ElectricEmissionsG[t]
		if plan.ElectricPowerKW[t] > 0 {
			priceSum += in.ElectricityPrice[t]
			heated++
		}
	}
	s.FuelUsedKWh = s.TotalEnergyDemandKWh - s.ElectricityUsedKWh
	if heated > 0 {
		s.MeanPriceWhileHeating = priceSum / float64(heated)
	}

	s.EmissionsFuelOnlyTonnes = s.TotalEnergyDemandKWh * in.Params.FuelEmissionsFactor * 1e-6
	s.EmissionsWithElectricHeatingTonnes = (fuelG + elecG) * 1e-6
	s.EmissionsSavingsTonnes = s.EmissionsFuelOnlyTonnes - s.EmissionsWithElectricHeatingTonnes

	var fuelOnlyEnergyCost float64
	for t, heat := range in.HeatDemandKWh {
		fuelOnlyEnergyCost += heat * 1e-3 * in.FuelPrice[t]
	}
	s.CostFuelOnly = fuelOnlyEnergyCost + s.EmissionsFuelOnlyTonnes*in.Params.CO2Price
	s.CostWithElectricHeating = plan.Objective
	s.CostSavings = s.CostFuelOnly - s.CostWithElectricHeating

	s.FullLoadHours = fullLoadHours(in.BaselineDemand, dt)
	eff := make([]float64, len(in.BaselineDemand))
	var lowSum, effSum float64
	for t, base := range in.BaselineDemand {
		eff[t] = base
		if in.Window[t] != tariff.WindowLow {
			eff[t] += plan.ElectricPowerKW[t] * dt
		}
		effSum += eff[t]
		if in.Window[t] == tariff.WindowLow {
			lowSum += eff[t]
		}
	}
	s.FullLoadHoursAfterOptimization = fullLoadHours(eff, dt)
	if effSum > 0 {
		s.LowWindowEnergyRatio = lowSum / effSum
	}
	return s
}

// fullLoadHours is the delivered energy divided by the implied peak power.
func fullLoadHours(demand []float64, dt float64) float64 {
	var sum, max float64
	for _, d := range demand {
		sum += d
		if d > max {
			max = d
		}
	}
	if max == 0 {
		return 0
	}
	return sum * dt / max
}
