// Package engine orchestrates one flexible-load optimization request: it
// reconciles the raw input series onto a common grid, applies the network-fee
// regime, runs the dispatch optimizer and derives the result KPIs. The engine
// consumes already-parsed series and returns plain data structures; transport
// and persistence belong to its callers.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/heatflex/heatflex/core/faults"
	"github.com/heatflex/heatflex/core/optimizer"
	"github.com/heatflex/heatflex/core/tariff"
	"github.com/heatflex/heatflex/core/timeseries"
)

// Canonical column names on the reconciled frame.
const (
	ColCO2              = "co2"
	ColHeatDemand       = "heat_demand"
	ColBaselineDemand   = "baseline_demand"
	ColElectricityPrice = "electricity_price"
	ColFuelPrice        = "fuel_price"
)

// Network fee modes.
const (
	FeeStatic  = "static"
	FeeDynamic = "dynamic"
)

// Request describes one optimization run over [Start, End].
type Request struct {
	CaseName string
	Start    time.Time
	End      time.Time

	CO2              timeseries.Series // grid emissions intensity, g/kWh
	HeatDemand       timeseries.Series // flexible device demand, kWh per interval
	BaselineDemand   timeseries.Series // inflexible site demand, kWh per interval
	ElectricityPrice timeseries.Series // market price, per MWh
	FuelPrice        timeseries.Series // optional; a constant series is generated when empty

	NetworkFeeMode  string
	NetworkFee      float64       // per MWh
	LowReduction    float64       // relative fee reduction in low windows
	HighSurcharge   float64       // relative fee surcharge in high windows
	WindowHalfWidth time.Duration // half width of dynamic fee windows
	FuelNetworkFee  float64       // per MWh, added to the fuel price
	FuelPricePerMWh float64       // constant fuel price when no series is given

	Optimizer optimizer.Params
}

func (r Request) validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return faults.Validationf("engine: start and end must be set")
	}
	if r.Start.After(r.End) {
		return faults.Validationf("engine: start %v after end %v", r.Start, r.End)
	}
	switch r.NetworkFeeMode {
	case FeeStatic, FeeDynamic:
	default:
		return faults.Validationf("engine: invalid network fee mode %q", r.NetworkFeeMode)
	}
	if r.NetworkFee < 0 || r.FuelNetworkFee < 0 || r.FuelPricePerMWh < 0 {
		return faults.Validationf("engine: fees and prices must not be negative")
	}
	return nil
}

// Result is the externally visible outcome of one run.
type Result struct {
	RunID    string
	CaseName string
	Start    time.Time
	End      time.Time

	Times         []time.Time
	Window        []tariff.WindowClass
	Plan          *optimizer.Plan
	Summary       *optimizer.Summary
	IntervalHours float64

	NetworkFeeMode string
	NetworkFee     float64
	Elapsed        time.Duration
}

// Run executes the full pipeline for the request. All failures are
// deterministic and surfaced immediately; no partial result is ever returned.
func Run(req Request) (*Result, error) {
	started := time.Now()
	if err := req.validate(); err != nil {
		return nil, err
	}

	frame, err := reconcileInputs(req)
	if err != nil {
		return nil, err
	}
	if !frame.Start().Equal(req.Start.UTC()) || !frame.End().Equal(req.End.UTC()) {
		return nil, faults.Coveragef("engine: reconciled data covers [%v, %v], requested [%v, %v]",
			frame.Start(), frame.End(), req.Start.UTC(), req.End.UTC())
	}
	gran, err := frame.Granularity()
	if err != nil {
		return nil, err
	}
	intervalHours := gran.Hours()

	prices := frame.Column(ColElectricityPrice)
	var window []tariff.WindowClass
	adjusted := make([]float64, len(prices))
	switch req.NetworkFeeMode {
	case FeeDynamic:
		asn, err := tariff.ApplyDynamicFee(frame.Times, prices, tariff.Params{
			BaseFee:       req.NetworkFee,
			LowReduction:  req.LowReduction,
			HighSurcharge: req.HighSurcharge,
			HalfWidth:     req.WindowHalfWidth,
		})
		if err != nil {
			return nil, err
		}
		window = asn.Classes
		adjusted = asn.AdjustedPrice
	default:
		// The static regime grants the reduced fee on every interval.
		window = make([]tariff.WindowClass, len(prices))
		for i, p := range prices {
			adjusted[i] = p + req.NetworkFee*(1-req.LowReduction)
		}
	}

	fuel := make([]float64, frame.Len())
	for i, p := range frame.Column(ColFuelPrice) {
		fuel[i] = p + req.FuelNetworkFee
	}

	plan, summary, err := optimizer.Optimize(optimizer.Input{
		HeatDemandKWh:    frame.Column(ColHeatDemand),
		CO2Intensity:     frame.Column(ColCO2),
		ElectricityPrice: adjusted,
		FuelPrice:        fuel,
		BaselineDemand:   frame.Column(ColBaselineDemand),
		Window:           window,
		IntervalHours:    intervalHours,
		Params:           req.Optimizer,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:          uuid.NewString(),
		CaseName:       req.CaseName,
		Start:          req.Start.UTC(),
		End:            req.End.UTC(),
		Times:          frame.Times,
		Window:         window,
		Plan:           plan,
		Summary:        summary,
		IntervalHours:  intervalHours,
		NetworkFeeMode: req.NetworkFeeMode,
		NetworkFee:     req.NetworkFee,
		Elapsed:        time.Since(started),
	}, nil
}

// reconcileInputs folds the reconciler over the request series so that all
// inputs share one time index. Energy series aggregate by sum, price and
// intensity series by mean.
func reconcileInputs(req Request) (*timeseries.Frame, error) {
	co2 := req.CO2
	co2.Name = ColCO2
	heat := req.HeatDemand
	heat.Name = ColHeatDemand
	baseline := req.BaselineDemand
	baseline.Name = ColBaselineDemand
	price := req.ElectricityPrice
	price.Name = ColElectricityPrice

	priceGran, err := price.Granularity()
	if err != nil {
		return nil, err
	}

	fuel := req.FuelPrice
	fuel.Name = ColFuelPrice
	if len(fuel.Points) == 0 {
		fuel = timeseries.Constant(ColFuelPrice, req.FuelPricePerMWh, req.Start, req.End, priceGran)
	} else if fg, err := fuel.Granularity(); err == nil && fg > priceGran {
		// Daily fuel quotes are carried forward onto the price grid.
		fuel = fuel.ForwardFill(priceGran)
	}

	frame, err := timeseries.Reconcile(co2, heat, timeseries.AggSum)
	if err != nil {
		return nil, err
	}
	if frame, err = frame.Merge(baseline, timeseries.AggSum); err != nil {
		return nil, err
	}
	if frame, err = frame.Merge(price, timeseries.AggMean); err != nil {
		return nil, err
	}
	if frame, err = frame.Merge(fuel, timeseries.AggMean); err != nil {
		return nil, err
	}
	return frame, nil
}
