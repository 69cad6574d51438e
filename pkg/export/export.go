package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/heatflex/heatflex/core/engine"
)

// runDocument is the JSON shape written for one finished run.
type runDocument struct {
	RunID          string             `json:"run_id"`
	CaseName       string             `json:"case"`
	Start          time.Time          `json:"start"`
	End            time.Time          `json:"end"`
	IntervalHours  float64            `json:"interval_hours"`
	NetworkFeeMode string             `json:"network_fee_mode"`
	Status         string             `json:"status"`
	Summary        *summaryDocument   `json:"summary"`
	Schedule       []scheduleDocument `json:"schedule"`
}

type summaryDocument struct {
	TotalEnergyDemandKWh    float64 `json:"total_energy_demand_kwh"`
	ElectricityUsedKWh      float64 `json:"electricity_used_kwh"`
	FuelUsedKWh             float64 `json:"fuel_used_kwh"`
	CostFuelOnly            float64 `json:"cost_fuel_only"`
	CostWithElectricHeating float64 `json:"cost_with_electric_heating"`
	CostSavings             float64 `json:"cost_savings"`
	EmissionsFuelOnlyT      float64 `json:"emissions_fuel_only_t"`
	EmissionsWithElectricT  float64 `json:"emissions_with_electric_heating_t"`
	EmissionsSavingsT       float64 `json:"emissions_savings_t"`
	FullLoadHours           float64 `json:"full_load_hours"`
	FullLoadHoursAfter      float64 `json:"full_load_hours_after_optimization"`
	// nil when the heater never ran; NaN is not representable in JSON.
	MeanPriceWhileHeating *float64 `json:"mean_price_while_heating"`
	LowWindowEnergyRatio  float64  `json:"low_window_energy_ratio"`
}

type scheduleDocument struct {
	Time            time.Time `json:"time"`
	ElectricPowerKW float64   `json:"electric_power_kw"`
	FuelEnergyKWh   float64   `json:"fuel_energy_kwh"`
	HeaterOn        bool      `json:"heater_on"`
	HeaterStart     bool      `json:"heater_start"`
	Window          string    `json:"window"`
}

func document(res *engine.Result) runDocument {
	doc := runDocument{
		RunID:          res.RunID,
		CaseName:       res.CaseName,
		Start:          res.Start,
		End:            res.End,
		IntervalHours:  res.IntervalHours,
		NetworkFeeMode: res.NetworkFeeMode,
		Status:         res.Plan.Status.String(),
		Schedule:       make([]scheduleDocument, len(res.Times)),
	}
	s := res.Summary
	doc.Summary = &summaryDocument{
		TotalEnergyDemandKWh:    s.TotalEnergyDemandKWh,
		ElectricityUsedKWh:      s.ElectricityUsedKWh,
		FuelUsedKWh:             s.FuelUsedKWh,
		CostFuelOnly:            s.CostFuelOnly,
		CostWithElectricHeating: s.CostWithElectricHeating,
		CostSavings:             s.CostSavings,
		EmissionsFuelOnlyT:      s.EmissionsFuelOnlyTonnes,
		EmissionsWithElectricT:  s.EmissionsWithElectricHeatingTonnes,
		EmissionsSavingsT:       s.EmissionsSavingsTonnes,
		FullLoadHours:           s.FullLoadHours,
		FullLoadHoursAfter:      s.FullLoadHoursAfterOptimization,
		LowWindowEnergyRatio:    s.LowWindowEnergyRatio,
	}
	if !math.IsNaN(s.MeanPriceWhileHeating) {
		v := s.MeanPriceWhileHeating
		doc.Summary.MeanPriceWhileHeating = &v
	}
	for i, t := range res.Times {
		doc.Schedule[i] = scheduleDocument{
			Time:            t,
			ElectricPowerKW: res.Plan.ElectricPowerKW[i],
			FuelEnergyKWh:   res.Plan.FuelEnergyKWh[i],
			HeaterOn:        res.Plan.HeaterOn[i],
			HeaterStart:     res.Plan.HeaterStart[i],
			Window:          res.Window[i].String(),
		}
	}
	return doc
}

// WriteJSON writes the run result to w in JSON format.
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document(res))
}

// WriteCSV writes the per-interval schedule to w in CSV format.
func WriteCSV(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "electric_power_kw", "fuel_energy_kwh", "heater_on", "window"}); err != nil {
		return err
	}
	for i, t := range res.Times {
		rec := []string{
			t.Format(time.RFC3339),
			strconv.FormatFloat(res.Plan.ElectricPowerKW[i], 'f', -1, 64),
			strconv.FormatFloat(res.Plan.FuelEnergyKWh[i], 'f', -1, 64),
			strconv.FormatBool(res.Plan.HeaterOn[i]),
			res.Window[i].String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
