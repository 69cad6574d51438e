package history

import "time"

// Record aggregates savings KPIs for a case and day.
type Record struct {
	CaseName             string
	Date                 time.Time
	ElectricityShiftKWh  float64
	CostSavings          float64
	EmissionsSavedTonnes float64
	Runs                 int
}

// SavingsPerMWh returns the realized cost savings per shifted MWh.
func (r Record) SavingsPerMWh() float64 {
	if r.ElectricityShiftKWh == 0 {
		return 0
	}
	return r.CostSavings / (r.ElectricityShiftKWh * 1e-3)
}
