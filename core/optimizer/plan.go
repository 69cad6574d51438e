package optimizer

// Plan is the per-interval dispatch schedule of one optimization run. It is
// owned by the run that produced it and never mutated afterwards.
type Plan struct {
	ElectricPowerKW    []float64
	HeaterOn           []bool
	HeaterStart        []bool
	FuelEnergyKWh      []float64
	FuelEmissionsG     []float64
	ElectricEmissionsG []float64

	Status    Status
	Objective float64
	Gap       float64
	Nodes     int
}

// Summary carries the scalar aggregates derived from a solved plan.
type Summary struct {
	TotalEnergyDemandKWh float64
	ElectricityUsedKWh   float64
	FuelUsedKWh          float64

	CostFuelOnly            float64
	CostWithElectricHeating float64
	CostSavings             float64

	EmissionsFuelOnlyTonnes            float64
	EmissionsWithElectricHeatingTonnes float64
	EmissionsSavingsTonnes             float64

	FullLoadHours                  float64
	FullLoadHoursAfterOptimization float64

	// MeanPriceWhileHeating is NaN when the heater never ran.
	MeanPriceWhileHeating float64
	LowWindowEnergyRatio  float64
}
