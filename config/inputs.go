package config

import (
	"fmt"
	"time"
)

var rangeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// InputsConfig names the case, the date range and the CSV files holding the
// input series. The fuel price file is optional; a constant from the tariff
// section is used when it is absent.
type InputsConfig struct {
	CaseName string `json:"case_name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	// IgnoreTimezone strips UTC offsets from the CSV timestamps so that
	// inconsistently annotated exports are read as UTC wall time.
	IgnoreTimezone bool `json:"ignore_timezone"`

	CO2CSV              string `json:"co2_csv"`
	HeatDemandCSV       string `json:"heat_demand_csv"`
	BaselineDemandCSV   string `json:"baseline_demand_csv"`
	ElectricityPriceCSV string `json:"electricity_price_csv"`
	FuelPriceCSV        string `json:"fuel_price_csv"`
}

// Validate checks mandatory fields.
func (c InputsConfig) Validate() error {
	if c.CaseName == "" {
		return fmt.Errorf("inputs: case_name is required")
	}
	required := map[string]string{
		"start":                 c.Start,
		"end":                   c.End,
		"co2_csv":               c.CO2CSV,
		"heat_demand_csv":       c.HeatDemandCSV,
		"baseline_demand_csv":   c.BaselineDemandCSV,
		"electricity_price_csv": c.ElectricityPriceCSV,
	}
	for name, v := range required {
		if v == "" {
			return fmt.Errorf("inputs: %s is required", name)
		}
	}
	if _, _, err := c.Range(); err != nil {
		return err
	}
	return nil
}

// Range parses the configured date range. Timestamps without an offset are
// read as UTC.
func (c InputsConfig) Range() (time.Time, time.Time, error) {
	start, err := parseRangeTime(c.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("inputs: bad start %q: %w", c.Start, err)
	}
	end, err := parseRangeTime(c.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("inputs: bad end %q: %w", c.End, err)
	}
	return start, end, nil
}

func parseRangeTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range rangeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
