package config

import (
	"fmt"
	"time"

	"github.com/heatflex/heatflex/core/engine"
)

// TariffConfig holds the network-fee regime and the fallback fuel pricing.
// Fees and prices are per MWh.
type TariffConfig struct {
	// NetworkFeeMode is "static" or "dynamic".
	NetworkFeeMode         string  `json:"network_fee_mode"`
	NetworkFee             float64 `json:"network_fee"`
	LowReduction           float64 `json:"low_reduction"`
	HighSurcharge          float64 `json:"high_surcharge"`
	WindowHalfWidthMinutes int     `json:"window_half_width_minutes"`
	FuelNetworkFee         float64 `json:"fuel_network_fee"`
	FuelPricePerMWh        float64 `json:"fuel_price_per_mwh"`
}

// SetDefaults applies the standard tariff.
func (c *TariffConfig) SetDefaults() {
	if c.NetworkFeeMode == "" {
		c.NetworkFeeMode = engine.FeeStatic
	}
	if c.NetworkFee == 0 {
		c.NetworkFee = 20
	}
	if c.LowReduction == 0 {
		c.LowReduction = 0.8
	}
	if c.HighSurcharge == 0 {
		c.HighSurcharge = 0.1
	}
	if c.WindowHalfWidthMinutes == 0 {
		c.WindowHalfWidthMinutes = 120
	}
	if c.FuelNetworkFee == 0 {
		c.FuelNetworkFee = 4
	}
	if c.FuelPricePerMWh == 0 {
		c.FuelPricePerMWh = 60
	}
}

// Validate checks the fee mode and value ranges.
func (c TariffConfig) Validate() error {
	if c.NetworkFeeMode != engine.FeeStatic && c.NetworkFeeMode != engine.FeeDynamic {
		return fmt.Errorf("unknown network fee mode %s", c.NetworkFeeMode)
	}
	if c.NetworkFee < 0 || c.FuelNetworkFee < 0 || c.FuelPricePerMWh < 0 {
		return fmt.Errorf("fees and prices must not be negative")
	}
	if c.LowReduction < 0 || c.LowReduction > 1 {
		return fmt.Errorf("low_reduction must be in [0,1], got %v", c.LowReduction)
	}
	if c.HighSurcharge < 0 {
		return fmt.Errorf("high_surcharge must not be negative")
	}
	return nil
}

// WindowHalfWidth returns the dynamic-window half width as a duration.
func (c TariffConfig) WindowHalfWidth() time.Duration {
	return time.Duration(c.WindowHalfWidthMinutes) * time.Minute
}
