package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heatflex/heatflex/config"
	"github.com/heatflex/heatflex/core/engine"
	"github.com/heatflex/heatflex/core/tariff"
	"github.com/heatflex/heatflex/core/timeseries"
	"github.com/heatflex/heatflex/internal/seriesio"
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Classify tariff windows for the configured price series",
	RunE:  runWindows,
}

func init() {
	rootCmd.AddCommand(windowsCmd)
}

func runWindows(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	series, err := seriesio.ReadFile(cfg.Inputs.ElectricityPriceCSV, engine.ColElectricityPrice, cfg.Inputs.IgnoreTimezone)
	if err != nil {
		return err
	}
	frame := timeseries.NewFrame(series)
	asn, err := tariff.ApplyDynamicFee(frame.Times, frame.Column(engine.ColElectricityPrice), tariff.Params{
		BaseFee:       cfg.Tariff.NetworkFee,
		LowReduction:  cfg.Tariff.LowReduction,
		HighSurcharge: cfg.Tariff.HighSurcharge,
		HalfWidth:     cfg.Tariff.WindowHalfWidth(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "time,window,adjusted_price")
	for i, at := range frame.Times {
		fmt.Fprintf(out, "%s,%s,%.4f\n", at.UTC().Format("2006-01-02T15:04:05Z07:00"),
			asn.Classes[i], asn.AdjustedPrice[i])
	}
	return nil
}
