package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heatflex/heatflex/config"
	"github.com/heatflex/heatflex/core/timeseries"
	"github.com/heatflex/heatflex/internal/seriesio"
)

var (
	normalizeIn  string
	normalizeAgg string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Resample a CSV series onto its dominant granularity",
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeIn, "in", "", "input CSV file (timestamp,value)")
	normalizeCmd.Flags().StringVar(&normalizeAgg, "agg", "mean", "aggregation: sum or mean")
	_ = normalizeCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	agg, err := timeseries.ParseAggregation(normalizeAgg)
	if err != nil {
		return err
	}
	series, err := seriesio.ReadFile(normalizeIn, "series", cfg.Inputs.IgnoreTimezone)
	if err != nil {
		return err
	}
	normalized, hours, err := timeseries.NormalizeGranularity(series, agg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# granularity: %.4f hours, aggregation: %s\n", hours, agg)
	fmt.Fprintln(out, "timestamp,value")
	for _, p := range normalized.Points {
		fmt.Fprintf(out, "%s,%.6f\n", p.Time.UTC().Format("2006-01-02T15:04:05Z07:00"), p.Value)
	}
	return nil
}
