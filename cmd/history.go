package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heatflex/heatflex/config"
	"github.com/heatflex/heatflex/core/factory"
	"github.com/heatflex/heatflex/infra/kpi"
)

var historyCase string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded daily savings for a case",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyCase, "case", "", "case name (defaults to the configured case)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := ""
	for _, sc := range cfg.Metrics.Sinks {
		if sc.Type != "history" {
			continue
		}
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(sc.Conf, &c); err != nil {
			return fmt.Errorf("history sink config: %w", err)
		}
		path = c.Path
	}
	if path == "" {
		return fmt.Errorf("no history sink with a path is configured")
	}

	store, err := kpi.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	caseName := historyCase
	if caseName == "" {
		caseName = cfg.Inputs.CaseName
	}
	start, end, err := cfg.Inputs.Range()
	if err != nil {
		return err
	}
	records, err := store.Query(caseName, start, end.Add(24*time.Hour))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "day,shift_kwh,cost_savings,emissions_saved_t,savings_per_mwh,runs")
	for _, r := range records {
		fmt.Fprintf(out, "%s,%.1f,%.2f,%.4f,%.2f,%d\n",
			r.Date.Format("2006-01-02"), r.ElectricityShiftKWh, r.CostSavings,
			r.EmissionsSavedTonnes, r.SavingsPerMWh(), r.Runs)
	}
	return nil
}
