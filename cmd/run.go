package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heatflex/heatflex/app"
	"github.com/heatflex/heatflex/config"
	"github.com/heatflex/heatflex/infra/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured optimization case",
	RunE:  runCase,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runCase(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main", cfg.Logging.Level).Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s (%s) status=%s\n", res.RunID, res.CaseName, res.Plan.Status)
	fmt.Fprintf(out, "electricity used: %.1f kWh, fuel used: %.1f kWh\n",
		res.Summary.ElectricityUsedKWh, res.Summary.FuelUsedKWh)
	fmt.Fprintf(out, "cost savings: %.2f, emissions saved: %.3f t\n",
		res.Summary.CostSavings, res.Summary.EmissionsSavingsTonnes)
	return nil
}
