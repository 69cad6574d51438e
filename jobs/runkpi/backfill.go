// Package runkpi rebuilds the daily savings history from stored run results,
// for example after a schema change or a lost database.
package runkpi

import (
	"github.com/heatflex/heatflex/core/engine"
	"github.com/heatflex/heatflex/core/metrics/history"
)

// Backfill replays past run results into the store. Records aggregate by case
// and day, so replaying a day twice doubles its totals; start from an empty
// store.
func Backfill(store history.Store, results []*engine.Result) error {
	for _, res := range results {
		if res == nil || res.Summary == nil {
			continue
		}
		rec := history.Record{
			CaseName:             res.CaseName,
			Date:                 history.Day(res.Start),
			ElectricityShiftKWh:  res.Summary.ElectricityUsedKWh,
			CostSavings:          res.Summary.CostSavings,
			EmissionsSavedTonnes: res.Summary.EmissionsSavingsTonnes,
			Runs:                 1,
		}
		if err := store.Add(rec); err != nil {
			return err
		}
	}
	return nil
}
