package scenarios

import (
	"errors"
	"math"
	"testing"

	"github.com/heatflex/heatflex/core/engine"
	"github.com/heatflex/heatflex/core/faults"
)

// RunScenario executes one scenario and checks the expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	req, err := sc.ToRequest()
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	var res *engine.Result
	if sc.Mode == "threshold" {
		res, err = engine.RunThreshold(req)
	} else {
		res, err = engine.Run(req)
	}

	if sc.Expected.Error != "" {
		if err == nil {
			t.Fatalf("scenario %s: expected %s error, got success", sc.Name, sc.Expected.Error)
		}
		if !errors.Is(err, expectedSentinel(t, sc.Expected.Error)) {
			t.Fatalf("scenario %s: expected %s error, got %v", sc.Name, sc.Expected.Error, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	if sc.Expected.Status != "" && res.Plan.Status.String() != sc.Expected.Status {
		t.Errorf("scenario %s: status %s, want %s", sc.Name, res.Plan.Status, sc.Expected.Status)
	}
	for i, want := range sc.Expected.HeaterOn {
		if res.Plan.HeaterOn[i] != want {
			t.Errorf("scenario %s interval %d: heater on = %v, want %v", sc.Name, i, res.Plan.HeaterOn[i], want)
		}
	}
	if got := res.Summary.ElectricityUsedKWh; math.Abs(got-sc.Expected.ElectricityUsedKWh) > 1e-3 {
		t.Errorf("scenario %s: electricity used %v, want %v", sc.Name, got, sc.Expected.ElectricityUsedKWh)
	}
}

func expectedSentinel(t *testing.T, name string) error {
	switch name {
	case "validation":
		return faults.ErrValidation
	case "coverage":
		return faults.ErrCoverage
	case "data":
		return faults.ErrData
	case "optimization":
		return faults.ErrOptimization
	}
	t.Fatalf("unknown expected error class %q", name)
	return nil
}
