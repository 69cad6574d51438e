package optimizer

import (
	"math"
	"testing"
	"time"
)

// boundedProblem builds a problem with 0 <= x_i <= 1 rows for every variable.
func boundedProblem(c []float64) *milpProblem {
	n := len(c)
	p := &milpProblem{c: c}
	for i := 0; i < n; i++ {
		up := make([]float64, n)
		up[i] = 1
		p.g = append(p.g, up)
		p.h = append(p.h, 1)
		down := make([]float64, n)
		down[i] = -1
		p.g = append(p.g, down)
		p.h = append(p.h, 0)
	}
	return p
}

func defaultMilpOptions() milpOptions {
	return milpOptions{relGap: 1e-6, timeLimit: 30 * time.Second, intTol: 1e-5, simplexTol: 1e-7}
}

func TestBranchAndBoundIntegralRelaxation(t *testing.T) {
	// min -x1 - 2*x2 subject to x1 + x2 <= 1: relaxation is already integral.
	p := boundedProblem([]float64{-1, -2})
	row := []float64{1, 1}
	p.g = append(p.g, row)
	p.h = append(p.h, 1)
	p.binary = []int{0, 1}

	res := branchAndBound(p, defaultMilpOptions())
	if res.status != StatusOptimal {
		t.Fatalf("expected optimal got %s", res.status)
	}
	if math.Abs(res.objective-(-2)) > 1e-6 {
		t.Fatalf("expected objective -2 got %v", res.objective)
	}
	if math.Abs(res.x[1]-1) > 1e-5 || math.Abs(res.x[0]) > 1e-5 {
		t.Fatalf("expected x=[0,1] got %v", res.x)
	}
}

func TestBranchAndBoundFractionalRelaxation(t *testing.T) {
	// min -x1 - x2 subject to x1 + x2 <= 1.5: the relaxation sits at 1.5,
	// the integer optimum at 1.
	p := boundedProblem([]float64{-1, -1})
	p.g = append(p.g, []float64{1, 1})
	p.h = append(p.h, 1.5)
	p.binary = []int{0, 1}

	res := branchAndBound(p, defaultMilpOptions())
	if res.status != StatusOptimal {
		t.Fatalf("expected optimal got %s", res.status)
	}
	if math.Abs(res.objective-(-1)) > 1e-6 {
		t.Fatalf("expected objective -1 got %v", res.objective)
	}
	sum := res.x[0] + res.x[1]
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("expected one variable set got %v", res.x)
	}
}

func TestBranchAndBoundMixedContinuous(t *testing.T) {
	// One binary gating a continuous variable: min -x2 s.t. x2 <= 10*x1,
	// x2 <= 7. Turning the binary on is free, so the optimum is x2=7.
	p := &milpProblem{
		c: []float64{0, -1},
		g: [][]float64{
			{-10, 1}, // x2 - 10*x1 <= 0
			{0, 1},   // x2 <= 7
			{0, -1},  // x2 >= 0
			{1, 0},   // x1 <= 1
			{-1, 0},  // x1 >= 0
		},
		h:      []float64{0, 7, 0, 1, 0},
		binary: []int{0},
	}
	res := branchAndBound(p, defaultMilpOptions())
	if res.status != StatusOptimal {
		t.Fatalf("expected optimal got %s", res.status)
	}
	if math.Abs(res.x[1]-7) > 1e-5 {
		t.Fatalf("expected x2=7 got %v", res.x)
	}
}

func TestBranchAndBoundInfeasible(t *testing.T) {
	// x1 >= 2 contradicts x1 <= 1.
	p := boundedProblem([]float64{1})
	p.g = append(p.g, []float64{-1})
	p.h = append(p.h, -2)
	p.binary = []int{0}

	res := branchAndBound(p, defaultMilpOptions())
	if res.status != StatusInfeasible {
		t.Fatalf("expected infeasible got %s", res.status)
	}
}

func TestBranchAndBoundTimeLimit(t *testing.T) {
	p := boundedProblem([]float64{-1, -1})
	p.g = append(p.g, []float64{1, 1})
	p.h = append(p.h, 1.5)
	p.binary = []int{0, 1}

	opts := defaultMilpOptions()
	opts.timeLimit = 0
	res := branchAndBound(p, opts)
	if res.status != StatusTimeLimit {
		t.Fatalf("expected time limit got %s", res.status)
	}
}
