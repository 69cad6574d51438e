package optimizer

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Status reports how the solver terminated.
type Status int

const (
	StatusOptimal Status = iota
	StatusGapReached
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusGapReached:
		return "gap_reached"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeLimit:
		return "time_limit"
	default:
		return "unknown"
	}
}

// milpProblem is a minimization problem in inequality form: minimize c·x
// subject to G x <= h, with the listed variables restricted to {0,1}.
// Variable bounds, including non-negativity, must be expressed as rows of G.
type milpProblem struct {
	c      []float64
	g      [][]float64
	h      []float64
	binary []int
}

type milpOptions struct {
	relGap     float64
	timeLimit  time.Duration
	intTol     float64
	simplexTol float64
}

type milpResult struct {
	status    Status
	objective float64
	x         []float64
	gap       float64
	nodes     int
}

// solveRelaxation solves the LP relaxation of the problem with the given
// per-variable fixings by converting the inequality form to the standard form
// expected by the simplex method: free variables are split into positive and
// negative parts and one slack per row is added.
func solveRelaxation(p *milpProblem, fixed map[int]float64, tol float64) (float64, []float64, error) {
	n := len(p.c)
	m := len(p.h) + 2*len(fixed)

	rows := make([][]float64, 0, m)
	rhs := make([]float64, 0, m)
	for i, row := range p.g {
		rows = append(rows, row)
		rhs = append(rhs, p.h[i])
	}
	for idx, v := range fixed {
		up := make([]float64, n)
		up[idx] = 1
		rows = append(rows, up)
		rhs = append(rhs, v)
		down := make([]float64, n)
		down[idx] = -1
		rows = append(rows, down)
		rhs = append(rhs, -v)
	}

	// Standard form: x = xp - xn, slack s per row, all >= 0.
	cols := 2*n + len(rows)
	cStd := make([]float64, cols)
	for i, ci := range p.c {
		cStd[i] = ci
		cStd[n+i] = -ci
	}
	aStd := mat.NewDense(len(rows), cols, nil)
	bStd := make([]float64, len(rows))
	for r, row := range rows {
		for j, v := range row {
			aStd.Set(r, j, v)
			aStd.Set(r, n+j, -v)
		}
		aStd.Set(r, 2*n+r, 1)
		bStd[r] = rhs[r]
	}

	opt, xStd, err := lp.Simplex(cStd, aStd, bStd, tol, nil)
	if err != nil {
		return 0, nil, err
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = xStd[i] - xStd[n+i]
	}
	return opt, x, nil
}

// milpSolve points to the branch-and-bound entry. Tests override it to
// simulate solver failures.
var milpSolve = branchAndBound

type bbNode struct {
	fixed map[int]float64
	bound float64
}

// branchAndBound minimizes the problem by solving simplex relaxations and
// branching on the most fractional binary variable. The tree is searched to
// exhaustion within the time limit, proving optimality. When the deadline
// expires first, the incumbent is classified by the remaining relative gap:
// gap reached if it is within relGap, time limit otherwise.
func branchAndBound(p *milpProblem, opts milpOptions) milpResult {
	deadline := time.Now().Add(opts.timeLimit)

	rootObj, rootX, err := solveRelaxation(p, nil, opts.simplexTol)
	switch err {
	case nil:
	case lp.ErrInfeasible:
		return milpResult{status: StatusInfeasible, nodes: 1}
	case lp.ErrUnbounded:
		return milpResult{status: StatusUnbounded, nodes: 1}
	default:
		return milpResult{status: StatusInfeasible, nodes: 1}
	}

	incumbent := math.Inf(1)
	var incumbentX []float64
	nodes := 1

	stack := []bbNode{{fixed: nil, bound: rootObj}}

	relGapOf := func(best, bound float64) float64 {
		if math.IsInf(best, 1) {
			return math.Inf(1)
		}
		denom := math.Max(math.Abs(best), 1)
		return (best - bound) / denom
	}

	for len(stack) > 0 {
		if time.Now().After(deadline) {
			bound := bestBound(stack, rootObj)
			gap := relGapOf(incumbent, bound)
			if incumbentX != nil && gap <= opts.relGap {
				return milpResult{status: StatusGapReached, objective: incumbent, x: incumbentX, gap: gap, nodes: nodes}
			}
			return milpResult{status: StatusTimeLimit, objective: incumbent, x: incumbentX, gap: gap, nodes: nodes}
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.bound >= incumbent-1e-9 {
			continue
		}

		obj, x := rootObj, rootX
		if node.fixed != nil {
			var err error
			obj, x, err = solveRelaxation(p, node.fixed, opts.simplexTol)
			nodes++
			if err != nil {
				// Infeasible subtree (or numerical failure): prune.
				continue
			}
		}
		if obj >= incumbent-1e-9 {
			continue
		}

		branch := -1
		maxFrac := opts.intTol
		for _, idx := range p.binary {
			f := math.Abs(x[idx] - math.Round(x[idx]))
			if f > maxFrac {
				maxFrac = f
				branch = idx
			}
		}
		if branch < 0 {
			// Integral solution.
			if obj < incumbent {
				incumbent = obj
				incumbentX = append([]float64(nil), x...)
			}
			continue
		}

		for _, v := range []float64{1, 0} {
			child := bbNode{fixed: make(map[int]float64, len(node.fixed)+1), bound: obj}
			for k, fv := range node.fixed {
				child.fixed[k] = fv
			}
			child.fixed[branch] = v
			stack = append(stack, child)
		}
	}

	if incumbentX == nil {
		return milpResult{status: StatusInfeasible, nodes: nodes}
	}
	return milpResult{status: StatusOptimal, objective: incumbent, x: incumbentX, gap: 0, nodes: nodes}
}

func bestBound(stack []bbNode, fallback float64) float64 {
	bound := math.Inf(1)
	for _, n := range stack {
		if n.bound < bound {
			bound = n.bound
		}
	}
	if math.IsInf(bound, 1) {
		return fallback
	}
	return bound
}
