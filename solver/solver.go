// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/katalvlaran/convex/stuffing"
)

// Result is what a backend reports.
type Result struct {
	Status     Status
	X          []float64 // primal, one entry per column; nil unless optimal
	Z          []float64 // conic dual, one entry per row; nil unless optimal
	ObjVal     *float64  // (1/2)xᵀPx + qᵀx at X; nil unless optimal
	SolveTime  time.Duration
	Iterations int
}

// Solver is a numeric conic backend.
type Solver interface {
	Solve(ctx context.Context, p *stuffing.Problem) (*Result, error)
}

// Func adapts a plain function to Solver.
type Func func(ctx context.Context, p *stuffing.Problem) (*Result, error)

// Solve calls f.
func (f Func) Solve(ctx context.Context, p *stuffing.Problem) (*Result, error) { return f(ctx, p) }

// CheckProblem validates the dimensions of p against its cone description.
// Errors: ErrInvalidProblem.
func CheckProblem(p *stuffing.Problem) error {
	const op = "CheckProblem"
	if p == nil || p.P == nil || p.A == nil || p.VarMap == nil {
		return solverErrorf(op, fmt.Errorf("missing data: %w", ErrInvalidProblem))
	}
	n, m := p.Columns(), len(p.B)
	switch {
	case p.P.Rows() != n || p.P.Cols() != n:
		return solverErrorf(op, fmt.Errorf("P is %d×%d for %d columns: %w", p.P.Rows(), p.P.Cols(), n, ErrInvalidProblem))
	case len(p.Q) != n:
		return solverErrorf(op, fmt.Errorf("q has %d entries for %d columns: %w", len(p.Q), n, ErrInvalidProblem))
	case p.A.Rows() != m || p.A.Cols() != n:
		return solverErrorf(op, fmt.Errorf("A is %d×%d, want %d×%d: %w", p.A.Rows(), p.A.Cols(), m, n, ErrInvalidProblem))
	case p.Dims.Rows() != m:
		return solverErrorf(op, fmt.Errorf("cones cover %d rows, b has %d: %w", p.Dims.Rows(), m, ErrInvalidProblem))
	}
	if p.P.Triu().NNZ() != p.P.NNZ() {
		return solverErrorf(op, fmt.Errorf("P has entries below the diagonal: %w", ErrInvalidProblem))
	}
	for _, a := range p.Dims.Power {
		if !(a > 0 && a < 1) {
			return solverErrorf(op, fmt.Errorf("power alpha %g: %w", a, ErrInvalidProblem))
		}
	}

	return nil
}

// Objective evaluates (1/2)xᵀPx + qᵀx with P stored as its upper triangle.
func Objective(p *stuffing.Problem, x []float64) (float64, error) {
	if len(x) != p.Columns() {
		return 0, solverErrorf("Objective", fmt.Errorf("x has %d entries for %d columns: %w", len(x), p.Columns(), ErrInvalidProblem))
	}
	v := 0.0
	for i, qi := range p.Q {
		v += qi * x[i]
	}
	cp, ri, vals := p.P.ColPtr(), p.P.RowIdx(), p.P.Values()
	for j := 0; j < p.P.Cols(); j++ {
		for k := cp[j]; k < cp[j+1]; k++ {
			i := ri[k]
			if i == j {
				v += 0.5 * vals[k] * x[i] * x[j]
			} else {
				v += vals[k] * x[i] * x[j]
			}
		}
	}

	return v, nil
}
