// SPDX-License-Identifier: MIT

package problem

import (
	"context"
	"fmt"
	"time"

	"github.com/katalvlaran/convex/canon"
	"github.com/katalvlaran/convex/dcp"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/solver"
	"github.com/katalvlaran/convex/solver/admm"
	"github.com/katalvlaran/convex/stuffing"
)

// Problem is an objective with a sense and a list of constraints.
type Problem struct {
	sense       dcp.Sense
	objective   expr.Expr
	constraints []*expr.Constraint
}

// New returns a problem; validation is deferred to Validate, Compile and Solve.
func New(sense dcp.Sense, objective expr.Expr, constraints ...*expr.Constraint) *Problem {
	return &Problem{
		sense:       sense,
		objective:   objective,
		constraints: append([]*expr.Constraint(nil), constraints...),
	}
}

// Sense returns the optimization direction.
func (p *Problem) Sense() dcp.Sense { return p.sense }

// Objective returns the objective expression.
func (p *Problem) Objective() expr.Expr { return p.objective }

// Constraints returns a copy of the constraint list.
func (p *Problem) Constraints() []*expr.Constraint {
	return append([]*expr.Constraint(nil), p.constraints...)
}

// Variables returns the variables of the objective and constraints in
// first-seen order.
func (p *Problem) Variables() []*expr.Variable {
	roots := []expr.Expr{p.objective}
	for _, c := range p.constraints {
		roots = append(roots, c.Exprs()...)
	}

	return expr.Variables(roots...)
}

// Validate checks presence and DCP compliance.
// Errors: ErrNilObjective, ErrNilConstraint, expr.ErrShape, dcp.ErrDCP.
func (p *Problem) Validate() error {
	const op = "Validate"
	if p.objective == nil {
		return problemErrorf(op, ErrNilObjective)
	}
	for i, c := range p.constraints {
		if c == nil {
			return problemErrorf(op, fmt.Errorf("constraint %d: %w", i, ErrNilConstraint))
		}
	}
	if err := dcp.CheckProblem(p.objective, p.sense, p.constraints); err != nil {
		return problemErrorf(op, err)
	}

	return nil
}

// Compiled holds the intermediate forms of a problem.
type Compiled struct {
	Canonical *canon.Result
	Stuffed   *stuffing.Problem
}

// Compile validates, canonicalizes and stuffs p.
func (p *Problem) Compile(opts ...Option) (*Compiled, error) {
	o := gatherOptions(opts...)

	return p.compile(o)
}

func (p *Problem) compile(o Options) (*Compiled, error) {
	const op = "Compile"
	if err := p.Validate(); err != nil {
		return nil, err
	}
	copts := append([]canon.Option{canon.WithLogger(o.Logger)}, o.Canon...)
	res, err := canon.CanonicalizeProblem(p.objective, p.sense, p.constraints, copts...)
	if err != nil {
		return nil, problemErrorf(op, err)
	}
	stuffed, err := stuffing.FromCanonical(res)
	if err != nil {
		return nil, problemErrorf(op, err)
	}
	o.Logger.V(1).Info("stuffed problem",
		"columns", stuffed.Columns(),
		"rows", stuffed.Rows(),
		"cones", stuffed.Dims.String(),
		"quadratic", stuffed.IsQuadratic())

	return &Compiled{Canonical: res, Stuffed: stuffed}, nil
}

// Solution is the user-facing answer.
type Solution struct {
	Status     solver.Status
	Value      float64               // objective at the solution; valid when Status is optimal
	Values     map[expr.ID][]float64 // original variables only, column-major
	Dual       []float64             // conic dual, one entry per stuffed row
	Iterations int
	SolveTime  time.Duration
}

// ValueOf returns the value of v, if v appears in the problem.
func (s *Solution) ValueOf(v *expr.Variable) ([]float64, bool) {
	vals, ok := s.Values[v.ID()]

	return vals, ok
}

// Solve compiles p and hands it to backend (the ADMM reference backend when
// backend is nil).
//
// A non-optimal termination returns the Solution together with the error
// solver.StatusError reports for its status, so callers can test it with
// errors.Is(err, solver.ErrInfeasible) and still inspect Status.
func (p *Problem) Solve(ctx context.Context, backend solver.Solver, opts ...Option) (*Solution, error) {
	const op = "Solve"
	o := gatherOptions(opts...)
	log := o.Logger.WithName("problem")
	c, err := p.compile(o)
	if err != nil {
		return nil, err
	}
	if backend == nil {
		backend = admm.New(admm.WithLogger(o.Logger))
	}
	res, err := backend.Solve(ctx, c.Stuffed)
	if err != nil {
		return nil, problemErrorf(op, err)
	}
	sol := &Solution{
		Status:     res.Status,
		Iterations: res.Iterations,
		SolveTime:  res.SolveTime,
	}
	if err := solver.StatusError(res.Status); err != nil {
		log.Info("no solution", "status", res.Status, "iterations", res.Iterations)
		return sol, problemErrorf(op, err)
	}
	if res.ObjVal == nil || res.X == nil {
		return sol, problemErrorf(op, fmt.Errorf("optimal status without a primal point: %w", solver.ErrSolver))
	}

	sol.Value = c.Canonical.Recover(*res.ObjVal)
	all, err := c.Stuffed.VarMap.Values(res.X)
	if err != nil {
		return sol, problemErrorf(op, err)
	}
	sol.Values = make(map[expr.ID][]float64, len(c.Canonical.Vars))
	for _, v := range c.Canonical.Vars {
		sol.Values[v.ID()] = all[v.ID()]
	}
	sol.Dual = res.Z
	log.Info("solved", "status", res.Status, "value", sol.Value, "iterations", res.Iterations, "elapsed", res.SolveTime)

	return sol, nil
}
