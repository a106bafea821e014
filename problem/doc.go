// SPDX-License-Identifier: MIT

// Package problem ties the pipeline together for callers that just want an
// answer:
//
//	validate → canonicalize → stuff → solve → recover
//
// A Problem is immutable. Compile exposes the intermediate canonical and
// stuffed forms; Solve runs them through a solver.Solver (the ADMM reference
// backend when none is given) and maps the primal vector back onto the
// user's variables.
//
// Example:
//
//	x := expr.Must(expr.NewVariable(expr.Shape{3}))
//	p := problem.New(dcp.Minimize, expr.Sum(x), expr.Must(expr.Ge(x, expr.Scalar(1))))
//	sol, err := p.Solve(ctx, nil)
//	// sol.Value ≈ 3, sol.Values[x.ID()] ≈ [1 1 1]
package problem
