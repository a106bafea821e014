// SPDX-License-Identifier: MIT

// Package convex is a disciplined convex programming (DCP) modeling layer.
//
// Expressions are built as immutable trees, checked against the DCP
// composition rules, lowered to affine expressions plus cone constraints,
// and packed into the sparse conic standard form
//
//	minimize    (1/2)·xᵀPx + qᵀx
//	subject to  A·x + s = b,  s ∈ K
//
// that numeric conic solvers consume.
//
// Subpackages:
//
//	expr/       : expression trees, shapes, ids, constraints, evaluation
//	dcp/        : curvature and sign analysis, problem validation
//	sparse/     : CSC matrices and triplet builders
//	matrix/     : dense kernels (Cholesky, Jacobi eigen) for small blocks
//	affine/     : affine expressions keyed by variable id
//	quad/       : quadratic expressions for the QP objective path
//	canon/      : canonicalization into cones and auxiliary variables
//	stuffing/   : variable layout and the (P, q, A, b, K) standard form
//	solver/     : backend boundary: status, settings, results
//	solver/admm/: a small operator-splitting reference backend
//	problem/    : validate → canonicalize → stuff → solve → recover
//
// Quick example:
//
//	x := expr.Must(expr.NewVariable(expr.Shape{3}))
//	p := problem.New(dcp.Minimize, expr.Norm2(x),
//		expr.Must(expr.Eq(expr.Sum(x), expr.Scalar(3))))
//	sol, err := p.Solve(ctx, nil) // sol.Value ≈ √3
package convex
