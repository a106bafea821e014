// SPDX-License-Identifier: MIT

// Package solver defines the boundary between the reduction pipeline and a
// numeric conic solver.
//
// A backend receives a stuffing.Problem
//
//	minimize    (1/2)·xᵀPx + qᵀx
//	subject to  A·x + s = b,  s ∈ K
//
// and reports a Result: a Status, the primal vector x (one entry per column
// of the variable map), the conic dual z, the objective value, the solve time
// and the iteration count. The backend never sees expressions; recovery of
// user-level values is done by the caller through the variable map.
//
// Settings mirrors the JSON settings object of conic solver wrappers:
//
//	{"verbose": false, "max_iter": 100, "time_limit": 1e10,
//	 "tol_gap_abs": 1e-8, "tol_gap_rel": 1e-8}
//
// An infinite time limit is written as 1e10 seconds, since JSON has no
// infinity.
package solver
