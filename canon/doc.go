// SPDX-License-Identifier: MIT

// Package canon lowers DCP-valid expression trees into affine form plus cone
// constraints over the original and freshly created auxiliary variables.
//
// What & Why:
//
//	A conic solver only understands  A·x + s = b, s ∈ K.  Canonicalization
//	replaces every nonlinear atom by an auxiliary variable t together with
//	cone constraints that make t an exact epigraph (convex atoms) or
//	hypograph (concave atoms) of the atom, so the surrounding expression
//	stays affine.
//
// Determinism:
//
//	Auxiliary variables are allocated in pre-order: a node's own auxiliary
//	variable is created before its arguments are lowered. Two lowerings of
//	structurally identical trees therefore yield the same layout.
//	Shared subtrees are lowered once per Canonicalizer.
//
// Reformulations (t is the auxiliary variable):
//
//	norm1(x)       t ≥ 0, t − x ≥ 0, t + x ≥ 0, value Σt
//	norm2(x)       t ≥ 0, (t, x) ∈ SOC
//	normInf(x)     t ≥ 0 scalar, t − x ≥ 0, t + x ≥ 0
//	abs(x)         as norm1, value t
//	pos(x)         t ≥ 0, t − x ≥ 0
//	negPart(x)     t ≥ 0, t + x ≥ 0
//	maximum(xᵢ)    t − xᵢ ≥ 0 for every i (minimum mirrors it)
//	sumSquares(x)  ‖[2x; t − 1]‖₂ ≤ t + 1
//	quadOverLin    ‖[2x; t − y]‖₂ ≤ t + y
//	quadForm(x,P)  sumSquares(F·x) with P = FᵀF
//	exp(x)         (x, 1, t) ∈ K_exp
//	log(x)         (t, 1, x) ∈ K_exp
//	entropy(x)     (t, x, 1) ∈ K_exp
//	power(x, p)    power cones with α = p, 1/p or 1/(1−p) by range of p
//
// Unsupported in canonical form: products of two non-constant operands,
// division by a non-constant or zero, matrix transpose, trace and diag.
// These fail with ErrUnsupported, which also matches dcp.ErrDCP.
package canon
