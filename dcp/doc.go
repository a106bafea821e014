// SPDX-License-Identifier: MIT

// Package dcp implements the Disciplined Convex Programming rule set:
// curvature and sign analysis of expression trees plus validity checks for
// constraints and objectives.
//
// Lattices:
//
//	Curvature: Constant ⊆ Affine ⊆ {Convex, Concave}, plus Unknown.
//	Sign:      Zero ⊆ {Nonneg, Nonpos}, plus Unknown.
//
// Composition (summary):
//   - add joins; neg swaps Convex and Concave.
//   - mul/div/matmul with one constant operand keep the other operand's
//     curvature, flipped when the constant is nonpositive; a constant of mixed
//     sign keeps only affine curvature. Non-constant products are Unknown.
//   - Pure-affine operators forward their argument; stacking joins.
//   - Convex atoms need an affine argument (pos also accepts convex, negPart
//     accepts concave, maximum accepts convex); concave atoms mirror them.
//   - power(x, p): p=0 constant, p=1 passthrough, 0<p<1 concave, otherwise
//     convex, each for an affine x.
//
// Every analysis memoizes per call, so shared subtrees are visited once.
package dcp
