// SPDX-License-Identifier: MIT

// Package admm is a small operator-splitting backend for the solver boundary.
//
// It solves
//
//	minimize    (1/2)·xᵀPx + qᵀx
//	subject to  A·x + s = b,  s ∈ K
//
// where K is a product of zero, nonnegative and second-order cones, with the
// iteration
//
//	(P + σI + AᵀRA)·x̃ = σxᵏ − q + Aᵀ(R(b − sᵏ) + yᵏ)
//	s̃ = b − A·x̃
//	xᵏ⁺¹ = αx̃ + (1−α)xᵏ
//	sᵏ⁺¹ = Π_K(αs̃ + (1−α)sᵏ + R⁻¹yᵏ)
//	yᵏ⁺¹ = yᵏ + R(αs̃ + (1−α)sᵏ − sᵏ⁺¹)
//
// R is diagonal: ρ on inequality rows and a larger multiple of ρ on equality
// rows. The KKT matrix is factored densely with Cholesky, and refactored
// whenever adaptive ρ rescales R, so the backend targets small and medium
// problems. Exponential and power cones and integer columns are rejected.
//
// The reported dual is z = −y, which satisfies Px + q + Aᵀz = 0, z ∈ K*.
package admm
