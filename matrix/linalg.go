// SPDX-License-Identifier: MIT
// Package matrix - dense kernels.
//
// Purpose:
//   - Cholesky + CholeskySolve for symmetric positive-definite systems
//     (the regularized KKT operator of the ADMM backend is SPD by construction).
//   - Eigen (cyclic-max Jacobi) for symmetric PSD factorization of quadForm data.
//
// Determinism:
//   - Fixed loop orders everywhere; no pivoting, no randomness.

package matrix

import (
	"fmt"
	"math"
)

// Cholesky computes the lower-triangular factor L with m = L·Lᵀ.
// Implementation:
//   - Stage 1: validate square input.
//   - Stage 2: column-by-column Cholesky–Banachiewicz; each pivot must be > 0.
//
// Behavior highlights:
//   - Only the lower triangle of m is read; symmetry is assumed.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrNotPositiveDefinite.
//
// Complexity:
//   - Time O(n³/3), Space O(n²).
func Cholesky(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	a := asDense(m)
	n := a.r
	L, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	var i, j, k int
	var sum float64
	for i = 0; i < n; i++ {
		for j = 0; j <= i; j++ {
			sum = a.data[i*n+j]
			for k = 0; k < j; k++ {
				sum -= L.data[i*n+k] * L.data[j*n+k]
			}
			if i == j {
				if sum <= 0 || math.IsNaN(sum) {
					return nil, matrixErrorf(opCholesky, fmt.Errorf("pivot %d = %g: %w", i, sum, ErrNotPositiveDefinite))
				}
				L.data[i*n+i] = math.Sqrt(sum)
				continue
			}
			L.data[i*n+j] = sum / L.data[j*n+j]
		}
	}

	return L, nil
}

// CholeskySolve solves (L·Lᵀ)·x = b given the factor from Cholesky.
// Implementation:
//   - Stage 1: forward substitution L·y = b (top-down).
//   - Stage 2: backward substitution Lᵀ·x = y (bottom-up).
//
// Complexity: O(n²).
func CholeskySolve(L *Dense, b []float64) ([]float64, error) {
	if L == nil {
		return nil, matrixErrorf(opSolve, ErrNilMatrix)
	}
	if L.r != L.c {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}
	if err := ValidateVecLen(b, L.r); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	n := L.r
	x := make([]float64, n)
	var i, k int
	var sum float64
	for i = 0; i < n; i++ {
		sum = b[i]
		for k = 0; k < i; k++ {
			sum -= L.data[i*n+k] * x[k]
		}
		x[i] = sum / L.data[i*n+i]
	}
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= L.data[k*n+i] * x[k]
		}
		x[i] = sum / L.data[i*n+i]
	}

	return x, nil
}

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix via Jacobi rotations.
// Implementation:
//   - Stage 1: validate symmetric square input within tol.
//   - Stage 2: repeatedly pick (p,q) with the largest |A[p,q]| in i→j order and
//     annihilate it with a Jacobi rotation, accumulating rotations into Q.
//
// Returns:
//   - []float64: eigenvalues (diagonal of the rotated matrix).
//   - *Dense: Q whose columns are the matching eigenvectors.
//
// Errors:
//   - ErrDimensionMismatch, ErrAsymmetry, ErrEigenFailed (off-diagonal ≥ tol after maxIter).
//
// Complexity:
//   - Time O(maxIter * n²), Space O(n²).
func Eigen(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	a := asDense(m.Clone())
	n := a.r
	Q, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		iter, i, j, p, q int
		maxOff, off      float64
		app, aqq, apq    float64
		aip, aiq         float64
		theta, t, c, s   float64
	)
	for iter = 0; iter < maxIter; iter++ {
		maxOff = 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				off = math.Abs(a.data[i*n+j])
				if off > maxOff {
					maxOff, p, q = off, i, j
				}
			}
		}
		if maxOff < tol || maxOff == 0 {
			break
		}

		app, aqq, apq = a.data[p*n+p], a.data[q*n+q], a.data[p*n+q]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		for i = 0; i < n; i++ {
			if i == p || i == q {
				continue
			}
			aip, aiq = a.data[i*n+p], a.data[i*n+q]
			a.data[i*n+p] = c*aip - s*aiq
			a.data[p*n+i] = a.data[i*n+p]
			a.data[i*n+q] = s*aip + c*aiq
			a.data[q*n+i] = a.data[i*n+q]
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		a.data[q*n+q] = s*s*app + 2*c*s*apq + c*c*aqq
		a.data[p*n+q], a.data[q*n+p] = 0, 0

		for i = 0; i < n; i++ {
			aip, aiq = Q.data[i*n+p], Q.data[i*n+q]
			Q.data[i*n+p] = c*aip - s*aiq
			Q.data[i*n+q] = s*aip + c*aiq
		}
	}

	maxOff = 0
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			maxOff = math.Max(maxOff, math.Abs(a.data[i*n+j]))
		}
	}
	if maxOff >= tol && maxOff > 0 {
		return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
	}

	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}

	return eigs, Q, nil
}
