// SPDX-License-Identifier: MIT

// Package matrix provides the small dense linear-algebra substrate used by the
// reduction pipeline and the reference solver backend.
//
// What & Why:
//
//	Sparse CSC matrices (package sparse) carry the problem data, but a few
//	steps need dense kernels on small blocks:
//	  - factoring the regularized KKT operator of the reference ADMM backend;
//	  - diagonalizing the constant matrix of a quadForm atom (P = V·diag(λ)·Vᵀ)
//	    so it can be rewritten as a sum of squares.
//
// Storage:
//
//	Dense is row-major with the explicit index formula i*cols + j. Public
//	accessors (At/Set) return errors instead of panicking.
//
// Complexity:
//
//	At/Set O(1); Clone, FromColMajor, ColMajor O(r*c);
//	Cholesky O(n³); CholeskySolve O(n²); Eigen O(maxIter*n²) per sweep.
package matrix
