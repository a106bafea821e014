// SPDX-License-Identifier: MIT

// Package sparse implements the compressed-sparse-column (CSC) matrix that
// every stage of the reduction pipeline uses.
//
// What & Why:
//
//	A CSC matrix stores, per column j, the half-open slice
//	rowIdx[colPtr[j]:colPtr[j+1]] of row indices together with the matching
//	values. It is the native input format of conic interior-point solvers,
//	and it keeps coefficient blocks of large vector variables cheap.
//
// Invariants (checked by New, preserved by every operation):
//
//	len(colPtr) == ncols+1, colPtr[0] == 0, colPtr nondecreasing,
//	colPtr[ncols] == nnz == len(rowIdx) == len(values),
//	0 ≤ rowIdx[k] < nrows, no duplicate row inside a column.
//
// Rows inside a column are not required to be sorted, but every constructor in
// this package emits them in ascending order, and triplet builders sum
// duplicates and drop exact zeros before materializing.
//
// Complexity quicksheet:
//
//	Scale O(nnz); Add/Sub O((nnzA+nnzB)·log); Transpose O(nnz + rows);
//	VStack/HStack O(nnz); MulVec O(nnz); MulMat O(Σ_j Σ_{k∈B(:,j)} nnz(A(:,k)));
//	MulMatTransposeLeft O(cols(B)·(nnz(A) + rows)).
//
// Matrices are immutable after construction: every operation returns a new
// value and accessors hand out slices that callers must not modify.
package sparse
