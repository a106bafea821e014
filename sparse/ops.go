// SPDX-License-Identifier: MIT

// Package sparse - structural algebra: scale, add, transpose, stacking, triu,
// tolerance equality.

package sparse

import (
	"fmt"
	"math"
	"sort"
)

// Scale returns alpha·m. Scaling by zero yields an empty matrix of the same shape.
// Complexity: O(nnz).
func (m *CSC) Scale(alpha float64) *CSC {
	if alpha == 0 {
		return Zeros(m.nrows, m.ncols)
	}
	out := m.Clone()
	for k := range out.values {
		out.values[k] *= alpha
	}

	return out
}

// Add returns m + b.
// Implementation:
//   - Stage 1: validate equal shapes.
//   - Stage 2: concatenate both triplet lists and rebuild through FromTriplets,
//     which sums coincident entries and drops cancellations.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O((nnzA+nnzB)·log(nnzA+nnzB)).
func (m *CSC) Add(b *CSC) (*CSC, error) {
	return addScaled(m, b, 1, opAdd)
}

// Sub returns m − b. Errors and complexity as Add.
func (m *CSC) Sub(b *CSC) (*CSC, error) {
	return addScaled(m, b, -1, opSub)
}

// addScaled computes a + sign·b through the triplet path.
func addScaled(a, b *CSC, sign float64, op string) (*CSC, error) {
	if a == nil || b == nil {
		return nil, cscErrorf(op, ErrNilMatrix)
	}
	if a.nrows != b.nrows || a.ncols != b.ncols {
		return nil, cscErrorf(op, fmt.Errorf("%dx%d vs %dx%d: %w", a.nrows, a.ncols, b.nrows, b.ncols, ErrDimensionMismatch))
	}
	ts := a.Triplets()
	for _, t := range b.Triplets() {
		t.Val *= sign
		ts = append(ts, t)
	}
	out, err := FromTriplets(a.nrows, a.ncols, ts)
	if err != nil {
		return nil, cscErrorf(op, err)
	}

	return out, nil
}

// Transpose returns mᵀ.
// Implementation:
//   - Stage 1: count entries per row of m (columns of mᵀ).
//   - Stage 2: prefix-sum into colPtr, then scatter entries column by column.
//
// Behavior highlights:
//   - Output rows are ascending inside each column because input columns are
//     visited in order.
//
// Complexity: Time O(nnz + nrows), Space O(nnz + nrows).
func (m *CSC) Transpose() *CSC {
	nnz := m.NNZ()
	out := &CSC{
		nrows:  m.ncols,
		ncols:  m.nrows,
		colPtr: make([]int, m.nrows+1),
		rowIdx: make([]int, nnz),
		values: make([]float64, nnz),
	}
	for k := 0; k < nnz; k++ {
		out.colPtr[m.rowIdx[k]+1]++
	}
	for i := 0; i < m.nrows; i++ {
		out.colPtr[i+1] += out.colPtr[i]
	}
	next := append([]int(nil), out.colPtr[:m.nrows]...)
	var j, k, dst int
	for j = 0; j < m.ncols; j++ {
		for k = m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			dst = next[m.rowIdx[k]]
			out.rowIdx[dst] = j
			out.values[dst] = m.values[k]
			next[m.rowIdx[k]]++
		}
	}

	return out
}

// VStack stacks blocks vertically: [m₀; m₁; …]. All blocks must share the
// column count. Row indices of block b are shifted by the rows above it.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrBadShape (no blocks).
// Complexity: O(Σ nnz + ncols·blocks).
func VStack(blocks ...*CSC) (*CSC, error) {
	if len(blocks) == 0 {
		return nil, cscErrorf(opVStack, ErrBadShape)
	}
	ncols, nrows, nnz := -1, 0, 0
	for i, b := range blocks {
		if b == nil {
			return nil, cscErrorf(opVStack, ErrNilMatrix)
		}
		if ncols >= 0 && b.ncols != ncols {
			return nil, cscErrorf(opVStack, fmt.Errorf("block %d has %d columns, want %d: %w", i, b.ncols, ncols, ErrDimensionMismatch))
		}
		ncols = b.ncols
		nrows += b.nrows
		nnz += b.NNZ()
	}
	out := &CSC{
		nrows:  nrows,
		ncols:  ncols,
		colPtr: make([]int, ncols+1),
		rowIdx: make([]int, 0, nnz),
		values: make([]float64, 0, nnz),
	}
	var j, k, off int
	for j = 0; j < ncols; j++ {
		off = 0
		for _, b := range blocks {
			for k = b.colPtr[j]; k < b.colPtr[j+1]; k++ {
				out.rowIdx = append(out.rowIdx, b.rowIdx[k]+off)
				out.values = append(out.values, b.values[k])
			}
			off += b.nrows
		}
		out.colPtr[j+1] = len(out.rowIdx)
	}

	return out, nil
}

// HStack concatenates blocks horizontally: [m₀ m₁ …]. All blocks must share
// the row count; column pointers of block b are shifted by the entries before it.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrBadShape (no blocks).
// Complexity: O(Σ nnz + Σ ncols).
func HStack(blocks ...*CSC) (*CSC, error) {
	if len(blocks) == 0 {
		return nil, cscErrorf(opHStack, ErrBadShape)
	}
	nrows, ncols, nnz := -1, 0, 0
	for i, b := range blocks {
		if b == nil {
			return nil, cscErrorf(opHStack, ErrNilMatrix)
		}
		if nrows >= 0 && b.nrows != nrows {
			return nil, cscErrorf(opHStack, fmt.Errorf("block %d has %d rows, want %d: %w", i, b.nrows, nrows, ErrDimensionMismatch))
		}
		nrows = b.nrows
		ncols += b.ncols
		nnz += b.NNZ()
	}
	out := &CSC{
		nrows:  nrows,
		ncols:  ncols,
		colPtr: make([]int, 1, ncols+1),
		rowIdx: make([]int, 0, nnz),
		values: make([]float64, 0, nnz),
	}
	var base int
	for _, b := range blocks {
		for j := 1; j <= b.ncols; j++ {
			out.colPtr = append(out.colPtr, b.colPtr[j]+base)
		}
		out.rowIdx = append(out.rowIdx, b.rowIdx...)
		out.values = append(out.values, b.values...)
		base += b.NNZ()
	}

	return out, nil
}

// Triu returns the upper-triangular part of m (entries with row ≤ col), the
// storage convention solvers expect for the quadratic cost P.
// Complexity: O(nnz).
func (m *CSC) Triu() *CSC {
	out := &CSC{nrows: m.nrows, ncols: m.ncols, colPtr: make([]int, m.ncols+1)}
	for j := 0; j < m.ncols; j++ {
		for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			if m.rowIdx[k] <= j {
				out.rowIdx = append(out.rowIdx, m.rowIdx[k])
				out.values = append(out.values, m.values[k])
			}
		}
		out.colPtr[j+1] = len(out.rowIdx)
	}

	return out
}

// Equals reports whether m and b hold the same entries within an absolute
// tolerance tol.
// Implementation:
//   - Stage 1: structural check (dimensions, colPtr).
//   - Stage 2: per column, compare row sets exactly and values within tol,
//     independent of the in-column storage order.
//
// Complexity: O(nnz·log(max column nnz)).
func (m *CSC) Equals(b *CSC, tol float64) bool {
	if m == nil || b == nil {
		return m == b
	}
	if m.nrows != b.nrows || m.ncols != b.ncols {
		return false
	}
	for j := 0; j <= m.ncols; j++ {
		if m.colPtr[j] != b.colPtr[j] {
			return false
		}
	}
	for j := 0; j < m.ncols; j++ {
		lo, hi := m.colPtr[j], m.colPtr[j+1]
		ea := sortedColumn(m.rowIdx[lo:hi], m.values[lo:hi])
		eb := sortedColumn(b.rowIdx[lo:hi], b.values[lo:hi])
		for k := range ea {
			if ea[k].Row != eb[k].Row || math.Abs(ea[k].Val-eb[k].Val) > tol {
				return false
			}
		}
	}

	return true
}

// sortedColumn returns the (row, value) pairs of one column sorted by row.
func sortedColumn(rows []int, vals []float64) []Triplet {
	out := make([]Triplet, len(rows))
	for k := range rows {
		out[k] = Triplet{Row: rows[k], Val: vals[k]}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Row < out[b].Row })

	return out
}

// Kron returns the Kronecker product a ⊗ b, an (ra·rb)×(ca·cb) matrix whose
// block (i, j) is a[i,j]·b. The lowering of matrix products acting on
// column-major flattened variables is built from I ⊗ A and Bᵀ ⊗ I.
// Complexity: O(nnz(a)·nnz(b) + ca·cb).
func Kron(a, b *CSC) *CSC {
	out := Zeros(a.nrows*b.nrows, a.ncols*b.ncols)
	var ka, kb int
	for ja := 0; ja < a.ncols; ja++ {
		for jb := 0; jb < b.ncols; jb++ {
			for ka = a.colPtr[ja]; ka < a.colPtr[ja+1]; ka++ {
				for kb = b.colPtr[jb]; kb < b.colPtr[jb+1]; kb++ {
					out.rowIdx = append(out.rowIdx, a.rowIdx[ka]*b.nrows+b.rowIdx[kb])
					out.values = append(out.values, a.values[ka]*b.values[kb])
				}
			}
			out.colPtr[ja*b.ncols+jb+1] = len(out.rowIdx)
		}
	}

	return out
}
