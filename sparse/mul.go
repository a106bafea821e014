// SPDX-License-Identifier: MIT

// Package sparse - products.

package sparse

import (
	"fmt"
	"sort"
)

// MulVec computes y = m·x.
// Errors: ErrDimensionMismatch (len(x) != Cols()).
// Complexity: O(nnz + rows).
func (m *CSC) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.ncols {
		return nil, cscErrorf(opMulVec, fmt.Errorf("vector %d for %d columns: %w", len(x), m.ncols, ErrDimensionMismatch))
	}
	y := make([]float64, m.nrows)
	var j, k int
	var xj float64
	for j = 0; j < m.ncols; j++ {
		xj = x[j]
		if xj == 0 {
			continue
		}
		for k = m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			y[m.rowIdx[k]] += m.values[k] * xj
		}
	}

	return y, nil
}

// MulMat computes m·b column by column.
// Implementation:
//   - Stage 1: validate m.Cols() == b.Rows().
//   - Stage 2: for each column j of b, accumulate Σ_k b[k,j]·m[:,k] into a dense
//     scratch column, tracking touched rows.
//   - Stage 3: emit touched rows in ascending order, dropping exact cancellations.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(Σ_j Σ_{k∈b(:,j)} nnz(m(:,k)) + touched·log), Space O(rows).
func (m *CSC) MulMat(b *CSC) (*CSC, error) {
	if b == nil {
		return nil, cscErrorf(opMulMat, ErrNilMatrix)
	}
	if m.ncols != b.nrows {
		return nil, cscErrorf(opMulMat, fmt.Errorf("%dx%d · %dx%d: %w", m.nrows, m.ncols, b.nrows, b.ncols, ErrDimensionMismatch))
	}
	out := &CSC{nrows: m.nrows, ncols: b.ncols, colPtr: make([]int, b.ncols+1)}
	work := make([]float64, m.nrows)
	mark := make([]int, m.nrows)
	for i := range mark {
		mark[i] = -1
	}
	touched := make([]int, 0, m.nrows)
	var j, kb, ka, col, row int
	var bkj float64
	for j = 0; j < b.ncols; j++ {
		touched = touched[:0]
		for kb = b.colPtr[j]; kb < b.colPtr[j+1]; kb++ {
			col, bkj = b.rowIdx[kb], b.values[kb]
			for ka = m.colPtr[col]; ka < m.colPtr[col+1]; ka++ {
				row = m.rowIdx[ka]
				if mark[row] != j {
					mark[row] = j
					work[row] = 0
					touched = append(touched, row)
				}
				work[row] += m.values[ka] * bkj
			}
		}
		sort.Ints(touched)
		for _, row = range touched {
			if work[row] != 0 {
				out.rowIdx = append(out.rowIdx, row)
				out.values = append(out.values, work[row])
			}
		}
		out.colPtr[j+1] = len(out.rowIdx)
	}

	return out, nil
}

// MulMatTransposeLeft computes mᵀ·b without materializing mᵀ.
// Implementation:
//   - Stage 1: validate m.Rows() == b.Rows().
//   - Stage 2: for each column j of b, scatter it into a dense row-indexed
//     scratch vector; entry (i, j) of the result is then the sparse dot product
//     of column i of m with that scratch vector.
//   - Stage 3: clear only the scattered rows before the next column.
//
// Behavior highlights:
//   - No nested search: every lookup of b[r,j] is an O(1) index into the scratch.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(cols(b)·nnz(m) + nnz(b)), Space O(rows).
func (m *CSC) MulMatTransposeLeft(b *CSC) (*CSC, error) {
	if b == nil {
		return nil, cscErrorf(opMulMatTLeft, ErrNilMatrix)
	}
	if m.nrows != b.nrows {
		return nil, cscErrorf(opMulMatTLeft, fmt.Errorf("(%dx%d)ᵀ · %dx%d: %w", m.nrows, m.ncols, b.nrows, b.ncols, ErrDimensionMismatch))
	}
	out := &CSC{nrows: m.ncols, ncols: b.ncols, colPtr: make([]int, b.ncols+1)}
	scratch := make([]float64, m.nrows)
	var j, i, k, kb int
	var dot float64
	for j = 0; j < b.ncols; j++ {
		if b.colPtr[j] == b.colPtr[j+1] {
			out.colPtr[j+1] = len(out.rowIdx)
			continue
		}
		for kb = b.colPtr[j]; kb < b.colPtr[j+1]; kb++ {
			scratch[b.rowIdx[kb]] = b.values[kb]
		}
		for i = 0; i < m.ncols; i++ {
			dot = 0
			for k = m.colPtr[i]; k < m.colPtr[i+1]; k++ {
				dot += m.values[k] * scratch[m.rowIdx[k]]
			}
			if dot != 0 {
				out.rowIdx = append(out.rowIdx, i)
				out.values = append(out.values, dot)
			}
		}
		for kb = b.colPtr[j]; kb < b.colPtr[j+1]; kb++ {
			scratch[b.rowIdx[kb]] = 0
		}
		out.colPtr[j+1] = len(out.rowIdx)
	}

	return out, nil
}
