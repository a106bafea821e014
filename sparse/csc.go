// SPDX-License-Identifier: MIT

// Package sparse - CSC storage, validating constructor and accessors.

package sparse

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/convex/matrix"
)

// DefaultTolerance is the absolute tolerance used by Equals in tests and by
// callers that need a documented default.
const DefaultTolerance = 1e-9

// CSC is an immutable nrows×ncols matrix in compressed-sparse-column form.
type CSC struct {
	nrows, ncols int       // dimensions (>= 0)
	colPtr       []int     // len == ncols+1, colPtr[ncols] == nnz
	rowIdx       []int     // row index of each stored entry
	values       []float64 // value of each stored entry
}

var _ fmt.Stringer = (*CSC)(nil)

// New builds a CSC from raw arrays and validates every structural invariant.
// Implementation:
//   - Stage 1: validate shape and colPtr length/anchors.
//   - Stage 2: validate monotonic colPtr, in-range rows, no duplicate row per column.
//
// Behavior highlights:
//   - The slices are owned by the returned matrix; callers must not reuse them.
//
// Errors:
//   - ErrBadShape (negative dimension), ErrMalformed (any structural violation).
//
// Complexity:
//   - Time O(nnz + ncols), Space O(nrows) scratch.
func New(nrows, ncols int, colPtr, rowIdx []int, values []float64) (*CSC, error) {
	if nrows < 0 || ncols < 0 {
		return nil, cscErrorf(opNew, ErrBadShape)
	}
	if len(colPtr) != ncols+1 || colPtr[0] != 0 {
		return nil, cscErrorf(opNew, fmt.Errorf("colPtr length %d for %d columns: %w", len(colPtr), ncols, ErrMalformed))
	}
	nnz := colPtr[ncols]
	if len(rowIdx) != nnz || len(values) != nnz {
		return nil, cscErrorf(opNew, fmt.Errorf("nnz %d, rowIdx %d, values %d: %w", nnz, len(rowIdx), len(values), ErrMalformed))
	}
	mark := make([]int, nrows)
	for i := range mark {
		mark[i] = -1
	}
	var j, k, r int
	for j = 0; j < ncols; j++ {
		if colPtr[j+1] < colPtr[j] {
			return nil, cscErrorf(opNew, fmt.Errorf("colPtr decreases at column %d: %w", j, ErrMalformed))
		}
		for k = colPtr[j]; k < colPtr[j+1]; k++ {
			r = rowIdx[k]
			if r < 0 || r >= nrows {
				return nil, cscErrorf(opNew, fmt.Errorf("row %d in column %d: %w", r, j, ErrOutOfRange))
			}
			if mark[r] == j {
				return nil, cscErrorf(opNew, fmt.Errorf("duplicate row %d in column %d: %w", r, j, ErrMalformed))
			}
			mark[r] = j
		}
	}

	return &CSC{nrows: nrows, ncols: ncols, colPtr: colPtr, rowIdx: rowIdx, values: values}, nil
}

// Zeros returns an empty nrows×ncols matrix.
// Negative dimensions are a programmer error and panic.
// Complexity: O(ncols).
func Zeros(nrows, ncols int) *CSC {
	if nrows < 0 || ncols < 0 {
		panic("sparse: Zeros: negative dimension")
	}

	return &CSC{nrows: nrows, ncols: ncols, colPtr: make([]int, ncols+1)}
}

// Identity returns I_n.
// Complexity: O(n).
func Identity(n int) *CSC {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}

	return Diag(ones)
}

// Diag returns the square diagonal matrix with v on its diagonal; zero
// entries of v are not stored.
// Complexity: O(n).
func Diag(v []float64) *CSC {
	n := len(v)
	out := &CSC{nrows: n, ncols: n, colPtr: make([]int, n+1)}
	for j, x := range v {
		if x != 0 {
			out.rowIdx = append(out.rowIdx, j)
			out.values = append(out.values, x)
		}
		out.colPtr[j+1] = len(out.rowIdx)
	}

	return out
}

// Ones returns a dense rows×cols matrix of ones in CSC form (e.g. the 1×n
// summation row).
// Complexity: O(rows*cols).
func Ones(rows, cols int) *CSC {
	out := Zeros(rows, cols)
	out.rowIdx = make([]int, 0, rows*cols)
	out.values = make([]float64, 0, rows*cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out.rowIdx = append(out.rowIdx, i)
			out.values = append(out.values, 1)
		}
		out.colPtr[j+1] = len(out.rowIdx)
	}

	return out
}

// Rows returns the number of rows.
func (m *CSC) Rows() int { return m.nrows }

// Cols returns the number of columns.
func (m *CSC) Cols() int { return m.ncols }

// NNZ returns the number of stored entries.
func (m *CSC) NNZ() int { return m.colPtr[m.ncols] }

// ColPtr exposes the column pointer array (read-only).
func (m *CSC) ColPtr() []int { return m.colPtr }

// RowIdx exposes the row index array (read-only).
func (m *CSC) RowIdx() []int { return m.rowIdx }

// Values exposes the value array (read-only).
func (m *CSC) Values() []float64 { return m.values }

// At returns entry (i, j), 0 when not stored.
// Errors: ErrOutOfRange.
// Complexity: O(nnz in column j).
func (m *CSC) At(i, j int) (float64, error) {
	if i < 0 || i >= m.nrows || j < 0 || j >= m.ncols {
		return 0, cscErrorf(opAt, fmt.Errorf("(%d,%d) in %dx%d: %w", i, j, m.nrows, m.ncols, ErrOutOfRange))
	}
	for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
		if m.rowIdx[k] == i {
			return m.values[k], nil
		}
	}

	return 0, nil
}

// Clone returns a deep copy.
// Complexity: O(nnz + ncols).
func (m *CSC) Clone() *CSC {
	return &CSC{
		nrows:  m.nrows,
		ncols:  m.ncols,
		colPtr: append([]int(nil), m.colPtr...),
		rowIdx: append([]int(nil), m.rowIdx...),
		values: append([]float64(nil), m.values...),
	}
}

// ToDense returns the entries as a column-major buffer of length rows*cols.
// Complexity: O(rows*cols + nnz).
func (m *CSC) ToDense() []float64 {
	out := make([]float64, m.nrows*m.ncols)
	var j, k int
	for j = 0; j < m.ncols; j++ {
		for k = m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			out[j*m.nrows+m.rowIdx[k]] = m.values[k]
		}
	}

	return out
}

// Dense converts m into a row-major matrix.Dense for dense kernels.
// Complexity: O(rows*cols + nnz).
func (m *CSC) Dense() (*matrix.Dense, error) {
	return matrix.FromColMajor(m.ToDense(), m.nrows, m.ncols)
}

// String renders the matrix densely, one row per line.
// Complexity: O(rows*cols).
func (m *CSC) String() string {
	d := m.ToDense()
	var sb strings.Builder
	fmt.Fprintf(&sb, "CSC %dx%d nnz=%d\n", m.nrows, m.ncols, m.NNZ())
	for i := 0; i < m.nrows; i++ {
		sb.WriteString("[")
		for j := 0; j < m.ncols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", d[j*m.nrows+i])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
