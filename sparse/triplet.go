// SPDX-License-Identifier: MIT

// Package sparse - triplet (COO) ingestion.

package sparse

import (
	"fmt"
	"sort"
)

// Triplet is one (row, col, value) entry of a coordinate-format matrix.
type Triplet struct {
	Row, Col int
	Val      float64
}

// Builder accumulates triplets for a fixed shape and materializes a CSC.
// The zero value is not usable; call NewBuilder.
type Builder struct {
	nrows, ncols int
	entries      []Triplet
}

// NewBuilder returns a Builder for an nrows×ncols matrix with capacity hint nnz.
func NewBuilder(nrows, ncols, nnz int) *Builder {
	if nnz < 0 {
		nnz = 0
	}

	return &Builder{nrows: nrows, ncols: ncols, entries: make([]Triplet, 0, nnz)}
}

// Add records v at (i, j). Range checks run in Build.
func (b *Builder) Add(i, j int, v float64) {
	b.entries = append(b.entries, Triplet{Row: i, Col: j, Val: v})
}

// Len returns the number of recorded triplets (duplicates included).
func (b *Builder) Len() int { return len(b.entries) }

// Build materializes the accumulated triplets (see FromTriplets).
func (b *Builder) Build() (*CSC, error) {
	return FromTriplets(b.nrows, b.ncols, b.entries)
}

// FromTriplets builds a CSC from coordinate entries.
// Implementation:
//   - Stage 1: validate shape and every (row, col) against it.
//   - Stage 2: stable-sort a copy by (col, row).
//   - Stage 3: sum runs of identical (row, col), drop exact zeros, emit columns.
//
// Behavior highlights:
//   - Duplicates are summed exactly in input order; the input slice is not modified.
//
// Errors:
//   - ErrBadShape, ErrOutOfRange.
//
// Complexity:
//   - Time O(t log t + ncols), Space O(t).
func FromTriplets(nrows, ncols int, ts []Triplet) (*CSC, error) {
	if nrows < 0 || ncols < 0 {
		return nil, cscErrorf(opFromTrip, ErrBadShape)
	}
	for _, t := range ts {
		if t.Row < 0 || t.Row >= nrows || t.Col < 0 || t.Col >= ncols {
			return nil, cscErrorf(opFromTrip, fmt.Errorf("(%d,%d) in %dx%d: %w", t.Row, t.Col, nrows, ncols, ErrOutOfRange))
		}
	}
	sorted := append([]Triplet(nil), ts...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Col != sorted[b].Col {
			return sorted[a].Col < sorted[b].Col
		}
		return sorted[a].Row < sorted[b].Row
	})

	out := &CSC{
		nrows:  nrows,
		ncols:  ncols,
		colPtr: make([]int, ncols+1),
		rowIdx: make([]int, 0, len(sorted)),
		values: make([]float64, 0, len(sorted)),
	}
	var k, col int
	var sum float64
	for k < len(sorted) {
		t := sorted[k]
		sum = t.Val
		k++
		for k < len(sorted) && sorted[k].Row == t.Row && sorted[k].Col == t.Col {
			sum += sorted[k].Val
			k++
		}
		if sum == 0 {
			continue
		}
		for col < t.Col {
			col++
			out.colPtr[col] = len(out.rowIdx)
		}
		out.rowIdx = append(out.rowIdx, t.Row)
		out.values = append(out.values, sum)
	}
	for col < ncols {
		col++
		out.colPtr[col] = len(out.rowIdx)
	}

	return out, nil
}

// FromDense builds a CSC from a column-major buffer, skipping zeros.
// Errors: ErrBadShape, ErrDimensionMismatch (len(data) != rows*cols).
// Complexity: O(rows*cols).
func FromDense(data []float64, nrows, ncols int) (*CSC, error) {
	if nrows < 0 || ncols < 0 {
		return nil, cscErrorf(opFromDense, ErrBadShape)
	}
	if len(data) != nrows*ncols {
		return nil, cscErrorf(opFromDense, fmt.Errorf("buffer %d for %dx%d: %w", len(data), nrows, ncols, ErrDimensionMismatch))
	}
	out := &CSC{nrows: nrows, ncols: ncols, colPtr: make([]int, ncols+1)}
	var i, j int
	var v float64
	for j = 0; j < ncols; j++ {
		for i = 0; i < nrows; i++ {
			v = data[j*nrows+i]
			if v != 0 {
				out.rowIdx = append(out.rowIdx, i)
				out.values = append(out.values, v)
			}
		}
		out.colPtr[j+1] = len(out.rowIdx)
	}

	return out, nil
}

// Triplets returns the stored entries in column order.
// Complexity: O(nnz).
func (m *CSC) Triplets() []Triplet {
	out := make([]Triplet, 0, m.NNZ())
	for j := 0; j < m.ncols; j++ {
		for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			out = append(out, Triplet{Row: m.rowIdx[k], Col: j, Val: m.values[k]})
		}
	}

	return out
}
