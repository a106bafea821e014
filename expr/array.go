// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"math"

	"github.com/katalvlaran/convex/sparse"
)

// ArrayKind tags the storage of an Array.
type ArrayKind uint8

const (
	// ArrayScalar holds one value.
	ArrayScalar ArrayKind = iota
	// ArrayDense holds a column-major buffer.
	ArrayDense
	// ArraySparse holds a CSC matrix.
	ArraySparse
)

// Array is the immutable numeric payload of a constant.
// Invariant: for dense arrays len(data) == shape.Size().
type Array struct {
	kind  ArrayKind
	shape Shape
	data  []float64   // scalar (len 1) or dense column-major
	csc   *sparse.CSC // sparse payload, shape [rows cols]
}

// ScalarArray wraps a single value.
func ScalarArray(v float64) Array {
	return Array{kind: ArrayScalar, shape: scalarShape, data: []float64{v}}
}

// DenseArray wraps a column-major buffer of the given shape. The buffer is copied.
// Errors: *ShapeError when len(data) != shape.Size() or a dimension is negative.
func DenseArray(shape Shape, data []float64) (Array, error) {
	for _, d := range shape {
		if d < 0 {
			return Array{}, shapeErrorf("array", "non-negative dimensions", shape.String())
		}
	}
	if len(data) != shape.Size() {
		return Array{}, shapeErrorf("array", fmt.Sprintf("%d values for shape %s", shape.Size(), shape), fmt.Sprintf("%d values", len(data)))
	}
	if shape.IsScalar() {
		return ScalarArray(data[0]), nil
	}

	return Array{kind: ArrayDense, shape: shape.Clone(), data: append([]float64(nil), data...)}, nil
}

// SparseArray wraps a CSC matrix as a [rows cols] constant.
func SparseArray(m *sparse.CSC) Array {
	return Array{kind: ArraySparse, shape: Shape{m.Rows(), m.Cols()}, csc: m}
}

// Kind returns the storage tag.
func (a Array) Kind() ArrayKind { return a.kind }

// Shape returns the array shape.
func (a Array) Shape() Shape { return a.shape }

// Size returns the number of elements.
func (a Array) Size() int { return a.shape.Size() }

// Flatten returns the column-major values (a fresh slice).
func (a Array) Flatten() []float64 {
	if a.kind == ArraySparse {
		return a.csc.ToDense()
	}

	return append([]float64(nil), a.data...)
}

// Scalar returns the single value of a size-1 array.
func (a Array) Scalar() (float64, bool) {
	if a.Size() != 1 {
		return 0, false
	}

	return a.Flatten()[0], true
}

// Matrix returns the payload as a Rows()×Cols() CSC (vectors are columns).
func (a Array) Matrix() *sparse.CSC {
	if a.kind == ArraySparse {
		return a.csc
	}
	m, _ := sparse.FromDense(a.data, a.shape.Rows(), a.shape.Cols())

	return m
}

// signs reports whether every element is ≥ 0 and whether every element is ≤ 0.
func (a Array) signs() (nonneg, nonpos bool) {
	nonneg, nonpos = true, true
	var vals []float64
	if a.kind == ArraySparse {
		vals = a.csc.Values() // implicit zeros are both signs
	} else {
		vals = a.data
	}
	for _, v := range vals {
		if v < 0 {
			nonneg = false
		}
		if v > 0 {
			nonpos = false
		}
	}

	return nonneg, nonpos
}

// IsNonneg reports whether every element is ≥ 0.
func (a Array) IsNonneg() bool {
	nn, _ := a.signs()

	return nn
}

// IsNonpos reports whether every element is ≤ 0.
func (a Array) IsNonpos() bool {
	_, np := a.signs()

	return np
}

// finite reports whether every stored value is finite.
func (a Array) finite() bool {
	vals := a.data
	if a.kind == ArraySparse {
		vals = a.csc.Values()
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
