// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"strings"
)

// Shape is an ordered list of non-negative dimension sizes.
type Shape []int

// Scalar shape.
var scalarShape = Shape{}

// Size returns the number of elements (1 for a scalar).
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}

	return n
}

// Ndim returns the number of dimensions.
func (s Shape) Ndim() int { return len(s) }

// IsScalar reports s == [].
func (s Shape) IsScalar() bool { return len(s) == 0 }

// IsVector reports a one-dimensional shape.
func (s Shape) IsVector() bool { return len(s) == 1 }

// IsMatrix reports a two-dimensional shape.
func (s Shape) IsMatrix() bool { return len(s) == 2 }

// Rows returns the row count when s is read as a column-major matrix:
// 1 for a scalar, n for [n], m for [m n].
func (s Shape) Rows() int {
	switch len(s) {
	case 0:
		return 1
	case 1:
		return s[0]
	default:
		return s[0]
	}
}

// Cols returns the column count (1 for scalars and vectors).
func (s Shape) Cols() int {
	if len(s) < 2 {
		return 1
	}

	return s.Size() / s[0]
}

// Equal reports element-wise equality of dimensions.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}

	return true
}

// Clone returns an independent copy.
func (s Shape) Clone() Shape {
	return append(Shape{}, s...)
}

// String renders the shape as "[m n]"; a scalar is "[]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}

	return "[" + strings.Join(parts, " ") + "]"
}

// Broadcast returns the broadcast of a and b.
// Rules: equal shapes, either scalar, or right-aligned dimensions that are
// pairwise equal or contain a 1. The result is independent of argument order.
// Errors: *ShapeError.
func Broadcast(a, b Shape) (Shape, error) {
	if a.Equal(b) {
		return a.Clone(), nil
	}
	if a.IsScalar() {
		return b.Clone(), nil
	}
	if b.IsScalar() {
		return a.Clone(), nil
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Shape, n)
	var da, db int
	for i := 0; i < n; i++ {
		da, db = dimFromRight(a, n-1-i), dimFromRight(b, n-1-i)
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			return nil, shapeErrorf("broadcast", "broadcast-compatible shape for "+a.String(), b.String())
		}
	}

	return out, nil
}

// dimFromRight returns dimension k counted from the right (k=0 is the last),
// or 1 when s has fewer dimensions.
func dimFromRight(s Shape, k int) int {
	if k >= len(s) {
		return 1
	}

	return s[len(s)-1-k]
}

// broadcastSource maps a column-major flat index of the broadcast shape out
// back to the flat index of an operand with shape in.
func broadcastSource(out, in Shape, flat int) int {
	if in.Size() == 1 {
		return 0
	}
	if in.Equal(out) {
		return flat
	}
	// Decompose flat over out (column-major: first dimension fastest).
	src, stride := 0, 1
	off := len(out) - len(in)
	for d := 0; d < len(out); d++ {
		idx := flat % out[d]
		flat /= out[d]
		if d < off {
			continue
		}
		dim := in[d-off]
		if dim != 1 {
			src += idx * stride
		}
		stride *= dim
	}

	return src
}

// BroadcastPositions returns, for every element of the broadcast shape out,
// the flat position it reads from an operand of shape in.
func BroadcastPositions(out, in Shape) []int {
	pos := make([]int, out.Size())
	for i := range pos {
		pos[i] = broadcastSource(out, in, i)
	}

	return pos
}
