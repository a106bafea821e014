// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   - Small deterministic fixtures for the dense kernels.

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/convex/matrix"
)

// hide wraps a Matrix to mask its concrete type and force the At-based
// fallback paths.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		t.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// MustRows builds a Dense from row slices.
func MustRows(t *testing.T, rows ...[]float64) *matrix.Dense {
	t.Helper()
	m := MustDense(t, len(rows), len(rows[0]))
	var i, j int
	for i = range rows {
		for j = range rows[i] {
			MustSet(t, m, i, j, rows[i][j])
		}
	}

	return m
}

// MustSet writes (i,j) or fails the test.
func MustSet(t *testing.T, m matrix.Matrix, i, j int, v float64) {
	t.Helper()
	if err := m.Set(i, j, v); err != nil {
		t.Fatalf("Set(%d,%d): %v", i, j, err)
	}
}

// MustAt reads (i,j) or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// AllClose reports whether a and b agree entrywise within tol.
func AllClose(t *testing.T, a, b matrix.Matrix, tol float64) bool {
	t.Helper()
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false
	}
	var i, j int
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			if math.Abs(MustAt(t, a, i, j)-MustAt(t, b, i, j)) > tol {
				return false
			}
		}
	}

	return true
}

// MatVec computes m·x through At.
func MatVec(t *testing.T, m matrix.Matrix, x []float64) []float64 {
	t.Helper()
	y := make([]float64, m.Rows())
	var i, j int
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			y[i] += MustAt(t, m, i, j) * x[j]
		}
	}

	return y
}
