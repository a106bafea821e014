// SPDX-License-Identifier: MIT
// Package matrix_test covers storage and the dense kernels.
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/convex/matrix"
)

func TestNewDense_ZeroAndBounds(t *testing.T) {
	m := MustDense(t, 2, 3)
	var i, j int
	for i = 0; i < 2; i++ {
		for j = 0; j < 3; j++ {
			if v := MustAt(t, m, i, j); v != 0 {
				t.Fatalf("new Dense[%d,%d] = %g, want 0", i, j, v)
			}
		}
	}

	_, err := m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	_, err = matrix.NewDense(-1, 2)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	empty := MustDense(t, 0, 0)
	require.Equal(t, 0, empty.Rows())
}

// TestColMajor_RoundTrip converts between the two buffer layouts.
func TestColMajor_RoundTrip(t *testing.T) {
	buf := []float64{1, 4, 2, 5, 3, 6} // [[1 2 3] [4 5 6]]
	m, err := matrix.FromColMajor(buf, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 2.0, MustAt(t, m, 0, 1))
	require.Equal(t, 4.0, MustAt(t, m, 1, 0))
	require.Equal(t, buf, m.ColMajor())

	_, err = matrix.FromColMajor(buf, 2, 2)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	c := m.Clone()
	MustSet(t, c, 0, 0, 9)
	require.Equal(t, 1.0, MustAt(t, m, 0, 0))
	require.Equal(t, "[1, 2, 3]\n[4, 5, 6]\n", m.String())
}

// TestCholesky solves an SPD system and rejects an indefinite one.
func TestCholesky(t *testing.T) {
	a := MustRows(t,
		[]float64{4, 12, -16},
		[]float64{12, 37, -43},
		[]float64{-16, -43, 98},
	)
	L, err := matrix.Cholesky(a)
	require.NoError(t, err)
	wantL := MustRows(t,
		[]float64{2, 0, 0},
		[]float64{6, 1, 0},
		[]float64{-8, 5, 3},
	)
	require.True(t, AllClose(t, L, wantL, 1e-12))

	x, err := matrix.CholeskySolve(L, []float64{1, 2, 3})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1, 2, 3}, MatVec(t, a, x), 1e-9)

	// The At-based fallback must agree with the *Dense fast path.
	L2, err := matrix.Cholesky(hide{a})
	require.NoError(t, err)
	require.True(t, AllClose(t, L, L2, 0))

	_, err = matrix.CholeskySolve(L, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.Cholesky(MustRows(t, []float64{1, 2}, []float64{2, 1}))
	require.ErrorIs(t, err, matrix.ErrNotPositiveDefinite)
	_, err = matrix.Cholesky(MustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestEigen reconstructs a symmetric matrix from its decomposition.
func TestEigen(t *testing.T) {
	a := MustRows(t,
		[]float64{2, -1, 0},
		[]float64{-1, 2, -1},
		[]float64{0, -1, 2},
	)
	vals, Q, err := matrix.Eigen(a, 1e-12, 1000)
	require.NoError(t, err)

	// Q·diag(λ)·Qᵀ == a
	var i, j, k int
	for i = 0; i < 3; i++ {
		for j = 0; j < 3; j++ {
			s := 0.0
			for k = 0; k < 3; k++ {
				s += MustAt(t, Q, i, k) * vals[k] * MustAt(t, Q, j, k)
			}
			if math.Abs(s-MustAt(t, a, i, j)) > 1e-9 {
				t.Fatalf("reconstruction [%d,%d] = %g, want %g", i, j, s, MustAt(t, a, i, j))
			}
		}
	}
	sum := vals[0] + vals[1] + vals[2]
	require.InDelta(t, 6, sum, 1e-9) // trace

	_, _, err = matrix.Eigen(MustRows(t, []float64{1, 2}, []float64{0, 1}), 1e-12, 10)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)
	_, _, err = matrix.Eigen(a, 1e-12, 0)
	require.ErrorIs(t, err, matrix.ErrEigenFailed)
}
