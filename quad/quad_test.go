// SPDX-License-Identifier: MIT
package quad_test

import (
	"testing"

	"github.com/katalvlaran/convex/affine"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/quad"
	"github.com/katalvlaran/convex/sparse"
	"github.com/stretchr/testify/require"
)

const (
	idX expr.ID = 3
	idY expr.ID = 7
)

// TestNewPair_Normalizes keeps the smaller id first.
func TestNewPair_Normalizes(t *testing.T) {
	require.Equal(t, quad.Pair{I: 3, J: 7}, quad.NewPair(7, 3))
	require.True(t, quad.NewPair(4, 4).IsDiagonal())
}

// TestFromLinear_SplitsConstant moves the constant out of the linear part.
func TestFromLinear_SplitsConstant(t *testing.T) {
	l, err := affine.Add(affine.Variable(idX, 1), affine.Constant([]float64{4}))
	require.NoError(t, err)
	q, err := quad.FromLinear(l)
	require.NoError(t, err)
	require.Equal(t, 4.0, q.Constant())
	require.Equal(t, []float64{0}, q.Linear().ConstantPart())
	require.False(t, q.IsQuadratic())

	_, err = quad.FromLinear(affine.Variable(idX, 2))
	require.ErrorIs(t, err, quad.ErrNotScalar)
}

// TestAddScale merges overlapping pairs and distributes scalars.
func TestAddScale(t *testing.T) {
	a := quad.SumSquares(idX, 2)
	p, err := sparse.FromDense([]float64{2, 0, 0, 3}, 2, 2)
	require.NoError(t, err)
	b, err := quad.Quadratic(idX, p)
	require.NoError(t, err)
	lin, err := quad.FromLinear(affine.Constant([]float64{1}))
	require.NoError(t, err)

	sum, err := quad.Add(a, b)
	require.NoError(t, err)
	sum, err = quad.Add(sum, lin)
	require.NoError(t, err)
	require.Len(t, sum.Pairs(), 1)

	vals := map[expr.ID][]float64{idX: {1, 2}}
	v, err := sum.Value(vals)
	require.NoError(t, err)
	require.Equal(t, (1.0+4)+(2+12)+1, v)

	v, err = sum.Scale(0.5).Value(vals)
	require.NoError(t, err)
	require.Equal(t, 10.0, v)

	_, err = quad.Quadratic(idX, sparse.Zeros(2, 3))
	require.ErrorIs(t, err, quad.ErrShape)
	_, err = quad.Add(a, quad.SumSquares(idX, 3))
	require.ErrorIs(t, err, quad.ErrShape)
}

// TestFromSquaredNorm_MatchesDirectEvaluation compares ‖A x + B y + b‖² with
// the accumulated quadratic.
func TestFromSquaredNorm_MatchesDirectEvaluation(t *testing.T) {
	ax, err := sparse.FromDense([]float64{1, 0, 2, 1, 0, 3}, 3, 2)
	require.NoError(t, err)
	by, err := sparse.FromDense([]float64{1, -1, 1}, 3, 1)
	require.NoError(t, err)
	// y first so the pair key (3,7) needs the transposed cross block
	l, err := affine.Add(affine.FromBlock(idY, by), affine.FromBlock(idX, ax))
	require.NoError(t, err)
	l, err = affine.Add(l, affine.Constant([]float64{1, 2, -1}))
	require.NoError(t, err)

	q, err := quad.FromSquaredNorm(l)
	require.NoError(t, err)
	require.True(t, q.IsQuadratic())
	require.Len(t, q.Pairs(), 3)

	for _, vals := range []map[expr.ID][]float64{
		{idX: {0, 0}, idY: {0}},
		{idX: {1, -1}, idY: {2}},
		{idX: {0.5, 3}, idY: {-1.5}},
	} {
		r, err := l.Value(vals)
		require.NoError(t, err)
		want := 0.0
		for _, v := range r {
			want += v * v
		}
		got, err := q.Value(vals)
		require.NoError(t, err)
		require.InDelta(t, want, got, 1e-12)
	}
}

// TestFromQuadForm_Weighted checks (x+b)ᵀP(x+b) against direct evaluation.
func TestFromQuadForm_Weighted(t *testing.T) {
	p, err := sparse.FromDense([]float64{2, 1, 1, 3}, 2, 2)
	require.NoError(t, err)
	l, err := affine.Add(affine.Variable(idX, 2), affine.Constant([]float64{1, -2}))
	require.NoError(t, err)
	q, err := quad.FromQuadForm(l, p)
	require.NoError(t, err)

	x := []float64{0.5, 1.5}
	r := []float64{x[0] + 1, x[1] - 2}
	want := 2*r[0]*r[0] + 2*r[0]*r[1] + 3*r[1]*r[1]
	got, err := q.Value(map[expr.ID][]float64{idX: x})
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-12)

	_, err = quad.FromQuadForm(l, sparse.Identity(3))
	require.ErrorIs(t, err, quad.ErrShape)
}
