// SPDX-License-Identifier: MIT
package stuffing_test

import (
	"encoding/json"
	"testing"

	"github.com/katalvlaran/convex/affine"
	"github.com/katalvlaran/convex/canon"
	"github.com/katalvlaran/convex/dcp"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/quad"
	"github.com/katalvlaran/convex/sparse"
	"github.com/katalvlaran/convex/stuffing"
	"github.com/stretchr/testify/require"
)

func newVar(t *testing.T, shape expr.Shape, opts ...expr.Option) *expr.Variable {
	t.Helper()
	v, err := expr.NewVariable(shape, opts...)
	require.NoError(t, err)

	return v
}

func at(t *testing.T, m *sparse.CSC, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)

	return v
}

// TestBuildVariableMap_Layout places originals before aux.
func TestBuildVariableMap_Layout(t *testing.T) {
	x := newVar(t, expr.Shape{3}, expr.Named("x"), expr.Nonneg())
	y := newVar(t, expr.Shape{}, expr.Named("y"), expr.Binary())
	a := newVar(t, expr.Shape{2}, expr.Named("aux0"))

	vm, err := stuffing.BuildVariableMap([]*expr.Variable{x, y}, []*expr.Variable{a})
	require.NoError(t, err)
	require.Equal(t, 6, vm.Columns())
	require.Equal(t, 3, vm.Len())

	e, ok := vm.Lookup(y.ID())
	require.True(t, ok)
	require.Equal(t, 3, e.Start)
	require.True(t, e.Attr.Has(stuffing.AttrBinary|stuffing.AttrInteger|stuffing.AttrNonneg))
	require.False(t, e.Aux)

	e, ok = vm.Lookup(a.ID())
	require.True(t, ok)
	require.Equal(t, 4, e.Start)
	require.True(t, e.Aux)

	_, ok = vm.Lookup(expr.ID(1 << 40))
	require.False(t, ok)

	require.Equal(t, []string{"x[0]", "x[1]", "x[2]", "y", "aux0[0]", "aux0[1]"}, vm.ColumnNames())
	attrs := vm.ColumnAttrs()
	require.True(t, attrs[0].Has(stuffing.AttrNonneg))
	require.False(t, attrs[5].Has(stuffing.AttrNonneg))

	vals, err := vm.Values([]float64{1, 2, 3, 1, 7, 8})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, vals[x.ID()])
	require.Equal(t, []float64{7, 8}, vals[a.ID()])

	_, err = vm.Values([]float64{1})
	require.ErrorIs(t, err, stuffing.ErrDimension)

	_, err = stuffing.BuildVariableMap([]*expr.Variable{x}, []*expr.Variable{x})
	require.ErrorIs(t, err, stuffing.ErrDuplicateVariable)
}

// TestStuffLinExpr_Signs checks both sign conventions.
func TestStuffLinExpr_Signs(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	y := newVar(t, expr.Shape{})
	vm, err := stuffing.BuildVariableMap([]*expr.Variable{x, y}, nil)
	require.NoError(t, err)

	// 2·x + y − 1 (broadcast y)
	l, err := affine.Add(affine.Variable(x.ID(), 2).Scale(2), affine.Variable(y.ID(), 1))
	require.NoError(t, err)
	l, err = affine.Add(l, affine.Constant([]float64{-1}))
	require.NoError(t, err)

	a, b, err := stuffing.StuffLinExpr(l, vm, false)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 0, 0, 2, 1, 1}, a.ToDense())
	require.Equal(t, []float64{1, 1}, b)

	a, b, err = stuffing.StuffLinExpr(l, vm, true)
	require.NoError(t, err)
	require.Equal(t, []float64{-2, 0, 0, -2, -1, -1}, a.ToDense())
	require.Equal(t, []float64{-1, -1}, b)

	other := newVar(t, expr.Shape{})
	_, _, err = stuffing.StuffLinExpr(affine.Variable(other.ID(), 1), vm, false)
	require.ErrorIs(t, err, stuffing.ErrUnknownVariable)

	_, _, err = stuffing.StuffLinExpr(affine.Variable(x.ID(), 3), vm, false)
	require.ErrorIs(t, err, stuffing.ErrDimension)
}

// TestStuffObjective places one row into q.
func TestStuffObjective(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	vm, err := stuffing.BuildVariableMap([]*expr.Variable{x}, nil)
	require.NoError(t, err)

	q, err := stuffing.StuffObjective(affine.Variable(x.ID(), 2).Sum(), vm)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1}, q)

	_, err = stuffing.StuffObjective(affine.Variable(x.ID(), 2), vm)
	require.ErrorIs(t, err, stuffing.ErrNotScalar)
}

// TestStuffQuadraticObjective checks P for (x + y)² in both column orders.
func TestStuffQuadraticObjective(t *testing.T) {
	x := newVar(t, expr.Shape{})
	y := newVar(t, expr.Shape{})
	l, err := affine.Add(affine.Variable(x.ID(), 1), affine.Variable(y.ID(), 1))
	require.NoError(t, err)
	l, err = affine.Add(l, affine.Constant([]float64{1}))
	require.NoError(t, err)
	q, err := quad.FromSquaredNorm(l)
	require.NoError(t, err)

	for _, order := range [][]*expr.Variable{{x, y}, {y, x}} {
		vm, err := stuffing.BuildVariableMap(order, nil)
		require.NoError(t, err)
		P, lin, err := stuffing.StuffQuadraticObjective(q, vm)
		require.NoError(t, err)
		require.Equal(t, 2.0, at(t, P, 0, 0))
		require.Equal(t, 2.0, at(t, P, 0, 1))
		require.Equal(t, 0.0, at(t, P, 1, 0))
		require.Equal(t, 2.0, at(t, P, 1, 1))
		require.Equal(t, []float64{2, 2}, lin)
	}

	vm, err := stuffing.BuildVariableMap([]*expr.Variable{x}, nil)
	require.NoError(t, err)
	_, _, err = stuffing.StuffQuadraticObjective(q, vm)
	require.ErrorIs(t, err, stuffing.ErrUnknownVariable)
}

// TestStuffProblem_EqualityScalar stuffs minimize x s.t. x == 5.
func TestStuffProblem_EqualityScalar(t *testing.T) {
	x := newVar(t, expr.Shape{})
	eq, err := expr.Eq(x, expr.Scalar(5))
	require.NoError(t, err)
	res, err := canon.CanonicalizeProblem(x, dcp.Minimize, []*expr.Constraint{eq})
	require.NoError(t, err)

	prob, err := stuffing.FromCanonical(res)
	require.NoError(t, err)
	require.Equal(t, stuffing.ConeDims{Zero: 1}, prob.Dims)
	require.Equal(t, 1, prob.Rows())
	require.Equal(t, 1, prob.Columns())
	require.Equal(t, []float64{1}, prob.A.ToDense())
	require.Equal(t, []float64{5}, prob.B)
	require.Equal(t, []float64{1}, prob.Q)
	require.False(t, prob.IsQuadratic())
}

// TestStuffProblem_GroupsByKind orders rows zero, nonneg, soc regardless of
// emission order.
func TestStuffProblem_GroupsByKind(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	tv := newVar(t, expr.Shape{})
	vm, err := stuffing.BuildVariableMap([]*expr.Variable{x, tv}, nil)
	require.NoError(t, err)
	lx := affine.Variable(x.ID(), 2)
	lt := affine.Variable(tv.ID(), 1)

	soc, err := canon.SOC(lt, lx)
	require.NoError(t, err)
	cones := []canon.Cone{soc, canon.Nonneg(lx), canon.Zero(lt)}

	prob, err := stuffing.StuffProblem(lt, nil, cones, vm)
	require.NoError(t, err)
	require.Equal(t, 1, prob.Dims.Zero)
	require.Equal(t, 2, prob.Dims.Nonneg)
	require.Equal(t, []int{3}, prob.Dims.SOC)
	require.Equal(t, 6, prob.Dims.Rows())
	require.Equal(t, 6, prob.Rows())

	// row 0: t == 0, rows 1-2: x ≥ 0, rows 3-5: (t, x) ∈ SOC
	require.Equal(t, 1.0, at(t, prob.A, 0, 2))
	require.Equal(t, -1.0, at(t, prob.A, 1, 0))
	require.Equal(t, -1.0, at(t, prob.A, 2, 1))
	require.Equal(t, -1.0, at(t, prob.A, 3, 2))
	require.Equal(t, -1.0, at(t, prob.A, 4, 0))
	require.Equal(t, -1.0, at(t, prob.A, 5, 1))
	require.Equal(t, []float64{0, 0, 1}, prob.Q)
}

// TestStuffProblem_ExpInterleaved checks the (xᵢ, yᵢ, zᵢ) row order.
func TestStuffProblem_ExpInterleaved(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	z := newVar(t, expr.Shape{2})
	vm, err := stuffing.BuildVariableMap([]*expr.Variable{x, z}, nil)
	require.NoError(t, err)

	cone, err := canon.Exp(affine.Variable(x.ID(), 2), affine.Constant([]float64{1, 1}), affine.Variable(z.ID(), 2))
	require.NoError(t, err)
	pow, err := canon.Power(affine.Variable(z.ID(), 2), affine.Constant([]float64{1, 1}), affine.Variable(x.ID(), 2), 0.25)
	require.NoError(t, err)

	obj := affine.Variable(z.ID(), 2).Sum()
	prob, err := stuffing.StuffProblem(obj, nil, []canon.Cone{pow, cone}, vm)
	require.NoError(t, err)
	require.Equal(t, 2, prob.Dims.Exp)
	require.Equal(t, []float64{0.25, 0.25}, prob.Dims.Power)
	require.Equal(t, 12, prob.Rows())

	// exp rows: (x0, 1, z0), (x1, 1, z1)
	require.Equal(t, -1.0, at(t, prob.A, 0, 0))
	require.Equal(t, 1.0, prob.B[1])
	require.Equal(t, -1.0, at(t, prob.A, 2, 2))
	require.Equal(t, -1.0, at(t, prob.A, 3, 1))
	require.Equal(t, -1.0, at(t, prob.A, 5, 3))
	// power rows follow: (z0, 1, x0)
	require.Equal(t, -1.0, at(t, prob.A, 6, 2))
	require.Equal(t, 1.0, prob.B[7])
	require.Equal(t, -1.0, at(t, prob.A, 8, 0))
}

// TestStuffProblem_Quadratic uses the QP objective of a canonical result.
func TestStuffProblem_Quadratic(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	d, err := expr.Sub(x, expr.Vector(1, 2))
	require.NoError(t, err)
	res, err := canon.CanonicalizeProblem(expr.SumSquares(d), dcp.Minimize, nil)
	require.NoError(t, err)

	prob, err := stuffing.FromCanonical(res)
	require.NoError(t, err)
	require.True(t, prob.IsQuadratic())
	require.True(t, prob.P.Equals(sparse.Identity(2).Scale(2), sparse.DefaultTolerance))
	require.Equal(t, []float64{-2, -4}, prob.Q)
	require.Zero(t, prob.Rows())
}

// TestConeDims_JSON pins the wire names.
func TestConeDims_JSON(t *testing.T) {
	d := stuffing.ConeDims{Zero: 1, Nonneg: 2, SOC: []int{3}, Exp: 1, Power: []float64{0.5}}
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `{"zero":1,"nonneg":2,"soc":[3],"exp":1,"power":[0.5]}`, string(raw))
	require.Equal(t, 12, d.Rows())
	require.Equal(t, "zero=1 nonneg=2 soc=[3] exp=1 power=[0.5]", d.String())
}
