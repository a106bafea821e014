// SPDX-License-Identifier: MIT
package dcp_test

import (
	"testing"

	"github.com/katalvlaran/convex/dcp"
	"github.com/katalvlaran/convex/expr"
	"github.com/stretchr/testify/require"
)

var curvatures = []dcp.Curvature{dcp.Constant, dcp.Affine, dcp.Convex, dcp.Concave, dcp.Unknown}

// TestLattice_AffineIffConvexAndConcave checks isAffine ⟺ isConvex ∧ isConcave.
func TestLattice_AffineIffConvexAndConcave(t *testing.T) {
	for _, c := range curvatures {
		require.Equal(t, c.IsAffine(), c.IsConvex() && c.IsConcave(), c.String())
	}
}

// TestAddCurvature_ConstantIdentity checks that adding a Constant is the identity.
func TestAddCurvature_ConstantIdentity(t *testing.T) {
	for _, c := range curvatures {
		require.Equal(t, c, dcp.AddCurvature(c, dcp.Constant))
		require.Equal(t, c, dcp.AddCurvature(dcp.Constant, c))
		require.Equal(t, dcp.AddCurvature(c, dcp.Affine), dcp.AddCurvature(dcp.Affine, c))
	}
	require.Equal(t, dcp.Unknown, dcp.AddCurvature(dcp.Convex, dcp.Concave))
	require.Equal(t, dcp.Convex, dcp.AddCurvature(dcp.Convex, dcp.Convex))
}

// TestCurvature_IdempotentUnderConstantAdd checks the node-level law.
func TestCurvature_IdempotentUnderConstantAdd(t *testing.T) {
	x := expr.Must(expr.NewVariable(expr.Shape{3}))
	for _, e := range []expr.Expr{x, expr.Norm2(x), expr.Log(x), expr.Must(expr.Mul(expr.Abs(x), expr.Log(x)))} {
		before, err := dcp.CurvatureOf(e)
		require.NoError(t, err)
		after, err := dcp.CurvatureOf(expr.Must(expr.Add(e, expr.Scalar(2))))
		require.NoError(t, err)
		require.Equal(t, before, after, e.String())
	}
}

// TestSignTables covers the sign algebra.
func TestSignTables(t *testing.T) {
	require.Equal(t, dcp.Nonneg, dcp.AddSign(dcp.Zero, dcp.Nonneg))
	require.Equal(t, dcp.UnknownSign, dcp.AddSign(dcp.Nonneg, dcp.Nonpos))
	require.Equal(t, dcp.Nonpos, dcp.NegateSign(dcp.Nonneg))
	require.Equal(t, dcp.Zero, dcp.MulSign(dcp.Zero, dcp.UnknownSign))
	require.Equal(t, dcp.Nonneg, dcp.MulSign(dcp.Nonpos, dcp.Nonpos))
	require.Equal(t, dcp.Nonpos, dcp.MulSign(dcp.Nonneg, dcp.Nonpos))
	require.Equal(t, dcp.UnknownSign, dcp.MulSign(dcp.Nonneg, dcp.UnknownSign))
}

// TestCurvature_Table walks the composition rules.
func TestCurvature_Table(t *testing.T) {
	x := expr.Must(expr.NewVariable(expr.Shape{3}))
	y := expr.Must(expr.NewVariable(expr.Shape{3}))
	P := expr.Must(expr.Matrix(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}))

	cases := []struct {
		name string
		e    expr.Expr
		want dcp.Curvature
	}{
		{"variable", x, dcp.Affine},
		{"constant", expr.Vector(1, 2, 3), dcp.Constant},
		{"add affine", expr.Must(expr.Add(x, y)), dcp.Affine},
		{"neg convex", expr.Neg(expr.Norm1(x)), dcp.Concave},
		{"scale convex by positive", expr.Must(expr.Mul(expr.Scalar(2), expr.Norm2(x))), dcp.Convex},
		{"scale convex by negative", expr.Must(expr.Mul(expr.Scalar(-2), expr.Norm2(x))), dcp.Concave},
		{"scale convex by mixed", expr.Must(expr.Mul(expr.Vector(1, -1, 1), expr.Abs(x))), dcp.Unknown},
		{"div by constant", expr.Must(expr.Div(expr.Exp(x), expr.Scalar(4))), dcp.Convex},
		{"div by variable", expr.Must(expr.Div(expr.Scalar(1), x)), dcp.Unknown},
		{"var times var", expr.Must(expr.Mul(x, y)), dcp.Unknown},
		{"matmul constant", expr.Must(expr.MatMul(P, x)), dcp.Affine},
		{"matmul variables", expr.Must(expr.MatMul(x, y)), dcp.Unknown},
		{"sum of convex", expr.Sum(expr.Abs(x)), dcp.Convex},
		{"stack convex affine", expr.Must(expr.VStack(expr.Abs(x), y)), dcp.Convex},
		{"stack convex concave", expr.Must(expr.VStack(expr.Abs(x), expr.Log(y))), dcp.Unknown},
		{"norm of convex", expr.Norm2(expr.Abs(x)), dcp.Unknown},
		{"pos of convex", expr.Pos(expr.Abs(x)), dcp.Convex},
		{"pos of concave", expr.Pos(expr.Log(x)), dcp.Unknown},
		{"negPart of concave", expr.NegPart(expr.Log(x)), dcp.Convex},
		{"maximum convex", expr.Must(expr.Maximum(expr.Abs(x), y)), dcp.Convex},
		{"maximum constants", expr.Must(expr.Maximum(expr.Scalar(1), expr.Scalar(2))), dcp.Constant},
		{"minimum concave", expr.Must(expr.Minimum(expr.Log(x), y)), dcp.Concave},
		{"quadForm", expr.Must(expr.QuadForm(x, P)), dcp.Convex},
		{"quadForm variable P", expr.Must(expr.QuadForm(x, expr.Must(expr.NewVariable(expr.Shape{3, 3})))), dcp.Unknown},
		{"quadOverLin", expr.Must(expr.QuadOverLin(x, expr.Scalar(1))), dcp.Convex},
		{"entropy", expr.Entropy(x), dcp.Concave},
		{"sqrt", expr.Sqrt(x), dcp.Concave},
		{"power 0.5", expr.Must(expr.Power(x, 0.5)), dcp.Concave},
		{"power 2", expr.Must(expr.Power(x, 2)), dcp.Convex},
		{"power -1", expr.Must(expr.Power(x, -1)), dcp.Convex},
		{"power 1 of convex", expr.Must(expr.Power(expr.Abs(x), 1)), dcp.Convex},
		{"power 0", expr.Must(expr.Power(x, 0)), dcp.Constant},
		{"log of convex", expr.Log(expr.Abs(x)), dcp.Unknown},
	}
	for _, tc := range cases {
		got, err := dcp.CurvatureOf(tc.e)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

// TestSign_Nodes covers attribute- and atom-derived signs.
func TestSign_Nodes(t *testing.T) {
	x := expr.Must(expr.NewVariable(expr.Shape{2}, expr.Nonneg()))
	z := expr.Must(expr.NewVariable(expr.Shape{2}))
	cases := []struct {
		e    expr.Expr
		want dcp.Sign
	}{
		{x, dcp.Nonneg},
		{z, dcp.UnknownSign},
		{expr.Neg(x), dcp.Nonpos},
		{expr.Vector(0, 0), dcp.Zero},
		{expr.Vector(1, -1), dcp.UnknownSign},
		{expr.Norm2(z), dcp.Nonneg},
		{expr.Must(expr.Mul(expr.Scalar(-1), x)), dcp.Nonpos},
		{expr.Must(expr.Maximum(z, x)), dcp.Nonneg},
		{expr.Must(expr.Minimum(z, expr.Neg(x))), dcp.Nonpos},
		{expr.Log(x), dcp.UnknownSign},
	}
	for _, tc := range cases {
		got, err := dcp.SignOf(tc.e)
		require.NoError(t, err, tc.e.String())
		require.Equal(t, tc.want, got, tc.e.String())
	}
}

// TestCheckConstraint covers eq/ineq/soc validity.
func TestCheckConstraint(t *testing.T) {
	x := expr.Must(expr.NewVariable(expr.Shape{3}))
	one := expr.Scalar(1)

	require.NoError(t, dcp.CheckConstraint(expr.Must(expr.Eq(expr.Sum(x), one))))
	err := dcp.CheckConstraint(expr.Must(expr.Eq(expr.Norm2(x), one)))
	var de *dcp.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, "eq", de.Op)
	require.Equal(t, "convex", de.Got)

	// convex ≤ constant: stored 1 − norm ≥ 0, concave
	require.NoError(t, dcp.CheckConstraint(expr.Must(expr.Le(expr.Norm2(x), one))))
	// convex ≥ constant is not DCP
	require.ErrorIs(t, dcp.CheckConstraint(expr.Must(expr.Ge(expr.Norm2(x), one))), dcp.ErrDCP)
	// concave ≥ affine is fine
	require.NoError(t, dcp.CheckConstraint(expr.Must(expr.Ge(expr.Log(x), x))))

	require.NoError(t, dcp.CheckConstraint(expr.Must(expr.SOC(one, x))))
	require.ErrorIs(t, dcp.CheckConstraint(expr.Must(expr.SOC(expr.Norm1(x), x))), dcp.ErrDCP)
}

// TestCheckObjective covers sense and scalar checks.
func TestCheckObjective(t *testing.T) {
	x := expr.Must(expr.NewVariable(expr.Shape{3}))
	require.NoError(t, dcp.CheckObjective(expr.Norm1(x), dcp.Minimize))
	require.ErrorIs(t, dcp.CheckObjective(expr.Norm1(x), dcp.Maximize), dcp.ErrDCP)
	require.NoError(t, dcp.CheckObjective(expr.Sum(expr.Log(x)), dcp.Maximize))
	require.NoError(t, dcp.CheckObjective(expr.Sum(x), dcp.Maximize))
	require.ErrorIs(t, dcp.CheckObjective(x, dcp.Minimize), expr.ErrShape)

	err := dcp.CheckProblem(expr.Sum(x), dcp.Minimize, []*expr.Constraint{
		expr.Must(expr.Le(x, expr.Scalar(1))),
		expr.Must(expr.Eq(expr.Abs(x), expr.Scalar(1))),
	})
	require.ErrorIs(t, err, dcp.ErrDCP)
	require.Contains(t, err.Error(), "constraint 1")
}

// TestCurvature_ConstantSignFlips pins sign-aware scaling: a nonpositive
// constant factor flips convex to concave for mul, div and matmul on either side.
func TestCurvature_ConstantSignFlips(t *testing.T) {
	x := expr.Must(expr.NewVariable(expr.Shape{3}))
	neg := expr.Must(expr.Matrix(1, 3, []float64{-1, -2, -3}))

	cases := []struct {
		name string
		e    expr.Expr
		want dcp.Curvature
	}{
		{"mul left", expr.Must(expr.Mul(expr.Scalar(-2), expr.Norm2(x))), dcp.Concave},
		{"mul right", expr.Must(expr.Mul(expr.Norm2(x), expr.Scalar(-2))), dcp.Concave},
		{"div", expr.Must(expr.Div(expr.Norm2(x), expr.Scalar(-4))), dcp.Concave},
		{"matmul", expr.Must(expr.MatMul(neg, expr.Abs(x))), dcp.Concave},
		{"mul concave", expr.Must(expr.Mul(expr.Scalar(-3), expr.Sum(expr.Log(x)))), dcp.Convex},
		{"mul zero", expr.Must(expr.Mul(expr.Scalar(0), expr.Norm2(x))), dcp.Constant},
	}
	for _, tc := range cases {
		got, err := dcp.CurvatureOf(tc.e)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}

	flipped := expr.Must(expr.Mul(expr.Scalar(-2), expr.Norm2(x)))
	require.NoError(t, dcp.CheckObjective(flipped, dcp.Maximize))
	require.ErrorIs(t, dcp.CheckObjective(flipped, dcp.Minimize), dcp.ErrDCP)
}
