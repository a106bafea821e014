// SPDX-License-Identifier: MIT
package canon_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/convex/canon"
	"github.com/katalvlaran/convex/dcp"
	"github.com/katalvlaran/convex/expr"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func newVar(t *testing.T, shape expr.Shape, opts ...expr.Option) *expr.Variable {
	t.Helper()
	v, err := expr.NewVariable(shape, opts...)
	require.NoError(t, err)

	return v
}

// conesHold checks every cone at the given point within tol.
func conesHold(t *testing.T, cones []canon.Cone, vals map[expr.ID][]float64) {
	t.Helper()
	for k, c := range cones {
		args := make([][]float64, len(c.Args))
		for i, a := range c.Args {
			v, err := a.Value(vals)
			require.NoError(t, err)
			args[i] = v
		}
		switch c.Kind {
		case canon.ConeZero:
			for _, v := range args[0] {
				require.InDelta(t, 0, v, 1e-7, "cone %d", k)
			}
		case canon.ConeNonneg:
			for _, v := range args[0] {
				require.GreaterOrEqual(t, v, -1e-7, "cone %d", k)
			}
		case canon.ConeSOC:
			norm := 0.0
			for _, v := range args[1] {
				norm += v * v
			}
			require.LessOrEqual(t, math.Sqrt(norm), args[0][0]+1e-7, "cone %d", k)
		case canon.ConeExp:
			for i := range args[0] {
				x, y, z := args[0][i], args[1][i], args[2][i]
				require.Greater(t, y, 0.0, "cone %d", k)
				require.LessOrEqual(t, y*math.Exp(x/y), z+1e-7*math.Max(1, math.Abs(z)), "cone %d", k)
			}
		case canon.ConePower:
			for i := range args[0] {
				x, y, z := args[0][i], args[1][i], args[2][i]
				lhs := math.Pow(x, c.Alpha) * math.Pow(y, 1-c.Alpha)
				require.GreaterOrEqual(t, lhs, math.Abs(z)-1e-7, "cone %d", k)
			}
		}
	}
}

// TestCanonicalize_AffineSoundness compares lowered values with direct evaluation.
func TestCanonicalize_AffineSoundness(t *testing.T) {
	x := newVar(t, expr.Shape{3})
	X := newVar(t, expr.Shape{2, 3})
	A := expr.Must(expr.Matrix(2, 3, []float64{1, 4, 2, 5, 3, 6}))
	B := expr.Must(expr.Matrix(3, 2, []float64{1, 0, -1, 2, 1, 0}))
	vals := map[expr.ID][]float64{
		x.ID(): {1, -2, 3},
		X.ID(): {1, 2, 3, 4, 5, 6},
	}

	cases := map[string]expr.Expr{
		"matmul-left":   expr.Must(expr.MatMul(A, x)),
		"matmul-right":  expr.Must(expr.MatMul(X, expr.Vector(1, 0, -1))),
		"matmul-matrix": expr.Must(expr.MatMul(X, B)),
		"vector-matrix": expr.Must(expr.MatMul(expr.Vector(2, -1), X)),
		"sum":           expr.Sum(X),
		"sum-axis0":     expr.Must(expr.SumAxis(X, 0)),
		"sum-axis1":     expr.Must(expr.SumAxis(X, 1)),
		"broadcast-add": expr.Must(expr.Add(X, x)),
		"scalar-add":    expr.Must(expr.Add(x, expr.Scalar(4))),
		"sub":           expr.Must(expr.Sub(x, expr.Vector(1, 1, 1))),
		"mul-vector":    expr.Must(expr.Mul(expr.Vector(1, 2, 3), x)),
		"mul-scalar":    expr.Must(expr.Mul(X, expr.Scalar(-2))),
		"div":           expr.Must(expr.Div(x, expr.Scalar(4))),
		"reshape":       expr.Must(expr.Reshape(X, expr.Shape{3, 2})),
		"index":         expr.Must(expr.IndexExpr(X, expr.At(1), expr.Range(0, 2))),
		"index-all":     expr.Must(expr.IndexExpr(X, expr.All(), expr.At(2))),
		"vstack":        expr.Must(expr.VStack(x, expr.Vector(7, 8))),
		"vstack-matrix": expr.Must(expr.VStack(X, x)),
		"hstack":        expr.Must(expr.HStack(X, expr.Must(expr.Reshape(expr.Vector(9, 10), expr.Shape{2, 1})))),
		"cumsum":        expr.Must(expr.Cumsum(x, 0)),
		"cumsum-axis1":  expr.Must(expr.Cumsum(X, 1)),
		"transpose-vec": expr.Transpose(x),
		"folded":        expr.Must(expr.Add(expr.Must(expr.MatMul(A, x)), expr.Must(expr.MatMul(A, expr.Vector(1, 1, 1))))),
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			c := canon.New()
			l, err := c.Canonicalize(e)
			require.NoError(t, err)
			require.Equal(t, e.Shape().Size(), l.Rows())
			require.Empty(t, c.Aux())
			require.Empty(t, c.Cones())

			want, err := expr.Eval(e, vals)
			require.NoError(t, err)
			got, err := l.Value(vals)
			require.NoError(t, err)
			require.InDeltaSlice(t, want, got, tol)
		})
	}
}

// TestCanonicalize_AtomSoundness sets each aux variable to the atom's value
// and checks both the lowered value and every emitted cone.
func TestCanonicalize_AtomSoundness(t *testing.T) {
	x := newVar(t, expr.Shape{3})
	xp := newVar(t, expr.Shape{3})
	y := newVar(t, expr.Shape{2})
	vals := map[expr.ID][]float64{
		x.ID():  {1, -2, 3},
		xp.ID(): {1, 2, 4},
		y.ID():  {1, 2},
	}
	P := expr.Must(expr.Matrix(2, 2, []float64{2, 1, 1, 3}))

	cases := []struct {
		name string
		e    expr.Expr
		aux  [][]float64
	}{
		{"norm1", expr.Norm1(x), [][]float64{{1, 2, 3}}},
		{"abs", expr.Abs(x), [][]float64{{1, 2, 3}}},
		{"norm2", expr.Norm2(x), [][]float64{{math.Sqrt(14)}}},
		{"normInf", expr.NormInf(x), [][]float64{{3}}},
		{"pos", expr.Pos(x), [][]float64{{1, 0, 3}}},
		{"negPart", expr.NegPart(x), [][]float64{{0, 2, 0}}},
		{"maximum", expr.Must(expr.Maximum(x, expr.Scalar(0))), [][]float64{{1, 0, 3}}},
		{"minimum", expr.Must(expr.Minimum(x, expr.Scalar(0))), [][]float64{{0, -2, 0}}},
		{"sumSquares", expr.SumSquares(x), [][]float64{{14}}},
		{"quadForm", expr.Must(expr.QuadForm(y, P)), [][]float64{{2 + 4 + 12}}},
		{"quadOverLin", expr.Must(expr.QuadOverLin(y, expr.Scalar(2))), [][]float64{{2.5}}},
		{"exp", expr.Exp(x), [][]float64{{math.E, math.Exp(-2), math.Exp(3)}}},
		{"log", expr.Log(xp), [][]float64{{0, math.Log(2), math.Log(4)}}},
		{"entropy", expr.Entropy(xp), [][]float64{{0, -2 * math.Log(2), -4 * math.Log(4)}}},
		{"sqrt", expr.Sqrt(xp), [][]float64{{1, math.Sqrt2, 2}}},
		{"power3", expr.Must(expr.Power(xp, 3)), [][]float64{{1, 8, 64}}},
		{"power2", expr.Must(expr.Power(x, 2)), [][]float64{{1, 4, 9}}},
		{"powerNeg", expr.Must(expr.Power(xp, -1)), [][]float64{{1, 0.5, 0.25}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := canon.New()
			l, err := c.Canonicalize(tc.e)
			require.NoError(t, err)
			aux := c.Aux()
			require.Len(t, aux, len(tc.aux))

			all := map[expr.ID][]float64{}
			for id, v := range vals {
				all[id] = v
			}
			for i, v := range aux {
				require.Equal(t, len(tc.aux[i]), v.Size())
				all[v.ID()] = tc.aux[i]
			}

			want, err := expr.Eval(tc.e, vals)
			require.NoError(t, err)
			got, err := l.Value(all)
			require.NoError(t, err)
			require.InDeltaSlice(t, want, got, 1e-9)
			conesHold(t, c.Cones(), all)
		})
	}
}

// TestCanonicalize_PowerShortcuts covers p = 0 and p = 1.
func TestCanonicalize_PowerShortcuts(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	c := canon.New()

	one, err := c.Canonicalize(expr.Must(expr.Power(x, 0)))
	require.NoError(t, err)
	require.True(t, one.IsConstant())
	require.Equal(t, []float64{1, 1}, one.ConstantPart())

	id, err := c.Canonicalize(expr.Must(expr.Power(x, 1)))
	require.NoError(t, err)
	require.Equal(t, []expr.ID{x.ID()}, id.IDs())
	require.Empty(t, c.Aux())
}

// TestCanonicalize_ConeShapes pins the cone layout of each reformulation.
func TestCanonicalize_ConeShapes(t *testing.T) {
	x := newVar(t, expr.Shape{3})
	cases := []struct {
		name  string
		e     expr.Expr
		kinds []canon.ConeKind
		rows  []int
	}{
		{"norm1", expr.Norm1(x), []canon.ConeKind{canon.ConeNonneg, canon.ConeNonneg}, []int{3, 3}},
		{"normInf", expr.NormInf(x), []canon.ConeKind{canon.ConeNonneg, canon.ConeNonneg}, []int{3, 3}},
		{"norm2", expr.Norm2(x), []canon.ConeKind{canon.ConeSOC}, []int{4}},
		{"sumSquares", expr.SumSquares(x), []canon.ConeKind{canon.ConeSOC}, []int{5}},
		{"exp", expr.Exp(x), []canon.ConeKind{canon.ConeExp}, []int{9}},
		{"sqrt", expr.Sqrt(x), []canon.ConeKind{canon.ConePower}, []int{9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := canon.New()
			_, err := c.Canonicalize(tc.e)
			require.NoError(t, err)
			cones := c.Cones()
			require.Len(t, cones, len(tc.kinds))
			for i, cone := range cones {
				require.Equal(t, tc.kinds[i], cone.Kind)
				require.Equal(t, tc.rows[i], cone.Rows())
			}
		})
	}

	c := canon.New()
	_, err := c.Canonicalize(expr.Sqrt(x))
	require.NoError(t, err)
	require.InDelta(t, 0.5, c.Cones()[0].Alpha, 0)
	require.Equal(t, "power(9, α=0.5)", c.Cones()[0].String())
}

// TestCanonicalize_PreOrderAux checks that an atom's aux precedes its
// arguments' aux and that equal trees give equal layouts.
func TestCanonicalize_PreOrderAux(t *testing.T) {
	layout := func() ([]int, []string, []canon.ConeKind) {
		x := newVar(t, expr.Shape{3})
		c := canon.New()
		_, err := c.Canonicalize(expr.Norm2(expr.Abs(x)))
		require.NoError(t, err)
		var sizes []int
		var names []string
		for _, v := range c.Aux() {
			sizes = append(sizes, v.Size())
			names = append(names, v.Name())
		}
		var kinds []canon.ConeKind
		for _, cone := range c.Cones() {
			kinds = append(kinds, cone.Kind)
		}

		return sizes, names, kinds
	}

	sizes, names, kinds := layout()
	require.Equal(t, []int{1, 3}, sizes)
	require.Equal(t, []string{"aux0", "aux1"}, names)
	require.Equal(t, []canon.ConeKind{canon.ConeNonneg, canon.ConeNonneg, canon.ConeSOC}, kinds)

	sizes2, names2, kinds2 := layout()
	require.Equal(t, sizes, sizes2)
	require.Equal(t, names, names2)
	require.Equal(t, kinds, kinds2)
}

// TestCanonicalize_SharedSubtree lowers a repeated node once.
func TestCanonicalize_SharedSubtree(t *testing.T) {
	x := newVar(t, expr.Shape{3})
	n := expr.Norm2(x)
	c := canon.New()
	l, err := c.Canonicalize(expr.Must(expr.Add(n, n)))
	require.NoError(t, err)
	require.Len(t, c.Aux(), 1)
	require.Len(t, c.Cones(), 1)

	aux := c.Aux()[0]
	got, err := l.Value(map[expr.ID][]float64{aux.ID(): {2}})
	require.NoError(t, err)
	require.Equal(t, []float64{4}, got)
}

// TestCanonicalize_Allocator draws aux ids from a private allocator.
func TestCanonicalize_Allocator(t *testing.T) {
	var alloc expr.Allocator
	x := newVar(t, expr.Shape{2})
	c := canon.New(canon.WithAllocator(&alloc))
	_, err := c.Canonicalize(expr.Norm1(x))
	require.NoError(t, err)
	require.Equal(t, expr.ID(1), c.Aux()[0].ID())
}

// TestCanonicalize_Unsupported covers the constructs refused in canonical form.
func TestCanonicalize_Unsupported(t *testing.T) {
	x := newVar(t, expr.Shape{3})
	y := newVar(t, expr.Shape{3})
	X := newVar(t, expr.Shape{2, 2})
	notPSD := expr.Must(expr.Matrix(2, 2, []float64{1, 0, 0, -1}))
	z := newVar(t, expr.Shape{2})

	cases := map[string]expr.Expr{
		"mul":       expr.Must(expr.Mul(x, y)),
		"matmul":    expr.Must(expr.MatMul(X, X)),
		"div-var":   expr.Must(expr.Div(x, y)),
		"div-zero":  expr.Must(expr.Div(x, expr.Scalar(0))),
		"transpose": expr.Transpose(X),
		"trace":     expr.Must(expr.Trace(X)),
		"diag":      expr.Must(expr.Diag(X)),
		"quadForm":  expr.Must(expr.QuadForm(z, notPSD)),
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := canon.New().Canonicalize(e)
			require.ErrorIs(t, err, dcp.ErrDCP)
		})
	}

	_, err := canon.New().Canonicalize(expr.Must(expr.Mul(x, y)))
	require.ErrorIs(t, err, canon.ErrUnsupported)
}

// TestConstraint_Kinds maps each constraint kind onto its cone.
func TestConstraint_Kinds(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	tv := newVar(t, expr.Shape{})

	eq, err := expr.Eq(x, expr.Vector(1, 2))
	require.NoError(t, err)
	le, err := expr.Le(x, expr.Scalar(3))
	require.NoError(t, err)
	soc, err := expr.SOC(tv, x)
	require.NoError(t, err)

	c := canon.New()
	for _, con := range []*expr.Constraint{eq, le, soc} {
		require.NoError(t, c.Constraint(con))
	}
	cones := c.Cones()
	require.Len(t, cones, 3)
	require.Equal(t, canon.ConeZero, cones[0].Kind)
	require.Equal(t, canon.ConeNonneg, cones[1].Kind)
	require.Equal(t, canon.ConeSOC, cones[2].Kind)
	require.Equal(t, 3, cones[2].Rows())

	// x ≤ 3 is stored as 3 − x ≥ 0
	slack, err := cones[1].Args[0].Value(map[expr.ID][]float64{x.ID(): {1, 5}})
	require.NoError(t, err)
	require.Equal(t, []float64{2, -2}, slack)
}

// TestCone_Constructors checks argument validation.
func TestCone_Constructors(t *testing.T) {
	x := newVar(t, expr.Shape{2})
	c := canon.New()
	lx, err := c.Canonicalize(x)
	require.NoError(t, err)

	_, err = canon.SOC(lx, lx)
	require.Error(t, err)
	_, err = canon.Power(lx, lx, lx, 1)
	require.ErrorIs(t, err, canon.ErrUnsupported)
	cone, err := canon.Exp(lx, lx, lx)
	require.NoError(t, err)
	require.Equal(t, 6, cone.Rows())
	require.Equal(t, "exp(6)", cone.String())
}

// TestOptions_Panics covers option validation.
func TestOptions_Panics(t *testing.T) {
	require.Panics(t, func() { canon.WithEigenTolerance(0) })
	require.Panics(t, func() { canon.WithEigenTolerance(math.NaN()) })
	require.Panics(t, func() { canon.WithEigenMaxIter(0) })
	require.Panics(t, func() { canon.WithAllocator(nil) })
	require.NotPanics(t, func() { canon.WithEigenTolerance(1e-6) })
}
