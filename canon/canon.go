// SPDX-License-Identifier: MIT

package canon

import (
	"fmt"

	"github.com/katalvlaran/convex/affine"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/sparse"
)

// Canonicalizer accumulates cones and auxiliary variables across the
// expressions it lowers. It is single-use per problem and not safe for
// concurrent use.
type Canonicalizer struct {
	opts  Options
	cones []Cone
	aux   []*expr.Variable
	memo  map[expr.Expr]*affine.Expr
}

// New returns an empty Canonicalizer.
func New(opts ...Option) *Canonicalizer {
	return &Canonicalizer{opts: gatherOptions(opts...), memo: make(map[expr.Expr]*affine.Expr)}
}

// Cones returns the cone constraints emitted so far, in emission order.
func (c *Canonicalizer) Cones() []Cone { return append([]Cone(nil), c.cones...) }

// Aux returns the auxiliary variables created so far, in creation order.
func (c *Canonicalizer) Aux() []*expr.Variable { return append([]*expr.Variable(nil), c.aux...) }

// Canonicalize lowers e to affine form (Size(e) rows, column-major).
// Errors: ErrUnsupported, expr.ErrUnknownKind, affine/sparse errors.
func (c *Canonicalizer) Canonicalize(e expr.Expr) (*affine.Expr, error) {
	if l, ok := c.memo[e]; ok {
		return l, nil
	}
	l, err := c.lower(e)
	if err != nil {
		return nil, err
	}
	c.memo[e] = l

	return l, nil
}

// Constraint lowers a user constraint into cones.
func (c *Canonicalizer) Constraint(con *expr.Constraint) error {
	switch con.Kind() {
	case expr.ConstraintEq:
		l, err := c.Canonicalize(con.Expr())
		if err != nil {
			return err
		}
		c.emit(Zero(l))
	case expr.ConstraintIneq:
		l, err := c.Canonicalize(con.Expr())
		if err != nil {
			return err
		}
		c.emit(Nonneg(l))
	case expr.ConstraintSOC:
		t, err := c.Canonicalize(con.T())
		if err != nil {
			return err
		}
		x, err := c.Canonicalize(con.X())
		if err != nil {
			return err
		}
		cone, err := SOC(t, x)
		if err != nil {
			return err
		}
		c.emit(cone)
	default:
		return canonErrorf("constraint", fmt.Errorf("%s: %w", con.Kind(), expr.ErrUnknownKind))
	}

	return nil
}

func (c *Canonicalizer) emit(cones ...Cone) { c.cones = append(c.cones, cones...) }

// newAux allocates an auxiliary variable of the given size.
func (c *Canonicalizer) newAux(size int, nonneg bool) (*expr.Variable, *affine.Expr) {
	opts := []expr.Option{expr.Named(fmt.Sprintf("aux%d", len(c.aux)))}
	if nonneg {
		opts = append(opts, expr.Nonneg())
	}
	if c.opts.Allocator != nil {
		opts = append(opts, expr.WithAllocator(c.opts.Allocator))
	}
	shape := expr.Shape{size}
	if size == 1 {
		shape = expr.Shape{}
	}
	v := expr.Must(expr.NewVariable(shape, opts...))
	c.aux = append(c.aux, v)

	return v, affine.Variable(v.ID(), size)
}

func (c *Canonicalizer) lower(e expr.Expr) (*affine.Expr, error) {
	switch t := e.(type) {
	case *expr.Variable:
		return affine.Variable(t.ID(), t.Size()), nil
	case *expr.Constant:
		return affine.Constant(t.Value().Flatten()), nil
	case *expr.Node:
		if expr.IsConstantTree(t) {
			vals, err := expr.Eval(t, nil)
			if err != nil {
				return nil, canonErrorf(t.Kind().String(), err)
			}

			return affine.Constant(vals), nil
		}
		if t.Kind().IsAtom() {
			return c.lowerAtom(t)
		}

		return c.lowerAffine(t)
	}

	return nil, canonErrorf("lower", fmt.Errorf("%T: %w", e, expr.ErrUnknownKind))
}

// broadcastTo lifts l (lowered from shape in) to the broadcast shape out.
func broadcastTo(l *affine.Expr, in, out expr.Shape) (*affine.Expr, error) {
	if in.Size() == out.Size() {
		return l, nil
	}
	if in.Size() == 1 {
		return l.Broadcast(out.Size())
	}

	return l.LeftMul(selection(expr.BroadcastPositions(out, in), in.Size()))
}

// selection returns S with S[i, src[i]] = 1.
func selection(src []int, inSize int) *sparse.CSC {
	b := sparse.NewBuilder(len(src), inSize, len(src))
	for i, j := range src {
		b.Add(i, j, 1)
	}

	return mustBuild(b)
}

// placement returns P with P[dst[i], i] = 1.
func placement(dst []int, outSize int) *sparse.CSC {
	b := sparse.NewBuilder(outSize, len(dst), len(dst))
	for i, r := range dst {
		b.Add(r, i, 1)
	}

	return mustBuild(b)
}

func mustBuild(b *sparse.Builder) *sparse.CSC {
	m, err := b.Build()
	if err != nil {
		panic(err) // indices come from the shape helpers and are always in range
	}

	return m
}

// constValue folds a variable-free subtree.
func constValue(e expr.Expr) ([]float64, error) {
	return expr.Eval(e, nil)
}

func (c *Canonicalizer) lowerArgs(n *expr.Node) ([]*affine.Expr, error) {
	out := make([]*affine.Expr, len(n.Args()))
	for i, a := range n.Args() {
		l, err := c.Canonicalize(a)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}

	return out, nil
}

func (c *Canonicalizer) lowerAffine(n *expr.Node) (*affine.Expr, error) {
	op := n.Kind().String()
	args := n.Args()
	switch n.Kind() {
	case expr.KindAdd:
		ls, err := c.lowerArgs(n)
		if err != nil {
			return nil, err
		}
		a, err := broadcastTo(ls[0], args[0].Shape(), n.Shape())
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		b, err := broadcastTo(ls[1], args[1].Shape(), n.Shape())
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		sum, err := affine.Add(a, b)
		if err != nil {
			return nil, canonErrorf(op, err)
		}

		return sum, nil

	case expr.KindNeg:
		l, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}

		return l.Neg(), nil

	case expr.KindMul, expr.KindDiv:
		return c.lowerScale(n)

	case expr.KindMatMul:
		return c.lowerMatMul(n)

	case expr.KindSum:
		l, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		if n.Axis() == expr.NoAxis {
			return l.Sum(), nil
		}
		in := args[0].Shape()
		p := placement(expr.SumAxisPositions(in, n.Axis()), n.Shape().Size())

		return wrap(op)(l.LeftMul(p))

	case expr.KindReshape:
		return c.Canonicalize(args[0])

	case expr.KindIndex:
		l, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		s := selection(expr.IndexPositions(args[0].Shape(), n.Indices()), args[0].Shape().Size())

		return wrap(op)(l.LeftMul(s))

	case expr.KindVStack, expr.KindHStack:
		ls, err := c.lowerArgs(n)
		if err != nil {
			return nil, err
		}
		shapes := make([]expr.Shape, len(args))
		for i, a := range args {
			shapes[i] = a.Shape()
		}
		pos := expr.StackPositions(shapes, n.Shape(), n.Kind() == expr.KindVStack)
		acc := affine.Zero(n.Shape().Size())
		for k, l := range ls {
			placed, err := l.LeftMul(placement(pos[k], n.Shape().Size()))
			if err != nil {
				return nil, canonErrorf(op, err)
			}
			if acc, err = affine.Add(acc, placed); err != nil {
				return nil, canonErrorf(op, err)
			}
		}

		return acc, nil

	case expr.KindTranspose:
		if args[0].Shape().IsMatrix() {
			return nil, unsupportedf(op, "transpose of a non-constant matrix %s", args[0].Shape())
		}

		return c.Canonicalize(args[0])

	case expr.KindTrace, expr.KindDiag:
		return nil, unsupportedf(op, "%s of a non-constant argument", op)

	case expr.KindCumsum:
		l, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		size := args[0].Shape().Size()
		b := sparse.NewBuilder(size, size, size)
		for _, p := range expr.CumsumPairs(args[0].Shape(), n.Axis()) {
			b.Add(p[0], p[1], 1)
		}

		return wrap(op)(l.LeftMul(mustBuild(b)))
	}

	return nil, canonErrorf(op, expr.ErrUnknownKind)
}

// wrap tags the error of an (affine, error) result with op.
func wrap(op string) func(*affine.Expr, error) (*affine.Expr, error) {
	return func(l *affine.Expr, err error) (*affine.Expr, error) {
		if err != nil {
			return nil, canonErrorf(op, err)
		}

		return l, nil
	}
}

// lowerScale handles elementwise mul/div with exactly one constant side (the
// denominator for div).
func (c *Canonicalizer) lowerScale(n *expr.Node) (*affine.Expr, error) {
	op := n.Kind().String()
	a, b := n.Args()[0], n.Args()[1]
	varSide, constSide := a, b
	switch {
	case expr.IsConstantTree(b):
	case n.Kind() == expr.KindMul && expr.IsConstantTree(a):
		varSide, constSide = b, a
	case n.Kind() == expr.KindDiv:
		return nil, unsupportedf(op, "division by a non-constant %s", b)
	default:
		return nil, unsupportedf(op, "product of non-constant operands %s and %s", a, b)
	}
	vals, err := constValue(constSide)
	if err != nil {
		return nil, canonErrorf(op, err)
	}
	out := n.Shape()
	d := make([]float64, out.Size())
	for i, src := range expr.BroadcastPositions(out, constSide.Shape()) {
		d[i] = vals[src]
		if n.Kind() == expr.KindDiv {
			if d[i] == 0 {
				return nil, unsupportedf(op, "division by zero")
			}
			d[i] = 1 / d[i]
		}
	}
	l, err := c.Canonicalize(varSide)
	if err != nil {
		return nil, err
	}
	if l, err = broadcastTo(l, varSide.Shape(), out); err != nil {
		return nil, canonErrorf(op, err)
	}

	return wrap(op)(l.LeftMul(sparse.Diag(d)))
}

// lowerMatMul handles a constant operand on either side. With the operands
// viewed as m×k and k×n matrices and data flattened column-major:
//
//	vec(A·X) = (I_n ⊗ A)·vec(X)      vec(X·B) = (Bᵀ ⊗ I_m)·vec(X)
func (c *Canonicalizer) lowerMatMul(n *expr.Node) (*affine.Expr, error) {
	op := n.Kind().String()
	a, b := n.Args()[0], n.Args()[1]
	m, k, nc, err := expr.MatMulDims(a.Shape(), b.Shape())
	if err != nil {
		return nil, canonErrorf(op, err)
	}
	var coef *sparse.CSC
	var varSide expr.Expr
	switch {
	case expr.IsConstantTree(a):
		vals, err := constValue(a)
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		am, err := sparse.FromDense(vals, m, k)
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		coef, varSide = sparse.Kron(sparse.Identity(nc), am), b
	case expr.IsConstantTree(b):
		vals, err := constValue(b)
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		bm, err := sparse.FromDense(vals, k, nc)
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		coef, varSide = sparse.Kron(bm.Transpose(), sparse.Identity(m)), a
	default:
		return nil, unsupportedf(op, "product of non-constant operands %s and %s", a, b)
	}
	l, err := c.Canonicalize(varSide)
	if err != nil {
		return nil, err
	}

	return wrap(op)(l.LeftMul(coef))
}
