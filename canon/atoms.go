// SPDX-License-Identifier: MIT

package canon

import (
	"fmt"
	"math"

	"github.com/katalvlaran/convex/affine"
	"github.com/katalvlaran/convex/dcp"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/matrix"
	"github.com/katalvlaran/convex/sparse"
)

// lowerAtom introduces the auxiliary variable of n before lowering its
// arguments (pre-order), then emits the cones that tie them together.
func (c *Canonicalizer) lowerAtom(n *expr.Node) (*affine.Expr, error) {
	op := n.Kind().String()
	size := n.Shape().Size()
	args := n.Args()

	switch n.Kind() {
	case expr.KindNorm1, expr.KindAbs:
		argSize := args[0].Shape().Size()
		_, t := c.newAux(argSize, true)
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		if err := c.absBound(op, t, x); err != nil {
			return nil, err
		}
		if n.Kind() == expr.KindNorm1 {
			return t.Sum(), nil
		}

		return t, nil

	case expr.KindNormInf:
		_, t := c.newAux(1, true)
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		tb, err := t.Broadcast(x.Rows())
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		if err := c.absBound(op, tb, x); err != nil {
			return nil, err
		}

		return t, nil

	case expr.KindNorm2:
		_, t := c.newAux(1, true)
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		cone, err := SOC(t, x)
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		c.emit(cone)

		return t, nil

	case expr.KindPos, expr.KindNegPart:
		_, t := c.newAux(size, true)
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		if n.Kind() == expr.KindNegPart {
			x = x.Neg()
		}
		d, err := affine.Sub(t, x)
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		c.emit(Nonneg(d))

		return t, nil

	case expr.KindMaximum, expr.KindMinimum:
		_, t := c.newAux(size, false)
		for _, a := range args {
			x, err := c.Canonicalize(a)
			if err != nil {
				return nil, err
			}
			if x, err = broadcastTo(x, a.Shape(), n.Shape()); err != nil {
				return nil, canonErrorf(op, err)
			}
			var d *affine.Expr
			if n.Kind() == expr.KindMaximum {
				d, err = affine.Sub(t, x)
			} else {
				d, err = affine.Sub(x, t)
			}
			if err != nil {
				return nil, canonErrorf(op, err)
			}
			c.emit(Nonneg(d))
		}

		return t, nil

	case expr.KindSumSquares:
		_, t := c.newAux(1, true)
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}

		return t, c.rotatedSOC(op, t, affine.Constant([]float64{1}), x)

	case expr.KindQuadOverLin:
		_, t := c.newAux(1, true)
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		y, err := c.Canonicalize(args[1])
		if err != nil {
			return nil, err
		}

		return t, c.rotatedSOC(op, t, y, x)

	case expr.KindQuadForm:
		_, t := c.newAux(1, true)
		f, err := c.psdFactor(args[1])
		if err != nil {
			return nil, err
		}
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		fx, err := x.LeftMul(f)
		if err != nil {
			return nil, canonErrorf(op, err)
		}

		return t, c.rotatedSOC(op, t, affine.Constant([]float64{1}), fx)

	case expr.KindExp, expr.KindLog, expr.KindEntropy:
		_, t := c.newAux(size, false)
		x, err := c.Canonicalize(args[0])
		if err != nil {
			return nil, err
		}
		one := affine.Constant(ones(size))
		var cone Cone
		switch n.Kind() {
		case expr.KindExp:
			cone, err = Exp(x, one, t)
		case expr.KindLog:
			cone, err = Exp(t, one, x)
		default:
			cone, err = Exp(t, x, one)
		}
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		c.emit(cone)

		return t, nil

	case expr.KindSqrt:
		return c.lowerPower(n, 0.5)
	case expr.KindPower:
		return c.lowerPower(n, n.Exponent())
	}

	return nil, canonErrorf(op, expr.ErrUnknownKind)
}

// absBound emits t − x ≥ 0 and t + x ≥ 0.
func (c *Canonicalizer) absBound(op string, t, x *affine.Expr) error {
	lo, err := affine.Sub(t, x)
	if err != nil {
		return canonErrorf(op, err)
	}
	hi, err := affine.Add(t, x)
	if err != nil {
		return canonErrorf(op, err)
	}
	c.emit(Nonneg(lo), Nonneg(hi))

	return nil
}

// rotatedSOC emits ‖x‖² ≤ t·y as ‖[2x; t − y]‖₂ ≤ t + y.
func (c *Canonicalizer) rotatedSOC(op string, t, y, x *affine.Expr) error {
	lhs, err := affine.Add(t, y)
	if err != nil {
		return canonErrorf(op, err)
	}
	gap, err := affine.Sub(t, y)
	if err != nil {
		return canonErrorf(op, err)
	}
	body, err := affine.VStack(x.Scale(2), gap)
	if err != nil {
		return canonErrorf(op, err)
	}
	cone, err := SOC(lhs, body)
	if err != nil {
		return canonErrorf(op, err)
	}
	c.emit(cone)

	return nil
}

// lowerPower dispatches on the range of p:
//
//	p = 0      constant 1
//	p = 1      x
//	0 < p < 1  (x, 1, t) ∈ K_pow(p)          t ≤ x^p
//	p > 1      (t, 1, x) ∈ K_pow(1/p)        t ≥ |x|^p
//	p < 0      (t, x, 1) ∈ K_pow(1/(1−p))    t ≥ x^p
func (c *Canonicalizer) lowerPower(n *expr.Node, p float64) (*affine.Expr, error) {
	op := n.Kind().String()
	size := n.Shape().Size()
	switch p {
	case 0:
		return affine.Constant(ones(size)), nil
	case 1:
		return c.Canonicalize(n.Args()[0])
	}
	_, t := c.newAux(size, p > 1 || p < 0)
	x, err := c.Canonicalize(n.Args()[0])
	if err != nil {
		return nil, err
	}
	one := affine.Constant(ones(size))
	var cone Cone
	switch {
	case p > 0 && p < 1:
		cone, err = Power(x, one, t, p)
	case p > 1:
		cone, err = Power(t, one, x, 1/p)
	default:
		cone, err = Power(t, x, one, 1/(1-p))
	}
	if err != nil {
		return nil, canonErrorf(op, err)
	}
	c.emit(cone)

	return t, nil
}

// psdFactor returns F with P = FᵀF for the constant matrix of a quadForm.
// P is symmetrized first; an eigenvalue below −tol makes the atom non-convex.
func (c *Canonicalizer) psdFactor(pe expr.Expr) (*sparse.CSC, error) {
	const op = "quadForm"
	vals, err := constValue(pe)
	if err != nil {
		return nil, canonErrorf(op, err)
	}
	n := pe.Shape().Rows()
	sym, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, canonErrorf(op, err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if err := sym.Set(i, j, (vals[i+j*n]+vals[j+i*n])/2); err != nil {
				return nil, canonErrorf(op, err)
			}
		}
	}
	eigs, vecs, err := matrix.Eigen(sym, c.opts.EigenTolerance, c.opts.EigenMaxIter)
	if err != nil {
		return nil, canonErrorf(op, err)
	}
	tol := c.opts.EigenTolerance * math.Max(1, maxAbs(eigs))
	q := vecs.ColMajor() // column k is the k-th eigenvector
	b := sparse.NewBuilder(n, n, n*n)
	for k, lambda := range eigs {
		if lambda < -tol {
			return nil, &dcp.Error{Op: op, Want: "positive semidefinite matrix", Got: fmt.Sprintf("eigenvalue %g", lambda), Expr: pe.String()}
		}
		if lambda <= tol {
			continue
		}
		s := math.Sqrt(lambda)
		for j, v := range q[k*n : (k+1)*n] {
			b.Add(k, j, s*v)
		}
	}
	f, err := b.Build()
	if err != nil {
		return nil, canonErrorf(op, err)
	}

	return f, nil
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}

	return m
}
