// SPDX-License-Identifier: MIT

package canon

import (
	"fmt"

	"github.com/katalvlaran/convex/affine"
	"github.com/katalvlaran/convex/dcp"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/quad"
	"github.com/katalvlaran/convex/sparse"
)

const opProblem = "problem"

// Result is the canonical form of a problem.
//
// The solver minimizes Objective (or Quadratic when it is non-nil) subject to
// Cones. Both carry a zero constant: the internal constant lives in Offset.
type Result struct {
	Sense     dcp.Sense
	Objective *affine.Expr // one row
	Quadratic *quad.Expr   // nil unless the objective was recognized as quadratic
	Cones     []Cone
	Vars      []*expr.Variable // original variables, discovery order
	Aux       []*expr.Variable // auxiliary variables, creation order
	Offset    float64
}

// Recover maps the optimal value of the canonical minimization back to the
// value of the user's objective.
func (r *Result) Recover(solverObj float64) float64 {
	v := solverObj + r.Offset
	if r.Sense == dcp.Maximize {
		return -v
	}

	return v
}

// CanonicalizeProblem validates and lowers a whole problem:
//   - DCP check of objective and constraints;
//   - objective (negated for Maximize), QP path when recognized;
//   - every user constraint, in order;
//   - Nonneg cones for sign attributes of original then auxiliary variables.
//
// Errors: dcp.ErrDCP (including ErrUnsupported), expr.ErrShape, expr.ErrDomain.
func CanonicalizeProblem(obj expr.Expr, sense dcp.Sense, cons []*expr.Constraint, opts ...Option) (*Result, error) {
	if err := dcp.CheckProblem(obj, sense, cons); err != nil {
		return nil, canonErrorf(opProblem, err)
	}
	c := New(opts...)
	log := c.opts.Logger

	target := obj
	if sense == dcp.Maximize {
		target = expr.Neg(obj)
	}
	res := &Result{Sense: sense}
	if c.opts.QuadraticObjective && hasQuadTerm(target) {
		q, err := c.quadratic(target)
		if err != nil {
			return nil, err
		}
		res.Offset = q.Constant()
		shift, err := quad.FromLinear(affine.Constant([]float64{-res.Offset}))
		if err != nil {
			return nil, canonErrorf(opProblem, err)
		}
		if q, err = quad.Add(q, shift); err != nil {
			return nil, canonErrorf(opProblem, err)
		}
		res.Quadratic, res.Objective = q, q.Linear()
	} else {
		l, err := c.Canonicalize(target)
		if err != nil {
			return nil, err
		}
		lin, cst := l.WithoutConstant()
		res.Objective, res.Offset = lin, cst[0]
	}

	for i, con := range cons {
		if err := c.Constraint(con); err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
	}

	roots := []expr.Expr{obj}
	for _, con := range cons {
		roots = append(roots, con.Exprs()...)
	}
	res.Vars = expr.Variables(roots...)
	c.signCones(res.Vars)
	c.signCones(c.aux)
	res.Cones, res.Aux = c.Cones(), c.Aux()

	log.V(1).Info("canonicalized problem",
		"sense", sense.String(),
		"vars", len(res.Vars),
		"aux", len(res.Aux),
		"cones", len(res.Cones),
		"quadratic", res.Quadratic != nil,
		"offset", res.Offset)

	return res, nil
}

// signCones emits x ≥ 0 for nonneg and −x ≥ 0 for nonpos variables.
func (c *Canonicalizer) signCones(vars []*expr.Variable) {
	for _, v := range vars {
		l := affine.Variable(v.ID(), v.Size())
		switch {
		case v.IsNonneg():
			c.emit(Nonneg(l))
		case v.IsNonpos():
			c.emit(Nonneg(l.Neg()))
		}
	}
}

// scalarConst returns the value of a variable-free size-1 subtree.
func scalarConst(e expr.Expr) (float64, bool) {
	if e.Shape().Size() != 1 || !expr.IsConstantTree(e) {
		return 0, false
	}
	v, err := expr.Eval(e, nil)
	if err != nil {
		return 0, false
	}

	return v[0], true
}

// squaredArg returns x for power(x, 2) and sum(power(x, 2)).
func squaredArg(e expr.Expr) (expr.Expr, bool) {
	n, ok := e.(*expr.Node)
	if !ok {
		return nil, false
	}
	if n.Kind() == expr.KindSum && n.Axis() == expr.NoAxis {
		if inner, ok := n.Args()[0].(*expr.Node); ok {
			n = inner
		}
	}
	if n.Kind() == expr.KindPower && n.Exponent() == 2 {
		return n.Args()[0], true
	}

	return nil, false
}

// hasQuadTerm reports whether the scalar objective e reaches a quadratic atom
// through sums, negations and constant scalings.
func hasQuadTerm(e expr.Expr) bool {
	n, ok := e.(*expr.Node)
	if !ok || expr.IsConstantTree(e) {
		return false
	}
	if _, ok := squaredArg(n); ok {
		return true
	}
	switch n.Kind() {
	case expr.KindSumSquares, expr.KindQuadForm:
		return true
	case expr.KindQuadOverLin:
		y, ok := scalarConst(n.Args()[1])
		return ok && y > 0
	case expr.KindAdd:
		return n.Args()[0].Shape().Size() == 1 && n.Args()[1].Shape().Size() == 1 &&
			(hasQuadTerm(n.Args()[0]) || hasQuadTerm(n.Args()[1]))
	case expr.KindNeg:
		return hasQuadTerm(n.Args()[0])
	case expr.KindSum:
		return n.Args()[0].Shape().Size() == 1 && hasQuadTerm(n.Args()[0])
	case expr.KindMul, expr.KindDiv:
		a, b := n.Args()[0], n.Args()[1]
		if _, ok := scalarConst(b); ok {
			return a.Shape().Size() == 1 && hasQuadTerm(a)
		}
		if _, ok := scalarConst(a); ok && n.Kind() == expr.KindMul {
			return b.Shape().Size() == 1 && hasQuadTerm(b)
		}
	}

	return false
}

// quadratic lowers a scalar objective into quad form. Subtrees that are not
// quadratic terms go through the conic path and enter as linear parts.
func (c *Canonicalizer) quadratic(e expr.Expr) (*quad.Expr, error) {
	if !hasQuadTerm(e) {
		l, err := c.Canonicalize(e)
		if err != nil {
			return nil, err
		}
		q, err := quad.FromLinear(l)
		if err != nil {
			return nil, canonErrorf(opProblem, err)
		}

		return q, nil
	}
	n := e.(*expr.Node)
	op := n.Kind().String()
	if x, ok := squaredArg(n); ok {
		return c.squaredNorm(op, x, nil)
	}
	args := n.Args()
	switch n.Kind() {
	case expr.KindSumSquares:
		return c.squaredNorm(op, args[0], nil)

	case expr.KindQuadForm:
		f, err := c.psdFactor(args[1])
		if err != nil {
			return nil, err
		}
		return c.squaredNorm(op, args[0], f)

	case expr.KindQuadOverLin:
		y, _ := scalarConst(args[1])
		q, err := c.squaredNorm(op, args[0], nil)
		if err != nil {
			return nil, err
		}
		return q.Scale(1 / y), nil

	case expr.KindAdd:
		a, err := c.quadratic(args[0])
		if err != nil {
			return nil, err
		}
		b, err := c.quadratic(args[1])
		if err != nil {
			return nil, err
		}
		sum, err := quad.Add(a, b)
		if err != nil {
			return nil, canonErrorf(op, err)
		}
		return sum, nil

	case expr.KindNeg:
		q, err := c.quadratic(args[0])
		if err != nil {
			return nil, err
		}
		return q.Scale(-1), nil

	case expr.KindSum:
		return c.quadratic(args[0])

	case expr.KindMul, expr.KindDiv:
		term, k := args[0], args[1]
		if _, ok := scalarConst(k); !ok {
			term, k = k, term
		}
		alpha, _ := scalarConst(k)
		if n.Kind() == expr.KindDiv {
			if alpha == 0 {
				return nil, unsupportedf(op, "division by zero")
			}
			alpha = 1 / alpha
		}
		q, err := c.quadratic(term)
		if err != nil {
			return nil, err
		}
		return q.Scale(alpha), nil
	}

	return nil, canonErrorf(op, expr.ErrUnknownKind)
}

// squaredNorm returns ‖F·x‖² (‖x‖² when f is nil).
func (c *Canonicalizer) squaredNorm(op string, x expr.Expr, f *sparse.CSC) (*quad.Expr, error) {
	l, err := c.Canonicalize(x)
	if err != nil {
		return nil, err
	}
	if f != nil {
		if l, err = l.LeftMul(f); err != nil {
			return nil, canonErrorf(op, err)
		}
	}
	q, err := quad.FromSquaredNorm(l)
	if err != nil {
		return nil, canonErrorf(op, err)
	}

	return q, nil
}
