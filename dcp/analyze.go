// SPDX-License-Identifier: MIT

package dcp

import (
	"fmt"

	"github.com/katalvlaran/convex/expr"
)

// Analyzer memoizes curvature and sign per node. The zero value is not
// usable; build one with NewAnalyzer. An Analyzer is not safe for concurrent
// use, but distinct analyzers may share expression trees freely.
type Analyzer struct {
	curv map[expr.Expr]Curvature
	sign map[expr.Expr]Sign
}

// NewAnalyzer returns an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		curv: make(map[expr.Expr]Curvature),
		sign: make(map[expr.Expr]Sign),
	}
}

// CurvatureOf returns the curvature of e using a fresh analyzer.
// Errors: expr.ErrUnknownKind for kinds outside the rule table.
func CurvatureOf(e expr.Expr) (Curvature, error) { return NewAnalyzer().Curvature(e) }

// SignOf returns the sign of e using a fresh analyzer.
func SignOf(e expr.Expr) (Sign, error) { return NewAnalyzer().Sign(e) }

// IsDCP reports whether e has a known curvature.
func IsDCP(e expr.Expr) bool {
	c, err := CurvatureOf(e)

	return err == nil && c != Unknown
}

// Curvature returns the memoized curvature of e.
func (a *Analyzer) Curvature(e expr.Expr) (Curvature, error) {
	if c, ok := a.curv[e]; ok {
		return c, nil
	}
	c, err := a.curvature(e)
	if err != nil {
		return Unknown, err
	}
	a.curv[e] = c

	return c, nil
}

func (a *Analyzer) argCurvatures(e expr.Expr) ([]Curvature, error) {
	out := make([]Curvature, len(e.Args()))
	for i, arg := range e.Args() {
		c, err := a.Curvature(arg)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}

	return out, nil
}

func allConstant(cs []Curvature) bool {
	for _, c := range cs {
		if c != Constant {
			return false
		}
	}

	return true
}

func all(cs []Curvature, pred func(Curvature) bool) bool {
	for _, c := range cs {
		if !pred(c) {
			return false
		}
	}

	return true
}

// atom applies the "affine argument(s) in, fixed curvature out" rule.
func atom(args []Curvature, accept func(Curvature) bool, result Curvature) Curvature {
	if allConstant(args) {
		return Constant
	}
	if all(args, accept) {
		return result
	}

	return Unknown
}

func (a *Analyzer) curvature(e expr.Expr) (Curvature, error) {
	switch e.Kind() {
	case expr.KindVariable:
		return Affine, nil
	case expr.KindConstant:
		return Constant, nil
	}
	n, ok := e.(*expr.Node)
	if !ok {
		return Unknown, fmt.Errorf("dcp: %T: %w", e, expr.ErrUnknownKind)
	}
	args, err := a.argCurvatures(n)
	if err != nil {
		return Unknown, err
	}

	switch n.Kind() {
	case expr.KindAdd:
		return AddCurvature(args[0], args[1]), nil
	case expr.KindNeg:
		return Negate(args[0]), nil
	case expr.KindMul, expr.KindMatMul:
		return a.product(n, args, false)
	case expr.KindDiv:
		return a.product(n, args, true)
	case expr.KindSum, expr.KindReshape, expr.KindIndex, expr.KindTranspose,
		expr.KindTrace, expr.KindDiag, expr.KindCumsum:
		return args[0], nil
	case expr.KindVStack, expr.KindHStack:
		acc := Constant
		for _, c := range args {
			acc = AddCurvature(acc, c)
		}

		return acc, nil

	case expr.KindNorm1, expr.KindNorm2, expr.KindNormInf, expr.KindAbs,
		expr.KindSumSquares, expr.KindExp:
		return atom(args, Curvature.IsAffine, Convex), nil
	case expr.KindPos:
		return atom(args, Curvature.IsConvex, Convex), nil
	case expr.KindNegPart:
		return atom(args, Curvature.IsConcave, Convex), nil
	case expr.KindMaximum:
		return atom(args, Curvature.IsConvex, Convex), nil
	case expr.KindQuadForm:
		if args[1] != Constant {
			return Unknown, nil
		}

		return atom(args[:1], Curvature.IsAffine, Convex), nil
	case expr.KindQuadOverLin:
		return atom(args, Curvature.IsAffine, Convex), nil

	case expr.KindMinimum:
		return atom(args, Curvature.IsConcave, Concave), nil
	case expr.KindLog, expr.KindEntropy, expr.KindSqrt:
		return atom(args, Curvature.IsAffine, Concave), nil
	case expr.KindPower:
		return powerCurvature(n.Exponent(), args[0]), nil
	}

	return Unknown, fmt.Errorf("dcp: %s: %w", n.Kind(), expr.ErrUnknownKind)
}

// product handles mul, matmul and div: exactly one side may be non-constant
// and, for div, it must be the numerator.
func (a *Analyzer) product(n *expr.Node, args []Curvature, div bool) (Curvature, error) {
	l, r := args[0], args[1]
	switch {
	case l == Constant && r == Constant:
		return Constant, nil
	case r == Constant:
		s, err := a.Sign(n.Args()[1])
		if err != nil {
			return Unknown, err
		}

		return scaleCurvature(l, s), nil
	case l == Constant && !div:
		s, err := a.Sign(n.Args()[0])
		if err != nil {
			return Unknown, err
		}

		return scaleCurvature(r, s), nil
	}

	return Unknown, nil
}

func powerCurvature(p float64, arg Curvature) Curvature {
	switch {
	case p == 0:
		return Constant
	case p == 1:
		return arg
	case arg == Constant:
		return Constant
	case !arg.IsAffine():
		return Unknown
	case p > 0 && p < 1:
		return Concave
	}

	return Convex
}
