// SPDX-License-Identifier: MIT

package dcp

import (
	"fmt"

	"github.com/katalvlaran/convex/expr"
)

// Sign returns the memoized sign of e.
func (a *Analyzer) Sign(e expr.Expr) (Sign, error) {
	if s, ok := a.sign[e]; ok {
		return s, nil
	}
	s, err := a.signOf(e)
	if err != nil {
		return UnknownSign, err
	}
	a.sign[e] = s

	return s, nil
}

func constantSign(c *expr.Constant) Sign {
	v := c.Value()
	nn, np := v.IsNonneg(), v.IsNonpos()
	switch {
	case nn && np:
		return Zero
	case nn:
		return Nonneg
	case np:
		return Nonpos
	}

	return UnknownSign
}

func (a *Analyzer) signOf(e expr.Expr) (Sign, error) {
	switch t := e.(type) {
	case *expr.Variable:
		switch {
		case t.IsNonneg():
			return Nonneg, nil
		case t.IsNonpos():
			return Nonpos, nil
		}

		return UnknownSign, nil
	case *expr.Constant:
		return constantSign(t), nil
	}
	n, ok := e.(*expr.Node)
	if !ok {
		return UnknownSign, fmt.Errorf("dcp: %T: %w", e, expr.ErrUnknownKind)
	}
	args := make([]Sign, len(n.Args()))
	for i, arg := range n.Args() {
		s, err := a.Sign(arg)
		if err != nil {
			return UnknownSign, err
		}
		args[i] = s
	}

	switch n.Kind() {
	case expr.KindAdd:
		return AddSign(args[0], args[1]), nil
	case expr.KindNeg:
		return NegateSign(args[0]), nil
	case expr.KindMul, expr.KindMatMul:
		return MulSign(args[0], args[1]), nil
	case expr.KindDiv:
		if args[1] == Zero {
			return UnknownSign, nil
		}

		return MulSign(args[0], args[1]), nil
	case expr.KindSum, expr.KindReshape, expr.KindIndex, expr.KindTranspose,
		expr.KindTrace, expr.KindDiag, expr.KindCumsum:
		return args[0], nil
	case expr.KindVStack, expr.KindHStack:
		acc := Zero
		for _, s := range args {
			acc = AddSign(acc, s)
		}

		return acc, nil
	case expr.KindNorm1, expr.KindNorm2, expr.KindNormInf, expr.KindAbs,
		expr.KindPos, expr.KindNegPart, expr.KindSumSquares, expr.KindQuadForm,
		expr.KindQuadOverLin, expr.KindExp, expr.KindSqrt:
		return Nonneg, nil
	case expr.KindLog, expr.KindEntropy:
		return UnknownSign, nil
	case expr.KindMaximum:
		for _, s := range args {
			if s.IsNonneg() {
				return Nonneg, nil
			}
		}
		for _, s := range args {
			if !s.IsNonpos() {
				return UnknownSign, nil
			}
		}

		return Nonpos, nil
	case expr.KindMinimum:
		for _, s := range args {
			if s.IsNonpos() {
				return Nonpos, nil
			}
		}
		for _, s := range args {
			if !s.IsNonneg() {
				return UnknownSign, nil
			}
		}

		return Nonneg, nil
	case expr.KindPower:
		if n.Exponent() == 1 {
			return args[0], nil
		}

		return Nonneg, nil
	}

	return UnknownSign, fmt.Errorf("dcp: %s: %w", n.Kind(), expr.ErrUnknownKind)
}
