// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"math"
)

// Eval computes the value of e in column-major order given one flat buffer
// per variable id.
//
// power(x, p) evaluates |x|^p for p > 1 (the convex extension the conic
// lowering models); 0 < p < 1 requires x ≥ 0 and p < 0 requires x > 0.
//
// Errors: ErrMissingValue (absent or wrong-length buffer), ErrDomain (log of a
// negative, division by zero, ...), ErrUnknownKind.
func Eval(e Expr, values map[ID][]float64) ([]float64, error) {
	switch t := e.(type) {
	case *Variable:
		v, ok := values[t.id]
		if !ok || len(v) != t.Size() {
			return nil, exprErrorf("eval", fmt.Errorf("%s: %w", t, ErrMissingValue))
		}

		return append([]float64(nil), v...), nil
	case *Constant:
		return t.value.Flatten(), nil
	case *Node:
		return evalNode(t, values)
	}

	return nil, exprErrorf("eval", fmt.Errorf("%T: %w", e, ErrUnknownKind))
}

func evalNode(n *Node, values map[ID][]float64) ([]float64, error) {
	args := make([][]float64, len(n.args))
	for i, a := range n.args {
		v, err := Eval(a, values)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	out := make([]float64, n.shape.Size())

	switch n.kind {
	case KindAdd, KindMul, KindDiv:
		as, bs := n.args[0].Shape(), n.args[1].Shape()
		for i := range out {
			a, b := args[0][broadcastSource(n.shape, as, i)], args[1][broadcastSource(n.shape, bs, i)]
			switch n.kind {
			case KindAdd:
				out[i] = a + b
			case KindMul:
				out[i] = a * b
			default:
				if b == 0 {
					return nil, exprErrorf("eval", fmt.Errorf("division by zero: %w", ErrDomain))
				}
				out[i] = a / b
			}
		}
	case KindNeg:
		for i, v := range args[0] {
			out[i] = -v
		}
	case KindMatMul:
		m, k, nc, _, err := matmulDims(n.args[0].Shape(), n.args[1].Shape())
		if err != nil {
			return nil, err
		}
		for j := 0; j < nc; j++ {
			for l := 0; l < k; l++ {
				b := args[1][l+j*k]
				if b == 0 {
					continue
				}
				for i := 0; i < m; i++ {
					out[i+j*m] += args[0][i+l*m] * b
				}
			}
		}
	case KindSum:
		if n.axis == NoAxis {
			for _, v := range args[0] {
				out[0] += v
			}
			break
		}
		for src, dst := range SumAxisPositions(n.args[0].Shape(), n.axis) {
			out[dst] += args[0][src]
		}
	case KindReshape:
		copy(out, args[0])
	case KindIndex:
		for i, src := range IndexPositions(n.args[0].Shape(), n.index) {
			out[i] = args[0][src]
		}
	case KindVStack, KindHStack:
		shapes := make([]Shape, len(n.args))
		for i, a := range n.args {
			shapes[i] = a.Shape()
		}
		for k, pos := range StackPositions(shapes, n.shape, n.kind == KindVStack) {
			for i, dst := range pos {
				out[dst] = args[k][i]
			}
		}
	case KindTranspose:
		in := n.args[0].Shape()
		if !in.IsMatrix() {
			copy(out, args[0])
			break
		}
		r, c := in[0], in[1]
		for j := 0; j < c; j++ {
			for i := 0; i < r; i++ {
				out[j+i*c] = args[0][i+j*r]
			}
		}
	case KindTrace:
		d := n.args[0].Shape()[0]
		for i := 0; i < d; i++ {
			out[0] += args[0][i+i*d]
		}
	case KindDiag:
		in := n.args[0].Shape()
		switch in.Ndim() {
		case 0:
			out[0] = args[0][0]
		case 1:
			for i, v := range args[0] {
				out[i+i*in[0]] = v
			}
		default:
			for i := range out {
				out[i] = args[0][i+i*in[0]]
			}
		}
	case KindCumsum:
		for _, p := range CumsumPairs(n.args[0].Shape(), n.axis) {
			out[p[0]] += args[0][p[1]]
		}
	case KindNorm1:
		for _, v := range args[0] {
			out[0] += math.Abs(v)
		}
	case KindNorm2:
		var s float64
		for _, v := range args[0] {
			s += v * v
		}
		out[0] = math.Sqrt(s)
	case KindNormInf:
		for _, v := range args[0] {
			out[0] = math.Max(out[0], math.Abs(v))
		}
	case KindSumSquares:
		for _, v := range args[0] {
			out[0] += v * v
		}
	case KindQuadForm:
		x, p := args[0], args[1]
		d := len(x)
		for j := 0; j < d; j++ {
			for i := 0; i < d; i++ {
				out[0] += x[i] * p[i+j*d] * x[j]
			}
		}
	case KindQuadOverLin:
		y := args[1][0]
		if y <= 0 {
			return nil, exprErrorf("eval", fmt.Errorf("quadOverLin denominator %g: %w", y, ErrDomain))
		}
		for _, v := range args[0] {
			out[0] += v * v
		}
		out[0] /= y
	case KindMaximum, KindMinimum:
		for i := range out {
			for k, a := range n.args {
				v := args[k][broadcastSource(n.shape, a.Shape(), i)]
				switch {
				case k == 0:
					out[i] = v
				case n.kind == KindMaximum:
					out[i] = math.Max(out[i], v)
				default:
					out[i] = math.Min(out[i], v)
				}
			}
		}
	case KindAbs, KindPos, KindNegPart, KindExp, KindLog, KindEntropy, KindSqrt, KindPower:
		for i, v := range args[0] {
			r, err := evalElementwise(n, v)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
	default:
		return nil, exprErrorf("eval", fmt.Errorf("%s: %w", n.kind, ErrUnknownKind))
	}

	return out, nil
}

func evalElementwise(n *Node, v float64) (float64, error) {
	domain := func() (float64, error) {
		return 0, exprErrorf("eval", fmt.Errorf("%s(%g): %w", n.kind, v, ErrDomain))
	}
	switch n.kind {
	case KindAbs:
		return math.Abs(v), nil
	case KindPos:
		return math.Max(v, 0), nil
	case KindNegPart:
		return math.Max(-v, 0), nil
	case KindExp:
		return math.Exp(v), nil
	case KindLog:
		if v < 0 {
			return domain()
		}

		return math.Log(v), nil
	case KindEntropy:
		if v < 0 {
			return domain()
		}
		if v == 0 {
			return 0, nil
		}

		return -v * math.Log(v), nil
	case KindSqrt:
		if v < 0 {
			return domain()
		}

		return math.Sqrt(v), nil
	case KindPower:
		p := n.p
		switch {
		case p == 0:
			return 1, nil
		case p == 1:
			return v, nil
		case p > 1:
			return math.Pow(math.Abs(v), p), nil
		case p > 0:
			if v < 0 {
				return domain()
			}

			return math.Pow(v, p), nil
		default:
			if v <= 0 {
				return domain()
			}

			return math.Pow(v, p), nil
		}
	}

	return 0, exprErrorf("eval", fmt.Errorf("%s: %w", n.kind, ErrUnknownKind))
}
