// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"math"
)

// Constructors infer the result shape eagerly. Those that can meet an
// incompatible shape return (Expr, error) with a *ShapeError; shape-preserving
// unary constructors cannot fail and return Expr directly. Passing a nil
// child is a programmer error and panics.

func newNode(kind Kind, shape Shape, args ...Expr) *Node {
	for _, a := range args {
		if a == nil {
			panic(exprErrorf(kind.String(), fmt.Errorf("nil argument: %w", ErrInvalidArgument)))
		}
	}

	return &Node{kind: kind, shape: shape, args: args, axis: NoAxis}
}

func unary(kind Kind, x Expr) *Node {
	if x == nil {
		panic(exprErrorf(kind.String(), fmt.Errorf("nil argument: %w", ErrInvalidArgument)))
	}

	return newNode(kind, x.Shape().Clone(), x)
}

func scalarOf(kind Kind, x Expr) *Node {
	if x == nil {
		panic(exprErrorf(kind.String(), fmt.Errorf("nil argument: %w", ErrInvalidArgument)))
	}

	return newNode(kind, Shape{}, x)
}

func broadcastPair(kind Kind, a, b Expr) (*Node, error) {
	if a == nil || b == nil {
		return nil, exprErrorf(kind.String(), fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	s, err := Broadcast(a.Shape(), b.Shape())
	if err != nil {
		return nil, shapeErrorf(kind.String(), "broadcast-compatible with "+a.Shape().String(), b.Shape().String())
	}

	return newNode(kind, s, a, b), nil
}

// ---------- affine operators ----------

// Add returns a + b with broadcasting.
func Add(a, b Expr) (Expr, error) { return broadcastPair(KindAdd, a, b) }

// Sub returns a − b, built as add(a, neg(b)).
func Sub(a, b Expr) (Expr, error) {
	if b == nil {
		return nil, exprErrorf("sub", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}

	return Add(a, Neg(b))
}

// Neg returns −x.
func Neg(x Expr) Expr { return unary(KindNeg, x) }

// Mul returns the elementwise product with broadcasting.
func Mul(a, b Expr) (Expr, error) { return broadcastPair(KindMul, a, b) }

// Div returns the elementwise quotient with broadcasting.
func Div(a, b Expr) (Expr, error) { return broadcastPair(KindDiv, a, b) }

// matmulDims views a and b as m×k and k×n matrices. Vectors are rows on the
// left and columns on the right.
func matmulDims(a, b Shape) (m, k, n int, out Shape, err error) {
	if a.IsScalar() || b.IsScalar() || a.Ndim() > 2 || b.Ndim() > 2 {
		return 0, 0, 0, nil, shapeErrorf("matmul", "vector or matrix operands", a.String()+" @ "+b.String())
	}
	var kb int
	switch {
	case a.IsVector() && b.IsVector():
		m, k, kb, n = 1, a[0], b[0], 1
		out = Shape{}
	case a.IsMatrix() && b.IsVector():
		m, k, kb, n = a[0], a[1], b[0], 1
		out = Shape{m}
	case a.IsVector() && b.IsMatrix():
		m, k, kb, n = 1, a[0], b[0], b[1]
		out = Shape{n}
	default:
		m, k, kb, n = a[0], a[1], b[0], b[1]
		out = Shape{m, n}
	}
	if k != kb {
		return 0, 0, 0, nil, shapeErrorf("matmul", fmt.Sprintf("inner dimension %d", k), fmt.Sprintf("%d (%s @ %s)", kb, a, b))
	}

	return m, k, n, out, nil
}

// MatMul returns the matrix product a @ b.
// vector·vector → scalar, matrix·vector → vector, vector·matrix → vector,
// matrix·matrix → matrix.
func MatMul(a, b Expr) (Expr, error) {
	if a == nil || b == nil {
		return nil, exprErrorf("matmul", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	_, _, _, out, err := matmulDims(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}

	return newNode(KindMatMul, out, a, b), nil
}

// Sum reduces every element to a scalar.
func Sum(x Expr) Expr { return scalarOf(KindSum, x) }

// SumAxis sums over one axis and drops it.
func SumAxis(x Expr, axis int) (Expr, error) {
	if x == nil {
		return nil, exprErrorf("sum", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	s := x.Shape()
	if axis < 0 || axis >= s.Ndim() {
		return nil, shapeErrorf("sum", fmt.Sprintf("axis in [0,%d)", s.Ndim()), fmt.Sprint(axis))
	}
	out := make(Shape, 0, s.Ndim()-1)
	out = append(out, s[:axis]...)
	out = append(out, s[axis+1:]...)
	n := newNode(KindSum, out, x)
	n.axis = axis

	return n, nil
}

// Reshape reinterprets x (column-major) with a new shape of equal size.
func Reshape(x Expr, shape Shape) (Expr, error) {
	if x == nil {
		return nil, exprErrorf("reshape", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	for _, d := range shape {
		if d < 0 {
			return nil, shapeErrorf("reshape", "non-negative dimensions", shape.String())
		}
	}
	if shape.Size() != x.Shape().Size() {
		return nil, shapeErrorf("reshape", fmt.Sprintf("%d elements", x.Shape().Size()), fmt.Sprintf("%d elements (%s)", shape.Size(), shape))
	}

	return newNode(KindReshape, shape.Clone(), x), nil
}

// IndexExpr selects a sub-array. One selector per dimension is required.
func IndexExpr(x Expr, idx ...Index) (Expr, error) {
	if x == nil {
		return nil, exprErrorf("index", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	out, resolved, err := indexShape(x.Shape(), idx)
	if err != nil {
		return nil, err
	}
	n := newNode(KindIndex, out, x)
	n.index = resolved

	return n, nil
}

func stack(kind Kind, args []Expr, vertical bool) (Expr, error) {
	shapes := make([]Shape, len(args))
	for i, a := range args {
		if a == nil {
			return nil, exprErrorf(kind.String(), fmt.Errorf("nil argument: %w", ErrInvalidArgument))
		}
		shapes[i] = a.Shape()
	}
	out, err := stackShape(kind.String(), shapes, vertical)
	if err != nil {
		return nil, err
	}

	return newNode(kind, out, append([]Expr(nil), args...)...), nil
}

// VStack concatenates along rows.
func VStack(args ...Expr) (Expr, error) { return stack(KindVStack, args, true) }

// HStack concatenates along columns.
func HStack(args ...Expr) (Expr, error) { return stack(KindHStack, args, false) }

// Transpose swaps the dimensions of a matrix; vectors and scalars pass through
// with their shape unchanged.
func Transpose(x Expr) Expr {
	if x == nil {
		panic(exprErrorf("transpose", fmt.Errorf("nil argument: %w", ErrInvalidArgument)))
	}
	s := x.Shape()
	if s.IsMatrix() {
		return newNode(KindTranspose, Shape{s[1], s[0]}, x)
	}

	return newNode(KindTranspose, s.Clone(), x)
}

// Trace sums the diagonal of a square matrix.
func Trace(x Expr) (Expr, error) {
	if x == nil {
		return nil, exprErrorf("trace", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	s := x.Shape()
	if !s.IsMatrix() || s[0] != s[1] {
		return nil, shapeErrorf("trace", "square matrix", s.String())
	}

	return newNode(KindTrace, Shape{}, x), nil
}

// Diag builds a square matrix from a vector, or extracts the main diagonal
// (length min(m, n)) of a matrix.
func Diag(x Expr) (Expr, error) {
	if x == nil {
		return nil, exprErrorf("diag", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	s := x.Shape()
	switch s.Ndim() {
	case 0:
		return newNode(KindDiag, Shape{1, 1}, x), nil
	case 1:
		return newNode(KindDiag, Shape{s[0], s[0]}, x), nil
	case 2:
		return newNode(KindDiag, Shape{min(s[0], s[1])}, x), nil
	}

	return nil, shapeErrorf("diag", "vector or matrix", s.String())
}

// Cumsum returns the running sum along axis; the shape is kept.
func Cumsum(x Expr, axis int) (Expr, error) {
	if x == nil {
		return nil, exprErrorf("cumsum", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	s := x.Shape()
	if s.IsScalar() && axis == 0 {
		axis = NoAxis
	} else if axis < 0 || axis >= s.Ndim() {
		return nil, shapeErrorf("cumsum", fmt.Sprintf("axis in [0,%d)", s.Ndim()), fmt.Sprint(axis))
	}
	n := newNode(KindCumsum, s.Clone(), x)
	n.axis = axis

	return n, nil
}

// ---------- atoms ----------

// Norm1 is Σ|xᵢ|.
func Norm1(x Expr) Expr { return scalarOf(KindNorm1, x) }

// Norm2 is the Euclidean norm of the flattened argument.
func Norm2(x Expr) Expr { return scalarOf(KindNorm2, x) }

// NormInf is max |xᵢ|.
func NormInf(x Expr) Expr { return scalarOf(KindNormInf, x) }

// Abs is elementwise |x|.
func Abs(x Expr) Expr { return unary(KindAbs, x) }

// Pos is elementwise max(x, 0).
func Pos(x Expr) Expr { return unary(KindPos, x) }

// NegPart is elementwise max(−x, 0).
func NegPart(x Expr) Expr { return unary(KindNegPart, x) }

// SumSquares is Σxᵢ².
func SumSquares(x Expr) Expr { return scalarOf(KindSumSquares, x) }

// Exp is elementwise eˣ.
func Exp(x Expr) Expr { return unary(KindExp, x) }

// Log is elementwise natural logarithm.
func Log(x Expr) Expr { return unary(KindLog, x) }

// Entropy is elementwise −x·log x.
func Entropy(x Expr) Expr { return unary(KindEntropy, x) }

// Sqrt is elementwise √x.
func Sqrt(x Expr) Expr { return unary(KindSqrt, x) }

// Power is elementwise x^p.
func Power(x Expr, p float64) (Expr, error) {
	if x == nil {
		return nil, exprErrorf("power", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return nil, exprErrorf("power", fmt.Errorf("exponent %v: %w", p, ErrInvalidArgument))
	}
	n := unary(KindPower, x)
	n.p = p

	return n, nil
}

func extremum(kind Kind, args []Expr) (Expr, error) {
	if len(args) == 0 {
		return nil, exprErrorf(kind.String(), fmt.Errorf("no arguments: %w", ErrInvalidArgument))
	}
	var out Shape
	for i, a := range args {
		if a == nil {
			return nil, exprErrorf(kind.String(), fmt.Errorf("nil argument: %w", ErrInvalidArgument))
		}
		if i == 0 {
			out = a.Shape().Clone()
			continue
		}
		s, err := Broadcast(out, a.Shape())
		if err != nil {
			return nil, shapeErrorf(kind.String(), "broadcast-compatible with "+out.String(), a.Shape().String())
		}
		out = s
	}

	return newNode(kind, out, append([]Expr(nil), args...)...), nil
}

// Maximum is the elementwise maximum of its broadcast arguments.
func Maximum(args ...Expr) (Expr, error) { return extremum(KindMaximum, args) }

// Minimum is the elementwise minimum of its broadcast arguments.
func Minimum(args ...Expr) (Expr, error) { return extremum(KindMinimum, args) }

// QuadForm is xᵀPx for a vector x of length n and an n×n constant P.
func QuadForm(x Expr, p Expr) (Expr, error) {
	if x == nil || p == nil {
		return nil, exprErrorf("quadForm", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	xs, ps := x.Shape(), p.Shape()
	n := xs.Size()
	if xs.Ndim() > 1 {
		return nil, shapeErrorf("quadForm", "vector x", xs.String())
	}
	if !(ps.IsMatrix() && ps[0] == n && ps[1] == n) && !(n == 1 && ps.Size() == 1) {
		return nil, shapeErrorf("quadForm", fmt.Sprintf("[%d %d] matrix", n, n), ps.String())
	}

	return newNode(KindQuadForm, Shape{}, x, p), nil
}

// QuadOverLin is Σxᵢ² / y for a scalar y.
func QuadOverLin(x, y Expr) (Expr, error) {
	if x == nil || y == nil {
		return nil, exprErrorf("quadOverLin", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	if y.Shape().Size() != 1 {
		return nil, shapeErrorf("quadOverLin", "scalar denominator", y.Shape().String())
	}

	return newNode(KindQuadOverLin, Shape{}, x, y), nil
}

// ShapeOf returns the shape of e. Shapes are inferred at construction, so
// this never fails for nodes built through this package.
func ShapeOf(e Expr) Shape { return e.Shape() }

// MatMulDims views the operands of a matmul as an m×k by k×n product.
// Errors: *ShapeError as MatMul.
func MatMulDims(a, b Shape) (m, k, n int, err error) {
	m, k, n, _, err = matmulDims(a, b)

	return m, k, n, err
}
