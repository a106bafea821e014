// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"strings"
)

// Expr is an immutable expression node.
type Expr interface {
	// Kind returns the node tag.
	Kind() Kind
	// Shape returns the inferred shape (computed once at construction).
	Shape() Shape
	// Args returns the children in construction order; callers must not modify it.
	Args() []Expr
	fmt.Stringer
}

// Compile-time conformance.
var (
	_ Expr = (*Variable)(nil)
	_ Expr = (*Constant)(nil)
	_ Expr = (*Node)(nil)
)

// NoAxis marks reductions over every element.
const NoAxis = -1

// ---------- leaf options ----------

// Option configures a leaf (variable or constant) at construction.
type Option func(*leafConfig)

type leafConfig struct {
	name                            string
	nonneg, nonpos, integer, binary bool
	alloc                           *Allocator
}

// Named attaches a display name.
func Named(name string) Option { return func(c *leafConfig) { c.name = name } }

// Nonneg declares a variable elementwise ≥ 0.
func Nonneg() Option { return func(c *leafConfig) { c.nonneg = true } }

// Nonpos declares a variable elementwise ≤ 0.
func Nonpos() Option { return func(c *leafConfig) { c.nonpos = true } }

// Integer declares an integer-valued variable (honored only by MIP boundaries).
func Integer() Option { return func(c *leafConfig) { c.integer = true } }

// Binary declares a {0,1}-valued variable; it implies Integer.
func Binary() Option { return func(c *leafConfig) { c.binary, c.integer = true, true } }

// WithAllocator draws the leaf ID from a instead of the process-wide allocator.
func WithAllocator(a *Allocator) Option { return func(c *leafConfig) { c.alloc = a } }

func gatherLeaf(opts []Option) leafConfig {
	var c leafConfig
	for _, o := range opts {
		o(&c)
	}
	if c.alloc == nil {
		c.alloc = &defaultAllocator
	}

	return c
}

// ---------- Variable ----------

// Variable is a decision-variable leaf.
type Variable struct {
	id                              ID
	shape                           Shape
	name                            string
	nonneg, nonpos, integer, binary bool
}

// NewVariable creates a variable of the given shape.
// Errors: *ShapeError for negative dimensions, ErrInvalidArgument when both
// Nonneg and Nonpos are requested.
func NewVariable(shape Shape, opts ...Option) (*Variable, error) {
	for _, d := range shape {
		if d < 0 {
			return nil, shapeErrorf("variable", "non-negative dimensions", shape.String())
		}
	}
	c := gatherLeaf(opts)
	if c.nonneg && c.nonpos {
		return nil, exprErrorf("variable", fmt.Errorf("nonneg and nonpos together: %w", ErrInvalidArgument))
	}

	return &Variable{
		id:      c.alloc.Next(),
		shape:   shape.Clone(),
		name:    c.name,
		nonneg:  c.nonneg,
		nonpos:  c.nonpos,
		integer: c.integer,
		binary:  c.binary,
	}, nil
}

// ID returns the variable identity.
func (v *Variable) ID() ID { return v.id }

// Kind implements Expr.
func (v *Variable) Kind() Kind { return KindVariable }

// Shape implements Expr.
func (v *Variable) Shape() Shape { return v.shape }

// Args implements Expr (leaves have none).
func (v *Variable) Args() []Expr { return nil }

// Size returns the number of scalar entries.
func (v *Variable) Size() int { return v.shape.Size() }

// Name returns the display name ("" when unnamed).
func (v *Variable) Name() string { return v.name }

// IsNonneg reports the nonneg attribute (binary variables are nonneg too).
func (v *Variable) IsNonneg() bool { return v.nonneg || v.binary }

// IsNonpos reports the nonpos attribute.
func (v *Variable) IsNonpos() bool { return v.nonpos }

// IsInteger reports the integer attribute.
func (v *Variable) IsInteger() bool { return v.integer }

// IsBinary reports the binary attribute.
func (v *Variable) IsBinary() bool { return v.binary }

// String returns the name or "var<id>".
func (v *Variable) String() string {
	if v.name != "" {
		return v.name
	}

	return fmt.Sprintf("var%d", v.id)
}

// ---------- Constant ----------

// Constant is a numeric leaf.
type Constant struct {
	id    ID
	value Array
	name  string
}

// NewConstant wraps an Array. Only Named and WithAllocator apply to constants.
// Errors: ErrInvalidArgument for sign/integrality options or non-finite data.
func NewConstant(a Array, opts ...Option) (*Constant, error) {
	c := gatherLeaf(opts)
	if c.nonneg || c.nonpos || c.integer {
		return nil, exprErrorf("constant", fmt.Errorf("variable attribute on constant: %w", ErrInvalidArgument))
	}
	if !a.finite() {
		return nil, exprErrorf("constant", fmt.Errorf("non-finite value: %w", ErrInvalidArgument))
	}

	return &Constant{id: c.alloc.Next(), value: a, name: c.name}, nil
}

// Scalar returns a scalar constant. Non-finite values are a programmer error
// and panic.
func Scalar(v float64) *Constant {
	return Must(NewConstant(ScalarArray(v)))
}

// Vector returns an [n] constant.
func Vector(vals ...float64) *Constant {
	a, err := DenseArray(Shape{len(vals)}, vals)
	if err != nil {
		panic(err)
	}

	return Must(NewConstant(a))
}

// Matrix returns a [rows cols] constant from a column-major buffer.
func Matrix(rows, cols int, colMajor []float64) (*Constant, error) {
	a, err := DenseArray(Shape{rows, cols}, colMajor)
	if err != nil {
		return nil, err
	}

	return NewConstant(a)
}

// ID returns the constant identity.
func (c *Constant) ID() ID { return c.id }

// Kind implements Expr.
func (c *Constant) Kind() Kind { return KindConstant }

// Shape implements Expr.
func (c *Constant) Shape() Shape { return c.value.Shape() }

// Args implements Expr.
func (c *Constant) Args() []Expr { return nil }

// Value returns the payload.
func (c *Constant) Value() Array { return c.value }

// String returns the name, the scalar value, or "const<id>".
func (c *Constant) String() string {
	if c.name != "" {
		return c.name
	}
	if v, ok := c.value.Scalar(); ok && c.value.Shape().IsScalar() {
		return fmt.Sprintf("%g", v)
	}

	return fmt.Sprintf("const%d", c.id)
}

// ---------- Node ----------

// Node is every non-leaf expression. Parameters not used by a kind keep their
// zero value (axis is NoAxis when unused).
type Node struct {
	kind  Kind
	shape Shape
	args  []Expr
	axis  int     // sum/cumsum axis or NoAxis
	index []Index // index spec
	p     float64 // power exponent
}

// Kind implements Expr.
func (n *Node) Kind() Kind { return n.kind }

// Shape implements Expr.
func (n *Node) Shape() Shape { return n.shape }

// Args implements Expr.
func (n *Node) Args() []Expr { return n.args }

// Axis returns the reduction axis of sum/cumsum nodes (NoAxis when absent).
func (n *Node) Axis() int { return n.axis }

// Indices returns the per-dimension spec of an index node.
func (n *Node) Indices() []Index { return n.index }

// Exponent returns p of a power node.
func (n *Node) Exponent() float64 { return n.p }

// String renders the node as "kind(arg, ...)".
func (n *Node) String() string {
	parts := make([]string, 0, len(n.args)+1)
	for _, a := range n.args {
		parts = append(parts, a.String())
	}
	switch n.kind {
	case KindPower:
		parts = append(parts, fmt.Sprintf("%g", n.p))
	case KindSum, KindCumsum:
		if n.axis != NoAxis {
			parts = append(parts, fmt.Sprintf("axis=%d", n.axis))
		}
	case KindReshape:
		parts = append(parts, n.shape.String())
	case KindIndex:
		for _, ix := range n.index {
			parts = append(parts, ix.String())
		}
	}

	return n.kind.String() + "(" + strings.Join(parts, ", ") + ")"
}

// Must panics when err is non-nil and returns e otherwise; it is meant for
// examples, tests and package-level literals.
func Must[T any](e T, err error) T {
	if err != nil {
		panic(err)
	}

	return e
}

// LeafID returns the identity of a leaf, or 0 and false for internal nodes.
func LeafID(e Expr) (ID, bool) {
	switch t := e.(type) {
	case *Variable:
		return t.id, true
	case *Constant:
		return t.id, true
	}

	return 0, false
}
