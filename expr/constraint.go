// SPDX-License-Identifier: MIT

package expr

import "fmt"

// ConstraintKind tags a Constraint.
type ConstraintKind uint8

const (
	// ConstraintEq is expr == 0.
	ConstraintEq ConstraintKind = iota
	// ConstraintIneq is expr ≥ 0.
	ConstraintIneq
	// ConstraintSOC is ‖x‖₂ ≤ t.
	ConstraintSOC
)

// String returns "eq", "ineq" or "soc".
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintEq:
		return "eq"
	case ConstraintIneq:
		return "ineq"
	case ConstraintSOC:
		return "soc"
	}

	return "unknown"
}

// Constraint is an immutable user constraint. Equalities and inequalities
// keep a single normalized difference expression; SOC keeps t and x.
type Constraint struct {
	kind ConstraintKind
	expr Expr // eq: lhs−rhs; ineq: the side that must be ≥ 0
	t, x Expr // soc operands
	repr string
}

// Eq returns lhs == rhs, stored as lhs − rhs == 0.
func Eq(lhs, rhs Expr) (*Constraint, error) {
	d, err := Sub(lhs, rhs)
	if err != nil {
		return nil, exprErrorf("eq", err)
	}

	return &Constraint{kind: ConstraintEq, expr: d, repr: fmt.Sprintf("%s == %s", lhs, rhs)}, nil
}

// Le returns lhs ≤ rhs, stored as rhs − lhs ≥ 0.
func Le(lhs, rhs Expr) (*Constraint, error) {
	d, err := Sub(rhs, lhs)
	if err != nil {
		return nil, exprErrorf("le", err)
	}

	return &Constraint{kind: ConstraintIneq, expr: d, repr: fmt.Sprintf("%s <= %s", lhs, rhs)}, nil
}

// Ge returns lhs ≥ rhs, stored as lhs − rhs ≥ 0.
func Ge(lhs, rhs Expr) (*Constraint, error) {
	d, err := Sub(lhs, rhs)
	if err != nil {
		return nil, exprErrorf("ge", err)
	}

	return &Constraint{kind: ConstraintIneq, expr: d, repr: fmt.Sprintf("%s >= %s", lhs, rhs)}, nil
}

// SOC returns ‖x‖₂ ≤ t for a scalar t.
func SOC(t, x Expr) (*Constraint, error) {
	if t == nil || x == nil {
		return nil, exprErrorf("soc", fmt.Errorf("nil argument: %w", ErrInvalidArgument))
	}
	if t.Shape().Size() != 1 {
		return nil, shapeErrorf("soc", "scalar t", t.Shape().String())
	}

	return &Constraint{kind: ConstraintSOC, t: t, x: x, repr: fmt.Sprintf("norm2(%s) <= %s", x, t)}, nil
}

// Kind returns the constraint kind.
func (c *Constraint) Kind() ConstraintKind { return c.kind }

// Expr returns the normalized expression of an eq/ineq constraint (nil for SOC).
func (c *Constraint) Expr() Expr { return c.expr }

// T returns the bound of an SOC constraint.
func (c *Constraint) T() Expr { return c.t }

// X returns the normed argument of an SOC constraint.
func (c *Constraint) X() Expr { return c.x }

// Exprs returns every expression the constraint references.
func (c *Constraint) Exprs() []Expr {
	if c.kind == ConstraintSOC {
		return []Expr{c.t, c.x}
	}

	return []Expr{c.expr}
}

// String renders the constraint as written.
func (c *Constraint) String() string { return c.repr }
