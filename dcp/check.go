// SPDX-License-Identifier: MIT

package dcp

import (
	"fmt"

	"github.com/katalvlaran/convex/expr"
)

// Sense is the optimization direction.
type Sense uint8

const (
	// Minimize requires a convex-or-better objective.
	Minimize Sense = iota
	// Maximize requires a concave-or-better objective.
	Maximize
)

// String returns "minimize" or "maximize".
func (s Sense) String() string {
	if s == Maximize {
		return "maximize"
	}

	return "minimize"
}

// CheckObjective verifies that obj is a scalar with the curvature sense needs.
// Errors: *expr.ShapeError for a non-scalar objective, *Error otherwise.
func CheckObjective(obj expr.Expr, sense Sense) error {
	return NewAnalyzer().CheckObjective(obj, sense)
}

// CheckObjective is the memoized form of the package-level function.
func (a *Analyzer) CheckObjective(obj expr.Expr, sense Sense) error {
	if obj.Shape().Size() != 1 {
		return &expr.ShapeError{Op: sense.String(), Expected: "scalar objective", Actual: obj.Shape().String()}
	}
	c, err := a.Curvature(obj)
	if err != nil {
		return err
	}
	if sense == Maximize {
		if !c.IsConcave() {
			return &Error{Op: "maximize", Want: "concave", Got: c.String(), Expr: obj.String()}
		}

		return nil
	}
	if !c.IsConvex() {
		return &Error{Op: "minimize", Want: "convex", Got: c.String(), Expr: obj.String()}
	}

	return nil
}

// CheckConstraint verifies a constraint: equalities need an affine
// difference, inequalities a concave one (the stored side is ≥ 0), and SOC
// needs affine t and x.
func CheckConstraint(c *expr.Constraint) error {
	return NewAnalyzer().CheckConstraint(c)
}

// CheckConstraint is the memoized form of the package-level function.
func (a *Analyzer) CheckConstraint(c *expr.Constraint) error {
	switch c.Kind() {
	case expr.ConstraintEq:
		cv, err := a.Curvature(c.Expr())
		if err != nil {
			return err
		}
		if !cv.IsAffine() {
			return &Error{Op: "eq", Want: "affine", Got: cv.String(), Expr: c.String()}
		}
	case expr.ConstraintIneq:
		cv, err := a.Curvature(c.Expr())
		if err != nil {
			return err
		}
		if !cv.IsConcave() {
			return &Error{Op: "ineq", Want: "concave", Got: cv.String(), Expr: c.String()}
		}
	case expr.ConstraintSOC:
		for _, e := range []expr.Expr{c.T(), c.X()} {
			cv, err := a.Curvature(e)
			if err != nil {
				return err
			}
			if !cv.IsAffine() {
				return &Error{Op: "soc", Want: "affine", Got: cv.String(), Expr: c.String()}
			}
		}
	default:
		return fmt.Errorf("dcp: constraint %s: %w", c.Kind(), expr.ErrUnknownKind)
	}

	return nil
}

// CheckProblem validates the objective and every constraint with one shared
// analyzer and returns the first violation.
func CheckProblem(obj expr.Expr, sense Sense, cons []*expr.Constraint) error {
	a := NewAnalyzer()
	if err := a.CheckObjective(obj, sense); err != nil {
		return err
	}
	for i, c := range cons {
		if err := a.CheckConstraint(c); err != nil {
			return fmt.Errorf("constraint %d: %w", i, err)
		}
	}

	return nil
}
