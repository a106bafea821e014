// SPDX-License-Identifier: MIT

package canon

import (
	"fmt"

	"github.com/katalvlaran/convex/affine"
)

// ConeKind tags a Cone.
type ConeKind uint8

const (
	// ConeZero: a == 0.
	ConeZero ConeKind = iota
	// ConeNonneg: a ≥ 0 elementwise.
	ConeNonneg
	// ConeSOC: ‖x‖₂ ≤ t.
	ConeSOC
	// ConeExp: y·exp(x/y) ≤ z elementwise, y > 0.
	ConeExp
	// ConePower: x^α·y^(1−α) ≥ |z| elementwise, x, y ≥ 0.
	ConePower
)

// String returns the cone name.
func (k ConeKind) String() string {
	switch k {
	case ConeZero:
		return "zero"
	case ConeNonneg:
		return "nonneg"
	case ConeSOC:
		return "soc"
	case ConeExp:
		return "exp"
	case ConePower:
		return "power"
	}

	return "unknown"
}

// Cone is one cone constraint over affine expressions.
// Args: zero/nonneg [a]; soc [t x]; exp/power [x y z] with equal rows.
type Cone struct {
	Kind  ConeKind
	Args  []*affine.Expr
	Alpha float64 // power cones only
}

// Zero returns a == 0.
func Zero(a *affine.Expr) Cone { return Cone{Kind: ConeZero, Args: []*affine.Expr{a}} }

// Nonneg returns a ≥ 0.
func Nonneg(a *affine.Expr) Cone { return Cone{Kind: ConeNonneg, Args: []*affine.Expr{a}} }

// SOC returns ‖x‖₂ ≤ t for a one-row t.
func SOC(t, x *affine.Expr) (Cone, error) {
	if t.Rows() != 1 {
		return Cone{}, canonErrorf("soc", fmt.Errorf("t has %d rows: %w", t.Rows(), affine.ErrRowMismatch))
	}

	return Cone{Kind: ConeSOC, Args: []*affine.Expr{t, x}}, nil
}

// Exp returns (x, y, z) ∈ K_exp elementwise.
func Exp(x, y, z *affine.Expr) (Cone, error) {
	if err := sameRows("exp", x, y, z); err != nil {
		return Cone{}, err
	}

	return Cone{Kind: ConeExp, Args: []*affine.Expr{x, y, z}}, nil
}

// Power returns (x, y, z) ∈ K_pow(α) elementwise, 0 < α < 1.
func Power(x, y, z *affine.Expr, alpha float64) (Cone, error) {
	if !(alpha > 0 && alpha < 1) {
		return Cone{}, canonErrorf("power", fmt.Errorf("alpha %g outside (0,1): %w", alpha, ErrUnsupported))
	}
	if err := sameRows("power", x, y, z); err != nil {
		return Cone{}, err
	}

	return Cone{Kind: ConePower, Args: []*affine.Expr{x, y, z}, Alpha: alpha}, nil
}

func sameRows(op string, xs ...*affine.Expr) error {
	for _, x := range xs[1:] {
		if x.Rows() != xs[0].Rows() {
			return canonErrorf(op, fmt.Errorf("%d vs %d rows: %w", xs[0].Rows(), x.Rows(), affine.ErrRowMismatch))
		}
	}

	return nil
}

// Rows returns the number of slack rows the cone contributes.
func (c Cone) Rows() int {
	switch c.Kind {
	case ConeSOC:
		return 1 + c.Args[1].Rows()
	case ConeExp, ConePower:
		return 3 * c.Args[0].Rows()
	}

	return c.Args[0].Rows()
}

// String renders "kind(rows)".
func (c Cone) String() string {
	if c.Kind == ConePower {
		return fmt.Sprintf("power(%d, α=%g)", c.Rows(), c.Alpha)
	}

	return fmt.Sprintf("%s(%d)", c.Kind, c.Rows())
}
