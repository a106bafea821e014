// SPDX-License-Identifier: MIT

package dcp

// Curvature classifies an expression under DCP rules.
type Curvature uint8

const (
	// Constant expressions reference no variables.
	Constant Curvature = iota
	// Affine expressions are linear plus a constant.
	Affine
	// Convex expressions.
	Convex
	// Concave expressions.
	Concave
	// Unknown means no DCP rule certifies the expression.
	Unknown
)

// String returns the lower-case curvature name.
func (c Curvature) String() string {
	switch c {
	case Constant:
		return "constant"
	case Affine:
		return "affine"
	case Convex:
		return "convex"
	case Concave:
		return "concave"
	}

	return "unknown"
}

// IsAffine reports Constant or Affine.
func (c Curvature) IsAffine() bool { return c == Constant || c == Affine }

// IsConvex reports convex-or-better.
func (c Curvature) IsConvex() bool { return c.IsAffine() || c == Convex }

// IsConcave reports concave-or-better.
func (c Curvature) IsConcave() bool { return c.IsAffine() || c == Concave }

// AddCurvature joins two curvatures under addition: a Constant or Affine
// operand yields the other (so the join of Constant and Affine is Affine),
// equal values are kept, anything else is Unknown.
func AddCurvature(a, b Curvature) Curvature {
	switch {
	case a == Constant:
		return b
	case b == Constant:
		return a
	case a == Affine:
		return b
	case b == Affine:
		return a
	case a == b:
		return a
	}

	return Unknown
}

// Negate swaps Convex and Concave.
func Negate(c Curvature) Curvature {
	switch c {
	case Convex:
		return Concave
	case Concave:
		return Convex
	}

	return c
}

// Sign classifies the sign of every element of an expression.
type Sign uint8

const (
	// Zero: every element is 0.
	Zero Sign = iota
	// Nonneg: every element is ≥ 0.
	Nonneg
	// Nonpos: every element is ≤ 0.
	Nonpos
	// UnknownSign: no guarantee.
	UnknownSign
)

// String returns the lower-case sign name.
func (s Sign) String() string {
	switch s {
	case Zero:
		return "zero"
	case Nonneg:
		return "nonnegative"
	case Nonpos:
		return "nonpositive"
	}

	return "unknown"
}

// IsNonneg reports Zero or Nonneg.
func (s Sign) IsNonneg() bool { return s == Zero || s == Nonneg }

// IsNonpos reports Zero or Nonpos.
func (s Sign) IsNonpos() bool { return s == Zero || s == Nonpos }

// AddSign joins signs under addition.
func AddSign(a, b Sign) Sign {
	switch {
	case a == Zero:
		return b
	case b == Zero:
		return a
	case a == b:
		return a
	}

	return UnknownSign
}

// NegateSign swaps Nonneg and Nonpos.
func NegateSign(s Sign) Sign {
	switch s {
	case Nonneg:
		return Nonpos
	case Nonpos:
		return Nonneg
	}

	return s
}

// MulSign is the sign of a product; Zero absorbs.
func MulSign(a, b Sign) Sign {
	switch {
	case a == Zero || b == Zero:
		return Zero
	case a == UnknownSign || b == UnknownSign:
		return UnknownSign
	case a == b:
		return Nonneg
	}

	return Nonpos
}

// scaleCurvature applies multiplication by a constant of sign s to c.
func scaleCurvature(c Curvature, s Sign) Curvature {
	switch {
	case c.IsAffine():
		return c
	case s == Zero:
		return Constant
	case s == Nonneg:
		return c
	case s == Nonpos:
		return Negate(c)
	}

	return Unknown
}
