// SPDX-License-Identifier: MIT

// Package quad accumulates quadratic objectives
//
//	Σ x_iᵀ C_ij x_j + qᵀx + c
//
// keyed by unordered variable pairs. The solver form (1/2)xᵀPx is produced
// at stuffing time, where each diagonal block is symmetrized (P_ii = C_ii + C_iiᵀ)
// and each cross block is placed once in the upper triangle (P_ij = C_ij).
package quad

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/convex/affine"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/sparse"
)

var (
	// ErrNotScalar is returned when a multi-row affine expression is used as
	// the linear part of a scalar objective.
	ErrNotScalar = errors.New("quad: linear part must have one row")

	// ErrShape indicates a coefficient block that does not fit its variables.
	ErrShape = errors.New("quad: block shape mismatch")
)

// Pair is a normalized unordered variable pair: I ≤ J.
type Pair struct{ I, J expr.ID }

// NewPair orders a and b.
func NewPair(a, b expr.ID) Pair {
	if b < a {
		a, b = b, a
	}

	return Pair{I: a, J: b}
}

// IsDiagonal reports I == J.
func (p Pair) IsDiagonal() bool { return p.I == p.J }

// Expr is an immutable quadratic expression.
type Expr struct {
	order    []Pair
	coeffs   map[Pair]*sparse.CSC // block C with rows = size(I), cols = size(J)
	linear   *affine.Expr         // one row, zero constant
	constant float64
}

func empty() *Expr {
	return &Expr{coeffs: map[Pair]*sparse.CSC{}, linear: affine.Zero(1)}
}

// FromLinear lifts a one-row affine expression, splitting out its constant.
// Errors: ErrNotScalar.
func FromLinear(l *affine.Expr) (*Expr, error) {
	if l.Rows() != 1 {
		return nil, fmt.Errorf("quad: FromLinear: %d rows: %w", l.Rows(), ErrNotScalar)
	}
	out := empty()
	lin, c := l.WithoutConstant()
	out.linear, out.constant = lin, c[0]

	return out, nil
}

// Quadratic returns x_idᵀ·P·x_id for a square P.
func Quadratic(id expr.ID, p *sparse.CSC) (*Expr, error) {
	if p.Rows() != p.Cols() {
		return nil, fmt.Errorf("quad: Quadratic: %d×%d: %w", p.Rows(), p.Cols(), ErrShape)
	}
	out := empty()
	out.coeffs[NewPair(id, id)] = p
	out.order = []Pair{NewPair(id, id)}

	return out, nil
}

// SumSquares returns Σ x_id² for a variable of the given size.
func SumSquares(id expr.ID, size int) *Expr {
	out := empty()
	out.coeffs[NewPair(id, id)] = sparse.Identity(size)
	out.order = []Pair{NewPair(id, id)}

	return out
}

// FromSquaredNorm returns ‖L‖² for an affine L = Σ A_i x_i + b.
func FromSquaredNorm(l *affine.Expr) (*Expr, error) { return FromQuadForm(l, nil) }

// FromQuadForm returns Lᵀ·P·L for an affine L and a symmetric P with as many
// rows as L (nil P means the identity):
//
//	Σ_ij x_iᵀ A_iᵀ P A_j x_j + 2 bᵀ P A x + bᵀ P b.
//
// Cross terms i ≠ j appear twice in the sum and are stored once, doubled.
func FromQuadForm(l *affine.Expr, p *sparse.CSC) (*Expr, error) {
	if p != nil && (p.Rows() != l.Rows() || p.Cols() != l.Rows()) {
		return nil, fmt.Errorf("quad: FromQuadForm: P %d×%d for %d rows: %w", p.Rows(), p.Cols(), l.Rows(), ErrShape)
	}
	ids := l.IDs()
	pa := make(map[expr.ID]*sparse.CSC, len(ids))
	for _, id := range ids {
		if p == nil {
			pa[id] = l.Block(id)
			continue
		}
		m, err := p.MulMat(l.Block(id))
		if err != nil {
			return nil, fmt.Errorf("quad: FromQuadForm: %w", err)
		}
		pa[id] = m
	}
	out := empty()
	for a, ia := range ids {
		for _, ib := range ids[a:] {
			blk, err := l.Block(ia).MulMatTransposeLeft(pa[ib])
			if err != nil {
				return nil, fmt.Errorf("quad: FromQuadForm: %w", err)
			}
			if ia != ib {
				blk = blk.Scale(2)
			}
			key := NewPair(ia, ib)
			if key.I != ia {
				blk = blk.Transpose()
			}
			if err := out.put(key, blk); err != nil {
				return nil, fmt.Errorf("quad: FromQuadForm: %w", err)
			}
		}
	}
	b := l.ConstantPart()
	pb := b
	if p != nil {
		var err error
		if pb, err = p.MulVec(b); err != nil {
			return nil, fmt.Errorf("quad: FromQuadForm: %w", err)
		}
	}
	// linear row 2·(Pb)ᵀA_i per variable
	pbRow, err := sparse.FromDense(pb, 1, len(pb))
	if err != nil {
		return nil, fmt.Errorf("quad: FromQuadForm: %w", err)
	}
	lin := affine.Zero(1)
	for _, id := range ids {
		row, err := pbRow.MulMat(l.Block(id))
		if err != nil {
			return nil, fmt.Errorf("quad: FromQuadForm: %w", err)
		}
		if lin, err = affine.Add(lin, affine.FromBlock(id, row.Scale(2))); err != nil {
			return nil, fmt.Errorf("quad: FromQuadForm: %w", err)
		}
	}
	out.linear = lin
	for i := range b {
		out.constant += b[i] * pb[i]
	}

	return out, nil
}

func (e *Expr) put(k Pair, blk *sparse.CSC) error {
	prev, ok := e.coeffs[k]
	if !ok {
		e.order = append(e.order, k)
		e.coeffs[k] = blk

		return nil
	}
	sum, err := prev.Add(blk)
	if err != nil {
		return fmt.Errorf("pair (%d,%d): %w", k.I, k.J, ErrShape)
	}
	e.coeffs[k] = sum

	return nil
}

// Add returns a + b, summing blocks that share a pair.
// Errors: ErrShape when shared pairs disagree in block shape.
func Add(a, b *Expr) (*Expr, error) {
	out := a.clone()
	for _, k := range b.order {
		if err := out.put(k, b.coeffs[k]); err != nil {
			return nil, fmt.Errorf("quad: Add: %w", err)
		}
	}
	lin, err := affine.Add(out.linear, b.linear)
	if err != nil {
		return nil, fmt.Errorf("quad: Add: %w", err)
	}
	out.linear = lin
	out.constant += b.constant

	return out, nil
}

// Scale returns alpha·e.
func (e *Expr) Scale(alpha float64) *Expr {
	out := e.clone()
	for k, blk := range out.coeffs {
		out.coeffs[k] = blk.Scale(alpha)
	}
	out.linear = out.linear.Scale(alpha)
	out.constant *= alpha

	return out
}

func (e *Expr) clone() *Expr {
	out := &Expr{
		order:    append([]Pair(nil), e.order...),
		coeffs:   make(map[Pair]*sparse.CSC, len(e.coeffs)),
		linear:   e.linear,
		constant: e.constant,
	}
	for k, v := range e.coeffs {
		out.coeffs[k] = v
	}

	return out
}

// Pairs returns the coefficient keys in insertion order.
func (e *Expr) Pairs() []Pair { return append([]Pair(nil), e.order...) }

// Coeff returns the block of pair k (nil when absent).
func (e *Expr) Coeff(k Pair) *sparse.CSC { return e.coeffs[k] }

// Linear returns the one-row linear part (its constant is always zero).
func (e *Expr) Linear() *affine.Expr { return e.linear }

// Constant returns c.
func (e *Expr) Constant() float64 { return e.constant }

// IsQuadratic reports whether any block has a stored entry.
func (e *Expr) IsQuadratic() bool {
	for _, blk := range e.coeffs {
		if blk.NNZ() > 0 {
			return true
		}
	}

	return false
}

// Value evaluates e at the given variable values.
func (e *Expr) Value(values map[expr.ID][]float64) (float64, error) {
	lin, err := e.linear.Value(values)
	if err != nil {
		return 0, fmt.Errorf("quad: Value: %w", err)
	}
	total := lin[0] + e.constant
	for _, k := range e.order {
		xi, okI := values[k.I]
		xj, okJ := values[k.J]
		blk := e.coeffs[k]
		if !okI || !okJ || len(xi) != blk.Rows() || len(xj) != blk.Cols() {
			return 0, fmt.Errorf("quad: Value: pair (%d,%d): %w", k.I, k.J, affine.ErrMissingValue)
		}
		y, err := blk.MulVec(xj)
		if err != nil {
			return 0, fmt.Errorf("quad: Value: %w", err)
		}
		for r, v := range y {
			total += xi[r] * v
		}
	}

	return total, nil
}
