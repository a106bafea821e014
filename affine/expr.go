// SPDX-License-Identifier: MIT

package affine

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/sparse"
)

// Expr is A·x + c over the variables it names.
// Invariants: every block has Rows() rows and as many columns as its
// variable's size; len(constant) == Rows().
type Expr struct {
	rows     int
	order    []expr.ID
	blocks   map[expr.ID]*sparse.CSC
	constant []float64
}

// Zero returns the all-zero expression with the given number of rows.
func Zero(rows int) *Expr {
	return &Expr{rows: rows, blocks: map[expr.ID]*sparse.CSC{}, constant: make([]float64, rows)}
}

// Constant returns a variable-free expression whose value is vals.
func Constant(vals []float64) *Expr {
	e := Zero(len(vals))
	copy(e.constant, vals)

	return e
}

// Variable returns the identity map of a variable of the given size.
func Variable(id expr.ID, size int) *Expr {
	e := Zero(size)
	e.set(id, sparse.Identity(size))

	return e
}

// FromBlock returns block·x_id with a zero constant.
func FromBlock(id expr.ID, block *sparse.CSC) *Expr {
	e := Zero(block.Rows())
	e.set(id, block)

	return e
}

func (e *Expr) set(id expr.ID, block *sparse.CSC) {
	if _, ok := e.blocks[id]; !ok {
		e.order = append(e.order, id)
	}
	e.blocks[id] = block
}

// Rows returns the number of output rows.
func (e *Expr) Rows() int { return e.rows }

// IDs returns the variable ids in insertion order.
func (e *Expr) IDs() []expr.ID { return append([]expr.ID(nil), e.order...) }

// Block returns the coefficient block of id, or nil.
func (e *Expr) Block(id expr.ID) *sparse.CSC { return e.blocks[id] }

// ConstantPart returns a copy of the constant vector.
func (e *Expr) ConstantPart() []float64 { return append([]float64(nil), e.constant...) }

// IsConstant reports whether no variable has a stored coefficient.
func (e *Expr) IsConstant() bool {
	for _, id := range e.order {
		if e.blocks[id].NNZ() > 0 {
			return false
		}
	}

	return true
}

// WithoutConstant returns e with a zero constant, plus the removed constant.
func (e *Expr) WithoutConstant() (*Expr, []float64) {
	out := e.shallow()
	out.constant = make([]float64, e.rows)

	return out, e.ConstantPart()
}

func (e *Expr) shallow() *Expr {
	out := &Expr{
		rows:     e.rows,
		order:    append([]expr.ID(nil), e.order...),
		blocks:   make(map[expr.ID]*sparse.CSC, len(e.blocks)),
		constant: append([]float64(nil), e.constant...),
	}
	for id, b := range e.blocks {
		out.blocks[id] = b
	}

	return out
}

// Add returns a + b. A one-row operand is broadcast to the other's rows.
// Errors: ErrRowMismatch, ErrColumnMismatch.
func Add(a, b *Expr) (*Expr, error) {
	var err error
	switch {
	case a.rows == b.rows:
	case a.rows == 1:
		if a, err = a.Broadcast(b.rows); err != nil {
			return nil, affineErrorf(opAdd, err)
		}
	case b.rows == 1:
		if b, err = b.Broadcast(a.rows); err != nil {
			return nil, affineErrorf(opAdd, err)
		}
	default:
		return nil, affineErrorf(opAdd, fmt.Errorf("%d vs %d rows: %w", a.rows, b.rows, ErrRowMismatch))
	}
	out := a.shallow()
	for _, id := range b.order {
		blk := b.blocks[id]
		prev, ok := out.blocks[id]
		if !ok {
			out.set(id, blk)
			continue
		}
		if prev.Cols() != blk.Cols() {
			return nil, affineErrorf(opAdd, fmt.Errorf("variable %d: %d vs %d columns: %w", id, prev.Cols(), blk.Cols(), ErrColumnMismatch))
		}
		sum, err := prev.Add(blk)
		if err != nil {
			return nil, affineErrorf(opAdd, err)
		}
		out.blocks[id] = sum
	}
	for i, v := range b.constant {
		out.constant[i] += v
	}

	return out, nil
}

// Sub returns a − b with the same broadcasting as Add.
func Sub(a, b *Expr) (*Expr, error) { return Add(a, b.Neg()) }

// Neg returns −e.
func (e *Expr) Neg() *Expr { return e.Scale(-1) }

// Scale returns alpha·e.
func (e *Expr) Scale(alpha float64) *Expr {
	out := e.shallow()
	for id, b := range out.blocks {
		out.blocks[id] = b.Scale(alpha)
	}
	for i := range out.constant {
		out.constant[i] *= alpha
	}

	return out
}

// LeftMul returns M·e for a matrix with Cols() == e.Rows().
// Errors: ErrRowMismatch.
func (e *Expr) LeftMul(m *sparse.CSC) (*Expr, error) {
	if m.Cols() != e.rows {
		return nil, affineErrorf(opLeftMul, fmt.Errorf("%d×%d by %d rows: %w", m.Rows(), m.Cols(), e.rows, ErrRowMismatch))
	}
	out := Zero(m.Rows())
	for _, id := range e.order {
		p, err := m.MulMat(e.blocks[id])
		if err != nil {
			return nil, affineErrorf(opLeftMul, err)
		}
		out.set(id, p)
	}
	c, err := m.MulVec(e.constant)
	if err != nil {
		return nil, affineErrorf(opLeftMul, err)
	}
	out.constant = c

	return out, nil
}

// Broadcast replicates a one-row expression n times; any other expression
// must already have n rows.
func (e *Expr) Broadcast(n int) (*Expr, error) {
	if e.rows == n {
		return e, nil
	}
	if e.rows != 1 {
		return nil, fmt.Errorf("broadcast %d rows to %d: %w", e.rows, n, ErrRowMismatch)
	}

	return e.LeftMul(sparse.Ones(n, 1))
}

// Sum returns the one-row total 1ᵀ·e.
func (e *Expr) Sum() *Expr {
	out, _ := e.LeftMul(sparse.Ones(1, e.rows))

	return out
}

// VStack stacks parts vertically. Variables missing from a part get a zero
// block; constants are concatenated in argument order.
// Errors: ErrColumnMismatch.
func VStack(parts ...*Expr) (*Expr, error) {
	rows := 0
	width := map[expr.ID]int{}
	var order []expr.ID
	for _, p := range parts {
		rows += p.rows
		for _, id := range p.order {
			w := p.blocks[id].Cols()
			if prev, ok := width[id]; ok {
				if prev != w {
					return nil, affineErrorf(opVStack, fmt.Errorf("variable %d: %d vs %d columns: %w", id, prev, w, ErrColumnMismatch))
				}
				continue
			}
			width[id] = w
			order = append(order, id)
		}
	}
	out := Zero(rows)
	for _, id := range order {
		blocks := make([]*sparse.CSC, len(parts))
		for k, p := range parts {
			if b, ok := p.blocks[id]; ok {
				blocks[k] = b
			} else {
				blocks[k] = sparse.Zeros(p.rows, width[id])
			}
		}
		st, err := sparse.VStack(blocks...)
		if err != nil {
			return nil, affineErrorf(opVStack, err)
		}
		out.set(id, st)
	}
	off := 0
	for _, p := range parts {
		copy(out.constant[off:], p.constant)
		off += p.rows
	}

	return out, nil
}

// Value evaluates e at the given variable values.
// Errors: ErrMissingValue.
func (e *Expr) Value(values map[expr.ID][]float64) ([]float64, error) {
	out := e.ConstantPart()
	for _, id := range e.order {
		x, ok := values[id]
		b := e.blocks[id]
		if !ok || len(x) != b.Cols() {
			return nil, affineErrorf(opValue, fmt.Errorf("variable %d: %w", id, ErrMissingValue))
		}
		y, err := b.MulVec(x)
		if err != nil {
			return nil, affineErrorf(opValue, err)
		}
		for i, v := range y {
			out[i] += v
		}
	}

	return out, nil
}

// String renders "rows=N vars=[id ...] c=[...]".
func (e *Expr) String() string {
	ids := make([]string, len(e.order))
	for i, id := range e.order {
		ids[i] = fmt.Sprint(id)
	}

	return fmt.Sprintf("affine(rows=%d vars=[%s] c=%v)", e.rows, strings.Join(ids, " "), e.constant)
}
