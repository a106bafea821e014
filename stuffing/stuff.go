// SPDX-License-Identifier: MIT

package stuffing

import (
	"fmt"

	"github.com/katalvlaran/convex/affine"
	"github.com/katalvlaran/convex/canon"
	"github.com/katalvlaran/convex/quad"
	"github.com/katalvlaran/convex/sparse"
)

// ConeDims describes the row blocks of A in order. JSON names follow the
// cone spec consumed by conic solver wrappers.
type ConeDims struct {
	Zero   int       `json:"zero"`
	Nonneg int       `json:"nonneg"`
	SOC    []int     `json:"soc"`
	Exp    int       `json:"exp"`
	Power  []float64 `json:"power"`
}

// Rows returns the total number of constraint rows.
func (d ConeDims) Rows() int {
	n := d.Zero + d.Nonneg + 3*d.Exp + 3*len(d.Power)
	for _, s := range d.SOC {
		n += s
	}

	return n
}

// String renders a compact summary.
func (d ConeDims) String() string {
	return fmt.Sprintf("zero=%d nonneg=%d soc=%v exp=%d power=%v", d.Zero, d.Nonneg, d.SOC, d.Exp, d.Power)
}

// Problem is the solver standard form.
type Problem struct {
	P      *sparse.CSC // n×n upper triangle
	Q      []float64
	A      *sparse.CSC // m×n
	B      []float64
	Dims   ConeDims
	VarMap *VariableMap
}

// Columns returns n.
func (p *Problem) Columns() int { return p.VarMap.Columns() }

// Rows returns m.
func (p *Problem) Rows() int { return len(p.B) }

// IsQuadratic reports whether P has stored entries.
func (p *Problem) IsQuadratic() bool { return p.P.NNZ() > 0 }

// stuffer writes affine rows into a shared builder.
type stuffer struct {
	vm  *VariableMap
	a   *sparse.Builder
	b   []float64
	row int
}

func (s *stuffer) put(op string, l *affine.Expr, negate bool) error {
	sign := 1.0
	if negate {
		sign = -1
	}
	for _, id := range l.IDs() {
		e, ok := s.vm.Lookup(id)
		if !ok {
			return stuffErrorf(op, fmt.Errorf("id %d: %w", id, ErrUnknownVariable))
		}
		blk := l.Block(id)
		if blk.Cols() != e.Size {
			return stuffErrorf(op, fmt.Errorf("%s: block has %d columns, variable has %d: %w", e.Name, blk.Cols(), e.Size, ErrDimension))
		}
		cp, ri, vals := blk.ColPtr(), blk.RowIdx(), blk.Values()
		for j := 0; j < blk.Cols(); j++ {
			for k := cp[j]; k < cp[j+1]; k++ {
				s.a.Add(s.row+ri[k], e.Start+j, sign*vals[k])
			}
		}
	}
	for _, c := range l.ConstantPart() {
		s.b = append(s.b, -sign*c)
	}
	s.row += l.Rows()

	return nil
}

// StuffLinExpr copies l into global columns: A = ±coeffs, b = ∓constant
// (negate selects A = −coeffs, b = constant).
// Errors: ErrUnknownVariable, ErrDimension.
func StuffLinExpr(l *affine.Expr, vm *VariableMap, negate bool) (*sparse.CSC, []float64, error) {
	s := &stuffer{vm: vm, a: sparse.NewBuilder(l.Rows(), vm.Columns(), 0)}
	if err := s.put(opLinExpr, l, negate); err != nil {
		return nil, nil, err
	}
	a, err := s.a.Build()
	if err != nil {
		return nil, nil, stuffErrorf(opLinExpr, err)
	}

	return a, s.b, nil
}

// StuffObjective places the single row of l into a dense q.
// Errors: ErrNotScalar, ErrUnknownVariable, ErrDimension.
func StuffObjective(l *affine.Expr, vm *VariableMap) ([]float64, error) {
	if l.Rows() != 1 {
		return nil, stuffErrorf(opObjective, fmt.Errorf("%d rows: %w", l.Rows(), ErrNotScalar))
	}
	row, _, err := StuffLinExpr(l, vm, false)
	if err != nil {
		return nil, stuffErrorf(opObjective, err)
	}

	return row.ToDense(), nil
}

// StuffQuadraticObjective returns the upper triangle of P and q for
// (1/2)·xᵀPx + qᵀx = e − constant(e). A diagonal block C_ii becomes
// C_ii + C_iiᵀ; a cross block C_ij is placed once above the diagonal.
// Errors: ErrUnknownVariable, ErrDimension, ErrNotScalar.
func StuffQuadraticObjective(e *quad.Expr, vm *VariableMap) (*sparse.CSC, []float64, error) {
	n := vm.Columns()
	b := sparse.NewBuilder(n, n, 0)
	for _, k := range e.Pairs() {
		ei, okI := vm.Lookup(k.I)
		ej, okJ := vm.Lookup(k.J)
		if !okI || !okJ {
			return nil, nil, stuffErrorf(opQuadratic, fmt.Errorf("pair (%d,%d): %w", k.I, k.J, ErrUnknownVariable))
		}
		blk := e.Coeff(k)
		if blk.Rows() != ei.Size || blk.Cols() != ej.Size {
			return nil, nil, stuffErrorf(opQuadratic, fmt.Errorf("pair (%d,%d): block %d×%d: %w", k.I, k.J, blk.Rows(), blk.Cols(), ErrDimension))
		}
		var err error
		if k.IsDiagonal() {
			if blk, err = blk.Add(blk.Transpose()); err != nil {
				return nil, nil, stuffErrorf(opQuadratic, err)
			}
		} else if ei.Start > ej.Start {
			blk, ei, ej = blk.Transpose(), ej, ei
		}
		cp, ri, vals := blk.ColPtr(), blk.RowIdx(), blk.Values()
		for j := 0; j < blk.Cols(); j++ {
			for p := cp[j]; p < cp[j+1]; p++ {
				b.Add(ei.Start+ri[p], ej.Start+j, vals[p])
			}
		}
	}
	full, err := b.Build()
	if err != nil {
		return nil, nil, stuffErrorf(opQuadratic, err)
	}
	q, err := StuffObjective(e.Linear(), vm)
	if err != nil {
		return nil, nil, stuffErrorf(opQuadratic, err)
	}

	return full.Triu(), q, nil
}

// interleave reorders [x; y; z] (n rows each) into (x₀,y₀,z₀, x₁,y₁,z₁, …).
func interleave(args []*affine.Expr) (*affine.Expr, error) {
	stacked, err := affine.VStack(args...)
	if err != nil {
		return nil, err
	}
	n := args[0].Rows()
	perm := sparse.NewBuilder(3*n, 3*n, 3*n)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			perm.Add(3*i+k, k*n+i, 1)
		}
	}
	pm, err := perm.Build()
	if err != nil {
		return nil, err
	}

	return stacked.LeftMul(pm)
}

// StuffProblem assembles the standard form. q (or P and q) come from
// quadratic when it is non-nil, from objective otherwise.
// Errors: ErrUnknownVariable, ErrDimension, ErrNotScalar.
func StuffProblem(objective *affine.Expr, quadratic *quad.Expr, cones []canon.Cone, vm *VariableMap) (*Problem, error) {
	n := vm.Columns()
	prob := &Problem{VarMap: vm}
	var err error
	if quadratic != nil {
		if prob.P, prob.Q, err = StuffQuadraticObjective(quadratic, vm); err != nil {
			return nil, stuffErrorf(opProblem, err)
		}
	} else {
		if prob.Q, err = StuffObjective(objective, vm); err != nil {
			return nil, stuffErrorf(opProblem, err)
		}
		prob.P = sparse.Zeros(n, n)
	}

	byKind := make(map[canon.ConeKind][]canon.Cone, 5)
	rows := 0
	for _, c := range cones {
		byKind[c.Kind] = append(byKind[c.Kind], c)
		rows += c.Rows()
	}
	s := &stuffer{vm: vm, a: sparse.NewBuilder(rows, n, 0), b: make([]float64, 0, rows)}
	for _, kind := range []canon.ConeKind{canon.ConeZero, canon.ConeNonneg, canon.ConeSOC, canon.ConeExp, canon.ConePower} {
		for _, c := range byKind[kind] {
			if err := stuffCone(s, c, &prob.Dims); err != nil {
				return nil, err
			}
		}
	}
	if prob.A, err = s.a.Build(); err != nil {
		return nil, stuffErrorf(opProblem, err)
	}
	prob.B = s.b

	return prob, nil
}

func stuffCone(s *stuffer, c canon.Cone, dims *ConeDims) error {
	switch c.Kind {
	case canon.ConeZero:
		dims.Zero += c.Rows()
		return s.put(opProblem, c.Args[0], false)
	case canon.ConeNonneg:
		dims.Nonneg += c.Rows()
		return s.put(opProblem, c.Args[0], true)
	case canon.ConeSOC:
		tx, err := affine.VStack(c.Args[0], c.Args[1])
		if err != nil {
			return stuffErrorf(opProblem, err)
		}
		dims.SOC = append(dims.SOC, c.Rows())
		return s.put(opProblem, tx, true)
	case canon.ConeExp, canon.ConePower:
		xyz, err := interleave(c.Args)
		if err != nil {
			return stuffErrorf(opProblem, err)
		}
		n := c.Args[0].Rows()
		if c.Kind == canon.ConeExp {
			dims.Exp += n
		} else {
			for i := 0; i < n; i++ {
				dims.Power = append(dims.Power, c.Alpha)
			}
		}
		return s.put(opProblem, xyz, true)
	}

	return stuffErrorf(opProblem, fmt.Errorf("cone kind %s: %w", c.Kind, ErrDimension))
}

// FromCanonical builds the variable map for res and stuffs it.
func FromCanonical(res *canon.Result) (*Problem, error) {
	vm, err := BuildVariableMap(res.Vars, res.Aux)
	if err != nil {
		return nil, err
	}

	return StuffProblem(res.Objective, res.Quadratic, res.Cones, vm)
}
