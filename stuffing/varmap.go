// SPDX-License-Identifier: MIT

package stuffing

import (
	"fmt"

	"github.com/katalvlaran/convex/expr"
)

// Attr flags the domain annotations of a column.
type Attr uint8

const (
	AttrNonneg Attr = 1 << iota
	AttrNonpos
	AttrInteger
	AttrBinary
)

// Has reports whether every flag of f is set.
func (a Attr) Has(f Attr) bool { return a&f == f }

// Entry is the column range of one variable.
type Entry struct {
	ID    expr.ID
	Name  string
	Start int
	Size  int
	Attr  Attr
	Aux   bool
}

// VariableMap assigns contiguous column ranges to variables, in insertion order.
type VariableMap struct {
	entries []Entry
	index   map[expr.ID]int
	total   int
}

func attrOf(v *expr.Variable) Attr {
	var a Attr
	if v.IsNonneg() {
		a |= AttrNonneg
	}
	if v.IsNonpos() {
		a |= AttrNonpos
	}
	if v.IsInteger() {
		a |= AttrInteger
	}
	if v.IsBinary() {
		a |= AttrBinary
	}

	return a
}

// BuildVariableMap lays out vars first, then aux.
// Errors: ErrDuplicateVariable.
func BuildVariableMap(vars, aux []*expr.Variable) (*VariableMap, error) {
	m := &VariableMap{index: make(map[expr.ID]int, len(vars)+len(aux))}
	add := func(v *expr.Variable, isAux bool) error {
		if _, dup := m.index[v.ID()]; dup {
			return stuffErrorf(opBuildMap, fmt.Errorf("%s (id %d): %w", v, v.ID(), ErrDuplicateVariable))
		}
		m.index[v.ID()] = len(m.entries)
		m.entries = append(m.entries, Entry{
			ID:    v.ID(),
			Name:  v.String(),
			Start: m.total,
			Size:  v.Size(),
			Attr:  attrOf(v),
			Aux:   isAux,
		})
		m.total += v.Size()

		return nil
	}
	for _, v := range vars {
		if err := add(v, false); err != nil {
			return nil, err
		}
	}
	for _, v := range aux {
		if err := add(v, true); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Columns returns the total column count.
func (m *VariableMap) Columns() int { return m.total }

// Len returns the number of variables.
func (m *VariableMap) Len() int { return len(m.entries) }

// Lookup returns the entry of id.
func (m *VariableMap) Lookup(id expr.ID) (Entry, bool) {
	i, ok := m.index[id]
	if !ok {
		return Entry{}, false
	}

	return m.entries[i], true
}

// Entries returns all entries in column order.
func (m *VariableMap) Entries() []Entry { return append([]Entry(nil), m.entries...) }

// ColumnAttrs returns the attribute flags of every column.
func (m *VariableMap) ColumnAttrs() []Attr {
	out := make([]Attr, m.total)
	for _, e := range m.entries {
		for k := 0; k < e.Size; k++ {
			out[e.Start+k] = e.Attr
		}
	}

	return out
}

// ColumnNames returns one name per column: the variable name for size-1
// variables, name[k] otherwise.
func (m *VariableMap) ColumnNames() []string {
	out := make([]string, 0, m.total)
	for _, e := range m.entries {
		if e.Size == 1 {
			out = append(out, e.Name)
			continue
		}
		for k := 0; k < e.Size; k++ {
			out = append(out, fmt.Sprintf("%s[%d]", e.Name, k))
		}
	}

	return out
}

// Values splits a primal vector into per-variable slices (copies).
// Errors: ErrDimension.
func (m *VariableMap) Values(x []float64) (map[expr.ID][]float64, error) {
	if len(x) != m.total {
		return nil, stuffErrorf(opValues, fmt.Errorf("primal length %d, want %d: %w", len(x), m.total, ErrDimension))
	}
	out := make(map[expr.ID][]float64, len(m.entries))
	for _, e := range m.entries {
		out[e.ID] = append([]float64(nil), x[e.Start:e.Start+e.Size]...)
	}

	return out, nil
}
