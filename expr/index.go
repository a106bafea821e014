// SPDX-License-Identifier: MIT

package expr

import "fmt"

// Index is the per-dimension selector of an index node: a single position
// (drops the dimension), a half-open range [Start, Stop) or the whole
// dimension.
type Index struct {
	Start, Stop int
	single      bool
	all         bool
}

// At selects one position and drops the dimension.
func At(i int) Index { return Index{Start: i, Stop: i + 1, single: true} }

// Range selects [start, stop). Empty ranges are legal.
func Range(start, stop int) Index { return Index{Start: start, Stop: stop} }

// All keeps the whole dimension.
func All() Index { return Index{all: true} }

// IsSingle reports an At selector.
func (ix Index) IsSingle() bool { return ix.single }

// String renders the selector in slice notation.
func (ix Index) String() string {
	switch {
	case ix.all:
		return ":"
	case ix.single:
		return fmt.Sprint(ix.Start)
	default:
		return fmt.Sprintf("%d:%d", ix.Start, ix.Stop)
	}
}

// resolve binds the selector to a dimension of size dim and validates it.
func (ix Index) resolve(dim int) (Index, error) {
	if ix.all {
		return Index{Start: 0, Stop: dim}, nil
	}
	if ix.single {
		if ix.Start < 0 || ix.Start >= dim {
			return Index{}, shapeErrorf("index", fmt.Sprintf("position in [0,%d)", dim), fmt.Sprint(ix.Start))
		}

		return ix, nil
	}
	if ix.Start < 0 || ix.Stop < ix.Start || ix.Stop > dim {
		return Index{}, shapeErrorf("index", fmt.Sprintf("range within [0,%d]", dim), ix.String())
	}

	return ix, nil
}

// indexShape resolves idx against in and returns the result shape together
// with the resolved selectors.
func indexShape(in Shape, idx []Index) (Shape, []Index, error) {
	if len(idx) != in.Ndim() {
		return nil, nil, shapeErrorf("index", fmt.Sprintf("%d selectors", in.Ndim()), fmt.Sprintf("%d", len(idx)))
	}
	out := Shape{}
	resolved := make([]Index, len(idx))
	for d, ix := range idx {
		r, err := ix.resolve(in[d])
		if err != nil {
			return nil, nil, err
		}
		resolved[d] = r
		if !r.single {
			out = append(out, r.Stop-r.Start)
		}
	}

	return out, resolved, nil
}

// IndexPositions returns, for every output element in column-major order, the
// column-major flat position it reads from the input. idx must be resolved
// (as stored on an index node).
func IndexPositions(in Shape, idx []Index) []int {
	if in.Ndim() == 0 {
		return []int{0}
	}
	// per-dimension selected coordinates
	sel := make([][]int, len(idx))
	total := 1
	for d, ix := range idx {
		for k := ix.Start; k < ix.Stop; k++ {
			sel[d] = append(sel[d], k)
		}
		total *= len(sel[d])
	}
	out := make([]int, 0, total)
	if total == 0 {
		return out
	}
	counter := make([]int, len(idx))
	for {
		flat, stride := 0, 1
		for d := range idx {
			flat += sel[d][counter[d]] * stride
			stride *= in[d]
		}
		out = append(out, flat)
		// advance, first dimension fastest
		d := 0
		for ; d < len(idx); d++ {
			counter[d]++
			if counter[d] < len(sel[d]) {
				break
			}
			counter[d] = 0
		}
		if d == len(idx) {
			return out
		}
	}
}

// stackShape infers the shape of vstack/hstack.
// All arguments of at most one dimension concatenate into a vector. Otherwise
// vstack lifts vectors to [1 n] rows and requires equal column counts; hstack
// lifts vectors to [n 1] columns and requires equal row counts.
func stackShape(op string, shapes []Shape, vertical bool) (Shape, error) {
	if len(shapes) == 0 {
		return nil, exprErrorf(op, fmt.Errorf("no arguments: %w", ErrInvalidArgument))
	}
	flat := true
	for _, s := range shapes {
		if s.Ndim() > 2 {
			return nil, shapeErrorf(op, "at most two dimensions", s.String())
		}
		if s.Ndim() == 2 {
			flat = false
		}
	}
	if flat {
		n := 0
		for _, s := range shapes {
			n += s.Size()
		}

		return Shape{n}, nil
	}
	var along, across int
	for i, s := range shapes {
		r, c := liftForStack(s, vertical)
		if !vertical {
			r, c = c, r
		}
		// r is the concatenated extent, c the shared one
		if i == 0 {
			across = c
		} else if c != across {
			return nil, shapeErrorf(op, fmt.Sprintf("shared extent %d", across), s.String())
		}
		along += r
	}
	if vertical {
		return Shape{along, across}, nil
	}

	return Shape{across, along}, nil
}

// liftForStack views s as a matrix for stacking: vectors become rows for
// vstack and columns for hstack.
func liftForStack(s Shape, vertical bool) (rows, cols int) {
	switch s.Ndim() {
	case 0:
		return 1, 1
	case 1:
		if vertical {
			return 1, s[0]
		}

		return s[0], 1
	default:
		return s[0], s[1]
	}
}

// StackPositions returns, for each argument, the column-major flat positions
// in the stacked output occupied by the argument's elements (taken in the
// argument's own column-major order).
func StackPositions(shapes []Shape, out Shape, vertical bool) [][]int {
	pos := make([][]int, len(shapes))
	if out.Ndim() <= 1 {
		off := 0
		for k, s := range shapes {
			pos[k] = make([]int, s.Size())
			for i := range pos[k] {
				pos[k][i] = off + i
			}
			off += s.Size()
		}

		return pos
	}
	outRows := out[0]
	off := 0
	for k, s := range shapes {
		r, c := liftForStack(s, vertical)
		pos[k] = make([]int, 0, r*c)
		for j := 0; j < c; j++ {
			for i := 0; i < r; i++ {
				if vertical {
					pos[k] = append(pos[k], (off+i)+j*outRows)
				} else {
					pos[k] = append(pos[k], i+(off+j)*outRows)
				}
			}
		}
		if vertical {
			off += r
		} else {
			off += c
		}
	}

	return pos
}

// SumAxisPositions returns, for every input element, the flat output position
// it accumulates into when summing over axis.
func SumAxisPositions(in Shape, axis int) []int {
	out := make([]int, in.Size())
	for flat := range out {
		rem, dst, stride := flat, 0, 1
		for d := 0; d < in.Ndim(); d++ {
			coord := rem % in[d]
			rem /= in[d]
			if d == axis {
				continue
			}
			dst += coord * stride
			stride *= in[d]
		}
		out[flat] = dst
	}

	return out
}

// CumsumPairs returns (output, input) flat position pairs such that output
// element o is the sum of every input element paired with it.
func CumsumPairs(in Shape, axis int) [][2]int {
	if in.Ndim() == 0 {
		return [][2]int{{0, 0}}
	}
	// stride of axis in column-major order
	stride := 1
	for d := 0; d < axis; d++ {
		stride *= in[d]
	}
	n := in[axis]
	var pairs [][2]int
	for flat := 0; flat < in.Size(); flat++ {
		k := (flat / stride) % n
		base := flat - k*stride
		for q := 0; q <= k; q++ {
			pairs = append(pairs, [2]int{flat, base + q*stride})
		}
	}

	return pairs
}
