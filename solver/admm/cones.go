// SPDX-License-Identifier: MIT

package admm

import (
	"fmt"
	"math"

	"github.com/katalvlaran/convex/solver"
	"github.com/katalvlaran/convex/stuffing"
)

type coneKind uint8

const (
	kindZero coneKind = iota
	kindNonneg
	kindSOC
)

// block is a contiguous run of rows in one cone.
type block struct {
	kind  coneKind
	start int
	size  int
}

// layout splits the rows of A into projection blocks.
// Errors: solver.ErrUnsupportedCone for exponential and power rows.
func layout(d stuffing.ConeDims) ([]block, error) {
	if d.Exp > 0 || len(d.Power) > 0 {
		return nil, fmt.Errorf("%d exponential and %d power cones: %w", d.Exp, len(d.Power), solver.ErrUnsupportedCone)
	}
	var out []block
	row := 0
	if d.Zero > 0 {
		out = append(out, block{kind: kindZero, start: row, size: d.Zero})
		row += d.Zero
	}
	if d.Nonneg > 0 {
		out = append(out, block{kind: kindNonneg, start: row, size: d.Nonneg})
		row += d.Nonneg
	}
	for _, n := range d.SOC {
		out = append(out, block{kind: kindSOC, start: row, size: n})
		row += n
	}

	return out, nil
}

// project overwrites v with its Euclidean projection onto K.
func project(blocks []block, v []float64) {
	for _, b := range blocks {
		seg := v[b.start : b.start+b.size]
		switch b.kind {
		case kindZero:
			for i := range seg {
				seg[i] = 0
			}
		case kindNonneg:
			for i, x := range seg {
				if x < 0 {
					seg[i] = 0
				}
			}
		case kindSOC:
			projectSOC(seg)
		}
	}
}

// projectSOC projects (t, x) onto {‖x‖₂ ≤ t}.
func projectSOC(v []float64) {
	if len(v) == 0 {
		return
	}
	t, x := v[0], v[1:]
	nx := norm2(x)
	switch {
	case nx <= t:
	case nx <= -t:
		for i := range v {
			v[i] = 0
		}
	default:
		a := (t + nx) / 2
		v[0] = a
		for i := range x {
			x[i] *= a / nx
		}
	}
}

// distance returns ‖v − Π_K(v)‖∞.
func distance(blocks []block, v []float64) float64 {
	p := append([]float64(nil), v...)
	project(blocks, p)
	d := 0.0
	for i := range v {
		d = math.Max(d, math.Abs(v[i]-p[i]))
	}

	return d
}

// dualDistance returns ‖v − Π_K*(v)‖∞. Nonnegative and second-order cones
// are self-dual; the dual of the zero cone is the whole space.
func dualDistance(blocks []block, v []float64) float64 {
	p := append([]float64(nil), v...)
	for _, b := range blocks {
		seg := p[b.start : b.start+b.size]
		switch b.kind {
		case kindNonneg:
			for i, x := range seg {
				if x < 0 {
					seg[i] = 0
				}
			}
		case kindSOC:
			projectSOC(seg)
		}
	}
	d := 0.0
	for i := range v {
		d = math.Max(d, math.Abs(v[i]-p[i]))
	}

	return d
}

func norm2(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v * v
	}

	return math.Sqrt(s)
}

func normInf(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}

	return m
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}
