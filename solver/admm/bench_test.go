// SPDX-License-Identifier: MIT
package admm_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/convex/canon"
	"github.com/katalvlaran/convex/dcp"
	"github.com/katalvlaran/convex/expr"
	"github.com/katalvlaran/convex/solver/admm"
	"github.com/katalvlaran/convex/stuffing"
)

// BenchmarkSolve_SOC measures a 20-dimensional norm minimization on a plane.
func BenchmarkSolve_SOC(b *testing.B) {
	x := expr.Must(expr.NewVariable(expr.Shape{20}))
	con := expr.Must(expr.Eq(expr.Sum(x), expr.Scalar(20)))
	res, err := canon.CanonicalizeProblem(expr.Norm2(x), dcp.Minimize, []*expr.Constraint{con})
	if err != nil {
		b.Fatal(err)
	}
	prob, err := stuffing.FromCanonical(res)
	if err != nil {
		b.Fatal(err)
	}
	s := admm.New()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Solve(ctx, prob); err != nil {
			b.Fatal(err)
		}
	}
}
