// SPDX-License-Identifier: MIT

package canon

import (
	"math"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/convex/expr"
)

// Defaults: single source of truth for Canonicalizer behavior.
const (
	// DefaultQuadraticObjective routes quadratic objectives through the QP path.
	DefaultQuadraticObjective = true

	// DefaultEigenTolerance bounds both the Jacobi off-diagonal residual and
	// the negative eigenvalue tolerated in a quadForm matrix.
	DefaultEigenTolerance = 1e-10

	// DefaultEigenMaxIter caps Jacobi rotations per quadForm matrix.
	DefaultEigenMaxIter = 10000
)

// Options configures a Canonicalizer.
type Options struct {
	QuadraticObjective bool
	EigenTolerance     float64
	EigenMaxIter       int
	Logger             logr.Logger
	Allocator          *expr.Allocator // nil: process-wide allocator
}

// Option mutates Options.
type Option func(*Options)

// WithQuadraticObjective toggles detection of quadratic objectives.
func WithQuadraticObjective(on bool) Option {
	return func(o *Options) { o.QuadraticObjective = on }
}

// WithEigenTolerance sets the quadForm PSD tolerance. Panics on tol ≤ 0 or NaN.
func WithEigenTolerance(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic("canon: WithEigenTolerance: tolerance must be finite and > 0")
	}

	return func(o *Options) { o.EigenTolerance = tol }
}

// WithEigenMaxIter caps Jacobi rotations. Panics on n ≤ 0.
func WithEigenMaxIter(n int) Option {
	if n <= 0 {
		panic("canon: WithEigenMaxIter: n must be > 0")
	}

	return func(o *Options) { o.EigenMaxIter = n }
}

// WithLogger routes V(1) stage summaries to l.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithAllocator draws auxiliary variable ids from a. Panics on nil.
func WithAllocator(a *expr.Allocator) Option {
	if a == nil {
		panic("canon: WithAllocator: nil allocator")
	}

	return func(o *Options) { o.Allocator = a }
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		QuadraticObjective: DefaultQuadraticObjective,
		EigenTolerance:     DefaultEigenTolerance,
		EigenMaxIter:       DefaultEigenMaxIter,
		Logger:             logr.Discard(),
	}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
