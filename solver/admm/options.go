// SPDX-License-Identifier: MIT

package admm

import (
	"math"
	"time"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/convex/logging"
	"github.com/katalvlaran/convex/solver"
)

// Defaults: single source of truth for the iteration.
const (
	// DefaultMaxIter caps ADMM iterations.
	DefaultMaxIter = 10000

	// DefaultRho is the initial step size on inequality rows.
	DefaultRho = 0.1

	// DefaultSigma regularizes the x-update so the KKT matrix stays definite.
	DefaultSigma = 1e-6

	// DefaultRelaxation is the over-relaxation factor α.
	DefaultRelaxation = 1.6

	// DefaultTolerance is the absolute and relative residual tolerance.
	DefaultTolerance = 1e-7

	// DefaultInfeasibilityTolerance bounds certificate residuals.
	DefaultInfeasibilityTolerance = 1e-5

	// DefaultAdaptInterval is the number of iterations between ρ updates.
	DefaultAdaptInterval = 25

	// EqualityScale multiplies ρ on zero-cone rows.
	EqualityScale = 1e3
)

// Options configures a Solver.
type Options struct {
	MaxIter       int
	Rho           float64
	Sigma         float64
	Alpha         float64
	EpsAbs        float64
	EpsRel        float64
	EpsInf        float64
	AdaptiveRho   bool
	AdaptInterval int
	TimeLimit     time.Duration // 0: none
	Verbose       bool
	Logger        logr.Logger
}

// Option mutates Options.
type Option func(*Options)

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

// WithMaxIter caps iterations. Panics on n ≤ 0.
func WithMaxIter(n int) Option {
	if n <= 0 {
		panic("admm: WithMaxIter: n must be > 0")
	}

	return func(o *Options) { o.MaxIter = n }
}

// WithRho sets the initial ρ. Panics unless finite and > 0.
func WithRho(rho float64) Option {
	if !positive(rho) {
		panic("admm: WithRho: rho must be finite and > 0")
	}

	return func(o *Options) { o.Rho = rho }
}

// WithSigma sets σ. Panics unless finite and > 0.
func WithSigma(sigma float64) Option {
	if !positive(sigma) {
		panic("admm: WithSigma: sigma must be finite and > 0")
	}

	return func(o *Options) { o.Sigma = sigma }
}

// WithRelaxation sets α. Panics outside (0, 2).
func WithRelaxation(alpha float64) Option {
	if !(alpha > 0 && alpha < 2) {
		panic("admm: WithRelaxation: alpha must be in (0, 2)")
	}

	return func(o *Options) { o.Alpha = alpha }
}

// WithTolerance sets the absolute and relative residual tolerances.
// Panics unless both are finite and > 0.
func WithTolerance(abs, rel float64) Option {
	if !positive(abs) || !positive(rel) {
		panic("admm: WithTolerance: tolerances must be finite and > 0")
	}

	return func(o *Options) { o.EpsAbs, o.EpsRel = abs, rel }
}

// WithInfeasibilityTolerance sets the certificate tolerance. Panics unless finite and > 0.
func WithInfeasibilityTolerance(eps float64) Option {
	if !positive(eps) {
		panic("admm: WithInfeasibilityTolerance: eps must be finite and > 0")
	}

	return func(o *Options) { o.EpsInf = eps }
}

// WithAdaptiveRho toggles ρ rescaling every interval iterations.
// Panics on interval ≤ 0.
func WithAdaptiveRho(on bool, interval int) Option {
	if interval <= 0 {
		panic("admm: WithAdaptiveRho: interval must be > 0")
	}

	return func(o *Options) { o.AdaptiveRho, o.AdaptInterval = on, interval }
}

// WithTimeLimit bounds wall time; 0 disables the limit. Panics on d < 0.
func WithTimeLimit(d time.Duration) Option {
	if d < 0 {
		panic("admm: WithTimeLimit: negative duration")
	}

	return func(o *Options) { o.TimeLimit = d }
}

// WithVerbose logs per-check progress at V(0) instead of V(2). Without
// WithLogger, a verbose solver writes JSON to stderr through logging.New.
func WithVerbose(on bool) Option {
	return func(o *Options) { o.Verbose = on }
}

// WithLogger routes progress to l.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithSettings applies boundary settings: iteration cap, tolerances, time
// limit and verbosity.
func WithSettings(s solver.Settings) Option {
	if err := s.Validate(); err != nil {
		panic("admm: WithSettings: " + err.Error())
	}

	return func(o *Options) {
		o.MaxIter = s.MaxIter
		o.EpsAbs, o.EpsRel = s.TolGapAbs, s.TolGapRel
		o.Verbose = s.Verbose
		if d, ok := s.Deadline(); ok {
			o.TimeLimit = d
		} else {
			o.TimeLimit = 0
		}
	}
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		MaxIter:       DefaultMaxIter,
		Rho:           DefaultRho,
		Sigma:         DefaultSigma,
		Alpha:         DefaultRelaxation,
		EpsAbs:        DefaultTolerance,
		EpsRel:        DefaultTolerance,
		EpsInf:        DefaultInfeasibilityTolerance,
		AdaptiveRho:   true,
		AdaptInterval: DefaultAdaptInterval,
		Logger:        logr.Discard(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Verbose && o.Logger.GetSink() == nil {
		if l, err := logging.New(0); err == nil {
			o.Logger = l
		}
	}

	return o
}
