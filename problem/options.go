// SPDX-License-Identifier: MIT

package problem

import (
	"github.com/go-logr/logr"

	"github.com/katalvlaran/convex/canon"
)

// Options configures Compile and Solve.
type Options struct {
	Logger logr.Logger
	Canon  []canon.Option
}

// Option mutates Options.
type Option func(*Options)

// WithLogger routes pipeline logs to l. The logger is also handed to the
// canonicalizer and to the default backend.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithCanonOptions forwards opts to the canonicalizer, after the logger.
func WithCanonOptions(opts ...canon.Option) Option {
	return func(o *Options) { o.Canon = append(o.Canon, opts...) }
}

func gatherOptions(opts ...Option) Options {
	o := Options{Logger: logr.Discard()}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
