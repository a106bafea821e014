// SPDX-License-Identifier: MIT

// Package logging builds the zap-backed logr.Logger handed to the pipeline
// through WithLogger options, and the default sink of a verbose ADMM solver.
// Other packages only ever see logr.Logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxVerbosity is the deepest logr V-level that can be enabled.
const MaxVerbosity = 127

// ErrVerbosity indicates a verbosity outside [0, MaxVerbosity].
var ErrVerbosity = errors.New("logging: verbosity out of range")

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.TimeKey = "ts"

	return cfg
}

// NewTo returns a JSON logger writing to w. V(n) records are emitted for
// n ≤ verbosity; stack traces are attached at error level only.
func NewTo(w io.Writer, verbosity int) (logr.Logger, error) {
	if verbosity < 0 || verbosity > MaxVerbosity {
		return logr.Discard(), fmt.Errorf("logging: New(%d): %w", verbosity, ErrVerbosity)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(zapcore.Level(-verbosity)),
	)
	z := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel), zap.AddCaller())

	return zapr.NewLogger(z), nil
}

// New returns a logger writing to stderr.
func New(verbosity int) (logr.Logger, error) {
	return NewTo(os.Stderr, verbosity)
}
