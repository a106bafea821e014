// SPDX-License-Identifier: MIT
// Package expr: sentinel errors and the typed shape error.

package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("expr: shape mismatch")

	// ErrUnknownKind is returned when a consumer meets a Kind it does not handle.
	ErrUnknownKind = errors.New("expr: unknown expression kind")

	// ErrMissingValue is returned by Eval when a variable has no assigned value
	// (or a value of the wrong length).
	ErrMissingValue = errors.New("expr: missing variable value")

	// ErrInvalidArgument flags nonsensical constructor input (nil child, empty
	// argument list, bad attribute combination).
	ErrInvalidArgument = errors.New("expr: invalid argument")

	// ErrDomain is returned by Eval for arguments outside an atom's domain
	// (log of a non-positive value, division by zero, ...).
	ErrDomain = errors.New("expr: argument outside domain")
)

// ShapeError describes an incompatible shape met while building a node.
type ShapeError struct {
	Op       string // operation being built, e.g. "matmul"
	Expected string // human-readable requirement
	Actual   string // what was supplied
}

// Error implements error.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("expr: %s: shape mismatch: expected %s, got %s", e.Op, e.Expected, e.Actual)
}

// Unwrap lets errors.Is(err, ErrShape) match.
func (e *ShapeError) Unwrap() error { return ErrShape }

// shapeErrorf builds a *ShapeError.
func shapeErrorf(op, expected string, actual string) error {
	return &ShapeError{Op: op, Expected: expected, Actual: actual}
}

// exprErrorf wraps err with an operation tag. Call only with err != nil.
func exprErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
