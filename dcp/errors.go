// SPDX-License-Identifier: MIT
// Package dcp: sentinel errors and the typed rule violation.

package dcp

import (
	"errors"
	"fmt"
)

// ErrDCP is matched by every *Error.
var ErrDCP = errors.New("dcp: rule violation")

// Error describes a curvature violation at an objective or constraint.
type Error struct {
	Op   string // "minimize", "maximize", "eq", "ineq", "soc", ...
	Want string // required curvature, e.g. "convex"
	Got  string // analyzed curvature
	Expr string // offending expression
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("dcp: %s: expected %s, got %s in %s", e.Op, e.Want, e.Got, e.Expr)
}

// Unwrap lets errors.Is(err, ErrDCP) match.
func (e *Error) Unwrap() error { return ErrDCP }
