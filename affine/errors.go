// SPDX-License-Identifier: MIT

package affine

import (
	"errors"
	"fmt"
)

var (
	// ErrRowMismatch indicates operands with incompatible row counts.
	ErrRowMismatch = errors.New("affine: row count mismatch")

	// ErrColumnMismatch indicates two blocks for one variable with different widths.
	ErrColumnMismatch = errors.New("affine: coefficient block width mismatch")

	// ErrMissingValue is returned by Value when a variable has no assignment.
	ErrMissingValue = errors.New("affine: missing variable value")
)

// Operation tags.
const (
	opAdd     = "Add"
	opLeftMul = "LeftMul"
	opVStack  = "VStack"
	opValue   = "Value"
)

// affineErrorf wraps err with an operation tag. Call only with err != nil.
func affineErrorf(op string, err error) error {
	return fmt.Errorf("affine: %s: %w", op, err)
}
