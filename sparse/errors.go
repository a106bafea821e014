// SPDX-License-Identifier: MIT
// Package sparse: sentinel error set.
// Every message is prefixed with "sparse: ..."; context is attached with
// cscErrorf at the detection site so errors.Is keeps matching the sentinel.

package sparse

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a requested shape is invalid (negative dimension).
	ErrBadShape = errors.New("sparse: invalid shape")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	ErrOutOfRange = errors.New("sparse: index out of range")

	// ErrDimensionMismatch indicates incompatible operand dimensions.
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")

	// ErrMalformed indicates raw CSC arrays violating the structural invariants.
	ErrMalformed = errors.New("sparse: malformed CSC structure")

	// ErrNilMatrix indicates that a nil *CSC was used.
	ErrNilMatrix = errors.New("sparse: nil matrix")
)

// Operation tags for uniform error wrapping.
const (
	opNew         = "New"
	opFromTrip    = "FromTriplets"
	opFromDense   = "FromDense"
	opAt          = "At"
	opAdd         = "Add"
	opSub         = "Sub"
	opVStack      = "VStack"
	opHStack      = "HStack"
	opMulVec      = "MulVec"
	opMulMat      = "MulMat"
	opMulMatTLeft = "MulMatTransposeLeft"
)

// cscErrorf wraps err with an operation tag. Call only with err != nil.
func cscErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
