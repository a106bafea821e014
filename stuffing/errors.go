// SPDX-License-Identifier: MIT

package stuffing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariable indicates a coefficient block for a variable that has
	// no columns in the VariableMap.
	ErrUnknownVariable = errors.New("stuffing: variable not in map")

	// ErrDuplicateVariable indicates a variable listed twice when building a map.
	ErrDuplicateVariable = errors.New("stuffing: duplicate variable")

	// ErrDimension indicates a block or vector whose size disagrees with the map.
	ErrDimension = errors.New("stuffing: dimension mismatch")

	// ErrNotScalar indicates a multi-row objective.
	ErrNotScalar = errors.New("stuffing: objective must have one row")
)

// Operation tags for uniform error wrapping.
const (
	opBuildMap  = "BuildVariableMap"
	opLinExpr   = "StuffLinExpr"
	opObjective = "StuffObjective"
	opQuadratic = "StuffQuadraticObjective"
	opProblem   = "StuffProblem"
	opValues    = "Values"
)

// stuffErrorf wraps err with the operation tag. Call only with err != nil.
func stuffErrorf(op string, err error) error {
	return fmt.Errorf("stuffing: %s: %w", op, err)
}
