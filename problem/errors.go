// SPDX-License-Identifier: MIT

package problem

import (
	"errors"
	"fmt"
)

var (
	// ErrNilObjective indicates a Problem built without an objective.
	ErrNilObjective = errors.New("problem: nil objective")

	// ErrNilConstraint indicates a nil entry in the constraint list.
	ErrNilConstraint = errors.New("problem: nil constraint")
)

func problemErrorf(op string, err error) error {
	return fmt.Errorf("problem: %s: %w", op, err)
}
