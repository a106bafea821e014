// SPDX-License-Identifier: MIT

package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrSolver is matched by failures reported by a backend (max iterations,
	// numerical trouble, unknown status).
	ErrSolver = errors.New("solver: solve failed")

	// ErrInfeasible indicates a primal infeasible problem.
	ErrInfeasible = errors.New("solver: problem is infeasible")

	// ErrUnbounded indicates a dual infeasible (unbounded) problem.
	ErrUnbounded = errors.New("solver: problem is unbounded")

	// ErrUnsupportedCone indicates a cone kind the backend cannot handle.
	ErrUnsupportedCone = errors.New("solver: unsupported cone")

	// ErrInteger indicates integer or binary columns given to a continuous backend.
	ErrInteger = errors.New("solver: integer columns not supported")

	// ErrInvalidProblem indicates inconsistent problem data.
	ErrInvalidProblem = errors.New("solver: invalid problem data")

	// ErrUnknownStatus indicates a status name outside the wire vocabulary.
	ErrUnknownStatus = errors.New("solver: unknown status name")
)

// StatusError maps a terminal status onto the error the caller should
// surface: nil for StatusOptimal.
func StatusError(s Status) error {
	switch s {
	case StatusOptimal:
		return nil
	case StatusInfeasible:
		return ErrInfeasible
	case StatusUnbounded:
		return ErrUnbounded
	}

	return fmt.Errorf("status %s: %w", s, ErrSolver)
}

func solverErrorf(op string, err error) error {
	return fmt.Errorf("solver: %s: %w", op, err)
}
